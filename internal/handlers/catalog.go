package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/asaskevich/govalidator"
	"github.com/gin-gonic/gin"

	catalog "github.com/CodeAndHammer/gamescope/internal/catalog"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

// Section is the view model of the list area: heading, grid and list body.
type Section struct {
	Title         string
	View          string
	Grid          int
	Cards         []catalog.Card
	Reviews       []catalog.ReviewCard
	Empty         bool
	EmptyTitle    string
	EmptyHint     string
	Error         string
	ReviewsError  bool
	CanLoadMore   bool
	LazyMargin    int
	AnimateMargin int
}

func (app *App) newSection(state *catalog.State, snap catalog.Snapshot) Section {
	return Section{
		Title:         snap.Title,
		View:          string(snap.View),
		Grid:          state.Grid(),
		LazyMargin:    app.Config.Catalog.LazyImageMargin,
		AnimateMargin: app.Config.Catalog.CardAnimationMargin,
	}
}

// listSection renders the snapshot as filtered by the browser's search text.
// A search renders plain cards even over a ranking.
func (app *App) listSection(state *catalog.State, snap catalog.Snapshot) Section {
	s := app.newSection(state, snap)
	search := state.Search()
	visible := state.Visible()

	switch {
	case snap.View == catalog.ViewRanked && search == "":
		s.Cards = catalog.BuildRankedCards(visible)
	default:
		s.Cards = catalog.BuildCards(visible)
	}

	if len(visible) == 0 {
		s.Empty = true
		switch {
		case search != "":
			s.EmptyTitle = fmt.Sprintf("No games match %q", search)
			s.EmptyHint = "Try a different search"
		case snap.View == catalog.ViewRanked:
			s.EmptyTitle = fmt.Sprintf("🎮 No %s games found", snap.Period)
			s.EmptyHint = "Try a different time period"
		default:
			s.EmptyTitle = "🎮 No games found"
		}
	}
	s.CanLoadMore = snap.View == catalog.ViewCatalog && search == "" && len(visible) > 0
	return s
}

func (app *App) renderSection(c *gin.Context, section Section) {
	c.HTML(http.StatusOK, "game-section", section)
}

func (app *App) renderPage(c *gin.Context, id string, section Section) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title":      appTitle,
		"section":    section,
		"user":       app.Sessions.Display(id),
		"settings":   app.Config.Catalog,
		"periods":    catalog.PeriodLinks(),
		"csrf_token": csrfToken(c),
	})
}

// HomeHandler renders the full page and fires the initial catalog fetch.
func HomeHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	id := sessionID(app, c)
	state := app.Sessions.Catalog(id)
	state.SetSearch("")

	snap, err := app.Catalog.FetchCatalog(ctx, state, app.Catalog.PageSize())
	section := app.listSection(state, snap)
	if err != nil && len(snap.Games) == 0 {
		section = app.newSection(state, snap)
		section.Error = "Error loading games"
	}
	app.renderPage(c, id, section)
}

// GamesHandler reloads the default catalog page into the list area.
func GamesHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	state := app.Sessions.Catalog(sessionID(app, c))
	state.SetSearch("")

	snap, err := app.Catalog.FetchCatalog(ctx, state, app.Catalog.PageSize())
	if err != nil {
		util.LogWarnCtx(ctx, "Keeping previous list after catalog failure: %v", err)
	}
	section := app.listSection(state, snap)
	if err != nil && len(snap.Games) == 0 {
		section = app.newSection(state, snap)
		section.Error = "Error loading games"
	}
	app.renderSection(c, section)
}

// LoadMoreHandler re-fetches the catalog with one more page step.
func LoadMoreHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	state := app.Sessions.Catalog(sessionID(app, c))
	snap, err := app.Catalog.LoadMore(ctx, state)
	if err != nil {
		util.LogWarnCtx(ctx, "Load more failed, keeping %d games: %v", len(snap.Games), err)
	}
	app.renderSection(c, app.listSection(state, snap))
}

// SearchHandler filters the current snapshot; it never calls upstream.
func SearchHandler(app *App, c *gin.Context) {
	state := app.Sessions.Catalog(sessionID(app, c))
	state.SetSearch(c.Query("q"))
	app.renderSection(c, app.listSection(state, state.Snapshot()))
}

func GridHandler(app *App, c *gin.Context) {
	state := app.Sessions.Catalog(sessionID(app, c))
	raw := c.PostForm("columns")
	columns, err := strconv.Atoi(raw)
	if err != nil || !govalidator.IsIn(raw, strconv.Itoa(constants.GridOneColumn), strconv.Itoa(constants.GridFourColumns)) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "columns must be 1 or 4"})
		return
	}
	state.SetGrid(columns)
	app.renderSection(c, app.listSection(state, state.Snapshot()))
}

// TopHandler loads a ranked view for the :period parameter.
func TopHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	period := c.Param("period")
	state := app.Sessions.Catalog(sessionID(app, c))
	state.SetSearch("")

	snap, err := app.Catalog.FetchRanked(ctx, state, period)
	if err != nil {
		section := app.newSection(state, snap)
		section.Title = catalog.RankedTitle(period)
		section.View = string(catalog.ViewRanked)
		section.Error = fmt.Sprintf("Error loading %s games", period)
		app.renderSection(c, section)
		return
	}
	app.renderSection(c, app.listSection(state, snap))
}

// ReviewsHandler lists reviews for the configured game. The catalog snapshot
// is left as it is.
func ReviewsHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	state := app.Sessions.Catalog(sessionID(app, c))
	cfg := app.Config.Catalog

	section := app.newSection(state, catalog.Snapshot{
		View:  catalog.ViewReviews,
		Title: catalog.TitleFor(catalog.ViewReviews, ""),
	})
	page, err := app.Catalog.Reviews(ctx, cfg.ReviewsGameID, cfg.ReviewsPageSize)
	if err != nil || len(page.Reviews) == 0 {
		section.ReviewsError = true
		app.renderSection(c, section)
		return
	}
	section.Reviews = catalog.BuildReviewCards(page.Reviews, cfg.ReviewPreviewChars)
	app.renderSection(c, section)
}
