package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	catalog "github.com/CodeAndHammer/gamescope/internal/catalog"
	rawg "github.com/CodeAndHammer/gamescope/internal/rawg"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

// GameModalHandler returns the loading placeholder; it requests the detail
// body as soon as it is swapped in.
func GameModalHandler(app *App, c *gin.Context) {
	id, ok := gameID(c)
	if !ok {
		c.HTML(http.StatusOK, "game-detail-error", nil)
		return
	}
	c.HTML(http.StatusOK, "game-modal", gin.H{"id": id})
}

// GameDetailHandler renders the detail body. Failures render the terminal
// error body with 200 so htmx swaps it in.
func GameDetailHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := gameID(c)
	if !ok {
		util.LogWarnCtx(ctx, "Invalid game id %q", c.Param("id"))
		c.HTML(http.StatusOK, "game-detail-error", nil)
		return
	}
	game, err := app.Catalog.Detail(ctx, id)
	if err != nil {
		if rawg.IsNotFound(err) {
			util.LogInfoCtx(ctx, "Game %d not found", id)
		}
		c.HTML(http.StatusOK, "game-detail-error", nil)
		return
	}
	c.HTML(http.StatusOK, "game-detail", catalog.BuildDetail(game))
}

func ScreenshotsHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := gameID(c)
	if !ok {
		c.HTML(http.StatusOK, "game-detail-error", nil)
		return
	}
	shots, err := app.Catalog.Screenshots(ctx, id)
	c.HTML(http.StatusOK, "screenshots", gin.H{
		"id":          id,
		"name":        c.Query("name"),
		"screenshots": shots,
		"error":       err != nil,
	})
}

// WishlistHandler appends the game to the signed-in user's wishlist.
func WishlistHandler(app *App, c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := gameID(c)
	if !ok {
		c.HTML(http.StatusOK, "wishlist-toast", gin.H{"message": "Unknown game", "error": true})
		return
	}
	owner := ""
	if s, found := app.Auth.Session(sessionID(app, c)); found {
		owner = s.User.ID
	}
	if err := app.Wishlist.Add(ctx, owner, id); err != nil {
		util.LogErrorCtx(ctx, "Failed to add game %d to wishlist: %v", id, err)
		c.HTML(http.StatusOK, "wishlist-toast", gin.H{"message": "Could not add game to wishlist", "error": true})
		return
	}
	util.LogInfoCtx(ctx, "Added game %d to wishlist of %s", id, owner)
	c.HTML(http.StatusOK, "wishlist-toast", gin.H{"message": "Game added to wishlist!"})
}

