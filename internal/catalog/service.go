package catalog

import (
	"context"
	"time"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

// Source is the upstream catalog API.
type Source interface {
	ListGames(ctx context.Context, q models.GameQuery) (models.GamePage, error)
	GameDetail(ctx context.Context, id int) (models.Game, error)
	Screenshots(ctx context.Context, id int) ([]models.Screenshot, error)
	Reviews(ctx context.Context, id, page, pageSize int) (models.ReviewPage, error)
}

type StaleRecorder interface {
	RecordStale(view string)
}

type Options struct {
	PageSize int
	PageStep int
	Metrics  StaleRecorder
}

type Service struct {
	source   Source
	pageSize int
	pageStep int
	metrics  StaleRecorder
	now      func() time.Time
}

func NewService(source Source, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = constants.DefaultPageSize
	}
	if opts.PageStep <= 0 {
		opts.PageStep = constants.DefaultPageStep
	}
	return &Service{
		source:   source,
		pageSize: opts.PageSize,
		pageStep: opts.PageStep,
		metrics:  opts.Metrics,
		now:      time.Now,
	}
}

func (s *Service) PageSize() int { return s.pageSize }

// FetchCatalog loads pageSize games into state. On failure the previous
// snapshot is left untouched and the error is returned. If a newer fetch
// started meanwhile, the response is dropped and the current snapshot is
// returned.
func (s *Service) FetchCatalog(ctx context.Context, state *State, pageSize int) (Snapshot, error) {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	gen := state.Begin()
	page, err := s.source.ListGames(ctx, models.GameQuery{PageSize: pageSize})
	if err != nil {
		util.LogErrorCtx(ctx, "Catalog fetch failed (page_size=%d): %v", pageSize, err)
		return state.Snapshot(), err
	}
	snap := NewSnapshot(page.Games, ViewCatalog, "", pageSize)
	return s.apply(ctx, state, gen, snap), nil
}

// LoadMore re-fetches the catalog with one more page step than is loaded.
func (s *Service) LoadMore(ctx context.Context, state *State) (Snapshot, error) {
	current := len(state.Snapshot().Games)
	return s.FetchCatalog(ctx, state, current+s.pageStep)
}

// FetchRanked loads a ranking into state, replacing the snapshot so search
// runs over the ranked list.
func (s *Service) FetchRanked(ctx context.Context, state *State, period string) (Snapshot, error) {
	gen := state.Begin()
	query := RankedQuery(period, s.pageSize, s.now())
	util.LogInfoCtx(ctx, "Loading %s games (ordering=%s dates=%s)", period, query.Ordering, query.Dates())
	page, err := s.source.ListGames(ctx, query)
	if err != nil {
		util.LogErrorCtx(ctx, "Ranked fetch failed (period=%s): %v", period, err)
		return state.Snapshot(), err
	}
	snap := NewSnapshot(page.Games, ViewRanked, period, s.pageSize)
	return s.apply(ctx, state, gen, snap), nil
}

func (s *Service) Detail(ctx context.Context, id int) (models.Game, error) {
	game, err := s.source.GameDetail(ctx, id)
	if err != nil {
		util.LogErrorCtx(ctx, "Game detail fetch failed (id=%d): %v", id, err)
	}
	return game, err
}

func (s *Service) Screenshots(ctx context.Context, id int) ([]models.Screenshot, error) {
	shots, err := s.source.Screenshots(ctx, id)
	if err != nil {
		util.LogErrorCtx(ctx, "Screenshots fetch failed (id=%d): %v", id, err)
	}
	return shots, err
}

func (s *Service) Reviews(ctx context.Context, gameID, pageSize int) (models.ReviewPage, error) {
	page, err := s.source.Reviews(ctx, gameID, 1, pageSize)
	if err != nil {
		util.LogErrorCtx(ctx, "Reviews fetch failed (game=%d): %v", gameID, err)
	}
	return page, err
}

func (s *Service) apply(ctx context.Context, state *State, gen uint64, snap Snapshot) Snapshot {
	if !state.Apply(gen, snap) {
		util.LogWarnCtx(ctx, "Discarding stale %s response (generation %d, latest %d)", snap.View, gen, state.Generation())
		if s.metrics != nil {
			s.metrics.RecordStale(string(snap.View))
		}
		return state.Snapshot()
	}
	util.LogInfoCtx(ctx, "Loaded %d games into %s view", len(snap.Games), snap.View)
	return snap
}
