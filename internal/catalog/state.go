package catalog

import (
	"strings"
	"sync"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
)

type ViewKind string

const (
	ViewCatalog ViewKind = "catalog"
	ViewRanked  ViewKind = "ranked"
	ViewReviews ViewKind = "reviews"
)

// Snapshot is the most recently fetched, unfiltered game list. It is replaced
// wholesale by every applied fetch.
type Snapshot struct {
	Games     []models.Game
	Platforms []string
	View      ViewKind
	Period    string
	Title     string
	PageSize  int
}

func NewSnapshot(games []models.Game, view ViewKind, period string, pageSize int) Snapshot {
	return Snapshot{
		Games:     games,
		Platforms: PlatformNames(games),
		View:      view,
		Period:    period,
		Title:     TitleFor(view, period),
		PageSize:  pageSize,
	}
}

// PlatformNames flattens the platform names of every game, keeping duplicates.
func PlatformNames(games []models.Game) []string {
	return lo.FlatMap(games, func(g models.Game, _ int) []string { return g.Platforms })
}

// State is one browser's catalog state. Fetches take a generation from Begin
// and hand it back to Apply; only the latest generation is applied.
type State struct {
	mu         sync.RWMutex
	snapshot   Snapshot
	generation uint64
	search     string
	grid       int
}

func NewState() *State {
	return &State{
		grid:     constants.GridFourColumns,
		snapshot: Snapshot{View: ViewCatalog, Title: constants.DefaultTitle},
	}
}

// Begin starts a fetch and returns its generation.
func (s *State) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// Apply replaces the snapshot if gen is still the latest generation. It
// reports whether the snapshot was replaced.
func (s *State) Apply(gen uint64, snap Snapshot) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.snapshot = snap
	return true
}

func (s *State) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.PageSize > 0
}

// SetSearch stores the search text without surrounding whitespace, so a
// blank query behaves like no query.
func (s *State) SetSearch(text string) {
	s.mu.Lock()
	s.search = strings.TrimSpace(text)
	s.mu.Unlock()
}

func (s *State) Search() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.search
}

// Visible is the displayed list: the snapshot filtered by the current search.
func (s *State) Visible() []models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filter(s.snapshot.Games, s.search)
}

// SetGrid accepts 1 or 4 columns and ignores anything else.
func (s *State) SetGrid(columns int) bool {
	if columns != constants.GridOneColumn && columns != constants.GridFourColumns {
		return false
	}
	s.mu.Lock()
	s.grid = columns
	s.mu.Unlock()
	return true
}

func (s *State) Grid() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.grid
}
