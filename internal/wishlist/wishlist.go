// Package wishlist records games users want to remember. Entries are only
// ever appended; adding the same game twice stores it twice.
package wishlist

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoOwner = errors.New("wishlist: owner is required")

type Entry struct {
	Owner   string
	GameID  int
	AddedAt time.Time
}

type Store interface {
	Add(ctx context.Context, owner string, gameID int) error
	List(ctx context.Context, owner string) ([]Entry, error)
}

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]Entry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]Entry), now: time.Now}
}

func (s *MemoryStore) Add(_ context.Context, owner string, gameID int) error {
	if owner == "" {
		return ErrNoOwner
	}
	s.mu.Lock()
	s.entries[owner] = append(s.entries[owner], Entry{Owner: owner, GameID: gameID, AddedAt: s.now().UTC()})
	s.mu.Unlock()
	return nil
}

// List returns the owner's entries oldest first.
func (s *MemoryStore) List(_ context.Context, owner string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry, len(s.entries[owner]))
	copy(out, s.entries[owner])
	return out, nil
}
