// Package session keeps per-browser state in memory, keyed by the
// session_id cookie.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/samber/lo"

	auth "github.com/CodeAndHammer/gamescope/internal/auth"
	catalog "github.com/CodeAndHammer/gamescope/internal/catalog"
	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

// Entry is everything the server remembers about one browser.
type Entry struct {
	Catalog    *catalog.State
	Auth       models.AuthSession
	HasAuth    bool
	Status     auth.Status
	Display    models.UserDisplay
	Verifier   string
	LastAccess time.Time
}

type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry), now: time.Now}
}

// GetOrCreateSession returns the browser's session id, issuing a new cookie
// when none (or a malformed one) was sent.
func GetOrCreateSession(c *gin.Context, maxAge time.Duration, secure bool) string {
	sessionID, err := c.Cookie(constants.SessionCookieName)
	if err == nil {
		_, err = uuid.Parse(sessionID)
	}
	if err != nil {
		sessionID = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(constants.SessionCookieName, sessionID, int(maxAge.Seconds()), "/", "", secure, true)
		util.LogInfo("Created new session: %s", sessionID)
	}
	return sessionID
}

// entry returns the entry for id, creating it if needed. Callers hold s.mu.
func (s *Store) entry(id string) *Entry {
	e, ok := s.entries[id]
	if !ok {
		e = &Entry{Catalog: catalog.NewState(), Status: auth.StatusUnauthenticated}
		s.entries[id] = e
	}
	e.LastAccess = s.now()
	return e
}

// Catalog returns the browser's catalog state.
func (s *Store) Catalog(id string) *catalog.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry(id).Catalog
}

func (s *Store) Display(id string) models.UserDisplay {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		return e.Display
	}
	return models.UserDisplay{}
}

func (s *Store) SetDisplay(id string, display models.UserDisplay) {
	s.mu.Lock()
	s.entry(id).Display = display
	s.mu.Unlock()
}

func (s *Store) LoadAuth(id string) (models.AuthSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || !e.HasAuth {
		return models.AuthSession{}, false
	}
	return e.Auth, true
}

func (s *Store) SaveAuth(id string, session models.AuthSession) {
	s.mu.Lock()
	e := s.entry(id)
	e.Auth = session
	e.HasAuth = true
	s.mu.Unlock()
}

func (s *Store) ClearAuth(id string) {
	s.mu.Lock()
	e := s.entry(id)
	e.Auth = models.AuthSession{}
	e.HasAuth = false
	s.mu.Unlock()
}

func (s *Store) SetAuthStatus(id string, status auth.Status) {
	s.mu.Lock()
	s.entry(id).Status = status
	s.mu.Unlock()
}

func (s *Store) AuthStatus(id string) auth.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		return e.Status
	}
	return auth.StatusUnauthenticated
}

func (s *Store) SavePKCE(id, verifier string) {
	s.mu.Lock()
	s.entry(id).Verifier = verifier
	s.mu.Unlock()
}

// TakePKCE returns the stored verifier and forgets it.
func (s *Store) TakePKCE(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return ""
	}
	v := e.Verifier
	e.Verifier = ""
	return v
}

// ApplyAuthEvent keeps the display state in step with auth state changes. It
// is registered with auth.Manager.OnAuthStateChange.
func (s *Store) ApplyAuthEvent(id string, event auth.Event, session *models.AuthSession) {
	if event == auth.EventSignedOut || session == nil {
		s.SetDisplay(id, models.UserDisplay{})
		return
	}
	s.SetDisplay(id, auth.DisplayFor(session.User))
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Authenticated counts sessions currently holding a provider session.
func (s *Store) Authenticated() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.CountBy(lo.Values(s.entries), func(e *Entry) bool { return e.HasAuth })
}

// CleanupExpired drops entries idle for longer than ttl and reports how many
// were removed.
func (s *Store) CleanupExpired(ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-ttl)
	removed := 0
	for id, e := range s.entries {
		if e.LastAccess.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	if removed > 0 {
		util.LogInfo("Cleaned up %d stale sessions", removed)
	}
	return removed
}

// StartCleanup runs CleanupExpired every interval until ctx is done.
func (s *Store) StartCleanup(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ttl)
			}
		}
	}()
	util.LogInfo("Started session cleanup goroutine")
}
