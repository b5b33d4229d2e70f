// Package auth wraps the hosted auth provider: it performs the provider calls,
// tracks each browser's auth status, and publishes auth state changes.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	models "github.com/CodeAndHammer/gamescope/internal/models"
	util "github.com/CodeAndHammer/gamescope/internal/util"
)

var (
	ErrNoSession       = errors.New("no active session")
	ErrRefreshFailed   = errors.New("session refresh failed")
	ErrNotConfirmed    = errors.New("sign out not confirmed")
	ErrMissingVerifier = errors.New("oauth flow was not started from this browser")
)

type Event string

const (
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
)

type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticated   Status = "authenticated"
	StatusRefreshing      Status = "refreshing"
)

// Provider is the subset of the hosted auth API the manager uses.
type Provider interface {
	SignUp(ctx context.Context, email, password, name string) (models.AuthSession, models.AuthUser, error)
	SignInWithPassword(ctx context.Context, email, password string) (models.AuthSession, error)
	RefreshSession(ctx context.Context, refreshToken string) (models.AuthSession, error)
	ExchangeCode(ctx context.Context, code, verifier string) (models.AuthSession, error)
	SignOut(ctx context.Context, accessToken string) error
	AuthorizeURL(provider, redirectTo, codeChallenge string) string
}

// Store keeps the per-browser auth data.
type Store interface {
	LoadAuth(sessionID string) (models.AuthSession, bool)
	SaveAuth(sessionID string, session models.AuthSession)
	ClearAuth(sessionID string)
	SetAuthStatus(sessionID string, status Status)
	AuthStatus(sessionID string) Status
	SavePKCE(sessionID, verifier string)
	TakePKCE(sessionID string) string
}

// Listener receives auth state changes. session is nil for EventSignedOut.
type Listener func(sessionID string, event Event, session *models.AuthSession)

type EventRecorder interface {
	RecordAuthEvent(event string)
}

type Manager struct {
	provider Provider
	store    Store
	metrics  EventRecorder
	now      func() time.Time

	mu        sync.RWMutex
	listeners map[int]Listener
	nextID    int
}

func NewManager(provider Provider, store Store, metrics EventRecorder) *Manager {
	if provider == nil || store == nil {
		panic("auth: provider and store must not be nil")
	}
	return &Manager{
		provider:  provider,
		store:     store,
		metrics:   metrics,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
}

// OnAuthStateChange registers l and returns a function that removes it.
func (m *Manager) OnAuthStateChange(l Listener) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// CheckSession runs on every protected page load. An expired session is
// refreshed; anything else that is not a live session is an error and the
// caller must send the browser to the login page.
func (m *Manager) CheckSession(ctx context.Context, sessionID string) (models.AuthSession, error) {
	session, ok := m.store.LoadAuth(sessionID)
	if !ok || !session.Valid() {
		m.store.SetAuthStatus(sessionID, StatusUnauthenticated)
		return models.AuthSession{}, ErrNoSession
	}
	if session.Expired(m.now()) {
		util.LogInfoCtx(ctx, "Session token expired, refreshing")
		return m.Refresh(ctx, sessionID)
	}
	m.store.SetAuthStatus(sessionID, StatusAuthenticated)
	return session, nil
}

func (m *Manager) Refresh(ctx context.Context, sessionID string) (models.AuthSession, error) {
	current, ok := m.store.LoadAuth(sessionID)
	if !ok || current.RefreshToken == "" {
		m.store.SetAuthStatus(sessionID, StatusUnauthenticated)
		return models.AuthSession{}, ErrNoSession
	}
	m.store.SetAuthStatus(sessionID, StatusRefreshing)
	session, err := m.provider.RefreshSession(ctx, current.RefreshToken)
	if err != nil {
		util.LogWarnCtx(ctx, "Session refresh failed: %v", err)
		m.store.ClearAuth(sessionID)
		m.store.SetAuthStatus(sessionID, StatusUnauthenticated)
		return models.AuthSession{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	m.establish(sessionID, session, EventTokenRefreshed)
	return session, nil
}

func (m *Manager) SignIn(ctx context.Context, sessionID string, form SignInForm) (models.AuthSession, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return models.AuthSession{}, err
	}
	util.LogInfoCtx(ctx, "Starting sign in for %s", form.Email)
	session, err := m.provider.SignInWithPassword(ctx, form.Email, form.Password)
	if err != nil {
		util.LogWarnCtx(ctx, "Sign in failed for %s: %v", form.Email, err)
		return models.AuthSession{}, err
	}
	m.establish(sessionID, session, EventSignedIn)
	return session, nil
}

// SignUp registers a user. It reports whether the provider signed the user in
// right away; otherwise an email confirmation is pending.
func (m *Manager) SignUp(ctx context.Context, sessionID string, form SignUpForm) (bool, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return false, err
	}
	session, user, err := m.provider.SignUp(ctx, form.Email, form.Password, form.Name)
	if err != nil {
		util.LogWarnCtx(ctx, "Sign up failed for %s: %v", form.Email, err)
		return false, err
	}
	util.LogInfoCtx(ctx, "Registered user %s", user.ID)
	if !session.Valid() {
		return false, nil
	}
	m.establish(sessionID, session, EventSignedIn)
	return true, nil
}

// BeginOAuth returns the provider URL that starts an OAuth sign-in.
func (m *Manager) BeginOAuth(sessionID, provider, redirectTo string) (string, error) {
	verifier, challenge, err := NewPKCE()
	if err != nil {
		return "", err
	}
	m.store.SavePKCE(sessionID, verifier)
	return m.provider.AuthorizeURL(provider, redirectTo, challenge), nil
}

func (m *Manager) CompleteOAuth(ctx context.Context, sessionID, code string) (models.AuthSession, error) {
	verifier := m.store.TakePKCE(sessionID)
	if verifier == "" {
		return models.AuthSession{}, ErrMissingVerifier
	}
	session, err := m.provider.ExchangeCode(ctx, code, verifier)
	if err != nil {
		util.LogWarnCtx(ctx, "OAuth code exchange failed: %v", err)
		return models.AuthSession{}, err
	}
	m.establish(sessionID, session, EventSignedIn)
	return session, nil
}

// SignOut revokes the session with the provider. Nothing is sent unless
// confirmed is true.
func (m *Manager) SignOut(ctx context.Context, sessionID string, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	if session, ok := m.store.LoadAuth(sessionID); ok && session.AccessToken != "" {
		if err := m.provider.SignOut(ctx, session.AccessToken); err != nil {
			util.LogWarnCtx(ctx, "Sign out failed: %v", err)
			return err
		}
	}
	m.store.ClearAuth(sessionID)
	m.store.SetAuthStatus(sessionID, StatusUnauthenticated)
	m.emit(sessionID, EventSignedOut, nil)
	return nil
}

func (m *Manager) establish(sessionID string, session models.AuthSession, event Event) {
	m.store.SaveAuth(sessionID, session)
	m.store.SetAuthStatus(sessionID, StatusAuthenticated)
	m.emit(sessionID, event, &session)
}

func (m *Manager) emit(sessionID string, event Event, session *models.AuthSession) {
	util.LogInfo("Auth state change: %s", event)
	if m.metrics != nil {
		m.metrics.RecordAuthEvent(string(event))
	}
	m.mu.RLock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.RUnlock()
	for _, l := range listeners {
		l(sessionID, event, session)
	}
}

// DisplayFor derives what the page shows for a user.
func DisplayFor(user models.AuthUser) models.UserDisplay {
	name := user.Metadata.Name
	if name == "" {
		name, _, _ = strings.Cut(user.Email, "@")
	}
	avatar := user.Metadata.AvatarURL
	if avatar == "" {
		avatar = user.Metadata.Picture
	}
	return models.UserDisplay{
		Authenticated: true,
		Name:          name,
		Email:         user.Email,
		Avatar:        avatar,
	}
}

// Session returns the stored provider session for a browser.
func (m *Manager) Session(sessionID string) (models.AuthSession, bool) {
	return m.store.LoadAuth(sessionID)
}
