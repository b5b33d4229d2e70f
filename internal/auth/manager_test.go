package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
)

type memoryStore struct {
	mu       sync.Mutex
	sessions map[string]models.AuthSession
	status   map[string]Status
	pkce     map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		sessions: make(map[string]models.AuthSession),
		status:   make(map[string]Status),
		pkce:     make(map[string]string),
	}
}

func (s *memoryStore) LoadAuth(id string) (models.AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.sessions[id]
	return v, ok
}

func (s *memoryStore) SaveAuth(id string, session models.AuthSession) {
	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()
}

func (s *memoryStore) ClearAuth(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *memoryStore) SetAuthStatus(id string, status Status) {
	s.mu.Lock()
	s.status[id] = status
	s.mu.Unlock()
}

func (s *memoryStore) AuthStatus(id string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.status[id]; ok {
		return st
	}
	return StatusUnauthenticated
}

func (s *memoryStore) SavePKCE(id, verifier string) {
	s.mu.Lock()
	s.pkce[id] = verifier
	s.mu.Unlock()
}

func (s *memoryStore) TakePKCE(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.pkce[id]
	delete(s.pkce, id)
	return v
}

type fakeProvider struct {
	session    models.AuthSession
	err        error
	refreshErr error
	signOuts   int
	refreshes  int
	verifier   string
}

func (f *fakeProvider) SignUp(context.Context, string, string, string) (models.AuthSession, models.AuthUser, error) {
	return f.session, f.session.User, f.err
}

func (f *fakeProvider) SignInWithPassword(context.Context, string, string) (models.AuthSession, error) {
	return f.session, f.err
}

func (f *fakeProvider) RefreshSession(context.Context, string) (models.AuthSession, error) {
	f.refreshes++
	if f.refreshErr != nil {
		return models.AuthSession{}, f.refreshErr
	}
	refreshed := f.session
	refreshed.AccessToken = "refreshed"
	return refreshed, nil
}

func (f *fakeProvider) ExchangeCode(_ context.Context, _ string, verifier string) (models.AuthSession, error) {
	f.verifier = verifier
	return f.session, f.err
}

func (f *fakeProvider) SignOut(context.Context, string) error {
	f.signOuts++
	return f.err
}

func (f *fakeProvider) AuthorizeURL(provider, redirectTo, challenge string) string {
	return "https://auth.example/authorize?provider=" + provider + "&challenge=" + challenge
}

type recordedEvent struct {
	id    string
	event Event
	valid bool
}

func liveSession() models.AuthSession {
	return models.AuthSession{
		AccessToken:  "at",
		RefreshToken: "rt",
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         models.AuthUser{ID: "u1", Email: "ana@example.com"},
	}
}

func newTestManager(p *fakeProvider) (*Manager, *memoryStore, *[]recordedEvent) {
	store := newMemoryStore()
	m := NewManager(p, store, nil)
	events := &[]recordedEvent{}
	m.OnAuthStateChange(func(id string, e Event, s *models.AuthSession) {
		*events = append(*events, recordedEvent{id: id, event: e, valid: s != nil && s.Valid()})
	})
	return m, store, events
}

func TestCheckSessionWithoutSession(t *testing.T) {
	m, store, events := newTestManager(&fakeProvider{})
	_, err := m.CheckSession(context.Background(), "browser")
	if !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if store.AuthStatus("browser") != StatusUnauthenticated {
		t.Errorf("status = %s", store.AuthStatus("browser"))
	}
	if len(*events) != 0 {
		t.Errorf("no events expected, got %v", *events)
	}
}

func TestSignInEmitsSignedIn(t *testing.T) {
	p := &fakeProvider{session: liveSession()}
	m, store, events := newTestManager(p)

	_, err := m.SignIn(context.Background(), "browser", SignInForm{Email: " ana@example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.LoadAuth("browser"); !ok {
		t.Error("session should be stored")
	}
	if store.AuthStatus("browser") != StatusAuthenticated {
		t.Errorf("status = %s", store.AuthStatus("browser"))
	}
	if len(*events) != 1 || (*events)[0].event != EventSignedIn || !(*events)[0].valid {
		t.Errorf("unexpected events: %v", *events)
	}
	if _, err := m.CheckSession(context.Background(), "browser"); err != nil {
		t.Errorf("check after sign in failed: %v", err)
	}
}

func TestSignInValidation(t *testing.T) {
	p := &fakeProvider{session: liveSession()}
	m, _, events := newTestManager(p)
	cases := []struct {
		form SignInForm
		code string
	}{
		{SignInForm{Email: "", Password: "secret1"}, constants.ErrorCodeMissingFields},
		{SignInForm{Email: "not-an-email", Password: "secret1"}, constants.ErrorCodeInvalidEmail},
		{SignInForm{Email: "ana@example.com", Password: "12345"}, constants.ErrorCodePasswordTooShort},
	}
	for _, c := range cases {
		_, err := m.SignIn(context.Background(), "browser", c.form)
		if err == nil || err.Error() != c.code {
			t.Errorf("SignIn(%+v) error = %v, want %s", c.form, err, c.code)
		}
	}
	if len(*events) != 0 {
		t.Errorf("validation failures must not emit events: %v", *events)
	}
}

func TestSignUpValidationAndPendingConfirmation(t *testing.T) {
	m, _, events := newTestManager(&fakeProvider{})
	form := SignUpForm{Name: "Ana", Email: "ana@example.com", Password: "secret1", Confirm: "secret2"}
	if _, err := m.SignUp(context.Background(), "browser", form); err == nil || err.Error() != constants.ErrorCodePasswordMismatch {
		t.Errorf("expected mismatch, got %v", err)
	}
	form.Confirm = "secret1"
	signedIn, err := m.SignUp(context.Background(), "browser", form)
	if err != nil || signedIn {
		t.Errorf("expected pending confirmation, got signedIn=%v err=%v", signedIn, err)
	}
	if len(*events) != 0 {
		t.Errorf("unexpected events: %v", *events)
	}
}

func TestExpiredSessionIsRefreshed(t *testing.T) {
	p := &fakeProvider{session: liveSession()}
	m, store, events := newTestManager(p)
	expired := liveSession()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	store.SaveAuth("browser", expired)

	session, err := m.CheckSession(context.Background(), "browser")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.AccessToken != "refreshed" || p.refreshes != 1 {
		t.Errorf("expected refresh, got %+v", session)
	}
	if len(*events) != 1 || (*events)[0].event != EventTokenRefreshed {
		t.Errorf("unexpected events: %v", *events)
	}
	if store.AuthStatus("browser") != StatusAuthenticated {
		t.Errorf("status = %s", store.AuthStatus("browser"))
	}
}

func TestRefreshFailureClearsSession(t *testing.T) {
	p := &fakeProvider{refreshErr: errors.New("invalid refresh token")}
	m, store, _ := newTestManager(p)
	expired := liveSession()
	expired.ExpiresAt = time.Now().Add(-time.Minute)
	store.SaveAuth("browser", expired)

	_, err := m.CheckSession(context.Background(), "browser")
	if !errors.Is(err, ErrRefreshFailed) {
		t.Fatalf("expected ErrRefreshFailed, got %v", err)
	}
	if _, ok := store.LoadAuth("browser"); ok {
		t.Error("failed refresh should clear the session")
	}
	if store.AuthStatus("browser") != StatusUnauthenticated {
		t.Errorf("status = %s", store.AuthStatus("browser"))
	}
}

func TestSignOutRequiresConfirmation(t *testing.T) {
	p := &fakeProvider{session: liveSession()}
	m, store, events := newTestManager(p)
	store.SaveAuth("browser", liveSession())

	if err := m.SignOut(context.Background(), "browser", false); !errors.Is(err, ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if p.signOuts != 0 {
		t.Error("provider must not be called without confirmation")
	}

	if err := m.SignOut(context.Background(), "browser", true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.signOuts != 1 {
		t.Errorf("signOuts = %d", p.signOuts)
	}
	if _, ok := store.LoadAuth("browser"); ok {
		t.Error("session should be cleared")
	}
	if len(*events) != 1 || (*events)[0].event != EventSignedOut || (*events)[0].valid {
		t.Errorf("unexpected events: %v", *events)
	}
}

func TestOAuthFlow(t *testing.T) {
	p := &fakeProvider{session: liveSession()}
	m, _, events := newTestManager(p)

	if _, err := m.CompleteOAuth(context.Background(), "browser", "code"); !errors.Is(err, ErrMissingVerifier) {
		t.Fatalf("expected ErrMissingVerifier, got %v", err)
	}

	target, err := m.BeginOAuth("browser", "google", "http://localhost/auth/callback")
	if err != nil {
		t.Fatal(err)
	}
	if target == "" {
		t.Fatal("expected authorize url")
	}
	if _, err := m.CompleteOAuth(context.Background(), "browser", "code"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.verifier == "" {
		t.Error("verifier should be sent with the code")
	}
	if len(*events) != 1 || (*events)[0].event != EventSignedIn {
		t.Errorf("unexpected events: %v", *events)
	}
	if _, err := m.CompleteOAuth(context.Background(), "browser", "code"); !errors.Is(err, ErrMissingVerifier) {
		t.Error("verifier must be single use")
	}
}

func TestUnsubscribe(t *testing.T) {
	p := &fakeProvider{session: liveSession()}
	store := newMemoryStore()
	m := NewManager(p, store, nil)
	calls := 0
	stop := m.OnAuthStateChange(func(string, Event, *models.AuthSession) { calls++ })
	stop()
	_, _ = m.SignIn(context.Background(), "b", SignInForm{Email: "ana@example.com", Password: "secret1"})
	if calls != 0 {
		t.Errorf("listener called %d times after unsubscribe", calls)
	}
}

func TestDisplayFor(t *testing.T) {
	d := DisplayFor(models.AuthUser{Email: "ana@example.com", Metadata: models.UserMetadata{Picture: "http://pic"}})
	if d.Name != "ana" || d.Avatar != "http://pic" || !d.ShowProtected() || d.ShowGuest() {
		t.Errorf("unexpected display: %+v", d)
	}
	d = DisplayFor(models.AuthUser{Email: "ana@example.com", Metadata: models.UserMetadata{Name: "Ana", AvatarURL: "http://a", Picture: "http://pic"}})
	if d.Name != "Ana" || d.Avatar != "http://a" {
		t.Errorf("unexpected display: %+v", d)
	}
}
