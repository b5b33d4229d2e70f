package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(ClientConfig{URL: srv.URL + "/", AnonKey: "anon"})
}

func TestSignInWithPassword(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/token" || r.URL.Query().Get("grant_type") != "password" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
			t.Errorf("missing api key headers")
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@b.co" || body["password"] != "secret1" {
			t.Errorf("unexpected body: %v", body)
		}
		_, _ = io.WriteString(w, `{"access_token":"at","refresh_token":"rt","expires_at":1700000000,
			"user":{"id":"u1","email":"a@b.co","user_metadata":{"name":"Ana","picture":"http://p"}}}`)
	})

	session, err := client.SignInWithPassword(context.Background(), "a@b.co", "secret1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.AccessToken != "at" || session.RefreshToken != "rt" || session.User.ID != "u1" {
		t.Errorf("unexpected session: %+v", session)
	}
	if !session.ExpiresAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ExpiresAt = %v", session.ExpiresAt)
	}
	if session.User.Metadata.Name != "Ana" || session.User.Metadata.Picture != "http://p" {
		t.Errorf("unexpected metadata: %+v", session.User.Metadata)
	}
}

func TestSignInErrorMessage(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"code":400,"error_code":"invalid_credentials","msg":"Invalid login credentials"}`)
	})

	_, err := client.SignInWithPassword(context.Background(), "a@b.co", "wrong11")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 400 || apiErr.Code != "invalid_credentials" {
		t.Errorf("unexpected error: %+v", apiErr)
	}
	if Message(err) != "Invalid login credentials" {
		t.Errorf("Message = %q", Message(err))
	}
	if Message(errors.New("boom")) == "" {
		t.Error("expected a generic message")
	}
}

func TestSignUpWithoutSession(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Email string            `json:"email"`
			Data  map[string]string `json:"data"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if r.URL.Path != "/auth/v1/signup" || body.Data["name"] != "Ana" {
			t.Errorf("unexpected signup request: %s %+v", r.URL.Path, body)
		}
		_, _ = io.WriteString(w, `{"id":"u2","email":"a@b.co","user_metadata":{"name":"Ana"}}`)
	})

	session, user, err := client.SignUp(context.Background(), "a@b.co", "secret1", "Ana")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Valid() {
		t.Error("expected no session before email confirmation")
	}
	if user.ID != "u2" || user.Metadata.Name != "Ana" {
		t.Errorf("unexpected user: %+v", user)
	}
}

func TestRefreshUsesExpiresIn(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("grant_type") != "refresh_token" {
			t.Errorf("unexpected grant: %s", r.URL.RawQuery)
		}
		_, _ = io.WriteString(w, `{"access_token":"at2","refresh_token":"rt2","expires_in":3600,"user":{"id":"u1"}}`)
	})
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return fixed }

	session, err := client.RefreshSession(context.Background(), "rt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !session.ExpiresAt.Equal(fixed.Add(time.Hour)) {
		t.Errorf("ExpiresAt = %v", session.ExpiresAt)
	}
}

func TestTokenWithoutSessionIsError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	if _, err := client.ExchangeCode(context.Background(), "code", "verifier"); err == nil {
		t.Fatal("expected error for empty token response")
	}
}

func TestSignOutSendsAccessToken(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/logout" || r.Header.Get("Authorization") != "Bearer user-token" {
			t.Errorf("unexpected logout request: %s %s", r.URL.Path, r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusNoContent)
	})
	if err := client.SignOut(context.Background(), "user-token"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAuthorizeURL(t *testing.T) {
	client := NewClient(ClientConfig{URL: "https://x.supabase.co", AnonKey: "anon"})
	raw := client.AuthorizeURL("google", "http://localhost:8080/auth/callback", "challenge")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(u.Path, "/auth/v1/authorize") {
		t.Errorf("path = %s", u.Path)
	}
	q := u.Query()
	if q.Get("provider") != "google" || q.Get("redirect_to") != "http://localhost:8080/auth/callback" {
		t.Errorf("unexpected query: %s", u.RawQuery)
	}
	if q.Get("code_challenge") != "challenge" || q.Get("code_challenge_method") != "s256" {
		t.Errorf("unexpected pkce params: %s", u.RawQuery)
	}
}

func TestPKCE(t *testing.T) {
	verifier, challenge, err := NewPKCE()
	if err != nil {
		t.Fatal(err)
	}
	if len(verifier) < 43 || challenge != Challenge(verifier) || challenge == verifier {
		t.Errorf("unexpected pkce pair %q %q", verifier, challenge)
	}
	// RFC 7636 appendix B.
	if got := Challenge("dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"); got != "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM" {
		t.Errorf("Challenge = %q", got)
	}
}
