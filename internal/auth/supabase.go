package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	models "github.com/CodeAndHammer/gamescope/internal/models"
)

const (
	serviceName    = "supabase"
	defaultTimeout = 10 * time.Second
	maxErrorBody   = 1024
)

// APIError is a non-2xx response from the auth provider.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("auth provider: %s (status=%d, code=%s)", e.Message, e.StatusCode, e.Code)
	}
	return fmt.Sprintf("auth provider: %s (status=%d)", e.Message, e.StatusCode)
}

// Message returns a user-facing message for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return "unexpected error, please try again"
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Recorder interface {
	RecordUpstream(service, endpoint string, status int, duration time.Duration)
}

type ClientConfig struct {
	URL        string
	AnonKey    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    Recorder
}

// Client is a thin client for the Supabase GoTrue REST API.
type Client struct {
	baseURL    string
	anonKey    string
	httpClient httpDoer
	metrics    Recorder
	now        func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	var doer httpDoer = cfg.HTTPClient
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		doer = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/") + "/auth/v1",
		anonKey:    cfg.AnonKey,
		httpClient: doer,
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
}

type tokenResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	ExpiresIn    int64            `json:"expires_in"`
	ExpiresAt    int64            `json:"expires_at"`
	User         *models.AuthUser `json:"user"`

	// Sign-up without auto-confirm returns the bare user at the top level.
	ID       string              `json:"id"`
	Email    string              `json:"email"`
	Metadata models.UserMetadata `json:"user_metadata"`
}

type errorResponse struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// SignUp registers a user. The returned session is empty when the provider
// requires email confirmation first.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (models.AuthSession, models.AuthUser, error) {
	body := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]string{"name": name},
	}
	var resp tokenResponse
	if err := c.do(ctx, "signup", http.MethodPost, "/signup", nil, "", body, &resp); err != nil {
		return models.AuthSession{}, models.AuthUser{}, err
	}
	session := c.toSession(resp)
	user := session.User
	if resp.User == nil {
		user = models.AuthUser{ID: resp.ID, Email: resp.Email, Metadata: resp.Metadata}
	}
	return session, user, nil
}

func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (models.AuthSession, error) {
	return c.token(ctx, "password", map[string]string{"email": email, "password": password})
}

func (c *Client) RefreshSession(ctx context.Context, refreshToken string) (models.AuthSession, error) {
	return c.token(ctx, "refresh_token", map[string]string{"refresh_token": refreshToken})
}

// ExchangeCode completes the OAuth PKCE flow.
func (c *Client) ExchangeCode(ctx context.Context, code, verifier string) (models.AuthSession, error) {
	return c.token(ctx, "pkce", map[string]string{"auth_code": code, "code_verifier": verifier})
}

func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	return c.do(ctx, "logout", http.MethodPost, "/logout", nil, accessToken, nil, nil)
}

// AuthorizeURL is where the browser is sent to start an OAuth sign-in.
func (c *Client) AuthorizeURL(provider, redirectTo, codeChallenge string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	if codeChallenge != "" {
		q.Set("code_challenge", codeChallenge)
		q.Set("code_challenge_method", "s256")
	}
	return c.baseURL + "/authorize?" + q.Encode()
}

func (c *Client) token(ctx context.Context, grant string, body any) (models.AuthSession, error) {
	var resp tokenResponse
	params := url.Values{"grant_type": {grant}}
	if err := c.do(ctx, "token_"+grant, http.MethodPost, "/token", params, "", body, &resp); err != nil {
		return models.AuthSession{}, err
	}
	session := c.toSession(resp)
	if !session.Valid() {
		return models.AuthSession{}, &APIError{StatusCode: http.StatusOK, Message: "provider returned no session"}
	}
	return session, nil
}

func (c *Client) toSession(resp tokenResponse) models.AuthSession {
	session := models.AuthSession{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		session.ExpiresAt = time.Unix(resp.ExpiresAt, 0).UTC()
	case resp.ExpiresIn > 0:
		session.ExpiresAt = c.now().Add(time.Duration(resp.ExpiresIn) * time.Second).UTC()
	}
	if resp.User != nil {
		session.User = *resp.User
	}
	return session
}

func (c *Client) do(ctx context.Context, endpoint, method, path string, params url.Values, bearer string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return err
	}
	req.Header.Set("apikey", c.anonKey)
	if bearer == "" {
		bearer = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+bearer)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, 0, start)
		return fmt.Errorf("auth provider %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.record(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("auth provider %s: decode response: %w", endpoint, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = firstNonEmpty(body.ErrorCode, body.Error)
		apiErr.Message = firstNonEmpty(body.Msg, body.Message, body.ErrorDescription, body.Error)
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}

func (c *Client) record(endpoint string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordUpstream(serviceName, endpoint, status, time.Since(start))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
