// Package rawg talks to the RAWG game catalog API and maps its responses
// into the app's models.
package rawg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	models "github.com/CodeAndHammer/gamescope/internal/models"
)

const (
	serviceName        = "rawg"
	defaultBaseURL     = "https://api.rawg.io/api"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Recorder receives one observation per upstream call.
type Recorder interface {
	RecordUpstream(service, endpoint string, status int, duration time.Duration)
}

type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Metrics    Recorder
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient httpDoer
	metrics    Recorder
}

func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		apiKey:     cfg.APIKey,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
		metrics:    cfg.Metrics,
	}
}

// ListGames fetches one page of the catalog.
func (c *Client) ListGames(ctx context.Context, q models.GameQuery) (models.GamePage, error) {
	params := url.Values{}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if dates := q.Dates(); dates != "" {
		params.Set("dates", dates)
	}
	if q.Ordering != "" {
		params.Set("ordering", q.Ordering)
	}
	if q.Rating != "" {
		params.Set("rating", q.Rating)
	}

	var payload gamesResponse
	if err := c.get(ctx, "games", "/games", params, &payload); err != nil {
		return models.GamePage{}, err
	}
	return models.GamePage{
		Games: mapGames(payload.Results),
		Count: payload.Count,
		Next:  deref(payload.Next),
	}, nil
}

func (c *Client) GameDetail(ctx context.Context, id int) (models.Game, error) {
	var payload gameResponse
	if err := c.get(ctx, "detail", "/games/"+strconv.Itoa(id), nil, &payload); err != nil {
		return models.Game{}, err
	}
	return mapGame(payload), nil
}

func (c *Client) Screenshots(ctx context.Context, id int) ([]models.Screenshot, error) {
	var payload screenshotsResponse
	if err := c.get(ctx, "screenshots", "/games/"+strconv.Itoa(id)+"/screenshots", nil, &payload); err != nil {
		return nil, err
	}
	return mapScreenshots(payload.Results), nil
}

func (c *Client) Reviews(ctx context.Context, id, page, pageSize int) (models.ReviewPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(max(page, 1)))
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}
	var payload reviewsResponse
	if err := c.get(ctx, "reviews", "/games/"+strconv.Itoa(id)+"/reviews", params, &payload); err != nil {
		return models.ReviewPage{}, err
	}
	reviews := make([]models.Review, 0, len(payload.Results))
	for _, r := range payload.Results {
		reviews = append(reviews, mapReview(r))
	}
	return models.ReviewPage{
		Reviews:    reviews,
		TotalCount: payload.Count,
		NextPage:   deref(payload.Next),
	}, nil
}

func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	req, err := c.buildRequest(ctx, path, params)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(endpoint, 0, start)
		return fmt.Errorf("rawg %s: %w", endpoint, err)
	}
	defer resp.Body.Close()
	c.record(endpoint, resp.StatusCode, start)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("rawg %s: decode response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) buildRequest(ctx context.Context, path string, params url.Values) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) record(endpoint string, status int, start time.Time) {
	if c.metrics != nil {
		c.metrics.RecordUpstream(serviceName, endpoint, status, time.Since(start))
	}
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

func normalizeBaseURL(raw string) string {
	if raw == "" {
		raw = defaultBaseURL
	}
	return strings.TrimSuffix(raw, "/")
}
