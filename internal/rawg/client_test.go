package rawg

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	models "github.com/CodeAndHammer/gamescope/internal/models"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

type upstreamCall struct {
	endpoint string
	status   int
}

type fakeRecorder struct {
	calls []upstreamCall
}

func (f *fakeRecorder) RecordUpstream(_ string, endpoint string, status int, _ time.Duration) {
	f.calls = append(f.calls, upstreamCall{endpoint: endpoint, status: status})
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
}

func newTestClient(rt roundTripperFunc, rec Recorder) *Client {
	return NewClient(Config{
		BaseURL:    "http://example.com/api/",
		APIKey:     "secret",
		HTTPClient: &http.Client{Transport: rt},
		Metrics:    rec,
	})
}

func TestListGamesBuildsQueryAndMapsResults(t *testing.T) {
	var captured *http.Request
	rec := &fakeRecorder{}
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		captured = req
		return jsonResponse(http.StatusOK, `{
			"count": 2,
			"next": "http://example.com/api/games?page=2",
			"results": [
				{"id": 1, "name": "Halo", "released": "2001-11-15", "rating": 4.5,
				 "platforms": [{"platform": {"name": "Xbox"}}]},
				{"id": 2, "name": "Mystery", "background_image": null, "released": null,
				 "platforms": null, "genres": [{"name": ""}, {"name": "Action"}]}
			]
		}`), nil
	}, rec)

	page, err := client.ListGames(context.Background(), models.GameQuery{
		PageSize:  40,
		DateStart: "2024-01-01",
		DateEnd:   "2024-01-31",
		Ordering:  "-rating",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if captured.URL.Path != "/api/games" {
		t.Errorf("path = %s", captured.URL.Path)
	}
	q := captured.URL.Query()
	if q.Get("key") != "secret" || q.Get("page_size") != "40" {
		t.Errorf("unexpected query: %s", captured.URL.RawQuery)
	}
	if q.Get("dates") != "2024-01-01,2024-01-31" || q.Get("ordering") != "-rating" {
		t.Errorf("unexpected query: %s", captured.URL.RawQuery)
	}
	if q.Has("rating") {
		t.Errorf("rating should be omitted: %s", captured.URL.RawQuery)
	}

	if page.Count != 2 || page.Next == "" || len(page.Games) != 2 {
		t.Fatalf("unexpected page: %+v", page)
	}
	halo := page.Games[0]
	if halo.Name != "Halo" || halo.Released != "2001-11-15" || halo.Rating != 4.5 {
		t.Errorf("unexpected game: %+v", halo)
	}
	if len(halo.Platforms) != 1 || halo.Platforms[0] != "Xbox" {
		t.Errorf("unexpected platforms: %v", halo.Platforms)
	}
	mystery := page.Games[1]
	if mystery.HasCover() || mystery.HasReleaseDate() || len(mystery.Platforms) != 0 {
		t.Errorf("expected optional fields to be empty: %+v", mystery)
	}
	if len(mystery.Genres) != 1 || mystery.Genres[0] != "Action" {
		t.Errorf("unexpected genres: %v", mystery.Genres)
	}

	if len(rec.calls) != 1 || rec.calls[0].endpoint != "games" || rec.calls[0].status != http.StatusOK {
		t.Errorf("unexpected metrics: %+v", rec.calls)
	}
}

func TestGameDetailNotFound(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/api/games/99" {
			t.Errorf("path = %s", req.URL.Path)
		}
		return jsonResponse(http.StatusNotFound, `{"detail":"Not found."}`), nil
	}, nil)

	_, err := client.GameDetail(context.Background(), 99)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || !strings.Contains(statusErr.Body, "Not found") {
		t.Errorf("expected body in error, got %v", err)
	}
}

func TestGameDetailMapsOptionalFields(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{
			"id": 5, "name": "Portal", "tba": true, "released": "2030-01-01",
			"developers": [{"name": "Valve"}], "playtime": 4,
			"description_raw": "Think with portals"
		}`), nil
	}, nil)

	game, err := client.GameDetail(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if game.HasReleaseDate() {
		t.Errorf("tba game should not carry a release date, got %q", game.Released)
	}
	if !game.HasPlaytime() || !game.HasDescription() {
		t.Errorf("expected playtime and description: %+v", game)
	}
	if len(game.Developers) != 1 || game.Developers[0] != "Valve" {
		t.Errorf("unexpected developers: %v", game.Developers)
	}
}

func TestTransportErrorIsRecorded(t *testing.T) {
	rec := &fakeRecorder{}
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}, rec)

	if _, err := client.Screenshots(context.Background(), 3); err == nil {
		t.Fatal("expected error")
	}
	if len(rec.calls) != 1 || rec.calls[0].status != 0 {
		t.Errorf("unexpected metrics: %+v", rec.calls)
	}
}

func TestReviewsMapsReactionsOnlyWhenPresent(t *testing.T) {
	client := newTestClient(func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("page") != "1" || req.URL.Query().Get("page_size") != "60" {
			t.Errorf("unexpected query: %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, `{
			"count": 2, "next": null,
			"results": [
				{"id": 1, "rating": 4, "text": "Great", "created": "2020-05-01T10:30:00.123456Z",
				 "user": {"username": "ana", "avatar": "http://img/a.png"},
				 "reactions": {"like": 3, "dislike": 1}},
				{"id": 2, "rating": 2, "text": null, "created": "bogus", "reactions": {"like": 2}}
			]
		}`), nil
	}, nil)

	page, err := client.Reviews(context.Background(), 3498, 0, 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.HasMore() || page.TotalCount != 2 {
		t.Errorf("unexpected paging: %+v", page)
	}
	first, second := page.Reviews[0], page.Reviews[1]
	if first.Author != "ana" || first.Reactions == nil || first.Reactions.Like != 3 {
		t.Errorf("unexpected first review: %+v", first)
	}
	if first.Created.IsZero() {
		t.Error("expected created timestamp to parse")
	}
	if second.Reactions != nil {
		t.Errorf("partial reactions must not be kept: %+v", second.Reactions)
	}
	if second.Author != "" || second.Text != "" || !second.Created.IsZero() {
		t.Errorf("unexpected second review: %+v", second)
	}
}
