package rawg

import (
	"strings"
	"time"

	"github.com/samber/lo"

	models "github.com/CodeAndHammer/gamescope/internal/models"
)

func mapGame(g gameResponse) models.Game {
	game := models.Game{
		ID:           g.ID,
		Name:         g.Name,
		CoverImage:   deref(g.BackgroundImage),
		Rating:       g.Rating,
		RatingsCount: g.RatingsCount,
		Playtime:     g.Playtime,
		Description:  g.DescriptionRaw,
	}
	if !g.TBA {
		game.Released = deref(g.Released)
	}
	game.Platforms = lo.FilterMap(g.Platforms, func(p platformEntry, _ int) (string, bool) {
		if p.Platform == nil || p.Platform.Name == "" {
			return "", false
		}
		return p.Platform.Name, true
	})
	game.Genres = names(g.Genres)
	game.Developers = names(g.Developers)
	return game
}

func mapGames(results []gameResponse) []models.Game {
	return lo.Map(results, func(g gameResponse, _ int) models.Game { return mapGame(g) })
}

func mapScreenshots(results []screenshotResult) []models.Screenshot {
	return lo.FilterMap(results, func(s screenshotResult, _ int) (models.Screenshot, bool) {
		return models.Screenshot{ID: s.ID, Image: s.Image}, s.Image != ""
	})
}

func mapReview(r reviewResponse) models.Review {
	review := models.Review{
		ID:       r.ID,
		GameName: r.GameName,
		Rating:   r.Rating,
		Text:     strings.TrimSpace(deref(r.Text)),
		Created:  parseTimestamp(r.Created),
	}
	if r.User != nil {
		review.Author = r.User.Username
		review.Avatar = deref(r.User.Avatar)
	}
	// Counts are only kept when upstream actually reports both.
	if r.Reactions != nil && r.Reactions.Like != nil && r.Reactions.Dislike != nil {
		review.Reactions = &models.Reactions{Like: *r.Reactions.Like, Dislike: *r.Reactions.Dislike}
	}
	return review
}

func names(items []namedResponse) []string {
	return lo.FilterMap(items, func(n namedResponse, _ int) (string, bool) {
		return n.Name, n.Name != ""
	})
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
