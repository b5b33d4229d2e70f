package catalog

import (
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
)

const (
	reviewDateLayout = "Jan 2, 2006 15:04"
	noReviewText     = "No review text available"
	anonymousAuthor  = "Anonymous"
)

type ReviewCard struct {
	GameName     string
	Author       string
	Avatar       string
	Date         string
	Stars        string
	RatingText   string
	Short        string
	Full         string
	Truncated    bool
	HasReactions bool
	Likes        int
	Dislikes     int
	Delay        string
}

// BuildReviewCards maps reviews to cards, truncating long bodies to preview
// runes with an expandable full text.
func BuildReviewCards(reviews []models.Review, preview int) []ReviewCard {
	if preview <= 0 {
		preview = constants.ReviewPreviewChars
	}
	return lo.Map(reviews, func(r models.Review, i int) ReviewCard {
		card := ReviewCard{
			GameName:   r.GameName,
			Author:     lo.Ternary(r.Author != "", r.Author, anonymousAuthor),
			Avatar:     lo.Ternary(r.Avatar != "", r.Avatar, constants.PlaceholderAvatar),
			Date:       FormatReviewDate(r.Created),
			Stars:      Stars(r.Rating),
			RatingText: FormatRating(r.Rating) + "/5",
			Delay:      AnimationDelay(i),
		}
		card.Short, card.Full, card.Truncated = truncate(r.Text, preview)
		if r.Reactions != nil {
			card.HasReactions = true
			card.Likes = r.Reactions.Like
			card.Dislikes = r.Reactions.Dislike
		}
		return card
	})
}

// Stars renders a five glyph rating: full stars, an optional half star, then
// empty stars.
func Stars(rating float64) string {
	rating = math.Max(0, math.Min(5, rating))
	full := int(math.Floor(rating))
	half := full < 5 && math.Mod(rating, 1) >= 0.5
	empty := 5 - full
	if half {
		empty--
	}
	return strings.Repeat("⭐", full) + lo.Ternary(half, "🌟", "") + strings.Repeat("☆", empty)
}

func FormatReviewDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(reviewDateLayout)
}

func truncate(text string, limit int) (short, full string, truncated bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return noReviewText, "", false
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text, "", false
	}
	return string(runes[:limit]) + "...", text, true
}
