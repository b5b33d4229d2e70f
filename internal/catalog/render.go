package catalog

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
)

// Card is the template view of one game in a list.
type Card struct {
	ID          int
	Name        string
	Image       string
	Placeholder template.URL
	Released    string
	Genres      string
	Icons       template.HTML
	Delay       string
	Rank        int
	RatingText  string
}

// Detail is the template view of the details modal.
type Detail struct {
	ID          int
	Name        string
	Image       string
	RatingText  string
	Released    string
	Genres      string
	Platforms   string
	Developers  string
	Playtime    string
	Description string
}

// BuildCards maps the catalog list to cards, in order.
func BuildCards(games []models.Game) []Card {
	return lo.Map(games, func(g models.Game, i int) Card {
		card := baseCard(g, i)
		card.Genres = joinOr(g.Genres, constants.UnknownValue)
		card.Icons = platformIconsFor(g.Platforms)
		return card
	})
}

// BuildRankedCards maps a ranking to cards carrying #1..#N badges instead of
// platform icons.
func BuildRankedCards(games []models.Game) []Card {
	return lo.Map(games, func(g models.Game, i int) Card {
		card := baseCard(g, i)
		card.Rank = i + 1
		card.Genres = joinOr(lo.Slice(g.Genres, 0, constants.MaxRankedGenres), constants.UnknownValue)
		card.RatingText = RatingText(g)
		return card
	})
}

func BuildDetail(g models.Game) Detail {
	d := Detail{
		ID:          g.ID,
		Name:        g.Name,
		Image:       CoverOrPlaceholder(g),
		RatingText:  RatingText(g),
		Released:    ReleaseText(g),
		Genres:      joinOr(g.Genres, constants.UnknownValue),
		Platforms:   joinOr(g.Platforms, constants.UnknownValue),
		Developers:  joinOr(g.Developers, constants.UnknownValue),
		Playtime:    constants.UnknownValue,
		Description: strings.TrimSpace(g.Description),
	}
	if g.HasPlaytime() {
		d.Playtime = fmt.Sprintf("%d hours", g.Playtime)
	}
	return d
}

func baseCard(g models.Game, index int) Card {
	return Card{
		ID:          g.ID,
		Name:        g.Name,
		Image:       CoverOrPlaceholder(g),
		Placeholder: template.URL(constants.LazyPlaceholder),
		Released:    ReleaseText(g),
		Delay:       AnimationDelay(index),
	}
}

func CoverOrPlaceholder(g models.Game) string {
	if g.HasCover() {
		return g.CoverImage
	}
	return constants.PlaceholderCover
}

func ReleaseText(g models.Game) string {
	if g.HasReleaseDate() {
		return g.Released
	}
	return constants.ReleaseTBA
}

// RatingText renders "⭐ 4.5/5 (120 reviews)".
func RatingText(g models.Game) string {
	return fmt.Sprintf("⭐ %s/5 (%d reviews)", FormatRating(g.Rating), g.RatingsCount)
}

func FormatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// AnimationDelay staggers card entrance by 0.1s per position.
func AnimationDelay(index int) string {
	return strconv.FormatFloat(float64(index)/10, 'f', -1, 64) + "s"
}

func platformIconsFor(platforms []string) template.HTML {
	icons := lo.Map(lo.Slice(platforms, 0, constants.MaxCardPlatformIcon), func(p string, _ int) string {
		return string(PlatformIcon(p))
	})
	return template.HTML(strings.Join(icons, " "))
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}
