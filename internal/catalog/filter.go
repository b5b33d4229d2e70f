package catalog

import (
	"strings"

	"github.com/samber/lo"

	models "github.com/CodeAndHammer/gamescope/internal/models"
)

// Filter keeps the games whose name contains text, ignoring case and
// surrounding whitespace. Empty text returns games unchanged.
func Filter(games []models.Game, text string) []models.Game {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return games
	}
	return lo.Filter(games, func(g models.Game, _ int) bool {
		return strings.Contains(strings.ToLower(g.Name), needle)
	})
}
