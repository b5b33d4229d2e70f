package catalog

import (
	"time"

	"github.com/samber/lo"

	constants "github.com/CodeAndHammer/gamescope/internal/constants"
	models "github.com/CodeAndHammer/gamescope/internal/models"
)

const dateLayout = "2006-01-02"

var rankedTitles = map[string]string{
	constants.PeriodWeek:     "🔥 Top Games This Week",
	constants.PeriodMonth:    "📈 Popular This Month",
	constants.PeriodYear:     "🏆 Best of This Year",
	constants.PeriodAllTime:  "👑 Greatest Games Ever",
	constants.PeriodTrending: "📈 Trending Now",
	"reviews":                "⭐ Top Reviewed Games",
}

// KnownPeriods lists the periods with a dedicated ranking, in sidebar order.
var KnownPeriods = []string{
	constants.PeriodWeek,
	constants.PeriodMonth,
	constants.PeriodYear,
	constants.PeriodAllTime,
	constants.PeriodTrending,
}

var periodLabels = map[string]string{
	constants.PeriodWeek:     "🔥 This Week",
	constants.PeriodMonth:    "📈 This Month",
	constants.PeriodYear:     "🏆 This Year",
	constants.PeriodAllTime:  "👑 All Time",
	constants.PeriodTrending: "📈 Trending",
}

// PeriodLink is one ranking entry of the navigation.
type PeriodLink struct {
	Period string
	Label  string
}

func PeriodLinks() []PeriodLink {
	return lo.Map(KnownPeriods, func(p string, _ int) PeriodLink {
		return PeriodLink{Period: p, Label: periodLabels[p]}
	})
}

// DateRange returns the UTC start and end dates for a windowed period. ok is
// false for periods without a window.
func DateRange(period string, now time.Time) (start, end string, ok bool) {
	now = now.UTC()
	var from time.Time
	switch period {
	case constants.PeriodWeek:
		from = now.Add(-7 * 24 * time.Hour)
	case constants.PeriodMonth:
		from = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case constants.PeriodYear:
		from = time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return "", "", false
	}
	return from.Format(dateLayout), now.Format(dateLayout), true
}

// RankedQuery builds the catalog query for a ranking. Unknown periods fall
// back to plain rating ordering.
func RankedQuery(period string, pageSize int, now time.Time) models.GameQuery {
	q := models.GameQuery{PageSize: pageSize}
	switch period {
	case constants.PeriodWeek:
		q.Ordering = constants.OrderingAdded
	case constants.PeriodMonth, constants.PeriodYear:
		q.Ordering = constants.OrderingRating
	case constants.PeriodAllTime:
		q.Ordering = constants.OrderingRating
		q.Rating = constants.AllTimeRating
	case constants.PeriodTrending:
		q.Ordering = constants.OrderingUpdated
	default:
		q.Ordering = constants.OrderingRating
	}
	if start, end, ok := DateRange(period, now); ok {
		q.DateStart, q.DateEnd = start, end
	}
	return q
}

func RankedTitle(period string) string {
	if title, ok := rankedTitles[period]; ok {
		return title
	}
	return constants.DefaultTitle
}

// TitleFor is the section heading for a view.
func TitleFor(view ViewKind, period string) string {
	switch view {
	case ViewRanked:
		return RankedTitle(period)
	case ViewReviews:
		return RankedTitle("reviews")
	default:
		return constants.DefaultTitle
	}
}
