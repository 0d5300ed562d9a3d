package cycle

import (
	"fmt"
	"sort"

	"github.com/cyclewise/cyclewise/internal/model"
)

// Insight kinds. Insights are advisory text, never control flow.
const (
	InsightInfo    = "info"
	InsightWarning = "warning"
	InsightTip     = "tip"
)

// Insight is one advisory message about the user's cycle data.
type Insight struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Insights runs a fixed sequence of independent checks; several may fire at
// once, and emission order follows check order.
func Insights(periodLogs []model.PeriodLog, stats Stats) []Insight {
	var insights []Insight

	if stats.DataPoints < 3 {
		insights = append(insights, Insight{
			Type:    InsightTip,
			Message: "Track at least 3 cycles to get more accurate predictions and insights.",
		})
	}

	if stats.RegularityScore < 0.5 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: "Your cycles are quite irregular. Consider consulting a healthcare provider if this continues.",
		})
	}

	if stats.AverageLength < 21 || stats.AverageLength > 35 {
		insights = append(insights, Insight{
			Type: InsightWarning,
			Message: fmt.Sprintf(
				"Your average cycle length is %g days. Normal cycles are typically 21-35 days. Consider consulting a healthcare provider.",
				stats.AverageLength),
		})
	}

	if stats.RegularityScore > 0.8 {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Message: "Your cycles are very regular! This makes predictions more reliable.",
		})
	}

	if stats.Confidence > 0.8 {
		insights = append(insights, Insight{
			Type:    InsightInfo,
			Message: "High prediction confidence based on your consistent cycle data.",
		})
	}

	// Duration checks look at the last three periods with both dates present.
	var complete []model.PeriodLog
	for _, p := range periodLogs {
		if !p.StartDate.IsZero() && p.EndDate != nil {
			complete = append(complete, p)
		}
	}
	sort.Slice(complete, func(i, j int) bool {
		return complete[i].StartDate.Before(complete[j].StartDate)
	})
	if len(complete) > 3 {
		complete = complete[len(complete)-3:]
	}

	var long, short int
	for _, p := range complete {
		d := daysBetween(p.StartDate, *p.EndDate)
		if d > 7 {
			long++
		}
		if d < 2 {
			short++
		}
	}
	if long >= 2 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: "You've had several periods lasting longer than 7 days. Consider consulting a healthcare provider.",
		})
	}
	if short >= 2 {
		insights = append(insights, Insight{
			Type:    InsightWarning,
			Message: "You've had several very short periods. Consider consulting a healthcare provider.",
		})
	}

	return insights
}
