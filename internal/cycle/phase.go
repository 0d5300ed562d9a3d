package cycle

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cyclewise/cyclewise/internal/model"
)

// Phase names follow the standard four-phase menstrual model:
// menstrual -> follicular -> fertile -> luteal -> (repeat).
const (
	PhaseMenstrual  = "menstrual"
	PhaseFollicular = "follicular"
	PhaseFertile    = "fertile"
	PhaseLuteal     = "luteal"
	PhaseUnknown    = "unknown"
)

// PhaseInfo classifies the current point in the cycle.
type PhaseInfo struct {
	Phase         string `json:"phase"`
	Description   string `json:"description"`
	DaysUntilNext int    `json:"daysUntilNext"`
	NextEvent     string `json:"nextEvent"`
}

// CurrentPhase classifies today against a prediction set. A periodStart
// predicted within the last 7 days wins over any forward-looking
// classification; otherwise the type of the nearest future prediction
// decides.
func CurrentPhase(predictions []model.Prediction, now time.Time) PhaseInfo {
	today := startOfDay(now)

	var future, past []model.Prediction
	for _, p := range predictions {
		if !p.Date.Before(today) {
			future = append(future, p)
		} else {
			past = append(past, p)
		}
	}
	sort.SliceStable(future, func(i, j int) bool { return future[i].Date.Before(future[j].Date) })
	sort.SliceStable(past, func(i, j int) bool { return past[i].Date.After(past[j].Date) })

	if len(future) == 0 {
		return PhaseInfo{
			Phase:       PhaseUnknown,
			Description: "Unable to determine current phase",
			NextEvent:   "Log your period to get predictions",
		}
	}

	next := future[0]
	daysUntil := daysBetween(today, next.Date)

	for _, p := range past {
		if p.Type != model.PredictPeriodStart {
			continue
		}
		if daysBetween(p.Date, today) <= 7 {
			return PhaseInfo{
				Phase:         PhaseMenstrual,
				Description:   "You are currently in your menstrual phase",
				DaysUntilNext: daysUntil,
				NextEvent:     fmt.Sprintf("%s in %d days", eventName(next.Type), daysUntil),
			}
		}
		break
	}

	switch next.Type {
	case model.PredictFertileStart:
		return PhaseInfo{
			Phase:         PhaseFollicular,
			Description:   "You are in your follicular phase - your body is preparing for ovulation",
			DaysUntilNext: daysUntil,
			NextEvent:     fmt.Sprintf("Fertile window starts in %d days", daysUntil),
		}
	case model.PredictOvulation:
		return PhaseInfo{
			Phase:         PhaseFertile,
			Description:   "You are in your fertile window - highest chance of conception",
			DaysUntilNext: daysUntil,
			NextEvent:     fmt.Sprintf("Ovulation in %d days", daysUntil),
		}
	case model.PredictFertileEnd:
		return PhaseInfo{
			Phase:         PhaseFertile,
			Description:   "You are in your fertile window - ovulation is imminent",
			DaysUntilNext: daysUntil,
			NextEvent:     fmt.Sprintf("Fertile window ends in %d days", daysUntil),
		}
	case model.PredictPeriodStart:
		return PhaseInfo{
			Phase:         PhaseLuteal,
			Description:   "You are in your luteal phase - your body is preparing for your next period",
			DaysUntilNext: daysUntil,
			NextEvent:     fmt.Sprintf("Next period in %d days", daysUntil),
		}
	default:
		return PhaseInfo{
			Phase:         PhaseUnknown,
			Description:   "Unable to determine current phase",
			DaysUntilNext: daysUntil,
			NextEvent:     "Update your data for better predictions",
		}
	}
}

func eventName(t model.PredictionType) string {
	s := strings.TrimSuffix(string(t), "Start")
	return strings.TrimSuffix(s, "End")
}
