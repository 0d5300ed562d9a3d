package cycle

import (
	"fmt"
	"sort"
	"time"

	"github.com/cyclewise/cyclewise/internal/model"
)

// Forecast horizon: three cycles ahead, four events per cycle.
const cyclesAhead = 3

// Fixed confidences for the profile-only path, where predictions have no
// empirical grounding.
const (
	noDataPeriodConfidence = 0.3
	noDataOtherConfidence  = 0.2
)

// GeneratePredictions projects the next three cycles from period history and
// the health profile. The output always holds 12 predictions (4 types x 3
// cycles) sorted ascending by date. A regenerated set replaces the previous
// one wholesale; prediction ids are deterministic per event.
func GeneratePredictions(periodLogs []model.PeriodLog, profile *model.HealthProfile, now time.Time) []model.Prediction {
	if len(periodLogs) == 0 {
		return profilePredictions(profile, now)
	}

	stats := CalculateStats(periodLogs)

	// Anchor on the most recent period start.
	last := periodLogs[0]
	for _, p := range periodLogs[1:] {
		if p.StartDate.After(last.StartDate) {
			last = p
		}
	}

	cycleLength := stats.AverageLength
	lutealDays := profile.LutealDays

	regularity := describeRegularity(stats.RegularityScore)
	dataQuality := "limited"
	if stats.DataPoints >= 3 {
		dataQuality = "good"
	}

	var predictions []model.Prediction
	for c := 1; c <= cyclesAhead; c++ {
		periodStart := addDays(last.StartDate, int(float64(c)*cycleLength))
		ovulation := addDays(periodStart, int(cycleLength)-lutealDays)
		fertileStart := addDays(ovulation, -3)
		fertileEnd := addDays(ovulation, 1)

		// Confidence decays with the forecast horizon, floored at 0.3.
		decay := 1 - float64(c-1)*0.2
		if decay < 0.3 {
			decay = 0.3
		}
		base := stats.Confidence * decay

		predictions = append(predictions,
			model.Prediction{
				ID:         fmt.Sprintf("period-start-%d", c),
				Date:       periodStart,
				Type:       model.PredictPeriodStart,
				Confidence: round2(base),
				Explanation: fmt.Sprintf(
					"Based on %d cycles of %s data. Your cycles are %s with an average length of %g days (±%g days).",
					stats.DataPoints, dataQuality, regularity, cycleLength, stats.StandardDeviation),
				CreatedAt: now,
			},
			model.Prediction{
				ID:         fmt.Sprintf("fertile-start-%d", c),
				Date:       fertileStart,
				Type:       model.PredictFertileStart,
				Confidence: round2(base * 0.8),
				Explanation: fmt.Sprintf(
					"Fertile window starts ~4 days before ovulation when sperm can survive. Based on your %s %g-day cycles.",
					regularity, cycleLength),
				CreatedAt: now,
			},
			model.Prediction{
				ID:         fmt.Sprintf("ovulation-%d", c),
				Date:       ovulation,
				Type:       model.PredictOvulation,
				// Ovulation is the least directly observable event.
				Confidence: round2(base * 0.7),
				Explanation: fmt.Sprintf(
					"Estimated %d days before your next period. This assumes a typical luteal phase length. Consider tracking basal body temperature for more accuracy.",
					lutealDays),
				CreatedAt: now,
			},
			model.Prediction{
				ID:          fmt.Sprintf("fertile-end-%d", c),
				Date:        fertileEnd,
				Type:        model.PredictFertileEnd,
				Confidence:  round2(base * 0.8),
				Explanation: "Fertile window ends ~24 hours after ovulation when the egg is no longer viable.",
				CreatedAt:   now,
			},
		)
	}

	sortByDate(predictions)
	return predictions
}

// profilePredictions is the no-data path: anchor on the profile's last known
// period start, or today when even that is absent.
func profilePredictions(profile *model.HealthProfile, now time.Time) []model.Prediction {
	base := startOfDay(now)
	if profile.LastPeriodDate != nil {
		base = *profile.LastPeriodDate
	}

	var predictions []model.Prediction
	for c := 1; c <= cyclesAhead; c++ {
		periodStart := addDays(base, int(float64(c-1)*profile.CycleLengthAvg))
		ovulation := addDays(periodStart, int(profile.CycleLengthAvg)-profile.LutealDays)
		fertileStart := addDays(ovulation, -3)
		fertileEnd := addDays(ovulation, 1)

		predictions = append(predictions,
			model.Prediction{
				ID:         fmt.Sprintf("period-start-%d", c),
				Date:       periodStart,
				Type:       model.PredictPeriodStart,
				Confidence: noDataPeriodConfidence,
				Explanation: fmt.Sprintf(
					"Estimated based on your average cycle length of %g days. Confidence is low without historical data.",
					profile.CycleLengthAvg),
				CreatedAt: now,
			},
			model.Prediction{
				ID:         fmt.Sprintf("fertile-start-%d", c),
				Date:       fertileStart,
				Type:       model.PredictFertileStart,
				Confidence: noDataOtherConfidence,
				Explanation: fmt.Sprintf(
					"Fertile window typically starts 4 days before ovulation. Based on %d-day luteal phase.",
					profile.LutealDays),
				CreatedAt: now,
			},
			model.Prediction{
				ID:         fmt.Sprintf("ovulation-%d", c),
				Date:       ovulation,
				Type:       model.PredictOvulation,
				Confidence: noDataOtherConfidence,
				Explanation: fmt.Sprintf(
					"Ovulation estimated %d days before next period. This is an approximation without temperature data.",
					profile.LutealDays),
				CreatedAt: now,
			},
			model.Prediction{
				ID:          fmt.Sprintf("fertile-end-%d", c),
				Date:        fertileEnd,
				Type:        model.PredictFertileEnd,
				Confidence:  noDataOtherConfidence,
				Explanation: "Fertile window typically ends 1 day after ovulation.",
				CreatedAt:   now,
			},
		)
	}

	sortByDate(predictions)
	return predictions
}

func describeRegularity(score float64) string {
	switch {
	case score > 0.8:
		return "very regular"
	case score > 0.6:
		return "fairly regular"
	default:
		return "irregular"
	}
}

func sortByDate(ps []model.Prediction) {
	sort.SliceStable(ps, func(i, j int) bool { return ps[i].Date.Before(ps[j].Date) })
}
