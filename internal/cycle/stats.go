// Package cycle implements deterministic cycle estimation from period logs:
// statistics, dated predictions, phase classification and advisory insights.
// Everything here is a pure function of its inputs; callers pass "now"
// explicitly so results are reproducible.
package cycle

import (
	"math"
	"sort"
	"time"

	"github.com/cyclewise/cyclewise/internal/model"
)

// Stats are derived cycle statistics. Recomputed on every estimation call,
// never persisted.
type Stats struct {
	AverageLength     float64 // days, 1 decimal
	StandardDeviation float64 // days, 1 decimal
	Confidence        float64 // 0..1, 2 decimals
	DataPoints        int     // usable cycle-length samples
	RegularityScore   float64 // 0..1, 2 decimals
}

// Cycle lengths outside (outlierMin, outlierMax) are data-entry artifacts,
// not physiological lengths, and are excluded from all statistics.
const (
	outlierMin = 15
	outlierMax = 45
)

func defaultStats() Stats {
	return Stats{AverageLength: 28, StandardDeviation: 2}
}

// CalculateStats computes cycle statistics from period logs. With fewer than
// two usable periods there is no statistical basis, and the default carries
// zero confidence to say so honestly.
func CalculateStats(periodLogs []model.PeriodLog) Stats {
	if len(periodLogs) < 2 {
		return defaultStats()
	}

	sorted := make([]model.PeriodLog, 0, len(periodLogs))
	for _, p := range periodLogs {
		if !p.StartDate.IsZero() {
			sorted = append(sorted, p)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StartDate.Before(sorted[j].StartDate)
	})

	var lengths []float64
	for i := 1; i < len(sorted); i++ {
		length := daysBetween(sorted[i-1].StartDate, sorted[i].StartDate)
		if length > outlierMin && length < outlierMax {
			lengths = append(lengths, float64(length))
		}
	}
	if len(lengths) == 0 {
		return defaultStats()
	}

	// Trimmed mean: drop the lowest and highest 10% (floor) to dampen one or
	// two irregular cycles without discarding them from the deviation below.
	asc := append([]float64(nil), lengths...)
	sort.Float64s(asc)
	trim := int(math.Floor(float64(len(asc)) * 0.1))
	trimmed := asc[trim : len(asc)-trim]
	var avg float64
	if len(trimmed) > 0 {
		avg = mean(trimmed)
	} else {
		avg = mean(lengths)
	}

	// Deviation over the untrimmed filtered set, relative to the trimmed mean.
	var variance float64
	for _, l := range lengths {
		variance += (l - avg) * (l - avg)
	}
	variance /= float64(len(lengths))
	stdDev := math.Sqrt(variance)

	dataVolume := math.Min(float64(len(lengths))/6, 1) // max out at 6+ cycles
	consistency := math.Max(0, 1-stdDev/7)
	confidence := dataVolume*0.6 + consistency*0.4

	return Stats{
		AverageLength:     round1(avg),
		StandardDeviation: round1(stdDev),
		Confidence:        round2(confidence),
		DataPoints:        len(lengths),
		RegularityScore:   round2(math.Max(0, 1-stdDev/5)),
	}
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// daysBetween returns the whole calendar-day difference b - a.
func daysBetween(a, b time.Time) int {
	return int(startOfDay(b).Sub(startOfDay(a)).Hours() / 24)
}

// addDays shifts t by the given number of calendar days.
func addDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
