package cycle

import (
	"testing"
	"time"

	"github.com/cyclewise/cyclewise/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func periods(starts ...time.Time) []model.PeriodLog {
	out := make([]model.PeriodLog, len(starts))
	for i, s := range starts {
		out[i] = model.PeriodLog{ID: "p", StartDate: s}
	}
	return out
}

func TestCalculateStats_DefaultBelowTwoLogs(t *testing.T) {
	t.Parallel()
	want := Stats{AverageLength: 28, StandardDeviation: 2}

	if got := CalculateStats(nil); got != want {
		t.Fatalf("nil logs: got %+v, want %+v", got, want)
	}
	if got := CalculateStats(periods(date(2024, 1, 1))); got != want {
		t.Fatalf("one log: got %+v, want %+v", got, want)
	}
}

func TestCalculateStats_PerfectlyRegular(t *testing.T) {
	t.Parallel()
	logs := periods(
		date(2024, 1, 1),
		date(2024, 1, 29),
		date(2024, 2, 26),
	)
	got := CalculateStats(logs)

	if got.AverageLength != 28 {
		t.Fatalf("avg=%v, want=28", got.AverageLength)
	}
	if got.StandardDeviation != 0 {
		t.Fatalf("std=%v, want=0", got.StandardDeviation)
	}
	if got.DataPoints != 2 {
		t.Fatalf("dataPoints=%d, want=2", got.DataPoints)
	}
	// 2 samples: 0.6*(2/6) + 0.4*1 = 0.6
	if got.Confidence != 0.6 {
		t.Fatalf("confidence=%v, want=0.6", got.Confidence)
	}
	if got.RegularityScore != 1 {
		t.Fatalf("regularity=%v, want=1", got.RegularityScore)
	}
}

func TestCalculateStats_OutliersExcluded(t *testing.T) {
	t.Parallel()
	// Gaps: 28, 10 (excluded), 60 (excluded), 28.
	logs := periods(
		date(2024, 1, 1),
		date(2024, 1, 29),
		date(2024, 2, 8),
		date(2024, 4, 8),
		date(2024, 5, 6),
	)
	got := CalculateStats(logs)

	if got.DataPoints != 2 {
		t.Fatalf("dataPoints=%d, want=2 (outliers must be excluded)", got.DataPoints)
	}
	if got.AverageLength != 28 {
		t.Fatalf("avg=%v, want=28", got.AverageLength)
	}
}

func TestCalculateStats_AllOutliers(t *testing.T) {
	t.Parallel()
	// All gaps are 60 days, every sample excluded.
	logs := periods(
		date(2024, 1, 1),
		date(2024, 3, 1),
		date(2024, 4, 30),
	)
	want := Stats{AverageLength: 28, StandardDeviation: 2}
	if got := CalculateStats(logs); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestCalculateStats_UnsortedInput(t *testing.T) {
	t.Parallel()
	logs := periods(
		date(2024, 2, 26),
		date(2024, 1, 1),
		date(2024, 1, 29),
	)
	got := CalculateStats(logs)
	if got.AverageLength != 28 || got.DataPoints != 2 {
		t.Fatalf("unsorted input must be sorted first: %+v", got)
	}
}

func TestCalculateStats_BoundedScores(t *testing.T) {
	t.Parallel()
	// Irregular but in-range lengths: 20, 40, 21, 39, 22.
	logs := periods(
		date(2024, 1, 1),
		date(2024, 1, 21),
		date(2024, 3, 1),
		date(2024, 3, 22),
		date(2024, 4, 30),
		date(2024, 5, 22),
	)
	got := CalculateStats(logs)

	if got.Confidence < 0 || got.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", got.Confidence)
	}
	if got.RegularityScore < 0 || got.RegularityScore > 1 {
		t.Fatalf("regularity out of range: %v", got.RegularityScore)
	}
	if got.DataPoints != 5 {
		t.Fatalf("dataPoints=%d, want=5", got.DataPoints)
	}
}

func TestDaysBetween_IgnoresTimeOfDay(t *testing.T) {
	t.Parallel()
	a := time.Date(2024, 1, 1, 23, 50, 0, 0, time.UTC)
	b := time.Date(2024, 1, 2, 0, 10, 0, 0, time.UTC)
	if got := daysBetween(a, b); got != 1 {
		t.Fatalf("daysBetween=%d, want=1", got)
	}
	if got := daysBetween(b, a); got != -1 {
		t.Fatalf("reverse daysBetween=%d, want=-1", got)
	}
}
