package cycle

import (
	"strings"
	"testing"
	"time"

	"github.com/cyclewise/cyclewise/internal/model"
)

func hasInsight(ins []Insight, typ, substr string) bool {
	for _, i := range ins {
		if i.Type == typ && strings.Contains(i.Message, substr) {
			return true
		}
	}
	return false
}

func TestInsights_FewDataPoints(t *testing.T) {
	t.Parallel()
	got := Insights(nil, Stats{AverageLength: 28, StandardDeviation: 2})
	if !hasInsight(got, InsightTip, "at least 3 cycles") {
		t.Fatalf("want few-data tip, got %+v", got)
	}
}

func TestInsights_IrregularWarning(t *testing.T) {
	t.Parallel()
	got := Insights(nil, Stats{AverageLength: 28, RegularityScore: 0.4, DataPoints: 5})
	if !hasInsight(got, InsightWarning, "quite irregular") {
		t.Fatalf("want irregularity warning, got %+v", got)
	}
}

func TestInsights_AbnormalLength(t *testing.T) {
	t.Parallel()
	short := Insights(nil, Stats{AverageLength: 19, RegularityScore: 0.9, DataPoints: 5})
	if !hasInsight(short, InsightWarning, "19 days") {
		t.Fatalf("want short-cycle warning, got %+v", short)
	}
	long := Insights(nil, Stats{AverageLength: 36, RegularityScore: 0.9, DataPoints: 5})
	if !hasInsight(long, InsightWarning, "36 days") {
		t.Fatalf("want long-cycle warning, got %+v", long)
	}
	normal := Insights(nil, Stats{AverageLength: 28, RegularityScore: 0.9, DataPoints: 5})
	if hasInsight(normal, InsightWarning, "Normal cycles") {
		t.Fatalf("28-day average must not warn: %+v", normal)
	}
}

func TestInsights_PositiveSignals(t *testing.T) {
	t.Parallel()
	got := Insights(nil, Stats{
		AverageLength:   28,
		RegularityScore: 0.95,
		Confidence:      0.9,
		DataPoints:      6,
	})
	if !hasInsight(got, InsightInfo, "very regular") {
		t.Fatalf("want regularity info, got %+v", got)
	}
	if !hasInsight(got, InsightInfo, "High prediction confidence") {
		t.Fatalf("want confidence info, got %+v", got)
	}
}

func TestInsights_LongPeriods(t *testing.T) {
	t.Parallel()
	end := func(s time.Time, days int) *time.Time {
		e := s.AddDate(0, 0, days)
		return &e
	}
	logs := []model.PeriodLog{
		{ID: "a", StartDate: date(2024, 1, 1), EndDate: end(date(2024, 1, 1), 9)},
		{ID: "b", StartDate: date(2024, 1, 29), EndDate: end(date(2024, 1, 29), 8)},
		{ID: "c", StartDate: date(2024, 2, 26), EndDate: end(date(2024, 2, 26), 5)},
	}
	got := Insights(logs, Stats{AverageLength: 28, RegularityScore: 0.9, DataPoints: 5})
	if !hasInsight(got, InsightWarning, "longer than 7 days") {
		t.Fatalf("want long-period warning, got %+v", got)
	}
}

func TestInsights_ShortPeriods(t *testing.T) {
	t.Parallel()
	end := func(s time.Time, days int) *time.Time {
		e := s.AddDate(0, 0, days)
		return &e
	}
	logs := []model.PeriodLog{
		{ID: "a", StartDate: date(2024, 1, 1), EndDate: end(date(2024, 1, 1), 1)},
		{ID: "b", StartDate: date(2024, 1, 29), EndDate: end(date(2024, 1, 29), 1)},
	}
	got := Insights(logs, Stats{AverageLength: 28, RegularityScore: 0.9, DataPoints: 5})
	if !hasInsight(got, InsightWarning, "very short periods") {
		t.Fatalf("want short-period warning, got %+v", got)
	}
}

func TestInsights_OnlyLastThreeCompletePeriodsCount(t *testing.T) {
	t.Parallel()
	end := func(s time.Time, days int) *time.Time {
		e := s.AddDate(0, 0, days)
		return &e
	}
	// Two old long periods pushed out of the window by three recent normal ones.
	logs := []model.PeriodLog{
		{ID: "a", StartDate: date(2023, 10, 1), EndDate: end(date(2023, 10, 1), 9)},
		{ID: "b", StartDate: date(2023, 11, 1), EndDate: end(date(2023, 11, 1), 9)},
		{ID: "c", StartDate: date(2024, 1, 1), EndDate: end(date(2024, 1, 1), 5)},
		{ID: "d", StartDate: date(2024, 1, 29), EndDate: end(date(2024, 1, 29), 5)},
		{ID: "e", StartDate: date(2024, 2, 26), EndDate: end(date(2024, 2, 26), 5)},
	}
	got := Insights(logs, Stats{AverageLength: 28, RegularityScore: 0.9, DataPoints: 5})
	if hasInsight(got, InsightWarning, "longer than 7 days") {
		t.Fatalf("old periods must not trigger the duration warning: %+v", got)
	}
}
