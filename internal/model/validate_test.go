package model

import (
	"testing"
	"time"

	"github.com/cyclewise/cyclewise/internal/crypto"
)

func ts(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodLogValidate(t *testing.T) {
	t.Parallel()
	ok := PeriodLog{ID: "p1", StartDate: ts(2024, 1, 1)}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid log rejected: %v", err)
	}

	if err := (&PeriodLog{StartDate: ts(2024, 1, 1)}).Validate(); err == nil {
		t.Fatalf("missing id must fail")
	}
	if err := (&PeriodLog{ID: "p1"}).Validate(); err == nil {
		t.Fatalf("missing start date must fail")
	}

	end := ts(2023, 12, 25)
	bad := PeriodLog{ID: "p1", StartDate: ts(2024, 1, 1), EndDate: &end}
	if err := bad.Validate(); err == nil {
		t.Fatalf("end before start must fail")
	}

	flow := 0
	badFlow := PeriodLog{ID: "p1", StartDate: ts(2024, 1, 1), Flow: &flow}
	if err := badFlow.Validate(); err == nil {
		t.Fatalf("flow out of range must fail")
	}
}

func TestHealthProfileValidate(t *testing.T) {
	t.Parallel()
	ok := DefaultHealthProfile(time.Now())
	if err := ok.Validate(); err != nil {
		t.Fatalf("default profile rejected: %v", err)
	}

	cases := []func(*HealthProfile){
		func(p *HealthProfile) { p.ID = "" },
		func(p *HealthProfile) { p.CycleLengthAvg = 19 },
		func(p *HealthProfile) { p.CycleLengthAvg = 41 },
		func(p *HealthProfile) { p.CycleLengthStd = -1 },
		func(p *HealthProfile) { p.CycleLengthStd = 11 },
		func(p *HealthProfile) { p.LutealDays = 9 },
		func(p *HealthProfile) { p.LutealDays = 17 },
		func(p *HealthProfile) { p.Goal = "win" },
		func(p *HealthProfile) { p.Contraception = "luck" },
	}
	for i, mutate := range cases {
		p := DefaultHealthProfile(time.Now())
		mutate(p)
		if err := p.Validate(); err == nil {
			t.Fatalf("case %d: invalid profile accepted: %+v", i, p)
		}
	}
}

func TestPredictionValidate(t *testing.T) {
	t.Parallel()
	ok := Prediction{ID: "period-start-1", Date: ts(2024, 3, 1), Type: PredictPeriodStart, Confidence: 0.5}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid prediction rejected: %v", err)
	}

	bad := ok
	bad.Type = "eclipse"
	if err := bad.Validate(); err == nil {
		t.Fatalf("unknown type must fail")
	}
	bad = ok
	bad.Confidence = 1.1
	if err := bad.Validate(); err == nil {
		t.Fatalf("confidence > 1 must fail")
	}
}

func TestSyncOpValidate(t *testing.T) {
	t.Parallel()
	env := crypto.EncryptedData{Data: "Zm9v", IV: "aXY=", Salt: "c2FsdA=="}

	ok := SyncOp{ID: "p1", Table: "periodLogs", Action: SyncUpsert, Encrypted: env}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid op rejected: %v", err)
	}
	del := SyncOp{ID: "p1", Table: "periodLogs", Action: SyncDelete}
	if err := del.Validate(); err != nil {
		t.Fatalf("delete needs no payload: %v", err)
	}

	if err := (&SyncOp{Table: "periodLogs", Action: SyncUpsert, Encrypted: env}).Validate(); err == nil {
		t.Fatalf("missing id must fail")
	}
	if err := (&SyncOp{ID: "p1", Table: "periodLogs", Action: "rename"}).Validate(); err == nil {
		t.Fatalf("unknown action must fail")
	}
	if err := (&SyncOp{ID: "p1", Table: "periodLogs", Action: SyncUpsert}).Validate(); err == nil {
		t.Fatalf("upsert without payload must fail")
	}
}
