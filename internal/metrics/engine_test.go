package metrics

import (
	"testing"
	"time"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// days builds a chronological check-in history from day-by-day states.
func days(t *testing.T, states ...schema.EmotionalState) []schema.CheckinRecord {
	t.Helper()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	out := make([]schema.CheckinRecord, len(states))
	for i, s := range states {
		out[i] = schema.CheckinRecord{Date: start.AddDate(0, 0, i), State: s}
	}
	return out
}

func hasAlert(alerts []schema.Alert, typ string) *schema.Alert {
	for i := range alerts {
		if alerts[i].Type == typ {
			return &alerts[i]
		}
	}
	return nil
}

// ─── Compute ───────────────────────────────────────────────────────────────

func TestCompute_CountsAndCompliance(t *testing.T) {
	checkins := days(t,
		schema.StateGood, schema.StateNormal, schema.StateDifficult,
		schema.StateGood, schema.StateNormal,
	)
	m := Compute(checkins, 10)

	if m.Total != 5 || m.GoodDays != 2 || m.NormalDays != 2 || m.DifficultDays != 1 {
		t.Errorf("unexpected counts: %+v", m)
	}
	if m.Compliance != 50 {
		t.Errorf("expected compliance 50, got %.1f", m.Compliance)
	}
}

func TestCompute_StreakCountsBackward(t *testing.T) {
	checkins := days(t,
		schema.StateDifficult, schema.StateGood,
		schema.StateDifficult, schema.StateDifficult, schema.StateDifficult,
	)
	m := Compute(checkins, 7)
	if m.Streak != 3 {
		t.Errorf("expected streak 3, got %d", m.Streak)
	}
}

func TestCompute_StreakStopsAtNonDifficult(t *testing.T) {
	checkins := days(t, schema.StateDifficult, schema.StateDifficult, schema.StateNormal)
	m := Compute(checkins, 7)
	if m.Streak != 0 {
		t.Errorf("expected streak 0, got %d", m.Streak)
	}
}

func TestCompute_TrendInsufficientData(t *testing.T) {
	checkins := days(t, schema.StateGood, schema.StateGood, schema.StateGood)
	m := Compute(checkins, 7)
	if m.Trend != schema.TrendInsufficient {
		t.Errorf("expected insufficient_data with 3 entries, got %q", m.Trend)
	}
}

func TestCompute_TrendImproving(t *testing.T) {
	checkins := days(t,
		schema.StateDifficult, schema.StateDifficult,
		schema.StateGood, schema.StateGood,
	)
	m := Compute(checkins, 7)
	if m.Trend != schema.TrendImproving {
		t.Errorf("expected improving, got %q", m.Trend)
	}
}

func TestCompute_TrendWorsening(t *testing.T) {
	checkins := days(t,
		schema.StateGood, schema.StateGood,
		schema.StateDifficult, schema.StateDifficult,
	)
	m := Compute(checkins, 7)
	if m.Trend != schema.TrendWorsening {
		t.Errorf("expected worsening, got %q", m.Trend)
	}
}

func TestCompute_TrendStableWithinBand(t *testing.T) {
	checkins := days(t,
		schema.StateNormal, schema.StateGood,
		schema.StateGood, schema.StateNormal,
	)
	m := Compute(checkins, 7)
	if m.Trend != schema.TrendStable {
		t.Errorf("expected stable, got %q", m.Trend)
	}
}

func TestCompute_EmptyHistory(t *testing.T) {
	m := Compute(nil, 7)
	if m.Total != 0 || m.Compliance != 0 || m.Streak != 0 {
		t.Errorf("unexpected metrics for empty history: %+v", m)
	}
	if m.Trend != schema.TrendInsufficient {
		t.Errorf("expected insufficient_data, got %q", m.Trend)
	}
}

// ─── DetectAlerts ──────────────────────────────────────────────────────────

func TestDetectAlerts_ComplianceCritical(t *testing.T) {
	checkins := days(t, schema.StateNormal, schema.StateNormal)
	m := Compute(checkins, 7) // ~29%
	alerts := DetectAlerts(m, checkins)

	a := hasAlert(alerts, "compliance-critical")
	if a == nil {
		t.Fatalf("expected compliance-critical, got %+v", alerts)
	}
	if a.Level != schema.AlertCritical {
		t.Errorf("expected critical level, got %q", a.Level)
	}
	if hasAlert(alerts, "compliance-low") != nil {
		t.Error("compliance-low must not fire together with compliance-critical")
	}
}

func TestDetectAlerts_ComplianceLowBand(t *testing.T) {
	checkins := days(t, schema.StateNormal, schema.StateNormal, schema.StateNormal)
	m := Compute(checkins, 10) // 30%: the band is inclusive on both ends
	alerts := DetectAlerts(m, checkins)
	if hasAlert(alerts, "compliance-low") == nil {
		t.Errorf("expected compliance-low at 30%%, got %+v", alerts)
	}

	m.Compliance = 50
	alerts = DetectAlerts(m, checkins)
	if hasAlert(alerts, "compliance-low") == nil {
		t.Errorf("expected compliance-low at 50%%, got %+v", alerts)
	}
}

func TestDetectAlerts_StreakLevels(t *testing.T) {
	checkins := days(t,
		schema.StateDifficult, schema.StateDifficult,
		schema.StateDifficult, schema.StateDifficult,
	)
	m := Compute(checkins, 4)
	alerts := DetectAlerts(m, checkins)
	if hasAlert(alerts, "streak-critical") == nil {
		t.Errorf("expected streak-critical at streak 4, got %+v", alerts)
	}

	checkins = days(t, schema.StateGood, schema.StateGood, schema.StateDifficult, schema.StateDifficult)
	m = Compute(checkins, 4)
	alerts = DetectAlerts(m, checkins)
	a := hasAlert(alerts, "streak-negative")
	if a == nil {
		t.Fatalf("expected streak-negative at streak 2, got %+v", alerts)
	}
	if a.Streak != 2 {
		t.Errorf("expected streak 2 on alert, got %d", a.Streak)
	}
}

func TestDetectAlerts_WorseningTrendLevels(t *testing.T) {
	// Worsening with 2 difficult days: attention.
	checkins := days(t,
		schema.StateGood, schema.StateGood,
		schema.StateDifficult, schema.StateDifficult,
	)
	m := Compute(checkins, 4)
	a := hasAlert(DetectAlerts(m, checkins), "trend-worsening")
	if a == nil || a.Level != schema.AlertAttention {
		t.Errorf("expected attention trend alert, got %+v", a)
	}

	// Worsening with >2 difficult days: concerning.
	checkins = days(t,
		schema.StateGood, schema.StateGood, schema.StateGood,
		schema.StateDifficult, schema.StateDifficult, schema.StateDifficult,
	)
	m = Compute(checkins, 6)
	a = hasAlert(DetectAlerts(m, checkins), "trend-worsening")
	if a == nil || a.Level != schema.AlertConcerning {
		t.Errorf("expected concerning trend alert, got %+v", a)
	}
}

func TestDetectAlerts_HighDifficultProportion(t *testing.T) {
	checkins := days(t,
		schema.StateDifficult, schema.StateDifficult, schema.StateDifficult, schema.StateGood,
	)
	m := Compute(checkins, 4)
	if hasAlert(DetectAlerts(m, checkins), "high-difficult-proportion") == nil {
		t.Error("expected high-difficult-proportion at 75%")
	}
}

func TestDetectAlerts_IndependentRulesCoexist(t *testing.T) {
	checkins := days(t, schema.StateDifficult, schema.StateDifficult, schema.StateDifficult, schema.StateDifficult)
	m := Compute(checkins, 30) // compliance ~13%, streak 4, proportion 100%
	alerts := DetectAlerts(m, checkins)
	if len(alerts) < 3 {
		t.Errorf("expected several independent alerts, got %+v", alerts)
	}
	if schema.MostSevereAlert(alerts) != schema.AlertCritical {
		t.Errorf("expected most severe critical, got %q", schema.MostSevereAlert(alerts))
	}
}

func TestDetectAlerts_QuietHistory(t *testing.T) {
	checkins := days(t,
		schema.StateGood, schema.StateNormal, schema.StateGood, schema.StateNormal,
		schema.StateGood, schema.StateNormal, schema.StateGood,
	)
	m := Compute(checkins, 7)
	if alerts := DetectAlerts(m, checkins); len(alerts) != 0 {
		t.Errorf("expected no alerts for a healthy week, got %+v", alerts)
	}
}

// ─── BuildReport ───────────────────────────────────────────────────────────

func TestBuildReport_HighForBadWindow(t *testing.T) {
	checkins := days(t, schema.StateDifficult, schema.StateDifficult, schema.StateDifficult, schema.StateDifficult)
	m := Compute(checkins, 30)
	r := BuildReport(m, DetectAlerts(m, checkins))
	if r.Level != ReportHigh {
		t.Errorf("expected high report level, got %q (score %d)", r.Level, r.Score)
	}
	if len(r.Recommendations) == 0 || r.Summary == "" {
		t.Error("expected recommendations and a summary")
	}
}

func TestBuildReport_MinimalForHealthyWindow(t *testing.T) {
	checkins := days(t,
		schema.StateGood, schema.StateGood, schema.StateGood, schema.StateGood,
		schema.StateGood, schema.StateGood, schema.StateGood,
	)
	m := Compute(checkins, 7)
	r := BuildReport(m, nil)
	if r.Score != 0 {
		t.Errorf("a fully healthy window must score 0, got %d (factors %v)", r.Score, r.Factors)
	}
	if r.Level != ReportMinimal {
		t.Errorf("expected minimal report level, got %q", r.Level)
	}
}
