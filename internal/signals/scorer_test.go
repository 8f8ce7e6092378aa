package signals

import (
	"testing"

	"github.com/ritmolabs/ritmo/internal/schema"
)

func report(s schema.EmotionalState) *schema.EmotionalState { return &s }

// quietSnapshot is a baseline snapshot that trips no scoring rule.
func quietSnapshot() schema.SignalSnapshot {
	return schema.SignalSnapshot{
		AccessTime:          "10:30",
		AccessesToday:       3,
		PrevSessionSecs:     180,
		ResponseLatencySecs: 45,
		DaysInactive:        0,
	}
}

// ─── InferState ────────────────────────────────────────────────────────────

func TestInferState_AllSignalsFiring(t *testing.T) {
	st := InferState(schema.SignalSnapshot{
		AccessTime:          "03:15",
		EarlyMorning:        true,
		AccessesToday:       12,
		PrevSessionSecs:     10,
		ResponseLatencySecs: 400,
		DaysInactive:        6,
		SelfReport:          report(schema.StateDifficult),
	})
	if st.Kind != schema.StateAnxiety {
		t.Errorf("expected anxiety, got %q", st.Kind)
	}
	if st.Confidence != schema.ConfidenceMedium {
		t.Errorf("expected medium confidence, got %q", st.Confidence)
	}
	if len(st.Signals) < 5 {
		t.Errorf("expected at least 5 triggered signals, got %v", st.Signals)
	}
	if st.Score < 9 {
		t.Errorf("expected score >= 9, got %d", st.Score)
	}
}

func TestInferState_QuietSnapshotIsStable(t *testing.T) {
	st := InferState(quietSnapshot())
	if st.Kind != schema.StateStable {
		t.Errorf("expected stable, got %q", st.Kind)
	}
	if st.Confidence != schema.ConfidenceLow {
		t.Errorf("expected low confidence without self-report, got %q", st.Confidence)
	}
	if st.Score > 1 {
		t.Errorf("expected score <= 1, got %d", st.Score)
	}
}

func TestInferState_ZeroSecondSessionCountsAsShort(t *testing.T) {
	// A 0s previous session is the shortest possible session, not a missing
	// value; together with a slow response that is 2 points and fatigue.
	st := InferState(schema.SignalSnapshot{
		AccessTime:          "11:00",
		AccessesToday:       2,
		PrevSessionSecs:     0,
		ResponseLatencySecs: 400,
	})
	if st.Score != 2 {
		t.Fatalf("expected score 2, got %d (%v)", st.Score, st.Signals)
	}
	if st.Kind != schema.StateFatigue {
		t.Errorf("expected fatigue, got %q", st.Kind)
	}
	found := false
	for _, tag := range st.Signals {
		if tag == "very-short-session" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the very-short-session signal, got %v", st.Signals)
	}
}

func TestInferState_MidBandFatigue(t *testing.T) {
	st := InferState(schema.SignalSnapshot{
		AccessTime:          "11:00",
		AccessesToday:       2,
		PrevSessionSecs:     25,
		ResponseLatencySecs: 350,
		DaysInactive:        3,
	})
	if st.Score != 3 {
		t.Fatalf("expected score 3, got %d (%v)", st.Score, st.Signals)
	}
	if st.Kind != schema.StateFatigue {
		t.Errorf("expected fatigue, got %q", st.Kind)
	}
	if st.Confidence != schema.ConfidenceLow {
		t.Errorf("expected low confidence, got %q", st.Confidence)
	}
}

func TestInferState_MidBandDisconnection(t *testing.T) {
	// 3 points with neither slow response nor a short session.
	st := InferState(schema.SignalSnapshot{
		AccessTime:      "11:00",
		EarlyMorning:    true,
		AccessesToday:   2,
		PrevSessionSecs: 120,
		DaysInactive:    3,
	})
	if st.Score != 3 {
		t.Fatalf("expected score 3, got %d (%v)", st.Score, st.Signals)
	}
	if st.Kind != schema.StateDisconnection {
		t.Errorf("expected disconnection, got %q", st.Kind)
	}
}

func TestInferState_HighBandIsolation(t *testing.T) {
	// 4 points without compulsive access.
	st := InferState(schema.SignalSnapshot{
		AccessTime:      "11:00",
		EarlyMorning:    true,
		AccessesToday:   2,
		PrevSessionSecs: 120,
		DaysInactive:    6,
	})
	if st.Score != 4 {
		t.Fatalf("expected score 4, got %d (%v)", st.Score, st.Signals)
	}
	if st.Kind != schema.StateIsolation {
		t.Errorf("expected isolation, got %q", st.Kind)
	}
}

func TestInferState_SelfReportRaisesConfidence(t *testing.T) {
	snap := quietSnapshot()
	snap.SelfReport = report(schema.StateGood)
	st := InferState(snap)
	if st.Kind != schema.StateStable {
		t.Errorf("expected stable, got %q", st.Kind)
	}
	if st.Confidence != schema.ConfidenceMedium {
		t.Errorf("expected medium confidence with self-report, got %q", st.Confidence)
	}
}

// ─── Recommend ─────────────────────────────────────────────────────────────

func TestRecommend_RoutineWindow(t *testing.T) {
	for _, clock := range []string{"08:00", "12:00", "14:00", "18:00", "10:30"} {
		snap := quietSnapshot()
		snap.AccessTime = clock
		if got := Recommend(snap); got != schema.RecommendRoutine {
			t.Errorf("clock %s: expected routine, got %q", clock, got)
		}
	}
}

func TestRecommend_OutsideRoutineWindow(t *testing.T) {
	for _, clock := range []string{"07:59", "12:01", "13:00", "18:01", "23:00"} {
		snap := quietSnapshot()
		snap.AccessTime = clock
		if got := Recommend(snap); got != schema.RecommendWait {
			t.Errorf("clock %s: expected wait, got %q", clock, got)
		}
	}
}

func TestRecommend_ElevatedScoreOverridesClock(t *testing.T) {
	snap := quietSnapshot()
	snap.AccessTime = "10:00" // inside a routine window
	snap.DaysInactive = 6
	if got := Recommend(snap); got != schema.RecommendSoftContact {
		t.Errorf("expected soft_contact, got %q", got)
	}
}

func TestRecommend_MalformedClockDefaultsToWait(t *testing.T) {
	for _, clock := range []string{"", "noon", "25:00", "10:75", "10"} {
		snap := quietSnapshot()
		snap.AccessTime = clock
		if got := Recommend(snap); got != schema.RecommendWait {
			t.Errorf("clock %q: expected wait, got %q", clock, got)
		}
	}
}
