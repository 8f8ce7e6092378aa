package channels

import (
	"encoding/json"
	"testing"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// ─── Wire format ───────────────────────────────────────────────────────────

func TestInboundFrame_SnapshotDecodesSnakeCase(t *testing.T) {
	raw := `{
		"type": "snapshot",
		"user_id": "u1",
		"snapshot": {
			"access_time": "03:15",
			"early_morning": true,
			"accesses_today": 12,
			"prev_session_secs": 10,
			"response_latency_secs": 400,
			"days_inactive": 6,
			"self_report": "difficult"
		}
	}`

	var frame inboundFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if frame.Kind != "snapshot" || frame.UserID != "u1" {
		t.Errorf("unexpected envelope: %+v", frame)
	}
	snap := frame.Snapshot
	if snap == nil {
		t.Fatal("expected a decoded snapshot")
	}
	if snap.AccessTime != "03:15" || !snap.EarlyMorning {
		t.Errorf("time fields not decoded: %+v", snap)
	}
	if snap.AccessesToday != 12 || snap.PrevSessionSecs != 10 ||
		snap.ResponseLatencySecs != 400 || snap.DaysInactive != 6 {
		t.Errorf("numeric fields not decoded: %+v", snap)
	}
	if snap.SelfReport == nil || *snap.SelfReport != schema.StateDifficult {
		t.Errorf("self report not decoded: %+v", snap.SelfReport)
	}
}

func TestInboundFrame_MessageDecodes(t *testing.T) {
	raw := `{"type": "message", "user_id": "u1", "text": "hola"}`
	var frame inboundFrame
	if err := json.Unmarshal([]byte(raw), &frame); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if frame.Kind != "message" || frame.Text != "hola" || frame.Snapshot != nil {
		t.Errorf("unexpected frame: %+v", frame)
	}
}
