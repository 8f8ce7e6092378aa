package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newService(t *testing.T) *Service {
	t.Helper()
	return NewService(filepath.Join(t.TempDir(), "schedule", "jobs.json"))
}

func everySchedule(ms int64) Schedule {
	return Schedule{Kind: "every", EveryMs: &ms}
}

func checkinPayload() Payload {
	return Payload{Kind: KindCheckinPrompt, UserID: "u1", Channel: "telegram", ChatID: "42"}
}

// ─── AddJob ────────────────────────────────────────────────────────────────

func TestAddJob_ComputesFirstRun(t *testing.T) {
	s := newService(t)
	job, err := s.AddJob("morning checkin", everySchedule(60_000), checkinPayload(), false)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if !job.Enabled {
		t.Error("new jobs must start enabled")
	}
	if job.State.NextRunAtMs == nil {
		t.Fatal("expected a computed next run")
	}
	if *job.State.NextRunAtMs <= job.CreatedAtMs {
		t.Errorf("next run %d must be after creation %d", *job.State.NextRunAtMs, job.CreatedAtMs)
	}
}

func TestAddJob_CronSchedule(t *testing.T) {
	s := newService(t)
	expr := "0 10 * * *"
	tz := "Europe/Madrid"
	job, err := s.AddJob("daily prompt", Schedule{Kind: "cron", Expr: &expr, TZ: &tz}, checkinPayload(), false)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if job.State.NextRunAtMs == nil {
		t.Fatal("cron job must get a next run")
	}
}

func TestAddJob_RejectsInvalidInput(t *testing.T) {
	s := newService(t)
	if _, err := s.AddJob("bad", Schedule{Kind: "sometimes"}, checkinPayload(), false); err == nil {
		t.Error("expected an error for an unknown schedule kind")
	}
	if _, err := s.AddJob("bad", everySchedule(0), checkinPayload(), false); err == nil {
		t.Error("expected an error for a non-positive interval")
	}
	if _, err := s.AddJob("bad", everySchedule(1000), Payload{Kind: "mystery"}, false); err == nil {
		t.Error("expected an error for an unknown payload kind")
	}
}

// ─── Persistence ───────────────────────────────────────────────────────────

func TestJobs_SurviveRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.json")
	s1 := NewService(path)
	if _, err := s1.AddJob("sweep", everySchedule(3_600_000), Payload{Kind: KindMemorySweep}, false); err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	s2 := NewService(path)
	jobs := s2.Jobs(true)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 persisted job, got %d", len(jobs))
	}
	if jobs[0].Name != "sweep" || jobs[0].Payload.Kind != KindMemorySweep {
		t.Errorf("unexpected persisted job: %+v", jobs[0])
	}
}

// ─── Enable / remove ───────────────────────────────────────────────────────

func TestEnableJob_TogglesNextRun(t *testing.T) {
	s := newService(t)
	job, err := s.AddJob("prompt", everySchedule(60_000), checkinPayload(), false)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}

	disabled, ok := s.EnableJob(job.ID, false)
	if !ok {
		t.Fatal("job not found")
	}
	if disabled.Enabled || disabled.State.NextRunAtMs != nil {
		t.Errorf("disabled job must have no next run: %+v", disabled.State)
	}

	enabled, ok := s.EnableJob(job.ID, true)
	if !ok {
		t.Fatal("job not found")
	}
	if !enabled.Enabled || enabled.State.NextRunAtMs == nil {
		t.Errorf("re-enabled job must get a next run: %+v", enabled.State)
	}

	if len(s.Jobs(false)) != 1 {
		t.Error("enabled job must be listed")
	}
}

func TestRemoveJob(t *testing.T) {
	s := newService(t)
	job, err := s.AddJob("prompt", everySchedule(60_000), checkinPayload(), false)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if !s.RemoveJob(job.ID) {
		t.Fatal("expected removal to succeed")
	}
	if s.RemoveJob(job.ID) {
		t.Error("second removal must report not found")
	}
	if len(s.Jobs(true)) != 0 {
		t.Error("removed job still listed")
	}
}

// ─── RunJob ────────────────────────────────────────────────────────────────

func TestRunJob_InvokesCallbackAndRecordsState(t *testing.T) {
	s := newService(t)
	var fired []Job
	s.SetOnJob(func(_ context.Context, job Job) error {
		fired = append(fired, job)
		return nil
	})

	job, err := s.AddJob("prompt", everySchedule(60_000), checkinPayload(), false)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	if !s.RunJob(context.Background(), job.ID, false) {
		t.Fatal("RunJob must find the job")
	}

	if len(fired) != 1 || fired[0].Payload.UserID != "u1" {
		t.Fatalf("expected the callback with the job payload, got %v", fired)
	}

	jobs := s.Jobs(true)
	if jobs[0].State.LastStatus == nil || *jobs[0].State.LastStatus != "ok" {
		t.Errorf("expected ok status, got %+v", jobs[0].State)
	}
	if jobs[0].State.LastRunAtMs == nil {
		t.Error("expected a recorded last run")
	}
}

func TestRunJob_RecordsCallbackError(t *testing.T) {
	s := newService(t)
	s.SetOnJob(func(context.Context, Job) error { return errors.New("delivery failed") })

	job, err := s.AddJob("prompt", everySchedule(60_000), checkinPayload(), false)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	s.RunJob(context.Background(), job.ID, false)

	st := s.Jobs(true)[0].State
	if st.LastStatus == nil || *st.LastStatus != "error" {
		t.Errorf("expected error status, got %+v", st)
	}
	if st.LastError == nil || *st.LastError != "delivery failed" {
		t.Errorf("expected the callback error recorded, got %+v", st)
	}
}

func TestRunJob_DisabledNeedsForce(t *testing.T) {
	s := newService(t)
	ran := 0
	s.SetOnJob(func(context.Context, Job) error { ran++; return nil })

	job, _ := s.AddJob("prompt", everySchedule(60_000), checkinPayload(), false)
	s.EnableJob(job.ID, false)

	if s.RunJob(context.Background(), job.ID, false) {
		t.Error("disabled job must not run without force")
	}
	if !s.RunJob(context.Background(), job.ID, true) {
		t.Error("force must run a disabled job")
	}
	if ran != 1 {
		t.Errorf("expected exactly 1 run, got %d", ran)
	}
}

func TestRunJob_OneTimeDeleteAfterRun(t *testing.T) {
	s := newService(t)
	s.SetOnJob(func(context.Context, Job) error { return nil })

	at := time.Now().Add(time.Hour).UnixMilli()
	job, err := s.AddJob("one-off", Schedule{Kind: "at", AtMs: &at}, Payload{Kind: KindWeeklyReport, UserID: "u1"}, true)
	if err != nil {
		t.Fatalf("AddJob failed: %v", err)
	}
	s.RunJob(context.Background(), job.ID, false)

	if len(s.Jobs(true)) != 0 {
		t.Error("one-time job with deleteAfterRun must disappear after running")
	}
}

// ─── computeNextRun ────────────────────────────────────────────────────────

func TestComputeNextRun(t *testing.T) {
	now := time.Now().UnixMilli()

	every := int64(5000)
	if next := computeNextRun(Schedule{Kind: "every", EveryMs: &every}, now); next == nil || *next != now+5000 {
		t.Errorf("interval next run wrong: %v", next)
	}

	past := now - 1000
	if next := computeNextRun(Schedule{Kind: "at", AtMs: &past}, now); next != nil {
		t.Errorf("past one-time schedule must have no next run, got %d", *next)
	}

	future := now + 60_000
	if next := computeNextRun(Schedule{Kind: "at", AtMs: &future}, now); next == nil || *next != future {
		t.Errorf("future one-time next run wrong: %v", next)
	}

	expr := "*/5 * * * *"
	if next := computeNextRun(Schedule{Kind: "cron", Expr: &expr}, now); next == nil || *next <= now {
		t.Errorf("cron next run must be in the future, got %v", next)
	}
}
