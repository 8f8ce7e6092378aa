package config

import (
	"os"
	"path/filepath"
	"testing"
)

// ─── Load ──────────────────────────────────────────────────────────────────

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Engine.WindowDays != 7 {
		t.Errorf("expected default window of 7 days, got %d", cfg.Engine.WindowDays)
	}
	if cfg.Engine.MemoryTTLHours != 72 {
		t.Errorf("expected default memory TTL of 72h, got %d", cfg.Engine.MemoryTTLHours)
	}
	if cfg.Telegram.Enabled {
		t.Error("telegram must be disabled by default")
	}
}

func TestLoad_ParseFailureReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("a corrupt config must not fail Load: %v", err)
	}
	if cfg.Engine.WindowDays != 7 {
		t.Errorf("expected defaults after parse failure, got %+v", cfg.Engine)
	}
}

func TestLoad_PartialFileKeepsOtherDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	partial := `{"telegram":{"enabled":true,"token":"abc","allowFrom":["123"]}}`
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Telegram.Enabled || cfg.Telegram.Token != "abc" {
		t.Errorf("overridden section not applied: %+v", cfg.Telegram)
	}
	if cfg.Engine.WindowDays != 7 {
		t.Errorf("untouched sections must keep defaults, got %+v", cfg.Engine)
	}
}

// ─── Save ──────────────────────────────────────────────────────────────────

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.json")
	cfg := DefaultConfig()
	cfg.Slack.Enabled = true
	cfg.Slack.Token = "xoxb-test"

	if err := Save(&cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !loaded.Slack.Enabled || loaded.Slack.Token != "xoxb-test" {
		t.Errorf("round trip lost data: %+v", loaded.Slack)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if data[len(data)-1] != '\n' {
		t.Error("saved config must end with a newline")
	}
}
