// Package config defines the service configuration and its JSON loader.
package config

// Config is the full service configuration, stored at ~/.ritmo/config.json.
type Config struct {
	Telegram   TelegramConfig   `json:"telegram"`
	WebSignals WebSignalsConfig `json:"webSignals"`
	Slack      SlackConfig      `json:"slack"`
	LLM        LLMConfig        `json:"llm"`
	History    HistoryConfig    `json:"history"`
	Engine     EngineConfig     `json:"engine"`
}

// TelegramConfig configures the Telegram bot channel.
type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allowFrom"` // user IDs or usernames; empty = allow all
}

// WebSignalsConfig configures the websocket endpoint for kiosk/web front
// ends (chat plus behavioral snapshots).
type WebSignalsConfig struct {
	Enabled   bool     `json:"enabled"`
	Addr      string   `json:"addr"`
	AllowFrom []string `json:"allowFrom"`
}

// SlackConfig configures care-team escalation notifications.
type SlackConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	Channel string `json:"channel"`
}

// LLMConfig configures the completion endpoint used to phrase replies.
// Decisions never depend on it; with an empty API key the service runs on
// canned phrasing.
type LLMConfig struct {
	APIKey  string `json:"apiKey"`
	APIBase string `json:"apiBase"` // empty = Anthropic API
	Model   string `json:"model"`
}

// HistoryConfig configures the SQLite store.
type HistoryConfig struct {
	Path string `json:"path"` // data directory; empty = ~/.ritmo
}

// EngineConfig tunes the evaluation pipeline.
type EngineConfig struct {
	WindowDays       int `json:"windowDays"`       // longitudinal metrics window
	FetchTimeoutSecs int `json:"fetchTimeoutSecs"` // history fetch budget per evaluation
	MemoryTTLHours   int `json:"memoryTtlHours"`   // idle conversation-buffer eviction
}

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return Config{
		Telegram: TelegramConfig{
			Enabled: false,
		},
		WebSignals: WebSignalsConfig{
			Enabled: true,
			Addr:    "127.0.0.1:8753",
		},
		Slack: SlackConfig{
			Enabled: false,
			Channel: "#ritmo-escalations",
		},
		LLM: LLMConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Engine: EngineConfig{
			WindowDays:       7,
			FetchTimeoutSecs: 3,
			MemoryTTLHours:   72,
		},
	}
}
