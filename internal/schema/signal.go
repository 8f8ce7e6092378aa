package schema

import "time"

// EmotionalState is a self-reported check-in category.
type EmotionalState string

const (
	StateGood      EmotionalState = "good"
	StateNormal    EmotionalState = "normal"
	StateDifficult EmotionalState = "difficult"
)

// SignalSnapshot is one point-in-time set of behavioral measurements for a
// user. Built per interaction and never mutated; the core does not persist it.
type SignalSnapshot struct {
	AccessTime          string          `json:"access_time"` // "HH:MM" local clock at access
	Weekday             time.Weekday    `json:"weekday"`
	EarlyMorning        bool            `json:"early_morning"` // access between roughly 02:00 and 05:00
	AccessesToday       int             `json:"accesses_today"`
	PrevSessionSecs     int             `json:"prev_session_secs"`     // duration of the previous session
	ResponseLatencySecs int             `json:"response_latency_secs"` // how long the user took to answer the last prompt
	DaysInactive        int             `json:"days_inactive"`         // days since last recorded activity
	SelfReport          *EmotionalState `json:"self_report,omitempty"`
}

// StateKind is the categorical wellbeing label inferred from a snapshot.
type StateKind string

const (
	StateStable        StateKind = "stable"
	StateFatigue       StateKind = "fatigue"
	StateIsolation     StateKind = "isolation"
	StateAnxiety       StateKind = "anxiety"
	StateDisconnection StateKind = "disconnection"
	// StateCrisis is never inferred from signals alone; it can reach the
	// orchestrator from an operator override or a critical escalation.
	StateCrisis StateKind = "crisis"
)

// Confidence qualifies an inferred state.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
)

// InferredState is the output of the signal scorer.
type InferredState struct {
	Kind       StateKind
	Confidence Confidence
	Signals    []string // tags of the rules that fired, in evaluation order
	Score      int      // accumulated point total, kept for the audit trail
}

// Recommendation is the scorer's contact hint, consumed by the orchestrator.
type Recommendation string

const (
	RecommendRoutine     Recommendation = "routine"
	RecommendWait        Recommendation = "wait"
	RecommendSoftContact Recommendation = "soft_contact"
)
