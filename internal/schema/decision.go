package schema

import "time"

// DecisionKind is the orchestrator's verdict on how the service acts now.
type DecisionKind string

const (
	DecisionRespond     DecisionKind = "respond"
	DecisionWait        DecisionKind = "wait"
	DecisionSilence     DecisionKind = "silence"
	DecisionSoftContact DecisionKind = "soft_contact"
	DecisionRoutine     DecisionKind = "routine"
)

// Strategy selects the register the response generator should use.
type Strategy string

const (
	StrategyEmpathetic  Strategy = "empathetic"
	StrategyEncouraging Strategy = "encouraging"
	StrategyNeutral     Strategy = "neutral"
	StrategyHabits      Strategy = "habits"
	StrategyProactive   Strategy = "proactive"
	StrategyUrgent      Strategy = "urgent"
)

// Priority orders decisions for downstream delivery.
type Priority string

const (
	PriorityNone     Priority = "none"
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank maps a priority to a comparable value.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityCritical:
		return 4
	}
	return 0
}

// Tone is the coarse classification of an incoming chat message.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
	ToneNeutral  Tone = "neutral"
	ToneUrgent   Tone = "urgent"
)

// OrchestrationDecision is the single actionable outcome of one decision
// call. Latency is nil for silence decisions.
type OrchestrationDecision struct {
	Decision  DecisionKind
	Strategy  Strategy
	Priority  Priority
	Latency   *time.Duration // response budget; nil when silent
	Escalate  bool
	Resources []string // suggested support resources, critical risk only
	Comms     CommsMode
	DecidedAt time.Time // observability only
}

// LatencySeconds returns the budget in whole seconds, or -1 when unset.
func (d OrchestrationDecision) LatencySeconds() int {
	if d.Latency == nil {
		return -1
	}
	return int(d.Latency.Seconds())
}
