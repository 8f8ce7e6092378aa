package orchestrator

import (
	"time"
	"unicode/utf8"

	"github.com/ritmolabs/ritmo/internal/risk"
	"github.com/ritmolabs/ritmo/internal/schema"
)

// Repetitive-pattern heuristic: three consecutive short system replies
// switch the strategy to proactive.
const (
	repetitiveWindow   = 3
	shortResponseRunes = 50
)

// AnalyzeTone classifies a message with strict precedence:
// urgent > negative > positive > neutral.
func (o *Orchestrator) AnalyzeTone(text string) schema.Tone {
	switch {
	case risk.HasHit(text, o.lex.Urgent) || risk.HasHit(text, o.lex.Crisis):
		return schema.ToneUrgent
	case risk.HasHit(text, o.lex.Negative):
		return schema.ToneNegative
	case risk.HasHit(text, o.lex.Positive):
		return schema.TonePositive
	}
	return schema.ToneNeutral
}

// DecideForMessage is the chat-turn variant: it reacts to one incoming
// message instead of a behavioral snapshot. exchanges are the user's stored
// turns in chronological order, used by the repetitive-pattern heuristic.
func (o *Orchestrator) DecideForMessage(
	text string,
	profile schema.Profile,
	exchanges []schema.Exchange,
) schema.OrchestrationDecision {
	tone := o.AnalyzeTone(text)

	// Urgent tone overrides everything, the repetition heuristic included.
	if tone == schema.ToneUrgent {
		latency := criticalLatency
		return schema.OrchestrationDecision{
			Decision:  schema.DecisionRespond,
			Strategy:  schema.StrategyUrgent,
			Priority:  schema.PriorityCritical,
			Latency:   &latency,
			Escalate:  true,
			Resources: append([]string(nil), o.resources...),
			Comms:     profile.Comms,
			DecidedAt: time.Now(),
		}
	}

	var d schema.OrchestrationDecision
	var latency time.Duration
	switch tone {
	case schema.ToneNegative:
		d.Strategy = schema.StrategyEmpathetic
		d.Priority = schema.PriorityMedium
		latency = 60 * time.Second
	case schema.TonePositive:
		d.Strategy = schema.StrategyEncouraging
		d.Priority = schema.PriorityLow
		latency = 120 * time.Second
	default:
		d.Strategy = schema.StrategyNeutral
		d.Priority = schema.PriorityLow
		latency = 300 * time.Second
	}
	d.Decision = schema.DecisionRespond

	if repetitiveShortResponses(exchanges) {
		d.Strategy = schema.StrategyProactive
	}

	latency = time.Duration(float64(latency) * profile.Stage.LatencyMultiplier())
	d.Latency = &latency
	d.Comms = profile.Comms
	d.DecidedAt = time.Now()
	return d
}

func repetitiveShortResponses(exchanges []schema.Exchange) bool {
	if len(exchanges) < repetitiveWindow {
		return false
	}
	for _, ex := range exchanges[len(exchanges)-repetitiveWindow:] {
		if utf8.RuneCountInString(ex.SystemText) >= shortResponseRunes {
			return false
		}
	}
	return true
}
