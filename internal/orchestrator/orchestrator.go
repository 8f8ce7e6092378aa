// Package orchestrator turns inferred state, risk, time-of-day, and profile
// into one actionable decision.
package orchestrator

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ritmolabs/ritmo/internal/risk"
	"github.com/ritmolabs/ritmo/internal/schema"
)

// Critical-risk override threshold and its fixed response budget.
const (
	criticalRiskProbability = 0.8
	criticalLatency         = 15 * time.Second
)

// Contextual adjustment constants.
const (
	highRiskLatencyCap = 120 * time.Second
	inactiveForceDays  = 5
	fallbackLatency    = 600 * time.Second
)

// Silence windows in minutes since midnight, boundaries inclusive.
// The night window wraps midnight.
const (
	nightStart  = 22 * 60
	nightEnd    = 6 * 60
	siestaStart = 13*60 + 30
	siestaEnd   = 15 * 60
)

type baseRule struct {
	decision schema.DecisionKind
	strategy schema.Strategy
	priority schema.Priority
	latency  time.Duration
}

// Per-state base rules. An unrecognized state falls back to the stable rule.
var baseRules = map[schema.StateKind]baseRule{
	schema.StateCrisis:        {schema.DecisionSoftContact, schema.StrategyUrgent, schema.PriorityCritical, 30 * time.Second},
	schema.StateAnxiety:       {schema.DecisionSoftContact, schema.StrategyEmpathetic, schema.PriorityHigh, 60 * time.Second},
	schema.StateIsolation:     {schema.DecisionSoftContact, schema.StrategyEmpathetic, schema.PriorityMedium, 300 * time.Second},
	schema.StateFatigue:       {schema.DecisionRespond, schema.StrategyEncouraging, schema.PriorityMedium, 600 * time.Second},
	schema.StateStable:        {schema.DecisionRoutine, schema.StrategyHabits, schema.PriorityLow, 1800 * time.Second},
	schema.StateDisconnection: {schema.DecisionWait, schema.StrategyNeutral, schema.PriorityLow, 3600 * time.Second},
}

// Orchestrator is constructed once at startup and shared across requests;
// it holds only read-only configuration.
type Orchestrator struct {
	lex       *risk.Lexicon
	resources []string // suggested on critical escalations
}

func New(lex *risk.Lexicon, resources []string) *Orchestrator {
	if lex == nil {
		lex = risk.DefaultLexicon()
	}
	return &Orchestrator{lex: lex, resources: resources}
}

// Decide combines one inferred state with the optional risk prediction.
// clock is the user's local "HH:MM". The method never fails: any internal
// panic is replaced with the safe wait decision.
func (o *Orchestrator) Decide(
	state schema.InferredState,
	riskPred *schema.RiskPrediction,
	profile schema.Profile,
	clock string,
	daysInactive int,
) (d schema.OrchestrationDecision) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("orchestrator: recovered, using fallback decision", "user", profile.UserID, "panic", r)
			d = o.fallback(profile)
		}
	}()

	// 1. Critical risk overrides everything, silence windows included.
	if d, override := o.CriticalOverride(riskPred, profile); override {
		return d
	}

	// 2. Silence windows. An unparseable clock never silences; the state
	// table below decides instead.
	if minutes, ok := parseClockMinutes(clock); ok && inSilenceWindow(minutes) {
		return schema.OrchestrationDecision{
			Decision:  schema.DecisionSilence,
			Strategy:  schema.StrategyNeutral,
			Priority:  schema.PriorityNone,
			Comms:     profile.Comms,
			DecidedAt: time.Now(),
		}
	}

	// 3. Per-state base rule.
	rule, ok := baseRules[state.Kind]
	if !ok {
		rule = baseRules[schema.StateStable]
	}
	latency := rule.latency
	d = schema.OrchestrationDecision{
		Decision: rule.decision,
		Strategy: rule.strategy,
		Priority: rule.priority,
	}

	// 4. Contextual adjustments, applied in fixed order.
	if state.Confidence == schema.ConfidenceLow {
		d.Strategy = schema.StrategyNeutral
		latency *= 2
	}
	if riskPred != nil && riskPred.Level == schema.RiskHigh {
		if d.Priority.Rank() < schema.PriorityHigh.Rank() {
			d.Priority = schema.PriorityHigh
		}
		if latency > highRiskLatencyCap {
			latency = highRiskLatencyCap
		}
	}
	if daysInactive > inactiveForceDays {
		d.Decision = schema.DecisionSoftContact
		if d.Priority.Rank() < schema.PriorityMedium.Rank() {
			d.Priority = schema.PriorityMedium
		}
	}
	latency = time.Duration(float64(latency) * profile.Stage.LatencyMultiplier())

	// 5. Finalize.
	if d.Decision == "" {
		d.Decision = schema.DecisionWait
	}
	if d.Strategy == "" {
		d.Strategy = schema.StrategyNeutral
	}
	d.Latency = &latency
	d.Comms = profile.Comms
	d.DecidedAt = time.Now()
	return d
}

// CriticalOverride returns the escalation decision when the prediction
// crosses the critical probability, regardless of state, clock, or silence
// windows. Both decision paths apply it.
func (o *Orchestrator) CriticalOverride(riskPred *schema.RiskPrediction, profile schema.Profile) (schema.OrchestrationDecision, bool) {
	if riskPred == nil || riskPred.Probability < criticalRiskProbability {
		return schema.OrchestrationDecision{}, false
	}
	latency := criticalLatency
	return schema.OrchestrationDecision{
		Decision:  schema.DecisionSoftContact,
		Strategy:  schema.StrategyUrgent,
		Priority:  schema.PriorityCritical,
		Latency:   &latency,
		Escalate:  true,
		Resources: append([]string(nil), o.resources...),
		Comms:     profile.Comms,
		DecidedAt: time.Now(),
	}, true
}

// fallback is the documented safe decision for internal failures.
func (o *Orchestrator) fallback(profile schema.Profile) schema.OrchestrationDecision {
	latency := fallbackLatency
	return schema.OrchestrationDecision{
		Decision:  schema.DecisionWait,
		Strategy:  schema.StrategyNeutral,
		Priority:  schema.PriorityLow,
		Latency:   &latency,
		Comms:     profile.Comms,
		DecidedAt: time.Now(),
	}
}

func inSilenceWindow(minutes int) bool {
	if minutes >= nightStart || minutes <= nightEnd {
		return true
	}
	return minutes >= siestaStart && minutes <= siestaEnd
}

func parseClockMinutes(clock string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
