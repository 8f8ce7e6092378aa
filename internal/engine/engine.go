// Package engine runs the full evaluation pipeline: signals, longitudinal
// metrics, risk blending, and orchestration, with best-effort persistence of
// the audit trail.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/ritmolabs/ritmo/internal/metrics"
	"github.com/ritmolabs/ritmo/internal/orchestrator"
	"github.com/ritmolabs/ritmo/internal/risk"
	"github.com/ritmolabs/ritmo/internal/schema"
	"github.com/ritmolabs/ritmo/internal/signals"
)

const (
	defaultWindowDays   = 7
	defaultFetchTimeout = 3 * time.Second
	recentActivityDays  = 3
	exchangeContextSize = 10
)

// ActivityCounter is the slice of the history store the risk features need.
type ActivityCounter interface {
	CountExchanges(ctx context.Context, userID string, recentDays int) (total, recent int, err error)
}

// Engine evaluates one user at a time. Every dependency except the history
// provider is pure computation, so an engine is safe for concurrent use.
type Engine struct {
	history schema.HistoryProvider
	counter ActivityCounter // nil means zero activity features
	blender *risk.Blender
	orch    *orchestrator.Orchestrator
	audit   schema.AuditSink // nil disables the audit trail

	windowDays   int
	fetchTimeout time.Duration
}

type Options struct {
	WindowDays   int
	FetchTimeout time.Duration
}

func New(
	history schema.HistoryProvider,
	counter ActivityCounter,
	blender *risk.Blender,
	orch *orchestrator.Orchestrator,
	audit schema.AuditSink,
	opts Options,
) *Engine {
	if opts.WindowDays <= 0 {
		opts.WindowDays = defaultWindowDays
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Engine{
		history:      history,
		counter:      counter,
		blender:      blender,
		orch:         orch,
		audit:        audit,
		windowDays:   opts.WindowDays,
		fetchTimeout: opts.FetchTimeout,
	}
}

// Result is one complete evaluation. A degraded pipeline (failed history
// fetch, no classifier) still decides. State and Recommendation are set on
// the snapshot path only: a chat turn carries no behavioral signals, so no
// state is inferred for it.
type Result struct {
	State          schema.InferredState
	Recommendation schema.Recommendation
	Metrics        schema.EmotionalMetrics
	Alerts         []schema.Alert
	Risk           schema.RiskPrediction
	Decision       schema.OrchestrationDecision
}

// Evaluate runs the behavioral-snapshot pipeline: infer state from signals,
// compute longitudinal metrics, blend risk, and orchestrate. History store
// failures degrade to an empty window rather than failing the evaluation.
func (e *Engine) Evaluate(ctx context.Context, profile schema.Profile, snap schema.SignalSnapshot) Result {
	state := signals.InferState(snap)
	recommendation := signals.Recommend(snap)

	checkins := e.fetchCheckins(ctx, profile.UserID)
	m := metrics.Compute(checkins, e.windowDays)
	alerts := metrics.DetectAlerts(m, checkins)

	// No message on this path: risk comes from profile, activity, and the
	// longitudinal context alone.
	riskPred := e.blender.Predict("", profile, e.activity(ctx, profile.UserID), risk.Longitudinal{
		Trend:      m.Trend,
		AlertLevel: schema.MostSevereAlert(alerts),
		Streak:     m.Streak,
	})

	decision := e.orch.Decide(state, &riskPred, profile, snap.AccessTime, snap.DaysInactive)

	res := Result{
		State:          state,
		Recommendation: recommendation,
		Metrics:        m,
		Alerts:         alerts,
		Risk:           riskPred,
		Decision:       decision,
	}
	e.recordAudit(ctx, profile.UserID, res)
	return res
}

// EvaluateMessage runs the chat-turn pipeline for one incoming message.
// Chat replies are reactive, so no silence-window clock is involved; only
// the snapshot path defers contact.
func (e *Engine) EvaluateMessage(ctx context.Context, profile schema.Profile, text string) Result {
	checkins := e.fetchCheckins(ctx, profile.UserID)
	m := metrics.Compute(checkins, e.windowDays)
	alerts := metrics.DetectAlerts(m, checkins)

	riskPred := e.blender.Predict(text, profile, e.activity(ctx, profile.UserID), risk.Longitudinal{
		Trend:      m.Trend,
		AlertLevel: schema.MostSevereAlert(alerts),
		Streak:     m.Streak,
	})

	exchanges := e.fetchExchanges(ctx, profile.UserID)

	decision, override := e.orch.CriticalOverride(&riskPred, profile)
	if !override {
		decision = e.orch.DecideForMessage(text, profile, exchanges)
	}

	res := Result{
		Metrics:  m,
		Alerts:   alerts,
		Risk:     riskPred,
		Decision: decision,
	}
	e.recordAudit(ctx, profile.UserID, res)
	return res
}

func (e *Engine) fetchCheckins(ctx context.Context, userID string) []schema.CheckinRecord {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	checkins, err := e.history.Checkins(fetchCtx, userID, e.windowDays)
	if err != nil {
		slog.Warn("engine: checkin fetch failed, evaluating on an empty window",
			"user", userID, "err", err)
		return nil
	}
	return checkins
}

// fetchExchanges loads the recent exchange window for the repetition
// heuristic; a failed or slow fetch disables it for this turn.
func (e *Engine) fetchExchanges(ctx context.Context, userID string) []schema.Exchange {
	fetchCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()

	exchanges, err := e.history.RecentExchanges(fetchCtx, userID, exchangeContextSize)
	if err != nil {
		slog.Warn("engine: exchange fetch failed, repetition heuristic disabled",
			"user", userID, "err", err)
		return nil
	}
	return exchanges
}

func (e *Engine) activity(ctx context.Context, userID string) risk.Activity {
	if e.counter == nil {
		return risk.Activity{}
	}
	countCtx, cancel := context.WithTimeout(ctx, e.fetchTimeout)
	defer cancel()
	total, recent, err := e.counter.CountExchanges(countCtx, userID, recentActivityDays)
	if err != nil {
		slog.Warn("engine: activity count failed", "user", userID, "err", err)
		return risk.Activity{}
	}
	return risk.Activity{TotalMessages: total, RecentMessages: recent}
}

func (e *Engine) recordAudit(ctx context.Context, userID string, res Result) {
	if e.audit == nil {
		return
	}
	rec := schema.EvaluationRecord{
		UserID:    userID,
		State:     res.State,
		Metrics:   res.Metrics,
		Alerts:    res.Alerts,
		Risk:      res.Risk,
		Decision:  res.Decision,
		CreatedAt: time.Now(),
	}
	if err := e.audit.RecordEvaluation(ctx, rec); err != nil {
		slog.Warn("engine: audit write failed", "user", userID, "err", err)
	}
}
