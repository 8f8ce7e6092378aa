package schema

import (
	"context"
	"time"
)

// HistoryProvider exposes the stored check-in and exchange history.
// Implementations return records in chronological order, oldest first.
type HistoryProvider interface {
	Checkins(ctx context.Context, userID string, windowDays int) ([]CheckinRecord, error)
	RecentExchanges(ctx context.Context, userID string, limit int) ([]Exchange, error)
}

// Classifier is the optional trained-model capability. Implementations
// return a probability in [0,1] for a fixed-length feature vector.
// Absence of a trained model is handled at wiring time, never per call.
type Classifier interface {
	PredictProba(features []float64) (float64, error)
}

// Summarizer condenses evicted conversation text into a short synopsis.
// A failure defers compression; it never loses messages.
type Summarizer interface {
	Summarize(ctx context.Context, conversation string) (string, error)
}

// EvaluationRecord is the finalized outcome of one pipeline run, written to
// the audit sink.
type EvaluationRecord struct {
	UserID    string
	State     InferredState
	Metrics   EmotionalMetrics
	Alerts    []Alert
	Risk      RiskPrediction
	Decision  OrchestrationDecision
	CreatedAt time.Time
}

// AuditSink receives finalized evaluation records. Writes are best-effort:
// callers log failures and move on.
type AuditSink interface {
	RecordEvaluation(ctx context.Context, rec EvaluationRecord) error
}
