// Package metrics turns a check-in history into longitudinal wellbeing
// metrics and a set of independent alerts.
package metrics

import (
	"fmt"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// Trend detection needs at least this many entries before splitting the
// window into halves.
const trendMinEntries = 4

// trendBand is the mean-score difference beyond which the trend is no
// longer considered stable.
const trendBand = 0.3

// Compute derives the metrics for one user over a lookback window.
// Checkins must be in chronological order, oldest first.
func Compute(checkins []schema.CheckinRecord, windowDays int) schema.EmotionalMetrics {
	m := schema.EmotionalMetrics{
		WindowDays: windowDays,
		Total:      len(checkins),
		Trend:      schema.TrendInsufficient,
	}

	for _, c := range checkins {
		switch c.State {
		case schema.StateGood:
			m.GoodDays++
		case schema.StateDifficult:
			m.DifficultDays++
		default:
			m.NormalDays++
		}
	}

	// Streak counts backward from the most recent entry and stops at the
	// first non-difficult one.
	for i := len(checkins) - 1; i >= 0; i-- {
		if checkins[i].State != schema.StateDifficult {
			break
		}
		m.Streak++
	}

	if windowDays > 0 {
		m.Compliance = float64(len(checkins)) / float64(windowDays) * 100
	}

	m.Trend = computeTrend(checkins)
	return m
}

// computeTrend compares the mean emotional score of the first and second
// halves of the window: good=+1, normal=0, difficult=-1.
func computeTrend(checkins []schema.CheckinRecord) schema.Trend {
	if len(checkins) < trendMinEntries {
		return schema.TrendInsufficient
	}

	scores := make([]float64, len(checkins))
	for i, c := range checkins {
		switch c.State {
		case schema.StateGood:
			scores[i] = 1
		case schema.StateDifficult:
			scores[i] = -1
		}
	}

	half := len(scores) / 2
	diff := mean(scores[half:]) - mean(scores[:half])
	switch {
	case diff > trendBand:
		return schema.TrendImproving
	case diff < -trendBand:
		return schema.TrendWorsening
	}
	return schema.TrendStable
}

func countDifficult(checkins []schema.CheckinRecord) int {
	n := 0
	for _, c := range checkins {
		if c.State == schema.StateDifficult {
			n++
		}
	}
	return n
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Alert thresholds.
const (
	complianceCritical = 30
	complianceLow      = 50
	streakCritical     = 4
	streakAttention    = 2
	difficultRatioHigh = 0.6
	difficultDaysMany  = 2
)

// DetectAlerts evaluates every alert rule independently; zero, one, or
// several alerts may fire for the same metrics.
func DetectAlerts(m schema.EmotionalMetrics, checkins []schema.CheckinRecord) []schema.Alert {
	var alerts []schema.Alert

	switch {
	case m.Compliance < complianceCritical:
		alerts = append(alerts, schema.Alert{
			Level:          schema.AlertCritical,
			Type:           "compliance-critical",
			Message:        fmt.Sprintf("check-in compliance dropped to %.0f%%", m.Compliance),
			Recommendation: "reach out directly and revisit the check-in cadence",
			Compliance:     m.Compliance,
		})
	case m.Compliance <= complianceLow:
		alerts = append(alerts, schema.Alert{
			Level:          schema.AlertAttention,
			Type:           "compliance-low",
			Message:        fmt.Sprintf("check-in compliance at %.0f%%", m.Compliance),
			Recommendation: "send a gentle reminder at the user's usual hour",
			Compliance:     m.Compliance,
		})
	}

	switch {
	case m.Streak >= streakCritical:
		alerts = append(alerts, schema.Alert{
			Level:          schema.AlertCritical,
			Type:           "streak-critical",
			Message:        fmt.Sprintf("%d difficult days in a row", m.Streak),
			Recommendation: "prioritize direct contact and consider escalation",
			Streak:         m.Streak,
		})
	case m.Streak >= streakAttention:
		alerts = append(alerts, schema.Alert{
			Level:          schema.AlertAttention,
			Type:           "streak-negative",
			Message:        fmt.Sprintf("%d difficult days in a row", m.Streak),
			Recommendation: "check in with an empathetic prompt",
			Streak:         m.Streak,
		})
	}

	if m.Trend == schema.TrendWorsening {
		level := schema.AlertAttention
		if m.DifficultDays > difficultDaysMany {
			level = schema.AlertConcerning
		}
		alerts = append(alerts, schema.Alert{
			Level:          level,
			Type:           "trend-worsening",
			Message:        "emotional trend is worsening across the window",
			Recommendation: "increase contact frequency and watch the next check-ins",
		})
	}

	if difficult := countDifficult(checkins); len(checkins) > 0 &&
		float64(difficult)/float64(len(checkins)) > difficultRatioHigh {
		alerts = append(alerts, schema.Alert{
			Level:          schema.AlertConcerning,
			Type:           "high-difficult-proportion",
			Message:        fmt.Sprintf("%d of %d check-ins were difficult", difficult, len(checkins)),
			Recommendation: "review the accompaniment plan for this user",
		})
	}

	return alerts
}
