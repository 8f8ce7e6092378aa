package metrics

import (
	"fmt"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// ReportLevel buckets the 0-100 heuristic score used in operator reports.
type ReportLevel string

const (
	ReportMinimal ReportLevel = "minimal"
	ReportLow     ReportLevel = "low"
	ReportMedium  ReportLevel = "medium"
	ReportHigh    ReportLevel = "high"
)

// Report is the operator-facing summary produced by the analyze command.
// The score is a coarse 0-100 heuristic, independent of the per-message
// risk blender.
type Report struct {
	Score           int
	Level           ReportLevel
	Factors         []string
	Recommendations []string
	Summary         string
}

// Factor weights: compliance up to 25, streak up to 30, difficult
// proportion up to 25, a worsening trend 20. Only negative findings score;
// a fully healthy window is 0.
const (
	weightCompliance = 25.0
	weightStreak     = 30.0
	weightDifficult  = 25.0
	weightTrend      = 20.0
)

// BuildReport scores one user's metrics for the weekly report.
func BuildReport(m schema.EmotionalMetrics, alerts []schema.Alert) Report {
	score := 0.0
	var factors []string

	if m.Compliance < 100 {
		score += (100 - m.Compliance) / 100 * weightCompliance
		if m.Compliance <= complianceLow {
			factors = append(factors, "low-compliance")
		}
	}

	if m.Streak > 0 {
		capped := m.Streak
		if capped > streakCritical {
			capped = streakCritical
		}
		score += float64(capped) / float64(streakCritical) * weightStreak
		factors = append(factors, "negative-streak")
	}

	if m.Total > 0 {
		ratio := float64(m.DifficultDays) / float64(m.Total)
		score += ratio * weightDifficult
		if ratio > difficultRatioHigh {
			factors = append(factors, "high-difficult-proportion")
		}
	}

	if m.Trend == schema.TrendWorsening {
		score += weightTrend
		factors = append(factors, "trend-worsening")
	}

	if score > 100 {
		score = 100
	}

	level := ReportMinimal
	switch {
	case score >= 70:
		level = ReportHigh
	case score >= 40:
		level = ReportMedium
	case score >= 15:
		level = ReportLow
	}

	return Report{
		Score:           int(score),
		Level:           level,
		Factors:         factors,
		Recommendations: recommendations(level, m, alerts),
		Summary: fmt.Sprintf("risk score %d/100 (%s): %d check-ins, %d difficult, streak %d, trend %s",
			int(score), level, m.Total, m.DifficultDays, m.Streak, m.Trend),
	}
}

func recommendations(level ReportLevel, m schema.EmotionalMetrics, alerts []schema.Alert) []string {
	var recs []string
	switch level {
	case ReportHigh:
		recs = append(recs, "contact the user today and notify the caregiver channel")
	case ReportMedium:
		recs = append(recs, "increase check-in frequency this week")
	case ReportLow:
		recs = append(recs, "keep the current cadence and watch the trend")
	default:
		recs = append(recs, "no action needed beyond the regular routine")
	}
	if m.Compliance <= complianceLow {
		recs = append(recs, "revisit the check-in schedule with the user")
	}
	for _, a := range alerts {
		if a.Recommendation != "" {
			recs = append(recs, a.Recommendation)
		}
	}
	return dedupe(recs)
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
