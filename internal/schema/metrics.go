package schema

import "time"

// CheckinRecord is one emotional check-in as stored by the history provider.
type CheckinRecord struct {
	Date  time.Time
	State EmotionalState
}

// Trend is the directional change across a check-in window.
type Trend string

const (
	TrendImproving    Trend = "improving"
	TrendStable       Trend = "stable"
	TrendWorsening    Trend = "worsening"
	TrendInsufficient Trend = "insufficient_data"
)

// EmotionalMetrics summarises a user's check-in history over a lookback
// window. Recomputed on demand, never cached.
type EmotionalMetrics struct {
	WindowDays    int
	Total         int
	GoodDays      int
	NormalDays    int
	DifficultDays int
	Streak        int     // consecutive difficult entries counting back from the latest
	Compliance    float64 // percentage of window days with a check-in
	Trend         Trend
}

// AlertLevel orders alert severity from normal to critical.
type AlertLevel string

const (
	AlertNormal     AlertLevel = "normal"
	AlertAttention  AlertLevel = "attention"
	AlertConcerning AlertLevel = "concerning"
	AlertCritical   AlertLevel = "critical"
)

// Severity maps the level to a comparable rank.
func (l AlertLevel) Severity() int {
	switch l {
	case AlertAttention:
		return 1
	case AlertConcerning:
		return 2
	case AlertCritical:
		return 3
	}
	return 0
}

// Alert is one independently derived warning about a user's trajectory.
// Several alerts may coexist for the same metrics evaluation.
type Alert struct {
	Level          AlertLevel
	Type           string
	Message        string
	Recommendation string
	Streak         int     // set on streak alerts
	Compliance     float64 // set on compliance alerts
}

// MostSevereAlert returns the highest level among alerts, AlertNormal if none.
func MostSevereAlert(alerts []Alert) AlertLevel {
	level := AlertNormal
	for _, a := range alerts {
		if a.Level.Severity() > level.Severity() {
			level = a.Level
		}
	}
	return level
}
