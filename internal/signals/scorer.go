// Package signals converts one behavioral snapshot into a categorical
// wellbeing state plus a contact recommendation.
package signals

import (
	"strconv"
	"strings"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// Scoring thresholds. Each rule is independent and contributes 0-2 points.
const (
	inactivityProlongedDays = 5
	inactivityModerateDays  = 3
	shortSessionSecs        = 30
	slowResponseSecs        = 300
	compulsiveAccesses      = 10
)

// Routine windows (inclusive): the morning and afternoon stretches where a
// stable user is nudged toward their habit plan.
var routineWindows = [][2]int{
	{8 * 60, 12 * 60},
	{14 * 60, 18 * 60},
}

// score accumulates the weighted point total and the tags of the rules that
// fired, in fixed evaluation order.
func score(s schema.SignalSnapshot) (int, []string) {
	total := 0
	var tags []string

	if s.EarlyMorning {
		total += 2
		tags = append(tags, "early-morning-access")
	}
	if s.SelfReport != nil && *s.SelfReport == schema.StateDifficult {
		total += 2
		tags = append(tags, "difficult-checkin")
	}
	switch {
	case s.DaysInactive >= inactivityProlongedDays:
		total += 2
		tags = append(tags, "prolonged-inactivity")
	case s.DaysInactive >= inactivityModerateDays:
		total++
		tags = append(tags, "moderate-inactivity")
	}
	if s.PrevSessionSecs < shortSessionSecs {
		total++
		tags = append(tags, "very-short-session")
	}
	if s.ResponseLatencySecs > slowResponseSecs {
		total++
		tags = append(tags, "slow-response")
	}
	if s.AccessesToday > compulsiveAccesses {
		total++
		tags = append(tags, "compulsive-access")
	}
	return total, tags
}

// InferState derives the categorical state from one snapshot. It never fails
// for well-formed input; the point bands use a strict, ordered tie-break.
func InferState(s schema.SignalSnapshot) schema.InferredState {
	total, tags := score(s)

	var kind schema.StateKind
	switch {
	case total <= 1:
		kind = schema.StateStable
	case total <= 3:
		if s.ResponseLatencySecs > slowResponseSecs || s.PrevSessionSecs < shortSessionSecs {
			kind = schema.StateFatigue
		} else {
			kind = schema.StateDisconnection
		}
	default:
		if s.AccessesToday > compulsiveAccesses {
			kind = schema.StateAnxiety
		} else {
			kind = schema.StateIsolation
		}
	}

	// A self-report raises confidence regardless of the point total; the
	// behavioral signals alone never do.
	conf := schema.ConfidenceLow
	if s.SelfReport != nil {
		conf = schema.ConfidenceMedium
	}

	return schema.InferredState{
		Kind:       kind,
		Confidence: conf,
		Signals:    tags,
		Score:      total,
	}
}

// Recommend derives the scorer's contact hint. Any elevated total means
// soft contact, overriding time-of-day; a quiet total defers to the routine
// windows. Malformed access times fall to the safe wait branch.
func Recommend(s schema.SignalSnapshot) schema.Recommendation {
	total, _ := score(s)
	if total >= 2 {
		return schema.RecommendSoftContact
	}
	if m, ok := parseClockMinutes(s.AccessTime); ok && inRoutineWindow(m) {
		return schema.RecommendRoutine
	}
	return schema.RecommendWait
}

func inRoutineWindow(minutes int) bool {
	for _, w := range routineWindows {
		if minutes >= w[0] && minutes <= w[1] {
			return true
		}
	}
	return false
}

// parseClockMinutes parses "HH:MM" into minutes since midnight.
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
