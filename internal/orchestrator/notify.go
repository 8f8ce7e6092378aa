package orchestrator

import "github.com/ritmolabs/ritmo/internal/schema"

// ShouldNotify gates proactive sends (scheduled check-in prompts). It is
// deliberately conservative: a user in a vulnerable state is contacted
// through the decision pipeline, never by the routine scheduler.
func (o *Orchestrator) ShouldNotify(state schema.StateKind, daysInactive int) bool {
	switch state {
	case schema.StateAnxiety, schema.StateIsolation, schema.StateDisconnection:
		return false
	}
	if state != schema.StateStable {
		return false
	}
	// Stable users: nudge after a short absence, or on the regular cadence
	// when they were active today.
	return daysInactive >= 2 || daysInactive == 0
}
