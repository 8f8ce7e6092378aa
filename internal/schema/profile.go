// Package schema defines the domain types shared across ritmo packages.
package schema

// LifeStage identifies the accompaniment profile a user was onboarded with.
type LifeStage string

const (
	StageOlderAdult  LifeStage = "older_adult"
	StageActiveAdult LifeStage = "active_adult"
	StageYoung       LifeStage = "young"
	StageMigrant     LifeStage = "migrant"
	StageLowVision   LifeStage = "low_vision"
)

// CommsMode is the user's preferred way of receiving messages.
type CommsMode string

const (
	CommsText  CommsMode = "text"
	CommsAudio CommsMode = "audio"
	CommsMixed CommsMode = "mixed"
)

// Profile holds the per-user accompaniment settings.
type Profile struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name"`
	Stage    LifeStage `json:"stage"`
	Comms    CommsMode `json:"comms"`
	Timezone string    `json:"timezone"` // IANA name, e.g. "Europe/Madrid"
}

// RiskOffset is the fixed per-stage addition used by the heuristic risk path.
func (s LifeStage) RiskOffset() float64 {
	switch s {
	case StageOlderAdult, StageLowVision:
		return 0.1
	case StageMigrant:
		return 0.15
	}
	return 0
}

// FeatureWeight is the per-stage component of the classifier feature vector.
func (s LifeStage) FeatureWeight() float64 {
	switch s {
	case StageYoung:
		return 0.8
	case StageActiveAdult:
		return 0.6
	case StageOlderAdult:
		return 0.7
	case StageMigrant:
		return 0.9
	case StageLowVision:
		return 0.8
	}
	return 0.5
}

// LatencyMultiplier scales response-latency budgets per stage: older adults
// get more slack, younger users expect faster replies.
func (s LifeStage) LatencyMultiplier() float64 {
	switch s {
	case StageOlderAdult:
		return 1.5
	case StageYoung:
		return 0.7
	}
	return 1.0
}
