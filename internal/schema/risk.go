package schema

// RiskLevel buckets an adjusted risk probability.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskPrediction is the blender's per-request output. It has no lifecycle
// beyond the request that produced it.
type RiskPrediction struct {
	Probability     float64   // adjusted, in [0,1]
	Level           RiskLevel //
	Factors         []string  // contributing-factor tags
	ModelConfidence float64   // fixed per path: classifier vs heuristic
}
