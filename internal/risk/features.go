package risk

import (
	"strings"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// FeatureCount is the fixed length of the classifier feature vector.
// The trained model and the extractor must agree on it.
const FeatureCount = 8

// Activity carries the recent-usage counts that feed the feature vector.
type Activity struct {
	TotalMessages  int // lifetime stored exchanges for this user
	RecentMessages int // exchanges in the last few days
}

// Features builds the classifier input from message lexical signals, usage
// counts, and the life-stage weight. Every component is normalized to [0,1].
func Features(lex *Lexicon, message string, profile schema.Profile, act Activity) []float64 {
	crisisHits := CountHits(message, lex.Crisis)
	positiveHits := CountHits(message, lex.Positive)

	return []float64{
		clamp01(float64(crisisHits) / 3),
		clamp01(float64(positiveHits) / 2),
		clamp01(float64(act.TotalMessages) / 100),
		clamp01(float64(act.RecentMessages) / 10),
		profile.Stage.FeatureWeight(),
		clamp01(float64(len(message)) / 200),
		boolFeature(strings.Contains(message, "?") || strings.Contains(message, "¿")),
		boolFeature(strings.Contains(message, "!") || strings.Contains(message, "¡")),
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
