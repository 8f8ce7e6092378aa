package risk

import (
	"log/slog"

	"github.com/ritmolabs/ritmo/internal/schema"
)

// Fixed model-confidence constants per prediction path.
const (
	confidenceClassifier = 0.8
	confidenceHeuristic  = 0.5
)

// Heuristic weights.
const (
	crisisWeight   = 0.8 // counted once when any crisis term is present
	negativeWeight = 0.2 // per distinct negative term
)

// Level thresholds on the adjusted probability.
const (
	thresholdCritical = 0.8
	thresholdHigh     = 0.6
	thresholdMedium   = 0.4
)

// multipleIndicators marks predictions whose adjusted probability suggests
// several factors compounding.
const multipleIndicators = 0.7

// Longitudinal is the already-computed trend/alert context the blender
// observes. It must come from the metrics engine, never be recomputed here.
type Longitudinal struct {
	Trend      schema.Trend
	AlertLevel schema.AlertLevel // most severe for the user; AlertNormal if none
	Streak     int
}

// Blender produces per-message risk predictions. The classifier capability
// is resolved once at wiring time: a nil classifier means heuristic-only
// for the lifetime of the process.
type Blender struct {
	lex *Lexicon
	clf schema.Classifier
}

func NewBlender(lex *Lexicon, clf schema.Classifier) *Blender {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Blender{lex: lex, clf: clf}
}

// HasClassifier reports whether the trained-model path is active.
func (b *Blender) HasClassifier() bool { return b.clf != nil }

// Predict estimates the risk for one message in its longitudinal context.
// It never fails: a classifier error degrades to the heuristic path.
func (b *Blender) Predict(message string, profile schema.Profile, act Activity, lg Longitudinal) schema.RiskPrediction {
	base, conf := b.baseProbability(message, profile, act)
	adjusted := Blend(base, lg.Trend, lg.AlertLevel)

	return schema.RiskPrediction{
		Probability:     adjusted,
		Level:           LevelFor(adjusted),
		Factors:         b.factors(message, lg, adjusted),
		ModelConfidence: conf,
	}
}

func (b *Blender) baseProbability(message string, profile schema.Profile, act Activity) (float64, float64) {
	if b.clf != nil {
		p, err := b.clf.PredictProba(Features(b.lex, message, profile, act))
		if err == nil {
			return clamp01(p), confidenceClassifier
		}
		slog.Warn("risk: classifier failed, using heuristic", "user", profile.UserID, "err", err)
	}
	return b.heuristic(message, profile), confidenceHeuristic
}

// heuristic scores a message from keyword hits alone: crisis language
// weighs 0.8 once, each negative term adds 0.2, the life stage adds its
// fixed offset.
func (b *Blender) heuristic(message string, profile schema.Profile) float64 {
	p := 0.0
	if HasHit(message, b.lex.Crisis) {
		p += crisisWeight
	}
	p += float64(CountHits(message, b.lex.Negative)) * negativeWeight
	p += profile.Stage.RiskOffset()
	return clamp01(p)
}

// Blend applies the longitudinal multipliers to a base probability and
// clamps the result to [0,1]. Unknown or insufficient-data trends are
// neutral.
func Blend(base float64, trend schema.Trend, alert schema.AlertLevel) float64 {
	p := base * trendFactor(trend) * alertFactor(alert)
	if p > 1 {
		return 1
	}
	if p < 0 {
		return 0
	}
	return p
}

func trendFactor(t schema.Trend) float64 {
	switch t {
	case schema.TrendWorsening:
		return 1.3
	case schema.TrendImproving:
		return 0.7
	}
	return 1.0
}

func alertFactor(a schema.AlertLevel) float64 {
	switch a {
	case schema.AlertCritical:
		return 1.5
	case schema.AlertConcerning:
		return 1.2
	case schema.AlertAttention:
		return 1.0
	}
	return 0.8
}

// LevelFor buckets an adjusted probability.
func LevelFor(p float64) schema.RiskLevel {
	switch {
	case p >= thresholdCritical:
		return schema.RiskCritical
	case p >= thresholdHigh:
		return schema.RiskHigh
	case p >= thresholdMedium:
		return schema.RiskMedium
	}
	return schema.RiskLow
}

func (b *Blender) factors(message string, lg Longitudinal, adjusted float64) []string {
	var tags []string
	if HasHit(message, b.lex.Crisis) {
		tags = append(tags, "crisis-language")
	}
	if HasHit(message, b.lex.Isolation) {
		tags = append(tags, "isolation-language")
	}
	if HasHit(message, b.lex.Fatigue) {
		tags = append(tags, "fatigue-language")
	}
	if lg.Trend == schema.TrendWorsening {
		tags = append(tags, "worsening-trend")
	}
	if lg.Streak > 3 {
		tags = append(tags, "negative-streak")
	}
	if adjusted > multipleIndicators {
		tags = append(tags, "multiple-indicators")
	}
	if len(tags) == 0 {
		tags = append(tags, "general-evaluation")
	}
	return tags
}
