package risk

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/ritmolabs/ritmo/internal/schema"
)

var allTrends = []schema.Trend{
	schema.TrendImproving, schema.TrendStable,
	schema.TrendWorsening, schema.TrendInsufficient,
}

var allAlertLevels = []schema.AlertLevel{
	schema.AlertNormal, schema.AlertAttention,
	schema.AlertConcerning, schema.AlertCritical,
}

// Property: for fixed trend and alert factors, the adjusted probability is
// monotonically non-decreasing in the base probability.
func TestBlend_MonotoneInBase(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		trend := rapid.SampledFrom(allTrends).Draw(t, "trend")
		alert := rapid.SampledFrom(allAlertLevels).Draw(t, "alert")
		a := rapid.Float64Range(0, 1).Draw(t, "a")
		b := rapid.Float64Range(0, 1).Draw(t, "b")
		if a > b {
			a, b = b, a
		}
		if Blend(a, trend, alert) > Blend(b, trend, alert) {
			t.Fatalf("Blend not monotone: base %.4f > base %.4f under %s/%s", a, b, trend, alert)
		}
	})
}

// Property: the adjusted probability never leaves [0,1], whatever the
// factor combination.
func TestBlend_AlwaysClamped(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Float64Range(0, 1).Draw(t, "base")
		trend := rapid.SampledFrom(allTrends).Draw(t, "trend")
		alert := rapid.SampledFrom(allAlertLevels).Draw(t, "alert")
		p := Blend(base, trend, alert)
		if p < 0 || p > 1 {
			t.Fatalf("Blend(%.4f, %s, %s) = %.4f out of [0,1]", base, trend, alert, p)
		}
	})
}

// Property: the level buckets partition [0,1] in severity order.
func TestLevelFor_OrderedBuckets(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Float64Range(0, 1).Draw(t, "lo")
		hi := rapid.Float64Range(0, 1).Draw(t, "hi")
		if lo > hi {
			lo, hi = hi, lo
		}
		if severity(LevelFor(lo)) > severity(LevelFor(hi)) {
			t.Fatalf("level severity not monotone: %.4f→%s vs %.4f→%s",
				lo, LevelFor(lo), hi, LevelFor(hi))
		}
	})
}

func severity(l schema.RiskLevel) int {
	switch l {
	case schema.RiskMedium:
		return 1
	case schema.RiskHigh:
		return 2
	case schema.RiskCritical:
		return 3
	}
	return 0
}
