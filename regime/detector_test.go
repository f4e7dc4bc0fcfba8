package regime

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeguard/market"
)

func candles(closes []float64, span float64) market.Series {
	s := make(market.Series, len(closes))
	base := time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)
	for i, c := range closes {
		s[i] = market.Candle{
			Open: c, High: c + span/2, Low: c - span/2, Close: c,
			Time: base.Add(time.Duration(i) * time.Minute),
		}
	}
	return s
}

func trending(start, step float64, n int, span float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = start + step*float64(i)
	}
	return candles(closes, span)
}

// choppy builds a sideways series oscillating around a level.
func choppy(level, amp float64, n int, span float64) market.Series {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = level + amp*math.Sin(float64(i)/3)
	}
	return candles(closes, span)
}

func TestAssessInsufficientData(t *testing.T) {
	t.Parallel()

	d := NewDetector(DetectorConfig{})
	for _, n := range []int{0, 1, 10, 49} {
		a := d.Assess(trending(100, 1, n, 1))
		assert.Equal(t, Chaos, a.Regime, "len %d", n)
		assert.True(t, a.InsufficientData)
		assert.Empty(t, a.Clusters)
		assert.Zero(t, a.TrendStrength)
		assert.Zero(t, a.ATR)
	}
}

func TestAssessStrongUptrend(t *testing.T) {
	t.Parallel()

	d := NewDetector(DetectorConfig{})
	a := d.Assess(trending(100, 2, 120, 1))

	assert.Equal(t, StrongUptrend, a.Regime)
	assert.False(t, a.InsufficientData)
	assert.Equal(t, market.Up, a.TrendDirection)
	assert.Greater(t, a.TrendStrength, 40.0)
	assert.Greater(t, a.LongMADistance, 0.0)
	require.NotEmpty(t, a.Clusters)
	assert.Equal(t, TrendFollowing, a.Clusters[0])
}

func TestAssessStrongDowntrend(t *testing.T) {
	t.Parallel()

	d := NewDetector(DetectorConfig{})
	a := d.Assess(trending(500, -2, 120, 1))

	assert.Equal(t, StrongDowntrend, a.Regime)
	assert.Equal(t, market.Down, a.TrendDirection)
	assert.Less(t, a.LongMADistance, 0.0)
}

func TestAssessRange(t *testing.T) {
	t.Parallel()

	d := NewDetector(DetectorConfig{})
	a := d.Assess(choppy(100, 1.5, 150, 1))

	assert.Equal(t, Range, a.Regime)
	require.NotEmpty(t, a.Clusters)
	assert.Equal(t, MeanReversion, a.Clusters[0])
}

func TestAssessHighVolatility(t *testing.T) {
	t.Parallel()

	// Quiet history, then the candle span explodes: recent ATR far above
	// the baseline window.
	s := choppy(100, 0.5, 150, 0.5)
	wild := choppy(100, 0.5, 30, 8)
	base := s[len(s)-1].Time
	for i := range wild {
		wild[i].Time = base.Add(time.Duration(i+1) * time.Minute)
	}
	s = append(s, wild...)

	d := NewDetector(DetectorConfig{})
	a := d.Assess(s)

	assert.Equal(t, HighVolatility, a.Regime)
	assert.Greater(t, a.VolatilityRatio, 2.0)
	assert.Equal(t, VolExtreme, a.VolatilityLevel)
}

func TestAssessUsesLongestAvailableMA(t *testing.T) {
	t.Parallel()

	d := NewDetector(DetectorConfig{})

	short := d.Assess(trending(100, 1, 80, 1))
	assert.Equal(t, 80, short.LongMAPeriod)

	long := d.Assess(trending(100, 1, 250, 1))
	assert.Equal(t, 200, long.LongMAPeriod)
}

func TestCompatibleClusters(t *testing.T) {
	t.Parallel()

	for _, r := range Regimes {
		fit := CompatibleClusters(r)
		assert.NotEmpty(t, fit, r.String())
		assert.LessOrEqual(t, len(fit), 4, r.String())
	}
	assert.Equal(t, []Cluster{Scalping}, CompatibleClusters(Chaos))
}
