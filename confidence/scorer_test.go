package confidence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeguard/market"
	"tradeguard/profile"
	"tradeguard/regime"
)

var registry = profile.NewRegistry()

func assessment(r regime.Regime, ratio, maDist float64) regime.Assessment {
	return regime.Assessment{
		Regime:          r,
		TrendStrength:   30,
		VolatilityRatio: ratio,
		LongMADistance:  maDist,
		Clusters:        regime.CompatibleClusters(r),
	}
}

func baseInputs(s profile.Strategy, side market.Side, r regime.Regime) Inputs {
	return Inputs{
		Profile:    registry.Get(s),
		Signal:     side,
		Assessment: assessment(r, 1.0, 0),
		AssetClass: market.ClassForex,
		Indicators: Indicators{RSI: 50},
		Confluence: 3,
	}
}

func TestGridOutsideRangeHardReject(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())
	for _, r := range []regime.Regime{
		regime.Uptrend, regime.Downtrend, regime.StrongUptrend,
		regime.StrongDowntrend, regime.HighVolatility, regime.Chaos,
	} {
		in := baseInputs(profile.Grid, market.Buy, r)
		in.Confluence = 5
		in.Horizons = Horizons{Short: market.Up, Medium: market.Up, Long: market.Up}
		got := sc.Score(in)
		assert.Zero(t, got.Total, r.String())
		assert.False(t, got.Approved, r.String())
		assert.NotEmpty(t, got.Penalties, r.String())
	}

	// In Range the grid strategy is scored normally.
	got := sc.Score(baseInputs(profile.Grid, market.Buy, regime.Range))
	assert.Greater(t, got.Total, 0.0)
}

func TestMinConfluenceGate(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())

	in := baseInputs(profile.Day, market.Buy, regime.Uptrend)
	in.Confluence = 0
	got := sc.Score(in)
	assert.Zero(t, got.Total)
	assert.False(t, got.Approved)

	// Grid is exempt from the confluence gate.
	in = baseInputs(profile.Grid, market.Buy, regime.Range)
	in.Confluence = 0
	got = sc.Score(in)
	assert.Greater(t, got.Total, 0.0)

	// Raised minimum applies.
	strict := DefaultConfig()
	strict.MinConfluence = 3
	sc = NewScorer(strict)
	in = baseInputs(profile.Day, market.Buy, regime.Uptrend)
	in.Confluence = 2
	assert.Zero(t, sc.Score(in).Total)
}

func TestPenalizedMatchStillScores(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())

	// Swing in chaos has no cluster overlap, primary or secondary.
	in := baseInputs(profile.Swing, market.Buy, regime.Chaos)
	got := sc.Score(in)

	assert.GreaterOrEqual(t, got.Total, 0.0)
	assert.GreaterOrEqual(t, got.BaseSignal, 0.0)
	assert.NotEmpty(t, got.Penalties)
	// A verdict is always rendered, even if it is a rejection.
	assert.Equal(t, got.Total >= got.Threshold, got.Approved)
}

func TestPillarsNeverExceedWeights(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())
	in := baseInputs(profile.Day, market.Buy, regime.StrongUptrend)
	in.Confluence = 7
	in.Horizons = Horizons{Short: market.Up, Medium: market.Up, Long: market.Up}
	in.Sentiment = SentimentBullish
	in.Indicators.VolumeSurge = true
	in.Assessment.VolatilityRatio = 1.0
	in.Assessment.LongMADistance = -6 // reversion bonus on top

	got := sc.Score(in)
	w := in.Profile.Weights

	assert.LessOrEqual(t, got.BaseSignal, w.BaseSignal)
	assert.LessOrEqual(t, got.TrendConfluence, w.TrendConfluence)
	assert.LessOrEqual(t, got.Volatility, w.Volatility)
	assert.LessOrEqual(t, got.Sentiment, w.Sentiment)
	assert.LessOrEqual(t, got.Total, 100.0)
	assert.True(t, got.Approved)
}

func TestMeanReversionAntiSymmetry(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())

	pillar := func(side market.Side, dist float64) float64 {
		in := baseInputs(profile.Day, side, regime.Range)
		in.Assessment.LongMADistance = dist
		return sc.Score(in).TrendConfluence
	}

	// Reference pillar with no stretch: all horizons neutral.
	ref := pillar(market.Buy, 0)
	require.Greater(t, ref, 0.0)
	require.InDelta(t, ref, pillar(market.Sell, 0), 1e-9)

	// +6%: Buy extends the stretch, Sell reverts it. Equal magnitude.
	buyPenalty := ref - pillar(market.Buy, 6)
	sellBonus := pillar(market.Sell, 6) - ref
	assert.Greater(t, buyPenalty, 0.0)
	assert.InDelta(t, buyPenalty, sellBonus, 1e-9)

	// Mirror at -6%.
	sellPenalty := ref - pillar(market.Sell, -6)
	buyBonus := pillar(market.Buy, -6) - ref
	assert.InDelta(t, sellPenalty, buyBonus, 1e-9)
	assert.InDelta(t, buyPenalty, sellPenalty, 1e-9)
}

func TestMeanReversionBands(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())

	pillar := func(dist float64) float64 {
		in := baseInputs(profile.Day, market.Buy, regime.Range)
		in.Assessment.LongMADistance = dist
		return sc.Score(in).TrendConfluence
	}

	ref := pillar(0)

	// Escalating penalty bands for a Buy stretching further above the MA.
	mild := ref - pillar(3.5)
	medium := ref - pillar(6)
	severe := ref - pillar(9)
	assert.InDelta(t, 0.15*ref, mild, 1e-9)
	assert.InDelta(t, 0.30*ref, medium, 1e-9)
	assert.InDelta(t, 0.50*ref, severe, 1e-9)

	// Below 3% no correction at all.
	assert.InDelta(t, ref, pillar(2.9), 1e-9)
	// Reverting from a mild stretch earns nothing yet.
	assert.InDelta(t, ref, pillar(-3.5), 1e-9)
	// Reverting from a real extreme earns the bonus.
	assert.Greater(t, pillar(-6), ref)
}

func TestConservativeTrendMode(t *testing.T) {
	t.Parallel()

	normal := NewScorer(DefaultConfig())

	strict := DefaultConfig()
	strict.ConservativeTrend = true
	conservative := NewScorer(strict)

	in := baseInputs(profile.Day, market.Buy, regime.Range)
	// All horizons neutral: credit in normal mode, zero when conservative.
	assert.Greater(t, normal.Score(in).TrendConfluence, 0.0)
	assert.Zero(t, conservative.Score(in).TrendConfluence)

	// Aligned horizons score identically in both modes.
	in.Horizons = Horizons{Short: market.Up, Medium: market.Up, Long: market.Up}
	assert.InDelta(t, normal.Score(in).TrendConfluence, conservative.Score(in).TrendConfluence, 1e-9)
}

func TestTrendHorizonWeighting(t *testing.T) {
	t.Parallel()

	strict := DefaultConfig()
	strict.ConservativeTrend = true
	sc := NewScorer(strict)

	pillar := func(h Horizons) float64 {
		in := baseInputs(profile.Day, market.Buy, regime.Uptrend)
		in.Horizons = h
		return sc.Score(in).TrendConfluence
	}

	w := registry.Get(profile.Day).Weights.TrendConfluence
	longOnly := pillar(Horizons{Long: market.Up, Medium: market.Down, Short: market.Down})
	mediumOnly := pillar(Horizons{Medium: market.Up, Long: market.Down, Short: market.Down})
	shortOnly := pillar(Horizons{Short: market.Up, Medium: market.Down, Long: market.Down})

	assert.InDelta(t, 2.0/4.5*w, longOnly, 1e-9)
	assert.InDelta(t, 1.5/4.5*w, mediumOnly, 1e-9)
	assert.InDelta(t, 1.0/4.5*w, shortOnly, 1e-9)
	assert.Greater(t, longOnly, mediumOnly)
	assert.Greater(t, mediumOnly, shortOnly)
}

func TestVolatilityBands(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())
	w := registry.Get(profile.Day).Weights.Volatility

	pillar := func(ratio float64, surge bool) float64 {
		in := baseInputs(profile.Day, market.Buy, regime.Range)
		in.Assessment.VolatilityRatio = ratio
		in.Indicators.VolumeSurge = surge
		return sc.Score(in).Volatility
	}

	assert.InDelta(t, 0.75*w, pillar(1.0, false), 1e-9)
	assert.InDelta(t, 0.5*w, pillar(1.8, false), 1e-9)
	assert.InDelta(t, 0.25*w, pillar(0.3, false), 1e-9)
	// Beyond 2.5x the pillar goes negative and clamps at zero.
	assert.Zero(t, pillar(3.0, false))
	// Volume surge is worth a quarter of the pillar.
	assert.InDelta(t, w, pillar(1.0, true), 1e-9)
	// Surge only offsets the extreme-volatility penalty back to zero.
	assert.Zero(t, pillar(3.0, true))
}

func TestSentimentPillar(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())
	w := registry.Get(profile.Day).Weights.Sentiment

	pillar := func(mut func(*Inputs)) float64 {
		in := baseInputs(profile.Day, market.Buy, regime.Range)
		mut(&in)
		return sc.Score(in).Sentiment
	}

	// Label match path for a class without positioning data.
	supporting := pillar(func(in *Inputs) { in.Sentiment = SentimentBullish })
	assert.InDelta(t, 2.0/3.0*w+0.2*w, supporting, 1e-9)

	opposing := pillar(func(in *Inputs) { in.Sentiment = SentimentBearish })
	assert.InDelta(t, 0.2*w, opposing, 1e-9)

	// Positioning data takes over for commodity classes.
	aligned := pillar(func(in *Inputs) {
		in.AssetClass = market.ClassMetals
		in.Positioning = Positioning{Available: true, Bias: market.Up}
		in.Sentiment = SentimentBearish // ignored in favor of positioning
	})
	assert.InDelta(t, 0.8*w+0.2*w, aligned, 1e-9)

	// A pending high-impact event zeroes the pillar regardless.
	for _, mut := range []func(*Inputs){
		func(in *Inputs) { in.Sentiment = SentimentBullish },
		func(in *Inputs) {
			in.AssetClass = market.ClassEnergy
			in.Positioning = Positioning{Available: true, Bias: market.Up}
		},
	} {
		mutCopy := mut
		v := pillar(func(in *Inputs) {
			mutCopy(in)
			in.EventPending = true
		})
		assert.Zero(t, v)
	}
}

func TestCryptoFixedThreshold(t *testing.T) {
	t.Parallel()

	for _, mode := range []profile.Mode{profile.Conservative, profile.Neutral, profile.Aggressive} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		sc := NewScorer(cfg)

		in := baseInputs(profile.Day, market.Buy, regime.Range)
		in.AssetClass = market.ClassCrypto
		got := sc.Score(in)
		assert.InDelta(t, 72.0, got.Threshold, 1e-9, mode.String())
	}
}

func TestModeThresholds(t *testing.T) {
	t.Parallel()

	threshold := func(mode profile.Mode) float64 {
		cfg := DefaultConfig()
		cfg.Mode = mode
		in := baseInputs(profile.Day, market.Buy, regime.Uptrend)
		return NewScorer(cfg).Score(in).Threshold
	}

	assert.Greater(t, threshold(profile.Conservative), threshold(profile.Neutral))
	assert.Greater(t, threshold(profile.Neutral), threshold(profile.Aggressive))
}

func TestInsufficientDataNeverApproves(t *testing.T) {
	t.Parallel()

	// The strongest proposal imaginable: full confluence, aligned
	// horizons, supportive sentiment, confirming volume. None of it may
	// outweigh an assessment built from too little history, in any mode.
	for _, mode := range []profile.Mode{profile.Conservative, profile.Neutral, profile.Aggressive} {
		cfg := DefaultConfig()
		cfg.Mode = mode
		sc := NewScorer(cfg)

		in := baseInputs(profile.Day, market.Buy, regime.Chaos)
		in.Assessment = regime.Assessment{Regime: regime.Chaos, InsufficientData: true, VolatilityRatio: 1.0}
		in.Horizons = Horizons{Short: market.Up, Medium: market.Up, Long: market.Up}
		in.Sentiment = SentimentBullish
		in.Indicators = Indicators{RSI: 60, VolumeSurge: true}
		in.Confluence = 5

		got := sc.Score(in)
		assert.False(t, got.Approved, mode.String())
		assert.Zero(t, got.Total, mode.String())
		assert.NotEmpty(t, got.Penalties, mode.String())
	}
}

func TestParseSentiment(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SentimentBullish, ParseSentiment("Bullish"))
	assert.Equal(t, SentimentBearish, ParseSentiment(" negative "))
	assert.Equal(t, SentimentNeutral, ParseSentiment("sideways"))
	assert.Equal(t, SentimentNeutral, ParseSentiment(""))
}

func TestScoreIsDeterministic(t *testing.T) {
	t.Parallel()

	sc := NewScorer(DefaultConfig())
	in := baseInputs(profile.Momentum, market.Sell, regime.Downtrend)
	in.Horizons = Horizons{Short: market.Down, Medium: market.Down, Long: market.Neutral}
	in.Assessment.LongMADistance = -4

	a := sc.Score(in)
	b := sc.Score(in)
	assert.True(t, math.Abs(a.Total-b.Total) < 1e-12)
	assert.Equal(t, a.Approved, b.Approved)
}
