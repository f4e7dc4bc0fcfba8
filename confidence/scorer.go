package confidence

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradeguard/market"
	"tradeguard/profile"
)

// Config tunes the scorer.
type Config struct {
	// Mode selects the per-regime threshold table in force.
	Mode profile.Mode `yaml:"mode"`

	// MinConfluence rejects signals outright when fewer independent
	// indicators agree. Grid is exempt: its entries come from the grid
	// structure, not from indicator confluence.
	MinConfluence int `yaml:"min_confluence"`

	// ConservativeTrend removes the small credit neutral horizons earn
	// in the trend pillar.
	ConservativeTrend bool `yaml:"conservative_trend"`

	Thresholds profile.Thresholds `yaml:"thresholds"`
}

// DefaultConfig returns a neutral-mode scorer configuration.
func DefaultConfig() Config {
	return Config{
		Mode:          profile.Neutral,
		MinConfluence: 1,
		Thresholds:    profile.DefaultThresholds(),
	}
}

// Scorer computes confidence scores. Stateless between calls.
type Scorer struct {
	cfg Config
	log zerolog.Logger
}

func NewScorer(cfg Config) *Scorer {
	if cfg.MinConfluence <= 0 {
		cfg.MinConfluence = 1
	}
	if len(cfg.Thresholds.Tables) == 0 {
		cfg.Thresholds = profile.DefaultThresholds()
	}
	return &Scorer{
		cfg: cfg,
		log: log.With().Str("component", "confidence").Logger(),
	}
}

// Score runs the four-pillar model over the inputs. Hard gates (grid
// outside Range, confluence below minimum) reject with a zero total
// before any pillar is computed; everything else always produces a
// verdict, however penalized.
func (s *Scorer) Score(in Inputs) Score {
	sc := Score{
		Threshold: s.cfg.Thresholds.For(s.cfg.Mode, in.Assessment.Regime, in.AssetClass, in.Profile),
	}

	// An assessment built from too little history is not a market read;
	// no strategy is compatible with it in any mode.
	if in.Assessment.InsufficientData {
		sc.penalty("insufficient data, no strategy compatible")
		s.logScore(in, sc)
		return sc
	}

	if !in.Profile.RequiredRegimeOK(in.Assessment.Regime) {
		sc.penalty(fmt.Sprintf("%s requires range regime, market is %s",
			in.Profile.Strategy, in.Assessment.Regime))
		s.logScore(in, sc)
		return sc
	}

	if in.Confluence < s.cfg.MinConfluence && in.Profile.Strategy != profile.Grid {
		sc.penalty(fmt.Sprintf("confluence %d below minimum %d", in.Confluence, s.cfg.MinConfluence))
		s.logScore(in, sc)
		return sc
	}

	match := profile.MatchRegime(in.Profile.Strategy, in.Assessment.Clusters)

	sc.BaseSignal = s.baseSignalPillar(in, match, &sc)
	sc.TrendConfluence = s.trendPillar(in, &sc)
	sc.Volatility = s.volatilityPillar(in, &sc)
	sc.Sentiment = s.sentimentPillar(in, &sc)

	sc.Total = clamp(sc.BaseSignal+sc.TrendConfluence+sc.Volatility+sc.Sentiment, 0, 100)
	sc.Approved = sc.Total >= sc.Threshold

	s.logScore(in, sc)
	return sc
}

// baseSignalPillar grades signal quality: regime fit plus confluence.
func (s *Scorer) baseSignalPillar(in Inputs, match profile.Match, sc *Score) float64 {
	w := in.Profile.Weights.BaseSignal
	v := 0.375 * w

	switch match {
	case profile.Optimal:
		v += 0.5 * w
		sc.bonus(fmt.Sprintf("%s optimal for %s", in.Profile.Strategy, in.Assessment.Regime))
	case profile.Acceptable:
		v += 0.3 * w
		sc.bonus(fmt.Sprintf("%s acceptable for %s (secondary cluster)", in.Profile.Strategy, in.Assessment.Regime))
	default:
		v -= 0.125 * w
		sc.penalty(fmt.Sprintf("%s not suited to %s, scored down", in.Profile.Strategy, in.Assessment.Regime))
	}

	switch {
	case in.Confluence >= 5:
		v += 0.625 * w
		sc.bonus(fmt.Sprintf("excellent confluence (%d indicators)", in.Confluence))
	case in.Confluence >= 3:
		v += 0.45 * w
		sc.bonus(fmt.Sprintf("good confluence (%d indicators)", in.Confluence))
	case in.Confluence >= 2:
		v += 0.3 * w
		sc.bonus(fmt.Sprintf("basic confluence (%d indicators)", in.Confluence))
	case in.Confluence >= 1:
		v += 0.125 * w
		sc.bonus("single confirming indicator")
	default:
		sc.penalty("no indicator confluence")
	}

	return clamp(v, 0, w)
}

// Horizon weights: the long horizon counts double the short one.
const (
	horizonShortWeight  = 1.0
	horizonMediumWeight = 1.5
	horizonLongWeight   = 2.0
	horizonTotalWeight  = horizonShortWeight + horizonMediumWeight + horizonLongWeight
)

// neutralHorizonCredit is the share of a horizon's weight earned by a
// neutral reading in normal operation.
const neutralHorizonCredit = 0.3

func (s *Scorer) trendPillar(in Inputs, sc *Score) float64 {
	w := in.Profile.Weights.TrendConfluence

	credit := func(t market.Trend, hw float64, name string) float64 {
		if t.Agrees(in.Signal) {
			return hw
		}
		if t == market.Neutral {
			if s.cfg.ConservativeTrend {
				return 0
			}
			return hw * neutralHorizonCredit
		}
		sc.penalty(fmt.Sprintf("%s horizon against signal (%s)", name, t))
		return 0
	}

	earned := credit(in.Horizons.Long, horizonLongWeight, "long")
	earned += credit(in.Horizons.Medium, horizonMediumWeight, "medium")
	earned += credit(in.Horizons.Short, horizonShortWeight, "short")

	v := earned / horizonTotalWeight * w

	if in.Horizons.Long.Agrees(in.Signal) &&
		in.Horizons.Medium.Agrees(in.Signal) &&
		in.Horizons.Short.Agrees(in.Signal) {
		sc.bonus("all horizons aligned")
	}

	v = s.meanReversionCorrection(in, v, w, sc)

	return clamp(v, 0, w)
}

// meanReversionCorrection adjusts the trend pillar for stretched prices.
// Trend alignment that is really an overextension gets cut; a signal
// pointing back toward the long average from an extreme earns the same
// magnitude back. The correction is anti-symmetric in the signal side.
func (s *Scorer) meanReversionCorrection(in Inputs, v, w float64, sc *Score) float64 {
	dist := in.Assessment.LongMADistance
	abs := math.Abs(dist)

	var frac float64
	switch {
	case abs >= 8:
		frac = 0.5
	case abs >= 5:
		frac = 0.3
	case abs >= 3:
		frac = 0.15
	default:
		return v
	}

	extending := (in.Signal == market.Buy && dist > 0) || (in.Signal == market.Sell && dist < 0)
	if extending {
		sc.penalty(fmt.Sprintf("%s extends %.1f%% stretch beyond the long MA", in.Signal, dist))
		return v - frac*v
	}

	// Counter-extreme entries only earn the bonus once the stretch is
	// meaningful.
	if abs >= 5 {
		sc.bonus(fmt.Sprintf("%s reverts toward the long MA from %.1f%%", in.Signal, dist))
		return v + frac*v
	}
	return v
}

func (s *Scorer) volatilityPillar(in Inputs, sc *Score) float64 {
	w := in.Profile.Weights.Volatility
	ratio := in.Assessment.VolatilityRatio

	var v float64
	switch {
	case ratio >= 0.8 && ratio <= 1.5:
		v = 0.75 * w
		sc.bonus("volatility in the sweet spot")
	case ratio >= 0.5 && ratio <= 2.0:
		v = 0.5 * w
		sc.bonus("volatility acceptable")
	case ratio > 2.5:
		v = -0.25 * w
		sc.penalty(fmt.Sprintf("extreme volatility (%.2fx baseline)", ratio))
	default:
		v = 0.25 * w
	}

	if in.Indicators.VolumeSurge {
		v += 0.25 * w
		sc.bonus("volume confirms the move")
	}

	return clamp(v, 0, w)
}

func (s *Scorer) sentimentPillar(in Inputs, sc *Score) float64 {
	w := in.Profile.Weights.Sentiment

	// A scheduled high-impact event wipes the pillar no matter how
	// friendly the mood reads.
	if in.EventPending {
		sc.penalty("high-impact event pending, sentiment zeroed")
		return 0
	}

	var v float64
	if in.AssetClass.HasPositioningData() && in.Positioning.Available {
		switch {
		case in.Positioning.Bias.Agrees(in.Signal):
			v = 0.8 * w
			sc.bonus("positioning aligned with signal")
		case in.Positioning.Bias == market.Neutral:
			v = 0.4 * w
		default:
			sc.penalty(fmt.Sprintf("positioning against signal (%s)", in.Positioning.Bias))
		}
	} else {
		switch {
		case in.Sentiment.Supports(in.Signal):
			v = 2.0 / 3.0 * w
			sc.bonus(fmt.Sprintf("news sentiment supports %s", in.Signal))
		case in.Sentiment.Opposes(in.Signal):
			sc.penalty(fmt.Sprintf("news sentiment against signal (%s)", in.Sentiment))
		default:
			v = 1.0 / 3.0 * w
		}
	}

	// Quiet calendar earns a little on top.
	v += 0.2 * w

	return clamp(v, 0, w)
}

func (s *Scorer) logScore(in Inputs, sc Score) {
	s.log.Info().
		Stringer("strategy", in.Profile.Strategy).
		Stringer("signal", in.Signal).
		Stringer("regime", in.Assessment.Regime).
		Float64("rsi", in.Indicators.RSI).
		Int("confluence", in.Confluence).
		Float64("base", sc.BaseSignal).
		Float64("trend", sc.TrendConfluence).
		Float64("volatility", sc.Volatility).
		Float64("sentiment", sc.Sentiment).
		Float64("total", sc.Total).
		Float64("threshold", sc.Threshold).
		Bool("approved", sc.Approved).
		Msg("confidence scored")
}
