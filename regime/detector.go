package regime

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradeguard/indicators"
	"tradeguard/market"
)

// Assessment is the result of one market classification pass. It is
// created fresh every cycle and never mutated.
type Assessment struct {
	Regime           Regime
	TrendStrength    float64 // ADX, 0-100
	ATR              float64
	VolatilityRatio  float64 // recent ATR / baseline ATR
	VolatilityLevel  VolatilityLevel
	TrendDirection   market.Trend
	LongMADistance   float64 // signed %, positive = price above the long MA
	LongMAPeriod     int
	Clusters         []Cluster
	InsufficientData bool
	Timestamp        time.Time
}

// DetectorConfig holds the classification windows and thresholds.
type DetectorConfig struct {
	ADXPeriod      int     `yaml:"adx_period"`       // default 14
	ATRPeriod      int     `yaml:"atr_period"`       // default 14
	BaselineOffset int     `yaml:"baseline_offset"`  // default 50
	FastEMA        int     `yaml:"fast_ema"`         // default 20
	SlowEMA        int     `yaml:"slow_ema"`         // default 50
	LongMA         int     `yaml:"long_ma"`          // default 200
	MinCandles     int     `yaml:"min_candles"`      // default 50
	HighVolRatio   float64 `yaml:"high_vol_ratio"`   // default 2.0
	StrongTrendADX float64 `yaml:"strong_trend_adx"` // default 40
	TrendADX       float64 `yaml:"trend_adx"`        // default 25
	RangeADX       float64 `yaml:"range_adx"`        // default 20
}

// DefaultDetectorConfig returns the standard windows and thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		ADXPeriod:      14,
		ATRPeriod:      14,
		BaselineOffset: 50,
		FastEMA:        20,
		SlowEMA:        50,
		LongMA:         200,
		MinCandles:     50,
		HighVolRatio:   2.0,
		StrongTrendADX: 40,
		TrendADX:       25,
		RangeADX:       20,
	}
}

// Detector classifies a price series into a market regime.
type Detector struct {
	cfg DetectorConfig
	log zerolog.Logger
}

func NewDetector(cfg DetectorConfig) *Detector {
	def := DefaultDetectorConfig()
	if cfg.ADXPeriod <= 0 {
		cfg.ADXPeriod = def.ADXPeriod
	}
	if cfg.ATRPeriod <= 0 {
		cfg.ATRPeriod = def.ATRPeriod
	}
	if cfg.BaselineOffset <= 0 {
		cfg.BaselineOffset = def.BaselineOffset
	}
	if cfg.FastEMA <= 0 {
		cfg.FastEMA = def.FastEMA
	}
	if cfg.SlowEMA <= 0 {
		cfg.SlowEMA = def.SlowEMA
	}
	if cfg.LongMA <= 0 {
		cfg.LongMA = def.LongMA
	}
	if cfg.MinCandles <= 0 {
		cfg.MinCandles = def.MinCandles
	}
	if cfg.HighVolRatio <= 0 {
		cfg.HighVolRatio = def.HighVolRatio
	}
	if cfg.StrongTrendADX <= 0 {
		cfg.StrongTrendADX = def.StrongTrendADX
	}
	if cfg.TrendADX <= 0 {
		cfg.TrendADX = def.TrendADX
	}
	if cfg.RangeADX <= 0 {
		cfg.RangeADX = def.RangeADX
	}
	return &Detector{
		cfg: cfg,
		log: log.With().Str("component", "regime").Logger(),
	}
}

// Assess classifies the series. Too little data never fails: it yields a
// Chaos assessment with zeroed metrics, the insufficient-data marker set
// and no compatible clusters, which downstream scoring treats as
// "no strategy fits".
func (d *Detector) Assess(series market.Series) Assessment {
	now := time.Now().UTC()
	if !series.Last().Time.IsZero() {
		now = series.Last().Time
	}

	if len(series) < d.cfg.MinCandles {
		d.log.Warn().
			Int("candles", len(series)).
			Int("min", d.cfg.MinCandles).
			Msg("insufficient data, degrading to chaos")
		return Assessment{
			Regime:           Chaos,
			TrendDirection:   market.Neutral,
			InsufficientData: true,
			Timestamp:        now,
		}
	}

	adx := d.trendStrength(series)
	atr, ratio := d.volatility(series)
	level := levelOf(ratio)
	dir := d.trendDirection(series)
	longPeriod, distance := d.longMADistance(series)

	r := d.classify(adx, ratio, dir, level)

	a := Assessment{
		Regime:          r,
		TrendStrength:   adx,
		ATR:             atr,
		VolatilityRatio: ratio,
		VolatilityLevel: level,
		TrendDirection:  dir,
		LongMADistance:  distance,
		LongMAPeriod:    longPeriod,
		Clusters:        CompatibleClusters(r),
		Timestamp:       now,
	}

	d.log.Info().
		Stringer("regime", r).
		Float64("adx", adx).
		Float64("atr", atr).
		Float64("vol_ratio", ratio).
		Stringer("trend", dir).
		Float64("long_ma_distance_pct", distance).
		Msg("market assessed")

	return a
}

func (d *Detector) trendStrength(series market.Series) float64 {
	adx, err := indicators.ADX(series, d.cfg.ADXPeriod)
	if err != nil {
		// Degenerate (e.g. perfectly flat) data reads as no trend.
		return 0
	}
	return adx
}

// volatility returns the recent ATR and its ratio to a baseline ATR
// computed over the series excluding the last BaselineOffset candles.
// Without enough history for a baseline the ratio defaults to 1.0.
func (d *Detector) volatility(series market.Series) (atr, ratio float64) {
	atr, err := indicators.ATR(series, d.cfg.ATRPeriod)
	if err != nil {
		return 0, 1.0
	}

	ratio = 1.0
	if len(series) > 2*d.cfg.BaselineOffset {
		baseline, err := indicators.ATR(series[:len(series)-d.cfg.BaselineOffset], d.cfg.ATRPeriod)
		if err == nil && baseline > 0 {
			ratio = atr / baseline
		}
	}
	return atr, ratio
}

func (d *Detector) trendDirection(series market.Series) market.Trend {
	fast, errF := indicators.EMA(series, d.cfg.FastEMA)
	slow, errS := indicators.EMA(series, d.cfg.SlowEMA)
	if errF != nil || errS != nil {
		return market.Neutral
	}

	price := series.Last().Close
	switch {
	case price > fast && fast > slow:
		return market.Up
	case price < fast && fast < slow:
		return market.Down
	default:
		return market.Neutral
	}
}

// longMADistance computes the signed percentage distance of the current
// close from the long moving average, using the longest window available
// up to the configured LongMA period.
func (d *Detector) longMADistance(series market.Series) (period int, distance float64) {
	period = d.cfg.LongMA
	if len(series) < period {
		period = len(series)
	}
	ma, err := indicators.SMA(series, period)
	if err != nil || ma <= 0 {
		return period, 0
	}
	return period, (series.Last().Close - ma) / ma * 100
}

func (d *Detector) classify(adx, ratio float64, dir market.Trend, level VolatilityLevel) Regime {
	switch {
	case ratio > d.cfg.HighVolRatio:
		return HighVolatility
	case adx > d.cfg.StrongTrendADX:
		if dir == market.Up {
			return StrongUptrend
		}
		return StrongDowntrend
	case adx > d.cfg.TrendADX:
		if dir == market.Up {
			return Uptrend
		}
		return Downtrend
	case adx < d.cfg.RangeADX:
		return Range
	case level == VolHigh:
		return Chaos
	default:
		return Range
	}
}
