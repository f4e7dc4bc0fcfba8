package profile

import (
	"fmt"
	"strings"

	"tradeguard/market"
	"tradeguard/regime"
)

// Mode is the overall aggressiveness of the engine. It selects which
// per-regime threshold table is in force.
type Mode int

const (
	Neutral Mode = iota
	Conservative
	Aggressive
)

func (m Mode) String() string {
	switch m {
	case Conservative:
		return "conservative"
	case Aggressive:
		return "aggressive"
	default:
		return "neutral"
	}
}

// MarshalYAML renders the mode by name in configuration files.
func (m Mode) MarshalYAML() (interface{}, error) { return m.String(), nil }

// UnmarshalYAML accepts the mode by name.
func (m *Mode) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseMode(name)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode normalizes a mode name from configuration.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "neutral":
		return Neutral, nil
	case "conservative":
		return Conservative, nil
	case "aggressive":
		return Aggressive, nil
	default:
		return Neutral, fmt.Errorf("unknown mode %q", name)
	}
}

// ThresholdTable holds the per-regime approval thresholds for one mode.
// One structure parameterized by mode replaces the three hand-copied
// tables the system used to drift between.
type ThresholdTable struct {
	PerRegime map[regime.Regime]float64 `yaml:"per_regime"`
	GlobalMin float64                   `yaml:"global_min"`
}

// Thresholds resolves the dynamic approval threshold for a decision.
type Thresholds struct {
	Tables map[Mode]ThresholdTable `yaml:"tables"`

	// CryptoFixed applies to the crypto asset class in every mode; the
	// 24/7 books never get the calmer-session discounts.
	CryptoFixed float64 `yaml:"crypto_fixed"`
}

// DefaultThresholds returns the built-in three-mode threshold tables.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CryptoFixed: 72,
		Tables: map[Mode]ThresholdTable{
			Conservative: {
				GlobalMin: 75,
				PerRegime: map[regime.Regime]float64{
					regime.StrongUptrend:   78,
					regime.StrongDowntrend: 78,
					regime.Uptrend:         76,
					regime.Downtrend:       76,
					regime.Range:           75,
					regime.HighVolatility:  85,
					regime.Chaos:           90,
				},
			},
			Neutral: {
				GlobalMin: 65,
				PerRegime: map[regime.Regime]float64{
					regime.StrongUptrend:   68,
					regime.StrongDowntrend: 68,
					regime.Uptrend:         70,
					regime.Downtrend:       70,
					regime.Range:           66,
					regime.HighVolatility:  78,
					regime.Chaos:           85,
				},
			},
			Aggressive: {
				GlobalMin: 55,
				PerRegime: map[regime.Regime]float64{
					regime.StrongUptrend:   58,
					regime.StrongDowntrend: 58,
					regime.Uptrend:         60,
					regime.Downtrend:       60,
					regime.Range:           56,
					regime.HighVolatility:  70,
					regime.Chaos:           80,
				},
			},
		},
	}
}

// For resolves the threshold for a mode, regime and asset class. The
// profile's own threshold backstops a missing table entry, and nothing
// resolves below the mode's global minimum.
func (t Thresholds) For(mode Mode, r regime.Regime, class market.AssetClass, p Profile) float64 {
	if class == market.ClassCrypto && t.CryptoFixed > 0 {
		return t.CryptoFixed
	}

	table, ok := t.Tables[mode]
	if !ok {
		return p.Threshold
	}

	th, ok := table.PerRegime[r]
	if !ok {
		th = p.Threshold
	}
	if th < table.GlobalMin {
		th = table.GlobalMin
	}
	return th
}
