// Package regime classifies current market behavior from a price series
// and reports which strategy clusters are workable in it.
package regime

import (
	"fmt"
	"strings"
)

// Regime is a discrete classification of current market behavior.
type Regime int

const (
	Chaos Regime = iota
	Range
	Uptrend
	Downtrend
	StrongUptrend
	StrongDowntrend
	HighVolatility
)

func (r Regime) String() string {
	switch r {
	case Range:
		return "range"
	case Uptrend:
		return "uptrend"
	case Downtrend:
		return "downtrend"
	case StrongUptrend:
		return "strong_uptrend"
	case StrongDowntrend:
		return "strong_downtrend"
	case HighVolatility:
		return "high_volatility"
	default:
		return "chaos"
	}
}

// ParseRegime resolves a regime by its configuration name.
func ParseRegime(name string) (Regime, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, r := range Regimes {
		if r.String() == key {
			return r, nil
		}
	}
	return Chaos, fmt.Errorf("unknown regime %q", name)
}

// MarshalYAML renders the regime by name in configuration files.
func (r Regime) MarshalYAML() (interface{}, error) { return r.String(), nil }

// UnmarshalYAML accepts the regime by name.
func (r *Regime) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseRegime(name)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// Regimes lists every regime, for iterating threshold tables.
var Regimes = []Regime{
	Chaos, Range, Uptrend, Downtrend, StrongUptrend, StrongDowntrend, HighVolatility,
}

// VolatilityLevel is a coarse label for the volatility ratio.
type VolatilityLevel int

const (
	VolLow VolatilityLevel = iota
	VolNormal
	VolHigh
	VolExtreme
)

func (v VolatilityLevel) String() string {
	switch v {
	case VolLow:
		return "low"
	case VolHigh:
		return "high"
	case VolExtreme:
		return "extreme"
	default:
		return "normal"
	}
}

func levelOf(ratio float64) VolatilityLevel {
	switch {
	case ratio > 2.0:
		return VolExtreme
	case ratio > 1.5:
		return VolHigh
	case ratio > 0.7:
		return VolNormal
	default:
		return VolLow
	}
}
