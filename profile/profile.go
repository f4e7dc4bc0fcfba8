package profile

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"tradeguard/regime"
)

// Weights are the four scoring pillars of a strategy, conceptually
// summing to 100. Each pillar's sub-score is capped at its weight.
type Weights struct {
	BaseSignal      float64 `yaml:"base_signal"`
	TrendConfluence float64 `yaml:"trend_confluence"`
	Volatility      float64 `yaml:"volatility"`
	Sentiment       float64 `yaml:"sentiment"`
}

func (w Weights) Sum() float64 {
	return w.BaseSignal + w.TrendConfluence + w.Volatility + w.Sentiment
}

// Profile is the immutable scoring profile of one strategy.
type Profile struct {
	Strategy  Strategy
	Label     string  `yaml:"label"`
	Weights   Weights `yaml:"weights"`
	Threshold float64 `yaml:"threshold"` // fallback approval threshold

	// RequiresRange restricts the strategy to the Range regime; grid
	// structures fall apart in trending markets.
	RequiresRange bool `yaml:"requires_range"`

	Exit ExitPolicy `yaml:"exit"`
}

// RequiredRegimeOK reports whether the profile's regime requirement is
// satisfied.
func (p Profile) RequiredRegimeOK(r regime.Regime) bool {
	return !p.RequiresRange || r == regime.Range
}

func defaultProfiles() map[Strategy]Profile {
	return map[Strategy]Profile{
		Day: {
			Strategy: Day, Label: "Day Trading",
			Weights:   Weights{BaseSignal: 40, TrendConfluence: 25, Volatility: 20, Sentiment: 15},
			Threshold: 70,
			Exit:      ExitPolicy{TimeExitMinutes: 240, Trailing: true, TrailTriggerPct: 40, TrailLockIn: 0.5},
		},
		Scalping: {
			Strategy: Scalping, Label: "Scalping",
			Weights:   Weights{BaseSignal: 45, TrendConfluence: 15, Volatility: 25, Sentiment: 15},
			Threshold: 68,
			Exit:      ExitPolicy{TimeExitMinutes: 60, Trailing: true, TrailTriggerPct: 30, TrailLockIn: 0.6},
		},
		Swing: {
			Strategy: Swing, Label: "Swing Trading",
			Weights:   Weights{BaseSignal: 35, TrendConfluence: 30, Volatility: 15, Sentiment: 20},
			Threshold: 72,
			Exit:      ExitPolicy{TimeExitMinutes: 1440, Trailing: true, TrailTriggerPct: 50, TrailLockIn: 0.4},
		},
		Momentum: {
			Strategy: Momentum, Label: "Momentum",
			Weights:   Weights{BaseSignal: 40, TrendConfluence: 30, Volatility: 20, Sentiment: 10},
			Threshold: 70,
			Exit:      ExitPolicy{TimeExitMinutes: 240, Trailing: true, TrailTriggerPct: 30, TrailLockIn: 0.5},
		},
		Breakout: {
			Strategy: Breakout, Label: "Breakout",
			Weights:   Weights{BaseSignal: 40, TrendConfluence: 20, Volatility: 25, Sentiment: 15},
			Threshold: 70,
			Exit:      ExitPolicy{TimeExitMinutes: 240, Trailing: true, TrailTriggerPct: 40, TrailLockIn: 0.5},
		},
		MeanReversion: {
			Strategy: MeanReversion, Label: "Mean Reversion",
			Weights:   Weights{BaseSignal: 45, TrendConfluence: 20, Volatility: 20, Sentiment: 15},
			Threshold: 70,
			Exit:      ExitPolicy{TimeExitMinutes: 180},
		},
		Grid: {
			Strategy: Grid, Label: "Grid Trading",
			Weights:       Weights{BaseSignal: 50, TrendConfluence: 10, Volatility: 25, Sentiment: 15},
			Threshold:     65,
			RequiresRange: true,
			Exit:          ExitPolicy{TimeExitMinutes: 480},
		},
	}
}

// Registry looks up strategy profiles. Unknown strategies fall back to
// the day profile with a logged configuration warning; lookup never
// hard-fails.
type Registry struct {
	profiles map[Strategy]Profile
	log      zerolog.Logger
}

// NewRegistry builds a registry from the built-in profiles.
func NewRegistry() *Registry {
	r := &Registry{
		profiles: defaultProfiles(),
		log:      log.With().Str("component", "profile").Logger(),
	}
	r.validate()
	return r
}

// NewRegistryFromFile builds a registry from the built-in profiles with
// YAML overrides applied on top.
func NewRegistryFromFile(path string) (*Registry, error) {
	r := NewRegistry()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile overrides: %w", err)
	}

	var raw map[string]Profile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse profile overrides: %w", err)
	}

	for name, override := range raw {
		s, err := ParseStrategy(name)
		if err != nil {
			return nil, fmt.Errorf("profile overrides: %w", err)
		}
		p := r.profiles[s]
		if override.Label != "" {
			p.Label = override.Label
		}
		if override.Weights.Sum() > 0 {
			p.Weights = override.Weights
		}
		if override.Threshold > 0 {
			p.Threshold = override.Threshold
		}
		if override.Exit.TimeExitMinutes > 0 {
			p.Exit = override.Exit
		}
		r.profiles[s] = p
	}

	r.validate()
	return r, nil
}

func (r *Registry) validate() {
	for s, p := range r.profiles {
		if sum := p.Weights.Sum(); sum < 99.5 || sum > 100.5 {
			// Tolerated: the model is a tuned heuristic and historic
			// configs drifted. Scoring caps per pillar regardless.
			r.log.Warn().
				Stringer("strategy", s).
				Float64("weight_sum", sum).
				Msg("pillar weights do not sum to 100")
		}
	}
}

// Lookup resolves a strategy name to its profile. Unknown names resolve
// to the day profile and are logged as a configuration gap.
func (r *Registry) Lookup(name string) Profile {
	s, err := ParseStrategy(name)
	if err != nil {
		r.log.Warn().Str("strategy", name).Msg("unknown strategy, using day profile")
		return r.profiles[Day]
	}
	return r.profiles[s]
}

// Get returns the profile for a known strategy.
func (r *Registry) Get(s Strategy) Profile {
	return r.profiles[s]
}
