// Package profile is the static registry of strategy scoring profiles:
// pillar weights, approval thresholds, cluster membership and exit policy
// per strategy, with YAML overrides.
package profile

import (
	"errors"
	"fmt"
	"strings"

	"tradeguard/regime"
)

// ErrUnknownStrategy marks a strategy name outside the closed set.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Strategy identifies a trading strategy. It is a closed set; free-form
// names from configuration go through ParseStrategy at the boundary.
type Strategy int

const (
	Day Strategy = iota
	Scalping
	Swing
	Momentum
	Breakout
	MeanReversion
	Grid
)

func (s Strategy) String() string {
	switch s {
	case Scalping:
		return "scalping"
	case Swing:
		return "swing"
	case Momentum:
		return "momentum"
	case Breakout:
		return "breakout"
	case MeanReversion:
		return "mean_reversion"
	case Grid:
		return "grid"
	default:
		return "day"
	}
}

// Strategies lists every known strategy.
var Strategies = []Strategy{Day, Scalping, Swing, Momentum, Breakout, MeanReversion, Grid}

var strategyAliases = map[string]Strategy{
	"day":            Day,
	"day_trading":    Day,
	"daytrading":     Day,
	"scalping":       Scalping,
	"scalp":          Scalping,
	"swing":          Swing,
	"swing_trading":  Swing,
	"swingtrading":   Swing,
	"momentum":       Momentum,
	"breakout":       Breakout,
	"mean_reversion": MeanReversion,
	"meanreversion":  MeanReversion,
	"grid":           Grid,
	"grid_trading":   Grid,
}

// ParseStrategy normalizes a free-form strategy name. This is the only
// place alias resolution happens; everything past the boundary works
// with the closed Strategy type.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, "-", "_")
	if s, ok := strategyAliases[key]; ok {
		return s, nil
	}
	return Day, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
}

// primaryCluster maps each strategy to the cluster it belongs to.
var primaryCluster = map[Strategy]regime.Cluster{
	Day:           regime.TrendFollowing,
	Scalping:      regime.Scalping,
	Swing:         regime.TrendFollowing,
	Momentum:      regime.TrendFollowing,
	Breakout:      regime.Breakout,
	MeanReversion: regime.MeanReversion,
	Grid:          regime.MeanReversion,
}

// secondaryClusters lets strategies trade outside their home cluster
// at reduced affinity.
var secondaryClusters = map[Strategy][]regime.Cluster{
	Day:           {regime.Scalping},
	Scalping:      {regime.MeanReversion},
	Swing:         {regime.MeanReversion},
	Momentum:      {regime.Breakout},
	Breakout:      {regime.TrendFollowing},
	MeanReversion: {regime.Scalping},
	Grid:          {regime.Scalping},
}

// Match grades how well a strategy fits the clusters a regime permits.
type Match int

const (
	// Penalized: no cluster overlap. The trade is still evaluated, just
	// scored down; missed opportunities cost more than bad entries here.
	Penalized Match = iota
	// Acceptable: a secondary cluster of the strategy is permitted.
	Acceptable
	// Optimal: the strategy's primary cluster is permitted.
	Optimal
)

func (m Match) String() string {
	switch m {
	case Optimal:
		return "optimal"
	case Acceptable:
		return "acceptable"
	default:
		return "penalized"
	}
}

// MatchRegime reports how well the strategy fits the given compatible
// cluster set (as produced by the regime detector).
func MatchRegime(s Strategy, clusters []regime.Cluster) Match {
	for _, c := range clusters {
		if c == primaryCluster[s] {
			return Optimal
		}
	}
	for _, sec := range secondaryClusters[s] {
		for _, c := range clusters {
			if c == sec {
				return Acceptable
			}
		}
	}
	return Penalized
}
