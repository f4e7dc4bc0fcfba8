package regime

// Cluster groups strategies by the market conditions they need.
type Cluster int

const (
	TrendFollowing Cluster = iota
	MeanReversion
	Breakout
	PriceAction
	Harmonic
	Scalping
)

func (c Cluster) String() string {
	switch c {
	case MeanReversion:
		return "mean_reversion"
	case Breakout:
		return "breakout"
	case PriceAction:
		return "price_action"
	case Harmonic:
		return "harmonic"
	case Scalping:
		return "scalping"
	default:
		return "trend_following"
	}
}

// clusterFit maps each regime to its compatible clusters, primary first.
// Every regime keeps at least one workable cluster so that no market
// state blocks trading outright; insufficient data is the only case
// with an empty cluster set.
var clusterFit = map[Regime][]Cluster{
	StrongUptrend:   {TrendFollowing, Breakout, Scalping},
	Uptrend:         {TrendFollowing, PriceAction, Scalping, MeanReversion},
	Downtrend:       {TrendFollowing, PriceAction, Scalping, MeanReversion},
	StrongDowntrend: {TrendFollowing, Breakout, Scalping},
	Range:           {MeanReversion, Scalping, TrendFollowing, Breakout},
	HighVolatility:  {Breakout, Scalping, TrendFollowing},
	Chaos:           {Scalping},
}

// CompatibleClusters returns the clusters workable in the given regime,
// primary cluster first.
func CompatibleClusters(r Regime) []Cluster {
	fit := clusterFit[r]
	out := make([]Cluster, len(fit))
	copy(out, fit)
	return out
}
