package confidence

// Score is the outcome of one scoring pass. One instance per evaluation;
// it is not retained past the decision.
type Score struct {
	BaseSignal      float64
	TrendConfluence float64
	Volatility      float64
	Sentiment       float64

	Total     float64 // 0-100
	Threshold float64
	Approved  bool

	Bonuses   []string
	Penalties []string
}

func (s *Score) bonus(msg string) {
	s.Bonuses = append(s.Bonuses, msg)
}

func (s *Score) penalty(msg string) {
	s.Penalties = append(s.Penalties, msg)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
