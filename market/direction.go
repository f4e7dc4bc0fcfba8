package market

// Side is the direction of a proposed or open trade.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Sell {
		return "sell"
	}
	return "buy"
}

// Trend is a directional label for a price horizon.
type Trend int

const (
	Neutral Trend = iota
	Up
	Down
)

func (t Trend) String() string {
	switch t {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "neutral"
	}
}

// Agrees reports whether the trend points the same way as the trade side.
func (t Trend) Agrees(s Side) bool {
	return (s == Buy && t == Up) || (s == Sell && t == Down)
}
