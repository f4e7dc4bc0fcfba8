package circuit

import (
	"fmt"

	"tradeguard/market"
	"tradeguard/profile"
)

// atrMultiples holds the per-strategy stop and target distances in ATR
// units. Tighter for scalping, wider for swing.
type atrMultiples struct {
	Stop   float64
	Target float64
}

var exitMultiples = map[profile.Strategy]atrMultiples{
	profile.Scalping:      {Stop: 1.0, Target: 1.5},
	profile.Day:           {Stop: 1.5, Target: 2.5},
	profile.Swing:         {Stop: 2.0, Target: 4.0},
	profile.Momentum:      {Stop: 1.5, Target: 3.0},
	profile.Breakout:      {Stop: 1.5, Target: 2.5},
	profile.MeanReversion: {Stop: 2.0, Target: 2.0},
	profile.Grid:          {Stop: 2.5, Target: 1.5},
}

// PlanExits derives a protective stop and a target from the entry price
// and the current ATR, sized per strategy.
func PlanExits(strategy profile.Strategy, side market.Side, entry, atr float64) (stop, target float64, err error) {
	if err := validPrice(entry); err != nil {
		return 0, 0, fmt.Errorf("entry: %w", err)
	}
	if atr <= 0 {
		return 0, 0, fmt.Errorf("atr must be positive, got %.6f", atr)
	}

	mult, ok := exitMultiples[strategy]
	if !ok {
		mult = exitMultiples[profile.Day]
	}

	if side == market.Buy {
		return entry - mult.Stop*atr, entry + mult.Target*atr, nil
	}
	return entry + mult.Stop*atr, entry - mult.Target*atr, nil
}
