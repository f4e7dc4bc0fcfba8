package indicators

import (
	"fmt"

	"tradeguard/market"
)

// Slope fits a least-squares line through the last 'period' closes and
// returns its slope in price units per candle. Positive means rising.
func Slope(candles market.Series, period int) (float64, error) {
	if period < 2 {
		return 0, fmt.Errorf("period must be at least 2, got %d", period)
	}
	if len(candles) < period {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", period, len(candles))
	}

	start := len(candles) - period
	var sumX, sumY, sumXY, sumXX float64
	for i := 0; i < period; i++ {
		x := float64(i)
		y := candles[start+i].Close
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	n := float64(period)
	den := n*sumXX - sumX*sumX
	if den == 0 {
		return 0, fmt.Errorf("degenerate window")
	}
	return (n*sumXY - sumX*sumY) / den, nil
}
