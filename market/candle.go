// Package market holds the basic price types shared by the decision engine.
package market

import "time"

// Candle is one OHLC bar. The embedded time is the candle open time.
type Candle struct {
	time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}
