package market

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPrice marks a series containing a non-positive or NaN price.
// Callers should skip the current evaluation cycle rather than abort.
var ErrInvalidPrice = errors.New("invalid price")

// Series is an ordered run of candles with monotonically increasing
// timestamps. Minimum length requirements vary per computation; callers
// check Len() against what they need.
type Series []Candle

func (s Series) Len() int { return len(s) }

// Last returns the most recent candle. Zero value if the series is empty.
func (s Series) Last() Candle {
	if len(s) == 0 {
		return Candle{}
	}
	return s[len(s)-1]
}

// Closes extracts the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Low
	}
	return out
}

// Validate checks the series invariants: strictly increasing timestamps
// and strictly positive, finite prices.
func (s Series) Validate() error {
	for i, c := range s {
		if i > 0 && !c.Time.After(s[i-1].Time) {
			return fmt.Errorf("candle %d: timestamp not increasing", i)
		}
		for _, p := range []float64{c.Open, c.High, c.Low, c.Close} {
			if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
				return fmt.Errorf("candle %d: %w", i, ErrInvalidPrice)
			}
		}
	}
	return nil
}
