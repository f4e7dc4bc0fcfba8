package profile

import "sync"

// PerformanceTracker keeps per-strategy win/loss tallies so operators
// can compare strategies over a session. It feeds reporting only; it
// does not feed back into scoring.
type PerformanceTracker struct {
	mu    sync.Mutex
	stats map[Strategy]*strategyStats
}

type strategyStats struct {
	Trades int
	Wins   int
	Profit float64
}

func NewPerformanceTracker() *PerformanceTracker {
	return &PerformanceTracker{stats: make(map[Strategy]*strategyStats)}
}

// Record tallies a closed trade for the strategy.
func (t *PerformanceTracker) Record(s Strategy, won bool, profit float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.stats[s]
	if !ok {
		st = &strategyStats{}
		t.stats[s] = st
	}
	st.Trades++
	if won {
		st.Wins++
	}
	st.Profit += profit
}

// WinRate returns the strategy's win fraction and trade count.
func (t *PerformanceTracker) WinRate(s Strategy) (rate float64, trades int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.stats[s]
	if !ok || st.Trades == 0 {
		return 0, 0
	}
	return float64(st.Wins) / float64(st.Trades), st.Trades
}

// Profit returns the accumulated realized profit for the strategy.
func (t *PerformanceTracker) Profit(s Strategy) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.stats[s]; ok {
		return st.Profit
	}
	return 0
}
