package circuit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradeguard/market"
)

// breakevenTriggerPct is the target progress at which the stop moves to
// entry, and breakevenBufferFrac the share of the entry-to-target
// distance added on top to cover costs.
const (
	breakevenTriggerPct = 50.0
	breakevenBufferFrac = 0.01
	timeExitMaxProgress = 25.0
)

// Manager owns the risk circuits of all open trades. The registry is
// mutex-guarded so host implementations may tick assets from parallel
// workers; within one evaluation loop every pass is synchronous.
type Manager struct {
	mu       sync.Mutex
	circuits map[string]*State
	log      zerolog.Logger
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{
		circuits: make(map[string]*State),
		log:      log.With().Str("component", "circuit").Logger(),
		now:      time.Now,
	}
}

// Register starts supervising an approved trade. The exit policy comes
// from the strategy profile; registration happens exactly once per
// ticket, at fill time.
func (m *Manager) Register(st State) error {
	if err := validPrice(st.Entry); err != nil {
		return fmt.Errorf("entry: %w", err)
	}
	if err := validPrice(st.Target); err != nil {
		return fmt.Errorf("target: %w", err)
	}
	if st.Target == st.Entry {
		return fmt.Errorf("target equals entry: %w", market.ErrInvalidPrice)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.circuits[st.TradeID]; ok {
		return fmt.Errorf("%s: %w", st.TradeID, ErrAlreadyRegistered)
	}

	if st.Target > st.Entry {
		st.Side = market.Buy
	} else {
		st.Side = market.Sell
	}
	if st.OpenedAt.IsZero() {
		st.OpenedAt = m.now()
	}
	// The trailing stop starts at the protective stop and only ever
	// tightens from there.
	st.TrailingStop = st.Stop

	cp := st
	m.circuits[st.TradeID] = &cp

	m.log.Info().
		Str("trade", st.TradeID).
		Str("asset", st.Asset).
		Float64("entry", st.Entry).
		Float64("stop", st.Stop).
		Float64("target", st.Target).
		Msg("circuit registered")
	return nil
}

// Tick runs the supervision checks for one trade at the current price.
// Checks run in order: breakeven lock, time exit, trailing stop; the
// first that fires wins the tick. A tick for an unknown trade is a
// warned no-op.
func (m *Manager) Tick(tradeID string, price float64) (Instruction, error) {
	return m.TickAt(tradeID, price, time.Time{})
}

// TickAt is Tick with an explicit clock reading, for replay and tests.
func (m *Manager) TickAt(tradeID string, price float64, at time.Time) (Instruction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.circuits[tradeID]
	if !ok {
		m.log.Warn().Str("trade", tradeID).Msg("tick for unregistered trade")
		return Instruction{}, fmt.Errorf("%s: %w", tradeID, ErrStaleCircuit)
	}

	if err := validPrice(price); err != nil {
		// Bad tick: skip this pass, leave the circuit untouched.
		return Instruction{}, err
	}

	if at.IsZero() {
		at = m.now()
	}

	st.Progress = progressPct(st.Entry, st.Target, price)

	if ins, fired := m.checkBreakeven(st); fired {
		return ins, nil
	}
	if ins, fired := m.checkTimeExit(st, at); fired {
		return ins, nil
	}
	if ins, fired := m.checkTrailing(st, price); fired {
		return ins, nil
	}
	return Instruction{}, nil
}

// checkBreakeven moves the stop to entry plus a cost buffer once the
// trade is halfway to target. Fires at most once per trade.
func (m *Manager) checkBreakeven(st *State) (Instruction, bool) {
	if st.BreakevenDone || st.Progress < breakevenTriggerPct {
		return Instruction{}, false
	}

	buffer := math.Abs(st.Target-st.Entry) * breakevenBufferFrac
	be := st.Entry + buffer
	if st.Side == market.Sell {
		be = st.Entry - buffer
	}

	st.BreakevenDone = true
	st.BreakevenPrice = be
	st.Stop = be
	if betterStop(st.Side, be, st.TrailingStop) {
		st.TrailingStop = be
	}

	m.log.Info().
		Str("trade", st.TradeID).
		Float64("progress_pct", st.Progress).
		Float64("new_stop", be).
		Msg("breakeven locked")

	return Instruction{
		Action:  MoveStop,
		NewStop: be,
		Reason:  fmt.Sprintf("breakeven lock at %.1f%% progress", st.Progress),
	}, true
}

// checkTimeExit force-closes a stagnant trade: held past the strategy's
// time limit without a quarter of the way to target.
func (m *Manager) checkTimeExit(st *State, at time.Time) (Instruction, bool) {
	limit := time.Duration(st.Policy.TimeExitMinutes) * time.Minute
	if limit <= 0 {
		return Instruction{}, false
	}
	elapsed := at.Sub(st.OpenedAt)
	if elapsed < limit || st.Progress >= timeExitMaxProgress {
		return Instruction{}, false
	}

	m.log.Info().
		Str("trade", st.TradeID).
		Dur("elapsed", elapsed).
		Float64("progress_pct", st.Progress).
		Msg("time exit")

	return Instruction{
		Action: ForceClose,
		Reason: fmt.Sprintf("stagnant after %s at %.1f%% progress", elapsed.Round(time.Minute), st.Progress),
	}, true
}

// checkTrailing tightens the stop to lock in a strategy-specific share
// of the traveled distance. The trailing stop never loosens.
func (m *Manager) checkTrailing(st *State, price float64) (Instruction, bool) {
	p := st.Policy
	if !p.Trailing || st.Progress < p.TrailTriggerPct {
		return Instruction{}, false
	}

	traveled := price - st.Entry // negative for shorts in profit
	next := st.Entry + traveled*p.TrailLockIn

	if !betterStop(st.Side, next, st.TrailingStop) {
		return Instruction{}, false
	}

	st.TrailingStop = next
	st.Stop = next

	m.log.Info().
		Str("trade", st.TradeID).
		Float64("progress_pct", st.Progress).
		Float64("new_stop", next).
		Msg("trailing stop advanced")

	return Instruction{
		Action:  MoveStop,
		NewStop: next,
		Reason:  fmt.Sprintf("trailing stop at %.1f%% progress", st.Progress),
	}, true
}

// betterStop reports whether candidate tightens the stop toward profit
// compared to current.
func betterStop(side market.Side, candidate, current float64) bool {
	if side == market.Buy {
		return candidate > current
	}
	return candidate < current
}

// Forget releases the circuit of a closed trade. Forgetting is the only
// way state is removed; the caller guarantees exactly-once removal when
// the venue confirms closure.
func (m *Manager) Forget(tradeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.circuits[tradeID]; !ok {
		m.log.Warn().Str("trade", tradeID).Msg("forget for unregistered trade")
		return false
	}
	delete(m.circuits, tradeID)
	m.log.Info().Str("trade", tradeID).Msg("circuit released")
	return true
}

// Get returns a snapshot of one circuit.
func (m *Manager) Get(tradeID string) (State, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.circuits[tradeID]
	if !ok {
		return State{}, false
	}
	return *st, true
}

// Tracked returns how many trades are currently supervised.
func (m *Manager) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.circuits)
}

func validPrice(p float64) error {
	if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		return fmt.Errorf("%.4f: %w", p, market.ErrInvalidPrice)
	}
	return nil
}
