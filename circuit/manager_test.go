package circuit

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeguard/market"
	"tradeguard/profile"
)

var (
	trailAt50 = profile.ExitPolicy{
		TimeExitMinutes: 240,
		Trailing:        true,
		TrailTriggerPct: 50,
		TrailLockIn:     0.5,
	}
	noTrail = profile.ExitPolicy{TimeExitMinutes: 240}
)

func openLong(t *testing.T, m *Manager, id string) {
	t.Helper()
	require.NoError(t, m.Register(State{
		TradeID: id,
		Asset:   "XAUUSD",
		Entry:   100,
		Stop:    96,
		Target:  110,
		Policy:  trailAt50,
	}))
}

func TestRegisterValidation(t *testing.T) {
	t.Parallel()

	m := NewManager()
	assert.ErrorIs(t, m.Register(State{TradeID: "a", Entry: -1, Target: 10}), market.ErrInvalidPrice)
	assert.ErrorIs(t, m.Register(State{TradeID: "a", Entry: 100, Target: math.NaN()}), market.ErrInvalidPrice)
	assert.ErrorIs(t, m.Register(State{TradeID: "a", Entry: 100, Target: 100}), market.ErrInvalidPrice)
	assert.Zero(t, m.Tracked())

	openLong(t, m, "a")
	assert.Equal(t, 1, m.Tracked())
	assert.ErrorIs(t, m.Register(State{TradeID: "a", Entry: 100, Target: 110}), ErrAlreadyRegistered)

	st, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, market.Buy, st.Side)
	assert.InDelta(t, 96.0, st.TrailingStop, 1e-9)
}

func TestStaleCircuit(t *testing.T) {
	t.Parallel()

	m := NewManager()
	ins, err := m.Tick("ghost", 101)
	assert.ErrorIs(t, err, ErrStaleCircuit)
	assert.Equal(t, None, ins.Action)
	// A tick never creates state.
	assert.Zero(t, m.Tracked())
}

func TestInvalidTickLeavesStateAlone(t *testing.T) {
	t.Parallel()

	m := NewManager()
	openLong(t, m, "a")

	before, _ := m.Get("a")
	for _, bad := range []float64{0, -5, math.NaN(), math.Inf(1)} {
		_, err := m.Tick("a", bad)
		assert.ErrorIs(t, err, market.ErrInvalidPrice)
	}
	after, _ := m.Get("a")
	assert.Equal(t, before, after)
}

func TestBreakevenFiresOnce(t *testing.T) {
	t.Parallel()

	m := NewManager()
	openLong(t, m, "a")

	// Below 50% progress: nothing.
	ins, err := m.Tick("a", 104.9)
	require.NoError(t, err)
	assert.Equal(t, None, ins.Action)

	// Crossing 50%: stop moves to entry plus 1% of the distance.
	ins, err = m.Tick("a", 105)
	require.NoError(t, err)
	assert.Equal(t, MoveStop, ins.Action)
	assert.InDelta(t, 100.1, ins.NewStop, 1e-9)

	st, _ := m.Get("a")
	assert.True(t, st.BreakevenDone)

	// Repeated ticks above 50% do not re-trigger the lock. (At exactly
	// 50% progress the trailing stop computes entry+2.5*0.5 = 102.5 and
	// takes over instead.)
	ins, err = m.Tick("a", 105)
	require.NoError(t, err)
	assert.Equal(t, MoveStop, ins.Action)
	assert.InDelta(t, 102.5, ins.NewStop, 1e-9)

	ins, err = m.Tick("a", 105)
	require.NoError(t, err)
	assert.Equal(t, None, ins.Action, "same price cannot improve the trailing stop")
}

func TestExitLifecycleLong(t *testing.T) {
	t.Parallel()

	// Entry 100, target 110, trigger 50%, lock-in 50%.
	m := NewManager()
	openLong(t, m, "a")

	ins, err := m.Tick("a", 105)
	require.NoError(t, err)
	assert.Equal(t, MoveStop, ins.Action)
	assert.InDelta(t, 100.1, ins.NewStop, 1e-9, "breakeven lock with cost buffer")

	ins, err = m.Tick("a", 107.5)
	require.NoError(t, err)
	assert.Equal(t, MoveStop, ins.Action)
	assert.InDelta(t, 103.75, ins.NewStop, 1e-9, "trailing locks half the traveled distance")

	// Pullback: the would-be stop 102 does not improve on 103.75.
	ins, err = m.Tick("a", 104)
	require.NoError(t, err)
	assert.Equal(t, None, ins.Action)
	st, _ := m.Get("a")
	assert.InDelta(t, 103.75, st.TrailingStop, 1e-9)
}

func TestTrailingMonotoneLong(t *testing.T) {
	t.Parallel()

	m := NewManager()
	openLong(t, m, "a")
	m.Tick("a", 105) // breakeven out of the way

	prev := 0.0
	for _, price := range []float64{105.5, 106, 107, 106.5, 108, 109, 108.2, 109.9} {
		_, err := m.Tick("a", price)
		require.NoError(t, err)
		st, _ := m.Get("a")
		assert.GreaterOrEqual(t, st.TrailingStop, prev, "price %.1f", price)
		prev = st.TrailingStop
	}
}

func TestTrailingMonotoneShort(t *testing.T) {
	t.Parallel()

	m := NewManager()
	require.NoError(t, m.Register(State{
		TradeID: "s",
		Entry:   100,
		Stop:    104,
		Target:  90,
		Policy:  trailAt50,
	}))
	st, _ := m.Get("s")
	assert.Equal(t, market.Sell, st.Side)

	// Breakeven for the short: entry minus the buffer.
	ins, err := m.Tick("s", 95)
	require.NoError(t, err)
	assert.Equal(t, MoveStop, ins.Action)
	assert.InDelta(t, 99.9, ins.NewStop, 1e-9)

	prev := math.Inf(1)
	for _, price := range []float64{94.5, 94, 93, 93.5, 92, 91, 91.4, 90.1} {
		_, err := m.Tick("s", price)
		require.NoError(t, err)
		st, _ := m.Get("s")
		assert.LessOrEqual(t, st.TrailingStop, prev, "price %.1f", price)
		prev = st.TrailingStop
	}
	// At 90.1 the trailing stop is entry - 9.9*0.5.
	assert.InDelta(t, 95.05, prev, 1e-9)
}

func TestTimeExit(t *testing.T) {
	t.Parallel()

	m := NewManager()
	opened := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, m.Register(State{
		TradeID:  "t",
		Entry:    100,
		Stop:     96,
		Target:   110,
		Policy:   noTrail,
		OpenedAt: opened,
	}))

	// Before the limit: no exit however stagnant.
	ins, err := m.TickAt("t", 100.5, opened.Add(239*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, None, ins.Action)

	// Past the limit with progress below 25%: force close.
	ins, err = m.TickAt("t", 100.5, opened.Add(241*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, ForceClose, ins.Action)
}

func TestTimeExitSparedByProgress(t *testing.T) {
	t.Parallel()

	m := NewManager()
	opened := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, m.Register(State{
		TradeID:  "t",
		Entry:    100,
		Stop:     96,
		Target:   110,
		Policy:   noTrail,
		OpenedAt: opened,
	}))

	// 30% progress past the deadline: the trade lives on.
	ins, err := m.TickAt("t", 103, opened.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, None, ins.Action)

	// Exactly 25% is enough to be spared.
	ins, err = m.TickAt("t", 102.5, opened.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, None, ins.Action)

	// Fading back under 25% after the deadline closes it.
	ins, err = m.TickAt("t", 102.4, opened.Add(10*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, ForceClose, ins.Action)
}

func TestForget(t *testing.T) {
	t.Parallel()

	m := NewManager()
	openLong(t, m, "a")
	openLong(t, m, "b")
	assert.Equal(t, 2, m.Tracked())

	assert.True(t, m.Forget("a"))
	assert.Equal(t, 1, m.Tracked())
	assert.False(t, m.Forget("a"), "second forget is a warned no-op")

	_, err := m.Tick("a", 105)
	assert.ErrorIs(t, err, ErrStaleCircuit)

	// The remaining circuit is untouched.
	_, ok := m.Get("b")
	assert.True(t, ok)
}

func TestPlanExits(t *testing.T) {
	t.Parallel()

	stop, target, err := PlanExits(profile.Day, market.Buy, 100, 2)
	require.NoError(t, err)
	assert.InDelta(t, 97.0, stop, 1e-9)
	assert.InDelta(t, 105.0, target, 1e-9)

	stop, target, err = PlanExits(profile.Swing, market.Sell, 100, 2)
	require.NoError(t, err)
	assert.InDelta(t, 104.0, stop, 1e-9)
	assert.InDelta(t, 92.0, target, 1e-9)

	_, _, err = PlanExits(profile.Day, market.Buy, 100, 0)
	assert.Error(t, err)
	_, _, err = PlanExits(profile.Day, market.Buy, -1, 2)
	assert.ErrorIs(t, err, market.ErrInvalidPrice)
}
