// Package circuit supervises open trades: breakeven lock, time-based
// exit and trailing stop, per strategy exit policy. One state machine
// per trade, owned by the Manager for the trade's lifetime.
package circuit

import (
	"errors"
	"time"

	"tradeguard/market"
	"tradeguard/profile"
)

var (
	// ErrStaleCircuit marks a tick for a trade the manager no longer
	// (or never did) track. Callers log and move on; a circuit is never
	// auto-created from a tick.
	ErrStaleCircuit = errors.New("no circuit registered for trade")

	// ErrAlreadyRegistered marks a duplicate registration for a ticket.
	ErrAlreadyRegistered = errors.New("circuit already registered for trade")
)

// Action is the kind of exit instruction a tick can produce.
type Action int

const (
	None Action = iota
	MoveStop
	ForceClose
)

func (a Action) String() string {
	switch a {
	case MoveStop:
		return "move_stop"
	case ForceClose:
		return "force_close"
	default:
		return "none"
	}
}

// Instruction is the outcome of one supervision tick.
type Instruction struct {
	Action  Action
	NewStop float64 // set when Action == MoveStop
	Reason  string
}

// State is the supervision state of one open trade.
type State struct {
	TradeID string
	Asset   string
	Side    market.Side

	Entry  float64
	Stop   float64
	Target float64

	BreakevenDone  bool
	BreakevenPrice float64

	TrailingStop float64

	OpenedAt time.Time
	Policy   profile.ExitPolicy

	// Progress is the percent distance traveled toward the target,
	// updated on every tick.
	Progress float64
}

// progressPct returns the signed percent progress toward the target.
// Positive progress means the trade is winning regardless of side.
func progressPct(entry, target, price float64) float64 {
	total := target - entry
	if total == 0 {
		return 0
	}
	return (price - entry) / total * 100
}
