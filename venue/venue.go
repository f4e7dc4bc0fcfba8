// Package venue defines the execution contract the decision engine speaks
// to whatever actually holds positions: a simulator, a paper account, or a
// live broker adapter.
package venue

import (
	"context"
	"time"

	"tradeguard/market"
)

// Order is a request to open a position with protective levels attached.
type Order struct {
	Asset  string
	Side   market.Side
	Volume float64
	Stop   float64
	Target float64
}

// Position is an open trade as the venue sees it.
type Position struct {
	TicketID string
	Asset    string
	Side     market.Side
	Volume   float64
	Entry    float64
	Stop     float64
	Target   float64
	OpenedAt time.Time
}

// Venue executes orders and manages open positions.
type Venue interface {
	Place(ctx context.Context, ord Order) (Position, error)
	OpenPositions(ctx context.Context) ([]Position, error)
	MoveStop(ctx context.Context, ticketID string, stop float64) error
	Close(ctx context.Context, ticketID, reason string) error
}
