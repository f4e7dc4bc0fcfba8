// Package sim provides an in-memory execution venue for tests and demos.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"tradeguard/market"
	"tradeguard/pkg/id"
	"tradeguard/venue"
)

// ClosedTrade is the terminal record the simulator keeps for every closed
// position.
type ClosedTrade struct {
	venue.Position
	ClosePrice float64
	ClosedAt   time.Time
	Reason     string
	Profit     float64
}

// Venue is a thread-safe in-memory venue.Venue. Fills happen at the last
// price pushed via SetPrice; there is no spread or slippage model.
type Venue struct {
	mu     sync.Mutex
	prices map[string]float64
	open   map[string]*venue.Position
	closed []ClosedTrade
	log    zerolog.Logger
	now    func() time.Time
}

func New(log zerolog.Logger) *Venue {
	return &Venue{
		prices: make(map[string]float64),
		open:   make(map[string]*venue.Position),
		log:    log.With().Str("component", "sim_venue").Logger(),
		now:    time.Now,
	}
}

// SetPrice updates the simulated market price for an asset.
func (v *Venue) SetPrice(asset string, price float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.prices[asset] = price
}

func (v *Venue) Place(ctx context.Context, ord venue.Order) (venue.Position, error) {
	_ = ctx

	v.mu.Lock()
	defer v.mu.Unlock()

	px, ok := v.prices[ord.Asset]
	if !ok {
		return venue.Position{}, fmt.Errorf("place order: no price for %q", ord.Asset)
	}
	if ord.Volume <= 0 {
		return venue.Position{}, fmt.Errorf("place order: volume must be positive, got %v", ord.Volume)
	}

	pos := venue.Position{
		TicketID: id.New(),
		Asset:    ord.Asset,
		Side:     ord.Side,
		Volume:   ord.Volume,
		Entry:    px,
		Stop:     ord.Stop,
		Target:   ord.Target,
		OpenedAt: v.now(),
	}
	v.open[pos.TicketID] = &pos

	v.log.Info().
		Str("ticket", pos.TicketID).
		Str("asset", pos.Asset).
		Str("side", pos.Side.String()).
		Float64("entry", pos.Entry).
		Float64("stop", pos.Stop).
		Float64("target", pos.Target).
		Msg("position opened")

	return pos, nil
}

func (v *Venue) OpenPositions(ctx context.Context) ([]venue.Position, error) {
	_ = ctx

	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]venue.Position, 0, len(v.open))
	for _, p := range v.open {
		out = append(out, *p)
	}
	return out, nil
}

func (v *Venue) MoveStop(ctx context.Context, ticketID string, stop float64) error {
	_ = ctx

	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.open[ticketID]
	if !ok {
		return fmt.Errorf("move stop: ticket %q not found", ticketID)
	}
	p.Stop = stop

	v.log.Debug().Str("ticket", ticketID).Float64("stop", stop).Msg("stop moved")
	return nil
}

func (v *Venue) Close(ctx context.Context, ticketID, reason string) error {
	_ = ctx

	if reason == "" {
		reason = "manual"
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	p, ok := v.open[ticketID]
	if !ok {
		return fmt.Errorf("close: ticket %q not found", ticketID)
	}

	px, ok := v.prices[p.Asset]
	if !ok {
		px = p.Entry
	}

	profit := (px - p.Entry) * p.Volume
	if p.Side == market.Sell {
		profit = -profit
	}

	v.closed = append(v.closed, ClosedTrade{
		Position:   *p,
		ClosePrice: px,
		ClosedAt:   v.now(),
		Reason:     reason,
		Profit:     profit,
	})
	delete(v.open, ticketID)

	v.log.Info().
		Str("ticket", ticketID).
		Str("reason", reason).
		Float64("close", px).
		Float64("profit", profit).
		Msg("position closed")

	return nil
}

// Closed returns a copy of every trade the simulator has closed so far.
func (v *Venue) Closed() []ClosedTrade {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]ClosedTrade, len(v.closed))
	copy(out, v.closed)
	return out
}
