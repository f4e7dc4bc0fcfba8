package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"tradeguard/circuit"
	"tradeguard/confidence"
	"tradeguard/engine"
	"tradeguard/indicators"
	"tradeguard/market"
	"tradeguard/venue/sim"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision loop against a simulated market",
	Long: `Run the full decision loop on a random-walk market: each cycle the
watched asset/strategy pairs are scored, approved signals open simulated
positions, and open positions are supervised tick by tick.

Example:
  tradeguard run -f examples/config.yaml --cycles 50`,
	RunE: runRun,
}

var (
	runCycles int
	runSeed   int64
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntVar(&runCycles, "cycles", 25, "evaluation cycles to run")
	runCmd.Flags().Int64Var(&runSeed, "seed", 1, "random walk seed")
}

// randomWalk synthesizes candle history per asset and extends it one
// candle per cycle.
type randomWalk struct {
	mu     sync.Mutex
	rng    *rand.Rand
	series map[string]market.Series
	warmup int
}

func newRandomWalk(seed int64, warmup int) *randomWalk {
	return &randomWalk{
		rng:    rand.New(rand.NewSource(seed)),
		series: make(map[string]market.Series),
		warmup: warmup,
	}
}

func (w *randomWalk) Series(ctx context.Context, asset string, n int) (market.Series, error) {
	_ = ctx

	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.ensureLocked(asset)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	out := make(market.Series, len(s))
	copy(out, s)
	return out, nil
}

// Advance appends one candle and returns the new close.
func (w *randomWalk) Advance(asset string) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.ensureLocked(asset)
	s = append(s, w.nextLocked(s))
	w.series[asset] = s
	return s.Last().Close
}

func (w *randomWalk) ensureLocked(asset string) market.Series {
	if s, ok := w.series[asset]; ok {
		return s
	}

	s := make(market.Series, 0, w.warmup)
	start := time.Now().UTC().Add(-time.Duration(w.warmup) * time.Minute)
	c := market.Candle{
		Time: start, Open: 100, High: 100.2, Low: 99.8, Close: 100, Volume: 1000,
	}
	s = append(s, c)
	for len(s) < w.warmup {
		s = append(s, w.nextLocked(s))
	}
	w.series[asset] = s
	return s
}

func (w *randomWalk) nextLocked(s market.Series) market.Candle {
	prev := s.Last()
	drift := (w.rng.Float64() - 0.48) * 0.4 // slight upward bias
	open := prev.Close
	cls := open + drift
	hi := open + w.rng.Float64()*0.2
	lo := open - w.rng.Float64()*0.2
	if cls > hi {
		hi = cls
	}
	if cls < lo {
		lo = cls
	}
	return market.Candle{
		Time:   prev.Time.Add(time.Minute),
		Open:   open,
		High:   hi + 0.01,
		Low:    lo - 0.01,
		Close:  cls,
		Volume: 800 + w.rng.Float64()*400,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	jnl, err := buildJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jnl.Close()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	walk := newRandomWalk(runSeed, cfg.Engine.Lookback)
	v := sim.New(log.Logger)

	eng, err := engine.New(cfg.Engine, engine.Options{
		Prices:   walk,
		Venue:    v,
		Journal:  jnl,
		Registry: registry,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	approved := 0

	for cycle := 0; cycle < runCycles; cycle++ {
		for _, w := range cfg.Watch {
			price := walk.Advance(w.Asset)
			v.SetPrice(w.Asset, price)

			series, err := walk.Series(ctx, w.Asset, cfg.Engine.Lookback)
			if err != nil {
				return err
			}
			req, err := proposalFor(w.Asset, w.Strategy, series)
			if err != nil {
				log.Warn().Err(err).Str("asset", w.Asset).Msg("skipping proposal")
				continue
			}

			dec, err := eng.Decide(ctx, req)
			if err != nil {
				log.Error().Err(err).Str("asset", w.Asset).Msg("decision failed")
				continue
			}
			if dec.Approved && dec.TicketID != "" {
				approved++
			}
		}

		if err := superviseOpen(ctx, eng, v, walk); err != nil {
			return err
		}
	}

	open, err := v.OpenPositions(ctx)
	if err != nil {
		return err
	}
	closed := v.Closed()

	fmt.Printf("Cycles run:        %d\n", runCycles)
	fmt.Printf("Trades opened:     %d\n", approved)
	fmt.Printf("Still open:        %d\n", len(open))
	fmt.Printf("Closed by exits:   %d\n", len(closed))
	for _, c := range closed {
		fmt.Printf("  %s %s %-12s profit %+.2f\n", c.TicketID, c.Asset, c.Reason, c.Profit)
	}
	return nil
}

// proposalFor derives a naive demo signal from the series itself: side
// from the regression slope, confluence from how many simple reads
// agree with it.
func proposalFor(asset, strategy string, series market.Series) (engine.Request, error) {
	slope, err := indicators.Slope(series, 20)
	if err != nil {
		return engine.Request{}, err
	}
	rsi, err := indicators.RSI(series, 14)
	if err != nil {
		return engine.Request{}, err
	}

	side := market.Buy
	if slope < 0 {
		side = market.Sell
	}

	confluence := 1 // the slope itself
	if (side == market.Buy && rsi > 50) || (side == market.Sell && rsi < 50) {
		confluence++
	}

	horizons := horizonsFor(series)
	if horizons.Short.Agrees(side) {
		confluence++
	}

	return engine.Request{
		Asset:      asset,
		Strategy:   strategy,
		Side:       side,
		Indicators: confidence.Indicators{RSI: rsi},
		Horizons:   horizons,
		Confluence: confluence,
	}, nil
}

func horizonsFor(series market.Series) confidence.Horizons {
	return confidence.Horizons{
		Short:  trendVsSMA(series, 20),
		Medium: trendVsSMA(series, 60),
		Long:   trendVsSMA(series, 200),
	}
}

func trendVsSMA(series market.Series, period int) market.Trend {
	ma, err := indicators.SMA(series, period)
	if err != nil {
		return market.Neutral
	}
	switch last := series.Last().Close; {
	case last > ma*1.0005:
		return market.Up
	case last < ma*0.9995:
		return market.Down
	default:
		return market.Neutral
	}
}

func superviseOpen(ctx context.Context, eng *engine.Engine, v *sim.Venue, walk *randomWalk) error {
	open, err := v.OpenPositions(ctx)
	if err != nil {
		return err
	}
	for _, pos := range open {
		series, err := walk.Series(ctx, pos.Asset, 1)
		if err != nil {
			return err
		}
		if _, err := eng.Tick(ctx, pos.TicketID, series.Last().Close); err != nil {
			if errors.Is(err, circuit.ErrStaleCircuit) {
				continue
			}
			return err
		}
	}
	return nil
}
