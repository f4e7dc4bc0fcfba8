// Package engine wires regime detection, confidence scoring, execution
// and trade supervision into one decision loop.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tradeguard/circuit"
	"tradeguard/confidence"
	"tradeguard/journal"
	"tradeguard/market"
	"tradeguard/pkg/id"
	"tradeguard/profile"
	"tradeguard/regime"
	"tradeguard/venue"
)

// PriceSource supplies candle history for an asset, most recent last.
type PriceSource interface {
	Series(ctx context.Context, asset string, n int) (market.Series, error)
}

// SentimentSource supplies the news and positioning inputs of the
// sentiment pillar. Implementations may be slow or flaky; the engine
// degrades to neutral inputs when a call fails.
type SentimentSource interface {
	Sentiment(ctx context.Context, asset string) (confidence.SentimentLabel, error)
	Positioning(ctx context.Context, asset string) (confidence.Positioning, error)
	HighImpactEventAhead(ctx context.Context, asset string) (bool, error)
}

// Config tunes the decision loop.
type Config struct {
	Lookback int     `yaml:"lookback"` // candles fetched per evaluation
	Volume   float64 `yaml:"volume"`   // order size for approved signals

	// Evaluation cooldowns keep an asset+strategy pair from being
	// re-scored on every tick. Grid re-enters far more often than the
	// directional strategies.
	CooldownGridSeconds    int `yaml:"cooldown_grid_seconds"`
	CooldownDefaultSeconds int `yaml:"cooldown_default_seconds"`

	Scorer   confidence.Config     `yaml:"scorer"`
	Detector regime.DetectorConfig `yaml:"detector"`
}

func DefaultConfig() Config {
	return Config{
		Lookback:               250,
		Volume:                 1,
		CooldownGridSeconds:    30,
		CooldownDefaultSeconds: 300,
		Scorer:                 confidence.DefaultConfig(),
		Detector:               regime.DefaultDetectorConfig(),
	}
}

// Request is one trade proposal to evaluate.
type Request struct {
	Asset    string
	Strategy string
	Side     market.Side

	Indicators confidence.Indicators
	Horizons   confidence.Horizons

	// Confluence is the number of independent indicators agreeing with
	// the signal, reported by the signal generator.
	Confluence int
}

// Decision is the outcome of one evaluation.
type Decision struct {
	ID       string
	Asset    string
	Strategy profile.Strategy
	Approved bool
	Score    confidence.Score
	Regime   regime.Regime

	// TicketID is set when the decision was approved and an order was
	// placed at the venue.
	TicketID string

	// Skipped is set when the evaluation never ran (cooldown). A
	// skipped decision is not journaled.
	Skipped bool
	Reason  string
}

// Engine evaluates trade proposals and supervises the resulting trades.
// Safe for use from a single evaluation loop; the circuit manager
// underneath tolerates concurrent ticks.
type Engine struct {
	cfg       Config
	detector  *regime.Detector
	registry  *profile.Registry
	scorer    *confidence.Scorer
	circuits  *circuit.Manager
	perf      *profile.PerformanceTracker
	prices    PriceSource
	sentiment SentimentSource // optional
	venue     venue.Venue     // optional; nil means score-only
	journal   journal.Journal
	log       zerolog.Logger

	cooldowns map[string]time.Time
	now       func() time.Time
}

// Options carries the engine collaborators. Prices is required;
// Sentiment and Venue may be nil, Journal defaults to journal.Nop.
type Options struct {
	Prices    PriceSource
	Sentiment SentimentSource
	Venue     venue.Venue
	Journal   journal.Journal
	Registry  *profile.Registry
}

func New(cfg Config, opts Options) (*Engine, error) {
	if opts.Prices == nil {
		return nil, fmt.Errorf("engine: price source is required")
	}
	if cfg.Lookback <= 0 {
		cfg.Lookback = 250
	}
	if cfg.Volume <= 0 {
		cfg.Volume = 1
	}
	if cfg.CooldownGridSeconds <= 0 {
		cfg.CooldownGridSeconds = 30
	}
	if cfg.CooldownDefaultSeconds <= 0 {
		cfg.CooldownDefaultSeconds = 300
	}

	jnl := opts.Journal
	if jnl == nil {
		jnl = journal.Nop{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = profile.NewRegistry()
	}

	return &Engine{
		cfg:       cfg,
		detector:  regime.NewDetector(cfg.Detector),
		registry:  reg,
		scorer:    confidence.NewScorer(cfg.Scorer),
		circuits:  circuit.NewManager(),
		perf:      profile.NewPerformanceTracker(),
		prices:    opts.Prices,
		sentiment: opts.Sentiment,
		venue:     opts.Venue,
		journal:   jnl,
		log:       log.With().Str("component", "engine").Logger(),
		cooldowns: make(map[string]time.Time),
		now:       time.Now,
	}, nil
}

// Decide evaluates one trade proposal end to end: cooldown check, price
// fetch and validation, regime assessment, confidence scoring, and on
// approval order placement plus circuit registration.
func (e *Engine) Decide(ctx context.Context, req Request) (Decision, error) {
	// Unknown strategy names fall back to the default profile inside
	// Lookup, with a configuration warning; a misspelled config entry
	// must not stall the evaluation loop.
	prof := e.registry.Lookup(req.Strategy)

	dec := Decision{
		Asset:    req.Asset,
		Strategy: prof.Strategy,
	}

	key := req.Asset + "/" + prof.Strategy.String()
	if until, ok := e.cooldowns[key]; ok && e.now().Before(until) {
		dec.Skipped = true
		dec.Reason = fmt.Sprintf("cooldown until %s", until.Format(time.RFC3339))
		e.log.Debug().Str("asset", req.Asset).Str("strategy", req.Strategy).Msg("evaluation on cooldown")
		return dec, nil
	}

	series, err := e.prices.Series(ctx, req.Asset, e.cfg.Lookback)
	if err != nil {
		return dec, fmt.Errorf("decide %s: fetch series: %w", req.Asset, err)
	}
	if err := series.Validate(); err != nil {
		// A corrupted feed rejects the whole cycle; nothing is scored
		// and nothing reaches the venue.
		return dec, fmt.Errorf("decide %s: %w", req.Asset, err)
	}

	assess := e.detector.Assess(series)
	dec.Regime = assess.Regime

	in := confidence.Inputs{
		Profile:    prof,
		Signal:     req.Side,
		Assessment: assess,
		AssetClass: market.ClassOf(req.Asset),
		Indicators: req.Indicators,
		Horizons:   req.Horizons,
		Confluence: req.Confluence,
	}
	e.gatherSentiment(ctx, req.Asset, &in)

	dec.ID = id.New()
	dec.Score = e.scorer.Score(in)
	dec.Approved = dec.Score.Approved

	// The window opens only once an evaluation actually ran; a failed
	// fetch or corrupt feed must not burn the pair's next slot.
	e.cooldowns[key] = e.now().Add(e.cooldown(prof.Strategy))

	if err := e.journal.RecordDecision(decisionRecord(dec, req, e.now())); err != nil {
		e.log.Warn().Err(err).Str("decision", dec.ID).Msg("journal write failed")
	}

	if !dec.Approved || e.venue == nil {
		return dec, nil
	}

	ticket, err := e.execute(ctx, req, prof, assess, series)
	if err != nil {
		return dec, fmt.Errorf("decide %s: %w", req.Asset, err)
	}
	dec.TicketID = ticket
	return dec, nil
}

func (e *Engine) cooldown(s profile.Strategy) time.Duration {
	if s == profile.Grid {
		return time.Duration(e.cfg.CooldownGridSeconds) * time.Second
	}
	return time.Duration(e.cfg.CooldownDefaultSeconds) * time.Second
}

func (e *Engine) gatherSentiment(ctx context.Context, asset string, in *confidence.Inputs) {
	if e.sentiment == nil {
		return
	}

	if label, err := e.sentiment.Sentiment(ctx, asset); err != nil {
		e.log.Warn().Err(err).Str("asset", asset).Msg("sentiment unavailable, scoring neutral")
	} else {
		in.Sentiment = label
	}

	if in.AssetClass.HasPositioningData() {
		if pos, err := e.sentiment.Positioning(ctx, asset); err != nil {
			e.log.Warn().Err(err).Str("asset", asset).Msg("positioning unavailable")
		} else {
			in.Positioning = pos
		}
	}

	if pending, err := e.sentiment.HighImpactEventAhead(ctx, asset); err != nil {
		e.log.Warn().Err(err).Str("asset", asset).Msg("calendar unavailable")
	} else {
		in.EventPending = pending
	}
}

func (e *Engine) execute(ctx context.Context, req Request, prof profile.Profile, assess regime.Assessment, series market.Series) (string, error) {
	entry := series.Last().Close
	stop, target, err := circuit.PlanExits(prof.Strategy, req.Side, entry, assess.ATR)
	if err != nil {
		return "", fmt.Errorf("plan exits: %w", err)
	}

	pos, err := e.venue.Place(ctx, venue.Order{
		Asset:  req.Asset,
		Side:   req.Side,
		Volume: e.cfg.Volume,
		Stop:   stop,
		Target: target,
	})
	if err != nil {
		return "", fmt.Errorf("place order: %w", err)
	}

	if err := e.circuits.Register(circuit.State{
		TradeID:  pos.TicketID,
		Asset:    pos.Asset,
		Entry:    pos.Entry,
		Stop:     pos.Stop,
		Target:   pos.Target,
		OpenedAt: pos.OpenedAt,
		Policy:   prof.Exit,
	}); err != nil {
		// The order is live but unsupervised; close it rather than run
		// naked.
		if cerr := e.venue.Close(ctx, pos.TicketID, "supervision unavailable"); cerr != nil {
			e.log.Error().Err(cerr).Str("ticket", pos.TicketID).Msg("failed to close unsupervised position")
		}
		return "", fmt.Errorf("register circuit: %w", err)
	}

	e.log.Info().
		Str("ticket", pos.TicketID).
		Str("asset", pos.Asset).
		Str("strategy", prof.Strategy.String()).
		Float64("entry", pos.Entry).
		Float64("stop", stop).
		Float64("target", target).
		Msg("trade opened under supervision")

	return pos.TicketID, nil
}

// Tick feeds a fresh price into the risk circuit of one open trade and
// relays the resulting instruction to the venue. A tick for an unknown
// ticket returns circuit.ErrStaleCircuit without side effects.
func (e *Engine) Tick(ctx context.Context, ticketID string, price float64) (circuit.Instruction, error) {
	st, _ := e.circuits.Get(ticketID)

	instr, err := e.circuits.Tick(ticketID, price)
	if err != nil {
		return instr, err
	}

	switch instr.Action {
	case circuit.MoveStop:
		if e.venue != nil {
			if err := e.venue.MoveStop(ctx, ticketID, instr.NewStop); err != nil {
				// The circuit already holds the tightened stop; until a
				// later tick lands the move, the venue is protecting the
				// trade with the stale one.
				e.log.Error().Err(err).
					Str("ticket", ticketID).
					Float64("circuit_stop", instr.NewStop).
					Float64("venue_stop", st.Stop).
					Msg("stop move rejected by venue, stops diverged")
				return instr, fmt.Errorf("tick %s: %w", ticketID, err)
			}
		}
	case circuit.ForceClose:
		if e.venue != nil {
			if err := e.venue.Close(ctx, ticketID, instr.Reason); err != nil {
				return instr, fmt.Errorf("tick %s: %w", ticketID, err)
			}
		}
		// The venue confirmed the close; release the circuit.
		e.circuits.Forget(ticketID)
	default:
		return instr, nil
	}

	if err := e.journal.RecordExit(journal.ExitRecord{
		TradeID: ticketID,
		Asset:   st.Asset,
		Action:  instr.Action.String(),
		NewStop: instr.NewStop,
		Reason:  instr.Reason,
		Time:    e.now(),
	}); err != nil {
		e.log.Warn().Err(err).Str("ticket", ticketID).Msg("journal write failed")
	}

	return instr, nil
}

// RecordOutcome books a closed trade into the per-strategy performance
// tracker and drops its circuit if one is still registered.
func (e *Engine) RecordOutcome(ticketID string, strategy profile.Strategy, profit float64) {
	e.circuits.Forget(ticketID)
	e.perf.Record(strategy, profit > 0, profit)
}

// Performance exposes the per-strategy outcome tracker.
func (e *Engine) Performance() *profile.PerformanceTracker { return e.perf }

// Supervised returns the number of trades currently under circuit
// supervision.
func (e *Engine) Supervised() int { return e.circuits.Tracked() }

func decisionRecord(dec Decision, req Request, at time.Time) journal.DecisionRecord {
	sc := dec.Score
	return journal.DecisionRecord{
		DecisionID:      dec.ID,
		Asset:           dec.Asset,
		Strategy:        dec.Strategy.String(),
		Signal:          req.Side.String(),
		Regime:          dec.Regime.String(),
		BaseSignal:      sc.BaseSignal,
		TrendConfluence: sc.TrendConfluence,
		Volatility:      sc.Volatility,
		Sentiment:       sc.Sentiment,
		Total:           sc.Total,
		Threshold:       sc.Threshold,
		Approved:        sc.Approved,
		Reasons:         strings.Join(append(sc.Bonuses, sc.Penalties...), "; "),
		Time:            at,
	}
}
