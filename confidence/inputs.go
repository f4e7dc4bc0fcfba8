// Package confidence scores a proposed trade against the weighted
// four-pillar model and renders the approve/reject verdict.
package confidence

import (
	"strings"

	"tradeguard/market"
	"tradeguard/profile"
	"tradeguard/regime"
)

// SentimentLabel is the coarse news-sentiment input.
type SentimentLabel int

const (
	SentimentNeutral SentimentLabel = iota
	SentimentBullish
	SentimentBearish
)

func (s SentimentLabel) String() string {
	switch s {
	case SentimentBullish:
		return "bullish"
	case SentimentBearish:
		return "bearish"
	default:
		return "neutral"
	}
}

// ParseSentiment normalizes a label from a news collaborator. Anything
// unrecognized reads as neutral.
func ParseSentiment(label string) SentimentLabel {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "bullish", "positive", "bull":
		return SentimentBullish
	case "bearish", "negative", "bear":
		return SentimentBearish
	default:
		return SentimentNeutral
	}
}

// Supports reports whether the sentiment points the same way as the side.
func (s SentimentLabel) Supports(side market.Side) bool {
	return (s == SentimentBullish && side == market.Buy) ||
		(s == SentimentBearish && side == market.Sell)
}

// Opposes reports whether the sentiment points against the side.
func (s SentimentLabel) Opposes(side market.Side) bool {
	return (s == SentimentBullish && side == market.Sell) ||
		(s == SentimentBearish && side == market.Buy)
}

// Horizons carries the optional multi-horizon trend labels. The zero
// value (all neutral) is valid when no multi-timeframe data exists.
type Horizons struct {
	Short  market.Trend // e.g. H1
	Medium market.Trend // e.g. H4
	Long   market.Trend // e.g. D1
}

// Positioning is structured positioning data for commodity classes.
type Positioning struct {
	Available bool
	Bias      market.Trend // net speculative positioning direction
}

// Indicators are the raw per-signal indicator readings.
type Indicators struct {
	RSI         float64 // RSI-like oscillator, 0-100
	VolumeSurge bool
}

// Inputs is everything one scoring pass consumes.
type Inputs struct {
	Profile    profile.Profile
	Signal     market.Side
	Assessment regime.Assessment
	AssetClass market.AssetClass

	Indicators Indicators
	Horizons   Horizons

	Sentiment    SentimentLabel
	Positioning  Positioning
	EventPending bool // high-impact scheduled event ahead

	// Confluence is the number of independent indicators agreeing with
	// the signal.
	Confluence int
}
