// Package journal persists decisions and exit actions for later review.
package journal

import "time"

// DecisionRecord is one scored trade proposal, approved or not.
type DecisionRecord struct {
	DecisionID string
	Asset      string
	Strategy   string
	Signal     string
	Regime     string

	BaseSignal      float64
	TrendConfluence float64
	Volatility      float64
	Sentiment       float64
	Total           float64
	Threshold       float64
	Approved        bool

	Reasons string // joined bonus/penalty notes
	Time    time.Time
}

// ExitRecord is one exit instruction issued by the risk circuits.
type ExitRecord struct {
	TradeID string
	Asset   string
	Action  string
	NewStop float64
	Reason  string
	Time    time.Time
}

type Journal interface {
	RecordDecision(DecisionRecord) error
	RecordExit(ExitRecord) error
	Close() error
}

// Nop discards everything. Useful in tests and one-shot evaluations.
type Nop struct{}

func (Nop) RecordDecision(DecisionRecord) error { return nil }
func (Nop) RecordExit(ExitRecord) error         { return nil }
func (Nop) Close() error                        { return nil }
