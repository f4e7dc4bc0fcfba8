package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	decisions *csv.Writer
	exits     *csv.Writer
	df, ef    *os.File
}

func NewCSV(decisionsPath, exitsPath string) (*CSVJournal, error) {
	df, err := os.Create(decisionsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(exitsPath)
	if err != nil {
		df.Close()
		return nil, err
	}

	dw := csv.NewWriter(df)
	ew := csv.NewWriter(ef)

	if err := dw.Write([]string{
		"decision_id", "asset", "strategy", "signal", "regime",
		"base_signal", "trend_confluence", "volatility", "sentiment",
		"total", "threshold", "approved", "reasons", "time",
	}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"trade_id", "asset", "action", "new_stop", "reason", "time"}); err != nil {
		return nil, err
	}

	dw.Flush()
	if err := dw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{dw, ew, df, ef}, nil
}

func (j *CSVJournal) RecordDecision(d DecisionRecord) error {
	j.decisions.Write([]string{
		d.DecisionID,
		d.Asset,
		d.Strategy,
		d.Signal,
		d.Regime,
		f(d.BaseSignal),
		f(d.TrendConfluence),
		f(d.Volatility),
		f(d.Sentiment),
		f(d.Total),
		f(d.Threshold),
		strconv.FormatBool(d.Approved),
		d.Reasons,
		d.Time.Format(time.RFC3339),
	})
	j.decisions.Flush()
	return j.decisions.Error()
}

func (j *CSVJournal) RecordExit(e ExitRecord) error {
	j.exits.Write([]string{
		e.TradeID,
		e.Asset,
		e.Action,
		f(e.NewStop),
		e.Reason,
		e.Time.Format(time.RFC3339),
	})
	j.exits.Flush()
	return j.exits.Error()
}

func (j *CSVJournal) Close() error {
	j.decisions.Flush()
	j.exits.Flush()
	if err := j.df.Close(); err != nil {
		j.ef.Close()
		return err
	}
	return j.ef.Close()
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
