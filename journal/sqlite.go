package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordDecision(d DecisionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO decisions
		(decision_id, asset, strategy, signal, regime, base_signal, trend_confluence,
		 volatility, sentiment, total, threshold, approved, reasons, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.DecisionID, d.Asset, d.Strategy, d.Signal, d.Regime,
		d.BaseSignal, d.TrendConfluence, d.Volatility, d.Sentiment,
		d.Total, d.Threshold, d.Approved, d.Reasons, d.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordExit(e ExitRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO exits
		(trade_id, asset, action, new_stop, reason, time)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.TradeID, e.Asset, e.Action, e.NewStop, e.Reason, e.Time,
	)
	return err
}

// ListDecisions returns the recorded decisions for an asset, oldest first.
func (j *SQLiteJournal) ListDecisions(asset string) ([]DecisionRecord, error) {
	rows, err := j.db.Query(`
		SELECT decision_id, asset, strategy, signal, regime, base_signal,
		       trend_confluence, volatility, sentiment, total, threshold,
		       approved, reasons, time
		FROM decisions WHERE asset = ? ORDER BY time`, asset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var d DecisionRecord
		if err := rows.Scan(
			&d.DecisionID, &d.Asset, &d.Strategy, &d.Signal, &d.Regime,
			&d.BaseSignal, &d.TrendConfluence, &d.Volatility, &d.Sentiment,
			&d.Total, &d.Threshold, &d.Approved, &d.Reasons, &d.Time,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListExits returns the recorded exit actions for a trade, oldest first.
func (j *SQLiteJournal) ListExits(tradeID string) ([]ExitRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, asset, action, new_stop, reason, time
		FROM exits WHERE trade_id = ? ORDER BY time`, tradeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ExitRecord
	for rows.Next() {
		var e ExitRecord
		if err := rows.Scan(&e.TradeID, &e.Asset, &e.Action, &e.NewStop, &e.Reason, &e.Time); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
