package journal

const Schema = `
CREATE TABLE IF NOT EXISTS decisions (
	decision_id TEXT PRIMARY KEY,
	asset TEXT NOT NULL,
	strategy TEXT NOT NULL,
	signal TEXT NOT NULL,
	regime TEXT NOT NULL,
	base_signal REAL NOT NULL,
	trend_confluence REAL NOT NULL,
	volatility REAL NOT NULL,
	sentiment REAL NOT NULL,
	total REAL NOT NULL,
	threshold REAL NOT NULL,
	approved INTEGER NOT NULL,
	reasons TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS exits (
	trade_id TEXT NOT NULL,
	asset TEXT NOT NULL,
	action TEXT NOT NULL,
	new_stop REAL NOT NULL,
	reason TEXT NOT NULL,
	time DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_asset ON decisions(asset, time);
CREATE INDEX IF NOT EXISTS idx_exits_trade ON exits(trade_id, time);
`
