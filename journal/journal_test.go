package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDecision(id, asset string) DecisionRecord {
	return DecisionRecord{
		DecisionID:      id,
		Asset:           asset,
		Strategy:        "day",
		Signal:          "buy",
		Regime:          "uptrend",
		BaseSignal:      32,
		TrendConfluence: 18.5,
		Volatility:      15,
		Sentiment:       10,
		Total:           75.5,
		Threshold:       70,
		Approved:        true,
		Reasons:         "good confluence (3 indicators)",
		Time:            time.Date(2026, 4, 1, 10, 30, 0, 0, time.UTC),
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	defer j.Close()

	require.NoError(t, j.RecordDecision(sampleDecision("d1", "XAUUSD")))
	require.NoError(t, j.RecordDecision(sampleDecision("d2", "XAUUSD")))
	require.NoError(t, j.RecordDecision(sampleDecision("d3", "EURUSD")))

	got, err := j.ListDecisions("XAUUSD")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d1", got[0].DecisionID)
	assert.InDelta(t, 75.5, got[0].Total, 1e-9)
	assert.True(t, got[0].Approved)

	require.NoError(t, j.RecordExit(ExitRecord{
		TradeID: "t1", Asset: "XAUUSD", Action: "move_stop",
		NewStop: 100.1, Reason: "breakeven lock at 50.0% progress",
		Time: time.Date(2026, 4, 1, 11, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, j.RecordExit(ExitRecord{
		TradeID: "t1", Asset: "XAUUSD", Action: "force_close",
		Reason: "stagnant", Time: time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
	}))

	exits, err := j.ListExits("t1")
	require.NoError(t, err)
	require.Len(t, exits, 2)
	assert.Equal(t, "move_stop", exits[0].Action)
	assert.Equal(t, "force_close", exits[1].Action)
}

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dPath := filepath.Join(dir, "decisions.csv")
	ePath := filepath.Join(dir, "exits.csv")

	j, err := NewCSV(dPath, ePath)
	require.NoError(t, err)

	require.NoError(t, j.RecordDecision(sampleDecision("d1", "WTI_CRUDE")))
	require.NoError(t, j.RecordExit(ExitRecord{
		TradeID: "t9", Asset: "WTI_CRUDE", Action: "move_stop", NewStop: 71.2,
		Reason: "trailing", Time: time.Now().UTC(),
	}))
	require.NoError(t, j.Close())

	df, err := os.Open(dPath)
	require.NoError(t, err)
	defer df.Close()
	rows, err := csv.NewReader(df).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one record")
	assert.Equal(t, "decision_id", rows[0][0])
	assert.Equal(t, "d1", rows[1][0])
	assert.Equal(t, "true", rows[1][11])

	ef, err := os.Open(ePath)
	require.NoError(t, err)
	defer ef.Close()
	rows, err = csv.NewReader(ef).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "t9", rows[1][0])
}

func TestNopJournal(t *testing.T) {
	t.Parallel()

	var j Journal = Nop{}
	assert.NoError(t, j.RecordDecision(DecisionRecord{}))
	assert.NoError(t, j.RecordExit(ExitRecord{}))
	assert.NoError(t, j.Close())
}
