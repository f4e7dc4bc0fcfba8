package market

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadCSV reads a candle series from a CSV file with columns
// time,open,high,low,close,volume. The time column accepts RFC 3339 or
// unix seconds; a header row is skipped when present.
func LoadCSV(path string) (Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candles: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var series Series
	line := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read candles: %w", err)
		}
		line++

		if len(rec) < 5 {
			return nil, fmt.Errorf("line %d: want at least 5 columns, got %d", line, len(rec))
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "time") {
			continue
		}

		ts, err := parseTime(rec[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var vals [4]float64
		for i := 0; i < 4; i++ {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[i+1]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %d: %w", line, i+2, err)
			}
			vals[i] = v
		}

		c := Candle{
			Time:  ts,
			Open:  vals[0],
			High:  vals[1],
			Low:   vals[2],
			Close: vals[3],
		}
		if len(rec) > 5 {
			if v, err := strconv.ParseFloat(strings.TrimSpace(rec[5]), 64); err == nil {
				c.Volume = v
			}
		}
		series = append(series, c)
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("no candles in %s", path)
	}
	if err := series.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

func parseTime(field string) (time.Time, error) {
	field = strings.TrimSpace(field)
	if ts, err := time.Parse(time.RFC3339, field); err == nil {
		return ts, nil
	}
	if secs, err := strconv.ParseInt(field, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", field)
}
