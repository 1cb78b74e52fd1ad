package market

import (
	"encoding/json"
	"fmt"
	"time"
)

// Two vendor shapes exist in the historical data files: a columnar form
// keyed by field name with millisecond epoch timestamps, and a
// row-oriented form with string dates. Both normalize into
// InstrumentSeries here; nothing downstream sees raw vendor records.

type columnarPayload struct {
	Timestamps []int64   `json:"timestamps"`
	Open       []float64 `json:"open"`
	High       []float64 `json:"high"`
	Low        []float64 `json:"low"`
	Close      []float64 `json:"close"`
	Volume     []float64 `json:"volume"`
}

type rowPayload struct {
	Time   string  `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ParseSeries normalizes a raw vendor JSON document into an
// InstrumentSeries, accepting either the columnar or the row shape.
func ParseSeries(symbol string, raw []byte) (*InstrumentSeries, error) {
	trimmed := firstNonSpace(raw)
	switch trimmed {
	case '{':
		var p columnarPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("parse %s columnar payload: %w", symbol, err)
		}
		return fromColumnar(symbol, p)
	case '[':
		var rows []rowPayload
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("parse %s row payload: %w", symbol, err)
		}
		return fromRows(symbol, rows)
	default:
		return nil, fmt.Errorf("parse %s: unrecognized payload shape", symbol)
	}
}

func firstNonSpace(raw []byte) byte {
	for _, c := range raw {
		switch c {
		case ' ', '\t', '\r', '\n':
			continue
		}
		return c
	}
	return 0
}

func fromColumnar(symbol string, p columnarPayload) (*InstrumentSeries, error) {
	n := len(p.Timestamps)
	if n == 0 {
		return nil, fmt.Errorf("series %s: empty columnar payload", symbol)
	}
	// Column lengths must agree before any elementwise access.
	for name, l := range map[string]int{
		"open": len(p.Open), "high": len(p.High), "low": len(p.Low),
		"close": len(p.Close), "volume": len(p.Volume),
	} {
		if l != n {
			return nil, fmt.Errorf("series %s: column %s has %d values for %d timestamps", symbol, name, l, n)
		}
	}

	bars := make([]PriceBar, n)
	for i := 0; i < n; i++ {
		bars[i] = PriceBar{
			Date:   dayOf(time.UnixMilli(p.Timestamps[i]).UTC()),
			Open:   p.Open[i],
			High:   p.High[i],
			Low:    p.Low[i],
			Close:  p.Close[i],
			Volume: int64(p.Volume[i]),
		}
	}
	return NewInstrumentSeries(symbol, bars)
}

func fromRows(symbol string, rows []rowPayload) (*InstrumentSeries, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("series %s: empty row payload", symbol)
	}
	bars := make([]PriceBar, 0, len(rows))
	for _, r := range rows {
		d, err := parseDay(r.Time)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", symbol, err)
		}
		bars = append(bars, PriceBar{
			Date:   d,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: int64(r.Volume),
		})
	}
	return NewInstrumentSeries(symbol, bars)
}

func parseDay(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return dayOf(t.UTC()), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// dayOf truncates a timestamp to its calendar day (timezone-naive).
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
