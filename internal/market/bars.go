package market

import (
	"fmt"
	"sort"
	"time"
)

// PriceBar is one trading day of OHLCV data for one instrument.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// InstrumentSeries is the date-ascending bar history for one ticker.
// It is immutable once built; derived indicator columns are attached as
// parallel slices aligned by index, never by date lookup.
type InstrumentSeries struct {
	Symbol string
	Bars   []PriceBar
}

// NewInstrumentSeries sorts the bars ascending, drops duplicate dates
// (keeping the last occurrence) and validates basic OHLC sanity.
func NewInstrumentSeries(symbol string, bars []PriceBar) (*InstrumentSeries, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("series %s: no bars", symbol)
	}

	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	deduped := sorted[:0]
	for _, b := range sorted {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(b.Date) {
			deduped[n-1] = b
			continue
		}
		deduped = append(deduped, b)
	}

	for _, b := range deduped {
		if b.Close <= 0 || b.Open <= 0 || b.High <= 0 || b.Low <= 0 {
			return nil, fmt.Errorf("series %s: non-positive price on %s", symbol, b.Date.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return nil, fmt.Errorf("series %s: high < low on %s", symbol, b.Date.Format("2006-01-02"))
		}
		if b.Volume < 0 {
			return nil, fmt.Errorf("series %s: negative volume on %s", symbol, b.Date.Format("2006-01-02"))
		}
	}

	out := make([]PriceBar, len(deduped))
	copy(out, deduped)
	return &InstrumentSeries{Symbol: symbol, Bars: out}, nil
}

// Len returns the number of bars in the series.
func (s *InstrumentSeries) Len() int { return len(s.Bars) }

// Closes returns the close column as a fresh slice.
func (s *InstrumentSeries) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column as a fresh slice.
func (s *InstrumentSeries) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column as a fresh slice.
func (s *InstrumentSeries) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// IndexOf returns the bar index holding date, or -1 when the date is a
// gap (non-trading day or missing vendor data).
func (s *InstrumentSeries) IndexOf(date time.Time) int {
	i := sort.Search(len(s.Bars), func(i int) bool {
		return !s.Bars[i].Date.Before(date)
	})
	if i < len(s.Bars) && s.Bars[i].Date.Equal(date) {
		return i
	}
	return -1
}

// Truncate returns a shallow view of the series up to and including
// index i. Derived state computed on the view must equal state computed
// on the full series at i (no look-ahead).
func (s *InstrumentSeries) Truncate(i int) *InstrumentSeries {
	if i < 0 {
		i = -1
	}
	if i >= len(s.Bars) {
		i = len(s.Bars) - 1
	}
	return &InstrumentSeries{Symbol: s.Symbol, Bars: s.Bars[:i+1]}
}

// CheckAligned verifies that a derived column has exactly one value per
// bar. A mismatch is a programming error: silent truncation introduces
// look-ahead or look-behind bias, so callers must fail the run.
func (s *InstrumentSeries) CheckAligned(name string, n int) error {
	if n != len(s.Bars) {
		return fmt.Errorf("series %s: column %s has %d values for %d bars", s.Symbol, name, n, len(s.Bars))
	}
	return nil
}
