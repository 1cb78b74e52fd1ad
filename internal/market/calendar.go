package market

import (
	"sort"
	"time"
)

// UnionCalendar merges the trading dates of every series into one
// ascending calendar. The portfolio simulator walks this calendar; each
// instrument simply has gaps on dates it did not trade.
func UnionCalendar(series map[string]*InstrumentSeries) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, s := range series {
		for _, b := range s.Bars {
			seen[b.Date] = struct{}{}
		}
	}
	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// ClampCalendar restricts a calendar to [start, end] inclusive. Zero
// bounds are open.
func ClampCalendar(dates []time.Time, start, end time.Time) []time.Time {
	out := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out
}
