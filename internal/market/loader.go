package market

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// SeriesCache is an optional hot tier consulted before the filesystem.
// A nil cache and a cache miss behave identically.
type SeriesCache interface {
	Get(ctx context.Context, symbol string) ([]byte, bool)
	Set(ctx context.Context, symbol string, raw []byte)
}

// Universe holds every loaded instrument plus the load manifest.
type Universe struct {
	Series  map[string]*InstrumentSeries
	Skipped map[string]string // symbol -> reason
}

// LoadUniverse reads every *.json OHLCV file under dir, normalizing both
// vendor shapes. Index and metadata files are ignored. A malformed file
// is logged with its symbol and recorded in the skip manifest; it never
// aborts the batch.
func LoadUniverse(ctx context.Context, dir string, cache SeriesCache) (*Universe, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read universe dir: %w", err)
	}

	u := &Universe{
		Series:  make(map[string]*InstrumentSeries),
		Skipped: make(map[string]string),
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		if strings.HasPrefix(name, "index") || name == "sector_industry.json" || name == "manifest.json" {
			continue
		}

		symbol := strings.ToUpper(strings.TrimSuffix(name, ".json"))

		raw, ok := cachedRead(ctx, cache, symbol)
		if !ok {
			raw, err = os.ReadFile(filepath.Join(dir, name))
			if err != nil {
				log.Warn().Str("symbol", symbol).Err(err).Msg("skipping unreadable series file")
				u.Skipped[symbol] = fmt.Sprintf("unreadable: %v", err)
				continue
			}
			if cache != nil {
				cache.Set(ctx, symbol, raw)
			}
		}

		series, err := ParseSeries(symbol, raw)
		if err != nil {
			log.Warn().Str("symbol", symbol).Err(err).Msg("skipping malformed series")
			u.Skipped[symbol] = fmt.Sprintf("malformed: %v", err)
			continue
		}
		u.Series[symbol] = series
	}

	if len(u.Series) == 0 {
		return nil, fmt.Errorf("universe %s: zero instruments loaded (%d skipped)", dir, len(u.Skipped))
	}
	return u, nil
}

func cachedRead(ctx context.Context, cache SeriesCache, symbol string) ([]byte, bool) {
	if cache == nil {
		return nil, false
	}
	return cache.Get(ctx, symbol)
}

// Take removes and returns a series from the universe, or nil. Used to
// split out benchmark, volatility-gauge and proxy tickers before the
// tradable scan.
func (u *Universe) Take(symbol string) *InstrumentSeries {
	s := u.Series[symbol]
	delete(u.Series, symbol)
	return s
}
