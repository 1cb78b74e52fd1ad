package market

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SectorUnknown is the routing label for tickers with no metadata entry.
// It is a valid strategy route, not an error.
const SectorUnknown = "Unknown"

// SectorMap maps upper-case ticker symbols to sector labels. Built once
// per run and read-only afterwards.
type SectorMap struct {
	sectors    map[string]string
	industries map[string]string
}

type sectorPayload struct {
	Items []struct {
		Symbol   string `json:"symbol"`
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"items"`
}

// ParseSectorMap loads the sector/industry metadata document.
func ParseSectorMap(raw []byte) (*SectorMap, error) {
	var p sectorPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse sector metadata: %w", err)
	}
	m := NewSectorMap()
	for _, item := range p.Items {
		sym := strings.ToUpper(item.Symbol)
		if sym == "" {
			continue
		}
		sector := item.Sector
		if sector == "" {
			sector = SectorUnknown
		}
		m.sectors[sym] = sector
		if item.Industry != "" {
			m.industries[sym] = item.Industry
		}
	}
	return m, nil
}

// NewSectorMap returns an empty map; every lookup yields Unknown.
func NewSectorMap() *SectorMap {
	return &SectorMap{
		sectors:    make(map[string]string),
		industries: make(map[string]string),
	}
}

// Set records a sector label for a ticker (test and fixture use).
func (m *SectorMap) Set(symbol, sector string) {
	m.sectors[strings.ToUpper(symbol)] = sector
}

// Sector returns the sector label for a ticker, defaulting to Unknown.
func (m *SectorMap) Sector(symbol string) string {
	if s, ok := m.sectors[strings.ToUpper(symbol)]; ok {
		return s
	}
	return SectorUnknown
}

// Industry returns the industry label for a ticker, defaulting to Unknown.
func (m *SectorMap) Industry(symbol string) string {
	if s, ok := m.industries[strings.ToUpper(symbol)]; ok {
		return s
	}
	return SectorUnknown
}

// Len returns the number of mapped tickers.
func (m *SectorMap) Len() int { return len(m.sectors) }

// sectorProxies maps sector labels to their proxy ETF tickers. Sectors
// without a proxy fall back to the broad benchmark.
var sectorProxies = map[string]string{
	"Technology":             "XLK",
	"Healthcare":             "XLV",
	"Energy":                 "XLE",
	"Consumer Cyclical":      "XLY",
	"Consumer Defensive":     "XLP",
	"Financial Services":     "XLF",
	"Industrials":            "XLI",
	"Utilities":              "XLU",
	"Basic Materials":        "XLB",
	"Communication Services": "XLC",
	"Real Estate":            "XLRE",
}

// SectorProxy returns the proxy ETF ticker for a sector label, or the
// given benchmark symbol when the sector has no dedicated proxy.
func SectorProxy(sector, benchmark string) string {
	if etf, ok := sectorProxies[sector]; ok {
		return etf
	}
	return benchmark
}
