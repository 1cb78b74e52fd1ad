package portfolio

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/romarin-hsieh/investment-dashboard/internal/regime"
	"github.com/romarin-hsieh/investment-dashboard/internal/strategy"
)

// Simulator replays routed signals through a position-lifecycle state
// machine over the unified calendar. Per ticker the lifecycle is
// FLAT → OPEN → FLAT; no partial fills or pyramiding. The simulator is
// the single sequential reducer over cross-ticker state (cash, position
// count); everything upstream of it is per-ticker independent.
type Simulator struct {
	cfg         Config
	instruments map[string]*Instrument
	global      *regime.GlobalClassifier
	peers       map[string]*regime.PeerClassifier // sector label -> classifier
	gauge       *regime.PanicGauge

	cash      float64
	positions map[string]*Position
	result    *Result
}

// NewSimulator wires the simulator. peers is keyed by sector label; a
// missing sector classifies as Neutral (non-blocking).
func NewSimulator(cfg Config, instruments map[string]*Instrument, global *regime.GlobalClassifier, peers map[string]*regime.PeerClassifier, gauge *regime.PanicGauge) *Simulator {
	if global == nil {
		global = regime.NewGlobalClassifier(nil, 0)
	}
	if gauge == nil {
		gauge = regime.NewPanicGauge(nil, 0)
	}
	if peers == nil {
		peers = map[string]*regime.PeerClassifier{}
	}
	return &Simulator{
		cfg:         cfg,
		instruments: instruments,
		global:      global,
		peers:       peers,
		gauge:       gauge,
	}
}

// Run walks the calendar in order: mark & exit pass, equity snapshot,
// then entry pass. The snapshot sits between exits and entries so that
// today's exits free capital for today's entries without the entries
// double-counting in the same snapshot.
func (s *Simulator) Run(calendar []time.Time) (*Result, error) {
	if len(calendar) == 0 {
		return nil, fmt.Errorf("simulator: empty calendar")
	}

	s.cash = s.cfg.InitialCapital
	s.positions = make(map[string]*Position)
	s.result = &Result{}

	for _, date := range calendar {
		s.exitPass(date)

		equity := s.cash + s.markToMarket(date)
		s.result.EquityCurve = append(s.result.EquityCurve, EquityPoint{Date: date, Equity: equity})

		s.entryPass(date, equity)

		if s.cash < 0 {
			return nil, fmt.Errorf("simulator: cash went negative (%.2f) on %s", s.cash, date.Format("2006-01-02"))
		}
		if len(s.positions) > s.cfg.MaxPositions {
			return nil, fmt.Errorf("simulator: %d positions exceed limit %d on %s", len(s.positions), s.cfg.MaxPositions, date.Format("2006-01-02"))
		}
	}

	return s.result, nil
}

// exitPass evaluates every open position's exit rule on the given date,
// then updates trailing highs for positions that stay open. Missing
// bars skip the evaluation entirely; the position is neither marked nor
// force-exited on a gap.
func (s *Simulator) exitPass(date time.Time) {
	for _, sym := range s.openSymbols() {
		pos := s.positions[sym]
		ins := s.instruments[sym]
		i := ins.Series.IndexOf(date)
		if i < 0 {
			continue
		}

		d := ins.Policy.Evaluate(ins.Frame, i, &pos.State, s.global.At(date), s.peerAt(ins.Sector, date))
		if d.Action.IsSell() {
			bar := ins.Series.Bars[i]
			proceeds := pos.Shares * bar.Close
			s.cash += proceeds
			s.result.Trades = append(s.result.Trades, Trade{
				Symbol:     sym,
				Sector:     ins.Sector,
				Strategy:   ins.Policy.Name(),
				EntryDate:  pos.EntryDate,
				ExitDate:   date,
				EntryPrice: pos.EntryPrice,
				ExitPrice:  bar.Close,
				PnL:        proceeds - pos.Committed,
				PnLPct:     (bar.Close - pos.EntryPrice) / pos.EntryPrice,
				DaysHeld:   pos.State.DaysHeld(date),
				ExitReason: d.Reason,
			})
			delete(s.positions, sym)
			continue
		}

		if h := ins.Series.Bars[i].High; h > pos.State.HighSinceEntry {
			pos.State.HighSinceEntry = h
		}
	}
}

// markToMarket values open positions at the date's close. A data gap
// falls back to the entry price and is counted distinctly; it is an
// approximation, not a true mark.
func (s *Simulator) markToMarket(date time.Time) float64 {
	total := 0.0
	for sym, pos := range s.positions {
		ins := s.instruments[sym]
		if i := ins.Series.IndexOf(date); i >= 0 {
			total += pos.Shares * ins.Series.Bars[i].Close
		} else {
			total += pos.Shares * pos.EntryPrice
			s.result.FallbackMarks++
		}
	}
	return total
}

// entryPass opens positions for signal-eligible flat tickers, strongest
// trend first, until capacity or cash runs out.
func (s *Simulator) entryPass(date time.Time, equity float64) {
	if s.gauge.Halted(date) {
		s.result.HaltedDates++
		log.Debug().Str("date", date.Format("2006-01-02")).Msg("crisis halt: entries suspended")
		return
	}
	if len(s.positions) >= s.cfg.MaxPositions {
		return
	}

	type candidate struct {
		ins   *Instrument
		index int
		trend float64
	}
	var candidates []candidate

	for _, sym := range s.sortedSymbols() {
		if _, open := s.positions[sym]; open {
			continue
		}
		ins := s.instruments[sym]
		i := ins.Series.IndexOf(date)
		if i < 0 {
			continue
		}
		d := ins.Policy.Evaluate(ins.Frame, i, nil, s.global.At(date), s.peerAt(ins.Sector, date))
		if d.Action.IsBuy() {
			candidates = append(candidates, candidate{ins: ins, index: i, trend: ins.trendAt(i)})
		}
	}

	// Rank by trend strength descending, symbol ascending for a
	// deterministic tie-break.
	sort.SliceStable(candidates, func(a, b int) bool {
		if candidates[a].trend != candidates[b].trend {
			return candidates[a].trend > candidates[b].trend
		}
		return candidates[a].ins.Symbol < candidates[b].ins.Symbol
	})

	for _, c := range candidates {
		if len(s.positions) >= s.cfg.MaxPositions {
			break
		}
		size := equity * s.cfg.PositionFraction
		if s.cash < size {
			size = s.cash
		}
		if size < s.cfg.DustThreshold {
			break
		}

		price := c.ins.Series.Bars[c.index].Close
		s.positions[c.ins.Symbol] = &Position{
			Symbol:     c.ins.Symbol,
			Strategy:   c.ins.Policy.Tag(),
			EntryDate:  date,
			EntryPrice: price,
			Shares:     size / price,
			Committed:  size,
			State: strategy.OpenState{
				EntryDate:      date,
				EntryPrice:     price,
				HighSinceEntry: price,
			},
		}
		s.cash -= size
	}
}

func (s *Simulator) peerAt(sector string, date time.Time) regime.PeerTrend {
	if c, ok := s.peers[sector]; ok {
		return c.At(date)
	}
	return regime.Neutral
}

func (s *Simulator) openSymbols() []string {
	out := make([]string, 0, len(s.positions))
	for sym := range s.positions {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

func (s *Simulator) sortedSymbols() []string {
	out := make([]string, 0, len(s.instruments))
	for sym := range s.instruments {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
