package report

import (
	"github.com/romarin-hsieh/investment-dashboard/internal/stats"
)

// Verdict is the validator's one-word conclusion.
const (
	VerdictRobust       = "ROBUST"
	VerdictNotRobust    = "NOT_ROBUST"
	VerdictInsufficient = "INSUFFICIENT_DATA"
)

// Validation is the bootstrap validator's output: confidence-bounded
// metrics for the filtered strategy, the same strategy with the market
// gates disabled, and per-group breakdowns of the filtered trades.
type Validation struct {
	RunID      string                   `json:"run_id"`
	Config     stats.Config             `json:"config"`
	Filtered   stats.Metrics            `json:"filtered"`
	Raw        stats.Metrics            `json:"raw"`
	BySector   map[string]stats.Metrics `json:"by_sector"`
	ByStrategy map[string]stats.Metrics `json:"by_strategy"`
	ByYear     map[string]stats.Metrics `json:"by_year"`
	Verdict    string                   `json:"verdict"`
}

// Judge derives the verdict from the filtered metrics: the edge is
// robust only if the lower confidence bounds clear break-even on their
// own, not just the point estimates.
func Judge(filtered stats.Metrics) string {
	if !filtered.Valid {
		return VerdictInsufficient
	}
	if filtered.SharpeLB > 0 && filtered.ProfitFactorLB > 1 {
		return VerdictRobust
	}
	return VerdictNotRobust
}
