package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
)

const schema = `
CREATE TABLE IF NOT EXISTS quant_trades (
	run_id      TEXT             NOT NULL,
	symbol      TEXT             NOT NULL,
	sector      TEXT             NOT NULL,
	strategy    TEXT             NOT NULL,
	entry_date  TIMESTAMPTZ      NOT NULL,
	exit_date   TIMESTAMPTZ      NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL,
	exit_price  DOUBLE PRECISION NOT NULL,
	pnl         DOUBLE PRECISION NOT NULL,
	pnl_pct     DOUBLE PRECISION NOT NULL,
	days_held   INTEGER          NOT NULL,
	exit_reason TEXT             NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quant_trades_run ON quant_trades (run_id);

CREATE TABLE IF NOT EXISTS quant_equity (
	run_id TEXT             NOT NULL,
	date   TIMESTAMPTZ      NOT NULL,
	equity DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quant_equity_run ON quant_equity (run_id);
`

// Store persists simulation runs to Postgres for cross-run comparison.
// It is optional; the JSONL artifacts remain the primary output.
type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection; tests inject a mock through it.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// SaveRun writes one simulation's trades and equity curve in a single
// transaction keyed by the run ID.
func (s *Store) SaveRun(ctx context.Context, runID string, trades []portfolio.Trade, curve []portfolio.EquityPoint) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const insertTrade = `INSERT INTO quant_trades
		(run_id, symbol, sector, strategy, entry_date, exit_date, entry_price, exit_price, pnl, pnl_pct, days_held, exit_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, t := range trades {
		if _, err := tx.ExecContext(ctx, insertTrade,
			runID, t.Symbol, t.Sector, t.Strategy,
			t.EntryDate, t.ExitDate, t.EntryPrice, t.ExitPrice,
			t.PnL, t.PnLPct, t.DaysHeld, t.ExitReason,
		); err != nil {
			return fmt.Errorf("insert trade %s: %w", t.Symbol, err)
		}
	}

	const insertEquity = `INSERT INTO quant_equity (run_id, date, equity) VALUES ($1, $2, $3)`
	for _, p := range curve {
		if _, err := tx.ExecContext(ctx, insertEquity, runID, p.Date, p.Equity); err != nil {
			return fmt.Errorf("insert equity point %s: %w", p.Date.Format("2006-01-02"), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Info().Str("run_id", runID).Int("trades", len(trades)).Int("equity_points", len(curve)).Msg("run persisted")
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}
