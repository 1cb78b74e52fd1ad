package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romarin-hsieh/investment-dashboard/internal/portfolio"
)

func mockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(sqlx.NewDb(db, "postgres")), mock
}

func sampleRun() ([]portfolio.Trade, []portfolio.EquityPoint) {
	d := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	trades := []portfolio.Trade{
		{
			Symbol: "AAA", Sector: "Technology", Strategy: "growth_squeeze",
			EntryDate: d, ExitDate: d.AddDate(0, 0, 5),
			EntryPrice: 100, ExitPrice: 112, PnL: 1200, PnLPct: 0.12, DaysHeld: 5,
			ExitReason: "profit target",
		},
	}
	curve := []portfolio.EquityPoint{
		{Date: d, Equity: 100000},
		{Date: d.AddDate(0, 0, 1), Equity: 100500},
	}
	return trades, curve
}

func TestSaveRunCommitsTradesAndEquity(t *testing.T) {
	store, mock := mockStore(t)
	trades, curve := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO quant_trades").
		WithArgs("run-1", "AAA", "Technology", "growth_squeeze",
			trades[0].EntryDate, trades[0].ExitDate, 100.0, 112.0, 1200.0, 0.12, 5, "profit target").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO quant_equity").
		WithArgs("run-1", curve[0].Date, 100000.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO quant_equity").
		WithArgs("run-1", curve[1].Date, 100500.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveRun(context.Background(), "run-1", trades, curve))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunRollsBackOnInsertFailure(t *testing.T) {
	store, mock := mockStore(t)
	trades, curve := sampleRun()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO quant_trades").
		WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := store.SaveRun(context.Background(), "run-2", trades, curve)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert trade")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveRunEmptyRunStillCommits(t *testing.T) {
	store, mock := mockStore(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, store.SaveRun(context.Background(), "run-3", nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheMissesWhenUnreachable(t *testing.T) {
	// Points at a port nothing listens on: every operation degrades to a
	// miss instead of failing the load.
	c := NewRedisSeriesCache("127.0.0.1:1", time.Minute)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.Error(t, c.Ping(ctx))
	raw, ok := c.Get(ctx, "AAPL")
	assert.False(t, ok)
	assert.Nil(t, raw)
	c.Set(ctx, "AAPL", []byte("{}")) // must not panic
}
