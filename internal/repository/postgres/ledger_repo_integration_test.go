//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: LEDGER_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres
func newIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("LEDGER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("LEDGER_TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	schema, err := os.ReadFile("../../../db/schema.sql")
	require.NoError(t, err)
	_, err = pool.Exec(ctx, string(schema))
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `DELETE FROM ledger_transactions WHERE client_id = 'it-client'`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `DELETE FROM clients WHERE id = 'it-client'`)
	require.NoError(t, err)
	return pool
}

func TestLedgerRepository_Integration(t *testing.T) {
	pool := newIntegrationPool(t)
	ctx := context.Background()

	_, err := pool.Exec(ctx, `INSERT INTO clients (id, name, opening_balance) VALUES ('it-client', 'Integration', 1000)`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `
INSERT INTO ledger_transactions (id, client_id, transaction_date, debit_amount, credit_amount, description) VALUES
    ('it-before', 'it-client', '2024-03-31T23:00:00Z', 300.00, NULL, 'before window'),
    ('it-first',  'it-client', '2024-04-01T00:00:00Z', NULL, 50.00, 'first day'),
    ('it-last',   'it-client', '2024-04-30T23:59:00Z', 20.00, NULL, 'last day'),
    ('it-after',  'it-client', '2024-05-01T00:00:00Z', 999.00, NULL, 'after window')`)
	require.NoError(t, err)

	from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	window, err := NewLedgerRepository(pool).FetchWindow(ctx, "it-client", from, to)
	require.NoError(t, err)

	require.NotNil(t, window.OpeningBalance)
	assert.True(t, decimal.NewFromInt(700).Equal(*window.OpeningBalance), "opening %s", window.OpeningBalance)

	require.Len(t, window.Transactions, 2)
	assert.Equal(t, "it-first", window.Transactions[0].ID)
	assert.Equal(t, "it-last", window.Transactions[1].ID)
}
