package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSource() *testutil.MockLedgerSource {
	opening := decimal.NewFromInt(200)
	source := testutil.NewMockLedgerSource()
	source.AddWindow(&domain.LedgerWindow{
		ClientID:       "acme",
		OpeningBalance: &opening,
		Transactions: []domain.LedgerTransaction{
			{ID: "t1", TransactionDate: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), DebitAmount: "500"},
		},
	})
	return source
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"-client", "acme", "-from", "2024-02-01", "-format", "csv"})
	require.NoError(t, err)
	assert.Equal(t, "acme", opts.clientID)
	assert.Equal(t, "2024-02-01", opts.from)
	assert.Equal(t, "", opts.to)
	assert.Equal(t, formatCSV, opts.format)
}

func TestParseFlags_Errors(t *testing.T) {
	_, err := parseFlags([]string{"-from", "2024-02-01"})
	assert.True(t, errors.Is(err, domain.ErrClientIDRequired))

	_, err = parseFlags([]string{"-client", "acme", "-format", "xml"})
	assert.True(t, errors.Is(err, domain.ErrInvalidExportFormat))
}

func TestRun_JSON(t *testing.T) {
	var out bytes.Buffer
	opts := options{clientID: "acme", format: formatJSON}
	now := time.Date(2024, 2, 15, 12, 0, 0, 0, time.UTC)

	require.NoError(t, run(context.Background(), opts, newSource(), now, &out))

	var got struct {
		DateFrom string `json:"dateFrom"`
		DateTo   string `json:"dateTo"`
		Standing string `json:"standing"`
		Ledger   struct {
			Closing string `json:"closing"`
			Rows    []struct {
				Kind string `json:"kind"`
			} `json:"rows"`
		} `json:"ledger"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "2024-02-01", got.DateFrom)
	assert.Equal(t, "2024-02-29", got.DateTo)
	assert.Equal(t, "outstanding", got.Standing)
	assert.Equal(t, "-300", got.Ledger.Closing)
	require.Len(t, got.Ledger.Rows, 3)
	assert.Equal(t, "opening", got.Ledger.Rows[0].Kind)
	assert.Equal(t, "closing", got.Ledger.Rows[2].Kind)
}

func TestRun_CSV(t *testing.T) {
	var out bytes.Buffer
	opts := options{clientID: "acme", from: "2024-02-01", to: "2024-02-29", format: formatCSV}

	require.NoError(t, run(context.Background(), opts, newSource(), time.Now(), &out))
	assert.True(t, strings.Contains(out.String(), "Closing Balance"))
	assert.True(t, strings.Contains(out.String(), "₹300.00 Dr"))
}

func TestRun_UnknownClient(t *testing.T) {
	var out bytes.Buffer
	opts := options{clientID: "nobody", format: formatJSON}

	err := run(context.Background(), opts, newSource(), time.Now(), &out)
	assert.True(t, errors.Is(err, domain.ErrClientNotFound))
	assert.Zero(t, out.Len())
}

func TestRun_InvalidWindow(t *testing.T) {
	var out bytes.Buffer
	opts := options{clientID: "acme", from: "2024-03-01", to: "2024-02-01", format: formatJSON}

	err := run(context.Background(), opts, newSource(), time.Now(), &out)
	assert.True(t, errors.Is(err, domain.ErrInvalidDateRange))
}
