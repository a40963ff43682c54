package repository

import (
	"context"
	"testing"

	"github.com/lumenedit/ledger-api/internal/config"
	"github.com/lumenedit/ledger-api/internal/repository/graphql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedgerSource_GraphQL(t *testing.T) {
	cfg := &config.Config{
		LedgerSource: config.SourceGraphQL,
		GraphQL:      config.GraphQLConfig{Endpoint: "http://ledger.test/graphql", PageSize: 50},
	}

	source, cleanup, err := NewLedgerSource(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	assert.IsType(t, &graphql.LedgerClient{}, source)
}

func TestNewLedgerSource_Unknown(t *testing.T) {
	_, cleanup, err := NewLedgerSource(context.Background(), &config.Config{LedgerSource: "redis"})
	require.Error(t, err)
	assert.NotNil(t, cleanup)
}

func TestNewLedgerSource_PostgresBadURL(t *testing.T) {
	cfg := &config.Config{LedgerSource: config.SourcePostgres, DatabaseURL: "://not-a-url"}

	_, cleanup, err := NewLedgerSource(context.Background(), cfg)
	require.Error(t, err)
	cleanup()
}
