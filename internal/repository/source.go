// Package repository selects the ledger system of record.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenedit/ledger-api/internal/config"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/repository/graphql"
	"github.com/lumenedit/ledger-api/internal/repository/postgres"
	"github.com/rs/zerolog/log"
)

// NewLedgerSource builds the configured LedgerSource. The returned cleanup
// releases any connections and is never nil.
func NewLedgerSource(ctx context.Context, cfg *config.Config) (domain.LedgerSource, func(), error) {
	switch cfg.LedgerSource {
	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, func() {}, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("failed to ping database: %w", err)
		}
		log.Info().Msg("Connected to database")
		return postgres.NewLedgerRepository(pool), pool.Close, nil

	case config.SourceGraphQL:
		client := graphql.NewLedgerClient(graphql.Options{
			Endpoint: cfg.GraphQL.Endpoint,
			Token:    cfg.GraphQL.Token,
			Timeout:  cfg.GraphQL.Timeout,
			PageSize: cfg.GraphQL.PageSize,
			MaxPages: cfg.GraphQL.MaxPages,
		})
		log.Info().Str("endpoint", cfg.GraphQL.Endpoint).Msg("Using GraphQL ledger source")
		return client, func() {}, nil
	}

	return nil, func() {}, fmt.Errorf("unknown ledger source %q", cfg.LedgerSource)
}
