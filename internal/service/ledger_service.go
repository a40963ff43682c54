package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/ledger"
	"github.com/lumenedit/ledger-api/internal/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// LedgerService loads ledger windows and reconciles them. Every call
// recomputes the ledger; concurrent identical calls share one upstream fetch.
type LedgerService struct {
	source domain.LedgerSource
	group  singleflight.Group
	logger zerolog.Logger
	now    func() time.Time
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(source domain.LedgerSource) *LedgerService {
	return &LedgerService{
		source: source,
		logger: log.With().Str("component", "ledger_service").Logger(),
		now:    time.Now,
	}
}

// ValidateQuery checks the client id and the window bounds
func ValidateQuery(q domain.LedgerQuery) error {
	if strings.TrimSpace(q.ClientID) == "" {
		return domain.ErrClientIDRequired
	}
	return util.ValidateWindow(q.DateFrom, q.DateTo)
}

// GetLedger fetches the client's window and returns the reconciled statement
func (s *LedgerService) GetLedger(ctx context.Context, q domain.LedgerQuery) (*domain.LedgerStatement, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	window, err := s.fetch(ctx, q)
	if err != nil {
		return nil, err
	}

	reconciled := ledger.Reconcile(*window)
	for _, sub := range reconciled.Substitutions {
		s.logger.Warn().
			Str("client_id", q.ClientID).
			Str("transaction_id", sub.TransactionID).
			Str("field", sub.Field).
			Str("raw", sub.Raw).
			Msg("Malformed ledger amount treated as zero")
	}

	stmt := &domain.LedgerStatement{
		Query:           q,
		Ledger:          reconciled,
		Aggregates:      ledger.ComputeAggregates(reconciled),
		ReportedClosing: window.ClosingBalance,
		GeneratedAt:     s.now(),
	}
	if window.ClosingBalance != nil && !window.ClosingBalance.Equal(reconciled.Closing) {
		stmt.ClosingDiscrepancy = true
		s.logger.Debug().
			Str("client_id", q.ClientID).
			Str("reported_closing", window.ClosingBalance.String()).
			Str("computed_closing", reconciled.Closing.String()).
			Msg("Upstream closing balance differs from computed closing")
	}

	return stmt, nil
}

// fetch collapses concurrent identical fetches. The shared fetch is detached
// from any single caller's cancellation; each caller still honours its own ctx.
func (s *LedgerService) fetch(ctx context.Context, q domain.LedgerQuery) (*domain.LedgerWindow, error) {
	key := fmt.Sprintf("%s|%s|%s", q.ClientID, q.DateFrom.Format(util.DateLayout), q.DateTo.Format(util.DateLayout))
	shared := context.WithoutCancel(ctx)

	ch := s.group.DoChan(key, func() (interface{}, error) {
		return s.source.FetchWindow(shared, q.ClientID, q.DateFrom, q.DateTo)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		window, ok := res.Val.(*domain.LedgerWindow)
		if !ok || window == nil {
			return nil, fmt.Errorf("%w: empty response", domain.ErrLedgerUnavailable)
		}
		return window, nil
	}
}
