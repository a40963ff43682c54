package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/export"
	"github.com/lumenedit/ledger-api/internal/repository/storage"
	"github.com/lumenedit/ledger-api/internal/util"
	"github.com/rs/zerolog/log"
)

// DefaultStatementURLTTL is how long archived statement links stay valid
const DefaultStatementURLTTL = 15 * time.Minute

// StatementService exports reconciled ledgers as documents
type StatementService struct {
	ledgerService *LedgerService
	archive       domain.StatementArchive
	renderer      domain.PDFRenderer
	publisher     domain.EventPublisher
	urlTTL        time.Duration
}

// NewStatementService creates a new StatementService. archive, renderer and
// publisher may be nil; the corresponding operations then report
// ErrExportUnavailable (or skip publishing).
func NewStatementService(
	ledgerService *LedgerService,
	archive domain.StatementArchive,
	renderer domain.PDFRenderer,
	publisher domain.EventPublisher,
	urlTTL time.Duration,
) *StatementService {
	if urlTTL <= 0 {
		urlTTL = DefaultStatementURLTTL
	}
	return &StatementService{
		ledgerService: ledgerService,
		archive:       archive,
		renderer:      renderer,
		publisher:     publisher,
		urlTTL:        urlTTL,
	}
}

// WriteCSV writes the statement as CSV to w
func (s *StatementService) WriteCSV(ctx context.Context, q domain.LedgerQuery, w io.Writer) error {
	stmt, err := s.ledgerService.GetLedger(ctx, q)
	if err != nil {
		return err
	}
	return export.WriteStatementCSV(w, stmt)
}

// ExportCSV returns the statement as CSV bytes
func (s *StatementService) ExportCSV(ctx context.Context, q domain.LedgerQuery) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.WriteCSV(ctx, q, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderPDF renders the statement through the PDF renderer
func (s *StatementService) RenderPDF(ctx context.Context, q domain.LedgerQuery) ([]byte, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("%w: pdf renderer", domain.ErrExportUnavailable)
	}
	stmt, err := s.ledgerService.GetLedger(ctx, q)
	if err != nil {
		return nil, err
	}
	html, err := export.RenderStatementHTML(stmt)
	if err != nil {
		return nil, err
	}
	pdf, err := s.renderer.RenderHTML(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return pdf, nil
}

// Archive stores the CSV statement and returns a temporary link to it
func (s *StatementService) Archive(ctx context.Context, q domain.LedgerQuery) (*domain.ArchivedStatement, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("%w: statement archive", domain.ErrExportUnavailable)
	}

	stmt, err := s.ledgerService.GetLedger(ctx, q)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := export.WriteStatementCSV(&buf, stmt); err != nil {
		return nil, err
	}

	objectKey := storage.StatementObjectKey(q.ClientID, q.DateFrom, q.DateTo, ".csv")
	if _, err := s.archive.Upload(ctx, objectKey, buf.Bytes(), "text/csv"); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStatementNotArchived, err)
	}
	url, err := s.archive.GeneratePresignedURL(ctx, objectKey, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStatementNotArchived, err)
	}

	archived := &domain.ArchivedStatement{
		ClientID:   q.ClientID,
		DateFrom:   q.DateFrom,
		DateTo:     q.DateTo,
		ObjectKey:  objectKey,
		URL:        url,
		ArchivedAt: stmt.GeneratedAt,
	}

	if s.publisher != nil {
		event := domain.StatementArchivedEvent{
			EventID:    uuid.New().String(),
			ClientID:   q.ClientID,
			DateFrom:   q.DateFrom.Format(util.DateLayout),
			DateTo:     q.DateTo.Format(util.DateLayout),
			ObjectKey:  objectKey,
			Opening:    stmt.Ledger.Opening,
			Closing:    stmt.Ledger.Closing,
			OccurredAt: archived.ArchivedAt,
		}
		if err := s.publisher.Publish(ctx, q.ClientID, event); err != nil {
			log.Error().Err(err).Str("client_id", q.ClientID).Str("object_key", objectKey).Msg("Failed to publish statement archived event")
		}
	}

	return archived, nil
}
