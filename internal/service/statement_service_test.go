package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/testutil"
	"github.com/shopspring/decimal"
)

func newStatementFixture() (*StatementService, *testutil.MockStatementArchive, *testutil.MockPDFRenderer, *testutil.MockEventPublisher) {
	archive := testutil.NewMockStatementArchive()
	renderer := &testutil.MockPDFRenderer{}
	publisher := &testutil.MockEventPublisher{}
	svc := NewStatementService(NewLedgerService(newSourceWithClient()), archive, renderer, publisher, 10*time.Minute)
	return svc, archive, renderer, publisher
}

func TestExportCSV(t *testing.T) {
	svc, _, _, _ := newStatementFixture()

	data, err := svc.ExportCSV(context.Background(), aprilQuery("client-1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	body := string(data)
	if !strings.Contains(body, "Opening Balance") || !strings.Contains(body, "Closing Balance") {
		t.Errorf("Expected bracket rows in CSV, got:\n%s", body)
	}
	if !strings.Contains(body, "01/04/2024") || !strings.Contains(body, "30/04/2024") {
		t.Errorf("Expected display dates in CSV, got:\n%s", body)
	}
}

func TestExportCSV_UnknownClient(t *testing.T) {
	svc, _, _, _ := newStatementFixture()

	_, err := svc.ExportCSV(context.Background(), aprilQuery("missing"))
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("Expected ErrClientNotFound, got %v", err)
	}
}

func TestRenderPDF(t *testing.T) {
	svc, _, renderer, _ := newStatementFixture()

	pdf, err := svc.RenderPDF(context.Background(), aprilQuery("client-1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Errorf("Expected PDF body, got %q", pdf)
	}
	if !strings.Contains(renderer.LastHTML, "Opening Balance") {
		t.Error("Expected rendered HTML to contain the opening row")
	}
}

func TestRenderPDF_NoRenderer(t *testing.T) {
	svc := NewStatementService(NewLedgerService(newSourceWithClient()), nil, nil, nil, 0)

	_, err := svc.RenderPDF(context.Background(), aprilQuery("client-1"))
	if !errors.Is(err, domain.ErrExportUnavailable) {
		t.Errorf("Expected ErrExportUnavailable, got %v", err)
	}
}

func TestRenderPDF_RendererError(t *testing.T) {
	svc, _, renderer, _ := newStatementFixture()
	renderer.Err = errors.New("gotenberg down")

	_, err := svc.RenderPDF(context.Background(), aprilQuery("client-1"))
	if err == nil {
		t.Fatal("Expected error when renderer fails")
	}
}

func TestArchive(t *testing.T) {
	svc, archive, _, publisher := newStatementFixture()

	archived, err := svc.Archive(context.Background(), aprilQuery("client-1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !strings.HasPrefix(archived.ObjectKey, "statements/client-1/20240401_20240430/") {
		t.Errorf("Unexpected object key %s", archived.ObjectKey)
	}
	if !strings.HasSuffix(archived.ObjectKey, ".csv") {
		t.Errorf("Expected .csv object key, got %s", archived.ObjectKey)
	}
	if _, ok := archive.Objects[archived.ObjectKey]; !ok {
		t.Error("Expected statement to be uploaded")
	}
	if archive.ContentTypes[archived.ObjectKey] != "text/csv" {
		t.Errorf("Expected text/csv content type, got %s", archive.ContentTypes[archived.ObjectKey])
	}
	if !strings.Contains(archived.URL, "expires=600") {
		t.Errorf("Expected URL with configured TTL, got %s", archived.URL)
	}

	if len(publisher.Events) != 1 {
		t.Fatalf("Expected 1 published event, got %d", len(publisher.Events))
	}
	event, ok := publisher.Events[0].Event.(domain.StatementArchivedEvent)
	if !ok {
		t.Fatalf("Expected StatementArchivedEvent, got %T", publisher.Events[0].Event)
	}
	if publisher.Events[0].Key != "client-1" {
		t.Errorf("Expected event key client-1, got %s", publisher.Events[0].Key)
	}
	if event.DateFrom != "2024-04-01" || event.DateTo != "2024-04-30" {
		t.Errorf("Unexpected event window %s..%s", event.DateFrom, event.DateTo)
	}
	if !event.Closing.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected event closing 1500, got %s", event.Closing)
	}
	if event.EventID == "" {
		t.Error("Expected event id to be set")
	}
}

func TestArchive_NoArchive(t *testing.T) {
	svc := NewStatementService(NewLedgerService(newSourceWithClient()), nil, nil, nil, 0)

	_, err := svc.Archive(context.Background(), aprilQuery("client-1"))
	if !errors.Is(err, domain.ErrExportUnavailable) {
		t.Errorf("Expected ErrExportUnavailable, got %v", err)
	}
}

func TestArchive_UploadFailure(t *testing.T) {
	svc, archive, _, publisher := newStatementFixture()
	archive.UploadErr = errors.New("bucket unavailable")

	_, err := svc.Archive(context.Background(), aprilQuery("client-1"))
	if !errors.Is(err, domain.ErrStatementNotArchived) {
		t.Errorf("Expected ErrStatementNotArchived, got %v", err)
	}
	if len(publisher.Events) != 0 {
		t.Errorf("Expected no events on failed upload, got %d", len(publisher.Events))
	}
}

func TestArchive_PublishFailureIsNotFatal(t *testing.T) {
	svc, _, _, publisher := newStatementFixture()
	publisher.Err = errors.New("broker down")

	archived, err := svc.Archive(context.Background(), aprilQuery("client-1"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if archived.URL == "" {
		t.Error("Expected archived URL")
	}
}

func TestNewStatementService_DefaultTTL(t *testing.T) {
	svc := NewStatementService(NewLedgerService(newSourceWithClient()), nil, nil, nil, 0)
	if svc.urlTTL != DefaultStatementURLTTL {
		t.Errorf("Expected default TTL %v, got %v", DefaultStatementURLTTL, svc.urlTTL)
	}
}
