package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
)

// MockLedgerSource is a mock implementation of domain.LedgerSource
type MockLedgerSource struct {
	mu      sync.Mutex
	Windows map[string]*domain.LedgerWindow
	Calls   int
	FetchFn func(ctx context.Context, clientID string, dateFrom, dateTo time.Time) (*domain.LedgerWindow, error)
}

// NewMockLedgerSource creates a new MockLedgerSource
func NewMockLedgerSource() *MockLedgerSource {
	return &MockLedgerSource{
		Windows: make(map[string]*domain.LedgerWindow),
	}
}

// AddWindow registers the window returned for its client
func (m *MockLedgerSource) AddWindow(window *domain.LedgerWindow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Windows[window.ClientID] = window
}

// FetchWindow returns the registered window, restamped with the requested dates
func (m *MockLedgerSource) FetchWindow(ctx context.Context, clientID string, dateFrom, dateTo time.Time) (*domain.LedgerWindow, error) {
	m.mu.Lock()
	m.Calls++
	fn := m.FetchFn
	window, ok := m.Windows[clientID]
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, clientID, dateFrom, dateTo)
	}
	if !ok {
		return nil, fmt.Errorf("%w: client %s", domain.ErrClientNotFound, clientID)
	}
	out := *window
	out.DateFrom = dateFrom
	out.DateTo = dateTo
	return &out, nil
}

// CallCount returns the number of FetchWindow calls
func (m *MockLedgerSource) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// MockStatementArchive is a mock implementation of domain.StatementArchive
type MockStatementArchive struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	UploadErr    error
}

// NewMockStatementArchive creates a new MockStatementArchive
func NewMockStatementArchive() *MockStatementArchive {
	return &MockStatementArchive{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Upload stores the object in memory
func (m *MockStatementArchive) Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[objectKey] = append([]byte(nil), data...)
	m.ContentTypes[objectKey] = contentType
	return objectKey, nil
}

// GeneratePresignedURL returns a fake URL for the object
func (m *MockStatementArchive) GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://archive.test/%s?expires=%d", objectKey, int(expiry.Seconds())), nil
}

// MockPDFRenderer is a mock implementation of domain.PDFRenderer
type MockPDFRenderer struct {
	LastHTML string
	Err      error
}

// RenderHTML records the HTML and returns a fixed PDF body
func (m *MockPDFRenderer) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	m.LastHTML = html
	if m.Err != nil {
		return nil, m.Err
	}
	return []byte("%PDF-1.7 mock"), nil
}

// PublishedEvent is one event captured by MockEventPublisher
type PublishedEvent struct {
	Key   string
	Event any
}

// MockEventPublisher is a mock implementation of domain.EventPublisher
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
	Err    error
}

// Publish records the event
func (m *MockEventPublisher) Publish(ctx context.Context, key string, event any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Key: key, Event: event})
	return m.Err
}
