package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// RowKind distinguishes real transactions from the synthetic bracket rows
type RowKind string

const (
	RowKindOpening     RowKind = "opening"
	RowKindTransaction RowKind = "transaction"
	RowKindClosing     RowKind = "closing"
)

// Project is the project an invoice or transaction is attributed to
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// ProjectGrading is one grading line billed on an invoice
type ProjectGrading struct {
	ID            string `json:"id"`
	GradingName   string `json:"gradingName,omitempty"`
	ImageQuantity int    `json:"imageQuantity,omitempty"`
}

// Invoice is the invoice linked to a debit transaction
type Invoice struct {
	ID              string           `json:"id"`
	InvoiceNumber   string           `json:"invoiceNumber,omitempty"`
	Project         *Project         `json:"project,omitempty"`
	ProjectGradings []ProjectGrading `json:"projectGradings,omitempty"`
}

// PaymentType describes how a payment was made (bank transfer, UPI, ...)
type PaymentType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Payment is the payment linked to a credit transaction
type Payment struct {
	ID            string       `json:"id"`
	PaymentNumber string       `json:"paymentNumber,omitempty"`
	PaymentType   *PaymentType `json:"paymentType,omitempty"`
}

// UserRef identifies the user who created a transaction
type UserRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// LedgerTransaction is a single ledger entry as delivered by the upstream system.
// DebitAmount and CreditAmount hold whatever the source sent (nil, string,
// json.Number, float64, decimal.Decimal); the engine coerces them.
type LedgerTransaction struct {
	ID              string    `json:"id"`
	TransactionDate time.Time `json:"transactionDate"`
	DebitAmount     any       `json:"debitAmount"`
	CreditAmount    any       `json:"creditAmount"`
	Description     string    `json:"description,omitempty"`
	Invoice         *Invoice  `json:"invoice,omitempty"`
	Payment         *Payment  `json:"payment,omitempty"`
	Project         *Project  `json:"project,omitempty"`
	CreatedBy       *UserRef  `json:"createdBy,omitempty"`
}

// LedgerWindow is the upstream ledger range for one client.
// ClosingBalance is informational only; the engine derives its own closing.
type LedgerWindow struct {
	ClientID       string
	DateFrom       time.Time
	DateTo         time.Time
	OpeningBalance *decimal.Decimal
	ClosingBalance *decimal.Decimal
	Transactions   []LedgerTransaction
}

// AnnotatedLedgerRow is a ledger row with coerced amounts and the balance after it
type AnnotatedLedgerRow struct {
	LedgerTransaction
	Kind           RowKind         `json:"kind"`
	Date           time.Time       `json:"date"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// IsSynthetic reports whether the row is an opening or closing bracket row
func (r AnnotatedLedgerRow) IsSynthetic() bool {
	return r.Kind != RowKindTransaction
}

// AmountSubstitution records a malformed amount that was replaced with zero
type AmountSubstitution struct {
	TransactionID string `json:"transactionId"`
	Field         string `json:"field"`
	Raw           string `json:"raw"`
}

// ReconciledLedger is the output of the reconciliation engine
type ReconciledLedger struct {
	Opening          decimal.Decimal      `json:"opening"`
	Closing          decimal.Decimal      `json:"closing"`
	Rows             []AnnotatedLedgerRow `json:"rows"`
	TransactionCount int                  `json:"transactionCount"`
	Substitutions    []AmountSubstitution `json:"-"`
}

// Transactions returns the real transaction rows, without the bracket rows
func (l *ReconciledLedger) Transactions() []AnnotatedLedgerRow {
	if len(l.Rows) < 2 {
		return nil
	}
	return l.Rows[1 : len(l.Rows)-1]
}

// LedgerAggregates are the summary figures shown next to a ledger
type LedgerAggregates struct {
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	NetMovement decimal.Decimal `json:"netMovement"`
}

// LedgerQuery selects a client ledger window. Both dates are inclusive.
type LedgerQuery struct {
	ClientID string
	DateFrom time.Time
	DateTo   time.Time
}

// LedgerStatement bundles a reconciled ledger with its aggregates for one query
type LedgerStatement struct {
	Query              LedgerQuery
	Ledger             *ReconciledLedger
	Aggregates         LedgerAggregates
	ReportedClosing    *decimal.Decimal
	ClosingDiscrepancy bool
	GeneratedAt        time.Time
}

// ArchivedStatement describes a statement stored in object storage
type ArchivedStatement struct {
	ClientID   string    `json:"clientId"`
	DateFrom   time.Time `json:"dateFrom"`
	DateTo     time.Time `json:"dateTo"`
	ObjectKey  string    `json:"objectKey"`
	URL        string    `json:"url"`
	ArchivedAt time.Time `json:"archivedAt"`
}

// StatementArchivedEvent is published after a statement has been archived
type StatementArchivedEvent struct {
	EventID    string          `json:"eventId"`
	ClientID   string          `json:"clientId"`
	DateFrom   string          `json:"dateFrom"`
	DateTo     string          `json:"dateTo"`
	ObjectKey  string          `json:"objectKey"`
	Opening    decimal.Decimal `json:"opening"`
	Closing    decimal.Decimal `json:"closing"`
	OccurredAt time.Time       `json:"occurredAt"`
}

// LedgerSource loads a client's ledger window from the system of record
type LedgerSource interface {
	FetchWindow(ctx context.Context, clientID string, dateFrom, dateTo time.Time) (*LedgerWindow, error)
}

// StatementArchive stores exported statements
type StatementArchive interface {
	Upload(ctx context.Context, objectKey string, data []byte, contentType string) (string, error)
	GeneratePresignedURL(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
}

// PDFRenderer converts an HTML document into a PDF
type PDFRenderer interface {
	RenderHTML(ctx context.Context, html string) ([]byte, error)
}

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, key string, event any) error
}
