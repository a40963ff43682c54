package domain

import "errors"

// Domain errors
var (
	ErrClientIDRequired     = errors.New("client id is required")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrInvalidExportFormat  = errors.New("invalid export format")
	ErrClientNotFound       = errors.New("client not found")
	ErrLedgerUnavailable    = errors.New("unable to load ledger")
	ErrExportUnavailable    = errors.New("export backend not configured")
	ErrStatementNotArchived = errors.New("statement could not be archived")
)

// Validation constants
const (
	MaxClientIDLength = 64
	MaxWindowDays     = 366 * 5
)
