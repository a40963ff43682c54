package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/util"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation  = "https://lumenedit.app/errors/validation"
	ErrorTypeNotFound    = "https://lumenedit.app/errors/not-found"
	ErrorTypeBadGateway  = "https://lumenedit.app/errors/upstream"
	ErrorTypeUnavailable = "https://lumenedit.app/errors/unavailable"
	ErrorTypeInternal    = "https://lumenedit.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewBadGatewayError creates an upstream failure response
func NewBadGatewayError(c echo.Context, detail string) error {
	return c.JSON(http.StatusBadGateway, ProblemDetails{
		Type:     ErrorTypeBadGateway,
		Title:    "Bad Gateway",
		Status:   http.StatusBadGateway,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewServiceUnavailableError creates a service unavailable response
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// ledgerError maps a ledger or statement failure to a problem response
func ledgerError(c echo.Context, err error, q domain.LedgerQuery, action string) error {
	switch {
	case errors.Is(err, domain.ErrClientIDRequired),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidExportFormat):
		return NewValidationError(c, err.Error(), nil)
	case errors.Is(err, domain.ErrClientNotFound):
		return NewNotFoundError(c, "Client not found")
	case errors.Is(err, domain.ErrExportUnavailable):
		return NewServiceUnavailableError(c, "Export is not available")
	}

	event := log.Error().Err(err).
		Str("client_id", q.ClientID).
		Str("date_from", q.DateFrom.Format(util.DateLayout)).
		Str("date_to", q.DateTo.Format(util.DateLayout))

	switch {
	case errors.Is(err, domain.ErrLedgerUnavailable), errors.Is(err, context.DeadlineExceeded):
		event.Msg("Failed to load ledger")
		return NewBadGatewayError(c, "Unable to load ledger")
	case errors.Is(err, domain.ErrStatementNotArchived):
		event.Msg("Failed to archive statement")
		return NewBadGatewayError(c, "Statement could not be archived")
	}

	event.Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}
