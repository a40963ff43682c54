package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/export"
	"github.com/lumenedit/ledger-api/internal/service"
	"github.com/lumenedit/ledger-api/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles client ledger HTTP requests
type LedgerHandler struct {
	ledgerService    *service.LedgerService
	statementService *service.StatementService
	now              func() time.Time
}

// NewLedgerHandler creates a new LedgerHandler
func NewLedgerHandler(ledgerService *service.LedgerService, statementService *service.StatementService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService:    ledgerService,
		statementService: statementService,
		now:              time.Now,
	}
}

// LedgerRequest is the bound path and query input of every ledger endpoint
type LedgerRequest struct {
	ClientID string `param:"clientId" validate:"required,max=64,clientid"`
	DateFrom string `query:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"dateTo" validate:"omitempty,datetime=2006-01-02"`
}

// AggregatesResponse represents ledger aggregates in API responses
type AggregatesResponse struct {
	TotalDebit  string `json:"totalDebit"`
	TotalCredit string `json:"totalCredit"`
	NetMovement string `json:"netMovement"`
}

// LedgerSummaryResponse is the headline view of a ledger window
type LedgerSummaryResponse struct {
	ClientID         string             `json:"clientId"`
	DateFrom         string             `json:"dateFrom"`
	DateTo           string             `json:"dateTo"`
	OpeningBalance   string             `json:"openingBalance"`
	ClosingBalance   string             `json:"closingBalance"`
	DisplayClosing   string             `json:"displayClosingBalance"`
	Standing         string             `json:"standing"`
	Tone             string             `json:"tone"`
	TransactionCount int                `json:"transactionCount"`
	Aggregates       AggregatesResponse `json:"aggregates"`
}

// LedgerRowResponse represents one ledger row in API responses
type LedgerRowResponse struct {
	ID             string          `json:"id,omitempty"`
	Kind           string          `json:"kind"`
	Date           string          `json:"date"`
	DisplayDate    string          `json:"displayDate"`
	Particulars    string          `json:"particulars"`
	Description    string          `json:"description,omitempty"`
	Debit          string          `json:"debit"`
	Credit         string          `json:"credit"`
	RunningBalance string          `json:"runningBalance"`
	DisplayBalance string          `json:"displayBalance"`
	Standing       string          `json:"standing"`
	Tone           string          `json:"tone"`
	Invoice        *domain.Invoice `json:"invoice,omitempty"`
	Payment        *domain.Payment `json:"payment,omitempty"`
	Project        *domain.Project `json:"project,omitempty"`
	CreatedBy      *domain.UserRef `json:"createdBy,omitempty"`
}

// LedgerResponse is the full reconciled ledger
type LedgerResponse struct {
	LedgerSummaryResponse
	ReportedClosingBalance *string             `json:"reportedClosingBalance,omitempty"`
	ClosingDiscrepancy     bool                `json:"closingDiscrepancy"`
	GeneratedAt            string              `json:"generatedAt"`
	Rows                   []LedgerRowResponse `json:"rows"`
}

// ArchiveResponse describes an archived statement
type ArchiveResponse struct {
	ClientID   string `json:"clientId"`
	DateFrom   string `json:"dateFrom"`
	DateTo     string `json:"dateTo"`
	ObjectKey  string `json:"objectKey"`
	URL        string `json:"url"`
	ArchivedAt string `json:"archivedAt"`
}

// GetLedger handles GET /api/v1/clients/:clientId/ledger
func (h *LedgerHandler) GetLedger(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	stmt, err := h.ledgerService.GetLedger(c.Request().Context(), q)
	if err != nil {
		return ledgerError(c, err, q, "get ledger")
	}

	return c.JSON(http.StatusOK, toLedgerResponse(stmt))
}

// GetSummary handles GET /api/v1/clients/:clientId/ledger/summary
func (h *LedgerHandler) GetSummary(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	stmt, err := h.ledgerService.GetLedger(c.Request().Context(), q)
	if err != nil {
		return ledgerError(c, err, q, "get ledger summary")
	}

	return c.JSON(http.StatusOK, toSummaryResponse(stmt))
}

// ExportCSV handles GET /api/v1/clients/:clientId/ledger/export.csv
func (h *LedgerHandler) ExportCSV(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	data, err := h.statementService.ExportCSV(c.Request().Context(), q)
	if err != nil {
		return ledgerError(c, err, q, "export ledger")
	}

	setAttachment(c, statementFilename(q, "csv"))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}

// ExportPDF handles GET /api/v1/clients/:clientId/ledger/export.pdf
func (h *LedgerHandler) ExportPDF(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	data, err := h.statementService.RenderPDF(c.Request().Context(), q)
	if err != nil {
		return ledgerError(c, err, q, "render ledger pdf")
	}

	setAttachment(c, statementFilename(q, "pdf"))
	return c.Blob(http.StatusOK, "application/pdf", data)
}

// Archive handles POST /api/v1/clients/:clientId/ledger/archive
func (h *LedgerHandler) Archive(c echo.Context) error {
	q, err := h.bindQuery(c)
	if err != nil {
		return badRequest(c, err)
	}

	archived, err := h.statementService.Archive(c.Request().Context(), q)
	if err != nil {
		return ledgerError(c, err, q, "archive statement")
	}

	log.Info().Str("client_id", q.ClientID).Str("object_key", archived.ObjectKey).Msg("Statement archived")

	return c.JSON(http.StatusCreated, ArchiveResponse{
		ClientID:   archived.ClientID,
		DateFrom:   archived.DateFrom.Format(util.DateLayout),
		DateTo:     archived.DateTo.Format(util.DateLayout),
		ObjectKey:  archived.ObjectKey,
		URL:        archived.URL,
		ArchivedAt: archived.ArchivedAt.UTC().Format(time.RFC3339),
	})
}

// requestError is a rejected ledger request
type requestError struct {
	detail string
	fields []ValidationError
}

func (e *requestError) Error() string { return e.detail }

// bindQuery binds path and query parameters (for every method) and resolves
// the ledger window
func (h *LedgerHandler) bindQuery(c echo.Context) (domain.LedgerQuery, error) {
	var req LedgerRequest
	binder := &echo.DefaultBinder{}
	if err := binder.BindPathParams(c, &req); err != nil {
		return domain.LedgerQuery{}, &requestError{detail: "Invalid path parameters"}
	}
	if err := binder.BindQueryParams(c, &req); err != nil {
		return domain.LedgerQuery{}, &requestError{detail: "Invalid query parameters"}
	}

	if err := c.Validate(&req); err != nil {
		return domain.LedgerQuery{}, &requestError{detail: "Invalid ledger request", fields: validationErrors(err)}
	}

	from, to, err := util.ResolveWindow(req.DateFrom, req.DateTo, h.now())
	if err != nil {
		return domain.LedgerQuery{}, &requestError{detail: err.Error()}
	}

	return domain.LedgerQuery{ClientID: req.ClientID, DateFrom: from, DateTo: to}, nil
}

func badRequest(c echo.Context, err error) error {
	if reqErr, ok := err.(*requestError); ok {
		return NewValidationError(c, reqErr.detail, reqErr.fields)
	}
	return NewValidationError(c, err.Error(), nil)
}

func setAttachment(c echo.Context, filename string) {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
}

func statementFilename(q domain.LedgerQuery, ext string) string {
	return fmt.Sprintf("ledger_%s_%s_%s.%s", q.ClientID, q.DateFrom.Format(util.DateLayout), q.DateTo.Format(util.DateLayout), ext)
}

func toSummaryResponse(stmt *domain.LedgerStatement) LedgerSummaryResponse {
	standing := domain.DisplayStanding(stmt.Ledger.Closing)
	return LedgerSummaryResponse{
		ClientID:         stmt.Query.ClientID,
		DateFrom:         stmt.Query.DateFrom.Format(util.DateLayout),
		DateTo:           stmt.Query.DateTo.Format(util.DateLayout),
		OpeningBalance:   stmt.Ledger.Opening.StringFixed(2),
		ClosingBalance:   stmt.Ledger.Closing.StringFixed(2),
		DisplayClosing:   export.FormatBalance(stmt.Ledger.Closing),
		Standing:         string(standing),
		Tone:             string(standing.Tone()),
		TransactionCount: stmt.Ledger.TransactionCount,
		Aggregates: AggregatesResponse{
			TotalDebit:  stmt.Aggregates.TotalDebit.StringFixed(2),
			TotalCredit: stmt.Aggregates.TotalCredit.StringFixed(2),
			NetMovement: stmt.Aggregates.NetMovement.StringFixed(2),
		},
	}
}

func toLedgerResponse(stmt *domain.LedgerStatement) LedgerResponse {
	rows := make([]LedgerRowResponse, len(stmt.Ledger.Rows))
	for i, row := range stmt.Ledger.Rows {
		rows[i] = toLedgerRowResponse(row)
	}

	resp := LedgerResponse{
		LedgerSummaryResponse: toSummaryResponse(stmt),
		ClosingDiscrepancy:    stmt.ClosingDiscrepancy,
		GeneratedAt:           stmt.GeneratedAt.UTC().Format(time.RFC3339),
		Rows:                  rows,
	}
	if stmt.ReportedClosing != nil {
		reported := stmt.ReportedClosing.StringFixed(2)
		resp.ReportedClosingBalance = &reported
	}
	return resp
}

func toLedgerRowResponse(row domain.AnnotatedLedgerRow) LedgerRowResponse {
	standing := domain.DisplayStanding(row.RunningBalance)
	return LedgerRowResponse{
		ID:             row.ID,
		Kind:           string(row.Kind),
		Date:           formatDate(row.Date),
		DisplayDate:    util.FormatDisplayDate(row.Date),
		Particulars:    export.Particulars(row),
		Description:    row.Description,
		Debit:          amountOrEmpty(row.Debit, row.IsSynthetic()),
		Credit:         amountOrEmpty(row.Credit, row.IsSynthetic()),
		RunningBalance: row.RunningBalance.StringFixed(2),
		DisplayBalance: export.FormatBalance(row.RunningBalance),
		Standing:       string(standing),
		Tone:           string(standing.Tone()),
		Invoice:        row.Invoice,
		Payment:        row.Payment,
		Project:        row.Project,
		CreatedBy:      row.CreatedBy,
	}
}

// Bracket rows carry no movement, so their amount cells stay blank
func amountOrEmpty(amount decimal.Decimal, synthetic bool) string {
	if synthetic {
		return ""
	}
	return amount.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(util.DateLayout)
}
