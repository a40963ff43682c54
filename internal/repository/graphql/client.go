package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/ledger"
	"github.com/lumenedit/ledger-api/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	// DefaultPageSize is the number of transactions requested per page
	DefaultPageSize = 200
	// DefaultMaxPages bounds the number of pages fetched for one window
	DefaultMaxPages = 50
	// DefaultTimeout is the HTTP timeout for one upstream request
	DefaultTimeout = 15 * time.Second
)

const clientLedgerRangeQuery = `query ClientLedgerRange($clientId: ID!, $dateFrom: Date!, $dateTo: Date!, $pagination: PaginationInput) {
  clientLedgerRange(clientId: $clientId, dateFrom: $dateFrom, dateTo: $dateTo, pagination: $pagination) {
    openingBalance
    closingBalance
    transactions {
      id
      transactionDate
      debitAmount
      creditAmount
      description
      invoice {
        id
        invoiceNumber
        project { id name }
        projectGradings { id imageQuantity grading { name } }
      }
      payment {
        id
        paymentNumber
        paymentType { id name }
      }
      project { id name }
      createdBy { id firstName lastName }
    }
  }
}`

// Options configures the upstream client
type Options struct {
	Endpoint string
	Token    string
	Timeout  time.Duration
	PageSize int
	MaxPages int
}

// LedgerClient implements domain.LedgerSource against the GraphQL API
type LedgerClient struct {
	endpoint   string
	token      string
	pageSize   int
	maxPages   int
	httpClient *http.Client
}

// NewLedgerClient creates a new LedgerClient
func NewLedgerClient(opts Options) *LedgerClient {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &LedgerClient{
		endpoint: opts.Endpoint,
		token:    opts.Token,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type response struct {
	Data struct {
		ClientLedgerRange *ledgerRange `json:"clientLedgerRange"`
	} `json:"data"`
	Errors []gqlError `json:"errors"`
}

type ledgerRange struct {
	OpeningBalance any              `json:"openingBalance"`
	ClosingBalance any              `json:"closingBalance"`
	Transactions   []transactionDTO `json:"transactions"`
}

type transactionDTO struct {
	ID              string      `json:"id"`
	TransactionDate string      `json:"transactionDate"`
	DebitAmount     any         `json:"debitAmount"`
	CreditAmount    any         `json:"creditAmount"`
	Description     string      `json:"description"`
	Invoice         *invoiceDTO `json:"invoice"`
	Payment         *paymentDTO `json:"payment"`
	Project         *projectDTO `json:"project"`
	CreatedBy       *userDTO    `json:"createdBy"`
}

type projectDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type gradingDTO struct {
	ID            string `json:"id"`
	ImageQuantity int    `json:"imageQuantity"`
	Grading       *struct {
		Name string `json:"name"`
	} `json:"grading"`
}

type invoiceDTO struct {
	ID              string       `json:"id"`
	InvoiceNumber   string       `json:"invoiceNumber"`
	Project         *projectDTO  `json:"project"`
	ProjectGradings []gradingDTO `json:"projectGradings"`
}

type paymentDTO struct {
	ID            string `json:"id"`
	PaymentNumber string `json:"paymentNumber"`
	PaymentType   *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"paymentType"`
}

type userDTO struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// FetchWindow loads every page of a client's ledger range
func (c *LedgerClient) FetchWindow(ctx context.Context, clientID string, dateFrom, dateTo time.Time) (*domain.LedgerWindow, error) {
	window := &domain.LedgerWindow{
		ClientID: clientID,
		DateFrom: dateFrom,
		DateTo:   dateTo,
	}

	for page := 0; page < c.maxPages; page++ {
		lr, err := c.fetchPage(ctx, clientID, dateFrom, dateTo, page*c.pageSize)
		if err != nil {
			return nil, err
		}

		if page == 0 {
			window.OpeningBalance = parseBalance(lr.OpeningBalance)
			window.ClosingBalance = parseBalance(lr.ClosingBalance)
		}
		for _, dto := range lr.Transactions {
			window.Transactions = append(window.Transactions, toDomainTransaction(dto))
		}

		if len(lr.Transactions) < c.pageSize {
			return window, nil
		}
	}

	log.Warn().
		Str("client_id", clientID).
		Int("max_pages", c.maxPages).
		Msg("Ledger range truncated at page limit")
	return window, nil
}

func (c *LedgerClient) fetchPage(ctx context.Context, clientID string, dateFrom, dateTo time.Time, offset int) (*ledgerRange, error) {
	body, err := json.Marshal(request{
		Query: clientLedgerRangeQuery,
		Variables: map[string]any{
			"clientId": clientID,
			"dateFrom": dateFrom.Format(util.DateLayout),
			"dateTo":   dateTo.Format(util.DateLayout),
			"pagination": map[string]int{
				"limit":  c.pageSize,
				"offset": offset,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 400 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: upstream returned status %d: %s", domain.ErrLedgerUnavailable, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	decoder := json.NewDecoder(resp.Body)
	decoder.UseNumber()
	var out response
	if err := decoder.Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: invalid response body: %v", domain.ErrLedgerUnavailable, err)
	}

	if len(out.Errors) > 0 {
		return nil, classifyErrors(out.Errors)
	}
	if out.Data.ClientLedgerRange == nil {
		return nil, fmt.Errorf("%w: client %s", domain.ErrClientNotFound, clientID)
	}
	return out.Data.ClientLedgerRange, nil
}

func classifyErrors(errs []gqlError) error {
	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		messages = append(messages, e.Message)
	}
	joined := strings.Join(messages, "; ")
	if strings.Contains(strings.ToLower(joined), "not found") {
		return fmt.Errorf("%w: %s", domain.ErrClientNotFound, joined)
	}
	return fmt.Errorf("%w: %s", domain.ErrLedgerUnavailable, joined)
}

// parseBalance returns nil for absent or malformed balances
func parseBalance(v any) *decimal.Decimal {
	if v == nil {
		return nil
	}
	d, ok := ledger.CoerceAmount(v)
	if !ok {
		log.Warn().Interface("raw", v).Msg("Ignoring malformed upstream balance")
		return nil
	}
	return &d
}

func toDomainTransaction(dto transactionDTO) domain.LedgerTransaction {
	tx := domain.LedgerTransaction{
		ID:           dto.ID,
		DebitAmount:  dto.DebitAmount,
		CreditAmount: dto.CreditAmount,
		Description:  dto.Description,
	}

	if dto.TransactionDate != "" {
		t, err := util.ParseTimestamp(dto.TransactionDate)
		if err != nil {
			log.Warn().Str("transaction_id", dto.ID).Str("raw", dto.TransactionDate).Msg("Unparseable transaction date, ordering it first")
		}
		tx.TransactionDate = t
	}

	if dto.Invoice != nil {
		inv := &domain.Invoice{
			ID:            dto.Invoice.ID,
			InvoiceNumber: dto.Invoice.InvoiceNumber,
			Project:       toDomainProject(dto.Invoice.Project),
		}
		for _, g := range dto.Invoice.ProjectGradings {
			grading := domain.ProjectGrading{ID: g.ID, ImageQuantity: g.ImageQuantity}
			if g.Grading != nil {
				grading.GradingName = g.Grading.Name
			}
			inv.ProjectGradings = append(inv.ProjectGradings, grading)
		}
		tx.Invoice = inv
	}

	if dto.Payment != nil {
		pay := &domain.Payment{
			ID:            dto.Payment.ID,
			PaymentNumber: dto.Payment.PaymentNumber,
		}
		if dto.Payment.PaymentType != nil {
			pay.PaymentType = &domain.PaymentType{ID: dto.Payment.PaymentType.ID, Name: dto.Payment.PaymentType.Name}
		}
		tx.Payment = pay
	}

	tx.Project = toDomainProject(dto.Project)

	if dto.CreatedBy != nil {
		tx.CreatedBy = &domain.UserRef{ID: dto.CreatedBy.ID, FirstName: dto.CreatedBy.FirstName, LastName: dto.CreatedBy.LastName}
	}
	return tx
}

func toDomainProject(p *projectDTO) *domain.Project {
	if p == nil {
		return nil
	}
	return &domain.Project{ID: p.ID, Name: p.Name}
}
