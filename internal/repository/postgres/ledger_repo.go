package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/shopspring/decimal"
)

const openingBalanceQuery = `
SELECT c.opening_balance,
       COALESCE((
           SELECT SUM(COALESCE(t.credit_amount, 0) - COALESCE(t.debit_amount, 0))
           FROM ledger_transactions t
           WHERE t.client_id = c.id AND t.transaction_date < $2
       ), 0) AS carried
FROM clients c
WHERE c.id = $1`

const transactionsQuery = `
SELECT t.id,
       t.transaction_date,
       t.debit_amount,
       t.credit_amount,
       COALESCE(t.description, ''),
       t.invoice_id,
       t.invoice_number,
       t.payment_id,
       t.payment_number,
       t.payment_type,
       t.project_id,
       t.project_name
FROM ledger_transactions t
WHERE t.client_id = $1
  AND t.transaction_date >= $2
  AND t.transaction_date < $3
ORDER BY t.transaction_date, t.id`

// Querier is the subset of *pgxpool.Pool the repository reads through
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ Querier = (*pgxpool.Pool)(nil)

// LedgerRepository implements domain.LedgerSource over a replicated ledger table
type LedgerRepository struct {
	pool Querier
}

// NewLedgerRepository creates a new LedgerRepository
func NewLedgerRepository(pool Querier) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// FetchWindow loads the opening balance and the transactions of [dateFrom, dateTo].
// The opening balance is the client's opening balance carried forward over every
// transaction dated before dateFrom.
func (r *LedgerRepository) FetchWindow(ctx context.Context, clientID string, dateFrom, dateTo time.Time) (*domain.LedgerWindow, error) {
	var base, carried pgtype.Numeric
	err := r.pool.QueryRow(ctx, openingBalanceQuery, clientID, dateFrom).Scan(&base, &carried)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: client %s", domain.ErrClientNotFound, clientID)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	opening := pgNumericToDecimal(base).Add(pgNumericToDecimal(carried))

	// exclusive upper bound so that timestamps on dateTo are included
	rows, err := r.pool.Query(ctx, transactionsQuery, clientID, dateFrom, dateTo.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer rows.Close()

	var txs []domain.LedgerTransaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}

	return &domain.LedgerWindow{
		ClientID:       clientID,
		DateFrom:       dateFrom,
		DateTo:         dateTo,
		OpeningBalance: &opening,
		Transactions:   txs,
	}, nil
}

func scanTransaction(rows pgx.Rows) (domain.LedgerTransaction, error) {
	var (
		id            string
		date          pgtype.Timestamptz
		debit, credit pgtype.Numeric
		description   string
		invoiceID     pgtype.Text
		invoiceNumber pgtype.Text
		paymentID     pgtype.Text
		paymentNumber pgtype.Text
		paymentType   pgtype.Text
		projectID     pgtype.Text
		projectName   pgtype.Text
	)
	if err := rows.Scan(&id, &date, &debit, &credit, &description,
		&invoiceID, &invoiceNumber, &paymentID, &paymentNumber, &paymentType,
		&projectID, &projectName); err != nil {
		return domain.LedgerTransaction{}, err
	}

	tx := domain.LedgerTransaction{
		ID:           id,
		DebitAmount:  nullableDecimal(debit),
		CreditAmount: nullableDecimal(credit),
		Description:  description,
	}
	if date.Valid {
		tx.TransactionDate = date.Time.UTC()
	}

	var project *domain.Project
	if projectID.Valid {
		project = &domain.Project{ID: projectID.String, Name: projectName.String}
		tx.Project = project
	}
	if invoiceID.Valid {
		tx.Invoice = &domain.Invoice{ID: invoiceID.String, InvoiceNumber: invoiceNumber.String, Project: project}
	}
	if paymentID.Valid {
		tx.Payment = &domain.Payment{ID: paymentID.String, PaymentNumber: paymentNumber.String}
		if paymentType.Valid {
			tx.Payment.PaymentType = &domain.PaymentType{Name: paymentType.String}
		}
	}
	return tx, nil
}

// nullableDecimal keeps SQL NULL as nil so the engine treats it as absent
func nullableDecimal(n pgtype.Numeric) any {
	if !n.Valid {
		return nil
	}
	return pgNumericToDecimal(n)
}

func pgNumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}
