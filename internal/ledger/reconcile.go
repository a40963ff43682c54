// Package ledger computes running balances for a client ledger window.
//
// Balances are credit-positive: each transaction moves the balance by
// credit - debit, starting from the window's opening balance. The closing
// balance is always derived from the walk and never taken from the source,
// whose closing figure excludes the client's opening balance.
package ledger

import (
	"sort"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/shopspring/decimal"
)

// Field names used in substitution records
const (
	FieldDebit  = "debitAmount"
	FieldCredit = "creditAmount"
)

// Reconcile orders the window's transactions by date and annotates each with
// the balance after it is applied. The input window is not modified.
func Reconcile(window domain.LedgerWindow) *domain.ReconciledLedger {
	opening := decimal.Zero
	if window.OpeningBalance != nil {
		opening = *window.OpeningBalance
	}

	txs := make([]domain.LedgerTransaction, len(window.Transactions))
	copy(txs, window.Transactions)
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].TransactionDate.Before(txs[j].TransactionDate)
	})

	rows := make([]domain.AnnotatedLedgerRow, 0, len(txs)+2)
	rows = append(rows, domain.AnnotatedLedgerRow{
		Kind:           domain.RowKindOpening,
		Date:           window.DateFrom,
		Debit:          decimal.Zero,
		Credit:         decimal.Zero,
		RunningBalance: opening,
	})

	var substitutions []domain.AmountSubstitution
	running := opening
	for _, tx := range txs {
		debit, ok := CoerceAmount(tx.DebitAmount)
		if !ok {
			substitutions = append(substitutions, domain.AmountSubstitution{TransactionID: tx.ID, Field: FieldDebit, Raw: rawString(tx.DebitAmount)})
		}
		credit, ok := CoerceAmount(tx.CreditAmount)
		if !ok {
			substitutions = append(substitutions, domain.AmountSubstitution{TransactionID: tx.ID, Field: FieldCredit, Raw: rawString(tx.CreditAmount)})
		}

		running = running.Add(credit).Sub(debit)
		rows = append(rows, domain.AnnotatedLedgerRow{
			LedgerTransaction: tx,
			Kind:              domain.RowKindTransaction,
			Date:              tx.TransactionDate,
			Debit:             debit,
			Credit:            credit,
			RunningBalance:    running,
		})
	}

	// With no transactions the walk never moves, so running == opening.
	closing := running

	rows = append(rows, domain.AnnotatedLedgerRow{
		Kind:           domain.RowKindClosing,
		Date:           window.DateTo,
		Debit:          decimal.Zero,
		Credit:         decimal.Zero,
		RunningBalance: closing,
	})

	return &domain.ReconciledLedger{
		Opening:          opening,
		Closing:          closing,
		Rows:             rows,
		TransactionCount: len(txs),
		Substitutions:    substitutions,
	}
}

// ComputeAggregates sums debits and credits over the real transactions
func ComputeAggregates(reconciled *domain.ReconciledLedger) domain.LedgerAggregates {
	agg := domain.LedgerAggregates{
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	if reconciled == nil {
		agg.NetMovement = decimal.Zero
		return agg
	}
	for _, row := range reconciled.Rows {
		if row.IsSynthetic() {
			continue
		}
		agg.TotalDebit = agg.TotalDebit.Add(row.Debit)
		agg.TotalCredit = agg.TotalCredit.Add(row.Credit)
	}
	agg.NetMovement = reconciled.Closing.Sub(reconciled.Opening)
	return agg
}
