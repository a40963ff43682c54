package export

import (
	"strings"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/shopspring/decimal"
)

// RupeeSymbol prefixes formatted INR amounts
const RupeeSymbol = "₹"

// FormatINR renders an amount with two decimals and Indian digit grouping
// (12,34,567.89). Negative amounts carry a leading minus.
func FormatINR(amount decimal.Decimal) string {
	return RupeeSymbol + GroupIndian(amount)
}

// GroupIndian renders an amount with two decimals and Indian digit grouping,
// without a currency symbol
func GroupIndian(amount decimal.Decimal) string {
	intPart, frac, _ := strings.Cut(amount.Abs().StringFixed(2), ".")
	grouped := groupDigits(intPart) + "." + frac
	if amount.Round(2).IsNegative() {
		return "-" + grouped
	}
	return grouped
}

// groupDigits keeps the last three digits together and groups the rest in pairs
func groupDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}

// FormatAmountCell renders a debit or credit cell; zero amounts are left blank
func FormatAmountCell(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return GroupIndian(amount)
}

// FormatBalance renders a balance with its standing, e.g. "₹1,200.00 Dr"
// for an outstanding balance and "₹300.00 Cr" for an advance
func FormatBalance(balance decimal.Decimal) string {
	switch domain.DisplayStanding(balance) {
	case domain.StandingOutstanding:
		return FormatINR(balance.Abs()) + " Dr"
	case domain.StandingAdvance:
		return FormatINR(balance) + " Cr"
	default:
		return FormatINR(decimal.Zero)
	}
}

// Particulars is the display label for a ledger row
func Particulars(row domain.AnnotatedLedgerRow) string {
	switch row.Kind {
	case domain.RowKindOpening:
		return "Opening Balance"
	case domain.RowKindClosing:
		return "Closing Balance"
	}

	if inv := row.Invoice; inv != nil {
		label := "Invoice"
		if inv.InvoiceNumber != "" {
			label += " " + inv.InvoiceNumber
		}
		project := inv.Project
		if project == nil {
			project = row.Project
		}
		if project != nil && project.Name != "" {
			label += " · " + project.Name
		}
		return label
	}

	if pay := row.Payment; pay != nil {
		label := "Payment"
		if pay.PaymentNumber != "" {
			label += " " + pay.PaymentNumber
		}
		if pay.PaymentType != nil && pay.PaymentType.Name != "" {
			label += " (" + pay.PaymentType.Name + ")"
		}
		return label
	}

	if row.Description != "" {
		return row.Description
	}
	return "Transaction"
}
