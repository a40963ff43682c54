package domain

import "github.com/shopspring/decimal"

// BalanceStanding is the single display convention for a signed ledger balance.
// Balances are credit-positive (opening + credits - debits), so a negative
// balance means the client owes money.
type BalanceStanding string

const (
	StandingOutstanding BalanceStanding = "outstanding"
	StandingAdvance     BalanceStanding = "advance"
	StandingSettled     BalanceStanding = "settled"
)

// Tone is the presentation hint attached to a standing
type Tone string

const (
	ToneWarning Tone = "warning"
	ToneSuccess Tone = "success"
	ToneNeutral Tone = "neutral"
)

// StandingOf classifies a balance
func StandingOf(balance decimal.Decimal) BalanceStanding {
	switch balance.Sign() {
	case -1:
		return StandingOutstanding
	case 1:
		return StandingAdvance
	default:
		return StandingSettled
	}
}

// DisplayStanding classifies a balance as it is displayed, rounded to paise
func DisplayStanding(balance decimal.Decimal) BalanceStanding {
	return StandingOf(balance.Round(2))
}

// Tone returns the presentation tone for the standing
func (s BalanceStanding) Tone() Tone {
	switch s {
	case StandingOutstanding:
		return ToneWarning
	case StandingAdvance:
		return ToneSuccess
	default:
		return ToneNeutral
	}
}
