package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestStandingOf(t *testing.T) {
	tests := []struct {
		balance  string
		standing BalanceStanding
		tone     Tone
	}{
		{"-0.01", StandingOutstanding, ToneWarning},
		{"-12500", StandingOutstanding, ToneWarning},
		{"0", StandingSettled, ToneNeutral},
		{"0.00", StandingSettled, ToneNeutral},
		{"300", StandingAdvance, ToneSuccess},
	}

	for _, tt := range tests {
		got := StandingOf(decimal.RequireFromString(tt.balance))
		if got != tt.standing {
			t.Errorf("StandingOf(%s) = %s, want %s", tt.balance, got, tt.standing)
		}
		if got.Tone() != tt.tone {
			t.Errorf("StandingOf(%s).Tone() = %s, want %s", tt.balance, got.Tone(), tt.tone)
		}
	}
}

func TestDisplayStanding(t *testing.T) {
	tests := []struct {
		balance  string
		standing BalanceStanding
	}{
		{"-0.004", StandingSettled},
		{"0.004", StandingSettled},
		{"-0.005", StandingOutstanding},
		{"0.005", StandingAdvance},
		{"-12500", StandingOutstanding},
	}

	for _, tt := range tests {
		if got := DisplayStanding(decimal.RequireFromString(tt.balance)); got != tt.standing {
			t.Errorf("DisplayStanding(%s) = %s, want %s", tt.balance, got, tt.standing)
		}
	}
}
