package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/lumenedit/ledger-api/internal/domain"
)

const (
	// DateLayout is the wire format for ledger window dates
	DateLayout = "2006-01-02"
	// DisplayDateLayout is the format used on statements (DD/MM/YYYY)
	DisplayDateLayout = "02/01/2006"
)

// timestampLayouts are tried in order when parsing upstream transaction dates
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// MonthBounds returns the first and last day of the month containing t
func MonthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of next month is the last day of this month
	end := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	return start, end
}

// ParseDate parses a YYYY-MM-DD date in UTC
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// ParseTimestamp parses an upstream transaction date, accepting full
// timestamps as well as bare dates
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ResolveWindow turns optional dateFrom/dateTo strings into an inclusive window.
// Both empty selects the month containing now; one empty selects the
// start or end of the other's month.
func ResolveWindow(fromStr, toStr string, now time.Time) (time.Time, time.Time, error) {
	var from, to time.Time
	var err error

	if fromStr != "" {
		if from, err = ParseDate(fromStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: dateFrom must be YYYY-MM-DD", domain.ErrInvalidDateRange)
		}
	}
	if toStr != "" {
		if to, err = ParseDate(toStr); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: dateTo must be YYYY-MM-DD", domain.ErrInvalidDateRange)
		}
	}

	switch {
	case fromStr == "" && toStr == "":
		from, to = MonthBounds(now)
	case fromStr == "":
		from, _ = MonthBounds(to)
	case toStr == "":
		_, to = MonthBounds(from)
	}

	if err := ValidateWindow(from, to); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// ValidateWindow checks ordering and maximum span of a window
func ValidateWindow(from, to time.Time) error {
	if from.After(to) {
		return fmt.Errorf("%w: dateFrom is after dateTo", domain.ErrInvalidDateRange)
	}
	if to.Sub(from) > time.Duration(domain.MaxWindowDays)*24*time.Hour {
		return fmt.Errorf("%w: window exceeds %d days", domain.ErrInvalidDateRange, domain.MaxWindowDays)
	}
	return nil
}

// FormatDisplayDate formats a date as DD/MM/YYYY, or "" for the zero time
func FormatDisplayDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DisplayDateLayout)
}
