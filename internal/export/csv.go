package export

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/util"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

// CSVColumns is the column row of a statement export
var CSVColumns = []string{"Date", "Particulars", "Debit", "Credit", "Balance"}

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.flush()
	}
	return nil
}

func (s *csvStreamer) flush() error {
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

// WriteStatementCSV writes a reconciled statement: a metadata block, the
// column row, every ledger row including the bracket rows, then totals.
func WriteStatementCSV(w io.Writer, stmt *domain.LedgerStatement) error {
	if stmt == nil || stmt.Ledger == nil {
		return fmt.Errorf("statement is empty")
	}
	s := newCSVStreamer(w)
	ledger := stmt.Ledger

	meta := [][]string{
		{"Client", csvSafe(stmt.Query.ClientID)},
		{"Period", fmt.Sprintf("%s to %s", util.FormatDisplayDate(stmt.Query.DateFrom), util.FormatDisplayDate(stmt.Query.DateTo))},
		{"Opening Balance", FormatBalance(ledger.Opening)},
		{"Closing Balance", FormatBalance(ledger.Closing)},
		{"Transactions", fmt.Sprintf("%d", ledger.TransactionCount)},
		{},
	}
	for _, row := range meta {
		if err := s.writeRow(row); err != nil {
			return err
		}
	}

	if err := s.writeRow(CSVColumns); err != nil {
		return err
	}
	for _, row := range ledger.Rows {
		if err := s.writeRow(statementRow(row)); err != nil {
			return err
		}
	}

	totals := []string{
		"",
		"Total",
		GroupIndian(stmt.Aggregates.TotalDebit),
		GroupIndian(stmt.Aggregates.TotalCredit),
		FormatBalance(ledger.Closing),
	}
	if err := s.writeRow(totals); err != nil {
		return err
	}
	return s.flush()
}

func statementRow(row domain.AnnotatedLedgerRow) []string {
	return []string{
		util.FormatDisplayDate(row.Date),
		csvSafe(Particulars(row)),
		FormatAmountCell(row.Debit),
		FormatAmountCell(row.Credit),
		FormatBalance(row.RunningBalance),
	}
}

// csvSafe keeps spreadsheet apps from evaluating a text cell as a formula.
// Only free-text columns go through it; amount cells may start with '-'.
func csvSafe(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}
