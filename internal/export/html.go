package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/util"
)

const statementTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Ledger Statement {{.ClientID}}</title>
<style>
body { font-family: sans-serif; font-size: 11px; }
table { width: 100%; border-collapse: collapse; }
th, td { border-bottom: 1px solid #ddd; padding: 4px 6px; }
td.num { text-align: right; }
tr.bracket td { font-weight: bold; background: #f5f5f5; }
.warning { color: #c62828; }
.success { color: #2e7d32; }
</style>
</head>
<body>
<h1>Ledger Statement</h1>
<p>Client: {{.ClientID}}<br>Period: {{.DateFrom}} to {{.DateTo}}</p>
<table>
<thead><tr><th>Date</th><th>Particulars</th><th>Debit</th><th>Credit</th><th>Balance</th></tr></thead>
<tbody>
{{range .Rows}}<tr{{if .Bracket}} class="bracket"{{end}}><td>{{.Date}}</td><td>{{.Particulars}}</td><td class="num">{{.Debit}}</td><td class="num">{{.Credit}}</td><td class="num {{.Tone}}">{{.Balance}}</td></tr>
{{end}}</tbody>
<tfoot><tr><td></td><td>Total</td><td class="num">{{.TotalDebit}}</td><td class="num">{{.TotalCredit}}</td><td class="num {{.ClosingTone}}">{{.Closing}}</td></tr></tfoot>
</table>
<p>Transactions: {{.TransactionCount}} &middot; Net movement: {{.NetMovement}}</p>
</body>
</html>
`

var statementTmpl = template.Must(template.New("statement").Parse(statementTemplate))

type htmlRow struct {
	Bracket     bool
	Date        string
	Particulars string
	Debit       string
	Credit      string
	Balance     string
	Tone        string
}

type htmlStatement struct {
	ClientID         string
	DateFrom         string
	DateTo           string
	Rows             []htmlRow
	TotalDebit       string
	TotalCredit      string
	Closing          string
	ClosingTone      string
	TransactionCount int
	NetMovement      string
}

// RenderStatementHTML renders a statement as a standalone HTML document
func RenderStatementHTML(stmt *domain.LedgerStatement) (string, error) {
	if stmt == nil || stmt.Ledger == nil {
		return "", fmt.Errorf("statement is empty")
	}
	ledger := stmt.Ledger

	view := htmlStatement{
		ClientID:         stmt.Query.ClientID,
		DateFrom:         util.FormatDisplayDate(stmt.Query.DateFrom),
		DateTo:           util.FormatDisplayDate(stmt.Query.DateTo),
		Rows:             make([]htmlRow, 0, len(ledger.Rows)),
		TotalDebit:       FormatINR(stmt.Aggregates.TotalDebit),
		TotalCredit:      FormatINR(stmt.Aggregates.TotalCredit),
		Closing:          FormatBalance(ledger.Closing),
		ClosingTone:      string(domain.DisplayStanding(ledger.Closing).Tone()),
		TransactionCount: ledger.TransactionCount,
		NetMovement:      FormatINR(stmt.Aggregates.NetMovement),
	}
	for _, row := range ledger.Rows {
		view.Rows = append(view.Rows, htmlRow{
			Bracket:     row.IsSynthetic(),
			Date:        util.FormatDisplayDate(row.Date),
			Particulars: Particulars(row),
			Debit:       FormatAmountCell(row.Debit),
			Credit:      FormatAmountCell(row.Credit),
			Balance:     FormatBalance(row.RunningBalance),
			Tone:        string(domain.DisplayStanding(row.RunningBalance).Tone()),
		})
	}

	var buf bytes.Buffer
	if err := statementTmpl.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("failed to render statement: %w", err)
	}
	return buf.String(), nil
}
