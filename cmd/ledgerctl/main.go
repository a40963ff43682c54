package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenedit/ledger-api/internal/config"
	"github.com/lumenedit/ledger-api/internal/domain"
	"github.com/lumenedit/ledger-api/internal/repository"
	"github.com/lumenedit/ledger-api/internal/service"
	"github.com/lumenedit/ledger-api/internal/util"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats
const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// options are the parsed command-line flags
type options struct {
	clientID string
	from     string
	to       string
	format   string
}

// report is the JSON rendition of a reconciled ledger
type report struct {
	ClientID           string                   `json:"clientId"`
	DateFrom           string                   `json:"dateFrom"`
	DateTo             string                   `json:"dateTo"`
	Ledger             *domain.ReconciledLedger `json:"ledger"`
	Aggregates         domain.LedgerAggregates  `json:"aggregates"`
	Standing           domain.BalanceStanding   `json:"standing"`
	ClosingDiscrepancy bool                     `json:"closingDiscrepancy"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := repository.NewLedgerSource(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger source")
	}

	err = run(ctx, opts, source, time.Now(), os.Stdout)
	closeSource()
	if err != nil {
		log.Error().Err(err).Str("client_id", opts.clientID).Msg("Ledger reconciliation failed")
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("ledgerctl", flag.ContinueOnError)
	fs.StringVar(&opts.clientID, "client", "", "Client ID whose ledger to reconcile (required)")
	fs.StringVar(&opts.from, "from", "", "Window start date (YYYY-MM-DD), defaults to the start of the month")
	fs.StringVar(&opts.to, "to", "", "Window end date (YYYY-MM-DD), defaults to the end of the month")
	fs.StringVar(&opts.format, "format", formatJSON, "Output format: json or csv")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	if opts.clientID == "" {
		fs.Usage()
		return options{}, domain.ErrClientIDRequired
	}
	if opts.format != formatJSON && opts.format != formatCSV {
		return options{}, fmt.Errorf("%w: %q", domain.ErrInvalidExportFormat, opts.format)
	}
	return opts, nil
}

// run reconciles one ledger window and writes it to out
func run(ctx context.Context, opts options, source domain.LedgerSource, now time.Time, out io.Writer) error {
	from, to, err := util.ResolveWindow(opts.from, opts.to, now)
	if err != nil {
		return err
	}
	q := domain.LedgerQuery{ClientID: opts.clientID, DateFrom: from, DateTo: to}

	ledgerService := service.NewLedgerService(source)

	if opts.format == formatCSV {
		statements := service.NewStatementService(ledgerService, nil, nil, nil, 0)
		return statements.WriteCSV(ctx, q, out)
	}

	stmt, err := ledgerService.GetLedger(ctx, q)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(report{
		ClientID:           q.ClientID,
		DateFrom:           from.Format(util.DateLayout),
		DateTo:             to.Format(util.DateLayout),
		Ledger:             stmt.Ledger,
		Aggregates:         stmt.Aggregates,
		Standing:           domain.DisplayStanding(stmt.Ledger.Closing),
		ClosingDiscrepancy: stmt.ClosingDiscrepancy,
	})
}
