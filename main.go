package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/insightdelivered/qbo-statement-converter/internal/api"
	"github.com/insightdelivered/qbo-statement-converter/internal/config"
	"github.com/insightdelivered/qbo-statement-converter/internal/convert"
	"github.com/insightdelivered/qbo-statement-converter/internal/jobs/inmemory"
	"github.com/insightdelivered/qbo-statement-converter/internal/logger"
	"github.com/insightdelivered/qbo-statement-converter/internal/parser"
)

const version = "2.0.0"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run is main without the exit, returning the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("qbo-convert", flag.ContinueOnError)
	fs.SetOutput(stderr)

	bankFlag := fs.String("bank", "", "Bank id or alias (auto-detected if omitted)")
	outputFlag := fs.String("output", "", "Output directory (default EXPORT_DIR or ./export)")
	balanceFlag := fs.String("balance", "auto", "Balance column: auto, true or false")
	strictFlag := fs.Bool("strict-dates", false, "Skip rows whose date cannot be parsed")
	serveFlag := fs.String("serve", "", "Start the HTTP API on ADDR instead of converting files")
	envFlag := fs.String("env", ".env", "Env file to load")
	versionFlag := fs.Bool("version", false, "Print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Albanian bank statement to QuickBooks CSV converter
by Insight Delivered

Converts PDF and CSV statements from BKT, Banka Tirana, Union Bank, OTP,
Credins, ProCredit, Paysera, Raiffeisen and Intesa Sanpaolo into
"Date,Description,Debit,Credit" files ready for QuickBooks Online import.

Usage:
  qbo-convert [flags] [file or dir ...]

With no arguments every statement in . and the import directory is converted.

Flags:
`)
		fs.PrintDefaults()
		fmt.Fprintf(stderr, `
Examples:
  # Auto-detect the bank and convert
  qbo-convert statement.pdf

  # Force the bank and keep the running balance
  qbo-convert --bank=raiffeisen --balance=true export.csv

  # Convert a folder into ./out
  qbo-convert --output=out import/

  # Serve the upload API
  qbo-convert --serve=:8080

Supported banks:
  %s
`, strings.Join(parser.DefaultRegistry().Names(), ", "))
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "qbo-convert v%s\n", version)
		return 0
	}

	cfg, err := config.Load(*envFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	log, err := logger.New(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Out: stderr})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	registry := parser.DefaultRegistry()
	if err := cfg.Apply(registry); err != nil {
		log.Error().Err(err).Msg("invalid bank profile overrides")
		return 1
	}

	conv := convert.New(registry)
	conv.Tolerance = cfg.Tolerance
	conv.StrictDates = cfg.StrictDates || *strictFlag
	conv.OutputDir = cfg.ExportDir
	conv.ImportDir = cfg.ImportDir
	if *outputFlag != "" {
		conv.OutputDir = *outputFlag
	}

	if *serveFlag != "" {
		return serve(*serveFlag, conv, cfg.UploadDir, log)
	}

	opts := convert.Options{Bank: *bankFlag}
	if *bankFlag != "" {
		if _, err := registry.Lookup(*bankFlag); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
	}
	switch strings.ToLower(*balanceFlag) {
	case "", "auto":
	default:
		b, err := strconv.ParseBool(*balanceFlag)
		if err != nil {
			fmt.Fprintf(stderr, "Error: --balance must be auto, true or false, got %q\n", *balanceFlag)
			return 2
		}
		opts.IncludeBalance = &b
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.WithContext(ctx, log)

	batch, err := conv.ConvertBatch(ctx, fs.Args(), opts)
	if batch != nil {
		printBatch(stdout, batch)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if batch.Totals().Failed > 0 {
		return 1
	}
	return 0
}

func printBatch(w io.Writer, b *convert.Batch) {
	if len(b.Outcomes) == 0 {
		fmt.Fprintln(w, "No statements found.")
		return
	}
	for _, o := range b.Outcomes {
		switch {
		case o.Err == nil:
			r := o.Result
			fmt.Fprintf(w, "converted  %s -> %s (%s: %d transactions, %d skipped, %d corrections, %d mismatches)\n",
				o.Input, r.Output, r.Bank, r.Transactions, r.Skipped, r.Corrections, r.Mismatches)
			if r.UnparsedDates > 0 {
				fmt.Fprintf(w, "           %d date(s) kept as printed\n", r.UnparsedDates)
			}
			for _, warn := range r.Warnings {
				fmt.Fprintf(w, "           warning: %s\n", warn)
			}
		case convert.IsEmpty(o.Err):
			fmt.Fprintf(w, "empty      %s: no transactions found\n", o.Input)
		default:
			fmt.Fprintf(w, "failed     %s: %v\n", o.Input, o.Err)
		}
	}

	t := b.Totals()
	fmt.Fprintf(w, "\n%d converted, %d with no transactions, %d failed\n", t.Converted, t.Empty, t.Failed)
	fmt.Fprintf(w, "%d transactions, %d skipped, %d corrections, %d mismatches\n",
		t.Transactions, t.Skipped, t.Corrections, t.Mismatches)
}

func serve(addr string, conv *convert.Converter, uploadDir string, log zerolog.Logger) int {
	app := api.NewApp(&api.Handler{
		Converter: conv,
		Store:     inmemory.NewStore(),
		UploadDir: uploadDir,
		Log:       log,
	})

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		errc <- app.Listen(addr)
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errc:
		log.Error().Err(err).Msg("server stopped")
		return 1
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		return 1
	}
	return 0
}
