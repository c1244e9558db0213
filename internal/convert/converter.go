// Package convert runs one statement file through the shared pipeline:
// read, pick the bank profile, parse, normalize, correct, emit.
package convert

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/qbo-statement-converter/internal/balance"
	"github.com/insightdelivered/qbo-statement-converter/internal/logger"
	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/normalize"
	"github.com/insightdelivered/qbo-statement-converter/internal/parser"
	"github.com/insightdelivered/qbo-statement-converter/internal/source"
	"github.com/insightdelivered/qbo-statement-converter/internal/writer"
)

// Options are per-call settings. Zero values fall back to the Converter.
type Options struct {
	// Bank forces a profile by id or alias instead of detection.
	Bank string
	// OutputDir overrides Converter.OutputDir.
	OutputDir string
	// IncludeBalance overrides the profile's balance column choice.
	IncludeBalance *bool
	// StrictDates skips rows whose date matches no known layout instead
	// of emitting the source text.
	StrictDates bool
}

// Result describes one converted file.
type Result struct {
	Input  string          `json:"input"`
	Output string          `json:"output,omitempty"`
	Bank   models.BankType `json:"bank"`
	Format models.Format   `json:"format"`

	Transactions  int `json:"transactions"`
	Skipped       int `json:"skipped"`
	Corrections   int `json:"corrections"`
	Mismatches    int `json:"mismatches"`
	UnparsedDates int `json:"unparsedDates"`

	// TotalsMatch is false when opening + credits - debits differs from
	// the closing balance printed on the statement.
	TotalsMatch bool           `json:"totalsMatch"`
	Summary     models.Summary `json:"summary"`
	Warnings    []string       `json:"warnings,omitempty"`

	transactions []models.Transaction
}

// TransactionList returns the emitted transactions.
func (r *Result) TransactionList() []models.Transaction {
	return r.transactions
}

// Converter holds the shared pipeline settings.
type Converter struct {
	Registry    *parser.Registry
	Reader      *source.Reader
	Tolerance   decimal.Decimal
	StrictDates bool
	OutputDir   string
	// ImportDir is scanned, together with ".", when a batch has no inputs.
	ImportDir string
}

// New returns a converter over registry with the default reader.
func New(registry *parser.Registry) *Converter {
	return &Converter{
		Registry:  registry,
		Reader:    source.NewReader(),
		Tolerance: balance.DefaultTolerance,
		OutputDir: ".",
		ImportDir: "import",
	}
}

// Profile resolves the bank for a document: the named one when bank is
// set, otherwise by file name and content.
func (c *Converter) Profile(bank string, doc *source.Document) (*parser.Profile, error) {
	if strings.TrimSpace(bank) != "" {
		return c.Registry.Lookup(bank)
	}
	return c.Registry.Detect(doc.Path, doc.Format, doc.Text())
}

// ConvertFile converts input and writes "{stem} - 4qbo.csv" to the output
// directory. When no transaction survives, it returns ErrNoTransactions and
// writes nothing.
func (c *Converter) ConvertFile(ctx context.Context, input string, opts Options) (*Result, error) {
	log := logger.FromContext(ctx).With().Str("file", input).Logger()

	doc, err := c.Reader.Read(input)
	if err != nil {
		return nil, err
	}
	profile, err := c.Profile(opts.Bank, doc)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("bank", string(profile.Bank)).Logger()

	res, err := c.Convert(doc, profile, opts, log)
	if err != nil {
		return res, err
	}

	includeBalance := profile.KeepBalance
	if opts.IncludeBalance != nil {
		includeBalance = *opts.IncludeBalance
	}
	dir := opts.OutputDir
	if dir == "" {
		dir = c.OutputDir
	}
	if dir == "" {
		dir = "."
	}

	w := &writer.CSVWriter{IncludeBalance: includeBalance}
	out, err := w.WriteToDir(dir, input, res.transactions)
	if err != nil {
		return res, err
	}
	res.Output = out

	log.Info().
		Str("output", out).
		Int("transactions", res.Transactions).
		Int("skipped", res.Skipped).
		Int("corrections", res.Corrections).
		Int("mismatches", res.Mismatches).
		Msg("statement converted")
	return res, nil
}

// Convert runs the in-memory part of the pipeline on an already read
// document.
func (c *Converter) Convert(doc *source.Document, profile *parser.Profile, opts Options, log zerolog.Logger) (*Result, error) {
	info, err := profile.Parse(doc)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Input:    doc.Path,
		Bank:     profile.Bank,
		Format:   doc.Format,
		Skipped:  info.Skipped,
		Summary:  info.Summary,
		Warnings: info.Warnings,
	}
	for _, w := range info.Warnings {
		log.Warn().Msg(w)
	}

	rows := c.normalize(info, profile, opts.StrictDates || c.StrictDates, res, log)

	seeded := false
	if open := info.Summary.OpeningBalance; open.Valid && (len(rows) == 0 || !rows[0].anchor) {
		rows = append([]row{{txn: models.Transaction{Balance: open}, anchor: true}}, rows...)
		seeded = true
	}

	txns := make([]models.Transaction, len(rows))
	for i, r := range rows {
		txns[i] = r.txn
	}
	corrector := &balance.Corrector{Tolerance: c.Tolerance, Log: log}
	report := corrector.Correct(txns)
	res.Corrections = report.Corrections
	res.Mismatches = len(report.Mismatches)

	out := make([]models.Transaction, 0, len(txns))
	for i, t := range txns {
		if rows[i].anchor && (profile.DropOpeningRow || (seeded && i == 0)) {
			continue
		}
		out = append(out, t)
	}

	if len(out) == 0 {
		return res, fmt.Errorf("%w in %s", models.ErrNoTransactions, doc.Path)
	}

	_, res.TotalsMatch = corrector.VerifyTotals(info.Summary.OpeningBalance, info.Summary.ClosingBalance, out)
	if !res.TotalsMatch {
		res.Warnings = append(res.Warnings, "transactions do not add up to the closing balance")
	}

	res.transactions = out
	res.Transactions = len(out)
	res.Summary.TransactionCount = len(out)
	return res, nil
}

// row is a normalized transaction plus whether it only carries a balance.
type row struct {
	txn    models.Transaction
	anchor bool
}

// normalize turns candidates into transactions. Rows without a date or
// without any amount are skipped and counted.
func (c *Converter) normalize(info *models.StatementInfo, profile *parser.Profile, strict bool, res *Result, log zerolog.Logger) []row {
	rows := make([]row, 0, len(info.Candidates))
	skip := func(cand models.Candidate, reason string) {
		res.Skipped++
		log.Debug().Int("line", cand.Line).Str("reason", reason).Msg("row skipped")
	}

	for _, cand := range info.Candidates {
		if strings.TrimSpace(cand.Date) == "" {
			skip(cand, "no date")
			continue
		}
		date := normalize.NormalizeDate(cand.Date)
		if !date.Parsed() {
			if strict {
				skip(cand, date.Err.Error())
				continue
			}
			res.UnparsedDates++
			log.Warn().Int("line", cand.Line).Str("date", date.Original).Msg("date kept as printed")
		}

		bal := normalize.NullAmount(cand.Balance)
		t := models.Transaction{
			Date:       date.String(),
			Balance:    bal,
			Line:       cand.Line,
			DateParsed: date.Parsed(),
		}

		if cand.BalanceOnly {
			if !bal.Valid {
				skip(cand, "balance row without a balance")
				continue
			}
			t.Description = profile.Style.Merge(cand)
			rows = append(rows, row{txn: t, anchor: true})
			continue
		}

		debit, _ := normalize.AmountOrZero(cand.Debit)
		credit, _ := normalize.AmountOrZero(cand.Credit)
		if signed, ok := normalize.AmountOrZero(cand.Signed); ok {
			if signed.IsNegative() {
				debit = debit.Add(signed.Abs())
			} else {
				credit = credit.Add(signed)
			}
		}
		t.Debit, t.Credit = debit.Abs(), credit.Abs()
		if !t.HasAmount() {
			skip(cand, "no amount")
			continue
		}

		t.Description = profile.Style.Merge(cand)
		rows = append(rows, row{txn: t})
	}
	return rows
}

// IsEmpty reports whether err means the file had nothing to convert.
func IsEmpty(err error) bool {
	return errors.Is(err, models.ErrNoTransactions)
}
