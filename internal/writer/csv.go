package writer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// OutputSuffix is appended to the input file stem to name the output.
const OutputSuffix = " - 4qbo"

// maxVersions bounds the (v.N) probe so a full directory cannot spin forever.
const maxVersions = 10000

// CSVWriter writes transactions in the accounting import layout.
type CSVWriter struct {
	IncludeBalance bool
}

// Header returns the column names for this writer.
func (w *CSVWriter) Header() []string {
	h := []string{"Date", "Description", "Debit", "Credit"}
	if w.IncludeBalance {
		h = append(h, "Balance")
	}
	return h
}

// Write writes the header and one row per transaction.
func (w *CSVWriter) Write(out io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(w.Header()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, txn := range txns {
		row := []string{
			txn.Date,
			txn.Description,
			formatAmount(txn.Debit),
			formatAmount(txn.Credit),
		}
		if w.IncludeBalance {
			row = append(row, formatBalance(txn.Balance))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteToDir writes txns next to other outputs in dir, naming the file
// after input and never replacing an existing file. It returns the path
// written.
func (w *CSVWriter) WriteToDir(dir, input string, txns []models.Transaction) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %q: %w", dir, err)
	}

	f, path, err := CreateVersioned(OutputPath(dir, input))
	if err != nil {
		return "", err
	}

	if err := w.Write(f, txns); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close output file %q: %w", path, err)
	}
	return path, nil
}

// OutputPath returns "{dir}/{stem} - 4qbo.csv" for the input file.
func OutputPath(dir, input string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+OutputSuffix+".csv")
}

// CreateVersioned creates path, or "name (v.1).csv", "name (v.2).csv" and
// so on when it already exists. Creation is exclusive so a concurrent
// writer can never clobber another's output.
func CreateVersioned(path string) (*os.File, string, error) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)

	candidate := path
	for n := 1; n <= maxVersions; n++ {
		f, err := os.OpenFile(candidate, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return f, candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, "", fmt.Errorf("failed to create output file %q: %w", candidate, err)
		}
		candidate = fmt.Sprintf("%s (v.%d)%s", stem, n, ext)
	}
	return nil, "", fmt.Errorf("failed to create output file %q: too many versions", path)
}

func formatAmount(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return amount.StringFixed(2)
}

func formatBalance(b decimal.NullDecimal) string {
	if !b.Valid {
		return ""
	}
	return b.Decimal.StringFixed(2)
}
