package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/insightdelivered/qbo-statement-converter/internal/logger"
	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/source"
	"github.com/insightdelivered/qbo-statement-converter/internal/writer"
)

// Outcome is the result of one file in a batch.
type Outcome struct {
	Input  string
	Result *Result
	Err    error
}

// Batch collects the outcomes of one ConvertBatch run.
type Batch struct {
	RunID    string
	Outcomes []Outcome
}

// Totals summarizes a batch.
type Totals struct {
	Converted     int
	Empty         int
	Failed        int
	Transactions  int
	Skipped       int
	Corrections   int
	Mismatches    int
	UnparsedDates int
}

// Totals adds up the outcomes.
func (b *Batch) Totals() Totals {
	var t Totals
	for _, o := range b.Outcomes {
		switch {
		case o.Err == nil:
			t.Converted++
		case IsEmpty(o.Err):
			t.Empty++
		default:
			t.Failed++
		}
		if r := o.Result; r != nil {
			t.Transactions += r.Transactions
			t.Skipped += r.Skipped
			t.Corrections += r.Corrections
			t.Mismatches += r.Mismatches
			t.UnparsedDates += r.UnparsedDates
		}
	}
	return t
}

// ConvertBatch converts every statement among inputs. A directory input
// contributes its PDF, CSV and TXT files (not recursively). With no inputs
// it scans "." and the import directory, ignoring either when missing.
// A failing file never stops the batch; only cancellation does.
func (c *Converter) ConvertBatch(ctx context.Context, inputs []string, opts Options) (*Batch, error) {
	b := &Batch{RunID: uuid.NewString()}
	log := logger.FromContext(ctx).With().Str("run_id", b.RunID).Logger()
	ctx = logger.WithContext(ctx, log)

	explicit := len(inputs) > 0
	if !explicit {
		importDir := c.ImportDir
		if importDir == "" {
			importDir = "import"
		}
		inputs = []string{".", importDir}
	}

	files, failed := c.collect(inputs, explicit)
	b.Outcomes = append(b.Outcomes, failed...)
	log.Info().Int("files", len(files)).Msg("batch started")

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return b, err
		}
		res, err := c.ConvertFile(ctx, f, opts)
		if err != nil {
			event := log.Error()
			if IsEmpty(err) {
				event = log.Warn()
			}
			event.Err(err).Str("file", f).Msg("statement not converted")
		}
		b.Outcomes = append(b.Outcomes, Outcome{Input: f, Result: res, Err: err})
	}
	return b, nil
}

// collect expands inputs into statement files. Inputs that cannot be
// opened become failed outcomes when they were named explicitly.
func (c *Converter) collect(inputs []string, explicit bool) ([]string, []Outcome) {
	seen := make(map[string]bool)
	var files []string
	var failed []Outcome

	add := func(path string) {
		key := path
		if abs, err := filepath.Abs(path); err == nil {
			key = abs
		}
		if !seen[key] {
			seen[key] = true
			files = append(files, path)
		}
	}

	for _, in := range inputs {
		st, err := os.Stat(in)
		if err != nil {
			if explicit {
				failed = append(failed, Outcome{Input: in, Err: fmt.Errorf("%w: %v", models.ErrSourceUnreadable, err)})
			}
			continue
		}
		if !st.IsDir() {
			add(in)
			continue
		}

		entries, err := os.ReadDir(in)
		if err != nil {
			failed = append(failed, Outcome{Input: in, Err: fmt.Errorf("%w: %v", models.ErrSourceUnreadable, err)})
			continue
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() || !isStatement(e.Name()) {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, n := range names {
			add(filepath.Join(in, n))
		}
	}
	return files, failed
}

// isStatement reports whether name looks like a statement and is not one
// of our own outputs.
func isStatement(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := source.FormatOf(name); !ok {
		return false
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return !strings.Contains(stem, writer.OutputSuffix)
}
