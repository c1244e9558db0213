// Package balance checks transactions against the running balance printed
// on the statement and repairs swapped debit/credit columns.
package balance

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// DefaultTolerance is the largest difference treated as a match.
var DefaultTolerance = decimal.New(1, -2)

// Mismatch is a transaction whose stated balance could not be reconciled
// with its predecessor, with or without swapping debit and credit.
type Mismatch struct {
	Index    int             `json:"index"`
	Line     int             `json:"line"`
	Expected decimal.Decimal `json:"expected"`
	Stated   decimal.Decimal `json:"stated"`
}

// Report summarizes one corrector pass.
type Report struct {
	Checked     int        `json:"checked"`
	Corrections int        `json:"corrections"`
	Mismatches  []Mismatch `json:"mismatches,omitempty"`
}

// Corrector walks transactions in source order.
//
// For each transaction i > 0 with a stated balance it expects
// balance[i-1] - debit[i] + credit[i] == balance[i]. When that fails but
// the swapped form matches, debit and credit are exchanged in place. The
// pass assumes a gapless sequence in statement order; on reordered or
// filtered input its corrections are meaningless.
type Corrector struct {
	Tolerance decimal.Decimal
	Log       zerolog.Logger
}

// New returns a corrector using DefaultTolerance.
func New(log zerolog.Logger) *Corrector {
	return &Corrector{Tolerance: DefaultTolerance, Log: log}
}

// Correct fixes swapped amounts in txns and reports what it did.
func (c *Corrector) Correct(txns []models.Transaction) Report {
	var r Report
	for i := 1; i < len(txns); i++ {
		prev, cur := txns[i-1].Balance, &txns[i]
		if !prev.Valid || !cur.Balance.Valid {
			continue
		}
		r.Checked++

		expected := prev.Decimal.Sub(cur.Debit).Add(cur.Credit)
		if c.within(expected, cur.Balance.Decimal) {
			continue
		}

		swapped := prev.Decimal.Sub(cur.Credit).Add(cur.Debit)
		if c.within(swapped, cur.Balance.Decimal) {
			cur.Debit, cur.Credit = cur.Credit, cur.Debit
			r.Corrections++
			c.Log.Debug().
				Int("line", cur.Line).
				Str("date", cur.Date).
				Str("debit", cur.Debit.StringFixed(2)).
				Str("credit", cur.Credit.StringFixed(2)).
				Msg("swapped debit and credit to match running balance")
			continue
		}

		r.Mismatches = append(r.Mismatches, Mismatch{
			Index:    i,
			Line:     cur.Line,
			Expected: expected,
			Stated:   cur.Balance.Decimal,
		})
		c.Log.Warn().
			Int("line", cur.Line).
			Str("date", cur.Date).
			Str("expected", expected.StringFixed(2)).
			Str("stated", cur.Balance.Decimal.StringFixed(2)).
			Msg("balance mismatch")
	}
	return r
}

func (c *Corrector) within(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(c.Tolerance)
}

// VerifyTotals checks opening + credits - debits against the closing
// balance. It returns the computed closing balance and whether it matches.
// ok is true when either balance is unknown.
func (c *Corrector) VerifyTotals(opening, closing decimal.NullDecimal, txns []models.Transaction) (decimal.Decimal, bool) {
	if !opening.Valid || !closing.Valid {
		return decimal.Zero, true
	}
	total := opening.Decimal
	for _, t := range txns {
		total = total.Add(t.Credit).Sub(t.Debit)
	}
	ok := c.within(total, closing.Decimal)
	if !ok {
		c.Log.Warn().
			Str("opening", opening.Decimal.StringFixed(2)).
			Str("computed", total.StringFixed(2)).
			Str("closing", closing.Decimal.StringFixed(2)).
			Msg("closing balance does not match transactions")
	}
	return total, ok
}
