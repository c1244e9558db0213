package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/normalize"
)

// IntesaParser handles Intesa Sanpaolo Bank Albania CSV exports: three
// metadata lines (account, opening and closing balance), then a header
// starting with "Data".
//
// The export does not quote the description, so a comma inside it pushes
// every later column to the right. Rows are realigned on the Transaction
// Type column, whose only values are DEBIT and KREDIT.
type IntesaParser struct{}

const (
	intesaDescriptionCap = 500
	intesaLongWarning    = 1000
)

// IntesaProfile describes Intesa Sanpaolo.
func IntesaProfile() *Profile {
	return &Profile{
		Bank:       models.BankIntesa,
		Name:       "Intesa Sanpaolo",
		Aliases:    []string{"intesa sanpaolo", "isp"},
		Signatures: []string{"Numri i referencës"},
		Markers:    []string{"INTESA SANPAOLO"},
		FileHints:  []string{"intesa"},
		CSV:        IntesaParser{},
		Style: DescriptionStyle{
			Separator: " | ",
			RefPrefix: "Ref: ",
			RefFirst:  true,
			Limit:     intesaDescriptionCap,
		},
		KeepBalance: true,
	}
}

// intesaLayout is the header of one export, resolved to column indexes.
type intesaLayout struct {
	width       int
	date        int
	description int
	reference   int
	kind        int
	amount      int
	balance     int
}

func newIntesaLayout(header []string) (intesaLayout, error) {
	cols := headerColumns(header)
	l := intesaLayout{width: len(header)}
	var ok bool
	if l.date, ok = cols.index("Data"); !ok {
		return l, fmt.Errorf("column Data missing")
	}
	if l.description, ok = cols.index("Përshkrimi", "Pershkrimi", "Description"); !ok {
		return l, fmt.Errorf("column Përshkrimi missing")
	}
	if l.kind, ok = cols.index("Transaction Type", "Tipi i transaksionit"); !ok {
		return l, fmt.Errorf("column Transaction Type missing")
	}
	if l.amount, ok = cols.index("Shuma", "Amount"); !ok {
		return l, fmt.Errorf("column Shuma missing")
	}
	l.reference, _ = cols.index("Numri i referencës", "Numri i references", "Reference")
	l.balance, _ = cols.index("Balance Amount", "Balanca")
	if l.kind <= l.description {
		return l, fmt.Errorf("column Transaction Type must follow Përshkrimi")
	}
	return l, nil
}

// isAnchor reports whether cell is a Transaction Type value.
func isAnchor(cell string) bool {
	switch strings.ToUpper(strings.TrimSpace(cell)) {
	case "DEBIT", "KREDIT":
		return true
	}
	return false
}

// shift locates the anchor at or right of its header position and returns
// how many extra fields the description swallowed. ok is false when no
// anchor is found.
func (l intesaLayout) shift(row []string) (int, bool) {
	for i := l.kind; i < len(row); i++ {
		if isAnchor(row[i]) {
			return i - l.kind, true
		}
	}
	return 0, false
}

// cell returns column idx after realigning by shift. Columns left of the
// description are never displaced.
func (l intesaLayout) cell(row []string, idx, shift int) string {
	if idx < 0 {
		return ""
	}
	if idx > l.description {
		idx += shift
	}
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func (l intesaLayout) descriptionText(row []string, shift int) string {
	end := l.description + shift + 1
	if end > len(row) {
		end = len(row)
	}
	if l.description >= end {
		return ""
	}
	return strings.TrimSpace(strings.Join(row[l.description:end], ","))
}

// ParseCSV implements CSVParser.
func (IntesaParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	h := -1
	for i, row := range rows {
		if i >= 10 {
			break
		}
		if len(row) > 0 && headerKey(row[0]) == "data" {
			h = i
			break
		}
	}
	if h < 0 {
		return nil, fmt.Errorf("%w: header starting with Data not found", models.ErrNoTransactions)
	}
	layout, err := newIntesaLayout(rows[h])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrNoTransactions, err)
	}

	info := &models.StatementInfo{}
	if h != 3 {
		info.Warnings = append(info.Warnings, fmt.Sprintf("header found on line %d, expected line 4", h+1))
	}
	intesaSummary(&info.Summary, rows[:h])

	for i, row := range rows[h+1:] {
		lineNo := h + i + 2
		if blankRow(row) {
			continue
		}

		shift, found := layout.shift(row)
		if !found && len(row) > layout.width {
			shift = len(row) - layout.width
		}
		if shift > 0 {
			info.Warnings = append(info.Warnings, fmt.Sprintf("row %d: description spilled into %d extra column(s)", lineNo, shift))
		}

		desc := layout.descriptionText(row, shift)
		if n := utf8.RuneCountInString(desc); n > intesaLongWarning {
			info.Warnings = append(info.Warnings, fmt.Sprintf("row %d: very long description (%d chars)", lineNo, n))
		}

		c := models.Candidate{
			Line:      lineNo,
			Date:      layout.cell(row, layout.date, shift),
			Fields:    []string{cleanIntesaDescription(desc)},
			Reference: layout.cell(row, layout.reference, shift),
			Balance:   layout.cell(row, layout.balance, shift),
		}

		amount := layout.cell(row, layout.amount, shift)
		switch kind := strings.ToUpper(layout.cell(row, layout.kind, shift)); kind {
		case "KREDIT":
			c.Credit = amount
		case "DEBIT":
			c.Debit = amount
		default:
			info.Warnings = append(info.Warnings, fmt.Sprintf("row %d: unknown transaction type %q, treated as debit", lineNo, kind))
			c.Debit = amount
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}

// cleanIntesaDescription keeps the counterparty (first "||" segment) and
// the remittance information.
func cleanIntesaDescription(desc string) string {
	if desc == "" {
		return ""
	}
	parts := strings.Split(desc, "||")
	main := strings.TrimSpace(parts[0])
	for _, p := range parts[1:] {
		p = strings.TrimSpace(p)
		if rem, ok := strings.CutPrefix(p, "Rem Info::"); ok {
			if rem = strings.TrimSpace(rem); rem != "" {
				return truncate(main+" | "+rem, intesaDescriptionCap)
			}
		}
	}
	return truncate(main, intesaDescriptionCap)
}

// intesaSummary reads the metadata lines above the header: the account
// line, then opening and closing balances.
func intesaSummary(s *models.Summary, meta [][]string) {
	for i, row := range meta {
		if blankRow(row) {
			continue
		}
		joined := strings.ToLower(strings.Join(row, " "))
		amount := lastAmount(row)
		switch {
		case strings.Contains(joined, "hapje") || strings.Contains(joined, "opening") || strings.Contains(joined, "fillestar"):
			s.OpeningBalance = amount
		case strings.Contains(joined, "mbyllje") || strings.Contains(joined, "closing") || strings.Contains(joined, "përfundimtar"):
			s.ClosingBalance = amount
		case i == 0 || s.AccountNumber == "":
			for _, cell := range row {
				cell = strings.TrimSpace(cell)
				if len(cell) >= 8 && strings.Trim(cell, "0123456789") == "" {
					s.AccountNumber = cell
					break
				}
				if strings.HasPrefix(cell, "AL") && len(cell) == 28 {
					s.IBAN = cell
				}
			}
		}
	}
}

func lastAmount(row []string) decimal.NullDecimal {
	for i := len(row) - 1; i >= 0; i-- {
		if v, err := normalize.ParseAmount(row[i]); err == nil {
			return decimal.NewNullDecimal(v)
		}
	}
	return decimal.NullDecimal{}
}
