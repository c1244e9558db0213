package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/normalize"
)

// UnionParser handles Union Bank statements. In the PDF text the booking
// date sits alone on a line; the amounts appear on a later line that ends
// with the value date, the amount and the running balance:
//
//	02-JAN-2025
//	Transferte ne mberritje
//	TRF123 02-JAN-2025 5,000.00 15,000.00
type UnionParser struct{}

// unionAmount accepts both grouped (1,000.00) and plain (1000.00) amounts.
const unionAmount = `\d[\d,]*(?:\.\d{2})?`

var (
	unionStart    = regexp.MustCompile(`^(\d{2}-[A-Z]{3}-\d{4})`)
	unionAmounts  = regexp.MustCompile(`(\d{2}-[A-Z]{3}-\d{4})\s+(` + unionAmount + `)\s+(` + unionAmount + `)\s*$`)
	unionTrailing = regexp.MustCompile(`(?:^|\s)(\d[\d,]*\.\d{2})$`)
	unionOpening  = regexp.MustCompile(`BALANCA E FILLIMIT.*?[\s:](` + unionAmount + `)\s*$`)
	unionClosing  = regexp.MustCompile(`(?m)BALANCA E MBARIMIT.*?[\s:](` + unionAmount + `)\s*$`)
	unionAccount  = regexp.MustCompile(`LLOGARIA:\s*(\S+)`)
	unionHolder   = regexp.MustCompile(`KLIENTI:\s*(.+)`)
	unionPeriod   = regexp.MustCompile(`PERIUDHA:?\s*(.+)`)
)

var unionScanner = lineScanner{
	start:  unionStart,
	window: 12,
	stopWords: []string{
		"NXJERRJE LLOGARIE", "LLOGARIA:", "PERIUDHA", "DATA  TIPI", "PERSHKRIMI",
		"BALANCA E", "UNION BANK", "Firefox", "FAQE NR", "https://",
		"DATA E PRINTIMIT", "Dega UB",
	},
}

// UnionProfile describes Union Bank.
func UnionProfile() *Profile {
	return &Profile{
		Bank:       models.BankUnion,
		Name:       "Union Bank",
		Aliases:    []string{"unionbank", "union bank"},
		Signatures: []string{"BALANCA E FILLIMIT", "BALANCA E MBARIMIT"},
		Markers:    []string{"UNION BANK"},
		FileHints:  []string{"union"},
		PDF:        UnionParser{},
		CSV:        UnionParser{},
		Style: DescriptionStyle{
			Separator:       " ",
			DetailSeparator: " ",
		},
		DropOpeningRow: true,
	}
}

// ParsePDF implements PDFParser.
func (UnionParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	text := strings.Join(lines, "\n")
	info.Summary.AccountNumber = firstGroup(unionAccount, text)
	info.Summary.AccountHolder = firstGroup(unionHolder, text)
	info.Summary.Period = firstGroup(unionPeriod, text)
	info.Summary.ClosingBalance = normalize.NullAmount(firstGroup(unionClosing, text))

	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if m := unionOpening.FindStringSubmatch(line); m != nil && !info.Summary.OpeningBalance.Valid {
			info.Summary.OpeningBalance = normalize.NullAmount(m[1])
			if date := firstGroup(unionStart, line); date != "" {
				info.Candidates = append(info.Candidates, models.Candidate{
					Line:        i + 1,
					Date:        date,
					Fields:      []string{"BALANCA E FILLIMIT"},
					Balance:     m[1],
					BalanceOnly: true,
				})
			}
		}
	}

	for _, b := range unionScanner.scan(lines) {
		if strings.Contains(b.head, "BALANCA E FILLIMIT") {
			continue
		}
		c := models.Candidate{Line: b.line, Date: b.match[1]}
		if rest := b.rest(); rest != "" {
			c.Fields = []string{rest}
		}

		found := false
		for _, next := range b.tail {
			m := unionAmounts.FindStringSubmatchIndex(next)
			if m == nil || found {
				c.Details = append(c.Details, next)
				continue
			}
			found = true
			amt, bal := next[m[4]:m[5]], next[m[6]:m[7]]
			before := strings.TrimSpace(next[:m[0]])

			if t := unionTrailing.FindStringSubmatchIndex(before); t != nil {
				// debit, credit, balance
				c.Debit = before[t[2]:t[3]]
				c.Credit = amt
				before = strings.TrimSpace(before[:t[0]])
			} else {
				// Sign unknown here; the balance corrector settles it.
				c.Credit = amt
			}
			c.Balance = bal
			if before != "" {
				c.Details = append(c.Details, before)
			}
		}
		if !found {
			info.Skip()
			continue
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}

// ParseCSV implements CSVParser for the Date/Description/Amount export,
// where a negative amount is a debit.
func (UnionParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	h := findHeader(rows, 10, "Date", "Amount")
	if h < 0 {
		return nil, fmt.Errorf("%w: header with Date and Amount not found", models.ErrNoTransactions)
	}
	cols := headerColumns(rows[h])

	info := &models.StatementInfo{}
	for i, row := range rows[h+1:] {
		if blankRow(row) {
			continue
		}
		info.Candidates = append(info.Candidates, models.Candidate{
			Line:    h + i + 2,
			Date:    cols.get(row, "Date"),
			Fields:  []string{cols.get(row, "Description")},
			Signed:  cols.get(row, "Amount"),
			Balance: cols.get(row, "Balance"),
		})
	}
	return info, nil
}
