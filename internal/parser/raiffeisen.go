package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// RaiffeisenParser handles Raiffeisen Bank Albania exports.
//
// The CSV carries a signed Amount (with currency) and the running balance
// in Amount Total. In the PDF each posting is tagged with a ledger code,
// sequence number and processing date:
//
//	Pagese qeraje XBEN 104233 03.02.2025 -500.00 ALL 12,400.00 ALL
type RaiffeisenParser struct{}

var (
	raiMarker  = regexp.MustCompile(`XBEN\s+(\d+)\s+(\d{2}\.\d{2}\.\d{4})`)
	raiMoney   = regexp.MustCompile(`(?:^|\s)(-?\d{1,3}(?:[,\s]\d{3})*\.\d{2})(?:\s*(?:ALL|EUR|USD))?`)
	raiAccount = regexp.MustCompile(`(?i)Account(?: No\.?| number)?\s*:?\s*(\d{6,})`)
	raiIBAN    = regexp.MustCompile(`\b(AL\d{2}[A-Z0-9]{24})\b`)
)

// Summary rows in the CSV body that are not transactions.
var raiSummaryRows = []string{"Previous Balance", "Closing Balance", "Total"}

var raiScanner = lineScanner{
	start:     raiMarker,
	window:    10,
	stopWords: []string{"Previous Balance", "Closing Balance", "Faqe", "Page "},
}

// RaiffeisenProfile describes Raiffeisen Bank.
func RaiffeisenProfile() *Profile {
	return &Profile{
		Bank:       models.BankRaiffeisen,
		Name:       "Raiffeisen",
		Aliases:    []string{"rai", "raiffeisen bank"},
		Signatures: []string{"Beneficairy/Ordering", "XBEN"},
		Markers:    []string{"RAIFFEISEN"},
		FileHints:  []string{"raiffeisen"},
		PDF:        RaiffeisenParser{},
		CSV:        RaiffeisenParser{},
		Style: DescriptionStyle{
			Separator:       " ",
			DetailSeparator: " ",
			RefPrefix:       "Ref: ",
		},
		KeepBalance: true,
	}
}

// ParseCSV implements CSVParser.
func (RaiffeisenParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	h := findHeader(rows, 15, "No", "Value Date", "Processing Date")
	if h < 0 {
		return nil, fmt.Errorf("%w: header with No, Value Date and Processing Date not found", models.ErrNoTransactions)
	}
	cols := headerColumns(rows[h])

	info := &models.StatementInfo{}
	for i, row := range rows[h+1:] {
		if blankRow(row) || containsWord(cols.get(row, "No"), raiSummaryRows) {
			continue
		}
		info.Candidates = append(info.Candidates, models.Candidate{
			Line: h + i + 2,
			Date: cols.get(row, "Processing Date"),
			Fields: []string{
				cols.get(row, "Transaction Type"),
				// the export misspells the header
				cols.get(row, "Beneficairy/Ordering name and account number", "Beneficiary/Ordering name and account number"),
				cols.get(row, "Description"),
			},
			Reference: cols.get(row, "Reference"),
			Signed:    cols.get(row, "Amount"),
			Balance:   cols.get(row, "Amount Total"),
		})
	}
	return info, nil
}

// ParsePDF implements PDFParser.
func (RaiffeisenParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	text := strings.Join(lines, "\n")
	info.Summary.AccountNumber = firstGroup(raiAccount, text)
	info.Summary.IBAN = firstGroup(raiIBAN, text)

	for _, b := range raiScanner.scan(lines) {
		loc := raiMarker.FindStringIndex(b.head)
		before := strings.TrimSpace(b.head[:loc[0]])
		after := b.head[loc[1]:]

		var amounts, words []string
		for _, part := range append([]string{after}, b.tail...) {
			for _, m := range raiMoney.FindAllStringSubmatch(part, -1) {
				amounts = append(amounts, m[1])
			}
			if rest := strings.TrimSpace(raiMoney.ReplaceAllString(part, " ")); rest != "" {
				words = append(words, rest)
			}
		}

		c := models.Candidate{
			Line:      b.line,
			Date:      b.match[2],
			Fields:    []string{"XBEN", before},
			Details:   words,
			Reference: b.match[1],
		}
		switch n := len(amounts); {
		case n == 0:
			info.Skip()
			continue
		case n == 1:
			c.Signed = amounts[0]
		case n == 2:
			c.Signed = amounts[0]
			c.Balance = amounts[1]
		default:
			c.Debit = amounts[0]
			c.Credit = amounts[1]
			c.Balance = amounts[n-1]
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}
