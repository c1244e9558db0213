package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// PayseraParser handles Paysera account exports. Amounts are signed: a
// negative amount is a debit.
type PayseraParser struct{}

var (
	payseraMoney     = regexp.MustCompile(`(-?\d+\.\d{2})\s*EUR`)
	payseraLongDigit = regexp.MustCompile(`\d{10,}`)
	payseraAccountID = regexp.MustCompile(`EVP\d+|[A-Z]{2}\d{2}`)
	payseraIBAN      = regexp.MustCompile(`\b(LT\d{2}\s?(?:\d{4}\s?){4})`)
)

// Lines that open a transaction block in the PDF.
var payseraKinds = map[string]bool{
	"Transfer":       true,
	"Commission fee": true,
	"Payment":        true,
	"Withdrawal":     true,
}

const payseraWindow = 15

// PayseraProfile describes Paysera.
func PayseraProfile() *Profile {
	return &Profile{
		Bank:       models.BankPaysera,
		Name:       "Paysera",
		Signatures: []string{"Purpose of payment", "Amount and currency"},
		Markers:    []string{"PAYSERA"},
		FileHints:  []string{"paysera"},
		PDF:        PayseraParser{},
		CSV:        PayseraParser{},
		Style: DescriptionStyle{
			Separator: " - ",
			Fallback:  "Transaction",
		},
		KeepBalance: true,
	}
}

// ParseCSV implements CSVParser.
func (PayseraParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	h := findHeader(rows, 10, "Date and time", "Amount and currency")
	if h < 0 {
		return nil, fmt.Errorf("%w: header with \"Date and time\" and \"Amount and currency\" not found", models.ErrNoTransactions)
	}
	cols := headerColumns(rows[h])

	info := &models.StatementInfo{}
	for i, row := range rows[h+1:] {
		if blankRow(row) {
			continue
		}
		info.Candidates = append(info.Candidates, models.Candidate{
			Line:    h + i + 2,
			Date:    cols.get(row, "Date and time"),
			Fields:  []string{cols.get(row, "Type"), cols.get(row, "Recipient / Payer"), cols.get(row, "Purpose of payment")},
			Signed:  cols.get(row, "Amount and currency"),
			Balance: absText(cols.get(row, "Balance")),
		})
	}
	return info, nil
}

// ParsePDF implements PDFParser. A block is a kind line, a date line, then
// up to fifteen lines holding the recipient, the amount, the balance and
// the purpose of payment.
func (PayseraParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	info.Summary.IBAN = strings.ReplaceAll(firstGroup(payseraIBAN, strings.Join(lines, "\n")), " ", "")

	for i := 0; i < len(lines); i++ {
		kind := strings.TrimSpace(lines[i])
		if !payseraKinds[kind] || i+1 >= len(lines) {
			continue
		}
		dateLine := strings.TrimSpace(lines[i+1])
		c := models.Candidate{Line: i + 1, Date: dateLine}

		var recipient, purpose string
		amounts := 0
		j := i + 2
		for ; j < len(lines) && j < i+1+payseraWindow; j++ {
			next := strings.TrimSpace(lines[j])
			if payseraKinds[next] {
				break
			}
			if m := payseraMoney.FindStringSubmatch(next); m != nil {
				switch amounts {
				case 0:
					c.Signed = m[1]
				case 1:
					c.Balance = absText(m[1])
				}
				amounts++
				continue
			}
			if p, ok := strings.CutPrefix(next, "Purpose of payment"); ok {
				purpose = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(p), ":"))
				continue
			}
			if recipient == "" && looksLikePayseraName(next, dateLine) {
				recipient = next
			}
		}

		if amounts == 0 {
			info.Skip()
			continue
		}
		c.Fields = []string{kind, recipient, purpose}
		info.Candidates = append(info.Candidates, c)
		i = j - 1
	}
	return info, nil
}

// looksLikePayseraName filters out statement numbers, payment ids and
// account identifiers when looking for the counterparty line.
func looksLikePayseraName(line, dateLine string) bool {
	if len(line) <= 3 || line == "EUR" || line == dateLine {
		return false
	}
	if payseraLongDigit.MatchString(line) || payseraAccountID.MatchString(line) {
		return false
	}
	return strings.Trim(line, "0123456789") != ""
}

func absText(s string) string {
	return strings.TrimPrefix(strings.TrimSpace(s), "-")
}
