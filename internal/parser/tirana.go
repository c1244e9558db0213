package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/normalize"
)

// TiranaParser handles Tirana Bank statements. PDF lines start with the
// booking time and two dates:
//
//	07:51   01 Kor 25 01 Kor 25 PAGESE FATURE -22,000.00  33,923.15
//
// A leading minus on the amount marks a debit.
type TiranaParser struct{}

const tiranaAmount = `\d{1,3}(?:,\d{3})*(?:\.\d{2})?`

var (
	tiranaStart   = regexp.MustCompile(`^\d{2}:\d{2}\s+(\d{2}\s+\p{L}{3}\s+\d{2})\s+\d{2}\s+\p{L}{3}\s+\d{2}\s+(.*)$`)
	tiranaDebit   = regexp.MustCompile(`-(` + tiranaAmount + `)\s+(` + tiranaAmount + `)\s*$`)
	tiranaCredit  = regexp.MustCompile(`(` + tiranaAmount + `)\s+(` + tiranaAmount + `)\s*$`)
	tiranaAccount = regexp.MustCompile(`Numri i llogarisë\s*:?\s*(\S+)`)
	tiranaCarried = regexp.MustCompile(`Teprica e mbartur\s*:?\s*(-?` + tiranaAmount + `)`)
	tiranaClosing = regexp.MustCompile(`Teprica që do te mbartet\s*:?\s*(-?` + tiranaAmount + `)`)
	tiranaPeriod  = regexp.MustCompile(`Nga\s*:\s*(\S+(?:\s+\S+){0,2})\s+Deri\s*:\s*(\S+(?:\s+\S+){0,2})`)
)

var tiranaScanner = lineScanner{
	start:  tiranaStart,
	window: 15,
	stopWords: []string{
		"Numri i llogarisë", "Data e Veprimit", "Datë Valuta", "Përshkrimi",
		"Debi", "Kredi", "Balance", "Nxjerrje Llogarie", "Faqe :",
		"Teprica e mbartur", "Teprica që do te mbartet",
		"Shënim:", "Data e printimit", "Nga :", "Deri :", "Printuar për",
		"Monedha:", "Adresa :", "Tel:",
	},
}

// TiranaProfile describes Tirana Bank.
func TiranaProfile() *Profile {
	return &Profile{
		Bank:       models.BankTirana,
		Name:       "Tirana Bank",
		Aliases:    []string{"tirana", "tabank", "tirana bank"},
		Signatures: []string{"Teprica e mbartur"},
		Markers:    []string{"TIRANA BANK", "TABANK"},
		FileHints:  []string{"tibank", "tabank", "tirana"},
		PDF:        TiranaParser{},
		CSV:        TiranaParser{},
		Style: DescriptionStyle{
			Separator:       " ",
			DetailSeparator: " ",
		},
		DropOpeningRow: true,
	}
}

// ParsePDF implements PDFParser.
func (TiranaParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	text := strings.Join(lines, "\n")
	info.Summary.AccountNumber = firstGroup(tiranaAccount, text)
	info.Summary.OpeningBalance = normalize.NullAmount(firstGroup(tiranaCarried, text))
	info.Summary.ClosingBalance = normalize.NullAmount(firstGroup(tiranaClosing, text))
	if m := tiranaPeriod.FindStringSubmatch(text); m != nil {
		info.Summary.Period = m[1] + " - " + m[2]
	}

	for _, b := range tiranaScanner.scan(lines) {
		rest := b.match[2]
		c := models.Candidate{Line: b.line, Date: b.match[1], Details: b.tail}

		if m := tiranaDebit.FindStringSubmatchIndex(rest); m != nil {
			c.Debit = rest[m[2]:m[3]]
			c.Balance = rest[m[4]:m[5]]
			rest = rest[:m[0]]
		} else if m := tiranaCredit.FindStringSubmatchIndex(rest); m != nil {
			c.Credit = rest[m[2]:m[3]]
			c.Balance = rest[m[4]:m[5]]
			rest = rest[:m[0]]
		} else {
			info.Skip()
			continue
		}
		c.Fields = []string{strings.TrimSpace(rest)}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}

// ParseCSV implements CSVParser for the Date/Description/Debit/Credit export.
func (TiranaParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	h := findHeader(rows, 10, "Date", "Description")
	if h < 0 {
		return nil, fmt.Errorf("%w: header with Date and Description not found", models.ErrNoTransactions)
	}
	cols := headerColumns(rows[h])

	info := &models.StatementInfo{}
	for i, row := range rows[h+1:] {
		if blankRow(row) {
			continue
		}
		c := models.Candidate{
			Line:    h + i + 2,
			Date:    cols.get(row, "Date"),
			Fields:  []string{cols.get(row, "Description")},
			Debit:   cols.get(row, "Debit", "Debi"),
			Credit:  cols.get(row, "Credit", "Kredi"),
			Balance: cols.get(row, "Balance", "Balanca"),
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}
