package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/normalize"
)

// BKTParser handles Banka Kombëtare Tregtare PDF statements:
//
//	01-JAN-25 COMMISSION REF1 100.00 9900.00
//	Monthly account maintenance
type BKTParser struct{}

var (
	bktStart   = regexp.MustCompile(`^(\d{2}-[A-Z]{3}-\d{2})\s+(.+)$`)
	bktAmount  = regexp.MustCompile(`^[\d,.]+$`)
	bktDate    = regexp.MustCompile(`^\d{2}[-./][A-Za-z]{3}[-./]\d{2,4}$|^\d{2}[-./]\d{2}[-./]\d{2,4}$`)
	bktIBAN    = regexp.MustCompile(`IBAN[:\s]+([A-Z]{2}\d{2}[A-Z0-9]{10,30})`)
	bktAccount = regexp.MustCompile(`AccountNo:\s*(\S+)`)
	bktOpening = regexp.MustCompile(`OPENING BALANCE:?\s*([\d,.]+)`)
	bktClosing = regexp.MustCompile(`CLOSING BALANCE:?\s*([\d,.]+)`)
	bktHolder  = regexp.MustCompile(`(?:Customer|Klienti|Emri)\s*:\s*(.+)`)
)

// Transaction kinds BKT prints for money leaving the account.
var bktDebitKinds = []string{
	"COMMISSION", "TRANSFER", "CASH WITHDRAWAL", "UTILITY PAYMENT",
	"ACCOUNT TO ACCOUNT", "PAGESE PER", "KOMISION PER",
}

var bktScanner = lineScanner{
	start:     bktStart,
	window:    15,
	stopWords: []string{"---", "PAGE NO", "AccountNo:"},
	ignore: func(line string) bool {
		return strings.HasPrefix(line, "Shënim:") || utf8.RuneCountInString(line) <= 3
	},
}

// BKTProfile describes BKT.
func BKTProfile() *Profile {
	return &Profile{
		Bank:       models.BankBKT,
		Name:       "BKT",
		Aliases:    []string{"banka kombetare tregtare"},
		Signatures: []string{"BANKA KOMBETARE TREGTARE"},
		Markers:    []string{"BKT"},
		FileHints:  []string{"bkt"},
		PDF:        BKTParser{},
		Style: DescriptionStyle{
			Separator:       " - ",
			DetailSeparator: " | ",
			MaxDetails:      5,
		},
		DropOpeningRow: true,
	}
}

// ParsePDF implements PDFParser.
func (BKTParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	text := strings.Join(lines, "\n")
	info.Summary.IBAN = firstGroup(bktIBAN, text)
	info.Summary.AccountNumber = firstGroup(bktAccount, text)
	info.Summary.AccountHolder = firstGroup(bktHolder, text)
	info.Summary.OpeningBalance = normalize.NullAmount(firstGroup(bktOpening, text))
	info.Summary.ClosingBalance = normalize.NullAmount(firstGroup(bktClosing, text))

	for _, b := range bktScanner.scan(lines) {
		var words, amounts []string
		for _, tok := range strings.Fields(b.match[2]) {
			switch {
			case bktDate.MatchString(tok):
				// value date
			case bktAmount.MatchString(tok) && strings.Contains(tok, "."):
				amounts = append(amounts, tok)
			default:
				words = append(words, tok)
			}
		}

		c := models.Candidate{Line: b.line, Date: b.match[1], Details: b.tail}
		if len(words) > 0 {
			c.Fields = append(c.Fields, words[0])
		}
		if len(words) > 1 {
			c.Fields = append(c.Fields, strings.Join(words[1:], " "))
		}

		if !assignAmounts(&c, amounts, hasKeywordPrefix(strings.Join(words, " "), bktDebitKinds)) {
			info.Skip()
			continue
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}
