package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// OTPParser handles OTP Bank Albania statements.
//
// The PDF card statement lists only outgoing payments: each line starts
// with the posting date, the amount uses a space for thousands and a comma
// for decimals, and an optional transaction date ends the amount line.
type OTPParser struct{}

var (
	otpStart     = regexp.MustCompile(`^(\d{1,2}/\d{1,2}/\d{2})\s+(.*)$`)
	otpAmount    = regexp.MustCompile(`\d{1,3}(?:\s\d{3})*,\d{2}`)
	otpTransDate = regexp.MustCompile(`(\d{1,2}/\d{1,2}/\d{2})\s*$`)
	otpAccount   = regexp.MustCompile(`(?i)(?:Account|Llogaria)(?: number| nr\.?)?\s*:\s*(\S+)`)
)

// OTPProfile describes OTP Bank.
func OTPProfile() *Profile {
	return &Profile{
		Bank:      models.BankOTP,
		Name:      "OTP Bank",
		Aliases:   []string{"otp bank", "otpbank"},
		Markers:   []string{"OTP BANK"},
		FileHints: []string{"otp"},
		PDF:       OTPParser{},
		CSV:       OTPParser{},
		Style: DescriptionStyle{
			Separator:       " - ",
			DetailSeparator: " ",
		},
	}
}

// ParsePDF implements PDFParser.
func (OTPParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	info := &models.StatementInfo{}
	info.Summary.AccountNumber = firstGroup(otpAccount, strings.Join(lines, "\n"))

	for i := 0; i < len(lines); i++ {
		m := otpStart.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}
		c := models.Candidate{Line: i + 1, Date: m[1]}

		found := false
		for j := i; j < len(lines) && j < i+10; j++ {
			check := strings.TrimSpace(lines[j])
			if j == i {
				check = m[2]
			} else if otpStart.MatchString(check) {
				break
			}

			loc := lastIndex(otpAmount, check)
			if loc == nil {
				if check != "" {
					c.Details = append(c.Details, check)
				}
				continue
			}

			if td := otpTransDate.FindStringSubmatch(check); td != nil {
				c.Date = td[1]
			}
			if desc := strings.TrimSpace(check[:loc[0]]); desc != "" {
				c.Details = append(c.Details, desc)
			}
			c.Debit = check[loc[0]:loc[1]]
			found = true
			i = j
			break
		}

		if !found || len(c.Details) == 0 {
			info.Skip()
			continue
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}

func lastIndex(re *regexp.Regexp, s string) []int {
	all := re.FindAllStringIndex(s, -1)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// ParseCSV implements CSVParser. The export has free-form lines before a
// header row whose first cell is "Transaction date"; data columns are
// date, beneficiary, inflow, outflow, details.
func (OTPParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	h := -1
	for i, row := range rows {
		if len(row) > 0 && strings.Contains(headerKey(row[0]), "transaction date") {
			h = i
			break
		}
	}
	if h < 0 {
		return nil, fmt.Errorf("%w: header starting with \"Transaction date\" not found", models.ErrNoTransactions)
	}

	info := &models.StatementInfo{}
	for i, row := range rows[h+1:] {
		if blankRow(row) {
			continue
		}
		cell := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}
		info.Candidates = append(info.Candidates, models.Candidate{
			Line:   h + i + 2,
			Date:   cell(0),
			Fields: []string{cell(1), cell(4)},
			Credit: cell(2),
			Debit:  cell(3),
		})
	}
	return info, nil
}
