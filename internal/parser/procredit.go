package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// ProCreditParser handles ProCredit Bank exports. The PDF text comes out
// one table cell per line:
//
//	Nr  Nr.Trans  Data  Debit  Kredit  Bilanci  Tipi i Veprimit  Komente mbi Veprimin
type ProCreditParser struct{}

const procreditMaxDescTokens = 20

var (
	procreditRowNumber = regexp.MustCompile(`^\d{1,3}$`)
	procreditDate      = regexp.MustCompile(`^\d{2}\.\d{2}\.\d{4}$`)
)

// ProCreditProfile describes ProCredit Bank.
func ProCreditProfile() *Profile {
	return &Profile{
		Bank:       models.BankProCredit,
		Name:       "ProCredit",
		Aliases:    []string{"procredit bank", "pcb"},
		Signatures: []string{"Komente mbi Veprimin"},
		Markers:    []string{"PROCREDIT"},
		FileHints:  []string{"procredit"},
		PDF:        ProCreditParser{},
		CSV:        ProCreditParser{},
		Style: DescriptionStyle{
			Separator: " | ",
			Fallback:  "Transaction",
		},
		KeepBalance: true,
	}
}

// ParseCSV implements CSVParser.
func (ProCreditParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	return parseLedgerRows(rows)
}

// ParsePDF implements PDFParser.
func (ProCreditParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	var tokens []string
	start := -1
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" {
			continue
		}
		if start < 0 && collapseSpaces(t) == "Komente mbi Veprimin" {
			start = len(tokens) + 1
		}
		tokens = append(tokens, t)
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: table header \"Komente mbi Veprimin\" not found", models.ErrNoTransactions)
	}

	rowStart := func(i int) bool {
		return i+2 < len(tokens) && procreditRowNumber.MatchString(tokens[i]) && procreditDate.MatchString(tokens[i+2])
	}

	info := &models.StatementInfo{}
	for i := start; i < len(tokens); {
		if !rowStart(i) {
			i++
			continue
		}
		if i+5 >= len(tokens) {
			// truncated last row
			info.Skip()
			break
		}

		c := models.Candidate{
			Line:    i + 1,
			Date:    tokens[i+2],
			Debit:   tokens[i+3],
			Credit:  tokens[i+4],
			Balance: tokens[i+5],
		}
		j := i + 6
		var desc []string
		for j < len(tokens) && !rowStart(j) && len(desc) < procreditMaxDescTokens {
			desc = append(desc, tokens[j])
			j++
		}
		c.Fields = []string{strings.Join(desc, " ")}
		info.Candidates = append(info.Candidates, c)
		i = j
	}
	return info, nil
}
