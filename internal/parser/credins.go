package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// CredinsParser handles Banka Credins exports. The CSV has a header with
// RecordNumber and ValueDate; the PDF is the same table printed as
// comma-separated text, one record per line with wrapped descriptions.
type CredinsParser struct{}

var credinsRecordStart = regexp.MustCompile(`^\d+,\d+,\d{2}\.\d{2}\.\d{4},`)

// CredinsProfile describes Banka Credins.
func CredinsProfile() *Profile {
	return &Profile{
		Bank:      models.BankCredins,
		Name:      "Credins",
		Aliases:   []string{"banka credins"},
		Markers:   []string{"CREDINS"},
		FileHints: []string{"credins"},
		PDF:       CredinsParser{},
		CSV:       CredinsParser{},
		Style: DescriptionStyle{
			Separator: " | ",
			Fallback:  "Transaction",
		},
		KeepBalance: true,
	}
}

// ParseCSV implements CSVParser.
func (CredinsParser) ParseCSV(rows [][]string) (*models.StatementInfo, error) {
	return parseLedgerRows(rows)
}

// ParsePDF implements PDFParser. Wrapped lines are glued back onto their
// record before each record is read as CSV.
func (CredinsParser) ParsePDF(lines []string) (*models.StatementInfo, error) {
	var records []string
	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		switch {
		case credinsRecordStart.MatchString(line):
			records = append(records, line)
		case len(records) > 0 && line != "":
			records[len(records)-1] += " " + line
		}
	}

	info := &models.StatementInfo{}
	for i, rec := range records {
		r := csv.NewReader(strings.NewReader(rec))
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		fields, err := r.Read()
		if err != nil && err != io.EOF {
			info.Skip()
			continue
		}
		if len(fields) < 6 {
			info.Skip()
			continue
		}
		c := models.Candidate{
			Line:    i + 1,
			Date:    fields[2],
			Debit:   fields[3],
			Credit:  fields[4],
			Balance: fields[5],
		}
		if len(fields) > 6 {
			c.Fields = append(c.Fields, fields[6])
		}
		if len(fields) > 7 {
			c.Fields = append(c.Fields, strings.Join(fields[7:], ","))
		}
		info.Candidates = append(info.Candidates, c)
	}
	return info, nil
}

// parseLedgerRows reads the RecordNumber/ValueDate export shared by Credins
// and ProCredit: Amount is the debit, Amount1 the credit.
func parseLedgerRows(rows [][]string) (*models.StatementInfo, error) {
	h := findHeader(rows, 10, "RecordNumber", "ValueDate")
	if h < 0 {
		return nil, fmt.Errorf("%w: header with RecordNumber and ValueDate not found", models.ErrNoTransactions)
	}
	cols := headerColumns(rows[h])

	info := &models.StatementInfo{}
	for i, row := range rows[h+1:] {
		if blankRow(row) {
			continue
		}
		info.Candidates = append(info.Candidates, models.Candidate{
			Line:    h + i + 2,
			Date:    cols.get(row, "ValueDate"),
			Fields:  []string{cols.get(row, "TransactionType"), cols.get(row, "Description1")},
			Debit:   cols.get(row, "Amount"),
			Credit:  cols.get(row, "Amount1"),
			Balance: cols.get(row, "BalanceAfter"),
		})
	}
	return info, nil
}
