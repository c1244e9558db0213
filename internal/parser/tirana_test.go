package parser

import (
	"testing"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

func TestTiranaParser_ParsePDF(t *testing.T) {
	lines := []string{
		"TIRANA BANK",
		"Numri i llogarisë: 0401234567",
		"Nga : 01 Kor 25 Deri : 31 Kor 25",
		"Teprica e mbartur: 55,923.15",
		"07:51   01 Kor 25 01 Kor 25 PAGESE FATURE -22,000.00  33,923.15",
		"OSHEE",
		"09:10 02 Kor 25 02 Kor 25 TRANSFERTE HYRESE 1,000.00 34,923.15",
		"Faqe : 1",
		"10:00 03 Kor 25 03 Kor 25 PA SHUMË",
		"Teprica që do te mbartet: 34,923.15",
	}

	info, err := TiranaParser{}.ParsePDF(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Summary.AccountNumber != "0401234567" {
		t.Errorf("account: got %q", info.Summary.AccountNumber)
	}
	if got := info.Summary.OpeningBalance.Decimal.StringFixed(2); got != "55923.15" {
		t.Errorf("opening: got %s", got)
	}
	if got := info.Summary.ClosingBalance.Decimal.StringFixed(2); got != "34923.15" {
		t.Errorf("closing: got %s", got)
	}
	if info.Summary.Period != "01 Kor 25 - 31 Kor 25" {
		t.Errorf("period: got %q", info.Summary.Period)
	}

	if len(info.Candidates) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(info.Candidates))
	}
	if info.Skipped != 1 {
		t.Errorf("skipped: got %d, want 1", info.Skipped)
	}
	checkCandidate(t, info.Candidates[0], models.Candidate{
		Line:    5,
		Date:    "01 Kor 25",
		Fields:  []string{"PAGESE FATURE"},
		Details: []string{"OSHEE"},
		Debit:   "22,000.00",
		Balance: "33,923.15",
	})
	checkCandidate(t, info.Candidates[1], models.Candidate{
		Line:    7,
		Date:    "02 Kor 25",
		Fields:  []string{"TRANSFERTE HYRESE"},
		Credit:  "1,000.00",
		Balance: "34,923.15",
	})
}

func TestTiranaParser_ParseCSV(t *testing.T) {
	rows := [][]string{
		{"Date", "Description", "Debit", "Credit"},
		{"01/02/2025", "Qera", "500.00", ""},
		{"", "", "", ""},
		{"02/02/2025", "Arketim", "", "1,200.00"},
	}
	info, err := TiranaParser{}.ParseCSV(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Candidates) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(info.Candidates))
	}
	checkCandidate(t, info.Candidates[0], models.Candidate{Line: 2, Date: "01/02/2025", Fields: []string{"Qera"}, Debit: "500.00"})
	checkCandidate(t, info.Candidates[1], models.Candidate{Line: 4, Date: "02/02/2025", Fields: []string{"Arketim"}, Credit: "1,200.00"})
}
