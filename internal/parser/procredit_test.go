package parser

import (
	"errors"
	"testing"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

func TestProCreditParser_ParsePDF(t *testing.T) {
	lines := []string{
		"PROCREDIT BANK",
		"Nr", "Nr.Trans", "Data", "Debit", "Kredit", "Bilanci", "Tipi i Veprimit",
		"Komente mbi  Veprimin",
		"1", "5001", "05.01.2025", "100.00", "0.00", "900.00", "Pagese", "Fature OSHEE",
		"",
		"2", "5002", "06.01.2025", "0.00", "300.00", "1200.00", "Depozite",
		"3", "5003", "07.01.2025", "5.00",
	}

	info, err := ProCreditParser{}.ParsePDF(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Candidates) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(info.Candidates))
	}
	if info.Skipped != 1 {
		t.Errorf("skipped: got %d, want 1 for the truncated row", info.Skipped)
	}
	checkCandidate(t, info.Candidates[0], models.Candidate{
		Date: "05.01.2025", Fields: []string{"Pagese Fature OSHEE"}, Debit: "100.00", Credit: "0.00", Balance: "900.00",
	})
	checkCandidate(t, info.Candidates[1], models.Candidate{
		Date: "06.01.2025", Fields: []string{"Depozite"}, Debit: "0.00", Credit: "300.00", Balance: "1200.00",
	})
}

func TestProCreditParser_DescriptionCap(t *testing.T) {
	lines := []string{"Komente mbi Veprimin", "1", "7", "05.01.2025", "1.00", "0.00", "9.00"}
	for i := 0; i < 30; i++ {
		lines = append(lines, "w")
	}
	info, err := ProCreditParser{}.ParsePDF(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Candidates) != 1 {
		t.Fatalf("candidates: got %d, want 1", len(info.Candidates))
	}
	if got := len(info.Candidates[0].Fields[0]); got != 2*procreditMaxDescTokens-1 {
		t.Errorf("description length: got %d, want %d", got, 2*procreditMaxDescTokens-1)
	}
}

func TestProCreditParser_NoTable(t *testing.T) {
	_, err := ProCreditParser{}.ParsePDF([]string{"PROCREDIT BANK", "nothing here"})
	if !errors.Is(err, models.ErrNoTransactions) {
		t.Errorf("got %v, want ErrNoTransactions", err)
	}
}
