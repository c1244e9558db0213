package parser

import (
	"testing"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

func TestOTPParser_ParsePDF(t *testing.T) {
	lines := []string{
		"OTP BANK ALBANIA",
		"Account number: 12345678",
		"5/1/25 SUPERMARKET TIRANA 1 234,50 4/1/25",
		"12/1/25 PETROL STATION",
		"DURRES 45,00",
		"13/1/25 NO AMOUNT",
	}

	info, err := OTPParser{}.ParsePDF(lines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Summary.AccountNumber != "12345678" {
		t.Errorf("account: got %q", info.Summary.AccountNumber)
	}
	if len(info.Candidates) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(info.Candidates))
	}
	if info.Skipped != 1 {
		t.Errorf("skipped: got %d, want 1", info.Skipped)
	}

	// the transaction date at the end of the line replaces the posting date
	checkCandidate(t, info.Candidates[0], models.Candidate{
		Line:    3,
		Date:    "4/1/25",
		Details: []string{"SUPERMARKET TIRANA"},
		Debit:   "1 234,50",
	})
	checkCandidate(t, info.Candidates[1], models.Candidate{
		Line:    4,
		Date:    "12/1/25",
		Details: []string{"PETROL STATION", "DURRES"},
		Debit:   "45,00",
	})
}

func TestOTPParser_ParseCSV(t *testing.T) {
	rows := [][]string{
		{"OTP Bank Albania"},
		{"Account", "123"},
		{"Transaction date", "Beneficiary", "Inflow", "Outflow", "Details"},
		{"01/02/2025", "ACME", "", "150.00", "Invoice 7"},
		{"02/02/2025", "Client", "300.00", "", "Payment"},
	}
	info, err := OTPParser{}.ParseCSV(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(info.Candidates) != 2 {
		t.Fatalf("candidates: got %d, want 2", len(info.Candidates))
	}
	checkCandidate(t, info.Candidates[0], models.Candidate{Line: 4, Date: "01/02/2025", Fields: []string{"ACME", "Invoice 7"}, Debit: "150.00"})
	checkCandidate(t, info.Candidates[1], models.Candidate{Line: 5, Date: "02/02/2025", Fields: []string{"Client", "Payment"}, Credit: "300.00"})

	if got := OTPProfile().Style.Merge(info.Candidates[0]); got != "ACME - Invoice 7" {
		t.Errorf("description: got %q", got)
	}
}
