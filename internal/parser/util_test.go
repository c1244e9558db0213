package parser

import (
	"regexp"
	"strings"
	"testing"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// checkCandidate compares the parts of a candidate a strategy fills in.
// Line is only compared when want sets it.
func checkCandidate(t *testing.T, got, want models.Candidate) {
	t.Helper()
	join := func(s []string) string { return strings.Join(s, "|") }
	if want.Line != 0 && got.Line != want.Line {
		t.Errorf("line: got %d, want %d", got.Line, want.Line)
	}
	if got.Date != want.Date {
		t.Errorf("date: got %q, want %q", got.Date, want.Date)
	}
	if join(got.Fields) != join(want.Fields) {
		t.Errorf("fields: got %q, want %q", got.Fields, want.Fields)
	}
	if join(got.Details) != join(want.Details) {
		t.Errorf("details: got %q, want %q", got.Details, want.Details)
	}
	if got.Reference != want.Reference {
		t.Errorf("reference: got %q, want %q", got.Reference, want.Reference)
	}
	if got.Debit != want.Debit || got.Credit != want.Credit || got.Signed != want.Signed {
		t.Errorf("amounts: got debit %q credit %q signed %q, want %q %q %q",
			got.Debit, got.Credit, got.Signed, want.Debit, want.Credit, want.Signed)
	}
	if got.Balance != want.Balance {
		t.Errorf("balance: got %q, want %q", got.Balance, want.Balance)
	}
	if got.BalanceOnly != want.BalanceOnly {
		t.Errorf("balance only: got %v, want %v", got.BalanceOnly, want.BalanceOnly)
	}
}

func TestAssignAmounts(t *testing.T) {
	tests := []struct {
		name    string
		amounts []string
		isDebit bool
		want    models.Candidate
		ok      bool
	}{
		{"none", nil, false, models.Candidate{}, false},
		{"balance only", []string{"10000.00"}, false, models.Candidate{Balance: "10000.00", BalanceOnly: true}, true},
		{"debit", []string{"100.00", "9900.00"}, true, models.Candidate{Debit: "100.00", Balance: "9900.00"}, true},
		{"credit", []string{"100.00", "9900.00"}, false, models.Candidate{Credit: "100.00", Balance: "9900.00"}, true},
		{"three columns", []string{"1.00", "2.00", "3.00"}, false, models.Candidate{Debit: "1.00", Credit: "2.00", Balance: "3.00"}, true},
		{"four uses last as balance", []string{"1.00", "2.00", "9.99", "3.00"}, true, models.Candidate{Debit: "1.00", Credit: "2.00", Balance: "3.00"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c models.Candidate
			if ok := assignAmounts(&c, tt.amounts, tt.isDebit); ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			checkCandidate(t, c, tt.want)
		})
	}
}

func TestLineScanner(t *testing.T) {
	s := lineScanner{
		start:     regexp.MustCompile(`^(\d{2})\s+`),
		window:    3,
		stopWords: []string{"FOOTER"},
		ignore:    func(l string) bool { return strings.HasPrefix(l, "#") },
	}
	lines := []string{
		"header",
		"01 first",
		"a",
		"# comment",
		"",
		"b",
		"c",
		"02 second",
		"x",
		"FOOTER page 1",
		"y",
		"03 third",
		"-------",
		"z",
	}

	blocks := s.scan(lines)
	if len(blocks) != 3 {
		t.Fatalf("blocks: got %d, want 3", len(blocks))
	}

	tests := []struct {
		line int
		rest string
		tail string
	}{
		{2, "first", "a"}, // window of 3 stops before b
		{8, "second", "x"},
		{12, "third", ""},
	}
	for i, tt := range tests {
		b := blocks[i]
		if b.line != tt.line {
			t.Errorf("block %d line: got %d, want %d", i, b.line, tt.line)
		}
		if b.rest() != tt.rest {
			t.Errorf("block %d rest: got %q, want %q", i, b.rest(), tt.rest)
		}
		if got := strings.Join(b.tail, ","); got != tt.tail {
			t.Errorf("block %d tail: got %q, want %q", i, got, tt.tail)
		}
	}
}

func TestFindHeader(t *testing.T) {
	rows := [][]string{
		{"Account statement"},
		{"\ufeffDate", " Description ", "\"Amount\""},
		{"01/01/2025", "Rent", "-5.00"},
	}

	if got := findHeader(rows, 10, "date", "AMOUNT"); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
	if got := findHeader(rows, 1, "Date"); got != -1 {
		t.Errorf("limit: got %d, want -1", got)
	}
	if got := findHeader(rows, 10, "Balance"); got != -1 {
		t.Errorf("missing column: got %d, want -1", got)
	}

	cols := headerColumns(rows[1])
	if got := cols.get(rows[2], "Missing", "Description"); got != "Rent" {
		t.Errorf("get: got %q, want %q", got, "Rent")
	}
	if got := cols.get([]string{"x"}, "Amount"); got != "" {
		t.Errorf("short row: got %q, want empty", got)
	}
}

func TestHasKeywordPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"COMMISSION REF1", true},
		{"commission ref1", true},
		{"Pagese per energjine", true},
		{"INCOMING TRANSFER", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := hasKeywordPrefix(tt.in, bktDebitKinds); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBlankRow(t *testing.T) {
	if !blankRow([]string{"", "  ", "\t"}) {
		t.Error("expected blank")
	}
	if blankRow([]string{"", "x"}) {
		t.Error("expected non-blank")
	}
}
