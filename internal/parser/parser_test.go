package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/source"
)

func TestRegistry_Detect(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name    string
		path    string
		text    string
		want    models.BankType
		wantErr bool
	}{
		{"file name wins over content", "/in/raiffeisen_jan.csv", "BANKA KOMBETARE TREGTARE", models.BankRaiffeisen, false},
		{"bkt content", "statement.pdf", "BANKA KOMBETARE TREGTARE\nAccountNo: 1", models.BankBKT, false},
		{"tirana content", "statement.pdf", "Nxjerrje Llogarie\nTeprica e mbartur: 1,000.00", models.BankTirana, false},
		{"union content", "statement.pdf", "01-JAN-2025 BALANCA E FILLIMIT 10.00", models.BankUnion, false},
		{"otp content", "statement.pdf", "otp bank albania", models.BankOTP, false},
		{"credins content", "statement.csv", "Banka Credins sh.a.", models.BankCredins, false},
		{"procredit content", "statement.pdf", "Nr\nKomente mbi Veprimin", models.BankProCredit, false},
		{"paysera content", "statement.csv", "Paysera LT, UAB", models.BankPaysera, false},
		{"raiffeisen content", "statement.csv", "No,Value Date,Beneficairy/Ordering name", models.BankRaiffeisen, false},
		{"intesa content", "statement.csv", "Data,Përshkrimi,Numri i referencës", models.BankIntesa, false},
		{"intesa file name", "ISP_intesa_export.csv", "", models.BankIntesa, false},
		{"tirana file name", "TIBANK 2025-01.pdf", "", models.BankTirana, false},
		{"unknown", "statement.pdf", "Some other text", "", true},
		{
			name: "bkt layout before a bank named in a memo",
			path: "statement_jan.pdf",
			text: "BANKA KOMBETARE TREGTARE\nAccountNo: 0012345\n01-JAN-25 TRANSFER REF1 100.00 9900.00\nTo RAIFFEISEN BANK ALBANIA",
			want: models.BankBKT,
		},
		{
			name: "union pdf naming a csv-only bank",
			path: "statement_jan.pdf",
			text: "UNION BANK\n02-JAN-2025 Transferte nga INTESA SANPAOLO BANK",
			want: models.BankUnion,
		},
		{
			name: "earliest bank name wins",
			path: "statement.csv",
			text: "Paysera LT, UAB\nTransfer to Banka Credins",
			want: models.BankPaysera,
		},
		{"csv-only bank name in a pdf", "statement.pdf", "INTESA SANPAOLO", "", true},
		{"csv-only file hint on a pdf", "ISP_intesa_export.pdf", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, _ := source.FormatOf(tt.path)
			p, err := r.Detect(tt.path, format, tt.text)
			if tt.wantErr {
				if !errors.Is(err, models.ErrUnknownBank) {
					t.Errorf("got %v, want ErrUnknownBank", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Bank != tt.want {
				t.Errorf("got %q, want %q", p.Bank, tt.want)
			}
		})
	}
}

func TestRegistry_Lookup(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name string
		want models.BankType
	}{
		{"bkt", models.BankBKT},
		{"BKT", models.BankBKT},
		{" tibank ", models.BankTirana},
		{"Tirana Bank", models.BankTirana},
		{"rai", models.BankRaiffeisen},
		{"isp", models.BankIntesa},
		{"pcb", models.BankProCredit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := r.Lookup(tt.name)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Bank != tt.want {
				t.Errorf("got %q, want %q", p.Bank, tt.want)
			}
		})
	}

	_, err := r.Lookup("hsbc")
	if !errors.Is(err, models.ErrUnknownBank) {
		t.Fatalf("got %v, want ErrUnknownBank", err)
	}
	if !strings.Contains(err.Error(), "raiffeisen") {
		t.Errorf("error should list supported banks: %v", err)
	}
}

func TestRegistry_Names(t *testing.T) {
	got := strings.Join(DefaultRegistry().Names(), ",")
	want := "bkt,credins,intesa,otp,paysera,procredit,raiffeisen,tibank,union"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRegistry_Configure(t *testing.T) {
	r := DefaultRegistry()
	if err := r.Configure(models.BankBKT, func(p *Profile) { p.KeepBalance = true }); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, _ := r.Lookup("bkt")
	if !p.KeepBalance {
		t.Error("configure did not change the profile")
	}
	if other := DefaultRegistry(); mustLookup(t, other, "bkt").KeepBalance {
		t.Error("profiles must not be shared between registries")
	}
	if err := r.Configure("nope", func(*Profile) {}); !errors.Is(err, models.ErrUnknownBank) {
		t.Errorf("got %v, want ErrUnknownBank", err)
	}
}

func mustLookup(t *testing.T, r *Registry, name string) *Profile {
	t.Helper()
	p, err := r.Lookup(name)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestProfile_Formats(t *testing.T) {
	r := DefaultRegistry()
	tests := []struct {
		bank string
		want string
	}{
		{"bkt", "pdf"},
		{"intesa", "csv"},
		{"union", "pdf,csv"},
	}
	for _, tt := range tests {
		t.Run(tt.bank, func(t *testing.T) {
			var got []string
			for _, f := range mustLookup(t, r, tt.bank).Formats() {
				got = append(got, string(f))
			}
			if strings.Join(got, ",") != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProfile_Parse(t *testing.T) {
	r := DefaultRegistry()

	csvDoc := &source.Document{
		Format:    models.FormatCSV,
		Delimiter: ',',
		Rows: [][]string{
			{"Date", "Description", "Amount"},
			{"02/01/2025", "Rent", "-500.00"},
		},
	}
	info, err := mustLookup(t, r, "union").Parse(csvDoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Bank != models.BankUnion {
		t.Errorf("bank: got %q, want %q", info.Bank, models.BankUnion)
	}
	if len(info.Candidates) != 1 {
		t.Errorf("candidates: got %d, want 1", len(info.Candidates))
	}

	if _, err := mustLookup(t, r, "bkt").Parse(csvDoc); !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Errorf("bkt csv: got %v, want ErrUnsupportedFormat", err)
	}
	pdfDoc := &source.Document{Format: models.FormatPDF, Pages: []string{"nothing"}}
	if _, err := mustLookup(t, r, "intesa").Parse(pdfDoc); !errors.Is(err, models.ErrUnsupportedFormat) {
		t.Errorf("intesa pdf: got %v, want ErrUnsupportedFormat", err)
	}

	_, err = mustLookup(t, r, "paysera").Parse(csvDoc)
	if !errors.Is(err, models.ErrNoTransactions) {
		t.Errorf("wrong header: got %v, want ErrNoTransactions", err)
	}
}
