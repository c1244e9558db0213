package models

import "github.com/shopspring/decimal"

// Transaction is a single normalized statement line, ready for the CSV emitter.
type Transaction struct {
	Date        string              `json:"date"` // YYYY-MM-DD, or the source text when unparsed
	Description string              `json:"description"`
	Debit       decimal.Decimal     `json:"debit"`
	Credit      decimal.Decimal     `json:"credit"`
	Balance     decimal.NullDecimal `json:"balance"`
	Line        int                 `json:"line,omitempty"` // source line or row number
	DateParsed  bool                `json:"-"`
}

// HasAmount reports whether the transaction moves money.
func (t Transaction) HasAmount() bool {
	return !t.Debit.IsZero() || !t.Credit.IsZero()
}

// Candidate holds the raw fields a bank parser pulled out of one transaction.
// Nothing in it has been normalized yet.
type Candidate struct {
	Line      int
	Date      string
	Fields    []string // ordered description sub-fields (type, beneficiary, memo...)
	Details   []string // free-text continuation lines
	Reference string
	Debit     string
	Credit    string
	Balance   string
	// Signed is a single signed amount; negative means debit. Used when the
	// source has one amount column instead of debit/credit.
	Signed string
	// BalanceOnly marks opening-balance rows carrying no movement.
	BalanceOnly bool
}

// BankType identifies a supported bank statement format.
type BankType string

const (
	BankBKT        BankType = "bkt"
	BankTirana     BankType = "tibank"
	BankUnion      BankType = "union"
	BankOTP        BankType = "otp"
	BankCredins    BankType = "credins"
	BankProCredit  BankType = "procredit"
	BankPaysera    BankType = "paysera"
	BankRaiffeisen BankType = "raiffeisen"
	BankIntesa     BankType = "intesa"
)

// Format is the kind of source file a statement arrives in.
type Format string

const (
	FormatPDF Format = "pdf"
	FormatCSV Format = "csv"
)

// Summary is statement-level metadata. Not every bank provides all of it.
type Summary struct {
	AccountNumber    string              `json:"accountNumber,omitempty"`
	IBAN             string              `json:"iban,omitempty"`
	AccountHolder    string              `json:"accountHolder,omitempty"`
	Currency         string              `json:"currency,omitempty"`
	Period           string              `json:"period,omitempty"`
	OpeningBalance   decimal.NullDecimal `json:"openingBalance"`
	ClosingBalance   decimal.NullDecimal `json:"closingBalance"`
	TransactionCount int                 `json:"transactionCount"`
}

// StatementInfo is the parser output for one statement.
type StatementInfo struct {
	Bank         BankType
	Summary      Summary
	Candidates   []Candidate
	Transactions []Transaction
	// Skipped counts rows that looked like transactions but could not
	// produce a date and an amount.
	Skipped int
	// Warnings are data-quality notes that did not stop parsing.
	Warnings []string
}

// Skip records a row that could not be turned into a candidate.
func (s *StatementInfo) Skip() {
	s.Skipped++
}
