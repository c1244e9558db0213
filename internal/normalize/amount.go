package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrEmptyAmount means the field was blank once currency and spacing
	// were removed. Callers treat it as an absent amount.
	ErrEmptyAmount = errors.New("empty amount")
	// ErrUnparsedAmount means the field held something other than a number.
	ErrUnparsedAmount = errors.New("unrecognized amount")
)

var (
	currencyPattern = regexp.MustCompile(`(?i)ALL|EUR|USD|LEK|€|\$`)
	plainNumber     = regexp.MustCompile(`^\d+(\.\d+)?$`)
	spaceReplacer   = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "\t", "", "'", "")
)

// ParseAmount converts a bank amount string into a signed decimal.
//
// Both "1.234,56" and "1,234.56" are accepted: when both separators appear
// the later one is the decimal point. With a single kind of separator it is
// a decimal point only when exactly two digits follow it. Parentheses and a
// leading or trailing minus make the value negative.
func ParseAmount(s string) (decimal.Decimal, error) {
	original := s
	s = currencyPattern.ReplaceAllString(strings.TrimSpace(s), "")
	s = spaceReplacer.Replace(s)

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	switch {
	case strings.HasPrefix(s, "-"):
		negative = !negative
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	case strings.HasSuffix(s, "-"):
		negative = !negative
		s = s[:len(s)-1]
	}

	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}

	s = canonicalSeparators(s)
	if !plainNumber.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsedAmount, original)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrUnparsedAmount, original)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// canonicalSeparators rewrites s so that '.' is the only separator left and
// marks the decimal point.
func canonicalSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			return strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		return singleSeparator(s, ",", lastComma)
	case lastDot >= 0:
		return singleSeparator(s, ".", lastDot)
	}
	return s
}

func singleSeparator(s, sep string, last int) string {
	if len(s)-last-1 == 2 {
		return strings.ReplaceAll(s[:last], sep, "") + "." + s[last+1:]
	}
	return strings.ReplaceAll(s, sep, "")
}

// AmountOrZero parses s and returns zero for blank or malformed input.
// The second result is false when s was not a usable number.
func AmountOrZero(s string) (decimal.Decimal, bool) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// NullAmount parses s into a NullDecimal that is invalid when s is blank
// or not a number.
func NullAmount(s string) decimal.NullDecimal {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
