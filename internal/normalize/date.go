// Package normalize turns the date and amount strings found in bank exports
// into ISO dates and decimal values.
package normalize

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ISODate is the output layout for every normalized date.
const ISODate = "2006-01-02"

// ErrUnparsedDate is wrapped by every date that matches no known layout.
var ErrUnparsedDate = errors.New("unrecognized date")

var (
	textDatePattern    = regexp.MustCompile(`^(\d{1,2})[\s./-]+(\p{L}{3,})\.?[\s./-]+(\d{4}|\d{2})$`)
	numericDatePattern = regexp.MustCompile(`^(\d{1,2})[./-](\d{1,2})[./-](\d{4}|\d{2})$`)
	isoDatePattern     = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})(?:[T\s].*)?$`)
)

// monthNames maps the first three letters of Albanian and English month
// names to calendar months.
var monthNames = map[string]time.Month{
	"jan": time.January,
	"shk": time.February, "feb": time.February,
	"mar": time.March,
	"pri": time.April, "apr": time.April,
	"maj": time.May, "may": time.May,
	"qer": time.June, "jun": time.June,
	"kor": time.July, "jul": time.July,
	"gus": time.August, "aug": time.August,
	"sht": time.September, "sep": time.September,
	"tet": time.October, "oct": time.October,
	"nën": time.November, "nen": time.November, "nov": time.November,
	"dhj": time.December, "dec": time.December,
}

var albanianMonths = [...]string{"Jan", "Shk", "Mar", "Pri", "Maj", "Qer", "Kor", "Gus", "Sht", "Tet", "Nën", "Dhj"}

// ParseDate parses the day-month-year layouts used by Albanian bank exports.
func ParseDate(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnparsedDate)
	}

	if m := isoDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(m[1], m[2], m[3], s)
	}
	if m := numericDatePattern.FindStringSubmatch(s); m != nil {
		return buildDate(m[3], m[2], m[1], s)
	}
	if m := textDatePattern.FindStringSubmatch(s); m != nil {
		month, ok := lookupMonth(m[2])
		if !ok {
			return time.Time{}, fmt.Errorf("%w: unknown month %q", ErrUnparsedDate, m[2])
		}
		return buildDate(m[3], strconv.Itoa(int(month)), m[1], s)
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsedDate, s)
}

func lookupMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	if utf8.RuneCountInString(name) > 3 {
		name = string([]rune(name)[:3])
	}
	m, ok := monthNames[name]
	return m, ok
}

func buildDate(year, month, day, original string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsedDate, original)
	}
	if len(year) == 2 {
		y += 2000
	}
	mo, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsedDate, original)
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsedDate, original)
	}

	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %q is not a calendar date", ErrUnparsedDate, original)
	}
	return t, nil
}

// Result is the outcome of normalizing one date field. An unparsed result
// keeps the source text and the reason so callers can decide what to do.
type Result struct {
	Value    time.Time
	Original string
	Err      error
}

// Parsed reports whether the source text matched a known layout.
func (r Result) Parsed() bool {
	return r.Err == nil
}

// String returns the ISO date, or the original text when unparsed.
func (r Result) String() string {
	if r.Parsed() {
		return r.Value.Format(ISODate)
	}
	return strings.TrimSpace(r.Original)
}

// NormalizeDate wraps ParseDate in a Result.
func NormalizeDate(s string) Result {
	t, err := ParseDate(s)
	return Result{Value: t, Original: s, Err: err}
}

// Layout names a source date layout that FormatDate can reproduce.
type Layout int

const (
	LayoutISO          Layout = iota // 2025-07-01
	LayoutAlbanianText               // 01 Kor 25 (Tirana Bank)
	LayoutEnglishDash                // 05-JAN-25 (BKT)
	LayoutEnglishDash4               // 05-JAN-2025 (Union Bank)
	LayoutDotted                     // 30.09.2025 (Credins, ProCredit, Raiffeisen)
	LayoutDottedShort                // 30.9.25 (Intesa)
	LayoutSlashShort                 // 1/9/25 (OTP)
)

// FormatDate renders t the way a given bank prints it.
func FormatDate(t time.Time, layout Layout) string {
	switch layout {
	case LayoutAlbanianText:
		return fmt.Sprintf("%02d %s %02d", t.Day(), albanianMonths[t.Month()-1], t.Year()%100)
	case LayoutEnglishDash:
		return strings.ToUpper(t.Format("02-Jan-06"))
	case LayoutEnglishDash4:
		return strings.ToUpper(t.Format("02-Jan-2006"))
	case LayoutDotted:
		return t.Format("02.01.2006")
	case LayoutDottedShort:
		return fmt.Sprintf("%d.%d.%02d", t.Day(), int(t.Month()), t.Year()%100)
	case LayoutSlashShort:
		return fmt.Sprintf("%d/%d/%02d", t.Day(), int(t.Month()), t.Year()%100)
	default:
		return t.Format(ISODate)
	}
}
