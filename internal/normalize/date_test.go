package normalize

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"01 Kor 25", "2025-07-01"},
		{"30.9.25", "2025-09-30"},
		{"05-JAN-25", "2025-01-05"},
		{"05-JAN-2025", "2025-01-05"},
		{"12 Nën 24", "2024-11-12"},
		{"12 Nen 24", "2024-11-12"},
		{"03 Shk 2025", "2025-02-03"},
		{"15 Dhj 24", "2024-12-15"},
		{"07 Sht 25", "2025-09-07"},
		{"1 Korrik 2025", "2025-07-01"},
		{"02 Sep 25", "2025-09-02"},
		{"14.03.2025", "2025-03-14"},
		{"14/03/2025", "2025-03-14"},
		{"14-03-2025", "2025-03-14"},
		{"1/9/25", "2025-09-01"},
		{"2025-10-02", "2025-10-02"},
		{"2025-10-02 14:13:29 +0200", "2025-10-02"},
		{"  01  Kor   25 ", "2025-07-01"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Format(ISODate) != tt.want {
				t.Errorf("ParseDate(%q): got %q, want %q", tt.input, got.Format(ISODate), tt.want)
			}
		})
	}
}

func TestParseDate_Invalid(t *testing.T) {
	tests := []string{
		"",
		"not a date",
		"31.02.2025",
		"01 Xyz 25",
		"32/01/2025",
		"Teprica e mbartur",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input)
			if !errors.Is(err, ErrUnparsedDate) {
				t.Errorf("ParseDate(%q): got err %v, want ErrUnparsedDate", input, err)
			}
		})
	}
}

func TestNormalizeDate_Unparsed(t *testing.T) {
	r := NormalizeDate("sometime in July")
	if r.Parsed() {
		t.Fatal("expected unparsed result")
	}
	if r.String() != "sometime in July" {
		t.Errorf("got %q, want original text back", r.String())
	}
	if !errors.Is(r.Err, ErrUnparsedDate) {
		t.Errorf("got reason %v, want ErrUnparsedDate", r.Err)
	}

	r = NormalizeDate("01 Kor 25")
	if !r.Parsed() || r.String() != "2025-07-01" {
		t.Errorf("got %q (parsed=%v), want 2025-07-01", r.String(), r.Parsed())
	}
}

func TestFormatDate_RoundTrip(t *testing.T) {
	layouts := []Layout{
		LayoutISO,
		LayoutAlbanianText,
		LayoutEnglishDash,
		LayoutEnglishDash4,
		LayoutDotted,
		LayoutDottedShort,
		LayoutSlashShort,
	}

	start := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 365; day += 17 {
		d := start.AddDate(0, 0, day)
		want := NormalizeDate(d.Format(ISODate)).String()
		for _, layout := range layouts {
			src := FormatDate(d, layout)
			if got := NormalizeDate(src).String(); got != want {
				t.Errorf("layout %d: %q normalized to %q, want %q", layout, src, got, want)
			}
		}
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		layout Layout
		want   string
	}{
		{LayoutAlbanianText, "01 Kor 25"},
		{LayoutEnglishDash, "01-JUL-25"},
		{LayoutDottedShort, "1.7.25"},
		{LayoutDotted, "01.07.2025"},
		{LayoutSlashShort, "1/7/25"},
	}
	for _, tt := range tests {
		if got := FormatDate(d, tt.layout); got != tt.want {
			t.Errorf("FormatDate(layout %d): got %q, want %q", tt.layout, got, tt.want)
		}
	}
}
