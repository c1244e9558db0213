// Package extractor pulls page text out of statement PDFs.
package extractor

import (
	"errors"
	"fmt"
	"math"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrNoText is returned when no method produced readable page text.
var ErrNoText = errors.New("no readable text in PDF")

// method is one way of turning a PDF file into page text.
type method struct {
	name string
	run  func(path string) ([]string, error)
}

// methods are tried in order; the first readable result wins.
var methods = []method{
	{"ledongthuc/pdf", readWithLibrary},
	{"pdftotext", readWithPoppler},
}

// ExtractText returns the text of each page of the PDF at filePath.
// The ledongthuc/pdf reader is tried first; pdftotext (poppler-utils) is
// used when the library fails or returns unreadable text.
func ExtractText(filePath string) ([]string, error) {
	var errs []string
	for _, m := range methods {
		pages, err := m.run(filePath)
		if err == nil && IsReadableText(pages) {
			return pages, nil
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", m.name, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w (%s)", ErrNoText, strings.Join(errs, "; "))
	}
	return nil, ErrNoText
}

// statementWords appear in virtually every Albanian or English statement.
// Text containing none of them is almost certainly font garbage.
var statementWords = []string{
	"llogari", "balanc", "data", "debi", "kredi", "teprica", "veprim",
	"shuma", "pershkrim", "përshkrim", "faqe", "iban",
	"account", "balance", "date", "debit", "credit", "amount",
	"transaction", "statement", "opening", "closing", "transfer", "page",
}

// IsReadableText reports whether pages hold enough real statement text.
func IsReadableText(pages []string) bool {
	text := strings.Join(pages, "\n")
	if len(strings.TrimSpace(text)) <= 50 || textQuality(pages) <= 0.6 {
		return false
	}
	lower := strings.ToLower(text)
	for _, w := range statementWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

const punctuation = ".,-/:;()'\"€$%&@#!?+=*|_"

// textQuality is the share of letters, digits, spaces and common punctuation
// in the extracted text.
func textQuality(pages []string) float64 {
	var total, readable int
	for _, page := range pages {
		for _, r := range page {
			total++
			switch {
			case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
				readable++
			case strings.ContainsRune(punctuation, r):
				readable++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(readable) / float64(total)
}

func readWithPoppler(path string) ([]string, error) {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return nil, err
	}

	var pages []string
	for i := 1; i <= popplerPageCount(path); i++ {
		n := strconv.Itoa(i)
		out, err := exec.Command("pdftotext", "-layout", "-f", n, "-l", n, path, "-").Output()
		if err != nil {
			continue
		}
		if page := strings.TrimSpace(string(out)); page != "" {
			pages = append(pages, page)
		}
	}
	if len(pages) == 0 {
		return nil, errors.New("no output")
	}
	return pages, nil
}

// popplerPageCount asks pdfinfo for the page count, assuming a single page
// when it is not installed.
func popplerPageCount(path string) int {
	out, err := exec.Command("pdfinfo", path).Output()
	if err != nil {
		return 1
	}
	for _, line := range strings.Split(string(out), "\n") {
		v, ok := strings.CutPrefix(line, "Pages:")
		if !ok {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			return n
		}
	}
	return 1
}

func readWithLibrary(path string) (pages []string, err error) {
	// ledongthuc/pdf panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if r.NumPage() == 0 {
		return nil, errors.New("no pages")
	}

	pages = eachPage(r, rowText)
	if IsReadableText(pages) {
		return pages, nil
	}
	return eachPage(r, positionedText), nil
}

// eachPage applies text to every non-empty page of r.
func eachPage(r *pdf.Reader, text func(pdf.Page) []string) []string {
	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		pages = append(pages, strings.Join(text(p), "\n"))
	}
	return pages
}

// rowText uses the library's own row grouping.
func rowText(p pdf.Page) []string {
	rows, err := p.GetTextByRow()
	if err != nil {
		return nil
	}
	var lines []string
	for _, row := range rows {
		words := make([]string, len(row.Content))
		for i, w := range row.Content {
			words[i] = w.S
		}
		if line := strings.TrimSpace(strings.Join(words, " ")); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// columnGap is the horizontal distance, in points, that separates two
// table columns on a rebuilt line.
const columnGap = 15

// positionedText rebuilds lines from positioned text runs: runs sharing a
// rounded Y coordinate form one line, ordered left to right, top to bottom.
func positionedText(p pdf.Page) []string {
	byY := make(map[int][]pdf.Text)
	for _, t := range p.Content().Text {
		if strings.TrimSpace(t.S) == "" {
			continue
		}
		y := int(math.Round(t.Y))
		byY[y] = append(byY[y], t)
	}

	ys := make([]int, 0, len(byY))
	for y := range byY {
		ys = append(ys, y)
	}
	// PDF Y grows upwards.
	sort.Sort(sort.Reverse(sort.IntSlice(ys)))

	lines := make([]string, 0, len(ys))
	for _, y := range ys {
		runs := byY[y]
		sort.Slice(runs, func(a, b int) bool { return runs[a].X < runs[b].X })

		var b strings.Builder
		for j, t := range runs {
			if j > 0 && t.X-runs[j-1].X > columnGap {
				b.WriteString("  ")
			}
			b.WriteString(t.S)
		}
		if line := strings.TrimSpace(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
