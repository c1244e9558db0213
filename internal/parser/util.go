package parser

import (
	"regexp"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// block is one transaction found in PDF text: the line that started it and
// the continuation lines that follow.
type block struct {
	line  int // 1-based
	match []string
	head  string
	tail  []string
}

// rest returns the start line with the matched prefix removed.
func (b block) rest() string {
	return strings.TrimSpace(b.head[len(b.match[0]):])
}

// lineScanner finds transaction blocks in line-oriented PDF text.
type lineScanner struct {
	start *regexp.Regexp
	// window bounds how many lines after the start line are examined.
	window int
	// stopWords end the block when a line contains one of them.
	stopWords []string
	// ignore drops a line without ending the block.
	ignore func(line string) bool
}

var rulePattern = regexp.MustCompile(`^[-=_\s]{5,}$`)

func (s lineScanner) scan(lines []string) []block {
	var blocks []block
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		m := s.start.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		b := block{line: i + 1, match: m, head: line}
		for j := i + 1; j < len(lines) && j-i <= s.window; j++ {
			next := strings.TrimSpace(lines[j])
			if s.start.MatchString(next) || rulePattern.MatchString(next) || containsWord(next, s.stopWords) {
				break
			}
			if next == "" || (s.ignore != nil && s.ignore(next)) {
				continue
			}
			b.tail = append(b.tail, next)
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// containsWord is a case-sensitive substring test; bank footers are
// printed in fixed case.
func containsWord(line string, words []string) bool {
	for _, w := range words {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// assignAmounts maps the decimal-looking tokens of a transaction line onto
// candidate fields: one token is a balance, two are amount and balance,
// three or more are debit, credit and (last) balance. With two tokens the
// amount goes to debit when isDebit is true, otherwise to credit.
func assignAmounts(c *models.Candidate, amounts []string, isDebit bool) bool {
	switch n := len(amounts); {
	case n == 0:
		return false
	case n == 1:
		c.Balance = amounts[0]
		c.BalanceOnly = true
	case n == 2:
		if isDebit {
			c.Debit = amounts[0]
		} else {
			c.Credit = amounts[0]
		}
		c.Balance = amounts[1]
	default:
		c.Debit = amounts[0]
		c.Credit = amounts[1]
		c.Balance = amounts[n-1]
	}
	return true
}

// hasKeywordPrefix reports whether s starts with one of the keywords,
// ignoring case.
func hasKeywordPrefix(s string, keywords []string) bool {
	upper := strings.ToUpper(s)
	for _, k := range keywords {
		if strings.HasPrefix(upper, k) {
			return true
		}
	}
	return false
}

// firstGroup returns the first submatch of re in text, or "".
func firstGroup(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// columns maps header names to row indexes.
type columns map[string]int

// findHeader returns the index of the first row among the leading rows that
// contains every required column name, or -1.
func findHeader(rows [][]string, limit int, required ...string) int {
	for i, row := range rows {
		if limit > 0 && i >= limit {
			break
		}
		cols := headerColumns(row)
		ok := true
		for _, name := range required {
			if _, found := cols.index(name); !found {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

func headerColumns(row []string) columns {
	cols := make(columns, len(row))
	for i, cell := range row {
		key := headerKey(cell)
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func headerKey(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	return strings.ToLower(collapseSpaces(strings.Trim(s, `"`)))
}

// index returns the position of the first of names present in the header.
func (c columns) index(names ...string) (int, bool) {
	for _, n := range names {
		if i, ok := c[headerKey(n)]; ok {
			return i, true
		}
	}
	return -1, false
}

// get returns the trimmed cell for the first present column of names.
func (c columns) get(row []string, names ...string) string {
	i, ok := c.index(names...)
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
