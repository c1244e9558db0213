package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// DefaultDescriptionLimit is the character cap used when a profile sets none.
const DefaultDescriptionLimit = 1000

// DescriptionStyle is a bank's convention for building one description out
// of the candidate's sub-fields, detail lines and reference.
type DescriptionStyle struct {
	Separator       string // between fields, and around the reference
	DetailSeparator string // before and between detail lines
	MaxDetails      int    // 0 keeps every detail line
	RefPrefix       string
	RefFirst        bool
	Fallback        string
	Limit           int // in characters; 0 means DefaultDescriptionLimit
}

// Merge builds the description for c.
func (s DescriptionStyle) Merge(c models.Candidate) string {
	desc := strings.Join(nonEmpty(c.Fields), s.Separator)

	details := nonEmpty(c.Details)
	if s.MaxDetails > 0 && len(details) > s.MaxDetails {
		details = details[:s.MaxDetails]
	}
	if len(details) > 0 {
		joined := strings.Join(details, s.DetailSeparator)
		if desc == "" {
			desc = joined
		} else {
			desc += s.DetailSeparator + joined
		}
	}

	if ref := collapseSpaces(c.Reference); ref != "" {
		ref = s.RefPrefix + ref
		switch {
		case desc == "":
			desc = ref
		case s.RefFirst:
			desc = ref + s.Separator + desc
		default:
			desc += s.Separator + ref
		}
	}

	if desc == "" {
		desc = s.Fallback
	}

	limit := s.Limit
	if limit <= 0 {
		limit = DefaultDescriptionLimit
	}
	return truncate(desc, limit)
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = collapseSpaces(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:limit]))
}
