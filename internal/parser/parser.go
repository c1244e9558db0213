// Package parser turns statement text or rows into transaction candidates.
// Each supported bank is described by a Profile that plugs its own PDF
// and/or CSV strategy into the shared conversion pipeline.
package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/insightdelivered/qbo-statement-converter/internal/models"
	"github.com/insightdelivered/qbo-statement-converter/internal/source"
)

// PDFParser parses the lines of extracted PDF text.
type PDFParser interface {
	ParsePDF(lines []string) (*models.StatementInfo, error)
}

// CSVParser parses the rows of a delimited export.
type CSVParser interface {
	ParseCSV(rows [][]string) (*models.StatementInfo, error)
}

// Profile is everything the pipeline needs to know about one bank.
type Profile struct {
	Bank    models.BankType
	Name    string
	Aliases []string

	// Signatures are phrases of the statement layout itself, Markers the
	// bank's names. Both are searched case-insensitively in the text;
	// FileHints in the lower-cased file name.
	Signatures []string
	Markers    []string
	FileHints  []string

	PDF PDFParser
	CSV CSVParser

	Style DescriptionStyle

	// KeepBalance adds the Balance column to the output.
	KeepBalance bool
	// DropOpeningRow removes a leading row that carries a balance but no
	// movement once the balance corrector has run.
	DropOpeningRow bool
}

// Formats lists the source formats the profile can parse.
func (p *Profile) Formats() []models.Format {
	var out []models.Format
	if p.PDF != nil {
		out = append(out, models.FormatPDF)
	}
	if p.CSV != nil {
		out = append(out, models.FormatCSV)
	}
	return out
}

// Accepts reports whether the profile can parse format. An empty format
// is accepted by every profile.
func (p *Profile) Accepts(format models.Format) bool {
	if format == "" {
		return true
	}
	for _, f := range p.Formats() {
		if f == format {
			return true
		}
	}
	return false
}

// Parse runs the strategy matching the document format.
func (p *Profile) Parse(doc *source.Document) (*models.StatementInfo, error) {
	var (
		info *models.StatementInfo
		err  error
	)
	switch {
	case doc.Format == models.FormatPDF && p.PDF != nil:
		info, err = p.PDF.ParsePDF(doc.Lines())
	case doc.Format == models.FormatCSV && p.CSV != nil:
		info, err = p.CSV.ParseCSV(doc.Rows)
	default:
		return nil, fmt.Errorf("%w: %s does not accept %s", models.ErrUnsupportedFormat, p.Name, doc.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Name, err)
	}
	info.Bank = p.Bank
	return info, nil
}

// Registry holds the known bank profiles in detection order.
type Registry struct {
	profiles []*Profile
	byKey    map[string]*Profile
}

// NewRegistry indexes profiles by bank id and aliases.
func NewRegistry(profiles ...*Profile) *Registry {
	r := &Registry{byKey: make(map[string]*Profile)}
	for _, p := range profiles {
		r.profiles = append(r.profiles, p)
		r.byKey[string(p.Bank)] = p
		for _, a := range p.Aliases {
			r.byKey[strings.ToLower(a)] = p
		}
	}
	return r
}

// DefaultRegistry returns a registry with every supported bank. The order
// only breaks ties between markers found at the same position.
func DefaultRegistry() *Registry {
	return NewRegistry(
		IntesaProfile(),
		RaiffeisenProfile(),
		PayseraProfile(),
		ProCreditProfile(),
		CredinsProfile(),
		OTPProfile(),
		UnionProfile(),
		TiranaProfile(),
		BKTProfile(),
	)
}

// Lookup finds a profile by bank id or alias.
func (r *Registry) Lookup(name string) (*Profile, error) {
	if p, ok := r.byKey[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %q (supported: %s)", models.ErrUnknownBank, name, strings.Join(r.Names(), ", "))
}

// Profiles returns the profiles in detection order.
func (r *Registry) Profiles() []*Profile {
	return r.profiles
}

// Names returns the sorted bank ids.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for _, p := range r.profiles {
		names = append(names, string(p.Bank))
	}
	sort.Strings(names)
	return names
}

// Configure applies fn to the profile of bank.
func (r *Registry) Configure(bank models.BankType, fn func(*Profile)) error {
	p, ok := r.byKey[string(bank)]
	if !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownBank, bank)
	}
	fn(p)
	return nil
}

// Detect identifies the bank of a document in format: by file name, then
// by layout signatures, then by bank names. Profiles that cannot parse
// format are never returned. Among content matches the one found earliest
// in the text wins, since other banks are often named in transfer memos
// further down.
func (r *Registry) Detect(path string, format models.Format, text string) (*Profile, error) {
	name := strings.ToLower(filepath.Base(path))
	for _, p := range r.profiles {
		if !p.Accepts(format) {
			continue
		}
		for _, hint := range p.FileHints {
			if strings.Contains(name, hint) {
				return p, nil
			}
		}
	}

	lower := strings.ToLower(text)
	if p := r.earliest(format, lower, func(p *Profile) []string { return p.Signatures }); p != nil {
		return p, nil
	}
	if p := r.earliest(format, lower, func(p *Profile) []string { return p.Markers }); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: could not detect a %s bank from %q; pass the bank explicitly", models.ErrUnknownBank, format, filepath.Base(path))
}

// earliest returns the profile whose phrase occurs first in lower.
func (r *Registry) earliest(format models.Format, lower string, phrases func(*Profile) []string) *Profile {
	var best *Profile
	at := -1
	for _, p := range r.profiles {
		if !p.Accepts(format) {
			continue
		}
		for _, ph := range phrases(p) {
			if ph == "" {
				continue
			}
			if i := strings.Index(lower, strings.ToLower(ph)); i >= 0 && (at < 0 || i < at) {
				best, at = p, i
			}
		}
	}
	return best
}
