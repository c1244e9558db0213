// Package source reads one statement file into either page text (PDF) or
// raw rows (CSV/TXT).
package source

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/insightdelivered/qbo-statement-converter/internal/extractor"
	"github.com/insightdelivered/qbo-statement-converter/internal/models"
)

// Document is the raw content of one statement.
type Document struct {
	Path   string
	Format models.Format

	// PDF
	Pages []string

	// CSV
	Rows      [][]string
	Delimiter rune
	Encoding  string
}

// Text returns the PDF pages joined with newlines, or the CSV rows
// re-joined with their delimiter. Used for bank detection.
func (d *Document) Text() string {
	if d.Format == models.FormatPDF {
		return strings.Join(d.Pages, "\n")
	}
	lines := make([]string, 0, len(d.Rows))
	for _, row := range d.Rows {
		lines = append(lines, strings.Join(row, string(d.Delimiter)))
	}
	return strings.Join(lines, "\n")
}

// Lines splits the PDF text into lines.
func (d *Document) Lines() []string {
	return strings.Split(d.Text(), "\n")
}

// PDFExtractor returns per-page text for a PDF file.
type PDFExtractor func(path string) ([]string, error)

// Reader opens statement files.
type Reader struct {
	ExtractPDF PDFExtractor
}

// NewReader returns a Reader backed by the ledongthuc/pdf extractor.
func NewReader() *Reader {
	return &Reader{ExtractPDF: extractor.ExtractText}
}

// FormatOf maps a file extension to a statement format.
func FormatOf(path string) (models.Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return models.FormatPDF, true
	case ".csv", ".txt":
		return models.FormatCSV, true
	}
	return "", false
}

// Read dispatches on the file extension.
func (r *Reader) Read(path string) (*Document, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnreadable, err)
	}
	format, ok := FormatOf(path)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported file type %q", models.ErrSourceUnreadable, filepath.Ext(path))
	}
	if format == models.FormatPDF {
		return r.ReadPDF(path)
	}
	return ReadCSV(path)
}

// ReadPDF extracts page text. A PDF where no page yields text is unreadable.
func (r *Reader) ReadPDF(path string) (*Document, error) {
	extract := r.ExtractPDF
	if extract == nil {
		extract = extractor.ExtractText
	}
	pages, err := extract(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnreadable, err)
	}

	var kept []string
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%w: no page yielded text", models.ErrSourceUnreadable)
	}
	return &Document{Path: path, Format: models.FormatPDF, Pages: kept}, nil
}

// ReadCSV reads a delimited export of unknown encoding and delimiter.
func ReadCSV(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnreadable, err)
	}
	doc, err := ParseCSV(raw)
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

type encoding struct {
	name   string
	decode func([]byte) (string, bool)
}

var encodings = []encoding{
	{"utf-8", decodeUTF8},
	{"windows-1252", decodeWith(charmap.Windows1252)},
	{"iso-8859-1", decodeWith(charmap.ISO8859_1)},
}

func decodeUTF8(b []byte) (string, bool) {
	b = bytes.TrimPrefix(b, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

func decodeWith(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(b []byte) (string, bool) {
		out, err := cm.NewDecoder().Bytes(b)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}

// Delimiters are tried in this order; ties go to the earlier one.
var Delimiters = []rune{',', ';', '\t', '|'}

// ParseCSV decodes raw bytes and sniffs the delimiter.
func ParseCSV(raw []byte) (*Document, error) {
	for _, enc := range encodings {
		text, ok := enc.decode(raw)
		if !ok {
			continue
		}
		delim, rows, ok := sniff(text)
		if !ok {
			continue
		}
		return &Document{Format: models.FormatCSV, Rows: rows, Delimiter: delim, Encoding: enc.name}, nil
	}
	return nil, fmt.Errorf("%w: no encoding/delimiter combination produced multi-field rows", models.ErrSourceUnreadable)
}

// sniff picks the delimiter that splits the most rows into more than one
// field.
func sniff(text string) (rune, [][]string, bool) {
	var (
		best     rune
		bestRows [][]string
		bestHits int
	)
	for _, d := range Delimiters {
		rows, err := readAll(text, d)
		if err != nil {
			continue
		}
		hits := 0
		for _, row := range rows {
			if len(row) > 1 {
				hits++
			}
		}
		if hits > bestHits {
			best, bestRows, bestHits = d, rows, hits
		}
	}
	return best, bestRows, bestHits > 0
}

func readAll(text string, delim rune) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
