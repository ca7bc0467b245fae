package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMissingColumn is returned when a required column is absent from a table header.
var ErrMissingColumn = errors.New("missing required column")

// Table is a header plus string rows loaded from a delimited file or a spreadsheet.
// Rows are padded to the header width.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Options controls how input tables are read.
type Options struct {
	// Delimiter for CSV. If 0, picked from the file extension (',' or '\t').
	Delimiter rune
	// SheetName selects an XLSX sheet by name (case-insensitive).
	SheetName string
	// SheetIndex is the 1-based XLSX sheet used when SheetName is empty.
	SheetIndex int
}

// ReadFile loads a table, choosing the reader by file extension.
func ReadFile(path string, opt Options) (*Table, error) {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		return ReadXLSX(path, opt.SheetName, opt.SheetIndex)
	}
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	return ReadCSV(path, delim)
}

// ReadCSV loads a delimited file from disk.
func ReadCSV(path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ParseCSV(filepath.Base(path), f, delim)
}

// ParseCSV reads a delimited stream whose first record is the header.
func ParseCSV(name string, src io.Reader, delim rune) (*Table, error) {
	if delim == 0 {
		delim = ','
	}
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comma = delim

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header of %s: empty file", name)
		}
		return nil, fmt.Errorf("read header of %s: %w", name, err)
	}
	t := &Table{Name: name, Header: trimAll(header)}
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read %s row %d: %w", name, len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, pad(rec, len(t.Header)))
	}
	return t, nil
}

// Lookup returns the index of the first header matching any alias, ignoring case.
func (t *Table) Lookup(aliases ...string) (int, error) {
	for _, a := range aliases {
		for i, h := range t.Header {
			if strings.EqualFold(h, a) {
				return i, nil
			}
		}
	}
	want := ""
	if len(aliases) > 0 {
		want = aliases[0]
	}
	return -1, fmt.Errorf("%w %q in %s (have %s)", ErrMissingColumn, want, t.Name, strings.Join(t.Header, ", "))
}

// Column returns the trimmed values of column idx.
func (t *Table) Column(idx int) []string {
	out := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		if idx < len(row) {
			out = append(out, strings.TrimSpace(row[idx]))
		} else {
			out = append(out, "")
		}
	}
	return out
}

// ParseNumber parses a numeric cell. Comma and dot decimal separators are
// auto-detected; thousands separators are dropped.
func ParseNumber(s string) (float64, bool) {
	raw := strings.ReplaceAll(strings.TrimSpace(s), "\u00A0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	dec := '.'
	cpos := strings.LastIndex(raw, ",")
	dpos := strings.LastIndex(raw, ".")
	if cpos >= 0 && (dpos < 0 || cpos > dpos) {
		dec = ','
	}
	for _, sep := range []rune{',', '.', ' '} {
		if sep != dec {
			raw = strings.ReplaceAll(raw, string(sep), "")
		}
	}
	if dec != '.' {
		raw = strings.ReplaceAll(raw, string(dec), ".")
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func trimAll(rec []string) []string {
	out := make([]string, len(rec))
	for i, v := range rec {
		out[i] = strings.TrimSpace(strings.TrimPrefix(v, "\uFEFF"))
	}
	return out
}

func pad(rec []string, n int) []string {
	if len(rec) >= n {
		return rec
	}
	tmp := make([]string, n)
	copy(tmp, rec)
	return tmp
}
