package tabular

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCSVPadsShortRows(t *testing.T) {
	src := "SUBJECT, SEX, Age\n1,M,5 years\n2,F\n"
	tbl, err := ParseCSV("dm.csv", strings.NewReader(src), ',')
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	if got := strings.Join(tbl.Header, "|"); got != "SUBJECT|SEX|Age" {
		t.Fatalf("header = %q", got)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if len(tbl.Rows[1]) != 3 || tbl.Rows[1][2] != "" {
		t.Fatalf("short row not padded: %#v", tbl.Rows[1])
	}
}

func TestParseCSVEmpty(t *testing.T) {
	if _, err := ParseCSV("empty.csv", strings.NewReader(""), ','); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want not-exist", err)
	}
}

func TestReadFileTSV(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dm.tsv")
	if err := os.WriteFile(p, []byte("SUBJECT\tSEX\tAge\n3\tFemale\t18 months\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tbl, err := ReadFile(p, Options{})
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if tbl.Name != "dm.tsv" || len(tbl.Rows) != 1 || tbl.Rows[0][2] != "18 months" {
		t.Fatalf("unexpected table: %#v", tbl)
	}
}

func TestLookup(t *testing.T) {
	tbl := &Table{Name: "theoph.csv", Header: []string{"Subject", "Wt", "conc"}}
	idx, err := tbl.Lookup("weight", "wt")
	if err != nil || idx != 1 {
		t.Fatalf("Lookup(weight, wt) = %d, %v", idx, err)
	}
	_, err = tbl.Lookup("time")
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "theoph.csv") {
		t.Fatalf("error should name the table: %v", err)
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"79.6", 79.6, true},
		{" 4,02 ", 4.02, true},
		{"1.000,5", 1000.5, true},
		{"1,000.5", 1000.5, true},
		{"", 0, false},
		{"n/a", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumber(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseNumber(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestReadXLSXBySheetName(t *testing.T) {
	p := writeDemographicsXLSX(t)

	tbl, err := ReadXLSX(p, "dm", 0)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if got := strings.Join(tbl.Header, "|"); got != "SUBJECT|SEX|Age" {
		t.Fatalf("header = %q", got)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	if tbl.Rows[0][0] != "1" || tbl.Rows[0][1] != "Male" || tbl.Rows[0][2] != "5 years" {
		t.Fatalf("row 0 = %#v", tbl.Rows[0])
	}
	// B3 is absent in the sheet; the cell stays empty.
	if tbl.Rows[1][0] != "2" || tbl.Rows[1][1] != "" || tbl.Rows[1][2] != "23" {
		t.Fatalf("row 1 = %#v", tbl.Rows[1])
	}

	byIndex, err := ReadFile(p, Options{SheetIndex: 1})
	if err != nil {
		t.Fatalf("ReadFile by index: %v", err)
	}
	if len(byIndex.Rows) != 2 {
		t.Fatalf("rows by index = %d", len(byIndex.Rows))
	}

	if _, err := ReadXLSX(p, "missing", 0); err == nil || !strings.Contains(err.Error(), "available: dm") {
		t.Fatalf("expected sheet-not-found error, got %v", err)
	}
}

func TestColIndexFromRef(t *testing.T) {
	tests := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA7": 26, "ab2": 27}
	for ref, want := range tests {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}

func TestNormalizeRelPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"xl/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
		{"/worksheets/sheet1.xml", "xl/worksheets/sheet1.xml"},
	}
	for _, tt := range tests {
		if got := normalizeRelPath(tt.in); got != tt.want {
			t.Errorf("normalizeRelPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// writeDemographicsXLSX builds a minimal workbook with one sheet named "dm"
// using shared strings, inline strings and numeric cells.
func writeDemographicsXLSX(t *testing.T) string {
	t.Helper()
	files := map[string]string{
		"xl/workbook.xml": `<?xml version="1.0" encoding="UTF-8"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets><sheet name="dm" sheetId="1" r:id="rId1"/></sheets></workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0" encoding="UTF-8"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="/xl/worksheets/sheet1.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0" encoding="UTF-8"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="4" uniqueCount="4">
<si><t>SUBJECT</t></si><si><t>SEX</t></si><si><t>Age</t></si><si><t>Male</t></si></sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0" encoding="UTF-8"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c><c r="C1" t="s"><v>2</v></c></row>
<row r="2"><c r="A2"><v>1</v></c><c r="B2" t="s"><v>3</v></c><c r="C2" t="inlineStr"><is><t>5 years</t></is></c></row>
<row r="3"><c r="A3"><v>2</v></c><c r="C3"><v>23</v></c></row>
<row r="4"/>
</sheetData></worksheet>`,
	}
	p := filepath.Join(t.TempDir(), "dm.xlsx")
	f, err := os.Create(p)
	if err != nil {
		t.Fatalf("create xlsx: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("file close: %v", err)
	}
	return p
}
