package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

const sampleCSV = `Number,Name,Stage,Attribute,Evolutions,,
1,Botamon,Baby I,,Koromon,,
2,Koromon,Baby II,,Agumon,Betamon,
3, Agumon ,Child,Vaccine, Greymon ,Tyranomon,Meramon
4,Greymon,Adult,Vaccine,MetalGreymon,,
,Numeless,Child,Data,,,
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "digimon.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	tbl, err := Load(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if tbl.Len() != 5 {
		t.Fatalf("Expected 5 rows, got %d", tbl.Len())
	}

	rows := tbl.AllRows()

	// Whitespace around names and successors is trimmed.
	agumon := rows[2]
	if agumon.Name != "Agumon" {
		t.Errorf("Expected trimmed name Agumon, got %q", agumon.Name)
	}
	if agumon.Number == nil || *agumon.Number != 3 {
		t.Errorf("Expected number 3, got %v", agumon.Number)
	}
	want := []string{"Greymon", "Tyranomon", "Meramon"}
	if len(agumon.Evolutions) != len(want) {
		t.Fatalf("Expected %d successors, got %v", len(want), agumon.Evolutions)
	}
	for i, name := range want {
		if agumon.Evolutions[i] != name {
			t.Errorf("Successor %d: expected %s, got %s", i, name, agumon.Evolutions[i])
		}
	}

	// A blank Number cell stays nil, never 0.
	numeless := rows[4]
	if numeless.Number != nil {
		t.Errorf("Expected nil number for blank cell, got %d", *numeless.Number)
	}
	if len(numeless.Evolutions) != 0 {
		t.Errorf("Expected no successors, got %v", numeless.Evolutions)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	_, err := Load(writeCSV(t, "Number,Name,Evolutions\n1,Botamon,Koromon\n"))
	if err == nil {
		t.Fatal("Expected load to fail on missing columns")
	}

	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Expected *LoadError, got %T", err)
	}
	if len(le.Missing) != 2 || le.Missing[0] != ColStage || le.Missing[1] != ColAttribute {
		t.Errorf("Expected missing [Stage Attribute], got %v", le.Missing)
	}
	for _, col := range []string{ColStage, ColAttribute} {
		if !strings.Contains(err.Error(), col) {
			t.Errorf("Error %q does not name missing column %s", err, col)
		}
	}
}

func TestLoadSkipsRowsWithoutName(t *testing.T) {
	csv := "Number,Name,Stage,Attribute,Evolutions\n" +
		"1,Botamon,Baby I,,Koromon\n" +
		",,,,\n" + // fully blank
		"2,   ,Child,Data,Agumon\n" // data but no name
	tbl, err := Load(writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("Expected 1 row after skipping, got %d", tbl.Len())
	}
}

func TestLoadBadNumber(t *testing.T) {
	_, err := Load(writeCSV(t, "Number,Name,Stage,Attribute\nseven,Botamon,Baby I,None\n"))
	if err == nil {
		t.Fatal("Expected load to fail on unparseable number")
	}
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("Expected *LoadError, got %T", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("Error should name the offending row: %v", err)
	}
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantNil bool
		wantErr bool
	}{
		{in: "7", want: 7},
		{in: " 7 ", want: 7},
		{in: "7.0", want: 7}, // spreadsheet float round-trip
		{in: "", wantNil: true},
		{in: "   ", wantNil: true},
		{in: "7.5", wantErr: true},
		{in: "seven", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseNumber(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseNumber(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseNumber(%q): %v", tc.in, err)
			continue
		}
		if tc.wantNil {
			if got != nil {
				t.Errorf("parseNumber(%q): expected nil, got %d", tc.in, *got)
			}
			continue
		}
		if got == nil || *got != tc.want {
			t.Errorf("parseNumber(%q): expected %d, got %v", tc.in, tc.want, got)
		}
	}
}

func TestLoadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digimon.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	fixture := [][]any{
		{"Number", "Name", "Stage", "Attribute", "Evolutions"},
		{1, "Botamon", "Baby I", "None", "Koromon"},
		// Successor spill cells sit past the header width.
		{2, "Koromon", "Baby II", "None", "Agumon", "Betamon"},
	}
	for i, row := range fixture {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if tbl.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", tbl.Len())
	}

	koromon := tbl.AllRows()[1]
	if len(koromon.Evolutions) != 2 || koromon.Evolutions[1] != "Betamon" {
		t.Errorf("Expected spill-cell successor Betamon, got %v", koromon.Evolutions)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "digimon.txt")
	if err := os.WriteFile(path, []byte("whatever"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unsupported") {
		t.Errorf("Expected unsupported-format error, got %v", err)
	}
}

func TestRowsByName(t *testing.T) {
	csv := "Number,Name,Stage,Attribute,Evolutions\n" +
		"1,Agumon,Child,Vaccine,Greymon\n" +
		"2,agumon,Adult,Virus,\n" +
		"3,Gabumon,Child,Data,Garurumon\n"
	tbl, err := Load(writeCSV(t, csv))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	matches := tbl.RowsByName("AGUMON")
	if len(matches) != 2 {
		t.Fatalf("Expected 2 case-insensitive matches, got %d", len(matches))
	}
	// Scan order is source order.
	if matches[0].Stage != "Child" || matches[1].Stage != "Adult" {
		t.Errorf("Expected source order [Child Adult], got [%s %s]", matches[0].Stage, matches[1].Stage)
	}

	if got := tbl.RowsByName("Missingmon"); len(got) != 0 {
		t.Errorf("Expected no matches, got %v", got)
	}
}

func TestStats(t *testing.T) {
	tbl, err := Load(writeCSV(t, sampleCSV))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	s := tbl.Stats()
	if s.Rows != 5 {
		t.Errorf("Expected 5 rows, got %d", s.Rows)
	}
	if s.Stages["Child"] != 2 {
		t.Errorf("Expected 2 Child rows, got %d", s.Stages["Child"])
	}
	if s.Attributes["Vaccine"] != 2 {
		t.Errorf("Expected 2 Vaccine rows, got %d", s.Attributes["Vaccine"])
	}
}
