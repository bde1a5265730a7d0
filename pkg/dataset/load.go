package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Default column labels in the source header row.
const (
	ColNumber     = "Number"
	ColName       = "Name"
	ColStage      = "Stage"
	ColAttribute  = "Attribute"
	ColEvolutions = "Evolutions"
)

// Options adjust how a source file is read. The zero value gives the
// defaults: format sniffed from the extension, first sheet, standard labels.
type Options struct {
	Format string // "xlsx" or "csv"; empty selects by file extension
	Sheet  string // XLSX sheet name; empty selects the first sheet

	// Column label overrides. Empty fields keep the Col* defaults.
	NumberCol     string
	NameCol       string
	StageCol      string
	AttributeCol  string
	EvolutionsCol string
}

// LoadError reports a dataset that could not be loaded. When the header row
// lacks required columns, Missing names them and the load is fatal; other
// failures carry the underlying error.
type LoadError struct {
	Source  string
	Missing []string
	Err     error
}

func (e *LoadError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("load %s: missing required columns: %s", e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Load reads the dataset at path with default options.
func Load(path string) (*Table, error) {
	return LoadWithOptions(path, Options{})
}

// LoadWithOptions reads and validates the dataset at path. Any failure is a
// *LoadError; on success the returned Table is complete and immutable.
// Successor extraction happens here: each row's Evolutions column plus the
// unnamed spill columns are trimmed into Row.Evolutions, so nothing
// downstream deals with the source's column layout.
func LoadWithOptions(path string, opts Options) (*Table, error) {
	records, err := readRecords(path, opts)
	if err != nil {
		return nil, &LoadError{Source: path, Err: err}
	}
	if len(records) == 0 {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("no header row")}
	}

	header := records[0]
	cols, evoCols, missing := mapColumns(header, opts)
	if len(missing) > 0 {
		return nil, &LoadError{Source: path, Missing: missing}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2 // 1-based source line, after the header
		name := strings.TrimSpace(cell(rec, cols.name))
		if name == "" {
			if !blankRecord(rec) {
				slog.Warn("dataset: skipping row without a name", "source", filepath.Base(path), "row", line)
			}
			continue
		}
		num, err := parseNumber(cell(rec, cols.number))
		if err != nil {
			return nil, &LoadError{Source: path, Err: fmt.Errorf("row %d: %w", line, err)}
		}
		r := Row{
			Number:    num,
			Name:      name,
			Stage:     strings.TrimSpace(cell(rec, cols.stage)),
			Attribute: strings.TrimSpace(cell(rec, cols.attribute)),
		}
		for _, ci := range evoCols {
			if v := strings.TrimSpace(cell(rec, ci)); v != "" {
				r.Evolutions = append(r.Evolutions, v)
			}
		}
		// Spreadsheet readers stop the header row at its last labelled
		// cell, so successor spill cells can sit past the header width.
		for ci := len(header); ci < len(rec); ci++ {
			if v := strings.TrimSpace(rec[ci]); v != "" {
				r.Evolutions = append(r.Evolutions, v)
			}
		}
		rows = append(rows, r)
	}

	return &Table{rows: rows, source: path, loadedAt: time.Now()}, nil
}

type columnIndex struct {
	number, name, stage, attribute int
}

// mapColumns resolves the header row into column positions. Successor names
// spread across the labelled Evolutions column and the unnamed spill columns
// the source exports next to it, so every such column is collected in order.
func mapColumns(header []string, opts Options) (columnIndex, []int, []string) {
	numberLabel := labelOr(opts.NumberCol, ColNumber)
	nameLabel := labelOr(opts.NameCol, ColName)
	stageLabel := labelOr(opts.StageCol, ColStage)
	attrLabel := labelOr(opts.AttributeCol, ColAttribute)
	evoLabel := labelOr(opts.EvolutionsCol, ColEvolutions)

	idx := columnIndex{number: -1, name: -1, stage: -1, attribute: -1}
	var evoCols []int
	for i, h := range header {
		switch h := strings.TrimSpace(h); {
		case h == numberLabel:
			idx.number = i
		case h == nameLabel:
			idx.name = i
		case h == stageLabel:
			idx.stage = i
		case h == attrLabel:
			idx.attribute = i
		case h == evoLabel, h == "", strings.HasPrefix(h, "Unnamed"):
			evoCols = append(evoCols, i)
		}
	}

	var missing []string
	if idx.number == -1 {
		missing = append(missing, numberLabel)
	}
	if idx.name == -1 {
		missing = append(missing, nameLabel)
	}
	if idx.stage == -1 {
		missing = append(missing, stageLabel)
	}
	if idx.attribute == -1 {
		missing = append(missing, attrLabel)
	}
	return idx, evoCols, missing
}

func labelOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func readRecords(path string, opts Options) ([][]string, error) {
	format := opts.Format
	if format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".xlsx", ".xlsm":
			format = "xlsx"
		case ".csv":
			format = "csv"
		}
	}
	switch format {
	case "xlsx":
		return readXLSX(path, opts.Sheet)
	case "csv":
		return readCSV(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", filepath.Ext(path))
	}
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // spill columns make rows ragged
	return r.ReadAll()
}

// cell tolerates records shorter than the header row.
func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseNumber reads the Number cell. Blank means "no number" and stays nil;
// numeric cells may round-trip from spreadsheets as floats ("4.0").
func parseNumber(raw string) (*int, error) {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("number column: cannot parse %q", raw)
	}
	n := int(f)
	return &n, nil
}
