package io

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/errors"
)

// Format names a dataset encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatTOML Format = "toml"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported dataset formats.
var Formats = []Format{FormatJSON, FormatCSV, FormatTOML, FormatXLSX}

// Dataset is one weight list read from a file.
type Dataset struct {
	Title   string    `json:"title,omitempty" toml:"title"`
	Weights []float64 `json:"weights" toml:"weights"`
	Labels  []string  `json:"labels,omitempty" toml:"labels"`
}

// Panel converts the dataset into a figure panel.
func (d Dataset) Panel() figure.Panel {
	return figure.Panel{Title: d.Title, Weights: d.Weights, Labels: d.Labels}
}

// Spec wraps the dataset in a one-panel figure.
func (d Dataset) Spec() figure.Spec {
	return figure.Single(d.Title, d.Weights, d.Labels)
}

// ParseFormat resolves a format name, accepting a leading dot and the
// "xls" alias.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch s {
	case "json":
		return FormatJSON, nil
	case "csv", "tsv", "txt":
		return FormatCSV, nil
	case "toml":
		return FormatTOML, nil
	case "xlsx", "xls":
		return FormatXLSX, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format: %q", s)
}

// FormatFromPath returns the dataset format implied by path's extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "cannot infer dataset format of %q: no extension", path)
	}
	return ParseFormat(ext)
}

// ImportWeights reads the dataset at path. The format is chosen by
// extension. A dataset without a title is named after the file.
func ImportWeights(path string) (Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Dataset{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Dataset{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := ReadWeights(f, format)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	if ds.Title == "" {
		ds.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return ds, nil
}

// ReadWeights decodes a dataset in the given format from r. It does not
// close r.
func ReadWeights(r io.Reader, format Format) (Dataset, error) {
	var (
		ds  Dataset
		err error
	)
	switch format {
	case FormatJSON:
		ds, err = readJSON(r)
	case FormatCSV:
		ds, err = readCSV(r)
	case FormatTOML:
		ds, err = readTOML(r)
	case FormatXLSX:
		ds, err = readXLSX(r)
	default:
		return Dataset{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format: %q", format)
	}
	if err != nil {
		return Dataset{}, err
	}
	if err := validate(ds); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

func validate(ds Dataset) error {
	if err := errors.ValidateWeightCount(len(ds.Weights)); err != nil {
		return err
	}
	if len(ds.Labels) > 0 && len(ds.Labels) != len(ds.Weights) {
		return errors.New(errors.ErrCodeInvalidInput, "%d labels for %d weights", len(ds.Labels), len(ds.Weights))
	}
	return nil
}

// =============================================================================
// JSON
// =============================================================================

func readJSON(r io.Reader) (Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)

	var ds Dataset
	if len(data) > 0 && data[0] == '[' {
		err = json.Unmarshal(data, &ds.Weights)
	} else {
		err = json.Unmarshal(data, &ds)
	}
	if err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode JSON dataset")
	}
	return ds, nil
}

// =============================================================================
// TOML
// =============================================================================

func readTOML(r io.Reader) (Dataset, error) {
	var ds Dataset
	if _, err := toml.NewDecoder(r).Decode(&ds); err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode TOML dataset")
	}
	return ds, nil
}

// ImportFigure reads a multi-panel figure spec from a TOML file.
func ImportFigure(path string) (figure.Spec, error) {
	var spec figure.Spec
	if _, err := toml.DecodeFile(path, &spec); err != nil {
		if os.IsNotExist(err) {
			return figure.Spec{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return figure.Spec{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode figure %s", path)
	}
	if err := spec.Validate(); err != nil {
		return figure.Spec{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "figure %s", path)
	}
	for i, p := range spec.Panels {
		if err := errors.ValidateWeightCount(len(p.Weights)); err != nil {
			return figure.Spec{}, fmt.Errorf("figure %s: panel %d: %w", path, i, err)
		}
	}
	return spec, nil
}

// =============================================================================
// CSV and XLSX
// =============================================================================

// DetectDelimiter returns the delimiter that splits the most rows into the
// same number of columns. Single-column data yields a comma.
func DetectDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		cr := csv.NewReader(bytes.NewReader(data))
		cr.Comma = delim
		cr.LazyQuotes = true
		cr.FieldsPerRecord = -1
		cr.Comment = '#'

		records, err := cr.ReadAll()
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		score := 0
		for _, row := range records {
			if len(row) == len(records[0]) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func readCSV(r io.Reader) (Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, fmt.Errorf("read: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = DetectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var rows [][]string
	var lines []int
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode CSV dataset")
		}
		line, _ := cr.FieldPos(0)
		rows = append(rows, row)
		lines = append(lines, line)
	}
	return fromRows(rows, lines, "line")
}

func readXLSX(r io.Reader) (Dataset, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "open workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Dataset{}, errors.New(errors.ErrCodeInvalidInput, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read sheet %q", sheets[0])
	}

	lines := make([]int, len(rows))
	for i := range lines {
		lines[i] = i + 1
	}
	ds, err := fromRows(rows, lines, "row")
	if err != nil {
		return Dataset{}, err
	}
	if len(sheets) > 1 || sheets[0] != "Sheet1" {
		ds.Title = sheets[0]
	}
	return ds, nil
}

// columns locates the label and value columns of tabular data. label is -1
// when there is no label column.
type columns struct {
	label, value int
}

var headerAliases = map[string][]string{
	"label": {"label", "name", "item", "key", "category", "description"},
	"value": {"value", "weight", "size", "count", "amount", "area", "total"},
}

// detectColumns inspects the first row. A row whose cells match the known
// column names is a header; otherwise the layout is positional.
func detectColumns(row []string) (columns, bool) {
	cols := columns{label: -1, value: -1}
	for i, cell := range row {
		name := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if name != alias {
					continue
				}
				switch {
				case role == "label" && cols.label == -1:
					cols.label = i
				case role == "value" && cols.value == -1:
					cols.value = i
				}
			}
		}
	}
	if cols.value != -1 {
		return cols, true
	}

	if len(row) >= 2 {
		return columns{label: 0, value: 1}, false
	}
	return columns{label: -1, value: 0}, false
}

// fromRows parses tabular rows shared by the CSV and XLSX readers. lines
// holds the source line of each row and unit names the row kind in error
// messages.
func fromRows(rows [][]string, lines []int, unit string) (Dataset, error) {
	first := leadingBlank(rows)
	rows, lines = rows[first:], lines[first:]
	if len(rows) == 0 {
		return Dataset{}, nil
	}

	cols, header := detectColumns(rows[0])
	start := 0
	if header {
		start = 1
	} else if _, err := parseCell(rows[0], cols.value); err != nil {
		// An unrecognized header.
		start = 1
	}

	var ds Dataset
	for i := start; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		v, err := parseCell(row, cols.value)
		if err != nil {
			return Dataset{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "%s %d", unit, lines[i])
		}
		ds.Weights = append(ds.Weights, v)
		if cols.label >= 0 {
			label := ""
			if cols.label < len(row) {
				label = strings.TrimSpace(row[cols.label])
			}
			ds.Labels = append(ds.Labels, label)
		}
	}
	return ds, nil
}

func parseCell(row []string, col int) (float64, error) {
	if col >= len(row) {
		return 0, fmt.Errorf("missing value column %d", col+1)
	}
	cell := strings.TrimSpace(row[col])
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", cell)
	}
	return v, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// leadingBlank counts the blank rows at the start of rows.
func leadingBlank(rows [][]string) int {
	n := 0
	for n < len(rows) && isBlank(rows[n]) {
		n++
	}
	return n
}
