package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{".CSV", FormatCSV, false},
		{"tsv", FormatCSV, false},
		{"toml", FormatTOML, false},
		{"xls", FormatXLSX, false},
		{"yaml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadWeights_JSON(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		ds, err := ReadWeights(strings.NewReader(" [5, 3, 2.5]\n"), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 3, 2.5}, ds.Weights)
		assert.Empty(t, ds.Labels)
	})

	t.Run("object", func(t *testing.T) {
		in := `{"title": "Small", "weights": [5, 3, 2], "labels": ["a", "b", "c"]}`
		ds, err := ReadWeights(strings.NewReader(in), FormatJSON)
		require.NoError(t, err)
		assert.Equal(t, "Small", ds.Title)
		assert.Equal(t, []float64{5, 3, 2}, ds.Weights)
		assert.Equal(t, []string{"a", "b", "c"}, ds.Labels)
	})

	t.Run("label mismatch", func(t *testing.T) {
		in := `{"weights": [5, 3], "labels": ["a"]}`
		_, err := ReadWeights(strings.NewReader(in), FormatJSON)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ReadWeights(strings.NewReader(`[1, "x"]`), FormatJSON)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	})
}

func TestReadWeights_CSV(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantW      []float64
		wantLabels []string
	}{
		{"single column", "5\n3\n2\n", []float64{5, 3, 2}, nil},
		{"named header", "label,value\nrent,1200\nfood,450\n", []float64{1200, 450}, []string{"rent", "food"}},
		{"reordered header", "weight;name\n3;x\n1;y\n", []float64{3, 1}, []string{"x", "y"}},
		{"unknown header", "what,ever\na,1\nb,2\n", []float64{1, 2}, []string{"a", "b"}},
		{"no header", "a,1\nb,2\n", []float64{1, 2}, []string{"a", "b"}},
		{"tabs", "a\t1\nb\t2\n", []float64{1, 2}, []string{"a", "b"}},
		{"blank and comment lines", "# data\n\n4\n\n0\n-1\n", []float64{4, 0, -1}, nil},
		{"empty", "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := ReadWeights(strings.NewReader(tt.in), FormatCSV)
			require.NoError(t, err)
			assert.Equal(t, tt.wantW, ds.Weights)
			assert.Equal(t, tt.wantLabels, ds.Labels)
		})
	}
}

func TestReadWeights_CSVBadCell(t *testing.T) {
	_, err := ReadWeights(strings.NewReader("value\n1\nabc\n"), FormatCSV)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `"abc"`)
}

func TestReadWeights_CSVBadCellLineSkipsComments(t *testing.T) {
	in := "# sizes in GB\n# exported nightly\n\nname,value\ndb,5\nlogs,x\n"
	_, err := ReadWeights(strings.NewReader(in), FormatCSV)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 6")
}

func TestReadWeights_TOML(t *testing.T) {
	in := `
title   = "Small"
weights = [5, 3, 2]
labels  = ["a", "b", "c"]
`
	ds, err := ReadWeights(strings.NewReader(in), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "Small", ds.Title)
	assert.Equal(t, []float64{5, 3, 2}, ds.Weights)
	assert.Equal(t, []string{"a", "b", "c"}, ds.Labels)
}

func TestReadWeights_Unsupported(t *testing.T) {
	_, err := ReadWeights(strings.NewReader(""), Format("yaml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func createTestExcel(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	if sheet != "" {
		require.NoError(t, f.SetSheetName(f.GetSheetName(0), sheet))
	}
	name := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(name, ref, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImportWeights_XLSX(t *testing.T) {
	path := createTestExcel(t, "Budget", [][]any{
		{"Name", "Amount"},
		{"rent", 1200},
		{"food", 450.5},
	})

	ds, err := ImportWeights(path)
	require.NoError(t, err)
	assert.Equal(t, "Budget", ds.Title)
	assert.Equal(t, []float64{1200, 450.5}, ds.Weights)
	assert.Equal(t, []string{"rent", "food"}, ds.Labels)
}

func TestImportWeights_XLSXDefaultSheet(t *testing.T) {
	path := createTestExcel(t, "", [][]any{{5}, {3}, {2}})

	ds, err := ImportWeights(path)
	require.NoError(t, err)
	assert.Equal(t, "data", ds.Title)
	assert.Equal(t, []float64{5, 3, 2}, ds.Weights)
}

func TestImportWeights_TitleFromFilename(t *testing.T) {
	path := writeFile(t, "medium.json", "[1, 2, 3]")

	ds, err := ImportWeights(path)
	require.NoError(t, err)
	assert.Equal(t, "medium", ds.Title)
}

func TestImportWeights_Errors(t *testing.T) {
	_, err := ImportWeights(filepath.Join(t.TempDir(), "missing.csv"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))

	_, err = ImportWeights(writeFile(t, "noext", "1"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))
}

func TestImportFigure(t *testing.T) {
	path := writeFile(t, "fig.toml", `
title   = "Quarterly"
columns = 2

[[panel]]
title   = "Q1"
weights = [5, 3, 2]
labels  = ["a", "b", "c"]

[[panel]]
title   = "Q2"
weights = [1, 1]
`)

	spec, err := ImportFigure(path)
	require.NoError(t, err)
	assert.Equal(t, "Quarterly", spec.Title)
	assert.Equal(t, 2, spec.Columns)
	require.Len(t, spec.Panels, 2)
	assert.Equal(t, "Q1", spec.Panels[0].Title)
	assert.Equal(t, []string{"a", "b", "c"}, spec.Panels[0].Labels)
	assert.Equal(t, []float64{1, 1}, spec.Panels[1].Weights)
}

func TestImportFigure_Invalid(t *testing.T) {
	_, err := ImportFigure(writeFile(t, "empty.toml", `title = "nothing"`))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = ImportFigure(filepath.Join(t.TempDir(), "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestDetectDelimiter(t *testing.T) {
	assert.Equal(t, ',', DetectDelimiter([]byte("a,1\nb,2\n")))
	assert.Equal(t, ';', DetectDelimiter([]byte("a;1\nb;2\n")))
	assert.Equal(t, '\t', DetectDelimiter([]byte("a\t1\nb\t2\n")))
	assert.Equal(t, ',', DetectDelimiter([]byte("1\n2\n")))
}

func TestLayoutJSON_RoundTrip(t *testing.T) {
	spec := figure.Spec{Panels: []figure.Panel{{Title: "x", Weights: []float64{5, 3, 2}}}}
	l := figure.Build(spec, 200, 100, partition.DefaultMaxDepth)

	var buf bytes.Buffer
	require.NoError(t, WriteLayoutJSON(&buf, l))

	back, err := ReadLayoutJSON(&buf)
	require.NoError(t, err)
	assert.Equal(t, l.Width, back.Width)
	assert.Equal(t, l.Panels[0].Leaves, back.Panels[0].Leaves)

	path := filepath.Join(t.TempDir(), "layout.json")
	require.NoError(t, ExportLayoutJSON(l, path))
	fromFile, err := ImportLayoutJSON(path)
	require.NoError(t, err)
	assert.Equal(t, back, fromFile)
}

func TestDataset_Spec(t *testing.T) {
	ds := Dataset{Title: "t", Weights: []float64{1}, Labels: []string{"a"}}
	spec := ds.Spec()
	require.Len(t, spec.Panels, 1)
	assert.Equal(t, ds.Panel(), spec.Panels[0])
}
