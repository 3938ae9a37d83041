package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/errors"
)

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func sized(t *testing.T, m previewModel, w, h int) previewModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return next.(previewModel)
}

func press(m previewModel, keys ...string) previewModel {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(previewModel)
	}
	return m
}

func TestLeafGrid(t *testing.T) {
	leaves := partition.Partition([]float64{1, 1}, partition.Rect{W: 4, H: 2}, partition.NoDepthLimit)
	grid := leafGrid(leaves, 4, 1)

	want := []int{0, 0, 1, 1}
	for c, got := range grid[0] {
		if got != want[c] {
			t.Errorf("cell %d = %d, want %d", c, got, want[c])
		}
	}
}

func TestPreviewModelPalettes(t *testing.T) {
	m, err := newPreviewModel("", []float64{1}, nil, 3, "")
	if err != nil {
		t.Fatalf("newPreviewModel() error: %v", err)
	}
	if m.names[m.current] != palette.Default {
		t.Errorf("initial palette = %q, want %q", m.names[m.current], palette.Default)
	}

	m, err = newPreviewModel("", []float64{1}, nil, 3, "#ff0000,#00ff00")
	if err != nil {
		t.Fatalf("newPreviewModel() error: %v", err)
	}
	if m.names[m.current] != "custom" || len(m.names) != len(palette.Names())+1 {
		t.Errorf("custom palette not offered first: %v", m.names)
	}

	_, err = newPreviewModel("", []float64{1}, nil, 3, "nope")
	if !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidPalette)
	}
}

func TestPreviewDepthKeys(t *testing.T) {
	m, err := newPreviewModel("", partitionWeights(8), nil, partition.DefaultMaxDepth, "")
	if err != nil {
		t.Fatal(err)
	}
	if m.fullDepth != 3 {
		t.Fatalf("fullDepth = %d, want 3 for 8 equal weights", m.fullDepth)
	}

	m = press(m, "-")
	if m.depth != 2 {
		t.Errorf("depth after - = %d, want 2", m.depth)
	}
	m = press(m, "-", "-", "-", "_")
	if m.depth != 0 {
		t.Errorf("depth should stop at 0, got %d", m.depth)
	}
	m = press(m, "+", "=", "+", "+", "+")
	if m.depth != 3 {
		t.Errorf("depth should stop at the full depth 3, got %d", m.depth)
	}
}

func TestPreviewToggles(t *testing.T) {
	m, err := newPreviewModel("", []float64{1}, nil, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	start := m.current

	m = press(m, "p", "l", "?")
	if m.current != (start+1)%len(m.palettes) {
		t.Errorf("palette index = %d, want next", m.current)
	}
	if m.showLabels {
		t.Error("l should hide labels")
	}
	if !m.help.ShowAll {
		t.Error("? should expand help")
	}
}

func TestPreviewQuit(t *testing.T) {
	m, err := newPreviewModel("", []float64{1}, nil, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []tea.KeyMsg{keyMsg("q"), {Type: tea.KeyCtrlC}} {
		if _, cmd := m.Update(k); cmd == nil {
			t.Errorf("%s should quit", k)
		}
	}
}

func TestPreviewView(t *testing.T) {
	m, err := newPreviewModel("Disk", []float64{5, 3, 2}, []string{"db", "logs", "tmp"}, partition.DefaultMaxDepth, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before resize = %q", got)
	}

	m = sized(t, m, 60, 20)
	view := m.View()
	for _, want := range []string{"Disk", "3 weights", "db", "logs", "tmp"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	m = press(m, "l")
	if strings.Contains(m.View(), "logs") {
		t.Error("labels should be hidden")
	}
}

func TestPreviewBodySize(t *testing.T) {
	m, err := newPreviewModel("", []float64{4, 3, 2, 1}, nil, partition.DefaultMaxDepth, "")
	if err != nil {
		t.Fatal(err)
	}
	body := m.body(30, 8)
	if lines := strings.Split(body, "\n"); len(lines) != 8 {
		t.Errorf("body has %d lines, want 8", len(lines))
	}
}

func TestPreviewEmpty(t *testing.T) {
	m, err := newPreviewModel("", []float64{0, -1}, nil, 3, "")
	if err != nil {
		t.Fatal(err)
	}
	m = sized(t, m, 40, 10)
	if !strings.Contains(m.View(), "no positive weights") {
		t.Error("empty preview should say so")
	}
}

func partitionWeights(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 1
	}
	return w
}
