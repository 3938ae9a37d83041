// Package figure arranges several independent partitions into a grid.
//
// A [Spec] lists panels, each with its own weights and title. [Build] lays
// the panels out on a fixed-size canvas, reserves a title band above each
// plot area and partitions every panel's weights into its plot rectangle.
// The resulting [Layout] holds everything a sink needs to draw the figure;
// it performs no further geometry.
//
// Panels whose weights contain no positive value are kept in the grid but
// flagged [PanelLayout.Empty], so sinks can draw a blank placeholder with
// the panel title.
package figure

import (
	"fmt"
	"math"

	"github.com/matzehuels/treesplit/pkg/core/partition"
)

const (
	// TitleHeight is the band reserved above each panel for its title.
	TitleHeight = 24.0

	// FigureTitleHeight is the band reserved above the grid when the figure
	// has a title.
	FigureTitleHeight = 36.0

	// Gap is the spacing between panels and around the grid.
	Gap = 12.0
)

// Panel is one dataset to partition.
type Panel struct {
	Title   string    `json:"title,omitempty" toml:"title"`
	Weights []float64 `json:"weights" toml:"weights"`
	Labels  []string  `json:"labels,omitempty" toml:"labels"`
}

// Spec describes a figure: a grid of panels read row by row.
type Spec struct {
	Title   string  `json:"title,omitempty" toml:"title"`
	Columns int     `json:"columns,omitempty" toml:"columns"`
	Panels  []Panel `json:"panels" toml:"panel"`
}

// Single wraps one weight list in a one-panel spec.
func Single(title string, weights []float64, labels []string) Spec {
	return Spec{Columns: 1, Panels: []Panel{{Title: title, Weights: weights, Labels: labels}}}
}

// Grid returns the number of columns and rows used to place the panels.
// When Columns is unset the grid is as square as possible.
func (s Spec) Grid() (cols, rows int) {
	n := len(s.Panels)
	if n == 0 {
		return 0, 0
	}
	cols = s.Columns
	if cols <= 0 {
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	}
	cols = min(cols, n)
	rows = (n + cols - 1) / cols
	return cols, rows
}

// Validate checks that s has at least one panel and that label
// lists match their weights.
func (s Spec) Validate() error {
	if len(s.Panels) == 0 {
		return fmt.Errorf("figure has no panels")
	}
	for i, p := range s.Panels {
		if len(p.Labels) > 0 && len(p.Labels) != len(p.Weights) {
			return fmt.Errorf("panel %d (%q): %d labels for %d weights", i, p.Title, len(p.Labels), len(p.Weights))
		}
	}
	return nil
}

// Layout is a fully computed figure.
type Layout struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Title    string        `json:"title,omitempty"`
	MaxDepth int           `json:"max_depth"`
	Palette  []string      `json:"palette,omitempty"`
	Style    string        `json:"style,omitempty"`
	Panels   []PanelLayout `json:"panels"`
}

// PanelLayout is one partitioned panel.
type PanelLayout struct {
	Title string `json:"title,omitempty"`

	// Frame is the panel's full cell in the grid, title band included.
	Frame partition.Rect `json:"frame"`

	// Plot is the area that was partitioned.
	Plot partition.Rect `json:"plot"`

	Leaves []partition.Leaf `json:"leaves"`

	// Sorted holds the panel's positive weights in descending order.
	Sorted []float64 `json:"sorted,omitempty"`

	// Labels holds the labels aligned with Sorted, if any were supplied.
	Labels []string `json:"labels,omitempty"`

	Empty bool `json:"empty,omitempty"`
}

// LeafLabel returns the label of the leaf's first weight, or "" when the
// panel has no labels.
func (p PanelLayout) LeafLabel(l partition.Leaf) string {
	if l.Start < 0 || l.Start >= len(p.Labels) {
		return ""
	}
	if l.Merged() {
		return fmt.Sprintf("%s +%d", p.Labels[l.Start], l.Count-1)
	}
	return p.Labels[l.Start]
}

// LeafCount returns the total number of leaves over all panels.
func (l Layout) LeafCount() int {
	n := 0
	for _, p := range l.Panels {
		n += len(p.Leaves)
	}
	return n
}

// Build lays out spec on a width x height canvas and partitions each
// panel. maxDepth is passed to [partition.Build] unchanged.
func Build(spec Spec, width, height float64, maxDepth int) Layout {
	l := Layout{
		Width:    width,
		Height:   height,
		Title:    spec.Title,
		MaxDepth: maxDepth,
		Panels:   make([]PanelLayout, 0, len(spec.Panels)),
	}

	cols, rows := spec.Grid()
	if cols == 0 {
		return l
	}

	top := Gap
	if spec.Title != "" {
		top += FigureTitleHeight
	}
	cellW := max(0, (width-Gap*float64(cols+1))/float64(cols))
	cellH := max(0, (height-top-Gap*float64(rows))/float64(rows))

	for i, p := range spec.Panels {
		col, row := i%cols, i/cols
		frame := partition.Rect{
			X: Gap + float64(col)*(cellW+Gap),
			Y: top + float64(row)*(cellH+Gap),
			W: cellW,
			H: cellH,
		}
		l.Panels = append(l.Panels, buildPanel(p, frame, maxDepth))
	}
	return l
}

func buildPanel(p Panel, frame partition.Rect, maxDepth int) PanelLayout {
	plot := frame
	if p.Title != "" {
		th := min(TitleHeight, frame.H)
		plot = partition.Rect{X: frame.X, Y: frame.Y + th, W: frame.W, H: frame.H - th}
	}

	res := partition.Build(p.Weights, plot, maxDepth)
	pl := PanelLayout{
		Title:  p.Title,
		Frame:  frame,
		Plot:   plot,
		Leaves: res.Leaves,
		Sorted: res.Sorted,
		Empty:  res.Empty(),
	}
	if len(p.Labels) == len(p.Weights) && len(p.Labels) > 0 {
		pl.Labels = make([]string, len(res.Order))
		for i, idx := range res.Order {
			pl.Labels[i] = p.Labels[idx]
		}
	}
	return pl
}
