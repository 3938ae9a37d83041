// Package styles defines how partition cells, titles and empty panels are
// drawn in SVG output.
package styles

import "bytes"

// Style defines the visual appearance of SVG output.
type Style interface {
	// RenderDefs writes SVG <defs> content (filters, patterns, gradients).
	RenderDefs(buf *bytes.Buffer)
	// RenderCell writes the SVG for one leaf rectangle.
	RenderCell(buf *bytes.Buffer, c Cell)
	// RenderTitle writes a panel or figure title.
	RenderTitle(buf *bytes.Buffer, t Title)
	// RenderPlaceholder writes the content of a panel with nothing to draw.
	RenderPlaceholder(buf *bytes.Buffer, p Placeholder)
}

// Cell contains all data needed to render one leaf.
type Cell struct {
	ID         string  // Unique element id, e.g. "p0-c3"
	X, Y, W, H float64 // Position and dimensions
	Fill       string  // Palette color
	TextColor  string  // Contrasting text color for Fill
	Label      string  // Optional label text
	Weight     float64 // Weight (sum of weights if merged)
	Count      int     // Number of weights covered
}

// Title is a line of heading text centered on CX.
type Title struct {
	Text   string
	CX, Y  float64
	Size   float64
	Figure bool // figure title rather than panel title
}

// Placeholder marks a panel without positive weights.
type Placeholder struct {
	X, Y, W, H float64
	Text       string
}

// Style names.
const (
	StyleSimple  = "simple"
	StyleLabeled = "labeled"
)

// Names returns the registered style names.
func Names() []string {
	return []string{StyleSimple, StyleLabeled}
}

// Named returns the style registered under name. The empty name selects
// the simple style.
func Named(name string) (Style, bool) {
	switch name {
	case StyleSimple, "":
		return Simple{}, true
	case StyleLabeled:
		return Labeled{}, true
	}
	return nil, false
}
