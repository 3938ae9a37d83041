package styles

import (
	"bytes"
	"fmt"
	"html"
)

// Minimum cell size for a label to be drawn.
const (
	minLabelWidth  = 36.0
	minLabelHeight = 16.0
)

// Labeled draws Simple cells and writes each cell's label (or weight) in
// its center when the cell is large enough.
type Labeled struct {
	Simple
}

func (s Labeled) RenderCell(buf *bytes.Buffer, c Cell) {
	s.Simple.RenderCell(buf, c)
	if c.W < minLabelWidth || c.H < minLabelHeight {
		return
	}
	text := c.Label
	if text == "" {
		text = formatWeight(c.Weight)
	}
	size := min(12, c.H/2)
	fmt.Fprintf(buf, `    <text class="cell-label" x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="%.1f" fill="%s" pointer-events="none">%s</text>`+"\n",
		c.X+c.W/2, c.Y+c.H/2, fontFamily, size, html.EscapeString(c.TextColor), html.EscapeString(text))
}
