package styles

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
)

const (
	borderColor = "white"
	borderWidth = 0.8
	fontFamily  = "Helvetica, Arial, sans-serif"
)

// Simple draws flat cells with a thin white border.
type Simple struct{}

func (Simple) RenderDefs(buf *bytes.Buffer) {}

func (Simple) RenderCell(buf *bytes.Buffer, c Cell) {
	fmt.Fprintf(buf, `    <rect id="%s" class="cell" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="%.1f" data-weight="%s"`,
		html.EscapeString(c.ID), c.X, c.Y, c.W, c.H, html.EscapeString(c.Fill), borderColor, borderWidth, formatWeight(c.Weight))
	if c.Count > 1 {
		fmt.Fprintf(buf, ` data-count="%d"`, c.Count)
	}
	buf.WriteString(">")
	fmt.Fprintf(buf, "<title>%s</title></rect>\n", html.EscapeString(tooltip(c)))
}

func (Simple) RenderTitle(buf *bytes.Buffer, t Title) {
	weight := "normal"
	if t.Figure {
		weight = "bold"
	}
	fmt.Fprintf(buf, `  <text x="%.2f" y="%.2f" text-anchor="middle" font-family="%s" font-size="%.0f" font-weight="%s" fill="#1e293b">%s</text>`+"\n",
		t.CX, t.Y, fontFamily, t.Size, weight, html.EscapeString(t.Text))
}

func (Simple) RenderPlaceholder(buf *bytes.Buffer, p Placeholder) {
	fmt.Fprintf(buf, `    <rect class="placeholder" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="none" stroke="#cbd5e1" stroke-dasharray="4 3"/>`+"\n",
		p.X, p.Y, p.W, p.H)
	fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="12" fill="#94a3b8">%s</text>`+"\n",
		p.X+p.W/2, p.Y+p.H/2, fontFamily, html.EscapeString(p.Text))
}

func tooltip(c Cell) string {
	s := formatWeight(c.Weight)
	if c.Label != "" {
		s = c.Label + ": " + s
	}
	if c.Count > 1 {
		s += fmt.Sprintf(" (%d merged)", c.Count)
	}
	return s
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', 6, 64)
}
