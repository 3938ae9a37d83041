package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/render/styles"
)

const cellInteractionCSS = `
    .cell { transition: opacity 0.15s ease; }
    .panel:hover .cell { opacity: 0.85; }
    .panel .cell:hover { opacity: 1; stroke-width: 2; }`

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style      styles.Style
	palette    palette.Palette
	background string
}

func WithStyle(s styles.Style) SVGOption      { return func(r *svgRenderer) { r.style = s } }
func WithPalette(p palette.Palette) SVGOption { return func(r *svgRenderer) { r.palette = p } }
func WithBackground(color string) SVGOption   { return func(r *svgRenderer) { r.background = color } }

// RenderSVG renders the layout as a standalone SVG document.
func RenderSVG(l figure.Layout, opts ...SVGOption) []byte {
	r := newSVGRenderer(l, opts...)
	pal := resolvePalette(r.palette, l)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		l.Width, l.Height, l.Width, l.Height)

	buf.WriteString("  <defs>\n")
	r.style.RenderDefs(&buf)
	buf.WriteString("  </defs>\n")
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cellInteractionCSS)

	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}
	if l.Title != "" {
		r.style.RenderTitle(&buf, figureTitle(l))
	}

	for i, p := range l.Panels {
		if p.Title != "" {
			r.style.RenderTitle(&buf, panelTitle(p))
		}
		fmt.Fprintf(&buf, `  <g class="panel" id="panel-%d">`+"\n", i)
		if p.Empty {
			r.style.RenderPlaceholder(&buf, placeholder(p))
		}
		for _, c := range panelCells(i, p, pal) {
			r.style.RenderCell(&buf, c)
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(l figure.Layout, opts ...SVGOption) svgRenderer {
	r := svgRenderer{background: "white"}
	if s, ok := styles.Named(l.Style); ok {
		r.style = s
	} else {
		r.style = styles.Simple{}
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}
