package sink

import (
	"bytes"
	"fmt"

	"github.com/fogleman/gg"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/errors"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale   float64
	palette palette.Palette
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithPNGPalette overrides the palette used for cell fills.
func WithPNGPalette(p palette.Palette) PNGOption {
	return func(r *pngRenderer) { r.palette = p }
}

// RenderPNG rasterizes the layout.
func RenderPNG(l figure.Layout, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("invalid PNG scale: %g", r.scale)
	}
	w, h := int(l.Width*r.scale+0.5), int(l.Height*r.scale+0.5)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid PNG size: %dx%d", w, h)
	}
	if w*h > errors.MaxPixels {
		return nil, fmt.Errorf("PNG too large: %dx%d pixels (max %d)", w, h, errors.MaxPixels)
	}
	pal := resolvePalette(r.palette, l)

	dc := gg.NewContext(w, h)
	dc.Scale(r.scale, r.scale)
	dc.SetHexColor("#ffffff")
	dc.Clear()

	if l.Title != "" {
		t := figureTitle(l)
		dc.SetHexColor("#1e293b")
		dc.DrawStringAnchored(t.Text, t.CX, t.Y, 0.5, 0)
	}

	for _, p := range l.Panels {
		if p.Title != "" {
			t := panelTitle(p)
			dc.SetHexColor("#1e293b")
			dc.DrawStringAnchored(t.Text, t.CX, t.Y, 0.5, 0)
		}
		if p.Empty {
			dc.SetHexColor("#cbd5e1")
			dc.SetDash(4, 3)
			dc.SetLineWidth(1)
			dc.DrawRectangle(p.Plot.X, p.Plot.Y, p.Plot.W, p.Plot.H)
			dc.Stroke()
			dc.SetDash()
			dc.SetHexColor("#94a3b8")
			cx, cy := p.Plot.Center()
			dc.DrawStringAnchored(emptyText, cx, cy, 0.5, 0.5)
			continue
		}
		for _, leaf := range p.Leaves {
			dc.DrawRectangle(leaf.X, leaf.Y, leaf.W, leaf.H)
			dc.SetHexColor(pal.At(leaf.Color))
			dc.FillPreserve()
			dc.SetHexColor("#ffffff")
			dc.SetLineWidth(0.8)
			dc.Stroke()
		}
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
