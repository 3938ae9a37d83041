package sink

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yofu/dxf"

	"github.com/matzehuels/treesplit/pkg/core/figure"
)

// DXF layer names.
const (
	dxfLayerCells  = "CELLS"
	dxfLayerFrames = "FRAMES"
	dxfLayerTitles = "TITLES"
)

// RenderDXF writes every leaf as a closed polyline on the CELLS layer and
// panel plot areas on the FRAMES layer. DXF's y axis points up, so the
// layout is flipped vertically.
func RenderDXF(l figure.Layout) ([]byte, error) {
	d := dxf.NewDrawing()
	flip := func(y float64) float64 { return l.Height - y }

	if _, err := d.AddLayer(dxfLayerFrames, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return nil, fmt.Errorf("dxf layer: %w", err)
	}
	for _, p := range l.Panels {
		if _, err := d.LwPolyline(true, dxfCorners(p.Plot.X, p.Plot.Y, p.Plot.W, p.Plot.H, flip)...); err != nil {
			return nil, fmt.Errorf("dxf frame: %w", err)
		}
	}

	if _, err := d.AddLayer(dxfLayerCells, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return nil, fmt.Errorf("dxf layer: %w", err)
	}
	for _, p := range l.Panels {
		for _, leaf := range p.Leaves {
			if _, err := d.LwPolyline(true, dxfCorners(leaf.X, leaf.Y, leaf.W, leaf.H, flip)...); err != nil {
				return nil, fmt.Errorf("dxf cell: %w", err)
			}
		}
	}

	if _, err := d.AddLayer(dxfLayerTitles, dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return nil, fmt.Errorf("dxf layer: %w", err)
	}
	for _, p := range l.Panels {
		if p.Title == "" {
			continue
		}
		if _, err := d.Text(p.Title, p.Frame.X, flip(p.Frame.Y+figure.TitleHeight*0.7), 0, panelTitleSize*0.7); err != nil {
			return nil, fmt.Errorf("dxf title: %w", err)
		}
	}

	// The drawing can only be written to a named file.
	dir, err := os.MkdirTemp("", "treesplit-dxf-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "layout.dxf")
	if err := d.SaveAs(path); err != nil {
		return nil, fmt.Errorf("write dxf: %w", err)
	}
	return os.ReadFile(path)
}

func dxfCorners(x, y, w, h float64, flip func(float64) float64) [][]float64 {
	return [][]float64{
		{x, flip(y)},
		{x + w, flip(y)},
		{x + w, flip(y + h)},
		{x, flip(y + h)},
	}
}
