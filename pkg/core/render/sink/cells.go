package sink

import (
	"fmt"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/render/styles"
)

// emptyText is drawn inside panels that have no positive weights.
const emptyText = "no positive values"

// panelTitleSize and figureTitleSize are font sizes in canvas units.
const (
	panelTitleSize  = 14.0
	figureTitleSize = 18.0
)

// resolvePalette picks the palette for a render: explicit option first,
// then the layout's palette, then the default.
func resolvePalette(explicit palette.Palette, l figure.Layout) palette.Palette {
	if len(explicit) > 0 {
		return explicit
	}
	if p := palette.Palette(l.Palette); p.Validate() == nil {
		return p
	}
	p, _ := palette.Named(palette.Default)
	return p
}

// panelCells converts a panel's leaves into style cells, in emission order.
func panelCells(idx int, p figure.PanelLayout, pal palette.Palette) []styles.Cell {
	cells := make([]styles.Cell, len(p.Leaves))
	for i, l := range p.Leaves {
		cells[i] = styles.Cell{
			ID:        fmt.Sprintf("p%d-c%d", idx, l.Color),
			X:         l.X,
			Y:         l.Y,
			W:         l.W,
			H:         l.H,
			Fill:      pal.At(l.Color),
			TextColor: pal.TextColor(l.Color),
			Label:     p.LeafLabel(l),
			Weight:    l.Weight,
			Count:     l.Count,
		}
	}
	return cells
}

// panelTitle returns the title for a panel, centered in its title band.
func panelTitle(p figure.PanelLayout) styles.Title {
	return styles.Title{
		Text: p.Title,
		CX:   p.Frame.X + p.Frame.W/2,
		Y:    p.Frame.Y + figure.TitleHeight*0.7,
		Size: panelTitleSize,
	}
}

// figureTitle returns the figure heading.
func figureTitle(l figure.Layout) styles.Title {
	return styles.Title{
		Text:   l.Title,
		CX:     l.Width / 2,
		Y:      figure.Gap + figure.FigureTitleHeight*0.6,
		Size:   figureTitleSize,
		Figure: true,
	}
}

func placeholder(p figure.PanelLayout) styles.Placeholder {
	return styles.Placeholder{X: p.Plot.X, Y: p.Plot.Y, W: p.Plot.W, H: p.Plot.H, Text: emptyText}
}
