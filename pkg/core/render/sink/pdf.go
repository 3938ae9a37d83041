package sink

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
)

// PDFOption configures PDF rendering.
type PDFOption func(*pdfRenderer)

type pdfRenderer struct {
	palette palette.Palette
}

// WithPDFPalette overrides the palette used for cell fills.
func WithPDFPalette(p palette.Palette) PDFOption {
	return func(r *pdfRenderer) { r.palette = p }
}

// RenderPDF renders the layout on a single page whose size matches the
// figure, one canvas unit per point.
func RenderPDF(l figure.Layout, opts ...PDFOption) ([]byte, error) {
	r := pdfRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return nil, fmt.Errorf("invalid PDF size: %gx%g", l.Width, l.Height)
	}
	pal := resolvePalette(r.palette, l)

	orientation := "P"
	if l.Width > l.Height {
		orientation = "L"
	}
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: orientation,
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: l.Width, Ht: l.Height},
	})
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()

	if l.Title != "" {
		t := figureTitle(l)
		pdf.SetFont("Helvetica", "B", t.Size)
		pdf.SetTextColor(30, 41, 59)
		pdf.SetXY(0, t.Y-t.Size)
		pdf.CellFormat(l.Width, t.Size, t.Text, "", 0, "C", false, 0, "")
	}

	for _, p := range l.Panels {
		if p.Title != "" {
			pdf.SetFont("Helvetica", "", panelTitleSize)
			pdf.SetTextColor(30, 41, 59)
			pdf.SetXY(p.Frame.X, p.Frame.Y)
			pdf.CellFormat(p.Frame.W, figure.TitleHeight, p.Title, "", 0, "C", false, 0, "")
		}
		if p.Empty {
			pdf.SetDrawColor(203, 213, 225)
			pdf.SetDashPattern([]float64{4, 3}, 0)
			pdf.SetLineWidth(1)
			pdf.Rect(p.Plot.X, p.Plot.Y, p.Plot.W, p.Plot.H, "D")
			pdf.SetDashPattern([]float64{}, 0)
			pdf.SetFont("Helvetica", "", 12)
			pdf.SetTextColor(148, 163, 184)
			pdf.SetXY(p.Plot.X, p.Plot.Y)
			pdf.CellFormat(p.Plot.W, p.Plot.H, emptyText, "", 0, "CM", false, 0, "")
			continue
		}

		pdf.SetDrawColor(255, 255, 255)
		pdf.SetLineWidth(0.8)
		for _, leaf := range p.Leaves {
			cr, cg, cb := pal.RGB(leaf.Color)
			pdf.SetFillColor(int(cr), int(cg), int(cb))
			pdf.Rect(leaf.X, leaf.Y, leaf.W, leaf.H, "FD")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
