package pipeline

import (
	"fmt"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/render/sink"
	"github.com/matzehuels/treesplit/pkg/core/render/styles"
	"github.com/matzehuels/treesplit/pkg/errors"
)

// Render generates output artifacts in the requested formats. Style and
// palette default to the ones recorded on the layout.
func Render(l figure.Layout, opts Options) (map[string][]byte, error) {
	opts = applyLayoutMetadata(opts, l)
	opts.SetRenderDefaults()

	pal, err := palette.Resolve(opts.Palette)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPalette, err, "invalid palette %q", opts.Palette)
	}
	style, ok := styles.Named(opts.Style)
	if !ok {
		return nil, ValidateStyle(opts.Style)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(l, sink.WithStyle(style), sink.WithPalette(pal))
		case FormatPNG:
			data, err = sink.RenderPNG(l, sink.WithScale(opts.Scale), sink.WithPNGPalette(pal))
		case FormatPDF:
			data, err = sink.RenderPDF(l, sink.WithPDFPalette(pal))
		case FormatJSON:
			data, err = sink.RenderJSON(l, sink.WithJSONStyle(opts.Style), sink.WithJSONPalette(pal))
		case FormatDXF:
			data, err = sink.RenderDXF(l)
		default:
			return nil, ValidateFormat(format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
