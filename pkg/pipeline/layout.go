package pipeline

import (
	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
)

// ComputeLayout partitions every panel of spec on the canvas the options
// describe. Render options are not recorded here; the JSON sink stamps
// them on the serialized copy.
func ComputeLayout(spec figure.Spec, opts Options) figure.Layout {
	return figure.Build(spec, opts.Width, opts.Height, opts.Depth())
}

// applyLayoutMetadata fills render options the caller left unset from the
// layout being rendered. This lets a layout exported as JSON re-render
// with the style and palette it was exported with.
func applyLayoutMetadata(opts Options, l figure.Layout) Options {
	if opts.Style == "" && l.Style != "" {
		opts.Style = l.Style
	}
	if opts.Palette == "" && len(l.Palette) > 0 {
		opts.Palette = palette.Palette(l.Palette).String()
	}
	return opts
}
