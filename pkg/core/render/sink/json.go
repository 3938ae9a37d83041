package sink

import (
	"github.com/matzehuels/treesplit/pkg/core/figure"
)

// JSONOption configures JSON rendering.
type JSONOption func(*figure.Layout)

// WithJSONStyle records the style name in the output.
func WithJSONStyle(style string) JSONOption {
	return func(l *figure.Layout) { l.Style = style }
}

// WithJSONPalette records the palette in the output.
func WithJSONPalette(p []string) JSONOption {
	return func(l *figure.Layout) { l.Palette = p }
}

// RenderJSON serializes the layout. The output can be read back with
// figure.UnmarshalLayout and rendered by any other sink.
func RenderJSON(l figure.Layout, opts ...JSONOption) ([]byte, error) {
	for _, opt := range opts {
		opt(&l)
	}
	return figure.MarshalLayout(l)
}
