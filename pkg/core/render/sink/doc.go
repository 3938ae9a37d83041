// Package sink renders a computed [figure.Layout] to output formats.
//
// # Formats
//
//   - [RenderSVG]: vector output with pluggable [styles.Style]
//   - [RenderPNG]: raster output drawn natively with fogleman/gg
//   - [RenderPDF]: single-page PDF sized to the figure (go-pdf/fpdf)
//   - [RenderJSON]: the serialized layout, for caching or other renderers
//   - [RenderDXF]: closed polylines per cell for plotters and CAD tools
//
// All sinks paint leaves in emission order and pick each leaf's fill with
// palette.At(leaf.Color), so every format colors a partition identically.
// None of them performs further geometry: positions come from the layout.
//
// # Palette
//
// The palette is taken from the option passed to the sink, then from the
// layout's own Palette field, then [palette.Default].
package sink
