// Package palette provides the cyclic color palettes used to paint
// partition leaves.
//
// A [Palette] is an ordered list of hex color identifiers. Renderers pick the
// color for a leaf with [Palette.At], passing the leaf's color cursor; the
// palette wraps around when there are more leaves than colors.
package palette

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered, non-empty list of "#rrggbb" colors.
type Palette []string

// hexColor matches a whole "#rgb" or "#rrggbb" entry.
var hexColor = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Default is the name of the palette used when none is configured.
const Default = "tailwind"

// Tailwind holds the 500 shades of the Tailwind color scale.
var Tailwind = Palette{
	"#64748b", // slate
	"#ef4444", // red
	"#f97316", // orange
	"#eab308", // yellow
	"#84cc16", // lime
	"#22c55e", // green
	"#14b8a6", // teal
	"#0ea5e9", // sky
	"#3b82f6", // blue
	"#6366f1", // indigo
	"#a855f7", // purple
	"#ec4899", // pink
}

// Tol is Paul Tol's colorblind-safe qualitative palette.
var Tol = Palette{
	"#4477aa", "#ee6677", "#228833", "#ccbb44", "#66ccee",
	"#aa3377", "#bbbbbb", "#ee8866", "#44bb99", "#ffaabb",
}

// Brewer is ColorBrewer's Set3 qualitative scheme.
var Brewer = Palette{
	"#8dd3c7", "#ffffb3", "#bebada", "#fb8072", "#80b1d3", "#fdb462",
	"#b3de69", "#fccde5", "#d9d9d9", "#bc80bd", "#ccebc5", "#ffed6f",
}

// Blues is ColorBrewer's sequential Blues scheme, dark to light so the
// largest cells get the strongest color.
var Blues = Palette{
	"#08306b", "#08519c", "#2171b5", "#4292c6", "#6baed6",
	"#9ecae1", "#c6dbef", "#deebf7",
}

var builtin = map[string]Palette{
	"tailwind": Tailwind,
	"tol":      Tol,
	"brewer":   Brewer,
	"blues":    Blues,
}

// Names returns the builtin palette names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Named returns a copy of the builtin palette with the given name.
func Named(name string) (Palette, error) {
	p, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown palette: %q (must be one of: %s)", name, strings.Join(Names(), ", "))
	}
	return slices.Clone(p), nil
}

// Resolve accepts either a builtin palette name or a comma-separated list
// of hex colors. An empty string yields the default palette.
func Resolve(s string) (Palette, error) {
	if s == "" {
		return Named(Default)
	}
	if strings.Contains(s, "#") {
		return Parse(s)
	}
	return Named(s)
}

// Parse reads a comma-separated list of hex colors.
func Parse(s string) (Palette, error) {
	var p Palette
	for _, part := range strings.Split(s, ",") {
		c := strings.TrimSpace(part)
		if c == "" {
			continue
		}
		p = append(p, strings.ToLower(c))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate checks that p is non-empty and every entry is a hex color.
func (p Palette) Validate() error {
	if len(p) == 0 {
		return fmt.Errorf("palette is empty")
	}
	for i, c := range p {
		if !hexColor.MatchString(c) {
			return fmt.Errorf("palette entry %d: invalid color %q", i, c)
		}
		if _, err := colorful.Hex(c); err != nil {
			return fmt.Errorf("palette entry %d: invalid color %q", i, c)
		}
	}
	return nil
}

// At returns the color for the given color cursor, wrapping around the
// palette. Negative cursors wrap as well.
func (p Palette) At(cursor int) string {
	n := len(p)
	return p[((cursor%n)+n)%n]
}

// Color returns the parsed color for the cursor. Unparseable entries
// yield black.
func (p Palette) Color(cursor int) colorful.Color {
	c, err := colorful.Hex(p.At(cursor))
	if err != nil {
		return colorful.Color{}
	}
	return c
}

// RGB returns the 8-bit components of the color for the cursor.
func (p Palette) RGB(cursor int) (r, g, b uint8) {
	return p.Color(cursor).RGB255()
}

// TextColor returns "#000000" or "#ffffff", whichever reads better on top
// of the color for the cursor.
func (p Palette) TextColor(cursor int) string {
	l, _, _ := p.Color(cursor).Lab()
	if l > 0.6 {
		return "#000000"
	}
	return "#ffffff"
}

// String returns the palette as a comma-separated list.
func (p Palette) String() string {
	return strings.Join(p, ",")
}
