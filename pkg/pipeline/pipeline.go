// Package pipeline provides the partition pipeline shared by the CLI and the
// HTTP API.
//
// This package implements the complete parse → layout → render pipeline. By
// centralizing this logic, the CLI and the server apply the same defaults,
// validation and caching.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Parse: Resolve the figure spec from inline weights, a dataset file, a
//     TOML figure or a builtin sample
//  2. Layout: Partition every panel into its plot rectangle
//  3. Render: Generate output in various formats (SVG, PNG, PDF, JSON, DXF)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Weights: []float64{5, 3, 2},
//	    Formats: []string{"svg", "png"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	spec, err := pipeline.Parse(opts)
//	layout, err := runner.Layout(ctx, spec, opts)
//	artifacts, err := runner.Render(ctx, layout, opts)
package pipeline

import (
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treesplit/pkg/cache"
	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/core/render/styles"
	"github.com/matzehuels/treesplit/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = 800.0

	// DefaultHeight is the default canvas height.
	DefaultHeight = 800.0

	// DefaultMaxDepth is the default number of split levels.
	DefaultMaxDepth = partition.DefaultMaxDepth

	// DefaultStyle is the default SVG style.
	DefaultStyle = styles.StyleSimple

	// DefaultPalette is the default palette name.
	DefaultPalette = palette.Default

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDXF  = "dxf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDXF:  true,
}

// FormatNames returns the supported output formats in sorted order.
func FormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for f := range ValidFormats {
		names = append(names, f)
	}
	slices.Sort(names)
	return names
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the partition pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options. Exactly one source is used, in this order: Figure,
	// FigurePath, Input, Sample, then the inline Weights.
	Title      string       `json:"title,omitempty"`
	Weights    []float64    `json:"weights,omitempty"`
	Labels     []string     `json:"labels,omitempty"`
	Figure     *figure.Spec `json:"figure,omitempty"`
	Input      string       `json:"-"` // dataset file (CLI only)
	FigurePath string       `json:"-"` // TOML figure file (CLI only)
	Sample     string       `json:"sample,omitempty"`

	// Layout options. A nil MaxDepth means DefaultMaxDepth; zero is a
	// valid depth limit that yields one cell per panel.
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	MaxDepth *int    `json:"max_depth,omitempty"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Style   string   `json:"style,omitempty"`
	Palette string   `json:"palette,omitempty"`
	Scale   float64  `json:"scale,omitempty"`
	Refresh bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Spec is the parsed figure spec.
	Spec figure.Spec

	// DatasetHash is the content hash of the parsed figure.
	DatasetHash string

	// Layout is the computed figure.
	Layout figure.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Panels     int
	Weights    int
	Leaves     int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)",
			format, strings.Join(FormatNames(), ", "))
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateStyle checks that a style is valid.
func ValidateStyle(style string) error {
	if _, ok := styles.Named(style); !ok || style == "" {
		return errors.New(errors.ErrCodeInvalidStyle, "invalid style: %q (must be one of: %s)",
			style, strings.Join(styles.Names(), ", "))
	}
	return nil
}

// ValidatePalette checks that a palette name or color list resolves.
func ValidatePalette(p string) error {
	if _, err := palette.Resolve(p); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPalette, err, "invalid palette %q", p)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse checks that the options name a source.
func (o *Options) ValidateForParse() error {
	if o.Figure == nil && o.FigurePath == "" && o.Input == "" && o.Sample == "" && o.Weights == nil {
		return errors.New(errors.ErrCodeInvalidInput, "weights, input file, figure or sample is required")
	}
	if o.Figure == nil && o.FigurePath == "" && o.Input == "" && o.Sample == "" {
		if err := errors.ValidateWeightCount(len(o.Weights)); err != nil {
			return err
		}
		if len(o.Labels) > 0 && len(o.Labels) != len(o.Weights) {
			return errors.New(errors.ErrCodeInvalidInput, "%d labels for %d weights", len(o.Labels), len(o.Weights))
		}
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.MaxDepth == nil {
		d := DefaultMaxDepth
		o.MaxDepth = &d
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	if *o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth must not be negative, got %d", *o.MaxDepth)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Style == "" {
		o.Style = DefaultStyle
	}
	if o.Palette == "" {
		o.Palette = DefaultPalette
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateStyle(o.Style); err != nil {
		return err
	}
	if o.Scale < 0 || o.Scale > 8 {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be in (0, 8], got %g", o.Scale)
	}
	if slices.Contains(o.Formats, FormatPNG) {
		if err := errors.ValidatePixels(o.Width, o.Height, o.Scale); err != nil {
			return err
		}
	}
	return ValidatePalette(o.Palette)
}

// Depth returns the effective depth limit.
func (o *Options) Depth() int {
	if o.MaxDepth == nil {
		return DefaultMaxDepth
	}
	return *o.MaxDepth
}

// WithMaxDepth returns a pointer to d, for setting Options.MaxDepth.
func WithMaxDepth(d int) *int {
	return &d
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:    o.Width,
		Height:   o.Height,
		MaxDepth: o.Depth(),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that do not affect a format are left out of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatSVG:
		k.Style, k.Palette = o.Style, o.Palette
	case FormatPNG:
		k.Palette, k.Scale = o.Palette, o.Scale
	case FormatPDF:
		k.Palette = o.Palette
	case FormatJSON:
		k.Style, k.Palette = o.Style, o.Palette
	}
	return k
}
