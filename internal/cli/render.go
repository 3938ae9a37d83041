package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/core/render/styles"
	"github.com/matzehuels/treesplit/pkg/errors"
	tsio "github.com/matzehuels/treesplit/pkg/io"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// defaultBase names output files when no input file or title is given.
const defaultBase = "treemap"

// renderFlags holds the output flags shared by render and sheet.
type renderFlags struct {
	output  string
	formats string
	noCache bool
}

func (f *renderFlags) register(cmd *cobra.Command, opts *pipeline.Options) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): "+strings.Join(pipeline.FormatNames(), ", ")+" (comma-separated, default svg)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")
	cmd.Flags().StringVar(&opts.Style, "style", pipeline.DefaultStyle, "visual style: "+strings.Join(styles.Names(), ", "))
	cmd.Flags().StringVar(&opts.Palette, "palette", pipeline.DefaultPalette, "palette: "+paletteHelp())
	cmd.Flags().Float64Var(&opts.Scale, "scale", pipeline.DefaultScale, "PNG pixels per unit")
}

// renderCommand creates the render command, which draws a single dataset
// or a previously computed layout.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		in         inputFlags
		lf         layoutFlags
		rf         renderFlags
		layoutPath string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Render a binary-split treemap to SVG, PNG, PDF, JSON or DXF",
		Long: `Render a binary-split treemap to SVG, PNG, PDF, JSON or DXF.

The weights come from a file (JSON, CSV, TOML or XLSX), from standard input
as CSV when the argument is "-", from --weights, or from a built-in --sample.
With --layout a layout JSON (from 'partition --json' or 'render -f json') is
drawn as is, without partitioning again.

Layouts and rendered files are cached; --refresh recomputes them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(rf.formats)
			c.applyConfig(cmd, &opts)
			if layoutPath != "" {
				keepLayoutMetadata(cmd, &opts)
				return c.runRenderLayout(cmd.Context(), layoutPath, opts, rf)
			}
			if err := in.apply(cmd, args, &opts); err != nil {
				return err
			}
			lf.apply(c, cmd, &opts)
			return c.runRender(cmd.Context(), opts, rf, outputBase(rf.output, args, opts.Title))
		},
	}

	in.register(cmd)
	lf.register(cmd, pipeline.DefaultWidth, pipeline.DefaultHeight)
	rf.register(cmd, &opts)
	cmd.Flags().StringVar(&layoutPath, "layout", "", "render a layout JSON file instead of partitioning")

	return cmd
}

// runRender executes the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, rf renderFlags, base string) error {
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, rf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := c.newSpinnerWithContext(ctx, "Rendering treemap...")
	spinner.Start()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()
	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(res.Artifacts, rf.output, base)
	if err != nil {
		return err
	}
	c.Logger.Debug("render finished", "hash", res.DatasetHash)
	prog.done("Rendered treemap")

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(res.Stats.Panels, res.Stats.Weights, res.Stats.Leaves, res.CacheInfo.RenderHit)
	return nil
}

// runRenderLayout renders a stored layout without partitioning again.
func (c *CLI) runRenderLayout(ctx context.Context, path string, opts pipeline.Options, rf renderFlags) error {
	opts.Logger = c.Logger
	layout, err := tsio.ImportLayoutJSON(path)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, rf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, layout, opts)
	if err != nil {
		return err
	}

	base := strings.TrimSuffix(basePath(rf.output, path), ".layout")
	paths, err := writeArtifacts(artifacts, rf.output, base)
	if err != nil {
		return err
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(layout.Panels), 0, layout.LeafCount(), cacheHit)
	return nil
}

// keepLayoutMetadata clears the style and palette defaults that were not
// set explicitly, so a stored layout renders with the ones it records.
func keepLayoutMetadata(cmd *cobra.Command, opts *pipeline.Options) {
	if !cmd.Flags().Changed("style") && opts.Style == pipeline.DefaultStyle {
		opts.Style = ""
	}
	if !cmd.Flags().Changed("palette") && opts.Palette == pipeline.DefaultPalette {
		opts.Palette = ""
	}
}

// writeArtifacts writes each rendered format to disk. A single format
// goes to output verbatim when given; otherwise files are named
// base.<format>. The written paths are returned in format order.
func writeArtifacts(artifacts map[string][]byte, output, base string) ([]string, error) {
	formats := make([]string, 0, len(artifacts))
	for f := range artifacts {
		formats = append(formats, f)
	}
	sort.Strings(formats)

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		path := base + "." + f
		if len(formats) == 1 && output != "" && filepath.Ext(output) != "" {
			path = output
		}
		if err := errors.ValidateOutputPath(path); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, artifacts[f], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// outputBase picks the base path for rendered files: the output flag, the
// input file name, a slug of the title, or "treemap". Standard input
// counts as no file.
func outputBase(output string, args []string, title string) string {
	if output != "" {
		return basePath(output, "")
	}
	if len(args) > 0 && args[0] != stdinArg {
		return basePath("", args[0])
	}
	if slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(title), "-"), "-"); slug != "" {
		return slug
	}
	return defaultBase
}
