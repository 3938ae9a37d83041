package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/core/render/tree"
	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// treeCommand creates the tree command, which draws the split tree behind
// a treemap with Graphviz.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		in       inputFlags
		lf       layoutFlags
		output   string
		detailed bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "tree [file|-]",
		Short: "Draw the split tree of a treemap",
		Long: `Draw the split tree of a treemap.

Each inner node is a split of its rectangle: V for a vertical cut, H for a
horizontal one. Leaves are filled with the color of their cell.

The DOT source is printed to standard output unless -o names a file. A file
ending in .svg is laid out with Graphviz; anything else receives DOT.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.apply(cmd, args, &opts); err != nil {
				return err
			}
			lf.apply(c, cmd, &opts)
			return c.runTree(cmd.Context(), cmd.OutOrStdout(), opts, output, detailed)
		},
	}

	in.register(cmd)
	lf.register(cmd, pipeline.DefaultWidth, pipeline.DefaultHeight)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg or .dot)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "show depth and geometry on every node")
	cmd.Flags().StringVar(&opts.Palette, "palette", "", "leaf colors: "+paletteHelp())

	return cmd
}

// runTree partitions a single dataset and writes its split tree.
func (c *CLI) runTree(ctx context.Context, w io.Writer, opts pipeline.Options, output string, detailed bool) error {
	if err := opts.ValidateForParse(); err != nil {
		return err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	pal, err := palette.Resolve(opts.Palette)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q", opts.Palette)
	}

	spec, err := pipeline.Parse(opts)
	if err != nil {
		return err
	}
	if len(spec.Panels) != 1 {
		return errors.New(errors.ErrCodeUnsupported, "tree draws a single dataset, got %d panels", len(spec.Panels))
	}

	res := partition.Build(spec.Panels[0].Weights, partition.Rect{W: opts.Width, H: opts.Height}, opts.Depth())
	c.Logger.Debug("built split tree", "leaves", len(res.Leaves), "depth", depthLabel(opts.Depth()))
	dot := tree.ToDOT(res, tree.Options{Detailed: detailed, Palette: pal})

	if output == "" {
		_, err := io.WriteString(w, dot)
		return err
	}
	if err := errors.ValidateOutputPath(output); err != nil {
		return err
	}

	data := []byte(dot)
	if strings.EqualFold(filepath.Ext(output), ".svg") {
		data, err = tree.RenderSVG(ctx, dot)
		if err != nil {
			return fmt.Errorf("render tree: %w", err)
		}
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Split tree written")
	printFile(output)
	return nil
}
