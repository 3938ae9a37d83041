package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// partitionCommand creates the partition command, which prints the leaf
// rectangles of a single dataset.
func (c *CLI) partitionCommand() *cobra.Command {
	var (
		in      inputFlags
		lf      layoutFlags
		asJSON  bool
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "partition [file|-]",
		Short: "Print the cells of a binary-split treemap",
		Long: `Print the cells of a binary-split treemap.

The weights come from a file (JSON, CSV, TOML or XLSX), from standard input
as CSV when the argument is "-", from --weights, or from a built-in --sample.
Weights that are zero, negative or not finite are ignored.

The table lists one row per cell in drawing order. Use --json to print the
full layout instead; the JSON can be rendered later with 'render --layout'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.apply(cmd, args, &opts); err != nil {
				return err
			}
			lf.apply(c, cmd, &opts)
			return c.runPartition(cmd.Context(), cmd.OutOrStdout(), opts, asJSON, output, noCache)
		},
	}

	in.register(cmd)
	lf.register(cmd, pipeline.DefaultWidth, pipeline.DefaultHeight)
	cmd.Flags().StringVar(&opts.Palette, "palette", "", "palette for the color column: "+paletteHelp())
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the layout as JSON")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the JSON layout to a file (implies --json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if cached")

	return cmd
}

// runPartition computes the layout and prints it as a table or JSON.
func (c *CLI) runPartition(ctx context.Context, w io.Writer, opts pipeline.Options, asJSON bool, output string, noCache bool) error {
	opts.Logger = c.Logger
	if err := opts.ValidateForParse(); err != nil {
		return err
	}
	if opts.Palette != "" {
		if err := pipeline.ValidatePalette(opts.Palette); err != nil {
			return err
		}
	}

	spec, err := pipeline.Parse(opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	layout, cacheHit, err := runner.LayoutWithCacheInfo(ctx, spec, opts)
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	c.Logger.Debug("layout ready", "leaves", layout.LeafCount(), "cached", cacheHit)

	if asJSON || output != "" {
		data, err := figure.MarshalLayout(layout)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode layout")
		}
		if output == "" {
			_, err = fmt.Fprintln(w, string(data))
			return err
		}
		if err := errors.ValidateOutputPath(output); err != nil {
			return err
		}
		if err := os.WriteFile(output, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", output, err)
		}
		printSuccess("Layout written")
		printFile(output)
		printNewline()
		printNextStep("Render", appName+" render --layout "+output)
		return nil
	}

	pal, err := palette.Resolve(opts.Palette)
	if err != nil {
		return err
	}
	for i, p := range layout.Panels {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, panelHeading(p, i))
		if p.Empty {
			fmt.Fprintln(w, StyleDim.Render("  no positive weights"))
			continue
		}
		fmt.Fprintln(w, leafTable(p, pal).Render())
	}
	fmt.Fprintln(w, StyleDim.Render(fmt.Sprintf("%d cells · depth limit %s · %s",
		layout.LeafCount(), depthLabel(layout.MaxDepth), cacheStatus(cacheHit))))
	return nil
}

// panelHeading returns the title line printed above a panel's table.
func panelHeading(p figure.PanelLayout, i int) string {
	title := p.Title
	if title == "" {
		title = fmt.Sprintf("Panel %d", i+1)
	}
	return StyleTitle.Render(title) + " " + StyleDim.Render(p.Plot.String())
}

// leafRows formats the leaves of a panel as table rows.
func leafRows(p figure.PanelLayout) [][]string {
	rows := make([][]string, 0, len(p.Leaves))
	for i, l := range p.Leaves {
		label := p.LeafLabel(l)
		if label == "" && l.Merged() {
			label = fmt.Sprintf("%d merged", l.Count)
		}
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			label,
			formatFloat(l.Weight),
			formatFloat(l.X),
			formatFloat(l.Y),
			formatFloat(l.W),
			formatFloat(l.H),
			strconv.Itoa(l.Depth),
			"",
		})
	}
	return rows
}

// leafTable renders a panel's leaves with a color swatch column.
func leafTable(p figure.PanelLayout, pal palette.Palette) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	numStyle := lipgloss.NewStyle().Foreground(colorWhite).Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Label", "Weight", "X", "Y", "W", "H", "Depth", "Color").
		Rows(leafRows(p)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			switch col {
			case 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			case 1:
				if p.Leaves[row].Merged() {
					return lipgloss.NewStyle().Foreground(colorYellow)
				}
				return StyleValue
			case 8:
				return lipgloss.NewStyle().Background(lipgloss.Color(pal.At(p.Leaves[row].Color))).Width(6)
			}
			return numStyle
		})
}

// formatFloat prints v with at most two decimals.
func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func cacheStatus(hit bool) string {
	if hit {
		return styleCached.Render(iconCached)
	}
	return styleComputed.Render(iconFresh)
}

func paletteHelp() string {
	return strings.Join(palette.Names(), ", ") + " or #hex,#hex,..."
}
