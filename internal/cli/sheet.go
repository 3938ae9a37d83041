package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// Default canvas for multi-panel figures.
const (
	sheetWidth  = 1200.0
	sheetHeight = 900.0
)

// sheetCommand creates the sheet command, which renders a grid of treemaps
// from a TOML figure file or the built-in cheat sheet.
func (c *CLI) sheetCommand() *cobra.Command {
	var (
		lf    layoutFlags
		rf    renderFlags
		title string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "sheet [figure.toml]",
		Short: "Render a grid of treemaps",
		Long: `Render a grid of treemaps, one per panel.

A figure file lists the panels in TOML:

  title = "Storage by team"
  columns = 2

  [[panel]]
  title = "Backend"
  weights = [40, 25, 10]
  labels = ["db", "logs", "cache"]

Without a file the built-in cheat sheet is drawn: one treemap per item-count
band, from a handful of weights to a hundred.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(rf.formats)
			opts.Title = title
			base := outputBase(rf.output, args, "")
			if len(args) > 0 {
				opts.FigurePath = args[0]
			} else {
				opts.Sample = pipeline.SampleCheatSheet
				if rf.output == "" {
					base = pipeline.SampleCheatSheet
				}
			}
			lf.apply(c, cmd, &opts)
			return c.runRender(cmd.Context(), opts, rf, base)
		},
	}

	lf.register(cmd, sheetWidth, sheetHeight)
	rf.register(cmd, &opts)
	cmd.Flags().StringVarP(&title, "title", "t", "", "figure title (default: from the figure)")

	return cmd
}
