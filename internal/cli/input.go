package cli

import (
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/errors"
	tsio "github.com/matzehuels/treesplit/pkg/io"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// stdinArg reads a CSV dataset from standard input.
const stdinArg = "-"

// inputFlags selects the dataset for the commands that partition a single
// weight list: a file argument, --weights, or --sample.
type inputFlags struct {
	weights string
	labels  string
	sample  string
	title   string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.weights, "weights", "w", "", "comma-separated weights, e.g. 5,3,2")
	cmd.Flags().StringVar(&f.labels, "labels", "", "comma-separated labels, one per weight")
	cmd.Flags().StringVar(&f.sample, "sample", "", "built-in dataset: small, medium, large, very-large")
	cmd.Flags().StringVarP(&f.title, "title", "t", "", "figure title (default: from the input)")
}

// apply resolves the dataset into opts. A file argument wins over the
// flags; "-" reads CSV from the command's standard input.
func (f *inputFlags) apply(cmd *cobra.Command, args []string, opts *pipeline.Options) error {
	opts.Title = f.title
	switch {
	case len(args) > 0 && args[0] == stdinArg:
		ds, err := tsio.ReadWeights(cmd.InOrStdin(), tsio.FormatCSV)
		if err != nil {
			return err
		}
		opts.Weights, opts.Labels = ds.Weights, ds.Labels
		if opts.Title == "" {
			opts.Title = ds.Title
		}
	case len(args) > 0:
		opts.Input = args[0]
	case f.weights != "":
		w, err := parseWeights(f.weights)
		if err != nil {
			return err
		}
		opts.Weights = w
		opts.Labels = parseLabels(f.labels)
	case f.sample != "":
		opts.Sample = f.sample
	default:
		return errors.New(errors.ErrCodeInvalidInput, "no input: pass a file, --weights or --sample")
	}
	return nil
}

// layoutFlags controls the canvas and the depth limit.
type layoutFlags struct {
	width        float64
	height       float64
	maxDepth     int
	noDepthLimit bool
}

func (f *layoutFlags) register(cmd *cobra.Command, width, height float64) {
	cmd.Flags().Float64Var(&f.width, "width", width, "canvas width")
	cmd.Flags().Float64Var(&f.height, "height", height, "canvas height")
	cmd.Flags().IntVar(&f.maxDepth, "max-depth", pipeline.DefaultMaxDepth, "maximum split depth; deeper weights merge into one cell")
	cmd.Flags().BoolVar(&f.noDepthLimit, "no-depth-limit", false, "split until every weight has its own cell")
}

// apply copies the flags into opts, then fills unset flags from the config.
func (f *layoutFlags) apply(c *CLI, cmd *cobra.Command, opts *pipeline.Options) {
	opts.Width = f.width
	opts.Height = f.height
	opts.MaxDepth = pipeline.WithMaxDepth(f.maxDepth)
	c.applyConfig(cmd, opts)
	if f.noDepthLimit {
		opts.MaxDepth = pipeline.WithMaxDepth(partition.NoDepthLimit)
	}
}

// depthLabel formats a depth limit for display.
func depthLabel(d int) string {
	if d >= math.MaxInt {
		return "none"
	}
	return strconv.Itoa(d)
}
