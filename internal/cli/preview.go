package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// previewCommand creates the preview command, an interactive terminal view
// of a single treemap.
func (c *CLI) previewCommand() *cobra.Command {
	var (
		in       inputFlags
		maxDepth int
		noLabels bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "preview [file|-]",
		Short: "Explore a treemap in the terminal",
		Long: `Explore a treemap in the terminal.

The treemap fills the window and is recomputed when the window is resized.
Use + and - to change the depth limit, p to cycle palettes, l to toggle
labels and q to quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := in.apply(cmd, args, &opts); err != nil {
				return err
			}
			opts.MaxDepth = pipeline.WithMaxDepth(maxDepth)
			c.applyConfig(cmd, &opts)
			return c.runPreview(cmd.Context(), opts, !noLabels)
		},
	}

	in.register(cmd)
	cmd.Flags().IntVar(&maxDepth, "max-depth", pipeline.DefaultMaxDepth, "initial depth limit")
	cmd.Flags().StringVar(&opts.Palette, "palette", "", "initial palette: "+paletteHelp())
	cmd.Flags().BoolVar(&noLabels, "no-labels", false, "start with labels hidden")

	return cmd
}

func (c *CLI) runPreview(ctx context.Context, opts pipeline.Options, labels bool) error {
	if err := opts.ValidateForParse(); err != nil {
		return err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}
	spec, err := pipeline.Parse(opts)
	if err != nil {
		return err
	}
	if len(spec.Panels) != 1 {
		return errors.New(errors.ErrCodeUnsupported, "preview shows a single dataset, got %d panels", len(spec.Panels))
	}

	m, err := newPreviewModel(spec.Panels[0].Title, spec.Panels[0].Weights, spec.Panels[0].Labels, opts.Depth(), opts.Palette)
	if err != nil {
		return err
	}
	m.showLabels = labels

	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// =============================================================================
// Key Bindings
// =============================================================================

type previewKeys struct {
	Deeper    key.Binding
	Shallower key.Binding
	Palette   key.Binding
	Labels    key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func newPreviewKeys() previewKeys {
	return previewKeys{
		Deeper:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "deeper")),
		Shallower: key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "shallower")),
		Palette:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "palette")),
		Labels:    key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "labels")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k previewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Deeper, k.Shallower, k.Help, k.Quit}
}

func (k previewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Deeper, k.Shallower},
		{k.Palette, k.Labels},
		{k.Help, k.Quit},
	}
}

// =============================================================================
// previewModel
// =============================================================================

var (
	previewTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	previewInfoStyle  = lipgloss.NewStyle().Foreground(colorDim)
)

// previewModel is the bubbletea model of the preview command. Each
// terminal row covers two layout units vertically, so cells look roughly
// square.
type previewModel struct {
	title   string
	weights []float64
	labels  []string

	depth      int
	fullDepth  int
	palettes   []palette.Palette
	names      []string
	current    int
	showLabels bool

	width  int
	height int

	keys previewKeys
	help help.Model
}

// newPreviewModel prepares a preview of weights. An empty palette name
// starts with the default palette; a hex list is offered as "custom"
// ahead of the built-in palettes.
func newPreviewModel(title string, weights []float64, labels []string, depth int, paletteName string) (previewModel, error) {
	m := previewModel{
		title:      title,
		weights:    weights,
		labels:     labels,
		depth:      depth,
		showLabels: true,
		keys:       newPreviewKeys(),
		help:       help.New(),
	}
	for _, l := range partition.Partition(weights, partition.Rect{W: 1, H: 1}, partition.NoDepthLimit) {
		m.fullDepth = max(m.fullDepth, l.Depth)
	}

	for _, name := range palette.Names() {
		p, err := palette.Named(name)
		if err != nil {
			return previewModel{}, err
		}
		m.palettes = append(m.palettes, p)
		m.names = append(m.names, name)
	}
	if paletteName == "" {
		paletteName = palette.Default
	}
	if i := slices.Index(m.names, paletteName); i >= 0 {
		m.current = i
	} else {
		p, err := palette.Resolve(paletteName)
		if err != nil {
			return previewModel{}, errors.Wrap(errors.ErrCodeInvalidPalette, err, "palette %q", paletteName)
		}
		m.palettes = append([]palette.Palette{p}, m.palettes...)
		m.names = append([]string{"custom"}, m.names...)
	}
	return m, nil
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Deeper):
			if m.depth < m.fullDepth {
				m.depth++
			}
		case key.Matches(msg, m.keys.Shallower):
			m.depth = max(min(m.depth, m.fullDepth)-1, 0)
		case key.Matches(msg, m.keys.Palette):
			m.current = (m.current + 1) % len(m.palettes)
		case key.Matches(msg, m.keys.Labels):
			m.showLabels = !m.showLabels
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}
	return m, nil
}

func (m previewModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.header()
	footer := m.help.View(m.keys)
	rows := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if rows < 1 {
		return header
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	b.WriteString(m.body(m.width, rows))
	b.WriteString("\n")
	b.WriteString(footer)
	return b.String()
}

func (m previewModel) header() string {
	title := m.title
	if title == "" {
		title = "treemap"
	}
	info := fmt.Sprintf("  %d weights · depth %s · %s", len(m.weights), depthLabel(m.depth), m.names[m.current])
	return previewTitleStyle.Render(title) + previewInfoStyle.Render(info)
}

// body partitions a cols x rows canvas and draws it, one run of equal
// cells per styled segment.
func (m previewModel) body(cols, rows int) string {
	res := partition.Build(m.weights, partition.Rect{W: float64(cols), H: float64(rows * 2)}, m.depth)
	if res.Empty() {
		return lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, previewInfoStyle.Render("no positive weights"))
	}

	grid := leafGrid(res.Leaves, cols, rows)
	text := make([][]rune, rows)
	for r := range text {
		text[r] = []rune(strings.Repeat(" ", cols))
	}
	if m.showLabels {
		m.placeLabels(res, grid, text)
	}

	pal := m.palettes[m.current]
	lines := make([]string, rows)
	for r := 0; r < rows; r++ {
		var line strings.Builder
		for c := 0; c < cols; {
			leaf := grid[r][c]
			end := c + 1
			for end < cols && grid[r][end] == leaf {
				end++
			}
			seg := string(text[r][c:end])
			if leaf >= 0 {
				cursor := res.Leaves[leaf].Color
				seg = lipgloss.NewStyle().
					Background(lipgloss.Color(pal.At(cursor))).
					Foreground(lipgloss.Color(pal.TextColor(cursor))).
					Render(seg)
			}
			line.WriteString(seg)
			c = end
		}
		lines[r] = line.String()
	}
	return strings.Join(lines, "\n")
}

// leafGrid maps every terminal cell to the index of the leaf containing
// its center, or -1.
func leafGrid(leaves []partition.Leaf, cols, rows int) [][]int {
	grid := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, cols)
		py := (float64(r) + 0.5) * 2
		for c := range grid[r] {
			grid[r][c] = -1
			px := float64(c) + 0.5
			for i, l := range leaves {
				if l.Contains(px, py) {
					grid[r][c] = i
					break
				}
			}
		}
	}
	return grid
}

// placeLabels writes each leaf's label into the first row it covers,
// clipped to the leaf's width.
func (m previewModel) placeLabels(res *partition.Result, grid [][]int, text [][]rune) {
	placed := make([]bool, len(res.Leaves))
	for r := range grid {
		for c := range grid[r] {
			i := grid[r][c]
			if i < 0 || placed[i] {
				continue
			}
			placed[i] = true
			for k, ch := range []rune(m.leafLabel(res, res.Leaves[i])) {
				if c+k >= len(grid[r]) || grid[r][c+k] != i {
					break
				}
				text[r][c+k] = ch
			}
		}
	}
}

func (m previewModel) leafLabel(res *partition.Result, l partition.Leaf) string {
	label := formatFloat(l.Weight)
	if len(m.labels) == len(m.weights) && l.Start < len(res.Order) {
		label = m.labels[res.Order[l.Start]]
	}
	if l.Merged() {
		label += fmt.Sprintf(" +%d", l.Count-1)
	}
	return label
}
