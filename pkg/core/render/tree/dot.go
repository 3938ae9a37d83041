package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/partition"
)

// Options configures split-tree rendering.
type Options struct {
	// Detailed adds depth and rectangle geometry to node labels.
	Detailed bool

	// Palette fills leaves. Nil uses palette.Default.
	Palette palette.Palette
}

// ToDOT converts the split tree of res to Graphviz DOT. An empty result
// produces a graph with no nodes.
func ToDOT(res *partition.Result, opts Options) string {
	pal := opts.Palette
	if len(pal) == 0 {
		pal, _ = palette.Named(palette.Default)
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	buf.WriteString("\n")

	if res == nil || res.Tree == nil {
		buf.WriteString("}\n")
		return buf.String()
	}

	ids := make(map[*partition.Node]string)
	var edges []string
	next := 0
	res.Tree.Walk(func(n *partition.Node) bool {
		id := fmt.Sprintf("n%d", next)
		next++
		ids[n] = id

		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed), pal)
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(attrs, ", "))
		return true
	})
	res.Tree.Walk(func(n *partition.Node) bool {
		if !n.IsLeaf() {
			edges = append(edges,
				fmt.Sprintf("  %q -> %q;\n", ids[n], ids[n.Left]),
				fmt.Sprintf("  %q -> %q;\n", ids[n], ids[n.Right]))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *partition.Node, detailed bool) string {
	var head string
	switch {
	case !n.IsLeaf():
		head = fmt.Sprintf("%s\n%s", formatWeight(n.Weight), n.Orientation)
	case n.Count > 1:
		head = fmt.Sprintf("%s\n(%d merged)", formatWeight(n.Weight), n.Count)
	default:
		head = formatWeight(n.Weight)
	}
	if !detailed {
		return head
	}
	return fmt.Sprintf("%s\ndepth: %d\n%s", head, n.Depth, n.Rect)
}

func fmtAttrs(n *partition.Node, label string, pal palette.Palette) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if n.IsLeaf() {
		attrs = append(attrs,
			fmt.Sprintf("fillcolor=%q", pal.At(n.Color)),
			fmt.Sprintf("fontcolor=%q", pal.TextColor(n.Color)))
		if n.Count > 1 {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"")
		}
	}
	return attrs
}

func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'g', 6, 64)
}

// RenderSVG lays out a DOT graph with Graphviz and returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// viewBox so the diagram scales with its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
