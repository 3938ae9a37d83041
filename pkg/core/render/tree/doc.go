// Package tree renders the split tree of a partition as a node-link
// diagram.
//
// [ToDOT] converts a [partition.Result] into Graphviz DOT. Every internal
// node shows its weight sum and split orientation; leaves show their
// weight, the number of merged weights when the depth limit was reached,
// and are filled with their palette color. [RenderSVG] lays the graph out
// in-process with Graphviz.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no external dot binary is required.
package tree
