// Package partition computes binary-split treemaps: area-proportional
// partitions of a rectangle into one cell per weight.
//
// # Overview
//
// Given a list of weights and a bounding [Rect], [Partition] recursively
// subdivides the rectangle into a tree of sub-rectangles whose areas are
// proportional to the weights. Each split divides the current (descending)
// weight range where its running sum first reaches half of the range total,
// and cuts the rectangle along its longer side so cells stay reasonably
// square.
//
// The output is a flat list of [Leaf] values in visitation order. Each leaf
// carries a color cursor ([Leaf.Color]) that renderers map onto a cyclic
// palette, so the same input always produces the same coloring.
//
// # Degenerate Inputs
//
// Non-positive (and non-finite) weights are discarded before partitioning.
// If nothing remains, [Partition] returns no leaves; callers decide how to
// present an empty panel. Neither case is an error.
//
// # Depth Limit
//
// maxDepth bounds the number of split levels. A node at depth maxDepth
// becomes a leaf even if it still holds several weights; those weights are
// merged into one cell ([Leaf.Count] > 1). Use [NoDepthLimit] to always
// produce one leaf per weight and [DefaultMaxDepth] for the usual bound.
//
// # Example
//
//	leaves := partition.Partition([]float64{5, 3, 2}, partition.Rect{W: 1, H: 1}, partition.DefaultMaxDepth)
//	for _, l := range leaves {
//	    fmt.Printf("%d: %.2fx%.2f at (%.2f, %.2f)\n", l.Color, l.W, l.H, l.X, l.Y)
//	}
//
// Use [Build] when the sorted weights or the split tree itself are needed,
// for example to draw the tree with the tree sink.
package partition
