package partition

import (
	"cmp"
	"math"
	"slices"
	"sort"
)

const (
	// DefaultMaxDepth allows 13 split levels, enough for one cell per
	// weight on a few thousand roughly balanced weights.
	DefaultMaxDepth = 13

	// NoDepthLimit disables the depth limit.
	NoDepthLimit = math.MaxInt
)

// Leaf is one emitted cell of a partition.
type Leaf struct {
	Rect

	// Color is the color cursor: the leaf's position in visitation order.
	// Renderers pick palette entry Color mod len(palette).
	Color int `json:"color"`

	// Start is the index of the leaf's first weight in the sorted
	// (descending) weight sequence.
	Start int `json:"start"`

	// Count is the number of weights covered by the leaf. It is 1 unless
	// the depth limit merged several weights into one cell.
	Count int `json:"count"`

	// Weight is the sum of the covered weights.
	Weight float64 `json:"weight"`

	// Depth is the recursion depth at which the leaf was emitted.
	Depth int `json:"depth"`
}

// Merged reports whether the leaf stands for more than one weight.
func (l Leaf) Merged() bool { return l.Count > 1 }

// Node is a node of the split tree. Leaves have nil children.
type Node struct {
	Rect        Rect
	Start       int
	Count       int
	Weight      float64
	Depth       int
	Orientation Orientation // meaningful for internal nodes only
	Color       int         // color cursor, leaves only
	Left, Right *Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return n.Left == nil }

// Walk visits n and its descendants in pre-order, left before right.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	n.Left.Walk(fn)
	n.Right.Walk(fn)
}

// Result is the full outcome of [Build].
type Result struct {
	Root   Rect      `json:"root"`
	Sorted []float64 `json:"sorted"`
	// Order maps each sorted position to the index of the weight in the
	// caller's original slice.
	Order  []int   `json:"order"`
	Total  float64 `json:"total"`
	Leaves []Leaf  `json:"leaves"`
	Tree   *Node   `json:"-"`
}

// Empty reports whether no positive weights were supplied.
func (r *Result) Empty() bool { return len(r.Sorted) == 0 }

// Partition splits rect into cells proportional to the positive entries of
// weights and returns them in visitation order.
//
// It returns nil when weights has no positive entries.
func Partition(weights []float64, rect Rect, maxDepth int) []Leaf {
	return build(weights, rect, maxDepth, false).Leaves
}

// Build runs the same algorithm as [Partition] and additionally returns the
// sorted weights and the split tree.
func Build(weights []float64, rect Rect, maxDepth int) *Result {
	return build(weights, rect, maxDepth, true)
}

// Normalize returns the strictly positive, finite entries of weights sorted
// in descending order. The input is not modified.
func Normalize(weights []float64) []float64 {
	order := SortedOrder(weights)
	out := make([]float64, len(order))
	for i, idx := range order {
		out[i] = weights[idx]
	}
	return out
}

// SortedOrder returns the indices of the strictly positive, finite entries
// of weights ordered by descending value. Equal values keep their input
// order.
func SortedOrder(weights []float64) []int {
	order := make([]int, 0, len(weights))
	for i, w := range weights {
		if w > 0 && !math.IsInf(w, 1) {
			order = append(order, i)
		}
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(weights[b], weights[a])
	})
	return order
}

// SplitIndex returns the smallest prefix length k whose sum reaches half of
// the total of sorted, clamped to [1, len(sorted)-1]. sorted must hold at
// least two positive values.
func SplitIndex(sorted []float64) int {
	n := len(sorted)
	cum := make([]float64, n)
	var total float64
	for i, v := range sorted {
		total += v
		cum[i] = total
	}
	half := total / 2
	k := sort.Search(n, func(i int) bool { return cum[i] >= half }) + 1
	return max(1, min(k, n-1))
}

type builder struct {
	sorted   []float64
	maxDepth int
	cursor   int
	leaves   []Leaf
	tree     bool
}

func build(weights []float64, rect Rect, maxDepth int, withTree bool) *Result {
	order := SortedOrder(weights)
	sorted := make([]float64, len(order))
	var total float64
	for i, idx := range order {
		sorted[i] = weights[idx]
		total += sorted[i]
	}

	res := &Result{Root: rect, Sorted: sorted, Order: order, Total: total}
	if len(sorted) == 0 {
		return res
	}

	b := &builder{
		sorted:   sorted,
		maxDepth: max(0, maxDepth),
		leaves:   make([]Leaf, 0, len(sorted)),
		tree:     withTree,
	}
	res.Tree = b.recurse(rect, 0, len(sorted), 0)
	res.Leaves = b.leaves
	return res
}

// recurse partitions sorted[lo:hi] into r. Leaves are appended in
// visitation order: the whole left/top subtree before the right/bottom one.
func (b *builder) recurse(r Rect, lo, hi, depth int) *Node {
	group := b.sorted[lo:hi]
	total := sum(group)

	if len(group) == 1 || depth >= b.maxDepth {
		leaf := Leaf{
			Rect:   r,
			Color:  b.cursor,
			Start:  lo,
			Count:  len(group),
			Weight: total,
			Depth:  depth,
		}
		b.cursor++
		b.leaves = append(b.leaves, leaf)
		if !b.tree {
			return nil
		}
		return &Node{Rect: r, Start: lo, Count: len(group), Weight: total, Depth: depth, Color: leaf.Color}
	}

	k := SplitIndex(group)
	leftSum := sum(group[:k])
	o := ChooseOrientation(r)
	first, second := split(r, o, leftSum/total)

	left := b.recurse(first, lo, lo+k, depth+1)
	right := b.recurse(second, lo+k, hi, depth+1)
	if !b.tree {
		return nil
	}
	return &Node{
		Rect:        r,
		Start:       lo,
		Count:       len(group),
		Weight:      total,
		Depth:       depth,
		Orientation: o,
		Color:       -1,
		Left:        left,
		Right:       right,
	}
}

func sum(vs []float64) float64 {
	var s float64
	for _, v := range vs {
		s += v
	}
	return s
}
