package partition

import "fmt"

// Rect is an axis-aligned box with its origin at the top-left corner.
// W and H are expected to be non-negative.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Area returns W*H.
func (r Rect) Area() float64 { return r.W * r.H }

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() (cx, cy float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Contains reports whether the point lies inside r (edges inclusive on the
// top/left, exclusive on the bottom/right).
func (r Rect) Contains(px, py float64) bool {
	return px >= r.X && px < r.Right() && py >= r.Y && py < r.Bottom()
}

// Intersect returns the overlapping region of r and o. The result has zero
// size if they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Inset shrinks r by d on every side, never below zero size.
func (r Rect) Inset(d float64) Rect {
	w, h := max(0, r.W-2*d), max(0, r.H-2*d)
	return Rect{X: r.X + d, Y: r.Y + d, W: w, H: h}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.X, r.Y, r.W, r.H)
}

// Orientation is the direction in which a rectangle is cut.
type Orientation int

const (
	// Vertical cuts along the width: children sit side by side.
	Vertical Orientation = iota
	// Horizontal cuts along the height: children are stacked.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// ChooseOrientation picks the cut direction for r: wide or square
// rectangles are cut vertically, tall ones horizontally.
func ChooseOrientation(r Rect) Orientation {
	if r.W >= r.H {
		return Vertical
	}
	return Horizontal
}

// split cuts r so the first part receives frac of its extent along the
// chosen orientation.
func split(r Rect, o Orientation, frac float64) (first, second Rect) {
	if o == Vertical {
		lw := r.W * frac
		return Rect{X: r.X, Y: r.Y, W: lw, H: r.H},
			Rect{X: r.X + lw, Y: r.Y, W: r.W - lw, H: r.H}
	}
	lh := r.H * frac
	return Rect{X: r.X, Y: r.Y, W: r.W, H: lh},
		Rect{X: r.X, Y: r.Y + lh, W: r.W, H: r.H - lh}
}
