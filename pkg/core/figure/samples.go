package figure

// Sample dataset sizes, one per item-count band of the cheat sheet.
var (
	Small     = []float64{5, 3, 2}
	Medium    = Range(1, 10)
	Large     = Range(1, 30)
	VeryLarge = Range(1, 100)
)

// Range returns the values from..to inclusive.
func Range(from, to int) []float64 {
	if to < from {
		return nil
	}
	out := make([]float64, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, float64(i))
	}
	return out
}

// CheatSheet returns the treemap panels of the "visualization approaches
// by item count" cheat sheet.
func CheatSheet() Spec {
	return Spec{
		Title:   "Treemaps by Item Count",
		Columns: 2,
		Panels: []Panel{
			{Title: "Treemap (1-5)", Weights: Small, Labels: []string{"A", "B", "C"}},
			{Title: "Treemap (6-15)", Weights: Medium},
			{Title: "Treemap (20-100)", Weights: Large},
			{Title: "Treemap (100+)", Weights: VeryLarge},
		},
	}
}

// Sample returns one of the builtin datasets by name: small, medium, large
// or very-large.
func Sample(name string) ([]float64, bool) {
	switch name {
	case "small":
		return Small, true
	case "medium":
		return Medium, true
	case "large":
		return Large, true
	case "very-large", "verylarge", "xl":
		return VeryLarge, true
	}
	return nil, false
}
