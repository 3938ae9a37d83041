// Package io reads weight datasets and figure specs, and reads and writes
// computed layouts.
//
// # Datasets
//
// A [Dataset] is one titled weight list with optional labels. [ImportWeights]
// reads a dataset from a file, choosing the decoder by extension; [ReadWeights]
// does the same for any io.Reader with an explicit [Format]:
//
//	ds, err := io.ImportWeights("sales.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	leaves := partition.Partition(ds.Weights, rect, partition.DefaultMaxDepth)
//
// # Formats
//
// JSON accepts either a bare array of numbers or an object:
//
//	[5, 3, 2]
//	{"title": "Small", "weights": [5, 3, 2], "labels": ["a", "b", "c"]}
//
// CSV and XLSX (first sheet) hold one value per row. A second column turns
// the first into labels. A header row is recognized either by its column
// names ("label", "name", "value", "weight", ...) or by a non-numeric value
// cell, and skipped. The CSV delimiter (comma, semicolon, tab or pipe) is
// detected from the data.
//
//	label,value
//	rent,1200
//	food,450
//
// TOML uses top-level keys:
//
//	title   = "Small"
//	weights = [5, 3, 2]
//	labels  = ["a", "b", "c"]
//
// Values are not filtered here: zero, negative and non-finite weights are
// passed through and dropped by the partitioner. Cells that are not
// numbers are errors carrying their row number.
//
// # Figures
//
// [ImportFigure] reads a multi-panel figure from TOML:
//
//	title   = "Quarterly"
//	columns = 2
//
//	[[panel]]
//	title   = "Q1"
//	weights = [5, 3, 2]
//
// # Layouts
//
// [WriteLayoutJSON] and [ReadLayoutJSON] round-trip a computed
// [figure.Layout], so a layout can be cached or rendered later by another
// process.
package io
