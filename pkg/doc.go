// Package pkg holds the libraries behind treesplit, a binary-split treemap
// generator.
//
// # Overview
//
// A treemap here is built by one rule: sort the positive weights in
// descending order, cut the list where its running sum first reaches half
// of the total, give each half its share of the rectangle along the longer
// side, and recurse until every cell holds one weight or the depth limit
// is reached. The packages are organized into three areas:
//
//  1. [core] - Domain logic (partitioning, figures, palettes, rendering)
//  2. [pipeline] - Orchestration (parse → layout → render) with caching
//  3. Infrastructure - [cache], [errors], [io], [observability], [server]
//
// # Architecture
//
// The typical data flow:
//
//	weights (inline, CSV, JSON, TOML, XLSX, sample)
//	         ↓
//	    [io] / [pipeline] (parse into a figure spec)
//	         ↓
//	    [core/figure] (grid of panels, one partition each)
//	         ↓
//	    [core/partition] (binary split into leaf rectangles)
//	         ↓
//	    [core/render/sink] (SVG, PNG, PDF, JSON, DXF)
//
// # Quick Start
//
// Partition weights directly:
//
//	import "github.com/matzehuels/treesplit/pkg/core/partition"
//
//	leaves := partition.Partition([]float64{5, 3, 2}, partition.Rect{W: 800, H: 600}, partition.DefaultMaxDepth)
//	for _, l := range leaves {
//	    fmt.Println(l.Rect, l.Weight)
//	}
//
// Or run the whole pipeline with caching:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Weights: []float64{5, 3, 2},
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
//
// # Main Packages
//
// [core/partition] - The split algorithm: sorting, split index, orientation
// and the leaf and split-tree types.
//
// [core/figure] - Multi-panel figures: grid placement, titles, labels and
// the JSON layout format.
//
// [core/palette] - Named and custom color palettes with contrast-aware
// text colors.
//
// [core/render/sink] - Output formats. [core/render/styles] draws SVG cells;
// [core/render/tree] draws the split tree with Graphviz.
//
// [cache] - Layout and artifact cache with file, Redis and MongoDB backends.
//
// [server] - HTTP API over the pipeline.
package pkg
