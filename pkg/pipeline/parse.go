package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/matzehuels/treesplit/pkg/cache"
	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/errors"
	tsio "github.com/matzehuels/treesplit/pkg/io"
)

// SampleCheatSheet names the builtin multi-panel figure.
const SampleCheatSheet = "cheatsheet"

// Parse resolves the figure spec the options describe. Sources are tried
// in this order: an inline figure, a TOML figure file, a dataset file, a
// builtin sample, then the inline weights.
func Parse(opts Options) (figure.Spec, error) {
	var spec figure.Spec
	switch {
	case opts.Figure != nil:
		spec = *opts.Figure
	case opts.FigurePath != "":
		s, err := tsio.ImportFigure(opts.FigurePath)
		if err != nil {
			return figure.Spec{}, err
		}
		spec = s
	case opts.Input != "":
		ds, err := tsio.ImportWeights(opts.Input)
		if err != nil {
			return figure.Spec{}, err
		}
		spec = ds.Spec()
	case opts.Sample != "":
		s, err := parseSample(opts.Sample)
		if err != nil {
			return figure.Spec{}, err
		}
		spec = s
	default:
		spec = figure.Single(opts.Title, opts.Weights, opts.Labels)
	}

	// An explicit title overrides the source's own. One-panel figures
	// carry their title on the panel.
	if opts.Title != "" {
		if len(spec.Panels) == 1 {
			spec.Panels = []figure.Panel{spec.Panels[0]}
			spec.Panels[0].Title = opts.Title
		} else {
			spec.Title = opts.Title
		}
	}

	if err := spec.Validate(); err != nil {
		return figure.Spec{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid figure")
	}
	for _, p := range spec.Panels {
		if err := errors.ValidateWeightCount(len(p.Weights)); err != nil {
			return figure.Spec{}, err
		}
	}
	return spec, nil
}

func parseSample(name string) (figure.Spec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == SampleCheatSheet {
		return figure.CheatSheet(), nil
	}
	w, ok := figure.Sample(name)
	if !ok {
		return figure.Spec{}, errors.New(errors.ErrCodeNotFound, "unknown sample %q (known: small, medium, large, very-large, %s)",
			name, SampleCheatSheet)
	}
	return figure.Single(name, w, nil), nil
}

// SpecHash returns the content hash used to key cached layouts. Untitled
// one-panel figures hash the same as their dataset.
func SpecHash(spec figure.Spec) string {
	if len(spec.Panels) == 1 && spec.Title == "" && spec.Columns <= 1 {
		p := spec.Panels[0]
		return cache.HashWeights(p.Title, p.Weights, p.Labels)
	}
	data, _ := json.Marshal(spec)
	return cache.Hash(data)
}
