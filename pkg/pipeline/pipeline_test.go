package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/treesplit/pkg/cache"
	"github.com/matzehuels/treesplit/pkg/core/figure"
	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/observability"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", false},
		{"dxf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want %s", tt.format, errors.GetCode(err), errors.ErrCodeInvalidFormat)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"labeled", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestValidatePalette(t *testing.T) {
	tests := []struct {
		palette string
		wantErr bool
	}{
		{"tailwind", false},
		{"blues", false},
		{"#ff0000,#00ff00", false},
		{"neon", true},
		{"#zzzzzz", true},
	}

	for _, tt := range tests {
		err := ValidatePalette(tt.palette)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidatePalette(%q) error = %v, wantErr %v", tt.palette, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidPalette) {
			t.Errorf("ValidatePalette(%q) code = %s", tt.palette, errors.GetCode(err))
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Weights: []float64{1}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %gx%g, want %gx%g", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.Depth() != DefaultMaxDepth {
		t.Errorf("Depth() = %d, want %d", opts.Depth(), DefaultMaxDepth)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v, want [svg]", opts.Formats)
	}
	if opts.Style != DefaultStyle || opts.Palette != DefaultPalette || opts.Scale != DefaultScale {
		t.Errorf("render defaults = %q %q %g", opts.Style, opts.Palette, opts.Scale)
	}
}

func TestOptionsZeroDepthKept(t *testing.T) {
	opts := Options{Weights: []float64{1, 2}, MaxDepth: WithMaxDepth(0)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if opts.Depth() != 0 {
		t.Errorf("Depth() = %d, want 0", opts.Depth())
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidInput},
		{"label mismatch", Options{Weights: []float64{1, 2}, Labels: []string{"a"}}, errors.ErrCodeInvalidInput},
		{"negative width", Options{Weights: []float64{1}, Width: -1}, errors.ErrCodeInvalidDimensions},
		{"negative depth", Options{Weights: []float64{1}, MaxDepth: WithMaxDepth(-1)}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Weights: []float64{1}, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad style", Options{Weights: []float64{1}, Style: "fancy"}, errors.ErrCodeInvalidStyle},
		{"bad palette", Options{Weights: []float64{1}, Palette: "neon"}, errors.ErrCodeInvalidPalette},
		{"bad scale", Options{Weights: []float64{1}, Scale: 20}, errors.ErrCodeInvalidInput},
		{"png too large", Options{Weights: []float64{1}, Width: 20000, Height: 20000, Scale: 8, Formats: []string{FormatPNG}}, errors.ErrCodeInvalidDimensions},
		{"png too large at default scale", Options{Weights: []float64{1}, Width: 20000, Height: 20000, Formats: []string{FormatSVG, FormatPNG}}, errors.ErrCodeInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %s, want %s (%v)", errors.GetCode(err), tt.code, err)
			}
		})
	}
}

func TestOptionsLargeVectorCanvasAllowed(t *testing.T) {
	opts := Options{Weights: []float64{1}, Width: 20000, Height: 20000, Scale: 8, Formats: []string{FormatSVG, FormatPDF}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("pixel limit should only apply to png: %v", err)
	}
}

func TestOptionsEmptyWeightsAllowed(t *testing.T) {
	opts := Options{Weights: []float64{}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("empty weight list should be valid: %v", err)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Style: "labeled", Palette: "blues", Scale: 3}

	svg := opts.ArtifactKeyOpts(FormatSVG)
	if svg.Style != "labeled" || svg.Palette != "blues" || svg.Scale != 0 {
		t.Errorf("svg key opts = %+v", svg)
	}
	png := opts.ArtifactKeyOpts(FormatPNG)
	if png.Style != "" || png.Scale != 3 {
		t.Errorf("png key opts = %+v", png)
	}
	dxf := opts.ArtifactKeyOpts(FormatDXF)
	if dxf.Style != "" || dxf.Palette != "" {
		t.Errorf("dxf key opts should ignore style and palette: %+v", dxf)
	}
}

func TestParse(t *testing.T) {
	t.Run("inline weights", func(t *testing.T) {
		spec, err := Parse(Options{Title: "abc", Weights: []float64{5, 3, 2}})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(spec.Panels) != 1 || spec.Panels[0].Title != "abc" {
			t.Errorf("spec = %+v", spec)
		}
	})

	t.Run("cheat sheet", func(t *testing.T) {
		spec, err := Parse(Options{Sample: "CheatSheet"})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if len(spec.Panels) != 4 {
			t.Errorf("panels = %d, want 4", len(spec.Panels))
		}
	})

	t.Run("sample with title", func(t *testing.T) {
		spec, err := Parse(Options{Sample: "medium", Title: "Ten"})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if spec.Panels[0].Title != "Ten" || len(spec.Panels[0].Weights) != 10 {
			t.Errorf("spec = %+v", spec)
		}
	})

	t.Run("unknown sample", func(t *testing.T) {
		_, err := Parse(Options{Sample: "huge"})
		if !errors.Is(err, errors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})

	t.Run("title override leaves figure untouched", func(t *testing.T) {
		fig := figure.Single("orig", []float64{1}, nil)
		spec, err := Parse(Options{Figure: &fig, Title: "new"})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if spec.Panels[0].Title != "new" {
			t.Errorf("title = %q, want new", spec.Panels[0].Title)
		}
		if fig.Panels[0].Title != "orig" {
			t.Errorf("input figure was modified: %q", fig.Panels[0].Title)
		}
	})

	t.Run("csv file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sizes.csv")
		if err := os.WriteFile(path, []byte("name,size\na,5\nb,3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		spec, err := Parse(Options{Input: path})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		p := spec.Panels[0]
		if p.Title != "sizes" || len(p.Weights) != 2 || p.Labels[1] != "b" {
			t.Errorf("panel = %+v", p)
		}
	})

	t.Run("toml figure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fig.toml")
		content := `title = "Two"
columns = 2

[[panel]]
title = "left"
weights = [1, 2]

[[panel]]
title = "right"
weights = [3]
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		spec, err := Parse(Options{FigurePath: path})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if spec.Title != "Two" || len(spec.Panels) != 2 {
			t.Errorf("spec = %+v", spec)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Parse(Options{Input: filepath.Join(t.TempDir(), "nope.csv")})
		if !errors.Is(err, errors.ErrCodeFileNotFound) {
			t.Errorf("err = %v, want FILE_NOT_FOUND", err)
		}
	})
}

func TestSpecHash(t *testing.T) {
	a := figure.Single("", []float64{5, 3, 2}, nil)
	b := figure.Single("", []float64{5, 3, 2}, nil)
	c := figure.Single("", []float64{2, 3, 5}, nil)

	if SpecHash(a) != SpecHash(b) {
		t.Error("equal specs should hash equally")
	}
	if SpecHash(a) == SpecHash(c) {
		t.Error("permuted weights should hash differently")
	}
	if SpecHash(a) != cache.HashWeights("", []float64{5, 3, 2}, nil) {
		t.Error("single-panel hash should match the dataset hash")
	}
	if SpecHash(figure.CheatSheet()) == "" {
		t.Error("multi-panel hash should not be empty")
	}
}

func TestRender(t *testing.T) {
	l := ComputeLayout(figure.Single("", []float64{5, 3, 2}, nil), Options{Width: 300, Height: 200, MaxDepth: WithMaxDepth(DefaultMaxDepth)})

	artifacts, err := Render(l, Options{Formats: []string{"svg", "png", "pdf", "json", "dxf"}, Scale: 1})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, f := range FormatNames() {
		if len(artifacts[f]) == 0 {
			t.Errorf("missing %s artifact", f)
		}
	}
	if !bytes.HasPrefix(artifacts["pdf"], []byte("%PDF-")) {
		t.Error("pdf artifact has no PDF header")
	}
}

func TestRenderUsesLayoutMetadata(t *testing.T) {
	l := ComputeLayout(figure.Single("", []float64{1}, nil), Options{Width: 10, Height: 10})
	l.Palette = []string{"#123456"}

	artifacts, err := Render(l, Options{Formats: []string{"svg"}})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(artifacts["svg"]), `fill="#123456"`) {
		t.Error("layout palette not applied")
	}
}

func TestRenderInvalidPalette(t *testing.T) {
	l := ComputeLayout(figure.Single("", []float64{1}, nil), Options{Width: 10, Height: 10})
	_, err := Render(l, Options{Palette: "neon"})
	if !errors.Is(err, errors.ErrCodeInvalidPalette) {
		t.Errorf("err = %v, want INVALID_PALETTE", err)
	}
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	defer r.Close()

	res, err := r.Execute(context.Background(), Options{
		Weights: []float64{5, 3, 2},
		Labels:  []string{"a", "b", "c"},
		Width:   400,
		Height:  300,
		Formats: []string{"svg", "json"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.Panels != 1 || res.Stats.Weights != 3 || res.Stats.Leaves != 3 {
		t.Errorf("stats = %+v", res.Stats)
	}
	if res.DatasetHash == "" {
		t.Error("missing dataset hash")
	}
	if !strings.HasPrefix(string(res.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact is not an svg")
	}
	back, err := figure.UnmarshalLayout(res.Artifacts["json"])
	if err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if back.Style != DefaultStyle {
		t.Errorf("json style = %q, want %q", back.Style, DefaultStyle)
	}
	if res.CacheInfo.LayoutHit || res.CacheInfo.RenderHit {
		t.Error("null cache should never hit")
	}
}

func TestRunnerExecuteZeroDepth(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), Options{
		Weights:  []float64{5, 3, 2},
		MaxDepth: WithMaxDepth(0),
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Leaves != 1 {
		t.Errorf("leaves = %d, want 1", res.Stats.Leaves)
	}
	if got := res.Layout.Panels[0].Leaves[0]; got.Count != 3 || !got.Merged() {
		t.Errorf("leaf = %+v, want one merged leaf over 3 weights", got)
	}
}

func TestRunnerExecuteEmpty(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	res, err := r.Execute(context.Background(), Options{Weights: []float64{0, -3}})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if res.Stats.Leaves != 0 || !res.Layout.Panels[0].Empty {
		t.Errorf("expected an empty panel, got %+v", res.Layout.Panels[0])
	}
	if len(res.Artifacts["svg"]) == 0 {
		t.Error("empty figures still render")
	}
}

func TestRunnerCacheHit(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	defer r.Close()

	opts := Options{Weights: []float64{4, 4, 2}, Formats: []string{"svg", "dxf"}}
	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit the cache: %+v", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts["svg"], second.Artifacts["svg"]) {
		t.Error("cached svg differs from rendered svg")
	}

	opts.Refresh = true
	third, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestRunnerRenderCacheSeparatesPalettes(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	ctx := context.Background()

	l, err := r.Layout(ctx, figure.Single("", []float64{1}, nil), Options{})
	if err != nil {
		t.Fatalf("Layout: %v", err)
	}

	red, err := r.Render(ctx, l, Options{Palette: "#ff0000"})
	if err != nil {
		t.Fatal(err)
	}
	blue, hit, err := r.RenderWithCacheInfo(ctx, l, Options{Palette: "#0000ff"})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("a different palette must not hit the cache")
	}
	if bytes.Equal(red["svg"], blue["svg"]) {
		t.Error("palettes should produce different svgs")
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(e string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e)
}

func (h *recordingHooks) OnLayoutStart(context.Context, int, int) {
	h.record("layout-start")
}

func (h *recordingHooks) OnLayoutComplete(context.Context, int, time.Duration, error) {
	h.record("layout-done")
}

func (h *recordingHooks) OnRenderStart(context.Context, []string) {
	h.record("render-start")
}

func (h *recordingHooks) OnRenderComplete(context.Context, []string, time.Duration, error) {
	h.record("render-done")
}

func TestRunnerHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetPipelineHooks(h)
	defer observability.Reset()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), Options{Weights: []float64{1, 2}}); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	want := []string{"layout-start", "layout-done", "render-start", "render-done"}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}

type recordingCacheHooks struct {
	observability.NoopCacheHooks
	mu     sync.Mutex
	events []string
}

func (h *recordingCacheHooks) record(e, keyType string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, e+":"+keyType)
}

func (h *recordingCacheHooks) OnCacheHit(_ context.Context, keyType string) {
	h.record("hit", keyType)
}

func (h *recordingCacheHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.record("miss", keyType)
}

func (h *recordingCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.record("set", keyType)
}

func TestRunnerCacheHooksReportKeyType(t *testing.T) {
	h := &recordingCacheHooks{}
	observability.SetCacheHooks(h)
	defer observability.Reset()

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil)
	for range 2 {
		if _, err := r.Execute(context.Background(), Options{Weights: []float64{3, 1}}); err != nil {
			t.Fatalf("Execute: %v", err)
		}
	}

	want := []string{
		"miss:layout", "set:layout", "miss:artifact", "set:artifact",
		"hit:layout", "hit:artifact",
	}
	if strings.Join(h.events, ",") != strings.Join(want, ",") {
		t.Errorf("events = %v, want %v", h.events, want)
	}
}
