package server

import (
	"net/http"

	"github.com/matzehuels/treesplit/pkg/buildinfo"
	"github.com/matzehuels/treesplit/pkg/core/palette"
	"github.com/matzehuels/treesplit/pkg/core/partition"
	"github.com/matzehuels/treesplit/pkg/errors"
	"github.com/matzehuels/treesplit/pkg/httputil"
	"github.com/matzehuels/treesplit/pkg/pipeline"
)

// contentTypes maps output formats to response content types.
var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDXF:  "application/dxf",
}

// HeaderCache reports whether a render was served from cache.
const HeaderCache = "X-Cache"

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// PalettesResponse is the body of GET /v1/palettes.
type PalettesResponse struct {
	Default  string                     `json:"default"`
	Palettes map[string]palette.Palette `json:"palettes"`
}

func (s *Server) handlePalettes(w http.ResponseWriter, r *http.Request) {
	resp := PalettesResponse{Default: palette.Default, Palettes: make(map[string]palette.Palette)}
	for _, name := range palette.Names() {
		p, err := palette.Named(name)
		if err != nil {
			s.fail(w, r, errors.Wrap(errors.ErrCodeInternal, err, "palette %s", name))
			return
		}
		resp.Palettes[name] = p
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// PartitionRequest is the body of POST /v1/partition. A missing rect is
// the default canvas at the origin; a missing max_depth is the default
// depth limit.
type PartitionRequest struct {
	Weights  []float64       `json:"weights"`
	Rect     *partition.Rect `json:"rect,omitempty"`
	MaxDepth *int            `json:"max_depth,omitempty"`
}

func (s *Server) handlePartition(w http.ResponseWriter, r *http.Request) {
	var req PartitionRequest
	if err := httputil.DecodeJSON(w, r, &req, s.maxBodyBytes); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Weights == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "weights is required"))
		return
	}
	if err := errors.ValidateWeightCount(len(req.Weights)); err != nil {
		s.fail(w, r, err)
		return
	}

	rect := partition.Rect{W: pipeline.DefaultWidth, H: pipeline.DefaultHeight}
	if req.Rect != nil {
		rect = *req.Rect
	}
	if err := errors.ValidateDimensions(rect.W, rect.H); err != nil {
		s.fail(w, r, err)
		return
	}

	depth := pipeline.DefaultMaxDepth
	if req.MaxDepth != nil {
		if *req.MaxDepth < 0 {
			s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "max_depth must not be negative, got %d", *req.MaxDepth))
			return
		}
		depth = *req.MaxDepth
	}

	res := partition.Build(req.Weights, rect, depth)
	if res.Leaves == nil {
		res.Leaves = []partition.Leaf{}
	}
	if res.Sorted == nil {
		res.Sorted = []float64{}
	}
	if res.Order == nil {
		res.Order = []int{}
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := httputil.DecodeJSON(w, r, &opts, s.maxBodyBytes); err != nil {
		s.fail(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Formats = []string{format}
	opts.Logger = s.logger

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if res.CacheInfo.RenderHit {
		w.Header().Set(HeaderCache, "HIT")
	} else {
		w.Header().Set(HeaderCache, "MISS")
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}
