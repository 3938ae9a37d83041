package errors

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits enforced on user input.
const (
	// MaxWeights bounds the number of weights in one dataset.
	MaxWeights = 100_000

	// MaxDimension bounds the canvas width and height.
	MaxDimension = 20_000.0

	// MaxPixels bounds the size of a raster image (about 256 MB as RGBA).
	MaxPixels = 64_000_000
)

// ValidateWeightCount rejects datasets larger than [MaxWeights].
func ValidateWeightCount(n int) error {
	if n > MaxWeights {
		return New(ErrCodeTooManyWeights, "too many weights: %d (max %d)", n, MaxWeights)
	}
	return nil
}

// ValidateDimensions checks a canvas size. Both sides must be finite,
// positive and at most [MaxDimension].
func ValidateDimensions(width, height float64) error {
	for _, d := range []struct {
		name string
		v    float64
	}{{"width", width}, {"height", height}} {
		if math.IsNaN(d.v) || math.IsInf(d.v, 0) || d.v <= 0 {
			return New(ErrCodeInvalidDimensions, "%s must be a positive number, got %g", d.name, d.v)
		}
		if d.v > MaxDimension {
			return New(ErrCodeInvalidDimensions, "%s too large: %g (max %g)", d.name, d.v, MaxDimension)
		}
	}
	return nil
}

// ValidatePixels checks that a canvas rasterized at scale stays within
// [MaxPixels].
func ValidatePixels(width, height, scale float64) error {
	w, h := math.Round(width*scale), math.Round(height*scale)
	if w*h > MaxPixels {
		return New(ErrCodeInvalidDimensions, "raster too large: %.0fx%.0f pixels (max %d)", w, h, MaxPixels)
	}
	return nil
}

// ValidateOutputPath validates a path the CLI is about to write to.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - Must not name a directory ("out/", ".")
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator)) {
		return New(ErrCodeInvalidPath, "path must name a file, not a directory: %q", path)
	}
	switch filepath.Base(path) {
	case ".", "..":
		return New(ErrCodeInvalidPath, "path must name a file, not a directory: %q", path)
	}

	return nil
}
