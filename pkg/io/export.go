package io

import (
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/treesplit/pkg/core/figure"
)

// WriteLayoutJSON encodes a computed layout as JSON and writes it to w.
// The output can be re-imported with [ReadLayoutJSON].
func WriteLayoutJSON(w io.Writer, l figure.Layout) error {
	data, err := figure.MarshalLayout(l)
	if err != nil {
		return err
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// ReadLayoutJSON decodes a layout written by [WriteLayoutJSON].
func ReadLayoutJSON(r io.Reader) (figure.Layout, error) {
	l, err := figure.ReadLayout(r)
	if err != nil {
		return figure.Layout{}, fmt.Errorf("decode: %w", err)
	}
	return l, nil
}

// ExportLayoutJSON writes a layout to a JSON file at path.
// This is a convenience wrapper around [WriteLayoutJSON] for file-based output.
func ExportLayoutJSON(l figure.Layout, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteLayoutJSON(f, l)
}

// ImportLayoutJSON reads a layout from a JSON file at path.
func ImportLayoutJSON(path string) (figure.Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return figure.Layout{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLayoutJSON(f)
}
