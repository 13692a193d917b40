package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/trussfea/pkg/truss"
)

// MarshalModel returns the canonical compact JSON of m.
func MarshalModel(m *truss.Model) ([]byte, error) {
	return json.Marshal(m)
}

// WriteModel encodes m as indented JSON.
func WriteModel(m *truss.Model, w io.Writer) error {
	return writeIndented(m, w)
}

// ExportModel writes m to a JSON file at path.
func ExportModel(m *truss.Model, path string) error {
	return export(path, func(w io.Writer) error { return WriteModel(m, w) })
}

// WriteResult encodes res as indented JSON.
func WriteResult(res *truss.Result, w io.Writer) error {
	return writeIndented(res, w)
}

// ExportResult writes res to a JSON file at path.
func ExportResult(res *truss.Result, path string) error {
	return export(path, func(w io.Writer) error { return WriteResult(res, w) })
}

func writeIndented(v any, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func export(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
