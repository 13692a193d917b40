package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// ReadModel decodes a model from r. Unknown fields and trailing data are
// rejected so that typos such as "fixed" instead of "fixed_dofs" do not
// silently produce an unsupported structure.
func ReadModel(r io.Reader) (*truss.Model, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var m truss.Model
	if err := dec.Decode(&m); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode model")
	}
	if dec.More() {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "decode model: trailing data after JSON object")
	}
	return &m, nil
}

// ImportModel reads a model file at path.
func ImportModel(path string) (*truss.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadModel(f)
}

// ReadResult decodes an analysis result from r.
func ReadResult(r io.Reader) (*truss.Result, error) {
	var res truss.Result
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode result")
	}
	return &res, nil
}
