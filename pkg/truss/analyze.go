package truss

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Analysis holds the intermediate products of a run next to its [Result].
type Analysis struct {
	Result    *Result
	K         *mat.SymDense // global stiffness matrix
	Reduced   *Reduced      // free/fixed partition and reduced system
	Reactions []float64     // support reactions, ordered like Reduced.Fixed
}

// Analyze validates m and runs the assemble → reduce → solve → post-process
// pipeline.
func Analyze(m *Model) (*Result, error) {
	a, err := AnalyzeFull(m)
	if err != nil {
		return nil, err
	}
	return a.Result, nil
}

// AnalyzeFull is like [Analyze] but also returns the global stiffness
// matrix, the reduced system and the support reactions.
func AnalyzeFull(m *Model) (*Analysis, error) {
	if m == nil {
		return nil, invalidf("nil model")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	k, err := Assemble(m.Nodes, m.Elements)
	if err != nil {
		return nil, fmt.Errorf("assemble: %w", err)
	}
	red, err := Reduce(k, m.Loads, m.Fixed)
	if err != nil {
		return nil, fmt.Errorf("reduce: %w", err)
	}
	uf, err := Solve(red.Kff, red.Ff)
	if err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	res, err := PostProcess(m.Nodes, m.Elements, red.Free, uf)
	if err != nil {
		return nil, fmt.Errorf("post-process: %w", err)
	}
	return &Analysis{
		Result:    res,
		K:         k,
		Reduced:   red,
		Reactions: Reactions(k, res.U, m.Loads, red.Fixed),
	}, nil
}
