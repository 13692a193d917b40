package truss

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Result is the outcome of an analysis.
type Result struct {
	U            []float64 `json:"u"`             // displacement per DOF, 2N entries
	ElemForces   []float64 `json:"elem_forces"`   // axial force per element, tension positive
	ElemStresses []float64 `json:"elem_stresses"` // axial stress per element
	MaxStress    float64   `json:"max_stress"`    // max |stress|, 0 without elements
	MaxDisp      float64   `json:"max_disp"`      // max |u|, 0 without DOFs
}

// PostProcess rebuilds the full displacement vector from the free-DOF
// solution uf and computes element forces, stresses and the extrema.
//
// Fixed DOFs get a displacement of exactly zero. The axial extension of a bar
// is the relative end displacement projected on its unit direction,
// (u_j − u_i)·(c, s); force is (E·A/L)·extension and stress is force/A.
func PostProcess(nodes []Node, elements []Element, free []int, uf mat.Vector) (*Result, error) {
	ndof := 2 * len(nodes)
	if uf.Len() != len(free) {
		return nil, invalidf("solution has %d entries for %d free DOFs", uf.Len(), len(free))
	}

	res := &Result{
		U:            make([]float64, ndof),
		ElemForces:   make([]float64, len(elements)),
		ElemStresses: make([]float64, len(elements)),
	}
	for a, d := range free {
		if d < 0 || d >= ndof {
			return nil, invalidf("free DOF %d out of range [0, %d)", d, ndof)
		}
		res.U[d] = uf.AtVec(a)
	}

	for i, e := range elements {
		if err := checkElement(i, e, len(nodes)); err != nil {
			return nil, err
		}
		length, c, s, err := Geometry(nodes[e.N1], nodes[e.N2])
		if err != nil {
			return nil, &DegenerateElementError{Element: i, N1: e.N1, N2: e.N2}
		}
		dofs := dofsOf(e)
		ext := (res.U[dofs[2]]-res.U[dofs[0]])*c + (res.U[dofs[3]]-res.U[dofs[1]])*s
		force := e.E * e.A / length * ext
		res.ElemForces[i] = force
		res.ElemStresses[i] = force / e.A
		res.MaxStress = math.Max(res.MaxStress, math.Abs(res.ElemStresses[i]))
	}
	for _, v := range res.U {
		res.MaxDisp = math.Max(res.MaxDisp, math.Abs(v))
	}
	return res, nil
}

// Reactions returns the support reactions K·u − F at the given fixed DOFs,
// in the order of fixed. At an equilibrium solution the same residual is
// zero at every free DOF.
func Reactions(k mat.Symmetric, u, f []float64, fixed []int) []float64 {
	out := make([]float64, len(fixed))
	for a, d := range fixed {
		var sum float64
		for b, ub := range u {
			sum += k.At(d, b) * ub
		}
		out[a] = sum - f[d]
	}
	return out
}
