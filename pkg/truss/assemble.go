package truss

import (
	"gonum.org/v1/gonum/mat"
)

// dofsOf returns the global DOF indices [2i, 2i+1, 2j, 2j+1] of a bar.
func dofsOf(e Element) [4]int {
	return [4]int{2 * e.N1, 2*e.N1 + 1, 2 * e.N2, 2*e.N2 + 1}
}

// ElementStiffness returns the 4×4 stiffness block of a bar in global
// coordinates, (A·E/L)·v·vᵀ with v = [−c, −s, c, s]. Rows and columns are
// ordered [xi, yi, xj, yj].
func ElementStiffness(e Element, ni, nj Node) (*mat.SymDense, error) {
	length, c, s, err := Geometry(ni, nj)
	if err != nil {
		return nil, &DegenerateElementError{Element: -1, N1: e.N1, N2: e.N2}
	}
	v := mat.NewVecDense(4, []float64{-c, -s, c, s})
	ke := mat.NewSymDense(4, nil)
	ke.SymRankOne(ke, e.A*e.E/length, v)
	return ke, nil
}

// Assemble builds the global stiffness matrix K (2N×2N) from the element
// contributions. K starts at zero and every element block is added at its
// DOFs, so bars sharing a node superpose.
//
// Element node indices must be valid; use [Model.Validate] first when the
// input is untrusted. A bar of zero length yields a [*DegenerateElementError].
func Assemble(nodes []Node, elements []Element) (*mat.SymDense, error) {
	ndof := 2 * len(nodes)
	if ndof == 0 {
		return &mat.SymDense{}, nil
	}
	k := mat.NewSymDense(ndof, nil)
	for i, e := range elements {
		if err := checkElement(i, e, len(nodes)); err != nil {
			return nil, err
		}
		ke, err := ElementStiffness(e, nodes[e.N1], nodes[e.N2])
		if err != nil {
			return nil, &DegenerateElementError{Element: i, N1: e.N1, N2: e.N2}
		}
		dofs := dofsOf(e)
		// SetSym writes both triangles, so visit each unordered pair once.
		for a := 0; a < 4; a++ {
			for b := a; b < 4; b++ {
				ra, rb := dofs[a], dofs[b]
				k.SetSym(ra, rb, k.At(ra, rb)+ke.At(a, b))
			}
		}
	}
	return k, nil
}
