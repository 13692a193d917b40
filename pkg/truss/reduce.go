package truss

import (
	"slices"

	"gonum.org/v1/gonum/mat"
)

// Reduced is the stiffness system restricted to the free DOFs.
type Reduced struct {
	Free  []int         // free DOF indices, ascending
	Fixed []int         // fixed DOF indices, ascending and without duplicates
	Kff   *mat.SymDense // K restricted to free×free
	Ff    *mat.VecDense // F restricted to free
}

// Reduce partitions the DOFs of k into fixed and free sets and extracts the
// free-free block of k and the free entries of f. Duplicate fixed indices are
// ignored. An index outside [0, 2N) or a load vector whose length differs
// from 2N yields an [*InvalidDOFError]. The inputs are not modified.
func Reduce(k mat.Symmetric, f []float64, fixed []int) (*Reduced, error) {
	ndof := k.SymmetricDim()
	if len(f) != ndof {
		return nil, invalidf("load vector has %d entries, want %d", len(f), ndof)
	}

	isFixed := make([]bool, ndof)
	for _, d := range fixed {
		if d < 0 || d >= ndof {
			return nil, invalidf("fixed DOF %d out of range [0, %d)", d, ndof)
		}
		isFixed[d] = true
	}

	r := &Reduced{}
	for d := 0; d < ndof; d++ {
		if isFixed[d] {
			r.Fixed = append(r.Fixed, d)
		} else {
			r.Free = append(r.Free, d)
		}
	}

	nf := len(r.Free)
	if nf == 0 {
		r.Kff, r.Ff = &mat.SymDense{}, &mat.VecDense{}
		return r, nil
	}
	r.Kff = mat.NewSymDense(nf, nil)
	r.Ff = mat.NewVecDense(nf, nil)
	for a, da := range r.Free {
		r.Ff.SetVec(a, f[da])
		for b := a; b < nf; b++ {
			r.Kff.SetSym(a, b, k.At(da, r.Free[b]))
		}
	}
	return r, nil
}

// IsFree reports whether DOF d is in the free set.
func (r *Reduced) IsFree(d int) bool {
	_, ok := slices.BinarySearch(r.Free, d)
	return ok
}
