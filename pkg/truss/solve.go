package truss

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// MaxCondition is the largest condition number of the equilibrated Kff
// accepted by [Solve]. Under-constrained structures yield exactly singular
// matrices in exact arithmetic; in floating point their LU pivots collapse to
// rounding noise and the condition estimate explodes past this bound.
const MaxCondition = 1e12

// Solve solves Kff·uf = Ff by LU decomposition with partial pivoting.
//
// Kff is first equilibrated with its diagonal, D^-1/2·Kff·D^-1/2, so the
// condition guard measures coupling rather than the stiffness contrast
// between members: a stiff bar in series with one 1e13 times softer is
// still solved. A matrix that is exactly singular, or whose equilibrated
// condition number exceeds [MaxCondition], yields a [*SingularSystemError];
// no approximate answer is returned. An empty system solves to an empty
// vector.
func Solve(kff mat.Symmetric, ff mat.Vector) (*mat.VecDense, error) {
	n := kff.SymmetricDim()
	if ff.Len() != n {
		return nil, invalidf("right-hand side has %d entries, want %d", ff.Len(), n)
	}
	if n == 0 {
		return &mat.VecDense{}, nil
	}

	// Zero diagonals are left unscaled; LU reports them.
	d := make([]float64, n)
	for i := range d {
		d[i] = 1
		if k := math.Abs(kff.At(i, i)); k > 0 && finite(k) {
			d[i] = 1 / math.Sqrt(k)
		}
	}
	scaled := mat.NewSymDense(n, nil)
	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			scaled.SetSym(i, j, d[i]*kff.At(i, j)*d[j])
		}
		rhs.SetVec(i, d[i]*ff.AtVec(i))
	}

	var lu mat.LU
	lu.Factorize(scaled)
	cond := lu.Cond()
	if math.IsNaN(cond) || cond > MaxCondition {
		return nil, &SingularSystemError{FreeDOFs: n, Condition: cond}
	}

	uf := mat.NewVecDense(n, nil)
	if err := lu.SolveVecTo(uf, false, rhs); err != nil {
		var c mat.Condition
		if errors.As(err, &c) || errors.Is(err, mat.ErrSingular) {
			return nil, &SingularSystemError{FreeDOFs: n, Condition: cond}
		}
		return nil, err
	}
	for i := 0; i < n; i++ {
		v := d[i] * uf.AtVec(i)
		if !finite(v) {
			return nil, &SingularSystemError{FreeDOFs: n, Condition: math.Inf(1)}
		}
		uf.SetVec(i, v)
	}
	return uf, nil
}
