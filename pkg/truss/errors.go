package truss

import (
	"fmt"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

// DegenerateElementError reports a bar whose end nodes coincide.
type DegenerateElementError struct {
	Element int // element index
	N1, N2  int // node indices
}

func (e *DegenerateElementError) Error() string {
	return fmt.Sprintf("truss: element %d has zero length (nodes %d and %d coincide)", e.Element, e.N1, e.N2)
}

// Code returns the error code for this error type.
func (e *DegenerateElementError) Code() apperrors.Code { return apperrors.ErrCodeDegenerateElement }

// InvalidDOFError reports malformed analysis input: a fixed DOF or node
// index out of range, a load vector of the wrong length, or a non-positive
// section or material constant.
type InvalidDOFError struct {
	Reason string
}

func (e *InvalidDOFError) Error() string {
	return "truss: invalid input: " + e.Reason
}

// Code returns the error code for this error type.
func (e *InvalidDOFError) Code() apperrors.Code { return apperrors.ErrCodeInvalidDOF }

func invalidf(format string, args ...any) *InvalidDOFError {
	return &InvalidDOFError{Reason: fmt.Sprintf(format, args...)}
}

// SingularSystemError reports a reduced stiffness matrix that cannot be
// inverted. Condition is the estimated condition number of the
// diagonally equilibrated matrix (+Inf when a zero pivot was hit).
type SingularSystemError struct {
	FreeDOFs  int
	Condition float64
}

func (e *SingularSystemError) Error() string {
	return fmt.Sprintf("truss: singular stiffness matrix (%d free DOFs, condition %.3g): structure is under-constrained or a mechanism", e.FreeDOFs, e.Condition)
}

// Code returns the error code for this error type.
func (e *SingularSystemError) Code() apperrors.Code { return apperrors.ErrCodeSingularSystem }
