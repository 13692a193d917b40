package render

import (
	"math"
	"strings"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

// Output formats.
const (
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
	FormatDOT = "dot"
)

// ValidateFormat reports whether format is one of the names in formats.
func ValidateFormat(format string, formats ...string) error {
	for _, f := range formats {
		if f == format {
			return nil
		}
	}
	return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: %s)", format, strings.Join(formats, ", "))
}

// MemberState classifies an axial force.
type MemberState int

const (
	Unloaded MemberState = iota
	Tension
	Compression
)

func (s MemberState) String() string {
	switch s {
	case Tension:
		return "tension"
	case Compression:
		return "compression"
	default:
		return "unloaded"
	}
}

// Colour per member state, as hex RGB.
var StateColor = map[MemberState]string{
	Unloaded:    "#9e9e9e",
	Tension:     "#d62728",
	Compression: "#1f77b4",
}

// Classify returns the state of every element. Forces whose magnitude is
// below a relative tolerance of the largest force count as unloaded, so
// rounding noise in zero-force members does not flip their colour.
func Classify(forces []float64) []MemberState {
	var peak float64
	for _, f := range forces {
		peak = math.Max(peak, math.Abs(f))
	}
	tol := 1e-9 * peak

	out := make([]MemberState, len(forces))
	for i, f := range forces {
		switch {
		case peak == 0 || math.Abs(f) <= tol:
			out[i] = Unloaded
		case f > 0:
			out[i] = Tension
		default:
			out[i] = Compression
		}
	}
	return out
}
