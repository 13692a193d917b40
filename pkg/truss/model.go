package truss

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

var errZeroLength = errors.New("zero length")

// Node is a point in the plane. Nodes are identified by their index in
// [Model.Nodes]. On the wire a node is a two-element array [x, y].
type Node struct {
	X, Y float64
}

// MarshalJSON encodes the node as [x, y].
func (n Node) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{n.X, n.Y})
}

// UnmarshalJSON decodes a node from [x, y].
func (n *Node) UnmarshalJSON(data []byte) error {
	var xy []float64
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("node: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("node: want 2 coordinates, got %d", len(xy))
	}
	n.X, n.Y = xy[0], xy[1]
	return nil
}

// Element is a two-force bar between nodes N1 and N2.
type Element struct {
	N1 int     `json:"n1"`
	N2 int     `json:"n2"`
	A  float64 `json:"A"` // cross-sectional area
	E  float64 `json:"E"` // elastic modulus
}

// Model is the complete input of an analysis.
//
// Loads holds one entry per DOF (2·len(Nodes) entries). Fixed lists DOF
// indices with zero prescribed displacement; duplicates are allowed and
// ignored.
type Model struct {
	Nodes    []Node    `json:"nodes"`
	Elements []Element `json:"elements"`
	Loads    []float64 `json:"loads"`
	Fixed    []int     `json:"fixed_dofs"`
}

// DOFs returns the total number of degrees of freedom, 2·len(Nodes).
func (m *Model) DOFs() int {
	return 2 * len(m.Nodes)
}

// Validate checks the structural invariants of the model.
//
// It returns an [*InvalidDOFError] for a load vector whose length is not
// 2·len(Nodes), non-finite coordinates or loads, element node indices that
// are out of range or equal, non-positive A or E, and fixed DOFs outside
// [0, 2·len(Nodes)). It returns a [*DegenerateElementError] for a bar of
// zero length.
func (m *Model) Validate() error {
	ndof := m.DOFs()
	if len(m.Loads) != ndof {
		return invalidf("load vector has %d entries, want %d (2 per node)", len(m.Loads), ndof)
	}
	for k, n := range m.Nodes {
		if !finite(n.X) || !finite(n.Y) {
			return invalidf("node %d has non-finite coordinates (%v, %v)", k, n.X, n.Y)
		}
	}
	for i, f := range m.Loads {
		if !finite(f) {
			return invalidf("load at DOF %d is not finite", i)
		}
	}
	for i, e := range m.Elements {
		if err := checkElement(i, e, len(m.Nodes)); err != nil {
			return err
		}
		if _, _, _, err := Geometry(m.Nodes[e.N1], m.Nodes[e.N2]); err != nil {
			return &DegenerateElementError{Element: i, N1: e.N1, N2: e.N2}
		}
	}
	for _, d := range m.Fixed {
		if d < 0 || d >= ndof {
			return invalidf("fixed DOF %d out of range [0, %d)", d, ndof)
		}
	}
	return nil
}

func checkElement(i int, e Element, nodes int) error {
	if e.N1 < 0 || e.N1 >= nodes || e.N2 < 0 || e.N2 >= nodes {
		return invalidf("element %d references node outside [0, %d): (%d, %d)", i, nodes, e.N1, e.N2)
	}
	if e.N1 == e.N2 {
		return invalidf("element %d connects node %d to itself", i, e.N1)
	}
	if !(e.A > 0) || math.IsInf(e.A, 0) {
		return invalidf("element %d has non-positive area A=%v", i, e.A)
	}
	if !(e.E > 0) || math.IsInf(e.E, 0) {
		return invalidf("element %d has non-positive modulus E=%v", i, e.E)
	}
	return nil
}

// Geometry returns the length and direction cosines of the bar from ni to
// nj. A zero length is reported as an error; callers attach the element
// index.
func Geometry(ni, nj Node) (length, c, s float64, err error) {
	dx, dy := nj.X-ni.X, nj.Y-ni.Y
	length = math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0, 0, errZeroLength
	}
	return length, dx / length, dy / length, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
