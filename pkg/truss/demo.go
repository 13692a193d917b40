package truss

// Defaults of the demo truss, shared by the predict endpoint and the dataset
// sampler so their results stay comparable.
const (
	DefaultDemoLoad    = -1000.0 // N, downward at node 2
	DefaultDemoArea    = 1e-4    // m²
	DefaultDemoModulus = 210e9   // Pa (steel)
)

// DemoLoadDOF is the DOF that carries the demo load: the y direction of
// node 2.
const DemoLoadDOF = 5

// Demo returns the fixed 4-node, 5-bar benchmark truss:
//
//	        3 (1,1)
//	       /|\
//	      / | \
//	(0,0)0--1--2(2,0)
//	        (1,0)
//
// All bars share area a and modulus e. The load is applied at node 2 in y
// (DOF 5). Node 0 is pinned (DOFs 0, 1) and node 3 is restrained in x (DOF 6).
func Demo(load, a, e float64) *Model {
	m := &Model{
		Nodes: []Node{{0, 0}, {1, 0}, {2, 0}, {1, 1}},
		Elements: []Element{
			{N1: 0, N2: 1, A: a, E: e},
			{N1: 1, N2: 2, A: a, E: e},
			{N1: 0, N2: 3, A: a, E: e},
			{N1: 1, N2: 3, A: a, E: e},
			{N1: 2, N2: 3, A: a, E: e},
		},
		Fixed: []int{0, 1, 6},
	}
	m.Loads = make([]float64, m.DOFs())
	m.Loads[DemoLoadDOF] = load
	return m
}
