// Package truss implements linear static analysis of 2D pin-jointed trusses.
//
// # Overview
//
// A truss is a set of nodes connected by two-force bar elements. Given the
// node geometry, the bars (cross-section area A and elastic modulus E), a
// load vector and the set of fixed degrees of freedom, the package computes
// nodal displacements, axial forces and stresses per bar, and the extrema of
// both.
//
// Node k owns two degrees of freedom (DOFs): 2k for x and 2k+1 for y. Loads
// are given per DOF in that order. Fixed DOFs have a prescribed displacement
// of exactly zero; nonzero support displacements are not supported.
//
// # Pipeline
//
// [Analyze] runs the complete pipeline, and every stage is exported so it
// can be used and tested on its own:
//
//  1. [Model.Validate]: check indices, lengths and material constants
//  2. [Assemble]: accumulate element stiffness blocks into the global matrix K
//  3. [Reduce]: partition DOFs into free and fixed, extract Kff and Ff
//  4. [Solve]: dense LU solve of Kff·uf = Ff
//  5. [PostProcess]: rebuild u, compute element forces, stresses and extrema
//
// Basic usage:
//
//	m := truss.Demo(-1000, 1e-4, 210e9)
//	res, err := truss.Analyze(m)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.MaxStress, res.MaxDisp)
//
// # Errors
//
// Failures are reported with three error types, all matched with errors.As:
//
//   - [*DegenerateElementError]: a bar has zero length
//   - [*InvalidDOFError]: malformed input (index out of range, load vector
//     length mismatch, non-positive A or E)
//   - [*SingularSystemError]: the reduced stiffness matrix cannot be inverted,
//     meaning the structure is under-constrained or is a mechanism
//
// Each type reports a code from the errors package so the HTTP layer can map
// it to a response status.
//
// # Concurrency
//
// The package holds no state. Every call allocates its own matrices, so
// independent analyses may run concurrently. The dense solve costs O(N³) in
// the number of nodes; callers serving untrusted input should bound N.
package truss
