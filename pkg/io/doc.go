// Package io reads and writes truss models and analysis results as JSON.
//
// # Model Format
//
// A model is a JSON object with four arrays:
//
//	{
//	  "nodes": [[0, 0], [1, 0], [2, 0], [1, 1]],
//	  "elements": [
//	    {"n1": 0, "n2": 1, "A": 1e-4, "E": 210e9},
//	    {"n1": 1, "n2": 3, "A": 1e-4, "E": 210e9}
//	  ],
//	  "loads": [0, 0, 0, 0, 0, -1000, 0, 0],
//	  "fixed_dofs": [0, 1, 6]
//	}
//
// Node i owns DOFs 2i (x) and 2i+1 (y); loads has one entry per DOF.
// Decoding checks only the JSON shape; structural validity is the
// responsibility of [truss.Model.Validate].
//
// # Result Format
//
//	{
//	  "u": [...],
//	  "elem_forces": [...],
//	  "elem_stresses": [...],
//	  "max_stress": 14142135.62,
//	  "max_disp": 0.000364
//	}
//
// # Canonical Form
//
// [MarshalModel] produces compact JSON with a stable field order. The
// pipeline hashes it to build cache keys, so two models that differ only in
// whitespace share cache entries.
package io
