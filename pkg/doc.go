// Package pkg provides the libraries behind trussfea, a linear static
// analyser for 2D pin-jointed trusses.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. [truss] - Domain logic (model, stiffness assembly, supports, solver, post-processing)
//  2. [cache], [store] - Infrastructure (result caching, record persistence)
//  3. [dataset], [surrogate], [render] - Derived products (training data, regression, drawings)
//  4. [pipeline], [api] - Orchestration (cached analyses for the CLI and the HTTP service)
//
// # Architecture
//
// The typical data flow through trussfea:
//
//	model.json
//	    ↓
//	[io] package (decode, reject unknown fields)
//	    ↓
//	[truss] package (validate → assemble → reduce → solve → post-process)
//	    ↓
//	[pipeline] package (cache, hooks, records)
//	    ↓
//	JSON result, summary table, SVG/PNG/PDF drawing
//
// # Quick Start
//
//	m := truss.Demo(-1000, 1e-4, 210e9)
//	res, err := truss.Analyze(m)
//	if err != nil {
//	    var singular *truss.SingularSystemError
//	    if errors.As(err, &singular) {
//	        // the supports do not prevent rigid-body motion
//	    }
//	    return err
//	}
//	fmt.Println(res.MaxStress) // 1.4142135623730952e+07
//
// With caching and persistence, as the CLI and the service do it:
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, logger)
//	out, err := runner.Analyze(ctx, m, pipeline.Options{Save: true})
//
// # Error Handling
//
// Errors carry machine-readable codes from [errors]; solver errors implement
// [errors.Coder] so callers can map them without string matching.
//
// [truss]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/truss
// [cache]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/store
// [dataset]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/dataset
// [surrogate]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/surrogate
// [render]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/pipeline
// [api]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/api
// [errors]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/errors
// [errors.Coder]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/errors#Coder
//
// [io]: https://pkg.go.dev/github.com/matzehuels/trussfea/pkg/io
package pkg
