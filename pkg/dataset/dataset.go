// Package dataset generates training data for the surrogate model by
// solving the demo truss over random loads and cross-sections.
//
// Loads are drawn uniformly from −[LoadMin, LoadMax] and areas log-uniformly
// from 10^[AreaExpMin, AreaExpMax]. The draw sequence depends only on the
// seed, so a dataset can be regenerated exactly.
package dataset

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// MaxSamples bounds a single run.
const MaxSamples = 1_000_000

// Sample is one solved demo truss.
type Sample struct {
	Load      float64 // applied load at the demo DOF (negative: downward)
	A         float64 // cross-sectional area of every bar
	MaxStress float64
	MaxDisp   float64
}

// Sampler configures a dataset run.
type Sampler struct {
	Samples    int
	Seed       uint64
	LoadMin    float64 // N, magnitude
	LoadMax    float64
	AreaExpMin float64 // log10 of m²
	AreaExpMax float64
	E          float64

	// Workers bounds the number of concurrent analyses; zero uses GOMAXPROCS.
	Workers int

	// Progress, if set, is called after every finished sample. It may be
	// called from several goroutines.
	Progress func(done, total int)

	Logger *log.Logger
}

// NewSampler returns a sampler with the standard ranges: 500 samples, loads
// of 200 to 2000 N, areas of 1e-6 to 1e-3 m², steel.
func NewSampler() *Sampler {
	return &Sampler{
		Samples:    500,
		Seed:       0,
		LoadMin:    200,
		LoadMax:    2000,
		AreaExpMin: -6,
		AreaExpMax: -3,
		E:          truss.DefaultDemoModulus,
	}
}

// Validate checks the sampler configuration.
func (s *Sampler) Validate() error {
	if err := apperrors.ValidateCount("samples", s.Samples, MaxSamples); err != nil {
		return err
	}
	if err := apperrors.ValidateRange("load", s.LoadMin, s.LoadMax); err != nil {
		return err
	}
	if s.LoadMin < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "load magnitudes must be non-negative, got %v", s.LoadMin)
	}
	if err := apperrors.ValidateRange("area exponent", s.AreaExpMin, s.AreaExpMax); err != nil {
		return err
	}
	return apperrors.ValidatePositive("E", s.E)
}

// Draw returns the (load, area) inputs of the run without solving anything.
func (s *Sampler) Draw() []Sample {
	rng := rand.New(rand.NewPCG(s.Seed, s.Seed^0x9e3779b97f4a7c15))
	out := make([]Sample, s.Samples)
	for i := range out {
		out[i].Load = -(s.LoadMin + rng.Float64()*(s.LoadMax-s.LoadMin))
		out[i].A = math.Pow(10, s.AreaExpMin+rng.Float64()*(s.AreaExpMax-s.AreaExpMin))
	}
	return out
}

// Run draws the inputs and solves every sample. The output order follows
// the draw order regardless of scheduling. Run stops at the first failed
// analysis or when ctx is cancelled.
func (s *Sampler) Run(ctx context.Context) ([]Sample, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	samples := s.Draw()
	logger.Debug("sampling", "samples", len(samples), "seed", s.Seed, "workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	var done atomic.Int64
	for i := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			smp := &samples[i]
			res, err := truss.Analyze(truss.Demo(smp.Load, smp.A, s.E))
			if err != nil {
				return fmt.Errorf("sample %d (load=%g, A=%g): %w", i, smp.Load, smp.A, err)
			}
			smp.MaxStress = res.MaxStress
			smp.MaxDisp = res.MaxDisp
			if s.Progress != nil {
				s.Progress(int(done.Add(1)), len(samples))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// gctx is always cancelled once Wait returns; only the caller's
	// context tells whether the run was interrupted.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return samples, nil
}
