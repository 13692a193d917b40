package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trussfea/pkg/cache"
	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/observability"
	"github.com/matzehuels/trussfea/pkg/store"
	"github.com/matzehuels/trussfea/pkg/surrogate"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// Runner encapsulates analysis execution with caching and persistence.
// Both CLI and API use it to avoid duplicating that logic.
//
// The Runner holds no per-request state; multiple goroutines can use the
// same Runner concurrently. Surrogate and ModelPath are set once at startup
// and describe which regression model, if any, is loaded.
type Runner struct {
	Cache     cache.Cache
	Keyer     cache.Keyer
	Store     store.Store
	Surrogate surrogate.Predictor
	ModelPath string
	Logger    *log.Logger

	// TTL overrides the per-kind cache lifetimes when positive.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// The store defaults to a NullStore; no surrogate is loaded.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  store.NullStore{},
		Logger: logger,
	}
}

// ModelLoaded reports whether a surrogate is available for predictions.
func (r *Runner) ModelLoaded() bool {
	return r.Surrogate != nil
}

// ModelHash returns the SHA-256 of the canonical JSON of m.
func ModelHash(m *truss.Model) (string, error) {
	data, err := trussio.MarshalModel(m)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "encode model")
	}
	return cache.Hash(data), nil
}

// Analyze validates and solves m, consulting the cache first unless
// opts.Refresh is set. Solver errors are returned as is.
func (r *Runner) Analyze(ctx context.Context, m *truss.Model, opts Options) (*Result, error) {
	if m == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "model is required")
	}
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.CheckSize(m); err != nil {
		return nil, err
	}
	// Validation precedes hashing: the JSON encoder rejects NaN loads, and
	// those must surface as the solver's own input error.
	if err := m.Validate(); err != nil {
		return nil, err
	}
	hash, err := ModelHash(m)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Model:     m,
		ModelHash: hash,
		Stats: Stats{
			Nodes:    len(m.Nodes),
			Elements: len(m.Elements),
			DOFs:     m.DOFs(),
		},
	}

	key := r.Keyer.ResultKey(hash)
	if !opts.Refresh {
		var cached truss.Result
		if r.getJSON(ctx, key, "result", &cached) {
			out.Result = &cached
			out.CacheInfo.ResultHit = true
		}
	}

	if out.Result == nil {
		hooks := observability.Analysis()
		hooks.OnAnalyzeStart(ctx, out.Stats.Nodes, out.Stats.Elements)
		start := time.Now()
		res, err := truss.Analyze(m)
		out.Stats.SolveTime = time.Since(start)
		hooks.OnAnalyzeComplete(ctx, out.Stats.Nodes, out.Stats.Elements, out.Stats.SolveTime, err)
		if err != nil {
			return nil, err
		}
		out.Result = res
		r.setJSON(ctx, key, "result", res, r.ttl(cache.TTLResult))
	}

	opts.Logger.Info("analysis complete",
		"nodes", out.Stats.Nodes,
		"elements", out.Stats.Elements,
		"max_stress", out.Result.MaxStress,
		"max_disp", out.Result.MaxDisp,
		"cached", out.CacheInfo.ResultHit,
		"duration", out.Stats.SolveTime)

	if opts.Save {
		rec := store.NewRecord(opts.Source, m, out.Result)
		out.RecordID = r.save(ctx, opts.Logger, rec)
	}
	return out, nil
}

// Predict solves the demo truss for the given parameters and, when asked
// and a surrogate is loaded, adds the surrogate's peak-stress estimate. A
// failing surrogate is logged and the FEA result is returned alone; a
// failing analysis is an error.
func (r *Runner) Predict(ctx context.Context, opts PredictOptions) (*Prediction, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m := truss.Demo(opts.Load, opts.A, opts.E)
	ar, err := r.Analyze(ctx, m, Options{Refresh: opts.Refresh})
	if err != nil {
		return nil, err
	}

	out := &Prediction{
		Result:    ar.Result,
		Source:    store.SourceFEA,
		CacheInfo: ar.CacheInfo,
	}
	if opts.UseModel && r.Surrogate != nil {
		start := time.Now()
		v, hit, err := r.predict(ctx, opts)
		observability.Analysis().OnPredict(ctx, err == nil, time.Since(start))
		if err != nil {
			r.Logger.Warn("surrogate prediction failed, using FEA only", "err", err)
		} else {
			out.Value, out.OK = v, true
			out.Source = store.SourceModel
			out.CacheInfo.PredictionHit = hit
		}
	}

	if opts.Save {
		rec := store.NewRecord(out.Source, m, out.Result)
		if out.OK {
			v := out.Value
			rec.Prediction = &v
		}
		out.RecordID = r.save(ctx, r.Logger, rec)
	}
	return out, nil
}

func (r *Runner) predict(ctx context.Context, opts PredictOptions) (float64, bool, error) {
	key := r.Keyer.PredictionKey(r.ModelPath, opts.Load, opts.A)
	if !opts.Refresh {
		var v float64
		if r.getJSON(ctx, key, "prediction", &v) {
			return v, true, nil
		}
	}
	v, err := r.Surrogate.Predict(opts.Load, opts.A)
	if err != nil {
		return 0, false, err
	}
	r.setJSON(ctx, key, "prediction", v, r.ttl(cache.TTLPrediction))
	return v, false, nil
}

// save persists rec and returns its ID, or "" if the store failed. Storage
// problems never fail an analysis.
func (r *Runner) save(ctx context.Context, logger *log.Logger, rec *store.Record) string {
	if err := r.Store.Save(ctx, rec); err != nil {
		logger.Warn("failed to save record", "id", rec.ID, "err", err)
		return ""
	}
	logger.Debug("saved record", "id", rec.ID, "source", rec.Source)
	return rec.ID
}

// getJSON decodes a cached entry into v. Backend errors and undecodable
// entries count as misses.
func (r *Runner) getJSON(ctx context.Context, key, keyType string, v any) bool {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache get failed", "type", keyType, "err", err)
	}
	if err != nil || !hit || json.Unmarshal(data, v) != nil {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return true
}

func (r *Runner) setJSON(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache set failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// Close releases resources held by the runner: the cache and the store.
func (r *Runner) Close() error {
	var first error
	if r.Cache != nil {
		first = r.Cache.Close()
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
