// Package pipeline runs truss analyses for the CLI and the HTTP service.
//
// The [Runner] wraps the pure solver in [truss.Analyze] with what both entry
// points need: result caching keyed by the model's content hash, optional
// persistence of analysis records, surrogate predictions for the demo truss,
// cached rendering, observability hooks and timing statistics.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	runner.Store = fileStore
//
//	out, err := runner.Analyze(ctx, model, pipeline.Options{Save: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(out.Result.MaxStress, out.CacheInfo.ResultHit)
//
//	pred, err := runner.Predict(ctx, pipeline.DefaultPredictOptions())
//
// Core analysis errors ([truss.DegenerateElementError], [truss.InvalidDOFError],
// [truss.SingularSystemError]) are wrapped with %w; match them with
// errors.As or [errors.GetCode].
//
// [errors.GetCode]: github.com/matzehuels/trussfea/pkg/errors.GetCode
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/store"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultMaxNodes bounds the model size accepted by the runner. The
	// stiffness matrix is dense, so memory grows with the square of it.
	DefaultMaxNodes = 500

	// DefaultPlotWidth and DefaultPlotHeight size deformed-shape plots, in points.
	DefaultPlotWidth  = 450.0
	DefaultPlotHeight = 300.0
)

// Render kinds.
const (
	KindTopology = "topology"
	KindDeformed = "deformed"
)

// =============================================================================
// Options
// =============================================================================

// Options configures a single analysis.
type Options struct {
	MaxNodes int    `json:"max_nodes,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"` // bypass cache lookup
	Save     bool   `json:"save,omitempty"`    // persist a record to the runner's store
	Source   string `json:"source,omitempty"`  // record source; defaults to store.SourceFEA

	Logger *log.Logger `json:"-"`
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Source == "" {
		o.Source = store.SourceFEA
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// CheckSize rejects models above the node limit.
func (o *Options) CheckSize(m *truss.Model) error {
	if o.MaxNodes > 0 && len(m.Nodes) > o.MaxNodes {
		return apperrors.New(apperrors.ErrCodeTooLarge, "model has %d nodes, limit is %d", len(m.Nodes), o.MaxNodes)
	}
	return nil
}

// PredictOptions configures a demo-truss prediction.
type PredictOptions struct {
	Load     float64 `json:"load"`
	A        float64 `json:"A"`
	E        float64 `json:"E"`
	UseModel bool    `json:"use_model"`
	Save     bool    `json:"-"`
	Refresh  bool    `json:"-"`
}

// DefaultPredictOptions returns the demo defaults with the surrogate enabled.
func DefaultPredictOptions() PredictOptions {
	return PredictOptions{
		Load:     truss.DefaultDemoLoad,
		A:        truss.DefaultDemoArea,
		E:        truss.DefaultDemoModulus,
		UseModel: true,
	}
}

// Validate checks the demo parameters.
func (o PredictOptions) Validate() error {
	if err := apperrors.ValidateFinite("load", o.Load); err != nil {
		return err
	}
	if err := apperrors.ValidatePositive("A", o.A); err != nil {
		return err
	}
	return apperrors.ValidatePositive("E", o.E)
}

// RenderOptions configures a drawing.
type RenderOptions struct {
	Kind     string  // KindTopology or KindDeformed
	Format   string  // render.FormatSVG, FormatPNG, FormatPDF or FormatDOT
	Detailed bool    // topology: label forces and loads
	Scale    float64 // deformed: amplification, zero for automatic
	Width    float64 // deformed: points
	Height   float64 // deformed: points
}

// SetDefaults fills zero fields.
func (o *RenderOptions) SetDefaults() {
	if o.Kind == "" {
		o.Kind = KindTopology
	}
	if o.Format == "" {
		if o.Kind == KindDeformed {
			o.Format = render.FormatPNG
		} else {
			o.Format = render.FormatSVG
		}
	}
	if o.Kind == KindDeformed {
		if o.Width <= 0 {
			o.Width = DefaultPlotWidth
		}
		if o.Height <= 0 {
			o.Height = DefaultPlotHeight
		}
	}
}

// Validate checks that the kind and format combination is supported.
func (o *RenderOptions) Validate() error {
	switch o.Kind {
	case KindTopology:
		return render.ValidateFormat(o.Format, render.FormatSVG, render.FormatPNG, render.FormatDOT)
	case KindDeformed:
		return render.ValidateFormat(o.Format, render.FormatPNG, render.FormatSVG, render.FormatPDF)
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "invalid render kind: %q (must be one of: %s, %s)", o.Kind, KindTopology, KindDeformed)
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of an analysis run.
type Result struct {
	Model     *truss.Model
	Result    *truss.Result
	ModelHash string // SHA-256 of the canonical model JSON
	RecordID  string // set when a record was saved

	Stats     Stats
	CacheInfo CacheInfo
}

// Prediction is the outcome of a demo-truss prediction. The FEA result is
// always present; Value is meaningful only when OK is set.
type Prediction struct {
	Result   *truss.Result
	Value    float64
	OK       bool
	Source   string // store.SourceModel when OK, otherwise store.SourceFEA
	RecordID string

	CacheInfo CacheInfo
}

// Stats contains analysis execution statistics.
type Stats struct {
	Nodes     int
	Elements  int
	DOFs      int
	SolveTime time.Duration // zero on a cache hit
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	ResultHit     bool
	PredictionHit bool
	ArtifactHit   bool
}
