// Package surrogate fits and evaluates a fast regression model of the demo
// truss's peak stress as a function of load magnitude and area.
//
// The model is ordinary least squares over the basis
//
//	[1, |load|, A, |load|/A]
//
// solved by QR decomposition. For the statically determinate demo truss the
// peak stress is proportional to |load|/A, so the fit is exact up to
// rounding; the extra terms absorb datasets generated with other moduli or
// noisy inputs.
package surrogate

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/trussfea/pkg/dataset"
	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

// maxCondition bounds the condition number of the scaled design matrix.
const maxCondition = 1e12

// FormatVersion is written to saved models and checked on load.
const FormatVersion = 1

// Features names the regression basis in order.
var Features = []string{"1", "|load|", "A", "|load|/A"}

// Predictor estimates the peak stress of the demo truss.
type Predictor interface {
	Predict(load, area float64) (float64, error)
}

// Metrics summarises a fit on its held-out split.
type Metrics struct {
	MAE       float64 `json:"mae"`
	R2        float64 `json:"r2"`
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
}

// Model is a trained regressor.
type Model struct {
	Version   int       `json:"version"`
	Features  []string  `json:"features"`
	Coef      []float64 `json:"coef"`  // per feature, applied to scaled features
	Scale     []float64 `json:"scale"` // divisor per feature
	Metrics   Metrics   `json:"metrics"`
	TrainedAt time.Time `json:"trained_at"`
}

// TrainOptions controls the train/test split.
type TrainOptions struct {
	TestFraction float64 // share of samples held out, in (0, 1)
	Seed         uint64  // shuffle seed
}

// DefaultTrainOptions holds out 20% with seed 42.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{TestFraction: 0.2, Seed: 42}
}

func basis(load, area float64) [4]float64 {
	l := math.Abs(load)
	return [4]float64{1, l, area, l / area}
}

func checkInputs(load, area float64) error {
	if err := apperrors.ValidateFinite("load", load); err != nil {
		return err
	}
	return apperrors.ValidatePositive("A", area)
}

// Train shuffles samples, holds out opts.TestFraction of them, fits the
// remainder and reports metrics on the held-out part.
func Train(samples []dataset.Sample, opts TrainOptions) (*Model, Metrics, error) {
	if !(opts.TestFraction > 0 && opts.TestFraction < 1) {
		return nil, Metrics{}, apperrors.New(apperrors.ErrCodeInvalidInput, "test fraction must be in (0, 1), got %v", opts.TestFraction)
	}
	for i, s := range samples {
		if err := checkInputs(s.Load, s.A); err != nil {
			return nil, Metrics{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "sample %d", i)
		}
		if err := apperrors.ValidateFinite("max_stress", s.MaxStress); err != nil {
			return nil, Metrics{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "sample %d", i)
		}
	}

	n := len(samples)
	nTest := int(math.Ceil(opts.TestFraction * float64(n)))
	nTrain := n - nTest
	if nTest < 1 || nTrain < len(Features) {
		return nil, Metrics{}, apperrors.New(apperrors.ErrCodeInvalidInput,
			"dataset too small: %d samples give %d for training, need at least %d", n, nTrain, len(Features))
	}

	perm := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)).Perm(n)
	train, test := perm[nTest:], perm[:nTest]

	scale := make([]float64, len(Features))
	for _, i := range train {
		for j, v := range basis(samples[i].Load, samples[i].A) {
			scale[j] = math.Max(scale[j], math.Abs(v))
		}
	}
	for j := range scale {
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	x := mat.NewDense(nTrain, len(Features), nil)
	y := mat.NewDense(nTrain, 1, nil)
	for r, i := range train {
		for j, v := range basis(samples[i].Load, samples[i].A) {
			x.Set(r, j, v/scale[j])
		}
		y.Set(r, 0, samples[i].MaxStress)
	}

	var qr mat.QR
	qr.Factorize(x)
	if c := qr.Cond(); math.IsNaN(c) || c > maxCondition {
		return nil, Metrics{}, apperrors.New(apperrors.ErrCodeInvalidInput, "degenerate dataset: features are collinear (condition %.3g)", c)
	}
	var beta mat.Dense
	if err := qr.SolveTo(&beta, false, y); err != nil {
		return nil, Metrics{}, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "solve least squares")
	}

	m := &Model{
		Version:   FormatVersion,
		Features:  append([]string(nil), Features...),
		Coef:      mat.Col(nil, 0, &beta),
		Scale:     scale,
		TrainedAt: time.Now().UTC(),
	}

	est := make([]float64, nTest)
	obs := make([]float64, nTest)
	abs := make([]float64, nTest)
	for r, i := range test {
		est[r] = m.eval(samples[i].Load, samples[i].A)
		obs[r] = samples[i].MaxStress
		abs[r] = math.Abs(est[r] - obs[r])
	}
	m.Metrics = Metrics{
		MAE:       stat.Mean(abs, nil),
		R2:        stat.RSquaredFrom(est, obs, nil),
		TrainSize: nTrain,
		TestSize:  nTest,
	}
	return m, m.Metrics, nil
}

func (m *Model) eval(load, area float64) float64 {
	var sum float64
	for j, v := range basis(load, area) {
		sum += m.Coef[j] * v / m.Scale[j]
	}
	return sum
}

// Predict estimates the peak stress for the given load and area.
func (m *Model) Predict(load, area float64) (float64, error) {
	if err := checkInputs(load, area); err != nil {
		return 0, err
	}
	return m.eval(load, area), nil
}

// Save writes the model as JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Load reads a model saved by [Model.Save].
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeModelUnavailable, err, "read model")
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse model %s", path)
	}
	if m.Version != FormatVersion {
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "model format version %d, want %d", m.Version, FormatVersion)
	}
	if len(m.Coef) != len(Features) || len(m.Scale) != len(Features) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "model has %d coefficients and %d scales, want %d",
			len(m.Coef), len(m.Scale), len(Features))
	}
	for j := range m.Coef {
		if !(m.Scale[j] > 0) || math.IsInf(m.Coef[j], 0) || math.IsNaN(m.Coef[j]) {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "model term %d is not finite", j)
		}
	}
	return &m, nil
}

var _ Predictor = (*Model)(nil)
