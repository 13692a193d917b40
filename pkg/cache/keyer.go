package cache

import "strconv"

// Keyer builds cache keys.
type Keyer interface {
	// ResultKey is the key of the analysis result of the model whose
	// canonical JSON hashes to modelHash.
	ResultKey(modelHash string) string

	// PredictionKey is the key of a surrogate prediction.
	PredictionKey(modelPath string, load, area float64) string

	// ArtifactKey is the key of a rendered drawing of a model.
	ArtifactKey(modelHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the rendering options that change the output bytes.
type ArtifactKeyOpts struct {
	Kind     string  `json:"kind"` // "topology" or "deformed"
	Format   string  `json:"format"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
}

// DefaultKeyer produces keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey returns "result:<modelHash>".
func (DefaultKeyer) ResultKey(modelHash string) string {
	return "result:" + modelHash
}

// PredictionKey hashes the model path together with the exact bit patterns
// of the inputs.
func (DefaultKeyer) PredictionKey(modelPath string, load, area float64) string {
	return hashKey("predict", modelPath,
		strconv.FormatFloat(load, 'g', -1, 64),
		strconv.FormatFloat(area, 'g', -1, 64))
}

// ArtifactKey hashes the model hash together with the options.
func (DefaultKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", modelHash, opts)
}

var _ Keyer = DefaultKeyer{}
