package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without seeing each other's entries.
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ResultKey generates a prefixed key for analysis results.
func (k *ScopedKeyer) ResultKey(modelHash string) string {
	return k.prefix + k.inner.ResultKey(modelHash)
}

// PredictionKey generates a prefixed key for surrogate predictions.
func (k *ScopedKeyer) PredictionKey(modelPath string, load, area float64) string {
	return k.prefix + k.inner.PredictionKey(modelPath, load, area)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(modelHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(modelHash, opts)
}
