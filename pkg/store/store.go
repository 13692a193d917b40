// Package store persists analysis records.
//
// A [Record] captures one analysis: the model that was solved (when known),
// its result, an optional surrogate prediction and where the request came
// from. Backends:
//   - [NullStore] discards records (default)
//   - [FileStore] writes a JSON file and a flat CSV per record, for CLI use
//   - [MongoStore] keeps records in a MongoDB collection for the service
//
// Stores are safe for concurrent use.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/trussfea/pkg/truss"
)

// ErrNotFound is returned by Get when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// Record sources.
const (
	SourceFEA   = "fea"      // result computed by the solver only
	SourceModel = "ml_model" // a surrogate prediction accompanies the result
)

// Record is one persisted analysis.
type Record struct {
	ID         string        `json:"id" bson:"_id"`
	CreatedAt  time.Time     `json:"created_at" bson:"created_at"`
	Source     string        `json:"source" bson:"source"`
	Model      *truss.Model  `json:"model,omitempty" bson:"model,omitempty"`
	Result     *truss.Result `json:"result" bson:"result"`
	Prediction *float64      `json:"prediction,omitempty" bson:"prediction,omitempty"`
}

// NewRecord stamps a result with a fresh ID and the current time.
func NewRecord(source string, m *truss.Model, res *truss.Result) *Record {
	return &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Model:     m,
		Result:    res,
	}
}

// Store is the interface for record storage backends.
type Store interface {
	// Save persists rec. The ID must be set.
	Save(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first. A limit of zero or
	// less returns all records.
	List(ctx context.Context, limit int) ([]*Record, error)

	Close() error
}
