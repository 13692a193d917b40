package store

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

const timeLayout = "20060102T150405Z"

// FileStore writes each record to <dir>/result_<timestamp>_<id>.json plus a
// CSV of the same name with one row per DOF/element index.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := apperrors.ValidatePath(dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the store directory.
func (s *FileStore) Path() string { return s.dir }

func (s *FileStore) base(rec *Record) string {
	return filepath.Join(s.dir, "result_"+rec.CreatedAt.UTC().Format(timeLayout)+"_"+rec.ID)
}

func (s *FileStore) Save(ctx context.Context, rec *Record) error {
	if err := apperrors.ValidateRecordID(rec.ID); err != nil {
		return err
	}
	if rec.Result == nil {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "record %s has no result", rec.ID)
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.base(rec)
	if err := os.WriteFile(base+".json", data, 0o644); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "write record %s", rec.ID)
	}
	if err := writeCSV(base+".csv", rec); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeStorage, err, "write record %s", rec.ID)
	}
	return nil
}

// writeCSV flattens a result into columns displacement, force, stress,
// max_stress, max_disp. Columns shorter than the longest are left blank and
// the scalar columns are filled on the first row only.
func writeCSV(path string, rec *Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	res := rec.Result
	w := csv.NewWriter(f)
	if err := w.Write([]string{"displacement", "force", "stress", "max_stress", "max_disp"}); err != nil {
		return err
	}
	rows := max(len(res.U), len(res.ElemForces), 1)
	for i := 0; i < rows; i++ {
		row := []string{cell(res.U, i), cell(res.ElemForces, i), cell(res.ElemStresses, i), "", ""}
		if i == 0 {
			row[3] = formatFloat(res.MaxStress)
			row[4] = formatFloat(res.MaxDisp)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func cell(v []float64, i int) string {
	if i >= len(v) {
		return ""
	}
	return formatFloat(v[i])
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	if err := apperrors.ValidateRecordID(id); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "result_*_"+id+".json"))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNotFound
	}
	return readRecord(matches[0])
}

func (s *FileStore) List(ctx context.Context, limit int) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() && strings.HasPrefix(name, "result_") && filepath.Ext(name) == ".json" {
			names = append(names, name)
		}
	}
	// Timestamps sort lexically; newest first.
	slices.Sort(names)
	slices.Reverse(names)
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	out := make([]*Record, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := readRecord(filepath.Join(s.dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func readRecord(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse %s", filepath.Base(path))
	}
	return &rec, nil
}

func (s *FileStore) Close() error { return nil }

var _ Store = (*FileStore)(nil)
