package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

// Header is the first row of a dataset CSV.
var Header = []string{"load", "A", "max_stress", "max_disp"}

// WriteCSV writes samples with [Header].
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write([]string{f(s.Load), f(s.A), f(s.MaxStress), f(s.MaxDisp)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// ExportCSV writes samples to a file at path.
func ExportCSV(path string, samples []Sample) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(file, samples); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadCSV parses a dataset. Columns are located by header name, so extra
// columns and reordering are tolerated.
func ReadCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "dataset is empty")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "read header")
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	idx := make([]int, len(Header))
	for i, name := range Header {
		j, ok := col[name]
		if !ok {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "dataset is missing column %q", name)
		}
		idx[i] = j
	}

	var out []Sample
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "line %d", line)
		}
		var v [4]float64
		for i, j := range idx {
			v[i], err = strconv.ParseFloat(rec[j], 64)
			if err != nil {
				return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "line %d column %s", line, Header[i])
			}
		}
		out = append(out, Sample{Load: v[0], A: v[1], MaxStress: v[2], MaxDisp: v[3]})
	}
	return out, nil
}

// ImportCSV reads a dataset file.
func ImportCSV(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()
	return ReadCSV(file)
}
