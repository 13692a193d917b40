package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/trussfea/pkg/buildinfo"
	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/render"
	"github.com/matzehuels/trussfea/pkg/store"
	"github.com/matzehuels/trussfea/pkg/truss"
)

type analysisResponse struct {
	Success bool          `json:"success"`
	ID      string        `json:"id,omitempty"`
	Cached  bool          `json:"cached"`
	Result  *truss.Result `json:"result"`
}

type predictResponse struct {
	Success    bool          `json:"success"`
	Source     string        `json:"source"`
	ID         string        `json:"id,omitempty"`
	Result     *truss.Result `json:"result"`
	Prediction *float64      `json:"prediction,omitempty"`
}

type healthResponse struct {
	OK          bool   `json:"ok"`
	ModelLoaded bool   `json:"model_loaded"`
	ModelPath   string `json:"model_path,omitempty"`
	Version     string `json:"version"`
}

type recordsResponse struct {
	Success bool            `json:"success"`
	Records []*store.Record `json:"records"`
}

type recordResponse struct {
	Success bool          `json:"success"`
	Record  *store.Record `json:"record"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"notes":  "POST /run_fea or /predict",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		OK:          true,
		ModelLoaded: s.runner.ModelLoaded(),
		Version:     buildinfo.Version,
	}
	if resp.ModelLoaded {
		resp.ModelPath = s.runner.ModelPath
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRunFEA(w http.ResponseWriter, r *http.Request) {
	m, err := trussio.ReadModel(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out, err := s.runner.Analyze(r.Context(), m, pipeline.Options{
		MaxNodes: s.opts.MaxNodes,
		Save:     true,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, analysisResponse{
		Success: true,
		ID:      out.RecordID,
		Cached:  out.CacheInfo.ResultHit,
		Result:  out.Result,
	})
}

// handlePredict accepts an optional body; missing fields keep the demo
// defaults. Bad parameters are the client's fault, while a failing analysis
// of the demo truss is a server error.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	opts := pipeline.DefaultPredictOptions()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := opts.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}
	opts.Save = true

	pred, err := s.runner.Predict(r.Context(), opts)
	if err != nil {
		code := codeOf(err)
		if code != apperrors.ErrCodeTimeout {
			code = apperrors.ErrCodeInternal
		}
		s.writeError(w, r, statusFor(code), code, err)
		return
	}

	resp := predictResponse{
		Success: true,
		Source:  pred.Source,
		ID:      pred.RecordID,
		Result:  pred.Result,
	}
	if pred.OK {
		v := pred.Value
		resp.Prediction = &v
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleRender draws the posted model. Query parameters select the drawing:
// kind (topology|deformed), format, detailed, scale, width and height. A
// topology of a structure that cannot be solved is still drawn, uncoloured.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	m, err := trussio.ReadModel(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ropts, err := renderOptions(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ropts.SetDefaults()
	if err := ropts.Validate(); err != nil {
		s.fail(w, r, err)
		return
	}

	out, err := s.runner.Analyze(r.Context(), m, pipeline.Options{MaxNodes: s.opts.MaxNodes})
	if err != nil {
		if ropts.Kind != pipeline.KindTopology || !apperrors.Is(err, apperrors.ErrCodeSingularSystem) {
			s.fail(w, r, err)
			return
		}
		out = &pipeline.Result{Model: m}
	}

	data, cached, err := s.runner.Render(r.Context(), out, ropts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType(ropts.Format))
	w.Header().Set("X-Cache", strconv.FormatBool(cached))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func renderOptions(r *http.Request) (pipeline.RenderOptions, error) {
	q := r.URL.Query()
	opts := pipeline.RenderOptions{
		Kind:   q.Get("kind"),
		Format: q.Get("format"),
	}
	var err error
	if v := q.Get("detailed"); v != "" {
		if opts.Detailed, err = strconv.ParseBool(v); err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "detailed: %q is not a boolean", v)
		}
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"scale", &opts.Scale},
		{"width", &opts.Width},
		{"height", &opts.Height},
	} {
		v := q.Get(f.name)
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "%s: %q is not a number", f.name, v)
		}
		if err := apperrors.ValidatePositive(f.name, x); err != nil {
			return opts, err
		}
		*f.dst = x
	}
	return opts, nil
}

func contentType(format string) string {
	switch format {
	case render.FormatSVG:
		return "image/svg+xml"
	case render.FormatPNG:
		return "image/png"
	case render.FormatPDF:
		return "application/pdf"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := DefaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.fail(w, r, apperrors.New(apperrors.ErrCodeInvalidInput, "limit: %q is not an integer", v))
			return
		}
		if err := apperrors.ValidateCount("limit", n, MaxListLimit); err != nil {
			s.fail(w, r, err)
			return
		}
		limit = n
	}
	recs, err := s.runner.Store.List(r.Context(), limit)
	if err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "list records"))
		return
	}
	if recs == nil {
		recs = []*store.Record{}
	}
	writeJSON(w, http.StatusOK, recordsResponse{Success: true, Records: recs})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := apperrors.ValidateRecordID(id); err != nil {
		s.fail(w, r, err)
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "record %s", id))
		return
	}
	if err != nil {
		s.fail(w, r, apperrors.Wrap(apperrors.ErrCodeStorage, err, "get record %s", id))
		return
	}
	writeJSON(w, http.StatusOK, recordResponse{Success: true, Record: rec})
}
