package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/trussfea/pkg/cache"
	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/store"
	"github.com/matzehuels/trussfea/pkg/truss"
)

type constPredictor struct {
	value float64
	err   error
}

func (p constPredictor) Predict(float64, float64) (float64, error) { return p.value, p.err }

type testEnv struct {
	runner  *pipeline.Runner
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := log.New(&bytes.Buffer{})
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := pipeline.NewRunner(fc, nil, logger)
	fs, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner.Store = fs
	srv := New(runner, Options{
		MaxNodes:    10,
		CORSOrigins: []string{"http://localhost:5173"},
	}, logger)
	return &testEnv{runner: runner, handler: srv.Handler()}
}

func (e *testEnv) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return v
}

func demoJSON(t *testing.T) string {
	t.Helper()
	data, err := trussio.MarshalModel(truss.Demo(-1000, 1e-4, 210e9))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRoot(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	got := decode(t, w)
	if got["status"] != "ok" || got["notes"] != "POST /run_fea or /predict" {
		t.Errorf("body = %v", got)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	got := decode(t, env.do(t, http.MethodGet, "/health", ""))
	if got["ok"] != true || got["model_loaded"] != false {
		t.Errorf("without model: %v", got)
	}
	if _, ok := got["model_path"]; ok {
		t.Errorf("model_path reported without a model: %v", got)
	}

	env.runner.Surrogate = constPredictor{value: 1}
	env.runner.ModelPath = "models/m.json"
	got = decode(t, env.do(t, http.MethodGet, "/health", ""))
	if got["model_loaded"] != true || got["model_path"] != "models/m.json" {
		t.Errorf("with model: %v", got)
	}
}

func TestRunFEA(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/run_fea", demoJSON(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	got := decode(t, w)
	if got["success"] != true {
		t.Fatalf("body = %v", got)
	}
	res := got["result"].(map[string]any)
	if s := res["max_stress"].(float64); s < 1.41e7 || s > 1.42e7 {
		t.Errorf("max_stress = %v", s)
	}
	if len(res["u"].([]any)) != 8 || len(res["elem_forces"].([]any)) != 5 {
		t.Errorf("result shape = %v", res)
	}

	id, _ := got["id"].(string)
	if id == "" {
		t.Fatal("no record id")
	}
	rec := decode(t, env.do(t, http.MethodGet, "/records/"+id, ""))
	if rec["success"] != true {
		t.Errorf("get record: %v", rec)
	}

	// A second identical request is served from the cache.
	again := decode(t, env.do(t, http.MethodPost, "/run_fea", demoJSON(t)))
	if again["cached"] != true {
		t.Errorf("second run not cached: %v", again)
	}
}

func TestRunFEAErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed", `{"nodes":`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", `{"nodes":[],"elements":[],"loads":[],"fixed_dofs":[],"extra":1}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{
			"fixed dof out of range",
			`{"nodes":[[0,0],[1,0]],"elements":[{"n1":0,"n2":1,"A":1e-4,"E":2.1e11}],"loads":[0,0,0,0],"fixed_dofs":[9]}`,
			http.StatusBadRequest, "INVALID_DOF",
		},
		{
			"degenerate element",
			`{"nodes":[[0,0],[0,0]],"elements":[{"n1":0,"n2":1,"A":1e-4,"E":2.1e11}],"loads":[0,0,0,0],"fixed_dofs":[0,1]}`,
			http.StatusBadRequest, "DEGENERATE_ELEMENT",
		},
		{
			"unsupported structure",
			`{"nodes":[[0,0],[1,0]],"elements":[{"n1":0,"n2":1,"A":1e-4,"E":2.1e11}],"loads":[0,0,0,0],"fixed_dofs":[]}`,
			http.StatusUnprocessableEntity, "SINGULAR_SYSTEM",
		},
		{
			"too many nodes",
			`{"nodes":[[0,0],[1,0],[2,0],[3,0],[4,0],[5,0],[6,0],[7,0],[8,0],[9,0],[10,0]],"elements":[],"loads":[0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0,0],"fixed_dofs":[]}`,
			http.StatusBadRequest, "TOO_LARGE",
		},
	}
	env := newTestEnv(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/run_fea", tt.body)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.status, w.Body)
			}
			got := decode(t, w)
			if got["success"] != false || got["code"] != tt.code {
				t.Errorf("body = %v, want code %s", got, tt.code)
			}
			if d, _ := got["detail"].(string); d == "" {
				t.Error("empty detail")
			}
		})
	}
}

func TestPredict(t *testing.T) {
	tests := []struct {
		name       string
		surrogate  *constPredictor
		body       string
		wantSource string
		wantPred   bool
	}{
		{"no model", nil, `{}`, store.SourceFEA, false},
		{"empty body", nil, ``, store.SourceFEA, false},
		{"model", &constPredictor{value: 1.5e7}, `{"load":-1000,"A":1e-4}`, store.SourceModel, true},
		{"zero prediction", &constPredictor{value: 0}, `{}`, store.SourceModel, true},
		{"model disabled", &constPredictor{value: 1.5e7}, `{"use_model":false}`, store.SourceFEA, false},
		{"model fails", &constPredictor{err: errors.New("corrupt")}, `{}`, store.SourceFEA, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.surrogate != nil {
				env.runner.Surrogate = *tt.surrogate
			}
			w := env.do(t, http.MethodPost, "/predict", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body)
			}
			got := decode(t, w)
			if got["source"] != tt.wantSource {
				t.Errorf("source = %v, want %s", got["source"], tt.wantSource)
			}
			_, hasPred := got["prediction"]
			if hasPred != tt.wantPred {
				t.Errorf("prediction present = %v, want %v", hasPred, tt.wantPred)
			}
			if got["result"] == nil {
				t.Error("FEA result missing")
			}
		})
	}
}

func TestPredictInvalid(t *testing.T) {
	env := newTestEnv(t)
	for _, body := range []string{`{"A":-1}`, `{"E":0}`, `{"load":"heavy"}`, `{"mass":1}`} {
		w := env.do(t, http.MethodPost, "/predict", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", body, w.Code)
		}
	}
}

func TestRender(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/render?kind=topology&format=dot&detailed=true", demoJSON(t))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "graph G") {
		t.Errorf("body = %q", w.Body.String())
	}

	w = env.do(t, http.MethodPost, "/render?kind=topology&format=dot&detailed=true", demoJSON(t))
	if w.Header().Get("X-Cache") != "true" {
		t.Error("second render not cached")
	}

	singular := `{"nodes":[[0,0],[1,0]],"elements":[{"n1":0,"n2":1,"A":1e-4,"E":2.1e11}],"loads":[0,0,0,0],"fixed_dofs":[]}`
	if w := env.do(t, http.MethodPost, "/render?format=dot", singular); w.Code != http.StatusOK {
		t.Errorf("topology of unsolvable model: status = %d", w.Code)
	}
	if w := env.do(t, http.MethodPost, "/render?kind=deformed", singular); w.Code != http.StatusUnprocessableEntity {
		t.Errorf("deformed plot of unsolvable model: status = %d", w.Code)
	}

	for _, q := range []string{"kind=sideways", "format=gif", "scale=-2", "width=wide", "detailed=maybe"} {
		if w := env.do(t, http.MethodPost, "/render?"+q, demoJSON(t)); w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", q, w.Code)
		}
	}
}

func TestRecords(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		env.do(t, http.MethodPost, "/predict", `{}`)
	}

	got := decode(t, env.do(t, http.MethodGet, "/records?limit=2", ""))
	if recs := got["records"].([]any); len(recs) != 2 {
		t.Errorf("len(records) = %d, want 2", len(recs))
	}

	tests := []struct {
		target string
		status int
	}{
		{"/records?limit=0", http.StatusBadRequest},
		{"/records?limit=x", http.StatusBadRequest},
		{"/records/" + uuid.NewString(), http.StatusNotFound},
		{"/records/bad.id", http.StatusBadRequest},
	}
	for _, tt := range tests {
		if w := env.do(t, http.MethodGet, tt.target, ""); w.Code != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.target, w.Code, tt.status)
		}
	}
}

func TestMiddleware(t *testing.T) {
	env := newTestEnv(t)

	t.Run("request id", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/", "")
		if _, err := uuid.Parse(w.Header().Get(requestIDHeader)); err != nil {
			t.Errorf("request id %q: %v", w.Header().Get(requestIDHeader), err)
		}

		id := uuid.NewString()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set(requestIDHeader, id)
		w = httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if got := w.Header().Get(requestIDHeader); got != id {
			t.Errorf("incoming id not kept: %q", got)
		}
	})

	t.Run("cors", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodOptions, "/run_fea", nil)
		r.Header.Set("Origin", "http://localhost:5173")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Errorf("allowed origin = %q", got)
		}

		r = httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Origin", "http://evil.example")
		w = httptest.NewRecorder()
		env.handler.ServeHTTP(w, r)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("foreign origin allowed: %q", got)
		}
	})

	t.Run("cors without origins", func(t *testing.T) {
		srv := New(env.runner, Options{}, log.New(&bytes.Buffer{}))
		r := httptest.NewRequest(http.MethodOptions, "/run_fea", nil)
		r.Header.Set("Origin", "http://evil.example")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, r)
		if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
			t.Errorf("credentials allowed for unlisted origin: %q", got)
		}
	})

	t.Run("body limit", func(t *testing.T) {
		srv := New(env.runner, Options{MaxBodyBytes: 16}, log.New(&bytes.Buffer{}))
		r := httptest.NewRequest(http.MethodPost, "/run_fea", strings.NewReader(demoJSON(t)))
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, r)
		if w.Code != http.StatusBadRequest || decode(t, w)["code"] != "TOO_LARGE" {
			t.Errorf("status = %d body = %s", w.Code, w.Body)
		}
	})
}

func TestListenAndServeShutdown(t *testing.T) {
	env := newTestEnv(t)
	srv := New(env.runner, Options{}, log.New(&bytes.Buffer{}))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	if err := <-done; err != nil {
		t.Errorf("ListenAndServe = %v", err)
	}
}
