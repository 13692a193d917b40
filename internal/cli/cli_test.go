package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	trussio "github.com/matzehuels/trussfea/pkg/io"
	"github.com/matzehuels/trussfea/pkg/observability"
	"github.com/matzehuels/trussfea/pkg/truss"
)

// runCLI executes the root command with args and returns what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var out bytes.Buffer
	old := stdout
	stdout = &out
	t.Cleanup(func() { stdout = old })

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDemo(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "demo.json")
	if err := trussio.ExportModel(truss.Demo(-1000, 1e-4, 210e9), path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"solve", "demo", "predict", "sample", "train", "render", "view", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestSolveCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeDemo(t, dir)
	result := filepath.Join(dir, "result.json")

	out, err := runCLI(t, "solve", model, "-o", result, "--reactions")
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	for _, want := range []string{"14.14 MPa", "tension", "compression", "node 0 x"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	f, err := os.Open(result)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	res, err := trussio.ReadResult(f)
	if err != nil {
		t.Fatal(err)
	}
	if res.MaxStress < 1.414e7 || res.MaxStress > 1.4143e7 {
		t.Errorf("MaxStress = %v", res.MaxStress)
	}
}

func TestSolveCommandErrors(t *testing.T) {
	dir := t.TempDir()
	singular := filepath.Join(dir, "singular.json")
	body := `{"nodes":[[0,0],[1,0]],"elements":[{"n1":0,"n2":1,"A":1e-4,"E":2.1e11}],"loads":[0,0,0,0],"fixed_dofs":[]}`
	if err := os.WriteFile(singular, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, "solve", singular); err == nil || !strings.Contains(err.Error(), "singular") {
		t.Errorf("singular model: err = %v", err)
	}
	if _, err := runCLI(t, "solve", filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file should fail")
	}
	if _, err := runCLI(t, "solve"); err == nil {
		t.Error("missing argument should fail")
	}
}

func TestDemoCommand(t *testing.T) {
	dir := t.TempDir()
	exported := filepath.Join(dir, "demo.json")

	out, err := runCLI(t, "demo", "--load", "-2000", "--export-model", exported, "--table=false")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	if !strings.Contains(out, "28.28 MPa") {
		t.Errorf("output:\n%s", out)
	}
	m, err := trussio.ImportModel(exported)
	if err != nil {
		t.Fatal(err)
	}
	if m.Loads[truss.DemoLoadDOF] != -2000 {
		t.Errorf("exported load = %v", m.Loads[truss.DemoLoadDOF])
	}

	if _, err := runCLI(t, "demo", "--area", "0"); err == nil {
		t.Error("zero area should fail")
	}
}

func TestSampleTrainPredict(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.csv")
	model := filepath.Join(dir, "model.json")

	if _, err := runCLI(t, "sample", "--samples", "40", "--seed", "3", "-o", data); err != nil {
		t.Fatalf("sample: %v", err)
	}
	raw, err := os.ReadFile(data)
	if err != nil {
		t.Fatal(err)
	}
	if lines := strings.Count(string(raw), "\n"); lines != 41 {
		t.Errorf("dataset has %d lines, want 41", lines)
	}

	out, err := runCLI(t, "train", data, "-o", model)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if !strings.Contains(out, "R²") {
		t.Errorf("train output:\n%s", out)
	}

	out, err = runCLI(t, "predict", "--model", model)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if !strings.Contains(out, "ml_model") || !strings.Contains(out, "predicted") {
		t.Errorf("predict output:\n%s", out)
	}

	// A broken model falls back to the solver.
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "predict", "--model", broken)
	if err != nil {
		t.Fatalf("predict with broken model: %v", err)
	}
	if !strings.Contains(out, "Source: fea") {
		t.Errorf("fallback output:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	model := writeDemo(t, dir)

	if _, err := runCLI(t, "render", model, "-f", "dot", "--detailed"); err != nil {
		t.Fatalf("render dot: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "demo_topology.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "graph G") {
		t.Errorf("dot = %q", dot)
	}

	svg := filepath.Join(dir, "deformed.svg")
	if _, err := runCLI(t, "render", model, "-k", "deformed", "-f", "svg", "-o", svg); err != nil {
		t.Fatalf("render deformed: %v", err)
	}
	if data, err := os.ReadFile(svg); err != nil || !bytes.Contains(data, []byte("<svg")) {
		t.Errorf("deformed svg: %v", err)
	}

	if _, err := runCLI(t, "render", model, "-k", "deformed", "-f", "dot"); err == nil {
		t.Error("dot is not a deformed plot format")
	}
}

func TestConfigFlag(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfg := filepath.Join(dir, "trussfea.toml")
	text := "[cache]\ndir = " + strconvQuote(cacheDir) + "\n"
	if err := os.WriteFile(cfg, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := runCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}

	model := writeDemo(t, dir)
	if _, err := runCLI(t, "--config", cfg, "solve", model); err != nil {
		t.Fatal(err)
	}
	out, err = runCLI(t, "--config", cfg, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("cache clear output: %q", out)
	}

	bad := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(bad, []byte("[cache]\nbackend = \"tape\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "--config", bad, "cache", "path"); err == nil {
		t.Error("invalid config should fail")
	}
}

func TestVerboseRegistersHooks(t *testing.T) {
	dir := t.TempDir()
	if _, err := runCLI(t, "-v", "solve", writeDemo(t, dir), "--no-cache"); err != nil {
		t.Fatal(err)
	}
	if _, ok := observability.Analysis().(*observability.LogHooks); !ok {
		t.Errorf("analysis hooks = %T, want *observability.LogHooks", observability.Analysis())
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := runCLI(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "trussfea") {
		t.Error("bash completion should mention the program")
	}
	if _, err := runCLI(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func strconvQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
