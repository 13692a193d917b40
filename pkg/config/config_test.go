package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/matzehuels/trussfea/pkg/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if len(cfg.Server.CORSOrigins) != 3 {
		t.Errorf("CORSOrigins = %v", cfg.Server.CORSOrigins)
	}
	if cfg.Cache.Backend != BackendFile || cfg.Store.Backend != BackendNone {
		t.Errorf("backends = %q/%q", cfg.Cache.Backend, cfg.Store.Backend)
	}

	// Mutating one copy must not leak into the package defaults.
	cfg.Server.CORSOrigins[0] = "x"
	if Default().Server.CORSOrigins[0] == "x" {
		t.Error("Default shares the origins slice")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
[server]
addr = "127.0.0.1:9000"
request_timeout = "5s"
max_nodes = 50

[cache]
backend = "redis"
redis_addr = "cache:6379"
ttl = "1h"

[store]
backend = "file"
dir = "out"

[model]
path = "model.json"

[dataset]
samples = 20
seed = 7
`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.MaxNodes != 50 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.Server.RequestTimeout)
	}
	if cfg.Cache.TTL != time.Hour || cfg.Cache.RedisAddr != "cache:6379" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Model.Path != "model.json" {
		t.Errorf("model path = %q", cfg.Model.Path)
	}
	// Unset keys keep their defaults.
	if len(cfg.Server.CORSOrigins) != 3 || cfg.Dataset.LoadMax != 2000 {
		t.Errorf("defaults lost: %+v %+v", cfg.Server, cfg.Dataset)
	}

	s := cfg.Dataset.Sampler()
	if s.Samples != 20 || s.Seed != 7 || s.LoadMin != 200 {
		t.Errorf("sampler = %+v", s)
	}
	if err := s.Validate(); err != nil {
		t.Errorf("sampler should validate: %v", err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		code apperrors.Code
	}{
		{"syntax", "[server", apperrors.ErrCodeInvalidFormat},
		{"unknown key", "[server]\nport = 1", apperrors.ErrCodeInvalidFormat},
		{"unknown section", "[metrics]\nenabled = true", apperrors.ErrCodeInvalidFormat},
		{"bad cache backend", "[cache]\nbackend = \"memcached\"", apperrors.ErrCodeInvalidInput},
		{"bad store backend", "[store]\nbackend = \"s3\"", apperrors.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", apperrors.ErrCodeInvalidInput},
		{"redis without addr", "[cache]\nbackend = \"redis\"\nredis_addr = \"\"", apperrors.ErrCodeInvalidInput},
		{"empty cors origins", "[server]\ncors_origins = []", apperrors.ErrCodeInvalidInput},
		{"wildcard cors origin", "[server]\ncors_origins = [\"*\"]", apperrors.ErrCodeInvalidInput},
		{"zero max nodes", "[server]\nmax_nodes = 0", apperrors.ErrCodeInvalidInput},
		{"empty load range", "[dataset]\nload_min = 5.0\nload_max = 5.0", apperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperrors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		if err != nil || cfg.Server.Addr != ":8000" {
			t.Fatalf("Load(\"\") = %+v, %v", cfg, err)
		}
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "trussfea.toml")
		if err := os.WriteFile(path, []byte("[model]\npath = \"m.json\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Model.Path != "m.json" {
			t.Errorf("model path = %q", cfg.Model.Path)
		}
	})

	t.Run("example", func(t *testing.T) {
		cfg, err := Load(filepath.Join("..", "..", "examples", "trussfea.toml"))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if cfg.Store.Backend != BackendFile || cfg.Model.Path != "outputs/model.json" {
			t.Errorf("store = %q, model = %q", cfg.Store.Backend, cfg.Model.Path)
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
		if !apperrors.Is(err, apperrors.ErrCodeNotFound) {
			t.Errorf("err = %v, want NOT_FOUND", err)
		}
	})
}
