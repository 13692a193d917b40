package cli

import (
	"path/filepath"
	"testing"

	"github.com/matzehuels/trussfea/pkg/config"
)

func TestCacheDirXDG(t *testing.T) {
	custom := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", custom)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(custom, appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", "")
	t.Setenv("HOME", home)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(home, ".cache", appName); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := &CLI{Config: config.Default()}
	c.Config.Cache.Dir = "/srv/trussfea-cache"
	dir, err := c.cacheDir()
	if err != nil || dir != "/srv/trussfea-cache" {
		t.Errorf("cacheDir() = %q, %v", dir, err)
	}
}
