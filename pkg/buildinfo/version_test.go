package buildinfo

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "v9.9.9"
	got := String()
	if !strings.HasPrefix(got, "trussfea v9.9.9") {
		t.Errorf("String() = %q", got)
	}
	if !strings.Contains(Template(), "v9.9.9") {
		t.Errorf("Template() missing version: %q", Template())
	}
}
