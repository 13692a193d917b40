// Package buildinfo carries version information injected at link time:
//
//	go build -ldflags "-X github.com/matzehuels/trussfea/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/trussfea/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/trussfea/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String returns the build information as reported by the /health endpoint
// and the CLI.
func String() string {
	return fmt.Sprintf("trussfea %s (commit %s, built %s)", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
