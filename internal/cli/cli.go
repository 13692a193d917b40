// Package cli implements the trussfea command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trussfea/pkg/buildinfo"
	"github.com/matzehuels/trussfea/pkg/cache"
	"github.com/matzehuels/trussfea/pkg/config"
	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	"github.com/matzehuels/trussfea/pkg/observability"
	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/store"
	"github.com/matzehuels/trussfea/pkg/surrogate"
)

// appName is the application name used for directories and display.
const appName = "trussfea"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "trussfea analyses 2D pin-jointed trusses",
		Long: `trussfea performs linear static analysis of planar pin-jointed trusses:
it assembles the global stiffness matrix, applies supports, solves for nodal
displacements and reports member forces and stresses.

It also samples the demo truss into datasets, fits a surrogate model of the
peak stress, renders diagrams and serves everything over HTTP.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "path to a TOML config file")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.predictCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.trainCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies --verbose and --config before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		observability.NewLogHooks(c.Logger).Register()
	}
	if c.configPath != "" {
		cfg, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.Config = cfg
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// runnerOpts selects which backends a command needs.
type runnerOpts struct {
	noCache   bool
	withStore bool
	modelPath string // overrides config model.path when set
}

// newRunner creates a pipeline runner wired to the configured backends.
// A surrogate that fails to load is reported and left out, so the runner
// answers with FEA only.
func (c *CLI) newRunner(ctx context.Context, o runnerOpts) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, o.noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.KeyPrefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	r := pipeline.NewRunner(ch, keyer, c.Logger)
	r.TTL = c.Config.Cache.TTL

	if o.withStore {
		st, err := c.newStore(ctx)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
		r.Store = st
	}

	path := o.modelPath
	if path == "" {
		path = c.Config.Model.Path
	}
	if path != "" {
		m, err := surrogate.Load(path)
		if err != nil {
			c.Logger.Warn("surrogate unavailable, using FEA only", "path", path, "err", apperrors.UserMessage(err))
		} else {
			r.Surrogate = m
			r.ModelPath = path
			c.Logger.Debug("loaded surrogate", "path", path, "r2", m.Metrics.R2)
		}
	}
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisAddr)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", c.Config.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	default:
		dir, err := c.cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		return cache.NewFileCache(dir)
	}
}

func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case config.BackendFile:
		return store.NewFileStore(cfg.Dir)
	case config.BackendMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return store.NullStore{}, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default
// (~/.cache/trussfea/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
