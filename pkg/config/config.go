// Package config loads trussfea settings from a TOML file.
//
// Settings come from three layers, each overriding the previous one:
// built-in defaults ([Default]), an optional TOML file ([Load]) and command
// line flags applied by the CLI. A minimal file:
//
//	[server]
//	addr = ":8000"
//	cors_origins = ["http://localhost:5173"]
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//
//	[model]
//	path = "models/surrogate.json"
//
// Unknown keys are rejected so that typos do not silently fall back to
// defaults.
package config

import (
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/trussfea/pkg/dataset"
	apperrors "github.com/matzehuels/trussfea/pkg/errors"
	"github.com/matzehuels/trussfea/pkg/pipeline"
	"github.com/matzehuels/trussfea/pkg/store"
)

// Backend names.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Config is the complete application configuration.
type Config struct {
	Server  Server  `toml:"server"`
	Cache   Cache   `toml:"cache"`
	Store   Store   `toml:"store"`
	Model   Model   `toml:"model"`
	Dataset Dataset `toml:"dataset"`
}

// Server configures the HTTP service.
type Server struct {
	Addr           string        `toml:"addr"`
	CORSOrigins    []string      `toml:"cors_origins"`
	MaxNodes       int           `toml:"max_nodes"`
	RequestTimeout time.Duration `toml:"request_timeout"`
}

// Cache selects the analysis cache backend. A zero TTL keeps the
// per-kind defaults of the cache package.
type Cache struct {
	Backend   string        `toml:"backend"`
	Dir       string        `toml:"dir"`
	RedisAddr string        `toml:"redis_addr"`
	TTL       time.Duration `toml:"ttl"`
	KeyPrefix string        `toml:"key_prefix"`
}

// Store selects where analysis records are persisted.
type Store struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// Model points at a trained surrogate. An empty path means none.
type Model struct {
	Path string `toml:"path"`
}

// Dataset holds sampler parameters for the sample command.
type Dataset struct {
	Samples    int     `toml:"samples"`
	Seed       uint64  `toml:"seed"`
	LoadMin    float64 `toml:"load_min"`
	LoadMax    float64 `toml:"load_max"`
	AreaExpMin float64 `toml:"area_exp_min"`
	AreaExpMax float64 `toml:"area_exp_max"`
	Output     string  `toml:"output"`
}

// DefaultOrigins are the development front-end origins allowed by CORS.
var DefaultOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
	"http://127.0.0.1:5173",
}

// Default returns the built-in configuration. Cache.Dir is left empty and
// resolved by the caller to the user cache directory.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:           ":8000",
			CORSOrigins:    append([]string(nil), DefaultOrigins...),
			MaxNodes:       pipeline.DefaultMaxNodes,
			RequestTimeout: 30 * time.Second,
		},
		Cache: Cache{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
		},
		Store: Store{
			Backend:       BackendNone,
			Dir:           "results",
			MongoDatabase: store.DefaultDatabase,
		},
		Dataset: Dataset{
			Samples:    500,
			Seed:       42,
			LoadMin:    200,
			LoadMax:    2000,
			AreaExpMin: -6,
			AreaExpMax: -3,
			Output:     "dataset.csv",
		},
	}
}

// Load reads path on top of the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "read config %s", path)
	}
	if err := cfg.decode(string(data)); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text on top of the defaults.
func Parse(text string) (*Config, error) {
	cfg := Default()
	if err := cfg.decode(text); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(text string) error {
	md, err := toml.Decode(text, c)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return apperrors.New(apperrors.ErrCodeInvalidFormat, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks backend names and numeric settings.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisAddr == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown cache backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}

	switch c.Store.Backend {
	case BackendNone:
	case BackendFile:
		if err := apperrors.ValidatePath(c.Store.Dir); err != nil {
			return err
		}
	case BackendMongo:
		if c.Store.MongoURI == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "store.mongo_uri is required for the mongo backend")
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidInput, "unknown store backend %q (want none, file or mongo)", c.Store.Backend)
	}

	if len(c.Server.CORSOrigins) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "server.cors_origins must list at least one origin")
	}
	for _, o := range c.Server.CORSOrigins {
		if o == "*" || o == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "server.cors_origins must name explicit origins, got %q", o)
		}
	}
	if c.Server.MaxNodes < 1 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "server.max_nodes must be at least 1")
	}
	if c.Server.RequestTimeout <= 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "server.request_timeout must be positive")
	}
	if err := apperrors.ValidateRange("dataset.load", c.Dataset.LoadMin, c.Dataset.LoadMax); err != nil {
		return err
	}
	return apperrors.ValidateRange("dataset.area_exp", c.Dataset.AreaExpMin, c.Dataset.AreaExpMax)
}

// Sampler builds a dataset sampler from the [dataset] section.
func (d Dataset) Sampler() *dataset.Sampler {
	s := dataset.NewSampler()
	s.Samples = d.Samples
	s.Seed = d.Seed
	s.LoadMin, s.LoadMax = d.LoadMin, d.LoadMax
	s.AreaExpMin, s.AreaExpMax = d.AreaExpMin, d.AreaExpMax
	return s
}
