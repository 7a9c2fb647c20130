package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/layout"
)

// Environment variables.
const (
	EnvRepositoryHost = "BLUEPRINT_HOST"
	EnvExecutionHost  = "EXECUTION_HOST"
	EnvPollInterval   = "BLUEPRINT_POLL_INTERVAL"
	EnvCache          = "BLUEPRINT_CACHE"
	EnvCacheDir       = "BLUEPRINT_CACHE_DIR"
	EnvRedisAddr      = "BLUEPRINT_REDIS_ADDR"
	EnvMongoURI       = "BLUEPRINT_MONGO_URI"
	EnvServerAddr     = "BLUEPRINT_ADDR"
)

// LoadOptions locates the configuration sources.
type LoadOptions struct {
	// Path is the TOML file. Empty uses DefaultPath; a missing default
	// file is not an error, a missing explicit one is.
	Path string
	// DotEnv is the .env file. Empty uses ".env" in the working directory.
	// A missing .env file is never an error.
	DotEnv string
	// SkipEnv ignores the process environment.
	SkipEnv bool
}

// Load builds a Config from defaults, the TOML file, the .env file and the
// environment, then validates it.
func Load(opts LoadOptions) (Config, error) {
	cfg := Default()

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.DecodeFile(path); err != nil {
		if explicit || !stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	dotenv := opts.DotEnv
	if dotenv == "" {
		dotenv = ".env"
	}
	vars, err := godotenv.Read(dotenv)
	if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", dotenv)
	}

	lookup := func(key string) (string, bool) {
		if !opts.SkipEnv {
			if v := strings.TrimSpace(os.Getenv(key)); v != "" {
				return v, true
			}
		}
		v, ok := vars[key]
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvRepositoryHost: &c.RepositoryHost,
		EnvExecutionHost:  &c.ExecutionHost,
		EnvCache:          &c.Cache.Backend,
		EnvCacheDir:       &c.Cache.Dir,
		EnvRedisAddr:      &c.Cache.RedisAddr,
		EnvMongoURI:       &c.Cache.MongoURI,
		EnvServerAddr:     &c.Server.Addr,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	if v, ok := lookup(EnvPollInterval); ok {
		d, err := parseInterval(v)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "%s", EnvPollInterval)
		}
		c.PollInterval = Duration{d}
	}
	return nil
}

// parseInterval accepts a Go duration ("5s") or a plain number of seconds.
func parseInterval(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate checks host URLs, the cache backend and numeric ranges.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.RepositoryHost); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "repository host")
	}
	if err := errors.ValidateURL(c.ExecutionHost); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "execution host")
	}
	if c.PollInterval.Duration < 100*time.Millisecond {
		return errors.New(errors.ErrCodeInvalidInput, "poll interval %s is below 100ms", c.PollInterval.Duration)
	}

	switch c.Cache.Backend {
	case "", cache.BackendMemory, cache.BackendFile, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidInput, "redis cache requires an address (%s)", EnvRedisAddr)
		}
	case cache.BackendMongo:
		if c.Cache.MongoURI == "" {
			return errors.New(errors.ErrCodeInvalidInput, "mongo cache requires a URI (%s)", EnvMongoURI)
		}
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.MemorySize < 0 || c.Cache.RedisDB < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "cache sizes must not be negative")
	}

	if _, err := layout.ParseDirection(c.Layout.Direction); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"node_width":    c.Layout.NodeWidth,
		"node_height":   c.Layout.NodeHeight,
		"node_spacing":  c.Layout.NodeSpacing,
		"layer_spacing": c.Layout.LayerSpacing,
	} {
		if v < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "layout %s must not be negative", name)
		}
	}
	if c.Layout.MaxSweeps < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "layout max_sweeps must not be negative")
	}
	return nil
}
