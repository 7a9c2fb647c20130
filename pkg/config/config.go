// Package config loads blueprint settings.
//
// Settings come from four layers, each overriding the previous one:
//
//  1. built-in defaults ([Default])
//  2. a TOML file, $XDG_CONFIG_HOME/blueprint/config.toml by default
//  3. a .env file in the working directory
//  4. process environment variables
//
// Command-line flags are applied on top by the CLI. Unknown TOML keys are
// rejected so typos surface instead of being ignored.
//
// Example config.toml:
//
//	repository_host = "http://localhost:8080"
//	execution_host  = "http://localhost:8081"
//	poll_interval   = "5s"
//
//	[cache]
//	backend    = "redis"
//	redis_addr = "localhost:6379"
//
//	[layout]
//	direction = "LR"
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/layout"
	"github.com/matzehuels/blueprint/pkg/poll"
)

// Defaults.
const (
	DefaultRepositoryHost = "http://localhost:8080"
	DefaultExecutionHost  = "http://localhost:8081"
	DefaultServerAddr     = ":8090"
)

// Config holds every setting of the CLI and the gateway.
type Config struct {
	RepositoryHost string       `toml:"repository_host"`
	ExecutionHost  string       `toml:"execution_host"`
	PollInterval   Duration     `toml:"poll_interval"`
	Cache          CacheConfig  `toml:"cache"`
	Server         ServerConfig `toml:"server"`
	Layout         LayoutConfig `toml:"layout"`
}

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	Prefix        string `toml:"prefix"`
	MemorySize    int    `toml:"memory_size"`
	RedisAddr     string `toml:"redis_addr"`
	RedisDB       int    `toml:"redis_db"`
	RedisPassword string `toml:"redis_password"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// ServerConfig configures the gateway.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// LayoutConfig holds the default layout geometry.
type LayoutConfig struct {
	Direction    string  `toml:"direction"`
	NodeWidth    float64 `toml:"node_width"`
	NodeHeight   float64 `toml:"node_height"`
	NodeSpacing  float64 `toml:"node_spacing"`
	LayerSpacing float64 `toml:"layer_spacing"`
	MaxSweeps    int     `toml:"max_sweeps"`
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		RepositoryHost: DefaultRepositoryHost,
		ExecutionHost:  DefaultExecutionHost,
		PollInterval:   Duration{poll.DefaultInterval},
		Cache: CacheConfig{
			Backend:    cache.BackendFile,
			MemorySize: cache.DefaultMemorySize,
		},
		Server: ServerConfig{Addr: DefaultServerAddr},
		Layout: LayoutConfig{
			Direction:    string(layout.TopDown),
			NodeWidth:    layout.DefaultNodeWidth,
			NodeHeight:   layout.DefaultNodeHeight,
			NodeSpacing:  layout.DefaultNodeSpacing,
			LayerSpacing: layout.DefaultLayerSpacing,
			MaxSweeps:    layout.DefaultMaxSweeps,
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/blueprint/config.toml, falling back
// to the platform config directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "blueprint", "config.toml")
	}
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "blueprint", "config.toml")
	}
	return filepath.Join(".blueprint", "config.toml")
}

// DecodeFile merges the TOML file at path into c. Unknown keys are an error.
func (c *Config) DecodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config %s", path)
	}
	return checkUndecoded(md)
}

// Decode merges TOML text into c. Unknown keys are an error.
func (c *Config) Decode(data string) error {
	md, err := toml.Decode(data, c)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config")
	}
	return checkUndecoded(md)
}

// TOML returns the TOML representation of c.
func (c Config) TOML() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
}

// CacheOptions maps the cache settings onto cache.Options.
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:       c.Cache.Backend,
		Dir:           c.Cache.Dir,
		MemorySize:    c.Cache.MemorySize,
		RedisAddr:     c.Cache.RedisAddr,
		RedisDB:       c.Cache.RedisDB,
		RedisPassword: c.Cache.RedisPassword,
		MongoURI:      c.Cache.MongoURI,
		MongoDatabase: c.Cache.MongoDatabase,
		Prefix:        c.Cache.Prefix,
	}
}

// LayoutOptions maps the layout settings onto layout.Options. The
// direction must already have been validated.
func (c Config) LayoutOptions() layout.Options {
	dir, _ := layout.ParseDirection(c.Layout.Direction)
	return layout.Options{
		Direction:    dir,
		NodeWidth:    c.Layout.NodeWidth,
		NodeHeight:   c.Layout.NodeHeight,
		NodeSpacing:  c.Layout.NodeSpacing,
		LayerSpacing: c.Layout.LayerSpacing,
		MaxSweeps:    c.Layout.MaxSweeps,
	}
}
