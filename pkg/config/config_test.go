package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/layout"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg, err := Load(LoadOptions{DotEnv: filepath.Join(dir, "missing.env"), SkipEnv: true})
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 5*time.Second, cfg.PollInterval.Duration)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "config.toml", `
repository_host = "http://file:1"
execution_host  = "http://file:2"
poll_interval   = "2s"

[cache]
backend = "memory"

[layout]
direction = "LR"
node_width = 90
`)
	dotenv := write(t, dir, ".env", "EXECUTION_HOST=http://dotenv:2\nBLUEPRINT_ADDR=:7000\n")
	t.Setenv(EnvServerAddr, ":9000")

	cfg, err := Load(LoadOptions{Path: path, DotEnv: dotenv})
	require.NoError(t, err)

	assert.Equal(t, "http://file:1", cfg.RepositoryHost)
	assert.Equal(t, "http://dotenv:2", cfg.ExecutionHost)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 2*time.Second, cfg.PollInterval.Duration)
	assert.Equal(t, cache.BackendMemory, cfg.Cache.Backend)

	opts := cfg.LayoutOptions()
	assert.Equal(t, layout.LeftRight, opts.Direction)
	assert.Equal(t, 90.0, opts.NodeWidth)
	assert.Equal(t, layout.DefaultNodeHeight, opts.NodeHeight)
}

func TestLoad_PollIntervalEnv(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"10", 10 * time.Second},
		{"750ms", 750 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", dir)
			t.Setenv(EnvPollInterval, tt.value)
			cfg, err := Load(LoadOptions{DotEnv: filepath.Join(dir, "none")})
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.PollInterval.Duration)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		toml string
		env  map[string]string
		want string
	}{
		{"unknown key", `colour = "red"`, nil, "unknown config keys: colour"},
		{"bad toml", `repository_host = `, nil, "decode config"},
		{"bad duration", `poll_interval = "soon"`, nil, "decode config"},
		{"bad host", "", map[string]string{EnvRepositoryHost: "ftp://x"}, "repository host"},
		{"bad interval env", "", map[string]string{EnvPollInterval: "often"}, EnvPollInterval},
		{"short interval", `poll_interval = "1ms"`, nil, "below 100ms"},
		{"unknown backend", "", map[string]string{EnvCache: "etcd"}, "unknown cache backend"},
		{"redis without addr", "", map[string]string{EnvCache: "redis"}, EnvRedisAddr},
		{"mongo without uri", "", map[string]string{EnvCache: "mongo"}, EnvMongoURI},
		{"bad direction", "[layout]\ndirection = \"up\"", nil, "unknown layout direction"},
		{"negative spacing", "[layout]\nnode_spacing = -1", nil, "node_spacing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := write(t, dir, "c.toml", tt.toml)
			_, err := Load(LoadOptions{Path: path, DotEnv: filepath.Join(dir, "none")})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "nope.toml"), SkipEnv: true})
	assert.Error(t, err)
}

func TestCacheOptions(t *testing.T) {
	cfg := Default()
	cfg.Cache = CacheConfig{Backend: "redis", RedisAddr: "r:6379", RedisDB: 2, Prefix: "bp:"}
	opts := cfg.CacheOptions()
	assert.Equal(t, cache.Options{Backend: "redis", RedisAddr: "r:6379", RedisDB: 2, Prefix: "bp:"}, opts)
}

func TestTOMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.PollInterval = Duration{3 * time.Second}
	text, err := cfg.TOML()
	require.NoError(t, err)
	assert.True(t, strings.Contains(text, `poll_interval = "3s"`), text)

	var back Config
	require.NoError(t, back.Decode(text))
	assert.Equal(t, cfg, back)
}
