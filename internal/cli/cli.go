// Package cli implements the blueprint command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blueprint/pkg/buildinfo"
	"github.com/matzehuels/blueprint/pkg/cache"
	"github.com/matzehuels/blueprint/pkg/config"
	"github.com/matzehuels/blueprint/pkg/integrations/blueprint"
	"github.com/matzehuels/blueprint/pkg/integrations/execution"
	"github.com/matzehuels/blueprint/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "blueprint"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	dotEnv     string
	repoHost   string
	execHost   string
	cacheName  string
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
		Short: "Blueprint shows notebook pipelines as dependency graphs",
		Long: `Blueprint derives the dependency graph of a repository's notebooks from the
resources they read and write, lays it out, and runs selected parts of it
on the execution service.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return c.loadConfig() },
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&c.dotEnv, "env-file", "", "dotenv file (default .env)")
	flags.StringVar(&c.repoHost, "host", "", "repository service URL (overrides "+config.EnvRepositoryHost+")")
	flags.StringVar(&c.execHost, "execution-host", "", "execution service URL (overrides "+config.EnvExecutionHost+")")
	flags.StringVar(&c.cacheName, "cache", "", "cache backend: file, memory, redis, mongo, none")

	// Register all subcommands
	root.AddCommand(c.reposCommand())
	root.AddCommand(c.commitsCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.executionCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig resolves the configuration. Flags override every other source.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(config.LoadOptions{Path: c.configPath, DotEnv: c.dotEnv})
	if err != nil {
		return err
	}
	if c.repoHost != "" {
		cfg.RepositoryHost = c.repoHost
	}
	if c.execHost != "" {
		cfg.ExecutionHost = c.execHost
	}
	if c.cacheName != "" {
		cfg.Cache.Backend = c.cacheName
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config",
		"repository_host", cfg.RepositoryHost,
		"execution_host", cfg.ExecutionHost,
		"cache", cfg.Cache.Backend)
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// openCache opens the configured cache backend, or a null cache when
// noCache is set.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	backend, err := cache.Open(ctx, c.Config.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Config.Cache.Backend, err)
	}
	return backend, nil
}

// repositoryClient creates a repository service client sharing backend.
func (c *CLI) repositoryClient(backend cache.Cache) *blueprint.Client {
	client := blueprint.NewClient(c.Config.RepositoryHost, backend)
	client.SetLogger(c.Logger)
	return client
}

// executionClient creates an execution service client.
func (c *CLI) executionClient() *execution.Client {
	client := execution.NewClient(c.Config.ExecutionHost)
	client.SetLogger(c.Logger)
	return client
}

// newRunner creates a pipeline runner for CLI use. The caller closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.repositoryClient(backend), c.executionClient(), backend, nil, c.Logger), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseList splits a comma-separated flag value, dropping empty entries.
func parseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
