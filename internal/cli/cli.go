// Package cli implements the licensetower command-line interface.
package cli

import (
	"context"
	stderrors "errors"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/licensetower/pkg/analysis"
	"github.com/matzehuels/licensetower/pkg/buildinfo"
	"github.com/matzehuels/licensetower/pkg/cache"
	"github.com/matzehuels/licensetower/pkg/config"
	"github.com/matzehuels/licensetower/pkg/integrations"
	"github.com/matzehuels/licensetower/pkg/integrations/crates"
	"github.com/matzehuels/licensetower/pkg/integrations/github"
	"github.com/matzehuels/licensetower/pkg/integrations/goproxy"
	"github.com/matzehuels/licensetower/pkg/integrations/npm"
	"github.com/matzehuels/licensetower/pkg/integrations/nuget"
	"github.com/matzehuels/licensetower/pkg/integrations/pypi"
	"github.com/matzehuels/licensetower/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "licensetower"

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

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
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
		Short: "Licensetower inventories dependency licenses",
		Long: `Licensetower reads project manifests, resolves the license of every
dependency from its registry and reports which licenses can be combined.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./licensetower.{yaml,toml,json})")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.licensesCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Environment
// =============================================================================

// env is the configured stack a command runs against.
type env struct {
	cfg      *config.Config
	cache    *cache.Cache
	analyzer *analysis.Analyzer
	github   *github.Client
}

// envOptions tunes [CLI.openEnv] for a command.
type envOptions struct {
	noCache  bool
	offline  bool // no registry clients
	progress analysis.ProgressFunc
}

// loadConfig reads the config file selected with --config.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if f := cfg.File(); f != "" {
		c.Logger.Debug("loaded config", "file", f)
	}
	return cfg, nil
}

// openEnv loads configuration, opens the snapshot store and wires the cache,
// registry clients and analyzer. Callers must Close the result.
func (c *CLI) openEnv(ctx context.Context, opts envOptions) (*env, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	var store storage.Store = storage.NewNull()
	if opts.noCache {
		cfg.Set(config.KeyCacheEnabled, false)
	} else {
		store, err = storage.Open(ctx, storage.Options{Driver: cfg.StorageDriver(), DSN: cfg.StorageDSN()})
		if err != nil {
			return nil, err
		}
		c.Logger.Debug("opened cache store", "driver", cfg.StorageDriver())
	}

	ch := cache.New(cfg, cache.Options{Debounce: cfg.CacheDebounce(), Logger: c.Logger})
	ch.Init(ctx, store)

	e := &env{cfg: cfg, cache: ch}
	aopts := analysis.Options{
		Cache:       ch,
		Concurrency: cfg.FetchConcurrency(),
		Timeout:     cfg.FetchTimeout(),
		Progress:    opts.progress,
		Logger:      c.Logger,
	}
	if !opts.offline {
		e.github = github.NewClient(githubToken(cfg), integrations.Options{RateLimit: cfg.FetchRateLimit()})
		aopts.Fetchers = fetchers(cfg, e.github)
		aopts.Text = e.github
	}
	e.analyzer = analysis.New(aopts)
	return e, nil
}

// Close flushes the cache and releases the store.
func (e *env) Close() error {
	return e.cache.Close()
}

// fetchers builds one registry client per ecosystem, each with its own
// rate limiter.
func fetchers(cfg *config.Config, gh *github.Client) []integrations.Fetcher {
	opts := func() integrations.Options {
		return integrations.Options{RateLimit: cfg.FetchRateLimit()}
	}
	return []integrations.Fetcher{
		npm.NewClient(opts()),
		crates.NewClient(opts()),
		goproxy.NewClient(gh, opts()),
		pypi.NewClient(opts()),
		nuget.NewClient(opts()),
	}
}

// githubToken prefers the configured token over GITHUB_TOKEN.
func githubToken(cfg *config.Config) string {
	if t := cfg.GitHubToken(); t != "" {
		return t
	}
	return os.Getenv("GITHUB_TOKEN")
}

// closeEnv closes e, folding its error into err.
func closeEnv(e *env, err *error) {
	if cerr := e.Close(); cerr != nil {
		*err = stderrors.Join(*err, cerr)
	}
}
