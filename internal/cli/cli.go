// Package cli implements the tankview command-line interface.
//
// This package provides commands for rendering tank line layouts, browsing
// and selecting customers, plants and revisions from the backend, drawing
// plant topologies and running the HTTP server. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - render: Draw a tank line to PNG, SVG, JSON and other formats
//   - layout: Print the computed placements and edit buttons
//   - select: Pick the working customer, plant and revision
//   - list: List customers, plants, lines and tanks
//   - header: Render a page header as HTML
//   - topology: Draw a customer's plants as a Graphviz diagram
//   - serve: Run the HTTP server
//   - cache, config: Manage local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/stlplant/tankview/pkg/api"
	"github.com/stlplant/tankview/pkg/buildinfo"
	"github.com/stlplant/tankview/pkg/cache"
	"github.com/stlplant/tankview/pkg/config"
	"github.com/stlplant/tankview/pkg/errors"
	"github.com/stlplant/tankview/pkg/observability"
	"github.com/stlplant/tankview/pkg/selection"
	"github.com/stlplant/tankview/pkg/theme"
)

// appName is the application name used for directories and display.
const appName = "tankview"

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
	verbose    bool
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Tankview draws and manages surface treatment tank lines",
		Long:         `Tankview renders the tank layout of surface treatment production lines, keeps track of the selected customer, plant and revision, and serves both over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Install()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ~/.config/tankview/config.toml)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.selectCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.headerCommand())
	root.AddCommand(c.topologyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Dependency Factories
// =============================================================================

// config loads the settings once per process.
func (c *CLI) config() (config.Config, error) {
	if c.cfg != nil {
		return *c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.cfg = &cfg
	return cfg, nil
}

func (c *CLI) themes(cfg config.Config) (*theme.Registry, error) {
	return theme.Load(cfg.ThemesFile)
}

func newRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

// newCache opens the configured response cache. A disabled or unreachable
// cache degrades to the null cache.
func (c *CLI) newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		backend = cache.NewRedisCache(newRedisClient(cfg), appName+":cache:")
	case config.BackendMongo:
		backend, err = cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        cfg.Cache.MongoURI,
			Database:   cfg.Cache.MongoDatabase,
			Collection: cfg.Cache.MongoCollection,
		})
	default:
		backend, err = cache.NewFileCache(cfg.Cache.Dir)
	}
	if err != nil {
		c.Logger.Warn("cache disabled", "backend", cfg.Cache.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.Instrument(backend), nil
}

// newClient creates an API client with logging alerts and the response
// cache.
func (c *CLI) newClient(ctx context.Context, cfg config.Config, noCache bool) (*api.Client, error) {
	if cfg.API.URL == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "no API URL configured (set api.url or %s)", config.EnvAPIURL)
	}
	backend, err := c.newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return api.New(cfg.API.URL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout.Duration}),
		api.WithLogger(c.Logger),
		api.WithAlerter(api.LogAlerter{Logger: c.Logger}),
		api.WithRetry(max(cfg.API.RetryAttempts, 1), cfg.API.RetryDelay.Duration),
		api.WithCache(backend, cfg.API.CacheTTL.Duration),
	)
}

// newSelectionStore opens the configured selection store.
func newSelectionStore(cfg config.Config) (selection.Store, error) {
	switch cfg.Selection.Store {
	case config.BackendMemory:
		return selection.NewMemoryStore(), nil
	case config.BackendRedis:
		return selection.NewRedisStore(newRedisClient(cfg), appName+":selection:", cfg.Selection.TTL.Duration), nil
	default:
		return selection.NewFileStore(cfg.Selection.Dir)
	}
}

// newSelection returns the selection service. With a client, selected
// revisions are checked against the backend.
func (c *CLI) newSelection(cfg config.Config, client *api.Client) (*selection.Service, selection.Store, error) {
	store, err := newSelectionStore(cfg)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "open selection store")
	}
	opts := []selection.ServiceOption{
		selection.WithKey(cfg.Selection.Key),
		selection.WithLogger(c.Logger),
	}
	if client != nil {
		opts = append(opts, selection.WithRevisionLister(client.Plants.Revisions))
	}
	return selection.NewService(store, opts...), store, nil
}

// timeout bounds commands that talk to the backend.
const timeout = 2 * time.Minute
