// Package cli implements the relblock command-line interface.
//
// Commands fall into three groups: diagram editing (new, insert, reorder,
// edit, gate, remove, undo), rendering (layout, render), and operations
// (serve, tui, cache, completion). Editing commands append events to the
// configured store backend; rendering commands run the pipeline with the
// configured cache.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/relblock/relblock/pkg/buildinfo"
	"github.com/relblock/relblock/pkg/cache"
	"github.com/relblock/relblock/pkg/pipeline"
	"github.com/relblock/relblock/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "relblock"

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
	config     *Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:          "relblock",
		Short:        "Relblock edits and renders reliability block diagrams",
		Long:         `Relblock is a CLI tool for building reliability block diagrams as series/parallel/k-out-of-n structures, laying them out deterministically, and rendering them as SVG, DOT, or layout JSON.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				c.SetLogLevel(log.DebugLevel)
			}
			c.registerHooks()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/relblock/config.toml)")

	root.AddCommand(c.listCommand())
	root.AddCommand(c.newCommand())
	root.AddCommand(c.insertCommand())
	root.AddCommand(c.reorderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.gateCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.undoCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Backend Factories
// =============================================================================

// loadConfig loads the config file once and caches it on the CLI.
func (c *CLI) loadConfig() (*Config, error) {
	if c.config != nil {
		return c.config, nil
	}
	cfg, err := LoadConfig(c.configPath)
	if err != nil {
		return nil, err
	}
	c.config = cfg
	return cfg, nil
}

// newLog opens the configured event log backend.
func (c *CLI) newLog(ctx context.Context) (store.Log, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	switch cfg.Store.Backend {
	case storeMemory:
		return store.NewMemoryLog(), nil
	case storeJSONL:
		dir := cfg.Store.Dir
		if dir == "" {
			dir, err = dataDir()
			if err != nil {
				return nil, fmt.Errorf("resolve data dir: %w", err)
			}
		}
		return store.NewJSONLLog(dir)
	case storeMongo:
		return store.NewMongoLog(ctx, cfg.Store.Mongo.URI, cfg.Store.Mongo.Database)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

// newRunner creates a pipeline runner backed by the configured cache and
// the given source.
func (c *CLI) newRunner(ctx context.Context, src pipeline.Source, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, src, c.Logger), nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if noCache || cfg.Cache.Backend == cacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == cacheRedis {
		return cache.NewRedisCache(ctx, cfg.Cache.Redis.Addr)
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// mustConfig returns the loaded config; only valid after loadConfig.
func (c *CLI) mustConfig() *Config {
	if c.config == nil {
		return DefaultConfig()
	}
	return c.config
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/relblock/).
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

// dataDir returns the event log directory using XDG standard
// (~/.local/share/relblock/).
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// defaultConfigPath returns the default config file location
// (~/.config/relblock/config.toml).
func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
