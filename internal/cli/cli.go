// Package cli implements the netvis command-line interface.
//
// The commands read a game save, run it through the pipeline and either
// write the results to files, print them, or serve them over HTTP. The CLI
// is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - render: write the feed, DOT, SVG or PNG for a save
//   - layout: print the renderer feed as JSON
//   - inspect: summarise a save, its hierarchy and warnings
//   - serve: run the HTTP API
//   - cache: clear or locate the layout cache
//
// Commands without a save argument probe the configured candidate paths.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Warnings
// about the save (dangling links, orphans, unknown tiers) are logged at
// warn level.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/netvis/pkg/cache"
	"github.com/matzehuels/netvis/pkg/config"
	"github.com/matzehuels/netvis/pkg/metrics"
	"github.com/matzehuels/netvis/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "netvis"

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

	// Config is loaded before any command runs. It starts as the defaults.
	Config *config.Config

	// Metrics is the registry the pipeline reports to. It is written to
	// the metrics file, if any, after a successful command.
	Metrics *metrics.Registry

	configPath  string
	metricsFile string
}

// New creates a new CLI instance with a default logger.
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

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, c.Config.Cache, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, c.Config.Keyer(), c.Logger), nil
}

// newCache picks the cache backend: none when disabled, redis when a URL is
// configured, otherwise files under the configured or XDG cache directory.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.RedisURL != "" {
		return cache.NewRedisCache(ctx, cfg.RedisURL)
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/netvis/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
// Blank entries are dropped and duplicates collapsed.
func parseFormats(s string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		if err := pipeline.ValidateFormat(f); err != nil {
			return nil, err
		}
		seen[f] = true
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no output format given")
	}
	return out, nil
}
