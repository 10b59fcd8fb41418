// Package config loads netvis settings.
//
// Settings come from three layers, later ones winning:
//
//  1. built-in defaults ([Default])
//  2. a config file, netvis.toml or netvis.yaml, chosen by extension
//  3. NETVIS_* environment variables, optionally seeded from a .env file
//
// A minimal netvis.toml:
//
//	[layout]
//	child_radius = 260
//
//	[palette.tiers]
//	isp = "#ff00ff"
//
//	[discovery]
//	candidates = ["saves/current.json"]
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/netvis/pkg/cache"
	apperrors "github.com/matzehuels/netvis/pkg/errors"
	"github.com/matzehuels/netvis/pkg/graph"
	"github.com/matzehuels/netvis/pkg/layout"
	"github.com/matzehuels/netvis/pkg/pipeline"
)

// Environment variables read by [Load].
const (
	EnvCacheDir       = "NETVIS_CACHE_DIR"
	EnvNoCache        = "NETVIS_NO_CACHE"
	EnvRedisURL       = "NETVIS_REDIS_URL"
	EnvCacheNamespace = "NETVIS_CACHE_NAMESPACE"
	EnvMetricsFile    = "NETVIS_METRICS_FILE"
	EnvAddr           = "NETVIS_ADDR"
	EnvLogLevel       = "NETVIS_LOG_LEVEL"
)

// DefaultAddr is the HTTP listen address of netvis serve.
const DefaultAddr = ":8080"

// DefaultFileNames are probed in the working directory when no config path
// is given. The first existing file is used.
var DefaultFileNames = []string{"netvis.toml", "netvis.yaml", "netvis.yml"}

// DefaultCandidates are the save paths probed, in order, when none is given.
var DefaultCandidates = []string{
	"save.json",
	"export_network.json",
	"../save.save",
	"./save.save",
	"save.save",
	"../hackterm/save.save",
}

// Config holds every netvis setting.
type Config struct {
	Layout    layout.Options  `toml:"layout" yaml:"layout"`
	Palette   graph.Palette   `toml:"palette" yaml:"palette"` // overrides merged over the default palette
	Render    RenderConfig    `toml:"render" yaml:"render"`
	Discovery DiscoveryConfig `toml:"discovery" yaml:"discovery"`
	Cache     CacheConfig     `toml:"cache" yaml:"cache"`
	Server    ServerConfig    `toml:"server" yaml:"server"`
	Metrics   MetricsConfig   `toml:"metrics" yaml:"metrics"`
	Log       LogConfig       `toml:"log" yaml:"log"`

	// Path is the config file that was read, empty if none.
	Path string `toml:"-" yaml:"-"`
}

// RenderConfig holds output settings.
type RenderConfig struct {
	Formats    []string `toml:"formats" yaml:"formats"`
	Background string   `toml:"background" yaml:"background"`
	HideLabels bool     `toml:"hide_labels" yaml:"hide_labels"`
}

// DiscoveryConfig lists where to look for a save.
type DiscoveryConfig struct {
	Candidates []string `toml:"candidates" yaml:"candidates"`
}

// CacheConfig selects the cache backend. RedisURL wins over Dir.
type CacheConfig struct {
	Disabled  bool   `toml:"disabled" yaml:"disabled"`
	Dir       string `toml:"dir" yaml:"dir"`             // empty: XDG cache dir
	RedisURL  string `toml:"redis_url" yaml:"redis_url"` // redis://host:port/db
	Namespace string `toml:"namespace" yaml:"namespace"` // key prefix for shared backends
}

// ServerConfig configures netvis serve.
type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr"`
}

// MetricsConfig configures metric export.
type MetricsConfig struct {
	File string `toml:"file" yaml:"file"` // textfile collector output, empty disables
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Layout: layout.DefaultOptions(),
		Render: RenderConfig{
			Formats: append([]string(nil), pipeline.DefaultFormats...),
		},
		Discovery: DiscoveryConfig{
			Candidates: append([]string(nil), DefaultCandidates...),
		},
		Server: ServerConfig{Addr: DefaultAddr},
		Log:    LogConfig{Level: "info"},
	}
}

// Load builds the configuration. An empty path probes [DefaultFileNames];
// an explicit path must exist. A .env file in the working directory, if
// present, seeds the environment without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg := Default()
	if path == "" {
		path = findDefaultFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "config file not found: %s", path)
	}
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files (".env" if none).
// Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "read %s", p)
		}
	}
	return nil
}

func findDefaultFile() string {
	for _, name := range DefaultFileNames {
		if fi, err := os.Stat(name); err == nil && !fi.IsDir() {
			return name
		}
	}
	return ""
}

// LoadFile decodes the file at path over c. The format follows the
// extension: .toml, .yaml or .yml. Unknown keys are rejected.
func (c *Config) LoadFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeFileNotFound, err, "open %s", path)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil && err != io.EOF {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	default:
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "unsupported config format: %s (use .toml, .yaml or .yml)", path)
	}
	c.Path = path
	return nil
}

// ApplyEnv overrides settings from NETVIS_* variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvCacheDir); v != "" {
		c.Cache.Dir = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Cache.RedisURL = v
	}
	if v := getenv(EnvCacheNamespace); v != "" {
		c.Cache.Namespace = v
	}
	if v := getenv(EnvNoCache); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "%s must be a boolean, got %q", EnvNoCache, v)
		}
		c.Cache.Disabled = b
	}
	if v := getenv(EnvMetricsFile); v != "" {
		c.Metrics.File = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	return nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if err := pipeline.ValidateFormats(c.Render.Formats); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "render.formats")
	}
	if len(c.Discovery.Candidates) == 0 {
		return apperrors.New(apperrors.ErrCodeInvalidConfig, "discovery.candidates must not be empty")
	}
	for tier, color := range c.Palette.Tiers {
		if color == "" {
			return apperrors.New(apperrors.ErrCodeInvalidConfig, "palette.tiers.%s has no colour", tier)
		}
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level. An empty level is info.
func (c *Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInvalidConfig, err, "log.level %q", c.Log.Level)
	}
	return lvl, nil
}

// PipelineOptions returns the pipeline settings held by c.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:     c.Layout,
		Palette:    c.Palette,
		Formats:    append([]string(nil), c.Render.Formats...),
		Background: c.Render.Background,
		HideLabels: c.Render.HideLabels,
	}
}

// Keyer returns the cache key scheme, scoped by Cache.Namespace when set.
func (c *Config) Keyer() cache.Keyer {
	if c.Cache.Namespace == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Cache.Namespace+":")
}

// String describes where the configuration came from.
func (c *Config) String() string {
	if c.Path == "" {
		return "defaults"
	}
	return fmt.Sprintf("file %s", c.Path)
}
