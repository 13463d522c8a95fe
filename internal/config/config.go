// Package config provides configuration management for pagexport.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/heimdex/pagexport/internal/session"
)

const (
	// Default values
	DefaultPort              = 8787
	DefaultLogLevel          = "info"
	DefaultDataDir           = ".pagexport"
	DefaultMaxConcurrentRuns = 2
	DefaultWatchInterval     = 5 * time.Second
	DefaultDocumentExtension = ".yaml"
	DefaultOutputDirName     = "outputs"
	DefaultWatchDirName      = "inbox"

	// Environment variable names
	EnvPort              = "PAGEXPORT_PORT"
	EnvLogLevel          = "PAGEXPORT_LOG_LEVEL"
	EnvDataDir           = "PAGEXPORT_DATA_DIR"
	EnvTagMode           = "PAGEXPORT_TAG_MODE"
	EnvTagLevel          = "PAGEXPORT_TAG_LEVEL"
	EnvFrameRate         = "PAGEXPORT_FRAME_RATE"
	EnvScenes            = "PAGEXPORT_SCENES"
	EnvSequenceSuffix    = "PAGEXPORT_SEQUENCE_SUFFIX"
	EnvWatchDir          = "PAGEXPORT_WATCH_DIR"
	EnvMaxConcurrentRuns = "PAGEXPORT_MAX_CONCURRENT_RUNS"
	EnvAuthToken         = "PAGEXPORT_AUTH_TOKEN"

	// Database filename
	DBFilename = "pagexport.db"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	OutputDir() string
	WatchDir() string
	MaxConcurrentRuns() int
	AuthToken() string
	ExportOptions() session.Options
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port              int
	logLevel          string
	dataDir           string
	watchDir          string
	maxConcurrentRuns int
	authToken         string

	options session.Options
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:              DefaultPort,
		logLevel:          DefaultLogLevel,
		dataDir:           defaultDataDir(),
		maxConcurrentRuns: DefaultMaxConcurrentRuns,
		options:           session.DefaultOptions(),
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}
	cfg.watchDir = os.Getenv(EnvWatchDir)
	cfg.authToken = os.Getenv(EnvAuthToken)

	if n := os.Getenv(EnvMaxConcurrentRuns); n != "" {
		runs, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxConcurrentRuns, err)
		}
		if runs < 1 {
			return nil, fmt.Errorf("invalid %s: must be at least 1", EnvMaxConcurrentRuns)
		}
		cfg.maxConcurrentRuns = runs
	}

	if err := cfg.loadExportOptions(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EnvConfig) loadExportOptions() error {
	opts := &c.options
	if m := os.Getenv(EnvTagMode); m != "" {
		mode, err := session.ParseTagMode(m)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTagMode, err)
		}
		opts.TagMode = mode
	}
	if l := os.Getenv(EnvTagLevel); l != "" {
		level, err := strconv.ParseUint(l, 10, 16)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTagLevel, err)
		}
		opts.TagLevel = uint16(level)
	}
	if r := os.Getenv(EnvFrameRate); r != "" {
		rate, err := strconv.ParseFloat(r, 32)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvFrameRate, err)
		}
		opts.FrameRate = float32(rate)
	}
	if sc := os.Getenv(EnvScenes); sc != "" {
		scenes, err := session.ParseScenes(sc)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvScenes, err)
		}
		opts.Scenes = scenes
	}
	if suffix := os.Getenv(EnvSequenceSuffix); suffix != "" {
		opts.SequenceSuffix = suffix
	}
	c.options = opts.Normalize()
	return nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// OutputDir returns the directory manifests and reports are written to
func (c *EnvConfig) OutputDir() string {
	return filepath.Join(c.dataDir, DefaultOutputDirName)
}

// WatchDir returns the drop folder scanned for timeline documents
func (c *EnvConfig) WatchDir() string {
	if c.watchDir != "" {
		return c.watchDir
	}
	return filepath.Join(c.dataDir, DefaultWatchDirName)
}

func (c *EnvConfig) MaxConcurrentRuns() int {
	return c.maxConcurrentRuns
}

// AuthToken returns the bearer token required by the API, empty to disable auth
func (c *EnvConfig) AuthToken() string {
	return c.authToken
}

// ExportOptions returns the normalized options every run starts from
func (c *EnvConfig) ExportOptions() session.Options {
	return c.options
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
