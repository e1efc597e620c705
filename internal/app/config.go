package app

import (
	"io"

	"sfmcp/internal/config"
)

// Config holds the application configuration
type Config struct {
	// ConfigPath selects a single config file instead of the layered lookup.
	ConfigPath string

	// Debug settings
	Debug bool

	// Overrides from the command line. Zero values keep the loaded settings.
	Transport   string
	Host        string
	Port        int
	MetricsAddr string
	LogFile     string
	LogFormat   string

	// Version is reported to MCP clients.
	Version string

	// Streams for the stdio transport. Nil means os.Stdin and os.Stdout.
	Stdin  io.Reader
	Stdout io.Writer

	// Loaded configuration
	Settings *config.Config
}

// NewConfig creates a new application configuration
func NewConfig(configPath string, debug bool) *Config {
	return &Config{
		ConfigPath: configPath,
		Debug:      debug,
	}
}

// applyOverrides copies non-zero command line overrides onto settings.
func (c *Config) applyOverrides(settings *config.Config) {
	if c.Transport != "" {
		settings.Server.Transport = c.Transport
	}
	if c.Host != "" {
		settings.Server.Host = c.Host
	}
	if c.Port != 0 {
		settings.Server.Port = c.Port
	}
	if c.MetricsAddr != "" {
		enabled := true
		settings.Metrics.Enabled = &enabled
		settings.Metrics.Addr = c.MetricsAddr
	}
	if c.LogFile != "" {
		settings.Logging.File = c.LogFile
	}
	if c.LogFormat != "" {
		settings.Logging.Format = c.LogFormat
	}
	if c.Debug {
		settings.Logging.Level = "debug"
	}
}
