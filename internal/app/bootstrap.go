package app

import (
	"context"
	"fmt"
	"os"

	"sfmcp/internal/adapter"
	"sfmcp/internal/config"
	"sfmcp/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
)

// Application is the main application structure that bootstraps and runs sfmcp
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads and validates configuration and wires the services.
// Missing credentials fail here with a configuration error; no network
// traffic happens until the first tool call.
func NewApplication(cfg *Config) (*Application, error) {
	appLogLevel := logging.LevelInfo
	if cfg.Debug {
		appLogLevel = logging.LevelDebug
	}

	// stdout belongs to the stdio transport
	logging.InitForCLI(appLogLevel, os.Stderr)

	var settings config.Config
	var err error

	if cfg.ConfigPath != "" {
		settings, err = config.LoadConfigFromPath(cfg.ConfigPath)
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration from path: %s", cfg.ConfigPath)
			return nil, adapter.NewConfigurationError(err)
		}
		logging.Debug("Bootstrap", "Loaded configuration from custom path: %s", cfg.ConfigPath)
	} else {
		settings, err = config.LoadConfig()
		if err != nil {
			logging.Error("Bootstrap", err, "Failed to load configuration")
			return nil, adapter.NewConfigurationError(err)
		}
		logging.Debug("Bootstrap", "Loaded configuration using layered approach")
	}

	cfg.applyOverrides(&settings)

	if err := settings.Validate(); err != nil {
		logging.Error("Bootstrap", err, "Invalid configuration")
		return nil, adapter.NewConfigurationError(err)
	}

	if err := initLogging(settings.Logging); err != nil {
		return nil, adapter.NewConfigurationError(err)
	}

	cfg.Settings = &settings

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}

func initLogging(lc config.LoggingConfig) error {
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return err
	}
	format := logging.FormatText
	switch lc.Format {
	case "", "text":
	case "json":
		format = logging.FormatJSON
	default:
		return fmt.Errorf("unsupported log format %q (supported: text, json)", lc.Format)
	}

	logging.Init(logging.Options{
		Level:  level,
		Format: format,
		Output: os.Stderr,
		File:   lc.File,
	})
	return nil
}

// Services returns the wired services.
func (a *Application) Services() *Services {
	return a.services
}

// CallTool runs one tool in-process without starting a transport.
func (a *Application) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	return a.services.Server.CallTool(ctx, name, args)
}

// Close releases the Salesforce client and flushes the log file.
func (a *Application) Close() error {
	err := a.services.Close()
	if cerr := logging.Close(); err == nil {
		err = cerr
	}
	return err
}
