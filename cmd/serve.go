package cmd

import (
	"context"
	"fmt"

	"sfmcp/internal/app"

	"github.com/spf13/cobra"
)

type serveOptions struct {
	configPath  string
	debug       bool
	transport   string
	host        string
	port        int
	metricsAddr string
	logFile     string
	logFormat   string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Starts the sfmcp MCP server.

Transports:
  stdio (default)  MCP over stdin/stdout, for assistants that launch sfmcp
                   as a subprocess. Logs go to stderr or --log-file.
  sse              MCP over HTTP Server-Sent Events at http://HOST:PORT/sse,
                   with /healthz and /readyz probes.

Credentials are validated at startup; the Salesforce session itself is
established on the first tool call.

Configuration:
  sfmcp layers ~/.config/sfmcp/config.yaml, ./.sfmcp/config.yaml, ./.env and
  SALESFORCE_* environment variables. Use --config to read a single file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Read configuration from this file only")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.transport, "transport", "", "MCP transport: stdio or sse (default from config, else stdio)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Listen host for the sse transport")
	cmd.Flags().IntVar(&opts.port, "port", 0, "Listen port for the sse transport")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9090)")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file with rotation instead of stderr")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	return cmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	cfg := app.NewConfig(opts.configPath, opts.debug)
	cfg.Transport = opts.transport
	cfg.Host = opts.host
	cfg.Port = opts.port
	cfg.MetricsAddr = opts.metricsAddr
	cfg.LogFile = opts.logFile
	cfg.LogFormat = opts.logFormat
	cfg.Version = rootCmd.Version

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}
