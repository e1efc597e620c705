package cmd

import (
	"context"
	"fmt"

	"sfmcp/internal/app"
	"sfmcp/internal/cli"

	"github.com/spf13/cobra"
)

// toolOptions are shared by the commands that run a single tool.
type toolOptions struct {
	output     string
	quiet      bool
	configPath string
	debug      bool
	endpoint   string
}

func (o *toolOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "table", "Output format (table, json, yaml)")
	cmd.Flags().BoolVarP(&o.quiet, "quiet", "q", false, "Suppress non-essential output")
	cmd.Flags().StringVar(&o.configPath, "config", "", "Read configuration from this file only")
	cmd.Flags().BoolVar(&o.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&o.endpoint, "endpoint", "",
		"Call a running 'sfmcp serve --transport sse' at this SSE URL instead of Salesforce directly")
}

func newToolCmds() []*cobra.Command {
	objects := &toolOptions{}
	objectsCmd := &cobra.Command{
		Use:   "objects",
		Short: "List all Salesforce objects",
		Long: `List all object types visible to the configured user, with their
custom, queryable, searchable, createable, updateable and deletable flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, objects, "list_objects", nil)
		},
	}
	objects.addFlags(objectsCmd)

	describe := &toolOptions{}
	describeCmd := &cobra.Command{
		Use:   "describe <object-name>",
		Short: "Describe the fields of a Salesforce object",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, describe, "describe_object", map[string]any{"object_name": args[0]})
		},
	}
	describe.addFlags(describeCmd)

	query := &toolOptions{}
	queryCmd := &cobra.Command{
		Use:   "query <soql>",
		Short: "Run a SOQL query",
		Long: `Run a SOQL query and print its rows.

SELECT * is not supported; list the columns explicitly. Aggregate queries
(COUNT, SUM, AVG, ...) cannot use LIMIT.`,
		Example: `  sfmcp query "SELECT Id, Name FROM Account LIMIT 10"
  sfmcp query "SELECT COUNT() FROM Contact" -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, query, "execute_soql_query", map[string]any{"query": args[0]})
		},
	}
	query.addFlags(queryCmd)

	return []*cobra.Command{objectsCmd, describeCmd, queryCmd}
}

func runTool(cmd *cobra.Command, opts *toolOptions, tool string, args map[string]any) error {
	format, err := cli.ParseOutputFormat(opts.output)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var caller cli.ToolCaller
	if opts.endpoint != "" {
		client := cli.NewCLIClient(opts.endpoint)
		if err := client.Connect(ctx); err != nil {
			return err
		}
		defer client.Close()
		caller = client
	} else {
		cfg := app.NewConfig(opts.configPath, opts.debug)
		cfg.Version = rootCmd.Version
		application, err := app.NewApplication(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer application.Close()
		caller = application
	}

	executor := cli.NewToolExecutor(caller, cli.ExecutorOptions{
		Format: format,
		Quiet:  opts.quiet,
		Out:    cmd.OutOrStdout(),
		ErrOut: cmd.ErrOrStderr(),
	})
	return executor.Execute(ctx, tool, args)
}
