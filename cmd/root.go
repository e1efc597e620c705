package cmd

import (
	"errors"
	"fmt"
	"os"

	"sfmcp/internal/cli"
	"sfmcp/internal/color"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sfmcp",
	Short: "Expose a Salesforce org to AI assistants over MCP",
	Long: `sfmcp is a Model Context Protocol server that gives AI assistants
read access to a Salesforce org through three tools: list_objects,
describe_object and execute_soql_query.

Credentials come from SALESFORCE_USERNAME, SALESFORCE_PASSWORD and
SALESFORCE_SECURITY_TOKEN (or a .env file / config file).`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. missing credentials, rejected queries)
	SilenceUsage: true,
	// Errors are printed in Execute; failed tool results were already
	// printed by the executor.
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		color.Initialize()
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "sfmcp version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		var toolErr *cli.ToolError
		if !errors.As(err, &toolErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newServeCmd())
	for _, c := range newToolCmds() {
		rootCmd.AddCommand(c)
	}
}
