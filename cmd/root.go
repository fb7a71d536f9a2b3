// Package cmd wires the workbench CLI.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Workbench - filesystem, git, docker and host operations over MCP",
	Long: `Workbench is an MCP server that exposes filesystem, git repository,
docker and host operations as four multiplexed tools. It speaks the MCP
protocol over stdio; run it from an MCP-capable client.

Running workbench without a subcommand starts the server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
