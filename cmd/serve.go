package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"workbench/internal/config"
	"workbench/internal/log"
	"workbench/internal/mcp"

	mcpSdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe loads configuration and serves MCP over stdio until a signal
// arrives. Stdout belongs to the protocol; all logging goes to stderr.
func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	logger := log.New(log.Config{Level: level, JSON: cfg.Log.JSON})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger.Info("starting MCP server", "version", Version)
	if !cfg.Sandbox.Enabled {
		logger.Warn("path sandboxing is DISABLED, every path on the host is reachable")
	} else if cfg.Workspace.Root == "" {
		logger.Warn("no workspace root configured, all path operations will be denied")
	}

	server, err := mcp.NewServer(mcp.Config{
		Name:    "workbench",
		Version: Version,
		App:     cfg,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}

	logger.Info("MCP server ready", "transport", "stdio", "workspace", cfg.Workspace.Root)

	if err := server.Run(ctx, &mcpSdk.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	logger.Info("MCP server shut down gracefully")
	return nil
}
