package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"workbench/internal/config"
	"workbench/internal/log"
	"workbench/internal/tools"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server around the dispatcher.
type Server struct {
	mcpServer  *mcp.Server
	dispatcher *tools.Dispatcher
	kit        *tools.Kit
	logger     log.Logger
}

// Config holds MCP server identity and the application configuration.
type Config struct {
	Name    string
	Version string
	App     *config.Config
	Logger  log.Logger
}

// CallInput is the shared input shape of every portmanteau tool: which
// operation to run and its arguments.
type CallInput struct {
	Operation string         `json:"operation" jsonschema:"Name of the operation to execute"`
	Arguments map[string]any `json:"arguments,omitempty" jsonschema:"Operation parameters, see the server_help operation for the catalog"`
}

// toolDescriptions name and describe the four exposed tools.
var toolDescriptions = map[string]string{
	tools.CategoryFilesystem: "File and directory operations inside the configured workspace: read, write, edit, move, list, search.",
	tools.CategoryRepository: "Git repository operations: clone, status, commit, history, branches, tags, remotes, sync.",
	tools.CategoryDocker:     "Docker operations: containers, images, networks and volumes through the local daemon.",
	tools.CategorySystem:     "Host telemetry and server introspection: CPU, memory, disk, processes, and the operation catalog.",
}

// NewServer builds the kit, registry and dispatcher, then registers the
// four portmanteau tools with the MCP runtime.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("server name is required")
	}
	if cfg.Version == "" {
		return nil, fmt.Errorf("server version is required")
	}
	if cfg.App == nil {
		return nil, fmt.Errorf("application config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	kit, err := tools.NewKit(cfg.App, logger)
	if err != nil {
		return nil, fmt.Errorf("building kit: %w", err)
	}

	registry := tools.NewRegistry()
	if err := tools.RegisterAll(registry); err != nil {
		return nil, fmt.Errorf("registering operations: %w", err)
	}

	s := &Server{
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		dispatcher: tools.NewDispatcher(registry, kit, cfg.App.Dispatch.Timeout),
		kit:        kit,
		logger:     logger,
	}

	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	return s, nil
}

// Run serves MCP on the transport until the context is canceled. Blocking.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	defer s.kit.Close()
	return s.mcpServer.Run(ctx, transport)
}

func (s *Server) registerTools() error {
	inputSchema, err := jsonschema.For[CallInput](nil)
	if err != nil {
		return fmt.Errorf("building input schema: %w", err)
	}

	for _, category := range []string{
		tools.CategoryFilesystem,
		tools.CategoryRepository,
		tools.CategoryDocker,
		tools.CategorySystem,
	} {
		tool := &mcp.Tool{
			Name:        category,
			Description: toolDescriptions[category],
			InputSchema: inputSchema,
		}
		cat := category
		mcp.AddTool(s.mcpServer, tool, func(ctx context.Context, _ *mcp.CallToolRequest, in CallInput) (*mcp.CallToolResult, any, error) {
			return s.call(ctx, cat, in)
		})
	}
	return nil
}

// call dispatches one tool invocation and renders the envelope. Every
// outcome, including validation failures, becomes a JSON envelope in the
// text content; the Go error return is reserved for serialization faults.
func (s *Server) call(ctx context.Context, category string, in CallInput) (*mcp.CallToolResult, any, error) {
	args := in.Arguments
	if args == nil {
		args = map[string]any{}
	}
	result := s.dispatcher.Dispatch(ctx, category, in.Operation, args)

	payload, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("envelope serialization failed", "error", err)
		return nil, nil, fmt.Errorf("serializing result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		IsError: !result.Success,
	}, nil, nil
}
