package tool

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/amal-irgashev/code-execution-deep-agent/internal/domain"
)

// MCPServer exposes every registered tool over the Model Context Protocol so
// an external agent runtime drives the workspace through the same registry
// surface the in-process tools use. Tool schemas are forwarded verbatim;
// error results map to MCP error results, never to protocol errors.
type MCPServer struct {
	srv    *server.MCPServer
	logger *slog.Logger
}

// NewMCPServer builds an MCP server publishing the registry's tools.
func NewMCPServer(reg *Registry, name, version string, logger *slog.Logger) (*MCPServer, error) {
	srv := server.NewMCPServer(name, version, server.WithToolCapabilities(true))

	for _, schema := range reg.Schemas() {
		tl, err := reg.Get(schema.Name)
		if err != nil {
			return nil, err
		}
		srv.AddTool(
			mcp.NewToolWithRawSchema(schema.Name, schema.Description, schema.Parameters),
			mcpToolHandler(tl, logger),
		)
		logger.Debug("mcp tool published", "tool", schema.Name)
	}

	return &MCPServer{srv: srv, logger: logger}, nil
}

// ServeStdio blocks serving MCP over stdin/stdout until the client
// disconnects.
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("mcp server listening on stdio")
	return server.ServeStdio(s.srv)
}

// mcpToolHandler adapts a domain.Tool to the MCP call convention.
func mcpToolHandler(tl domain.Tool, logger *slog.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		raw, err := json.Marshal(req.Params.Arguments)
		if err != nil {
			return mcp.NewToolResultError("invalid arguments: " + err.Error()), nil
		}

		result, err := tl.Execute(ctx, raw)
		if err != nil {
			logger.Warn("mcp tool call failed", "tool", tl.Name(), "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}
		if result.IsError {
			return mcp.NewToolResultError(result.Content), nil
		}
		return mcp.NewToolResultText(result.Content), nil
	}
}
