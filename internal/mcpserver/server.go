// Package mcpserver exposes a generator as Model Context Protocol tools.
package mcpserver

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"sqlgen/internal/httpapi"
)

// Tool names.
const (
	ToolGenerate = "generate_sql"
	ToolDebug    = "debug_sql"
)

var logger = zerolog.Nop()

// SetLogger installs the structured logger used by tool handlers.
func SetLogger(l zerolog.Logger) { logger = l }

// New registers generate_sql and debug_sql backed by svc.
func New(svc httpapi.Service, version string) *server.MCPServer {
	s := server.NewMCPServer("sqlgen", version, server.WithToolCapabilities(false))
	s.AddTool(generateTool(), handler("generate", svc.Generate))
	s.AddTool(debugTool(), handler("debug", svc.Debug))
	return s
}

func generateTool() mcp.Tool {
	return mcp.NewTool(ToolGenerate,
		mcp.WithDescription("Generate one SQL statement answering the prompt."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Prompt describing the query, typically including the schema")),
	)
}

func debugTool() mcp.Tool {
	return mcp.NewTool(ToolDebug,
		mcp.WithDescription("Repair a SQL statement. The prompt should carry the failing statement and its error."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Prompt describing the statement to repair")),
	)
}

type generateFunc func(ctx context.Context, prompt string) (string, error)

// handler turns backend errors into tool errors so the client sees the
// message; the protocol call itself succeeds.
func handler(mode string, call generateFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		prompt, err := req.RequireString("prompt")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		start := time.Now()
		out, err := call(ctx, prompt)
		if err != nil {
			logger.Warn().Str("tool", req.Params.Name).Dur("dur", time.Since(start)).Err(err).Msg(mode + " failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		logger.Info().Str("tool", req.Params.Name).Dur("dur", time.Since(start)).Msg(mode + " end")
		return mcp.NewToolResultText(out), nil
	}
}

// ServeStdio serves s over stdin/stdout until EOF or a signal.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// NewHTTP returns a streamable HTTP transport for s, served at /mcp.
func NewHTTP(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s)
}
