// Package server exposes the toolbox over the Model Context Protocol.
package server

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/polzovatel/mmid-page-model/internal/tools"
)

const (
	name    = "mmid-page-model"
	version = "0.1.0"
)

// Config holds transport settings.
type Config struct {
	Transport string
	Port      int
}

// Server registers every toolbox tool as an MCP tool. Calls are serialized
// because they share one browser page.
type Server struct {
	toolbox tools.Toolbox
	logger  zerolog.Logger
	mu      sync.Mutex
	mcp     *mcpserver.MCPServer
}

func New(toolbox tools.Toolbox, logger zerolog.Logger) *Server {
	s := &Server{
		toolbox: toolbox,
		logger:  logger,
		mcp:     mcpserver.NewMCPServer(name, version),
	}
	for _, t := range toolbox.Describe() {
		s.mcp.AddTool(toMCP(t), s.handler(t.Name))
	}
	return s
}

// Serve blocks on the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		s.logger.Info().Int("port", cfg.Port).Msg("serving mcp over http")
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) handler(tool string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		res, err := s.toolbox.Invoke(ctx, tool, request.GetArguments())
		if err != nil {
			s.logger.Warn().Err(err).Str("tool", tool).Msg("tool failed")
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(res.Observation), nil
	}
}

// toMCP converts a toolbox JSON schema into mcp-go tool options.
func toMCP(t tools.Tool) mcp.Tool {
	required := map[string]bool{}
	if list, ok := t.InputSchema["required"].([]string); ok {
		for _, r := range list {
			required[r] = true
		}
	}
	props, _ := t.InputSchema["properties"].(map[string]any)
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	opts := []mcp.ToolOption{mcp.WithDescription(t.Description)}
	for _, k := range keys {
		prop, _ := props[k].(map[string]any)
		desc, _ := prop["description"].(string)
		popts := []mcp.PropertyOption{mcp.Description(desc)}
		if required[k] {
			popts = append(popts, mcp.Required())
		}
		switch prop["type"] {
		case "integer", "number":
			opts = append(opts, mcp.WithNumber(k, popts...))
		case "boolean":
			opts = append(opts, mcp.WithBoolean(k, popts...))
		default:
			opts = append(opts, mcp.WithString(k, popts...))
		}
	}
	return mcp.NewTool(t.Name, opts...)
}
