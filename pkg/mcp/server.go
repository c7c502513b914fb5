// Package mcp exposes the scan pipeline to MCP clients: scope-selected
// variable and component scans, suppression-list editing, and edit
// permission checks. It is the display-surface boundary; rendering is
// the client's problem.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/mcplog"
	"github.com/dsyslab/tokenlens/pkg/scan"
)

const serverVersion = "0.1.0-dev"

// Config wires a Server to its document and stores.
type Config struct {
	// DocumentPath is the design document file to scan.
	DocumentPath string
	// Storage persists the per-document suppression lists.
	Storage document.Storage
	// ScanOptions is applied to every session the server creates.
	ScanOptions scan.Options
	// CallLog optionally records tool calls as JSONL; nil disables.
	CallLog *mcplog.Recorder
	Logger  *slog.Logger
}

// Server serves scan results over MCP.
type Server struct {
	mcpServer *server.MCPServer
	cache     *document.Cache
	cfg       Config
	log       *slog.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(cfg Config) (*Server, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	cache, err := document.NewCache(0, log)
	if err != nil {
		return nil, err
	}

	s := &Server{cache: cache, cfg: cfg, log: log}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if cfg.CallLog != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}
	s.mcpServer = server.NewMCPServer("tokenlens", serverVersion, opts...)

	s.mcpServer.AddTools(
		server.ServerTool{Tool: scanVariablesTool(), Handler: s.handleScanVariables},
		server.ServerTool{Tool: scanComponentsTool(), Handler: s.handleScanComponents},
		server.ServerTool{Tool: documentInfoTool(), Handler: s.handleDocumentInfo},
		server.ServerTool{Tool: listIgnoredTool(), Handler: s.handleListIgnored},
		server.ServerTool{Tool: ignoreElementTool(), Handler: s.handleIgnoreElement},
		server.ServerTool{Tool: unignoreElementTool(), Handler: s.handleUnignoreElement},
		server.ServerTool{Tool: ignoreValueTool(), Handler: s.handleIgnoreValue},
		server.ServerTool{Tool: unignoreValueTool(), Handler: s.handleUnignoreValue},
		server.ServerTool{Tool: checkEditTool(), Handler: s.handleCheckEdit},
	)

	return s, nil
}

// ServeStdio starts the server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// InvalidateDocument drops the cached parse of path; the next tool
// call reloads from disk. The file watcher calls this on change.
func (s *Server) InvalidateDocument(path string) {
	s.cache.Invalidate(path)
}
