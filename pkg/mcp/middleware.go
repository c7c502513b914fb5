package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dsyslab/tokenlens/pkg/mcplog"
)

// loggingMiddleware records every tool call to the configured call log.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := mcplog.Now()
			res, err := next(ctx, req)

			entry := mcplog.Entry{
				Ts:         start.UTC().Format(time.RFC3339Nano),
				Tool:       req.Params.Name,
				Params:     mcplog.Sanitize(req.GetArguments()),
				DurationMs: mcplog.Now().Sub(start).Milliseconds(),
			}
			if res != nil {
				entry.ResponseBytes = mcplog.ResultSize(res)
				if res.IsError {
					entry.Error = "tool error"
				}
			}
			if err != nil {
				entry.Error = err.Error()
			}
			if logErr := s.cfg.CallLog.Record(entry); logErr != nil {
				s.log.Warn("call log write failed", "error", logErr)
			}
			return res, err
		}
	}
}
