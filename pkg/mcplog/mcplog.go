// Package mcplog records MCP tool calls as JSONL, one line per call.
// The log is diagnostic: write failures never affect tool results.
package mcplog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
)

// Entry is one logged tool call.
type Entry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Params        map[string]any `json:"params,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	Error         string         `json:"error,omitempty"`
}

// Recorder appends entries to a JSONL file. Safe for concurrent use.
// A nil Recorder is valid and discards everything, so callers can
// thread it through unconditionally.
type Recorder struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// Open creates (or appends to) the JSONL file at path, creating parent
// directories as needed. An empty path returns a nil Recorder.
func Open(path string) (*Recorder, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mcplog: create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("mcplog: open log file: %w", err)
	}
	return &Recorder{f: f, enc: json.NewEncoder(f)}, nil
}

// Record appends one entry.
func (r *Recorder) Record(e Entry) error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enc.Encode(e)
}

// Close closes the underlying file.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

// maxParamLen bounds logged string parameters so large payloads never
// end up in the log file.
const maxParamLen = 80

// Sanitize copies args with long string values truncated. Truncation
// counts runes, never splitting a multi-byte character.
func Sanitize(args map[string]any) map[string]any {
	if len(args) == 0 {
		return nil
	}
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && utf8.RuneCountInString(s) > maxParamLen {
			runes := []rune(s)
			out[k] = string(runes[:maxParamLen]) + "…"
			continue
		}
		out[k] = v
	}
	return out
}

// ResultSize returns the serialized length of a tool result's content,
// or 0 for nil results and marshal failures.
func ResultSize(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// Now is a replaceable clock for tests.
var Now = time.Now
