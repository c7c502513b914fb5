package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/edit"
	"github.com/dsyslab/tokenlens/pkg/ignore"
	"github.com/dsyslab/tokenlens/pkg/scan"
)

// stringArg reads an optional string argument.
func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// requireArg reads a mandatory string argument.
func requireArg(args map[string]any, key string) (string, error) {
	v, ok := args[key].(string)
	if !ok || v == "" {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	return v, nil
}

// jsonResult marshals v as an indented JSON tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}

// session loads the document (cached) and builds a scan session,
// applying any page/selection overrides from the tool arguments.
func (s *Server) session(args map[string]any) (*scan.Session, *document.Document, error) {
	doc, err := s.cache.Get(s.cfg.DocumentPath)
	if err != nil {
		return nil, nil, err
	}
	if page := stringArg(args, "page", ""); page != "" {
		if err := doc.SetCurrentPage(page); err != nil {
			return nil, nil, err
		}
	}
	if sel := stringArg(args, "selection", ""); sel != "" {
		ids := strings.Split(sel, ",")
		for i := range ids {
			ids[i] = strings.TrimSpace(ids[i])
		}
		doc.SetSelection(ids)
	}

	opts := s.cfg.ScanOptions
	if opts.Logger == nil {
		opts.Logger = s.log
	}
	return scan.NewSession(doc, s.cfg.Storage, opts), doc, nil
}

func (s *Server) handleScanVariables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	session, _, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := scan.Scope(stringArg(args, "scope", string(scan.ScopePage)))
	res, err := session.GetVariableCollections(ctx, scope)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleScanComponents(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	session, _, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	scope := scan.Scope(stringArg(args, "scope", string(scan.ScopePage)))
	res, err := session.GetComponentUsage(ctx, scope)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(res)
}

func (s *Server) handleDocumentInfo(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := s.cache.Get(s.cfg.DocumentPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	pages, err := doc.Pages(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	type pageInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	info := struct {
		ID    string     `json:"id"`
		Name  string     `json:"name"`
		Pages []pageInfo `json:"pages"`
	}{ID: doc.DocumentID(), Name: doc.DocumentName()}
	for _, p := range pages {
		info.Pages = append(info.Pages, pageInfo{ID: p.ID(), Name: p.Name()})
	}
	return jsonResult(info)
}

func (s *Server) handleListIgnored(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, doc, err := s.session(req.GetArguments())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	summary, err := session.Ignores().Summarize(ctx, doc)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summary)
}

func (s *Server) handleIgnoreElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.elementListEdit(ctx, req, func(st *ignore.Store, id string) error {
		return st.AddElement(ctx, id)
	})
}

func (s *Server) handleUnignoreElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.elementListEdit(ctx, req, func(st *ignore.Store, id string) error {
		return st.RemoveElement(ctx, id)
	})
}

func (s *Server) elementListEdit(_ context.Context, req mcp.CallToolRequest, op func(*ignore.Store, string) error) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	nodeID, err := requireArg(args, "node_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	session, _, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := op(session.Ignores(), nodeID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleIgnoreValue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.valueListEdit(ctx, req, func(st *ignore.Store, v ignore.ValueIgnore) error {
		return st.AddValue(ctx, v)
	})
}

func (s *Server) handleUnignoreValue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.valueListEdit(ctx, req, func(st *ignore.Store, v ignore.ValueIgnore) error {
		return st.RemoveValue(ctx, v)
	})
}

func (s *Server) valueListEdit(_ context.Context, req mcp.CallToolRequest, op func(*ignore.Store, ignore.ValueIgnore) error) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	valueType, err := requireArg(args, "value_type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	vi := ignore.ValueIgnore{
		ValueType: ignore.ValueType(valueType),
		Value:     stringArg(args, "value", ""),
	}
	switch vi.ValueType {
	case ignore.ValueStroke, ignore.ValueFill:
		if vi.Value == "" {
			return mcp.NewToolResultError("stroke/fill suppressions require a hex value"), nil
		}
	case ignore.ValueTextNoStyle:
		vi.Value = ""
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown value_type %q", valueType)), nil
	}

	session, _, err := s.session(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := op(session.Ignores(), vi); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("ok"), nil
}

func (s *Server) handleCheckEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	colID, err := requireArg(args, "collection_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.cache.Get(s.cfg.DocumentPath)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := doc.CollectionByID(ctx, colID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	isGhost := false
	if col.Remote {
		keys, err := doc.LibraryKeys(ctx)
		if err != nil {
			// Same fallback policy as the enricher.
			isGhost = s.cfg.ScanOptions.GhostFailClosed
		} else if _, ok := keys[col.Key]; !ok {
			isGhost = true
		}
	}
	return jsonResult(edit.Policy{}.Check(col, isGhost))
}
