package scan

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/ignore"
)

// Options configures a scan session.
type Options struct {
	// GhostFailClosed flips the ghost-detection default when the
	// library enumeration fails: false (default) assumes reachable,
	// true assumes ghost.
	GhostFailClosed bool
	// PageGlob restricts document-scope scans to matching page names.
	PageGlob string
	// Progress receives per-page notifications during document scans.
	Progress ProgressFunc
	Logger   *slog.Logger
}

// Session sequences the pipeline stages for one document. All scan
// state lives here rather than in package-level variables, so several
// sessions can coexist. A session runs one scan at a time; callers
// issuing overlapping scans get last-write-wins by completion order.
type Session struct {
	id      string
	oracle  document.Oracle
	ignores *ignore.Store
	opts    Options
	log     *slog.Logger
}

// NewSession creates a scan session over the given oracle and storage.
func NewSession(oracle document.Oracle, storage document.Storage, opts Options) *Session {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	id := uuid.NewString()
	return &Session{
		id:      id,
		oracle:  oracle,
		ignores: ignore.NewStore(storage, oracle.DocumentID(), log),
		opts:    opts,
		log:     log.With("session", id),
	}
}

// Ignores exposes the session's suppression-list store so the display
// surface can edit it and rescan.
func (s *Session) Ignores() *ignore.Store { return s.ignores }

// GetVariableCollections runs the full variable pipeline for scope:
// tree scan, usage grouping, collection fetch, enrichment, ignore
// filtering. Stages run strictly in order. Per-item failures degrade
// locally; any stage-level failure aborts the scan with a single error
// and no partial result.
func (s *Session) GetVariableCollections(ctx context.Context, scope Scope) (*Result, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
	totalStart := time.Now()
	stats := Stats{}

	scanner := &treeScanner{
		oracle:   s.oracle,
		log:      s.log,
		progress: s.opts.Progress,
		pageGlob: s.opts.PageGlob,
	}
	scanStart := time.Now()
	tree, err := scanner.scan(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("scan %s scope: %w", scope, err)
	}
	stats.NodesVisited = scanner.nodesVisited
	stats.PagesScanned = tree.PagesScanned
	stats.ScanTimeMs = time.Since(scanStart).Milliseconds()
	s.log.Info("tree scan complete",
		"scope", scope,
		"nodes", stats.NodesVisited,
		"variables", len(tree.Used),
		"unbound", len(tree.Unbound),
		"ms", stats.ScanTimeMs)

	resolveStart := time.Now()
	grouped, dropped, err := groupUsage(ctx, s.oracle, tree.Used, s.log)
	if err != nil {
		return nil, fmt.Errorf("group usage: %w", err)
	}
	stats.VariablesDropped = dropped
	stats.VariablesResolved = len(tree.Used) - dropped

	collections, err := fetchCollections(ctx, s.oracle, grouped, s.log)
	if err != nil {
		return nil, fmt.Errorf("fetch collections: %w", err)
	}
	stats.ResolveTimeMs = time.Since(resolveStart).Milliseconds()

	enrichStart := time.Now()
	data, droppedCollections := enrichCollections(
		ctx, s.oracle, collections, grouped, s.opts.GhostFailClosed, s.log)
	stats.CollectionsDropped = droppedCollections
	stats.EnrichTimeMs = time.Since(enrichStart).Milliseconds()
	s.log.Info("enrichment complete",
		"collections", len(data),
		"droppedVariables", dropped,
		"ms", stats.EnrichTimeMs)

	byID, err := s.ignores.Elements(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ignore lists: %w", err)
	}
	byValue, err := s.ignores.Values(ctx)
	if err != nil {
		return nil, fmt.Errorf("read ignore lists: %w", err)
	}
	unbound := filterUnbound(tree.Unbound, byID, byValue)
	stats.UnboundFound = len(tree.Unbound)
	stats.UnboundIgnored = len(tree.Unbound) - len(unbound)

	stats.TotalTimeMs = time.Since(totalStart).Milliseconds()

	return &Result{
		Collections:   data,
		Unbound:       unbound,
		SelectionInfo: tree.SelectionInfo,
		ScopeName:     s.scopeName(ctx, scope, tree),
		Stats:         stats,
	}, nil
}

// scopeName renders the current scope's display name.
func (s *Session) scopeName(ctx context.Context, scope Scope, tree *TreeScanResult) string {
	switch scope {
	case ScopePage:
		page, err := s.oracle.CurrentPage(ctx)
		if err != nil {
			return string(scope)
		}
		return page.Name()
	case ScopeSelection:
		if tree.SelectionInfo == "" {
			return "No selection"
		}
		return tree.SelectionInfo
	case ScopeDocument:
		return tree.SelectionInfo
	}
	return string(scope)
}
