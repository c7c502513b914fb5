package scan

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/dsyslab/tokenlens/pkg/colorhex"
	"github.com/dsyslab/tokenlens/pkg/document"
	"github.com/dsyslab/tokenlens/pkg/ignore"
)

// treeScanner walks a scope's roots depth-first, collecting the
// variable usage map and unbound-element flags. Traversal is total
// over well-formed trees: a slot that fails to parse is skipped for
// that slot only.
type treeScanner struct {
	oracle   document.Oracle
	log      *slog.Logger
	progress ProgressFunc
	// pageGlob optionally restricts document-scope scans to pages
	// whose name matches the doublestar pattern.
	pageGlob string

	nodesVisited int
}

// maxExcerpt bounds text excerpts captured into unbound details.
const maxExcerpt = 24

func (t *treeScanner) scan(ctx context.Context, scope Scope) (*TreeScanResult, error) {
	res := &TreeScanResult{Used: make(UsageMap)}

	switch scope {
	case ScopePage:
		page, err := t.oracle.CurrentPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve current page: %w", err)
		}
		t.walk(page, res)
		res.PagesScanned = 1

	case ScopeSelection:
		roots, err := t.oracle.Selection(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve selection: %w", err)
		}
		names := make([]string, 0, len(roots))
		for _, root := range roots {
			t.walk(root, res)
			names = append(names, root.Name())
		}
		res.SelectionInfo = formatSelectionInfo(names)

	case ScopeDocument:
		pages, err := t.oracle.Pages(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate pages: %w", err)
		}
		pages, err = t.filterPages(pages)
		if err != nil {
			return nil, err
		}
		scopeName := fmt.Sprintf("%d pages", len(pages))
		for i, page := range pages {
			// The one deliberate suspension point: between pages a
			// document scan honors cancellation and reports progress.
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			t.walk(page, res)
			if t.progress != nil {
				t.progress(Progress{Current: i + 1, Total: len(pages), ScopeName: scopeName})
			}
		}
		res.PagesScanned = len(pages)
		res.SelectionInfo = scopeName

	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}

	return res, nil
}

// filterPages applies the optional page-name glob.
func (t *treeScanner) filterPages(pages []document.Node) ([]document.Node, error) {
	if t.pageGlob == "" {
		return pages, nil
	}
	if !doublestar.ValidatePattern(t.pageGlob) {
		return nil, fmt.Errorf("invalid page pattern: %s", t.pageGlob)
	}
	kept := make([]document.Node, 0, len(pages))
	for _, p := range pages {
		if ok, _ := doublestar.Match(t.pageGlob, p.Name()); ok {
			kept = append(kept, p)
		}
	}
	return kept, nil
}

// walk visits node and its subtree pre-order.
func (t *treeScanner) walk(node document.Node, res *TreeScanResult) {
	t.nodesVisited++
	t.collectBindings(node, res.Used)
	t.classifyUnbound(node, res)

	if c, ok := node.(document.HasChildren); ok {
		for _, child := range c.Children() {
			t.walk(child, res)
		}
	}
}

// collectBindings records every resolvable bound-variable reference
// the node exposes, across property slots and per-paint bindings.
func (t *treeScanner) collectBindings(node document.Node, used UsageMap) {
	for prop, raw := range node.BoundVariables() {
		aliases, ok := document.DecodeAliases(raw)
		if !ok {
			t.log.Debug("skipping unparseable binding slot",
				"node", node.ID(), "property", prop)
			continue
		}
		for _, a := range aliases {
			used.Add(document.NormalizeVariableID(a.ID), node.ID())
		}
	}

	if f, ok := node.(document.HasFills); ok {
		for _, p := range f.Fills() {
			if p.Bound() {
				used.Add(document.NormalizeVariableID(p.BoundVariable.ID), node.ID())
			}
		}
	}
	if s, ok := node.(document.HasStrokes); ok {
		for _, p := range s.Strokes() {
			if p.Bound() {
				used.Add(document.NormalizeVariableID(p.BoundVariable.ID), node.ID())
			}
		}
	}
}

// classifyUnbound applies the four independent unbound checks. A node
// may contribute several flags of different kinds, but at most one per
// kind.
func (t *treeScanner) classifyUnbound(node document.Node, res *TreeScanResult) {
	text, isText := node.(document.HasTextStyle)

	if isText && text.TextStyleID() == "" {
		res.Unbound = append(res.Unbound, UnboundElement{
			ID:      node.ID(),
			Name:    node.Name(),
			Type:    UnboundTextNoStyle,
			Details: ignore.Excerpt(text.Characters(), maxExcerpt),
		})
	}

	if f, ok := node.(document.HasFills); ok {
		if hex, found := firstUnboundSolid(f.Fills(), node, "fills"); found {
			kind := UnboundFill
			if isText {
				kind = UnboundTextPartialStyle
			}
			res.Unbound = append(res.Unbound, UnboundElement{
				ID:      node.ID(),
				Name:    node.Name(),
				Type:    kind,
				Details: hex,
			})
		}
	}

	if s, ok := node.(document.HasStrokes); ok {
		if hex, found := firstUnboundSolid(s.Strokes(), node, "strokes"); found {
			res.Unbound = append(res.Unbound, UnboundElement{
				ID:      node.ID(),
				Name:    node.Name(),
				Type:    UnboundStroke,
				Details: hex,
			})
		}
	}
}

// firstUnboundSolid returns the hex of the first visible solid paint
// that is bound neither on the paint itself nor through the node-level
// slot for the given property.
func firstUnboundSolid(paints []document.Paint, node document.Node, prop string) (string, bool) {
	if slotBound(node, prop) {
		return "", false
	}
	for _, p := range paints {
		if p.IsVisibleSolid() && !p.Bound() {
			return colorhex.HexAlpha(*p.Color, p.Alpha()), true
		}
	}
	return "", false
}

// slotBound reports whether the node-level bound-variable slot for
// prop carries at least one well-formed alias.
func slotBound(node document.Node, prop string) bool {
	raw, ok := node.BoundVariables()[prop]
	if !ok {
		return false
	}
	aliases, ok := document.DecodeAliases(raw)
	return ok && len(aliases) > 0
}

// formatSelectionInfo renders the selection roots' names: a single
// name verbatim, up to three comma-joined, four or more as the first
// two plus a count.
func formatSelectionInfo(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + ", " + names[1]
	case 3:
		return names[0] + ", " + names[1] + ", " + names[2]
	default:
		return fmt.Sprintf("%s, %s + %d more", names[0], names[1], len(names)-2)
	}
}
