package scan

import (
	"context"
	"fmt"
	"sort"

	"github.com/dsyslab/tokenlens/pkg/document"
)

// GetComponentUsage runs the component pipeline for scope: scan
// instance nodes, group their components by owning library, enrich
// with library names. Structurally the variable pipeline minus alias
// resolution and the mode dimension; local components group under the
// LocalLibraryKey sentinel.
func (s *Session) GetComponentUsage(ctx context.Context, scope Scope) (*ComponentsResult, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("unknown scope %q", scope)
	}

	used := make(UsageMap)
	var selectionInfo, scopeName string

	switch scope {
	case ScopePage:
		page, err := s.oracle.CurrentPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve current page: %w", err)
		}
		collectInstances(page, used)
		scopeName = page.Name()

	case ScopeSelection:
		roots, err := s.oracle.Selection(ctx)
		if err != nil {
			return nil, fmt.Errorf("resolve selection: %w", err)
		}
		names := make([]string, 0, len(roots))
		for _, root := range roots {
			collectInstances(root, used)
			names = append(names, root.Name())
		}
		selectionInfo = formatSelectionInfo(names)
		scopeName = selectionInfo
		if scopeName == "" {
			scopeName = "No selection"
		}

	case ScopeDocument:
		pages, err := s.oracle.Pages(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate pages: %w", err)
		}
		t := &treeScanner{pageGlob: s.opts.PageGlob}
		pages, err = t.filterPages(pages)
		if err != nil {
			return nil, err
		}
		selectionInfo = fmt.Sprintf("%d pages", len(pages))
		scopeName = selectionInfo
		for i, page := range pages {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			collectInstances(page, used)
			if s.opts.Progress != nil {
				s.opts.Progress(Progress{Current: i + 1, Total: len(pages), ScopeName: scopeName})
			}
		}
	}

	return &ComponentsResult{
		Libraries:     s.groupComponents(ctx, used),
		SelectionInfo: selectionInfo,
		ScopeName:     scopeName,
	}, nil
}

// collectInstances records component usage for every INSTANCE node in
// the subtree, with the same set semantics as variable usage.
func collectInstances(node document.Node, used UsageMap) {
	if inst, ok := node.(*document.InstanceNode); ok && inst.ComponentID() != "" {
		used.Add(inst.ComponentID(), node.ID())
	}
	if c, ok := node.(document.HasChildren); ok {
		for _, child := range c.Children() {
			collectInstances(child, used)
		}
	}
}

// groupComponents resolves component ids and groups them by library
// key. Unresolvable components are dropped silently, matching the
// variable grouper's policy. Ghost detection is not performed for
// component libraries; IsGhost stays false.
func (s *Session) groupComponents(ctx context.Context, used UsageMap) []ComponentLibrary {
	byLibrary := make(map[string]*ComponentLibrary)

	for _, id := range used.IDs() {
		comp, err := s.oracle.ComponentByID(ctx, id)
		if err != nil {
			s.log.Debug("dropping unresolvable component", "id", id, "error", err)
			continue
		}

		key := comp.LibraryKey
		if key == "" {
			key = LocalLibraryKey
		}
		lib, ok := byLibrary[key]
		if !ok {
			lib = &ComponentLibrary{
				Key:    key,
				Name:   libraryDisplayName(key),
				Remote: comp.Remote,
			}
			byLibrary[key] = lib
		}
		lib.Components = append(lib.Components, ComponentUsage{
			ID:      comp.ID,
			Name:    comp.Name,
			NodeIDs: used.NodeIDs(id),
		})
	}

	out := make([]ComponentLibrary, 0, len(byLibrary))
	for _, lib := range byLibrary {
		sort.Slice(lib.Components, func(i, j int) bool {
			return lib.Components[i].Name < lib.Components[j].Name
		})
		out = append(out, *lib)
	}
	sort.Slice(out, func(i, j int) bool {
		// Local components list first, then remote libraries by name.
		if (out[i].Key == LocalLibraryKey) != (out[j].Key == LocalLibraryKey) {
			return out[i].Key == LocalLibraryKey
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// libraryDisplayName renders a library grouping key for display.
func libraryDisplayName(key string) string {
	if key == LocalLibraryKey {
		return "Local components"
	}
	return libraryNameFromKey(key)
}
