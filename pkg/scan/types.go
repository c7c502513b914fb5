// Package scan implements the scan-and-aggregate pipeline: recursive
// tree traversal, variable and component usage collection,
// cross-reference resolution, ignore filtering, and output assembly.
package scan

import (
	"sort"

	"github.com/dsyslab/tokenlens/pkg/document"
)

// Scope selects which subtree(s) a scan covers.
type Scope string

const (
	ScopePage      Scope = "page"
	ScopeSelection Scope = "selection"
	ScopeDocument  Scope = "document"
)

// Valid reports whether s is a known scope selector.
func (s Scope) Valid() bool {
	switch s {
	case ScopePage, ScopeSelection, ScopeDocument:
		return true
	}
	return false
}

// UnboundType classifies an element styled without a variable.
type UnboundType string

const (
	UnboundTextNoStyle      UnboundType = "text-no-style"
	UnboundTextPartialStyle UnboundType = "text-partial-style"
	UnboundFill             UnboundType = "fill-no-variable"
	UnboundStroke           UnboundType = "stroke-no-variable"
)

// UnboundElement is a node styled with a literal value instead of a
// variable reference. Details carries a short text excerpt or the
// resolved hex color, depending on Type.
type UnboundElement struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Type    UnboundType `json:"type"`
	Details string      `json:"details,omitempty"`
}

// UsageMap maps a normalized variable id to the set of node ids that
// reference it within the scanned scope.
type UsageMap map[string]map[string]struct{}

// Add records that nodeID references varID. Set semantics: a node
// referencing the same variable through several properties counts once.
func (m UsageMap) Add(varID, nodeID string) {
	set, ok := m[varID]
	if !ok {
		set = make(map[string]struct{})
		m[varID] = set
	}
	set[nodeID] = struct{}{}
}

// NodeIDs returns the sorted node ids recorded for varID.
func (m UsageMap) NodeIDs(varID string) []string {
	set := m[varID]
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// IDs returns the sorted ids present in the map.
func (m UsageMap) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TreeScanResult is the Tree Scanner's output, before resolution.
type TreeScanResult struct {
	Used          UsageMap
	Unbound       []UnboundElement
	SelectionInfo string
	PagesScanned  int
}

// Progress is emitted after each page completes during a
// document-scope scan.
type Progress struct {
	Current   int    `json:"current"`
	Total     int    `json:"total"`
	ScopeName string `json:"scopeName"`
}

// ProgressFunc receives out-of-band progress notifications.
type ProgressFunc func(Progress)

// UnknownAliasLabel is rendered when an alias target cannot be
// resolved.
const UnknownAliasLabel = "→ (unknown alias)"

// VariableData is a display-ready variable with its per-mode values
// and usage provenance. Mode values are either the literal value
// (colorhex.Color, float64, string, bool) or an alias rendered as a
// "→ name" string.
type VariableData struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	ResolvedType document.VariableType `json:"resolvedType"`
	ValuesByMode map[string]any        `json:"valuesByMode"`
	NodeIDs      []string              `json:"nodeIds"`
}

// CollectionData is a display-ready collection. Only collections with
// at least one in-scope variable appear in results.
type CollectionData struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Modes       []document.Mode `json:"modes"`
	Variables   []VariableData  `json:"variables"`
	Remote      bool            `json:"remote"`
	IsGhost     bool            `json:"isGhost"`
	LibraryName string          `json:"libraryName,omitempty"`
}

// Stats counts what a scan visited and dropped. Drops are diagnostic
// only; they never fail a scan.
type Stats struct {
	NodesVisited       int   `json:"nodesVisited"`
	PagesScanned       int   `json:"pagesScanned"`
	VariablesResolved  int   `json:"variablesResolved"`
	VariablesDropped   int   `json:"variablesDropped"`
	CollectionsDropped int   `json:"collectionsDropped"`
	UnboundFound       int   `json:"unboundFound"`
	UnboundIgnored     int   `json:"unboundIgnored"`
	ScanTimeMs         int64 `json:"scanTimeMs"`
	ResolveTimeMs      int64 `json:"resolveTimeMs"`
	EnrichTimeMs       int64 `json:"enrichTimeMs"`
	TotalTimeMs        int64 `json:"totalTimeMs"`
}

// Result is the orchestrator's combined output for one scan.
type Result struct {
	Collections   []CollectionData `json:"collections"`
	Unbound       []UnboundElement `json:"unboundElements"`
	SelectionInfo string           `json:"selectionInfo,omitempty"`
	ScopeName     string           `json:"currentScopeName"`
	Stats         Stats            `json:"stats"`
}

// LocalLibraryKey groups component instances whose component is local
// to the scanned document.
const LocalLibraryKey = "local"

// ComponentUsage is one component with its referencing instances.
type ComponentUsage struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	NodeIDs []string `json:"nodeIds"`
}

// ComponentLibrary groups used components by their owning library.
type ComponentLibrary struct {
	Key        string           `json:"key"`
	Name       string           `json:"name"`
	Remote     bool             `json:"remote"`
	IsGhost    bool             `json:"isGhost"`
	Components []ComponentUsage `json:"components"`
}

// ComponentsResult is the component pipeline's output.
type ComponentsResult struct {
	Libraries     []ComponentLibrary `json:"libraries"`
	SelectionInfo string             `json:"selectionInfo,omitempty"`
	ScopeName     string             `json:"currentScopeName"`
}
