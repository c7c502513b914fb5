package document

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("not found")

// Oracle is the read-only host surface the scan pipeline consumes.
// All lookups take a context because a real host services them
// asynchronously; the file-backed implementation answers from memory.
type Oracle interface {
	DocumentID() string
	DocumentName() string

	Pages(ctx context.Context) ([]Node, error)
	CurrentPage(ctx context.Context) (Node, error)
	Selection(ctx context.Context) ([]Node, error)
	NodeByID(ctx context.Context, id string) (Node, error)
	PageNameOf(ctx context.Context, nodeID string) (string, error)

	VariableByID(ctx context.Context, id string) (*Variable, error)
	CollectionByID(ctx context.Context, id string) (*VariableCollection, error)
	ComponentByID(ctx context.Context, id string) (*Component, error)

	// LibraryKeys enumerates the publish keys of remote libraries the
	// host can currently reach. Used for ghost detection.
	LibraryKeys(ctx context.Context) (map[string]struct{}, error)
}

// Storage is the host's namespaced key-value store. Get returns
// (nil, nil) for an absent key.
type Storage interface {
	Get(ctx context.Context, namespace, key string) ([]byte, error)
	Set(ctx context.Context, namespace, key string, value []byte) error
}

// variableIDPrefix is the routing prefix the host wraps around raw
// variable references arriving from bound-variable slots.
const variableIDPrefix = "VariableID:"

// NormalizeVariableID strips the routing prefix and, for references
// routed through a subscribed library, the library-hash segment before
// the final "/". The result is the id variables are keyed by.
func NormalizeVariableID(raw string) string {
	id := strings.TrimPrefix(raw, variableIDPrefix)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// documentFile is the on-disk JSON shape.
type documentFile struct {
	ID          string                         `json:"id"`
	Name        string                         `json:"name"`
	Pages       []json.RawMessage              `json:"pages"`
	Variables   map[string]*Variable           `json:"variables"`
	Collections map[string]*VariableCollection `json:"collections"`
	Components  map[string]*Component          `json:"components"`
	Libraries   []string                       `json:"libraries"`
}

// Document is the file-backed Oracle implementation. The node tree and
// record maps are immutable after Load; current page and selection are
// the only mutable bits and are guarded for concurrent tool calls.
type Document struct {
	id   string
	name string
	path string

	pages       []*PageNode
	variables   map[string]*Variable
	collections map[string]*VariableCollection
	components  map[string]*Component
	libraries   map[string]struct{}

	nodes      map[string]Node
	pageByNode map[string]string // node id -> page name

	mu          sync.RWMutex
	currentPage string   // page id; first page when empty
	selection   []string // node ids

	log *slog.Logger
}

// Load reads and decodes a design document snapshot from path.
func Load(path string, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	data, release, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document %s: %w", path, err)
	}
	defer release()

	doc, err := Decode(data, logger)
	if err != nil {
		return nil, fmt.Errorf("decode document %s: %w", path, err)
	}
	doc.path = path
	return doc, nil
}

// Decode builds a Document from raw JSON bytes.
func Decode(data []byte, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var df documentFile
	if err := json.Unmarshal(data, &df); err != nil {
		return nil, err
	}
	if df.ID == "" {
		return nil, fmt.Errorf("document has no id")
	}

	doc := &Document{
		id:          df.ID,
		name:        df.Name,
		variables:   df.Variables,
		collections: df.Collections,
		components:  df.Components,
		libraries:   make(map[string]struct{}, len(df.Libraries)),
		nodes:       make(map[string]Node),
		pageByNode:  make(map[string]string),
		log:         logger,
	}
	if doc.variables == nil {
		doc.variables = map[string]*Variable{}
	}
	if doc.collections == nil {
		doc.collections = map[string]*VariableCollection{}
	}
	if doc.components == nil {
		doc.components = map[string]*Component{}
	}
	for _, key := range df.Libraries {
		doc.libraries[key] = struct{}{}
	}

	for i, rawPage := range df.Pages {
		node, err := decodeNode(rawPage)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		page, ok := node.(*PageNode)
		if !ok {
			return nil, fmt.Errorf("page %d: top-level node %s is %s, want PAGE", i, node.ID(), node.Type())
		}
		doc.pages = append(doc.pages, page)
		doc.index(page, page.Name())
	}

	logger.Debug("document decoded",
		"id", doc.id,
		"pages", len(doc.pages),
		"variables", len(doc.variables),
		"collections", len(doc.collections))
	return doc, nil
}

// index registers node and its subtree in the id and page lookups.
func (d *Document) index(n Node, pageName string) {
	d.nodes[n.ID()] = n
	d.pageByNode[n.ID()] = pageName
	if c, ok := n.(HasChildren); ok {
		for _, child := range c.Children() {
			d.index(child, pageName)
		}
	}
}

func (d *Document) DocumentID() string   { return d.id }
func (d *Document) DocumentName() string { return d.name }

// Path returns the file the document was loaded from, if any.
func (d *Document) Path() string { return d.path }

func (d *Document) Pages(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Node, len(d.pages))
	for i, p := range d.pages {
		out[i] = p
	}
	return out, nil
}

// SetCurrentPage selects the current page by id or name.
func (d *Document) SetCurrentPage(idOrName string) error {
	for _, p := range d.pages {
		if p.ID() == idOrName || p.Name() == idOrName {
			d.mu.Lock()
			d.currentPage = p.ID()
			d.mu.Unlock()
			return nil
		}
	}
	return fmt.Errorf("page %q: %w", idOrName, ErrNotFound)
}

func (d *Document) CurrentPage(ctx context.Context) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(d.pages) == 0 {
		return nil, fmt.Errorf("document has no pages")
	}
	d.mu.RLock()
	id := d.currentPage
	d.mu.RUnlock()
	if id == "" {
		return d.pages[0], nil
	}
	for _, p := range d.pages {
		if p.ID() == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("current page %q: %w", id, ErrNotFound)
}

// SetSelection records the selected node ids. Unknown ids are kept;
// Selection drops them at read time so a stale selection degrades
// instead of failing.
func (d *Document) SetSelection(ids []string) {
	d.mu.Lock()
	d.selection = append([]string(nil), ids...)
	d.mu.Unlock()
}

func (d *Document) Selection(ctx context.Context) ([]Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.RLock()
	ids := d.selection
	d.mu.RUnlock()
	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := d.nodes[id]; ok {
			nodes = append(nodes, n)
		} else {
			d.log.Debug("selection id no longer resolves", "id", id)
		}
	}
	return nodes, nil
}

func (d *Document) NodeByID(ctx context.Context, id string) (Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	n, ok := d.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	return n, nil
}

func (d *Document) PageNameOf(ctx context.Context, nodeID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name, ok := d.pageByNode[nodeID]
	if !ok {
		return "", fmt.Errorf("node %q: %w", nodeID, ErrNotFound)
	}
	return name, nil
}

func (d *Document) VariableByID(ctx context.Context, id string) (*Variable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := d.variables[id]
	if !ok {
		return nil, fmt.Errorf("variable %q: %w", id, ErrNotFound)
	}
	return v, nil
}

func (d *Document) CollectionByID(ctx context.Context, id string) (*VariableCollection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := d.collections[id]
	if !ok {
		return nil, fmt.Errorf("collection %q: %w", id, ErrNotFound)
	}
	return c, nil
}

func (d *Document) ComponentByID(ctx context.Context, id string) (*Component, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, ok := d.components[id]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", id, ErrNotFound)
	}
	return c, nil
}

func (d *Document) LibraryKeys(ctx context.Context) (map[string]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]struct{}, len(d.libraries))
	for k := range d.libraries {
		out[k] = struct{}{}
	}
	return out, nil
}
