// Package ignore manages the two per-document suppression lists for
// unbound-element reports: exact node ids, and (valueType, value)
// patterns such as "all fills of #FF0000". Lists persist in the host's
// namespaced key-value storage keyed by document id, so they survive
// across scans and sessions.
package ignore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dsyslab/tokenlens/pkg/colorhex"
	"github.com/dsyslab/tokenlens/pkg/document"
)

// ValueType classifies a by-value suppression.
type ValueType string

const (
	ValueStroke      ValueType = "stroke"
	ValueFill        ValueType = "fill"
	ValueTextNoStyle ValueType = "text-no-style"
)

// ValueIgnore suppresses every current and future unbound element
// whose resolved value matches. For stroke/fill the value is an
// uppercase hex color; for text-no-style the value is unused.
type ValueIgnore struct {
	ValueType ValueType `json:"valueType"`
	Value     string    `json:"value"`
}

// Storage keys within the document's namespace.
const (
	keyElements = "ignored-elements"
	keyValues   = "ignored-values"
)

// Store provides CRUD access to one document's suppression lists.
type Store struct {
	storage document.Storage
	docID   string
	log     *slog.Logger
}

// NewStore binds a Store to the document's storage namespace.
func NewStore(storage document.Storage, docID string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{storage: storage, docID: docID, log: logger}
}

// Elements returns the by-id suppression list.
func (s *Store) Elements(ctx context.Context) ([]string, error) {
	raw, err := s.storage.Get(ctx, s.docID, keyElements)
	if err != nil {
		return nil, fmt.Errorf("read ignored elements: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode ignored elements: %w", err)
	}
	return ids, nil
}

// Values returns the by-value suppression list.
func (s *Store) Values(ctx context.Context) ([]ValueIgnore, error) {
	raw, err := s.storage.Get(ctx, s.docID, keyValues)
	if err != nil {
		return nil, fmt.Errorf("read ignored values: %w", err)
	}
	if raw == nil {
		return nil, nil
	}
	var vals []ValueIgnore
	if err := json.Unmarshal(raw, &vals); err != nil {
		return nil, fmt.Errorf("decode ignored values: %w", err)
	}
	return vals, nil
}

// AddElement adds a node id to the by-id list. Idempotent.
func (s *Store) AddElement(ctx context.Context, nodeID string) error {
	ids, err := s.Elements(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if id == nodeID {
			return nil
		}
	}
	return s.writeElements(ctx, append(ids, nodeID))
}

// RemoveElement drops a node id from the by-id list. Removing an
// absent id is not an error.
func (s *Store) RemoveElement(ctx context.Context, nodeID string) error {
	ids, err := s.Elements(ctx)
	if err != nil {
		return err
	}
	kept := ids[:0]
	for _, id := range ids {
		if id != nodeID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	return s.writeElements(ctx, kept)
}

// AddValue adds a by-value suppression. Idempotent on the
// (valueType, value) pair; hex values are normalized to uppercase.
func (s *Store) AddValue(ctx context.Context, v ValueIgnore) error {
	v = normalizeValue(v)
	vals, err := s.Values(ctx)
	if err != nil {
		return err
	}
	for _, existing := range vals {
		if existing == v {
			return nil
		}
	}
	return s.writeValues(ctx, append(vals, v))
}

// RemoveValue drops a by-value suppression.
func (s *Store) RemoveValue(ctx context.Context, v ValueIgnore) error {
	v = normalizeValue(v)
	vals, err := s.Values(ctx)
	if err != nil {
		return err
	}
	kept := vals[:0]
	for _, existing := range vals {
		if existing != v {
			kept = append(kept, existing)
		}
	}
	if len(kept) == len(vals) {
		return nil
	}
	return s.writeValues(ctx, kept)
}

func normalizeValue(v ValueIgnore) ValueIgnore {
	if v.ValueType == ValueStroke || v.ValueType == ValueFill {
		v.Value = strings.ToUpper(v.Value)
	}
	return v
}

func (s *Store) writeElements(ctx context.Context, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode ignored elements: %w", err)
	}
	if err := s.storage.Set(ctx, s.docID, keyElements, data); err != nil {
		return fmt.Errorf("write ignored elements: %w", err)
	}
	return nil
}

func (s *Store) writeValues(ctx context.Context, vals []ValueIgnore) error {
	data, err := json.Marshal(vals)
	if err != nil {
		return fmt.Errorf("encode ignored values: %w", err)
	}
	if err := s.storage.Set(ctx, s.docID, keyValues, data); err != nil {
		return fmt.Errorf("write ignored values: %w", err)
	}
	return nil
}

// DeletedName marks a by-id entry whose node no longer exists.
const DeletedName = "(Deleted)"

// ElementEntry is one by-id entry enriched with the node's current
// display metadata.
type ElementEntry struct {
	NodeID   string `json:"nodeId"`
	Name     string `json:"name"`
	NodeType string `json:"nodeType,omitempty"`
	Page     string `json:"page,omitempty"`
	Details  string `json:"details,omitempty"`
}

// Summary is the aggregate read over both lists.
type Summary struct {
	Elements []ElementEntry `json:"elements"`
	Values   []ValueIgnore  `json:"values"`
}

// Summarize reads both lists and resolves current node metadata for
// each by-id entry against the oracle. Entries whose node no longer
// exists are kept, marked DeletedName, rather than erroring.
func (s *Store) Summarize(ctx context.Context, oracle document.Oracle) (*Summary, error) {
	ids, err := s.Elements(ctx)
	if err != nil {
		return nil, err
	}
	vals, err := s.Values(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Values: vals}
	for _, id := range ids {
		node, err := oracle.NodeByID(ctx, id)
		if err != nil {
			summary.Elements = append(summary.Elements, ElementEntry{
				NodeID: id,
				Name:   DeletedName,
			})
			continue
		}
		page, err := oracle.PageNameOf(ctx, id)
		if err != nil {
			page = ""
		}
		summary.Elements = append(summary.Elements, ElementEntry{
			NodeID:   id,
			Name:     node.Name(),
			NodeType: string(node.Type()),
			Page:     page,
			Details:  nodeDetails(node),
		})
	}
	return summary, nil
}

// nodeDetails derives a short display detail for a node: a text
// excerpt for text nodes, otherwise the first visible solid fill or
// stroke color.
func nodeDetails(node document.Node) string {
	if text, ok := node.(document.HasTextStyle); ok {
		return Excerpt(text.Characters(), 24)
	}
	if f, ok := node.(document.HasFills); ok {
		for _, p := range f.Fills() {
			if p.IsVisibleSolid() {
				return colorhex.HexAlpha(*p.Color, p.Alpha())
			}
		}
	}
	if st, ok := node.(document.HasStrokes); ok {
		for _, p := range st.Strokes() {
			if p.IsVisibleSolid() {
				return colorhex.HexAlpha(*p.Color, p.Alpha())
			}
		}
	}
	return ""
}

// Excerpt truncates s to at most max runes, appending an ellipsis when
// truncated.
func Excerpt(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
