// Package document implements the file-based design-document host: a
// JSON snapshot of a design file exposing the node tree, variable and
// collection records, component records, and the set of currently
// available remote libraries. The scan pipeline consumes it strictly
// read-only through the Oracle and Storage interfaces.
package document

import (
	"encoding/json"

	"github.com/dsyslab/tokenlens/pkg/colorhex"
)

// NodeType discriminates the node tagged union.
type NodeType string

const (
	NodePage      NodeType = "PAGE"
	NodeFrame     NodeType = "FRAME"
	NodeGroup     NodeType = "GROUP"
	NodeSection   NodeType = "SECTION"
	NodeComponent NodeType = "COMPONENT"
	NodeInstance  NodeType = "INSTANCE"
	NodeRectangle NodeType = "RECTANGLE"
	NodeEllipse   NodeType = "ELLIPSE"
	NodePolygon   NodeType = "POLYGON"
	NodeStar      NodeType = "STAR"
	NodeVector    NodeType = "VECTOR"
	NodeLine      NodeType = "LINE"
	NodeText      NodeType = "TEXT"
)

// Node is the minimal surface every tree node exposes. Optional
// capabilities (children, fills, strokes, text) are separate interfaces
// checked by type assertion rather than ad hoc property probing.
type Node interface {
	ID() string
	Name() string
	Type() NodeType
	// BoundVariables returns the node's raw bound-variable slots keyed
	// by property name. Values may be a single alias, an array of
	// aliases (multi-fill), or a keyed map of aliases (per-corner).
	BoundVariables() map[string]json.RawMessage
}

// HasChildren is implemented by container nodes.
type HasChildren interface {
	Node
	Children() []Node
}

// HasFills is implemented by nodes carrying fill paints.
type HasFills interface {
	Node
	Fills() []Paint
}

// HasStrokes is implemented by nodes carrying stroke paints.
type HasStrokes interface {
	Node
	Strokes() []Paint
}

// HasTextStyle is implemented by text nodes.
type HasTextStyle interface {
	Node
	Characters() string
	// TextStyleID is empty when the text is not linked to a shared style.
	TextStyleID() string
}

// Alias is a reference to another variable, used both as a mode value
// and as a bound-variable slot entry.
type Alias struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// IsVariableAlias reports whether the alias carries the expected tag
// and a non-empty target id.
func (a Alias) IsVariableAlias() bool {
	return a.Type == "VARIABLE_ALIAS" && a.ID != ""
}

// Paint is a single fill or stroke entry.
type Paint struct {
	Type          string          `json:"type"`
	Visible       *bool           `json:"visible,omitempty"`
	Opacity       *float64        `json:"opacity,omitempty"`
	Color         *colorhex.Color `json:"color,omitempty"`
	BoundVariable *Alias          `json:"boundVariable,omitempty"`
}

// IsVisibleSolid reports whether the paint is a solid color that is
// actually rendered (visible defaults to true when omitted).
func (p Paint) IsVisibleSolid() bool {
	if p.Type != "SOLID" || p.Color == nil {
		return false
	}
	return p.Visible == nil || *p.Visible
}

// Alpha returns the paint's effective alpha (opacity defaults to 1).
func (p Paint) Alpha() float64 {
	if p.Opacity == nil {
		return 1
	}
	return *p.Opacity
}

// Bound reports whether the paint itself references a variable.
func (p Paint) Bound() bool {
	return p.BoundVariable != nil && p.BoundVariable.IsVariableAlias()
}

// VariableType is a variable's resolved value type.
type VariableType string

const (
	TypeColor   VariableType = "COLOR"
	TypeFloat   VariableType = "FLOAT"
	TypeString  VariableType = "STRING"
	TypeBoolean VariableType = "BOOLEAN"
)

// Variable is a design token record. Mode values stay raw JSON until
// the enrichment stage interprets them (literal vs. alias).
type Variable struct {
	ID           string                     `json:"id"`
	Name         string                     `json:"name"`
	ResolvedType VariableType               `json:"resolvedType"`
	CollectionID string                     `json:"collectionId"`
	ValuesByMode map[string]json.RawMessage `json:"valuesByMode"`
}

// Mode is one named dimension of a collection.
type Mode struct {
	ModeID string `json:"modeId"`
	Name   string `json:"name"`
}

// VariableCollection groups variables sharing a mode set.
type VariableCollection struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Modes  []Mode `json:"modes"`
	Remote bool   `json:"remote"`
	// Key is the collection's stable publish key. For remote
	// collections its last /-delimited segment is the library name.
	Key string `json:"key"`
}

// Component is a component definition referenced by instance nodes.
// LibraryKey is empty for components local to this document.
type Component struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Remote     bool   `json:"remote"`
	LibraryKey string `json:"libraryKey"`
}

// DecodedValue is a mode value after interpretation: exactly one of
// Alias or Literal is set. Color literals decode to colorhex.Color;
// other literals to bool, float64, or string.
type DecodedValue struct {
	Alias   *Alias
	Literal any
}

// DecodeModeValue interprets a raw mode value. Alias objects win over
// literal interpretation; a color object must expose all of r, g, b.
func DecodeModeValue(raw json.RawMessage) (DecodedValue, error) {
	var alias Alias
	if err := json.Unmarshal(raw, &alias); err == nil && alias.IsVariableAlias() {
		return DecodedValue{Alias: &alias}, nil
	}

	var probe struct {
		R *float64 `json:"r"`
		G *float64 `json:"g"`
		B *float64 `json:"b"`
	}
	if err := json.Unmarshal(raw, &probe); err == nil &&
		probe.R != nil && probe.G != nil && probe.B != nil {
		var c colorhex.Color
		if err := json.Unmarshal(raw, &c); err != nil {
			return DecodedValue{}, err
		}
		return DecodedValue{Literal: c}, nil
	}

	var lit any
	if err := json.Unmarshal(raw, &lit); err != nil {
		return DecodedValue{}, err
	}
	return DecodedValue{Literal: lit}, nil
}

// DecodeAliases parses one bound-variable slot into its alias list,
// accepting the three slot shapes (single, array, keyed map). A slot
// that parses but contains no well-formed alias yields an empty list;
// a slot that cannot be parsed at all returns false.
func DecodeAliases(raw json.RawMessage) ([]Alias, bool) {
	var single Alias
	if err := json.Unmarshal(raw, &single); err == nil && single.IsVariableAlias() {
		return []Alias{single}, true
	}

	var list []Alias
	if err := json.Unmarshal(raw, &list); err == nil {
		out := make([]Alias, 0, len(list))
		for _, a := range list {
			if a.IsVariableAlias() {
				out = append(out, a)
			}
		}
		return out, true
	}

	var keyed map[string]Alias
	if err := json.Unmarshal(raw, &keyed); err == nil {
		out := make([]Alias, 0, len(keyed))
		for _, a := range keyed {
			if a.IsVariableAlias() {
				out = append(out, a)
			}
		}
		return out, true
	}

	return nil, false
}
