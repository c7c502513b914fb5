package document

import (
	"encoding/json"
	"fmt"
)

// baseNode carries the fields every node shares.
type baseNode struct {
	IDField        string                     `json:"id"`
	NameField      string                     `json:"name"`
	TypeField      NodeType                   `json:"type"`
	BoundVarsField map[string]json.RawMessage `json:"boundVariables,omitempty"`
}

func (b *baseNode) ID() string       { return b.IDField }
func (b *baseNode) Name() string     { return b.NameField }
func (b *baseNode) Type() NodeType   { return b.TypeField }
func (b *baseNode) BoundVariables() map[string]json.RawMessage {
	return b.BoundVarsField
}

// PageNode is a top-level page. Pages have children but no paints.
type PageNode struct {
	baseNode
	ChildrenField []Node
}

func (p *PageNode) Children() []Node { return p.ChildrenField }

// FrameNode covers container nodes that also paint themselves
// (FRAME, GROUP, SECTION, COMPONENT).
type FrameNode struct {
	baseNode
	ChildrenField []Node
	FillsField    []Paint `json:"fills,omitempty"`
	StrokesField  []Paint `json:"strokes,omitempty"`
}

func (f *FrameNode) Children() []Node { return f.ChildrenField }
func (f *FrameNode) Fills() []Paint   { return f.FillsField }
func (f *FrameNode) Strokes() []Paint { return f.StrokesField }

// ShapeNode covers leaf geometry (RECTANGLE, ELLIPSE, VECTOR, ...).
type ShapeNode struct {
	baseNode
	FillsField   []Paint `json:"fills,omitempty"`
	StrokesField []Paint `json:"strokes,omitempty"`
}

func (s *ShapeNode) Fills() []Paint   { return s.FillsField }
func (s *ShapeNode) Strokes() []Paint { return s.StrokesField }

// TextNode is a text layer.
type TextNode struct {
	baseNode
	FillsField      []Paint `json:"fills,omitempty"`
	StrokesField    []Paint `json:"strokes,omitempty"`
	CharactersField string  `json:"characters"`
	TextStyleField  string  `json:"textStyleId"`
}

func (t *TextNode) Fills() []Paint      { return t.FillsField }
func (t *TextNode) Strokes() []Paint    { return t.StrokesField }
func (t *TextNode) Characters() string  { return t.CharactersField }
func (t *TextNode) TextStyleID() string { return t.TextStyleField }

// InstanceNode is a placed component instance.
type InstanceNode struct {
	baseNode
	ChildrenField    []Node
	FillsField       []Paint `json:"fills,omitempty"`
	StrokesField     []Paint `json:"strokes,omitempty"`
	ComponentIDField string  `json:"componentId"`
}

func (i *InstanceNode) Children() []Node   { return i.ChildrenField }
func (i *InstanceNode) Fills() []Paint     { return i.FillsField }
func (i *InstanceNode) Strokes() []Paint   { return i.StrokesField }
func (i *InstanceNode) ComponentID() string { return i.ComponentIDField }

// rawNode is the decode envelope: common fields plus raw children so
// the tree can be decoded recursively into the right concrete types.
type rawNode struct {
	baseNode
	Children    []json.RawMessage `json:"children,omitempty"`
	Fills       []Paint           `json:"fills,omitempty"`
	Strokes     []Paint           `json:"strokes,omitempty"`
	Characters  string            `json:"characters"`
	TextStyleID string            `json:"textStyleId"`
	ComponentID string            `json:"componentId"`
}

// decodeNode turns one raw JSON node (and its subtree) into a Node.
func decodeNode(raw json.RawMessage) (Node, error) {
	var rn rawNode
	if err := json.Unmarshal(raw, &rn); err != nil {
		return nil, fmt.Errorf("decode node: %w", err)
	}
	if rn.IDField == "" {
		return nil, fmt.Errorf("decode node: missing id")
	}

	decodeChildren := func() ([]Node, error) {
		children := make([]Node, 0, len(rn.Children))
		for i, rc := range rn.Children {
			child, err := decodeNode(rc)
			if err != nil {
				return nil, fmt.Errorf("node %s child %d: %w", rn.IDField, i, err)
			}
			children = append(children, child)
		}
		return children, nil
	}

	switch rn.TypeField {
	case NodePage:
		children, err := decodeChildren()
		if err != nil {
			return nil, err
		}
		return &PageNode{baseNode: rn.baseNode, ChildrenField: children}, nil
	case NodeFrame, NodeGroup, NodeSection, NodeComponent:
		children, err := decodeChildren()
		if err != nil {
			return nil, err
		}
		return &FrameNode{
			baseNode:      rn.baseNode,
			ChildrenField: children,
			FillsField:    rn.Fills,
			StrokesField:  rn.Strokes,
		}, nil
	case NodeInstance:
		children, err := decodeChildren()
		if err != nil {
			return nil, err
		}
		return &InstanceNode{
			baseNode:         rn.baseNode,
			ChildrenField:    children,
			FillsField:       rn.Fills,
			StrokesField:     rn.Strokes,
			ComponentIDField: rn.ComponentID,
		}, nil
	case NodeText:
		return &TextNode{
			baseNode:        rn.baseNode,
			FillsField:      rn.Fills,
			StrokesField:    rn.Strokes,
			CharactersField: rn.Characters,
			TextStyleField:  rn.TextStyleID,
		}, nil
	case NodeRectangle, NodeEllipse, NodePolygon, NodeStar, NodeVector, NodeLine:
		return &ShapeNode{
			baseNode:     rn.baseNode,
			FillsField:   rn.Fills,
			StrokesField: rn.Strokes,
		}, nil
	default:
		// Unknown node kinds still participate in traversal if they
		// declared children; otherwise they are opaque leaves.
		if len(rn.Children) > 0 {
			children, err := decodeChildren()
			if err != nil {
				return nil, err
			}
			return &FrameNode{
				baseNode:      rn.baseNode,
				ChildrenField: children,
				FillsField:    rn.Fills,
				StrokesField:  rn.Strokes,
			}, nil
		}
		return &ShapeNode{
			baseNode:     rn.baseNode,
			FillsField:   rn.Fills,
			StrokesField: rn.Strokes,
		}, nil
	}
}
