package json

import (
	"fmt"

	"github.com/fwojciec/preview"
)

// nodeDTO is the JSON representation of a Node with a type discriminator.
type nodeDTO struct {
	Type     string     `json:"type"`
	Tag      string     `json:"tag,omitempty"`
	Attrs    []attrDTO  `json:"attrs,omitempty"`
	Children []*nodeDTO `json:"children,omitempty"`
	Text     *string    `json:"text,omitempty"`
}

// attrDTO keeps attributes as a list so their order survives the round trip.
type attrDTO struct {
	Key string `json:"k"`
	Val string `json:"v"`
}

func marshalNode(n *preview.Node) (*nodeDTO, error) {
	if n == nil {
		return nil, fmt.Errorf("nil node: %w", preview.ErrInvalidOp)
	}
	dto := &nodeDTO{Type: n.Type.String()}
	switch n.Type {
	case preview.ElementNode:
		dto.Tag = n.Tag
		dto.Attrs = marshalAttrs(n.Attrs)
	case preview.TextNode, preview.CommentNode:
		text := n.Text
		dto.Text = &text
		return dto, nil
	case preview.DocumentNode:
	default:
		return nil, fmt.Errorf("unknown node type: %d", n.Type)
	}
	dto.Children = make([]*nodeDTO, len(n.Children))
	for i, c := range n.Children {
		child, err := marshalNode(c)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		dto.Children[i] = child
	}
	return dto, nil
}

func unmarshalNode(dto *nodeDTO) (*preview.Node, error) {
	if dto == nil {
		return nil, fmt.Errorf("missing node: %w", preview.ErrInvalidOp)
	}
	var n *preview.Node
	switch dto.Type {
	case "element":
		if dto.Tag == "" {
			return nil, fmt.Errorf("element without tag: %w", preview.ErrInvalidOp)
		}
		n = preview.Element(dto.Tag, unmarshalAttrs(dto.Attrs))
	case "text", "comment":
		var text string
		if dto.Text != nil {
			text = *dto.Text
		}
		if dto.Type == "comment" {
			return &preview.Node{Type: preview.CommentNode, Text: text}, nil
		}
		return preview.Text(text), nil
	case "document":
		n = preview.Fragment()
	default:
		return nil, fmt.Errorf("unknown node type: %q", dto.Type)
	}
	if len(dto.Children) > 0 {
		n.Children = make([]*preview.Node, len(dto.Children))
	}
	for i, c := range dto.Children {
		child, err := unmarshalNode(c)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		n.Children[i] = child
	}
	return n, nil
}

func marshalAttrs(attrs []preview.Attr) []attrDTO {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attrDTO, len(attrs))
	for i, a := range attrs {
		out[i] = attrDTO{Key: a.Key, Val: a.Val}
	}
	return out
}

func unmarshalAttrs(dtos []attrDTO) []preview.Attr {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]preview.Attr, len(dtos))
	for i, a := range dtos {
		out[i] = preview.Attr{Key: a.Key, Val: a.Val}
	}
	return out
}
