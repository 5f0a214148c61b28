package json

import (
	"fmt"

	"github.com/fwojciec/preview"
)

// opDTO is the JSON representation of a PatchOp with a type discriminator.
// Root paths are omitted on the wire and decode to nil.
type opDTO struct {
	Type   string    `json:"type"`
	Path   []int     `json:"path,omitempty"`
	Parent []int     `json:"parent,omitempty"`
	Index  *int      `json:"index,omitempty"`
	Node   *nodeDTO  `json:"node,omitempty"`
	Attrs  []attrDTO `json:"attrs,omitempty"`
	Text   *string   `json:"text,omitempty"`
}

func marshalOps(ops []preview.PatchOp) ([]opDTO, error) {
	out := make([]opDTO, len(ops))
	for i, op := range ops {
		dto, err := marshalOp(op)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		out[i] = dto
	}
	return out, nil
}

func marshalOp(op preview.PatchOp) (opDTO, error) {
	switch o := op.(type) {
	case preview.OpInsert:
		node, err := marshalNode(o.Node)
		if err != nil {
			return opDTO{}, err
		}
		index := o.Index
		return opDTO{Type: "insert", Parent: o.Parent, Index: &index, Node: node}, nil
	case preview.OpRemove:
		return opDTO{Type: "remove", Path: o.Path}, nil
	case preview.OpReplace:
		node, err := marshalNode(o.Node)
		if err != nil {
			return opDTO{}, err
		}
		return opDTO{Type: "replace", Path: o.Path, Node: node}, nil
	case preview.OpUpdateAttrs:
		return opDTO{Type: "update_attrs", Path: o.Path, Attrs: marshalAttrs(o.Attrs)}, nil
	case preview.OpUpdateText:
		text := o.Text
		return opDTO{Type: "update_text", Path: o.Path, Text: &text}, nil
	default:
		return opDTO{}, fmt.Errorf("unknown op type %T: %w", op, preview.ErrInvalidOp)
	}
}

func unmarshalOps(dtos []opDTO) ([]preview.PatchOp, error) {
	out := make([]preview.PatchOp, len(dtos))
	for i, dto := range dtos {
		op, err := unmarshalOp(dto)
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		out[i] = op
	}
	return out, nil
}

func unmarshalOp(dto opDTO) (preview.PatchOp, error) {
	switch dto.Type {
	case "insert":
		if dto.Index == nil {
			return nil, fmt.Errorf("insert without index: %w", preview.ErrInvalidOp)
		}
		node, err := unmarshalNode(dto.Node)
		if err != nil {
			return nil, err
		}
		return preview.OpInsert{Parent: preview.Path(dto.Parent), Index: *dto.Index, Node: node}, nil
	case "remove":
		return preview.OpRemove{Path: preview.Path(dto.Path)}, nil
	case "replace":
		node, err := unmarshalNode(dto.Node)
		if err != nil {
			return nil, err
		}
		return preview.OpReplace{Path: preview.Path(dto.Path), Node: node}, nil
	case "update_attrs":
		return preview.OpUpdateAttrs{Path: preview.Path(dto.Path), Attrs: unmarshalAttrs(dto.Attrs)}, nil
	case "update_text":
		var text string
		if dto.Text != nil {
			text = *dto.Text
		}
		return preview.OpUpdateText{Path: preview.Path(dto.Path), Text: text}, nil
	default:
		return nil, fmt.Errorf("unknown op type %q: %w", dto.Type, preview.ErrInvalidOp)
	}
}
