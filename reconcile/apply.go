package reconcile

import (
	"fmt"
	"slices"

	"github.com/fwojciec/preview"
)

// Apply applies ops to root in order. Every path is resolved against the
// tree as it stands when its op runs. Inserted and replacement nodes are
// cloned, so root never shares nodes with the source of the ops. Nodes not
// named by an op keep their identity. Replacing the empty path overwrites
// root in place.
func Apply(root *preview.Node, ops []preview.PatchOp) error {
	for k, op := range ops {
		if err := apply(root, op); err != nil {
			return fmt.Errorf("op %d: %w", k, err)
		}
	}
	return nil
}

func apply(root *preview.Node, op preview.PatchOp) error {
	switch op := op.(type) {
	case preview.OpInsert:
		parent := root.At(op.Parent)
		if parent == nil || op.Index < 0 || op.Index > len(parent.Children) {
			return fmt.Errorf("insert %s[%d]: %w", op.Parent, op.Index, preview.ErrInvalidPath)
		}
		if op.Node == nil {
			return fmt.Errorf("insert %s[%d]: nil node: %w", op.Parent, op.Index, preview.ErrInvalidOp)
		}
		parent.Children = slices.Insert(parent.Children, op.Index, op.Node.Clone())

	case preview.OpRemove:
		parent, i, err := child(root, op.Path)
		if err != nil {
			return fmt.Errorf("remove: %w", err)
		}
		parent.Children = slices.Delete(parent.Children, i, i+1)

	case preview.OpReplace:
		if op.Node == nil {
			return fmt.Errorf("replace %s: nil node: %w", op.Path, preview.ErrInvalidOp)
		}
		if len(op.Path) == 0 {
			*root = *op.Node.Clone()
			return nil
		}
		parent, i, err := child(root, op.Path)
		if err != nil {
			return fmt.Errorf("replace: %w", err)
		}
		parent.Children[i] = op.Node.Clone()

	case preview.OpUpdateAttrs:
		n := root.At(op.Path)
		if n == nil {
			return fmt.Errorf("update attrs %s: %w", op.Path, preview.ErrInvalidPath)
		}
		if n.Type != preview.ElementNode {
			return fmt.Errorf("update attrs %s: %s node: %w", op.Path, n.Type, preview.ErrInvalidOp)
		}
		n.Attrs = slices.Clone(op.Attrs)

	case preview.OpUpdateText:
		n := root.At(op.Path)
		if n == nil {
			return fmt.Errorf("update text %s: %w", op.Path, preview.ErrInvalidPath)
		}
		if n.Type != preview.TextNode && n.Type != preview.CommentNode {
			return fmt.Errorf("update text %s: %s node: %w", op.Path, n.Type, preview.ErrInvalidOp)
		}
		n.Text = op.Text

	default:
		return fmt.Errorf("unknown op %T: %w", op, preview.ErrInvalidOp)
	}
	return nil
}

// child resolves a non-root path to its parent and index.
func child(root *preview.Node, path preview.Path) (*preview.Node, int, error) {
	if len(path) == 0 {
		return nil, 0, fmt.Errorf("root has no parent: %w", preview.ErrInvalidPath)
	}
	parent := root.At(path.Parent())
	i := path.Last()
	if parent == nil || i < 0 || i >= len(parent.Children) {
		return nil, 0, fmt.Errorf("%s: %w", path, preview.ErrInvalidPath)
	}
	return parent, i, nil
}
