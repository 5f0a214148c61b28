package reconcile_test

import (
	"testing"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/reconcile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("paths resolve against the current tree", func(t *testing.T) {
		t.Parallel()
		root := preview.Fragment(preview.Text("a"), preview.Text("b"), preview.Text("c"))
		ops := []preview.PatchOp{
			preview.OpRemove{Path: preview.Path{0}},
			// After the removal "c" sits at index 1.
			preview.OpUpdateText{Path: preview.Path{1}, Text: "C"},
			preview.OpInsert{Parent: preview.Path{}, Index: 0, Node: preview.Text("z")},
		}
		require.NoError(t, reconcile.Apply(root, ops))
		assert.True(t, root.Equal(preview.Fragment(preview.Text("z"), preview.Text("b"), preview.Text("C"))))
	})

	t.Run("inserted nodes are cloned", func(t *testing.T) {
		t.Parallel()
		root := preview.Fragment()
		n := preview.Element("p", nil, preview.Text("x"))
		require.NoError(t, reconcile.Apply(root, []preview.PatchOp{preview.OpInsert{Index: 0, Node: n}}))
		assert.NotSame(t, n, root.Children[0])
		n.Children[0].Text = "changed"
		assert.Equal(t, "x", root.Children[0].Children[0].Text)
	})

	t.Run("attrs are copied", func(t *testing.T) {
		t.Parallel()
		root := preview.Fragment(preview.Element("p", nil))
		attrs := []preview.Attr{{Key: "class", Val: "a"}}
		require.NoError(t, reconcile.Apply(root, []preview.PatchOp{preview.OpUpdateAttrs{Path: preview.Path{0}, Attrs: attrs}}))
		attrs[0].Val = "b"
		v, _ := root.Children[0].Attr("class")
		assert.Equal(t, "a", v)
	})

	t.Run("root replace keeps the root pointer", func(t *testing.T) {
		t.Parallel()
		root := preview.Fragment(preview.Text("a"))
		orig := root
		require.NoError(t, reconcile.Apply(root, []preview.PatchOp{preview.OpReplace{Path: preview.Path{}, Node: preview.Fragment(preview.Text("b"))}}))
		assert.Same(t, orig, root)
		assert.Equal(t, "b", root.Children[0].Text)
	})

	t.Run("replace child", func(t *testing.T) {
		t.Parallel()
		root := preview.Fragment(preview.Element("p", nil), preview.Element("p", nil))
		second := root.Children[1]
		require.NoError(t, reconcile.Apply(root, []preview.PatchOp{preview.OpReplace{Path: preview.Path{0}, Node: preview.Element("h1", nil)}}))
		assert.Equal(t, "h1", root.Children[0].Tag)
		assert.Same(t, second, root.Children[1])
	})
}

func TestApply_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		op   preview.PatchOp
		want error
	}{
		{"insert past end", preview.OpInsert{Parent: preview.Path{}, Index: 5, Node: preview.Text("x")}, preview.ErrInvalidPath},
		{"insert under missing parent", preview.OpInsert{Parent: preview.Path{3}, Index: 0, Node: preview.Text("x")}, preview.ErrInvalidPath},
		{"insert nil node", preview.OpInsert{Parent: preview.Path{}, Index: 0}, preview.ErrInvalidOp},
		{"remove root", preview.OpRemove{Path: preview.Path{}}, preview.ErrInvalidPath},
		{"remove missing", preview.OpRemove{Path: preview.Path{1}}, preview.ErrInvalidPath},
		{"replace missing", preview.OpReplace{Path: preview.Path{0, 4}, Node: preview.Text("x")}, preview.ErrInvalidPath},
		{"replace nil", preview.OpReplace{Path: preview.Path{0}}, preview.ErrInvalidOp},
		{"attrs on text", preview.OpUpdateAttrs{Path: preview.Path{0, 0}}, preview.ErrInvalidOp},
		{"attrs missing", preview.OpUpdateAttrs{Path: preview.Path{9}}, preview.ErrInvalidPath},
		{"text on element", preview.OpUpdateText{Path: preview.Path{0}, Text: "x"}, preview.ErrInvalidOp},
		{"text missing", preview.OpUpdateText{Path: preview.Path{0, 1}, Text: "x"}, preview.ErrInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			root := preview.Fragment(preview.Element("p", nil, preview.Text("a")))
			err := reconcile.Apply(root, []preview.PatchOp{tt.op})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "op 0")
		})
	}
}
