package preview_test

import (
	"testing"

	"github.com/fwojciec/preview"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func para(line int, text string) *preview.Node {
	n := preview.Element("p", nil, preview.Text(text))
	n.SetSourceLine(line)
	return n
}

func TestNode_SourceLine(t *testing.T) {
	t.Parallel()

	t.Run("tagged element", func(t *testing.T) {
		t.Parallel()
		line, ok := para(4, "x").SourceLine()
		require.True(t, ok)
		assert.Equal(t, 4, line)
	})

	t.Run("untagged element", func(t *testing.T) {
		t.Parallel()
		_, ok := preview.Element("em", nil).SourceLine()
		assert.False(t, ok)
	})

	t.Run("malformed tag is not addressable", func(t *testing.T) {
		t.Parallel()
		n := preview.Element("p", []preview.Attr{{Key: preview.AttrSourceLine, Val: "x"}})
		_, ok := n.SourceLine()
		assert.False(t, ok)
	})

	t.Run("text nodes are never addressable", func(t *testing.T) {
		t.Parallel()
		n := preview.Text("3")
		n.Attrs = []preview.Attr{{Key: preview.AttrSourceLine, Val: "3"}}
		_, ok := n.SourceLine()
		assert.False(t, ok)
	})

	t.Run("set replaces existing value in place", func(t *testing.T) {
		t.Parallel()
		n := preview.Element("p", []preview.Attr{{Key: preview.AttrSourceLine, Val: "1"}, {Key: "class", Val: "source-line"}})
		n.SetSourceLine(7)
		assert.Equal(t, []preview.Attr{{Key: preview.AttrSourceLine, Val: "7"}, {Key: "class", Val: "source-line"}}, n.Attrs)
	})
}

func TestNode_Clone(t *testing.T) {
	t.Parallel()

	orig := preview.Fragment(para(0, "a"), preview.Element("ul", nil, preview.Element("li", nil, preview.Text("b"))))
	c := orig.Clone()

	assert.True(t, orig.Equal(c))
	assert.NotSame(t, orig.Children[0], c.Children[0])

	c.Children[0].SetAttr("class", "changed")
	c.Children[1].Children[0].Children[0].Text = "z"
	assert.False(t, orig.Equal(c))
	_, ok := orig.Children[0].Attr("class")
	assert.False(t, ok)
	assert.Equal(t, "b", orig.Children[1].Children[0].Children[0].Text)
}

func TestNode_Equal(t *testing.T) {
	t.Parallel()

	t.Run("attribute order matters", func(t *testing.T) {
		t.Parallel()
		a := preview.Element("a", []preview.Attr{{Key: "href", Val: "x"}, {Key: "class", Val: "y"}})
		b := preview.Element("a", []preview.Attr{{Key: "class", Val: "y"}, {Key: "href", Val: "x"}})
		assert.False(t, a.Equal(b))
	})

	t.Run("nil handling", func(t *testing.T) {
		t.Parallel()
		var n *preview.Node
		assert.True(t, n.Equal(nil))
		assert.False(t, n.Equal(preview.Text("")))
	})

	t.Run("type distinguishes text and comment", func(t *testing.T) {
		t.Parallel()
		c := &preview.Node{Type: preview.CommentNode, Text: "x"}
		assert.False(t, preview.Text("x").Equal(c))
	})
}

func TestNode_At(t *testing.T) {
	t.Parallel()

	root := preview.Fragment(para(0, "a"), preview.Element("ul", nil, preview.Element("li", nil, preview.Text("b"))))

	assert.Same(t, root, root.At(nil))
	assert.Equal(t, "b", root.At(preview.Path{1, 0, 0}).Text)
	assert.Nil(t, root.At(preview.Path{2}))
	assert.Nil(t, root.At(preview.Path{0, 0, 0}))
	assert.Nil(t, root.At(preview.Path{-1}))
}

func TestNode_Walk(t *testing.T) {
	t.Parallel()

	root := preview.Fragment(para(0, "a"), para(2, "b"))
	var paths []string
	root.Walk(func(n *preview.Node, p preview.Path) bool {
		paths = append(paths, p.String())
		return n.Tag != "p" || p.Last() != 1
	})
	assert.Equal(t, []string{"/", "/0", "/0/0", "/1"}, paths)
	assert.Equal(t, "ab", root.TextContent())
}

func TestNode_HasClass(t *testing.T) {
	t.Parallel()

	n := preview.Element("span", []preview.Attr{{Key: "class", Val: "math  display"}})
	assert.True(t, n.HasClass("math"))
	assert.True(t, n.HasClass("display"))
	assert.False(t, n.HasClass("inline"))
}

func TestPath(t *testing.T) {
	t.Parallel()

	p := preview.Path{1, 2}
	q := p.Append(3)
	r := p.Append(4)
	assert.Equal(t, preview.Path{1, 2, 3}, q)
	assert.Equal(t, preview.Path{1, 2, 4}, r)
	assert.Equal(t, preview.Path{1}, p.Parent())
	assert.Nil(t, preview.Path{}.Parent())
	assert.Equal(t, 2, p.Last())
	assert.Equal(t, -1, preview.Path(nil).Last())
	assert.Equal(t, "/1/2", p.String())
	assert.Equal(t, "/", preview.Path(nil).String())
}
