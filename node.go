package preview

import (
	"strconv"
	"strings"
)

// AttrSourceLine is the attribute carrying a block's 0-based source line.
const AttrSourceLine = "data-source-line"

// Class names the renderer puts on nodes the hosts treat specially.
const (
	// ClassSourceLine is added to every tagged block.
	ClassSourceLine = "source-line"
	// ClassHashtag marks links produced from #tags.
	ClassHashtag = "hashtag"
	// ClassMath marks spans holding raw TeX, together with ClassMathInline
	// or ClassMathDisplay.
	ClassMath        = "math"
	ClassMathInline  = "inline"
	ClassMathDisplay = "display"
)

// NodeType identifies the kind of a rendered node.
type NodeType int

// Node types.
const (
	ElementNode NodeType = iota
	TextNode
	CommentNode
	// DocumentNode is the fragment root holding the top-level blocks.
	DocumentNode
)

func (t NodeType) String() string {
	switch t {
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	case DocumentNode:
		return "document"
	default:
		return "unknown"
	}
}

// Attr is a single element attribute. Keys are unique within a node.
type Attr struct {
	Key string
	Val string
}

// Node is a node of the rendered output tree.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Children []*Node
	// Text holds the content of text and comment nodes.
	Text string
}

// Element returns an element node with the given tag, attributes and children.
func Element(tag string, attrs []Attr, children ...*Node) *Node {
	return &Node{Type: ElementNode, Tag: tag, Attrs: attrs, Children: children}
}

// Text returns a text node.
func Text(s string) *Node {
	return &Node{Type: TextNode, Text: s}
}

// Fragment returns a document root holding children.
func Fragment(children ...*Node) *Node {
	return &Node{Type: DocumentNode, Children: children}
}

// Attr returns the value of the attribute key.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets key to val, appending the attribute if it is absent.
func (n *Node) SetAttr(key, val string) {
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// HasClass reports whether the class attribute lists class.
func (n *Node) HasClass(class string) bool {
	v, ok := n.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(v) {
		if c == class {
			return true
		}
	}
	return false
}

// SourceLine returns the node's source-line tag.
func (n *Node) SourceLine() (int, bool) {
	if n == nil || n.Type != ElementNode {
		return 0, false
	}
	v, ok := n.Attr(AttrSourceLine)
	if !ok {
		return 0, false
	}
	line, err := strconv.Atoi(v)
	if err != nil || line < 0 {
		return 0, false
	}
	return line, true
}

// SetSourceLine tags the node with line.
func (n *Node) SetSourceLine(line int) {
	n.SetAttr(AttrSourceLine, strconv.Itoa(line))
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{Type: n.Type, Tag: n.Tag, Text: n.Text}
	if n.Attrs != nil {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports whether n and o are structurally equal, including
// attribute order and text content.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Type != o.Type || n.Tag != o.Tag || n.Text != o.Text {
		return false
	}
	if !EqualAttrs(n.Attrs, o.Attrs) {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// EqualAttrs reports whether two attribute lists are identical.
func EqualAttrs(a, b []Attr) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// At returns the node at path, or nil when the path does not resolve.
func (n *Node) At(path Path) *Node {
	cur := n
	for _, i := range path {
		if cur == nil || i < 0 || i >= len(cur.Children) {
			return nil
		}
		cur = cur.Children[i]
	}
	return cur
}

// Walk calls fn for n and every descendant in document order. Returning
// false from fn skips the node's children.
func (n *Node) Walk(fn func(n *Node, path Path) bool) {
	n.walk(nil, fn)
}

func (n *Node) walk(path Path, fn func(*Node, Path) bool) {
	if n == nil || !fn(n, path) {
		return
	}
	for i, c := range n.Children {
		c.walk(path.Append(i), fn)
	}
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	var b strings.Builder
	n.Walk(func(c *Node, _ Path) bool {
		if c.Type == TextNode {
			b.WriteString(c.Text)
		}
		return true
	})
	return b.String()
}

// Path addresses a node by child indices from the root.
type Path []int

// Append returns a new path with i appended. The receiver is never aliased.
func (p Path) Append(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Parent returns the path of the parent node.
func (p Path) Parent() Path {
	if len(p) == 0 {
		return nil
	}
	out := make(Path, len(p)-1)
	copy(out, p)
	return out
}

// Last returns the final index of the path, or -1 for the root.
func (p Path) Last() int {
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, i := range p {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(i))
	}
	return b.String()
}
