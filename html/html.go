// Package html converts between HTML markup and preview trees using
// golang.org/x/net/html.
package html

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/preview"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockContainers hold only block children, so newline-bearing whitespace
// between them is formatting rather than content.
var blockContainers = map[atom.Atom]bool{
	atom.Ul:         true,
	atom.Ol:         true,
	atom.Blockquote: true,
	atom.Table:      true,
	atom.Thead:      true,
	atom.Tbody:      true,
	atom.Tfoot:      true,
	atom.Tr:         true,
	atom.Dl:         true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Details:    true,
}

// Parse parses an HTML fragment in a body context and returns it as a
// DocumentNode root. Whitespace-only text containing a newline is dropped
// directly under the root and under block containers.
func Parse(markup []byte) (*preview.Node, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(bytes.NewReader(markup), body)
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}
	root := preview.Fragment()
	for _, n := range nodes {
		if c := convert(n, true); c != nil {
			root.Children = append(root.Children, c)
		}
	}
	return root, nil
}

func convert(n *html.Node, blockParent bool) *preview.Node {
	switch n.Type {
	case html.TextNode:
		if blockParent && isFormatting(n.Data) {
			return nil
		}
		return preview.Text(n.Data)
	case html.CommentNode:
		return &preview.Node{Type: preview.CommentNode, Text: n.Data}
	case html.ElementNode:
		out := &preview.Node{Type: preview.ElementNode, Tag: n.Data}
		if len(n.Attr) > 0 {
			out.Attrs = make([]preview.Attr, 0, len(n.Attr))
			for _, a := range n.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				out.Attrs = append(out.Attrs, preview.Attr{Key: key, Val: a.Val})
			}
		}
		block := blockContainers[n.DataAtom]
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if cc := convert(c, block); cc != nil {
				out.Children = append(out.Children, cc)
			}
		}
		return out
	default:
		return nil
	}
}

func isFormatting(s string) bool {
	return strings.ContainsRune(s, '\n') && strings.TrimSpace(s) == ""
}

// Write serializes the tree to w. A DocumentNode root writes its children.
func Write(w io.Writer, n *preview.Node) error {
	if n == nil {
		return nil
	}
	if n.Type == preview.DocumentNode {
		for _, c := range n.Children {
			if err := Write(w, c); err != nil {
				return err
			}
		}
		return nil
	}
	if err := html.Render(w, toHTML(n)); err != nil {
		return fmt.Errorf("render %s: %w", n.Type, err)
	}
	return nil
}

// Render returns the serialized tree.
func Render(n *preview.Node) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func toHTML(n *preview.Node) *html.Node {
	switch n.Type {
	case preview.TextNode:
		return &html.Node{Type: html.TextNode, Data: n.Text}
	case preview.CommentNode:
		return &html.Node{Type: html.CommentNode, Data: n.Text}
	case preview.DocumentNode:
		out := &html.Node{Type: html.DocumentNode}
		appendChildren(out, n)
		return out
	}
	out := &html.Node{
		Type:     html.ElementNode,
		Data:     n.Tag,
		DataAtom: atom.Lookup([]byte(n.Tag)),
	}
	for _, a := range n.Attrs {
		out.Attr = append(out.Attr, html.Attribute{Key: a.Key, Val: a.Val})
	}
	appendChildren(out, n)
	return out
}

func appendChildren(dst *html.Node, n *preview.Node) {
	for _, c := range n.Children {
		dst.AppendChild(toHTML(c))
	}
}
