package goldmark

import (
	"net/url"
	"unicode/utf8"

	"github.com/fwojciec/preview"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindHashtag is the node kind of a #tag.
var KindHashtag = ast.NewNodeKind("Hashtag")

// Hashtag is a #tag. Its single child is the text "#tag".
type Hashtag struct {
	ast.BaseInline
	Tag []byte
}

func (n *Hashtag) Kind() ast.NodeKind { return KindHashtag }

func (n *Hashtag) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Tag": string(n.Tag)}, nil)
}

// hashtagExtension turns #word into a link under base.
type hashtagExtension struct {
	base string
}

func (e *hashtagExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithInlineParsers(util.Prioritized(hashtagParser{}, 500)),
		parser.WithASTTransformers(util.Prioritized(hashtagUnnester{}, 900)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(&hashtagRenderer{base: e.base}, 500)))
}

type hashtagParser struct{}

func (hashtagParser) Trigger() []byte {
	return []byte{'#'}
}

func (hashtagParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	if isTagRune(block.PrecendingCharacter()) {
		return nil
	}
	line, seg := block.PeekLine()
	n := 1
	for n < len(line) {
		r, size := utf8.DecodeRune(line[n:])
		if !isTagRune(r) {
			break
		}
		n += size
	}
	if n == 1 {
		return nil
	}
	block.Advance(n)

	tag := &Hashtag{Tag: line[1:n]}
	tag.AppendChild(tag, ast.NewTextSegment(text.NewSegment(seg.Start, seg.Start+n)))
	return tag
}

// isTagRune reports ASCII letters and digits, underscore, and Hangul
// syllables.
func isTagRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
		return true
	case r >= 0xAC00 && r <= 0xD7A3:
		return true
	}
	return false
}

// hashtagUnnester flattens hashtags inside link text back to plain text.
type hashtagUnnester struct{}

func (hashtagUnnester) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	var nested []ast.Node
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != KindHashtag {
			return ast.WalkContinue, nil
		}
		for p := n.Parent(); p != nil; p = p.Parent() {
			if p.Kind() == ast.KindLink || p.Kind() == ast.KindAutoLink {
				nested = append(nested, n)
				break
			}
		}
		return ast.WalkSkipChildren, nil
	})
	for _, n := range nested {
		parent := n.Parent()
		for c := n.FirstChild(); c != nil; {
			next := c.NextSibling()
			parent.InsertBefore(parent, n, c)
			c = next
		}
		parent.RemoveChild(parent, n)
	}
}

type hashtagRenderer struct {
	base string
}

func (r *hashtagRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindHashtag, r.render)
}

func (r *hashtagRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	n := node.(*Hashtag)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML([]byte(r.base + url.PathEscape(string(n.Tag)))))
	_, _ = w.WriteString(`" class="` + preview.ClassHashtag + `">`)
	return ast.WalkContinue, nil
}
