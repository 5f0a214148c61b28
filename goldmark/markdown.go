// Package goldmark renders markdown to source-line tagged preview trees
// using goldmark for parsing and HTML rendering.
package goldmark

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/html"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitizer filters markup through s before it is parsed into a tree.
func WithSanitizer(s preview.Sanitizer) Option {
	return func(r *Renderer) {
		r.sanitizer = s
	}
}

// WithHashtags turns #word into links under base. An empty base disables
// hashtags.
func WithHashtags(base string) Option {
	return func(r *Renderer) {
		r.tagBase = base
	}
}

// WithMath enables $...$ and $$...$$ spans.
func WithMath(enabled bool) Option {
	return func(r *Renderer) {
		r.math = enabled
	}
}

// Renderer converts markdown to HTML and preview trees.
type Renderer struct {
	sanitizer preview.Sanitizer
	tagBase   string
	math      bool
	md        goldmark.Markdown
}

var _ preview.Renderer = (*Renderer)(nil)

// New returns a Renderer with GFM, footnotes, definition lists, typographic
// punctuation, heading IDs and hard line breaks. Hashtags and math are on by
// default.
func New(opts ...Option) *Renderer {
	r := &Renderer{tagBase: preview.DefaultTagBase, math: true}
	for _, opt := range opts {
		opt(r)
	}

	exts := []goldmark.Extender{
		extension.GFM,
		extension.Footnote,
		extension.DefinitionList,
		extension.Typographer,
	}
	if r.tagBase != "" {
		exts = append(exts, &hashtagExtension{base: r.tagBase})
	}
	if r.math {
		exts = append(exts, mathExtension{})
	}
	r.md = goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(util.Prioritized(lineTagger{}, 1000)),
		),
		goldmark.WithRendererOptions(
			ghtml.WithUnsafe(),
			ghtml.WithHardWraps(),
		),
	)
	return r
}

// Markup renders src to HTML with block roots tagged by source line.
func (r *Renderer) Markup(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}
	out := buf.Bytes()
	if r.sanitizer != nil {
		out = r.sanitizer.Sanitize(out)
	}
	return out, nil
}

// Render renders src to a preview tree.
func (r *Renderer) Render(src []byte) (*preview.Node, error) {
	markup, err := r.Markup(src)
	if err != nil {
		return nil, err
	}
	return html.Parse(markup)
}
