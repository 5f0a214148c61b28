// Package mock provides test doubles for preview interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/preview"
)

// Interface compliance checks.
var (
	_ preview.Renderer  = (*Renderer)(nil)
	_ preview.Sanitizer = (*Sanitizer)(nil)
	_ preview.Formatter = (*Formatter)(nil)
	_ preview.Source    = (*Source)(nil)
	_ preview.Editor    = (*Editor)(nil)
	_ preview.Pane      = (*Pane)(nil)
)

// Renderer is a test double for preview.Renderer.
type Renderer struct {
	RenderFn func(src []byte) (*preview.Node, error)
	MarkupFn func(src []byte) ([]byte, error)
}

// Render delegates to RenderFn.
func (r *Renderer) Render(src []byte) (*preview.Node, error) {
	return r.RenderFn(src)
}

// Markup delegates to MarkupFn.
func (r *Renderer) Markup(src []byte) ([]byte, error) {
	return r.MarkupFn(src)
}

// Sanitizer is a test double for preview.Sanitizer.
type Sanitizer struct {
	SanitizeFn func(markup []byte) []byte
}

// Sanitize delegates to SanitizeFn.
func (s *Sanitizer) Sanitize(markup []byte) []byte {
	return s.SanitizeFn(markup)
}

// Formatter is a test double for preview.Formatter.
type Formatter struct {
	PrepareFn func(root *preview.Node) func(ctx context.Context) error
}

// Prepare delegates to PrepareFn.
func (f *Formatter) Prepare(root *preview.Node) func(ctx context.Context) error {
	return f.PrepareFn(root)
}

// Source is a test double for preview.Source.
type Source struct {
	TextFn     func() string
	DocumentFn func() preview.Document
}

// Text delegates to TextFn.
func (s *Source) Text() string {
	return s.TextFn()
}

// Document delegates to DocumentFn.
func (s *Source) Document() preview.Document {
	return s.DocumentFn()
}
