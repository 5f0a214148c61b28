package preview

import "context"

// Renderer turns source text into a tagged rendered tree.
type Renderer interface {
	// Render returns the rendered fragment for src with block roots tagged
	// by source line.
	Render(src []byte) (*Node, error)
	// Markup returns the plain rendered markup for src.
	Markup(src []byte) ([]byte, error)
}

// Sanitizer applies a markup safety policy. Its output is forwarded as is.
type Sanitizer interface {
	Sanitize(markup []byte) []byte
}

// Formatter is an optional post-render pass, such as math typesetting, that
// completes after the patch has landed. Prepare runs synchronously against
// the live tree and must only capture what it needs; the returned job runs
// asynchronously and must not touch the tree. A nil job means no work.
type Formatter interface {
	Prepare(root *Node) func(ctx context.Context) error
}
