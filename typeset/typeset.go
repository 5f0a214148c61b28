// Package typeset converts math spans of a rendered tree to Unicode text
// after each patch, keyed by node identity so results for untouched spans
// carry over between renders.
package typeset

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/fwojciec/preview"
)

var _ preview.Formatter = (*Formatter)(nil)

// Result is the typeset form of one math span.
type Result struct {
	TeX     string
	Text    string
	Display bool
	Err     error
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithLogger sets the logger for spans that fail to typeset.
func WithLogger(l *slog.Logger) Option {
	return func(f *Formatter) {
		f.logger = l
	}
}

// WithConverter replaces the TeX converter.
func WithConverter(fn func(tex string) (string, error)) Option {
	return func(f *Formatter) {
		if fn != nil {
			f.convert = fn
		}
	}
}

// Formatter is a preview.Formatter for math spans. Lookup reads its
// results; the tree itself is never modified.
type Formatter struct {
	logger  *slog.Logger
	convert func(string) (string, error)

	mu      sync.Mutex
	results map[*preview.Node]Result
	want    map[*preview.Node]string // TeX of every span in the latest tree
}

// New returns a Formatter using Typeset.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		convert: Typeset,
		results: make(map[*preview.Node]Result),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

type span struct {
	node    *preview.Node
	tex     string
	display bool
}

// Prepare captures the math spans of root and drops results for spans that
// are gone. The returned job typesets spans that are new or whose TeX
// changed. It returns nil when nothing needs work.
func (f *Formatter) Prepare(root *preview.Node) func(ctx context.Context) error {
	var spans []span
	root.Walk(func(n *preview.Node, _ preview.Path) bool {
		if n.Type == preview.ElementNode && n.HasClass(preview.ClassMath) {
			spans = append(spans, span{node: n, tex: n.TextContent(), display: n.HasClass(preview.ClassMathDisplay)})
			return false
		}
		return true
	})

	f.mu.Lock()
	f.want = make(map[*preview.Node]string, len(spans))
	var todo []span
	for _, s := range spans {
		f.want[s.node] = s.tex
		if r, ok := f.results[s.node]; ok && r.TeX == s.tex && r.Display == s.display {
			continue
		}
		todo = append(todo, s)
	}
	for n := range f.results {
		if _, ok := f.want[n]; !ok {
			delete(f.results, n)
		}
	}
	f.mu.Unlock()

	if len(todo) == 0 {
		return nil
	}
	return func(ctx context.Context) error {
		return f.run(ctx, todo)
	}
}

func (f *Formatter) run(ctx context.Context, todo []span) error {
	var errs []error
	for _, s := range todo {
		if err := ctx.Err(); err != nil {
			return err
		}
		text, err := f.convert(s.tex)
		if err != nil {
			f.logger.Warn("typeset failed", "tex", s.tex, "error", err)
			errs = append(errs, err)
			text = s.tex
		}
		f.mu.Lock()
		// Spans removed or edited since Prepare are left to the newer job.
		if tex, ok := f.want[s.node]; ok && tex == s.tex {
			f.results[s.node] = Result{TeX: s.tex, Text: text, Display: s.display, Err: err}
		}
		f.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Lookup returns the typeset result for a math span node.
func (f *Formatter) Lookup(n *preview.Node) (Result, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.results[n]
	return r, ok
}

// Len returns the number of stored results.
func (f *Formatter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}
