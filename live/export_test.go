package live

import "github.com/fwojciec/preview"

// WithApply replaces the patcher so tests can force divergence.
func WithApply(fn func(root *preview.Node, ops []preview.PatchOp) error) Option {
	return func(p *Previewer) {
		p.apply = fn
	}
}
