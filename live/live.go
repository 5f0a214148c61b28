// Package live keeps a rendered preview tree in step with a source buffer.
// It owns the live tree, the previous snapshot and the render scheduler,
// and publishes each applied patch to subscribers.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/reconcile"
	"github.com/fwojciec/preview/schedule"
	"github.com/fwojciec/preview/scroll"
)

// ErrDriverBusy is returned by a sync while another driver holds the scroll
// positions.
var ErrDriverBusy = errors.New("another scroll driver is active")

// Update is one change delivered to subscribers.
type Update struct {
	Generation uint64
	// Ops transforms the subscriber's copy of the previous generation into
	// this one. Nodes referenced by ops are shared and must not be mutated.
	Ops []preview.PatchOp
	// Reset means Root replaces the subscriber's copy wholesale.
	Reset bool
	Root  *preview.Node
	// Formatted reports that the formatter finished for Generation.
	Formatted bool
}

// Option configures a Previewer.
type Option func(*Previewer)

// WithWindow sets the debounce window.
func WithWindow(d time.Duration) Option {
	return func(p *Previewer) {
		p.schedOpts = append(p.schedOpts, schedule.WithWindow(d))
	}
}

// WithAfterFunc replaces the scheduler's timer factory.
func WithAfterFunc(fn schedule.AfterFunc) Option {
	return func(p *Previewer) {
		p.schedOpts = append(p.schedOpts, schedule.WithAfterFunc(fn))
	}
}

// WithFormatter runs f after every applied patch.
func WithFormatter(f preview.Formatter) Option {
	return func(p *Previewer) {
		p.formatter = f
	}
}

// WithStrict makes patch invariant violations and tag order violations
// render errors instead of logged recoveries.
func WithStrict(strict bool) Option {
	return func(p *Previewer) {
		p.strict = strict
	}
}

// WithMode sets the initial preview mode.
func WithMode(m preview.Mode) Option {
	return func(p *Previewer) {
		p.mode = m
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Previewer) {
		p.logger = l
	}
}

// Previewer renders a source into a live tree incrementally.
type Previewer struct {
	source    preview.Source
	renderer  preview.Renderer
	formatter preview.Formatter
	logger    *slog.Logger
	strict    bool
	apply     func(root *preview.Node, ops []preview.PatchOp) error
	schedOpts []schedule.Option
	sched     *schedule.Scheduler
	coord     scroll.Coordinator

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	live    *preview.Node
	prev    *preview.Snapshot
	index   *preview.LineIndex
	mode    preview.Mode
	subs    map[int]func(Update)
	nextSub int
	closed  bool

	fmu       sync.Mutex
	formatErr error
}

// New returns a Previewer for source. Nothing renders until the first
// signal.
func New(source preview.Source, renderer preview.Renderer, opts ...Option) *Previewer {
	p := &Previewer{
		source:   source,
		renderer: renderer,
		apply:    reconcile.Apply,
		live:     preview.Fragment(),
		mode:     preview.ModeSideBySide,
		subs:     make(map[int]func(Update)),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	p.sched = schedule.New(p.render, append([]schedule.Option{schedule.WithLogger(p.logger)}, p.schedOpts...)...)
	return p
}

// Render signals a change. Hidden previews ignore it.
func (p *Previewer) Render() error {
	if p.Mode() == preview.ModeHidden {
		return nil
	}
	return p.sched.Signal()
}

// RenderNow renders immediately, cancelling any pending window.
func (p *Previewer) RenderNow() error {
	return p.sched.Flush()
}

// Scheduler returns the render scheduler.
func (p *Previewer) Scheduler() *schedule.Scheduler {
	return p.sched
}

func (p *Previewer) render() error {
	root, err := p.renderer.Render([]byte(p.source.Text()))
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := preview.ValidateTags(root); err != nil {
		if p.strict {
			return err
		}
		p.logger.Warn("source line tags out of order", "error", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}

	var gen uint64 = 1
	if p.prev != nil {
		gen = p.prev.Generation + 1
	}
	next := &preview.Snapshot{Root: root, Generation: gen}
	ops := reconcile.Diff(p.prev, next)

	var violation error
	if err := p.apply(p.live, ops); err != nil {
		violation = fmt.Errorf("generation %d: %w: %w", gen, preview.ErrPatchInvariant, err)
	} else if !p.live.Equal(root) {
		violation = fmt.Errorf("generation %d: %w", gen, preview.ErrPatchInvariant)
	}
	update := Update{Generation: gen, Ops: ops}
	if violation != nil {
		p.logger.Error("patch diverged, replacing preview", "generation", gen, "error", violation)
		*p.live = *root.Clone()
		update = Update{Generation: gen, Reset: true, Root: root}
	}

	p.prev = next
	p.index = preview.NewLineIndex(p.live)
	p.logger.Debug("rendered", "generation", gen, "ops", len(ops))

	if len(update.Ops) > 0 || update.Reset {
		p.publishLocked(update)
		p.formatLocked(gen)
	}
	if violation != nil && p.strict {
		return violation
	}
	return nil
}

func (p *Previewer) publishLocked(u Update) {
	for _, fn := range p.subs {
		fn(u)
	}
}

func (p *Previewer) formatLocked(gen uint64) {
	if p.formatter == nil {
		return
	}
	job := p.formatter.Prepare(p.live)
	if job == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		err := job(p.ctx)
		if errors.Is(err, context.Canceled) {
			return
		}
		if err != nil {
			p.logger.Warn("formatter failed", "generation", gen, "error", err)
		}
		p.fmu.Lock()
		p.formatErr = err
		p.fmu.Unlock()

		p.mu.Lock()
		defer p.mu.Unlock()
		if !p.closed {
			p.publishLocked(Update{Generation: gen, Formatted: true})
		}
	}()
}

// FormatErr returns the error of the most recent formatter run.
func (p *Previewer) FormatErr() error {
	p.fmu.Lock()
	defer p.fmu.Unlock()
	return p.formatErr
}

// Subscribe registers fn for updates. fn first receives a reset holding
// the current tree, then every later update; it runs synchronously and must
// hand off any slow work. The returned function cancels the subscription.
func (p *Previewer) Subscribe(fn func(Update)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	fn(Update{Generation: p.generationLocked(), Reset: true, Root: p.live.Clone()})
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.subs, id)
	}
}

func (p *Previewer) generationLocked() uint64 {
	if p.prev == nil {
		return 0
	}
	return p.prev.Generation
}

// Snapshot returns the most recent snapshot, or nil before the first render.
func (p *Previewer) Snapshot() *preview.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prev
}

// Index returns the line index of the current generation.
func (p *Previewer) Index() *preview.LineIndex {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

// View calls fn with the live tree while holding the lock. fn must not
// retain or modify the tree.
func (p *Previewer) View(fn func(root *preview.Node, generation uint64)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.live, p.generationLocked())
}

// Mode returns the preview mode.
func (p *Previewer) Mode() preview.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// SetPreviewVisible switches the preview mode. Showing a hidden preview
// renders immediately.
func (p *Previewer) SetPreviewVisible(m preview.Mode) error {
	p.mu.Lock()
	was := p.mode
	p.mode = m
	p.mu.Unlock()

	if was == preview.ModeHidden && m != preview.ModeHidden {
		return p.RenderNow()
	}
	return nil
}

// Coordinator returns the scroll driver exclusion state.
func (p *Previewer) Coordinator() *scroll.Coordinator {
	return &p.coord
}

// SyncFromSourceLine aligns pane with line of editor on behalf of the
// keyboard driver.
func (p *Previewer) SyncFromSourceLine(editor preview.Editor, pane preview.Pane, line int) (preview.ScrollState, error) {
	return p.sync(preview.DriverKeyboard, editor, pane, line)
}

// Realign aligns pane with line of editor on behalf of the host itself,
// after a render or a mode switch.
func (p *Previewer) Realign(editor preview.Editor, pane preview.Pane, line int) (preview.ScrollState, error) {
	return p.sync(preview.DriverProgrammatic, editor, pane, line)
}

// SyncFromPointer aligns pane with the editor line under (x, y) on behalf
// of the pointer driver.
func (p *Previewer) SyncFromPointer(editor preview.Editor, pane preview.Pane, x, y int) (preview.ScrollState, error) {
	release, ok := p.claim(preview.DriverPointer)
	if !ok {
		return preview.ScrollState{}, ErrDriverBusy
	}
	defer release()

	m := scroll.NewMapper(editor, pane, p.Index())
	line, ok := m.PreviewPointerToSourceLine(x, y)
	if !ok {
		return preview.ScrollState{}, nil
	}
	return p.scrollTo(m, pane, line)
}

func (p *Previewer) sync(d preview.Driver, editor preview.Editor, pane preview.Pane, line int) (preview.ScrollState, error) {
	release, ok := p.claim(d)
	if !ok {
		return preview.ScrollState{}, ErrDriverBusy
	}
	defer release()
	return p.scrollTo(scroll.NewMapper(editor, pane, p.Index()), pane, line)
}

func (p *Previewer) scrollTo(m *scroll.Mapper, pane preview.Pane, line int) (preview.ScrollState, error) {
	if p.Mode() == preview.ModeHidden {
		return preview.ScrollState{}, nil
	}
	st, err := m.SourceLineToPreviewOffset(line)
	if err != nil {
		p.logger.Debug("scroll mapping miss", "line", line, "error", err)
	}
	pane.SetScrollTop(st.PreviewOffset)
	return st, nil
}

// claim takes the coordinator for d. A driver that already holds it keeps
// holding it after release.
func (p *Previewer) claim(d preview.Driver) (release func(), ok bool) {
	acquired, ok := p.coord.Claim(d)
	switch {
	case !ok:
		return nil, false
	case !acquired:
		return func() {}, true
	}
	return func() { p.coord.End(d) }, true
}

// Close stops rendering and waits for running formatter jobs.
func (p *Previewer) Close() error {
	err := p.sched.Close()
	p.cancel()
	p.mu.Lock()
	p.closed = true
	clear(p.subs)
	p.mu.Unlock()
	p.wg.Wait()
	return err
}
