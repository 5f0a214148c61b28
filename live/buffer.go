package live

import (
	"sync"

	"github.com/fwojciec/preview"
)

// Watcher reacts to buffer changes. *Previewer satisfies it.
type Watcher interface {
	Render() error
	RenderNow() error
}

// Buffer is a thread-safe preview.Source with a single writer.
type Buffer struct {
	mu      sync.RWMutex
	doc     preview.Document
	watcher Watcher
}

var _ preview.Source = (*Buffer)(nil)

// NewBuffer returns a Buffer holding text.
func NewBuffer(text string) *Buffer {
	return &Buffer{doc: preview.NewDocument(text)}
}

// Watch routes change signals to w.
func (b *Buffer) Watch(w Watcher) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.watcher = w
}

// Text returns the current text.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc.Text()
}

// Document returns the current text split into lines.
func (b *Buffer) Document() preview.Document {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.doc
}

// Edit replaces the text as a user edit and signals a debounced render.
func (b *Buffer) Edit(text string) error {
	w := b.set(text)
	if w == nil {
		return nil
	}
	return w.Render()
}

// SetValue replaces the text without signalling.
func (b *Buffer) SetValue(text string) {
	b.set(text)
}

// Insert inserts s at byte offset, clamped to the text, and renders
// immediately. It returns the offset just past the inserted text.
func (b *Buffer) Insert(offset int, s string) (int, error) {
	b.mu.Lock()
	text := b.doc.Text()
	offset = min(max(0, offset), len(text))
	b.doc = preview.NewDocument(text[:offset] + s + text[offset:])
	w := b.watcher
	b.mu.Unlock()

	end := offset + len(s)
	if w == nil {
		return end, nil
	}
	return end, w.RenderNow()
}

func (b *Buffer) set(text string) Watcher {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.doc = preview.NewDocument(text)
	return b.watcher
}
