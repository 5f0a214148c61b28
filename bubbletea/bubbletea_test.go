package bubbletea_test

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/preview"
	bt "github.com/fwojciec/preview/bubbletea"
	"github.com/fwojciec/preview/goldmark"
	"github.com/fwojciec/preview/live"
	"github.com/fwojciec/preview/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// held is a schedule.Timer that never fires on its own.
type held struct{}

func (held) Stop() bool { return true }

// neverFire keeps debounced renders pending so tests drive them with
// RenderNow.
func neverFire(time.Duration, func()) schedule.Timer { return held{} }

// newPreviewer returns a previewer over text that has rendered once.
func newPreviewer(t *testing.T, text string, opts ...live.Option) (*live.Previewer, *live.Buffer) {
	t.Helper()
	buf := live.NewBuffer(text)
	opts = append([]live.Option{
		live.WithAfterFunc(neverFire),
		live.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	p := live.New(buf, goldmark.New(), opts...)
	buf.Watch(p)
	require.NoError(t, p.RenderNow())
	t.Cleanup(func() { _ = p.Close() })
	return p, buf
}

// initModel creates a model over text and sends a WindowSizeMsg to lay it out.
func initModel(t *testing.T, text string) (bt.Model, *live.Previewer, *live.Buffer) {
	t.Helper()
	return initModelWithSize(t, text, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, text string, width, height int) (bt.Model, *live.Previewer, *live.Buffer) {
	t.Helper()
	p, buf := newPreviewer(t, text)
	m := bt.New(p, buf, preview.DefaultTheme())
	t.Cleanup(m.Close)
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height}), p, buf
}

// updateModel sends a message and returns the updated Model. It renders
// the view afterwards, as the program loop does.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	_ = model.View()
	return model
}

// paragraphs returns n one-line paragraphs separated by blank lines, so
// paragraph i sits on source line 2i.
func paragraphs(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("para %d", i)
	}
	return strings.Join(parts, "\n\n")
}

func TestNotify(t *testing.T) {
	t.Parallel()

	t.Run("keeps only the newest generation", func(t *testing.T) {
		t.Parallel()
		ch := make(chan uint64, 1)
		bt.Notify(ch, 1)
		bt.Notify(ch, 2)
		bt.Notify(ch, 3)
		assert.Equal(t, uint64(3), <-ch)
		select {
		case g := <-ch:
			t.Fatalf("unexpected generation %d", g)
		default:
		}
	})

	t.Run("listen turns a generation into a message", func(t *testing.T) {
		t.Parallel()
		ch := make(chan uint64, 1)
		bt.Notify(ch, 9)
		assert.Equal(t, bt.RenderedMsg{Generation: 9}, bt.ListenForRender(ch)())
	})

	t.Run("closed channel yields nil", func(t *testing.T) {
		t.Parallel()
		ch := make(chan uint64, 1)
		close(ch)
		assert.Nil(t, bt.ListenForRender(ch)())
	})
}
