package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer(t *testing.T) {
	t.Parallel()

	t.Run("delegates to RenderFn", func(t *testing.T) {
		t.Parallel()
		want := preview.Fragment(preview.Text("x"))
		r := mock.Renderer{
			RenderFn: func(src []byte) (*preview.Node, error) {
				assert.Equal(t, "src", string(src))
				return want, nil
			},
		}
		got, err := r.Render([]byte("src"))
		require.NoError(t, err)
		assert.Same(t, want, got)
	})

	t.Run("delegates to MarkupFn", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		r := mock.Renderer{
			MarkupFn: func([]byte) ([]byte, error) { return nil, boom },
		}
		_, err := r.Markup(nil)
		assert.ErrorIs(t, err, boom)
	})
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	var seen *preview.Node
	f := mock.Formatter{
		PrepareFn: func(root *preview.Node) func(context.Context) error {
			seen = root
			return func(context.Context) error { return nil }
		},
	}
	root := preview.Fragment()
	job := f.Prepare(root)
	require.NotNil(t, job)
	assert.NoError(t, job(context.Background()))
	assert.Same(t, root, seen)
}

func TestSanitizer(t *testing.T) {
	t.Parallel()

	s := mock.Sanitizer{SanitizeFn: func(b []byte) []byte { return append(b, '!') }}
	assert.Equal(t, "x!", string(s.Sanitize([]byte("x"))))
}

func TestSource(t *testing.T) {
	t.Parallel()

	s := mock.Source{
		TextFn:     func() string { return "a\nb" },
		DocumentFn: func() preview.Document { return preview.NewDocument("a\nb") },
	}
	assert.Equal(t, "a\nb", s.Text())
	assert.Equal(t, 2, s.Document().LineCount())
}

func TestEditor(t *testing.T) {
	t.Parallel()

	e := mock.Editor{
		LineCountFn: func() int { return 3 },
		LineTopFn:   func(line int) int { return line * 10 },
		ScrollTopFn: func() int { return 5 },
		OffsetAtFn:  func(x, y int) (int, bool) { return x + y, true },
		LineOfFn:    func(offset int) int { return offset / 2 },
	}
	assert.Equal(t, 3, e.LineCount())
	assert.Equal(t, 20, e.LineTop(2))
	assert.Equal(t, 5, e.ScrollTop())
	off, ok := e.OffsetAt(1, 2)
	assert.True(t, ok)
	assert.Equal(t, 3, off)
	assert.Equal(t, 4, e.LineOf(8))
}

func TestPane(t *testing.T) {
	t.Parallel()

	var set int
	p := mock.Pane{
		ScrollTopFn:    func() int { return 1 },
		ContainerTopFn: func() int { return 2 },
		NodeTopFn:      func(line int) (int, bool) { return line, line%2 == 0 },
		MaxScrollFn:    func() int { return 9 },
		SetScrollTopFn: func(offset int) { set = offset },
	}
	assert.Equal(t, 1, p.ScrollTop())
	assert.Equal(t, 2, p.ContainerTop())
	_, ok := p.NodeTop(3)
	assert.False(t, ok)
	assert.Equal(t, 9, p.MaxScroll())
	p.SetScrollTop(4)
	assert.Equal(t, 4, set)
}
