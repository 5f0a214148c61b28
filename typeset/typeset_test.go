package typeset_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/typeset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mathSpan(mode, tex string) *preview.Node {
	return preview.Element("span", []preview.Attr{{Key: "class", Val: preview.ClassMath + " " + mode}}, preview.Text(tex))
}

func doc(spans ...*preview.Node) *preview.Node {
	p := preview.Element("p", nil, preview.Text("see "))
	p.Children = append(p.Children, spans...)
	return preview.Fragment(p)
}

func TestFormatter(t *testing.T) {
	t.Parallel()

	t.Run("typesets every span", func(t *testing.T) {
		t.Parallel()
		inline := mathSpan(preview.ClassMathInline, "x^2")
		display := mathSpan(preview.ClassMathDisplay, `\alpha`)
		f := typeset.New()

		job := f.Prepare(doc(inline, display))
		require.NotNil(t, job)
		require.NoError(t, job(context.Background()))

		r, ok := f.Lookup(inline)
		require.True(t, ok)
		assert.Equal(t, "x²", r.Text)
		assert.False(t, r.Display)
		r, ok = f.Lookup(display)
		require.True(t, ok)
		assert.Equal(t, "α", r.Text)
		assert.True(t, r.Display)
	})

	t.Run("no spans means no job", func(t *testing.T) {
		t.Parallel()
		f := typeset.New()
		assert.Nil(t, f.Prepare(doc()))
	})

	t.Run("untouched spans are not typeset again", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		f := typeset.New(typeset.WithConverter(func(tex string) (string, error) {
			calls.Add(1)
			return tex, nil
		}))
		a := mathSpan(preview.ClassMathInline, "a")
		b := mathSpan(preview.ClassMathInline, "b")
		root := doc(a, b)

		require.NoError(t, f.Prepare(root)(context.Background()))
		assert.Equal(t, int32(2), calls.Load())

		// Same identities, one edited in place.
		b.Children[0].Text = "c"
		job := f.Prepare(root)
		require.NotNil(t, job)
		require.NoError(t, job(context.Background()))
		assert.Equal(t, int32(3), calls.Load())

		r, _ := f.Lookup(b)
		assert.Equal(t, "c", r.Text)
		assert.Nil(t, f.Prepare(root))
	})

	t.Run("removed spans are pruned", func(t *testing.T) {
		t.Parallel()
		f := typeset.New()
		a := mathSpan(preview.ClassMathInline, "a")
		b := mathSpan(preview.ClassMathInline, "b")
		require.NoError(t, f.Prepare(doc(a, b))(context.Background()))
		require.Equal(t, 2, f.Len())

		assert.Nil(t, f.Prepare(doc(a)))
		assert.Equal(t, 1, f.Len())
		_, ok := f.Lookup(b)
		assert.False(t, ok)
	})

	t.Run("superseded job does not overwrite newer tex", func(t *testing.T) {
		t.Parallel()
		f := typeset.New()
		a := mathSpan(preview.ClassMathInline, "x^2")
		root := doc(a)
		stale := f.Prepare(root)

		a.Children[0].Text = "x^3"
		fresh := f.Prepare(root)
		require.NoError(t, fresh(context.Background()))
		require.NoError(t, stale(context.Background()))

		r, _ := f.Lookup(a)
		assert.Equal(t, "x³", r.Text)
	})

	t.Run("failures are logged and kept raw", func(t *testing.T) {
		t.Parallel()
		var logs bytes.Buffer
		f := typeset.New(typeset.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		bad := mathSpan(preview.ClassMathInline, `\nope`)
		good := mathSpan(preview.ClassMathInline, "y_1")

		err := f.Prepare(doc(bad, good))(context.Background())
		assert.ErrorIs(t, err, typeset.ErrSyntax)
		assert.Contains(t, logs.String(), "typeset failed")

		r, ok := f.Lookup(bad)
		require.True(t, ok)
		assert.Equal(t, `\nope`, r.Text)
		assert.Error(t, r.Err)
		r, _ = f.Lookup(good)
		assert.Equal(t, "y₁", r.Text)
	})

	t.Run("cancelled context stops the job", func(t *testing.T) {
		t.Parallel()
		f := typeset.New()
		job := f.Prepare(doc(mathSpan(preview.ClassMathInline, "x")))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.True(t, errors.Is(job(ctx), context.Canceled))
		assert.Zero(t, f.Len())
	})
}
