package editor_test

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/preview/bubbletea/editor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFocused(t *testing.T, value string) editor.Model {
	t.Helper()
	e := editor.New()
	e.SetWidth(80)
	e.SetValue(value)
	e.Focus()
	return e
}

func send(t *testing.T, e editor.Model, msgs ...tea.KeyMsg) editor.Model {
	t.Helper()
	for _, msg := range msgs {
		e, _ = e.Update(msg)
	}
	return e
}

func keys(k tea.KeyType, n int) []tea.KeyMsg {
	msgs := make([]tea.KeyMsg, n)
	for i := range msgs {
		msgs[i] = tea.KeyMsg{Type: k}
	}
	return msgs
}

func typed(s string) []tea.KeyMsg {
	var msgs []tea.KeyMsg
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

func alt(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}, Alt: true}
}

func TestNew(t *testing.T) {
	t.Parallel()

	e := editor.New()
	assert.Equal(t, "", e.Value())
	assert.Equal(t, 1, e.LineCount())
	assert.Equal(t, 40, e.Width())
	assert.Equal(t, 6, e.Height())
	assert.False(t, e.Focused())
}

func TestModel_SetValue(t *testing.T) {
	t.Parallel()

	e := editor.New()
	e.SetValue("a\r\nbc")
	assert.Equal(t, "a\nbc", e.Value())
	assert.Equal(t, 1, e.Line())
	assert.Equal(t, 2, e.Column())

	e.MoveToBegin()
	assert.Equal(t, 0, e.Line())
	assert.Equal(t, 0, e.Column())
	assert.Equal(t, 0, e.ScrollTop())
}

func TestModel_Editing(t *testing.T) {
	t.Parallel()

	t.Run("typing inserts at the cursor", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "")
		e = send(t, e, typed("helo")...)
		e = send(t, e, tea.KeyMsg{Type: tea.KeyLeft})
		e = send(t, e, typed("l")...)
		assert.Equal(t, "hello", e.Value())
	})

	t.Run("blurred editor ignores keys", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "x")
		e.Blur()
		e = send(t, e, typed("abc")...)
		assert.Equal(t, "x", e.Value())
	})

	t.Run("enter splits the line", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "hello")
		e = send(t, e, keys(tea.KeyLeft, 2)...)
		e = send(t, e, tea.KeyMsg{Type: tea.KeyEnter})
		assert.Equal(t, "hel\nlo", e.Value())
		assert.Equal(t, 1, e.Line())
		assert.Equal(t, 0, e.Column())
	})

	t.Run("ctrl+j inserts a newline", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ab")
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlJ})
		assert.Equal(t, "ab\n", e.Value())
		assert.Equal(t, 2, e.LineCount())
	})

	t.Run("backspace at line start joins lines", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ab\ncd")
		e = send(t, e, tea.KeyMsg{Type: tea.KeyHome})
		e = send(t, e, tea.KeyMsg{Type: tea.KeyBackspace})
		assert.Equal(t, "abcd", e.Value())
		assert.Equal(t, 0, e.Line())
		assert.Equal(t, 2, e.Column())

		e = send(t, e, tea.KeyMsg{Type: tea.KeyBackspace})
		assert.Equal(t, "acd", e.Value())
	})

	t.Run("backspace at the start does nothing", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ab")
		e.MoveToBegin()
		e = send(t, e, tea.KeyMsg{Type: tea.KeyBackspace})
		assert.Equal(t, "ab", e.Value())
	})

	t.Run("delete at line end joins lines", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ab\ncd")
		e.MoveToBegin()
		e = send(t, e, tea.KeyMsg{Type: tea.KeyDelete})
		assert.Equal(t, "b\ncd", e.Value())
		e = send(t, e, tea.KeyMsg{Type: tea.KeyEnd}, tea.KeyMsg{Type: tea.KeyDelete})
		assert.Equal(t, "bcd", e.Value())
	})

	t.Run("kill to line end", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "hello\nworld")
		e.MoveToBegin()
		e = send(t, e, keys(tea.KeyRight, 3)...)
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlK})
		assert.Equal(t, "hel\nworld", e.Value())
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlK})
		assert.Equal(t, "helworld", e.Value())
	})

	t.Run("delete word backward", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "one two three")
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlW})
		assert.Equal(t, "one two ", e.Value())
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlW})
		assert.Equal(t, "one ", e.Value())
	})

	t.Run("paste normalizes line endings", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "")
		e = send(t, e, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\r\nb\tc"), Paste: true})
		assert.Equal(t, "a\nb\tc", e.Value())
		assert.Equal(t, 1, e.Line())
		assert.Equal(t, 3, e.Column())
	})

	t.Run("alt chords are not inserted", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ab")
		e = send(t, e, alt('x'))
		assert.Equal(t, "ab", e.Value())
	})

	t.Run("insert string", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ad")
		e = send(t, e, tea.KeyMsg{Type: tea.KeyLeft})
		e.InsertString("b\nc")
		assert.Equal(t, "ab\ncd", e.Value())
		assert.Equal(t, 1, e.Line())
		assert.Equal(t, 1, e.Column())
	})
}

func TestModel_Motion(t *testing.T) {
	t.Parallel()

	t.Run("vertical motion keeps the goal column", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "long line\nab\nlong line")
		e.MoveToBegin()
		e = send(t, e, tea.KeyMsg{Type: tea.KeyEnd})
		e = send(t, e, tea.KeyMsg{Type: tea.KeyDown})
		assert.Equal(t, 2, e.Column())
		e = send(t, e, tea.KeyMsg{Type: tea.KeyDown})
		assert.Equal(t, 2, e.Line())
		assert.Equal(t, 9, e.Column())
	})

	t.Run("horizontal motion crosses lines", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "ab\ncd")
		e.MoveToBegin()
		e = send(t, e, keys(tea.KeyRight, 3)...)
		assert.Equal(t, 1, e.Line())
		assert.Equal(t, 0, e.Column())
		e = send(t, e, tea.KeyMsg{Type: tea.KeyLeft})
		assert.Equal(t, 0, e.Line())
		assert.Equal(t, 2, e.Column())
	})

	t.Run("word motion", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "one two three")
		e = send(t, e, alt('b'))
		assert.Equal(t, 8, e.Column())
		e = send(t, e, alt('b'), alt('b'))
		assert.Equal(t, 0, e.Column())
		e = send(t, e, alt('f'))
		assert.Equal(t, 3, e.Column())
	})

	t.Run("document bounds", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, "a\nb\nc")
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlHome})
		assert.Equal(t, 0, e.Line())
		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlEnd})
		assert.Equal(t, 2, e.Line())
		assert.Equal(t, 1, e.Column())
		e = send(t, e, keys(tea.KeyDown, 3)...)
		assert.Equal(t, 2, e.Line())
	})
}

func TestModel_Geometry(t *testing.T) {
	t.Parallel()

	t.Run("lines wrap by display width", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(4)
		e.SetValue("abcdefghij\n\nabcd")

		// The last line fills its row and gets one more for the cursor.
		assert.Equal(t, 6, e.ContentHeight())
		assert.Equal(t, 0, e.LineTop(0))
		assert.Equal(t, 3, e.LineTop(1))
		assert.Equal(t, 4, e.LineTop(2))
		assert.Equal(t, 6, e.LineTop(99))
	})

	t.Run("line at row", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(4)
		e.SetValue("abcdefghij\n\nabcd")

		for row, want := range []int{0, 0, 0, 1, 2, 2} {
			line, ok := e.LineAtRow(row)
			require.True(t, ok, "row %d", row)
			assert.Equal(t, want, line, "row %d", row)
		}
		_, ok := e.LineAtRow(6)
		assert.False(t, ok)
		_, ok = e.LineAtRow(-1)
		assert.False(t, ok)
	})

	t.Run("wide runes move to the next row", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(3)
		e.SetValue("日本語")
		assert.Equal(t, 3, e.ContentHeight())
	})

	t.Run("width change rewraps", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(80)
		e.SetValue("abcdefghij")
		assert.Equal(t, 1, e.ContentHeight())
		e.SetWidth(5)
		assert.Equal(t, 3, e.ContentHeight())
	})
}

func TestModel_Scroll(t *testing.T) {
	t.Parallel()

	lines := strings.Join(strings.Split("0123456789", ""), "\n")

	t.Run("cursor stays visible", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, lines)
		e.SetHeight(2)
		assert.Equal(t, 8, e.ScrollTop())

		e = send(t, e, tea.KeyMsg{Type: tea.KeyCtrlHome})
		assert.Equal(t, 0, e.ScrollTop())
		e = send(t, e, keys(tea.KeyDown, 3)...)
		assert.Equal(t, 2, e.ScrollTop())
	})

	t.Run("scroll top is clamped", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, lines)
		e.SetHeight(2)
		e.SetScrollTop(100)
		assert.Equal(t, 8, e.ScrollTop())
		e.SetScrollTop(-3)
		assert.Equal(t, 0, e.ScrollTop())
	})

	t.Run("scrolling leaves the cursor until a key", func(t *testing.T) {
		t.Parallel()
		e := newFocused(t, lines)
		e.SetHeight(2)
		e.SetScrollTop(3)
		assert.Equal(t, 9, e.Line())
		assert.Equal(t, 3, e.ScrollTop())

		e = send(t, e, tea.KeyMsg{Type: tea.KeyEnd})
		assert.Equal(t, 8, e.ScrollTop())
	})
}

func TestModel_View(t *testing.T) {
	t.Parallel()

	t.Run("rows fill the box", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(5)
		e.SetHeight(3)
		e.SetValue("ab")

		rows := strings.Split(e.View(), "\n")
		require.Len(t, rows, 3)
		for _, row := range rows {
			assert.Equal(t, 5, lipgloss.Width(row))
		}
		assert.True(t, strings.HasPrefix(rows[0], "ab"))
	})

	t.Run("wrapped rows", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(3)
		e.SetHeight(4)
		e.SetValue("abcde\nx")
		e.MoveToBegin()

		rows := strings.Split(e.View(), "\n")
		require.Len(t, rows, 4)
		assert.Contains(t, rows[0], "bc")
		assert.Equal(t, "de ", rows[1])
		assert.Equal(t, "x  ", rows[2])
		assert.Equal(t, "   ", rows[3])
	})

	t.Run("view follows scroll top", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(2)
		e.SetHeight(2)
		e.SetValue("a\nb\nc\nd")
		e.SetScrollTop(1)

		assert.Equal(t, "b \nc ", e.View())
	})

	t.Run("tabs expand", func(t *testing.T) {
		t.Parallel()
		e := editor.New()
		e.SetWidth(10)
		e.SetHeight(2)
		e.SetValue("\tx\ny")
		assert.Equal(t, "    x     ", strings.Split(e.View(), "\n")[0])
	})
}
