// Package scroll keeps an editor and its preview aligned by source line.
package scroll

import (
	"fmt"

	"github.com/fwojciec/preview"
)

// Mapper translates between source lines and preview scroll offsets for one
// rendered generation.
type Mapper struct {
	editor preview.Editor
	pane   preview.Pane
	index  *preview.LineIndex
}

// NewMapper returns a Mapper. index may be nil, in which case lines are
// resolved by scanning backward through the pane one line at a time.
func NewMapper(editor preview.Editor, pane preview.Pane, index *preview.LineIndex) *Mapper {
	return &Mapper{editor: editor, pane: pane, index: index}
}

// Resolve returns the nearest line at or before line that has an
// addressable node in the pane.
func (m *Mapper) Resolve(line int) (int, error) {
	if m.index != nil {
		for l, ok := m.index.Floor(line); ok; l, ok = m.index.Floor(l - 1) {
			if _, found := m.pane.NodeTop(l); found {
				return l, nil
			}
		}
		return 0, fmt.Errorf("line %d: %w", line, preview.ErrMappingMiss)
	}
	for l := line; l >= 0; l-- {
		if _, found := m.pane.NodeTop(l); found {
			return l, nil
		}
	}
	return 0, fmt.Errorf("line %d: %w", line, preview.ErrMappingMiss)
}

// SourceLineToPreviewOffset computes the preview scroll offset that puts the
// node for line at the same viewport position the line occupies in the
// editor. Line 0 maps to the top and the last line to the bottom. When no
// addressable node precedes line the offset pins to the top and the error
// wraps preview.ErrMappingMiss; the returned state is usable either way.
func (m *Mapper) SourceLineToPreviewOffset(line int) (preview.ScrollState, error) {
	st := preview.ScrollState{SourceLine: line, EditorOffset: m.editor.ScrollTop()}
	maxScroll := max(0, m.pane.MaxScroll())

	if line <= 0 {
		st.SourceLine = 0
		return st, nil
	}
	if last := m.editor.LineCount() - 1; line >= last {
		st.SourceLine = max(0, last)
		st.PreviewOffset = maxScroll
		return st, nil
	}

	resolved, err := m.Resolve(line)
	if err != nil {
		return st, err
	}
	nodeTop, _ := m.pane.NodeTop(resolved)
	slide := m.editor.LineTop(resolved) - m.editor.ScrollTop()
	offset := m.pane.ScrollTop() + (nodeTop - m.pane.ContainerTop()) - slide

	st.SourceLine = resolved
	st.PreviewOffset = min(max(0, offset), maxScroll)
	return st, nil
}

// PreviewPointerToSourceLine converts a viewport coordinate inside the
// editor into a source line.
func (m *Mapper) PreviewPointerToSourceLine(x, y int) (int, bool) {
	offset, ok := m.editor.OffsetAt(x, y)
	if !ok {
		return 0, false
	}
	return m.editor.LineOf(offset), true
}
