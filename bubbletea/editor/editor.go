// Package editor implements the source pane of the preview TUI: a
// soft-wrapping text editor whose geometry is measured in terminal rows.
package editor

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/runeutil"
	tea "github.com/charmbracelet/bubbletea"
	rw "github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

const (
	defaultWidth  = 40
	defaultHeight = 6
	tabWidth      = 4
)

// KeyMap is the set of bindings the editor responds to.
type KeyMap struct {
	CharacterBackward key.Binding
	CharacterForward  key.Binding
	WordBackward      key.Binding
	WordForward       key.Binding
	LineStart         key.Binding
	LineEnd           key.Binding
	LinePrevious      key.Binding
	LineNext          key.Binding
	PagePrevious      key.Binding
	PageNext          key.Binding
	InputBegin        key.Binding
	InputEnd          key.Binding

	InsertNewline      key.Binding
	DeleteBackward     key.Binding
	DeleteForward      key.Binding
	DeleteWordBackward key.Binding
	DeleteToLineEnd    key.Binding
}

// DefaultKeyMap returns the default bindings, a mix of arrow keys and
// readline-style chords.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		CharacterBackward:  key.NewBinding(key.WithKeys("left", "ctrl+b"), key.WithHelp("←", "back")),
		CharacterForward:   key.NewBinding(key.WithKeys("right", "ctrl+f"), key.WithHelp("→", "forward")),
		WordBackward:       key.NewBinding(key.WithKeys("alt+left", "alt+b"), key.WithHelp("alt+←", "word back")),
		WordForward:        key.NewBinding(key.WithKeys("alt+right", "alt+f"), key.WithHelp("alt+→", "word forward")),
		LineStart:          key.NewBinding(key.WithKeys("home", "ctrl+a"), key.WithHelp("home", "line start")),
		LineEnd:            key.NewBinding(key.WithKeys("end", "ctrl+e"), key.WithHelp("end", "line end")),
		LinePrevious:       key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "previous line")),
		LineNext:           key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "next line")),
		PagePrevious:       key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageNext:           key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdown", "page down")),
		InputBegin:         key.NewBinding(key.WithKeys("ctrl+home", "alt+<"), key.WithHelp("ctrl+home", "top")),
		InputEnd:           key.NewBinding(key.WithKeys("ctrl+end", "alt+>"), key.WithHelp("ctrl+end", "bottom")),
		InsertNewline:      key.NewBinding(key.WithKeys("enter", "ctrl+j"), key.WithHelp("enter", "newline")),
		DeleteBackward:     key.NewBinding(key.WithKeys("backspace", "ctrl+h"), key.WithHelp("backspace", "delete")),
		DeleteForward:      key.NewBinding(key.WithKeys("delete", "ctrl+d"), key.WithHelp("delete", "delete forward")),
		DeleteWordBackward: key.NewBinding(key.WithKeys("alt+backspace", "ctrl+w"), key.WithHelp("ctrl+w", "delete word")),
		DeleteToLineEnd:    key.NewBinding(key.WithKeys("ctrl+k"), key.WithHelp("ctrl+k", "kill line")),
	}
}

// Model is the editor state. Lines are soft-wrapped to the width by display
// cells, so one source line may occupy several rows.
type Model struct {
	KeyMap KeyMap
	Cursor cursor.Model

	lines [][]rune
	row   int
	col   int
	// goal is the column vertical motion aims for, or -1.
	goal int
	// top is the first visible row.
	top    int
	width  int
	height int
	focus  bool
	san    runeutil.Sanitizer
}

// New returns an empty, unfocused editor.
func New() Model {
	return Model{
		KeyMap: DefaultKeyMap(),
		Cursor: cursor.New(),
		lines:  [][]rune{{}},
		goal:   -1,
		width:  defaultWidth,
		height: defaultHeight,
		san:    runeutil.NewSanitizer(runeutil.ReplaceTabs("\t")),
	}
}

// SetValue replaces the contents and leaves the cursor at the end.
func (m *Model) SetValue(s string) {
	parts := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	m.lines = make([][]rune, len(parts))
	for i, p := range parts {
		m.lines[i] = []rune(p)
	}
	m.row = len(m.lines) - 1
	m.col = len(m.lines[m.row])
	m.goal = -1
	m.follow()
}

// Value returns the contents with lines joined by "\n".
func (m Model) Value() string {
	var b strings.Builder
	for i, l := range m.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(l))
	}
	return b.String()
}

// InsertString inserts s at the cursor as if it had been typed.
func (m *Model) InsertString(s string) {
	m.insert([]rune(s))
	m.follow()
}

// Line is the cursor's line.
func (m Model) Line() int { return m.row }

// Column is the cursor's rune offset within its line.
func (m Model) Column() int { return m.col }

func (m Model) LineCount() int { return len(m.lines) }
func (m Model) Width() int     { return m.width }
func (m Model) Height() int    { return m.height }
func (m Model) Focused() bool  { return m.focus }

// Focus lets the editor receive keys.
func (m *Model) Focus() tea.Cmd {
	m.focus = true
	return m.Cursor.Focus()
}

// Blur stops the editor from receiving keys.
func (m *Model) Blur() {
	m.focus = false
	m.Cursor.Blur()
}

// SetWidth sets the width in cells. Rows are rewrapped immediately.
func (m *Model) SetWidth(w int) {
	m.width = max(1, w)
	m.follow()
}

// SetHeight sets the number of visible rows.
func (m *Model) SetHeight(h int) {
	m.height = max(1, h)
	m.follow()
}

// MoveToBegin moves the cursor to the first line and scrolls to the top.
func (m *Model) MoveToBegin() {
	m.row, m.col, m.goal = 0, 0, -1
	m.top = 0
}

// ScrollTop is the first visible row.
func (m Model) ScrollTop() int { return m.top }

// SetScrollTop scrolls without moving the cursor. The next key press
// brings the cursor back into view.
func (m *Model) SetScrollTop(row int) {
	m.top = min(max(0, row), max(0, m.ContentHeight()-m.height))
}

// ContentHeight is the number of rows the wrapped contents occupy.
func (m Model) ContentHeight() int { return m.LineTop(len(m.lines)) }

// LineTop is the row where line starts. Lines past the end report the
// content height.
func (m Model) LineTop(line int) int {
	line = min(max(0, line), len(m.lines))
	var rows int
	for _, l := range m.lines[:line] {
		rows += len(wrap(l, m.width))
	}
	return rows
}

// LineAtRow returns the line shown at row.
func (m Model) LineAtRow(row int) (int, bool) {
	if row < 0 {
		return 0, false
	}
	var top int
	for i, l := range m.lines {
		top += len(wrap(l, m.width))
		if row < top {
			return i, true
		}
	}
	return 0, false
}

// Update handles key presses and cursor blinking.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focus {
		m.Cursor.Blur()
		return m, nil
	}

	row, col := m.row, m.col
	if msg, ok := msg.(tea.KeyMsg); ok {
		m.handleKey(msg)
		m.follow()
	}

	cmds := make([]tea.Cmd, 0, 2)
	var cmd tea.Cmd
	m.Cursor, cmd = m.Cursor.Update(msg)
	cmds = append(cmds, cmd)
	if (m.row != row || m.col != col) && m.Cursor.Mode() == cursor.CursorBlink {
		m.Cursor.Blink = false
		cmds = append(cmds, m.Cursor.BlinkCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	vertical := false
	switch {
	case key.Matches(msg, m.KeyMap.InsertNewline):
		m.insert([]rune{'\n'})
	case key.Matches(msg, m.KeyMap.DeleteWordBackward):
		m.deleteWordBackward()
	case key.Matches(msg, m.KeyMap.DeleteBackward):
		m.deleteBackward()
	case key.Matches(msg, m.KeyMap.DeleteForward):
		m.deleteForward()
	case key.Matches(msg, m.KeyMap.DeleteToLineEnd):
		if m.col < len(m.lines[m.row]) {
			m.lines[m.row] = m.lines[m.row][:m.col]
		} else {
			m.deleteForward()
		}
	case key.Matches(msg, m.KeyMap.WordBackward):
		m.wordBackward()
	case key.Matches(msg, m.KeyMap.WordForward):
		m.wordForward()
	case key.Matches(msg, m.KeyMap.CharacterBackward):
		switch {
		case m.col > 0:
			m.col--
		case m.row > 0:
			m.row--
			m.col = len(m.lines[m.row])
		}
	case key.Matches(msg, m.KeyMap.CharacterForward):
		switch {
		case m.col < len(m.lines[m.row]):
			m.col++
		case m.row < len(m.lines)-1:
			m.row++
			m.col = 0
		}
	case key.Matches(msg, m.KeyMap.LineStart):
		m.col = 0
	case key.Matches(msg, m.KeyMap.LineEnd):
		m.col = len(m.lines[m.row])
	case key.Matches(msg, m.KeyMap.LinePrevious):
		m.moveLines(-1)
		vertical = true
	case key.Matches(msg, m.KeyMap.LineNext):
		m.moveLines(1)
		vertical = true
	case key.Matches(msg, m.KeyMap.PagePrevious):
		m.moveLines(-m.height)
		vertical = true
	case key.Matches(msg, m.KeyMap.PageNext):
		m.moveLines(m.height)
		vertical = true
	case key.Matches(msg, m.KeyMap.InputBegin):
		m.row, m.col = 0, 0
	case key.Matches(msg, m.KeyMap.InputEnd):
		m.row = len(m.lines) - 1
		m.col = len(m.lines[m.row])
	default:
		if !msg.Alt && len(msg.Runes) > 0 {
			m.insert(msg.Runes)
		}
	}
	if !vertical {
		m.goal = -1
	}
}

// moveLines moves the cursor n lines, keeping the goal column.
func (m *Model) moveLines(n int) {
	if m.goal < 0 {
		m.goal = m.col
	}
	m.row = min(max(0, m.row+n), len(m.lines)-1)
	m.col = min(m.goal, len(m.lines[m.row]))
}

// insert types rs at the cursor. Newlines split the line.
func (m *Model) insert(rs []rune) {
	rs = m.san.Sanitize([]rune(strings.ReplaceAll(string(rs), "\r\n", "\n")))
	if len(rs) == 0 {
		return
	}
	line := m.lines[m.row]
	tail := append([]rune(nil), line[m.col:]...)
	head := line[:m.col:m.col]

	parts := splitRunes(rs)
	added := make([][]rune, len(parts))
	added[0] = append(head, parts[0]...)
	for i := 1; i < len(parts); i++ {
		added[i] = append([]rune(nil), parts[i]...)
	}
	last := len(added) - 1
	m.col = len(added[last])
	added[last] = append(added[last], tail...)

	lines := make([][]rune, 0, len(m.lines)+last)
	lines = append(lines, m.lines[:m.row]...)
	lines = append(lines, added...)
	lines = append(lines, m.lines[m.row+1:]...)
	m.lines = lines
	m.row += last
}

func splitRunes(rs []rune) [][]rune {
	parts := [][]rune{{}}
	for _, r := range rs {
		if r == '\n' {
			parts = append(parts, []rune{})
			continue
		}
		parts[len(parts)-1] = append(parts[len(parts)-1], r)
	}
	return parts
}

func (m *Model) deleteBackward() {
	if m.col > 0 {
		line := m.lines[m.row]
		m.lines[m.row] = append(line[:m.col-1:m.col-1], line[m.col:]...)
		m.col--
		return
	}
	if m.row == 0 {
		return
	}
	m.col = len(m.lines[m.row-1])
	m.joinBelow(m.row - 1)
	m.row--
}

func (m *Model) deleteForward() {
	line := m.lines[m.row]
	if m.col < len(line) {
		m.lines[m.row] = append(line[:m.col:m.col], line[m.col+1:]...)
		return
	}
	if m.row < len(m.lines)-1 {
		m.joinBelow(m.row)
	}
}

// joinBelow appends the line after row to row.
func (m *Model) joinBelow(row int) {
	joined := append(m.lines[row][:len(m.lines[row]):len(m.lines[row])], m.lines[row+1]...)
	m.lines[row] = joined
	m.lines = append(m.lines[:row+1], m.lines[row+2:]...)
}

func (m *Model) deleteWordBackward() {
	if m.col == 0 {
		m.deleteBackward()
		return
	}
	end := m.col
	m.wordBackward()
	line := m.lines[m.row]
	m.lines[m.row] = append(line[:m.col:m.col], line[end:]...)
}

// wordBackward moves to the start of the previous word on the line, or to
// the end of the line above.
func (m *Model) wordBackward() {
	if m.col == 0 {
		if m.row > 0 {
			m.row--
			m.col = len(m.lines[m.row])
		}
		return
	}
	line := m.lines[m.row]
	for m.col > 0 && unicode.IsSpace(line[m.col-1]) {
		m.col--
	}
	for m.col > 0 && !unicode.IsSpace(line[m.col-1]) {
		m.col--
	}
}

func (m *Model) wordForward() {
	line := m.lines[m.row]
	if m.col == len(line) {
		if m.row < len(m.lines)-1 {
			m.row++
			m.col = 0
		}
		return
	}
	for m.col < len(line) && unicode.IsSpace(line[m.col]) {
		m.col++
	}
	for m.col < len(line) && !unicode.IsSpace(line[m.col]) {
		m.col++
	}
}

// cursorRow returns the cursor's row within its line and its rune offset
// within that row.
func (m Model) cursorRow() (int, int) {
	spans := wrap(m.lines[m.row], m.width)
	for i, s := range spans {
		if m.col < s.end || i == len(spans)-1 {
			return i, m.col - s.start
		}
	}
	return 0, m.col
}

// follow scrolls so the cursor row is visible.
func (m *Model) follow() {
	r, _ := m.cursorRow()
	r += m.LineTop(m.row)
	switch {
	case r < m.top:
		m.top = r
	case r >= m.top+m.height:
		m.top = r - m.height + 1
	}
	m.SetScrollTop(m.top)
}

// View renders exactly Height rows, each padded to Width cells.
func (m Model) View() string {
	rows := make([]string, 0, m.height)
	cursorRow, cursorCol := m.cursorRow()
	cursorRow += m.LineTop(m.row)

	var n int
	for i, l := range m.lines {
		spans := wrap(l, m.width)
		if n+len(spans) <= m.top {
			n += len(spans)
			continue
		}
		for _, s := range spans {
			if n >= m.top && len(rows) < m.height {
				seg := l[s.start:s.end]
				if n == cursorRow && i == m.row {
					rows = append(rows, m.renderCursorRow(seg, cursorCol))
				} else {
					rows = append(rows, pad(expandTabs(seg), m.width))
				}
			}
			n++
		}
		if len(rows) == m.height {
			break
		}
	}
	for len(rows) < m.height {
		rows = append(rows, strings.Repeat(" ", m.width))
	}
	return strings.Join(rows, "\n")
}

func (m Model) renderCursorRow(seg []rune, col int) string {
	var b strings.Builder
	b.WriteString(expandTabs(seg[:col]))
	under := " "
	rest := ""
	if col < len(seg) {
		under = expandTabs(seg[col : col+1])
		rest = expandTabs(seg[col+1:])
	}
	c := m.Cursor
	c.SetChar(under)
	b.WriteString(c.View())
	b.WriteString(rest)

	used := uniseg.StringWidth(expandTabs(seg[:col])) + uniseg.StringWidth(under) + uniseg.StringWidth(rest)
	if used < m.width {
		b.WriteString(strings.Repeat(" ", m.width-used))
	}
	return b.String()
}

type span struct{ start, end int }

// wrap splits line into rows no wider than width cells. A line that fills
// its last row gets an empty row after it for the cursor.
func wrap(line []rune, width int) []span {
	var spans []span
	start, w := 0, 0
	for i, r := range line {
		cw := cellWidth(r)
		if w+cw > width && i > start {
			spans = append(spans, span{start, i})
			start, w = i, 0
		}
		w += cw
	}
	spans = append(spans, span{start, len(line)})
	if w >= width {
		spans = append(spans, span{len(line), len(line)})
	}
	return spans
}

func cellWidth(r rune) int {
	if r == '\t' {
		return tabWidth
	}
	return rw.RuneWidth(r)
}

func expandTabs(rs []rune) string {
	return strings.ReplaceAll(string(rs), "\t", strings.Repeat(" ", tabWidth))
}

func pad(s string, width int) string {
	if w := uniseg.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}
