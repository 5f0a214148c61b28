package bubbletea

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/preview"
	"github.com/fwojciec/preview/bubbletea/editor"
	"github.com/fwojciec/preview/live"
	"github.com/fwojciec/preview/terminal"
)

var _ tea.Model = Model{}

// pointerHold is how long a wheel gesture keeps the pointer driver active,
// so keyboard and render realignment do not fight the scroll.
const pointerHold = 300 * time.Millisecond

// wheelRows is the number of editor rows one wheel notch scrolls.
const wheelRows = 3

// KeyMap holds the TUI's own bindings. Everything else goes to the editor.
type KeyMap struct {
	Quit          key.Binding
	TogglePreview key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("ctrl+c")),
		TogglePreview: key.NewBinding(key.WithKeys("alt+`", "ctrl+\\")),
	}
}

// Option configures a Model.
type Option func(*Model)

// WithLayout sets the preview layout, for example one that shows typeset
// math.
func WithLayout(l *terminal.Layout) Option {
	return func(m *Model) {
		m.layout = l
	}
}

// WithKeyMap replaces the key bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) {
		m.keys = k
	}
}

// Model is the Bubble Tea model for the preview TUI.
type Model struct {
	// Editor is the source editor. Exported for test access.
	Editor editor.Model
	// Preview is the scrollable preview pane. Exported for test access.
	Preview viewport.Model

	previewer *live.Previewer
	buffer    *live.Buffer
	layout    *terminal.Layout
	styles    Styles
	keys      KeyMap

	renders     chan uint64
	unsubscribe func()

	page       terminal.Page
	generation uint64
	width      int
	height     int
	holdSeq    int
	err        error
	ready      bool
}

// New creates a Model editing buffer and showing the previewer's tree.
func New(p *live.Previewer, buffer *live.Buffer, theme preview.Theme, opts ...Option) Model {
	ed := editor.New()
	ed.SetValue(buffer.Text())
	ed.MoveToBegin()
	ed.Focus()

	m := Model{
		Editor:    ed,
		previewer: p,
		buffer:    buffer,
		styles:    NewStyles(theme),
		keys:      DefaultKeyMap(),
		renders:   make(chan uint64, 1),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.layout == nil {
		m.layout = terminal.New(terminal.WithTheme(theme))
	}
	ch := m.renders
	m.unsubscribe = p.Subscribe(func(u live.Update) {
		notify(ch, u.Generation)
	})
	return m
}

// Close stops receiving preview updates.
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Generation returns the generation shown in the preview pane.
func (m Model) Generation() uint64 { return m.generation }

// Page returns the laid out preview.
func (m Model) Page() terminal.Page { return m.page }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(cursor.Blink, listenForRender(m.renders))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m = m.resize()
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case RenderedMsg:
		if m.ready {
			m.relayout()
			m.realign()
		}
		return m, listenForRender(m.renders)

	case pointerReleaseMsg:
		if msg.seq == m.holdSeq {
			m.previewer.Coordinator().End(preview.DriverPointer)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.Editor, cmd = m.Editor.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	body := m.Editor.View()
	if m.previewer.Mode() == preview.ModeSideBySide {
		divider := m.styles.Divider.Render(strings.TrimSuffix(strings.Repeat("│\n", m.bodyHeight()), "\n"))
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, divider, m.Preview.View())
	}
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) bodyHeight() int {
	return max(1, m.height-1)
}

func (m Model) editorWidth() int {
	if m.previewer.Mode() != preview.ModeSideBySide {
		return max(1, m.width)
	}
	return max(1, (m.width-1)/2)
}

func (m Model) resize() Model {
	h := m.bodyHeight()
	editorW := m.editorWidth()
	previewW := max(1, m.width-editorW-1)

	m.Editor.SetWidth(editorW)
	m.Editor.SetHeight(h)
	if !m.ready {
		m.Preview = viewport.New(previewW, h)
	} else {
		m.Preview.Width = previewW
		m.Preview.Height = h
	}
	if m.previewer.Mode() == preview.ModeSideBySide {
		m.relayout()
		m.realign()
	}
	return m
}

// relayout lays out the live tree at the preview width.
func (m *Model) relayout() {
	m.previewer.View(func(root *preview.Node, gen uint64) {
		m.page = m.layout.Render(root, m.Preview.Width)
		m.generation = gen
	})
	m.Preview.SetContent(m.page.String())
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.TogglePreview):
		return m.togglePreview(), nil
	}

	before, line := m.Editor.Value(), m.Editor.Line()
	var cmd tea.Cmd
	m.Editor, cmd = m.Editor.Update(msg)

	changed := m.Editor.Value() != before
	if changed {
		if err := m.buffer.Edit(m.Editor.Value()); err != nil {
			m.err = err
		}
	}
	if changed || m.Editor.Line() != line {
		m.syncKeyboard()
	}
	return m, cmd
}

func (m Model) togglePreview() Model {
	next := preview.ModeSideBySide
	if m.previewer.Mode() == preview.ModeSideBySide {
		next = preview.ModeHidden
	}
	if err := m.previewer.SetPreviewVisible(next); err != nil {
		m.err = err
	}
	return m.resize()
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	if msg.X >= m.editorWidth() {
		var cmd tea.Cmd
		m.Preview, cmd = m.Preview.Update(msg)
		return m, cmd
	}

	var delta int
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		delta = -wheelRows
	case tea.MouseButtonWheelDown:
		delta = wheelRows
	default:
		return m, nil
	}
	m.Editor.SetScrollTop(m.Editor.ScrollTop() + delta)

	if !m.previewer.Coordinator().Begin(preview.DriverPointer) {
		return m, nil
	}
	m.holdSeq++
	seq := m.holdSeq
	if _, err := m.previewer.SyncFromPointer(m.editorView(), m.paneView(), msg.X, msg.Y); err != nil {
		m.err = err
	}
	return m, tea.Tick(pointerHold, func(time.Time) tea.Msg {
		return pointerReleaseMsg{seq: seq}
	})
}

func (m *Model) syncKeyboard() {
	_, err := m.previewer.SyncFromSourceLine(m.editorView(), m.paneView(), m.Editor.Line())
	m.noteSyncErr(err)
}

func (m *Model) realign() {
	_, err := m.previewer.Realign(m.editorView(), m.paneView(), m.Editor.Line())
	m.noteSyncErr(err)
}

// noteSyncErr drops refusals caused by another active driver.
func (m *Model) noteSyncErr(err error) {
	if err != nil && !errors.Is(err, live.ErrDriverBusy) {
		m.err = err
	}
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return m.styles.Mode.Render(m.previewer.Mode().String()) +
		m.styles.Status.Render(fmt.Sprintf(" · gen %d · ctrl+\\ preview · ctrl+c quit", m.generation))
}

// editorView adapts the editor to preview.Editor.
func (m *Model) editorView() preview.Editor {
	return editorView{ed: &m.Editor, buffer: m.buffer}
}

// paneView adapts the preview pane to preview.Pane.
func (m *Model) paneView() preview.Pane {
	return paneView{vp: &m.Preview, page: m.page}
}

type editorView struct {
	ed     *editor.Model
	buffer *live.Buffer
}

var _ preview.Editor = editorView{}

func (e editorView) LineCount() int       { return e.ed.LineCount() }
func (e editorView) LineTop(line int) int { return e.ed.LineTop(line) }
func (e editorView) ScrollTop() int       { return e.ed.ScrollTop() }
func (e editorView) LineOf(offset int) int {
	return e.buffer.Document().LineOf(offset)
}

// OffsetAt converts a cell inside the editor to the offset of its line.
func (e editorView) OffsetAt(x, y int) (int, bool) {
	if x < 0 || x >= e.ed.Width() || y < 0 || y >= e.ed.Height() {
		return 0, false
	}
	line, ok := e.ed.LineAtRow(e.ed.ScrollTop() + y)
	if !ok {
		return 0, false
	}
	return e.buffer.Document().LineStart(line), true
}

type paneView struct {
	vp   *viewport.Model
	page terminal.Page
}

var _ preview.Pane = paneView{}

func (p paneView) ScrollTop() int    { return p.vp.YOffset }
func (p paneView) ContainerTop() int { return 0 }
func (p paneView) MaxScroll() int    { return max(0, p.page.Height()-p.vp.Height) }

func (p paneView) NodeTop(line int) (int, bool) {
	row, ok := p.page.Anchor(line)
	if !ok {
		return 0, false
	}
	return row - p.vp.YOffset, true
}

func (p paneView) SetScrollTop(offset int) {
	p.vp.SetYOffset(offset)
}
