// Package terminal lays out a rendered preview tree as ANSI-styled rows for
// a terminal pane, recording the row where each tagged block starts.
package terminal

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/fwojciec/preview"
)

// Page is a laid out tree.
type Page struct {
	// Lines holds one styled string per terminal row.
	Lines []string
	// Anchors maps source lines to the first row of their block.
	Anchors map[int]int
}

// String joins the rows.
func (p Page) String() string {
	return strings.Join(p.Lines, "\n")
}

// Height returns the number of rows.
func (p Page) Height() int {
	return len(p.Lines)
}

// Anchor returns the first row of the block tagged with line.
func (p Page) Anchor(line int) (int, bool) {
	row, ok := p.Anchors[line]
	return row, ok
}

// Option configures a Layout.
type Option func(*Layout)

// WithTheme sets the colors.
func WithTheme(theme preview.Theme) Option {
	return func(l *Layout) {
		l.theme = theme
	}
}

// WithMath supplies typeset text for math spans. Spans without a result
// show their TeX.
func WithMath(lookup func(n *preview.Node) (string, bool)) Option {
	return func(l *Layout) {
		l.math = lookup
	}
}

// Layout renders trees into Pages.
type Layout struct {
	theme preview.Theme
	math  func(*preview.Node) (string, bool)

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	code      lipgloss.Style
	link      lipgloss.Style
	hashtag   lipgloss.Style
	mathStyle lipgloss.Style
	quote     lipgloss.Style
	muted     lipgloss.Style
}

// New returns a Layout.
func New(opts ...Option) *Layout {
	l := &Layout{theme: preview.DefaultTheme()}
	for _, opt := range opts {
		opt(l)
	}
	t := l.theme
	l.bold = lipgloss.NewStyle().Bold(true)
	l.italic = lipgloss.NewStyle().Italic(true)
	l.strike = lipgloss.NewStyle().Strikethrough(true)
	l.heading = lipgloss.NewStyle().Foreground(ansiColor(t.Heading)).Bold(true)
	l.code = lipgloss.NewStyle().Foreground(ansiColor(t.Code))
	l.link = lipgloss.NewStyle().Foreground(ansiColor(t.Link)).Underline(true)
	l.hashtag = lipgloss.NewStyle().Foreground(ansiColor(t.Hashtag))
	l.mathStyle = lipgloss.NewStyle().Foreground(ansiColor(t.Math))
	l.quote = lipgloss.NewStyle().Foreground(ansiColor(t.Quote))
	l.muted = lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true)
	return l
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// minWidth keeps nested blocks readable in very narrow panes.
const minWidth = 10

// Render lays out root at width columns.
func (l *Layout) Render(root *preview.Node, width int) Page {
	w := l.newWriter(width)
	if root != nil {
		w.container(root)
	}
	return Page{Lines: w.rows, Anchors: w.anchors}
}

// writer accumulates the rows of one block container.
type writer struct {
	*Layout
	width   int
	rows    []string
	anchors map[int]int
	gap     bool
	tight   bool // no blank rows between blocks
}

func (l *Layout) newWriter(width int) *writer {
	return &writer{Layout: l, width: max(width, minWidth), anchors: make(map[int]int)}
}

// begin starts a block: it writes the pending blank row and anchors n.
func (w *writer) begin(n *preview.Node) {
	if w.gap && !w.tight && len(w.rows) > 0 {
		w.rows = append(w.rows, "")
	}
	w.gap = false
	if n == nil {
		return
	}
	if line, ok := n.SourceLine(); ok {
		if _, seen := w.anchors[line]; !seen {
			w.anchors[line] = len(w.rows)
		}
	}
}

func (w *writer) add(s string) {
	w.rows = append(w.rows, strings.Split(s, "\n")...)
}

// merge appends the rows of sub, prefixing the first with first and the
// rest with rest.
func (w *writer) merge(sub *writer, first, rest string) {
	base := len(w.rows)
	for line, row := range sub.anchors {
		if _, seen := w.anchors[line]; !seen {
			w.anchors[line] = base + row
		}
	}
	for i, r := range sub.rows {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		w.rows = append(w.rows, prefix+r)
	}
}

func (w *writer) wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(max(width, minWidth)).Render(s)
}

// container lays out the children of n. Runs of inline children become
// wrapped paragraphs; block children are laid out in turn.
func (w *writer) container(n *preview.Node) {
	var run []*preview.Node
	flush := func() {
		blank := true
		for _, n := range run {
			if strings.TrimSpace(n.TextContent()) != "" || n.Type == preview.ElementNode {
				blank = false
			}
		}
		text := w.inlines(run)
		run = run[:0]
		if blank {
			return
		}
		w.begin(nil)
		w.add(w.wrap(text, w.width))
		w.gap = true
	}
	for _, c := range n.Children {
		if isBlock(c) {
			flush()
			w.block(c)
			continue
		}
		if c.Type != preview.CommentNode {
			run = append(run, c)
		}
	}
	flush()
}

func (w *writer) block(n *preview.Node) {
	switch n.Tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		w.begin(n)
		w.add(w.wrap(w.heading.Render(w.inlines(n.Children)), w.width))

	case "p", "dt":
		w.begin(n)
		text := w.inlines(n.Children)
		if n.Tag == "dt" {
			text = w.bold.Render(text)
		}
		w.add(w.wrap(text, w.width))

	case "pre":
		w.begin(n)
		w.codeBlock(n)

	case "ul", "ol":
		w.begin(n)
		w.list(n)

	case "blockquote":
		w.begin(n)
		sub := w.newWriter(w.width - 2)
		sub.container(n)
		bar := w.quote.Render("│") + " "
		w.merge(sub, bar, bar)

	case "dd":
		w.begin(n)
		sub := w.newWriter(w.width - 2)
		sub.container(n)
		w.merge(sub, "  ", "  ")

	case "hr":
		w.begin(n)
		w.add(w.muted.Render(strings.Repeat("─", w.width)))

	case "table":
		w.begin(n)
		w.add(w.table(n))

	default:
		// Wrapper blocks such as div, section, dl and details.
		w.container(n)
		return
	}
	w.gap = true
}

func (w *writer) codeBlock(pre *preview.Node) {
	code := pre
	if len(pre.Children) == 1 && pre.Children[0].Tag == "code" {
		code = pre.Children[0]
	}
	if class, ok := code.Attr("class"); ok {
		for _, c := range strings.Fields(class) {
			if lang, found := strings.CutPrefix(c, "language-"); found {
				w.add(w.muted.Render(lang))
			}
		}
	}
	gutter := w.muted.Render("│") + " "
	for _, line := range strings.Split(strings.TrimRight(code.TextContent(), "\n"), "\n") {
		w.rows = append(w.rows, gutter+w.code.Render(line))
	}
}

func (w *writer) list(n *preview.Node) {
	ordered := n.Tag == "ol"
	num := 1
	if s, ok := n.Attr("start"); ok {
		if v, err := strconv.Atoi(s); err == nil {
			num = v
		}
	}
	for _, item := range n.Children {
		if item.Type != preview.ElementNode || item.Tag != "li" {
			continue
		}
		marker := "- "
		if ordered {
			marker = strconv.Itoa(num) + ". "
			num++
		}
		pad := strings.Repeat(" ", lipgloss.Width(marker))

		sub := w.newWriter(w.width - len(pad))
		sub.tight = !hasChild(item, "p")
		sub.begin(item)
		sub.container(item)
		if len(sub.rows) == 0 {
			sub.rows = []string{""}
		}
		w.merge(sub, marker, pad)
	}
}

func (w *writer) table(n *preview.Node) string {
	var headers []string
	var rows [][]string
	for _, tr := range findAll(n, "tr") {
		var cells []string
		header := false
		for _, cell := range tr.Children {
			if cell.Tag != "th" && cell.Tag != "td" {
				continue
			}
			header = header || cell.Tag == "th"
			cells = append(cells, w.inlines(cell.Children))
		}
		if header && headers == nil {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(w.muted).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return w.bold.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...)
	return t.Render()
}

// inlines renders inline nodes as one styled string. br becomes a newline.
func (w *writer) inlines(nodes []*preview.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		w.inline(n, &b)
	}
	lines := strings.Split(b.String(), "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = strings.TrimLeft(lines[i], " ")
	}
	return strings.Join(lines, "\n")
}

func (w *writer) inline(n *preview.Node, b *strings.Builder) {
	switch n.Type {
	case preview.TextNode:
		b.WriteString(strings.ReplaceAll(n.Text, "\n", " "))
		return
	case preview.ElementNode:
	default:
		return
	}

	switch n.Tag {
	case "br":
		b.WriteByte('\n')
	case "strong", "b":
		b.WriteString(w.bold.Render(w.inlines(n.Children)))
	case "em", "i":
		b.WriteString(w.italic.Render(w.inlines(n.Children)))
	case "del", "s":
		b.WriteString(w.strike.Render(w.inlines(n.Children)))
	case "code":
		b.WriteString(w.code.Render(w.inlines(n.Children)))
	case "a":
		text := w.inlines(n.Children)
		if n.HasClass(preview.ClassHashtag) {
			b.WriteString(w.hashtag.Render(text))
			return
		}
		b.WriteString(w.link.Render(text))
		href, _ := n.Attr("href")
		if href != "" && href != n.TextContent() && !strings.HasPrefix(href, "#") {
			b.WriteString(" " + w.muted.Render("("+href+")"))
		}
	case "img":
		alt, _ := n.Attr("alt")
		src, _ := n.Attr("src")
		b.WriteString(w.link.Render("[" + alt + "]"))
		if src != "" {
			b.WriteString(" " + w.muted.Render("("+src+")"))
		}
	case "input":
		if _, checked := n.Attr("checked"); checked {
			b.WriteString("[x]")
		} else {
			b.WriteString("[ ]")
		}
	case "sup":
		b.WriteString(w.muted.Render("[" + n.TextContent() + "]"))
	case "span":
		if n.HasClass(preview.ClassMath) {
			b.WriteString(w.mathStyle.Render(w.mathText(n)))
			return
		}
		b.WriteString(w.inlines(n.Children))
	default:
		b.WriteString(w.inlines(n.Children))
	}
}

func (w *writer) mathText(n *preview.Node) string {
	if w.math != nil {
		if text, ok := w.math(n); ok {
			return text
		}
	}
	return n.TextContent()
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "details": true, "div": true, "dl": true, "dt": true,
	"figure": true, "footer": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true,
	"li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "summary": true, "table": true, "ul": true,
}

func isBlock(n *preview.Node) bool {
	return n.Type == preview.ElementNode && blockTags[n.Tag]
}

func hasChild(n *preview.Node, tag string) bool {
	for _, c := range n.Children {
		if c.Type == preview.ElementNode && c.Tag == tag {
			return true
		}
	}
	return false
}

func findAll(n *preview.Node, tag string) []*preview.Node {
	var out []*preview.Node
	n.Walk(func(c *preview.Node, _ preview.Path) bool {
		if c.Type == preview.ElementNode && c.Tag == tag {
			out = append(out, c)
			return false
		}
		return true
	})
	return out
}
