package mock

// Editor is a test double for preview.Editor.
// Set the function fields for the methods you need.
type Editor struct {
	LineCountFn func() int
	LineTopFn   func(line int) int
	ScrollTopFn func() int
	OffsetAtFn  func(x, y int) (int, bool)
	LineOfFn    func(offset int) int
}

// LineCount delegates to LineCountFn.
func (e *Editor) LineCount() int {
	return e.LineCountFn()
}

// LineTop delegates to LineTopFn.
func (e *Editor) LineTop(line int) int {
	return e.LineTopFn(line)
}

// ScrollTop delegates to ScrollTopFn.
func (e *Editor) ScrollTop() int {
	return e.ScrollTopFn()
}

// OffsetAt delegates to OffsetAtFn.
func (e *Editor) OffsetAt(x, y int) (int, bool) {
	return e.OffsetAtFn(x, y)
}

// LineOf delegates to LineOfFn.
func (e *Editor) LineOf(offset int) int {
	return e.LineOfFn(offset)
}

// Pane is a test double for preview.Pane.
// Set the function fields for the methods you need.
type Pane struct {
	ScrollTopFn    func() int
	ContainerTopFn func() int
	NodeTopFn      func(line int) (int, bool)
	MaxScrollFn    func() int
	SetScrollTopFn func(offset int)
}

// ScrollTop delegates to ScrollTopFn.
func (p *Pane) ScrollTop() int {
	return p.ScrollTopFn()
}

// ContainerTop delegates to ContainerTopFn.
func (p *Pane) ContainerTop() int {
	return p.ContainerTopFn()
}

// NodeTop delegates to NodeTopFn.
func (p *Pane) NodeTop(line int) (int, bool) {
	return p.NodeTopFn(line)
}

// MaxScroll delegates to MaxScrollFn.
func (p *Pane) MaxScroll() int {
	return p.MaxScrollFn()
}

// SetScrollTop delegates to SetScrollTopFn.
func (p *Pane) SetScrollTop(offset int) {
	p.SetScrollTopFn(offset)
}
