package preview

// Editor is the editing surface as seen by scroll mapping. Positions are in
// the surface's own units (pixels, terminal rows).
type Editor interface {
	// LineCount returns the number of source lines.
	LineCount() int
	// LineTop returns the top of line in content coordinates.
	LineTop(line int) int
	// ScrollTop returns the current scroll position.
	ScrollTop() int
	// OffsetAt converts a viewport coordinate to a buffer offset.
	OffsetAt(x, y int) (int, bool)
	// LineOf returns the line containing a buffer offset.
	LineOf(offset int) int
}

// Pane is the preview container as seen by scroll mapping.
type Pane interface {
	// ScrollTop returns the current scroll position.
	ScrollTop() int
	// ContainerTop returns the viewport top of the container.
	ContainerTop() int
	// NodeTop returns the viewport top of the node tagged with line.
	NodeTop(line int) (int, bool)
	// MaxScroll returns the largest valid scroll position.
	MaxScroll() int
	// SetScrollTop moves the container to offset.
	SetScrollTop(offset int)
}

// ScrollState is the result of one sync computation.
type ScrollState struct {
	SourceLine    int
	EditorOffset  int
	PreviewOffset int
}

// Driver identifies who is currently moving the scroll positions.
type Driver int

// Scroll-sync drivers. Only one may be active at a time.
const (
	DriverIdle Driver = iota
	DriverKeyboard
	DriverPointer
	DriverProgrammatic
)

func (d Driver) String() string {
	switch d {
	case DriverIdle:
		return "idle"
	case DriverKeyboard:
		return "keyboard"
	case DriverPointer:
		return "pointer"
	case DriverProgrammatic:
		return "programmatic"
	default:
		return "unknown"
	}
}

// Mode is the preview visibility.
type Mode int

// Preview modes.
const (
	ModeHidden Mode = iota
	ModeSideBySide
)

func (m Mode) String() string {
	if m == ModeSideBySide {
		return "side-by-side"
	}
	return "hidden"
}

// ParseMode parses the String form of a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "hidden":
		return ModeHidden, true
	case "side-by-side", "sidebyside", "split":
		return ModeSideBySide, true
	default:
		return ModeHidden, false
	}
}
