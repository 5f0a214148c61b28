package preview

// Theme assigns ANSI color indices (0-15) to the parts of a rendered page.
// Indices rather than RGB values let the preview follow the terminal's own
// palette. A negative index means the terminal default.
type Theme struct {
	Heading int // Headings
	Link    int // Links and autolinks
	Hashtag int // #tag links
	Code    int // Inline code and code blocks
	Math    int // Typeset math
	Quote   int // Blockquote bar
	Muted   int // Status bar, URLs, rules
	Error   int // Error messages
	Accent  int // Focus markers, active pane border
}

// DefaultTheme returns the palette mdpreview starts with.
func DefaultTheme() Theme {
	return Theme{
		Heading: 5,
		Link:    4,
		Hashtag: 6,
		Code:    3,
		Math:    2,
		Quote:   8,
		Muted:   8,
		Error:   1,
		Accent:  5,
	}
}
