package preview

import (
	"sort"
	"strings"
)

// Document is the source buffer split into 0-based lines. A Document is
// immutable once built.
type Document struct {
	text   string
	starts []int
}

// NewDocument splits text into lines on '\n'.
func NewDocument(text string) Document {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Document{text: text, starts: starts}
}

// Text returns the full document text.
func (d Document) Text() string { return d.text }

// LineCount returns the number of lines. An empty document has one line.
func (d Document) LineCount() int {
	if d.starts == nil {
		return 1
	}
	return len(d.starts)
}

// LastLine returns the index of the final line.
func (d Document) LastLine() int {
	return d.LineCount() - 1
}

// LineStart returns the byte offset at which line begins. Out of range
// lines are clamped.
func (d Document) LineStart(line int) int {
	if d.starts == nil || line <= 0 {
		return 0
	}
	if line >= len(d.starts) {
		return len(d.text)
	}
	return d.starts[line]
}

// Line returns the text of line without its trailing newline.
func (d Document) Line(line int) string {
	if line < 0 || line >= d.LineCount() {
		return ""
	}
	start := d.LineStart(line)
	end := len(d.text)
	if line+1 < d.LineCount() {
		end = d.starts[line+1] - 1
	}
	return d.text[start:end]
}

// Lines returns every line without trailing newlines.
func (d Document) Lines() []string {
	return strings.Split(d.text, "\n")
}

// LineOf returns the line containing byte offset.
func (d Document) LineOf(offset int) int {
	if d.starts == nil || offset <= 0 {
		return 0
	}
	return sort.SearchInts(d.starts, offset+1) - 1
}

// Source is the editing surface's buffer as seen by the preview.
type Source interface {
	Text() string
	Document() Document
}
