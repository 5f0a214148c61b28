package goldmark

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/fwojciec/preview"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// lineTagger marks headings, paragraphs, list items and tables with the
// 0-based source line their range starts on. Blocks whose range cannot be
// recovered, and everything inside footnote definitions, stay untagged.
type lineTagger struct{}

var _ parser.ASTTransformer = lineTagger{}

func (lineTagger) Transform(doc *ast.Document, reader text.Reader, _ parser.Context) {
	lines := preview.NewDocument(string(reader.Source()))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case east.KindFootnoteList, east.KindFootnote:
			return ast.WalkSkipChildren, nil
		case ast.KindHeading, ast.KindParagraph, ast.KindListItem, east.KindTable:
			if off, ok := startOffset(n); ok {
				tagLine(n, lines.LineOf(off))
			} else if h, ok := n.(*ast.Heading); ok {
				if line, ok := emptyHeadingLine(h, lines); ok {
					tagLine(h, line)
				}
			}
		}
		return ast.WalkContinue, nil
	})
}

func tagLine(n ast.Node, line int) {
	n.SetAttributeString(preview.AttrSourceLine, []byte(strconv.Itoa(line)))
	class := preview.ClassSourceLine
	if v, ok := n.AttributeString("class"); ok {
		switch existing := v.(type) {
		case []byte:
			class = string(existing) + " " + class
		case string:
			class = existing + " " + class
		}
	}
	n.SetAttributeString("class", []byte(class))
}

// startOffset returns the first source byte of n's range: its own lines,
// else the first descendant block with lines or the first text segment.
func startOffset(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(0).Start, true
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Start, true
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if off, ok := startOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

// endOffset returns the last source byte of n's range.
func endOffset(n ast.Node) (int, bool) {
	if n.Type() == ast.TypeBlock && n.Lines().Len() > 0 {
		return n.Lines().At(n.Lines().Len()-1).Stop - 1, true
	}
	if t, ok := n.(*ast.Text); ok {
		return t.Segment.Stop - 1, true
	}
	for c := n.LastChild(); c != nil; c = c.PreviousSibling() {
		if off, ok := endOffset(c); ok {
			return off, true
		}
	}
	return 0, false
}

var atxMarkers [7]*regexp.Regexp

func init() {
	for level := 1; level < len(atxMarkers); level++ {
		atxMarkers[level] = regexp.MustCompile(fmt.Sprintf(`^[ \t>]*(?:[-+*][ \t]+|[0-9]+[.)][ \t]+)?#{%d}(?:[ \t]+#*)?[ \t\r]*$`, level))
	}
}

// emptyHeadingLine locates an ATX heading with no content, which carries no
// source range. It scans the lines between the closest preceding and
// following blocks for a bare marker of the heading's level.
func emptyHeadingLine(h *ast.Heading, lines preview.Document) (int, bool) {
	if h.Level < 1 || h.Level >= len(atxMarkers) {
		return 0, false
	}
	lo, hi := 0, lines.LineCount()
	for n := ast.Node(h); n != nil; n = n.Parent() {
		if prev := n.PreviousSibling(); prev != nil {
			if off, ok := endOffset(prev); ok {
				lo = lines.LineOf(off) + 1
			} else if line, ok := taggedLine(prev); ok {
				lo = line + 1
			}
			break
		}
	}
	for n := ast.Node(h); n != nil; n = n.Parent() {
		if next := n.NextSibling(); next != nil {
			if off, ok := startOffset(next); ok {
				hi = lines.LineOf(off)
			}
			break
		}
	}
	for i := lo; i < hi; i++ {
		if atxMarkers[h.Level].MatchString(lines.Line(i)) {
			return i, true
		}
	}
	return 0, false
}

func taggedLine(n ast.Node) (int, bool) {
	v, ok := n.AttributeString(preview.AttrSourceLine)
	if !ok {
		return 0, false
	}
	b, ok := v.([]byte)
	if !ok {
		return 0, false
	}
	line, err := strconv.Atoi(string(b))
	return line, err == nil
}
