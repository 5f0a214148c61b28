package goldmark

import (
	"bytes"
	"fmt"

	"github.com/fwojciec/preview"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// KindMath is the node kind of a math span.
var KindMath = ast.NewNodeKind("Math")

// Math is a $...$ or $$...$$ span holding raw TeX.
type Math struct {
	ast.BaseInline
	Display bool
	TeX     []byte
}

func (n *Math) Kind() ast.NodeKind { return KindMath }

func (n *Math) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Display": fmt.Sprint(n.Display),
		"TeX":     string(n.TeX),
	}, nil)
}

type mathExtension struct{}

func (mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(util.Prioritized(mathParser{}, 400)))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(util.Prioritized(mathRenderer{}, 400)))
}

type mathParser struct{}

func (mathParser) Trigger() []byte {
	return []byte{'$'}
}

// Parse accepts $$tex$$ anywhere and $tex$ when the opening dollar is not
// followed by a space, the closing one is not preceded by a space, and no
// digit follows the closing dollar.
func (mathParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if bytes.HasPrefix(line, []byte("$$")) {
		end := bytes.Index(line[2:], []byte("$$"))
		if end <= 0 {
			return nil
		}
		block.Advance(end + 4)
		return &Math{Display: true, TeX: bytes.Clone(line[2 : 2+end])}
	}
	if len(line) < 3 || isSpace(line[1]) {
		return nil
	}
	for i := 2; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '$':
			if isSpace(line[i-1]) || (i+1 < len(line) && line[i+1] >= '0' && line[i+1] <= '9') {
				continue
			}
			block.Advance(i + 1)
			return &Math{TeX: bytes.Clone(line[1:i])}
		}
	}
	return nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

type mathRenderer struct{}

func (mathRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMath, renderMath)
}

func renderMath(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*Math)
	mode := preview.ClassMathInline
	if n.Display {
		mode = preview.ClassMathDisplay
	}
	_, _ = fmt.Fprintf(w, `<span class="%s %s">`, preview.ClassMath, mode)
	_, _ = w.Write(util.EscapeHTML(n.TeX))
	_, _ = w.WriteString("</span>")
	return ast.WalkSkipChildren, nil
}
