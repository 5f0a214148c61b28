package preview_test

import (
	"testing"

	"github.com/fwojciec/preview"
	"github.com/stretchr/testify/assert"
)

func TestDocument(t *testing.T) {
	t.Parallel()

	doc := preview.NewDocument("# A\n\npara one\n\npara two")

	assert.Equal(t, 5, doc.LineCount())
	assert.Equal(t, 4, doc.LastLine())
	assert.Equal(t, "para one", doc.Line(2))
	assert.Equal(t, "", doc.Line(1))
	assert.Equal(t, "para two", doc.Line(4))
	assert.Equal(t, "", doc.Line(9))
	assert.Equal(t, 5, doc.LineStart(2))
	assert.Equal(t, 0, doc.LineStart(-3))
	assert.Equal(t, len(doc.Text()), doc.LineStart(50))
	assert.Equal(t, []string{"# A", "", "para one", "", "para two"}, doc.Lines())
}

func TestDocument_LineOf(t *testing.T) {
	t.Parallel()

	doc := preview.NewDocument("ab\ncd\n")

	assert.Equal(t, 0, doc.LineOf(0))
	assert.Equal(t, 0, doc.LineOf(2))
	assert.Equal(t, 1, doc.LineOf(3))
	assert.Equal(t, 1, doc.LineOf(5))
	assert.Equal(t, 2, doc.LineOf(6))
	assert.Equal(t, 2, doc.LineOf(60))
}

func TestDocument_ZeroValue(t *testing.T) {
	t.Parallel()

	var doc preview.Document
	assert.Equal(t, 1, doc.LineCount())
	assert.Equal(t, 0, doc.LineOf(10))
	assert.Equal(t, "", doc.Line(0))
}
