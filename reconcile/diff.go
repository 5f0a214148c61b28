// Package reconcile computes and applies patches between rendered trees.
//
// Diff matches children by stable keys so that an edit early in a document
// does not disturb the already rendered blocks after it: first by source
// line and content, then by content alone (blocks whose line shifted), then
// by source line alone (blocks edited in place), and finally by position
// between the keyed anchors.
package reconcile

import (
	"sort"

	"github.com/fwojciec/preview"
)

// Diff returns the ops that turn a tree equal to prev.Root into one equal to
// next.Root. A nil snapshot stands for an empty document. Neither snapshot
// is modified, and ops may share nodes with next; Apply clones them.
func Diff(prev, next *preview.Snapshot) []preview.PatchOp {
	a, b := root(prev), root(next)
	d := &differ{h: newHasher()}
	d.diffNode(a, b, preview.Path{})
	return d.ops
}

func root(s *preview.Snapshot) *preview.Node {
	if s == nil || s.Root == nil {
		return preview.Fragment()
	}
	return s.Root
}

type differ struct {
	h   *hasher
	ops []preview.PatchOp
}

func compatible(a, b *preview.Node) bool {
	if a.Type != b.Type {
		return false
	}
	return a.Type != preview.ElementNode || a.Tag == b.Tag
}

func (d *differ) emit(op preview.PatchOp) {
	d.ops = append(d.ops, op)
}

func (d *differ) diffNode(a, b *preview.Node, path preview.Path) {
	if d.h.sig(a).full == d.h.sig(b).full {
		return
	}
	if !compatible(a, b) {
		d.emit(preview.OpReplace{Path: path, Node: b})
		return
	}
	switch a.Type {
	case preview.TextNode, preview.CommentNode:
		if a.Text != b.Text {
			d.emit(preview.OpUpdateText{Path: path, Text: b.Text})
		}
		return
	}
	if !preview.EqualAttrs(a.Attrs, b.Attrs) {
		attrs := make([]preview.Attr, len(b.Attrs))
		copy(attrs, b.Attrs)
		d.emit(preview.OpUpdateAttrs{Path: path, Attrs: attrs})
	}
	d.diffChildren(a, b, path)
}

// lineKey identifies a tagged child by its source line and content.
type lineKey struct {
	line    int
	content uint64
}

// matcher pairs the children of one old node with those of one new node.
type matcher struct {
	h        *hasher
	old, new []*preview.Node
	// match maps a new index to an old index, or -1.
	match []int
	used  []bool
}

func (d *differ) diffChildren(a, b *preview.Node, path preview.Path) {
	m := &matcher{
		h:     d.h,
		old:   a.Children,
		new:   b.Children,
		match: make([]int, len(b.Children)),
		used:  make([]bool, len(a.Children)),
	}
	for j := range m.match {
		m.match[j] = -1
	}
	m.byLineAndContent()
	m.byContent()
	m.byLine()
	m.dropCrossings()
	m.byPosition()

	for i := len(m.old) - 1; i >= 0; i-- {
		if !m.used[i] {
			d.emit(preview.OpRemove{Path: path.Append(i)})
		}
	}
	for j, nc := range m.new {
		i := m.match[j]
		if i < 0 {
			d.emit(preview.OpInsert{Parent: clonePath(path), Index: j, Node: nc})
			continue
		}
		d.diffNode(m.old[i], nc, path.Append(j))
	}
}

func clonePath(p preview.Path) preview.Path {
	out := make(preview.Path, len(p))
	copy(out, p)
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// take records the pair (i, j).
func (m *matcher) take(i, j int) {
	m.match[j] = i
	m.used[i] = true
}

// closest returns the candidate old index nearest to j among cands (sorted
// ascending) that is unused and accepted by ok. Ties prefer an identical
// full hash, then the lower index.
func (m *matcher) closest(cands []int, j int, ok func(i int) bool) int {
	best := -1
	for _, i := range cands {
		if m.used[i] || (ok != nil && !ok(i)) {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		dist, bd := abs(i-j), abs(best-j)
		if dist > bd {
			break
		}
		if dist < bd || (m.sameFull(i, j) && !m.sameFull(best, j)) {
			best = i
		}
	}
	return best
}

func (m *matcher) sameFull(i, j int) bool {
	return m.h.sig(m.old[i]).full == m.h.sig(m.new[j]).full
}

// byLineAndContent pairs tagged children with identical line and content.
func (m *matcher) byLineAndContent() {
	cands := make(map[lineKey][]int)
	for i, c := range m.old {
		if line, ok := c.SourceLine(); ok {
			k := lineKey{line: line, content: m.h.sig(c).content}
			cands[k] = append(cands[k], i)
		}
	}
	if len(cands) == 0 {
		return
	}
	for j, c := range m.new {
		line, ok := c.SourceLine()
		if !ok {
			continue
		}
		if i := m.closest(cands[lineKey{line: line, content: m.h.sig(c).content}], j, nil); i >= 0 {
			m.take(i, j)
		}
	}
}

// byContent pairs remaining children by content alone. Candidates for each
// signature are consumed in order through a cursor, keeping the pass linear
// for long runs of identical nodes.
func (m *matcher) byContent() {
	cands := make(map[uint64][]int)
	for i, c := range m.old {
		if !m.used[i] {
			s := m.h.sig(c).content
			cands[s] = append(cands[s], i)
		}
	}
	cursor := make(map[uint64]int)
	for j, c := range m.new {
		if m.match[j] >= 0 {
			continue
		}
		s := m.h.sig(c).content
		list := cands[s]
		p := cursor[s]
		if p >= len(list) {
			continue
		}
		q := m.closestFrom(list, p, j)
		if q < 0 {
			continue
		}
		m.take(list[q], j)
		cursor[s] = q + 1
	}
}

// closestFrom is closest over list[p:], returning a position in list.
func (m *matcher) closestFrom(list []int, p, j int) int {
	best := -1
	for q := p; q < len(list); q++ {
		i := list[q]
		if m.used[i] {
			continue
		}
		if best < 0 {
			best = q
			continue
		}
		dist, bd := abs(i-j), abs(list[best]-j)
		if dist > bd {
			break
		}
		if dist < bd || (m.sameFull(i, j) && !m.sameFull(list[best], j)) {
			best = q
		}
	}
	return best
}

// byLine pairs remaining tagged children that kept their line and tag but
// changed content, so the edit recurses instead of replacing the block.
func (m *matcher) byLine() {
	cands := make(map[int][]int)
	for i, c := range m.old {
		if m.used[i] {
			continue
		}
		if line, ok := c.SourceLine(); ok {
			cands[line] = append(cands[line], i)
		}
	}
	if len(cands) == 0 {
		return
	}
	for j, c := range m.new {
		if m.match[j] >= 0 {
			continue
		}
		line, ok := c.SourceLine()
		if !ok {
			continue
		}
		i := m.closest(cands[line], j, func(i int) bool { return compatible(m.old[i], c) })
		if i >= 0 {
			m.take(i, j)
		}
	}
}

// dropCrossings keeps the longest order-preserving subset of the pairs and
// unmatches the rest.
func (m *matcher) dropCrossings() {
	var js []int
	for j, i := range m.match {
		if i >= 0 {
			js = append(js, j)
		}
	}
	if len(js) < 2 {
		return
	}
	// Patience sorting over the old indices in new order.
	tails := make([]int, 0, len(js))
	prev := make([]int, len(js))
	for k, j := range js {
		i := m.match[j]
		pos := sort.Search(len(tails), func(t int) bool { return m.match[js[tails[t]]] >= i })
		if pos > 0 {
			prev[k] = tails[pos-1]
		} else {
			prev[k] = -1
		}
		if pos == len(tails) {
			tails = append(tails, k)
		} else {
			tails[pos] = k
		}
	}
	keep := make([]bool, len(js))
	for k := tails[len(tails)-1]; k >= 0; k = prev[k] {
		keep[k] = true
	}
	for k, j := range js {
		if !keep[k] {
			m.used[m.match[j]] = false
			m.match[j] = -1
		}
	}
}

// byPosition pairs the leftover children inside each gap between matched
// anchors, in order. Incompatible pairs later become a Replace.
func (m *matcher) byPosition() {
	oi, nj := 0, 0
	flush := func(oEnd, nEnd int) {
		var olds, news []int
		for i := oi; i < oEnd; i++ {
			if !m.used[i] {
				olds = append(olds, i)
			}
		}
		for j := nj; j < nEnd; j++ {
			if m.match[j] < 0 {
				news = append(news, j)
			}
		}
		for k := 0; k < len(olds) && k < len(news); k++ {
			m.take(olds[k], news[k])
		}
	}
	for j := range m.new {
		i := m.match[j]
		if i < 0 {
			continue
		}
		flush(i, j)
		oi, nj = i+1, j+1
	}
	flush(len(m.old), len(m.new))
}
