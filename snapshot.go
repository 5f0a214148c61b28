package preview

import "sort"

// Snapshot is an immutable capture of the rendered tree at one generation.
type Snapshot struct {
	Root       *Node
	Generation uint64
}

// LineIndex is the sorted set of source lines that have an addressable node
// in one snapshot. It is built once per generation so lookups do not rescan
// the tree.
type LineIndex struct {
	lines []int
}

// NewLineIndex collects the source-line tags of root.
func NewLineIndex(root *Node) *LineIndex {
	seen := make(map[int]struct{})
	var lines []int
	root.Walk(func(n *Node, _ Path) bool {
		if line, ok := n.SourceLine(); ok {
			if _, dup := seen[line]; !dup {
				seen[line] = struct{}{}
				lines = append(lines, line)
			}
		}
		return true
	})
	sort.Ints(lines)
	return &LineIndex{lines: lines}
}

// Lines returns the tagged lines in ascending order.
func (x *LineIndex) Lines() []int {
	if x == nil {
		return nil
	}
	out := make([]int, len(x.lines))
	copy(out, x.lines)
	return out
}

// Len returns the number of addressable lines.
func (x *LineIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.lines)
}

// Contains reports whether line has an addressable node.
func (x *LineIndex) Contains(line int) bool {
	if x == nil {
		return false
	}
	i := sort.SearchInts(x.lines, line)
	return i < len(x.lines) && x.lines[i] == line
}

// Floor returns the greatest addressable line <= line.
func (x *LineIndex) Floor(line int) (int, bool) {
	if x == nil {
		return 0, false
	}
	i := sort.SearchInts(x.lines, line+1)
	if i == 0 {
		return 0, false
	}
	return x.lines[i-1], true
}
