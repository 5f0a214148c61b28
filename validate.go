package preview

import "fmt"

// ValidateTags checks that source-line tags on sibling nodes are
// non-decreasing in document order at every level of the tree.
func ValidateTags(root *Node) error {
	var err error
	root.Walk(func(n *Node, path Path) bool {
		if err != nil {
			return false
		}
		last := -1
		for i, c := range n.Children {
			line, ok := c.SourceLine()
			if !ok {
				continue
			}
			if line < last {
				err = fmt.Errorf("tag %d at %s follows tag %d: %w", line, path.Append(i), last, ErrValidation)
				return false
			}
			last = line
		}
		return true
	})
	return err
}
