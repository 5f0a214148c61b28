package preview

// PatchOp is a sealed interface representing one mutation of the live tree.
// Paths are resolved against the tree as it stands when the op is applied.
// The unexported marker method prevents external implementations.
type PatchOp interface {
	patchOp()
}

// OpInsert inserts Node as child Index of the node at Parent.
type OpInsert struct {
	Parent Path
	Index  int
	Node   *Node
}

func (OpInsert) patchOp() {}

// OpRemove removes the node at Path.
type OpRemove struct {
	Path Path
}

func (OpRemove) patchOp() {}

// OpReplace replaces the node at Path with Node.
type OpReplace struct {
	Path Path
	Node *Node
}

func (OpReplace) patchOp() {}

// OpUpdateAttrs sets the full attribute list of the element at Path.
type OpUpdateAttrs struct {
	Path  Path
	Attrs []Attr
}

func (OpUpdateAttrs) patchOp() {}

// OpUpdateText sets the content of the text or comment node at Path.
type OpUpdateText struct {
	Path Path
	Text string
}

func (OpUpdateText) patchOp() {}

// Interface compliance checks.
var (
	_ PatchOp = OpInsert{}
	_ PatchOp = OpRemove{}
	_ PatchOp = OpReplace{}
	_ PatchOp = OpUpdateAttrs{}
	_ PatchOp = OpUpdateText{}
)

// OpCounts tallies a patch by variant.
type OpCounts struct {
	Insert      int
	Remove      int
	Replace     int
	UpdateAttrs int
	UpdateText  int
}

// Total returns the number of ops counted.
func (c OpCounts) Total() int {
	return c.Insert + c.Remove + c.Replace + c.UpdateAttrs + c.UpdateText
}

// CountOps tallies ops by variant.
func CountOps(ops []PatchOp) OpCounts {
	var c OpCounts
	for _, op := range ops {
		switch op.(type) {
		case OpInsert:
			c.Insert++
		case OpRemove:
			c.Remove++
		case OpReplace:
			c.Replace++
		case OpUpdateAttrs:
			c.UpdateAttrs++
		case OpUpdateText:
			c.UpdateText++
		}
	}
	return c
}
