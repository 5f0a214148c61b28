package reconcile

import (
	"encoding/binary"
	"hash/fnv"

	"github.com/fwojciec/preview"
)

// sig is a pair of subtree hashes. full covers everything; content ignores
// source-line tags at every depth so a block whose line shifted still
// matches its previous rendering.
type sig struct {
	full    uint64
	content uint64
}

// hasher memoizes subtree signatures for the lifetime of one Diff call.
type hasher struct {
	memo map[*preview.Node]sig
}

func newHasher() *hasher {
	return &hasher{memo: make(map[*preview.Node]sig)}
}

func (h *hasher) sig(n *preview.Node) sig {
	if s, ok := h.memo[n]; ok {
		return s
	}
	full := fnv.New64a()
	content := fnv.New64a()
	var buf [8]byte
	both := func(b []byte) {
		full.Write(b)
		content.Write(b)
	}
	str := func(s string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
		both(buf[:])
		both([]byte(s))
	}

	buf[0] = byte(n.Type)
	both(buf[:1])
	str(n.Tag)
	str(n.Text)
	for _, a := range n.Attrs {
		if a.Key == preview.AttrSourceLine {
			full.Write([]byte(a.Key))
			full.Write([]byte{0})
			full.Write([]byte(a.Val))
			full.Write([]byte{0})
			continue
		}
		str(a.Key)
		str(a.Val)
	}
	binary.LittleEndian.PutUint64(buf[:], uint64(len(n.Children)))
	both(buf[:])
	for _, c := range n.Children {
		cs := h.sig(c)
		binary.LittleEndian.PutUint64(buf[:], cs.full)
		full.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], cs.content)
		content.Write(buf[:])
	}

	s := sig{full: full.Sum64(), content: content.Sum64()}
	h.memo[n] = s
	return s
}
