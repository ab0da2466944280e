// Package hierarchy holds the task tree produced by a model builder and the
// passes that repair it after loading.
//
// Nodes live in an arena and refer to each other by index. Pruning detaches
// a node by clearing its links; the slot stays in the arena so indices held
// by callers remain valid.
package hierarchy

// NoParent marks a root node.
const NoParent = -1

// Placeholder is the hierarchical code of summary nodes that only exist to
// group a single task.
const Placeholder = "-"

// Node is a copy of one arena slot.
type Node struct {
	ID       int
	Name     string
	Code     string
	Ref      int64 // caller-owned reference, typically the source row id
	Parent   int
	Children []int
	Detached bool
}

type slot struct {
	id       int
	name     string
	code     string
	ref      int64
	parent   int
	children []int
	detached bool
}

// Tree is an ordered forest of task nodes.
type Tree struct {
	nodes []slot
	roots []int
}

// New returns an empty tree.
func New() *Tree { return &Tree{} }

// Add appends a node as the last child of parent (or as the last root when
// parent is NoParent) and returns its index. It panics on an invalid parent.
func (t *Tree) Add(parent, id int, name, code string, ref int64) int {
	idx := len(t.nodes)
	if parent != NoParent {
		t.check(parent)
		t.nodes[parent].children = append(t.nodes[parent].children, idx)
	} else {
		t.roots = append(t.roots, idx)
	}
	t.nodes = append(t.nodes, slot{id: id, name: name, code: code, ref: ref, parent: parent})
	return idx
}

func (t *Tree) check(i int) {
	if i < 0 || i >= len(t.nodes) {
		panic("hierarchy: node index out of range")
	}
	if t.nodes[i].detached {
		panic("hierarchy: node is detached")
	}
}

// Node returns a copy of node i.
func (t *Tree) Node(i int) Node {
	s := t.nodes[i]
	return Node{
		ID:       s.id,
		Name:     s.name,
		Code:     s.code,
		Ref:      s.ref,
		Parent:   s.parent,
		Children: append([]int(nil), s.children...),
		Detached: s.detached,
	}
}

// SetName replaces the name of node i.
func (t *Tree) SetName(i int, name string) { t.nodes[i].name = name }

// Roots returns the root indices in order.
func (t *Tree) Roots() []int { return append([]int(nil), t.roots...) }

// Len returns the number of attached nodes.
func (t *Tree) Len() int {
	n := 0
	for i := range t.nodes {
		if !t.nodes[i].detached {
			n++
		}
	}
	return n
}

// Walk visits attached nodes depth first, parents before children, roots
// and siblings in order. Returning false from fn stops the walk.
func (t *Tree) Walk(fn func(i, depth int) bool) {
	var visit func(i, depth int) bool
	visit = func(i, depth int) bool {
		if !fn(i, depth) {
			return false
		}
		for _, c := range t.nodes[i].children {
			if !visit(c, depth+1) {
				return false
			}
		}
		return true
	}
	for _, r := range t.roots {
		if !visit(r, 0) {
			return
		}
	}
}

// FindRef returns the index of the first attached node carrying ref, in walk
// order.
func (t *Tree) FindRef(ref int64) (int, bool) {
	found := -1
	t.Walk(func(i, _ int) bool {
		if t.nodes[i].ref == ref {
			found = i
			return false
		}
		return true
	})
	return found, found >= 0
}
