package hierarchy

import "slices"

// Stats counts what Normalize changed.
type Stats struct {
	Renamed int
	Pruned  int
}

// Normalize repairs a freshly built tree: blank names are inherited, single
// child placeholders are pruned and IDs are renumbered, in that order.
// Running it on its own output changes nothing.
func Normalize(t *Tree) Stats {
	var st Stats
	st.Renamed = InheritNames(t)
	st.Pruned = Prune(t)
	Renumber(t)
	return st
}

// InheritNames gives every non-root node with an empty name the name of its
// parent. Parents are handled before children, so names flow down chains of
// blank nodes. Blank roots stay blank. It returns the number of renamed nodes.
func InheritNames(t *Tree) int {
	n := 0
	t.Walk(func(i, _ int) bool {
		s := &t.nodes[i]
		if s.parent == NoParent || s.name != "" {
			return true
		}
		if name := t.nodes[s.parent].name; name != "" {
			s.name = name
			n++
		}
		return true
	})
	return n
}

// Prune splices out placeholder nodes (code "-") that have exactly one child
// which is itself a leaf. The child takes the placeholder's position among
// its siblings, or in the root list. Candidates are collected over the whole
// tree before any is removed, and the pass repeats until nothing qualifies,
// so chains of placeholders collapse completely. It returns the number of
// pruned nodes.
func Prune(t *Tree) int {
	total := 0
	for {
		var candidates []int
		t.Walk(func(i, _ int) bool {
			if t.prunable(i) {
				candidates = append(candidates, i)
			}
			return true
		})
		if len(candidates) == 0 {
			return total
		}
		for _, i := range candidates {
			t.splice(i)
		}
		total += len(candidates)
	}
}

func (t *Tree) prunable(i int) bool {
	s := t.nodes[i]
	return s.code == Placeholder && len(s.children) == 1 && len(t.nodes[s.children[0]].children) == 0
}

// splice replaces node i by its only child.
func (t *Tree) splice(i int) {
	s := &t.nodes[i]
	child := s.children[0]
	parent := s.parent

	if parent == NoParent {
		t.roots = replaceAt(t.roots, i, child)
	} else {
		p := &t.nodes[parent]
		p.children = replaceAt(p.children, i, child)
	}
	t.nodes[child].parent = parent

	s.children = nil
	s.parent = NoParent
	s.detached = true
}

func replaceAt(list []int, old, repl int) []int {
	if at := slices.Index(list, old); at >= 0 {
		list[at] = repl
		return list
	}
	return append(list, repl)
}

// Renumber assigns IDs 1..n to the attached nodes in walk order.
func Renumber(t *Tree) {
	next := 1
	t.Walk(func(i, _ int) bool {
		t.nodes[i].id = next
		next++
		return true
	})
}
