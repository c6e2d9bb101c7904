package orderstat

// Node is a handle to one element of a Tree. Handles stay valid until the
// element is deleted, so callers can keep them as identity→position indexes.
type Node[V any] struct {
	Value V

	marked bool
	prio   uint64
	size   int
	marks  int

	left, right, parent *Node[V]
}

// Marked reports whether the element is counted by the marked aggregates.
func (n *Node[V]) Marked() bool { return n.marked }

// Tree is a positional sequence stored as a treap. Every node carries the
// size of its subtree and the number of marked elements in it, which gives
// O(log n) insertion by rank, rank of a handle, and counted prefixes.
//
// Tree is not safe for concurrent use.
type Tree[V any] struct {
	root *Node[V]
	seed uint64
}

// New creates an empty tree.
func New[V any]() *Tree[V] {
	return &Tree[V]{seed: 0x9e3779b97f4a7c15}
}

// Len returns the number of elements.
func (t *Tree[V]) Len() int { return size(t.root) }

// Marked returns the number of marked elements.
func (t *Tree[V]) Marked() int { return marks(t.root) }

// Clear drops every element. Existing handles become invalid.
func (t *Tree[V]) Clear() { t.root = nil }

// InsertAt inserts v so that it ends up at position rank, 0 <= rank <= Len().
func (t *Tree[V]) InsertAt(rank int, v V, marked bool) *Node[V] {
	if rank < 0 || rank > t.Len() {
		panic("orderstat: insert rank out of range")
	}
	n := &Node[V]{Value: v, marked: marked, prio: t.nextPrio(), size: 1, marks: b2i(marked)}
	if t.root == nil {
		t.root = n
		return n
	}

	cur := t.root
	for {
		ls := size(cur.left)
		if rank <= ls {
			if cur.left == nil {
				cur.left = n
				break
			}
			cur = cur.left
		} else {
			rank -= ls + 1
			if cur.right == nil {
				cur.right = n
				break
			}
			cur = cur.right
		}
	}
	n.parent = cur
	for p := cur; p != nil; p = p.parent {
		p.size++
		p.marks += n.marks
	}
	for n.parent != nil && n.prio > n.parent.prio {
		t.rotateUp(n)
	}
	return n
}

// Append inserts v at the end.
func (t *Tree[V]) Append(v V, marked bool) *Node[V] {
	return t.InsertAt(t.Len(), v, marked)
}

// Delete removes the element behind n.
func (t *Tree[V]) Delete(n *Node[V]) {
	for n.left != nil || n.right != nil {
		var c *Node[V]
		switch {
		case n.left == nil:
			c = n.right
		case n.right == nil:
			c = n.left
		case n.left.prio > n.right.prio:
			c = n.left
		default:
			c = n.right
		}
		t.rotateUp(c)
	}

	p := n.parent
	if p == nil {
		t.root = nil
	} else {
		if p.left == n {
			p.left = nil
		} else {
			p.right = nil
		}
		for q := p; q != nil; q = q.parent {
			q.pull()
		}
	}
	n.parent = nil
}

// At returns the handle at position rank, or nil when out of range.
func (t *Tree[V]) At(rank int) *Node[V] {
	if rank < 0 || rank >= t.Len() {
		return nil
	}
	cur := t.root
	for cur != nil {
		ls := size(cur.left)
		switch {
		case rank < ls:
			cur = cur.left
		case rank == ls:
			return cur
		default:
			rank -= ls + 1
			cur = cur.right
		}
	}
	return nil
}

// Rank returns the position of n.
func (t *Tree[V]) Rank(n *Node[V]) int {
	r := size(n.left)
	for x := n; x.parent != nil; x = x.parent {
		if x.parent.right == x {
			r += size(x.parent.left) + 1
		}
	}
	return r
}

// MarkedRank returns the number of marked elements positioned before n.
func (t *Tree[V]) MarkedRank(n *Node[V]) int {
	m := marks(n.left)
	for x := n; x.parent != nil; x = x.parent {
		if p := x.parent; p.right == x {
			m += marks(p.left) + b2i(p.marked)
		}
	}
	return m
}

// MarkedPrefix returns the number of marked elements among the first rank
// elements.
func (t *Tree[V]) MarkedPrefix(rank int) int {
	m := 0
	cur := t.root
	for cur != nil && rank > 0 {
		ls := size(cur.left)
		if rank <= ls {
			cur = cur.left
			continue
		}
		m += marks(cur.left) + b2i(cur.marked)
		rank -= ls + 1
		cur = cur.right
	}
	return m
}

// SetMarked changes the mark of n and updates the aggregates on its path.
func (t *Tree[V]) SetMarked(n *Node[V], marked bool) {
	if n.marked == marked {
		return
	}
	n.marked = marked
	d := 1
	if !marked {
		d = -1
	}
	for x := n; x != nil; x = x.parent {
		x.marks += d
	}
}

// Search returns the first position whose element satisfies pred, or Len()
// when none does. pred must be monotone over the sequence: false for a
// prefix and true for the rest.
func (t *Tree[V]) Search(pred func(V) bool) int {
	res := t.Len()
	base := 0
	cur := t.root
	for cur != nil {
		if pred(cur.Value) {
			res = base + size(cur.left)
			cur = cur.left
		} else {
			base += size(cur.left) + 1
			cur = cur.right
		}
	}
	return res
}

// Ascend calls fn for every handle in order until fn returns false.
func (t *Tree[V]) Ascend(fn func(n *Node[V]) bool) {
	var stack []*Node[V]
	cur := t.root
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			stack = append(stack, cur)
			cur = cur.left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(cur) {
			return
		}
		cur = cur.right
	}
}

// Values returns every value in order.
func (t *Tree[V]) Values() []V {
	out := make([]V, 0, t.Len())
	t.Ascend(func(n *Node[V]) bool {
		out = append(out, n.Value)
		return true
	})
	return out
}

// MarkedValues returns the marked values in order.
func (t *Tree[V]) MarkedValues() []V {
	out := make([]V, 0, t.Marked())
	t.Ascend(func(n *Node[V]) bool {
		if n.marked {
			out = append(out, n.Value)
		}
		return true
	})
	return out
}

func (t *Tree[V]) rotateUp(x *Node[V]) {
	p := x.parent
	g := p.parent
	if p.left == x {
		p.left = x.right
		if x.right != nil {
			x.right.parent = p
		}
		x.right = p
	} else {
		p.right = x.left
		if x.left != nil {
			x.left.parent = p
		}
		x.left = p
	}
	p.parent = x
	x.parent = g
	switch {
	case g == nil:
		t.root = x
	case g.left == p:
		g.left = x
	default:
		g.right = x
	}
	p.pull()
	x.pull()
}

// nextPrio is splitmix64 over a per-tree counter.
func (t *Tree[V]) nextPrio() uint64 {
	t.seed += 0x9e3779b97f4a7c15
	z := t.seed
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (n *Node[V]) pull() {
	n.size = 1 + size(n.left) + size(n.right)
	n.marks = b2i(n.marked) + marks(n.left) + marks(n.right)
}

func size[V any](n *Node[V]) int {
	if n == nil {
		return 0
	}
	return n.size
}

func marks[V any](n *Node[V]) int {
	if n == nil {
		return 0
	}
	return n.marks
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
