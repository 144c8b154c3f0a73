package tokenizer

import (
	"cmp"

	heap "github.com/emirpasic/gods/v2/trees/binaryheap"
)

// mergeNode is one element of the doubly-linked merge list. Nodes are
// indexed by their byte offset in the piece; merging keeps the left node
// and marks the right one dead, so pointer updates are O(1) and the node
// slice never shifts.
type mergeNode struct {
	prev, next int
	start, n   int
	dead       bool
}

// mergePair is a heap entry scoring the adjacency (left, right). n
// snapshots the combined byte length so stale entries can be skipped
// after either side has merged.
type mergePair struct {
	left, right int
	rank        Rank
	n           int
}

// comparePairs orders by rank, then by position. The positional
// tie-break makes equal-rank merges resolve leftmost first, matching
// single-pass left-to-right replacement.
func comparePairs(a, b *mergePair) int {
	if c := cmp.Compare(a.rank, b.rank); c != 0 {
		return c
	}
	return cmp.Compare(a.left, b.left)
}

// merge byte-pair encodes a piece that is known not to be a whole
// vocabulary entry. It repeatedly collapses the best-ranked adjacent
// pair until no adjacent pair has a rank, then emits the surviving
// spans' ids. Every surviving span is a vocabulary entry: single bytes
// are total and merges only ever produce entries that exist.
func (c *Core) merge(piece string) []Rank {
	nodes, release := c.acquireNodes(len(piece))
	defer release()
	for i := 0; i < len(piece); i++ {
		nodes = append(nodes, mergeNode{prev: i - 1, next: i + 1, start: i, n: 1})
	}

	pairwise := func(left, right int) *mergePair {
		if left < 0 || right >= len(nodes) {
			return nil
		}
		l, r := &nodes[left], &nodes[right]
		if l.dead || r.dead {
			return nil
		}
		rank, ok := c.enc[piece[l.start:r.start+r.n]]
		if !ok {
			return nil
		}
		return &mergePair{left: left, right: right, rank: rank, n: l.n + r.n}
	}

	pairs := heap.NewWith(comparePairs)
	for i := 0; i+1 < len(nodes); i++ {
		if p := pairwise(i, i+1); p != nil {
			pairs.Push(p)
		}
	}

	for !pairs.Empty() {
		p, _ := pairs.Pop()
		l, r := &nodes[p.left], &nodes[p.right]
		// Skip stale entries: a side merged away, or the spans grew since
		// this pair was scored.
		if l.dead || r.dead || l.next != p.right || l.n+r.n != p.n {
			continue
		}

		l.n += r.n
		r.dead = true
		l.next = r.next
		if r.next < len(nodes) {
			nodes[r.next].prev = p.left
		}

		if np := pairwise(l.prev, p.left); np != nil {
			pairs.Push(np)
		}
		if np := pairwise(p.left, l.next); np != nil {
			pairs.Push(np)
		}
	}

	ids := make([]Rank, 0, len(piece)/2+1)
	for i := 0; i < len(nodes); i = nodes[i].next {
		n := &nodes[i]
		ids = append(ids, c.enc[piece[n.start:n.start+n.n]])
	}
	return ids
}

func (c *Core) acquireNodes(capHint int) ([]mergeNode, func()) {
	p := c.nodesPool.Get().(*[]mergeNode)
	if cap(*p) < capHint {
		buf := make([]mergeNode, 0, capHint)
		p = &buf
	}
	*p = (*p)[:0]
	release := func() {
		if cap(*p) > 1<<12 {
			return
		}
		*p = (*p)[:0]
		c.nodesPool.Put(p)
	}
	return *p, release
}
