package tokenizer

import (
	"errors"
	"fmt"
)

// specialsTrie is a byte-wise prefix tree over special token literals.
// matchAt walks at most len(longest literal) bytes per call, so a full
// input scan stays linear regardless of how many literals are registered.
type specialsTrie struct {
	root trieNode
}

type trieNode struct {
	next     map[byte]*trieNode
	id       Rank
	terminal bool
}

func (t *specialsTrie) insert(lit string, id Rank) error {
	if lit == "" {
		return errors.New("tokenizer: empty special literal")
	}
	n := &t.root
	for i := 0; i < len(lit); i++ {
		if n.next == nil {
			n.next = make(map[byte]*trieNode)
		}
		child := n.next[lit[i]]
		if child == nil {
			child = &trieNode{}
			n.next[lit[i]] = child
		}
		n = child
	}
	if n.terminal {
		return fmt.Errorf("tokenizer: duplicate special literal %q", lit)
	}
	n.id = id
	n.terminal = true
	return nil
}

// matchAt returns the longest registered literal starting exactly at s[i].
// When two literals share a prefix the longer match wins.
func (t *specialsTrie) matchAt(s string, i int) (id Rank, length int, ok bool) {
	n := &t.root
	for j := i; j < len(s); j++ {
		n = n.next[s[j]]
		if n == nil {
			break
		}
		if n.terminal {
			id, length, ok = n.id, j+1-i, true
		}
	}
	return id, length, ok
}
