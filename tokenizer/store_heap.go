//go:build !goexperiment.arenas

package tokenizer

import "fmt"

// Heap-backed token store keeping direct references to the token byte
// slices. This is the default implementation and the fallback when
// arenas are not enabled.

type heapStore struct {
	arr [][]byte
}

func newTokenStore(pairs []Pair) (tokenStore, error) {
	maxID := Rank(0)
	for _, p := range pairs {
		if p.Rank > maxID {
			maxID = p.Rank
		}
	}
	arr := make([][]byte, int(maxID)+1)
	for _, p := range pairs {
		if len(p.Bytes) == 0 {
			return nil, fmt.Errorf("tokenizer: empty token bytes for rank %d", p.Rank)
		}
		if arr[p.Rank] != nil {
			return nil, fmt.Errorf("tokenizer: duplicate rank %d", p.Rank)
		}
		arr[p.Rank] = p.Bytes
	}
	return &heapStore{arr: arr}, nil
}

func (s *heapStore) AppendInto(dst *[]byte, id Rank) bool {
	if int(id) >= len(s.arr) {
		return false
	}
	b := s.arr[id]
	if b == nil {
		return false
	}
	*dst = append(*dst, b...)
	return true
}

func (s *heapStore) Close() {}
