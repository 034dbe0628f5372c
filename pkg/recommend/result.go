package recommend

import (
	"container/heap"
	"sort"

	"deck-recommender/pkg/deck"
)

// resultKey identifies decks that would read as the same result.
type resultKey struct {
	Score      int
	TotalPower int
	LeaderID   int
}

func keyOf(d *deck.Detail) resultKey {
	return resultKey{Score: d.Score, TotalPower: d.Power.Total, LeaderID: d.LeaderID()}
}

// better is the result order: target value, then power, then the lower
// leader card id.
func better(a, b *deck.Detail) bool {
	if a.TargetValue != b.TargetValue {
		return a.TargetValue > b.TargetValue
	}
	if a.Power.Total != b.Power.Total {
		return a.Power.Total > b.Power.Total
	}
	return a.LeaderID() < b.LeaderID()
}

// worstFirst is a min-heap with the worst kept deck on top.
type worstFirst []*deck.Detail

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return better(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(*deck.Detail)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopK keeps the best limit distinct decks seen so far.
type TopK struct {
	limit int
	heap  worstFirst
	keys  map[resultKey]bool
}

func NewTopK(limit int) *TopK {
	return &TopK{limit: limit, keys: make(map[resultKey]bool)}
}

// Update offers a deck and reports whether it was kept.
func (t *TopK) Update(d *deck.Detail) bool {
	k := keyOf(d)
	if t.limit <= 0 || t.keys[k] {
		return false
	}
	if len(t.heap) >= t.limit {
		if !better(d, t.heap[0]) {
			return false
		}
		evicted := heap.Pop(&t.heap).(*deck.Detail)
		delete(t.keys, keyOf(evicted))
	}
	heap.Push(&t.heap, d)
	t.keys[k] = true
	return true
}

func (t *TopK) Len() int { return len(t.heap) }

// Full reports whether limit decks are kept.
func (t *TopK) Full() bool { return len(t.heap) >= t.limit }

// Worst is the deck that would be evicted next, nil when empty.
func (t *TopK) Worst() *deck.Detail {
	if len(t.heap) == 0 {
		return nil
	}
	return t.heap[0]
}

// Sorted returns the kept decks best first.
func (t *TopK) Sorted() []*deck.Detail {
	out := make([]*deck.Detail, len(t.heap))
	copy(out, t.heap)
	sort.SliceStable(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}
