package recommend

import (
	"context"
	"math/rand"
	"slices"
	"time"

	"deck-recommender/pkg/card"
	"deck-recommender/pkg/deck"
)

// deckKey is the sorted arena indices of a deck, padded with -1.
type deckKey [5]int32

func makeKey(idx []int) deckKey {
	k := deckKey{-1, -1, -1, -1, -1}
	for i, v := range idx {
		if i < len(k) {
			k[i] = int32(v)
		}
	}
	n := min(len(idx), len(k))
	slices.Sort(k[:n])
	return k
}

// charMask is a set of character ids.
type charMask uint64

func charBit(id int) charMask { return 1 << uint(id&63) }

// searchInfo is everything one search round owns.
type searchInfo struct {
	ctx      context.Context
	calc     *deck.Calculator
	arena    []card.Detail
	cands    []int
	member   int
	repeat   bool
	deadline time.Time
	rng      *rand.Rand

	fixedCards []int
	fixedChars []int
	isFixed    []bool
	fixedChar  charMask

	memo  map[deckKey]float64
	top   *TopK
	evals int
}

func newSearchInfo(ctx context.Context, calc *deck.Calculator, cands []int, member, limit int, repeat bool, deadline time.Time) *searchInfo {
	arena := calc.Arena()
	return &searchInfo{
		ctx:      ctx,
		calc:     calc,
		arena:    arena,
		cands:    cands,
		member:   member,
		repeat:   repeat,
		deadline: deadline,
		isFixed:  make([]bool, len(arena)),
		memo:     make(map[deckKey]float64),
		top:      NewTopK(limit),
	}
}

func (s *searchInfo) setFixed(cards, chars []int) {
	s.fixedCards = cards
	s.fixedChars = chars
	for _, i := range cards {
		s.isFixed[i] = true
	}
	for _, c := range chars {
		s.fixedChar |= charBit(c)
	}
}

func newRand(seed int64) *rand.Rand {
	if seed < 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// expired reports a passed deadline or a cancelled context.
func (s *searchInfo) expired() bool {
	if s.ctx != nil && s.ctx.Err() != nil {
		return true
	}
	return !s.deadline.IsZero() && time.Now().After(s.deadline)
}

func (s *searchInfo) character(i int) int { return s.arena[i].CharacterID }

// hasFixed reports whether a full deck holds every fixed card and character.
func (s *searchInfo) hasFixed(idx []int) bool {
	for _, f := range s.fixedCards {
		if !slices.Contains(idx, f) {
			return false
		}
	}
	for _, c := range s.fixedChars {
		if !slices.ContainsFunc(idx, func(i int) bool { return s.character(i) == c }) {
			return false
		}
	}
	return true
}

// missingFixed counts the slots still needed for fixed cards and characters.
func (s *searchInfo) missingFixed(idx []int, chars charMask) int {
	n := 0
	pending := chars
	for _, f := range s.fixedCards {
		if !slices.Contains(idx, f) {
			n++
			pending |= charBit(s.character(f))
		}
	}
	for _, c := range s.fixedChars {
		if pending&charBit(c) == 0 {
			n++
		}
	}
	return n
}

// evaluate scores a full deck with leader reassignment and offers it to
// the top-K.
func (s *searchInfo) evaluate(idx []int) (*deck.Detail, error) {
	d, err := s.calc.EvaluateBest(idx)
	if err != nil {
		return nil, err
	}
	s.evals++
	EvaluationsTotal.Inc()
	s.top.Update(d)
	return d, nil
}

// score is evaluate behind the per-round memo.
func (s *searchInfo) score(idx []int) (float64, error) {
	k := makeKey(idx)
	if v, ok := s.memo[k]; ok {
		return v, nil
	}
	d, err := s.evaluate(idx)
	if err != nil {
		return 0, err
	}
	s.memo[k] = d.TargetValue
	return d.TargetValue, nil
}
