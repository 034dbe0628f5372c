package recommend

import (
	"math"
	"slices"
	"time"
)

const swapAttempts = 10

// initialState is the greedy start of an annealing run: fixed cards, then
// the strongest card of each fixed character, then the strongest card of
// every other character.
func (s *searchInfo) initialState() []int {
	state := make([]int, 0, s.member)
	var chars charMask
	add := func(i int) {
		state = append(state, i)
		chars |= charBit(s.character(i))
	}
	for _, i := range s.fixedCards {
		add(i)
	}

	byPower := slices.Clone(s.cands)
	slices.SortStableFunc(byPower, func(a, b int) int {
		pa, pb := s.arena[a].Power.Max, s.arena[b].Power.Max
		switch {
		case pa > pb:
			return -1
		case pa < pb:
			return 1
		}
		return s.arena[a].CardID - s.arena[b].CardID
	})
	for _, c := range s.fixedChars {
		if chars&charBit(c) != 0 {
			continue
		}
		for _, i := range byPower {
			if s.character(i) == c && !slices.Contains(state, i) {
				add(i)
				break
			}
		}
	}
	for _, i := range byPower {
		if len(state) >= s.member {
			break
		}
		if slices.Contains(state, i) || (!s.repeat && chars&charBit(s.character(i)) != 0) {
			continue
		}
		add(i)
	}
	if len(state) > s.member {
		state = state[:s.member]
	}
	return state
}

// runSA runs RunCount annealing passes that share one random stream.
func (s *searchInfo) runSA(o SAOptions) error {
	s.rng = newRand(o.Seed)
	for run := 0; run < o.RunCount && !s.expired(); run++ {
		if err := s.anneal(o); err != nil {
			return err
		}
	}
	return nil
}

func (s *searchInfo) anneal(o SAOptions) error {
	state := s.initialState()
	if len(state) < s.member || !s.hasFixed(state) {
		return nil
	}
	var free []int
	for slot, i := range state {
		if !s.isFixed[i] {
			free = append(free, slot)
		}
	}
	if len(free) == 0 || len(s.cands) == 0 {
		_, err := s.score(state)
		return err
	}

	cur, err := s.score(state)
	if err != nil {
		return err
	}
	best := cur
	temp := o.StartTemp
	runDeadline := time.Now().Add(time.Duration(o.TimeLimitMs) * time.Millisecond)
	noImprove := 0

	for iter := 0; iter < o.MaxIter; iter++ {
		for attempt := 0; attempt < swapAttempts; attempt++ {
			if s.expired() || time.Now().After(runDeadline) {
				return nil
			}
			slot := free[s.rng.Intn(len(free))]
			cand := s.cands[s.rng.Intn(len(s.cands))]
			if !s.canSwap(state, slot, cand) {
				continue
			}
			old := state[slot]
			state[slot] = cand
			next, err := s.score(state)
			if err != nil {
				return err
			}
			delta := next - cur
			if delta > 0 || s.rng.Float64() < math.Exp(delta/temp) {
				cur = next
			} else {
				state[slot] = old
			}
			break
		}
		temp *= o.CoolingRate
		if cur > best {
			best = cur
			noImprove = 0
		} else if noImprove++; noImprove >= o.MaxIterNoImprove {
			break
		}
	}
	return nil
}

// canSwap reports whether cand may replace the card in slot.
func (s *searchInfo) canSwap(state []int, slot, cand int) bool {
	old := state[slot]
	if old == cand || slices.Contains(state, cand) {
		return false
	}
	oc, nc := s.character(old), s.character(cand)
	if oc == nc {
		return true
	}
	if s.fixedChar&charBit(oc) != 0 && s.countChar(state, oc) == 1 {
		return false
	}
	return s.repeat || s.countChar(state, nc) == 0
}

func (s *searchInfo) countChar(state []int, c int) int {
	n := 0
	for _, i := range state {
		if s.character(i) == c {
			n++
		}
	}
	return n
}
