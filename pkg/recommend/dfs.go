package recommend

import (
	"slices"

	"deck-recommender/pkg/card"
)

// runExact enumerates decks depth first. Candidates are visited in card id
// order and pruned with the dominance tests of card.Detail.
func (s *searchInfo) runExact() error {
	slices.SortFunc(s.cands, func(a, b int) int { return s.arena[a].CardID - s.arena[b].CardID })
	used := make([]bool, len(s.arena))
	state := make([]int, 0, s.member)
	return s.exact(state, 0, used)
}

func (s *searchInfo) exact(state []int, chars charMask, used []bool) error {
	if s.expired() {
		return nil
	}
	if len(state) == s.member {
		if !s.hasFixed(state) {
			return nil
		}
		_, err := s.score(state)
		return err
	}

	slot := len(state)
	prevAccepted := -1
	for _, i := range s.cands {
		if used[i] {
			continue
		}
		d := &s.arena[i]
		if !s.repeat && chars&charBit(d.CharacterID) != 0 {
			continue
		}
		if !s.isFixed[i] && s.pruned(state, d, prevAccepted) {
			continue
		}

		next := chars | charBit(d.CharacterID)
		state = append(state, i)
		if s.missingFixed(state, next) > s.member-len(state) {
			state = state[:slot]
			continue
		}
		used[i] = true
		err := s.exact(state, next, used)
		used[i] = false
		state = state[:slot]
		if err != nil {
			return err
		}
		if s.expired() {
			return nil
		}
		prevAccepted = i
	}
	return nil
}

func (s *searchInfo) pruned(state []int, d *card.Detail, prevAccepted int) bool {
	slot := len(state)
	if slot >= 1 {
		lead := &s.arena[state[0]]
		if lead.Skill.IsCertainlyLessThan(&d.Skill) {
			return true
		}
	}
	if slot >= 2 {
		prev := &s.arena[state[slot-1]]
		if card.IsCertainlyLessThan(prev, d) {
			return true
		}
		if !card.IsCertainlyLessThan(d, prev) && d.CardID < prev.CardID {
			return true
		}
	}
	return prevAccepted >= 0 && card.IsCertainlyLessThan(d, &s.arena[prevAccepted])
}
