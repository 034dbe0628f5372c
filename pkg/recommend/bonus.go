package recommend

import (
	"math"
	"slices"
	"sort"
)

// bonusKey groups cards by doubled event bonus and character; one card per
// key is enough to hit a bonus target.
type bonusKey struct {
	bonus     int
	character int
	card      int
}

// bonusSearch looks for decks whose doubled event bonus equals a target.
type bonusSearch struct {
	*searchInfo
	keys    []bonusKey
	prefix  []int
	targets map[int]int
	maxT    int
	limit   int
}

func (s *searchInfo) runBonus(targets []int, limit int) error {
	b := &bonusSearch{searchInfo: s, targets: make(map[int]int), limit: limit}
	for _, t := range targets {
		b.targets[t*2] = 0
		b.maxT = max(b.maxT, t*2)
	}

	groups := make(map[int][]int)
	for _, i := range s.cands {
		eb := s.arena[i].EventBonus
		if eb == nil {
			continue
		}
		k := int(math.Round(*eb*2))*100 + s.character(i)
		groups[k] = append(groups[k], i)
	}
	ids := make([]int, 0, len(groups))
	for k := range groups {
		ids = append(ids, k)
	}
	slices.Sort(ids)
	for _, k := range ids {
		cards := groups[k]
		sort.SliceStable(cards, func(x, y int) bool {
			a, c := &s.arena[cards[x]], &s.arena[cards[y]]
			if s.isFixed[cards[x]] != s.isFixed[cards[y]] {
				return s.isFixed[cards[x]]
			}
			if a.Power.Max != c.Power.Max {
				return a.Power.Max < c.Power.Max
			}
			return a.CardID < c.CardID
		})
		b.keys = append(b.keys, bonusKey{bonus: k / 100, character: k % 100, card: cards[0]})
	}
	b.prefix = make([]int, len(b.keys)+1)
	for i, k := range b.keys {
		b.prefix[i+1] = b.prefix[i] + k.bonus
	}

	state := make([]int, 0, s.member)
	_, err := b.dfs(state, 0, 0, 0)
	return err
}

// reachable reports whether some target lies in [lo, hi].
func (b *bonusSearch) reachable(lo, hi int) bool {
	for t := range b.targets {
		if t >= lo && t <= hi {
			return true
		}
	}
	return false
}

func (b *bonusSearch) dfs(state []int, from, sum int, chars charMask) (bool, error) {
	if len(b.targets) == 0 || b.expired() {
		return true, nil
	}
	if len(state) == b.member {
		if _, ok := b.targets[sum]; !ok || !b.hasFixed(state) {
			return false, nil
		}
		d, err := b.calc.EvaluateBest(state)
		if err != nil {
			return false, err
		}
		if d.EventBonus == nil || int(math.Floor(*d.EventBonus*2)) != sum {
			return false, nil
		}
		b.evals++
		EvaluationsTotal.Inc()
		if b.top.Update(d) {
			b.targets[sum]++
			if b.targets[sum] >= b.limit {
				delete(b.targets, sum)
			}
		}
		return len(b.targets) == 0, nil
	}

	rest := b.member - len(state)
	n := len(b.keys)
	for p := from; p <= n-rest; p++ {
		k := b.keys[p]
		if chars&charBit(k.character) != 0 {
			continue
		}
		cur := sum + k.bonus
		if cur > b.maxT {
			break
		}
		r := rest - 1
		lo := cur + b.prefix[p+1+r] - b.prefix[p+1]
		hi := cur + b.prefix[n] - b.prefix[n-r]
		if !b.reachable(lo, hi) {
			continue
		}
		if b.missingFixed(append(state, k.card), chars|charBit(k.character)) > r {
			continue
		}
		done, err := b.dfs(append(state, k.card), p+1, cur, chars|charBit(k.character))
		if err != nil || done {
			return done, err
		}
	}
	return false, nil
}
