package recommend

import (
	"deck-recommender/pkg/card"
	"deck-recommender/pkg/enums"
)

// priorityTier admits cards of a rarity that reach a master rank and, when
// an event is set, an event bonus. Tiers of equal Priority enter together.
type priorityTier struct {
	EventBonus float64
	Rarity     enums.Rarity
	MasterRank int
	Priority   int
}

const (
	r1 = enums.Rarity1
	r2 = enums.Rarity2
	r3 = enums.Rarity3
	r4 = enums.Rarity4
	bd = enums.RarityBirthday
)

var marathonCheerfulPriority = []priorityTier{
	{95, r4, 5, 0},
	{80, r4, 0, 10}, {75, r4, 5, 10},
	{65, r4, 5, 30},
	{60, r4, 0, 40}, {50, r4, 5, 40}, {65, bd, 5, 40},
	{50, r4, 0, 50}, {55, bd, 0, 50}, {55, r3, 5, 50},
	{35, r4, 0, 60}, {40, bd, 5, 60}, {50, r3, 0, 60}, {25, r4, 5, 60},
	{25, r4, 0, 70}, {30, bd, 0, 70}, {30, r3, 5, 70}, {50, r2, 0, 70}, {50, r1, 0, 70},
	{20, bd, 0, 80}, {25, r3, 0, 80}, {25, r2, 0, 80}, {25, r1, 0, 80}, {10, r4, 0, 80},
	{5, bd, 0, 90},
	{0, r3, 0, 100}, {0, r2, 0, 100}, {0, r1, 0, 100},
}

var bloomPriority = []priorityTier{
	{50, r4, 5, 0},
	{35, r4, 0, 10}, {40, bd, 5, 10},
	{30, bd, 0, 20}, {30, r3, 0, 20},
	{25, r4, 5, 21},
	{10, r4, 0, 22},
	{25, r3, 0, 30},
	{25, r2, 0, 40},
	{25, r1, 0, 50},
	{5, bd, 0, 70},
	{0, r3, 0, 80},
	{0, r2, 0, 90},
	{0, r1, 0, 100},
}

var challengePriority = []priorityTier{
	{0, r4, 0, 0},
	{0, bd, 0, 10},
	{0, r3, 0, 20},
	{0, r2, 0, 30},
	{0, r1, 0, 40},
}

func priorityTable(lt enums.LiveType, et enums.EventType) []priorityTier {
	switch {
	case lt == enums.LiveChallenge:
		return challengePriority
	case et == enums.EventWorldBloom:
		return bloomPriority
	case et == enums.EventMarathon || et == enums.EventCheerfulCarnival:
		return marathonCheerfulPriority
	}
	return challengePriority
}

func (t *priorityTier) admits(d *card.Detail) bool {
	return d.Rarity == t.Rarity && d.MasterRank >= t.MasterRank &&
		(d.EventBonus == nil || *d.EventBonus >= t.EventBonus)
}

// priorityRounds grows a candidate pool tier by tier. Every call to next
// returns a strictly larger pool that can form a deck, or the whole pool
// once the tiers are exhausted.
type priorityRounds struct {
	arena  []card.Detail
	pool   []int
	tiers  []priorityTier
	always []int
	member int
	repeat bool
	prev   int
}

func (r *priorityRounds) canMakeDeck(admitted []int) bool {
	if r.repeat {
		return len(admitted) >= r.member
	}
	var chars charMask
	n := 0
	for _, i := range admitted {
		b := charBit(r.arena[i].CharacterID)
		if chars&b == 0 {
			chars |= b
			n++
		}
	}
	return n >= r.member
}

func (r *priorityRounds) next() []int {
	in := make(map[int]bool, len(r.pool))
	admitted := make([]int, 0, len(r.pool))
	add := func(i int) {
		if !in[i] {
			in[i] = true
			admitted = append(admitted, i)
		}
	}
	for _, i := range r.always {
		add(i)
	}
	done := func() bool { return len(admitted) > r.prev && r.canMakeDeck(admitted) }

	for k := range r.tiers {
		if k > 0 && r.tiers[k].Priority > r.tiers[k-1].Priority && done() {
			r.prev = len(admitted)
			return admitted
		}
		for _, i := range r.pool {
			if r.tiers[k].admits(&r.arena[i]) {
				add(i)
			}
		}
	}
	if done() {
		r.prev = len(admitted)
		return admitted
	}
	for _, i := range r.pool {
		add(i)
	}
	r.prev = len(admitted)
	return admitted
}
