package recommend

import (
	"math/rand"
	"slices"
	"sort"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

const (
	pickAttempts      = 20
	incompletePenalty = -1e9
)

// sampler draws arena indices with probability proportional to a weight.
type sampler struct {
	items  []int
	prefix []float64
}

func newSampler(items []int, weight func(int) float64) *sampler {
	sp := &sampler{items: items, prefix: make([]float64, len(items))}
	total := 0.0
	for k, i := range items {
		total += weight(i)
		sp.prefix[k] = total
	}
	return sp
}

func (sp *sampler) total() float64 {
	if len(sp.prefix) == 0 {
		return 0
	}
	return sp.prefix[len(sp.prefix)-1]
}

// pick returns a weighted item rejected by neither skip, falling back to a
// linear draw over the allowed items once random attempts keep colliding.
func (sp *sampler) pick(rng *rand.Rand, skip func(int) bool) (int, bool) {
	if len(sp.items) == 0 {
		return 0, false
	}
	total := sp.total()
	if total > 0 {
		for range pickAttempts {
			r := rng.Float64() * total
			k := sort.SearchFloat64s(sp.prefix, r)
			if k >= len(sp.items) {
				k = len(sp.items) - 1
			}
			if i := sp.items[k]; !skip(i) {
				return i, true
			}
		}
	}
	var allowed []int
	var weights []float64
	sum := 0.0
	prev := 0.0
	for k, i := range sp.items {
		w := sp.prefix[k] - prev
		prev = sp.prefix[k]
		if skip(i) {
			continue
		}
		allowed = append(allowed, i)
		weights = append(weights, w)
		sum += w
	}
	if len(allowed) == 0 {
		return 0, false
	}
	if sum <= 0 {
		return allowed[rng.Intn(len(allowed))], true
	}
	r := rng.Float64() * sum
	for k, w := range weights {
		if r < w {
			return allowed[k], true
		}
		r -= w
	}
	return allowed[len(allowed)-1], true
}

type individual struct {
	cards   []int
	fitness float64
}

// gaRun is the state of one genetic search.
type gaRun struct {
	*searchInfo
	o      GAOptions
	all    *sampler
	byChar map[int]*sampler
	chars  []int
}

func (s *searchInfo) runGA(o GAOptions) error {
	s.rng = newRand(o.Seed)
	objective := s.calc.Options().Objective
	weight := func(i int) float64 {
		m := s.arena[i].Power.Max
		if objective == enums.ObjectiveSkill {
			m = s.arena[i].Skill.Max
		}
		return m * m
	}
	g := &gaRun{searchInfo: s, o: o, byChar: make(map[int]*sampler)}
	g.all = newSampler(s.cands, weight)
	grouped := make(map[int][]int)
	for _, i := range s.cands {
		c := s.character(i)
		if _, ok := grouped[c]; !ok {
			g.chars = append(g.chars, c)
		}
		grouped[c] = append(grouped[c], i)
	}
	slices.Sort(g.chars)
	for c, items := range grouped {
		g.byChar[c] = newSampler(items, weight)
	}
	return g.run()
}

func (g *gaRun) run() error {
	pop := make([]individual, 0, g.o.PopSize)
	for range g.o.PopSize {
		if g.expired() {
			break
		}
		cards := g.randomIndividual()
		if cards == nil {
			return nil
		}
		pop = append(pop, individual{cards: cards})
	}
	pop, err := g.settle(pop)
	if err != nil || len(pop) == 0 {
		return err
	}

	best := pop[0].fitness
	noImprove := 0
	for iter := 0; iter < g.o.MaxIter && !g.expired(); iter++ {
		next := make([]individual, 0, g.o.PopSize)
		for k := 0; k < g.o.EliteSize && k < len(pop); k++ {
			next = append(next, individual{cards: slices.Clone(pop[k].cards), fitness: pop[k].fitness})
		}
		parents := pop
		if g.o.ParentSize > 0 && g.o.ParentSize < len(pop) {
			parents = pop[:g.o.ParentSize]
		}
		rate := g.o.BaseMutationRate + float64(noImprove)*g.o.NoImproveIterToMutationRate
		for len(next) < g.o.PopSize {
			a := &parents[g.rng.Intn(len(parents))]
			b := &parents[g.rng.Intn(len(parents))]
			child, err := g.crossover(a, b)
			if err != nil {
				return err
			}
			g.mutate(child, rate)
			next = append(next, individual{cards: child})
		}
		if pop, err = g.settle(next); err != nil {
			return err
		}
		if len(pop) == 0 {
			return nil
		}
		if pop[0].fitness > best {
			best = pop[0].fitness
			noImprove = 0
		} else if noImprove++; noImprove >= g.o.MaxIterNoImprove {
			break
		}
	}
	return nil
}

// bestScoreUp ranks incomplete individuals by their strongest skill.
func (g *gaRun) bestScoreUp(idx []int) float64 {
	best := 0.0
	for _, i := range idx {
		d := &g.arena[i]
		sd, err := d.Skill.Get(enums.UnitAny, 1, 1)
		if err != nil {
			continue
		}
		best = max(best, d.BestScoreUp(&sd))
	}
	return best
}

// settle scores, deduplicates and ranks a population.
func (g *gaRun) settle(pop []individual) ([]individual, error) {
	seen := make(map[deckKey]bool, len(pop))
	out := pop[:0]
	for _, ind := range pop {
		k := makeKey(ind.cards)
		if seen[k] {
			continue
		}
		seen[k] = true
		if len(ind.cards) < g.member || !g.hasFixed(ind.cards) {
			ind.fitness = incompletePenalty + g.bestScoreUp(ind.cards)
		} else {
			if g.expired() {
				continue
			}
			f, err := g.score(ind.cards)
			if err != nil {
				return nil, err
			}
			ind.fitness = f
		}
		out = append(out, ind)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].fitness > out[j].fitness })
	if len(out) > g.o.PopSize {
		out = out[:g.o.PopSize]
	}
	return out, nil
}

func (g *gaRun) randomIndividual() []int {
	cards := make([]int, 0, g.member)
	var mask charMask
	has := func(i int) bool { return slices.Contains(cards, i) || g.isFixed[i] }
	for _, i := range g.fixedCards {
		mask |= charBit(g.character(i))
	}
	slots := g.member - len(g.fixedCards)

	if g.repeat {
		for len(cards) < slots {
			i, ok := g.all.pick(g.rng, has)
			if !ok {
				return nil
			}
			cards = append(cards, i)
		}
		return append(cards, g.fixedCards...)
	}

	for _, c := range g.fixedChars {
		if mask&charBit(c) != 0 {
			continue
		}
		sp := g.byChar[c]
		if sp == nil {
			return nil
		}
		i, ok := sp.pick(g.rng, has)
		if !ok {
			return nil
		}
		cards = append(cards, i)
		mask |= charBit(c)
	}
	free := slices.Clone(g.chars)
	g.rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
	for _, c := range free {
		if len(cards) >= slots {
			break
		}
		if mask&charBit(c) != 0 {
			continue
		}
		i, ok := g.byChar[c].pick(g.rng, has)
		if !ok {
			continue
		}
		cards = append(cards, i)
		mask |= charBit(c)
	}
	if len(cards) < slots {
		return nil
	}
	return append(cards, g.fixedCards...)
}

// pinned slots hold a fixed card or the only card of a fixed character.
func (g *gaRun) pinned(cards []int, slot int) bool {
	i := cards[slot]
	if g.isFixed[i] {
		return true
	}
	c := g.character(i)
	return g.fixedChar&charBit(c) != 0 && g.countChar(cards, c) == 1
}

func (g *gaRun) clashes(cards []int, cand int) bool {
	if slices.Contains(cards, cand) {
		return true
	}
	return !g.repeat && slices.ContainsFunc(cards, func(i int) bool { return g.character(i) == g.character(cand) })
}

func (g *gaRun) crossover(a, b *individual) ([]int, error) {
	if g.rng.Float64() >= g.o.CrossoverRate {
		if b.fitness > a.fitness {
			return slices.Clone(b.cards), nil
		}
		return slices.Clone(a.cards), nil
	}
	child := make([]int, 0, g.member)
	for slot := range a.cards {
		if g.pinned(a.cards, slot) || g.rng.Float64() < 0.5 {
			child = append(child, a.cards[slot])
		}
	}
	for _, i := range b.cards {
		if len(child) >= g.member {
			break
		}
		if !g.clashes(child, i) {
			child = append(child, i)
		}
	}
	for _, i := range a.cards {
		if len(child) >= g.member {
			break
		}
		if !g.clashes(child, i) {
			child = append(child, i)
		}
	}
	if len(child) < g.member {
		return nil, errs.Data("crossover produced %d of %d cards", len(child), g.member)
	}
	return child, nil
}

func (g *gaRun) mutate(cards []int, rate float64) {
	for slot := range cards {
		if g.isFixed[cards[slot]] || g.rng.Float64() >= rate {
			continue
		}
		old := cards[slot]
		c := g.character(old)
		sp := g.all
		if g.fixedChar&charBit(c) != 0 && g.countChar(cards, c) == 1 {
			sp = g.byChar[c]
		}
		for range swapAttempts {
			cand, ok := sp.pick(g.rng, func(i int) bool { return i == old })
			if !ok {
				break
			}
			if g.canSwap(cards, slot, cand) {
				cards[slot] = cand
				break
			}
		}
	}
}
