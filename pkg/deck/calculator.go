package deck

import (
	"slices"

	"deck-recommender/pkg/card"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// Context describes the live being played and the event it counts for.
type Context struct {
	EventID            int
	SpecialCharacterID int
	// SupportDeckCount overrides the number of support cards; 0 picks the
	// default for the event.
	SupportDeckCount int
	LiveType         enums.LiveType
	Music            *masterdata.MusicMeta
	// OtherScore is the teammates' total score in multi lives, 0 to assume
	// four copies of this deck.
	OtherScore int
}

// Options controls how a Calculator turns a deck into a target value.
type Options struct {
	Context
	Objective enums.Objective
	Strategy  enums.ReferenceStrategy
}

// Calculator evaluates decks drawn from one card arena. It holds no
// mutable state and is safe for concurrent use.
type Calculator struct {
	arena        []card.Detail
	support      []int
	honor        int
	opts         Options
	eventType    enums.EventType
	attrBonus    map[int]float64
	supportCount int
}

// DefaultSupportDeckCount is the support deck size of an event.
func DefaultSupportDeckCount(eventID int) int {
	if eventID > 0 && eventID <= 140 {
		return 12
	}
	return 20
}

// NewCalculator prepares the event tables used by every evaluation. The
// arena must be ordered by support deck bonus when a special character is
// set, as card.Builder.BuildAll does.
func NewCalculator(t *masterdata.Tables, arena []card.Detail, honor int, opts Options) (*Calculator, error) {
	c := &Calculator{
		arena:        arena,
		honor:        honor,
		opts:         opts,
		supportCount: opts.SupportDeckCount,
	}
	if opts.Objective == enums.ObjectiveScore && opts.Music == nil {
		return nil, errs.Config("score objective needs a music meta")
	}
	ev, err := t.Event(opts.EventID)
	if err != nil {
		return nil, err
	}
	if ev != nil {
		c.eventType = ev.Type
		if opts.LiveType == enums.LiveMulti && ev.Type == enums.EventCheerfulCarnival {
			return nil, errs.Config("multi live is not playable in a cheerful carnival event")
		}
		if opts.LiveType == enums.LiveCheerful && ev.Type != enums.EventCheerfulCarnival {
			return nil, errs.Config("cheerful live is only playable in a cheerful carnival event")
		}
	}
	if c.eventType == enums.EventWorldBloom {
		c.attrBonus = make(map[int]float64, len(t.DifferentAttrBonuses))
		for _, b := range t.DifferentAttrBonuses {
			c.attrBonus[b.AttributeCount] = b.BonusRate
		}
	}
	if c.supportCount <= 0 {
		c.supportCount = DefaultSupportDeckCount(opts.EventID)
	}
	if opts.SpecialCharacterID > 0 {
		for i := range arena {
			if arena[i].SupportDeckBonus != nil {
				c.support = append(c.support, i)
			}
		}
	}
	return c, nil
}

// Arena returns the card details the calculator was built over.
func (c *Calculator) Arena() []card.Detail { return c.arena }

// EventType is the type of the configured event, EventNone without one.
func (c *Calculator) EventType() enums.EventType { return c.eventType }

// Options returns the evaluation options.
func (c *Calculator) Options() Options { return c.opts }

// ── Composition ──

type tally struct {
	units    [enums.MaxUnit]int
	attrs    [enums.MaxAttr]int
	distinct int
}

func (c *Calculator) tally(idx []int) tally {
	var t tally
	for _, i := range idx {
		d := &c.arena[i]
		t.attrs[d.Attr]++
		for _, u := range d.Units {
			t.units[u]++
		}
	}
	for u := range t.units {
		if t.units[u] > 0 && enums.Unit(u) != enums.UnitAny && enums.Unit(u) != enums.UnitNone {
			t.distinct++
		}
	}
	return t
}

func (c *Calculator) cardPower(d *card.Detail, t *tally) (card.PowerDetail, error) {
	var best card.PowerDetail
	for k, u := range d.Units {
		p, err := d.Power.Get(u, t.units[u], t.attrs[d.Attr])
		if err != nil {
			return best, err
		}
		if k == 0 || p.Total > best.Total {
			best = p
		}
	}
	return best, nil
}

// ── Skills ──

// slotSkill holds every variant of one card resolved for the deck.
type slotSkill struct {
	base     [2]card.SkillValue
	realized [2]float64
	own      float64
}

func (c *Calculator) baseSkills(d *card.Detail, t *tally) (slotSkill, error) {
	var s slotSkill
	for v := range d.Variants {
		for k, u := range d.Units {
			sd, err := d.Skill.Get(u, t.units[u], 1)
			if err != nil {
				return s, err
			}
			if k == 0 || sd.Values[v].ScoreUp > s.base[v].ScoreUp {
				s.base[v] = sd.Values[v]
			}
		}
	}
	own, found := 0.0, false
	for v, vr := range d.Variants {
		val := s.base[v].ScoreUp
		switch vr.Special.Kind {
		case card.SpecialReference:
			continue
		case card.SpecialUnitCount:
			val += vr.Special.UnitCountBonus(t.distinct)
		}
		if !found || val > own {
			own, found = val, true
		}
	}
	if !found {
		for v := range d.Variants {
			own = max(own, s.base[v].ScoreUp)
		}
	}
	s.own = own
	return s, nil
}

func (c *Calculator) absorbed(sp card.Special, self int, slots []slotSkill) float64 {
	if len(slots) < 2 {
		return 0
	}
	var agg float64
	n := 0
	for j := range slots {
		if j == self {
			continue
		}
		v := min(slots[j].own*sp.Rate/100, sp.Max)
		switch {
		case n == 0:
			agg = v
		case c.opts.Strategy == enums.ReferenceMin:
			agg = min(agg, v)
		case c.opts.Strategy == enums.ReferenceAverage:
			agg += v
		default:
			agg = max(agg, v)
		}
		n++
	}
	if c.opts.Strategy == enums.ReferenceAverage {
		agg /= float64(n)
	}
	return agg
}

// chooseVariants returns the variant each slot plays with.
func (c *Calculator) chooseVariants(idx []int, slots []slotSkill, t *tally) []int {
	for j, i := range idx {
		d := &c.arena[i]
		for v, vr := range d.Variants {
			val := slots[j].base[v].ScoreUp
			switch vr.Special.Kind {
			case card.SpecialUnitCount:
				val += vr.Special.UnitCountBonus(t.distinct)
			case card.SpecialReference:
				val += c.absorbed(vr.Special, j, slots)
			}
			slots[j].realized[v] = val
		}
	}

	choice := make([]int, len(idx))
	var ambiguous []int
	for j, i := range idx {
		d := &c.arena[i]
		if len(d.Variants) < 2 {
			continue
		}
		pre, post := 0, 1
		if !d.Variants[0].PreTraining {
			pre, post = 1, 0
		}
		bestPre := slots[j].base[pre].ScoreUp + d.Variants[pre].Special.BestBonus()
		if slots[j].realized[post] >= bestPre {
			choice[j] = post
			continue
		}
		choice[j] = pre
		ambiguous = append(ambiguous, j)
	}
	if len(ambiguous) == 1 {
		j := ambiguous[0]
		if slots[j].realized[1-choice[j]] > slots[j].realized[choice[j]] {
			choice[j] = 1 - choice[j]
		}
	}
	return choice
}

// ── Evaluation ──

// Evaluate scores the deck in the given slot order.
func (c *Calculator) Evaluate(idx []int) (*Detail, error) {
	if len(idx) == 0 {
		return nil, errs.Config("empty deck")
	}
	t := c.tally(idx)
	d := &Detail{
		Cards: make([]CardDetail, len(idx)),
		Power: Power{HonorBonus: c.honor},
	}

	slots := make([]slotSkill, len(idx))
	for j, i := range idx {
		cd := &c.arena[i]
		p, err := c.cardPower(cd, &t)
		if err != nil {
			return nil, err
		}
		d.Power.add(p)
		if slots[j], err = c.baseSkills(cd, &t); err != nil {
			return nil, err
		}
		d.Cards[j] = CardDetail{
			Index:       i,
			CardID:      cd.CardID,
			CharacterID: cd.CharacterID,
			Level:       cd.Level,
			SkillLevel:  cd.SkillLevel,
			MasterRank:  cd.MasterRank,
			Power:       p,
			EventBonus:  cd.EventBonus,
		}
	}
	d.Power.Total += c.honor

	choice := c.chooseVariants(idx, slots, &t)
	for j, i := range idx {
		cd := &c.arena[i]
		v := choice[j]
		d.Cards[j].ScoreUp = slots[j].realized[v]
		d.Cards[j].LifeRecovery = slots[j].base[v].LifeRecovery
		d.Cards[j].PreTraining = cd.Variants[v].PreTraining
	}
	d.MultiLiveScoreUp = multiLiveSkill(d.Cards).scoreUp

	var err error
	if d.EventBonus, err = c.eventBonus(idx, &t); err != nil {
		return nil, err
	}
	d.SupportDeckBonus = c.supportBonus(idx)
	if err := c.objective(d); err != nil {
		return nil, err
	}
	return d, nil
}

// EvaluateBest evaluates the deck and moves the card with the strongest
// realized skill to the leader slot, ordering the rest by card id.
func (c *Calculator) EvaluateBest(idx []int) (*Detail, error) {
	d, err := c.Evaluate(idx)
	if err != nil {
		return nil, err
	}
	best := 0
	for j := 1; j < len(d.Cards); j++ {
		if d.Cards[j].ScoreUp > d.Cards[best].ScoreUp {
			best = j
		}
	}
	if best == 0 {
		return d, nil
	}
	leader := idx[best]
	rest := make([]int, 0, len(idx)-1)
	for j, i := range idx {
		if j != best {
			rest = append(rest, i)
		}
	}
	slices.SortFunc(rest, func(a, b int) int { return c.arena[a].CardID - c.arena[b].CardID })
	return c.Evaluate(append([]int{leader}, rest...))
}

func (c *Calculator) eventBonus(idx []int, t *tally) (*float64, error) {
	total := 0.0
	for _, i := range idx {
		b := c.arena[i].EventBonus
		if b == nil {
			return nil, nil
		}
		total += *b
	}
	if c.eventType == enums.EventWorldBloom {
		attrs := 0
		for _, n := range t.attrs {
			if n > 0 {
				attrs++
			}
		}
		rate, ok := c.attrBonus[attrs]
		if !ok {
			return nil, errs.Data("different attribute bonus for %d attributes not found", attrs)
		}
		total += rate
	}
	return &total, nil
}

func (c *Calculator) supportBonus(idx []int) *float64 {
	if c.opts.SpecialCharacterID <= 0 {
		return nil
	}
	total := 0.0
	count := 0
	for _, i := range c.support {
		if count >= c.supportCount {
			break
		}
		if slices.Contains(idx, i) {
			continue
		}
		total += *c.arena[i].SupportDeckBonus
		count++
	}
	return &total
}

func (c *Calculator) objective(d *Detail) error {
	o := &c.opts
	if o.Music != nil {
		var err error
		if d.LiveScore, d.Life, err = LiveScore(d, o.Music, o.LiveType); err != nil {
			return err
		}
	}
	d.Score = d.LiveScore
	if o.EventID != 0 && o.LiveType != enums.LiveChallenge && o.Music != nil {
		if d.EventBonus == nil {
			return errs.Data("deck event bonus is undefined for event %d", o.EventID)
		}
		pt, err := EventPoint(o.LiveType, c.eventType, d.LiveScore, o.Music.EventRate, d.TotalBonus(), o.OtherScore, d.Life)
		if err != nil {
			return err
		}
		d.Score = pt
	}

	switch o.Objective {
	case enums.ObjectivePower:
		d.TargetValue = float64(d.Power.Total) + float64(d.Score)/1e7
	case enums.ObjectiveSkill:
		d.TargetValue = d.MultiLiveScoreUp + float64(d.Score)/1e7
	case enums.ObjectiveBonus:
		d.TargetValue = d.TotalBonus() + float64(d.Score)/1e7
	default:
		d.TargetValue = float64(d.Score) + float64(d.LiveScore)/1e7
	}
	return nil
}
