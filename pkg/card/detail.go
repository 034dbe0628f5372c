package card

import (
	"slices"

	"deck-recommender/pkg/enums"
)

// PowerDetail is the power of one card under one deck composition.
type PowerDetail struct {
	Base           int `json:"base"`
	AreaItemBonus  int `json:"areaItemBonus"`
	CharacterBonus int `json:"characterBonus"`
	FixtureBonus   int `json:"fixtureBonus"`
	GateBonus      int `json:"gateBonus"`
	Total          int `json:"total"`
}

// SpecialKind tags the deck-dependent part of a skill.
type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	// SpecialReference absorbs a share of each teammate's skill.
	SpecialReference
	// SpecialUnitCount grows with the number of distinct units in the deck.
	SpecialUnitCount
)

// Special is the closed set of skill behaviors that are only known once the
// rest of the deck is known. Only the fields of Kind are meaningful.
type Special struct {
	Kind SpecialKind
	// Rate is the percent of a teammate's skill absorbed (SpecialReference).
	Rate float64
	// Max caps one teammate's absorbed value (SpecialReference) or is the
	// largest breakpoint value (SpecialUnitCount).
	Max float64
	// ByUnitCount[n] is the bonus with n distinct units (SpecialUnitCount).
	ByUnitCount [6]float64
}

// BestBonus is the largest value the special part can add.
func (s Special) BestBonus() float64 {
	if s.Kind == SpecialNone {
		return 0
	}
	return s.Max
}

// UnitCountBonus returns the breakpoint bonus for n distinct units.
func (s Special) UnitCountBonus(n int) float64 {
	if n < 0 {
		n = 0
	}
	if n >= len(s.ByUnitCount) {
		n = len(s.ByUnitCount) - 1
	}
	return s.ByUnitCount[n]
}

// Variant describes one skill a card may use; a trained card can have both
// its pre-training and post-training skill available.
type Variant struct {
	PreTraining bool
	Special     Special
}

// SkillValue is the composition-resolved, non-special part of one variant.
type SkillValue struct {
	ScoreUp      float64
	LifeRecovery float64
}

// SkillDetail holds the value of every variant of a card under one composition,
// indexed like Detail.Variants.
type SkillDetail struct {
	Values [2]SkillValue
}

// Detail is the per-call snapshot of one owned card. Searches address details
// by their index in the slice built by Builder.BuildAll.
type Detail struct {
	CardID         int
	Level          int
	SkillLevel     int
	MasterRank     int
	Rarity         enums.Rarity
	CharacterID    int
	Units          []enums.Unit
	Attr           enums.Attr
	SpecialTrained bool
	DefaultImage   enums.DefaultImage
	EpisodesRead   [2]bool
	HasCanvasBonus bool

	Power    DetailMap[PowerDetail]
	Skill    DetailMap[SkillDetail]
	Variants []Variant

	EventBonus       *float64
	SupportDeckBonus *float64
}

// HasUnit reports whether the card belongs to u.
func (d *Detail) HasUnit(u enums.Unit) bool {
	return slices.Contains(d.Units, u)
}

// IsPiaproOnly is true for virtual singer cards without a support unit.
func (d *Detail) IsPiaproOnly() bool {
	return len(d.Units) == 1 && d.Units[0] == enums.UnitPiapro
}

// IsCertainlyLessThan is the dominance test used to prune searches: a is
// worse than b in power and skill under every composition, and not better
// in event bonus.
func IsCertainlyLessThan(a, b *Detail) bool {
	return a.Power.IsCertainlyLessThan(&b.Power) &&
		a.Skill.IsCertainlyLessThan(&b.Skill) &&
		(a.EventBonus == nil || b.EventBonus == nil || *a.EventBonus <= *b.EventBonus)
}

// BestScoreUp is the largest base score-up of any variant in a skill entry.
func (d *Detail) BestScoreUp(s *SkillDetail) float64 {
	best := 0.0
	for i := range d.Variants {
		if v := s.Values[i].ScoreUp; v > best {
			best = v
		}
	}
	return best
}
