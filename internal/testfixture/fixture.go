// Package testfixture builds small, fully consistent master data and user
// inventories for tests. Every card is level 1 with skill level 1 and
// master rank 0, and owns one score-up skill.
package testfixture

import (
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/masterdata"
)

// Event ids created by Master.
const (
	MarathonEvent   = 1
	BloomEvent      = 2
	CheerfulEvent   = 3
	UnitEvent       = 4 // marathon restricted to light_sound
	DefaultMusicID  = 1
	DefaultMusicDif = "master"
)

// CardSpec is one owned card.
type CardSpec struct {
	ID          int
	CharacterID int
	Rarity      enums.Rarity // defaults to rarity_4
	Attr        enums.Attr   // defaults to cute
	SupportUnit enums.Unit   // defaults to none
	Power       int
	ScoreUp     float64
	// EventBonus is the per-card bonus of MarathonEvent.
	EventBonus float64
	// Skill replaces the generated score-up skill when set.
	Skill *masterdata.Skill
}

// CharacterUnit maps character ids to their unit the way game data does.
func CharacterUnit(id int) enums.Unit {
	switch {
	case id <= 4:
		return enums.UnitLightSound
	case id <= 8:
		return enums.UnitIdol
	case id <= 12:
		return enums.UnitStreet
	case id <= 16:
		return enums.UnitThemePark
	case id <= 20:
		return enums.UnitSchoolRefusal
	}
	return enums.UnitPiapro
}

func (c *CardSpec) defaults() {
	if c.Rarity == enums.RarityNone {
		c.Rarity = enums.Rarity4
	}
	if c.Attr == enums.AttrNone {
		c.Attr = enums.AttrCute
	}
	if c.SupportUnit == enums.UnitAny {
		c.SupportUnit = enums.UnitNone
	}
}

// ScoreUpSkill is a level-1 skill with one plain score-up effect.
func ScoreUpSkill(id int, value float64) masterdata.Skill {
	return masterdata.Skill{ID: id, Effects: []masterdata.SkillEffect{{
		Type:    enums.SkillEffectScoreUp,
		Details: []masterdata.SkillEffectDetail{{Level: 1, Value: value}},
	}}}
}

// Music is a chart with every skill rate at 0.5, which keeps live scores
// exact in float arithmetic.
func Music() masterdata.MusicMeta {
	rates := []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5}
	return masterdata.MusicMeta{
		MusicID:         DefaultMusicID,
		Difficulty:      DefaultMusicDif,
		MusicTime:       120,
		EventRate:       100,
		BaseScore:       1,
		BaseScoreAuto:   0.5,
		SkillScoreSolo:  rates,
		SkillScoreAuto:  rates,
		SkillScoreMulti: rates,
		FeverScore:      0.5,
		TapCount:        800,
	}
}

// Master returns static tables that cover every card in cards.
func Master(cards []CardSpec) *masterdata.Master {
	m := &masterdata.Master{}
	for _, r := range []enums.Rarity{enums.Rarity1, enums.Rarity2, enums.Rarity3, enums.Rarity4, enums.RarityBirthday} {
		m.CardRarities = append(m.CardRarities, masterdata.CardRarity{Rarity: r, MaxLevel: 1, MaxSkillLevel: 1})
		for mr := 0; mr <= 5; mr++ {
			m.EventRarityBonusRates = append(m.EventRarityBonusRates, masterdata.EventRarityBonusRate{Rarity: r, MasterRank: mr})
		}
		m.SupportDeckBonuses = append(m.SupportDeckBonuses, masterdata.WorldBloomSupportDeckBonus{
			Rarity:          r,
			CharacterBonus:  [2]float64{10, 25},
			MasterRankBonus: map[int]float64{0: 0, 1: 1, 2: 2, 3: 3, 4: 4, 5: 5},
			SkillLevelBonus: map[int]float64{1: 0},
		})
	}
	for id := 1; id <= 26; id++ {
		m.GameCharacters = append(m.GameCharacters, masterdata.GameCharacter{ID: id, Unit: CharacterUnit(id)})
		m.GameCharacterUnits = append(m.GameCharacterUnits, masterdata.GameCharacterUnit{ID: id, CharacterID: id, Unit: CharacterUnit(id)})
	}
	for n := 1; n <= 5; n++ {
		m.DifferentAttrBonuses = append(m.DifferentAttrBonuses, masterdata.WorldBloomDifferentAttributeBonus{AttributeCount: n, BonusRate: float64(n)})
	}
	m.Events = []masterdata.Event{
		{ID: MarathonEvent, Type: enums.EventMarathon, Unit: enums.UnitAny},
		{ID: BloomEvent, Type: enums.EventWorldBloom, Unit: enums.UnitAny},
		{ID: CheerfulEvent, Type: enums.EventCheerfulCarnival, Unit: enums.UnitAny},
		{ID: UnitEvent, Type: enums.EventMarathon, Unit: enums.UnitLightSound},
	}
	m.MusicMetas = []masterdata.MusicMeta{Music()}

	for _, c := range cards {
		c.defaults()
		m.Cards = append(m.Cards, masterdata.Card{
			ID:          c.ID,
			CharacterID: c.CharacterID,
			Rarity:      c.Rarity,
			Attr:        c.Attr,
			SupportUnit: c.SupportUnit,
			SkillID:     c.ID,
			LevelParams: [][3]int{{}, {c.Power, 0, 0}},
		})
		if c.Skill != nil {
			sk := *c.Skill
			sk.ID = c.ID
			m.Skills = append(m.Skills, sk)
		} else {
			m.Skills = append(m.Skills, ScoreUpSkill(c.ID, c.ScoreUp))
		}
		if c.EventBonus != 0 {
			m.EventCards = append(m.EventCards, masterdata.EventCard{EventID: MarathonEvent, CardID: c.ID, BonusRate: c.EventBonus})
		}
	}
	return m
}

// User owns every card in cards at level 1.
func User(cards []CardSpec) *masterdata.User {
	u := &masterdata.User{}
	for _, c := range cards {
		u.Cards = append(u.Cards, masterdata.UserCard{CardID: c.ID, Level: 1, SkillLevel: 1})
	}
	return u
}

// Build returns indexed tables and the user for cards.
func Build(cards []CardSpec) (*masterdata.Tables, *masterdata.User) {
	return Master(cards).Index(), User(cards)
}

// Distinct returns n cute rarity-4 cards of distinct characters 1..n with
// the given powers and one shared score-up.
func Distinct(powers []int, scoreUp float64) []CardSpec {
	out := make([]CardSpec, len(powers))
	for i, p := range powers {
		out[i] = CardSpec{ID: 100 + i + 1, CharacterID: i + 1, Power: p, ScoreUp: scoreUp}
	}
	return out
}
