package card

import (
	"slices"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

func sum3(p [3]int) int { return p[0] + p[1] + p[2] }

// basePower is the composition-independent power of the virtual card.
func (b *Builder) basePower(c *masterdata.Card, uc *masterdata.UserCard, canvas bool) (int, error) {
	if uc.Level <= 0 || uc.Level >= len(c.LevelParams) {
		return 0, errs.Data("card %d has no parameters for level %d", c.ID, uc.Level)
	}
	base := sum3(c.LevelParams[uc.Level])
	if uc.SpecialTrained {
		base += sum3(c.SpecialTrainingPower)
	}
	for _, e := range b.tables.Episodes(c.ID) {
		if slices.Contains(uc.ReadEpisodeIDs, e.ID) {
			base += sum3(e.Power)
		}
	}
	for i := range b.tables.MasterLessons {
		l := &b.tables.MasterLessons[i]
		if l.Rarity == c.Rarity && l.MasterRank <= uc.MasterRank {
			base += sum3(l.Power)
		}
	}
	if canvas {
		if cb := b.tables.CanvasByRarity[c.Rarity]; cb != nil {
			base += sum3(cb.Power)
		}
	}
	return base, nil
}

func percentOf(base int, rate float64) int {
	return int(float64(base) * rate / 100)
}

// areaItemBonus sums every owned area item matching the card when it is
// evaluated for unit.
func (b *Builder) areaItemBonus(base int, c *masterdata.Card, unit enums.Unit, unitMember, attrMember int) int {
	bonus := 0
	for _, it := range b.areaItems {
		switch {
		case it.TargetUnit != enums.UnitNone && it.TargetUnit != enums.UnitAny:
			if it.TargetUnit != unit {
				continue
			}
			rate := it.PowerBonusRate
			if unitMember == 5 {
				rate = it.PowerAllMatchBonusRate
			}
			bonus += percentOf(base, rate)
		case it.TargetAttr != enums.AttrNone:
			if it.TargetAttr != c.Attr {
				continue
			}
			rate := it.PowerBonusRate
			if attrMember == 5 {
				rate = it.PowerAllMatchBonusRate
			}
			bonus += percentOf(base, rate)
		case it.TargetCharacterID != 0:
			if it.TargetCharacterID == c.CharacterID {
				bonus += percentOf(base, it.PowerBonusRate)
			}
		}
	}
	return bonus
}

func (b *Builder) characterBonus(base int, characterID int) int {
	rank := b.user.CharacterRank(characterID)
	for i := range b.tables.CharacterRanks {
		r := &b.tables.CharacterRanks[i]
		if r.CharacterID == characterID && r.Rank == rank {
			return percentOf(base, r.PowerBonusRate)
		}
	}
	return 0
}

// buildPowerMap writes one entry per card unit and unit/attr all-match
// combination, plus the fallback.
func (b *Builder) buildPowerMap(d *Detail, c *masterdata.Card, uc *masterdata.UserCard) error {
	base, err := b.basePower(c, uc, d.HasCanvasBonus)
	if err != nil {
		return err
	}
	character := b.characterBonus(base, c.CharacterID)
	fixture := int(float64(base) * b.fixture[c.CharacterID] / 1000)

	detail := func(unit enums.Unit, unitMember, attrMember int) PowerDetail {
		p := PowerDetail{
			Base:           base,
			AreaItemBonus:  b.areaItemBonus(base, c, unit, unitMember, attrMember),
			CharacterBonus: character,
			FixtureBonus:   fixture,
			GateBonus:      percentOf(base, b.gateRate[unit]),
		}
		p.Total = p.Base + p.AreaItemBonus + p.CharacterBonus + p.FixtureBonus + p.GateBonus
		return p
	}

	d.Power = NewDetailMap[PowerDetail]()
	for _, u := range d.Units {
		for _, um := range [2]int{1, 5} {
			for _, am := range [2]int{1, 5} {
				p := detail(u, um, am)
				d.Power.Set(u, um, am, float64(p.Total), p)
			}
		}
	}
	fallback := detail(d.Units[0], 1, 1)
	d.Power.Set(enums.UnitAny, 1, 1, float64(fallback.Total), fallback)
	return nil
}
