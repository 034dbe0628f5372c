package card

import (
	"slices"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// VirtualSingerMinID is the first character id of the virtual singers,
// whose event bonus also depends on their support unit.
const VirtualSingerMinID = 21

// EventContext selects which event the bonuses are computed for.
// EventID 0 means no event; SpecialCharacterID is set for world bloom
// chapters that rank a support deck.
type EventContext struct {
	EventID            int
	SpecialCharacterID int
}

func (b *Builder) eventDeckBonus(c *masterdata.Card) (float64, error) {
	best := 0.0
	for _, it := range b.eventDeckBonuses {
		if it.Attr != enums.AttrNone && it.Attr != c.Attr {
			continue
		}
		if it.CharacterUnitID == 0 {
			best = max(best, it.BonusRate)
			continue
		}
		cu, err := b.tables.CharacterUnit(it.CharacterUnitID)
		if err != nil {
			return 0, err
		}
		if cu.CharacterID != c.CharacterID {
			continue
		}
		if c.CharacterID < VirtualSingerMinID || c.SupportUnit == cu.Unit || c.SupportUnit == enums.UnitNone {
			best = max(best, it.BonusRate)
		}
	}
	return best, nil
}

// eventBonus is the percent bonus the card adds to event points.
func (b *Builder) eventBonus(c *masterdata.Card, uc *masterdata.UserCard) (*float64, error) {
	if b.ctx.EventID == 0 {
		return nil, nil
	}
	bonus, err := b.eventDeckBonus(c)
	if err != nil {
		return nil, err
	}
	for i := range b.tables.EventCards {
		ec := &b.tables.EventCards[i]
		if ec.EventID == b.ctx.EventID && ec.CardID == c.ID {
			bonus += ec.BonusRate
			break
		}
	}
	found := false
	for i := range b.tables.EventRarityBonusRates {
		r := &b.tables.EventRarityBonusRates[i]
		if r.Rarity == c.Rarity && r.MasterRank == uc.MasterRank {
			bonus += r.BonusRate
			found = true
			break
		}
	}
	if !found {
		return nil, errs.Data("event rarity bonus for %s master rank %d not found", c.Rarity, uc.MasterRank)
	}
	return &bonus, nil
}

// supportDeckBonus is only defined for cards of the special character's unit.
func (b *Builder) supportDeckBonus(c *masterdata.Card, uc *masterdata.UserCard, units []enums.Unit) (*float64, error) {
	if b.ctx.EventID == 0 || b.ctx.SpecialCharacterID <= 0 {
		return nil, nil
	}
	if !slices.Contains(units, b.specialUnit) {
		return nil, nil
	}
	row := b.tables.SupportByRarity[c.Rarity]
	if row == nil {
		return nil, errs.Data("support deck bonus for %s not found", c.Rarity)
	}
	charType := enums.SupportCharacterOthers
	if c.CharacterID == b.ctx.SpecialCharacterID {
		charType = enums.SupportCharacterSpecific
	}
	total := row.CharacterBonus[charType]
	mr, ok := row.MasterRankBonus[uc.MasterRank]
	if !ok {
		return nil, errs.Data("support deck master rank bonus %d not found", uc.MasterRank)
	}
	sl, ok := row.SkillLevelBonus[uc.SkillLevel]
	if !ok {
		return nil, errs.Data("support deck skill level bonus %d not found", uc.SkillLevel)
	}
	total += mr + sl
	for i := range b.tables.SupportLimitedBonuses {
		lb := &b.tables.SupportLimitedBonuses[i]
		if lb.EventID == b.ctx.EventID && lb.CharacterID == b.ctx.SpecialCharacterID && lb.CardID == c.ID {
			total += lb.BonusRate
		}
	}
	return &total, nil
}
