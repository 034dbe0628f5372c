package card

import (
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// skillDetail is one skill resolved at a skill level, before composition.
type skillDetail struct {
	scoreUp      float64
	lifeRecovery float64
	enhance      *masterdata.SkillEnhance
	special      Special
}

// scoreUpAt returns the score-up when unitMember deck cards share unit.
// Five matching members get an extra step on top of the linear bonus.
func (s *skillDetail) scoreUpAt(unit enums.Unit, unitMember int) float64 {
	if s.enhance == nil || s.enhance.Unit != unit {
		return s.scoreUp
	}
	steps := unitMember - 1
	if unitMember == 5 {
		steps = 5
	}
	return s.scoreUp + float64(steps)*s.enhance.Value
}

func (b *Builder) resolveSkill(skillID, skillLevel, characterID int) (skillDetail, error) {
	var ret skillDetail
	skill, err := b.tables.Skill(skillID)
	if err != nil {
		return ret, err
	}
	characterRank := b.user.CharacterRank(characterID)
	rankBonus := 0.0
	unitCountValues := map[int]float64{}

	for i := range skill.Effects {
		eff := &skill.Effects[i]
		if eff.Type == enums.SkillEffectUnknown {
			continue
		}
		d, ok := eff.DetailAt(skillLevel)
		if !ok {
			return ret, errs.Data("skill %d has no detail for level %d", skillID, skillLevel)
		}
		switch {
		case eff.Type.IsScoreUp():
			if eff.Enhance != nil {
				ret.enhance = eff.Enhance
			}
			ret.scoreUp = max(ret.scoreUp, d.Value)
		case eff.Type == enums.SkillEffectLifeRecovery:
			ret.lifeRecovery += d.Value
		case eff.Type == enums.SkillEffectScoreUpCharacterRank:
			if eff.ActivateCharacterRank != 0 && eff.ActivateCharacterRank <= characterRank {
				rankBonus = max(rankBonus, d.Value)
			}
		case eff.Type == enums.SkillEffectOtherMemberScoreUpReferenceRate:
			ret.special = Special{Kind: SpecialReference, Rate: d.Value, Max: d.Value2}
		case eff.Type == enums.SkillEffectScoreUpUnitCount:
			unitCountValues[eff.ActivateUnitCount] = d.Value
		}
	}
	ret.scoreUp += rankBonus

	if len(unitCountValues) > 0 {
		sp := Special{Kind: SpecialUnitCount}
		for n := 1; n < len(sp.ByUnitCount); n++ {
			for k, v := range unitCountValues {
				if k <= n && k > 0 && v > sp.ByUnitCount[n] {
					sp.ByUnitCount[n] = v
				}
			}
			sp.Max = max(sp.Max, sp.ByUnitCount[n])
		}
		ret.special = sp
	}
	return ret, nil
}

// buildSkillMap fills the skill map for every variant of a card.
func (b *Builder) buildSkillMap(d *Detail, c *masterdata.Card, uc *masterdata.UserCard) error {
	type variantSkill struct {
		variant Variant
		skill   skillDetail
	}
	var vs []variantSkill

	hasPost := c.SpecialTrainingSkillID != 0 && uc.SpecialTrained
	usePre := !b.keepTrainingState || !hasPost || uc.DefaultImage != enums.ImageSpecialTraining
	usePost := hasPost && (!b.keepTrainingState || uc.DefaultImage == enums.ImageSpecialTraining)

	if usePre {
		sk, err := b.resolveSkill(c.SkillID, uc.SkillLevel, c.CharacterID)
		if err != nil {
			return err
		}
		vs = append(vs, variantSkill{Variant{PreTraining: true, Special: sk.special}, sk})
	}
	if usePost {
		sk, err := b.resolveSkill(c.SpecialTrainingSkillID, uc.SkillLevel, c.CharacterID)
		if err != nil {
			return err
		}
		vs = append(vs, variantSkill{Variant{PreTraining: false, Special: sk.special}, sk})
	}

	d.Variants = make([]Variant, len(vs))
	for i := range vs {
		d.Variants[i] = vs[i].variant
	}

	d.Skill = NewDetailMap[SkillDetail]()
	set := func(unit enums.Unit, unitMember int) {
		var sd SkillDetail
		lo, hi := 0.0, 0.0
		for i := range vs {
			v := vs[i].skill.scoreUpAt(unit, unitMember)
			sd.Values[i] = SkillValue{ScoreUp: v, LifeRecovery: vs[i].skill.lifeRecovery}
			if i == 0 || v < lo {
				lo = v
			}
			hi = max(hi, v+vs[i].skill.special.BestBonus())
		}
		d.Skill.Set(unit, unitMember, 1, lo, sd)
		d.Skill.Widen(hi)
	}

	for i := range vs {
		en := vs[i].skill.enhance
		if en == nil {
			continue
		}
		for n := 1; n <= 5; n++ {
			set(en.Unit, n)
		}
	}
	set(enums.UnitAny, 1)
	return nil
}
