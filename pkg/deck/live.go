package deck

import (
	"slices"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// skillSlots is the number of skill activations in one live; the sixth
// always belongs to the leader.
const skillSlots = 6

type liveSkill struct {
	scoreUp      float64
	lifeRecovery float64
}

func baseRate(m *masterdata.MusicMeta, lt enums.LiveType) (float64, error) {
	switch lt {
	case enums.LiveSolo, enums.LiveChallenge:
		return m.BaseScore, nil
	case enums.LiveMulti, enums.LiveCheerful:
		return m.BaseScore + m.FeverScore, nil
	case enums.LiveAuto:
		return m.BaseScoreAuto, nil
	}
	return 0, errs.Config("invalid live type: %s", lt)
}

func skillRates(m *masterdata.MusicMeta, lt enums.LiveType) []float64 {
	switch lt {
	case enums.LiveMulti, enums.LiveCheerful:
		return m.SkillScoreMulti
	case enums.LiveAuto:
		return m.SkillScoreAuto
	}
	return m.SkillScoreSolo
}

// multiLiveSkill is the deck skill seen in multi lives: the leader counts in
// full and every other member for one fifth. Life recovery is the leader's.
func multiLiveSkill(cards []CardDetail) liveSkill {
	s := liveSkill{lifeRecovery: cards[0].LifeRecovery}
	for i := range cards {
		if i == 0 {
			s.scoreUp += cards[i].ScoreUp
		} else {
			s.scoreUp += cards[i].ScoreUp / 5
		}
	}
	return s
}

// skillOrder returns the six activations and whether they were sorted, in
// which case the skill rates have to be sorted to match.
func skillOrder(cards []CardDetail, lt enums.LiveType) ([]liveSkill, bool) {
	if lt == enums.LiveMulti {
		s := multiLiveSkill(cards)
		out := make([]liveSkill, skillSlots)
		for i := range out {
			out[i] = s
		}
		return out, false
	}
	out := make([]liveSkill, 0, skillSlots)
	for i := range cards {
		out = append(out, liveSkill{cards[i].ScoreUp, cards[i].LifeRecovery})
	}
	slices.SortStableFunc(out, func(a, b liveSkill) int {
		switch {
		case a.scoreUp < b.scoreUp:
			return -1
		case a.scoreUp > b.scoreUp:
			return 1
		}
		return 0
	})
	for len(out) < skillSlots-1 {
		out = append(out, liveSkill{})
	}
	out = append(out, liveSkill{cards[0].ScoreUp, cards[0].LifeRecovery})
	return out, true
}

// LiveScore computes the expected score and remaining life of a deck on a
// chart. d must already carry its power total and realized skills.
func LiveScore(d *Detail, m *masterdata.MusicMeta, lt enums.LiveType) (score, life int, err error) {
	if len(d.Cards) == 0 {
		return 0, 0, errs.Config("empty deck")
	}
	rate, err := baseRate(m, lt)
	if err != nil {
		return 0, 0, err
	}
	src := skillRates(m, lt)
	if len(src) < skillSlots {
		return 0, 0, errs.Data("music %d/%s has %d skill rates for %s", m.MusicID, m.Difficulty, len(src), lt)
	}
	skills, sorted := skillOrder(d.Cards, lt)
	rates := slices.Clone(src[:skillSlots])
	if sorted {
		slices.Sort(rates[:len(d.Cards)])
	}

	lifeSum := 0.0
	for i, s := range skills {
		rate += s.scoreUp * rates[i] / 100
		lifeSum += s.lifeRecovery
	}
	power := float64(d.Power.Total)
	active := 0.0
	if lt == enums.LiveMulti {
		active = 5 * 0.015 * (5 * power)
	}
	score = int(rate*power*4 + active)
	life = min(2000, int(lifeSum)+1000)
	return score, life, nil
}
