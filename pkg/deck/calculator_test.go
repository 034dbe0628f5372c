package deck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/internal/testfixture"
	"deck-recommender/pkg/card"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// variant is one skill of a hand-built card.
type variant struct {
	pre     bool
	scoreUp float64
	special card.Special
}

func plain(scoreUp float64) variant { return variant{pre: true, scoreUp: scoreUp} }

func reference(pre bool, base, rate, maxValue float64) variant {
	return variant{pre: pre, scoreUp: base, special: card.Special{Kind: card.SpecialReference, Rate: rate, Max: maxValue}}
}

func mkCard(id, character int, attr enums.Attr, power int, vs ...variant) card.Detail {
	d := card.Detail{
		CardID:      id,
		Level:       1,
		SkillLevel:  1,
		Rarity:      enums.Rarity4,
		CharacterID: character,
		Units:       []enums.Unit{testfixture.CharacterUnit(character)},
		Attr:        attr,
		Power:       card.NewDetailMap[card.PowerDetail](),
		Skill:       card.NewDetailMap[card.SkillDetail](),
	}
	d.Power.Set(enums.UnitAny, 1, 1, float64(power), card.PowerDetail{Base: power, Total: power})
	var sd card.SkillDetail
	lo, hi := 0.0, 0.0
	for i, v := range vs {
		d.Variants = append(d.Variants, card.Variant{PreTraining: v.pre, Special: v.special})
		sd.Values[i] = card.SkillValue{ScoreUp: v.scoreUp}
		if i == 0 || v.scoreUp < lo {
			lo = v.scoreUp
		}
		hi = max(hi, v.scoreUp+v.special.BestBonus())
	}
	d.Skill.Set(enums.UnitAny, 1, 1, lo, sd)
	d.Skill.Widen(hi)
	return d
}

func withBonus(d card.Detail, bonus float64) card.Detail {
	d.EventBonus = &bonus
	return d
}

func tables() *masterdata.Tables {
	return testfixture.Master(nil).Index()
}

func newCalc(t *testing.T, arena []card.Detail, opts Options) *Calculator {
	t.Helper()
	c, err := NewCalculator(tables(), arena, 0, opts)
	require.NoError(t, err)
	return c
}

func powerOnly() Options { return Options{Objective: enums.ObjectivePower} }

func cardIDs(d *Detail) []int {
	out := make([]int, len(d.Cards))
	for i := range d.Cards {
		out[i] = d.Cards[i].CardID
	}
	return out
}

func TestNewCalculatorRejectsBadContext(t *testing.T) {
	m := testfixture.Music()
	cases := []struct {
		name string
		opts Options
	}{
		{"score without music", Options{Objective: enums.ObjectiveScore}},
		{"multi in cheerful event", Options{Context: Context{EventID: testfixture.CheerfulEvent, LiveType: enums.LiveMulti, Music: &m}}},
		{"cheerful outside cheerful event", Options{Context: Context{EventID: testfixture.MarathonEvent, LiveType: enums.LiveCheerful, Music: &m}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := NewCalculator(tables(), nil, 0, c.opts)
			assert.True(t, errors.Is(err, errs.ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestEvaluatePowerWithHonor(t *testing.T) {
	arena := []card.Detail{
		mkCard(1, 1, enums.AttrCute, 1000, plain(10)),
		mkCard(2, 2, enums.AttrCute, 2000, plain(10)),
		mkCard(3, 3, enums.AttrCute, 3000, plain(10)),
	}
	c, err := NewCalculator(tables(), arena, 500, powerOnly())
	require.NoError(t, err)

	d, err := c.Evaluate([]int{0, 1, 2})
	require.NoError(t, err)
	assert.Equal(t, 6000, d.Power.Base)
	assert.Equal(t, 500, d.Power.HonorBonus)
	assert.Equal(t, 6500, d.Power.Total)
	assert.Equal(t, 6500.0, d.TargetValue)
	assert.Nil(t, d.EventBonus)
	assert.Nil(t, d.SupportDeckBonus)
}

func TestEvaluateBestPicksLeader(t *testing.T) {
	arena := []card.Detail{
		mkCard(13, 1, enums.AttrCute, 1000, plain(20)),
		mkCard(10, 2, enums.AttrCute, 1000, plain(50)),
		mkCard(12, 3, enums.AttrCute, 1000, plain(90)),
		mkCard(11, 4, enums.AttrCute, 1000, plain(40)),
	}
	c := newCalc(t, arena, powerOnly())

	d, err := c.EvaluateBest([]int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, []int{12, 10, 11, 13}, cardIDs(d))
	assert.Equal(t, 90.0, d.Cards[0].ScoreUp)
	assert.Equal(t, 90+(50+40+20)/5.0, d.MultiLiveScoreUp)

	again, err := c.EvaluateBest(d.Indices())
	require.NoError(t, err)
	assert.Equal(t, cardIDs(d), cardIDs(again))
	assert.Equal(t, d.TargetValue, again.TargetValue)
}

func TestReferenceStrategies(t *testing.T) {
	arena := []card.Detail{
		mkCard(1, 1, enums.AttrCute, 1000, reference(true, 10, 50, 100)),
		mkCard(2, 2, enums.AttrCute, 1000, plain(40)),
		mkCard(3, 3, enums.AttrCute, 1000, plain(80)),
		mkCard(4, 4, enums.AttrCute, 1000, plain(120)),
	}
	for _, c := range []struct {
		strategy enums.ReferenceStrategy
		want     float64
	}{
		{enums.ReferenceMax, 70},
		{enums.ReferenceMin, 30},
		{enums.ReferenceAverage, 50},
	} {
		opts := powerOnly()
		opts.Strategy = c.strategy
		calc := newCalc(t, arena, opts)

		d, err := calc.Evaluate([]int{0, 1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, c.want, d.Cards[0].ScoreUp, "strategy %s", c.strategy)
	}
}

func TestReferenceCapsEachTeammate(t *testing.T) {
	arena := []card.Detail{
		mkCard(1, 1, enums.AttrCute, 1000, reference(true, 0, 100, 30)),
		mkCard(2, 2, enums.AttrCute, 1000, plain(120)),
	}
	c := newCalc(t, arena, powerOnly())

	d, err := c.Evaluate([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 30.0, d.Cards[0].ScoreUp)
}

func TestVariantChoice(t *testing.T) {
	teammate := mkCard(9, 9, enums.AttrCute, 1000, plain(100))
	cases := []struct {
		name    string
		pre     variant
		post    float64
		want    float64
		wantPre bool
	}{
		// post reaches the best pre value: post is certain
		{"post dominates", reference(true, 10, 100, 200), 250, 250, false},
		// the only ambiguous card keeps the larger realized value
		{"ambiguous keeps pre", reference(true, 10, 100, 200), 50, 110, true},
		{"ambiguous switches to post", reference(true, 10, 10, 200), 50, 50, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			arena := []card.Detail{
				mkCard(1, 1, enums.AttrCute, 1000, c.pre, variant{scoreUp: c.post}),
				teammate,
			}
			calc := newCalc(t, arena, powerOnly())

			d, err := calc.Evaluate([]int{0, 1})
			require.NoError(t, err)
			assert.Equal(t, c.want, d.Cards[0].ScoreUp)
			assert.Equal(t, c.wantPre, d.Cards[0].PreTraining)
		})
	}
}

func TestSeveralAmbiguousCardsStayPreTraining(t *testing.T) {
	both := func(id, character int) card.Detail {
		return mkCard(id, character, enums.AttrCute, 1000, reference(true, 0, 10, 100), variant{scoreUp: 50})
	}
	arena := []card.Detail{
		both(1, 1),
		both(2, 2),
		mkCard(3, 3, enums.AttrCute, 1000, plain(100)),
	}
	c := newCalc(t, arena, powerOnly())

	d, err := c.Evaluate([]int{0, 1, 2})
	require.NoError(t, err)
	for _, j := range []int{0, 1} {
		assert.True(t, d.Cards[j].PreTraining, "slot %d", j)
		assert.Equal(t, 10.0, d.Cards[j].ScoreUp, "slot %d", j)
	}
}

func TestUnitCountSkill(t *testing.T) {
	sp := card.Special{Kind: card.SpecialUnitCount, Max: 60}
	sp.ByUnitCount = [6]float64{0, 20, 40, 60, 60, 60}
	arena := []card.Detail{
		mkCard(1, 1, enums.AttrCute, 1000, variant{pre: true, scoreUp: 10, special: sp}),
		mkCard(2, 2, enums.AttrCute, 1000, plain(10)),
		mkCard(3, 5, enums.AttrCute, 1000, plain(10)),
		mkCard(4, 9, enums.AttrCute, 1000, plain(10)),
	}
	c := newCalc(t, arena, powerOnly())

	d, err := c.Evaluate([]int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, 30.0, d.Cards[0].ScoreUp)

	d, err = c.Evaluate([]int{0, 1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 70.0, d.Cards[0].ScoreUp)
}

func TestEventBonusSum(t *testing.T) {
	arena := []card.Detail{
		withBonus(mkCard(1, 1, enums.AttrCute, 1000, plain(10)), 10),
		withBonus(mkCard(2, 2, enums.AttrCool, 1000, plain(10)), 20),
		withBonus(mkCard(3, 3, enums.AttrCute, 1000, plain(10)), 30),
		mkCard(4, 4, enums.AttrCute, 1000, plain(10)),
	}

	opts := powerOnly()
	opts.EventID = testfixture.MarathonEvent
	c := newCalc(t, arena, opts)
	d, err := c.Evaluate([]int{0, 1, 2})
	require.NoError(t, err)
	require.NotNil(t, d.EventBonus)
	assert.Equal(t, 60.0, *d.EventBonus)

	d, err = c.Evaluate([]int{0, 3})
	require.NoError(t, err)
	assert.Nil(t, d.EventBonus)

	// world bloom adds the different attribute bonus, one per attr here
	opts.EventID = testfixture.BloomEvent
	c = newCalc(t, arena, opts)
	d, err = c.Evaluate([]int{0, 1, 2})
	require.NoError(t, err)
	require.NotNil(t, d.EventBonus)
	assert.Equal(t, 62.0, *d.EventBonus)
}

func TestSupportDeckBonus(t *testing.T) {
	withSupport := func(d card.Detail, b float64) card.Detail {
		d.SupportDeckBonus = &b
		return d
	}
	arena := []card.Detail{
		withSupport(mkCard(1, 1, enums.AttrCute, 1000, plain(10)), 30),
		withSupport(mkCard(2, 2, enums.AttrCute, 1000, plain(10)), 20),
		withSupport(mkCard(3, 3, enums.AttrCute, 1000, plain(10)), 10),
		mkCard(4, 5, enums.AttrCute, 1000, plain(10)),
	}
	opts := powerOnly()
	opts.EventID = testfixture.BloomEvent
	opts.SpecialCharacterID = 1
	opts.SupportDeckCount = 2
	c := newCalc(t, arena, opts)

	d, err := c.Evaluate([]int{0})
	require.NoError(t, err)
	require.NotNil(t, d.SupportDeckBonus)
	assert.Equal(t, 30.0, *d.SupportDeckBonus)

	d, err = c.Evaluate([]int{3})
	require.NoError(t, err)
	require.NotNil(t, d.SupportDeckBonus)
	assert.Equal(t, 50.0, *d.SupportDeckBonus)
}

func TestDefaultSupportDeckCount(t *testing.T) {
	assert.Equal(t, 20, DefaultSupportDeckCount(0))
	assert.Equal(t, 12, DefaultSupportDeckCount(100))
	assert.Equal(t, 12, DefaultSupportDeckCount(140))
	assert.Equal(t, 20, DefaultSupportDeckCount(141))
}

func TestScoreObjectiveUsesEventPoints(t *testing.T) {
	var arena []card.Detail
	for i := 1; i <= 5; i++ {
		arena = append(arena, withBonus(mkCard(i, i, enums.AttrCute, 1000, plain(100)), 10))
	}
	m := testfixture.Music()
	c := newCalc(t, arena, Options{
		Context:   Context{EventID: testfixture.MarathonEvent, LiveType: enums.LiveSolo, Music: &m},
		Objective: enums.ObjectiveScore,
	})

	d, err := c.EvaluateBest([]int{0, 1, 2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 80000, d.LiveScore)
	assert.Equal(t, 156, d.Score)
	assert.InDelta(t, 156.008, d.TargetValue, 1e-9)
}

func TestEventPointsNeedEventBonus(t *testing.T) {
	arena := []card.Detail{mkCard(1, 1, enums.AttrCute, 1000, plain(100))}
	m := testfixture.Music()
	c := newCalc(t, arena, Options{
		Context:   Context{EventID: testfixture.MarathonEvent, LiveType: enums.LiveSolo, Music: &m},
		Objective: enums.ObjectiveScore,
	})

	_, err := c.Evaluate([]int{0})
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
}

func TestChallengeScoresLiveOnly(t *testing.T) {
	arena := []card.Detail{
		mkCard(1, 1, enums.AttrCute, 1000, plain(100)),
		mkCard(2, 1, enums.AttrCute, 1000, plain(100)),
	}
	m := testfixture.Music()
	c := newCalc(t, arena, Options{
		Context:   Context{LiveType: enums.LiveChallenge, Music: &m},
		Objective: enums.ObjectiveScore,
	})

	d, err := c.Evaluate([]int{0, 1})
	require.NoError(t, err)
	// skills 100,100,0,0,0 then leader 100: 1 + 3 * 0.5
	assert.Equal(t, 20000, d.LiveScore)
	assert.Equal(t, d.LiveScore, d.Score)
}
