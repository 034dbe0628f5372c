package recommend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/internal/testfixture"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

func validRequest() (Options, LiveContext, *masterdata.User) {
	m := testfixture.Music()
	return DefaultOptions(), LiveContext{Music: &m}, testfixture.User(testfixture.Distinct([]int{1000, 1000, 1000}, 50))
}

func TestValidateAcceptsDefaults(t *testing.T) {
	o, live, user := validRequest()
	require.NoError(t, Validate(&o, &live, nil, user))

	o.Member = 2
	assert.NoError(t, Validate(&o, &live, nil, user))
}

func TestValidateRejects(t *testing.T) {
	bloom := &masterdata.Event{ID: testfixture.BloomEvent, Type: enums.EventWorldBloom}
	cases := []struct {
		name   string
		mutate func(*Options, *LiveContext)
		ev     *masterdata.Event
		msg    string
	}{
		{"member 1", func(o *Options, _ *LiveContext) { o.Member = 1 }, nil, "invalid member count: 1"},
		{"member 6", func(o *Options, _ *LiveContext) { o.Member = 6 }, nil, "invalid member count: 6"},
		{"zero limit", func(o *Options, _ *LiveContext) { o.Limit = 0 }, nil, "invalid limit"},
		{"negative timeout", func(o *Options, _ *LiveContext) { o.TimeoutMs = -1 }, nil, "invalid timeout"},
		{"unknown objective", func(o *Options, _ *LiveContext) { o.Objective = 9 }, nil, "invalid objective"},
		{"unknown algorithm", func(o *Options, _ *LiveContext) { o.Algorithm = 5 }, nil, "invalid algorithm"},
		{"bad sa options", func(o *Options, _ *LiveContext) {
			o.Algorithm = enums.AlgorithmSA
			o.SA.RunCount = 0
		}, nil, "sa option RunCount"},
		{"bad ga options", func(o *Options, _ *LiveContext) {
			o.Algorithm = enums.AlgorithmGA
			o.GA.ParentSize = o.GA.PopSize + 1
		}, nil, "ga option ParentSize"},
		{"too many fixed", func(o *Options, _ *LiveContext) {
			o.Member = 2
			o.FixedCards = []int{101, 102}
			o.FixedCharacters = []int{3}
		}, nil, "exceed member count"},
		{"duplicate fixed card", func(o *Options, _ *LiveContext) { o.FixedCards = []int{101, 101} }, nil, "duplicate fixed card"},
		{"duplicate fixed character", func(o *Options, _ *LiveContext) { o.FixedCharacters = []int{4, 4} }, nil, "duplicate fixed character"},
		{"fixed card not owned", func(o *Options, _ *LiveContext) { o.FixedCards = []int{999} }, nil, "not owned"},
		{"bonus with sa", func(o *Options, _ *LiveContext) {
			o.Objective = enums.ObjectiveBonus
			o.Algorithm = enums.AlgorithmSA
			o.BonusTargets = []int{100}
		}, nil, "exact algorithm"},
		{"bonus without targets", func(o *Options, _ *LiveContext) { o.Objective = enums.ObjectiveBonus }, nil, "bonus target"},
		{"bonus in world bloom", func(o *Options, _ *LiveContext) {
			o.Objective = enums.ObjectiveBonus
			o.BonusTargets = []int{100}
		}, bloom, "world bloom"},
		{"score without music", func(_ *Options, l *LiveContext) { l.Music = nil }, nil, "music meta"},
		{"challenge character 0", func(_ *Options, l *LiveContext) { l.LiveType = enums.LiveChallenge }, nil, "challenge character"},
		{"challenge character 27", func(_ *Options, l *LiveContext) {
			l.LiveType = enums.LiveChallenge
			l.ChallengeCharacterID = 27
		}, nil, "challenge character"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o, live, user := validRequest()
			c.mutate(&o, &live)

			err := Validate(&o, &live, c.ev, user)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
			assert.Contains(t, err.Error(), c.msg)
		})
	}
}

func TestValidateIgnoresOtherAlgorithmOptions(t *testing.T) {
	o, live, user := validRequest()
	o.SA = SAOptions{}
	o.GA = GAOptions{}

	assert.NoError(t, Validate(&o, &live, nil, user))
}

func TestRecommendValidatesBeforeBuilding(t *testing.T) {
	cards := testfixture.Distinct([]int{1000, 1000}, 50)
	tables, user := testfixture.Build(cards)
	o := DefaultOptions()
	o.Member = 6

	_, err := Recommend(t.Context(), tables, user, o, LiveContext{})
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
}
