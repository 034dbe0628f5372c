package deck

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/internal/testfixture"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

func lineup(power int, scoreUps ...float64) *Detail {
	d := &Detail{Power: Power{Total: power}}
	for _, s := range scoreUps {
		d.Cards = append(d.Cards, CardDetail{ScoreUp: s})
	}
	return d
}

func TestLiveScoreSolo(t *testing.T) {
	m := testfixture.Music()

	score, life, err := LiveScore(lineup(5000, 100, 100, 100, 100, 100), &m, enums.LiveSolo)
	require.NoError(t, err)
	// 1 + 6 * 100 * 0.5 / 100
	assert.Equal(t, 80000, score)
	assert.Equal(t, 1000, life)
}

func TestLiveScoreSortsRatesOfPlayedSlots(t *testing.T) {
	m := testfixture.Music()
	m.SkillScoreSolo = []float64{0.25, 0.5, 0.25, 0.5, 0.25, 1}

	d := lineup(1000, 200, 100, 400)
	d.Cards[0].LifeRecovery = 300
	score, life, err := LiveScore(d, &m, enums.LiveSolo)
	require.NoError(t, err)

	// skills 100,200,400,0,0 then the leader's 200; rates 0.25,0.25,0.5,0.5,0.25,1
	assert.Equal(t, 23000, score)
	// the leader recovers in its own slot and in the last one
	assert.Equal(t, 1600, life)
}

func TestLiveScoreLifeCap(t *testing.T) {
	m := testfixture.Music()
	d := lineup(1000, 100)
	d.Cards[0].LifeRecovery = 900

	_, life, err := LiveScore(d, &m, enums.LiveChallenge)
	require.NoError(t, err)
	assert.Equal(t, 2000, life)
}

func TestLiveScoreMulti(t *testing.T) {
	m := testfixture.Music()

	// 100 + 4 * 125 / 5 = 200 in all six slots
	d := lineup(1000, 100, 125, 125, 125, 125)
	score, _, err := LiveScore(d, &m, enums.LiveMulti)
	require.NoError(t, err)
	// (1.5 + 6) * 1000 * 4 + 5 * 0.015 * 5000
	assert.InDelta(t, 30375, score, 1)
	assert.Equal(t, 200.0, multiLiveSkill(d.Cards).scoreUp)
}

func TestLiveScoreAuto(t *testing.T) {
	m := testfixture.Music()

	score, _, err := LiveScore(lineup(5000, 100, 100, 100, 100, 100), &m, enums.LiveAuto)
	require.NoError(t, err)
	assert.Equal(t, 70000, score)
}

func TestLiveScoreNeedsSixRates(t *testing.T) {
	m := testfixture.Music()
	m.SkillScoreSolo = m.SkillScoreSolo[:5]

	_, _, err := LiveScore(lineup(1000, 100), &m, enums.LiveSolo)
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
}

func TestEventPoint(t *testing.T) {
	cases := []struct {
		name  string
		lt    enums.LiveType
		et    enums.EventType
		self  int
		bonus float64
		life  int
		want  int
	}{
		{"solo", enums.LiveSolo, enums.EventMarathon, 80000, 50, 1000, 156},
		{"auto", enums.LiveAuto, enums.EventMarathon, 80000, 0, 1000, 104},
		{"challenge", enums.LiveChallenge, enums.EventNone, 80000, 50, 1000, 12480},
		{"multi", enums.LiveMulti, enums.EventMarathon, 170000, 0, 1000, 122},
		{"cheerful", enums.LiveCheerful, enums.EventCheerfulCarnival, 170000, 0, 1000, 164},
		{"cheerful low life", enums.LiveCheerful, enums.EventCheerfulCarnival, 170000, 0, 250, 152},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := EventPoint(c.lt, c.et, c.self, 100, c.bonus, 0, c.life)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestEventPointRejectsWrongEventType(t *testing.T) {
	_, err := EventPoint(enums.LiveMulti, enums.EventCheerfulCarnival, 1000, 100, 0, 0, 1000)
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))

	_, err = EventPoint(enums.LiveCheerful, enums.EventMarathon, 1000, 100, 0, 0, 1000)
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
}
