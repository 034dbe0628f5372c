package masterdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

func testSources() Sources {
	return Sources{
		Master: filepath.Join("testdata", "master.json"),
		User:   filepath.Join("testdata", "user.json"),
		Music:  filepath.Join("testdata", "music.json"),
	}
}

func loadTestData(t *testing.T) (*Tables, *User) {
	t.Helper()
	tables, user, err := Load(context.Background(), testSources())
	require.NoError(t, err)
	return tables, user
}

func TestLoadMaster(t *testing.T) {
	tables, _ := loadTestData(t)

	require.Len(t, tables.Cards, 6)
	c, err := tables.Card(1001)
	require.NoError(t, err)
	assert.Equal(t, 1, c.CharacterID)
	assert.Equal(t, enums.Rarity4, c.Rarity)
	assert.Equal(t, enums.AttrCute, c.Attr)
	assert.Equal(t, enums.UnitNone, c.SupportUnit)
	assert.Equal(t, 2001, c.SkillID)
	assert.Equal(t, [3]int{250, 250, 250}, c.SpecialTrainingPower)
	require.Len(t, c.LevelParams, 61)
	assert.Equal(t, [3]int{3100, 3100, 3100}, c.LevelParams[60])
	assert.Equal(t, [3]int{1000, 1000, 1000}, c.LevelParams[1])

	s, err := tables.Skill(2001)
	require.NoError(t, err)
	require.Len(t, s.Effects, 1)
	assert.Equal(t, enums.SkillEffectScoreUp, s.Effects[0].Type)
	d, ok := s.Effects[0].DetailAt(4)
	require.True(t, ok)
	assert.Equal(t, 141.0, d.Value)
	_, ok = s.Effects[0].DetailAt(5)
	assert.False(t, ok)

	eps := tables.Episodes(1001)
	require.Len(t, eps, 2)
	assert.Equal(t, 0, eps[0].Part)
	assert.Equal(t, 1, eps[1].Part)

	r, err := tables.Rarity(enums.Rarity4)
	require.NoError(t, err)
	assert.Equal(t, 60, r.TrainingMaxLevel)
	assert.Equal(t, 4, r.MaxSkillLevel)

	ev, err := tables.Event(150)
	require.NoError(t, err)
	assert.Equal(t, enums.EventWorldBloom, ev.Type)
	assert.Equal(t, enums.UnitLightSound, ev.Unit)
	ev, err = tables.Event(0)
	require.NoError(t, err)
	assert.Nil(t, ev)

	sb := tables.SupportByRarity[enums.Rarity4]
	require.NotNil(t, sb)
	assert.Equal(t, 25.0, sb.CharacterBonus[enums.SupportCharacterSpecific])
	assert.Equal(t, 10.0, sb.CharacterBonus[enums.SupportCharacterOthers])
	assert.Equal(t, 3.0, sb.MasterRankBonus[3])
	assert.Equal(t, 3.0, sb.SkillLevelBonus[4])

	require.Len(t, tables.AreaItemLevels, 2)
	assert.Equal(t, enums.UnitLightSound, tables.AreaItemLevels[0].TargetUnit)
	assert.Equal(t, enums.AttrCute, tables.AreaItemLevels[1].TargetAttr)

	m, err := tables.MusicMeta(74, "expert")
	require.NoError(t, err)
	assert.Equal(t, 114.0, m.EventRate)
	assert.Len(t, m.SkillScoreSolo, 6)
	_, err = tables.MusicMeta(74, "master")
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
}

func TestLoadUser(t *testing.T) {
	tables, user := loadTestData(t)

	require.Len(t, user.Cards, 6)
	uc := user.Cards[0]
	assert.Equal(t, 1001, uc.CardID)
	assert.Equal(t, 60, uc.Level)
	assert.Equal(t, 4, uc.SkillLevel)
	assert.Equal(t, 1, uc.MasterRank)
	assert.True(t, uc.SpecialTrained)
	assert.Equal(t, enums.ImageSpecialTraining, uc.DefaultImage)
	assert.Equal(t, []int{3002}, uc.ReadEpisodeIDs)

	assert.Equal(t, []int{1003}, user.CanvasCardIDs)
	assert.Equal(t, 10, user.CharacterRank(1))
	assert.Equal(t, 0, user.CharacterRank(20))
	assert.Equal(t, 200, tables.HonorBonus(user))
	require.Len(t, user.FixtureBonuses, 1)
	assert.Equal(t, 50.0, user.FixtureBonuses[0].BonusRate)
}

func TestLookupsReportMissingRows(t *testing.T) {
	tables, _ := loadTestData(t)

	for _, err := range []error{
		func() error { _, err := tables.Card(9999); return err }(),
		func() error { _, err := tables.Skill(-1); return err }(),
		func() error { _, err := tables.Event(121); return err }(),
		func() error { _, err := tables.Character(27); return err }(),
		func() error { _, err := tables.Rarity(enums.RarityNone); return err }(),
	} {
		assert.True(t, errors.Is(err, errs.ErrMalformedData), "got %v", err)
	}
}

func TestParseRejectsInvalidJSON(t *testing.T) {
	_, err := ParseMaster("{")
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
	_, err = ParseUser("not json")
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
	_, err = ParseMusicMetas("[")
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
}

func TestParseRejectsNegativeCardLevel(t *testing.T) {
	_, err := ParseMaster(`{"cards":[{"id":7,"cardParameters":[
		{"cardLevel":1,"cardParameterType":"param1","power":100},
		{"cardLevel":-1,"cardParameterType":"param1","power":100}]}]}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
	assert.Contains(t, err.Error(), "card 7")

	m, err := ParseMaster(`{"cards":[{"id":7,"cardParameters":[{"cardLevel":2,"cardParameterType":"param2","power":50}]}]}`)
	require.NoError(t, err)
	require.Len(t, m.Cards, 1)
	assert.Equal(t, [3]int{0, 50, 0}, m.Cards[0].LevelParams[2])
}

func TestLoadOverHTTP(t *testing.T) {
	files := map[string]string{}
	for name, path := range map[string]string{"/master": "master.json", "/user": "user.json", "/music": "music.json"} {
		b, err := os.ReadFile(filepath.Join("testdata", path))
		require.NoError(t, err)
		files[name] = string(b)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	tables, user, err := Load(context.Background(), Sources{
		Master: srv.URL + "/master",
		User:   srv.URL + "/user",
		Music:  srv.URL + "/music",
	})
	require.NoError(t, err)
	assert.Len(t, tables.Cards, 6)
	assert.Len(t, user.Cards, 6)

	_, err = ReadSource(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}

func TestReadSourceServerError(t *testing.T) {
	old := RetryMax
	RetryMax = 0
	defer func() { RetryMax = old }()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := ReadSource(context.Background(), srv.URL)
	assert.Error(t, err)
}

func TestReadSourceLocalErrors(t *testing.T) {
	_, err := ReadSource(context.Background(), "")
	assert.Error(t, err)
	_, err = ReadSource(context.Background(), filepath.Join("testdata", "nope.json"))
	assert.Error(t, err)
}
