package request

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/pkg/card"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
	"deck-recommender/pkg/recommend"
)

func loadTables(t *testing.T) *masterdata.Tables {
	t.Helper()
	dir := filepath.Join("..", "..", "pkg", "masterdata", "testdata")
	tables, _, err := masterdata.Load(context.Background(), masterdata.Sources{
		Master: filepath.Join(dir, "master.json"),
		User:   filepath.Join(dir, "user.json"),
		Music:  filepath.Join(dir, "music.json"),
	})
	require.NoError(t, err)
	return tables
}

func TestResolveDefaults(t *testing.T) {
	var r Request
	o, live, err := r.Resolve(loadTables(t))
	require.NoError(t, err)

	def := recommend.DefaultOptions()
	assert.Equal(t, def.Member, o.Member)
	assert.Equal(t, def.Limit, o.Limit)
	assert.Equal(t, enums.AlgorithmExact, o.Algorithm)
	assert.Equal(t, enums.LiveSolo, live.LiveType)
	assert.Nil(t, live.Music)
}

func TestResolveFromJSON(t *testing.T) {
	body := `{
		"member": 4, "limit": 3, "objective": "power", "algorithm": "sa",
		"liveType": "cheerful", "eventId": 120, "musicId": 74, "difficulty": "expert",
		"rarityConfig": {"rarity_4": {"master_max": true}},
		"cardConfig": {"1001": {"disable": true}},
		"fixedCharacters": [2], "skillReference": "average",
		"sa": {"runCount": 2, "seed": 3, "maxIter": 10, "maxIterNoImprove": 10, "timeLimitMs": 50, "startTemp": 10, "coolingRate": 0.9}
	}`
	var r Request
	require.NoError(t, json.Unmarshal([]byte(body), &r))

	o, live, err := r.Resolve(loadTables(t))
	require.NoError(t, err)
	assert.Equal(t, 4, o.Member)
	assert.Equal(t, 3, o.Limit)
	assert.Equal(t, enums.ObjectivePower, o.Objective)
	assert.Equal(t, enums.AlgorithmSA, o.Algorithm)
	assert.Equal(t, enums.ReferenceAverage, o.SkillReference)
	assert.True(t, o.RarityConfig[enums.Rarity4].ForceMaxAscension)
	assert.True(t, o.CardConfig[1001].Disable)
	assert.Equal(t, []int{2}, o.FixedCharacters)
	assert.Equal(t, 2, o.SA.RunCount)
	assert.Equal(t, int64(3), o.SA.Seed)
	// GA keeps its defaults
	assert.Equal(t, recommend.DefaultGAOptions(), o.GA)

	assert.Equal(t, enums.LiveCheerful, live.LiveType)
	assert.Equal(t, 120, live.EventID)
	require.NotNil(t, live.Music)
	assert.Equal(t, 114.0, live.Music.EventRate)
}

func TestResolveRejects(t *testing.T) {
	tables := loadTables(t)
	cases := []struct {
		name string
		req  Request
		kind error
	}{
		{"objective", Request{Objective: "luck"}, errs.ErrInvalidConfig},
		{"algorithm", Request{Algorithm: "bogo"}, errs.ErrInvalidConfig},
		{"live type", Request{LiveType: "duet"}, errs.ErrInvalidConfig},
		{"reference", Request{SkillReference: "median"}, errs.ErrInvalidConfig},
		{"rarity", Request{RarityConfig: map[string]card.Config{"rarity_9": {}}}, errs.ErrInvalidConfig},
		{"music", Request{MusicID: 74}, errs.ErrMalformedData},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := c.req.Resolve(tables)
			require.Error(t, err)
			assert.True(t, errors.Is(err, c.kind), "got %v", err)
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "job-01", (&Request{}).Label(0))
	assert.Equal(t, "job-12", (&Request{}).Label(11))
	assert.Equal(t, "bloom", (&Request{Name: "bloom"}).Label(3))
}

func TestExecute(t *testing.T) {
	dir := filepath.Join("..", "..", "pkg", "masterdata", "testdata")
	tables, user, err := masterdata.Load(context.Background(), masterdata.Sources{
		Master: filepath.Join(dir, "master.json"),
		User:   filepath.Join(dir, "user.json"),
		Music:  filepath.Join(dir, "music.json"),
	})
	require.NoError(t, err)

	run, err := Execute(context.Background(), tables, user, &Request{Limit: 2, EventID: 120, MusicID: 74, Difficulty: "expert"})
	require.NoError(t, err)
	assert.Equal(t, "dfs", run.Algorithm)
	assert.Equal(t, "score", run.Objective)
	assert.Equal(t, "solo", run.LiveType)
	assert.Equal(t, 120, run.EventID)
	assert.Equal(t, 5, run.Member)
	require.NotEmpty(t, run.Decks)
	assert.LessOrEqual(t, len(run.Decks), 2)
	assert.Empty(t, run.ID)

	run, err = Execute(context.Background(), tables, user, &Request{Member: 6, MusicID: 74, Difficulty: "expert"})
	assert.True(t, errors.Is(err, errs.ErrInvalidConfig))
	assert.Equal(t, 6, run.Member)
	assert.Empty(t, run.Decks)
}

func TestExecuteAll(t *testing.T) {
	dir := filepath.Join("..", "..", "pkg", "masterdata", "testdata")
	tables, user, err := masterdata.Load(context.Background(), masterdata.Sources{
		Master: filepath.Join(dir, "master.json"),
		User:   filepath.Join(dir, "user.json"),
		Music:  filepath.Join(dir, "music.json"),
	})
	require.NoError(t, err)

	reqs := []Request{
		{Name: "power", Objective: "power", Limit: 1},
		{Member: 9},
		{Objective: "skill", Limit: 2, LiveType: "multi"},
	}
	got := ExecuteAll(context.Background(), tables, user, reqs, 2)
	require.Len(t, got, 3)

	assert.Equal(t, "power", got[0].Name)
	require.NoError(t, got[0].Err)
	assert.Len(t, got[0].Run.Decks, 1)

	assert.Equal(t, "job-02", got[1].Name)
	assert.True(t, errors.Is(got[1].Err, errs.ErrInvalidConfig))

	require.NoError(t, got[2].Err)
	assert.Equal(t, "multi", got[2].Run.LiveType)
	assert.NotEmpty(t, got[2].Run.Decks)
}

func TestExecuteAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got := ExecuteAll(ctx, nil, nil, []Request{{}, {Name: "b"}}, 0)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.True(t, errors.Is(r.Err, context.Canceled))
		assert.Nil(t, r.Run)
	}
	assert.Equal(t, "b", got[1].Name)
}
