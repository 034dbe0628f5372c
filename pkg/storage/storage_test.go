package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/pkg/deck"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(value float64, at time.Time) *Run {
	bonus := 42.5
	return &Run{
		Name:      "marathon",
		CreatedAt: at,
		Algorithm: "exact",
		Objective: "score",
		LiveType:  "multi",
		EventID:   120,
		Member:    5,
		Decks: []*deck.Detail{{
			Cards:       []deck.CardDetail{{CardID: 1001, CharacterID: 1, Level: 60}, {CardID: 1002, CharacterID: 2}},
			Power:       deck.Power{Base: 9000, Total: 9200, HonorBonus: 200},
			EventBonus:  &bonus,
			Score:       int(value),
			TargetValue: value,
		}},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r := testRun(1234, time.Time{})
	require.NoError(t, db.SaveRun(ctx, r))
	require.NotEmpty(t, r.ID)
	require.False(t, r.CreatedAt.IsZero())

	got, err := db.GetRun(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, got.ID)
	assert.WithinDuration(t, r.CreatedAt, got.CreatedAt, 0)
	assert.Equal(t, "marathon", got.Name)
	assert.Equal(t, "exact", got.Algorithm)
	assert.Equal(t, 120, got.EventID)
	require.Len(t, got.Decks, 1)
	assert.Equal(t, 1001, got.Decks[0].LeaderID())
	assert.Equal(t, 9200, got.Decks[0].Power.Total)
	require.NotNil(t, got.Decks[0].EventBonus)
	assert.Equal(t, 42.5, *got.Decks[0].EventBonus)
	assert.Equal(t, 1234.0, got.BestValue())
}

func TestGetRunUnknown(t *testing.T) {
	db := openTestDB(t)
	_, err := db.GetRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, v := range []float64{10, 30, 20} {
		require.NoError(t, db.SaveRun(ctx, testRun(v, base.Add(time.Duration(i)*time.Second))))
	}

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []float64{20, 30, 10}, []float64{runs[0].BestValue(), runs[1].BestValue(), runs[2].BestValue()})

	runs, err = db.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListRunsEmpty(t *testing.T) {
	db := openTestDB(t)
	runs, err := db.ListRuns(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, runs)

	var r Run
	assert.Zero(t, r.BestValue())
}

func TestOpenFailures(t *testing.T) {
	dir := t.TempDir()
	_, err := Open(filepath.Join(dir, "missing", "history.db"))
	assert.Error(t, err)

	garbage := filepath.Join(dir, "garbage.db")
	require.NoError(t, os.WriteFile(garbage, bytes.Repeat([]byte("not sqlite "), 200), 0o644))
	_, err = Open(garbage)
	assert.Error(t, err)
}
