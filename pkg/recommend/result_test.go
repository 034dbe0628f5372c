package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/pkg/deck"
)

func result(leader, power, score int, value float64) *deck.Detail {
	return &deck.Detail{
		Cards:       []deck.CardDetail{{CardID: leader}},
		Power:       deck.Power{Total: power},
		Score:       score,
		TargetValue: value,
	}
}

func values(ds []*deck.Detail) []float64 {
	out := make([]float64, len(ds))
	for i, d := range ds {
		out[i] = d.TargetValue
	}
	return out
}

func TestTopKKeepsBest(t *testing.T) {
	top := NewTopK(3)
	for i, v := range []float64{5, 1, 9, 7, 3} {
		top.Update(result(i+1, 1000, int(v), v))
	}

	assert.Equal(t, 3, top.Len())
	assert.True(t, top.Full())
	assert.Equal(t, []float64{9, 7, 5}, values(top.Sorted()))
	assert.Equal(t, 5.0, top.Worst().TargetValue)
}

func TestTopKRejects(t *testing.T) {
	top := NewTopK(2)
	require.True(t, top.Update(result(1, 1000, 10, 10)))
	require.True(t, top.Update(result(2, 1000, 20, 20)))

	// same score, power and leader reads as the same deck
	assert.False(t, top.Update(result(1, 1000, 10, 30)))
	// not better than the worst kept
	assert.False(t, top.Update(result(3, 1000, 5, 5)))
	assert.Equal(t, []float64{20, 10}, values(top.Sorted()))

	// an evicted deck may come back
	require.True(t, top.Update(result(4, 1000, 40, 40)))
	assert.True(t, top.Update(result(1, 1000, 10, 30)))
	assert.Equal(t, []float64{40, 30}, values(top.Sorted()))
}

func TestTopKZeroLimit(t *testing.T) {
	top := NewTopK(0)
	assert.False(t, top.Update(result(1, 1000, 1, 1)))
	assert.Nil(t, top.Worst())
	assert.Empty(t, top.Sorted())
}

func TestTopKTieBreak(t *testing.T) {
	top := NewTopK(3)
	top.Update(result(5, 1000, 1, 1))
	top.Update(result(2, 1000, 2, 1))
	top.Update(result(9, 2000, 3, 1))

	got := top.Sorted()
	require.Len(t, got, 3)
	// higher power first, then the lower leader id
	assert.Equal(t, []int{9, 2, 5}, []int{got[0].LeaderID(), got[1].LeaderID(), got[2].LeaderID()})
}
