package card

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

func TestDetailMapFallbackCascade(t *testing.T) {
	m := NewDetailMap[int]()
	m.Set(enums.UnitAny, 1, 1, 10, 10)
	m.Set(enums.UnitIdol, 1, 1, 20, 20)
	m.Set(enums.UnitIdol, 5, 5, 50, 50)

	cases := []struct {
		unit       enums.Unit
		unitMember int
		attrMember int
		want       int
	}{
		{enums.UnitIdol, 5, 5, 50},
		{enums.UnitIdol, 3, 1, 20},   // folded to 1
		{enums.UnitIdol, 3, 5, 10},   // (idol,1,5) missing
		{enums.UnitIdol, 5, 3, 10},   // attr 3 reads as 1; (idol,5,1) missing
		{enums.UnitStreet, 2, 1, 10}, // unit missing
	}
	for _, c := range cases {
		got, err := m.Get(c.unit, c.unitMember, c.attrMember)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "unit=%s unitMember=%d attrMember=%d", c.unit, c.unitMember, c.attrMember)
	}
	assert.Equal(t, 10.0, m.Min)
	assert.Equal(t, 50.0, m.Max)
	assert.True(t, m.Has())
}

func TestDetailMapCaseNotFound(t *testing.T) {
	m := NewDetailMap[int]()
	m.Set(enums.UnitIdol, 5, 5, 1, 1)

	_, err := m.Get(enums.UnitStreet, 1, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCaseNotFound))
	assert.True(t, errors.Is(err, errs.ErrMalformedData))
	assert.False(t, m.Has())
}

func TestDetailMapOutOfRangeKeyOnlyMovesBounds(t *testing.T) {
	m := NewDetailMap[int]()
	m.Set(enums.UnitIdol, 0, 1, 7, 7)
	m.Set(enums.UnitIdol, 6, 1, 9, 9)

	assert.Equal(t, 7.0, m.Min)
	assert.Equal(t, 9.0, m.Max)
	_, err := m.Get(enums.UnitIdol, 1, 1)
	assert.Error(t, err)
}

func TestDetailMapCertainlyLess(t *testing.T) {
	low := NewDetailMap[int]()
	low.Set(enums.UnitAny, 1, 1, 10, 0)
	low.Set(enums.UnitIdol, 5, 1, 30, 0)
	high := NewDetailMap[int]()
	high.Set(enums.UnitAny, 1, 1, 40, 0)

	assert.True(t, low.IsCertainlyLessThan(&high))
	assert.False(t, high.IsCertainlyLessThan(&low))

	low.Widen(40)
	assert.False(t, low.IsCertainlyLessThan(&high))
	low.Widen(5)
	assert.Equal(t, 40.0, low.Max)
}
