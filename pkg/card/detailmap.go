package card

import (
	"math"

	"github.com/pkg/errors"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

const mapSize = 2 * 5 * enums.MaxUnit

// ErrCaseNotFound means a composition key resolved to no entry at all.
// The builder always writes the (any, 1, 1) fallback, so this is a data defect.
var ErrCaseNotFound = errors.Wrap(errs.ErrMalformedData, "case not found")

// DetailMap stores one value per deck composition: the unit being matched,
// how many deck members share that unit, and how many share the attr (1 or 5).
// Min and Max bound the comparison metric over every stored value and are
// used only for pruning.
type DetailMap[V any] struct {
	Min float64
	Max float64

	values [mapSize]V
	set    [mapSize]bool
}

// NewDetailMap returns an empty map with inverted bounds.
func NewDetailMap[V any]() DetailMap[V] {
	return DetailMap[V]{Min: math.MaxFloat64, Max: -math.MaxFloat64}
}

func mapKey(unit enums.Unit, unitMember, attrMember int) int {
	attrPart := 0
	if attrMember != 1 {
		attrPart = 1
	}
	return attrPart*enums.MaxUnit*5 + (unitMember-1)*enums.MaxUnit + int(unit)
}

func validKey(unit enums.Unit, unitMember int) bool {
	return unit >= 0 && int(unit) < enums.MaxUnit && unitMember >= 1 && unitMember <= 5
}

// Set stores value at the composition key and folds metric into the bounds.
func (m *DetailMap[V]) Set(unit enums.Unit, unitMember, attrMember int, metric float64, value V) {
	if metric < m.Min {
		m.Min = metric
	}
	if metric > m.Max {
		m.Max = metric
	}
	if !validKey(unit, unitMember) {
		return
	}
	k := mapKey(unit, unitMember, normalizeAttrMember(attrMember))
	m.values[k] = value
	m.set[k] = true
}

// Widen raises Max so that the bound also covers values realized only at
// deck time, such as skills depending on teammates.
func (m *DetailMap[V]) Widen(hi float64) {
	if hi > m.Max {
		m.Max = hi
	}
}

func normalizeAttrMember(attrMember int) int {
	if attrMember == 5 {
		return 5
	}
	return 1
}

func (m *DetailMap[V]) lookup(unit enums.Unit, unitMember, attrMember int) (V, bool) {
	if !validKey(unit, unitMember) {
		var zero V
		return zero, false
	}
	k := mapKey(unit, unitMember, attrMember)
	return m.values[k], m.set[k]
}

// Get resolves a composition, falling back to the unit member count folded
// to 1 or 5 and then to the (any, 1, 1) entry.
func (m *DetailMap[V]) Get(unit enums.Unit, unitMember, attrMember int) (V, error) {
	attrMember = normalizeAttrMember(attrMember)
	if v, ok := m.lookup(unit, unitMember, attrMember); ok {
		return v, nil
	}
	folded := 1
	if unitMember == 5 {
		folded = 5
	}
	if v, ok := m.lookup(unit, folded, attrMember); ok {
		return v, nil
	}
	if v, ok := m.lookup(enums.UnitAny, 1, 1); ok {
		return v, nil
	}
	var zero V
	return zero, errors.Wrapf(ErrCaseNotFound, "unit=%s unitMember=%d attrMember=%d", unit, unitMember, attrMember)
}

// Has reports whether the fallback entry exists, i.e. the map is usable.
func (m *DetailMap[V]) Has() bool {
	return m.set[mapKey(enums.UnitAny, 1, 1)]
}

// IsCertainlyLessThan is true only when every value of m is below every
// value of other.
func (m *DetailMap[V]) IsCertainlyLessThan(other *DetailMap[V]) bool {
	return m.Max < other.Min
}
