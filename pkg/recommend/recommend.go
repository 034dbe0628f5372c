// Package recommend searches a player's cards for the best decks under one
// objective, with exact, annealing, genetic and bonus-target strategies.
package recommend

import (
	"context"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"deck-recommender/internal/utils"
	"deck-recommender/pkg/card"
	"deck-recommender/pkg/deck"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// ── Entry point ──

// Recommend returns up to opts.Limit decks, best first. A timeout is not an
// error: the best decks found so far are returned.
func Recommend(ctx context.Context, t *masterdata.Tables, user *masterdata.User, opts Options, live LiveContext) (ret []*deck.Detail, err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = errs.Kind(err)
		}
		RecommendDuration.WithLabelValues(opts.Algorithm.String()).Observe(time.Since(start).Seconds())
		RecommendTotal.WithLabelValues(opts.Algorithm.String(), outcome).Inc()
	}()

	ev, err := t.Event(live.EventID)
	if err != nil {
		return nil, err
	}
	if err := Validate(&opts, &live, ev, user); err != nil {
		return nil, err
	}

	builder, err := card.NewBuilder(t, user, card.EventContext{
		EventID:            live.EventID,
		SpecialCharacterID: live.SpecialCharacterID,
	}, opts.KeepTrainingState)
	if err != nil {
		return nil, err
	}
	arena, err := builder.BuildAll(opts.cardConfigs())
	if err != nil {
		return nil, err
	}
	calc, err := deck.NewCalculator(t, arena, t.HonorBonus(user), deck.Options{
		Context: deck.Context{
			EventID:            live.EventID,
			SpecialCharacterID: live.SpecialCharacterID,
			SupportDeckCount:   live.SupportDeckCount,
			LiveType:           live.LiveType,
			Music:              live.Music,
			OtherScore:         live.OtherScore,
		},
		Objective: opts.Objective,
		Strategy:  opts.SkillReference,
	})
	if err != nil {
		return nil, err
	}

	r := &run{
		ctx:   ctx,
		opts:  opts,
		live:  live,
		ev:    ev,
		calc:  calc,
		arena: arena,
	}
	if opts.TimeoutMs > 0 {
		r.deadline = start.Add(time.Duration(opts.TimeoutMs) * time.Millisecond)
	}
	if err := r.preparePool(); err != nil {
		return nil, err
	}
	utils.Phase("init").WithFields(logrus.Fields{
		"cards":     len(arena),
		"pool":      len(r.pool),
		"member":    r.member,
		"objective": opts.Objective.String(),
		"algorithm": opts.Algorithm.String(),
	}).Debug("arena built")

	if opts.Objective == enums.ObjectiveBonus {
		return r.bonus()
	}
	return r.rounds()
}

// run carries one Recommend call between its phases.
type run struct {
	ctx      context.Context
	opts     Options
	live     LiveContext
	ev       *masterdata.Event
	calc     *deck.Calculator
	arena    []card.Detail
	deadline time.Time

	pool       []int
	fixedCards []int
	member     int
}

// FilterEventUnit keeps cards that belong to unit, plus virtual singers
// without a support unit.
func FilterEventUnit(arena []card.Detail, pool []int, unit enums.Unit) []int {
	out := make([]int, 0, len(pool))
	for _, i := range pool {
		if arena[i].HasUnit(unit) || arena[i].IsPiaproOnly() {
			out = append(out, i)
		}
	}
	return out
}

func (r *run) preparePool() error {
	r.pool = make([]int, 0, len(r.arena))
	for i := range r.arena {
		if r.live.LiveType == enums.LiveChallenge && r.arena[i].CharacterID != r.live.ChallengeCharacterID {
			continue
		}
		r.pool = append(r.pool, i)
	}
	if r.opts.FilterEventUnit && r.ev != nil && r.ev.Unit != enums.UnitAny && r.ev.Unit != enums.UnitNone {
		r.pool = FilterEventUnit(r.arena, r.pool, r.ev.Unit)
	}

	for _, id := range r.opts.FixedCards {
		k := slices.IndexFunc(r.pool, func(i int) bool { return r.arena[i].CardID == id })
		if k < 0 {
			return errs.Config("fixed card %d is disabled or filtered out", id)
		}
		r.fixedCards = append(r.fixedCards, r.pool[k])
	}

	r.member = r.opts.Member
	if r.live.LiveType == enums.LiveChallenge {
		r.member = min(r.member, len(r.pool))
	}
	if r.member == 0 {
		return errors.Wrapf(errs.ErrCannotRecommend, "cannot recommend any deck in %d cards", len(r.pool))
	}
	return nil
}

func (r *run) search(cands []int, limit int) *searchInfo {
	s := newSearchInfo(r.ctx, r.calc, cands, r.member, limit, r.live.LiveType == enums.LiveChallenge, r.deadline)
	s.setFixed(r.fixedCards, r.opts.FixedCharacters)
	return s
}

func (r *run) algorithm(s *searchInfo) error {
	switch r.opts.Algorithm {
	case enums.AlgorithmSA:
		return s.runSA(r.opts.SA)
	case enums.AlgorithmGA:
		return s.runGA(r.opts.GA)
	}
	return s.runExact()
}

// rounds runs the algorithm over growing priority pools until enough
// decks are found or the pool stops growing.
func (r *run) rounds() ([]*deck.Detail, error) {
	pr := &priorityRounds{
		arena:  r.arena,
		pool:   r.pool,
		tiers:  priorityTable(r.live.LiveType, r.calc.EventType()),
		always: r.fixedCards,
		member: r.member,
		repeat: r.live.LiveType == enums.LiveChallenge,
	}

	var last []*deck.Detail
	size := -1
	for round := 1; ; round++ {
		cands := pr.next()
		if len(cands) == size {
			PriorityRounds.Observe(float64(round - 1))
			if len(last) == 0 {
				return nil, errors.Wrapf(errs.ErrCannotRecommend, "cannot recommend any deck in %d cards", len(cands))
			}
			return last, nil
		}
		size = len(cands)

		s := r.search(cands, r.opts.Limit)
		if err := r.algorithm(s); err != nil {
			return nil, err
		}
		last = s.top.Sorted()
		utils.Phase("round").WithFields(logrus.Fields{
			"round":   round,
			"pool":    size,
			"evals":   s.evals,
			"results": len(last),
		}).Debug("round done")

		if len(last) >= r.opts.Limit || s.expired() {
			PriorityRounds.Observe(float64(round))
			return last, nil
		}
	}
}

// bonus runs the bonus target search over the whole pool. Up to Limit decks
// are kept per target.
func (r *run) bonus() ([]*deck.Detail, error) {
	targets := slices.Clone(r.opts.BonusTargets)
	slices.Sort(targets)
	targets = slices.Compact(targets)

	s := r.search(slices.Clone(r.pool), r.opts.Limit*len(targets))
	if err := s.runBonus(targets, r.opts.Limit); err != nil {
		return nil, err
	}
	out := s.top.Sorted()
	utils.Phase("bonus").WithFields(logrus.Fields{
		"targets": len(targets),
		"evals":   s.evals,
		"results": len(out),
	}).Debug("bonus search done")
	return out, nil
}
