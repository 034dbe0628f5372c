package recommend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// MaxCharacterID is the highest playable character id.
const MaxCharacterID = 26

var validate = validator.New()

var fieldMessages = map[string]string{
	"Member":         "invalid member count",
	"Limit":          "invalid limit",
	"TimeoutMs":      "invalid timeout",
	"Objective":      "invalid objective",
	"Algorithm":      "invalid algorithm",
	"SkillReference": "invalid skill reference strategy",
}

// structErr turns validator failures into one config error naming every
// offending field.
func structErr(prefix string, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errors.Wrap(errs.ErrInvalidConfig, err.Error())
	}
	msgs := make([]string, 0, len(ve))
	for _, fe := range ve {
		msg, ok := fieldMessages[fe.Field()]
		if !ok || prefix != "" {
			msg = fmt.Sprintf("invalid %s%s (%s %s)", prefix, fe.Field(), fe.Tag(), fe.Param())
		}
		msgs = append(msgs, fmt.Sprintf("%s: %v", msg, fe.Value()))
	}
	return errs.Config("%s", strings.Join(msgs, "; "))
}

func hasDuplicate(ids []int) (int, bool) {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return id, true
		}
		seen[id] = true
	}
	return 0, false
}

// Validate checks a request before any card is built. ev is nil without an
// event.
func Validate(o *Options, live *LiveContext, ev *masterdata.Event, user *masterdata.User) error {
	if err := validate.Struct(o); err != nil {
		return structErr("", err)
	}
	switch o.Algorithm {
	case enums.AlgorithmSA:
		if err := validate.Struct(&o.SA); err != nil {
			return structErr("sa option ", err)
		}
	case enums.AlgorithmGA:
		if err := validate.Struct(&o.GA); err != nil {
			return structErr("ga option ", err)
		}
	}

	if n := len(o.FixedCards) + len(o.FixedCharacters); n > o.Member {
		return errs.Config("%d fixed cards and characters exceed member count %d", n, o.Member)
	}
	if id, dup := hasDuplicate(o.FixedCards); dup {
		return errs.Config("duplicate fixed card: %d", id)
	}
	if id, dup := hasDuplicate(o.FixedCharacters); dup {
		return errs.Config("duplicate fixed character: %d", id)
	}
	for _, id := range o.FixedCards {
		if !slices.ContainsFunc(user.Cards, func(uc masterdata.UserCard) bool { return uc.CardID == id }) {
			return errs.Config("fixed card %d is not owned", id)
		}
	}

	if o.Objective == enums.ObjectiveBonus {
		if o.Algorithm != enums.AlgorithmExact {
			return errs.Config("bonus objective only supports the exact algorithm, got %s", o.Algorithm)
		}
		if len(o.BonusTargets) == 0 {
			return errs.Config("bonus objective needs at least one bonus target")
		}
		if ev != nil && ev.Type == enums.EventWorldBloom {
			return errs.Config("bonus objective is not supported in world bloom events")
		}
	}
	if o.Objective == enums.ObjectiveScore && live.Music == nil {
		return errs.Config("score objective needs a music meta")
	}
	if live.LiveType == enums.LiveChallenge {
		if live.ChallengeCharacterID < 1 || live.ChallengeCharacterID > MaxCharacterID {
			return errs.Config("invalid challenge character: %d", live.ChallengeCharacterID)
		}
	}
	return nil
}
