// Package request is the wire form of a recommendation call shared by the
// CLI batch file, the HTTP API and the Lambda handler. Enums travel by name.
package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"deck-recommender/pkg/card"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
	"deck-recommender/pkg/recommend"
	"deck-recommender/pkg/storage"
)

var validate = validator.New()

// Request is one recommendation call. Zero values fall back to
// recommend.DefaultOptions.
type Request struct {
	// Name labels the call in batch output and history.
	Name string `json:"name,omitempty" mapstructure:"name"`

	Member    int    `json:"member,omitempty" mapstructure:"member"`
	Limit     int    `json:"limit,omitempty" mapstructure:"limit"`
	TimeoutMs int    `json:"timeoutMs,omitempty" mapstructure:"timeout_ms"`
	Objective string `json:"objective,omitempty" mapstructure:"objective" validate:"omitempty,oneof=score power skill bonus"`
	Algorithm string `json:"algorithm,omitempty" mapstructure:"algorithm" validate:"omitempty,oneof=dfs exact sa ga"`

	LiveType             string `json:"liveType,omitempty" mapstructure:"live_type" validate:"omitempty,oneof=solo multi challenge cheerful auto"`
	EventID              int    `json:"eventId,omitempty" mapstructure:"event_id"`
	SpecialCharacterID   int    `json:"specialCharacterId,omitempty" mapstructure:"special_character_id"`
	ChallengeCharacterID int    `json:"challengeCharacterId,omitempty" mapstructure:"challenge_character_id"`
	SupportDeckCount     int    `json:"supportDeckCount,omitempty" mapstructure:"support_deck_count"`
	OtherScore           int    `json:"otherScore,omitempty" mapstructure:"other_score"`
	MusicID              int    `json:"musicId,omitempty" mapstructure:"music_id"`
	Difficulty           string `json:"difficulty,omitempty" mapstructure:"difficulty"`

	RarityConfig map[string]card.Config `json:"rarityConfig,omitempty" mapstructure:"rarity_config"`
	CardConfig   map[int]card.Config    `json:"cardConfig,omitempty" mapstructure:"card_config"`

	FixedCards        []int  `json:"fixedCards,omitempty" mapstructure:"fixed_cards"`
	FixedCharacters   []int  `json:"fixedCharacters,omitempty" mapstructure:"fixed_characters"`
	FilterEventUnit   bool   `json:"filterEventUnit,omitempty" mapstructure:"filter_event_unit"`
	SkillReference    string `json:"skillReference,omitempty" mapstructure:"skill_reference" validate:"omitempty,oneof=max min average"`
	KeepTrainingState bool   `json:"keepTrainingState,omitempty" mapstructure:"keep_training_state"`
	BonusTargets      []int  `json:"bonusTargets,omitempty" mapstructure:"bonus_targets"`

	SA *recommend.SAOptions `json:"sa,omitempty" mapstructure:"sa" validate:"-"`
	GA *recommend.GAOptions `json:"ga,omitempty" mapstructure:"ga" validate:"-"`
}

// Resolve turns r into search options and a live context against t. A music
// id of 0 leaves the live without music meta.
func (r *Request) Resolve(t *masterdata.Tables) (recommend.Options, recommend.LiveContext, error) {
	o := recommend.DefaultOptions()
	var live recommend.LiveContext

	if err := validate.Struct(r); err != nil {
		return o, live, errs.Config("%s", strings.ReplaceAll(err.Error(), "\n", "; "))
	}

	if r.Member != 0 {
		o.Member = r.Member
	}
	if r.Limit != 0 {
		o.Limit = r.Limit
	}
	o.TimeoutMs = r.TimeoutMs
	if r.Objective != "" {
		o.Objective, _ = enums.ParseObjective(r.Objective)
	}
	if r.Algorithm != "" {
		o.Algorithm, _ = enums.ParseAlgorithm(r.Algorithm)
	}
	if r.SkillReference != "" {
		o.SkillReference, _ = enums.ParseReferenceStrategy(r.SkillReference)
	}
	if len(r.RarityConfig) > 0 {
		o.RarityConfig = make(map[enums.Rarity]card.Config, len(r.RarityConfig))
		for name, cfg := range r.RarityConfig {
			rarity, ok := enums.ParseRarity(name)
			if !ok {
				return o, live, errs.Config("unknown rarity %q", name)
			}
			o.RarityConfig[rarity] = cfg
		}
	}
	o.CardConfig = r.CardConfig
	o.FixedCards = r.FixedCards
	o.FixedCharacters = r.FixedCharacters
	o.FilterEventUnit = r.FilterEventUnit
	o.KeepTrainingState = r.KeepTrainingState
	o.BonusTargets = r.BonusTargets
	if r.SA != nil {
		o.SA = *r.SA
	}
	if r.GA != nil {
		o.GA = *r.GA
	}

	if r.LiveType != "" {
		live.LiveType, _ = enums.ParseLiveType(r.LiveType)
	}
	live.EventID = r.EventID
	live.SpecialCharacterID = r.SpecialCharacterID
	live.ChallengeCharacterID = r.ChallengeCharacterID
	live.SupportDeckCount = r.SupportDeckCount
	live.OtherScore = r.OtherScore
	if r.MusicID != 0 {
		dif := r.Difficulty
		if dif == "" {
			dif = "master"
		}
		m, err := t.MusicMeta(r.MusicID, dif)
		if err != nil {
			return o, live, err
		}
		live.Music = m
	}
	return o, live, nil
}

// Label is the batch or history name of the i-th request.
func (r *Request) Label(i int) string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("job-%02d", i+1)
}

// Execute resolves and runs r, returning an unsaved history row. The row is
// filled even when the search fails so callers can log its timing.
func Execute(ctx context.Context, t *masterdata.Tables, user *masterdata.User, r *Request) (*storage.Run, error) {
	start := time.Now()
	run := &storage.Run{Name: r.Name}
	o, live, err := r.Resolve(t)
	if err != nil {
		return run, err
	}
	run.Algorithm = o.Algorithm.String()
	run.Objective = o.Objective.String()
	run.LiveType = live.LiveType.String()
	run.EventID = live.EventID
	run.Member = o.Member

	decks, err := recommend.Recommend(ctx, t, user, o, live)
	run.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		return run, err
	}
	run.Decks = decks
	return run, nil
}
