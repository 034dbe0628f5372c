package recommend

import (
	"deck-recommender/pkg/card"
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/masterdata"
)

// SAOptions tunes simulated annealing.
type SAOptions struct {
	// RunCount is the number of independent runs sharing one random stream.
	RunCount int `json:"runCount" mapstructure:"run_count" validate:"gte=1"`
	// Seed fixes the random stream; negative seeds use the clock.
	Seed int64 `json:"seed" mapstructure:"seed"`
	// MaxIter caps the iterations of one run.
	MaxIter int `json:"maxIter" mapstructure:"max_iter" validate:"gte=1"`
	// MaxIterNoImprove stops a run after this many iterations without a new best.
	MaxIterNoImprove int `json:"maxIterNoImprove" mapstructure:"max_iter_no_improve" validate:"gte=1"`
	// TimeLimitMs caps the wall time of one run.
	TimeLimitMs int     `json:"timeLimitMs" mapstructure:"time_limit_ms" validate:"gte=1"`
	StartTemp   float64 `json:"startTemp" mapstructure:"start_temp" validate:"gt=0"`
	CoolingRate float64 `json:"coolingRate" mapstructure:"cooling_rate" validate:"gte=0,lte=1"`
}

// GAOptions tunes the genetic algorithm.
type GAOptions struct {
	Seed             int64 `json:"seed" mapstructure:"seed"`
	MaxIter          int   `json:"maxIter" mapstructure:"max_iter" validate:"gte=1"`
	MaxIterNoImprove int   `json:"maxIterNoImprove" mapstructure:"max_iter_no_improve" validate:"gte=1"`
	PopSize          int   `json:"popSize" mapstructure:"pop_size" validate:"gte=1"`
	// ParentSize is how many of the fittest individuals may become parents.
	ParentSize int `json:"parentSize" mapstructure:"parent_size" validate:"gte=0,ltefield=PopSize"`
	// EliteSize individuals survive each generation unchanged.
	EliteSize     int     `json:"eliteSize" mapstructure:"elite_size" validate:"gte=0,ltefield=PopSize"`
	CrossoverRate float64 `json:"crossoverRate" mapstructure:"crossover_rate" validate:"gte=0,lte=1"`
	// BaseMutationRate is the per-slot mutation chance of an improving population.
	BaseMutationRate float64 `json:"baseMutationRate" mapstructure:"base_mutation_rate" validate:"gte=0,lte=1"`
	// NoImproveIterToMutationRate raises the mutation chance per stagnant generation.
	NoImproveIterToMutationRate float64 `json:"noImproveIterToMutationRate" mapstructure:"no_improve_iter_to_mutation_rate" validate:"gte=0,lte=1"`
}

// Options is one recommendation request.
type Options struct {
	Member    int             `json:"member" mapstructure:"member" validate:"gte=2,lte=5"`
	Limit     int             `json:"limit" mapstructure:"limit" validate:"gte=1"`
	TimeoutMs int             `json:"timeoutMs" mapstructure:"timeout_ms" validate:"gte=0"`
	Objective enums.Objective `json:"objective" mapstructure:"objective" validate:"gte=0,lte=3"`
	Algorithm enums.Algorithm `json:"algorithm" mapstructure:"algorithm" validate:"gte=0,lte=2"`

	RarityConfig map[enums.Rarity]card.Config `json:"rarityConfig" mapstructure:"rarity_config"`
	CardConfig   map[int]card.Config          `json:"cardConfig" mapstructure:"card_config"`

	FixedCards      []int `json:"fixedCards" mapstructure:"fixed_cards"`
	FixedCharacters []int `json:"fixedCharacters" mapstructure:"fixed_characters"`

	// FilterEventUnit keeps only cards of the event unit and pure virtual singers.
	FilterEventUnit   bool                    `json:"filterEventUnit" mapstructure:"filter_event_unit"`
	SkillReference    enums.ReferenceStrategy `json:"skillReference" mapstructure:"skill_reference" validate:"gte=0,lte=2"`
	KeepTrainingState bool                    `json:"keepTrainingState" mapstructure:"keep_training_state"`

	// BonusTargets are the exact event bonuses searched by the bonus objective.
	BonusTargets []int `json:"bonusTargets" mapstructure:"bonus_targets"`

	SA SAOptions `json:"sa" mapstructure:"sa" validate:"-"`
	GA GAOptions `json:"ga" mapstructure:"ga" validate:"-"`
}

// LiveContext is the live and event a deck is recommended for.
type LiveContext struct {
	LiveType           enums.LiveType `json:"liveType"`
	EventID            int            `json:"eventId"`
	SpecialCharacterID int            `json:"specialCharacterId"`
	// ChallengeCharacterID is the character of a challenge live.
	ChallengeCharacterID int                   `json:"challengeCharacterId"`
	SupportDeckCount     int                   `json:"supportDeckCount"`
	Music                *masterdata.MusicMeta `json:"-"`
	OtherScore           int                   `json:"otherScore"`
}

// DefaultSAOptions are the annealing defaults.
func DefaultSAOptions() SAOptions {
	return SAOptions{
		RunCount:         20,
		Seed:             -1,
		MaxIter:          1000000,
		MaxIterNoImprove: 10000,
		TimeLimitMs:      200,
		StartTemp:        1000,
		CoolingRate:      0.99,
	}
}

// DefaultGAOptions are the genetic algorithm defaults.
func DefaultGAOptions() GAOptions {
	return GAOptions{
		Seed:                        -1,
		MaxIter:                     1000000,
		MaxIterNoImprove:            5,
		PopSize:                     10000,
		ParentSize:                  1000,
		EliteSize:                   0,
		CrossoverRate:               1.0,
		BaseMutationRate:            0.1,
		NoImproveIterToMutationRate: 0.02,
	}
}

// DefaultOptions returns a five-card, top-ten exact score search.
func DefaultOptions() Options {
	return Options{
		Member:         5,
		Limit:          10,
		Objective:      enums.ObjectiveScore,
		Algorithm:      enums.AlgorithmExact,
		SkillReference: enums.ReferenceMax,
		SA:             DefaultSAOptions(),
		GA:             DefaultGAOptions(),
	}
}

func (o *Options) cardConfigs() card.Configs {
	return card.Configs{ByRarity: o.RarityConfig, ByCard: o.CardConfig}
}
