package card

import (
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/masterdata"
)

// Config overrides the owned state of a card before it is evaluated.
type Config struct {
	// Disable drops the card from the candidate pool.
	Disable bool `json:"disable" mapstructure:"disable"`
	// ForceMaxLevel treats the card as max level (trained when possible).
	ForceMaxLevel bool `json:"rank_max" mapstructure:"rank_max"`
	// ForceEpisodesRead treats both side stories as read.
	ForceEpisodesRead bool `json:"episode_read" mapstructure:"episode_read"`
	// ForceMaxAscension treats the card as master rank 5.
	ForceMaxAscension bool `json:"master_max" mapstructure:"master_max"`
	// ForceMaxSkillLevel treats the skill as max level.
	ForceMaxSkillLevel bool `json:"skill_max" mapstructure:"skill_max"`
	// ForceDecorationBonus grants the canvas bonus even if the card has none.
	ForceDecorationBonus bool `json:"canvas_bonus" mapstructure:"canvas_bonus"`
}

// Configs holds per-rarity overrides and per-card overrides; a per-card entry
// replaces the rarity entry entirely.
type Configs struct {
	ByRarity map[enums.Rarity]Config
	ByCard   map[int]Config
}

// Resolve returns the effective config for one card.
func (c Configs) Resolve(cardID int, rarity enums.Rarity) Config {
	if cfg, ok := c.ByCard[cardID]; ok {
		return cfg
	}
	return c.ByRarity[rarity]
}

// MaxAscension is the highest master rank a card can reach.
const MaxAscension = 5

// applyConfig returns the virtual owned card seen by the calculators.
func applyConfig(uc masterdata.UserCard, c *masterdata.Card, r *masterdata.CardRarity, cfg Config, episodes []*masterdata.CardEpisode) masterdata.UserCard {
	if cfg.ForceMaxLevel {
		if r.TrainingMaxLevel > 0 {
			uc.Level = r.TrainingMaxLevel
			uc.SpecialTrained = true
		} else {
			uc.Level = r.MaxLevel
		}
	}
	if cfg.ForceEpisodesRead {
		ids := make([]int, 0, len(episodes))
		for _, e := range episodes {
			ids = append(ids, e.ID)
		}
		uc.ReadEpisodeIDs = ids
	}
	if cfg.ForceMaxAscension {
		uc.MasterRank = MaxAscension
	}
	if cfg.ForceMaxSkillLevel {
		uc.SkillLevel = r.MaxSkillLevel
	}
	return uc
}
