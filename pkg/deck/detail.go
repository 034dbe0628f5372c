// Package deck evaluates one ordered lineup of card details: power,
// realized skills, event bonuses, live score and the objective value.
package deck

import "deck-recommender/pkg/card"

// Power is the power breakdown of a whole deck. HonorBonus only feeds Total.
type Power struct {
	Base           int `json:"base"`
	AreaItemBonus  int `json:"areaItemBonus"`
	CharacterBonus int `json:"characterBonus"`
	HonorBonus     int `json:"honorBonus"`
	FixtureBonus   int `json:"fixtureBonus"`
	GateBonus      int `json:"gateBonus"`
	Total          int `json:"total"`
}

func (p *Power) add(c card.PowerDetail) {
	p.Base += c.Base
	p.AreaItemBonus += c.AreaItemBonus
	p.CharacterBonus += c.CharacterBonus
	p.FixtureBonus += c.FixtureBonus
	p.GateBonus += c.GateBonus
	p.Total += c.Total
}

// CardDetail is one slot of an evaluated deck.
type CardDetail struct {
	Index        int              `json:"-"`
	CardID       int              `json:"cardId"`
	CharacterID  int              `json:"characterId"`
	Level        int              `json:"level"`
	SkillLevel   int              `json:"skillLevel"`
	MasterRank   int              `json:"masterRank"`
	Power        card.PowerDetail `json:"power"`
	EventBonus   *float64         `json:"eventBonus,omitempty"`
	ScoreUp      float64          `json:"scoreUp"`
	LifeRecovery float64          `json:"lifeRecovery"`
	PreTraining  bool             `json:"preTraining"`
}

// Detail is an evaluated deck. Cards[0] is the leader.
type Detail struct {
	Cards            []CardDetail `json:"cards"`
	Power            Power        `json:"power"`
	EventBonus       *float64     `json:"eventBonus,omitempty"`
	SupportDeckBonus *float64     `json:"supportDeckBonus,omitempty"`
	MultiLiveScoreUp float64      `json:"multiLiveScoreUp"`
	LiveScore        int          `json:"liveScore"`
	Life             int          `json:"life"`
	Score            int          `json:"score"`
	TargetValue      float64      `json:"targetValue"`
}

// LeaderID is the card id in slot 0, or 0 for an empty deck.
func (d *Detail) LeaderID() int {
	if len(d.Cards) == 0 {
		return 0
	}
	return d.Cards[0].CardID
}

// Indices returns the arena indices of the deck in slot order.
func (d *Detail) Indices() []int {
	out := make([]int, len(d.Cards))
	for i := range d.Cards {
		out[i] = d.Cards[i].Index
	}
	return out
}

// TotalBonus is the event bonus plus the support deck bonus, treating
// undefined parts as zero.
func (d *Detail) TotalBonus() float64 {
	total := 0.0
	if d.EventBonus != nil {
		total += *d.EventBonus
	}
	if d.SupportDeckBonus != nil {
		total += *d.SupportDeckBonus
	}
	return total
}
