package masterdata

import (
	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

// Tables wraps Master with O(1) lookups indexed by id. Build it once with
// Index and share it read-only between recommendation calls.
type Tables struct {
	*Master

	CardByID          []*Card
	SkillByID         []*Skill
	EventByID         []*Event
	CharacterByID     []*GameCharacter
	CharacterUnitByID []*GameCharacterUnit
	HonorByID         []*Honor
	RarityByType      [enums.MaxRarity]*CardRarity
	SupportByRarity   [enums.MaxRarity]*WorldBloomSupportDeckBonus
	CanvasByRarity    [enums.MaxRarity]*CanvasBonus

	episodesByCard map[int][]*CardEpisode
}

func indexByID[T any](items []T, id func(*T) int) []*T {
	maxID := 0
	for i := range items {
		if v := id(&items[i]); v > maxID {
			maxID = v
		}
	}
	if len(items) == 0 {
		return nil
	}
	out := make([]*T, maxID+1)
	for i := range items {
		if v := id(&items[i]); v >= 0 {
			out[v] = &items[i]
		}
	}
	return out
}

func lookup[T any](byID []*T, id int) *T {
	if id < 0 || id >= len(byID) {
		return nil
	}
	return byID[id]
}

// Index builds the id lookup arrays.
func (m *Master) Index() *Tables {
	t := &Tables{
		Master:            m,
		CardByID:          indexByID(m.Cards, func(c *Card) int { return c.ID }),
		SkillByID:         indexByID(m.Skills, func(s *Skill) int { return s.ID }),
		EventByID:         indexByID(m.Events, func(e *Event) int { return e.ID }),
		CharacterByID:     indexByID(m.GameCharacters, func(c *GameCharacter) int { return c.ID }),
		CharacterUnitByID: indexByID(m.GameCharacterUnits, func(u *GameCharacterUnit) int { return u.ID }),
		HonorByID:         indexByID(m.Honors, func(h *Honor) int { return h.ID }),
		episodesByCard:    make(map[int][]*CardEpisode),
	}
	for i := range m.CardRarities {
		r := &m.CardRarities[i]
		t.RarityByType[r.Rarity] = r
	}
	for i := range m.SupportDeckBonuses {
		b := &m.SupportDeckBonuses[i]
		t.SupportByRarity[b.Rarity] = b
	}
	for i := range m.CanvasBonuses {
		b := &m.CanvasBonuses[i]
		t.CanvasByRarity[b.Rarity] = b
	}
	for i := range m.CardEpisodes {
		e := &m.CardEpisodes[i]
		t.episodesByCard[e.CardID] = append(t.episodesByCard[e.CardID], e)
	}
	return t
}

func (t *Tables) Card(id int) (*Card, error) {
	if c := lookup(t.CardByID, id); c != nil {
		return c, nil
	}
	return nil, errs.Data("card %d not found", id)
}

func (t *Tables) Skill(id int) (*Skill, error) {
	if s := lookup(t.SkillByID, id); s != nil {
		return s, nil
	}
	return nil, errs.Data("skill %d not found", id)
}

func (t *Tables) Rarity(r enums.Rarity) (*CardRarity, error) {
	if r > 0 && int(r) < enums.MaxRarity && t.RarityByType[r] != nil {
		return t.RarityByType[r], nil
	}
	return nil, errs.Data("card rarity %s not found", r)
}

func (t *Tables) Character(id int) (*GameCharacter, error) {
	if c := lookup(t.CharacterByID, id); c != nil {
		return c, nil
	}
	return nil, errs.Data("game character %d not found", id)
}

func (t *Tables) CharacterUnit(id int) (*GameCharacterUnit, error) {
	if u := lookup(t.CharacterUnitByID, id); u != nil {
		return u, nil
	}
	return nil, errs.Data("game character unit %d not found", id)
}

// Event returns nil for id 0, which stands for "no event".
func (t *Tables) Event(id int) (*Event, error) {
	if id == 0 {
		return nil, nil
	}
	if e := lookup(t.EventByID, id); e != nil {
		return e, nil
	}
	return nil, errs.Data("event %d not found", id)
}

func (t *Tables) Episodes(cardID int) []*CardEpisode {
	return t.episodesByCard[cardID]
}

// MusicMeta finds the chart meta for a music id and difficulty.
func (t *Tables) MusicMeta(musicID int, difficulty string) (*MusicMeta, error) {
	for i := range t.MusicMetas {
		m := &t.MusicMetas[i]
		if m.MusicID == musicID && m.Difficulty == difficulty {
			return m, nil
		}
	}
	return nil, errs.Data("music meta %d/%s not found", musicID, difficulty)
}

// HonorBonus sums the power bonus of every honor the user holds.
func (t *Tables) HonorBonus(u *User) int {
	total := 0
	for _, uh := range u.Honors {
		h := lookup(t.HonorByID, uh.HonorID)
		if h == nil {
			continue
		}
		for _, lv := range h.Levels {
			if lv.Level == uh.Level {
				total += lv.Bonus
				break
			}
		}
	}
	return total
}

// CharacterRank returns the player's rank for a character, 0 if unknown.
func (u *User) CharacterRank(characterID int) int {
	for _, c := range u.Characters {
		if c.CharacterID == characterID {
			return c.Rank
		}
	}
	return 0
}
