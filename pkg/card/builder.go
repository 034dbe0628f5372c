// Package card turns owned cards into the per-call Detail snapshots used by
// deck evaluation and search.
package card

import (
	"slices"
	"sort"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
	"deck-recommender/pkg/masterdata"
)

// Builder computes card details for one player and one event context.
// It only reads the tables and may be reused for any number of cards.
type Builder struct {
	tables            *masterdata.Tables
	user              *masterdata.User
	ctx               EventContext
	keepTrainingState bool

	areaItems        []*masterdata.AreaItemLevel
	gateRate         [enums.MaxUnit]float64
	fixture          map[int]float64
	canvas           map[int]bool
	eventDeckBonuses []*masterdata.EventDeckBonus
	specialUnit      enums.Unit
}

// NewBuilder resolves the player's area items, gates, fixtures and the
// event context once so that per-card work stays small.
func NewBuilder(t *masterdata.Tables, u *masterdata.User, ctx EventContext, keepTrainingState bool) (*Builder, error) {
	b := &Builder{
		tables:            t,
		user:              u,
		ctx:               ctx,
		keepTrainingState: keepTrainingState,
		fixture:           make(map[int]float64),
		canvas:            make(map[int]bool),
		specialUnit:       enums.UnitNone,
	}

	for _, owned := range u.AreaItems {
		for i := range t.AreaItemLevels {
			lv := &t.AreaItemLevels[i]
			if lv.AreaItemID == owned.AreaItemID && lv.Level == owned.Level {
				b.areaItems = append(b.areaItems, lv)
			}
		}
	}
	for _, g := range u.Gates {
		for i := range t.GateLevels {
			lv := &t.GateLevels[i]
			if lv.GateID == g.GateID && lv.Level == g.Level && int(lv.Unit) < enums.MaxUnit {
				b.gateRate[lv.Unit] = max(b.gateRate[lv.Unit], lv.PowerBonusRate)
			}
		}
	}
	for _, f := range u.FixtureBonuses {
		b.fixture[f.CharacterID] = f.BonusRate
	}
	for _, id := range u.CanvasCardIDs {
		b.canvas[id] = true
	}

	if ctx.EventID != 0 {
		if _, err := t.Event(ctx.EventID); err != nil {
			return nil, err
		}
		for i := range t.EventDeckBonuses {
			if t.EventDeckBonuses[i].EventID == ctx.EventID {
				b.eventDeckBonuses = append(b.eventDeckBonuses, &t.EventDeckBonuses[i])
			}
		}
		if ctx.SpecialCharacterID > 0 {
			found := false
			for _, cu := range t.GameCharacterUnits {
				if cu.CharacterID == ctx.SpecialCharacterID {
					b.specialUnit = cu.Unit
					found = true
					break
				}
			}
			if !found {
				return nil, errs.Data("unit of special character %d not found", ctx.SpecialCharacterID)
			}
		}
	}
	return b, nil
}

// Units returns the units a card counts for: its support unit, if any, and
// its character's own unit.
func (b *Builder) Units(c *masterdata.Card) ([]enums.Unit, error) {
	ch, err := b.tables.Character(c.CharacterID)
	if err != nil {
		return nil, err
	}
	units := make([]enums.Unit, 0, 2)
	if c.SupportUnit != enums.UnitNone && c.SupportUnit != enums.UnitAny {
		units = append(units, c.SupportUnit)
	}
	if !slices.Contains(units, ch.Unit) {
		units = append(units, ch.Unit)
	}
	return units, nil
}

// Build returns the detail of one owned card, or nil when its effective
// config disables it.
func (b *Builder) Build(owned *masterdata.UserCard, cfgs Configs) (*Detail, error) {
	c, err := b.tables.Card(owned.CardID)
	if err != nil {
		return nil, err
	}
	cfg := cfgs.Resolve(c.ID, c.Rarity)
	if cfg.Disable {
		return nil, nil
	}
	rarity, err := b.tables.Rarity(c.Rarity)
	if err != nil {
		return nil, err
	}
	episodes := b.tables.Episodes(c.ID)
	uc := applyConfig(*owned, c, rarity, cfg, episodes)

	units, err := b.Units(c)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		CardID:         c.ID,
		Level:          uc.Level,
		SkillLevel:     uc.SkillLevel,
		MasterRank:     uc.MasterRank,
		Rarity:         c.Rarity,
		CharacterID:    c.CharacterID,
		Units:          units,
		Attr:           c.Attr,
		SpecialTrained: uc.SpecialTrained,
		DefaultImage:   uc.DefaultImage,
		HasCanvasBonus: cfg.ForceDecorationBonus || b.canvas[c.ID],
	}
	for _, e := range episodes {
		if e.Part >= 0 && e.Part < len(d.EpisodesRead) && slices.Contains(uc.ReadEpisodeIDs, e.ID) {
			d.EpisodesRead[e.Part] = true
		}
	}

	if err := b.buildSkillMap(d, c, &uc); err != nil {
		return nil, err
	}
	if err := b.buildPowerMap(d, c, &uc); err != nil {
		return nil, err
	}
	if !d.Power.Has() || !d.Skill.Has() {
		return nil, errs.Data("card %d has no fallback composition", c.ID)
	}
	if d.EventBonus, err = b.eventBonus(c, &uc); err != nil {
		return nil, err
	}
	if d.SupportDeckBonus, err = b.supportDeckBonus(c, &uc, units); err != nil {
		return nil, err
	}
	return d, nil
}

// BuildAll builds every owned card into one arena. With a special support
// character the arena is ordered by support deck bonus, highest first, which
// the support deck ranking relies on.
func (b *Builder) BuildAll(cfgs Configs) ([]Detail, error) {
	out := make([]Detail, 0, len(b.user.Cards))
	for i := range b.user.Cards {
		d, err := b.Build(&b.user.Cards[i], cfgs)
		if err != nil {
			return nil, err
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	if b.ctx.SpecialCharacterID > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			return bonusOrZero(out[i].SupportDeckBonus) > bonusOrZero(out[j].SupportDeckBonus)
		})
	}
	return out, nil
}

func bonusOrZero(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
