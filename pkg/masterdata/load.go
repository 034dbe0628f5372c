package masterdata

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"

	"deck-recommender/pkg/enums"
	"deck-recommender/pkg/errs"
)

func readPower3(v gjson.Result, format string) [3]int {
	var p [3]int
	for i := range p {
		p[i] = int(v.Get(fmt.Sprintf(format, i+1)).Int())
	}
	return p
}

func parseUnit(v gjson.Result) enums.Unit {
	u, _ := enums.ParseUnit(v.String())
	return u
}

func parseAttr(v gjson.Result) enums.Attr {
	a, _ := enums.ParseAttr(v.String())
	return a
}

func parseRarity(v gjson.Result) enums.Rarity {
	r, _ := enums.ParseRarity(v.String())
	return r
}

func readFloats(v gjson.Result) []float64 {
	var out []float64
	v.ForEach(func(_, x gjson.Result) bool {
		out = append(out, x.Float())
		return true
	})
	return out
}

func readInts(v gjson.Result) []int {
	var out []int
	v.ForEach(func(_, x gjson.Result) bool {
		out = append(out, int(x.Int()))
		return true
	})
	return out
}

func parseCard(v gjson.Result) (Card, error) {
	c := Card{
		ID:                     int(v.Get("id").Int()),
		CharacterID:            int(v.Get("characterId").Int()),
		Rarity:                 parseRarity(v.Get("cardRarityType")),
		Attr:                   parseAttr(v.Get("attr")),
		SupportUnit:            parseUnit(v.Get("supportUnit")),
		SkillID:                int(v.Get("skillId").Int()),
		SpecialTrainingSkillID: int(v.Get("specialTrainingSkillId").Int()),
		SpecialTrainingPower:   readPower3(v, "specialTrainingPower%dBonusFixed"),
	}
	maxLevel := 0
	var err error
	params := v.Get("cardParameters")
	params.ForEach(func(_, p gjson.Result) bool {
		lv := int(p.Get("cardLevel").Int())
		if lv < 0 {
			err = errs.Data("card %d has negative cardLevel %d", c.ID, lv)
			return false
		}
		maxLevel = max(maxLevel, lv)
		return true
	})
	if err != nil {
		return c, err
	}
	c.LevelParams = make([][3]int, maxLevel+1)
	params.ForEach(func(_, p gjson.Result) bool {
		lv := int(p.Get("cardLevel").Int())
		switch p.Get("cardParameterType").String() {
		case "param1":
			c.LevelParams[lv][0] = int(p.Get("power").Int())
		case "param2":
			c.LevelParams[lv][1] = int(p.Get("power").Int())
		case "param3":
			c.LevelParams[lv][2] = int(p.Get("power").Int())
		}
		return true
	})
	return c, nil
}

func parseCards(root gjson.Result) ([]Card, error) {
	var out []Card
	var err error
	root.Get("cards").ForEach(func(_, v gjson.Result) bool {
		var c Card
		if c, err = parseCard(v); err != nil {
			return false
		}
		out = append(out, c)
		return true
	})
	return out, err
}

func parseSkill(v gjson.Result) Skill {
	s := Skill{ID: int(v.Get("id").Int())}
	v.Get("skillEffects").ForEach(func(_, e gjson.Result) bool {
		eff := SkillEffect{
			Type:                  enums.ParseSkillEffectType(e.Get("skillEffectType").String()),
			ActivateCharacterRank: int(e.Get("activateCharacterRank").Int()),
			ActivateUnitCount:     int(e.Get("activateUnitCount").Int()),
		}
		e.Get("skillEffectDetails").ForEach(func(_, d gjson.Result) bool {
			eff.Details = append(eff.Details, SkillEffectDetail{
				Level:  int(d.Get("level").Int()),
				Value:  d.Get("activateEffectValue").Float(),
				Value2: d.Get("activateEffectValue2").Float(),
			})
			return true
		})
		if en := e.Get("skillEnhance"); en.Exists() {
			eff.Enhance = &SkillEnhance{
				Unit:  parseUnit(en.Get("skillEnhanceCondition.unit")),
				Value: en.Get("activateEffectValue").Float(),
			}
		}
		s.Effects = append(s.Effects, eff)
		return true
	})
	return s
}

func parseSupportDeckBonus(v gjson.Result) WorldBloomSupportDeckBonus {
	b := WorldBloomSupportDeckBonus{
		Rarity:          parseRarity(v.Get("cardRarityType")),
		MasterRankBonus: make(map[int]float64),
		SkillLevelBonus: make(map[int]float64),
	}
	v.Get("worldBloomSupportDeckCharacterBonuses").ForEach(func(_, x gjson.Result) bool {
		t := enums.ParseSupportCharacterType(x.Get("worldBloomSupportDeckCharacterType").String())
		b.CharacterBonus[t] = x.Get("bonusRate").Float()
		return true
	})
	v.Get("worldBloomSupportDeckMasterRankBonuses").ForEach(func(_, x gjson.Result) bool {
		b.MasterRankBonus[int(x.Get("masterRank").Int())] = x.Get("bonusRate").Float()
		return true
	})
	v.Get("worldBloomSupportDeckSkillLevelBonuses").ForEach(func(_, x gjson.Result) bool {
		b.SkillLevelBonus[int(x.Get("skillLevel").Int())] = x.Get("bonusRate").Float()
		return true
	})
	return b
}

func parseMusicMeta(v gjson.Result) MusicMeta {
	return MusicMeta{
		MusicID:         int(v.Get("music_id").Int()),
		Difficulty:      v.Get("difficulty").String(),
		MusicTime:       v.Get("music_time").Float(),
		EventRate:       v.Get("event_rate").Float(),
		BaseScore:       v.Get("base_score").Float(),
		BaseScoreAuto:   v.Get("base_score_auto").Float(),
		SkillScoreSolo:  readFloats(v.Get("skill_score_solo")),
		SkillScoreAuto:  readFloats(v.Get("skill_score_auto")),
		SkillScoreMulti: readFloats(v.Get("skill_score_multi")),
		FeverScore:      v.Get("fever_score").Float(),
		TapCount:        int(v.Get("tap_count").Int()),
	}
}

// each walks a top-level array and appends one parsed row per element.
func each[T any](root gjson.Result, path string, parse func(gjson.Result) T) []T {
	var out []T
	root.Get(path).ForEach(func(_, v gjson.Result) bool {
		out = append(out, parse(v))
		return true
	})
	return out
}

// ParseMaster reads the static tables from one JSON object keyed by table name.
// Music metas may be embedded under "musicMetas" or loaded separately.
func ParseMaster(dataJSON string) (*Master, error) {
	if !gjson.Valid(dataJSON) {
		return nil, errs.Data("master data is not valid JSON")
	}
	root := gjson.Parse(dataJSON)
	cards, err := parseCards(root)
	if err != nil {
		return nil, err
	}
	m := &Master{
		Cards: cards,
		CardRarities: each(root, "cardRarities", func(v gjson.Result) CardRarity {
			return CardRarity{
				Rarity:           parseRarity(v.Get("cardRarityType")),
				MaxLevel:         int(v.Get("maxLevel").Int()),
				TrainingMaxLevel: int(v.Get("trainingMaxLevel").Int()),
				MaxSkillLevel:    int(v.Get("maxSkillLevel").Int()),
			}
		}),
		CardEpisodes: each(root, "cardEpisodes", func(v gjson.Result) CardEpisode {
			part := 0
			if v.Get("cardEpisodePartType").String() == "second_part" {
				part = 1
			}
			return CardEpisode{
				ID:     int(v.Get("id").Int()),
				CardID: int(v.Get("cardId").Int()),
				Part:   part,
				Power:  readPower3(v, "power%dBonusFixed"),
			}
		}),
		MasterLessons: each(root, "masterLessons", func(v gjson.Result) MasterLesson {
			return MasterLesson{
				Rarity:     parseRarity(v.Get("cardRarityType")),
				MasterRank: int(v.Get("masterRank").Int()),
				Power:      readPower3(v, "power%dBonusFixed"),
			}
		}),
		Skills: each(root, "skills", parseSkill),
		GameCharacters: each(root, "gameCharacters", func(v gjson.Result) GameCharacter {
			return GameCharacter{ID: int(v.Get("id").Int()), Unit: parseUnit(v.Get("unit"))}
		}),
		GameCharacterUnits: each(root, "gameCharacterUnits", func(v gjson.Result) GameCharacterUnit {
			return GameCharacterUnit{
				ID:          int(v.Get("id").Int()),
				CharacterID: int(v.Get("gameCharacterId").Int()),
				Unit:        parseUnit(v.Get("unit")),
			}
		}),
		CharacterRanks: each(root, "characterRanks", func(v gjson.Result) CharacterRank {
			return CharacterRank{
				CharacterID:    int(v.Get("characterId").Int()),
				Rank:           int(v.Get("characterRank").Int()),
				PowerBonusRate: v.Get("power1BonusRate").Float(),
			}
		}),
		AreaItemLevels: each(root, "areaItemLevels", func(v gjson.Result) AreaItemLevel {
			return AreaItemLevel{
				AreaItemID:             int(v.Get("areaItemId").Int()),
				Level:                  int(v.Get("level").Int()),
				TargetUnit:             parseUnit(v.Get("targetUnit")),
				TargetAttr:             parseAttr(v.Get("targetCardAttr")),
				TargetCharacterID:      int(v.Get("targetGameCharacterId").Int()),
				PowerBonusRate:         v.Get("power1BonusRate").Float(),
				PowerAllMatchBonusRate: v.Get("power1AllMatchBonusRate").Float(),
			}
		}),
		Events: each(root, "events", func(v gjson.Result) Event {
			t, _ := enums.ParseEventType(v.Get("eventType").String())
			return Event{ID: int(v.Get("id").Int()), Type: t, Unit: parseUnit(v.Get("unit"))}
		}),
		EventCards: each(root, "eventCards", func(v gjson.Result) EventCard {
			return EventCard{
				EventID:   int(v.Get("eventId").Int()),
				CardID:    int(v.Get("cardId").Int()),
				BonusRate: v.Get("bonusRate").Float(),
			}
		}),
		EventDeckBonuses: each(root, "eventDeckBonuses", func(v gjson.Result) EventDeckBonus {
			return EventDeckBonus{
				EventID:         int(v.Get("eventId").Int()),
				Attr:            parseAttr(v.Get("cardAttr")),
				CharacterUnitID: int(v.Get("gameCharacterUnitId").Int()),
				BonusRate:       v.Get("bonusRate").Float(),
			}
		}),
		EventRarityBonusRates: each(root, "eventRarityBonusRates", func(v gjson.Result) EventRarityBonusRate {
			return EventRarityBonusRate{
				Rarity:     parseRarity(v.Get("cardRarityType")),
				MasterRank: int(v.Get("masterRank").Int()),
				BonusRate:  v.Get("bonusRate").Float(),
			}
		}),
		DifferentAttrBonuses: each(root, "worldBloomDifferentAttributeBonuses", func(v gjson.Result) WorldBloomDifferentAttributeBonus {
			return WorldBloomDifferentAttributeBonus{
				AttributeCount: int(v.Get("attributeCount").Int()),
				BonusRate:      v.Get("bonusRate").Float(),
			}
		}),
		SupportDeckBonuses: each(root, "worldBloomSupportDeckBonuses", parseSupportDeckBonus),
		SupportLimitedBonuses: each(root, "worldBloomSupportDeckUnitEventLimitedBonuses", func(v gjson.Result) WorldBloomSupportDeckUnitEventLimitedBonus {
			return WorldBloomSupportDeckUnitEventLimitedBonus{
				EventID:     int(v.Get("eventId").Int()),
				CharacterID: int(v.Get("gameCharacterId").Int()),
				CardID:      int(v.Get("cardId").Int()),
				BonusRate:   v.Get("bonusRate").Float(),
			}
		}),
		CanvasBonuses: each(root, "cardMysekaiCanvasBonuses", func(v gjson.Result) CanvasBonus {
			return CanvasBonus{Rarity: parseRarity(v.Get("cardRarityType")), Power: readPower3(v, "power%dBonusFixed")}
		}),
		GateLevels: each(root, "mysekaiGateLevels", func(v gjson.Result) GateLevel {
			return GateLevel{
				GateID:         int(v.Get("mysekaiGateId").Int()),
				Unit:           parseUnit(v.Get("unit")),
				Level:          int(v.Get("level").Int()),
				PowerBonusRate: v.Get("powerBonusRate").Float(),
			}
		}),
		Honors: each(root, "honors", func(v gjson.Result) Honor {
			h := Honor{ID: int(v.Get("id").Int())}
			v.Get("levels").ForEach(func(_, lv gjson.Result) bool {
				h.Levels = append(h.Levels, HonorLevel{Level: int(lv.Get("level").Int()), Bonus: int(lv.Get("bonus").Int())})
				return true
			})
			return h
		}),
		MusicMetas: each(root, "musicMetas", parseMusicMeta),
	}
	return m, nil
}

// ParseMusicMetas reads a standalone music meta array.
func ParseMusicMetas(metaJSON string) ([]MusicMeta, error) {
	if !gjson.Valid(metaJSON) {
		return nil, errs.Data("music metas are not valid JSON")
	}
	var metas []MusicMeta
	gjson.Parse(metaJSON).ForEach(func(_, v gjson.Result) bool {
		metas = append(metas, parseMusicMeta(v))
		return true
	})
	return metas, nil
}

// ParseUser reads one player's inventory.
func ParseUser(userJSON string) (*User, error) {
	if !gjson.Valid(userJSON) {
		return nil, errs.Data("user data is not valid JSON")
	}
	root := gjson.Parse(userJSON)
	u := &User{
		Cards: each(root, "userCards", func(v gjson.Result) UserCard {
			uc := UserCard{
				CardID:         int(v.Get("cardId").Int()),
				Level:          int(v.Get("level").Int()),
				SkillLevel:     int(v.Get("skillLevel").Int()),
				MasterRank:     int(v.Get("masterRank").Int()),
				SpecialTrained: v.Get("specialTrainingStatus").String() == "done",
				DefaultImage:   enums.ParseDefaultImage(v.Get("defaultImage").String()),
			}
			v.Get("episodes").ForEach(func(_, e gjson.Result) bool {
				if e.Get("scenarioStatus").String() == "already_read" {
					uc.ReadEpisodeIDs = append(uc.ReadEpisodeIDs, int(e.Get("cardEpisodeId").Int()))
				}
				return true
			})
			return uc
		}),
		AreaItems: each(root, "userAreaItems", func(v gjson.Result) UserAreaItem {
			return UserAreaItem{AreaItemID: int(v.Get("areaItemId").Int()), Level: int(v.Get("level").Int())}
		}),
		Characters: each(root, "userCharacters", func(v gjson.Result) UserCharacter {
			return UserCharacter{CharacterID: int(v.Get("characterId").Int()), Rank: int(v.Get("characterRank").Int())}
		}),
		Honors: each(root, "userHonors", func(v gjson.Result) UserHonor {
			return UserHonor{HonorID: int(v.Get("honorId").Int()), Level: int(v.Get("level").Int())}
		}),
		Gates: each(root, "userMysekaiGates", func(v gjson.Result) UserGate {
			return UserGate{GateID: int(v.Get("mysekaiGateId").Int()), Level: int(v.Get("mysekaiGateLevel").Int())}
		}),
		FixtureBonuses: each(root, "userMysekaiFixtureGameCharacterPerformanceBonuses", func(v gjson.Result) UserFixtureBonus {
			return UserFixtureBonus{CharacterID: int(v.Get("gameCharacterId").Int()), BonusRate: v.Get("totalBonusRate").Float()}
		}),
		CanvasCardIDs: readInts(root.Get("userMysekaiCanvases.#.cardId")),
	}
	return u, nil
}

// Sources names where each input file lives: a local path or an http(s) URL.
type Sources struct {
	Master string
	User   string
	Music  string // optional when master data embeds musicMetas
}

// LoadTables reads and indexes the master data and the optional music metas.
func LoadTables(ctx context.Context, src Sources) (*Tables, error) {
	masterJSON, err := ReadSource(ctx, src.Master)
	if err != nil {
		return nil, err
	}
	m, err := ParseMaster(string(masterJSON))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src.Master, err)
	}
	if src.Music != "" {
		metaJSON, err := ReadSource(ctx, src.Music)
		if err != nil {
			return nil, err
		}
		metas, err := ParseMusicMetas(string(metaJSON))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", src.Music, err)
		}
		m.MusicMetas = append(m.MusicMetas, metas...)
	}
	return m.Index(), nil
}

// Load reads and parses every source and returns indexed tables plus the user.
func Load(ctx context.Context, src Sources) (*Tables, *User, error) {
	t, err := LoadTables(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	userJSON, err := ReadSource(ctx, src.User)
	if err != nil {
		return nil, nil, err
	}
	u, err := ParseUser(string(userJSON))
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", src.User, err)
	}
	return t, u, nil
}
