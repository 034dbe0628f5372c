package masterdata

import "deck-recommender/pkg/enums"

// ── Static tables ───────────────────────────────────────────────────

// Card is one card definition. LevelParams[level] holds the three
// parameter values at that level; index 0 is unused.
type Card struct {
	ID                     int
	CharacterID            int
	Rarity                 enums.Rarity
	Attr                   enums.Attr
	SupportUnit            enums.Unit
	SkillID                int
	SpecialTrainingSkillID int
	LevelParams            [][3]int
	SpecialTrainingPower   [3]int
}

type CardRarity struct {
	Rarity           enums.Rarity
	MaxLevel         int
	TrainingMaxLevel int // 0 when the rarity cannot be trained
	MaxSkillLevel    int
}

// CardEpisode is a side story of a card; reading it adds fixed power.
// Part is 0 for the first part and 1 for the second.
type CardEpisode struct {
	ID     int
	CardID int
	Part   int
	Power  [3]int
}

type MasterLesson struct {
	Rarity     enums.Rarity
	MasterRank int
	Power      [3]int
}

type SkillEffectDetail struct {
	Level  int
	Value  float64
	Value2 float64
}

type SkillEnhance struct {
	Unit  enums.Unit
	Value float64
}

type SkillEffect struct {
	Type                  enums.SkillEffectType
	ActivateCharacterRank int
	ActivateUnitCount     int
	Details               []SkillEffectDetail
	Enhance               *SkillEnhance
}

// DetailAt returns the effect detail for a skill level.
func (e *SkillEffect) DetailAt(level int) (SkillEffectDetail, bool) {
	for _, d := range e.Details {
		if d.Level == level {
			return d, true
		}
	}
	return SkillEffectDetail{}, false
}

type Skill struct {
	ID      int
	Effects []SkillEffect
}

type GameCharacter struct {
	ID   int
	Unit enums.Unit
}

// GameCharacterUnit pairs a character with one unit it can appear in.
// Virtual singers have one row per unit.
type GameCharacterUnit struct {
	ID          int
	CharacterID int
	Unit        enums.Unit
}

type CharacterRank struct {
	CharacterID    int
	Rank           int
	PowerBonusRate float64
}

// AreaItemLevel targets exactly one of unit, attr or character.
type AreaItemLevel struct {
	AreaItemID             int
	Level                  int
	TargetUnit             enums.Unit
	TargetAttr             enums.Attr
	TargetCharacterID      int
	PowerBonusRate         float64
	PowerAllMatchBonusRate float64
}

type Event struct {
	ID   int
	Type enums.EventType
	Unit enums.Unit
}

type EventCard struct {
	EventID   int
	CardID    int
	BonusRate float64
}

type EventDeckBonus struct {
	EventID         int
	Attr            enums.Attr
	CharacterUnitID int
	BonusRate       float64
}

type EventRarityBonusRate struct {
	Rarity     enums.Rarity
	MasterRank int
	BonusRate  float64
}

type WorldBloomDifferentAttributeBonus struct {
	AttributeCount int
	BonusRate      float64
}

type WorldBloomSupportDeckBonus struct {
	Rarity          enums.Rarity
	CharacterBonus  [2]float64 // by enums.SupportCharacterType
	MasterRankBonus map[int]float64
	SkillLevelBonus map[int]float64
}

type WorldBloomSupportDeckUnitEventLimitedBonus struct {
	EventID     int
	CharacterID int
	CardID      int
	BonusRate   float64
}

type CanvasBonus struct {
	Rarity enums.Rarity
	Power  [3]int
}

type GateLevel struct {
	GateID         int
	Unit           enums.Unit
	Level          int
	PowerBonusRate float64
}

type HonorLevel struct {
	Level int
	Bonus int
}

type Honor struct {
	ID     int
	Levels []HonorLevel
}

// MusicMeta holds the per-chart rates used by the live score estimate.
type MusicMeta struct {
	MusicID         int
	Difficulty      string
	MusicTime       float64
	EventRate       float64
	BaseScore       float64
	BaseScoreAuto   float64
	SkillScoreSolo  []float64
	SkillScoreAuto  []float64
	SkillScoreMulti []float64
	FeverScore      float64
	TapCount        int
}

// Master is the full static table set.
type Master struct {
	Cards                 []Card
	CardRarities          []CardRarity
	CardEpisodes          []CardEpisode
	MasterLessons         []MasterLesson
	Skills                []Skill
	GameCharacters        []GameCharacter
	GameCharacterUnits    []GameCharacterUnit
	CharacterRanks        []CharacterRank
	AreaItemLevels        []AreaItemLevel
	Events                []Event
	EventCards            []EventCard
	EventDeckBonuses      []EventDeckBonus
	EventRarityBonusRates []EventRarityBonusRate
	DifferentAttrBonuses  []WorldBloomDifferentAttributeBonus
	SupportDeckBonuses    []WorldBloomSupportDeckBonus
	SupportLimitedBonuses []WorldBloomSupportDeckUnitEventLimitedBonus
	CanvasBonuses         []CanvasBonus
	GateLevels            []GateLevel
	Honors                []Honor
	MusicMetas            []MusicMeta
}

// ── User data ───────────────────────────────────────────────────────

type UserCard struct {
	CardID         int
	Level          int
	SkillLevel     int
	MasterRank     int
	SpecialTrained bool
	DefaultImage   enums.DefaultImage
	ReadEpisodeIDs []int
}

type UserAreaItem struct {
	AreaItemID int
	Level      int
}

type UserCharacter struct {
	CharacterID int
	Rank        int
}

type UserHonor struct {
	HonorID int
	Level   int
}

type UserGate struct {
	GateID int
	Level  int
}

// UserFixtureBonus is the accumulated furniture bonus of one character, in permille.
type UserFixtureBonus struct {
	CharacterID int
	BonusRate   float64
}

// User is one player's inventory.
type User struct {
	Cards          []UserCard
	AreaItems      []UserAreaItem
	Characters     []UserCharacter
	Honors         []UserHonor
	Gates          []UserGate
	FixtureBonuses []UserFixtureBonus
	CanvasCardIDs  []int
}
