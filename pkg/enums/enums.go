// Package enums holds the closed enumerations shared by the data loader,
// the card/deck calculators and the searches. Every enum is an int with a
// parse function for the strings used in game data and request payloads.
package enums

type Unit int

const (
	UnitAny Unit = iota
	UnitLightSound
	UnitIdol
	UnitStreet
	UnitThemePark
	UnitSchoolRefusal
	UnitPiapro
	UnitNone
)

// MaxUnit is the number of Unit values, used to size composition tables.
const MaxUnit = 8

var unitNames = [MaxUnit]string{"any", "light_sound", "idol", "street", "theme_park", "school_refusal", "piapro", "none"}

func (u Unit) String() string {
	if u < 0 || int(u) >= MaxUnit {
		return "unknown"
	}
	return unitNames[u]
}

func ParseUnit(s string) (Unit, bool) {
	switch s {
	case "any":
		return UnitAny, true
	case "light_sound":
		return UnitLightSound, true
	case "idol":
		return UnitIdol, true
	case "street":
		return UnitStreet, true
	case "theme_park":
		return UnitThemePark, true
	case "school_refusal":
		return UnitSchoolRefusal, true
	case "piapro":
		return UnitPiapro, true
	case "none", "":
		return UnitNone, true
	}
	return UnitNone, false
}

type Attr int

const (
	AttrNone Attr = iota
	AttrCute
	AttrCool
	AttrPure
	AttrHappy
	AttrMysterious
)

const MaxAttr = 6

var attrNames = [MaxAttr]string{"", "cute", "cool", "pure", "happy", "mysterious"}

func (a Attr) String() string {
	if a < 0 || int(a) >= MaxAttr {
		return "unknown"
	}
	return attrNames[a]
}

func ParseAttr(s string) (Attr, bool) {
	switch s {
	case "":
		return AttrNone, true
	case "cute":
		return AttrCute, true
	case "cool":
		return AttrCool, true
	case "pure":
		return AttrPure, true
	case "happy":
		return AttrHappy, true
	case "mysterious":
		return AttrMysterious, true
	}
	return AttrNone, false
}

type Rarity int

const (
	RarityNone Rarity = iota
	Rarity1
	Rarity2
	Rarity3
	Rarity4
	RarityBirthday
)

const MaxRarity = 6

var rarityNames = [MaxRarity]string{"", "rarity_1", "rarity_2", "rarity_3", "rarity_4", "rarity_birthday"}

func (r Rarity) String() string {
	if r < 0 || int(r) >= MaxRarity {
		return "unknown"
	}
	return rarityNames[r]
}

func ParseRarity(s string) (Rarity, bool) {
	switch s {
	case "rarity_1":
		return Rarity1, true
	case "rarity_2":
		return Rarity2, true
	case "rarity_3":
		return Rarity3, true
	case "rarity_4":
		return Rarity4, true
	case "rarity_birthday":
		return RarityBirthday, true
	}
	return RarityNone, false
}

// SkillEffectType lists the skill effects the calculators understand.
// Anything else in game data loads as SkillEffectUnknown and is ignored.
type SkillEffectType int

const (
	SkillEffectUnknown SkillEffectType = iota
	SkillEffectScoreUp
	SkillEffectScoreUpConditionLife
	SkillEffectScoreUpKeep
	SkillEffectLifeRecovery
	SkillEffectScoreUpCharacterRank
	SkillEffectOtherMemberScoreUpReferenceRate
	SkillEffectScoreUpUnitCount
)

func ParseSkillEffectType(s string) SkillEffectType {
	switch s {
	case "score_up":
		return SkillEffectScoreUp
	case "score_up_condition_life":
		return SkillEffectScoreUpConditionLife
	case "score_up_keep":
		return SkillEffectScoreUpKeep
	case "life_recovery":
		return SkillEffectLifeRecovery
	case "score_up_character_rank":
		return SkillEffectScoreUpCharacterRank
	case "other_member_score_up_reference_rate":
		return SkillEffectOtherMemberScoreUpReferenceRate
	case "score_up_unit_count":
		return SkillEffectScoreUpUnitCount
	}
	return SkillEffectUnknown
}

// IsScoreUp reports whether t is one of the plain score-up effects.
func (t SkillEffectType) IsScoreUp() bool {
	return t >= SkillEffectScoreUp && t <= SkillEffectScoreUpKeep
}

type DefaultImage int

const (
	ImageOriginal DefaultImage = iota
	ImageSpecialTraining
)

func ParseDefaultImage(s string) DefaultImage {
	if s == "special_training" {
		return ImageSpecialTraining
	}
	return ImageOriginal
}

type EventType int

const (
	EventNone EventType = iota
	EventMarathon
	EventCheerfulCarnival
	EventWorldBloom
)

var eventTypeNames = [...]string{"none", "marathon", "cheerful_carnival", "world_bloom"}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return "unknown"
	}
	return eventTypeNames[t]
}

func ParseEventType(s string) (EventType, bool) {
	switch s {
	case "", "none":
		return EventNone, true
	case "marathon":
		return EventMarathon, true
	case "cheerful_carnival":
		return EventCheerfulCarnival, true
	case "world_bloom":
		return EventWorldBloom, true
	}
	return EventNone, false
}

type LiveType int

const (
	LiveSolo LiveType = iota
	LiveMulti
	LiveChallenge
	LiveCheerful
	LiveAuto
)

var liveTypeNames = [...]string{"solo", "multi", "challenge", "cheerful", "auto"}

func (t LiveType) String() string {
	if t < 0 || int(t) >= len(liveTypeNames) {
		return "unknown"
	}
	return liveTypeNames[t]
}

func ParseLiveType(s string) (LiveType, bool) {
	for i, n := range liveTypeNames {
		if n == s {
			return LiveType(i), true
		}
	}
	return LiveSolo, false
}

// Objective is the value a recommendation maximizes.
type Objective int

const (
	ObjectiveScore Objective = iota
	ObjectivePower
	ObjectiveSkill
	ObjectiveBonus
)

var objectiveNames = [...]string{"score", "power", "skill", "bonus"}

func (o Objective) String() string {
	if o < 0 || int(o) >= len(objectiveNames) {
		return "unknown"
	}
	return objectiveNames[o]
}

func ParseObjective(s string) (Objective, bool) {
	for i, n := range objectiveNames {
		if n == s {
			return Objective(i), true
		}
	}
	return ObjectiveScore, false
}

type Algorithm int

const (
	AlgorithmExact Algorithm = iota
	AlgorithmSA
	AlgorithmGA
)

var algorithmNames = [...]string{"dfs", "sa", "ga"}

func (a Algorithm) String() string {
	if a < 0 || int(a) >= len(algorithmNames) {
		return "unknown"
	}
	return algorithmNames[a]
}

func ParseAlgorithm(s string) (Algorithm, bool) {
	switch s {
	case "dfs", "exact":
		return AlgorithmExact, true
	case "sa":
		return AlgorithmSA, true
	case "ga":
		return AlgorithmGA, true
	}
	return AlgorithmExact, false
}

// ReferenceStrategy picks how an absorbing skill combines its teammates.
type ReferenceStrategy int

const (
	ReferenceMax ReferenceStrategy = iota
	ReferenceMin
	ReferenceAverage
)

var referenceNames = [...]string{"max", "min", "average"}

func (s ReferenceStrategy) String() string {
	if s < 0 || int(s) >= len(referenceNames) {
		return "unknown"
	}
	return referenceNames[s]
}

func ParseReferenceStrategy(s string) (ReferenceStrategy, bool) {
	for i, n := range referenceNames {
		if n == s {
			return ReferenceStrategy(i), true
		}
	}
	return ReferenceMax, false
}

// SupportCharacterType selects the world bloom support bonus row.
type SupportCharacterType int

const (
	SupportCharacterOthers SupportCharacterType = iota
	SupportCharacterSpecific
)

func ParseSupportCharacterType(s string) SupportCharacterType {
	if s == "specific" {
		return SupportCharacterSpecific
	}
	return SupportCharacterOthers
}
