package catalog

// AdvantageID identifies an advantage independently of its display name
type AdvantageID string

// DisadvantageID identifies a disadvantage
type DisadvantageID string

// RaceID identifies a race
type RaceID string

// ClassID identifies a class
type ClassID string

// AbilityID identifies a class ability
type AbilityID string

// ArchetypeID identifies an NPC archetype
type ArchetypeID string

// AbilityType tags what a class ability does in play
type AbilityType string

// Ability types
const (
	AbilityTypeAttack  AbilityType = "attack"
	AbilityTypeDefense AbilityType = "defense"
	AbilityTypeUtility AbilityType = "utility"
	AbilityTypePassive AbilityType = "passive"
)

// Valid reports whether t is one of the known ability types
func (t AbilityType) Valid() bool {
	switch t {
	case AbilityTypeAttack, AbilityTypeDefense, AbilityTypeUtility, AbilityTypePassive:
		return true
	}
	return false
}

// Advantage is a purchasable trait
type Advantage struct {
	ID              AdvantageID `yaml:"id"`
	Name            string      `yaml:"name"`
	Cost            int         `yaml:"cost"`
	Description     string      `yaml:"description"`
	OnlyAtLevelZero bool        `yaml:"only_at_level_zero"`
}

// Disadvantage is a trait that gives advantage points back
type Disadvantage struct {
	ID          DisadvantageID `yaml:"id"`
	Name        string         `yaml:"name"`
	Gain        int            `yaml:"gain"`
	Description string         `yaml:"description"`
}

// Race costs advantage points and grants a fixed list of advantages for free
type Race struct {
	ID                RaceID        `yaml:"id"`
	Name              string        `yaml:"name"`
	Cost              int           `yaml:"cost"`
	Description       string        `yaml:"description"`
	GrantedAdvantages []AdvantageID `yaml:"granted_advantages"`
}

// ClassAbility is unlocked at UnlockLevel and bought with one soul or with
// AdvantagePointCost advantage points
type ClassAbility struct {
	ID                 AbilityID   `yaml:"id"`
	Name               string      `yaml:"name"`
	Type               AbilityType `yaml:"type"`
	UnlockLevel        int         `yaml:"unlock_level"`
	SoulCost           int         `yaml:"soul_cost"`
	AdvantagePointCost int         `yaml:"advantage_point_cost"`
	ManaCost           float64     `yaml:"mana_cost"`
	StaminaCost        float64     `yaml:"stamina_cost"`
	Effect             string      `yaml:"effect"`
}

// Class groups the abilities a ficha may unlock
type Class struct {
	ID          ClassID        `yaml:"id"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Abilities   []ClassAbility `yaml:"abilities"`
}

// Ability looks up one of the class abilities
func (c *Class) Ability(id AbilityID) (ClassAbility, bool) {
	for _, a := range c.Abilities {
		if a.ID == id {
			return a, true
		}
	}
	return ClassAbility{}, false
}

// LevelRow is one step of the level table
type LevelRow struct {
	Level               int `yaml:"level"`
	ExperienceThreshold int `yaml:"experience"`
	SkillPoints         int `yaml:"skill_points"`
	AdvantagePoints     int `yaml:"advantage_points"`
}

// Archetype biases NPC attribute allocation. Keys of Weights and Multiples
// are attribute names (strength, dexterity, agility, constitution,
// intelligence).
type Archetype struct {
	ID        ArchetypeID    `yaml:"id"`
	Name      string         `yaml:"name"`
	Weights   map[string]int `yaml:"weights"`
	Multiples map[string]int `yaml:"multiples"`
}

// Rules holds the derivation constants that are data rather than code
type Rules struct {
	CarryCapacityBase int         `yaml:"carry_capacity_base"`
	CarryCapacityStep int         `yaml:"carry_capacity_step"`
	ComboAdvantage    AdvantageID `yaml:"combo_advantage"`
	MaxDisadvantages  int         `yaml:"max_disadvantages"`
}
