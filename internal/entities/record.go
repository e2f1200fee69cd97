// Package entities defines the ficha (character record) aggregate and the
// typed identifiers the rest of the module uses to address it.
package entities

import (
	"github.com/KirkDiggler/rpg-toolkit/core"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
)

// MatrixID is the reserved record that always exists and cannot be deleted
const MatrixID = "matrix"

// MatrixName is the display name of the Matrix record
const MatrixName = "Matrix"

// SkillCategory groups skills on the sheet
type SkillCategory string

// Skill categories produced by class abilities; players may use others
const (
	SkillCategoryDamage  SkillCategory = "damage"
	SkillCategoryBuff    SkillCategory = "buff"
	SkillCategoryUtility SkillCategory = "utility"
)

// Profile is cosmetic data carried through untouched
type Profile struct {
	CharacterName string `json:"characterName"`
	Description   string `json:"description"`
	Image         string `json:"image"`
	Notes         string `json:"notes"`
}

// Resource is one of the health, mana and stamina pools
type Resource struct {
	Current      float64 `json:"current"`
	Total        float64 `json:"total"`
	Regeneration float64 `json:"regeneration"`
}

// Weapon occupies a hand slot and feeds the attack formulas
type Weapon struct {
	Name        string `json:"name"`
	AttackBonus int    `json:"attackBonus"`
	MagicBonus  int    `json:"magicBonus"`
}

// Item is an inventory entry
type Item struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// Skill is a skill or spell on the sheet. SourceAbility is set when the
// skill was granted by a class ability.
type Skill struct {
	Name          string            `json:"name"`
	ManaCost      float64           `json:"manaCost"`
	StaminaCost   float64           `json:"staminaCost"`
	Effect        string            `json:"effect"`
	Category      SkillCategory     `json:"category"`
	SourceAbility catalog.AbilityID `json:"sourceAbility,omitempty"`
}

// Record is one character sheet. Fields marked derived are recomputed by
// the engine on every update and are never authored directly.
type Record struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	Profile     Profile `json:"profile"`
	IsNPC       bool    `json:"isNpc,omitempty"`

	Attributes       Attributes `json:"attributes"`
	LockedAttributes Attributes `json:"lockedAttributes"`

	// derived combat stats
	Attack                  int `json:"attack"`
	MagicAttack             int `json:"magicAttack"`
	Accuracy                int `json:"accuracy"`
	Dodge                   int `json:"dodge"`
	PhysicalDamageReduction int `json:"physicalDamageReduction"`
	MagicDamageReduction    int `json:"magicDamageReduction"`

	Health  Resource `json:"health"`
	Mana    Resource `json:"mana"`
	Stamina Resource `json:"stamina"`

	MainHand Weapon `json:"mainHand"`
	OffHand  Weapon `json:"offHand"`

	Inventory     []Item  `json:"inventory"`
	TotalWeight   float64 `json:"totalWeight"`
	CarryCapacity int     `json:"carryCapacity"`

	Skills []Skill `json:"skills"`

	SelectedAdvantages    Set[catalog.AdvantageID]    `json:"selectedAdvantages"`
	SelectedDisadvantages Set[catalog.DisadvantageID] `json:"selectedDisadvantages"`
	SelectedRace          catalog.RaceID              `json:"selectedRace"`
	SelectedClass         catalog.ClassID             `json:"selectedClass"`

	AcquiredClassAbilities           Set[catalog.AbilityID] `json:"acquiredClassAbilities"`
	AbilitiesPaidWithAdvantagePoints Set[catalog.AbilityID] `json:"abilitiesPaidWithAdvantagePoints"`

	SoulsTotal     int `json:"soulsTotal"`
	SoulsSpent     int `json:"soulsSpent"`
	SoulsAvailable int `json:"soulsAvailable"`

	Experience               int `json:"experience"`
	LockedExperience         int `json:"lockedExperience"`
	Level                    int `json:"level"`
	SkillPointsTotal         int `json:"skillPointsTotal"`
	SkillPointsAvailable     int `json:"skillPointsAvailable"`
	AdvantagePointsTotal     int `json:"advantagePointsTotal"`
	AdvantagePointsAvailable int `json:"advantagePointsAvailable"`

	GMAdjustments map[DerivedField]int `json:"gmAdjustments,omitempty"`

	RunSpeed     int `json:"runSpeed"`
	JumpHeight   int `json:"jumpHeight"`
	JumpDistance int `json:"jumpDistance"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// NewRecord returns a record at its zero state. Callers run it through the
// engine before storing it.
func NewRecord(id, displayName string) *Record {
	return &Record{
		ID:                               id,
		DisplayName:                      displayName,
		Inventory:                        []Item{},
		Skills:                           []Skill{},
		SelectedAdvantages:               Set[catalog.AdvantageID]{},
		SelectedDisadvantages:            Set[catalog.DisadvantageID]{},
		AcquiredClassAbilities:           Set[catalog.AbilityID]{},
		AbilitiesPaidWithAdvantagePoints: Set[catalog.AbilityID]{},
	}
}

// Clone returns a deep copy
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	out := *r
	out.Inventory = append([]Item{}, r.Inventory...)
	out.Skills = append([]Skill{}, r.Skills...)
	out.SelectedAdvantages = r.SelectedAdvantages.Clone()
	out.SelectedDisadvantages = r.SelectedDisadvantages.Clone()
	out.AcquiredClassAbilities = r.AcquiredClassAbilities.Clone()
	out.AbilitiesPaidWithAdvantagePoints = r.AbilitiesPaidWithAdvantagePoints.Clone()

	if r.GMAdjustments != nil {
		out.GMAdjustments = make(map[DerivedField]int, len(r.GMAdjustments))
		for k, v := range r.GMAdjustments {
			out.GMAdjustments[k] = v
		}
	}

	return &out
}

// Compile-time check that a record can travel on the event bus
var _ core.Entity = (*Record)(nil)

// GetID returns the record id
func (r *Record) GetID() string {
	return r.ID
}

// GetType returns the entity type used on the event bus
func (r *Record) GetType() string {
	if r.IsNPC {
		return "npc"
	}
	return "ficha"
}
