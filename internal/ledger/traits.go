package ledger

import (
	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// Exclusion lists saved traits to remove
type Exclusion struct {
	Advantages    []catalog.AdvantageID
	Disadvantages []catalog.DisadvantageID
	RemoveRace    bool
}

// Empty reports whether the exclusion removes nothing
func (e Exclusion) Empty() bool {
	return len(e.Advantages) == 0 && len(e.Disadvantages) == 0 && !e.RemoveRace
}

// ExcludeItems removes saved traits. Removing a disadvantage takes back its
// point gain, so the exclusion is rejected when it would leave the ficha
// owing advantage points.
func (l *Ledger) ExcludeItems(rec *entities.Record, ex Exclusion) (*entities.Record, error) {
	if ex.Empty() {
		return nil, errors.InvalidArgument("nothing to exclude")
	}

	next := rec.Clone()
	for _, id := range ex.Advantages {
		if !next.SelectedAdvantages.Has(id) {
			return nil, errors.InvalidArgumentf("advantage %q is not selected", id)
		}
		next.SelectedAdvantages.Remove(id)
	}
	for _, id := range ex.Disadvantages {
		if !next.SelectedDisadvantages.Has(id) {
			return nil, errors.InvalidArgumentf("disadvantage %q is not selected", id)
		}
		next.SelectedDisadvantages.Remove(id)
	}
	if ex.RemoveRace {
		if next.SelectedRace == "" {
			return nil, errors.InvalidArgument("no race is selected")
		}
		next.SelectedRace = ""
	}

	out := l.Derive(next)
	if out.AdvantagePointsAvailable < 0 {
		return nil, errors.FailedPreconditionf(
			"exclusion would leave %d advantage points owed", -out.AdvantagePointsAvailable)
	}
	return out, nil
}

// SelectClass sets the class. The class is fixed once any of its abilities
// has been acquired.
func (l *Ledger) SelectClass(rec *entities.Record, id catalog.ClassID) (*entities.Record, error) {
	if id != "" {
		if _, ok := l.cat.Class(id); !ok {
			return nil, errors.InvalidArgumentf("unknown class %q", id)
		}
	}
	if id == rec.SelectedClass {
		return l.Derive(rec), nil
	}
	if len(rec.AcquiredClassAbilities) > 0 {
		return nil, errors.FailedPrecondition("class cannot change after class abilities were acquired")
	}

	next := rec.Clone()
	next.SelectedClass = id
	return l.Derive(next), nil
}

// AcquisitionResult reports how a class ability was paid for
type AcquisitionResult struct {
	Ability              catalog.ClassAbility
	PaidWithSoul         bool
	AdvantagePointsSpent int
}

// AcquireClassAbility unlocks an ability of the selected class. A soul is
// spent when one is available, otherwise the ability's advantage point
// cost. Non-passive abilities become skills.
func (l *Ledger) AcquireClassAbility(rec *entities.Record, id catalog.AbilityID) (*entities.Record, AcquisitionResult, error) {
	if rec.SelectedClass == "" {
		return nil, AcquisitionResult{}, errors.FailedPrecondition("select a class first")
	}
	class, ok := l.cat.Class(rec.SelectedClass)
	if !ok {
		return nil, AcquisitionResult{}, errors.FailedPreconditionf("unknown class %q", rec.SelectedClass)
	}
	ability, ok := class.Ability(id)
	if !ok {
		return nil, AcquisitionResult{}, errors.InvalidArgumentf("%s has no ability %q", class.Name, id)
	}
	if rec.AcquiredClassAbilities.Has(id) {
		return nil, AcquisitionResult{}, errors.AlreadyExistsf("ability %s already acquired", ability.Name)
	}

	next := l.Derive(rec)
	if next.Level < ability.UnlockLevel {
		return nil, AcquisitionResult{}, errors.FailedPreconditionf(
			"%s unlocks at level %d", ability.Name, ability.UnlockLevel)
	}

	result := AcquisitionResult{Ability: ability}
	switch {
	case next.SoulsAvailable > 0:
		next.SoulsSpent++
		result.PaidWithSoul = true
	case next.AdvantagePointsAvailable >= ability.AdvantagePointCost:
		next.AbilitiesPaidWithAdvantagePoints.Add(id)
		result.AdvantagePointsSpent = ability.AdvantagePointCost
	default:
		return nil, AcquisitionResult{}, errors.FailedPrecondition("insufficient souls or advantage points")
	}

	next.AcquiredClassAbilities.Add(id)
	if ability.Type != catalog.AbilityTypePassive {
		next.Skills = append(next.Skills, entities.Skill{
			Name:          ability.Name,
			ManaCost:      ability.ManaCost,
			StaminaCost:   ability.StaminaCost,
			Effect:        ability.Effect,
			Category:      SkillCategoryFor(ability.Type),
			SourceAbility: ability.ID,
		})
	}

	return l.Derive(next), result, nil
}

// SkillCategoryFor maps an ability type to the skill category it is listed
// under. Defense abilities are buffs; utility and passive share utility.
func SkillCategoryFor(t catalog.AbilityType) entities.SkillCategory {
	switch t {
	case catalog.AbilityTypeAttack:
		return entities.SkillCategoryDamage
	case catalog.AbilityTypeDefense:
		return entities.SkillCategoryBuff
	default:
		return entities.SkillCategoryUtility
	}
}

// SetGMAdjustment stores delta on field. A zero delta removes the entry.
func (l *Ledger) SetGMAdjustment(rec *entities.Record, field entities.DerivedField, delta int) (*entities.Record, error) {
	if !field.Valid() {
		return nil, errors.InvalidArgumentf("unknown derived field %q", field)
	}

	next := rec.Clone()
	if delta == 0 {
		delete(next.GMAdjustments, field)
	} else {
		if next.GMAdjustments == nil {
			next.GMAdjustments = make(map[entities.DerivedField]int)
		}
		next.GMAdjustments[field] = delta
	}
	return l.Derive(next), nil
}

// ResetPoints returns every spent point: attributes and their locks, traits,
// class abilities with the skills they granted, and spent souls. Experience
// and the class stay.
func (l *Ledger) ResetPoints(rec *entities.Record) *entities.Record {
	next := rec.Clone()
	next.Attributes = entities.Attributes{}
	next.LockedAttributes = entities.Attributes{}
	next.SelectedAdvantages = entities.Set[catalog.AdvantageID]{}
	next.SelectedDisadvantages = entities.Set[catalog.DisadvantageID]{}
	next.SelectedRace = ""
	next.AcquiredClassAbilities = entities.Set[catalog.AbilityID]{}
	next.AbilitiesPaidWithAdvantagePoints = entities.Set[catalog.AbilityID]{}
	next.SoulsSpent = 0

	skills := next.Skills[:0]
	for _, skill := range next.Skills {
		if skill.SourceAbility == "" {
			skills = append(skills, skill)
		}
	}
	next.Skills = skills

	return l.Derive(next)
}

// ResetRecord replaces the record with a fresh one keeping its identity
func (l *Ledger) ResetRecord(rec *entities.Record) *entities.Record {
	next := entities.NewRecord(rec.ID, rec.DisplayName)
	next.IsNPC = rec.IsNPC
	next.CreatedAt = rec.CreatedAt
	return l.Derive(next)
}
