package engine

import (
	"math"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
)

// Combo Físico bonuses to locomotion
const (
	comboRunBonus          = 25
	comboJumpHeightBonus   = 2
	comboJumpDistanceBonus = 6
)

// Derive recomputes every derived field of rec from its inputs and returns
// the result as a new record. rec is not modified. Derive never fails:
// negative or non-finite inputs read as 0 and unknown catalog ids cost
// nothing.
func Derive(rec *entities.Record, cat *catalog.Catalog) *entities.Record {
	out := rec.Clone()
	if out == nil {
		out = entities.NewRecord("", "")
	}

	sanitize(out)
	pruneAdjustments(out)

	a := out.Attributes
	gm := func(f entities.DerivedField) int { return out.GMAdjustments[f] }

	row := cat.LevelFor(out.Experience)
	out.Level = row.Level

	out.Attack = a.Strength + a.Dexterity/5 +
		out.MainHand.AttackBonus + out.OffHand.AttackBonus + gm(entities.FieldAttack)
	out.MagicAttack = a.Intelligence +
		out.MainHand.MagicBonus + out.OffHand.MagicBonus + gm(entities.FieldMagicAttack)
	out.Accuracy = a.Dexterity/3 + a.Agility/10 + gm(entities.FieldAccuracy)
	out.Dodge = a.Agility/3 + gm(entities.FieldDodge)
	out.PhysicalDamageReduction = a.Strength/5 + gm(entities.FieldPhysicalDamageReduction)
	out.MagicDamageReduction = a.Intelligence/5 + gm(entities.FieldMagicDamageReduction)

	health := 50 + a.Constitution*(3+a.Strength/10) + 10*out.Level
	out.Health.Total = float64(health + gm(entities.FieldHealthTotal))

	mana := 20 + 3*a.Constitution
	if a.Intelligence >= 10 {
		mana += a.Constitution * (a.Intelligence / 10)
	}
	out.Mana.Total = float64(mana + gm(entities.FieldManaTotal))

	out.Stamina.Total = round1(10+0.4*float64(a.Constitution)) + float64(gm(entities.FieldStaminaTotal))

	out.Health.Regeneration = float64(1 + a.Constitution/5 + gm(entities.FieldHealthRegeneration))
	out.Mana.Regeneration = float64(1 + a.Intelligence/5 + gm(entities.FieldManaRegeneration))
	out.Stamina.Regeneration = round1(1+0.2*float64(a.Constitution)) + float64(gm(entities.FieldStaminaRegeneration))

	clampCurrent(&out.Health)
	clampCurrent(&out.Mana)
	clampCurrent(&out.Stamina)

	var weight float64
	for _, item := range out.Inventory {
		weight += item.Weight
	}
	out.TotalWeight = weight
	out.CarryCapacity = cat.Rules.CarryCapacityBase +
		(a.Strength/5)*cat.Rules.CarryCapacityStep + gm(entities.FieldCarryCapacity)

	combo := HasCombo(out, cat)
	out.RunSpeed = 25 + 3*(a.Agility/3) + gm(entities.FieldRunSpeed)
	out.JumpHeight = 1 + a.Strength/10 + gm(entities.FieldJumpHeight)
	out.JumpDistance = 3 + a.Strength/5 + a.Agility/5 + gm(entities.FieldJumpDistance)
	if combo {
		out.RunSpeed += comboRunBonus
		out.JumpHeight += comboJumpHeightBonus
		out.JumpDistance += comboJumpDistanceBonus
	}

	out.SkillPointsTotal = row.SkillPoints + gm(entities.FieldSkillPointsTotal)
	out.SkillPointsAvailable = out.SkillPointsTotal - a.Sum()

	out.AdvantagePointsTotal = row.AdvantagePoints + gm(entities.FieldAdvantagePointsTotal)
	out.AdvantagePointsAvailable = out.AdvantagePointsTotal - AdvantagePointsSpent(out, cat)

	out.SoulsAvailable = out.SoulsTotal - out.SoulsSpent

	return out
}

// AdvantagePointsSpent is the net advantage point cost of a record's
// choices: selected advantages not granted by its race, plus the race,
// plus abilities paid with advantage points, minus disadvantage gains.
func AdvantagePointsSpent(rec *entities.Record, cat *catalog.Catalog) int {
	spent := 0

	for id := range rec.SelectedAdvantages {
		if cat.RaceGrants(rec.SelectedRace, id) {
			continue
		}
		if adv, ok := cat.Advantage(id); ok {
			spent += adv.Cost
		}
	}

	for id := range rec.SelectedDisadvantages {
		if dis, ok := cat.Disadvantage(id); ok {
			spent -= dis.Gain
		}
	}

	if race, ok := cat.Race(rec.SelectedRace); ok {
		spent += race.Cost
	}

	for id := range rec.AbilitiesPaidWithAdvantagePoints {
		if ability, ok := cat.Ability(id); ok {
			spent += ability.AdvantagePointCost
		}
	}

	return spent
}

// HasCombo reports whether the record holds the Combo Físico advantage,
// either selected or granted by its race
func HasCombo(rec *entities.Record, cat *catalog.Catalog) bool {
	id := cat.Rules.ComboAdvantage
	if id == "" {
		return false
	}
	return rec.SelectedAdvantages.Has(id) || cat.RaceGrants(rec.SelectedRace, id)
}

func sanitize(rec *entities.Record) {
	rec.Attributes = rec.Attributes.NonNegative()
	rec.LockedAttributes = rec.LockedAttributes.NonNegative()

	rec.Experience = max(rec.Experience, 0)
	rec.LockedExperience = max(rec.LockedExperience, 0)
	rec.SoulsTotal = max(rec.SoulsTotal, 0)
	rec.SoulsSpent = max(rec.SoulsSpent, 0)

	for i := range rec.Inventory {
		rec.Inventory[i].Weight = nonNegative(rec.Inventory[i].Weight)
	}

	rec.Health.Current = nonNegative(rec.Health.Current)
	rec.Mana.Current = nonNegative(rec.Mana.Current)
	rec.Stamina.Current = nonNegative(rec.Stamina.Current)
}

func pruneAdjustments(rec *entities.Record) {
	for f, delta := range rec.GMAdjustments {
		if delta == 0 || !f.Valid() {
			delete(rec.GMAdjustments, f)
		}
	}
	if len(rec.GMAdjustments) == 0 {
		rec.GMAdjustments = nil
	}
}

func clampCurrent(r *entities.Resource) {
	total := math.Max(r.Total, 0)
	if r.Current > total {
		r.Current = total
	}
}

func nonNegative(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
