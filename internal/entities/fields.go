package entities

// DerivedField names a formula-derived value that may carry a GM adjustment
type DerivedField string

// Derived fields
const (
	FieldAttack                  DerivedField = "attack"
	FieldMagicAttack             DerivedField = "magicAttack"
	FieldAccuracy                DerivedField = "accuracy"
	FieldDodge                   DerivedField = "dodge"
	FieldPhysicalDamageReduction DerivedField = "physicalDamageReduction"
	FieldMagicDamageReduction    DerivedField = "magicDamageReduction"
	FieldHealthTotal             DerivedField = "healthTotal"
	FieldManaTotal               DerivedField = "manaTotal"
	FieldStaminaTotal            DerivedField = "staminaTotal"
	FieldHealthRegeneration      DerivedField = "healthRegeneration"
	FieldManaRegeneration        DerivedField = "manaRegeneration"
	FieldStaminaRegeneration     DerivedField = "staminaRegeneration"
	FieldCarryCapacity           DerivedField = "carryCapacity"
	FieldRunSpeed                DerivedField = "runSpeed"
	FieldJumpHeight              DerivedField = "jumpHeight"
	FieldJumpDistance            DerivedField = "jumpDistance"
	FieldSkillPointsTotal        DerivedField = "skillPointsTotal"
	FieldAdvantagePointsTotal    DerivedField = "advantagePointsTotal"
)

// AllDerivedFields lists every field a GM may adjust
var AllDerivedFields = []DerivedField{
	FieldAttack,
	FieldMagicAttack,
	FieldAccuracy,
	FieldDodge,
	FieldPhysicalDamageReduction,
	FieldMagicDamageReduction,
	FieldHealthTotal,
	FieldManaTotal,
	FieldStaminaTotal,
	FieldHealthRegeneration,
	FieldManaRegeneration,
	FieldStaminaRegeneration,
	FieldCarryCapacity,
	FieldRunSpeed,
	FieldJumpHeight,
	FieldJumpDistance,
	FieldSkillPointsTotal,
	FieldAdvantagePointsTotal,
}

var derivedFieldSet = func() map[DerivedField]struct{} {
	m := make(map[DerivedField]struct{}, len(AllDerivedFields))
	for _, f := range AllDerivedFields {
		m[f] = struct{}{}
	}
	return m
}()

// Valid reports whether f is a known derived field
func (f DerivedField) Valid() bool {
	_, ok := derivedFieldSet[f]
	return ok
}

// Value reads the current derived value of f from the record
func (r *Record) Value(f DerivedField) float64 {
	switch f {
	case FieldAttack:
		return float64(r.Attack)
	case FieldMagicAttack:
		return float64(r.MagicAttack)
	case FieldAccuracy:
		return float64(r.Accuracy)
	case FieldDodge:
		return float64(r.Dodge)
	case FieldPhysicalDamageReduction:
		return float64(r.PhysicalDamageReduction)
	case FieldMagicDamageReduction:
		return float64(r.MagicDamageReduction)
	case FieldHealthTotal:
		return r.Health.Total
	case FieldManaTotal:
		return r.Mana.Total
	case FieldStaminaTotal:
		return r.Stamina.Total
	case FieldHealthRegeneration:
		return r.Health.Regeneration
	case FieldManaRegeneration:
		return r.Mana.Regeneration
	case FieldStaminaRegeneration:
		return r.Stamina.Regeneration
	case FieldCarryCapacity:
		return float64(r.CarryCapacity)
	case FieldRunSpeed:
		return float64(r.RunSpeed)
	case FieldJumpHeight:
		return float64(r.JumpHeight)
	case FieldJumpDistance:
		return float64(r.JumpDistance)
	case FieldSkillPointsTotal:
		return float64(r.SkillPointsTotal)
	case FieldAdvantagePointsTotal:
		return float64(r.AdvantagePointsTotal)
	}
	return 0
}

// Adjustment returns the GM delta stored for f, 0 when absent
func (r *Record) Adjustment(f DerivedField) int {
	return r.GMAdjustments[f]
}
