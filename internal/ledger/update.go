package ledger

import (
	"strings"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// Update is a partial change to a record. Nil fields are left as they are.
type Update struct {
	DisplayName *string
	Profile     *entities.Profile

	// Attributes are saved directly: the lock rises to the new values
	Attributes *entities.Attributes
	Experience *int

	MainHand  *entities.Weapon
	OffHand   *entities.Weapon
	Inventory []entities.Item
	Skills    []entities.Skill

	HealthCurrent  *float64
	ManaCurrent    *float64
	StaminaCurrent *float64

	// SoulsTotal may only be set in GM mode
	SoulsTotal *int
}

// ApplyUpdate applies a partial change and re-derives the record. Outside
// GM mode the new attributes must fit the skill point budget. Attributes
// and experience can never go below their locks.
func (l *Ledger) ApplyUpdate(rec *entities.Record, u Update, gmMode bool) (*entities.Record, ExperienceResult, error) {
	next := rec.Clone()

	if u.DisplayName != nil {
		name := strings.TrimSpace(*u.DisplayName)
		if name == "" {
			return nil, ExperienceResult{}, errors.InvalidArgument("display name is required")
		}
		next.DisplayName = name
	}
	if u.Profile != nil {
		next.Profile = *u.Profile
	}
	if u.MainHand != nil {
		next.MainHand = *u.MainHand
	}
	if u.OffHand != nil {
		next.OffHand = *u.OffHand
	}
	if u.Inventory != nil {
		next.Inventory = append([]entities.Item{}, u.Inventory...)
	}
	if u.Skills != nil {
		next.Skills = append([]entities.Skill{}, u.Skills...)
	}
	if u.HealthCurrent != nil {
		next.Health.Current = *u.HealthCurrent
	}
	if u.ManaCurrent != nil {
		next.Mana.Current = *u.ManaCurrent
	}
	if u.StaminaCurrent != nil {
		next.Stamina.Current = *u.StaminaCurrent
	}

	if u.SoulsTotal != nil {
		if !gmMode {
			return nil, ExperienceResult{}, errors.PermissionDenied("souls can only be set in GM mode")
		}
		if *u.SoulsTotal < next.SoulsSpent {
			return nil, ExperienceResult{}, errors.FailedPreconditionf(
				"souls total %d is below the %d already spent", *u.SoulsTotal, next.SoulsSpent)
		}
		next.SoulsTotal = *u.SoulsTotal
	}

	if u.Attributes != nil {
		if err := checkLocks(*u.Attributes, next.LockedAttributes); err != nil {
			return nil, ExperienceResult{}, err
		}
		next.Attributes = *u.Attributes
		next.LockedAttributes = next.LockedAttributes.Max(next.Attributes)
	}

	result := ExperienceResult{}
	if u.Experience != nil {
		if *u.Experience < next.LockedExperience {
			return nil, ExperienceResult{}, errors.FailedPreconditionf(
				"experience cannot go below the saved %d", next.LockedExperience)
		}
		next, result = l.setExperience(next, *u.Experience)
	}

	out := l.Derive(next)
	if u.Attributes != nil && !gmMode && out.SkillPointsAvailable < 0 {
		return nil, ExperienceResult{}, errors.FailedPreconditionf(
			"insufficient skill points: %d over budget", -out.SkillPointsAvailable)
	}

	return out, result, nil
}

func checkLocks(attrs, locks entities.Attributes) error {
	for _, attr := range entities.AllAttributes {
		if attrs.Get(attr) < 0 {
			return errors.InvalidArgumentf("%s cannot be negative", attr)
		}
		if attrs.Get(attr) < locks.Get(attr) {
			return errors.FailedPreconditionf(
				"cannot decrease %s below previously committed value %d", attr, locks.Get(attr))
		}
	}
	return nil
}
