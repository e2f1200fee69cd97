package testutils

import (
	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/engine"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
)

// TestRecordName is the display name of the default fixture
const TestRecordName = "Aria"

// CreateTestRecord returns a derived level zero ficha with a few points
// spent and saved
func CreateTestRecord(id string) *entities.Record {
	rec := entities.NewRecord(id, TestRecordName)
	rec.Profile.CharacterName = "Aria Vento"
	rec.Attributes = entities.Attributes{Strength: 8, Dexterity: 6, Agility: 6, Constitution: 5, Intelligence: 2}
	rec.LockedAttributes = rec.Attributes
	rec.MainHand = entities.Weapon{Name: "Espada curta", AttackBonus: 2}
	rec.Inventory = []entities.Item{{Name: "Corda", Weight: 1.5}, {Name: "Tocha", Weight: 0.5}}
	rec.CreatedAt = 1700000000000
	rec.UpdatedAt = rec.CreatedAt
	return engine.Derive(rec, catalog.MustDefault())
}

// CreateTestRecordAtLevel returns the default fixture with experience set to
// the threshold of level
func CreateTestRecordAtLevel(id string, level int) *entities.Record {
	rec := CreateTestRecord(id)
	row := catalog.MustDefault().Row(level)
	rec.Experience = row.ExperienceThreshold
	rec.LockedExperience = row.ExperienceThreshold
	rec.SoulsTotal = row.Level
	return engine.Derive(rec, catalog.MustDefault())
}
