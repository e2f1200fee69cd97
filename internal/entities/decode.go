package entities

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// legacyNameField is the display name key used by sheets exported before
// records carried displayName
const legacyNameField = "nomeFicha"

// Decode reads a record leniently. Persisted or imported data may have been
// hand edited, so every field is read on its own: a value of the wrong type
// becomes its zero default instead of failing the whole document. Only a
// document that is not a JSON object is an error.
func Decode(data []byte) (*Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.InvalidArgument("record is not valid JSON")
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, errors.InvalidArgument("record must be a JSON object")
	}
	return decodeResult(doc), nil
}

// DisplayNameOf returns the display name a document declares, looking at
// displayName first and then the legacy nomeFicha key
func DisplayNameOf(data []byte) (string, bool) {
	doc := gjson.ParseBytes(data)
	for _, key := range []string{"displayName", legacyNameField} {
		v := doc.Get(key)
		if v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String()), true
		}
	}
	return "", false
}

// DecodeCollection reads an id to record map. Entries that are not objects
// are dropped; entries without an id take their key.
func DecodeCollection(data []byte) map[string]*Record {
	out := make(map[string]*Record)
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return out
	}

	doc.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			return true
		}
		rec := decodeResult(value)
		if rec.ID == "" {
			rec.ID = key.String()
		}
		out[rec.ID] = rec
		return true
	})

	return out
}

func decodeResult(doc gjson.Result) *Record {
	rec := NewRecord(str(doc, "id"), "")
	rec.DisplayName = str(doc, "displayName")
	if rec.DisplayName == "" {
		rec.DisplayName = str(doc, legacyNameField)
	}
	rec.IsNPC = doc.Get("isNpc").Bool()

	rec.Profile = Profile{
		CharacterName: str(doc, "profile.characterName"),
		Description:   str(doc, "profile.description"),
		Image:         str(doc, "profile.image"),
		Notes:         str(doc, "profile.notes"),
	}

	rec.Attributes = attributes(doc.Get("attributes"))
	rec.LockedAttributes = attributes(doc.Get("lockedAttributes"))

	rec.Attack = integer(doc, "attack")
	rec.MagicAttack = integer(doc, "magicAttack")
	rec.Accuracy = integer(doc, "accuracy")
	rec.Dodge = integer(doc, "dodge")
	rec.PhysicalDamageReduction = integer(doc, "physicalDamageReduction")
	rec.MagicDamageReduction = integer(doc, "magicDamageReduction")

	rec.Health = resource(doc.Get("health"))
	rec.Mana = resource(doc.Get("mana"))
	rec.Stamina = resource(doc.Get("stamina"))

	rec.MainHand = weapon(doc.Get("mainHand"))
	rec.OffHand = weapon(doc.Get("offHand"))

	doc.Get("inventory").ForEach(func(_, item gjson.Result) bool {
		if item.IsObject() {
			rec.Inventory = append(rec.Inventory, Item{
				Name:   str(item, "name"),
				Weight: number(item, "weight"),
			})
		}
		return true
	})

	doc.Get("skills").ForEach(func(_, skill gjson.Result) bool {
		if skill.IsObject() {
			rec.Skills = append(rec.Skills, Skill{
				Name:          str(skill, "name"),
				ManaCost:      number(skill, "manaCost"),
				StaminaCost:   number(skill, "staminaCost"),
				Effect:        str(skill, "effect"),
				Category:      SkillCategory(str(skill, "category")),
				SourceAbility: catalog.AbilityID(str(skill, "sourceAbility")),
			})
		}
		return true
	})

	rec.SelectedAdvantages = idSet[catalog.AdvantageID](doc.Get("selectedAdvantages"))
	rec.SelectedDisadvantages = idSet[catalog.DisadvantageID](doc.Get("selectedDisadvantages"))
	rec.SelectedRace = catalog.RaceID(str(doc, "selectedRace"))
	rec.SelectedClass = catalog.ClassID(str(doc, "selectedClass"))
	rec.AcquiredClassAbilities = idSet[catalog.AbilityID](doc.Get("acquiredClassAbilities"))
	rec.AbilitiesPaidWithAdvantagePoints = idSet[catalog.AbilityID](doc.Get("abilitiesPaidWithAdvantagePoints"))

	rec.SoulsTotal = integer(doc, "soulsTotal")
	rec.SoulsSpent = integer(doc, "soulsSpent")

	rec.Experience = integer(doc, "experience")
	rec.LockedExperience = integer(doc, "lockedExperience")

	// Saved values never sit below their locks
	rec.Attributes = rec.Attributes.Max(rec.LockedAttributes)
	rec.Experience = max(rec.Experience, rec.LockedExperience)

	doc.Get("gmAdjustments").ForEach(func(key, value gjson.Result) bool {
		field := DerivedField(key.String())
		delta := int(value.Int())
		if field.Valid() && delta != 0 {
			if rec.GMAdjustments == nil {
				rec.GMAdjustments = make(map[DerivedField]int)
			}
			rec.GMAdjustments[field] = delta
		}
		return true
	})

	rec.CreatedAt = doc.Get("createdAt").Int()
	rec.UpdatedAt = doc.Get("updatedAt").Int()

	return rec
}

func str(doc gjson.Result, path string) string {
	v := doc.Get(path)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}

func integer(doc gjson.Result, path string) int {
	return int(doc.Get(path).Int())
}

func number(doc gjson.Result, path string) float64 {
	f := doc.Get(path).Float()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func attributes(doc gjson.Result) Attributes {
	var a Attributes
	for _, attr := range AllAttributes {
		a.Set(attr, integer(doc, string(attr)))
	}
	return a
}

func resource(doc gjson.Result) Resource {
	return Resource{
		Current:      number(doc, "current"),
		Total:        number(doc, "total"),
		Regeneration: number(doc, "regeneration"),
	}
}

func weapon(doc gjson.Result) Weapon {
	return Weapon{
		Name:        str(doc, "name"),
		AttackBonus: integer(doc, "attackBonus"),
		MagicBonus:  integer(doc, "magicBonus"),
	}
}

func idSet[T ~string](doc gjson.Result) Set[T] {
	s := Set[T]{}
	doc.ForEach(func(_, v gjson.Result) bool {
		if v.Type == gjson.String && v.String() != "" {
			s.Add(T(v.String()))
		}
		return true
	})
	return s
}
