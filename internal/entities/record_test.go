package entities_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

type RecordTestSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordTestSuite))
}

func (s *RecordTestSuite) TestCloneIsDeep() {
	rec := entities.NewRecord("f1", "Aria")
	rec.Inventory = append(rec.Inventory, entities.Item{Name: "corda", Weight: 1})
	rec.SelectedAdvantages.Add("sorte")
	rec.GMAdjustments = map[entities.DerivedField]int{entities.FieldAttack: 2}

	clone := rec.Clone()
	clone.Inventory[0].Name = "tocha"
	clone.SelectedAdvantages.Add("carisma")
	clone.GMAdjustments[entities.FieldAttack] = 9

	s.Equal("corda", rec.Inventory[0].Name)
	s.False(rec.SelectedAdvantages.Has("carisma"))
	s.Equal(2, rec.GMAdjustments[entities.FieldAttack])
}

func (s *RecordTestSuite) TestGetType() {
	rec := entities.NewRecord("f1", "Aria")
	s.Equal("ficha", rec.GetType())
	rec.IsNPC = true
	s.Equal("npc", rec.GetType())
	s.Equal("f1", rec.GetID())
}

func (s *RecordTestSuite) TestSetSerializesSorted() {
	set := entities.NewSet[catalog.AdvantageID]("sorte", "carisma", "ambidestria")

	data, err := json.Marshal(set)
	s.Require().NoError(err)
	s.JSONEq(`["ambidestria","carisma","sorte"]`, string(data))

	var back entities.Set[catalog.AdvantageID]
	s.Require().NoError(json.Unmarshal(data, &back))
	s.Equal(set, back)
}

func (s *RecordTestSuite) TestAttributesHelpers() {
	a := entities.Attributes{Strength: -2, Dexterity: 4, Agility: 1}
	s.Equal(3, a.Sum())

	nn := a.NonNegative()
	s.Equal(0, nn.Strength)
	s.Equal(4, nn.Dexterity)

	m := nn.Max(entities.Attributes{Strength: 3, Dexterity: 1})
	s.Equal(3, m.Strength)
	s.Equal(4, m.Dexterity)
}

func TestDecode(t *testing.T) {
	t.Run("rejects non objects", func(t *testing.T) {
		for _, in := range []string{`[]`, `"x"`, `42`, `not json`, ``} {
			_, err := entities.Decode([]byte(in))
			require.Error(t, err, in)
			assert.True(t, errors.IsInvalidArgument(err), in)
		}
	})

	t.Run("raises values below their locks", func(t *testing.T) {
		rec, err := entities.Decode([]byte(`{
			"displayName": "Aria",
			"attributes": {"strength": 2, "dexterity": 5},
			"lockedAttributes": {"strength": 10, "dexterity": 1},
			"experience": 50,
			"lockedExperience": 400
		}`))
		require.NoError(t, err)

		assert.Equal(t, 10, rec.Attributes.Strength)
		assert.Equal(t, 5, rec.Attributes.Dexterity)
		assert.Equal(t, 10, rec.LockedAttributes.Strength)
		assert.Equal(t, 400, rec.Experience)
	})

	t.Run("coerces wrong types to defaults", func(t *testing.T) {
		rec, err := entities.Decode([]byte(`{
			"id": "f9",
			"nomeFicha": "Velha",
			"attributes": {"strength": "dez", "dexterity": 7},
			"health": {"current": "cheio", "total": 80},
			"inventory": [{"name": "espada", "weight": 3}, "lixo"],
			"selectedAdvantages": ["sorte", 3, ""],
			"gmAdjustments": {"attack": 2, "dodge": 0, "bogus": 5},
			"experience": null
		}`))
		require.NoError(t, err)

		assert.Equal(t, "f9", rec.ID)
		assert.Equal(t, "Velha", rec.DisplayName)
		assert.Equal(t, 0, rec.Attributes.Strength)
		assert.Equal(t, 7, rec.Attributes.Dexterity)
		assert.Equal(t, float64(0), rec.Health.Current)
		assert.Equal(t, float64(80), rec.Health.Total)
		require.Len(t, rec.Inventory, 1)
		assert.Equal(t, "espada", rec.Inventory[0].Name)
		assert.Equal(t, []catalog.AdvantageID{"sorte"}, rec.SelectedAdvantages.Sorted())
		assert.Equal(t, map[entities.DerivedField]int{entities.FieldAttack: 2}, rec.GMAdjustments)
		assert.Equal(t, 0, rec.Experience)
		assert.NotNil(t, rec.Skills)
	})

	t.Run("round trips a marshaled record", func(t *testing.T) {
		rec := entities.NewRecord("f1", "Aria")
		rec.Attributes = entities.Attributes{Strength: 5, Intelligence: 10}
		rec.SelectedRace = "elfo"
		rec.Skills = append(rec.Skills, entities.Skill{Name: "Míssil", ManaCost: 4, Category: entities.SkillCategoryDamage, SourceAbility: "missil_arcano"})

		data, err := json.Marshal(rec)
		require.NoError(t, err)

		back, err := entities.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, rec, back)
	})
}

func TestDecodeCollection(t *testing.T) {
	got := entities.DecodeCollection([]byte(`{
		"a": {"displayName": "A"},
		"b": {"id": "b", "displayName": "B"},
		"c": 12
	}`))

	require.Len(t, got, 2)
	assert.Equal(t, "A", got["a"].DisplayName)
	assert.Equal(t, "b", got["b"].ID)

	assert.Empty(t, entities.DecodeCollection([]byte(`[1,2]`)))
}

func TestDisplayNameOf(t *testing.T) {
	name, ok := entities.DisplayNameOf([]byte(`{"displayName": "  Aria "}`))
	assert.True(t, ok)
	assert.Equal(t, "Aria", name)

	name, ok = entities.DisplayNameOf([]byte(`{"nomeFicha": "Velha"}`))
	assert.True(t, ok)
	assert.Equal(t, "Velha", name)

	_, ok = entities.DisplayNameOf([]byte(`{"displayName": 3}`))
	assert.False(t, ok)
}
