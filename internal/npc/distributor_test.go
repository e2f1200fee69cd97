package npc_test

import (
	"errors"
	"testing"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/npc"
)

// fixedRoller always rolls the same face, clamped to the die size
type fixedRoller struct {
	face int
}

func (r *fixedRoller) Roll(size int) (int, error) {
	return min(r.face, size), nil
}

func (r *fixedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = min(r.face, size)
	}
	return out, nil
}

type failingRoller struct{}

func (failingRoller) Roll(int) (int, error)          { return 0, errors.New("dice jammed") }
func (failingRoller) RollN(int, int) ([]int, error) { return nil, errors.New("dice jammed") }

type DistributorTestSuite struct {
	suite.Suite
	cat *catalog.Catalog
}

func TestDistributorSuite(t *testing.T) {
	suite.Run(t, new(DistributorTestSuite))
}

func (s *DistributorTestSuite) SetupTest() {
	s.cat = catalog.MustDefault()
}

func (s *DistributorTestSuite) distributor(roller dice.Roller) *npc.Distributor {
	d, err := npc.New(&npc.Config{Catalog: s.cat, Roller: roller})
	s.Require().NoError(err)
	return d
}

func (s *DistributorTestSuite) TestConfigValidation() {
	_, err := npc.New(&npc.Config{Catalog: s.cat})
	s.Error(err)
	_, err = npc.New(nil)
	s.Error(err)
}

func (s *DistributorTestSuite) TestDeterministicWarrior() {
	d := s.distributor(&fixedRoller{face: 1})

	rec, err := d.Generate(&npc.GenerateInput{ID: "npc_1", Archetype: "guerreiro"})
	s.Require().NoError(err)

	s.Equal(entities.Attributes{Strength: 13, Dexterity: 4, Agility: 4, Constitution: 9}, rec.Attributes)
	s.Equal(rec.Attributes, rec.LockedAttributes)
	s.Equal(0, rec.SkillPointsAvailable)
	s.Equal(catalog.RaceID("humano"), rec.SelectedRace)
	s.Empty(rec.SelectedDisadvantages)
	s.Equal([]catalog.AdvantageID{"combo_fisico", "sentidos_agucados"}, rec.SelectedAdvantages.Sorted())
	s.Equal(0, rec.AdvantagePointsAvailable)

	s.True(rec.IsNPC)
	s.Equal("npc_1", rec.ID)
	s.Equal("Guerreiro nível 0", rec.DisplayName)
	s.Equal(rec.Health.Total, rec.Health.Current)
	s.Equal(rec.Mana.Total, rec.Mana.Current)
	s.Equal(rec.Stamina.Total, rec.Stamina.Current)
}

func (s *DistributorTestSuite) TestMultiplesMoveRemainderToHeaviestFreeAttribute() {
	d := s.distributor(&fixedRoller{face: 1})

	rec, err := d.Generate(&npc.GenerateInput{Archetype: "tanque"})
	s.Require().NoError(err)

	s.Equal(entities.Attributes{Strength: 10, Dexterity: 3, Agility: 2, Constitution: 15}, rec.Attributes)
}

func (s *DistributorTestSuite) TestDisadvantagesAreDistinct() {
	d := s.distributor(&fixedRoller{face: 3})

	rec, err := d.Generate(&npc.GenerateInput{Level: 4, Archetype: "ladino"})
	s.Require().NoError(err)

	s.Len(rec.SelectedDisadvantages, 2)
	s.GreaterOrEqual(rec.AdvantagePointsAvailable, 0)
}

func (s *DistributorTestSuite) TestRollerFailureFallsBackToFirstCandidate() {
	d := s.distributor(failingRoller{})

	rec, err := d.Generate(&npc.GenerateInput{Level: 2, Archetype: "mago"})
	s.Require().NoError(err)

	s.Equal(catalog.RaceID("humano"), rec.SelectedRace)
	s.Empty(rec.SelectedDisadvantages)
	s.Equal(0, rec.Attributes.Intelligence%5)
	s.GreaterOrEqual(rec.AdvantagePointsAvailable, 0)
}

func (s *DistributorTestSuite) TestUnknownArchetype() {
	d := s.distributor(&fixedRoller{face: 1})

	_, err := d.Generate(&npc.GenerateInput{Archetype: "dragao"})
	s.Error(err)
}

func (s *DistributorTestSuite) TestLevelThirtyTerminatesWithinBudget() {
	d := s.distributor(dice.DefaultRoller)

	for _, archetype := range s.cat.Archetypes {
		for i := 0; i < 25; i++ {
			rec, err := d.Generate(&npc.GenerateInput{Level: 30, Archetype: archetype.ID})
			s.Require().NoError(err)

			row := s.cat.Row(30)
			s.Equal(30, rec.Level)
			s.GreaterOrEqual(rec.AdvantagePointsAvailable, 0, archetype.ID)
			s.LessOrEqual(rec.Attributes.Sum(), row.SkillPoints, archetype.ID)
			s.LessOrEqual(len(rec.SelectedDisadvantages), s.cat.Rules.MaxDisadvantages)

			for attr, step := range archetype.Multiples {
				s.Zero(rec.Attributes.Get(entities.Attribute(attr))%step, "%s %s", archetype.ID, attr)
			}
		}
	}
}

func (s *DistributorTestSuite) TestLevelClampsToTable() {
	d := s.distributor(&fixedRoller{face: 2})

	rec, err := d.Generate(&npc.GenerateInput{Level: 99, Archetype: "guerreiro"})
	s.Require().NoError(err)
	s.Equal(s.cat.MaxLevel(), rec.Level)
	s.Equal(30, rec.SoulsAvailable)
}
