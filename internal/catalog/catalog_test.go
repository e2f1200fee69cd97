package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

type CatalogTestSuite struct {
	suite.Suite
	cat *catalog.Catalog
}

func TestCatalogSuite(t *testing.T) {
	suite.Run(t, new(CatalogTestSuite))
}

func (s *CatalogTestSuite) SetupTest() {
	cat, err := catalog.Default()
	s.Require().NoError(err)
	s.cat = cat
}

func (s *CatalogTestSuite) TestEmbeddedData() {
	s.Len(s.cat.Levels, 31)
	s.Equal(30, s.cat.MaxLevel())
	s.Equal(5, s.cat.Rules.CarryCapacityBase)
	s.Equal(3, s.cat.Rules.MaxDisadvantages)

	combo, ok := s.cat.Advantage(s.cat.Rules.ComboAdvantage)
	s.Require().True(ok)
	s.Equal("Combo Físico", combo.Name)

	restricted, ok := s.cat.Advantage("linhagem_nobre")
	s.Require().True(ok)
	s.True(restricted.OnlyAtLevelZero)

	elfo, ok := s.cat.Race("elfo")
	s.Require().True(ok)
	s.Contains(elfo.GrantedAdvantages, catalog.AdvantageID("visao_no_escuro"))

	mago, ok := s.cat.Class("mago")
	s.Require().True(ok)
	missil, ok := mago.Ability("missil_arcano")
	s.Require().True(ok)
	s.Equal(catalog.AbilityTypeAttack, missil.Type)
	s.Equal(4.0, missil.ManaCost)

	_, ok = s.cat.Archetype("ladino")
	s.True(ok)
}

func (s *CatalogTestSuite) TestLevelForBoundaries() {
	row := s.cat.Levels[5]

	s.Equal(row.Level, s.cat.LevelFor(row.ExperienceThreshold).Level)
	s.Equal(row.Level-1, s.cat.LevelFor(row.ExperienceThreshold-1).Level)
	s.Equal(0, s.cat.LevelFor(0).Level)
	s.Equal(0, s.cat.LevelFor(-20).Level)
	s.Equal(30, s.cat.LevelFor(1_000_000).Level)
}

func (s *CatalogTestSuite) TestRowClamps() {
	s.Equal(0, s.cat.Row(-3).Level)
	s.Equal(30, s.cat.Row(99).Level)
	s.Equal(12, s.cat.Row(12).Level)
}

func (s *CatalogTestSuite) TestLoadRejectsBadTables() {
	testCases := []struct {
		name string
		doc  string
	}{
		{
			name: "non increasing thresholds",
			doc: `
rules: {carry_capacity_step: 5, max_disadvantages: 3}
levels:
  - {level: 0, experience: 0}
  - {level: 1, experience: 0}
`,
		},
		{
			name: "unknown granted advantage",
			doc: `
rules: {carry_capacity_step: 5, max_disadvantages: 3}
levels: [{level: 0, experience: 0}]
races: [{id: elfo, granted_advantages: [voar]}]
`,
		},
		{
			name: "unknown ability type",
			doc: `
rules: {carry_capacity_step: 5, max_disadvantages: 3}
levels: [{level: 0, experience: 0}]
classes: [{id: bardo, abilities: [{id: canto, type: song}]}]
`,
		},
		{
			name: "ability costing more than one soul",
			doc: `
rules: {carry_capacity_step: 5, max_disadvantages: 3}
levels: [{level: 0, experience: 0}]
classes: [{id: bardo, abilities: [{id: canto, type: utility, soul_cost: 2}]}]
`,
		},
		{
			name: "duplicate advantage id",
			doc: `
rules: {carry_capacity_step: 5, max_disadvantages: 3}
levels: [{level: 0, experience: 0}]
advantages: [{id: sorte}, {id: sorte}]
`,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := catalog.Load([]byte(tc.doc))
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *CatalogTestSuite) TestLoadMalformedYAML() {
	_, err := catalog.Load([]byte("levels: [unterminated"))
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}
