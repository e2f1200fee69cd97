package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/ledger"
)

type LedgerTestSuite struct {
	suite.Suite
	ledger *ledger.Ledger
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerTestSuite))
}

func (s *LedgerTestSuite) SetupTest() {
	l, err := ledger.New(&ledger.Config{Catalog: catalog.MustDefault()})
	s.Require().NoError(err)
	s.ledger = l
}

func (s *LedgerTestSuite) fresh() *entities.Record {
	return s.ledger.Derive(entities.NewRecord("f1", "Aria"))
}

func (s *LedgerTestSuite) TestNewRequiresCatalog() {
	_, err := ledger.New(&ledger.Config{})
	s.Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *LedgerTestSuite) TestLevelForBoundaries() {
	s.Equal(0, s.ledger.LevelFor(0).Level)
	s.Equal(0, s.ledger.LevelFor(99).Level)
	s.Equal(1, s.ledger.LevelFor(100).Level)
	s.Equal(1, s.ledger.LevelFor(299).Level)
	s.Equal(2, s.ledger.LevelFor(300).Level)
}

func (s *LedgerTestSuite) TestExperienceGainLevelsUpAndGrantsSouls() {
	rec := s.fresh()

	out, result, err := s.ledger.ApplyExperienceGain(rec, 320)
	s.Require().NoError(err)

	s.True(result.LeveledUp)
	s.Equal(0, result.PreviousLevel)
	s.Equal(2, result.NewLevel)
	s.Equal(2, result.SoulsGranted)
	s.Equal(320, out.Experience)
	s.Equal(320, out.LockedExperience)
	s.Equal(2, out.Level)
	s.Equal(2, out.SoulsAvailable)

	s.Equal(0, rec.Experience, "input must not change")

	out, result, err = s.ledger.ApplyExperienceGain(out, 10)
	s.Require().NoError(err)
	s.False(result.LeveledUp)
	s.Equal(330, out.LockedExperience)
}

func (s *LedgerTestSuite) TestExperienceGainRejectsNonPositive() {
	rec := s.fresh()
	for _, delta := range []int{0, -5} {
		_, _, err := s.ledger.ApplyExperienceGain(rec, delta)
		s.Error(err)
		s.True(errors.IsInvalidArgument(err))
	}
}

func (s *LedgerTestSuite) TestExperienceMonotonicity() {
	rec, _, err := s.ledger.ApplyExperienceGain(s.fresh(), 500)
	s.Require().NoError(err)

	lower := 200
	_, _, err = s.ledger.ApplyUpdate(rec, ledger.Update{Experience: &lower}, true)
	s.Error(err)
	s.True(errors.IsFailedPrecondition(err))

	higher := 700
	out, result, err := s.ledger.ApplyUpdate(rec, ledger.Update{Experience: &higher}, false)
	s.Require().NoError(err)
	s.Equal(700, out.LockedExperience)
	s.True(result.LeveledUp)
	s.Equal(3, out.Level)
}

func (s *LedgerTestSuite) TestApplyUpdateRaisesLocks() {
	attrs := entities.Attributes{Strength: 10, Constitution: 5}
	out, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{Attributes: &attrs}, false)
	s.Require().NoError(err)

	s.Equal(attrs, out.LockedAttributes)
	s.Equal(15, out.SkillPointsAvailable)

	lower := entities.Attributes{Strength: 9, Constitution: 5}
	_, _, err = s.ledger.ApplyUpdate(out, ledger.Update{Attributes: &lower}, true)
	s.Error(err)
	s.True(errors.IsFailedPrecondition(err))
}

func (s *LedgerTestSuite) TestApplyUpdateBudget() {
	over := entities.Attributes{Strength: 31}

	_, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{Attributes: &over}, false)
	s.Error(err)
	s.True(errors.IsFailedPrecondition(err))

	out, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{Attributes: &over}, true)
	s.Require().NoError(err)
	s.Equal(-1, out.SkillPointsAvailable)
}

func (s *LedgerTestSuite) TestApplyUpdateClampsCurrents() {
	health := 9999.0
	out, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{HealthCurrent: &health}, false)
	s.Require().NoError(err)
	s.Equal(out.Health.Total, out.Health.Current)
}

func (s *LedgerTestSuite) TestApplyUpdateRejectsBlankName() {
	blank := "   "
	_, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{DisplayName: &blank}, false)
	s.True(errors.IsInvalidArgument(err))
}

func (s *LedgerTestSuite) TestSoulsOnlyInGMMode() {
	souls := 3
	_, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{SoulsTotal: &souls}, false)
	s.True(errors.IsPermissionDenied(err))

	out, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{SoulsTotal: &souls}, true)
	s.Require().NoError(err)
	s.Equal(3, out.SoulsAvailable)
}

func (s *LedgerTestSuite) TestGMAdjustmentRoundTrip() {
	attrs := entities.Attributes{Strength: 12, Agility: 9}
	base, _, err := s.ledger.ApplyUpdate(s.fresh(), ledger.Update{Attributes: &attrs}, false)
	s.Require().NoError(err)

	for _, field := range entities.AllDerivedFields {
		adjusted, err := s.ledger.SetGMAdjustment(base, field, 5)
		s.Require().NoError(err)
		s.InDelta(base.Value(field)+5, adjusted.Value(field), 1e-9, field)

		restored, err := s.ledger.SetGMAdjustment(adjusted, field, 0)
		s.Require().NoError(err)
		s.Equal(base.Value(field), restored.Value(field), field)
		s.Nil(restored.GMAdjustments, field)
	}

	_, err = s.ledger.SetGMAdjustment(base, "bogus", 1)
	s.True(errors.IsInvalidArgument(err))
}

func (s *LedgerTestSuite) TestClassAbilityPaymentPreference() {
	rec := s.fresh()
	rec.Experience = 100
	rec.SelectedClass = "mago"
	rec.SoulsTotal = 1
	rec.GMAdjustments = map[entities.DerivedField]int{entities.FieldAdvantagePointsTotal: -8}
	rec = s.ledger.Derive(rec)
	s.Require().Equal(0, rec.AdvantagePointsAvailable)

	out, result, err := s.ledger.AcquireClassAbility(rec, "missil_arcano")
	s.Require().NoError(err)
	s.True(result.PaidWithSoul)
	s.Equal(0, out.SoulsAvailable)
	s.Equal(0, out.AdvantagePointsAvailable)

	rec.SoulsTotal = 0
	rec.GMAdjustments[entities.FieldAdvantagePointsTotal] = -3
	rec = s.ledger.Derive(rec)
	s.Require().Equal(5, rec.AdvantagePointsAvailable)

	out, result, err = s.ledger.AcquireClassAbility(rec, "missil_arcano")
	s.Require().NoError(err)
	s.False(result.PaidWithSoul)
	s.Equal(3, result.AdvantagePointsSpent)
	s.Equal(2, out.AdvantagePointsAvailable)
	s.True(out.AbilitiesPaidWithAdvantagePoints.Has("missil_arcano"))

	s.Require().Len(out.Skills, 1)
	s.Equal(entities.SkillCategoryDamage, out.Skills[0].Category)
	s.Equal(float64(4), out.Skills[0].ManaCost)
}

func (s *LedgerTestSuite) TestClassAbilityRejections() {
	rec := s.fresh()

	_, _, err := s.ledger.AcquireClassAbility(rec, "missil_arcano")
	s.True(errors.IsFailedPrecondition(err), "no class")

	rec.SelectedClass = "mago"
	_, _, err = s.ledger.AcquireClassAbility(rec, "missil_arcano")
	s.True(errors.IsFailedPrecondition(err), "level too low")

	rec.Experience = 100
	rec.GMAdjustments = map[entities.DerivedField]int{entities.FieldAdvantagePointsTotal: -8}
	_, _, err = s.ledger.AcquireClassAbility(rec, "missil_arcano")
	s.True(errors.IsFailedPrecondition(err), "no souls or points")

	_, _, err = s.ledger.AcquireClassAbility(rec, "golpe_poderoso")
	s.True(errors.IsInvalidArgument(err), "other class ability")
}

func (s *LedgerTestSuite) TestPassiveAbilityAddsNoSkill() {
	rec := s.fresh()
	rec.Experience = 1500
	rec.SelectedClass = "guerreiro"
	rec.SoulsTotal = 1

	out, _, err := s.ledger.AcquireClassAbility(rec, "pele_calejada")
	s.Require().NoError(err)
	s.True(out.AcquiredClassAbilities.Has("pele_calejada"))
	s.Empty(out.Skills)

	_, _, err = s.ledger.AcquireClassAbility(out, "pele_calejada")
	s.True(errors.IsAlreadyExists(err))
}

func (s *LedgerTestSuite) TestSkillCategoryMapping() {
	s.Equal(entities.SkillCategoryDamage, ledger.SkillCategoryFor(catalog.AbilityTypeAttack))
	s.Equal(entities.SkillCategoryBuff, ledger.SkillCategoryFor(catalog.AbilityTypeDefense))
	s.Equal(entities.SkillCategoryUtility, ledger.SkillCategoryFor(catalog.AbilityTypeUtility))
	s.Equal(entities.SkillCategoryUtility, ledger.SkillCategoryFor(catalog.AbilityTypePassive))
}

func (s *LedgerTestSuite) TestSelectClassLockedByAbilities() {
	rec, err := s.ledger.SelectClass(s.fresh(), "mago")
	s.Require().NoError(err)

	rec, err = s.ledger.SelectClass(rec, "ladino")
	s.Require().NoError(err)
	s.Equal(catalog.ClassID("ladino"), rec.SelectedClass)

	rec.AcquiredClassAbilities.Add("ataque_furtivo")
	_, err = s.ledger.SelectClass(rec, "mago")
	s.True(errors.IsFailedPrecondition(err))

	_, err = s.ledger.SelectClass(s.fresh(), "bardo")
	s.True(errors.IsInvalidArgument(err))
}

func (s *LedgerTestSuite) TestExcludeItems() {
	rec := s.fresh()
	rec.SelectedAdvantages.Add("sorte")
	rec.SelectedDisadvantages.Add("covardia")
	rec.SelectedRace = "anao"
	rec = s.ledger.Derive(rec)
	// 6 - 2 + 2 - 2
	s.Require().Equal(4, rec.AdvantagePointsAvailable)

	out, err := s.ledger.ExcludeItems(rec, ledger.Exclusion{Advantages: []catalog.AdvantageID{"sorte"}, RemoveRace: true})
	s.Require().NoError(err)
	s.False(out.SelectedAdvantages.Has("sorte"))
	s.Equal(catalog.RaceID(""), out.SelectedRace)
	s.Equal(8, out.AdvantagePointsAvailable)

	_, err = s.ledger.ExcludeItems(rec, ledger.Exclusion{Disadvantages: []catalog.DisadvantageID{"fobia"}})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.ledger.ExcludeItems(rec, ledger.Exclusion{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *LedgerTestSuite) TestExcludeRejectsDebt() {
	rec := s.fresh()
	rec.SelectedDisadvantages.Add("fragil")
	rec.SelectedAdvantages.Add("pele_de_ferro")
	rec.SelectedAdvantages.Add("sorte")
	rec = s.ledger.Derive(rec)
	// 6 + 3 - 5 - 2
	s.Require().Equal(2, rec.AdvantagePointsAvailable)

	_, err := s.ledger.ExcludeItems(rec, ledger.Exclusion{Disadvantages: []catalog.DisadvantageID{"fragil"}})
	s.True(errors.IsFailedPrecondition(err))
}

func (s *LedgerTestSuite) TestResetPoints() {
	rec := s.fresh()
	rec.Experience = 100
	rec.Attributes = entities.Attributes{Strength: 10}
	rec.LockedAttributes = rec.Attributes
	rec.SelectedClass = "mago"
	rec.SelectedRace = "elfo"
	rec.SoulsTotal = 1
	rec.Skills = []entities.Skill{{Name: "Assobio"}}
	rec, _, err := s.ledger.AcquireClassAbility(s.ledger.Derive(rec), "missil_arcano")
	s.Require().NoError(err)
	s.Require().Len(rec.Skills, 2)

	out := s.ledger.ResetPoints(rec)

	s.Equal(entities.Attributes{}, out.Attributes)
	s.Equal(entities.Attributes{}, out.LockedAttributes)
	s.Empty(out.AcquiredClassAbilities)
	s.Equal(catalog.RaceID(""), out.SelectedRace)
	s.Equal(1, out.SoulsAvailable)
	s.Equal(catalog.ClassID("mago"), out.SelectedClass)
	s.Equal(100, out.Experience)
	s.Require().Len(out.Skills, 1)
	s.Equal("Assobio", out.Skills[0].Name)
}

func (s *LedgerTestSuite) TestResetRecordKeepsIdentity() {
	rec := s.fresh()
	rec.Experience = 5000
	rec.CreatedAt = 42

	out := s.ledger.ResetRecord(rec)

	s.Equal("f1", out.ID)
	s.Equal("Aria", out.DisplayName)
	s.Equal(int64(42), out.CreatedAt)
	s.Equal(0, out.Level)
}
