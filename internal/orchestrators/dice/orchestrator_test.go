package dice_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/engine"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/gate"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-ficha/internal/store"
	"github.com/KirkDiggler/rpg-ficha/internal/testutils"
)

// scriptedRoller returns faces in order, wrapping around
type scriptedRoller struct {
	faces []int
	next  int
	calls int
}

func (r *scriptedRoller) Roll(size int) (int, error) {
	r.calls++
	face := r.faces[r.next%len(r.faces)]
	r.next++
	return min(face, size), nil
}

func (r *scriptedRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		face, _ := r.Roll(size)
		out[i] = face
	}
	return out, nil
}

type OrchestratorTestSuite struct {
	suite.Suite
	ctx    context.Context
	store  *store.Store
	roller *scriptedRoller
	orch   dice.Service
	now    time.Time
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorTestSuite))
}

func (s *OrchestratorTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	eng, err := engine.New(&engine.Config{Catalog: catalog.MustDefault()})
	s.Require().NoError(err)

	st, err := store.New(&store.Config{Engine: eng, Clock: &clock.Fixed{At: s.now}})
	s.Require().NoError(err)
	st.PutRecord(s.ctx, testutils.CreateTestRecord("f1"))
	s.store = st

	s.roller = &scriptedRoller{faces: []int{3, 4}}
	orch, err := dice.NewOrchestrator(&dice.Config{
		Store:        st,
		IDGenerator:  idgen.NewSequential("roll"),
		Clock:        &clock.Fixed{At: s.now},
		Gate:         gate.New(""),
		Roller:       s.roller,
		HistoryLimit: 3,
	})
	s.Require().NoError(err)
	s.orch = orch
}

func (s *OrchestratorTestSuite) TestConfigValidation() {
	_, err := dice.NewOrchestrator(nil)
	s.True(errors.IsInvalidArgument(err))

	_, err = dice.NewOrchestrator(&dice.Config{})
	s.Error(err)
	s.Contains(err.Error(), "Store")
	s.Contains(err.Error(), "Gate")
}

func (s *OrchestratorTestSuite) TestRollWithModifier() {
	out, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{RecordID: "f1", Notation: "2d6+1"})
	s.Require().NoError(err)

	s.Equal("roll_1", out.Roll.ID)
	s.Equal([]int{3, 4}, out.Roll.Dice)
	s.Equal(1, out.Roll.Modifier)
	s.Equal(8, out.Roll.Total)
	s.Equal("+2d6[3,4]+1=8", out.Roll.Description)
	s.Equal(s.now.UnixMilli(), out.Roll.RolledAt)
}

func (s *OrchestratorTestSuite) TestNegativeModifier() {
	out, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{RecordID: "f1", Notation: "1d20-2"})
	s.Require().NoError(err)
	s.Equal(-2, out.Roll.Modifier)
	s.Equal(1, out.Roll.Total)
}

func (s *OrchestratorTestSuite) TestRollAddsStat() {
	rec, err := s.store.Record("f1")
	s.Require().NoError(err)

	out, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{
		RecordID: "f1",
		Notation: "1d20",
		Stat:     entities.FieldAttack,
	})
	s.Require().NoError(err)
	s.Equal(rec.Attack, out.Roll.Modifier)
	s.Equal(3+rec.Attack, out.Roll.Total)
	s.Equal(entities.FieldAttack, out.Roll.Stat)
}

func (s *OrchestratorTestSuite) TestEmptyRecordUsesActive() {
	out, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{Notation: "1d4"})
	s.Require().NoError(err)
	s.Equal(entities.MatrixID, out.Roll.RecordID)

	history, err := s.orch.GetHistory(s.ctx, &dice.GetHistoryInput{})
	s.Require().NoError(err)
	s.Equal(entities.MatrixID, history.RecordID)
	s.Len(history.Rolls, 1)
}

func (s *OrchestratorTestSuite) TestInvalidInput() {
	testCases := []struct {
		name  string
		input *dice.RollDiceInput
	}{
		{name: "nil input"},
		{name: "empty notation", input: &dice.RollDiceInput{RecordID: "f1"}},
		{name: "garbage", input: &dice.RollDiceInput{RecordID: "f1", Notation: "d20"}},
		{name: "zero dice", input: &dice.RollDiceInput{RecordID: "f1", Notation: "0d6"}},
		{name: "zero sides", input: &dice.RollDiceInput{RecordID: "f1", Notation: "1d0"}},
		{name: "too many dice", input: &dice.RollDiceInput{RecordID: "f1", Notation: "500d6"}},
		{name: "unknown stat", input: &dice.RollDiceInput{RecordID: "f1", Notation: "1d6", Stat: "charisma"}},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.orch.RollDice(s.ctx, tc.input)
			s.True(errors.IsInvalidArgument(err), "got %v", err)
		})
	}
	s.Zero(s.roller.calls)
}

func (s *OrchestratorTestSuite) TestUnknownRecord() {
	_, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{RecordID: "nada", Notation: "1d6"})
	s.True(errors.IsNotFound(err))

	_, err = s.orch.GetHistory(s.ctx, &dice.GetHistoryInput{RecordID: "nada"})
	s.True(errors.IsNotFound(err))
}

func (s *OrchestratorTestSuite) TestHistoryKeepsNewest() {
	for i := 0; i < 5; i++ {
		_, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{RecordID: "f1", Notation: "1d6"})
		s.Require().NoError(err)
	}

	out, err := s.orch.GetHistory(s.ctx, &dice.GetHistoryInput{RecordID: "f1"})
	s.Require().NoError(err)
	s.Require().Len(out.Rolls, 3)
	s.Equal("roll_3", out.Rolls[0].ID)
	s.Equal("roll_5", out.Rolls[2].ID)
}

func (s *OrchestratorTestSuite) TestClearHistoryRequiresPassphrase() {
	_, err := s.orch.RollDice(s.ctx, &dice.RollDiceInput{RecordID: "f1", Notation: "1d6"})
	s.Require().NoError(err)

	_, err = s.orch.ClearHistory(s.ctx, &dice.ClearHistoryInput{RecordID: "f1", Passphrase: "errada"})
	s.True(errors.IsPermissionDenied(err))
	s.Len(s.store.Rolls("f1"), 1)

	out, err := s.orch.ClearHistory(s.ctx, &dice.ClearHistoryInput{RecordID: "f1", Passphrase: gate.DefaultPassphrase})
	s.Require().NoError(err)
	s.Equal(1, out.RollsDeleted)
	s.Empty(s.store.Rolls("f1"))
}
