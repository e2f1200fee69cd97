package state_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-ficha/internal/repositories/state"
	"github.com/KirkDiggler/rpg-ficha/internal/testutils"
)

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// RepositoryContractSuite runs the same behaviour checks against every
// backend
type RepositoryContractSuite struct {
	suite.Suite
	newRepo func() (state.Repository, func())
	repo    state.Repository
	cleanup func()
	ctx     context.Context
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryContractSuite{newRepo: func() (state.Repository, func()) {
		client, cleanup := testutils.CreateTestRedisClient(t)
		repo, err := state.NewRedisRepository(&state.RedisConfig{
			Client: client,
			Clock:  &clock.Fixed{At: testNow},
		})
		if err != nil {
			t.Fatal(err)
		}
		return repo, cleanup
	}})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryContractSuite{newRepo: func() (state.Repository, func()) {
		repo, err := state.OpenSQLite(&state.SQLiteConfig{
			Path:  filepath.Join(t.TempDir(), "ficha.db"),
			Clock: &clock.Fixed{At: testNow},
		})
		if err != nil {
			t.Fatal(err)
		}
		return repo, func() { _ = repo.Close() }
	}})
}

func (s *RepositoryContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo, s.cleanup = s.newRepo()
}

func (s *RepositoryContractSuite) TearDownTest() {
	s.cleanup()
}

func (s *RepositoryContractSuite) TestPutThenGet() {
	out, err := s.repo.Put(s.ctx, state.PutInput{Key: state.KeyActiveRecord, Value: []byte(`"f1"`)})
	s.Require().NoError(err)
	s.Equal(testNow, out.Entry.UpdatedAt)

	got, err := s.repo.Get(s.ctx, state.GetInput{Key: state.KeyActiveRecord})
	s.Require().NoError(err)
	s.Equal(`"f1"`, string(got.Entry.Value))
	s.Equal(testNow, got.Entry.UpdatedAt)
}

func (s *RepositoryContractSuite) TestPutReplaces() {
	_, err := s.repo.Put(s.ctx, state.PutInput{Key: state.KeyGMMode, Value: []byte("true")})
	s.Require().NoError(err)
	_, err = s.repo.Put(s.ctx, state.PutInput{Key: state.KeyGMMode, Value: []byte("false")})
	s.Require().NoError(err)

	got, err := s.repo.Get(s.ctx, state.GetInput{Key: state.KeyGMMode})
	s.Require().NoError(err)
	s.Equal("false", string(got.Entry.Value))
}

func (s *RepositoryContractSuite) TestGetMissing() {
	_, err := s.repo.Get(s.ctx, state.GetInput{Key: "nada"})
	s.Error(err)
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryContractSuite) TestEmptyKeyRejected() {
	_, err := s.repo.Get(s.ctx, state.GetInput{})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.repo.Put(s.ctx, state.PutInput{Value: []byte("x")})
	s.True(errors.IsInvalidArgument(err))
	_, err = s.repo.Delete(s.ctx, state.DeleteInput{})
	s.True(errors.IsInvalidArgument(err))
}

func (s *RepositoryContractSuite) TestDelete() {
	_, err := s.repo.Put(s.ctx, state.PutInput{Key: state.KeyRollHistory, Value: []byte("{}")})
	s.Require().NoError(err)

	out, err := s.repo.Delete(s.ctx, state.DeleteInput{Key: state.KeyRollHistory})
	s.Require().NoError(err)
	s.True(out.Deleted)

	out, err = s.repo.Delete(s.ctx, state.DeleteInput{Key: state.KeyRollHistory})
	s.Require().NoError(err)
	s.False(out.Deleted)

	_, err = s.repo.Get(s.ctx, state.GetInput{Key: state.KeyRollHistory})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryContractSuite) TestListOrdered() {
	for _, key := range []string{state.KeyRecords, state.KeyActiveRecord, state.KeyGMMode} {
		_, err := s.repo.Put(s.ctx, state.PutInput{Key: key, Value: []byte(key)})
		s.Require().NoError(err)
	}

	out, err := s.repo.List(s.ctx, state.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(out.Entries, 3)
	s.Equal(state.KeyActiveRecord, out.Entries[0].Key)
	s.Equal(state.KeyRecords, out.Entries[1].Key)
	s.Equal(state.KeyGMMode, out.Entries[2].Key)
	s.Equal(state.KeyRecords, string(out.Entries[1].Value))
}

func TestRedisKeyLayout(t *testing.T) {
	client, mr, cleanup := testutils.CreateTestRedisServer(t)
	defer cleanup()

	repo, err := state.NewRedisRepository(&state.RedisConfig{
		Client: client,
		Clock:  &clock.Fixed{At: testNow},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Put(context.Background(), state.PutInput{Key: state.KeyRecords, Value: []byte("{}")}); err != nil {
		t.Fatal(err)
	}

	if got := mr.HGet("ficha:fichas", "value"); got != "{}" {
		t.Fatalf("unexpected stored value %q", got)
	}
	assertKeys(t, mr, []string{"ficha:fichas"})
}

func TestRedisUnavailable(t *testing.T) {
	client, mr, cleanup := testutils.CreateTestRedisServer(t)
	defer cleanup()

	repo, err := state.NewRedisRepository(&state.RedisConfig{Client: client, Clock: clock.New()})
	if err != nil {
		t.Fatal(err)
	}
	mr.Close()

	_, err = repo.Put(context.Background(), state.PutInput{Key: state.KeyGMMode, Value: []byte("true")})
	if errors.GetCode(err) != errors.CodeUnavailable {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestRepositoryConfigValidation(t *testing.T) {
	if _, err := state.NewRedisRepository(&state.RedisConfig{}); err == nil {
		t.Fatal("expected error for missing client")
	}
	if _, err := state.OpenSQLite(&state.SQLiteConfig{Clock: clock.New()}); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func assertKeys(t *testing.T, mr *miniredis.Miniredis, want []string) {
	t.Helper()
	got := mr.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys = %v, want %v", got, want)
		}
	}
}
