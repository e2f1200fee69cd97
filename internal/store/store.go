// Package store holds the fichas of a session in memory and mirrors every
// commit to a key-value repository. A failing mirror never fails a commit:
// the session carries on in memory and the failure is logged.
package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"sort"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/KirkDiggler/rpg-ficha/internal/engine"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-ficha/internal/repositories/state"
)

// Config configures a Store
type Config struct {
	// Repository is the mirror; nil keeps the store in memory only
	Repository state.Repository
	Engine     engine.Engine
	Clock      clock.Clock
}

// Validate checks the config
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Engine == nil {
		vb.RequiredField("Engine")
	}
	if cfg.Clock == nil {
		vb.RequiredField("Clock")
	}
	return vb.Build()
}

// Store is the explicit session state: records, the active id, the GM mode
// flag and per-record roll history
type Store struct {
	mu sync.RWMutex

	repo   state.Repository
	engine engine.Engine
	clock  clock.Clock

	records  map[string]*entities.Record
	activeID string
	gmMode   bool
	rolls    map[string][]entities.Roll

	degraded bool
}

// New creates a store holding only the Matrix record. Call Load to read the
// mirror.
func New(cfg *Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Store{
		repo:   cfg.Repository,
		engine: cfg.Engine,
		clock:  cfg.Clock,
	}
	s.reset()
	return s, nil
}

func (s *Store) reset() {
	s.records = make(map[string]*entities.Record)
	s.rolls = make(map[string][]entities.Roll)
	s.gmMode = false
	s.ensureMatrix()
	s.activeID = entities.MatrixID
}

func (s *Store) ensureMatrix() {
	if _, ok := s.records[entities.MatrixID]; ok {
		return
	}
	now := s.clock.Now().UnixMilli()
	matrix := entities.NewRecord(entities.MatrixID, entities.MatrixName)
	matrix.CreatedAt = now
	matrix.UpdatedAt = now
	s.records[entities.MatrixID] = s.engine.Derive(matrix)
}

// Load replaces the in-memory state with what the mirror holds. Unreadable
// values fall back to defaults field by field; Load itself never fails.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset()
	if s.repo == nil {
		return
	}

	out, err := s.repo.List(ctx, state.ListInput{})
	if err != nil {
		slog.WarnContext(ctx, "failed to read state mirror, starting empty", "error", err)
		s.degraded = true
		return
	}

	values := make(map[string][]byte, len(out.Entries))
	for _, entry := range out.Entries {
		values[entry.Key] = entry.Value
	}

	for id, rec := range entities.DecodeCollection(values[state.KeyRecords]) {
		if rec.DisplayName == "" {
			rec.DisplayName = id
		}
		s.records[id] = s.engine.Derive(rec)
	}
	s.ensureMatrix()

	if active := gjson.ParseBytes(values[state.KeyActiveRecord]); active.Type == gjson.String {
		if _, ok := s.records[active.String()]; ok {
			s.activeID = active.String()
		}
	}

	s.gmMode = gjson.ParseBytes(values[state.KeyGMMode]).Bool()
	s.rolls = decodeRolls(values[state.KeyRollHistory], s.records)

	slog.DebugContext(ctx, "loaded state",
		"records", len(s.records),
		"active", s.activeID,
		"gm_mode", s.gmMode)
}

// Degraded reports whether a mirror operation failed during this session
func (s *Store) Degraded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.degraded
}

// Record returns a copy of one record
func (s *Store) Record(id string) (*entities.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, errors.NotFoundf("ficha %s not found", id)
	}
	return rec.Clone(), nil
}

// Records returns copies of every record, Matrix first then by name
func (s *Store) Records() []*entities.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*entities.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if (out[i].ID == entities.MatrixID) != (out[j].ID == entities.MatrixID) {
			return out[i].ID == entities.MatrixID
		}
		if out[i].DisplayName != out[j].DisplayName {
			return out[i].DisplayName < out[j].DisplayName
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ActiveID returns the active record id
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// GMMode reports whether GM mode is on
func (s *Store) GMMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gmMode
}

// Rolls returns a record's roll history, oldest first
func (s *Store) Rolls(recordID string) []entities.Roll {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]entities.Roll{}, s.rolls[recordID]...)
}

// PutRecord commits a derived record and stamps its timestamps
func (s *Store) PutRecord(ctx context.Context, rec *entities.Record) *entities.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UnixMilli()
	next := s.engine.Derive(rec)
	if prev, ok := s.records[next.ID]; ok {
		next.CreatedAt = prev.CreatedAt
	}
	if next.CreatedAt == 0 {
		next.CreatedAt = now
	}
	next.UpdatedAt = now

	s.records[next.ID] = next
	s.mirrorRecords(ctx)
	return next.Clone()
}

// DeleteRecord removes a record and its roll history. The Matrix record
// cannot be deleted; deleting the active record activates Matrix.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	if id == entities.MatrixID {
		return errors.PermissionDenied("the Matrix ficha cannot be deleted")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errors.NotFoundf("ficha %s not found", id)
	}

	delete(s.records, id)
	s.mirrorRecords(ctx)

	if _, ok := s.rolls[id]; ok {
		delete(s.rolls, id)
		s.mirror(ctx, state.KeyRollHistory, s.rolls)
	}
	if s.activeID == id {
		s.activeID = entities.MatrixID
		s.mirror(ctx, state.KeyActiveRecord, s.activeID)
	}
	return nil
}

// SetActive switches the active record
func (s *Store) SetActive(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[id]; !ok {
		return errors.NotFoundf("ficha %s not found", id)
	}
	s.activeID = id
	s.mirror(ctx, state.KeyActiveRecord, id)
	return nil
}

// SetGMMode stores the GM mode flag
func (s *Store) SetGMMode(ctx context.Context, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gmMode = on
	s.mirror(ctx, state.KeyGMMode, on)
}

// AppendRoll adds a roll to its record's history, keeping at most limit
// entries. A limit of 0 keeps everything.
func (s *Store) AppendRoll(ctx context.Context, roll entities.Roll, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[roll.RecordID]; !ok {
		return errors.NotFoundf("ficha %s not found", roll.RecordID)
	}

	history := append(s.rolls[roll.RecordID], roll)
	if limit > 0 && len(history) > limit {
		history = append([]entities.Roll{}, history[len(history)-limit:]...)
	}
	s.rolls[roll.RecordID] = history
	s.mirror(ctx, state.KeyRollHistory, s.rolls)
	return nil
}

// ClearRolls drops the history of one record, or of every record when
// recordID is empty. It returns how many rolls were removed.
func (s *Store) ClearRolls(ctx context.Context, recordID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	if recordID == "" {
		for _, history := range s.rolls {
			removed += len(history)
		}
		s.rolls = make(map[string][]entities.Roll)
	} else {
		removed = len(s.rolls[recordID])
		delete(s.rolls, recordID)
	}

	s.mirror(ctx, state.KeyRollHistory, s.rolls)
	return removed
}

func (s *Store) mirrorRecords(ctx context.Context) {
	s.mirror(ctx, state.KeyRecords, s.records)
}

// mirror writes one key through to the repository. Callers hold the lock.
func (s *Store) mirror(ctx context.Context, key string, value any) {
	if s.repo == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.ErrorContext(ctx, "failed to encode state", "key", key, "error", err)
		s.degraded = true
		return
	}

	if _, err := s.repo.Put(ctx, state.PutInput{Key: key, Value: data}); err != nil {
		slog.WarnContext(ctx, "state mirror write failed, continuing in memory",
			"key", key,
			"error", err)
		s.degraded = true
	}
}

// decodeRolls reads the history map, dropping histories of unknown records
// and entries that do not parse
func decodeRolls(data []byte, records map[string]*entities.Record) map[string][]entities.Roll {
	out := make(map[string][]entities.Roll)
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return out
	}

	doc.ForEach(func(key, value gjson.Result) bool {
		if _, ok := records[key.String()]; !ok {
			return true
		}
		value.ForEach(func(_, item gjson.Result) bool {
			var roll entities.Roll
			if item.IsObject() && json.Unmarshal([]byte(item.Raw), &roll) == nil {
				roll.RecordID = key.String()
				out[key.String()] = append(out[key.String()], roll)
			}
			return true
		})
		return true
	})
	return out
}
