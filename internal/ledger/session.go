package ledger

import (
	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// Session is a pending edit of one record: the committed base plus staged
// attribute deltas and trait changes. Nothing is visible outside the
// session until Commit. Dropping the session cancels it.
type Session struct {
	l    *Ledger
	base *entities.Record

	deltas entities.Attributes

	addedAdvantages      entities.Set[catalog.AdvantageID]
	removedAdvantages    entities.Set[catalog.AdvantageID]
	addedDisadvantages   entities.Set[catalog.DisadvantageID]
	removedDisadvantages entities.Set[catalog.DisadvantageID]

	race       catalog.RaceID
	raceStaged bool
}

// NewSession opens an edit session on base
func (l *Ledger) NewSession(base *entities.Record) *Session {
	return &Session{
		l:                    l,
		base:                 l.Derive(base),
		addedAdvantages:      entities.Set[catalog.AdvantageID]{},
		removedAdvantages:    entities.Set[catalog.AdvantageID]{},
		addedDisadvantages:   entities.Set[catalog.DisadvantageID]{},
		removedDisadvantages: entities.Set[catalog.DisadvantageID]{},
	}
}

// Base returns the committed record the session edits
func (s *Session) Base() *entities.Record {
	return s.base.Clone()
}

// Deltas returns the staged attribute changes
func (s *Session) Deltas() entities.Attributes {
	return s.deltas
}

// Dirty reports whether anything is staged
func (s *Session) Dirty() bool {
	return s.deltas != (entities.Attributes{}) ||
		len(s.addedAdvantages) > 0 || len(s.removedAdvantages) > 0 ||
		len(s.addedDisadvantages) > 0 || len(s.removedDisadvantages) > 0 ||
		s.raceStaged
}

// Preview is the derived record as it would be saved now
func (s *Session) Preview() *entities.Record {
	rec := s.base.Clone()

	for _, attr := range entities.AllAttributes {
		rec.Attributes.Set(attr, rec.Attributes.Get(attr)+s.deltas.Get(attr))
	}
	for id := range s.removedAdvantages {
		rec.SelectedAdvantages.Remove(id)
	}
	for id := range s.addedAdvantages {
		rec.SelectedAdvantages.Add(id)
	}
	for id := range s.removedDisadvantages {
		rec.SelectedDisadvantages.Remove(id)
	}
	for id := range s.addedDisadvantages {
		rec.SelectedDisadvantages.Add(id)
	}
	if s.raceStaged {
		rec.SelectedRace = s.race
	}

	return s.l.Derive(rec)
}

// Stage moves one attribute by +1 or -1. Raising needs a free skill point;
// lowering cannot go below the committed lock.
func (s *Session) Stage(attr entities.Attribute, delta int) error {
	if !attr.Valid() {
		return errors.InvalidArgumentf("unknown attribute %q", attr)
	}
	if delta != 1 && delta != -1 {
		return errors.InvalidArgumentf("attribute step must be +1 or -1, got %d", delta)
	}

	preview := s.Preview()
	if delta > 0 && preview.SkillPointsAvailable <= 0 {
		return errors.FailedPrecondition("insufficient skill points")
	}
	if delta < 0 && preview.Attributes.Get(attr)-1 < s.base.LockedAttributes.Get(attr) {
		return errors.FailedPreconditionf(
			"cannot decrease %s below previously committed value %d", attr, s.base.LockedAttributes.Get(attr))
	}

	s.deltas.Set(attr, s.deltas.Get(attr)+delta)
	return nil
}

// ToggleAdvantage selects or deselects an advantage. Level-zero-only
// advantages are fixed once the ficha has levelled, except a pick made in
// this session, which can always be reverted.
func (s *Session) ToggleAdvantage(id catalog.AdvantageID) error {
	adv, ok := s.l.cat.Advantage(id)
	if !ok {
		return errors.InvalidArgumentf("unknown advantage %q", id)
	}

	preview := s.Preview()
	if s.l.cat.RaceGrants(preview.SelectedRace, id) {
		return errors.FailedPreconditionf("%s is granted by the race", adv.Name)
	}

	if preview.SelectedAdvantages.Has(id) {
		if s.addedAdvantages.Has(id) {
			s.addedAdvantages.Remove(id)
			return nil
		}
		if adv.OnlyAtLevelZero && s.base.Level > 0 {
			return errors.FailedPreconditionf("%s can only be changed at level 0", adv.Name)
		}
		s.removedAdvantages.Add(id)
		return nil
	}

	if s.removedAdvantages.Has(id) {
		if err := s.affordable(preview, adv.Cost); err != nil {
			return err
		}
		s.removedAdvantages.Remove(id)
		return nil
	}

	if adv.OnlyAtLevelZero && s.base.Level > 0 {
		return errors.FailedPreconditionf("%s can only be selected at level 0", adv.Name)
	}
	if err := s.affordable(preview, adv.Cost); err != nil {
		return err
	}
	s.addedAdvantages.Add(id)
	return nil
}

// ToggleDisadvantage selects a disadvantage or reverts a pick made in this
// session. Saved disadvantages only leave through exclusion.
func (s *Session) ToggleDisadvantage(id catalog.DisadvantageID) error {
	dis, ok := s.l.cat.Disadvantage(id)
	if !ok {
		return errors.InvalidArgumentf("unknown disadvantage %q", id)
	}

	preview := s.Preview()
	if preview.SelectedDisadvantages.Has(id) {
		if !s.addedDisadvantages.Has(id) {
			return errors.FailedPreconditionf("%s is saved; remove it through exclusion", dis.Name)
		}
		if err := s.affordable(preview, dis.Gain); err != nil {
			return err
		}
		s.addedDisadvantages.Remove(id)
		return nil
	}

	if s.base.Level > 0 {
		return errors.FailedPrecondition("disadvantages can only be added at level 0")
	}
	if limit := s.l.cat.Rules.MaxDisadvantages; len(preview.SelectedDisadvantages) >= limit {
		return errors.FailedPreconditionf("at most %d disadvantages may be selected", limit)
	}
	s.addedDisadvantages.Add(id)
	return nil
}

// SelectRace stages a race. An empty id deselects, which is only allowed
// while the race has not been saved.
func (s *Session) SelectRace(id catalog.RaceID) error {
	preview := s.Preview()

	if id == "" {
		if s.base.SelectedRace != "" {
			return errors.FailedPrecondition("a saved race can only be removed through exclusion")
		}
		s.race, s.raceStaged = "", false
		return nil
	}

	race, ok := s.l.cat.Race(id)
	if !ok {
		return errors.InvalidArgumentf("unknown race %q", id)
	}
	if id == preview.SelectedRace {
		return nil
	}

	prevRace, prevStaged := s.race, s.raceStaged
	if id == s.base.SelectedRace {
		s.race, s.raceStaged = "", false
	} else {
		s.race, s.raceStaged = id, true
	}

	// the old race is refunded and its granted advantages stop being free
	after := s.Preview()
	if after.AdvantagePointsAvailable < 0 && after.AdvantagePointsAvailable < preview.AdvantagePointsAvailable {
		s.race, s.raceStaged = prevRace, prevStaged
		return errors.FailedPreconditionf(
			"insufficient advantage points for %s: need %d, have %d",
			race.Name, preview.AdvantagePointsAvailable-after.AdvantagePointsAvailable, preview.AdvantagePointsAvailable)
	}
	return nil
}

// Commit returns the record to save. Locks rise to the committed
// attributes.
func (s *Session) Commit() (*entities.Record, error) {
	out := s.Preview()
	if err := checkLocks(out.Attributes, s.base.LockedAttributes); err != nil {
		return nil, err
	}
	if out.SkillPointsAvailable < 0 && s.deltas != (entities.Attributes{}) {
		return nil, errors.FailedPrecondition("insufficient skill points")
	}

	out.LockedAttributes = out.LockedAttributes.Max(out.Attributes)
	return s.l.Derive(out), nil
}

// Rebase moves the session onto a new committed base, keeping staged
// changes that are still valid against it
func (s *Session) Rebase(base *entities.Record) {
	s.base = s.l.Derive(base)

	for _, attr := range entities.AllAttributes {
		if s.base.Attributes.Get(attr)+s.deltas.Get(attr) < s.base.LockedAttributes.Get(attr) {
			s.deltas.Set(attr, 0)
		}
	}

	for id := range s.addedAdvantages {
		if s.base.SelectedAdvantages.Has(id) {
			s.addedAdvantages.Remove(id)
		}
	}
	for id := range s.removedAdvantages {
		if !s.base.SelectedAdvantages.Has(id) {
			s.removedAdvantages.Remove(id)
		}
	}
	for id := range s.addedDisadvantages {
		if s.base.SelectedDisadvantages.Has(id) || s.base.Level > 0 {
			s.addedDisadvantages.Remove(id)
		}
	}
	for id := range s.removedDisadvantages {
		if !s.base.SelectedDisadvantages.Has(id) {
			s.removedDisadvantages.Remove(id)
		}
	}
	if s.raceStaged && s.race == s.base.SelectedRace {
		s.race, s.raceStaged = "", false
	}

	preview := s.Preview()
	if preview.SkillPointsAvailable < 0 {
		s.deltas = entities.Attributes{}
	}
	if len(preview.SelectedDisadvantages) > s.l.cat.Rules.MaxDisadvantages || preview.AdvantagePointsAvailable < 0 {
		s.clearTraits()
	}
}

func (s *Session) clearTraits() {
	s.addedAdvantages = entities.Set[catalog.AdvantageID]{}
	s.removedAdvantages = entities.Set[catalog.AdvantageID]{}
	s.addedDisadvantages = entities.Set[catalog.DisadvantageID]{}
	s.removedDisadvantages = entities.Set[catalog.DisadvantageID]{}
	s.race, s.raceStaged = "", false
}

// affordable checks that spending cost more advantage points keeps the
// preview within budget
func (s *Session) affordable(preview *entities.Record, cost int) error {
	if cost <= 0 {
		return nil
	}
	if preview.AdvantagePointsAvailable < cost {
		return errors.FailedPreconditionf(
			"insufficient advantage points: need %d, have %d", cost, preview.AdvantagePointsAvailable)
	}
	return nil
}
