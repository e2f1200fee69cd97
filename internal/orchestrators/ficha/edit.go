package ficha

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/ledger"
)

// BeginEdit opens the edit session of a ficha. Only one session per ficha
// may be open.
func (o *Orchestrator) BeginEdit(ctx context.Context, input *BeginEditInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	recordID := o.resolve(input.RecordID)
	if _, open := o.sessions[recordID]; open {
		return nil, errors.FailedPreconditionf("ficha %s already has an open edit session", recordID)
	}

	rec, err := o.store.Record(recordID)
	if err != nil {
		return nil, err
	}

	session := o.ledger.NewSession(rec)
	o.sessions[recordID] = session

	slog.DebugContext(ctx, "opened edit session", "record_id", recordID)

	return editOutput(session), nil
}

// StageAttribute stages a +1 or -1 step on one attribute
func (o *Orchestrator) StageAttribute(_ context.Context, input *StageAttributeInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.withSession(input.RecordID, func(s *ledger.Session) error {
		return s.Stage(input.Attribute, input.Delta)
	})
}

// ToggleAdvantage stages adding or removing an advantage
func (o *Orchestrator) ToggleAdvantage(_ context.Context, input *ToggleAdvantageInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.withSession(input.RecordID, func(s *ledger.Session) error {
		return s.ToggleAdvantage(input.Advantage)
	})
}

// ToggleDisadvantage stages adding or reverting a disadvantage
func (o *Orchestrator) ToggleDisadvantage(_ context.Context, input *ToggleDisadvantageInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.withSession(input.RecordID, func(s *ledger.Session) error {
		return s.ToggleDisadvantage(input.Disadvantage)
	})
}

// SelectRace stages a race choice
func (o *Orchestrator) SelectRace(_ context.Context, input *SelectRaceInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.withSession(input.RecordID, func(s *ledger.Session) error {
		return s.SelectRace(input.Race)
	})
}

// PreviewEdit returns the open session without changing it
func (o *Orchestrator) PreviewEdit(_ context.Context, input *PreviewEditInput) (*EditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	return o.withSession(input.RecordID, func(*ledger.Session) error { return nil })
}

// SaveEdit commits the open session and closes it. A rejected save keeps
// the session open so the user can fix it.
func (o *Orchestrator) SaveEdit(ctx context.Context, input *SaveEditInput) (*SaveEditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	recordID := o.resolve(input.RecordID)
	session, err := o.session(recordID)
	if err != nil {
		return nil, err
	}

	next, err := session.Commit()
	if err != nil {
		return nil, err
	}

	delete(o.sessions, recordID)
	saved := o.store.PutRecord(ctx, next)

	slog.InfoContext(ctx, "saved edit session",
		"record_id", recordID,
		"skill_points_available", saved.SkillPointsAvailable,
		"advantage_points_available", saved.AdvantagePointsAvailable)

	return &SaveEditOutput{Record: saved}, nil
}

// CancelEdit discards the open session
func (o *Orchestrator) CancelEdit(ctx context.Context, input *CancelEditInput) (*CancelEditOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	recordID := o.resolve(input.RecordID)
	if _, open := o.sessions[recordID]; !open {
		return &CancelEditOutput{}, nil
	}
	delete(o.sessions, recordID)

	slog.DebugContext(ctx, "discarded edit session", "record_id", recordID)

	return &CancelEditOutput{Discarded: true}, nil
}

// withSession runs fn against the open session and returns its preview.
// A rejected step leaves the session unchanged.
func (o *Orchestrator) withSession(recordID string, fn func(*ledger.Session) error) (*EditOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	session, err := o.session(o.resolve(recordID))
	if err != nil {
		return nil, err
	}
	if err := fn(session); err != nil {
		return nil, err
	}
	return editOutput(session), nil
}

func (o *Orchestrator) session(recordID string) (*ledger.Session, error) {
	session, ok := o.sessions[recordID]
	if !ok {
		return nil, errors.FailedPreconditionf("ficha %s has no open edit session", recordID)
	}
	return session, nil
}

func editOutput(s *ledger.Session) *EditOutput {
	return &EditOutput{
		Base:    s.Base(),
		Preview: s.Preview(),
		Deltas:  s.Deltas(),
		Dirty:   s.Dirty(),
	}
}
