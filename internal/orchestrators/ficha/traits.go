package ficha

import (
	"context"
	"log/slog"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// SelectClass chooses the class of a ficha
func (o *Orchestrator) SelectClass(ctx context.Context, input *SelectClassInput) (*SelectClassOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	next, err := o.ledger.SelectClass(rec, input.Class)
	if err != nil {
		return nil, err
	}

	return &SelectClassOutput{Record: o.commit(ctx, next)}, nil
}

// AcquireClassAbility buys an ability of the selected class
func (o *Orchestrator) AcquireClassAbility(ctx context.Context, input *AcquireClassAbilityInput) (*AcquireClassAbilityOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	next, acquisition, err := o.ledger.AcquireClassAbility(rec, input.Ability)
	if err != nil {
		return nil, err
	}

	saved := o.commit(ctx, next)

	slog.InfoContext(ctx, "acquired class ability",
		"record_id", saved.ID,
		"ability", acquisition.Ability.ID,
		"paid_with_soul", acquisition.PaidWithSoul,
		"advantage_points_spent", acquisition.AdvantagePointsSpent)

	return &AcquireClassAbilityOutput{Record: saved, Acquisition: acquisition}, nil
}

// ExcludeItems removes saved traits once the caller has confirmed
func (o *Orchestrator) ExcludeItems(ctx context.Context, input *ExcludeItemsInput) (*ExcludeItemsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !input.Confirmed {
		return nil, errors.FailedPrecondition("exclusion must be confirmed")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	next, err := o.ledger.ExcludeItems(rec, input.Exclusion)
	if err != nil {
		return nil, err
	}

	saved := o.commit(ctx, next)

	slog.InfoContext(ctx, "excluded traits",
		"record_id", saved.ID,
		"advantages", input.Exclusion.Advantages,
		"disadvantages", input.Exclusion.Disadvantages,
		"remove_race", input.Exclusion.RemoveRace)

	return &ExcludeItemsOutput{Record: saved}, nil
}

// SetGMAdjustment stores a GM override. GM mode must be on.
func (o *Orchestrator) SetGMAdjustment(ctx context.Context, input *SetGMAdjustmentInput) (*SetGMAdjustmentOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if !o.store.GMMode() {
		return nil, errors.PermissionDenied("GM mode is off")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	next, err := o.ledger.SetGMAdjustment(rec, input.Field, input.Delta)
	if err != nil {
		return nil, err
	}

	return &SetGMAdjustmentOutput{Record: o.commit(ctx, next)}, nil
}

// SetGMMode toggles GM mode. Turning it on needs the passphrase.
func (o *Orchestrator) SetGMMode(ctx context.Context, input *SetGMModeInput) (*SetGMModeOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Enabled {
		if err := o.gate.Check(input.Passphrase); err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.store.SetGMMode(ctx, input.Enabled)

	slog.InfoContext(ctx, "gm mode changed", "enabled", input.Enabled)

	return &SetGMModeOutput{Enabled: input.Enabled}, nil
}

// ResetPoints refunds every point spent on a ficha behind the passphrase
func (o *Orchestrator) ResetPoints(ctx context.Context, input *ResetPointsInput) (*ResetPointsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.gate.Check(input.Passphrase); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	saved := o.commit(ctx, o.ledger.ResetPoints(rec))

	slog.InfoContext(ctx, "reset points", "record_id", saved.ID)

	return &ResetPointsOutput{Record: saved}, nil
}

// ResetRecord wipes a ficha back to a blank record behind the passphrase
func (o *Orchestrator) ResetRecord(ctx context.Context, input *ResetRecordInput) (*ResetRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.gate.Check(input.Passphrase); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	saved := o.commit(ctx, o.ledger.ResetRecord(rec))

	slog.InfoContext(ctx, "reset ficha", "record_id", saved.ID)

	return &ResetRecordOutput{Record: saved}, nil
}
