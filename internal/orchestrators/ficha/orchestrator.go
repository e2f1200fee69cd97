// Package ficha is the shell service over the ledger: every mutation of a
// ficha goes read snapshot, compute, commit to the store, notify.
package ficha

//go:generate mockgen -destination=mock/mock_service.go -package=fichamock github.com/KirkDiggler/rpg-ficha/internal/orchestrators/ficha Service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/ledger"
	"github.com/KirkDiggler/rpg-ficha/internal/npc"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/gate"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-ficha/internal/store"
)

// EventLevelUp is published on the event bus when a ficha gains a level.
// The event source is the ficha.
const EventLevelUp = "ficha.level_up"

// Service defines the interface for ficha operations
type Service interface {
	CreateRecord(ctx context.Context, input *CreateRecordInput) (*CreateRecordOutput, error)
	GetRecord(ctx context.Context, input *GetRecordInput) (*GetRecordOutput, error)
	ListRecords(ctx context.Context, input *ListRecordsInput) (*ListRecordsOutput, error)
	SetActiveRecord(ctx context.Context, input *SetActiveRecordInput) (*SetActiveRecordOutput, error)
	GetActiveRecord(ctx context.Context, input *GetActiveRecordInput) (*GetActiveRecordOutput, error)
	DeleteRecord(ctx context.Context, input *DeleteRecordInput) (*DeleteRecordOutput, error)

	ApplyUpdate(ctx context.Context, input *ApplyUpdateInput) (*ApplyUpdateOutput, error)
	GainExperience(ctx context.Context, input *GainExperienceInput) (*GainExperienceOutput, error)

	// Edit session
	BeginEdit(ctx context.Context, input *BeginEditInput) (*EditOutput, error)
	StageAttribute(ctx context.Context, input *StageAttributeInput) (*EditOutput, error)
	ToggleAdvantage(ctx context.Context, input *ToggleAdvantageInput) (*EditOutput, error)
	ToggleDisadvantage(ctx context.Context, input *ToggleDisadvantageInput) (*EditOutput, error)
	SelectRace(ctx context.Context, input *SelectRaceInput) (*EditOutput, error)
	PreviewEdit(ctx context.Context, input *PreviewEditInput) (*EditOutput, error)
	SaveEdit(ctx context.Context, input *SaveEditInput) (*SaveEditOutput, error)
	CancelEdit(ctx context.Context, input *CancelEditInput) (*CancelEditOutput, error)

	// Class and traits
	SelectClass(ctx context.Context, input *SelectClassInput) (*SelectClassOutput, error)
	AcquireClassAbility(ctx context.Context, input *AcquireClassAbilityInput) (*AcquireClassAbilityOutput, error)
	ExcludeItems(ctx context.Context, input *ExcludeItemsInput) (*ExcludeItemsOutput, error)

	// GM and destructive actions
	SetGMAdjustment(ctx context.Context, input *SetGMAdjustmentInput) (*SetGMAdjustmentOutput, error)
	SetGMMode(ctx context.Context, input *SetGMModeInput) (*SetGMModeOutput, error)
	ResetPoints(ctx context.Context, input *ResetPointsInput) (*ResetPointsOutput, error)
	ResetRecord(ctx context.Context, input *ResetRecordInput) (*ResetRecordOutput, error)

	// Transfer
	ImportRecord(ctx context.Context, input *ImportRecordInput) (*ImportRecordOutput, error)
	ExportRecord(ctx context.Context, input *ExportRecordInput) (*ExportRecordOutput, error)
	GenerateNPC(ctx context.Context, input *GenerateNPCInput) (*GenerateNPCOutput, error)
}

// Config holds the dependencies for the ficha orchestrator
type Config struct {
	Store       *store.Store
	Ledger      *ledger.Ledger
	Distributor *npc.Distributor
	EventBus    events.EventBus
	IDGenerator idgen.Generator
	Gate        *gate.Gate
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.Ledger == nil {
		vb.RequiredField("Ledger")
	}
	if c.Distributor == nil {
		vb.RequiredField("Distributor")
	}
	if c.EventBus == nil {
		vb.RequiredField("EventBus")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Gate == nil {
		vb.RequiredField("Gate")
	}

	return vb.Build()
}

// Orchestrator implements Service
type Orchestrator struct {
	// mu serializes mutations so each one reads and commits a consistent
	// snapshot, and guards sessions
	mu sync.Mutex

	store       *store.Store
	ledger      *ledger.Ledger
	distributor *npc.Distributor
	eventBus    events.EventBus
	idGen       idgen.Generator
	gate        *gate.Gate

	// sessions holds at most one open edit session per record id
	sessions map[string]*ledger.Session
}

var _ Service = (*Orchestrator)(nil)

// New creates a new ficha orchestrator
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	return &Orchestrator{
		store:       cfg.Store,
		ledger:      cfg.Ledger,
		distributor: cfg.Distributor,
		eventBus:    cfg.EventBus,
		idGen:       cfg.IDGenerator,
		gate:        cfg.Gate,
		sessions:    make(map[string]*ledger.Session),
	}, nil
}

// CreateRecord adds a blank ficha and makes it active
func (o *Orchestrator) CreateRecord(ctx context.Context, input *CreateRecordInput) (*CreateRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("DisplayName", input.DisplayName, vb)
	if err := vb.Build(); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec := entities.NewRecord(o.idGen.Generate(), strings.TrimSpace(input.DisplayName))
	rec.Profile = input.Profile

	saved := o.store.PutRecord(ctx, rec)
	if err := o.store.SetActive(ctx, saved.ID); err != nil {
		return nil, errors.Wrap(err, "failed to activate new ficha")
	}

	slog.InfoContext(ctx, "created ficha",
		"record_id", saved.ID,
		"display_name", saved.DisplayName)

	return &CreateRecordOutput{Record: saved}, nil
}

// GetRecord returns one ficha; an empty id reads the active ficha
func (o *Orchestrator) GetRecord(_ context.Context, input *GetRecordInput) (*GetRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}
	return &GetRecordOutput{Record: rec}, nil
}

// ListRecords returns every ficha, Matrix first
func (o *Orchestrator) ListRecords(_ context.Context, input *ListRecordsInput) (*ListRecordsOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	all := o.store.Records()
	records := all[:0]
	for _, rec := range all {
		if rec.IsNPC && !input.IncludeNPCs {
			continue
		}
		records = append(records, rec)
	}

	return &ListRecordsOutput{
		Records:  records,
		ActiveID: o.store.ActiveID(),
		GMMode:   o.store.GMMode(),
		Degraded: o.store.Degraded(),
	}, nil
}

// SetActiveRecord switches the active ficha
func (o *Orchestrator) SetActiveRecord(ctx context.Context, input *SetActiveRecordInput) (*SetActiveRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RecordID == "" {
		return nil, errors.InvalidArgument("record ID is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.SetActive(ctx, input.RecordID); err != nil {
		return nil, err
	}
	rec, err := o.store.Record(input.RecordID)
	if err != nil {
		return nil, err
	}
	return &SetActiveRecordOutput{Record: rec}, nil
}

// GetActiveRecord returns the active ficha
func (o *Orchestrator) GetActiveRecord(_ context.Context, _ *GetActiveRecordInput) (*GetActiveRecordOutput, error) {
	rec, err := o.store.Record(o.store.ActiveID())
	if err != nil {
		return nil, errors.Wrap(err, "active ficha missing")
	}
	return &GetActiveRecordOutput{Record: rec}, nil
}

// DeleteRecord removes a ficha behind the passphrase. Matrix cannot be
// deleted.
func (o *Orchestrator) DeleteRecord(ctx context.Context, input *DeleteRecordInput) (*DeleteRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.RecordID == "" {
		return nil, errors.InvalidArgument("record ID is required")
	}
	if err := o.gate.Check(input.Passphrase); err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.DeleteRecord(ctx, input.RecordID); err != nil {
		return nil, err
	}
	delete(o.sessions, input.RecordID)

	slog.InfoContext(ctx, "deleted ficha", "record_id", input.RecordID)

	return &DeleteRecordOutput{ActiveID: o.store.ActiveID()}, nil
}

// ApplyUpdate is the general update entry point. An open edit session on
// the same ficha is rebased onto the result.
func (o *Orchestrator) ApplyUpdate(ctx context.Context, input *ApplyUpdateInput) (*ApplyUpdateOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	next, progress, err := o.ledger.ApplyUpdate(rec, input.Update, o.store.GMMode())
	if err != nil {
		return nil, err
	}

	saved := o.commit(ctx, next)
	o.notifyProgress(ctx, saved, progress)

	return &ApplyUpdateOutput{Record: saved, Progress: progress}, nil
}

// GainExperience adds experience and reports the abilities unlocked by any
// levels gained
func (o *Orchestrator) GainExperience(ctx context.Context, input *GainExperienceInput) (*GainExperienceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	next, progress, err := o.ledger.ApplyExperienceGain(rec, input.Amount)
	if err != nil {
		return nil, err
	}

	saved := o.commit(ctx, next)
	o.notifyProgress(ctx, saved, progress)

	output := &GainExperienceOutput{Record: saved, Progress: progress}
	if progress.LeveledUp {
		if class, ok := o.ledger.Catalog().Class(saved.SelectedClass); ok {
			for _, ability := range class.Abilities {
				if ability.UnlockLevel > progress.PreviousLevel && ability.UnlockLevel <= progress.NewLevel {
					output.UnlockedAbilities = append(output.UnlockedAbilities, ability)
				}
			}
		}
	}

	return output, nil
}

// resolve maps an empty record id to the active ficha
func (o *Orchestrator) resolve(recordID string) string {
	if recordID == "" {
		return o.store.ActiveID()
	}
	return recordID
}

// commit stores a record and rebases any open session on it. Callers hold
// the lock.
func (o *Orchestrator) commit(ctx context.Context, rec *entities.Record) *entities.Record {
	saved := o.store.PutRecord(ctx, rec)
	if session, ok := o.sessions[saved.ID]; ok {
		session.Rebase(saved)
		slog.DebugContext(ctx, "rebased edit session", "record_id", saved.ID)
	}
	return saved
}

// notifyProgress publishes a level-up event. A failing subscriber is logged
// and does not undo the commit.
func (o *Orchestrator) notifyProgress(ctx context.Context, rec *entities.Record, progress ledger.ExperienceResult) {
	if !progress.LeveledUp {
		return
	}

	slog.InfoContext(ctx, "ficha leveled up",
		"record_id", rec.ID,
		"previous_level", progress.PreviousLevel,
		"new_level", progress.NewLevel,
		"souls_granted", progress.SoulsGranted)

	event := events.NewGameEvent(EventLevelUp, rec, nil)
	if err := o.eventBus.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "level up subscriber failed",
			"record_id", rec.ID,
			"error", err)
	}
}
