package ficha

import (
	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/ledger"
)

// CreateRecordInput defines the request for creating a ficha
type CreateRecordInput struct {
	DisplayName string
	Profile     entities.Profile
}

// CreateRecordOutput defines the response for creating a ficha
type CreateRecordOutput struct {
	Record *entities.Record
}

// GetRecordInput defines the request for reading a ficha
type GetRecordInput struct {
	RecordID string
}

// GetRecordOutput defines the response for reading a ficha
type GetRecordOutput struct {
	Record *entities.Record
}

// ListRecordsInput defines the request for listing fichas
type ListRecordsInput struct {
	// IncludeNPCs keeps generated NPC fichas in the listing
	IncludeNPCs bool
}

// ListRecordsOutput defines the response for listing fichas
type ListRecordsOutput struct {
	Records  []*entities.Record
	ActiveID string
	GMMode   bool
	// Degraded is set when the mirror failed and state is in memory only
	Degraded bool
}

// SetActiveRecordInput defines the request for switching the active ficha
type SetActiveRecordInput struct {
	RecordID string
}

// SetActiveRecordOutput defines the response for switching the active ficha
type SetActiveRecordOutput struct {
	Record *entities.Record
}

// GetActiveRecordInput defines the request for reading the active ficha
type GetActiveRecordInput struct{}

// GetActiveRecordOutput defines the response for reading the active ficha
type GetActiveRecordOutput struct {
	Record *entities.Record
}

// DeleteRecordInput defines the request for deleting a ficha
type DeleteRecordInput struct {
	RecordID   string
	Passphrase string
}

// DeleteRecordOutput defines the response for deleting a ficha
type DeleteRecordOutput struct {
	ActiveID string
}

// ApplyUpdateInput defines the request for a partial ficha update
type ApplyUpdateInput struct {
	RecordID string
	Update   ledger.Update
}

// ApplyUpdateOutput defines the response for a partial ficha update
type ApplyUpdateOutput struct {
	Record   *entities.Record
	Progress ledger.ExperienceResult
}

// GainExperienceInput defines the request for adding experience
type GainExperienceInput struct {
	RecordID string
	Amount   int
}

// GainExperienceOutput defines the response for adding experience
type GainExperienceOutput struct {
	Record   *entities.Record
	Progress ledger.ExperienceResult
	// UnlockedAbilities are class abilities that became acquirable with the
	// levels just gained
	UnlockedAbilities []catalog.ClassAbility
}

// BeginEditInput defines the request for opening an edit session
type BeginEditInput struct {
	RecordID string
}

// EditOutput is the preview of an open edit session
type EditOutput struct {
	Base    *entities.Record
	Preview *entities.Record
	Deltas  entities.Attributes
	Dirty   bool
}

// StageAttributeInput defines the request for staging one attribute step
type StageAttributeInput struct {
	RecordID  string
	Attribute entities.Attribute
	// Delta is +1 or -1
	Delta int
}

// ToggleAdvantageInput defines the request for toggling an advantage
type ToggleAdvantageInput struct {
	RecordID  string
	Advantage catalog.AdvantageID
}

// ToggleDisadvantageInput defines the request for toggling a disadvantage
type ToggleDisadvantageInput struct {
	RecordID     string
	Disadvantage catalog.DisadvantageID
}

// SelectRaceInput defines the request for staging a race; empty deselects
type SelectRaceInput struct {
	RecordID string
	Race     catalog.RaceID
}

// PreviewEditInput defines the request for reading an open session
type PreviewEditInput struct {
	RecordID string
}

// SaveEditInput defines the request for committing an edit session
type SaveEditInput struct {
	RecordID string
}

// SaveEditOutput defines the response for committing an edit session
type SaveEditOutput struct {
	Record *entities.Record
}

// CancelEditInput defines the request for discarding an edit session
type CancelEditInput struct {
	RecordID string
}

// CancelEditOutput defines the response for discarding an edit session
type CancelEditOutput struct {
	// Discarded is false when no session was open
	Discarded bool
}

// SelectClassInput defines the request for choosing a class
type SelectClassInput struct {
	RecordID string
	Class    catalog.ClassID
}

// SelectClassOutput defines the response for choosing a class
type SelectClassOutput struct {
	Record *entities.Record
}

// AcquireClassAbilityInput defines the request for acquiring an ability
type AcquireClassAbilityInput struct {
	RecordID string
	Ability  catalog.AbilityID
}

// AcquireClassAbilityOutput defines the response for acquiring an ability
type AcquireClassAbilityOutput struct {
	Record      *entities.Record
	Acquisition ledger.AcquisitionResult
}

// ExcludeItemsInput defines the request for removing saved traits
type ExcludeItemsInput struct {
	RecordID  string
	Exclusion ledger.Exclusion
	// Confirmed must be set; exclusion changes saved point totals
	Confirmed bool
}

// ExcludeItemsOutput defines the response for removing saved traits
type ExcludeItemsOutput struct {
	Record *entities.Record
}

// SetGMAdjustmentInput defines the request for a GM override
type SetGMAdjustmentInput struct {
	RecordID string
	Field    entities.DerivedField
	// Delta replaces the stored adjustment; 0 removes it
	Delta int
}

// SetGMAdjustmentOutput defines the response for a GM override
type SetGMAdjustmentOutput struct {
	Record *entities.Record
}

// SetGMModeInput defines the request for toggling GM mode
type SetGMModeInput struct {
	Enabled bool
	// Passphrase is only checked when enabling
	Passphrase string
}

// SetGMModeOutput defines the response for toggling GM mode
type SetGMModeOutput struct {
	Enabled bool
}

// ResetPointsInput defines the request for refunding every point spent
type ResetPointsInput struct {
	RecordID   string
	Passphrase string
}

// ResetPointsOutput defines the response for refunding every point spent
type ResetPointsOutput struct {
	Record *entities.Record
}

// ResetRecordInput defines the request for wiping a ficha
type ResetRecordInput struct {
	RecordID   string
	Passphrase string
}

// ResetRecordOutput defines the response for wiping a ficha
type ResetRecordOutput struct {
	Record *entities.Record
}

// ImportRecordInput defines the request for importing a ficha document
type ImportRecordInput struct {
	Data []byte
}

// ImportRecordOutput defines the response for importing a ficha document
type ImportRecordOutput struct {
	Record *entities.Record
}

// ExportRecordInput defines the request for exporting a ficha
type ExportRecordInput struct {
	RecordID string
}

// ExportRecordOutput defines the response for exporting a ficha
type ExportRecordOutput struct {
	Filename string
	Data     []byte
}

// GenerateNPCInput defines the request for generating an NPC ficha
type GenerateNPCInput struct {
	DisplayName string
	Level       int
	Archetype   catalog.ArchetypeID
	// Activate switches to the new ficha
	Activate bool
}

// GenerateNPCOutput defines the response for generating an NPC ficha
type GenerateNPCOutput struct {
	Record *entities.Record
}
