package ficha

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/npc"
)

// ImportRecord adds a ficha from a JSON document under a fresh id. The
// document must be an object with a display name; nothing is written when
// it is rejected.
func (o *Orchestrator) ImportRecord(ctx context.Context, input *ImportRecordInput) (*ImportRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	rec, err := entities.Decode(input.Data)
	if err != nil {
		return nil, err
	}
	name, ok := entities.DisplayNameOf(input.Data)
	if !ok {
		return nil, errors.InvalidArgument("imported ficha has no name")
	}

	rec.ID = o.idGen.Generate()
	rec.DisplayName = name
	rec.CreatedAt = 0

	o.mu.Lock()
	defer o.mu.Unlock()

	saved := o.store.PutRecord(ctx, o.ledger.Derive(rec))

	slog.InfoContext(ctx, "imported ficha",
		"record_id", saved.ID,
		"display_name", saved.DisplayName,
		"level", saved.Level)

	return &ImportRecordOutput{Record: saved}, nil
}

// ExportRecord renders a ficha as indented JSON with a filename taken from
// the character name, or the ficha name when that is blank
func (o *Orchestrator) ExportRecord(_ context.Context, input *ExportRecordInput) (*ExportRecordOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	rec, err := o.store.Record(o.resolve(input.RecordID))
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode ficha")
	}

	name := rec.Profile.CharacterName
	if strings.TrimSpace(name) == "" {
		name = rec.DisplayName
	}

	return &ExportRecordOutput{
		Filename: ExportFilename(name),
		Data:     pretty.Pretty(data),
	}, nil
}

// ExportFilename slugs a name: trimmed, whitespace runs become underscores
func ExportFilename(name string) string {
	slug := strings.Join(strings.Fields(name), "_")
	if slug == "" {
		slug = "ficha"
	}
	return slug + ".json"
}

// GenerateNPC creates a random NPC ficha for a level and archetype
func (o *Orchestrator) GenerateNPC(ctx context.Context, input *GenerateNPCInput) (*GenerateNPCOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Level < 0 {
		return nil, errors.InvalidArgumentf("level cannot be negative, got %d", input.Level)
	}

	rec, err := o.distributor.Generate(&npc.GenerateInput{
		ID:          o.idGen.Generate(),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Level:       input.Level,
		Archetype:   input.Archetype,
	})
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	saved := o.store.PutRecord(ctx, rec)
	if input.Activate {
		if err := o.store.SetActive(ctx, saved.ID); err != nil {
			return nil, errors.Wrap(err, "failed to activate npc")
		}
	}

	slog.InfoContext(ctx, "generated npc",
		"record_id", saved.ID,
		"archetype", input.Archetype,
		"level", saved.Level)

	return &GenerateNPCOutput{Record: saved}, nil
}
