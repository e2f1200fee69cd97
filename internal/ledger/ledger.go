// Package ledger keeps a ficha's progression and point budgets consistent.
// Every operation takes a record, returns a new derived record and leaves
// its input untouched, so a rejected action never leaves partial changes.
package ledger

import (
	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/engine"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// Ledger applies progression rules against one catalog
type Ledger struct {
	cat *catalog.Catalog
}

// Config configures a Ledger
type Config struct {
	Catalog *catalog.Catalog
}

// Validate checks the config
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	return vb.Build()
}

// New creates a Ledger
func New(cfg *Config) (*Ledger, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Ledger{cat: cfg.Catalog}, nil
}

// Catalog returns the reference data the ledger applies
func (l *Ledger) Catalog() *catalog.Catalog {
	return l.cat
}

// Derive runs the derivation engine against the ledger's catalog
func (l *Ledger) Derive(rec *entities.Record) *entities.Record {
	return engine.Derive(rec, l.cat)
}

// LevelFor returns the level table row reached with experience
func (l *Ledger) LevelFor(experience int) catalog.LevelRow {
	return l.cat.LevelFor(experience)
}

// AvailableAdvantagePoints is the advantage point total minus selected
// advantages and race, plus disadvantage gains, minus the advantage points
// already paid for class abilities
func (l *Ledger) AvailableAdvantagePoints(rec *entities.Record) int {
	return l.Derive(rec).AdvantagePointsAvailable
}

// ExperienceResult reports the level change caused by an experience change
type ExperienceResult struct {
	PreviousLevel int
	NewLevel      int
	LeveledUp     bool
	SoulsGranted  int
}

// ApplyExperienceGain adds delta experience. Each level gained grants one
// soul.
func (l *Ledger) ApplyExperienceGain(rec *entities.Record, delta int) (*entities.Record, ExperienceResult, error) {
	if delta <= 0 {
		return nil, ExperienceResult{}, errors.InvalidArgumentf("experience gain must be positive, got %d", delta)
	}

	out, result := l.setExperience(rec, rec.Experience+delta)
	return out, result, nil
}

// setExperience moves experience forward, raises the lock, grants souls for
// levels gained and derives. Callers check the lock first.
func (l *Ledger) setExperience(rec *entities.Record, experience int) (*entities.Record, ExperienceResult) {
	before := l.Derive(rec)

	next := before.Clone()
	next.Experience = experience
	next.LockedExperience = max(next.LockedExperience, experience)

	result := ExperienceResult{
		PreviousLevel: before.Level,
		NewLevel:      l.cat.LevelFor(experience).Level,
	}
	if result.NewLevel > result.PreviousLevel {
		result.LeveledUp = true
		result.SoulsGranted = result.NewLevel - result.PreviousLevel
		next.SoulsTotal += result.SoulsGranted
	}

	return l.Derive(next), result
}
