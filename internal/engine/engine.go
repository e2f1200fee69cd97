// Package engine derives every computed statistic of a ficha from its
// primary attributes, equipment, traits, experience and GM adjustments.
package engine

import (
	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// Engine binds Derive to one catalog so callers do not thread it around
type Engine interface {
	// Derive returns a fully derived copy of rec
	Derive(rec *entities.Record) *entities.Record

	// Catalog is the reference data the engine derives against
	Catalog() *catalog.Catalog
}

type engine struct {
	catalog *catalog.Catalog
}

// Config configures the engine
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

// New creates an engine
func New(cfg *Config) (Engine, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &engine{catalog: cfg.Catalog}, nil
}

func (e *engine) Derive(rec *entities.Record) *entities.Record {
	return Derive(rec, e.catalog)
}

func (e *engine) Catalog() *catalog.Catalog {
	return e.catalog
}
