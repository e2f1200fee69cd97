// Package gate is the shared passphrase check in front of destructive
// actions. It keeps honest users from deleting things by accident; it is
// not access control.
package gate

import (
	"crypto/subtle"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// DefaultPassphrase is used when none is configured
const DefaultPassphrase = "mestre"

// Gate checks a single static passphrase
type Gate struct {
	phrase []byte
}

// New creates a gate; an empty phrase falls back to DefaultPassphrase
func New(phrase string) *Gate {
	if phrase == "" {
		phrase = DefaultPassphrase
	}
	return &Gate{phrase: []byte(phrase)}
}

// Check returns PermissionDenied unless attempt matches
func (g *Gate) Check(attempt string) error {
	if subtle.ConstantTimeCompare(g.phrase, []byte(attempt)) != 1 {
		return errors.PermissionDenied("incorrect passphrase")
	}
	return nil
}
