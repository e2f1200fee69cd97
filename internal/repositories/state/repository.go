// Package state provides the key-value mirror the store writes through to
package state

import (
	"context"
	"time"
)

//go:generate mockgen -destination=mock/mock_repository.go -package=statemock github.com/KirkDiggler/rpg-ficha/internal/repositories/state Repository

// Well known keys of the persisted layout
const (
	// KeyRecords holds the id to record JSON map
	KeyRecords = "fichas"

	// KeyActiveRecord holds the last active record id
	KeyActiveRecord = "fichaAtiva"

	// KeyGMMode holds the GM mode flag
	KeyGMMode = "modoMestre"

	// KeyRollHistory holds the roll history per record
	KeyRollHistory = "rolagens"
)

// Entry is one stored value
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// GetInput contains parameters for reading a key
type GetInput struct {
	Key string
}

// GetOutput contains the stored entry
type GetOutput struct {
	Entry *Entry
}

// PutInput contains parameters for writing a key
type PutInput struct {
	Key   string
	Value []byte
}

// PutOutput contains the written entry
type PutOutput struct {
	Entry *Entry
}

// DeleteInput contains parameters for removing a key
type DeleteInput struct {
	Key string
}

// DeleteOutput reports whether a value was removed
type DeleteOutput struct {
	Deleted bool
}

// ListInput contains parameters for listing entries
type ListInput struct{}

// ListOutput contains every stored entry ordered by key
type ListOutput struct {
	Entries []*Entry
}

// Repository is a flat key-value store
type Repository interface {
	// Get returns NotFound when the key is absent
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Put creates or replaces a value
	Put(ctx context.Context, input PutInput) (*PutOutput, error)

	// Delete removes a value; deleting an absent key is not an error
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns every entry
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}
