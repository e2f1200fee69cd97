package dice

import (
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
)

// RollDiceInput defines the request for rolling dice
type RollDiceInput struct {
	// RecordID owns the roll; empty means the active ficha
	RecordID string

	// Notation is XdY with an optional +N or -N
	Notation string

	// Stat adds the record's current value of a derived field
	Stat entities.DerivedField

	Description string
}

// RollDiceOutput defines the response for rolling dice
type RollDiceOutput struct {
	Roll *entities.Roll
}

// GetHistoryInput defines the request for reading roll history
type GetHistoryInput struct {
	// RecordID selects the ficha; empty means the active ficha
	RecordID string
}

// GetHistoryOutput defines the response for reading roll history
type GetHistoryOutput struct {
	RecordID string
	Rolls    []entities.Roll
}

// ClearHistoryInput defines the request for clearing roll history
type ClearHistoryInput struct {
	// RecordID selects the ficha; empty clears every history
	RecordID   string
	Passphrase string
}

// ClearHistoryOutput defines the response for clearing roll history
type ClearHistoryOutput struct {
	RollsDeleted int
}
