package entities

// Roll is one entry of a record's dice history
type Roll struct {
	ID       string `json:"id"`
	RecordID string `json:"recordId"`
	Notation string `json:"notation"`
	Dice     []int  `json:"dice"`

	// Modifier is the flat modifier from the notation plus the stat value
	Modifier int          `json:"modifier"`
	Stat     DerivedField `json:"stat,omitempty"`
	Total    int          `json:"total"`

	Description string `json:"description"`
	RolledAt    int64  `json:"rolledAt"`
}
