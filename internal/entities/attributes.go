package entities

// Attribute names one of the five primary attributes
type Attribute string

// Primary attributes
const (
	AttributeStrength     Attribute = "strength"
	AttributeDexterity    Attribute = "dexterity"
	AttributeAgility      Attribute = "agility"
	AttributeConstitution Attribute = "constitution"
	AttributeIntelligence Attribute = "intelligence"
)

// AllAttributes lists the primary attributes in sheet order
var AllAttributes = []Attribute{
	AttributeStrength,
	AttributeDexterity,
	AttributeAgility,
	AttributeConstitution,
	AttributeIntelligence,
}

// Valid reports whether a is a known attribute
func (a Attribute) Valid() bool {
	switch a {
	case AttributeStrength, AttributeDexterity, AttributeAgility, AttributeConstitution, AttributeIntelligence:
		return true
	}
	return false
}

// Attributes holds points allocated to each primary attribute
type Attributes struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Agility      int `json:"agility"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
}

// Get returns the value of one attribute; unknown attributes read as 0
func (a Attributes) Get(attr Attribute) int {
	switch attr {
	case AttributeStrength:
		return a.Strength
	case AttributeDexterity:
		return a.Dexterity
	case AttributeAgility:
		return a.Agility
	case AttributeConstitution:
		return a.Constitution
	case AttributeIntelligence:
		return a.Intelligence
	}
	return 0
}

// Set assigns one attribute
func (a *Attributes) Set(attr Attribute, value int) {
	switch attr {
	case AttributeStrength:
		a.Strength = value
	case AttributeDexterity:
		a.Dexterity = value
	case AttributeAgility:
		a.Agility = value
	case AttributeConstitution:
		a.Constitution = value
	case AttributeIntelligence:
		a.Intelligence = value
	}
}

// Sum totals all five attributes
func (a Attributes) Sum() int {
	return a.Strength + a.Dexterity + a.Agility + a.Constitution + a.Intelligence
}

// NonNegative returns a copy with negative values raised to 0
func (a Attributes) NonNegative() Attributes {
	out := a
	for _, attr := range AllAttributes {
		if out.Get(attr) < 0 {
			out.Set(attr, 0)
		}
	}
	return out
}

// Max returns the attribute-wise maximum of a and b
func (a Attributes) Max(b Attributes) Attributes {
	out := a
	for _, attr := range AllAttributes {
		if b.Get(attr) > out.Get(attr) {
			out.Set(attr, b.Get(attr))
		}
	}
	return out
}
