// Package catalog holds the static reference data of the game: advantages,
// disadvantages, races, classes with their abilities, the level table, NPC
// archetypes and the derivation constants. The data ships embedded as YAML
// and is read-only once loaded.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

//go:embed data/*.yaml
var dataFS embed.FS

// document is the shape shared by every YAML file; each file fills the
// sections it owns
type document struct {
	Rules         *Rules         `yaml:"rules"`
	Advantages    []Advantage    `yaml:"advantages"`
	Disadvantages []Disadvantage `yaml:"disadvantages"`
	Races         []Race         `yaml:"races"`
	Classes       []Class        `yaml:"classes"`
	Levels        []LevelRow     `yaml:"levels"`
	Archetypes    []Archetype    `yaml:"archetypes"`
}

// Catalog is the loaded reference data with id indexes
type Catalog struct {
	Rules         Rules
	Advantages    []Advantage
	Disadvantages []Disadvantage
	Races         []Race
	Classes       []Class
	Levels        []LevelRow
	Archetypes    []Archetype

	advantages    map[AdvantageID]int
	disadvantages map[DisadvantageID]int
	races         map[RaceID]int
	classes       map[ClassID]int
	archetypes    map[ArchetypeID]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the catalog embedded in the binary. It is parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadFS(dataFS, "data")
	})
	return defaultCatalog, defaultErr
}

// MustDefault is Default for callers that cannot continue without the
// embedded data
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// LoadFS reads every .yaml file under root and merges them into one catalog
func LoadFS(fsys fs.FS, root string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog dir %s", root)
	}

	var docs [][]byte
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := fs.ReadFile(fsys, root+"/"+entry.Name())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read catalog file %s", entry.Name())
		}
		docs = append(docs, data)
	}

	return Load(docs...)
}

// Load parses and merges YAML documents, then validates the result
func Load(docs ...[]byte) (*Catalog, error) {
	c := &Catalog{}
	for i, data := range docs {
		var doc document
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument,
				fmt.Sprintf("failed to parse catalog document %d", i))
		}
		if doc.Rules != nil {
			c.Rules = *doc.Rules
		}
		c.Advantages = append(c.Advantages, doc.Advantages...)
		c.Disadvantages = append(c.Disadvantages, doc.Disadvantages...)
		c.Races = append(c.Races, doc.Races...)
		c.Classes = append(c.Classes, doc.Classes...)
		c.Levels = append(c.Levels, doc.Levels...)
		c.Archetypes = append(c.Archetypes, doc.Archetypes...)
	}

	sort.Slice(c.Levels, func(i, j int) bool { return c.Levels[i].Level < c.Levels[j].Level })

	if err := c.index(); err != nil {
		return nil, err
	}
	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Catalog) index() error {
	vb := errors.NewValidationBuilder()

	c.advantages = make(map[AdvantageID]int, len(c.Advantages))
	for i, a := range c.Advantages {
		if _, dup := c.advantages[a.ID]; dup {
			vb.Fieldf("advantages", "duplicate id %q", a.ID)
		}
		c.advantages[a.ID] = i
	}

	c.disadvantages = make(map[DisadvantageID]int, len(c.Disadvantages))
	for i, d := range c.Disadvantages {
		if _, dup := c.disadvantages[d.ID]; dup {
			vb.Fieldf("disadvantages", "duplicate id %q", d.ID)
		}
		c.disadvantages[d.ID] = i
	}

	c.races = make(map[RaceID]int, len(c.Races))
	for i, r := range c.Races {
		if _, dup := c.races[r.ID]; dup {
			vb.Fieldf("races", "duplicate id %q", r.ID)
		}
		c.races[r.ID] = i
	}

	c.classes = make(map[ClassID]int, len(c.Classes))
	for i, cl := range c.Classes {
		if _, dup := c.classes[cl.ID]; dup {
			vb.Fieldf("classes", "duplicate id %q", cl.ID)
		}
		c.classes[cl.ID] = i
	}

	c.archetypes = make(map[ArchetypeID]int, len(c.Archetypes))
	for i, a := range c.Archetypes {
		if _, dup := c.archetypes[a.ID]; dup {
			vb.Fieldf("archetypes", "duplicate id %q", a.ID)
		}
		c.archetypes[a.ID] = i
	}

	return vb.Build()
}

func (c *Catalog) validate() error {
	vb := errors.NewValidationBuilder()

	if len(c.Levels) == 0 {
		vb.RequiredField("levels")
	} else if c.Levels[0].ExperienceThreshold != 0 {
		vb.Field("levels", "first row must start at 0 experience")
	}
	for i := 1; i < len(c.Levels); i++ {
		prev, cur := c.Levels[i-1], c.Levels[i]
		if cur.Level <= prev.Level || cur.ExperienceThreshold <= prev.ExperienceThreshold {
			vb.Fieldf("levels", "row %d must strictly increase level and experience", cur.Level)
		}
	}

	for _, r := range c.Races {
		for _, granted := range r.GrantedAdvantages {
			if _, ok := c.advantages[granted]; !ok {
				vb.Fieldf("races", "%s grants unknown advantage %q", r.ID, granted)
			}
		}
	}

	for _, cl := range c.Classes {
		for _, a := range cl.Abilities {
			if !a.Type.Valid() {
				vb.Fieldf("classes", "%s ability %s has unknown type %q", cl.ID, a.ID, a.Type)
			}
			if a.SoulCost != 1 {
				vb.Fieldf("classes", "%s ability %s must cost exactly one soul, got %d", cl.ID, a.ID, a.SoulCost)
			}
		}
	}

	if c.Rules.CarryCapacityStep <= 0 {
		vb.Field("rules.carry_capacity_step", "must be positive")
	}
	if c.Rules.MaxDisadvantages <= 0 {
		vb.Field("rules.max_disadvantages", "must be positive")
	}

	return vb.Build()
}

// Advantage looks up an advantage by id
func (c *Catalog) Advantage(id AdvantageID) (Advantage, bool) {
	i, ok := c.advantages[id]
	if !ok {
		return Advantage{}, false
	}
	return c.Advantages[i], true
}

// Disadvantage looks up a disadvantage by id
func (c *Catalog) Disadvantage(id DisadvantageID) (Disadvantage, bool) {
	i, ok := c.disadvantages[id]
	if !ok {
		return Disadvantage{}, false
	}
	return c.Disadvantages[i], true
}

// Race looks up a race by id
func (c *Catalog) Race(id RaceID) (Race, bool) {
	i, ok := c.races[id]
	if !ok {
		return Race{}, false
	}
	return c.Races[i], true
}

// Class looks up a class by id
func (c *Catalog) Class(id ClassID) (*Class, bool) {
	i, ok := c.classes[id]
	if !ok {
		return nil, false
	}
	return &c.Classes[i], true
}

// Archetype looks up an NPC archetype by id
func (c *Catalog) Archetype(id ArchetypeID) (Archetype, bool) {
	i, ok := c.archetypes[id]
	if !ok {
		return Archetype{}, false
	}
	return c.Archetypes[i], true
}

// LevelFor returns the highest row whose threshold is less than or equal to
// experience. Negative experience maps to the first row.
func (c *Catalog) LevelFor(experience int) LevelRow {
	// first row strictly above experience, then step back one
	i := sort.Search(len(c.Levels), func(i int) bool {
		return c.Levels[i].ExperienceThreshold > experience
	})
	if i == 0 {
		return c.Levels[0]
	}
	return c.Levels[i-1]
}

// Row returns the table row for a level, clamped into the table range
func (c *Catalog) Row(level int) LevelRow {
	if level <= c.Levels[0].Level {
		return c.Levels[0]
	}
	last := c.Levels[len(c.Levels)-1]
	if level >= last.Level {
		return last
	}
	i := sort.Search(len(c.Levels), func(i int) bool { return c.Levels[i].Level >= level })
	return c.Levels[i]
}

// MaxLevel is the last level of the table
func (c *Catalog) MaxLevel() int {
	return c.Levels[len(c.Levels)-1].Level
}

// Ability finds a class ability by id across every class
func (c *Catalog) Ability(id AbilityID) (ClassAbility, bool) {
	for i := range c.Classes {
		if a, ok := c.Classes[i].Ability(id); ok {
			return a, true
		}
	}
	return ClassAbility{}, false
}

// RaceGrants reports whether the race grants the advantage for free
func (c *Catalog) RaceGrants(race RaceID, advantage AdvantageID) bool {
	r, ok := c.Race(race)
	if !ok {
		return false
	}
	for _, granted := range r.GrantedAdvantages {
		if granted == advantage {
			return true
		}
	}
	return false
}
