// Package npc generates random non-player fichas for a level and archetype
package npc

import (
	"fmt"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/engine"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
)

// maxAdvantageAttempts bounds the advantage picking loop
const maxAdvantageAttempts = 100

// maxDisadvantageRoll is the die for the disadvantage count; the count is
// the roll minus one
const maxDisadvantageRoll = 3

// Config configures a Distributor
type Config struct {
	Catalog *catalog.Catalog
	Roller  dice.Roller
}

// Validate checks the config
func (cfg *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if cfg.Catalog == nil {
		vb.RequiredField("Catalog")
	}
	if cfg.Roller == nil {
		vb.RequiredField("Roller")
	}
	return vb.Build()
}

// Distributor spreads a level's point budgets over an NPC skeleton
type Distributor struct {
	cat    *catalog.Catalog
	roller dice.Roller
}

// New creates a Distributor
func New(cfg *Config) (*Distributor, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Distributor{cat: cfg.Catalog, roller: cfg.Roller}, nil
}

// GenerateInput selects what to generate
type GenerateInput struct {
	ID          string
	DisplayName string
	Level       int
	Archetype   catalog.ArchetypeID
}

// Generate builds a derived NPC record with full resources. Only an
// unknown archetype is an error; budgets are met on a best-effort basis.
func (d *Distributor) Generate(input *GenerateInput) (*entities.Record, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	archetype, ok := d.cat.Archetype(input.Archetype)
	if !ok {
		return nil, errors.InvalidArgumentf("unknown archetype %q", input.Archetype)
	}

	row := d.cat.Row(input.Level)

	name := input.DisplayName
	if name == "" {
		name = fmt.Sprintf("%s nível %d", archetype.Name, row.Level)
	}
	rec := entities.NewRecord(input.ID, name)
	rec.IsNPC = true

	rec.Attributes = d.allocate(archetype, row.SkillPoints)
	rec.LockedAttributes = rec.Attributes
	rec.Experience = row.ExperienceThreshold
	rec.LockedExperience = row.ExperienceThreshold
	rec.SoulsTotal = row.Level

	points := row.AdvantagePoints
	points = d.pickRace(rec, points)
	points = d.pickDisadvantages(rec, points)
	d.pickAdvantages(rec, points)

	out := engine.Derive(rec, d.cat)
	out.Health.Current = out.Health.Total
	out.Mana.Current = out.Mana.Total
	out.Stamina.Current = out.Stamina.Total

	slog.Debug("generated npc",
		"archetype", archetype.ID,
		"level", out.Level,
		"race", out.SelectedRace,
		"advantage_points_left", out.AdvantagePointsAvailable)

	return out, nil
}

// allocate splits points by weight, hands out the truncation leftovers by
// weighted draws, then strips remainders off attributes that must be
// multiples and gives them to the heaviest free attribute
func (d *Distributor) allocate(archetype catalog.Archetype, points int) entities.Attributes {
	weights := make([]int, len(entities.AllAttributes))
	total := 0
	for i, attr := range entities.AllAttributes {
		weights[i] = max(archetype.Weights[string(attr)], 0)
		total += weights[i]
	}
	if total == 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = len(weights)
	}

	var attrs entities.Attributes
	spent := 0
	for i, attr := range entities.AllAttributes {
		share := weights[i] * points / total
		attrs.Set(attr, share)
		spent += share
	}

	for left := points - spent; left > 0; left-- {
		attr := entities.AllAttributes[d.weighted(weights, total)]
		attrs.Set(attr, attrs.Get(attr)+1)
	}

	freed := 0
	target := -1
	for i, attr := range entities.AllAttributes {
		step := archetype.Multiples[string(attr)]
		if step > 1 {
			rem := attrs.Get(attr) % step
			attrs.Set(attr, attrs.Get(attr)-rem)
			freed += rem
			continue
		}
		if target < 0 || weights[i] > weights[target] {
			target = i
		}
	}
	if target >= 0 && freed > 0 {
		attr := entities.AllAttributes[target]
		attrs.Set(attr, attrs.Get(attr)+freed)
	}

	return attrs
}

// weighted returns an index drawn with probability proportional to its
// weight
func (d *Distributor) weighted(weights []int, total int) int {
	roll, err := d.roller.Roll(total)
	if err != nil || roll < 1 || roll > total {
		return firstPositive(weights)
	}
	for i, w := range weights {
		roll -= w
		if roll <= 0 {
			return i
		}
	}
	return firstPositive(weights)
}

// pick returns a uniform index in [0, n); roller failures fall back to the
// first candidate
func (d *Distributor) pick(n int) int {
	if n <= 1 {
		return 0
	}
	roll, err := d.roller.Roll(n)
	if err != nil || roll < 1 || roll > n {
		return 0
	}
	return roll - 1
}

func (d *Distributor) pickRace(rec *entities.Record, points int) int {
	var affordable []catalog.Race
	for _, race := range d.cat.Races {
		if race.Cost <= points {
			affordable = append(affordable, race)
		}
	}
	if len(affordable) == 0 {
		return points
	}

	race := affordable[d.pick(len(affordable))]
	rec.SelectedRace = race.ID
	return points - race.Cost
}

func (d *Distributor) pickDisadvantages(rec *entities.Record, points int) int {
	count := 0
	if roll, err := d.roller.Roll(maxDisadvantageRoll); err == nil && roll >= 1 && roll <= maxDisadvantageRoll {
		count = roll - 1
	}
	count = min(count, d.cat.Rules.MaxDisadvantages)

	pool := append([]catalog.Disadvantage{}, d.cat.Disadvantages...)
	for i := 0; i < count && len(pool) > 0; i++ {
		j := d.pick(len(pool))
		rec.SelectedDisadvantages.Add(pool[j].ID)
		points += pool[j].Gain
		pool = append(pool[:j], pool[j+1:]...)
	}
	return points
}

func (d *Distributor) pickAdvantages(rec *entities.Record, points int) {
	for attempt := 0; attempt < maxAdvantageAttempts; attempt++ {
		var affordable []catalog.Advantage
		for _, adv := range d.cat.Advantages {
			if adv.OnlyAtLevelZero || adv.Cost > points || rec.SelectedAdvantages.Has(adv.ID) {
				continue
			}
			if d.cat.RaceGrants(rec.SelectedRace, adv.ID) {
				continue
			}
			affordable = append(affordable, adv)
		}
		if len(affordable) == 0 {
			return
		}

		adv := affordable[d.pick(len(affordable))]
		rec.SelectedAdvantages.Add(adv.ID)
		points -= adv.Cost
	}
}

func firstPositive(weights []int) int {
	for i, w := range weights {
		if w > 0 {
			return i
		}
	}
	return 0
}
