// Package dice implements the dice orchestrator: rolls that may add a
// ficha's derived stat, and the per-ficha roll history
package dice

//go:generate mockgen -destination=mock/mock_service.go -package=dicemock github.com/KirkDiggler/rpg-ficha/internal/orchestrators/dice Service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/dice"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/gate"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-ficha/internal/store"
)

const (
	// DefaultHistoryLimit is how many rolls each ficha keeps
	DefaultHistoryLimit = 50

	maxDiceCount = 100
	maxDieSize   = 1000
)

var (
	// Regex for dice notation like "2d6", "1d20+5", "3d8-1"
	diceNotationRegex = regexp.MustCompile(`^(\d+)d(\d+)(?:([+-])(\d+))?$`)
)

// Service defines the interface for dice operations
type Service interface {
	RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error)
	GetHistory(ctx context.Context, input *GetHistoryInput) (*GetHistoryOutput, error)
	ClearHistory(ctx context.Context, input *ClearHistoryInput) (*ClearHistoryOutput, error)
}

// Config holds the dependencies for the dice orchestrator
type Config struct {
	Store       *store.Store
	IDGenerator idgen.Generator
	Clock       clock.Clock
	Gate        *gate.Gate

	// Roller defaults to the toolkit's random roller
	Roller dice.Roller

	// HistoryLimit defaults to DefaultHistoryLimit
	HistoryLimit int
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Store == nil {
		vb.RequiredField("Store")
	}
	if c.IDGenerator == nil {
		vb.RequiredField("IDGenerator")
	}
	if c.Clock == nil {
		vb.RequiredField("Clock")
	}
	if c.Gate == nil {
		vb.RequiredField("Gate")
	}
	if c.HistoryLimit < 0 {
		vb.Field("HistoryLimit", "cannot be negative")
	}

	return vb.Build()
}

type orchestrator struct {
	store        *store.Store
	idGen        idgen.Generator
	clock        clock.Clock
	gate         *gate.Gate
	roller       dice.Roller
	historyLimit int
}

// NewOrchestrator creates a new dice orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.DefaultRoller
	}
	limit := cfg.HistoryLimit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}

	return &orchestrator{
		store:        cfg.Store,
		idGen:        cfg.IDGenerator,
		clock:        cfg.Clock,
		gate:         cfg.Gate,
		roller:       roller,
		historyLimit: limit,
	}, nil
}

// notation is a parsed dice expression
type notation struct {
	count    int
	size     int
	modifier int
}

// parseDiceNotation parses notation like "2d6+1"
func parseDiceNotation(raw string) (notation, error) {
	matches := diceNotationRegex.FindStringSubmatch(strings.ToLower(strings.ReplaceAll(raw, " ", "")))
	if matches == nil {
		return notation{}, errors.InvalidArgumentf("invalid dice notation: %s (expected format: XdY, XdY+N or XdY-N)", raw)
	}

	count, err := strconv.Atoi(matches[1])
	if err != nil {
		return notation{}, errors.InvalidArgumentf("invalid dice count in notation: %s", raw)
	}
	size, err := strconv.Atoi(matches[2])
	if err != nil {
		return notation{}, errors.InvalidArgumentf("invalid die size in notation: %s", raw)
	}
	if count <= 0 || size <= 0 {
		return notation{}, errors.InvalidArgumentf("dice count and size must be positive: %s", raw)
	}
	if count > maxDiceCount || size > maxDieSize {
		return notation{}, errors.InvalidArgumentf("at most %dd%d can be rolled at once: %s", maxDiceCount, maxDieSize, raw)
	}

	n := notation{count: count, size: size}
	if matches[4] != "" {
		mod, err := strconv.Atoi(matches[4])
		if err != nil {
			return notation{}, errors.InvalidArgumentf("invalid modifier in notation: %s", raw)
		}
		if matches[3] == "-" {
			mod = -mod
		}
		n.modifier = mod
	}

	return n, nil
}

// RollDice rolls the notation, adds the stat value when one is named and
// records the roll on the ficha's history
func (o *orchestrator) RollDice(ctx context.Context, input *RollDiceInput) (*RollDiceOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.Notation == "" {
		return nil, errors.InvalidArgument("dice notation is required")
	}

	n, err := parseDiceNotation(input.Notation)
	if err != nil {
		return nil, err
	}

	recordID := o.resolve(input.RecordID)
	rec, err := o.store.Record(recordID)
	if err != nil {
		return nil, err
	}

	modifier := n.modifier
	if input.Stat != "" {
		if !input.Stat.Valid() {
			return nil, errors.InvalidArgumentf("unknown derived field %q", input.Stat)
		}
		modifier += int(math.Floor(rec.Value(input.Stat)))
	}

	values, err := o.roller.RollN(n.count, n.size)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to roll %dd%d", n.count, n.size)
	}

	sum := 0
	for _, v := range values {
		sum += v
	}

	roll := entities.Roll{
		ID:          o.idGen.Generate(),
		RecordID:    recordID,
		Notation:    input.Notation,
		Dice:        values,
		Modifier:    modifier,
		Stat:        input.Stat,
		Total:       sum + modifier,
		Description: input.Description,
		RolledAt:    o.clock.Now().UnixMilli(),
	}
	if roll.Description == "" {
		roll.Description = describe(n, values, modifier, sum+modifier)
	}

	if err := o.store.AppendRoll(ctx, roll, o.historyLimit); err != nil {
		return nil, errors.Wrap(err, "failed to record roll")
	}

	slog.DebugContext(ctx, "rolled dice",
		"record_id", recordID,
		"notation", input.Notation,
		"stat", input.Stat,
		"total", roll.Total)

	return &RollDiceOutput{Roll: &roll}, nil
}

// GetHistory returns a ficha's rolls, oldest first
func (o *orchestrator) GetHistory(_ context.Context, input *GetHistoryInput) (*GetHistoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	recordID := o.resolve(input.RecordID)
	if _, err := o.store.Record(recordID); err != nil {
		return nil, err
	}

	return &GetHistoryOutput{
		RecordID: recordID,
		Rolls:    o.store.Rolls(recordID),
	}, nil
}

// ClearHistory removes roll history behind the passphrase
func (o *orchestrator) ClearHistory(ctx context.Context, input *ClearHistoryInput) (*ClearHistoryOutput, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if err := o.gate.Check(input.Passphrase); err != nil {
		return nil, err
	}

	if input.RecordID != "" {
		if _, err := o.store.Record(input.RecordID); err != nil {
			return nil, err
		}
	}

	removed := o.store.ClearRolls(ctx, input.RecordID)

	slog.InfoContext(ctx, "cleared roll history",
		"record_id", input.RecordID,
		"rolls_deleted", removed)

	return &ClearHistoryOutput{RollsDeleted: removed}, nil
}

func (o *orchestrator) resolve(recordID string) string {
	if recordID == "" {
		return o.store.ActiveID()
	}
	return recordID
}

// describe renders a roll as "+2d6[3,4]+1=8"
func describe(n notation, values []int, modifier, total int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "+%dd%d[%s]", n.count, n.size, strings.Join(parts, ","))
	if modifier != 0 {
		fmt.Fprintf(&b, "%+d", modifier)
	}
	fmt.Fprintf(&b, "=%d", total)
	return b.String()
}
