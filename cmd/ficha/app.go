package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/KirkDiggler/rpg-toolkit/events"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/config"
	"github.com/KirkDiggler/rpg-ficha/internal/engine"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/ledger"
	"github.com/KirkDiggler/rpg-ficha/internal/npc"
	dicesvc "github.com/KirkDiggler/rpg-ficha/internal/orchestrators/dice"
	"github.com/KirkDiggler/rpg-ficha/internal/orchestrators/ficha"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/clock"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/gate"
	"github.com/KirkDiggler/rpg-ficha/internal/pkg/idgen"
	"github.com/KirkDiggler/rpg-ficha/internal/redis"
	"github.com/KirkDiggler/rpg-ficha/internal/repositories/state"
	"github.com/KirkDiggler/rpg-ficha/internal/store"
)

// app is the assembled service graph for one invocation
type app struct {
	catalog *catalog.Catalog
	repo    state.Repository
	store   *store.Store
	fichas  *ficha.Orchestrator
	dice    dicesvc.Service

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	cat, err := catalog.Default()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load catalog")
	}

	a := &app{catalog: cat}
	clk := clock.New()

	switch cfg.Backend {
	case config.BackendRedis:
		client, err := redis.NewClient(cfg.RedisAddr, nil)
		if err != nil {
			return nil, a.abandon(errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid redis address"))
		}
		a.closers = append(a.closers, client.Close)

		repo, err := state.NewRedisRepository(&state.RedisConfig{
			Client:    client,
			Clock:     clk,
			KeyPrefix: cfg.RedisKeyPrefix,
		})
		if err != nil {
			return nil, a.abandon(err)
		}
		a.repo = repo
	case config.BackendSQLite:
		repo, err := state.OpenSQLite(&state.SQLiteConfig{Path: cfg.SQLitePath, Clock: clk})
		if err != nil {
			return nil, a.abandon(err)
		}
		a.closers = append(a.closers, repo.Close)
		a.repo = repo
	}

	eng, err := engine.New(&engine.Config{Catalog: cat})
	if err != nil {
		return nil, a.abandon(err)
	}

	a.store, err = store.New(&store.Config{Repository: a.repo, Engine: eng, Clock: clk})
	if err != nil {
		return nil, a.abandon(err)
	}
	a.store.Load(ctx)

	led, err := ledger.New(&ledger.Config{Catalog: cat})
	if err != nil {
		return nil, a.abandon(err)
	}

	distributor, err := npc.New(&npc.Config{Catalog: cat, Roller: dice.DefaultRoller})
	if err != nil {
		return nil, a.abandon(err)
	}

	bus := events.NewBus()
	bus.SubscribeFunc(ficha.EventLevelUp, 0, func(_ context.Context, e events.Event) error {
		fmt.Fprintf(out, "*** %s leveled up ***\n", e.Source().GetID())
		return nil
	})

	g := gate.New(cfg.Passphrase)

	a.fichas, err = ficha.New(&ficha.Config{
		Store:       a.store,
		Ledger:      led,
		Distributor: distributor,
		EventBus:    bus,
		IDGenerator: idgen.NewUUID("ficha"),
		Gate:        g,
	})
	if err != nil {
		return nil, a.abandon(err)
	}

	a.dice, err = dicesvc.NewOrchestrator(&dicesvc.Config{
		Store:        a.store,
		IDGenerator:  idgen.NewUUID("roll"),
		Clock:        clk,
		Gate:         g,
		Roller:       dice.DefaultRoller,
		HistoryLimit: cfg.RollHistoryLimit,
	})
	if err != nil {
		return nil, a.abandon(err)
	}

	slog.DebugContext(ctx, "assembled services",
		"backend", cfg.Backend,
		"degraded", a.store.Degraded())

	return a, nil
}

// abandon releases whatever newApp opened before it failed and returns the
// original error
func (a *app) abandon(err error) error {
	if closeErr := a.Close(); closeErr != nil {
		slog.Warn("failed to release backend after setup error", "error", closeErr)
	}
	return err
}

// Close releases backend connections
func (a *app) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = errors.WrapWithCode(err, errors.CodeUnavailable, "failed to close backend")
		}
	}
	a.closers = nil
	return first
}
