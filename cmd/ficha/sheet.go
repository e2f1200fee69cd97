package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/ledger"
	"github.com/KirkDiggler/rpg-ficha/internal/orchestrators/ficha"
)

func (c *cli) xpCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "xp AMOUNT",
		Short: "Add experience (positive amount)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseInt(args[0], "amount")
			if err != nil {
				return err
			}
			out, err := c.app.fichas.GainExperience(cmd.Context(), &ficha.GainExperienceInput{
				RecordID: id,
				Amount:   amount,
			})
			if err != nil {
				return err
			}
			if out.Progress.LeveledUp {
				fmt.Fprintf(c.out, "level %d -> %d, %d soul(s) granted\n",
					out.Progress.PreviousLevel, out.Progress.NewLevel, out.Progress.SoulsGranted)
			}
			for _, ability := range out.UnlockedAbilities {
				fmt.Fprintf(c.out, "unlocked: %s (%s)\n", ability.Name, ability.ID)
			}
			return c.printRecord(out.Record)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "ficha id, the active one by default")
	return cmd
}

func (c *cli) setCmd() *cobra.Command {
	var (
		id            string
		name          string
		characterName string
		description   string
		experience    int
		health        float64
		mana          float64
		stamina       float64
		souls         int
		attrs         map[string]int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save values directly; attributes and experience lock at the new values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			ctx := cmd.Context()

			current, err := c.app.fichas.GetRecord(ctx, &ficha.GetRecordInput{RecordID: id})
			if err != nil {
				return err
			}
			rec := current.Record

			var u ledger.Update
			if flags.Changed("name") {
				u.DisplayName = &name
			}
			if flags.Changed("character-name") || flags.Changed("description") {
				profile := rec.Profile
				if flags.Changed("character-name") {
					profile.CharacterName = characterName
				}
				if flags.Changed("description") {
					profile.Description = description
				}
				u.Profile = &profile
			}
			if flags.Changed("experience") {
				u.Experience = &experience
			}
			if flags.Changed("health") {
				u.HealthCurrent = &health
			}
			if flags.Changed("mana") {
				u.ManaCurrent = &mana
			}
			if flags.Changed("stamina") {
				u.StaminaCurrent = &stamina
			}
			if flags.Changed("souls") {
				u.SoulsTotal = &souls
			}
			if len(attrs) > 0 {
				next := rec.Attributes
				for key, value := range attrs {
					attr := entities.Attribute(key)
					if !attr.Valid() {
						return errors.InvalidArgumentf("unknown attribute %q", key)
					}
					next.Set(attr, value)
				}
				u.Attributes = &next
			}

			out, err := c.app.fichas.ApplyUpdate(ctx, &ficha.ApplyUpdateInput{RecordID: rec.ID, Update: u})
			if err != nil {
				return err
			}
			if out.Progress.LeveledUp {
				fmt.Fprintf(c.out, "level %d -> %d\n", out.Progress.PreviousLevel, out.Progress.NewLevel)
			}
			return c.printRecord(out.Record)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&id, "id", "", "ficha id, the active one by default")
	flags.StringVar(&name, "name", "", "ficha name")
	flags.StringVar(&characterName, "character-name", "", "the character's own name")
	flags.StringVar(&description, "description", "", "free text description")
	flags.IntVar(&experience, "experience", 0, "experience total")
	flags.Float64Var(&health, "health", 0, "current health")
	flags.Float64Var(&mana, "mana", 0, "current mana")
	flags.Float64Var(&stamina, "stamina", 0, "current stamina")
	flags.IntVar(&souls, "souls", 0, "souls total, GM mode only")
	flags.StringToIntVar(&attrs, "attr", nil, "attribute values, e.g. strength=8,agility=5")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var (
		id            string
		stage         map[string]int
		advantages    []string
		disadvantages []string
		race          string
	)

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Stage attribute steps and traits, then save them as one edit",
		Long: `edit opens an edit session, applies every staged change in order
(race, advantages, disadvantages, then attribute steps) and saves it. Any
rejected step discards the whole session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			begun, err := c.app.fichas.BeginEdit(ctx, &ficha.BeginEditInput{RecordID: id})
			if err != nil {
				return err
			}
			recordID := begun.Base.ID

			steps := editSteps(recordID, race, advantages, disadvantages, stage)
			for _, step := range steps {
				if err := step(ctx, c.app.fichas); err != nil {
					return c.abortEdit(cmd, recordID, err)
				}
			}

			out, err := c.app.fichas.SaveEdit(ctx, &ficha.SaveEditInput{RecordID: recordID})
			if err != nil {
				return c.abortEdit(cmd, recordID, err)
			}
			return c.printRecord(out.Record)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&id, "id", "", "ficha id, the active one by default")
	flags.StringToIntVar(&stage, "stage", nil, "attribute steps, e.g. strength=2,agility=-1")
	flags.StringSliceVar(&advantages, "advantage", nil, "advantage to toggle, repeatable")
	flags.StringSliceVar(&disadvantages, "disadvantage", nil, "disadvantage to toggle, repeatable")
	flags.StringVar(&race, "race", "", "race to select")
	return cmd
}

type editStep func(context.Context, *ficha.Orchestrator) error

func editSteps(recordID, race string, advantages, disadvantages []string, stage map[string]int) []editStep {
	var steps []editStep
	add := func(fn editStep) {
		steps = append(steps, fn)
	}

	if race != "" {
		add(func(ctx context.Context, o *ficha.Orchestrator) error {
			_, err := o.SelectRace(ctx, &ficha.SelectRaceInput{RecordID: recordID, Race: catalog.RaceID(race)})
			return err
		})
	}
	for _, a := range advantages {
		add(func(ctx context.Context, o *ficha.Orchestrator) error {
			_, err := o.ToggleAdvantage(ctx, &ficha.ToggleAdvantageInput{RecordID: recordID, Advantage: catalog.AdvantageID(a)})
			return err
		})
	}
	for _, d := range disadvantages {
		add(func(ctx context.Context, o *ficha.Orchestrator) error {
			_, err := o.ToggleDisadvantage(ctx, &ficha.ToggleDisadvantageInput{RecordID: recordID, Disadvantage: catalog.DisadvantageID(d)})
			return err
		})
	}

	keys := make([]string, 0, len(stage))
	for key := range stage {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		attr := entities.Attribute(key)
		delta, count := 1, stage[key]
		if count < 0 {
			delta, count = -1, -count
		}
		for range count {
			add(func(ctx context.Context, o *ficha.Orchestrator) error {
				_, err := o.StageAttribute(ctx, &ficha.StageAttributeInput{RecordID: recordID, Attribute: attr, Delta: delta})
				return err
			})
		}
	}
	return steps
}

func (c *cli) abortEdit(cmd *cobra.Command, recordID string, cause error) error {
	if _, err := c.app.fichas.CancelEdit(cmd.Context(), &ficha.CancelEditInput{RecordID: recordID}); err != nil {
		return errors.Wrap(err, "failed to discard edit")
	}
	return cause
}

func (c *cli) classCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "class CLASS",
		Short: "Choose the class of a ficha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.SelectClass(cmd.Context(), &ficha.SelectClassInput{
				RecordID: id,
				Class:    catalog.ClassID(args[0]),
			})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "ficha id, the active one by default")
	return cmd
}

func (c *cli) abilityCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "ability ABILITY",
		Short: "Acquire a class ability with a soul or advantage points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.AcquireClassAbility(cmd.Context(), &ficha.AcquireClassAbilityInput{
				RecordID: id,
				Ability:  catalog.AbilityID(args[0]),
			})
			if err != nil {
				return err
			}
			if out.Acquisition.PaidWithSoul {
				fmt.Fprintf(c.out, "acquired %s with a soul\n", out.Acquisition.Ability.Name)
			} else {
				fmt.Fprintf(c.out, "acquired %s for %d advantage points\n",
					out.Acquisition.Ability.Name, out.Acquisition.AdvantagePointsSpent)
			}
			return c.printRecord(out.Record)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "ficha id, the active one by default")
	return cmd
}

func (c *cli) excludeCmd() *cobra.Command {
	var (
		id            string
		advantages    []string
		disadvantages []string
		removeRace    bool
		confirmed     bool
	)

	cmd := &cobra.Command{
		Use:   "exclude",
		Short: "Remove saved advantages, disadvantages or the race",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exclusion := ledger.Exclusion{RemoveRace: removeRace}
			for _, a := range advantages {
				exclusion.Advantages = append(exclusion.Advantages, catalog.AdvantageID(a))
			}
			for _, d := range disadvantages {
				exclusion.Disadvantages = append(exclusion.Disadvantages, catalog.DisadvantageID(d))
			}

			out, err := c.app.fichas.ExcludeItems(cmd.Context(), &ficha.ExcludeItemsInput{
				RecordID:  id,
				Exclusion: exclusion,
				Confirmed: confirmed,
			})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&id, "id", "", "ficha id, the active one by default")
	flags.StringSliceVar(&advantages, "advantage", nil, "advantage to remove, repeatable")
	flags.StringSliceVar(&disadvantages, "disadvantage", nil, "disadvantage to remove, repeatable")
	flags.BoolVar(&removeRace, "race", false, "remove the race")
	flags.BoolVar(&confirmed, "yes", false, "confirm the exclusion")
	return cmd
}
