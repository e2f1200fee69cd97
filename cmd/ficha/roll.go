package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	dicesvc "github.com/KirkDiggler/rpg-ficha/internal/orchestrators/dice"
)

func (c *cli) rollCmd() *cobra.Command {
	var id, stat string

	cmd := &cobra.Command{
		Use:   "roll NOTATION",
		Short: "Roll dice such as 2d6+1, optionally adding a derived stat",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.dice.RollDice(cmd.Context(), &dicesvc.RollDiceInput{
				RecordID: id,
				Notation: args[0],
				Stat:     entities.DerivedField(stat),
			})
			if err != nil {
				return err
			}
			if c.asJSON {
				return printJSON(c.out, out.Roll)
			}
			fmt.Fprintf(c.out, "%s: %s\n", out.Roll.Notation, out.Roll.Description)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "ficha id, the active one by default")
	cmd.Flags().StringVar(&stat, "stat", "", "derived stat to add, e.g. attack")
	return cmd
}

func (c *cli) historyCmd() *cobra.Command {
	var id string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the dice history of a ficha",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.app.dice.GetHistory(cmd.Context(), &dicesvc.GetHistoryInput{RecordID: id})
			if err != nil {
				return err
			}
			if c.asJSON {
				return printJSON(c.out, out.Rolls)
			}
			for _, roll := range out.Rolls {
				fmt.Fprintf(c.out, "%-10s %-12s %s\n", roll.Notation, orDash(string(roll.Stat)), roll.Description)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&id, "id", "", "ficha id, the active one by default; clear takes every ficha when empty")

	var passphrase string
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete dice history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.app.dice.ClearHistory(cmd.Context(), &dicesvc.ClearHistoryInput{
				RecordID:   id,
				Passphrase: passphrase,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted %d roll(s)\n", out.RollsDeleted)
			return nil
		},
	}
	clearCmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase for destructive actions")

	cmd.AddCommand(clearCmd)
	return cmd
}
