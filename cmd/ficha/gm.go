package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/orchestrators/ficha"
)

func parseInt(s, name string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.InvalidArgumentf("%s must be a whole number, got %q", name, s)
	}
	return n, nil
}

func (c *cli) gmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gm",
		Short: "GM mode and overrides",
	}

	var passphrase string
	on := &cobra.Command{
		Use:   "on",
		Short: "Turn GM mode on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.fichas.SetGMMode(cmd.Context(), &ficha.SetGMModeInput{
				Enabled:    true,
				Passphrase: passphrase,
			}); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "GM mode on")
			return nil
		},
	}
	on.Flags().StringVar(&passphrase, "passphrase", "", "GM passphrase")

	off := &cobra.Command{
		Use:   "off",
		Short: "Turn GM mode off",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := c.app.fichas.SetGMMode(cmd.Context(), &ficha.SetGMModeInput{}); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "GM mode off")
			return nil
		},
	}

	var id string
	adjust := &cobra.Command{
		Use:   "adjust FIELD DELTA",
		Short: "Set the GM adjustment of a derived field, 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			field := entities.DerivedField(args[0])
			if !field.Valid() {
				return errors.InvalidArgumentf("unknown field %q", args[0])
			}
			delta, err := parseInt(args[1], "delta")
			if err != nil {
				return err
			}
			out, err := c.app.fichas.SetGMAdjustment(cmd.Context(), &ficha.SetGMAdjustmentInput{
				RecordID: id,
				Field:    field,
				Delta:    delta,
			})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}
	adjust.Flags().StringVar(&id, "id", "", "ficha id, the active one by default")

	cmd.AddCommand(on, off, adjust)
	return cmd
}

func (c *cli) resetCmd() *cobra.Command {
	var id, passphrase string

	cmd := &cobra.Command{
		Use:       "reset points|record",
		Short:     "Refund every spent point, or wipe the ficha",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"points", "record"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var rec *entities.Record
			switch args[0] {
			case "points":
				out, err := c.app.fichas.ResetPoints(cmd.Context(), &ficha.ResetPointsInput{
					RecordID:   id,
					Passphrase: passphrase,
				})
				if err != nil {
					return err
				}
				rec = out.Record
			default:
				out, err := c.app.fichas.ResetRecord(cmd.Context(), &ficha.ResetRecordInput{
					RecordID:   id,
					Passphrase: passphrase,
				})
				if err != nil {
					return err
				}
				rec = out.Record
			}
			return c.printRecord(rec)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "ficha id, the active one by default")
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase for destructive actions")
	return cmd
}
