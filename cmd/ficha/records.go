package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-ficha/internal/entities"
	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/orchestrators/ficha"
)

func recordID(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func (c *cli) listCmd() *cobra.Command {
	var includeNPCs bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List fichas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.app.fichas.ListRecords(cmd.Context(), &ficha.ListRecordsInput{IncludeNPCs: includeNPCs})
			if err != nil {
				return err
			}
			if c.asJSON {
				return printJSON(c.out, out.Records)
			}

			for _, rec := range out.Records {
				marker := " "
				if rec.ID == out.ActiveID {
					marker = "*"
				}
				fmt.Fprintf(c.out, "%s %-40s %-24s level %d\n", marker, rec.ID, rec.DisplayName, rec.Level)
			}
			if out.GMMode {
				fmt.Fprintln(c.out, "GM mode is on")
			}
			if out.Degraded {
				fmt.Fprintln(c.out, "warning: state mirror unavailable, changes are kept in memory only")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&includeNPCs, "npcs", false, "include generated NPCs")
	return cmd
}

func (c *cli) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show a ficha, the active one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.GetRecord(cmd.Context(), &ficha.GetRecordInput{RecordID: recordID(args)})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}
}

func (c *cli) createCmd() *cobra.Command {
	var profile entities.Profile

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a blank ficha and make it active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.CreateRecord(cmd.Context(), &ficha.CreateRecordInput{
				DisplayName: args[0],
				Profile:     profile,
			})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}
	cmd.Flags().StringVar(&profile.CharacterName, "character-name", "", "the character's own name")
	cmd.Flags().StringVar(&profile.Description, "description", "", "free text description")
	return cmd
}

func (c *cli) useCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "use ID",
		Short: "Make a ficha the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.SetActiveRecord(cmd.Context(), &ficha.SetActiveRecordInput{RecordID: args[0]})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "active: %s (%s)\n", out.Record.DisplayName, out.Record.ID)
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a ficha",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.DeleteRecord(cmd.Context(), &ficha.DeleteRecordInput{
				RecordID:   args[0],
				Passphrase: passphrase,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "deleted %s, active: %s\n", args[0], out.ActiveID)
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "passphrase for destructive actions")
	return cmd
}

func (c *cli) importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Import a ficha from a JSON file under a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to read import file")
			}
			out, err := c.app.fichas.ImportRecord(cmd.Context(), &ficha.ImportRecordInput{Data: data})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write a ficha to a JSON file named after the character",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.ExportRecord(cmd.Context(), &ficha.ExportRecordInput{RecordID: recordID(args)})
			if err != nil {
				return err
			}
			path := filepath.Join(dir, out.Filename)
			if err := os.WriteFile(path, out.Data, 0o644); err != nil {
				return errors.Wrapf(err, "failed to write %s", path)
			}
			fmt.Fprintf(c.out, "exported %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write into")
	return cmd
}
