package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/KirkDiggler/rpg-ficha/internal/errors"
	"github.com/KirkDiggler/rpg-ficha/internal/store"
)

func (c *cli) stateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect and repair the state mirror",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				if err := root.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			if c.app.repo == nil {
				return errors.FailedPrecondition("the memory backend has no state mirror")
			}
			return nil
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Report values the store would repair or drop",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			issues, err := store.Check(cmd.Context(), c.app.repo)
			if err != nil {
				return err
			}
			if c.asJSON {
				return printJSON(c.out, issues)
			}
			if len(issues) == 0 {
				fmt.Fprintln(c.out, "state mirror is clean")
				return nil
			}
			for _, issue := range issues {
				fmt.Fprintf(c.out, "%s: %s\n", issue.Key, issue.Problem)
			}
			return nil
		},
	}

	repair := &cobra.Command{
		Use:   "repair",
		Short: "Rewrite the mirror from repaired state and drop unknown keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			removed, err := c.app.store.Repair(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "state mirror rewritten, %d unknown key(s) removed\n", removed)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show KEY",
		Short: "Print the stored value of one mirror key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := store.Raw(cmd.Context(), c.app.repo, args[0])
			if err != nil {
				return err
			}
			_, err = c.out.Write(pretty.Pretty(raw))
			return err
		},
	}

	cmd.AddCommand(check, repair, show)
	return cmd
}
