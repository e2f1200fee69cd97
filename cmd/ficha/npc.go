package main

import (
	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-ficha/internal/catalog"
	"github.com/KirkDiggler/rpg-ficha/internal/orchestrators/ficha"
)

func (c *cli) npcCmd() *cobra.Command {
	var (
		name     string
		level    int
		activate bool
	)

	cmd := &cobra.Command{
		Use:   "npc ARCHETYPE",
		Short: "Generate a random NPC for a level and archetype",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.fichas.GenerateNPC(cmd.Context(), &ficha.GenerateNPCInput{
				DisplayName: name,
				Level:       level,
				Archetype:   catalog.ArchetypeID(args[0]),
				Activate:    activate,
			})
			if err != nil {
				return err
			}
			return c.printRecord(out.Record)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "NPC name, generated when empty")
	flags.IntVar(&level, "level", 0, "NPC level")
	flags.BoolVar(&activate, "use", false, "make the NPC the active ficha")
	return cmd
}
