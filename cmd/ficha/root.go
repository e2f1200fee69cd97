package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-ficha/internal/config"
)

// cli carries the assembled services between cobra hooks and commands
type cli struct {
	app *app
	out io.Writer

	envFile  string
	backend  string
	logLevel string
	asJSON   bool
}

// execute runs one invocation and always releases the backend, including
// when the command fails
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		if closeErr := c.app.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ficha",
		Short: "Character sheet manager",
		Long: `ficha keeps tabletop RPG character sheets: attributes and their derived
combat stats, experience and levels, advantages, races, classes, GM overrides,
NPC generation and dice rolls. State is mirrored to SQLite or Redis.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(c.envFile)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("backend") {
				cfg.Backend = config.Backend(c.backend)
			}
			if cmd.Flags().Changed("log-level") {
				cfg.LogLevel = c.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: cfg.SlogLevel(),
			})))

			a, err := newApp(cmd.Context(), cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			c.app = a
			c.out = cmd.OutOrStdout()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file to read before the environment")
	flags.StringVar(&c.backend, "backend", "", "state backend: memory, redis or sqlite (overrides FICHA_BACKEND)")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error (overrides FICHA_LOG_LEVEL)")
	flags.BoolVar(&c.asJSON, "json", false, "print fichas as JSON")

	root.AddCommand(
		c.listCmd(),
		c.showCmd(),
		c.createCmd(),
		c.useCmd(),
		c.deleteCmd(),
		c.importCmd(),
		c.exportCmd(),
		c.xpCmd(),
		c.setCmd(),
		c.editCmd(),
		c.classCmd(),
		c.abilityCmd(),
		c.excludeCmd(),
		c.gmCmd(),
		c.resetCmd(),
		c.npcCmd(),
		c.rollCmd(),
		c.historyCmd(),
		c.stateCmd(),
	)

	return root
}
