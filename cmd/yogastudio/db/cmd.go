package db

import (
	"os"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/cmdflags"
	"github.com/andrebq/yogastudio/studio"
	"github.com/andrebq/yogastudio/studio/fixtures"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Manage the studio database",
		Subcommands: []*cli.Command{
			initCmd(),
		},
	}
}

func initCmd() *cli.Command {
	var database string
	var fixtureFile string
	var empty bool
	return &cli.Command{
		Name:  "init",
		Usage: "Create the database schema and load the initial data",
		Flags: []cli.Flag{
			cmdflags.Database(&database),
			&cli.StringFlag{
				Name:        "fixtures",
				Usage:       "Lua file with the initial data (the bundled fixtures are used when empty)",
				Destination: &fixtureFile,
			},
			&cli.BoolFlag{
				Name:        "empty",
				Usage:       "Only create the schema",
				Destination: &empty,
			},
		},
		Action: func(ctx *cli.Context) error {
			store, err := studio.Open(ctx.Context, database)
			if err != nil {
				return err
			}
			defer store.Close()
			if empty {
				return nil
			}
			var f *fixtures.Fixtures
			if fixtureFile == "" {
				f, err = fixtures.Default()
			} else {
				var fd *os.File
				fd, err = os.Open(fixtureFile)
				if err != nil {
					return err
				}
				f, err = fixtures.Parse(fixtureFile, fd)
				fd.Close()
			}
			if err != nil {
				return err
			}
			err = fixtures.Load(ctx.Context, store, auth.Hasher{}, f)
			if err != nil {
				return err
			}
			log.Info().Str("database", database).
				Int("teachers", len(f.Teachers)).
				Int("users", len(f.Users)).
				Int("sessions", len(f.Sessions)).
				Msg("Fixtures loaded")
			return nil
		},
	}
}
