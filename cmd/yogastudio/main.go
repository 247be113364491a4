package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/andrebq/yogastudio/cmd/yogastudio/db"
	"github.com/andrebq/yogastudio/cmd/yogastudio/serve"
	"github.com/andrebq/yogastudio/cmd/yogastudio/users"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	envFile := ".env"
	app := &cli.App{
		Name:  "yogastudio",
		Usage: "Book yoga sessions with your favourite teachers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "Optional dotenv file loaded before anything else (existing variables are kept)",
				Value:       envFile,
				Destination: &envFile,
			},
		},
		Before: func(ctx *cli.Context) error {
			err := godotenv.Load(envFile)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			} else if err != nil {
				return fmt.Errorf("unable to load %v, cause %w", envFile, err)
			}
			return nil
		},
		Commands: []*cli.Command{
			serve.Cmd(),
			db.Cmd(),
			users.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
