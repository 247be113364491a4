package serve

import (
	"os"
	"time"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/cmdflags"
	"github.com/andrebq/yogastudio/internal/httpserver"
	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/andrebq/yogastudio/internal/webapp"
	"github.com/andrebq/yogastudio/studio"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	bindAddr := "localhost:8080"
	var database string
	var secretEnvVar string
	var lifetimeMS int64
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the studio HTTP api",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "bind",
				Usage:       "Address to bind the HTTP server",
				EnvVars:     []string{"YOGASTUDIO_BIND"},
				Value:       bindAddr,
				Destination: &bindAddr,
			},
			cmdflags.Database(&database),
			cmdflags.SecretEnvVar(&secretEnvVar),
			cmdflags.TokenLifetimeMS(&lifetimeMS),
		},
		Action: func(ctx *cli.Context) error {
			secret, err := auth.SecretFromEnv(secretEnvVar, os.Getenv, os.Setenv)
			if err != nil {
				return err
			}
			store, err := studio.Open(ctx.Context, database)
			if err != nil {
				return err
			}
			defer store.Close()
			appCtx := logutil.WithLogger(ctx.Context, log.Logger.With().Str("database", database).Logger())
			app, err := webapp.New(appCtx, store, webapp.Config{
				Secret:        secret,
				TokenLifetime: time.Duration(lifetimeMS) * time.Millisecond,
			})
			if err != nil {
				return err
			}
			defer app.Close()
			logger := logutil.GetOrDefault(appCtx)
			logger.Info().Dur("token.lifetime", app.TokenLifetime()).Str("bind", bindAddr).Msg("Studio api ready")
			return httpserver.Serve(appCtx, bindAddr, app)
		},
	}
}
