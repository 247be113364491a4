package users

import (
	"bufio"
	"errors"
	"os"
	"strings"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/cmdflags"
	"github.com/andrebq/yogastudio/studio"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func Cmd() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage studio accounts",
		Subcommands: []*cli.Command{
			registerCmd(),
		},
	}
}

func registerCmd() *cli.Command {
	var database string
	var email, firstName, lastName string
	var admin bool
	return &cli.Command{
		Name:  "register",
		Usage: "Register a new account (password is read from stdin)",
		Flags: []cli.Flag{
			cmdflags.Database(&database),
			&cli.StringFlag{
				Name:        "email",
				Aliases:     []string{"e"},
				Usage:       "Email used to login",
				Destination: &email,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "first-name",
				Destination: &firstName,
				Required:    true,
			},
			&cli.StringFlag{
				Name:        "last-name",
				Destination: &lastName,
				Required:    true,
			},
			&cli.BoolFlag{
				Name:        "admin",
				Usage:       "Grant administrative rights",
				Destination: &admin,
			},
		},
		Action: func(ctx *cli.Context) error {
			err := validation.Validate(email, validation.Required, validation.Length(1, 50), is.Email)
			if err != nil {
				return err
			}
			sc := bufio.NewScanner(os.Stdin)
			if !sc.Scan() {
				if sc.Err() != nil {
					return sc.Err()
				}
				return errors.New("missing password from stdin")
			}
			password := strings.TrimSpace(sc.Text())
			if len(password) < 6 {
				return errors.New("password must have at least 6 characters")
			}
			hash, err := auth.Hasher{}.Hash(password)
			if err != nil {
				return err
			}
			store, err := studio.Open(ctx.Context, database)
			if err != nil {
				return err
			}
			defer store.Close()
			u, err := store.CreateUser(ctx.Context, studio.User{
				Email:        email,
				FirstName:    firstName,
				LastName:     lastName,
				PasswordHash: hash,
				Admin:        admin,
			})
			if err != nil {
				return err
			}
			log.Info().Int64("id", u.ID).Str("username", u.Email).Bool("admin", u.Admin).Msg("User registered")
			return nil
		},
	}
}
