package cmdflags

import (
	"github.com/andrebq/yogastudio/auth"
	"github.com/urfave/cli/v2"
)

const (
	DefaultTokenLifetimeMS = 86400000
)

func Database(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = "yogastudio.db"
	}
	return &cli.StringFlag{
		Name:        "database",
		Aliases:     []string{"db", "d"},
		Usage:       "Path to the studio database file",
		EnvVars:     []string{"YOGASTUDIO_DATABASE"},
		Destination: out,
		Value:       *out,
	}
}

func SecretEnvVar(out *string) cli.Flag {
	if len(*out) == 0 {
		*out = auth.SecretEnvVar
	}
	return &cli.StringFlag{
		Name:        "secret-envvar-name",
		Usage:       "Name of the environment variable that holds the token signing secret. The secret itself should not be passed as an argument",
		Value:       *out,
		Destination: out,
	}
}

func TokenLifetimeMS(out *int64) cli.Flag {
	if *out == 0 {
		*out = DefaultTokenLifetimeMS
	}
	return &cli.Int64Flag{
		Name:        "token-lifetime-ms",
		Usage:       "How long (in milliseconds) an issued token remains valid",
		EnvVars:     []string{"YOGASTUDIO_JWT_EXPIRATION_MS"},
		Value:       *out,
		Destination: out,
	}
}
