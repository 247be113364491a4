package auth

import (
	"errors"
	"fmt"
	"os"
)

const (
	SecretEnvVar = "YOGASTUDIO_JWT_SECRET"
)

// SecretFromEnv reads the token signing secret from the environment variable varname
// and clears it, so child processes and later readers cannot see it.
func SecretFromEnv(varname string, getfn func(string) string, setfn func(string, string) error) ([]byte, error) {
	if getfn == nil {
		getfn = os.Getenv
	}
	if setfn == nil {
		setfn = os.Setenv
	}
	val := getfn(varname)
	if len(val) == 0 {
		return nil, fmt.Errorf("auth: missing signing secret in %v", varname)
	}
	if err := setfn(varname, ""); err != nil {
		return nil, fmt.Errorf("auth: unable to clear %v, cause %w", varname, err)
	}
	return []byte(val), nil
}

var errEmptySecret = errors.New("auth: signing secret cannot be empty")
