package auth

import (
	"errors"
	"fmt"
)

type (
	UnknownUser struct {
		Username string
	}

	EmailTaken struct {
		Email string
	}
)

var (
	ErrBadCredentials = errors.New("Bad credentials")
)

func (u UnknownUser) Error() string {
	return fmt.Sprintf("auth: user %v not found", u.Username)
}

func (e EmailTaken) Error() string {
	return "Error: Email is already taken!"
}
