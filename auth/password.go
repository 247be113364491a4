package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type (
	// Hasher turns plain passwords into bcrypt hashes and checks them back.
	// The zero value uses bcrypt.DefaultCost.
	Hasher struct {
		Cost int
	}
)

func (h Hasher) cost() int {
	if h.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return h.Cost
}

func (h Hasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost())
	if err != nil {
		return "", fmt.Errorf("auth: unable to hash password, cause %w", err)
	}
	return string(out), nil
}

// Compare returns ErrBadCredentials when plain does not match hash.
func (h Hasher) Compare(hash, plain string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrBadCredentials
	} else if err != nil {
		return fmt.Errorf("auth: unable to check password, cause %w", err)
	}
	return nil
}
