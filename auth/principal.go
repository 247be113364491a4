package auth

import (
	"context"
	"strings"

	"github.com/andrebq/yogastudio/studio"
)

type (
	// Principal is the identity bound to an authenticated request.
	Principal struct {
		ID           int64  `json:"id"`
		Username     string `json:"username"`
		FirstName    string `json:"firstName"`
		LastName     string `json:"lastName"`
		Admin        bool   `json:"admin"`
		PasswordHash string `json:"-"`
	}

	key byte
)

var (
	principalKey = key(1)
)

func PrincipalOf(u studio.User) Principal {
	return Principal{
		ID:           u.ID,
		Username:     u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Admin:        u.Admin,
		PasswordHash: u.PasswordHash,
	}
}

// SameIdentity reports whether p and other are the same account.
// Only the id is compared.
func (p Principal) SameIdentity(other Principal) bool {
	return p.ID == other.ID
}

// Owns reports whether the account identified by email belongs to p.
func (p Principal) Owns(email string) bool {
	return p.Username != "" && strings.EqualFold(p.Username, strings.TrimSpace(email))
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal bound to ctx, if any.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
