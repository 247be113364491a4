package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/andrebq/yogastudio/studio"
)

type (
	// CredentialStore is where accounts are kept.
	CredentialStore interface {
		EmailExists(ctx context.Context, email string) (bool, error)
		CreateUser(ctx context.Context, u studio.User) (studio.User, error)
		LookupUserByEmail(ctx context.Context, email string) (studio.User, bool, error)
	}

	PrincipalSource interface {
		LoadPrincipal(ctx context.Context, username string) (Principal, error)
	}

	PasswordHasher interface {
		Hash(plain string) (string, error)
		Compare(hash, plain string) error
	}

	TokenIssuer interface {
		Issue(subject string) (string, error)
	}

	// Authenticator registers new accounts and exchanges
	// credentials for bearer tokens.
	Authenticator struct {
		store      CredentialStore
		principals PrincipalSource
		hasher     PasswordHasher
		tokens     TokenIssuer
	}

	Signup struct {
		Email     string
		FirstName string
		LastName  string
		Password  string
	}

	// LoginResult is what a client receives after a successful login.
	LoginResult struct {
		Token     string
		Type      string
		ID        int64
		Username  string
		FirstName string
		LastName  string
		Admin     bool
	}
)

func NewAuthenticator(store CredentialStore, principals PrincipalSource, hasher PasswordHasher, tokens TokenIssuer) *Authenticator {
	return &Authenticator{
		store:      store,
		principals: principals,
		hasher:     hasher,
		tokens:     tokens,
	}
}

// Register creates a regular (non admin) account.
//
// If the email is already in use, EmailTaken is returned and nothing is written.
func (a *Authenticator) Register(ctx context.Context, s Signup) error {
	taken, err := a.store.EmailExists(ctx, s.Email)
	if err != nil {
		return err
	} else if taken {
		return EmailTaken{Email: s.Email}
	}
	hash, err := a.hasher.Hash(s.Password)
	if err != nil {
		return err
	}
	_, err = a.store.CreateUser(ctx, studio.User{
		Email:        s.Email,
		FirstName:    s.FirstName,
		LastName:     s.LastName,
		PasswordHash: hash,
	})
	var dup studio.DuplicateEmail
	if errors.As(err, &dup) {
		// registered by a concurrent request after the check above
		return EmailTaken{Email: s.Email}
	} else if err != nil {
		return fmt.Errorf("unable to register %v, cause %w", s.Email, err)
	}
	log := logutil.GetOrDefault(ctx)
	log.Info().Str("username", s.Email).Msg("User registered")
	return nil
}

// Login checks the credentials and returns a fresh token together
// with the account details.
//
// Unknown emails and wrong passwords both result in ErrBadCredentials.
func (a *Authenticator) Login(ctx context.Context, email, password string) (LoginResult, error) {
	log := logutil.GetOrDefault(ctx)
	p, err := a.principals.LoadPrincipal(ctx, email)
	var unknown UnknownUser
	if errors.As(err, &unknown) {
		log.Info().Str("username", email).Msg("Login attempt for unknown user")
		return LoginResult{}, ErrBadCredentials
	} else if err != nil {
		return LoginResult{}, err
	}
	if err := a.hasher.Compare(p.PasswordHash, password); err != nil {
		if errors.Is(err, ErrBadCredentials) {
			log.Info().Str("username", p.Username).Msg("Login attempt with wrong password")
		}
		return LoginResult{}, err
	}
	u, found, err := a.store.LookupUserByEmail(ctx, p.Username)
	if err != nil {
		return LoginResult{}, err
	} else if !found {
		return LoginResult{}, ErrBadCredentials
	}
	token, err := a.tokens.Issue(u.Email)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{
		Token:     token,
		Type:      "Bearer",
		ID:        u.ID,
		Username:  u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
	}, nil
}
