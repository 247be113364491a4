package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/logutil"
)

type (
	TokenChecker interface {
		Validate(token string) bool
		SubjectOf(token string) (string, error)
	}

	PrincipalSource interface {
		LoadPrincipal(ctx context.Context, username string) (auth.Principal, error)
	}

	// SecurityRealm binds the principal named by a bearer token
	// to the request and guards the handlers that require one.
	SecurityRealm struct {
		tokens     TokenChecker
		principals PrincipalSource
	}
)

var (
	bearerTokenRE = regexp.MustCompile(`^Bearer ([^\s]+)$`)

	errFullAuthRequired = errors.New("Full authentication is required to access this resource")
)

func NewRealm(tokens TokenChecker, principals PrincipalSource) *SecurityRealm {
	return &SecurityRealm{
		tokens:     tokens,
		principals: principals,
	}
}

// Authenticate never rejects a request. Requests without a usable token
// reach next without a principal, the decision to refuse them belongs to Protect.
func (s *SecurityRealm) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, s.authenticate(r))
	})
}

// Protect answers 401 unless a principal was bound to the request by Authenticate.
func (s *SecurityRealm) Protect(sensitive http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFrom(r.Context()); !ok {
			Unauthorized(w, r, errFullAuthRequired)
			return
		}
		sensitive.ServeHTTP(w, r)
	})
}

func (s *SecurityRealm) authenticate(r *http.Request) *http.Request {
	ctx := r.Context()
	log := logutil.GetOrDefault(ctx)
	groups := bearerTokenRE.FindStringSubmatch(r.Header.Get("Authorization"))
	if len(groups) == 0 {
		return r
	}
	tk := groups[1]
	if !s.tokens.Validate(tk) {
		log.Info().Msg("Request carries an invalid bearer token")
		return r
	}
	username, err := s.tokens.SubjectOf(tk)
	if err != nil {
		log.Error().Err(err).Msg("Unable to read subject of a valid token")
		return r
	}
	p, err := s.principals.LoadPrincipal(ctx, username)
	if err != nil {
		log.Error().Err(err).Str("username", username).Msg("Cannot set user authentication")
		return r
	}
	return r.WithContext(auth.WithPrincipal(ctx, p))
}
