package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type (
	// TokenService issues and checks HS512 signed bearer tokens.
	//
	// It is safe for concurrent use.
	TokenService struct {
		secret   []byte
		lifetime time.Duration
		now      func() time.Time
		log      zerolog.Logger
	}

	TokenOption func(*TokenService)
)

var (
	ErrEmptyToken       = errors.New("auth: token is empty")
	ErrMalformedToken   = errors.New("auth: token is malformed")
	ErrUnsupportedToken = errors.New("auth: token is not supported")
	ErrInvalidSignature = errors.New("auth: token signature is invalid")
	ErrExpiredToken     = errors.New("auth: token is expired")
)

// WithClock replaces the time source used to stamp and check tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(t *TokenService) {
		t.now = now
	}
}

func WithLogger(logger zerolog.Logger) TokenOption {
	return func(t *TokenService) {
		t.log = logger
	}
}

func NewTokenService(secret []byte, lifetime time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errEmptySecret
	}
	if lifetime <= 0 {
		return nil, fmt.Errorf("auth: token lifetime must be positive, got %v", lifetime)
	}
	t := &TokenService{
		secret:   append([]byte(nil), secret...),
		lifetime: lifetime,
		now:      time.Now,
		log:      log.Logger,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

func (t *TokenService) Lifetime() time.Duration {
	return t.lifetime
}

// Issue returns a compact token whose subject is the given username.
// The token expires after the configured lifetime.
func (t *TokenService) Issue(subject string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.lifetime)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("auth: unable to sign token, cause %w", err)
	}
	return signed, nil
}

// Check returns nil when the token carries a valid signature and
// has not expired. Otherwise the returned error matches exactly one of
// ErrEmptyToken, ErrMalformedToken, ErrUnsupportedToken, ErrInvalidSignature
// or ErrExpiredToken.
func (t *TokenService) Check(token string) error {
	_, err := t.parse(token)
	return err
}

// Validate is Check reduced to a boolean, the reason for a rejection
// is only logged.
func (t *TokenService) Validate(token string) bool {
	err := t.Check(token)
	if err != nil {
		t.log.Debug().Err(err).Msg("Token rejected")
		return false
	}
	return true
}

// SubjectOf returns the username carried by token.
func (t *TokenService) SubjectOf(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformedToken)
	}
	return claims.Subject, nil
}

func (t *TokenService) keyfn(tk *jwt.Token) (interface{}, error) {
	if tk.Method != jwt.SigningMethodHS512 {
		return nil, fmt.Errorf("%w: signing method %v", ErrUnsupportedToken, tk.Header["alg"])
	}
	return t.secret, nil
}

func (t *TokenService) parse(token string) (*jwt.RegisteredClaims, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, t.keyfn,
		jwt.WithTimeFunc(t.now),
		jwt.WithExpirationRequired())
	switch {
	case err == nil:
		return claims, nil
	case errors.Is(err, ErrUnsupportedToken), errors.Is(err, jwt.ErrTokenUnverifiable):
		return nil, fmt.Errorf("%w, cause %v", ErrUnsupportedToken, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, fmt.Errorf("%w, cause %v", ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrInvalidSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	default:
		return nil, fmt.Errorf("%w, cause %v", ErrMalformedToken, err)
	}
}
