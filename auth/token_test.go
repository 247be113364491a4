package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("a very long secret used only by the tests, not for production use at all")

func TestTokenRoundTrip(t *testing.T) {
	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	tk, err := tokens.Issue("yoga@studio.com")
	require.NoError(t, err)
	require.Len(t, strings.Split(tk, "."), 3)
	require.NoError(t, tokens.Check(tk))
	require.True(t, tokens.Validate(tk))

	sub, err := tokens.SubjectOf(tk)
	require.NoError(t, err)
	require.Equal(t, "yoga@studio.com", sub)

	other, err := tokens.Issue("yoga@studio.com")
	require.NoError(t, err)
	require.NotEqual(t, tk, other, "every token carries a unique id")
}

func TestTokenExpiration(t *testing.T) {
	now := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	tokens, err := NewTokenService(testSecret, time.Minute, WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	tk, err := tokens.Issue("bob@mail.com")
	require.NoError(t, err)
	now = now.Add(59 * time.Second)
	require.True(t, tokens.Validate(tk))

	now = now.Add(2 * time.Second)
	require.False(t, tokens.Validate(tk))
	require.True(t, errors.Is(tokens.Check(tk), ErrExpiredToken))
	_, err = tokens.SubjectOf(tk)
	require.True(t, errors.Is(err, ErrExpiredToken))
}

func TestTokenRejections(t *testing.T) {
	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	otherSecret, err := NewTokenService([]byte("some other secret"), time.Hour)
	require.NoError(t, err)
	forged, err := otherSecret.Issue("yoga@studio.com")
	require.NoError(t, err)

	hs256, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "yoga@studio.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(testSecret)
	require.NoError(t, err)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "yoga@studio.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for _, tc := range []struct {
		name  string
		token string
		err   error
	}{
		{"empty", "", ErrEmptyToken},
		{"garbage", "not-a-token", ErrMalformedToken},
		{"bad-segments", "abc.def.ghi", ErrMalformedToken},
		{"other-secret", forged, ErrInvalidSignature},
		{"other-algorithm", hs256, ErrUnsupportedToken},
		{"unsigned", unsigned, ErrUnsupportedToken},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tokens.Check(tc.token)
			require.True(t, errors.Is(err, tc.err), "expecting %v got %v", tc.err, err)
			require.False(t, tokens.Validate(tc.token))
		})
	}
}

func TestNewTokenService(t *testing.T) {
	_, err := NewTokenService(nil, time.Hour)
	require.Error(t, err)
	_, err = NewTokenService(testSecret, 0)
	require.Error(t, err)
}

func TestSecretFromEnv(t *testing.T) {
	env := map[string]string{SecretEnvVar: "shh"}
	get := func(k string) string { return env[k] }
	set := func(k, v string) error { env[k] = v; return nil }

	secret, err := SecretFromEnv(SecretEnvVar, get, set)
	require.NoError(t, err)
	require.Equal(t, []byte("shh"), secret)
	require.Empty(t, env[SecretEnvVar], "reading the secret should remove it from the environment")

	_, err = SecretFromEnv(SecretEnvVar, get, set)
	require.Error(t, err)
}
