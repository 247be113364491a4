package auth

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andrebq/yogastudio/internal/testutil"
	"github.com/andrebq/yogastudio/studio"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type (
	countingFinder struct {
		UserFinder
		lookups uint32
	}
)

func (c *countingFinder) LookupUserByEmail(ctx context.Context, email string) (studio.User, bool, error) {
	atomic.AddUint32(&c.lookups, 1)
	return c.UserFinder.LookupUserByEmail(ctx, email)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStudio(ctx, t, nil)
	defer cleanup()

	principals, err := NewPrincipalLoader(store, time.Minute)
	require.NoError(t, err)
	defer principals.Close()
	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	authn := NewAuthenticator(store, principals, Hasher{Cost: bcrypt.MinCost}, tokens)

	signup := Signup{Email: "ana@mail.com", FirstName: "Ana", LastName: "Lima", Password: "s3cr3t!"}
	require.NoError(t, authn.Register(ctx, signup))

	stored, found, err := store.LookupUserByEmail(ctx, "ana@mail.com")
	require.NoError(t, err)
	require.True(t, found)
	require.False(t, stored.Admin, "registered users are never admins")
	require.NotEqual(t, signup.Password, stored.PasswordHash)

	err = authn.Register(ctx, Signup{Email: "ANA@mail.com", FirstName: "Other", LastName: "Person", Password: "another"})
	require.True(t, errors.As(err, new(EmailTaken)), "got %v", err)
	require.Equal(t, "Error: Email is already taken!", err.Error())
	again, found, err := store.LookupUserByEmail(ctx, "ana@mail.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, stored, again, "the existing account must be left untouched")
	_, found, err = store.LookupUser(ctx, stored.ID+1)
	require.NoError(t, err)
	require.False(t, found, "a rejected registration must not create another user")

	res, err := authn.Login(ctx, "ana@mail.com", "s3cr3t!")
	require.NoError(t, err)
	require.Equal(t, "Bearer", res.Type)
	require.Equal(t, stored.ID, res.ID)
	require.Equal(t, "Ana", res.FirstName)
	require.False(t, res.Admin)
	sub, err := tokens.SubjectOf(res.Token)
	require.NoError(t, err)
	require.Equal(t, "ana@mail.com", sub)

	_, err = authn.Login(ctx, "ana@mail.com", "wrong")
	require.True(t, errors.Is(err, ErrBadCredentials), "got %v", err)
}

func TestLoginUnknownEmail(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStudio(ctx, t, nil)
	defer cleanup()

	finder := &countingFinder{UserFinder: store}
	principals, err := NewPrincipalLoader(finder, time.Minute)
	require.NoError(t, err)
	defer principals.Close()
	tokens, err := NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	creds := &countingStore{CredentialStore: store}
	authn := NewAuthenticator(creds, principals, Hasher{Cost: bcrypt.MinCost}, tokens)
	_, err = authn.Login(ctx, "nobody@mail.com", "whatever")
	require.True(t, errors.Is(err, ErrBadCredentials), "got %v", err)
	require.Equal(t, uint32(1), atomic.LoadUint32(&finder.lookups))
	require.Zero(t, atomic.LoadUint32(&creds.lookups), "a failed login must not load the user record")
}

type countingStore struct {
	CredentialStore
	lookups uint32
}

func (c *countingStore) LookupUserByEmail(ctx context.Context, email string) (studio.User, bool, error) {
	atomic.AddUint32(&c.lookups, 1)
	return c.CredentialStore.LookupUserByEmail(ctx, email)
}

func TestPrincipalLoader(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStudio(ctx, t, func(ctx context.Context, s *studio.Store) error {
		_, err := s.CreateUser(ctx, studio.User{Email: "yoga@studio.com", FirstName: "Admin", LastName: "Admin", PasswordHash: "x", Admin: true})
		return err
	})
	defer cleanup()

	finder := &countingFinder{UserFinder: store}
	principals, err := NewPrincipalLoader(finder, time.Minute)
	require.NoError(t, err)
	defer principals.Close()

	p, err := principals.LoadPrincipal(ctx, "Yoga@Studio.com")
	require.NoError(t, err)
	require.True(t, p.Admin)
	require.True(t, p.Owns("YOGA@studio.com"))
	require.False(t, p.Owns("other@studio.com"))
	require.Equal(t, "x", p.PasswordHash)

	again, err := principals.LoadPrincipal(ctx, "yoga@studio.com")
	require.NoError(t, err)
	require.Equal(t, uint32(1), atomic.LoadUint32(&finder.lookups), "second load should be served from memory")
	require.Equal(t, p, again)
	require.True(t, p.SameIdentity(again))
	require.True(t, p.SameIdentity(Principal{ID: p.ID}), "only the id is compared")
	require.False(t, p.SameIdentity(Principal{ID: p.ID + 1, Username: p.Username}))
	require.True(t, Principal{}.SameIdentity(Principal{}))

	principals.Forget("yoga@studio.com")
	_, err = principals.LoadPrincipal(ctx, "yoga@studio.com")
	require.NoError(t, err)
	require.Equal(t, uint32(2), atomic.LoadUint32(&finder.lookups))

	_, err = principals.LoadPrincipal(ctx, "ghost@studio.com")
	var unknown UnknownUser
	require.True(t, errors.As(err, &unknown))

	bound := WithPrincipal(ctx, p)
	got, ok := PrincipalFrom(bound)
	require.True(t, ok)
	require.Equal(t, p, got)
	_, ok = PrincipalFrom(ctx)
	require.False(t, ok)
}

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}
	hash, err := h.Hash("test!1234")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(hash, "$2"))
	require.NoError(t, h.Compare(hash, "test!1234"))
	require.True(t, errors.Is(h.Compare(hash, "test!12345"), ErrBadCredentials))
}

func TestPrincipalLoaderExpiration(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStudio(ctx, t, func(ctx context.Context, s *studio.Store) error {
		_, err := s.CreateUser(ctx, studio.User{Email: "bob@mail.com", FirstName: "Bob", LastName: "Silva", PasswordHash: "x"})
		return err
	})
	defer cleanup()

	finder := &countingFinder{UserFinder: store}
	principals, err := NewPrincipalLoader(finder, time.Minute)
	require.NoError(t, err)
	defer principals.Close()
	now := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	principals.now = func() time.Time { return now }

	_, err = principals.LoadPrincipal(ctx, "bob@mail.com")
	require.NoError(t, err)
	now = now.Add(59 * time.Second)
	_, err = principals.LoadPrincipal(ctx, "bob@mail.com")
	require.NoError(t, err)
	require.Equal(t, uint32(1), atomic.LoadUint32(&finder.lookups))

	now = now.Add(time.Second)
	_, err = principals.LoadPrincipal(ctx, "bob@mail.com")
	require.NoError(t, err)
	require.Equal(t, uint32(2), atomic.LoadUint32(&finder.lookups), "entries older than the ttl must reach the store")
}
