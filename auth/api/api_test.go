package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/testutil"
	"github.com/andrebq/yogastudio/studio"
	"github.com/andrebq/yogastudio/studio/fixtures"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type countingStore struct {
	auth.CredentialStore
	lookups uint32
}

func (c *countingStore) LookupUserByEmail(ctx context.Context, email string) (studio.User, bool, error) {
	atomic.AddUint32(&c.lookups, 1)
	return c.CredentialStore.LookupUserByEmail(ctx, email)
}

func acquireAuthHandler(t *testing.T) (http.Handler, *countingStore, func()) {
	ctx := context.Background()
	hasher := auth.Hasher{Cost: bcrypt.MinCost}
	store, cleanup := testutil.AcquireStudio(ctx, t, func(ctx context.Context, s *studio.Store) error {
		f, err := fixtures.Default()
		if err != nil {
			return err
		}
		return fixtures.Load(ctx, s, hasher, f)
	})
	principals, err := auth.NewPrincipalLoader(store, time.Minute)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService([]byte("secret used by the api tests"), time.Hour)
	require.NoError(t, err)
	creds := &countingStore{CredentialStore: store}
	handler, err := AsHandler(ctx, auth.NewAuthenticator(creds, principals, hasher, tokens))
	require.NoError(t, err)
	return handler, creds, func() {
		principals.Close()
		cleanup()
	}
}

func TestLogin(t *testing.T) {
	handler, creds, cleanup := acquireAuthHandler(t)
	defer cleanup()

	apitest.Handler(handler).
		Post("/api/auth/login").
		JSON(`{"email":"yoga@studio.com","password":"test!1234"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.admin`, true)).
		Assert(jsonpath.Equal(`$.type`, "Bearer")).
		Assert(jsonpath.Equal(`$.username`, "yoga@studio.com")).
		Assert(jsonpath.Present(`$.token`)).
		End()

	before := atomic.LoadUint32(&creds.lookups)
	apitest.Handler(handler).
		Post("/api/auth/login").
		JSON(`{"email":"nobody@studio.com","password":"test!1234"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.message`, "Bad credentials")).
		Assert(jsonpath.NotPresent(`$.token`)).
		End()
	require.Equal(t, before, atomic.LoadUint32(&creds.lookups), "unknown emails must not load the user record")

	apitest.Handler(handler).
		Post("/api/auth/login").
		JSON(`{"email":"yoga@studio.com","password":"wrong"}`).
		Expect(t).
		Status(http.StatusUnauthorized).
		End()

	apitest.Handler(handler).
		Post("/api/auth/login").
		JSON(`{"email":"yoga@studio.com"}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestRegister(t *testing.T) {
	handler, _, cleanup := acquireAuthHandler(t)
	defer cleanup()

	signup := `{"email":"ana@mail.com","firstName":"Ana","lastName":"Lima","password":"s3cr3t!"}`
	apitest.Handler(handler).
		Post("/api/auth/register").
		JSON(signup).
		Expect(t).
		Status(http.StatusOK).
		Body(`{"message":"User registered successfully!"}`).
		End()
	apitest.Handler(handler).
		Post("/api/auth/register").
		JSON(signup).
		Expect(t).
		Status(http.StatusBadRequest).
		Body(`{"message":"Error: Email is already taken!"}`).
		End()
	apitest.Handler(handler).
		Post("/api/auth/login").
		JSON(`{"email":"ana@mail.com","password":"s3cr3t!"}`).
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.admin`, false)).
		End()

	for _, body := range []string{
		`{"email":"not-an-email","firstName":"Ana","lastName":"Lima","password":"s3cr3t!"}`,
		`{"email":"bob@mail.com","firstName":"Bo","lastName":"Lima","password":"s3cr3t!"}`,
		`{"email":"bob@mail.com","firstName":"Bob","lastName":"Lima","password":"123"}`,
		`not json`,
	} {
		apitest.Handler(handler).
			Post("/api/auth/register").
			JSON(body).
			Expect(t).
			Status(http.StatusBadRequest).
			End()
	}
}
