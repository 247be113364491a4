package fixtures

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/andrebq/yogastudio/internal/testutil"
	"github.com/stretchr/testify/require"
)

type reverseHasher struct{}

func (reverseHasher) Hash(plain string) (string, error) {
	out := []rune(plain)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	require.NoError(t, err)
	require.Len(t, f.Teachers, 2)
	require.Equal(t, Teacher{FirstName: "Margot", LastName: "DELAHAYE"}, f.Teachers[0])
	require.Len(t, f.Users, 1)
	require.Equal(t, "yoga@studio.com", f.Users[0].Email)
	require.True(t, f.Users[0].Admin)
	require.Len(t, f.Sessions, 1)
	require.Equal(t, 1, f.Sessions[0].Teacher)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStudio(ctx, t, nil)
	defer cleanup()

	f, err := Parse("test.lua", strings.NewReader(`
	local users = {}
	for i = 1, 2 do
		table.insert(users, { email = "user" .. i .. "@mail.com", password = "secret" .. i, first_name = "User", last_name = tostring(i) })
	end
	return {
		teachers = { { first_name = "John", last_name = "DOE" } },
		users = users,
		sessions = {
			{ name = "Yin", date = "2024-06-05", description = "slow", teacher = 1, users = { "user2@mail.com", "user1@mail.com" } },
		},
	}`))
	require.NoError(t, err)
	require.NoError(t, Load(ctx, store, reverseHasher{}, f))

	u, found, err := store.LookupUserByEmail(ctx, "user1@mail.com")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "1terces", u.PasswordHash)
	require.False(t, u.Admin)

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "DOE", sessions[0].Teacher.LastName)
	require.Len(t, sessions[0].Users, 2)
	require.Equal(t, "user2@mail.com", sessions[0].Users[0].Email)

	// users are not duplicated when the same fixtures are loaded again
	require.NoError(t, Load(ctx, store, reverseHasher{}, &Fixtures{Users: f.Users}))
}

func TestInvalidFixtures(t *testing.T) {
	for _, src := range []string{
		`return 10`,
		`this is not lua`,
		`return { sessions = { { name = "x", date = "2024-01-01", teacher = 3 } } }`,
		`return { sessions = { { name = "x", date = "yesterday" } } }`,
	} {
		_, err := Parse("invalid.lua", strings.NewReader(src))
		var invalid InvalidFixture
		require.True(t, errors.As(err, &invalid), "source %q should be rejected, got %v", src, err)
	}
}
