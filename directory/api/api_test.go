package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/directory"
	"github.com/andrebq/yogastudio/internal/testutil"
	"github.com/andrebq/yogastudio/studio"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
	"github.com/stretchr/testify/require"
)

// actingAs binds p to every request, as the realm would after a successful login.
func actingAs(p auth.Principal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

func TestDirectory(t *testing.T) {
	ctx := context.Background()
	store, cleanup := testutil.AcquireStudio(ctx, t, func(ctx context.Context, s *studio.Store) error {
		for _, name := range []string{"Margot", "Hélène"} {
			if _, err := s.CreateTeacher(ctx, studio.Teacher{FirstName: name, LastName: "Doe"}); err != nil {
				return err
			}
		}
		for _, email := range []string{"ana@mail.com", "bob@mail.com"} {
			if _, err := s.CreateUser(ctx, studio.User{Email: email, FirstName: "User", LastName: "Test", PasswordHash: "hash"}); err != nil {
				return err
			}
		}
		return nil
	})
	defer cleanup()

	handler, err := AsHandler(ctx, directory.NewTeachers(store), directory.NewUsers(store, nil),
		actingAs(auth.Principal{ID: 1, Username: "ana@mail.com"}))
	require.NoError(t, err)

	apitest.Handler(handler).Get("/api/teacher").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Len(`$`, 2)).
		Assert(jsonpath.Equal(`$[1].firstName`, "Hélène")).
		End()
	apitest.Handler(handler).Get("/api/teacher/2").
		Expect(t).Status(http.StatusOK).Assert(jsonpath.Equal(`$.id`, float64(2))).End()
	apitest.Handler(handler).Get("/api/teacher/666").
		Expect(t).Status(http.StatusNotFound).End()
	apitest.Handler(handler).Get("/api/teacher/two").
		Expect(t).Status(http.StatusBadRequest).End()

	apitest.Handler(handler).Get("/api/user/2").
		Expect(t).
		Status(http.StatusOK).
		Assert(jsonpath.Equal(`$.email`, "bob@mail.com")).
		Assert(jsonpath.NotPresent(`$.password`)).
		End()
	apitest.Handler(handler).Get("/api/user/666").
		Expect(t).Status(http.StatusNotFound).End()

	apitest.Handler(handler).Delete("/api/user/2").
		Expect(t).
		Status(http.StatusUnauthorized).
		Assert(jsonpath.Equal(`$.path`, "/api/user/2")).
		End()
	apitest.Handler(handler).Delete("/api/user/1").
		Expect(t).Status(http.StatusOK).End()
	apitest.Handler(handler).Get("/api/user/1").
		Expect(t).Status(http.StatusNotFound).End()
}
