package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/yogastudio/auth"
	authapi "github.com/andrebq/yogastudio/auth/api"
	"github.com/andrebq/yogastudio/directory"
	"github.com/andrebq/yogastudio/internal/httpserver"
	"github.com/andrebq/yogastudio/studio"
	"github.com/andrebq/yogastudio/wire"
	"github.com/julienschmidt/httprouter"
)

type (
	Teachers interface {
		FindAll(ctx context.Context) ([]studio.Teacher, error)
		Find(ctx context.Context, id int64) (studio.Teacher, bool, error)
	}

	Users interface {
		Find(ctx context.Context, id int64) (studio.User, bool, error)
		Delete(ctx context.Context, id int64, p auth.Principal) error
	}
)

// AsHandler serves the teacher and user endpoints, all of them wrapped by protect.
func AsHandler(ctx context.Context, teachers Teachers, users Users, protect func(http.Handler) http.Handler) (http.Handler, error) {
	router := httprouter.New()
	router.Handler("GET", "/api/teacher", protect(listTeachers(teachers)))
	router.Handler("GET", "/api/teacher/:id", protect(findTeacher(teachers)))
	router.Handler("GET", "/api/user/:id", protect(findUser(users)))
	router.Handler("DELETE", "/api/user/:id", protect(deleteUser(users)))
	return router, nil
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidID httpserver.InvalidID
		noUser    studio.UserNotFound
		noTeacher studio.TeacherNotFound
		notOwner  directory.NotOwner
	)
	switch {
	case errors.As(err, &invalidID):
		httpserver.WriteMessage(w, r, http.StatusBadRequest, invalidID.Error())
	case errors.As(err, &noUser):
		httpserver.WriteMessage(w, r, http.StatusNotFound, noUser.Error())
	case errors.As(err, &noTeacher):
		httpserver.WriteMessage(w, r, http.StatusNotFound, noTeacher.Error())
	case errors.As(err, &notOwner):
		authapi.Unauthorized(w, r, notOwner)
	default:
		httpserver.WriteInternalError(w, r, err)
	}
}

func listTeachers(teachers Teachers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := teachers.FindAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromTeachers(all))
	}
}

func findTeacher(teachers Teachers) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.PathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		t, found, err := teachers.Find(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		} else if !found {
			writeError(w, r, studio.TeacherNotFound{ID: id})
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromTeacher(&t))
	}
}

func findUser(users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.PathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		u, found, err := users.Find(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		} else if !found {
			writeError(w, r, studio.UserNotFound{ID: id})
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromUser(&u))
	}
}

func deleteUser(users Users) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.PathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		p, _ := auth.PrincipalFrom(r.Context())
		if err := users.Delete(r.Context(), id, p); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
