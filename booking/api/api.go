package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/yogastudio/booking"
	"github.com/andrebq/yogastudio/internal/httpserver"
	"github.com/andrebq/yogastudio/studio"
	"github.com/andrebq/yogastudio/wire"
	"github.com/julienschmidt/httprouter"
)

type (
	Sessions interface {
		FindAll(ctx context.Context) ([]studio.Session, error)
		Find(ctx context.Context, id int64) (studio.Session, bool, error)
		Create(ctx context.Context, d booking.Draft) (studio.Session, error)
		Update(ctx context.Context, id int64, d booking.Draft) (studio.Session, error)
		Delete(ctx context.Context, id int64) error
		Participate(ctx context.Context, sessionID, userID int64) error
		NoLongerParticipate(ctx context.Context, sessionID, userID int64) error
	}
)

// AsHandler serves the session endpoints, every one of them
// wrapped by protect.
func AsHandler(ctx context.Context, sessions Sessions, protect func(http.Handler) http.Handler) (http.Handler, error) {
	router := httprouter.New()
	route := func(method, path string, h http.HandlerFunc) {
		router.Handler(method, path, protect(h))
	}
	route("GET", "/api/session", findAll(sessions))
	route("POST", "/api/session", create(sessions))
	route("GET", "/api/session/:id", find(sessions))
	route("PUT", "/api/session/:id", update(sessions))
	route("DELETE", "/api/session/:id", remove(sessions))
	route("POST", "/api/session/:id/participate/:userId", participate(sessions))
	route("DELETE", "/api/session/:id/participate/:userId", noLongerParticipate(sessions))
	return router, nil
}

// writeError translates the errors of the booking service into responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		invalidID httpserver.InvalidID
		noSession studio.SessionNotFound
		noUser    studio.UserNotFound
		noTeacher studio.TeacherNotFound
		already   booking.AlreadyParticipating
		notThere  booking.NotParticipating
	)
	switch {
	case errors.As(err, &invalidID):
		httpserver.WriteMessage(w, r, http.StatusBadRequest, invalidID.Error())
	case errors.As(err, &noSession):
		httpserver.WriteMessage(w, r, http.StatusNotFound, noSession.Error())
	case errors.As(err, &noUser):
		httpserver.WriteMessage(w, r, http.StatusNotFound, noUser.Error())
	case errors.As(err, &noTeacher):
		httpserver.WriteMessage(w, r, http.StatusNotFound, noTeacher.Error())
	case errors.As(err, &already):
		httpserver.WriteMessage(w, r, http.StatusBadRequest, already.Error())
	case errors.As(err, &notThere):
		httpserver.WriteMessage(w, r, http.StatusBadRequest, notThere.Error())
	default:
		httpserver.WriteInternalError(w, r, err)
	}
}

func findAll(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := sessions.FindAll(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromSessions(all))
	}
}

func find(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.PathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		s, found, err := sessions.Find(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		} else if !found {
			writeError(w, r, studio.SessionNotFound{ID: id})
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromSession(&s))
	}
}

func readDraft(r *http.Request) (booking.Draft, error) {
	var dto wire.SessionDTO
	if err := httpserver.ReadJSON(r, &dto); err != nil {
		return booking.Draft{}, err
	}
	d := wire.ToDraft(&dto)
	return *d, d.Validate()
}

func create(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d, err := readDraft(r)
		if err != nil {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s, err := sessions.Create(r.Context(), d)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromSession(&s))
	}
}

func update(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.PathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		d, err := readDraft(r)
		if err != nil {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		s, err := sessions.Update(r.Context(), id, d)
		if err != nil {
			writeError(w, r, err)
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, wire.FromSession(&s))
	}
}

func remove(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpserver.PathID(r, "id")
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := sessions.Delete(r.Context(), id); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func participationIDs(r *http.Request) (sessionID, userID int64, err error) {
	sessionID, err = httpserver.PathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	userID, err = httpserver.PathID(r, "userId")
	return sessionID, userID, err
}

func participate(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, userID, err := participationIDs(r)
		if err == nil {
			err = sessions.Participate(r.Context(), sessionID, userID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func noLongerParticipate(sessions Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, userID, err := participationIDs(r)
		if err == nil {
			err = sessions.NoLongerParticipate(r.Context(), sessionID, userID)
		}
		if err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
