package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/andrebq/yogastudio/auth"
	"github.com/andrebq/yogastudio/internal/httpserver"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/julienschmidt/httprouter"
)

type (
	Authenticator interface {
		Register(ctx context.Context, s auth.Signup) error
		Login(ctx context.Context, email, password string) (auth.LoginResult, error)
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	signupRequest struct {
		Email     string `json:"email"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Password  string `json:"password"`
	}

	loginResponse struct {
		Token     string `json:"token"`
		Type      string `json:"type"`
		ID        int64  `json:"id"`
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		Admin     bool   `json:"admin"`
	}
)

func (l loginRequest) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required),
		validation.Field(&l.Password, validation.Required),
	)
}

func (s signupRequest) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Email, validation.Required, validation.Length(1, 50), is.Email),
		validation.Field(&s.FirstName, validation.Required, validation.Length(3, 20)),
		validation.Field(&s.LastName, validation.Required, validation.Length(3, 20)),
		validation.Field(&s.Password, validation.Required, validation.Length(6, 40)),
	)
}

// AsHandler serves the public authentication endpoints,
// login and registration.
func AsHandler(ctx context.Context, authn Authenticator) (http.Handler, error) {
	router := httprouter.New()
	router.HandlerFunc("POST", "/api/auth/login", login(authn))
	router.HandlerFunc("POST", "/api/auth/register", register(authn))
	return router, nil
}

func login(authn Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpserver.ReadJSON(r, &req); err != nil {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		res, err := authn.Login(r.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrBadCredentials) {
			Unauthorized(w, r, err)
			return
		} else if err != nil {
			httpserver.WriteInternalError(w, r, err)
			return
		}
		httpserver.WriteJSON(w, r, http.StatusOK, loginResponse{
			Token:     res.Token,
			Type:      res.Type,
			ID:        res.ID,
			Username:  res.Username,
			FirstName: res.FirstName,
			LastName:  res.LastName,
			Admin:     res.Admin,
		})
	}
}

func register(authn Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := httpserver.ReadJSON(r, &req); err != nil {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := req.Validate(); err != nil {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		err := authn.Register(r.Context(), auth.Signup{
			Email:     req.Email,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Password:  req.Password,
		})
		var taken auth.EmailTaken
		if errors.As(err, &taken) {
			httpserver.WriteMessage(w, r, http.StatusBadRequest, taken.Error())
			return
		} else if err != nil {
			httpserver.WriteInternalError(w, r, err)
			return
		}
		httpserver.WriteMessage(w, r, http.StatusOK, "User registered successfully!")
	}
}
