// Package webapp assembles the HTTP surface of the studio.
package webapp

import (
	"context"
	"net/http"
	"time"

	"github.com/andrebq/yogastudio/auth"
	authapi "github.com/andrebq/yogastudio/auth/api"
	"github.com/andrebq/yogastudio/booking"
	bookingapi "github.com/andrebq/yogastudio/booking/api"
	"github.com/andrebq/yogastudio/directory"
	directoryapi "github.com/andrebq/yogastudio/directory/api"
	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/andrebq/yogastudio/studio"
)

type (
	Config struct {
		Secret        []byte
		TokenLifetime time.Duration
		// PrincipalTTL defaults to auth.DefaultPrincipalTTL
		PrincipalTTL time.Duration
		Hasher       auth.Hasher
		// Clock is only replaced by tests
		Clock func() time.Time
	}

	App struct {
		handler    http.Handler
		principals *auth.PrincipalLoader
		tokens     *auth.TokenService
	}
)

// New wires every endpoint on top of store. Requests go through the access log,
// then the authentication gate, then reach the routes.
func New(ctx context.Context, store *studio.Store, cfg Config) (*App, error) {
	log := logutil.GetOrDefault(ctx)
	opts := []auth.TokenOption{auth.WithLogger(log)}
	if cfg.Clock != nil {
		opts = append(opts, auth.WithClock(cfg.Clock))
	}
	tokens, err := auth.NewTokenService(cfg.Secret, cfg.TokenLifetime, opts...)
	if err != nil {
		return nil, err
	}
	if cfg.PrincipalTTL <= 0 {
		cfg.PrincipalTTL = auth.DefaultPrincipalTTL
	}
	principals, err := auth.NewPrincipalLoader(store, cfg.PrincipalTTL)
	if err != nil {
		return nil, err
	}
	app := &App{principals: principals, tokens: tokens}
	realm := authapi.NewRealm(tokens, principals)

	authHandler, err := authapi.AsHandler(ctx, auth.NewAuthenticator(store, principals, cfg.Hasher, tokens))
	if err != nil {
		app.Close()
		return nil, err
	}
	sessionHandler, err := bookingapi.AsHandler(ctx, booking.NewService(store), realm.Protect)
	if err != nil {
		app.Close()
		return nil, err
	}
	directoryHandler, err := directoryapi.AsHandler(ctx, directory.NewTeachers(store), directory.NewUsers(store, principals), realm.Protect)
	if err != nil {
		app.Close()
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authHandler)
	mux.Handle("/api/session", sessionHandler)
	mux.Handle("/api/session/", sessionHandler)
	mux.Handle("/api/teacher", directoryHandler)
	mux.Handle("/api/teacher/", directoryHandler)
	mux.Handle("/api/user/", directoryHandler)

	app.handler = logutil.Handler(log, realm.Authenticate(mux))
	return app, nil
}

func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// TokenLifetime is how long the tokens issued by the app remain valid.
func (a *App) TokenLifetime() time.Duration {
	return a.tokens.Lifetime()
}

func (a *App) Close() error {
	return a.principals.Close()
}
