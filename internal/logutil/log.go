package logutil

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

type (
	key byte
)

var (
	loggerKey = key(1)
)

func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetOrDefault returns the logger bound to ctx, either by WithLogger or
// by the request middleware. The global logger is used when none is found.
func GetOrDefault(ctx context.Context) zerolog.Logger {
	v := ctx.Value(loggerKey)
	if v != nil {
		return v.(zerolog.Logger)
	}
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}

// Handler attaches a request scoped logger (with a request id) to every request
// and writes one access log entry per response.
func Handler(base zerolog.Logger, next http.Handler) http.Handler {
	next = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request served")
	})(next)
	next = hlog.RequestIDHandler("req_id", "X-Request-Id")(next)
	return hlog.NewHandler(base)(next)
}
