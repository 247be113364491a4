package api

import (
	"net/http"

	"github.com/andrebq/yogastudio/internal/httpserver"
	"github.com/andrebq/yogastudio/internal/logutil"
)

type (
	unauthorizedBody struct {
		Status  int    `json:"status"`
		Error   string `json:"error"`
		Message string `json:"message"`
		Path    string `json:"path"`
	}
)

// Unauthorized writes the 401 answer used whenever a request lacks
// valid authentication.
func Unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Info().Err(err).Str("path", r.URL.Path).Msg("Unauthorized error")
	httpserver.WriteJSON(w, r, http.StatusUnauthorized, unauthorizedBody{
		Status:  http.StatusUnauthorized,
		Error:   http.StatusText(http.StatusUnauthorized),
		Message: err.Error(),
		Path:    r.URL.Path,
	})
}
