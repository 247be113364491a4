package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/andrebq/yogastudio/internal/logutil"
	"github.com/julienschmidt/httprouter"
)

const (
	maxBodySize = 1_000_000
)

type (
	// InvalidID is returned when a path segment is not a positive integer.
	InvalidID struct {
		Param string
		Value string
	}

	message struct {
		Message string `json:"message"`
	}
)

func (i InvalidID) Error() string {
	return fmt.Sprintf("%v must be a positive integer, got %q", i.Param, i.Value)
}

// PathID reads the named httprouter parameter as a positive int64.
func PathID(r *http.Request, name string) (int64, error) {
	val := httprouter.ParamsFromContext(r.Context()).ByName(name)
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil || id <= 0 {
		return 0, InvalidID{Param: name, Value: val}
	}
	return id, nil
}

// ReadJSON decodes the request body into out. Bodies larger than one
// megabyte are rejected.
func ReadJSON(r *http.Request, out interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	err := dec.Decode(out)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	} else if err != nil {
		return fmt.Errorf("request body is not valid json, cause %v", err)
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	buf, err := json.Marshal(body)
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to encode response")
		status = http.StatusInternalServerError
		buf = []byte(`{"message":"internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(buf)))
	w.WriteHeader(status)
	w.Write(buf)
}

func WriteMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	WriteJSON(w, r, status, message{Message: msg})
}

// WriteInternalError logs err and answers with a generic 500,
// the error itself never reaches the client.
func WriteInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log := logutil.GetOrDefault(r.Context())
	log.Error().Err(err).Str("path", r.URL.Path).Msg("Unexpected error")
	WriteMessage(w, r, http.StatusInternalServerError, "internal server error")
}
