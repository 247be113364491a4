package httpserver

import (
	"errors"
	"net/http"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/steinfletcher/apitest"
	jsonpath "github.com/steinfletcher/apitest-jsonpath"
)

func TestWriteInternalError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteInternalError(w, r, errors.New("disk on fire"))
	})
	apitest.Handler(handler).Get("/boom").
		Expect(t).
		Status(http.StatusInternalServerError).
		Header("Content-Type", "application/json; charset=utf-8").
		Body(`{"message":"internal server error"}`).
		End()
}

func TestPathID(t *testing.T) {
	router := httprouter.New()
	router.HandlerFunc("GET", "/item/:id", func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			WriteMessage(w, r, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, r, http.StatusOK, map[string]int64{"id": id})
	})
	apitest.Handler(router).Get("/item/42").
		Expect(t).Status(http.StatusOK).Assert(jsonpath.Equal(`$.id`, float64(42))).End()
	for _, bad := range []string{"abc", "0", "-3", "99999999999999999999"} {
		apitest.Handler(router).Get("/item/" + bad).
			Expect(t).Status(http.StatusBadRequest).End()
	}
}
