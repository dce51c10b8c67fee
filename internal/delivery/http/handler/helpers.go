package handler

import (
	"errors"
	"net/http"
	"strconv"

	"hivcare-booking/internal/usecase"
	"hivcare-booking/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps a usecase failure to a response. Domain errors keep their
// status and message, everything else falls back to a generic 500.
func writeError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, usecase.ErrUnauthenticated) {
		response.Unauthorized(w, "Unauthorized")
		return
	}
	response.FromError(w, err, fallback)
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(name))
	return err == nil && v
}
