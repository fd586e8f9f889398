package httperr

import (
	"errors"
	"log/slog"
	"net/http"

	"salon-service/pkg/response"
	"salon-service/pkg/sl"

	"github.com/go-chi/render"
)

// Render maps a workflow error to its HTTP status and JSON body. Every
// handler funnels non-nil errors through here so the mapping stays in
// one place.
func Render(log *slog.Logger, w http.ResponseWriter, r *http.Request, err error, failMsg string) {
	var verr *response.ValidationError
	if errors.As(err, &verr) {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.VALIDATION), verr.Error()))
		return
	}

	if errors.Is(err, response.ErrBadRequest) {
		log.Error("bad request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
		return
	}

	if errors.Is(err, response.ErrNotFound) {
		log.Error("resource not found")
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error(string(response.NOT_FOUND), "booking not found"))
		return
	}

	var cerr *response.ConflictError
	if errors.As(err, &cerr) {
		log.Error("calendar conflict", sl.Err(err))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error(string(response.CONFLICT), cerr.Error()))
		return
	}
	if errors.Is(err, response.ErrConflict) {
		log.Error("calendar conflict", sl.Err(err))
		w.WriteHeader(http.StatusConflict)
		render.JSON(w, r, response.Error(string(response.CONFLICT), "time range is not available"))
		return
	}

	var serr *response.StateError
	if errors.As(err, &serr) {
		log.Error("invalid state", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(string(response.INVALID_STATE), serr.Error()))
		return
	}
	if errors.Is(err, response.ErrInvalidState) {
		log.Error("invalid state", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(string(response.INVALID_STATE), "operation not allowed in current status"))
		return
	}

	if errors.Is(err, response.ErrLocked) {
		log.Error("resource is locked")
		w.WriteHeader(http.StatusLocked)
		render.JSON(w, r, response.Error(string(response.LOCKED), "resource is locked"))
		return
	}

	log.Error(failMsg, sl.Err(err))
	w.WriteHeader(http.StatusInternalServerError)
	render.JSON(w, r, response.Error(string(response.FAILED_REQUEST), failMsg))
}
