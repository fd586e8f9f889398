package conflict

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"salon-service/internal/http-server/handlers/httperr"
	"salon-service/internal/workflow"
	"salon-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type ConflictChecker interface {
	CheckConflict(ctx context.Context, masterID string, start time.Time, duration time.Duration) (*workflow.ConflictResult, error)
}

type Response struct {
	response.Response
	workflow.ConflictResult
}

// New answers availability queries: would [start, start+duration)
// collide with an existing hold or confirmed slot of this master.
// Query params: start (RFC3339), duration (minutes).
func New(log *slog.Logger, checker ConflictChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.masters.conflict.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		masterID := chi.URLParam(r, "id")
		if masterID == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
		if err != nil {
			log.Error("start is not RFC3339")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "start must be RFC3339"))
			return
		}

		minutes, err := strconv.Atoi(r.URL.Query().Get("duration"))
		if err != nil || minutes <= 0 {
			log.Error("duration is not a positive integer")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "duration must be a positive number of minutes"))
			return
		}

		result, err := checker.CheckConflict(r.Context(), masterID, start, time.Duration(minutes)*time.Minute)
		if err != nil {
			httperr.Render(log, w, r, err, "failed to check conflicts")
			return
		}

		render.JSON(w, r, Response{
			ConflictResult: *result,
		})
	}
}
