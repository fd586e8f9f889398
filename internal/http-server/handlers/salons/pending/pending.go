package pending

import (
	"context"
	"log/slog"
	"net/http"

	"salon-service/api"
	"salon-service/internal/http-server/handlers/httperr"
	"salon-service/pkg/response"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type PendingLister interface {
	ListSalonPending(ctx context.Context, salonID string) ([]*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings"`
	Count    int                    `json:"count"`
}

// New serves the salon's confirmation queue: every booking still
// waiting for a confirm or decline, oldest first.
func New(log *slog.Logger, lister PendingLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.salons.pending.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		salonID := chi.URLParam(r, "id")
		if salonID == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		bookings, err := lister.ListSalonPending(r.Context(), salonID)
		if err != nil {
			httperr.Render(log, w, r, err, "failed to list pending bookings")
			return
		}

		render.JSON(w, r, Response{
			Bookings: bookings,
			Count:    len(bookings),
		})
	}
}
