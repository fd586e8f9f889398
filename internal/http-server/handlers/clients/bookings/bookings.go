package bookings

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

type ClientBookingsLister interface {
	ListClientBookings(ctx context.Context, clientID string) ([]*api.BookingResponse, error)
}

type Response struct {
	response.Response
	Bookings []*api.BookingResponse `json:"bookings"`
	Count    int                    `json:"count"`
}

func New(log *slog.Logger, lister ClientBookingsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.clients.bookings.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		clientID := chi.URLParam(r, "id")
		if clientID == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		bookings, err := lister.ListClientBookings(r.Context(), clientID)
		if err != nil {
			httperr.Render(log, w, r, err, "failed to list client bookings")
			return
		}

		render.JSON(w, r, Response{
			Bookings: bookings,
			Count:    len(bookings),
		})
	}
}
