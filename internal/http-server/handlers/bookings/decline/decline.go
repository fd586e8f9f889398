package decline

import (
	"context"
	"log/slog"
	"net/http"

	"salon-service/api"
	"salon-service/internal/http-server/handlers/httperr"
	"salon-service/pkg/response"
	"salon-service/pkg/sl"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

type BookingDecliner interface {
	DeclineBooking(ctx context.Context, id string, req *api.DeclineBookingRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.DeclineBookingRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, decliner BookingDecliner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.decline.New"

		log = log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id := chi.URLParam(r, "id")
		if id == "" {
			log.Error("id is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "id is required"))
			return
		}

		var req Request

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("Failed to decode request body", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
			return
		}

		if req.DeclineReason == "" {
			log.Error("decline_reason is empty")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(string(response.VALIDATION), "decline_reason is required"))
			return
		}

		booking, err := decliner.DeclineBooking(r.Context(), id, &req.DeclineBookingRequest)
		if err != nil {
			httperr.Render(log, w, r, err, "failed to decline booking")
			return
		}

		log.Info("Booking declined", slog.String("booking_id", booking.ID))

		render.JSON(w, r, Response{
			Booking: *booking,
		})
	}
}
