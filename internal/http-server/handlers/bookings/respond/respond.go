package respond

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

type RescheduleResponder interface {
	RespondToReschedule(ctx context.Context, id string, req *api.RescheduleResponseRequest) (*api.BookingResponse, error)
}

type Request struct {
	api.RescheduleResponseRequest
}

type Response struct {
	response.Response
	Booking api.BookingResponse `json:"booking,omitempty"`
}

func New(log *slog.Logger, responder RescheduleResponder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookings.respond.New"

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

		booking, err := responder.RespondToReschedule(r.Context(), id, &req.RescheduleResponseRequest)
		if err != nil {
			httperr.Render(log, w, r, err, "failed to respond to reschedule")
			return
		}

		log.Info("Reschedule resolved",
			slog.String("booking_id", booking.ID),
			slog.String("action", req.Action),
		)

		render.JSON(w, r, Response{
			Booking: *booking,
		})
	}
}
