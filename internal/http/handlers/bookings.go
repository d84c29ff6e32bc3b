package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lststech/agenda-backend/internal/availability"
	"github.com/lststech/agenda-backend/internal/booking"
	"github.com/lststech/agenda-backend/internal/hold"
	"github.com/lststech/agenda-backend/internal/payments"
	"github.com/lststech/agenda-backend/pkg/logging"
)

// BookingConfirmer books one slot end to end.
type BookingConfirmer interface {
	Confirm(ctx context.Context, req booking.ConfirmRequest) (booking.ConfirmResult, error)
}

// BookingsHandler serves booking confirmations.
type BookingsHandler struct {
	bookings BookingConfirmer
	loc      *time.Location
	logger   *logging.Logger
}

// NewBookingsHandler creates a new bookings handler.
func NewBookingsHandler(bookings BookingConfirmer, loc *time.Location, logger *logging.Logger) *BookingsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingsHandler{bookings: bookings, loc: loc, logger: logger}
}

// PaymentRequest carries the tokenized card data for paid services.
type PaymentRequest struct {
	Token                string `json:"token"`
	PaymentMethodID      string `json:"payment_method_id"`
	Installments         int    `json:"installments"`
	IdentificationType   string `json:"identification_type"`
	IdentificationNumber string `json:"identification_number"`
}

// CreateBookingRequest is the POST /api/bookings payload.
type CreateBookingRequest struct {
	Date      string         `json:"date"`
	Time      string         `json:"time"`
	ServiceID string         `json:"service_id"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	Payment   PaymentRequest `json:"payment"`
}

// CreateBookingResponse reports a confirmed booking.
type CreateBookingResponse struct {
	BookingID     string `json:"booking_id"`
	EventID       string `json:"event_id"`
	MeetLink      string `json:"meet_link,omitempty"`
	PaymentID     int64  `json:"payment_id,omitempty"`
	PaymentStatus string `json:"payment_status,omitempty"`
}

// CreateBooking handles POST /api/bookings.
func (h *BookingsHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Date == "" || req.Time == "" || req.ServiceID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "date, time, service_id and email are required")
		return
	}
	day, err := time.ParseInLocation(dateLayout, req.Date, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	result, err := h.bookings.Confirm(r.Context(), booking.ConfirmRequest{
		Day:       day,
		TimeLabel: req.Time,
		ServiceID: req.ServiceID,
		Customer: booking.Customer{
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
		},
		Notes: req.Notes,
		Payment: booking.Payment{
			Token:                req.Payment.Token,
			PaymentMethodID:      req.Payment.PaymentMethodID,
			Installments:         req.Payment.Installments,
			IdentificationType:   req.Payment.IdentificationType,
			IdentificationNumber: req.Payment.IdentificationNumber,
		},
	})
	if err != nil {
		h.respondConfirmError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(CreateBookingResponse{
		BookingID:     result.BookingID,
		EventID:       result.EventID,
		MeetLink:      result.MeetLink,
		PaymentID:     result.PaymentID,
		PaymentStatus: result.PaymentStatus,
	})
}

func (h *BookingsHandler) respondConfirmError(w http.ResponseWriter, req CreateBookingRequest, err error) {
	switch {
	case errors.Is(err, availability.ErrMalformedTimeLabel):
		writeError(w, http.StatusBadRequest, "time must be HH:MM")
	case errors.Is(err, booking.ErrUnknownService):
		writeError(w, http.StatusBadRequest, "unknown service")
	case errors.Is(err, booking.ErrSlotInPast):
		writeError(w, http.StatusUnprocessableEntity, "slot is in the past")
	case errors.Is(err, hold.ErrSlotHeld):
		writeError(w, http.StatusConflict, "slot is being booked by someone else")
	case errors.Is(err, payments.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, "payment was declined")
	default:
		h.logger.Error("booking confirmation failed", "error", err, "date", req.Date, "time", req.Time)
		writeError(w, http.StatusBadGateway, "could not complete the booking")
	}
}
