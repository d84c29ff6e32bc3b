package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/lststech/agenda-backend/internal/availability"
	"github.com/lststech/agenda-backend/internal/calendar"
	"github.com/lststech/agenda-backend/internal/catalog"
	"github.com/lststech/agenda-backend/internal/notify"
	"github.com/lststech/agenda-backend/internal/observability/metrics"
	"github.com/lststech/agenda-backend/internal/payments"
	"github.com/lststech/agenda-backend/pkg/logging"
)

var bookingTracer = otel.Tracer("agenda.internal.booking")

// ErrUnknownService is returned when a confirmation names a service that
// is not in the catalog.
var ErrUnknownService = errors.New("booking: unknown service")

// ErrSlotInPast is returned when a confirmation targets an already
// elapsed slot.
var ErrSlotInPast = errors.New("booking: slot is in the past")

// HoldStore grants exclusive holds on a slot while a confirmation runs.
type HoldStore interface {
	Acquire(ctx context.Context, calendarID, date, label string) error
	Release(ctx context.Context, calendarID, date, label string) error
}

// ConfirmationSender delivers the booking confirmation to the customer.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, c notify.Confirmation) error
}

// Customer identifies who the appointment is for.
type Customer struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}

// Payment carries the tokenized card data collected by the frontend.
// Empty for free services.
type Payment struct {
	Token                string
	PaymentMethodID      string
	Installments         int
	IdentificationType   string
	IdentificationNumber string
}

// ConfirmRequest is one booking confirmation.
type ConfirmRequest struct {
	Day       time.Time
	TimeLabel string
	ServiceID string
	Customer  Customer
	Notes     string
	Payment   Payment
}

// ConfirmResult reports a confirmed booking.
type ConfirmResult struct {
	BookingID     string
	EventID       string
	MeetLink      string
	PaymentID     int64
	PaymentStatus string
}

// Options configures a booking service.
type Options struct {
	SlotConfig      availability.Config
	BookingDuration time.Duration
	CalendarID      string
	OrganizerName   string
	OrganizerEmail  string

	Busy    calendar.BusySource
	Events  calendar.EventSink
	Charger payments.Charger
	Mailer  ConfirmationSender
	Holds   HoldStore // optional: nil keeps the fail-open behavior
	Catalog *catalog.Catalog
	Metrics *metrics.BookingMetrics // optional
	Logger  *logging.Logger
	Now     func() time.Time // optional, defaults to time.Now
}

// Service orchestrates the booking flow around the pure availability
// engine: fetch busy intervals, compute slots, and confirm a chosen slot
// against the calendar, the payment gateway, and the mailer.
type Service struct {
	opts Options
	now  func() time.Time
}

// NewService wires a booking service. Busy, Events and Catalog are
// required; the rest degrade gracefully.
func NewService(opts Options) (*Service, error) {
	if opts.Busy == nil {
		return nil, fmt.Errorf("booking: busy-interval source required")
	}
	if opts.Events == nil {
		return nil, fmt.Errorf("booking: event sink required")
	}
	if opts.Catalog == nil {
		return nil, fmt.Errorf("booking: catalog required")
	}
	if opts.CalendarID == "" {
		opts.CalendarID = "primary"
	}
	if opts.BookingDuration <= 0 {
		opts.BookingDuration = 60 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = logging.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{opts: opts, now: now}, nil
}

// Slots returns the day's candidate slots tagged with availability.
// Slots that already elapsed (same-day views) are reported unavailable.
// A busy-interval fetch failure propagates; no synthetic data is
// substituted for a calendar outage.
func (s *Service) Slots(ctx context.Context, day time.Time) ([]availability.Slot, error) {
	ctx, span := bookingTracer.Start(ctx, "booking.slots")
	defer span.End()
	span.SetAttributes(attribute.String("agenda.date", day.Format("2006-01-02")))

	busy, err := s.opts.Busy.BusyIntervals(ctx, day, s.opts.CalendarID)
	if err != nil {
		span.RecordError(err)
		s.opts.Metrics.ObserveSlotQuery("error")
		return nil, fmt.Errorf("booking: fetch busy intervals: %w", err)
	}

	slots := availability.Slots(day, s.opts.SlotConfig, busy)
	now := s.now()
	for i := range slots {
		if slots[i].Start.Before(now) {
			slots[i].Available = false
		}
	}

	s.opts.Metrics.ObserveSlotQuery("ok")
	return slots, nil
}

// Confirm books the chosen slot: composes the absolute times, takes the
// slot hold when a hold store is configured, charges paid services,
// creates the calendar event, and sends the confirmation email. The
// email is best effort; a booked appointment is never rolled back
// because the confirmation could not be delivered.
func (s *Service) Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResult, error) {
	started := s.now()
	ctx, span := bookingTracer.Start(ctx, "booking.confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("agenda.date", req.Day.Format("2006-01-02")),
		attribute.String("agenda.time", req.TimeLabel),
		attribute.String("agenda.service_id", req.ServiceID),
	)

	svc, ok := s.opts.Catalog.ByID(req.ServiceID)
	if !ok {
		return ConfirmResult{}, fmt.Errorf("%w: %q", ErrUnknownService, req.ServiceID)
	}

	start, end, err := availability.ComposeBookingTime(req.Day, req.TimeLabel, s.opts.BookingDuration, s.opts.SlotConfig.Location)
	if err != nil {
		s.observeConfirm("invalid", started)
		return ConfirmResult{}, err
	}
	if start.Before(s.now()) {
		s.observeConfirm("invalid", started)
		return ConfirmResult{}, ErrSlotInPast
	}

	dateKey := req.Day.Format("2006-01-02")
	if s.opts.Holds != nil {
		if err := s.opts.Holds.Acquire(ctx, s.opts.CalendarID, dateKey, req.TimeLabel); err != nil {
			span.RecordError(err)
			s.observeConfirm("conflict", started)
			return ConfirmResult{}, err
		}
		defer func() {
			if err := s.opts.Holds.Release(ctx, s.opts.CalendarID, dateKey, req.TimeLabel); err != nil {
				s.opts.Logger.Warn("failed to release slot hold", "error", err, "date", dateKey, "time", req.TimeLabel)
			}
		}()
	}

	result := ConfirmResult{BookingID: uuid.NewString()}

	if svc.Type == catalog.TypePaid {
		if s.opts.Charger == nil {
			s.observeConfirm("error", started)
			return ConfirmResult{}, fmt.Errorf("booking: service %q requires payment but no charger is configured", svc.ID)
		}
		charge, err := s.opts.Charger.Charge(ctx, payments.ChargeRequest{
			Amount:          s.opts.Catalog.PriceCOP(svc),
			Token:           req.Payment.Token,
			PaymentMethodID: req.Payment.PaymentMethodID,
			Installments:    req.Payment.Installments,
			Description:     svc.Name,
			Payer: payments.Payer{
				Email:                req.Customer.Email,
				IdentificationType:   req.Payment.IdentificationType,
				IdentificationNumber: req.Payment.IdentificationNumber,
			},
		})
		if err != nil {
			span.RecordError(err)
			if errors.Is(err, payments.ErrPaymentDeclined) {
				s.observeConfirm("declined", started)
			} else {
				s.observeConfirm("error", started)
			}
			return ConfirmResult{}, err
		}
		result.PaymentID = charge.ID
		result.PaymentStatus = charge.Status
	}

	event, err := s.opts.Events.CreateEvent(ctx, calendar.EventRequest{
		CalendarID:    s.opts.CalendarID,
		Summary:       "Appointment",
		Description:   s.eventDescription(svc, req),
		Start:         start,
		End:           end,
		AttendeeEmail: req.Customer.Email,
		WithMeetLink:  true,
	})
	if err != nil {
		span.RecordError(err)
		s.observeConfirm("error", started)
		return ConfirmResult{}, err
	}
	result.EventID = event.EventID
	result.MeetLink = event.MeetLink

	if s.opts.Mailer != nil {
		confirmation := notify.Confirmation{
			CustomerName:  req.Customer.FirstName + " " + req.Customer.LastName,
			CustomerEmail: req.Customer.Email,
			ServiceName:   svc.Name,
			Start:         start,
			End:           end,
			MeetLink:      event.MeetLink,
			OrganizerName: s.opts.OrganizerName,
			OrganizerMail: s.opts.OrganizerEmail,
		}
		if err := s.opts.Mailer.SendConfirmation(ctx, confirmation); err != nil {
			s.opts.Logger.Warn("confirmation email failed", "error", err, "booking_id", result.BookingID)
		}
	}

	s.opts.Logger.Info("booking confirmed",
		"booking_id", result.BookingID,
		"event_id", result.EventID,
		"service_id", svc.ID,
		"start", start.Format(time.RFC3339),
	)
	s.observeConfirm("confirmed", started)
	return result, nil
}

func (s *Service) eventDescription(svc catalog.Service, req ConfirmRequest) string {
	desc := fmt.Sprintf("Service: %s\nCustomer: %s %s\nEmail: %s",
		svc.Name, req.Customer.FirstName, req.Customer.LastName, req.Customer.Email)
	if req.Customer.Phone != "" {
		desc += "\nPhone: " + req.Customer.Phone
	}
	if req.Notes != "" {
		desc += "\nNotes: " + req.Notes
	}
	return desc
}

func (s *Service) observeConfirm(status string, started time.Time) {
	s.opts.Metrics.ObserveConfirmation(status, s.now().Sub(started).Seconds())
}
