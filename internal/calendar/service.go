package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/lststech/agenda-backend/internal/availability"
	"github.com/lststech/agenda-backend/pkg/logging"
)

// BusySource fetches occupied intervals for one calendar day.
type BusySource interface {
	BusyIntervals(ctx context.Context, day time.Time, calendarID string) ([]availability.BusyInterval, error)
}

// EventSink creates calendar events for confirmed bookings.
type EventSink interface {
	CreateEvent(ctx context.Context, req EventRequest) (EventResult, error)
}

// EventRequest describes the event submitted for a confirmed booking.
type EventRequest struct {
	CalendarID    string
	Summary       string
	Description   string
	Start         time.Time
	End           time.Time
	AttendeeEmail string
	WithMeetLink  bool
}

// EventResult is the backend's acknowledgement of a created event.
type EventResult struct {
	EventID  string
	HTMLLink string
	MeetLink string
}

// Service wraps the Google Calendar API for free/busy queries and event
// creation. It is constructed once and injected wherever needed; there is
// no process-wide instance.
type Service struct {
	api    *gcal.Service
	loc    *time.Location
	logger *logging.Logger
}

// NewService builds a calendar service authenticated with the given
// service-account credentials JSON.
func NewService(ctx context.Context, credentialsJSON []byte, loc *time.Location, logger *logging.Logger) (*Service, error) {
	api, err := gcal.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(gcal.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("calendar: build client: %w", err)
	}
	return newService(api, loc, logger), nil
}

// NewServiceWithOptions builds a calendar service from raw client options.
// Used by tests to point the client at a fake backend.
func NewServiceWithOptions(ctx context.Context, loc *time.Location, logger *logging.Logger, opts ...option.ClientOption) (*Service, error) {
	api, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("calendar: build client: %w", err)
	}
	return newService(api, loc, logger), nil
}

func newService(api *gcal.Service, loc *time.Location, logger *logging.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{api: api, loc: loc, logger: logger}
}

// BusyIntervals queries free/busy for the full local day containing day
// and returns the occupied ranges as absolute instants. Fetch failures
// propagate to the caller; no synthetic busy data is ever substituted.
func (s *Service) BusyIntervals(ctx context.Context, day time.Time, calendarID string) ([]availability.BusyInterval, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, s.loc)
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	resp, err := s.api.Freebusy.Query(&gcal.FreeBusyRequest{
		TimeMin:  dayStart.Format(time.RFC3339),
		TimeMax:  dayEnd.Format(time.RFC3339),
		TimeZone: "UTC",
		Items:    []*gcal.FreeBusyRequestItem{{Id: calendarID}},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("calendar: freebusy query: %w", err)
	}

	cal, ok := resp.Calendars[calendarID]
	if !ok {
		return nil, nil
	}
	intervals := make([]availability.BusyInterval, 0, len(cal.Busy))
	for _, period := range cal.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, fmt.Errorf("calendar: busy period start %q: %w", period.Start, err)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, fmt.Errorf("calendar: busy period end %q: %w", period.End, err)
		}
		intervals = append(intervals, availability.BusyInterval{Start: start, End: end})
	}
	return intervals, nil
}

// CreateEvent inserts the booking event, inviting the customer and
// requesting a Meet link when asked. The backend does not deduplicate:
// retries can create duplicate events, so callers must not retry blindly.
func (s *Service) CreateEvent(ctx context.Context, req EventRequest) (EventResult, error) {
	event := &gcal.Event{
		Summary:     req.Summary,
		Description: req.Description,
		Start: &gcal.EventDateTime{
			DateTime: req.Start.Format(time.RFC3339),
			TimeZone: s.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: req.End.Format(time.RFC3339),
			TimeZone: s.loc.String(),
		},
	}
	if req.AttendeeEmail != "" {
		event.Attendees = []*gcal.EventAttendee{{Email: req.AttendeeEmail}}
	}

	call := s.api.Events.Insert(req.CalendarID, event).Context(ctx)
	if req.WithMeetLink {
		event.ConferenceData = &gcal.ConferenceData{
			CreateRequest: &gcal.CreateConferenceRequest{
				RequestId:             uuid.NewString(),
				ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
			},
		}
		call = call.ConferenceDataVersion(1)
	}
	if req.AttendeeEmail != "" {
		call = call.SendUpdates("all")
	}

	created, err := call.Do()
	if err != nil {
		return EventResult{}, fmt.Errorf("calendar: insert event: %w", err)
	}

	result := EventResult{
		EventID:  created.Id,
		HTMLLink: created.HtmlLink,
		MeetLink: created.HangoutLink,
	}
	s.logger.Info("calendar event created",
		"calendar_id", req.CalendarID,
		"event_id", result.EventID,
		"start", req.Start.Format(time.RFC3339),
	)
	return result, nil
}
