package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newFakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/freeBusy"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"kind": "calendar#freeBusy",
				"calendars": map[string]any{
					"primary": map[string]any{
						"busy": []map[string]string{
							{"start": "2024-06-15T09:00:00Z", "end": "2024-06-15T10:30:00Z"},
							{"start": "2024-06-15T14:00:00Z", "end": "2024-06-15T15:30:00Z"},
						},
					},
				},
			})
		case strings.Contains(r.URL.Path, "/events"):
			require.Equal(t, http.MethodPost, r.Method)
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "Appointment", body["summary"])
			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":          "evt-123",
				"htmlLink":    "https://calendar.google.com/event?eid=evt-123",
				"hangoutLink": "https://meet.google.com/abc-defg-hij",
			})
		default:
			http.NotFound(w, r)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestService(t *testing.T) *Service {
	t.Helper()
	srv := newFakeBackend(t)
	svc, err := NewServiceWithOptions(context.Background(), time.UTC, nil,
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return svc
}

func TestBusyIntervals(t *testing.T) {
	svc := newTestService(t)

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	intervals, err := svc.BusyIntervals(context.Background(), day, "primary")
	require.NoError(t, err)
	require.Len(t, intervals, 2)
	assert.True(t, intervals[0].Start.Equal(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)))
	assert.True(t, intervals[0].End.Equal(time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)))
	assert.True(t, intervals[1].Start.Equal(time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)))
}

func TestBusyIntervals_UnknownCalendar(t *testing.T) {
	svc := newTestService(t)

	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	intervals, err := svc.BusyIntervals(context.Background(), day, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, intervals)
}

func TestCreateEvent(t *testing.T) {
	svc := newTestService(t)

	start := time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)
	result, err := svc.CreateEvent(context.Background(), EventRequest{
		CalendarID:    "primary",
		Summary:       "Appointment",
		Description:   "Extended Session with Jane Doe",
		Start:         start,
		End:           start.Add(time.Hour),
		AttendeeEmail: "jane@example.com",
		WithMeetLink:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "evt-123", result.EventID)
	assert.Equal(t, "https://meet.google.com/abc-defg-hij", result.MeetLink)
	assert.NotEmpty(t, result.HTMLLink)
}
