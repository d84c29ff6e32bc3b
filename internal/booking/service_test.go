package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lststech/agenda-backend/internal/availability"
	"github.com/lststech/agenda-backend/internal/calendar"
	"github.com/lststech/agenda-backend/internal/catalog"
	"github.com/lststech/agenda-backend/internal/hold"
	"github.com/lststech/agenda-backend/internal/notify"
	"github.com/lststech/agenda-backend/internal/payments"
)

type fakeBusySource struct {
	intervals []availability.BusyInterval
	err       error
}

func (f *fakeBusySource) BusyIntervals(context.Context, time.Time, string) ([]availability.BusyInterval, error) {
	return f.intervals, f.err
}

type fakeEventSink struct {
	lastReq calendar.EventRequest
	result  calendar.EventResult
	err     error
	calls   int
}

func (f *fakeEventSink) CreateEvent(_ context.Context, req calendar.EventRequest) (calendar.EventResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

type fakeCharger struct {
	lastReq payments.ChargeRequest
	result  payments.ChargeResult
	err     error
	calls   int
}

func (f *fakeCharger) Charge(_ context.Context, req payments.ChargeRequest) (payments.ChargeResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

type fakeMailer struct {
	last  notify.Confirmation
	err   error
	calls int
}

func (f *fakeMailer) SendConfirmation(_ context.Context, c notify.Confirmation) error {
	f.calls++
	f.last = c
	return f.err
}

type fakeHolds struct {
	acquireErr error
	acquired   []string
	released   []string
}

func (f *fakeHolds) Acquire(_ context.Context, calendarID, date, label string) error {
	if f.acquireErr != nil {
		return f.acquireErr
	}
	f.acquired = append(f.acquired, fmt.Sprintf("%s/%s/%s", calendarID, date, label))
	return nil
}

func (f *fakeHolds) Release(_ context.Context, calendarID, date, label string) error {
	f.released = append(f.released, fmt.Sprintf("%s/%s/%s", calendarID, date, label))
	return nil
}

func testDay() time.Time {
	return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
}

func fixedNow() time.Time {
	return time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(`{"3": 90}`, 4000)
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T, mutate func(*Options)) (*Service, *fakeEventSink, *fakeCharger, *fakeMailer) {
	t.Helper()
	cfg, err := availability.NewConfig(9, 17, 60, time.UTC)
	require.NoError(t, err)

	events := &fakeEventSink{result: calendar.EventResult{
		EventID:  "evt-1",
		MeetLink: "https://meet.google.com/abc",
	}}
	charger := &fakeCharger{result: payments.ChargeResult{ID: 42, Status: "approved"}}
	mailer := &fakeMailer{}

	opts := Options{
		SlotConfig:      cfg,
		BookingDuration: time.Hour,
		CalendarID:      "primary",
		Busy:            &fakeBusySource{},
		Events:          events,
		Charger:         charger,
		Mailer:          mailer,
		Catalog:         testCatalog(t),
		Now:             fixedNow,
	}
	if mutate != nil {
		mutate(&opts)
	}
	svc, err := NewService(opts)
	require.NoError(t, err)
	return svc, events, charger, mailer
}

func TestSlots_MarksBusyAndOrders(t *testing.T) {
	busy := &fakeBusySource{intervals: []availability.BusyInterval{{
		Start: time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC),
		End:   time.Date(2024, 6, 15, 9, 45, 0, 0, time.UTC),
	}}}
	svc, _, _, _ := newTestService(t, func(o *Options) { o.Busy = busy })

	slots, err := svc.Slots(context.Background(), testDay())
	require.NoError(t, err)
	require.Len(t, slots, 8)

	assert.False(t, slots[0].Available, "09:00 blocked by contained busy interval")
	assert.True(t, slots[1].Available)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].Start.Before(slots[i].Start), "slots must be ordered")
	}
}

func TestSlots_SuppressesPastForToday(t *testing.T) {
	now := time.Date(2024, 6, 15, 11, 30, 0, 0, time.UTC)
	svc, _, _, _ := newTestService(t, func(o *Options) { o.Now = func() time.Time { return now } })

	slots, err := svc.Slots(context.Background(), testDay())
	require.NoError(t, err)

	for _, s := range slots {
		switch s.Label {
		case "09:00", "10:00", "11:00":
			assert.False(t, s.Available, "slot %s already started and must be suppressed", s.Label)
		case "12:00", "13:00":
			assert.True(t, s.Available)
		}
	}
}

func TestSlots_FetchErrorPropagates(t *testing.T) {
	busy := &fakeBusySource{err: errors.New("upstream down")}
	svc, _, _, _ := newTestService(t, func(o *Options) { o.Busy = busy })

	_, err := svc.Slots(context.Background(), testDay())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy intervals")
}

func validConfirm() ConfirmRequest {
	return ConfirmRequest{
		Day:       testDay(),
		TimeLabel: "14:00",
		ServiceID: "3",
		Customer: Customer{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@example.com",
			Phone:     "+57 300 000 0000",
		},
		Notes: "first visit",
		Payment: Payment{
			Token:                "tok_abc",
			PaymentMethodID:      "visa",
			Installments:         1,
			IdentificationType:   "CC",
			IdentificationNumber: "1020304050",
		},
	}
}

func TestConfirm_PaidService(t *testing.T) {
	svc, events, charger, mailer := newTestService(t, nil)

	result, err := svc.Confirm(context.Background(), validConfirm())
	require.NoError(t, err)

	assert.NotEmpty(t, result.BookingID)
	assert.Equal(t, "evt-1", result.EventID)
	assert.Equal(t, "https://meet.google.com/abc", result.MeetLink)
	assert.Equal(t, int64(42), result.PaymentID)
	assert.Equal(t, "approved", result.PaymentStatus)

	// Charge amount is the COP conversion of the USD price (90 * 4000).
	assert.Equal(t, 360000.0, charger.lastReq.Amount)
	assert.Equal(t, "Extended Session", charger.lastReq.Description)

	// The event carries the composed absolute times and the attendee.
	assert.True(t, events.lastReq.Start.Equal(time.Date(2024, 6, 15, 14, 0, 0, 0, time.UTC)))
	assert.True(t, events.lastReq.End.Equal(time.Date(2024, 6, 15, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "jane@example.com", events.lastReq.AttendeeEmail)
	assert.Contains(t, events.lastReq.Description, "Jane Doe")
	assert.Contains(t, events.lastReq.Description, "first visit")

	assert.Equal(t, 1, mailer.calls)
	assert.Equal(t, "Jane Doe", mailer.last.CustomerName)
}

func TestConfirm_FreeServiceSkipsCharge(t *testing.T) {
	svc, events, charger, _ := newTestService(t, nil)

	req := validConfirm()
	req.ServiceID = "1"
	req.Payment = Payment{}

	result, err := svc.Confirm(context.Background(), req)
	require.NoError(t, err)
	assert.Zero(t, charger.calls, "free services must not be charged")
	assert.Equal(t, 1, events.calls)
	assert.Empty(t, result.PaymentStatus)
}

func TestConfirm_DeclinePropagatesAndSkipsEvent(t *testing.T) {
	svc, events, charger, mailer := newTestService(t, nil)
	charger.err = fmt.Errorf("%w: cc_rejected_insufficient_amount", payments.ErrPaymentDeclined)

	_, err := svc.Confirm(context.Background(), validConfirm())
	require.ErrorIs(t, err, payments.ErrPaymentDeclined)
	assert.Zero(t, events.calls, "no event for a declined payment")
	assert.Zero(t, mailer.calls)
}

func TestConfirm_CalendarFailureAfterCharge(t *testing.T) {
	svc, events, _, mailer := newTestService(t, nil)
	events.err = errors.New("calendar 500")

	_, err := svc.Confirm(context.Background(), validConfirm())
	require.Error(t, err)
	assert.Zero(t, mailer.calls)
}

func TestConfirm_MalformedLabel(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	req := validConfirm()
	req.TimeLabel = "25:99"

	_, err := svc.Confirm(context.Background(), req)
	require.ErrorIs(t, err, availability.ErrMalformedTimeLabel)
}

func TestConfirm_UnknownService(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	req := validConfirm()
	req.ServiceID = "99"

	_, err := svc.Confirm(context.Background(), req)
	require.ErrorIs(t, err, ErrUnknownService)
}

func TestConfirm_PastSlot(t *testing.T) {
	now := time.Date(2024, 6, 15, 15, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestService(t, func(o *Options) { o.Now = func() time.Time { return now } })

	_, err := svc.Confirm(context.Background(), validConfirm())
	require.ErrorIs(t, err, ErrSlotInPast)
}

func TestConfirm_HoldAcquiredAndReleased(t *testing.T) {
	holds := &fakeHolds{}
	svc, _, _, _ := newTestService(t, func(o *Options) { o.Holds = holds })

	_, err := svc.Confirm(context.Background(), validConfirm())
	require.NoError(t, err)
	require.Len(t, holds.acquired, 1)
	assert.Equal(t, "primary/2024-06-15/14:00", holds.acquired[0])
	require.Len(t, holds.released, 1)
	assert.Equal(t, holds.acquired[0], holds.released[0])
}

func TestConfirm_HoldConflict(t *testing.T) {
	holds := &fakeHolds{acquireErr: hold.ErrSlotHeld}
	svc, events, charger, _ := newTestService(t, func(o *Options) { o.Holds = holds })

	_, err := svc.Confirm(context.Background(), validConfirm())
	require.ErrorIs(t, err, hold.ErrSlotHeld)
	assert.Zero(t, charger.calls)
	assert.Zero(t, events.calls)
}

func TestConfirm_HoldReleasedOnFailure(t *testing.T) {
	holds := &fakeHolds{}
	svc, events, _, _ := newTestService(t, func(o *Options) { o.Holds = holds })
	events.err = errors.New("calendar 500")

	_, err := svc.Confirm(context.Background(), validConfirm())
	require.Error(t, err)
	require.Len(t, holds.released, 1, "hold must be released when the confirmation fails")
}

func TestConfirm_EmailFailureDoesNotFailBooking(t *testing.T) {
	svc, _, _, mailer := newTestService(t, nil)
	mailer.err = errors.New("sendgrid 500")

	result, err := svc.Confirm(context.Background(), validConfirm())
	require.NoError(t, err)
	assert.NotEmpty(t, result.EventID)
}
