package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrMalformedTimeLabel is returned when a time label does not match the
// agreed 24-hour "HH:MM" format.
var ErrMalformedTimeLabel = errors.New("availability: malformed time label")

// labelLayout is the single label format shared by slot generation and
// booking-time composition.
const labelLayout = "15:04"

// FormatLabel renders a slot start as its display label.
func FormatLabel(t time.Time) string {
	return t.Format(labelLayout)
}

// ParseLabel parses a display label back into its hour and minute.
func ParseLabel(label string) (hour, minute int, err error) {
	t, err := time.Parse(labelLayout, label)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTimeLabel, label)
	}
	return t.Hour(), t.Minute(), nil
}

// At composes the absolute instant for a label on the given day in loc.
func At(day time.Time, label string, loc *time.Location) (time.Time, error) {
	hour, minute, err := ParseLabel(label)
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}

// InPast reports whether the slot identified by day + label starts
// strictly before now. Orthogonal to availability: callers suppress past
// slots separately.
func InPast(day time.Time, label string, now time.Time, loc *time.Location) (bool, error) {
	start, err := At(day, label, loc)
	if err != nil {
		return false, err
	}
	return start.Before(now), nil
}

// ComposeBookingTime converts a chosen day + label into the absolute
// start/end pair submitted to the calendar. The booking duration is
// distinct from the slot granularity.
func ComposeBookingTime(day time.Time, label string, duration time.Duration, loc *time.Location) (start, end time.Time, err error) {
	if duration <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: booking duration must be positive", ErrInvalidConfig)
	}
	start, err = At(day, label, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.Add(duration), nil
}
