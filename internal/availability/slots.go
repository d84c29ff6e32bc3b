package availability

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned when a slot configuration cannot produce a
// valid booking window.
var ErrInvalidConfig = errors.New("availability: invalid slot configuration")

// Config describes the bookable window for a single calendar day.
type Config struct {
	DayStartHour int
	DayEndHour   int
	SlotDuration time.Duration
	Location     *time.Location
}

// NewConfig validates and builds a slot configuration. The window must be
// non-empty and the slot duration positive; both slot length and cursor
// advance are driven by the same duration.
func NewConfig(dayStartHour, dayEndHour, slotMinutes int, loc *time.Location) (Config, error) {
	if dayStartHour < 0 || dayStartHour > 23 || dayEndHour < 0 || dayEndHour > 24 {
		return Config{}, fmt.Errorf("%w: hours out of range (start=%d end=%d)", ErrInvalidConfig, dayStartHour, dayEndHour)
	}
	if dayStartHour >= dayEndHour {
		return Config{}, fmt.Errorf("%w: day start %d:00 is not before day end %d:00", ErrInvalidConfig, dayStartHour, dayEndHour)
	}
	if slotMinutes <= 0 {
		return Config{}, fmt.Errorf("%w: slot duration must be positive (got %d minutes)", ErrInvalidConfig, slotMinutes)
	}
	if loc == nil {
		loc = time.Local
	}
	return Config{
		DayStartHour: dayStartHour,
		DayEndHour:   dayEndHour,
		SlotDuration: time.Duration(slotMinutes) * time.Minute,
		Location:     loc,
	}, nil
}

// DefaultConfig returns the standard 09:00-17:00 window with one-hour slots.
func DefaultConfig(loc *time.Location) Config {
	cfg, err := NewConfig(9, 17, 60, loc)
	if err != nil {
		panic(err) // defaults are known-valid
	}
	return cfg
}

// BusyInterval is an externally reported occupied time range. Both bounds
// are treated as occupied instants.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Slot is one candidate appointment window for a day.
type Slot struct {
	Start     time.Time
	End       time.Time
	Label     string
	Available bool
}

// Generate produces the ordered candidate slots for the given day,
// independent of any busy data. Starts are strictly increasing from the
// day start hour; generation stops once a slot would start at or past the
// day end hour. A slot that starts inside the window but ends after it is
// still emitted. The clock is never consulted.
func Generate(day time.Time, cfg Config) []Slot {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	windowStart := time.Date(day.Year(), day.Month(), day.Day(), cfg.DayStartHour, 0, 0, 0, loc)
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), cfg.DayEndHour, 0, 0, 0, loc)

	var slots []Slot
	for cursor := windowStart; cursor.Before(windowEnd); cursor = cursor.Add(cfg.SlotDuration) {
		slots = append(slots, Slot{
			Start:     cursor,
			End:       cursor.Add(cfg.SlotDuration),
			Label:     FormatLabel(cursor),
			Available: true,
		})
	}
	return slots
}

// Conflicts reports whether a slot with the given bounds collides with any
// busy interval. Busy bounds are inclusive: a slot whose start or end
// touches a busy boundary is blocked, as is a slot that fully contains a
// busy interval. Back-to-back bookings are therefore over-blocked; kept
// for compatibility with existing calendars.
func Conflicts(slotStart, slotEnd time.Time, busy []BusyInterval) bool {
	for _, b := range busy {
		if within(slotStart, b) || within(slotEnd, b) {
			return true
		}
		if slotStart.Before(b.Start) && slotEnd.After(b.End) {
			return true
		}
	}
	return false
}

// within reports whether t falls inside [b.Start, b.End], bounds included.
func within(t time.Time, b BusyInterval) bool {
	return !t.Before(b.Start) && !t.After(b.End)
}

// Slots generates the day's candidate slots and tags each against the
// busy intervals. Pure and deterministic for a given input.
func Slots(day time.Time, cfg Config, busy []BusyInterval) []Slot {
	slots := Generate(day, cfg)
	for i := range slots {
		slots[i].Available = !Conflicts(slots[i].Start, slots[i].End, busy)
	}
	return slots
}
