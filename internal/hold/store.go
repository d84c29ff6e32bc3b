package hold

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// ErrSlotHeld is returned when another confirmation already holds the slot.
var ErrSlotHeld = errors.New("hold: slot is held by another booking in progress")

// DefaultTTL bounds how long a confirmation may keep a slot exclusive.
// Holds expire on their own, so a crashed confirmation never blocks a
// slot permanently.
const DefaultTTL = 5 * time.Minute

// Store grants short-lived exclusive holds on {calendar, date, label}
// while a booking confirmation is in flight. The availability engine
// stays pure; this is the only stateful piece of the booking path.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewStore builds a hold store over a redis client.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if client == nil {
		panic("hold: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		redis:  client,
		ttl:    ttl,
		tracer: otel.Tracer("agenda.internal.hold"),
	}
}

// Acquire takes the hold for the given slot, failing with ErrSlotHeld if
// someone else has it.
func (s *Store) Acquire(ctx context.Context, calendarID, date, label string) error {
	ctx, span := s.tracer.Start(ctx, "hold.acquire")
	defer span.End()

	ok, err := s.redis.SetNX(ctx, holdKey(calendarID, date, label), "1", s.ttl).Result()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("hold: acquire: %w", err)
	}
	if !ok {
		return ErrSlotHeld
	}
	return nil
}

// Release frees the hold. Releasing a hold that already expired is not an
// error.
func (s *Store) Release(ctx context.Context, calendarID, date, label string) error {
	ctx, span := s.tracer.Start(ctx, "hold.release")
	defer span.End()

	if err := s.redis.Del(ctx, holdKey(calendarID, date, label)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("hold: release: %w", err)
	}
	return nil
}

func holdKey(calendarID, date, label string) string {
	return fmt.Sprintf("hold:%s:%s:%s", calendarID, date, label)
}
