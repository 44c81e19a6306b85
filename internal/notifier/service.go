// Package notifier consumes reservation lifecycle events and keeps the
// Redis reservation-status cache warm. It is derived state only; nothing
// here is load-bearing for correctness.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/minicars/reserve/internal/events"
	kafkax "github.com/minicars/reserve/internal/kafka"
	"github.com/minicars/reserve/internal/redisx"
)

// Cache is the slice of Redis this service needs.
type Cache interface {
	Exists(ctx context.Context, key string) (bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Service struct {
	Cache       Cache
	Log         zerolog.Logger
	ServiceName string
}

// HandleEvent is installed as the consumer handler for all reservation topics.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := kafkax.UnmarshalEnvelope(m.Value, &env); err != nil {
		return err
	}

	// Dedup on event_id; redelivered events are acked without effect.
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if seen, _ := s.Cache.Exists(ctx, dkey); seen {
		return nil
	}
	_ = s.Cache.Set(ctx, dkey, "1", redisx.TTLDedup)

	switch env.EventType {
	case events.EventReservationCreated:
		p, err := kafkax.UnwrapPayload[events.ReservationCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.ReservationID, p.Status)

	case events.EventReservationStatusChanged:
		p, err := kafkax.UnwrapPayload[events.ReservationStatusPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.ReservationID, p.To)

	case events.EventReservationCancelled:
		p, err := kafkax.UnwrapPayload[events.ReservationCancelledPayload](env.Payload)
		if err != nil {
			return err
		}
		key := fmt.Sprintf(redisx.KeyReservationStatus, p.ReservationID)
		if err := s.Cache.Del(ctx, key); err != nil {
			return err
		}
		s.Log.Info().Str("reservation_id", p.ReservationID).Msg("status cache dropped")
		return nil

	default:
		return nil // unknown event types are acked, not retried
	}
}

func (s *Service) setStatus(ctx context.Context, reservationID, status string) error {
	key := fmt.Sprintf(redisx.KeyReservationStatus, reservationID)
	if err := s.Cache.Set(ctx, key, status, redisx.TTLStatusCache); err != nil {
		return err
	}
	s.Log.Info().Str("reservation_id", reservationID).Str("status", status).Msg("status cache updated")
	return nil
}
