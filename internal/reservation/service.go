package reservation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/events"
	kafkax "github.com/minicars/reserve/internal/kafka"
)

type Store interface {
	Reserve(ctx context.Context, userID, miniatureID string) (*Reservation, error)
	Cancel(ctx context.Context, userID, reservationID string) (bool, error)
	SetStatus(ctx context.Context, reservationID string, to Status) (Status, bool, error)
	ListByUser(ctx context.Context, userID string) ([]OwnReservation, error)
	ListAll(ctx context.Context) ([]AdminReservation, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Publishers groups the per-topic producers for reservation lifecycle events.
type Publishers struct {
	Created   Publisher
	Cancelled Publisher
	Status    Publisher
}

// CatalogRefresher lets the service refresh the catalog mirror after a
// mutation changed stock. Failures are logged, never surfaced: the mirror
// just stays stale until the next reload.
type CatalogRefresher interface {
	Refresh(ctx context.Context) error
}

type Service struct {
	store       Store
	catalog     CatalogRefresher
	pub         Publishers
	log         zerolog.Logger
	serviceName string
}

func NewService(store Store, catalog CatalogRefresher, pub Publishers, log zerolog.Logger, serviceName string) *Service {
	return &Service{store: store, catalog: catalog, pub: pub, log: log, serviceName: serviceName}
}

func (s *Service) Reserve(ctx context.Context, id auth.Identity, miniatureID string) (*Reservation, error) {
	if id == nil {
		return nil, auth.ErrUnauthenticated
	}
	res, err := s.store.Reserve(ctx, id.ID(), miniatureID)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("reservation_id", res.ID).Str("miniature_id", miniatureID).Msg("reserved")

	s.publish(s.pub.Created, events.EventReservationCreated, res.ID,
		events.ReservationCreatedPayload{
			ReservationID: res.ID,
			UserID:        res.UserID,
			MiniatureID:   miniatureID,
			Status:        string(res.Status),
		})
	s.refreshCatalog(ctx)
	return res, nil
}

func (s *Service) Cancel(ctx context.Context, id auth.Identity, reservationID string) error {
	if id == nil {
		return auth.ErrUnauthenticated
	}
	restocked, err := s.store.Cancel(ctx, id.ID(), reservationID)
	if err != nil {
		return err
	}
	s.log.Info().Str("reservation_id", reservationID).Bool("restocked", restocked).Msg("cancelled")

	s.publish(s.pub.Cancelled, events.EventReservationCancelled, reservationID,
		events.ReservationCancelledPayload{
			ReservationID: reservationID,
			UserID:        id.ID(),
			Restocked:     restocked,
		})
	s.refreshCatalog(ctx)
	return nil
}

// SetStatus is the privileged transition path. A transition into the
// reservation's current status is a silent no-op (no write, no event).
func (s *Service) SetStatus(ctx context.Context, id auth.Identity, reservationID string, to Status) error {
	if id == nil {
		return auth.ErrUnauthenticated
	}
	if !id.IsAdmin() {
		return ErrForbidden
	}
	from, restocked, err := s.store.SetStatus(ctx, reservationID, to)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	s.log.Info().Str("reservation_id", reservationID).
		Str("from", string(from)).Str("to", string(to)).Bool("restocked", restocked).
		Msg("status changed")

	s.publish(s.pub.Status, events.EventReservationStatusChanged, reservationID,
		events.ReservationStatusPayload{
			ReservationID: reservationID,
			From:          string(from),
			To:            string(to),
			Restocked:     restocked,
		})
	if restocked {
		s.refreshCatalog(ctx)
	}
	return nil
}

// ListOwn returns the caller's reservations, newest first. Admins and
// anonymous callers get an empty list.
func (s *Service) ListOwn(ctx context.Context, id auth.Identity) ([]OwnReservation, error) {
	if id == nil || id.IsAdmin() {
		return nil, nil
	}
	return s.store.ListByUser(ctx, id.ID())
}

func (s *Service) ListAll(ctx context.Context, id auth.Identity) ([]AdminReservation, error) {
	if id == nil {
		return nil, auth.ErrUnauthenticated
	}
	if !id.IsAdmin() {
		return nil, ErrForbidden
	}
	return s.store.ListAll(ctx)
}

func (s *Service) publish(p Publisher, eventType, reservationID string, payload any) {
	if p == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.serviceName,
		CorrelationID: reservationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(events.PartitionKey(reservationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) refreshCatalog(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Refresh(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog refresh after reservation change failed")
	}
}
