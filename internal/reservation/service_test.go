package reservation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/events"
)

type fakeStore struct {
	reserveRes *Reservation
	reserveErr error

	cancelRestocked bool
	cancelErr       error

	setFrom      Status
	setRestocked bool
	setErr       error

	reserveCalls int
	listCalls    int
}

func (f *fakeStore) Reserve(ctx context.Context, userID, miniatureID string) (*Reservation, error) {
	f.reserveCalls++
	return f.reserveRes, f.reserveErr
}

func (f *fakeStore) Cancel(ctx context.Context, userID, reservationID string) (bool, error) {
	return f.cancelRestocked, f.cancelErr
}

func (f *fakeStore) SetStatus(ctx context.Context, reservationID string, to Status) (Status, bool, error) {
	return f.setFrom, f.setRestocked, f.setErr
}

func (f *fakeStore) ListByUser(ctx context.Context, userID string) ([]OwnReservation, error) {
	f.listCalls++
	return []OwnReservation{{ID: "r-1", Status: StatusReserved}}, nil
}

func (f *fakeStore) ListAll(ctx context.Context) ([]AdminReservation, error) {
	return []AdminReservation{{ID: "r-1"}}, nil
}

type fakePub struct{ messages [][]byte }

func (f *fakePub) Publish(key, value []byte, headers ...kafkago.Header) {
	f.messages = append(f.messages, value)
}

func (f *fakePub) lastEnvelope(t *testing.T) events.Envelope {
	t.Helper()
	require.NotEmpty(t, f.messages)
	var env events.Envelope
	require.NoError(t, json.Unmarshal(f.messages[len(f.messages)-1], &env))
	return env
}

type fakeRefresher struct{ calls int }

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.calls++
	return nil
}

func newTestService(store *fakeStore) (*Service, *fakePub, *fakePub, *fakePub, *fakeRefresher) {
	created, cancelled, status := &fakePub{}, &fakePub{}, &fakePub{}
	ref := &fakeRefresher{}
	svc := NewService(store, ref,
		Publishers{Created: created, Cancelled: cancelled, Status: status},
		zerolog.Nop(), "test")
	return svc, created, cancelled, status, ref
}

func user() auth.Identity  { return auth.NewIdentity("u-1", "joao@example.com", "João", false) }
func admin() auth.Identity { return auth.NewIdentity("a-1", "admin@minicars.com", "Admin", true) }

func TestReserveUnauthenticated(t *testing.T) {
	store := &fakeStore{}
	svc, created, _, _, ref := newTestService(store)

	_, err := svc.Reserve(context.Background(), nil, "m-1")
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.Zero(t, store.reserveCalls, "no write may happen for anonymous callers")
	assert.Empty(t, created.messages)
	assert.Zero(t, ref.calls)
}

func TestReserveOutOfStock(t *testing.T) {
	store := &fakeStore{reserveErr: ErrOutOfStock}
	svc, created, _, _, ref := newTestService(store)

	_, err := svc.Reserve(context.Background(), user(), "m-1")
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Empty(t, created.messages)
	assert.Zero(t, ref.calls)
}

func TestReserveSuccess(t *testing.T) {
	mid := "m-1"
	store := &fakeStore{reserveRes: &Reservation{
		ID: "r-1", UserID: "u-1", MiniatureID: &mid, Status: StatusReserved,
		Snapshot: Snapshot{Name: "Ferrari F40 1987", PriceCents: 29990},
	}}
	svc, created, _, _, ref := newTestService(store)

	res, err := svc.Reserve(context.Background(), user(), mid)
	require.NoError(t, err)
	assert.Equal(t, StatusReserved, res.Status)

	env := created.lastEnvelope(t)
	assert.Equal(t, events.EventReservationCreated, env.EventType)
	assert.Equal(t, "r-1", env.CorrelationID)

	var p events.ReservationCreatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.Equal(t, "u-1", p.UserID)
	assert.Equal(t, "Reserved", p.Status)

	assert.Equal(t, 1, ref.calls, "catalog mirror refreshed after stock change")
}

func TestCancelPublishesRestockFlag(t *testing.T) {
	store := &fakeStore{cancelRestocked: true}
	svc, _, cancelled, _, ref := newTestService(store)

	require.NoError(t, svc.Cancel(context.Background(), user(), "r-1"))

	env := cancelled.lastEnvelope(t)
	var p events.ReservationCancelledPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.True(t, p.Restocked)
	assert.Equal(t, 1, ref.calls)
}

func TestCancelNotFound(t *testing.T) {
	store := &fakeStore{cancelErr: ErrNotFound}
	svc, _, cancelled, _, _ := newTestService(store)

	err := svc.Cancel(context.Background(), user(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, cancelled.messages)
}

func TestSetStatusRequiresAdmin(t *testing.T) {
	svc, _, _, status, _ := newTestService(&fakeStore{})

	err := svc.SetStatus(context.Background(), user(), "r-1", StatusDelivered)
	require.ErrorIs(t, err, ErrForbidden)

	err = svc.SetStatus(context.Background(), nil, "r-1", StatusDelivered)
	require.ErrorIs(t, err, auth.ErrUnauthenticated)
	assert.Empty(t, status.messages)
}

func TestSetStatusRepeatedTerminalIsNoOp(t *testing.T) {
	store := &fakeStore{setFrom: StatusCancelled, setRestocked: false}
	svc, _, _, status, ref := newTestService(store)

	require.NoError(t, svc.SetStatus(context.Background(), admin(), "r-1", StatusCancelled))
	assert.Empty(t, status.messages, "no event for a no-op transition")
	assert.Zero(t, ref.calls, "stock untouched, nothing to refresh")
}

func TestSetStatusDeliveredDoesNotRestock(t *testing.T) {
	store := &fakeStore{setFrom: StatusReserved, setRestocked: false}
	svc, _, _, status, ref := newTestService(store)

	require.NoError(t, svc.SetStatus(context.Background(), admin(), "r-1", StatusDelivered))

	env := status.lastEnvelope(t)
	var p events.ReservationStatusPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.False(t, p.Restocked)
	assert.Zero(t, ref.calls)
}

func TestSetStatusCancelRestocks(t *testing.T) {
	store := &fakeStore{setFrom: StatusReserved, setRestocked: true}
	svc, _, _, status, ref := newTestService(store)

	require.NoError(t, svc.SetStatus(context.Background(), admin(), "r-1", StatusCancelled))

	env := status.lastEnvelope(t)
	var p events.ReservationStatusPayload
	require.NoError(t, json.Unmarshal(env.Payload, &p))
	assert.True(t, p.Restocked)
	assert.Equal(t, 1, ref.calls)
}

func TestListOwnSkipsAdminsAndAnonymous(t *testing.T) {
	store := &fakeStore{}
	svc, _, _, _, _ := newTestService(store)

	list, err := svc.ListOwn(context.Background(), admin())
	require.NoError(t, err)
	assert.Empty(t, list)

	list, err = svc.ListOwn(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, store.listCalls)

	list, err = svc.ListOwn(context.Background(), user())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestListAllAdminOnly(t *testing.T) {
	svc, _, _, _, _ := newTestService(&fakeStore{})

	_, err := svc.ListAll(context.Background(), user())
	require.ErrorIs(t, err, ErrForbidden)

	list, err := svc.ListAll(context.Background(), admin())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
