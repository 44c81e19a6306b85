package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minicars/reserve/internal/events"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	payload := events.ReservationCreatedPayload{ReservationID: "r-1", UserID: "u-1", Status: "Reserved"}
	env := events.Envelope{
		EventID:   "ev-1",
		EventType: events.EventReservationCreated,
		Payload:   MustMarshal(payload),
	}
	b := MustMarshal(env)

	var got events.Envelope
	require.NoError(t, UnmarshalEnvelope(b, &got))
	assert.Equal(t, events.EventReservationCreated, got.EventType)

	p, err := UnwrapPayload[events.ReservationCreatedPayload](got.Payload)
	require.NoError(t, err)
	assert.Equal(t, "r-1", p.ReservationID)
}

func TestUnwrapPayloadError(t *testing.T) {
	_, err := UnwrapPayload[events.ReservationCreatedPayload](json.RawMessage(`[1,2]`))
	require.Error(t, err)
}
