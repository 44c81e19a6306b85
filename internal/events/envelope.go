package events

import (
	"encoding/json"
	"time"
)

const (
	EventReservationCreated       = "ReservationCreated"
	EventReservationCancelled     = "ReservationCancelled"
	EventReservationStatusChanged = "ReservationStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g. "reserve-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // reservation_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload types per event ----

type ReservationCreatedPayload struct {
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id"`
	MiniatureID   string `json:"miniature_id"`
	Status        string `json:"status"`
}

type ReservationCancelledPayload struct {
	ReservationID string `json:"reservation_id"`
	UserID        string `json:"user_id"`
	MiniatureID   string `json:"miniature_id,omitempty"`
	Restocked     bool   `json:"restocked"`
}

type ReservationStatusPayload struct {
	ReservationID string `json:"reservation_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	Restocked     bool   `json:"restocked"`
}
