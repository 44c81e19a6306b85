package redisx

import "time"

const (
	// Login session: session:{token_id} -> user_id
	KeySession = "session:%s"

	// Reservation status cache: reservation_status:{reservation_id} -> status string
	KeyReservationStatus = "reservation_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
