package events

const (
	TopicReservationCreated   = "reservation.created"
	TopicReservationCancelled = "reservation.cancelled"
	TopicReservationStatus    = "reservation.status"
)

// Partition key = reservation_id, so all events for one reservation keep order.
func PartitionKey(reservationID string) []byte { return []byte(reservationID) }
