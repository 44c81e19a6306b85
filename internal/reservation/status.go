package reservation

import "fmt"

type Status string

const (
	StatusReserved  Status = "Reserved"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusReserved:  {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {StatusCancelled: true},
	StatusCancelled: {},
}

// CanTransition reports whether from -> to is a legal move. Repeating the
// current status is always allowed and treated as a no-op by callers, so a
// second cancellation can never restock twice.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusReserved, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, s)
}
