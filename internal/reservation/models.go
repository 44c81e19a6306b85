package reservation

import (
	"errors"
	"time"
)

var (
	ErrForbidden         = errors.New("admin access required")
	ErrNotFound          = errors.New("reservation not found")
	ErrOutOfStock        = errors.New("miniature out of stock")
	ErrStockCheck        = errors.New("stock check failed")
	ErrStockUpdate       = errors.New("stock update failed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Snapshot is the denormalized copy of the miniature's display fields taken
// at reserve time, so history survives later edits or deletion.
type Snapshot struct {
	Name       string `json:"name"`
	Image      string `json:"image"`
	PriceCents int    `json:"price_cents"`
}

type Reservation struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	MiniatureID *string   `json:"miniature_id"`
	Status      Status    `json:"status"`
	Snapshot    Snapshot  `json:"snapshot"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// OwnReservation is the customer-facing view: display fields come from the
// snapshot first, the live miniature row only as fallback.
type OwnReservation struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	MiniatureID *string   `json:"miniature_id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	PriceCents  int       `json:"price_cents"`
}

// AdminReservation is the back-office view joined with the owning user.
type AdminReservation struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	MiniatureID   *string   `json:"miniature_id"`
	MiniatureName string    `json:"miniature_name"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}
