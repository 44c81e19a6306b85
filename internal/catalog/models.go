package catalog

import "time"

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Miniature is a collectible model-car listing.
type Miniature struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	Scale      string    `json:"scale"`
	CategoryID *string   `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MiniatureInput carries the writable fields of a miniature. Image may be a
// hosted URL or a base64 data URI; ingestion resolves it either way.
type MiniatureInput struct {
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	PriceCents int     `json:"price_cents"`
	Stock      int     `json:"stock"`
	Scale      string  `json:"scale"`
	CategoryID *string `json:"category_id"`
}
