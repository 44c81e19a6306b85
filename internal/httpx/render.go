package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/blob"
	"github.com/minicars/reserve/internal/catalog"
	"github.com/minicars/reserve/internal/reservation"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. Every failure body
// has the same shape; the client only renders the message.
func writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, auth.ErrUnauthenticated),
		errors.Is(err, auth.ErrInvalidCredentials):
		code = http.StatusUnauthorized
	case errors.Is(err, reservation.ErrForbidden):
		code = http.StatusForbidden
	case errors.Is(err, reservation.ErrNotFound),
		errors.Is(err, catalog.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, reservation.ErrOutOfStock),
		errors.Is(err, reservation.ErrInvalidTransition),
		errors.Is(err, auth.ErrEmailTaken):
		code = http.StatusConflict
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, catalog.ErrInvalidInput):
		code = http.StatusBadRequest
	case errors.Is(err, reservation.ErrStockCheck),
		errors.Is(err, reservation.ErrStockUpdate),
		errors.Is(err, blob.ErrUpload):
		code = http.StatusBadGateway
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
