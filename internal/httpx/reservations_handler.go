package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/reservation"
)

type ReservationsHandler struct {
	Reservations *reservation.Service
	Auth         *auth.Service
}

type reserveReq struct {
	MiniatureID string `json:"miniature_id"`
}

type setStatusReq struct {
	Status string `json:"status"`
}

func (h *ReservationsHandler) Register(r *chi.Mux) {
	r.Group(func(r chi.Router) {
		r.Use(RequireUser(h.Auth))
		r.Post("/reservations", h.reserve)
		r.Get("/reservations", h.listOwn)
		r.Delete("/reservations/{id}", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.Auth))
		r.Get("/admin/reservations", h.listAll)
		r.Put("/admin/reservations/{id}/status", h.setStatus)
	})
}

func (h *ReservationsHandler) reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.MiniatureID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing miniature_id"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := h.Reservations.Reserve(ctx, identityFrom(r), req.MiniatureID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *ReservationsHandler) listOwn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Reservations.ListOwn(ctx, identityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []reservation.OwnReservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.Cancel(ctx, identityFrom(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationsHandler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	list, err := h.Reservations.ListAll(ctx, identityFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []reservation.AdminReservation{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReservationsHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	status, err := reservation.ParseStatus(req.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Reservations.SetStatus(ctx, identityFrom(r), chi.URLParam(r, "id"), status); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
