package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/minicars/reserve/internal/auth"
	"github.com/minicars/reserve/internal/catalog"
)

type CatalogHandler struct {
	Catalog *catalog.Service
	Auth    *auth.Service
}

type categoryReq struct {
	Name string `json:"name"`
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/categories", h.listCategories)
	r.Get("/miniatures", h.listMiniatures)

	r.Group(func(r chi.Router) {
		r.Use(RequireAdmin(h.Auth))
		r.Post("/categories", h.addCategory)
		r.Put("/categories/{id}", h.updateCategory)
		r.Delete("/categories/{id}", h.deleteCategory)
		r.Post("/miniatures", h.addMiniature)
		r.Put("/miniatures/{id}", h.updateMiniature)
		r.Delete("/miniatures/{id}", h.deleteMiniature)
	})
}

// Reads serve the in-memory mirror; no remote round trip.
func (h *CatalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Categories())
}

func (h *CatalogHandler) listMiniatures(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Catalog.Miniatures())
}

func (h *CatalogHandler) addCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Catalog.AddCategory(ctx, req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Catalog.Categories())
}

func (h *CatalogHandler) updateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Catalog.UpdateCategory(ctx, chi.URLParam(r, "id"), req.Name); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Catalog.Categories())
}

func (h *CatalogHandler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Catalog.DeleteCategory(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) addMiniature(w http.ResponseWriter, r *http.Request) {
	var in catalog.MiniatureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	// image upload can be slow, give it more room than plain CRUD
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.Catalog.AddMiniature(ctx, in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.Catalog.Miniatures())
}

func (h *CatalogHandler) updateMiniature(w http.ResponseWriter, r *http.Request) {
	var in catalog.MiniatureInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.Catalog.UpdateMiniature(ctx, chi.URLParam(r, "id"), in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.Catalog.Miniatures())
}

func (h *CatalogHandler) deleteMiniature(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Catalog.DeleteMiniature(ctx, chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
