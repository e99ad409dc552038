package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/model"
)

// CatalogStore lists the public directory of businesses and services.
type CatalogStore interface {
	ListBusinesses(ctx context.Context) ([]model.Business, error)
	ListServices(ctx context.Context) ([]model.Service, error)
}

type CatalogHandler struct {
	store  CatalogStore
	logger *slog.Logger
}

func NewCatalogHandler(store CatalogStore, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{store: store, logger: logger}
}

type businessItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type serviceItem struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Businesses handles GET /api/businesses.
func (h *CatalogHandler) Businesses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	businesses, err := h.store.ListBusinesses(r.Context())
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.Persistence, "failed to list businesses", err))
		return
	}

	out := make([]businessItem, 0, len(businesses))
	for _, b := range businesses {
		out = append(out, businessItem{ID: b.ID, Name: b.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

// Services handles GET /api/services.
func (h *CatalogHandler) Services(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	services, err := h.store.ListServices(r.Context())
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.Persistence, "failed to list services", err))
		return
	}

	out := make([]serviceItem, 0, len(services))
	for _, s := range services {
		out = append(out, serviceItem{ID: s.ID, Name: s.Name, Price: s.Price})
	}
	writeJSON(w, http.StatusOK, out)
}
