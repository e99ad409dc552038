package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

type fakeCatalog struct {
	businesses []model.Business
	services   []model.Service
	err        error
}

func (f *fakeCatalog) ListBusinesses(_ context.Context) ([]model.Business, error) {
	return f.businesses, f.err
}

func (f *fakeCatalog) ListServices(_ context.Context) ([]model.Service, error) {
	return f.services, f.err
}

func TestCatalogBusinesses(t *testing.T) {
	f := &fakeCatalog{businesses: []model.Business{
		{ID: "biz-1", OwnerID: "owner-1", Name: "Ada's Salon", Email: "owner@example.com"},
	}}
	h := NewCatalogHandler(f, testLogger())

	rec := httptest.NewRecorder()
	h.Businesses(rec, httptest.NewRequest(http.MethodGet, "/api/businesses", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0]["id"] != "biz-1" || out[0]["name"] != "Ada's Salon" {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
	// Owner and contact details stay out of the public directory.
	if _, leaked := out[0]["email"]; leaked {
		t.Fatalf("email leaked: %s", rec.Body.String())
	}
}

func TestCatalogServices(t *testing.T) {
	f := &fakeCatalog{services: []model.Service{{ID: "svc-1", Name: "Cut", Price: 25}}}
	h := NewCatalogHandler(f, testLogger())

	rec := httptest.NewRecorder()
	h.Services(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out []struct {
		ID    string  `json:"id"`
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(out) != 1 || out[0].ID != "svc-1" || out[0].Price != 25 {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}

func TestCatalogBusinesses_StoreError(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{err: errors.New("relation does not exist")}, testLogger())

	rec := httptest.NewRecorder()
	h.Businesses(rec, httptest.NewRequest(http.MethodGet, "/api/businesses", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCatalogEmptyListsAreArrays(t *testing.T) {
	h := NewCatalogHandler(&fakeCatalog{}, testLogger())

	rec := httptest.NewRecorder()
	h.Services(rec, httptest.NewRequest(http.MethodGet, "/api/services", nil))

	if body := rec.Body.String(); body != "[]\n" {
		t.Fatalf("expected empty array, got %q", body)
	}
}
