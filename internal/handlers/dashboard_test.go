package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/dashboard"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/model"
)

type fakeDashboardService struct {
	summary dashboard.Summary
	err     error
}

func (f *fakeDashboardService) GetBusinessSummary(_ context.Context, _ identity.Principal) (dashboard.Summary, error) {
	return f.summary, f.err
}

func TestDashboardBusiness(t *testing.T) {
	f := &fakeDashboardService{summary: dashboard.Summary{
		TotalAppointments: 7,
		TotalRevenue:      150.5,
		UpcomingAppointments: []model.UpcomingAppointment{
			{ApptID: "a1", Date: "2024-05-01", Time: "09:00:00", Status: model.StatusConfirmed, ClientName: "Ada", ServiceName: "Cut"},
		},
	}}
	h := NewDashboardHandler(f, testLogger())

	rec := httptest.NewRecorder()
	h.Business(rec, authedRequest(http.MethodGet, "/api/dashboard/business", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out struct {
		TotalAppointments int     `json:"totalAppointments"`
		TotalRevenue      float64 `json:"totalRevenue"`
		Upcoming          []struct {
			ApptID string `json:"apptid"`
			Client struct {
				Name string `json:"name"`
			} `json:"client"`
			Service struct {
				Name string `json:"name"`
			} `json:"service"`
		} `json:"upcomingAppointments"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.TotalAppointments != 7 || out.TotalRevenue != 150.5 {
		t.Fatalf("unexpected totals: %s", rec.Body.String())
	}
	if len(out.Upcoming) != 1 || out.Upcoming[0].Client.Name != "Ada" || out.Upcoming[0].Service.Name != "Cut" {
		t.Fatalf("unexpected upcoming shape: %s", rec.Body.String())
	}
}

func TestDashboardBusiness_EmptyUpcomingIsArray(t *testing.T) {
	f := &fakeDashboardService{summary: dashboard.Summary{UpcomingAppointments: []model.UpcomingAppointment{}}}
	h := NewDashboardHandler(f, testLogger())

	rec := httptest.NewRecorder()
	h.Business(rec, authedRequest(http.MethodGet, "/api/dashboard/business", ""))

	if !strings.Contains(rec.Body.String(), `"upcomingAppointments":[]`) {
		t.Fatalf("upcoming must serialize as [], got: %s", rec.Body.String())
	}
}

func TestDashboardBusiness_Forbidden(t *testing.T) {
	f := &fakeDashboardService{err: apperr.New(apperr.Forbidden, "Forbidden: Access is restricted to business owners.")}
	h := NewDashboardHandler(f, testLogger())

	rec := httptest.NewRecorder()
	h.Business(rec, authedRequest(http.MethodGet, "/api/dashboard/business", ""))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
