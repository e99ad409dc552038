package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/dashboard"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
)

type DashboardService interface {
	GetBusinessSummary(ctx context.Context, principal identity.Principal) (dashboard.Summary, error)
}

type DashboardHandler struct {
	svc    DashboardService
	logger *slog.Logger
}

func NewDashboardHandler(svc DashboardService, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger}
}

type upcomingAppointmentResponse struct {
	ApptID  string  `json:"apptid"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Status  string  `json:"status"`
	Client  nameRef `json:"client"`
	Service nameRef `json:"service"`
}

type businessSummaryResponse struct {
	TotalAppointments    int                           `json:"totalAppointments"`
	TotalRevenue         float64                       `json:"totalRevenue"`
	UpcomingAppointments []upcomingAppointmentResponse `json:"upcomingAppointments"`
}

// Business handles GET /api/dashboard/business.
func (h *DashboardHandler) Business(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperr.New(apperr.Unauthorized, "Not authorized, no token"))
		return
	}

	summary, err := h.svc.GetBusinessSummary(r.Context(), principal)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	upcoming := make([]upcomingAppointmentResponse, 0, len(summary.UpcomingAppointments))
	for _, u := range summary.UpcomingAppointments {
		upcoming = append(upcoming, upcomingAppointmentResponse{
			ApptID:  u.ApptID,
			Date:    u.Date,
			Time:    u.Time,
			Status:  u.Status,
			Client:  nameRef{Name: u.ClientName},
			Service: nameRef{Name: u.ServiceName},
		})
	}
	writeJSON(w, http.StatusOK, businessSummaryResponse{
		TotalAppointments:    summary.TotalAppointments,
		TotalRevenue:         summary.TotalRevenue,
		UpcomingAppointments: upcoming,
	})
}
