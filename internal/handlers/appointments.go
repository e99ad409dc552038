package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/booking"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/model"
)

type BookingService interface {
	Create(ctx context.Context, principal identity.Principal, in booking.CreateInput) (model.Appointment, error)
	ListForUser(ctx context.Context, principal identity.Principal) ([]model.ClientAppointment, error)
	Update(ctx context.Context, principal identity.Principal, apptID string, in booking.UpdateInput) (model.Appointment, error)
	Cancel(ctx context.Context, principal identity.Principal, apptID, reason string) (model.Appointment, error)
}

type AppointmentHandler struct {
	svc    BookingService
	logger *slog.Logger
}

func NewAppointmentHandler(svc BookingService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{svc: svc, logger: logger}
}

type createAppointmentRequest struct {
	ServiceID       string `json:"serviceId"`
	BusinessID      string `json:"businessId"`
	AppointmentDate string `json:"appointmentDate"`
	Notes           string `json:"notes"`
}

type updateAppointmentRequest struct {
	AppointmentDate string `json:"appointmentDate"`
	Notes           string `json:"notes"`
}

type cancelAppointmentRequest struct {
	CancellationReason string `json:"cancellationReason"`
}

type appointmentResponse struct {
	ApptID             string `json:"apptid"`
	ClientID           string `json:"clientid"`
	ServiceID          string `json:"serviceid"`
	BusinessID         string `json:"business_id"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	Notes              string `json:"notes"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason"`
}

func toAppointmentResponse(a model.Appointment) appointmentResponse {
	return appointmentResponse{
		ApptID:             a.ApptID,
		ClientID:           a.ClientID,
		ServiceID:          a.ServiceID,
		BusinessID:         a.BusinessID,
		Date:               a.Date,
		Time:               a.Time,
		Notes:              a.Notes,
		Status:             a.Status,
		CancellationReason: a.CancellationReason,
	}
}

type nameRef struct {
	Name string `json:"name"`
}

type serviceRef struct {
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Businesses nameRef `json:"businesses"`
}

type clientAppointmentResponse struct {
	ApptID  string     `json:"apptid"`
	Date    string     `json:"date"`
	Time    string     `json:"time"`
	Notes   string     `json:"notes"`
	Status  string     `json:"status"`
	Service serviceRef `json:"service"`
}

// Collection handles /api/appointments.
func (h *AppointmentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperr.New(apperr.Unauthorized, "Not authorized, no token"))
		return
	}

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Invalid JSON body."))
		return
	}

	appt, err := h.svc.Create(r.Context(), principal, booking.CreateInput{
		ServiceID:       req.ServiceID,
		BusinessID:      req.BusinessID,
		AppointmentDate: req.AppointmentDate,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

// Mine handles /api/appointments/me.
func (h *AppointmentHandler) Mine(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperr.New(apperr.Unauthorized, "Not authorized, no token"))
		return
	}

	appts, err := h.svc.ListForUser(r.Context(), principal)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := make([]clientAppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, clientAppointmentResponse{
			ApptID: a.ApptID,
			Date:   a.Date,
			Time:   a.Time,
			Notes:  a.Notes,
			Status: a.Status,
			Service: serviceRef{
				Name:       a.ServiceName,
				Price:      a.ServicePrice,
				Businesses: nameRef{Name: a.BusinessName},
			},
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ByID handles /api/appointments/{id} for updates and cancellations.
func (h *AppointmentHandler) ByID(w http.ResponseWriter, r *http.Request) {
	apptID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/appointments/"), "/")
	if apptID == "" || strings.Contains(apptID, "/") {
		writeJSON(w, http.StatusNotFound, messageBody{Message: "Appointment not found."})
		return
	}

	principal, ok := identity.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, apperr.New(apperr.Unauthorized, "Not authorized, no token"))
		return
	}

	switch r.Method {
	case http.MethodPatch:
		h.update(w, r, principal, apptID)
	case http.MethodDelete:
		h.cancel(w, r, principal, apptID)
	default:
		methodNotAllowed(w, "PATCH, DELETE")
	}
}

func (h *AppointmentHandler) update(w http.ResponseWriter, r *http.Request, principal identity.Principal, apptID string) {
	var req updateAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Invalid JSON body."))
		return
	}

	var in booking.UpdateInput
	if req.AppointmentDate != "" {
		in.AppointmentDate = &req.AppointmentDate
	}
	if req.Notes != "" {
		in.Notes = &req.Notes
	}

	appt, err := h.svc.Update(r.Context(), principal, apptID, in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *AppointmentHandler) cancel(w http.ResponseWriter, r *http.Request, principal identity.Principal, apptID string) {
	// The cancel body is optional; a missing or empty body means no reason.
	var req cancelAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, h.logger, apperr.New(apperr.Validation, "Invalid JSON body."))
		return
	}

	appt, err := h.svc.Cancel(r.Context(), principal, apptID, req.CancellationReason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}
