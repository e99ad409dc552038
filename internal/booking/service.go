// Package booking holds the appointment lifecycle rules: who may create,
// read, modify, or cancel an appointment, and the just-in-time client
// profile provisioning that precedes every insert.
package booking

import (
	"context"
	"log/slog"
	"time"

	"github.com/bzbookit/bzbookit-backend/internal/apperr"
	"github.com/bzbookit/bzbookit-backend/internal/identity"
	"github.com/bzbookit/bzbookit-backend/internal/model"
	"github.com/bzbookit/bzbookit-backend/internal/storage"
)

type ProfileStore interface {
	UpsertClientProfile(ctx context.Context, p model.ClientProfile) error
}

type AppointmentStore interface {
	InsertAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error)
	GetAppointment(ctx context.Context, apptID string) (model.Appointment, error)
	UpdateAppointment(ctx context.Context, apptID string, date, timeOfDay, notes *string) (model.Appointment, error)
	CancelAppointment(ctx context.Context, apptID, reason string) (model.Appointment, error)
	ListAppointmentsForClient(ctx context.Context, clientID string) ([]model.ClientAppointment, error)
}

type OwnershipStore interface {
	IsBusinessOwner(ctx context.Context, ownerID, businessID string) (bool, error)
}

// EventRecorder receives lifecycle events for downstream consumers. Recording
// is best-effort; a failure never fails the operation that produced it.
type EventRecorder interface {
	AppointmentBooked(ctx context.Context, a model.Appointment) error
	AppointmentCancelled(ctx context.Context, a model.Appointment) error
}

type Service struct {
	profiles  ProfileStore
	appts     AppointmentStore
	ownership OwnershipStore
	events    EventRecorder
	logger    *slog.Logger
}

func NewService(profiles ProfileStore, appts AppointmentStore, ownership OwnershipStore, events EventRecorder, logger *slog.Logger) *Service {
	return &Service{
		profiles:  profiles,
		appts:     appts,
		ownership: ownership,
		events:    events,
		logger:    logger,
	}
}

type CreateInput struct {
	ServiceID       string
	BusinessID      string
	AppointmentDate string // RFC 3339 timestamp; date and time are derived from it together
	Notes           string
}

// fallbackClientName is used when the provider holds no display name.
const fallbackClientName = "New User"

// Create books an appointment for the principal. The client profile is
// provisioned first so the appointment's clientid always references an
// existing row; the two writes are sequential and non-transactional, and
// both are safe to retry.
func (s *Service) Create(ctx context.Context, principal identity.Principal, in CreateInput) (model.Appointment, error) {
	if in.ServiceID == "" || in.BusinessID == "" || in.AppointmentDate == "" {
		return model.Appointment{}, apperr.New(apperr.Validation, "Missing required appointment details (service, owner, date).")
	}

	date, timeOfDay, err := splitTimestamp(in.AppointmentDate)
	if err != nil {
		return model.Appointment{}, apperr.New(apperr.Validation, "appointmentDate must be a valid timestamp")
	}

	name := principal.Name
	if name == "" {
		name = fallbackClientName
	}
	if err := s.profiles.UpsertClientProfile(ctx, model.ClientProfile{
		ClientID: principal.ID,
		Email:    principal.Email,
		Name:     name,
	}); err != nil {
		return model.Appointment{}, apperr.Wrap(apperr.Internal, "failed to ensure client profile exists before booking", err)
	}

	appt, err := s.appts.InsertAppointment(ctx, model.Appointment{
		ClientID:   principal.ID,
		ServiceID:  in.ServiceID,
		BusinessID: in.BusinessID,
		Date:       date,
		Time:       timeOfDay,
		Notes:      in.Notes,
		Status:     model.StatusConfirmed,
	})
	if err != nil {
		return model.Appointment{}, apperr.Wrap(apperr.Persistence, "failed to create appointment", err)
	}

	if s.events != nil {
		if err := s.events.AppointmentBooked(ctx, appt); err != nil {
			s.logger.Warn("failed to record booked event", "apptid", appt.ApptID, "err", err)
		}
	}
	return appt, nil
}

// ListForUser returns the principal's own appointments, enriched with the
// service and business display fields.
func (s *Service) ListForUser(ctx context.Context, principal identity.Principal) ([]model.ClientAppointment, error) {
	appts, err := s.appts.ListAppointmentsForClient(ctx, principal.ID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Persistence, "failed to list appointments", err)
	}
	return appts, nil
}

type UpdateInput struct {
	AppointmentDate *string
	Notes           *string
}

// Update reschedules and/or annotates an appointment. Only the booking
// client may update; status is never touched here.
func (s *Service) Update(ctx context.Context, principal identity.Principal, apptID string, in UpdateInput) (model.Appointment, error) {
	if in.AppointmentDate == nil && in.Notes == nil {
		return model.Appointment{}, apperr.New(apperr.Validation, "No fields to update provided.")
	}

	existing, err := s.appts.GetAppointment(ctx, apptID)
	if err != nil {
		return model.Appointment{}, notFoundOrPersistence(err, "Appointment not found.")
	}
	if existing.ClientID != principal.ID {
		return model.Appointment{}, apperr.New(apperr.Forbidden, "You are not authorized to update this appointment.")
	}

	var date, timeOfDay *string
	if in.AppointmentDate != nil {
		d, t, err := splitTimestamp(*in.AppointmentDate)
		if err != nil {
			return model.Appointment{}, apperr.New(apperr.Validation, "appointmentDate must be a valid timestamp")
		}
		date, timeOfDay = &d, &t
	}

	updated, err := s.appts.UpdateAppointment(ctx, apptID, date, timeOfDay, in.Notes)
	if err != nil {
		return model.Appointment{}, apperr.Wrap(apperr.Persistence, "failed to update appointment", err)
	}
	return updated, nil
}

// Cancel soft-deletes an appointment. Authorized callers are the booking
// client and the owner of the appointment's business; both are checked
// before anything is written. Re-cancelling a cancelled appointment is a
// no-op; a completed appointment cannot be cancelled.
func (s *Service) Cancel(ctx context.Context, principal identity.Principal, apptID, reason string) (model.Appointment, error) {
	existing, err := s.appts.GetAppointment(ctx, apptID)
	if err != nil {
		return model.Appointment{}, notFoundOrPersistence(err, "Appointment not found.")
	}

	authorized := existing.ClientID == principal.ID
	if !authorized && principal.Role == identity.RoleBusinessOwner {
		owns, err := s.ownership.IsBusinessOwner(ctx, principal.ID, existing.BusinessID)
		if err != nil {
			return model.Appointment{}, apperr.Wrap(apperr.Internal, "failed to check business ownership", err)
		}
		authorized = owns
	}
	if !authorized {
		return model.Appointment{}, apperr.New(apperr.Forbidden, "You are not authorized to cancel this appointment.")
	}

	switch existing.Status {
	case model.StatusCancelled:
		return existing, nil
	case model.StatusCompleted:
		return model.Appointment{}, apperr.New(apperr.Conflict, "a completed appointment cannot be cancelled")
	}

	cancelled, err := s.appts.CancelAppointment(ctx, apptID, reason)
	if err != nil {
		return model.Appointment{}, apperr.Wrap(apperr.Persistence, "failed to cancel appointment", err)
	}

	if s.events != nil {
		if err := s.events.AppointmentCancelled(ctx, cancelled); err != nil {
			s.logger.Warn("failed to record cancelled event", "apptid", cancelled.ApptID, "err", err)
		}
	}
	return cancelled, nil
}

// splitTimestamp normalizes one submitted timestamp into its calendar date
// and time-of-day components, both in UTC. They are never derived apart.
func splitTimestamp(raw string) (date string, timeOfDay string, err error) {
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", "", err
	}
	utc := ts.UTC()
	return utc.Format("2006-01-02"), utc.Format("15:04:05"), nil
}

func notFoundOrPersistence(err error, message string) error {
	if storage.IsNotFound(err) {
		return apperr.New(apperr.NotFound, message)
	}
	return apperr.Wrap(apperr.Persistence, "failed to load appointment", err)
}
