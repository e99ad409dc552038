package outbox

import (
	"context"
	"encoding/json"

	"github.com/bzbookit/bzbookit-backend/internal/model"
	"github.com/bzbookit/bzbookit-backend/libs/db"
)

// Recorder stages appointment lifecycle events for the publisher. Each call
// runs in its own short transaction; the caller treats failures as
// best-effort.
type Recorder struct {
	pool *db.Pool
	repo *Repository
}

func NewRecorder(pool *db.Pool, repo *Repository) *Recorder {
	return &Recorder{pool: pool, repo: repo}
}

func (r *Recorder) AppointmentBooked(ctx context.Context, appt model.Appointment) error {
	return r.record(ctx, EventAppointmentBooked, appt)
}

func (r *Recorder) AppointmentCancelled(ctx context.Context, appt model.Appointment) error {
	return r.record(ctx, EventAppointmentCancelled, appt)
}

func (r *Recorder) record(ctx context.Context, eventType string, appt model.Appointment) error {
	payload, err := json.Marshal(appointmentPayload{
		ApptID:             appt.ApptID,
		ClientID:           appt.ClientID,
		ServiceID:          appt.ServiceID,
		BusinessID:         appt.BusinessID,
		Date:               appt.Date,
		Time:               appt.Time,
		Status:             appt.Status,
		CancellationReason: appt.CancellationReason,
	})
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := r.repo.Insert(ctx, tx, Event{
		AggregateType: "appointment",
		AggregateID:   appt.ApptID,
		EventType:     eventType,
		Payload:       payload,
	}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type appointmentPayload struct {
	ApptID             string `json:"apptid"`
	ClientID           string `json:"clientid"`
	ServiceID          string `json:"serviceid"`
	BusinessID         string `json:"business_id"`
	Date               string `json:"date"`
	Time               string `json:"time"`
	Status             string `json:"status"`
	CancellationReason string `json:"cancellation_reason,omitempty"`
}
