package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

const appointmentColumns = `
	apptid::text, clientid::text, serviceid::text, business_id::text,
	date::text, time::text, COALESCE(notes, ''), status, COALESCE(cancellation_reason, '')`

func scanAppointment(row interface{ Scan(dest ...any) error }) (model.Appointment, error) {
	var a model.Appointment
	err := row.Scan(
		&a.ApptID,
		&a.ClientID,
		&a.ServiceID,
		&a.BusinessID,
		&a.Date,
		&a.Time,
		&a.Notes,
		&a.Status,
		&a.CancellationReason,
	)
	return a, err
}

func (r *Repository) InsertAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	if a.ApptID == "" {
		a.ApptID = uuid.NewString()
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointment (apptid, clientid, serviceid, business_id, date, time, notes, status)
		VALUES ($1, $2, $3, $4, $5::date, $6::time, NULLIF($7, ''), $8)
		RETURNING `+appointmentColumns,
		a.ApptID, a.ClientID, a.ServiceID, a.BusinessID, a.Date, a.Time, a.Notes, a.Status)
	return scanAppointment(row)
}

func (r *Repository) GetAppointment(ctx context.Context, apptID string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointment
		WHERE apptid = $1
	`, apptID)
	return scanAppointment(row)
}

// UpdateAppointment overwrites only the supplied fields. Date and time are
// always supplied together (both derived from one timestamp) or not at all.
func (r *Repository) UpdateAppointment(ctx context.Context, apptID string, date, timeOfDay, notes *string) (model.Appointment, error) {
	var sets []string
	args := []any{apptID}
	if date != nil {
		args = append(args, *date)
		sets = append(sets, fmt.Sprintf("date = $%d::date", len(args)))
	}
	if timeOfDay != nil {
		args = append(args, *timeOfDay)
		sets = append(sets, fmt.Sprintf("time = $%d::time", len(args)))
	}
	if notes != nil {
		args = append(args, *notes)
		sets = append(sets, fmt.Sprintf("notes = NULLIF($%d, '')", len(args)))
	}
	if len(sets) == 0 {
		return r.GetAppointment(ctx, apptID)
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE appointment
		SET `+strings.Join(sets, ", ")+`
		WHERE apptid = $1
		RETURNING `+appointmentColumns, args...)
	return scanAppointment(row)
}

// CancelAppointment is a soft delete: the row stays, only status and reason
// change.
func (r *Repository) CancelAppointment(ctx context.Context, apptID, reason string) (model.Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointment
		SET status = 'Cancelled',
			cancellation_reason = NULLIF($2, '')
		WHERE apptid = $1
		RETURNING `+appointmentColumns, apptID, reason)
	return scanAppointment(row)
}

// ListAppointmentsForClient returns the client's appointments enriched with
// the service's name/price and the business name. Ordering follows the store.
func (r *Repository) ListAppointmentsForClient(ctx context.Context, clientID string) ([]model.ClientAppointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.apptid::text, a.clientid::text, a.serviceid::text, a.business_id::text,
			a.date::text, a.time::text, COALESCE(a.notes, ''), a.status, COALESCE(a.cancellation_reason, ''),
			s.name, COALESCE(s.price, 0)::float8, b.name
		FROM appointment a
		JOIN service s ON s.serviceid = a.serviceid
		JOIN businesses b ON b.id = a.business_id
		WHERE a.clientid = $1
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []model.ClientAppointment
	for rows.Next() {
		var ca model.ClientAppointment
		if err := rows.Scan(
			&ca.ApptID,
			&ca.ClientID,
			&ca.ServiceID,
			&ca.BusinessID,
			&ca.Date,
			&ca.Time,
			&ca.Notes,
			&ca.Status,
			&ca.CancellationReason,
			&ca.ServiceName,
			&ca.ServicePrice,
			&ca.BusinessName,
		); err != nil {
			return nil, err
		}
		appts = append(appts, ca)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return appts, nil
}
