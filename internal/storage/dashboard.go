package storage

import (
	"context"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

// CountAppointments is an exact count with no status filter.
func (r *Repository) CountAppointments(ctx context.Context, businessID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointment WHERE business_id = $1
	`, businessID).Scan(&count)
	return count, err
}

// CompletedRevenue sums the service price over Completed appointments.
// Missing services and null prices contribute zero.
func (r *Repository) CompletedRevenue(ctx context.Context, businessID string) (float64, error) {
	var revenue float64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.price), 0)::float8
		FROM appointment a
		LEFT JOIN service s ON s.serviceid = a.serviceid
		WHERE a.business_id = $1 AND a.status = 'Completed'
	`, businessID).Scan(&revenue)
	return revenue, err
}

// UpcomingAppointments returns at most limit Confirmed appointments ordered
// soonest-first, enriched with client and service display names.
func (r *Repository) UpcomingAppointments(ctx context.Context, businessID string, limit int) ([]model.UpcomingAppointment, error) {
	if limit <= 0 {
		limit = 5
	}
	rows, err := r.pool.Query(ctx, `
		SELECT a.apptid::text, a.date::text, a.time::text, a.status,
			COALESCE(c.name, ''), COALESCE(s.name, '')
		FROM appointment a
		LEFT JOIN client c ON c.clientid = a.clientid
		LEFT JOIN service s ON s.serviceid = a.serviceid
		WHERE a.business_id = $1 AND a.status = 'Confirmed'
		ORDER BY a.date ASC, a.time ASC
		LIMIT $2
	`, businessID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.UpcomingAppointment
	for rows.Next() {
		var u model.UpcomingAppointment
		if err := rows.Scan(&u.ApptID, &u.Date, &u.Time, &u.Status, &u.ClientName, &u.ServiceName); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
