package storage

import (
	"context"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

func (r *Repository) ListNotificationsForClient(ctx context.Context, clientID string) ([]model.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, clientid::text, message, created_at::text, read
		FROM notifications
		WHERE clientid = $1
		ORDER BY created_at DESC
	`, clientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.ClientID, &n.Message, &n.CreatedAt, &n.Read); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
