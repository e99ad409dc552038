package storage

import (
	"context"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

// UpsertClientProfile inserts the client row if absent. A conflicting
// clientid is a no-op, which makes the just-in-time provisioning step safe
// to retry.
func (r *Repository) UpsertClientProfile(ctx context.Context, p model.ClientProfile) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO client (clientid, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (clientid) DO NOTHING
	`, p.ClientID, p.Email, p.Name)
	return err
}
