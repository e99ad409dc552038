package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/bzbookit/bzbookit-backend/internal/model"
)

// IsBusinessOwner reports whether a business row exists with this owner and
// this id. It gates cancellation by business owners.
func (r *Repository) IsBusinessOwner(ctx context.Context, ownerID, businessID string) (bool, error) {
	var owns bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM businesses WHERE owner_id = $1 AND id = $2
		)
	`, ownerID, businessID).Scan(&owns)
	return owns, err
}

// SoleBusinessOwnedBy resolves the unique business owned by a principal.
// Zero and multiple matches both come back as not-found: a dashboard needs
// exactly one business to aggregate over.
func (r *Repository) SoleBusinessOwnedBy(ctx context.Context, ownerID string) (model.Business, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, owner_id::text, name, COALESCE(email, '')
		FROM businesses
		WHERE owner_id = $1
		LIMIT 2
	`, ownerID)
	if err != nil {
		return model.Business{}, err
	}
	defer rows.Close()

	var matches []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(&b.ID, &b.OwnerID, &b.Name, &b.Email); err != nil {
			return model.Business{}, err
		}
		matches = append(matches, b)
	}
	if rows.Err() != nil {
		return model.Business{}, rows.Err()
	}
	if len(matches) != 1 {
		return model.Business{}, pgx.ErrNoRows
	}
	return matches[0], nil
}

func (r *Repository) InsertBusiness(ctx context.Context, ownerID, name, email string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO businesses (owner_id, name, email)
		VALUES ($1, $2, $3)
	`, ownerID, name, email)
	return err
}

func (r *Repository) ListBusinesses(ctx context.Context) ([]model.Business, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name
		FROM businesses
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Business
	for rows.Next() {
		var b model.Business
		if err := rows.Scan(&b.ID, &b.Name); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

func (r *Repository) ListServices(ctx context.Context) ([]model.Service, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT serviceid::text, name, COALESCE(price, 0)::float8
		FROM service
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Service
	for rows.Next() {
		var s model.Service
		if err := rows.Scan(&s.ID, &s.Name, &s.Price); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}
