package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/billfold/billfold/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetProfile returns the profile for a user ID.
func (r *Repository) GetProfile(ctx context.Context, id int64) (*Profile, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, email,
		        COALESCE(business_name, ''), COALESCE(business_address, ''), COALESCE(phone, ''),
		        created_at, updated_at
		 FROM users WHERE id = $1`, id)
	var p Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.BusinessName, &p.BusinessAddress, &p.Phone, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpdateProfile overwrites the editable profile columns and returns the
// refreshed profile.
func (r *Repository) UpdateProfile(ctx context.Context, id int64, input UpdateProfileInput) (*Profile, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET
		   name             = COALESCE(NULLIF($2, ''), name),
		   business_name    = COALESCE(NULLIF($3, ''), business_name),
		   business_address = COALESCE(NULLIF($4, ''), business_address),
		   phone            = COALESCE(NULLIF($5, ''), phone),
		   updated_at       = now()
		 WHERE id = $1`,
		id, input.Name, input.BusinessName, input.BusinessAddress, input.Phone)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, shared.ErrNotFound
	}
	return r.GetProfile(ctx, id)
}
