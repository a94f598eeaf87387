package producers

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines data access for commercial profiles. There is no
// HTTP surface here; the profile endpoint projects the caller's profiles.
type Repository interface {
	ListByUser(ctx context.Context, userID int64) ([]CommercialProfile, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const profileColumns = `id, user_id, company_name, username,
	COALESCE(category, ''), COALESCE(instagram, ''), COALESCE(phone, ''),
	COALESCE(company, ''), COALESCE(description, ''), COALESCE(tax_id, ''),
	COALESCE(photo_url, ''), created_at, updated_at`

// ListByUser returns every commercial profile owned by the user.
func (r *PGRepository) ListByUser(ctx context.Context, userID int64) ([]CommercialProfile, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+profileColumns+` FROM commercial_profiles WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []CommercialProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (CommercialProfile, error) {
	var p CommercialProfile
	err := row.Scan(&p.ID, &p.UserID, &p.CompanyName, &p.Username,
		&p.Category, &p.Instagram, &p.Phone,
		&p.Company, &p.Description, &p.TaxID,
		&p.PhotoURL, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
