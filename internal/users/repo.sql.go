package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Repository defines data access for account profiles.
type Repository interface {
	FindProfile(ctx context.Context, id int64) (Profile, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (Profile, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const profileColumns = `id, name, email, role, COALESCE(phone, ''), COALESCE(cpf, ''), birth_date,
	COALESCE(postal_code, ''), COALESCE(street, ''), COALESCE(district, ''), COALESCE(city, ''),
	COALESCE(state, ''), COALESCE(number, ''), created_at, updated_at`

// FindProfile loads a profile by user id.
func (r *PGRepository) FindProfile(ctx context.Context, id int64) (Profile, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM users WHERE id = $1`, id)
	return scanProfile(row)
}

// UpdateProfile applies the profile changes and returns the new state.
func (r *PGRepository) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (Profile, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET
			name = $2, email = $3, phone = NULLIF($4, ''), cpf = NULLIF($5, ''),
			birth_date = $6, postal_code = NULLIF($7, ''), street = NULLIF($8, ''),
			district = NULLIF($9, ''), city = NULLIF($10, ''), state = NULLIF($11, ''),
			number = NULLIF($12, ''), updated_at = now()
		WHERE id = $1
		RETURNING `+profileColumns,
		id, update.Name, update.Email, update.Phone, update.CPF, update.BirthDate,
		update.PostalCode, update.Street, update.District, update.City, update.State, update.Number)
	profile, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Profile{}, fmt.Errorf("%w: e-mail já está em uso", httpx.ErrValidation)
		}
		return Profile{}, err
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p    Profile
		role string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Email, &role, &p.Phone, &p.CPF, &p.BirthDate,
		&p.PostalCode, &p.Street, &p.District, &p.City, &p.State, &p.Number,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
		}
		return Profile{}, err
	}
	p.Role = rbac.Role(role)
	return p, nil
}
