package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fauves/fauves-server/internal/platform/httpx"
	"github.com/fauves/fauves-server/internal/rbac"
)

// Repository defines data access for events and permission grants.
type Repository interface {
	FindEvent(ctx context.Context, id int64) (Event, error)
	EventExists(ctx context.Context, id int64) (bool, error)
	FindGrant(ctx context.Context, eventID, userID int64) (rbac.Role, bool, error)
	UpsertGrant(ctx context.Context, eventID, userID int64, role rbac.Role) error
	ListTeam(ctx context.Context, eventID int64) ([]TeamMember, error)
	FindUserIDByEmail(ctx context.Context, email string) (int64, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindEvent loads an event by id.
func (r *PGRepository) FindEvent(ctx context.Context, id int64) (Event, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, starts_at, ends_at, COALESCE(category, ''), COALESCE(location, ''),
		       COALESCE(contact_email, ''), COALESCE(cover_url, ''), user_id,
		       COALESCE(profile_id, 0), created_at, updated_at
		FROM events WHERE id = $1`, id)
	var e Event
	err := row.Scan(&e.ID, &e.Name, &e.StartsAt, &e.EndsAt, &e.Category, &e.Location,
		&e.ContactEmail, &e.CoverURL, &e.UserID, &e.ProfileID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Event{}, fmt.Errorf("%w: evento não encontrado", httpx.ErrNotFound)
		}
		return Event{}, err
	}
	return e, nil
}

// EventExists reports whether the event id is known.
func (r *PGRepository) EventExists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// FindGrant returns the role granted to the user on the event, if any.
func (r *PGRepository) FindGrant(ctx context.Context, eventID, userID int64) (rbac.Role, bool, error) {
	var role string
	err := r.pool.QueryRow(ctx, `
		SELECT role FROM event_permissions WHERE event_id = $1 AND user_id = $2`,
		eventID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return rbac.Role(role), true, nil
}

// UpsertGrant inserts or updates the single grant row for (event, user).
// Zero rows back means the grant already carries this exact role.
func (r *PGRepository) UpsertGrant(ctx context.Context, eventID, userID int64, role rbac.Role) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO event_permissions (event_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (event_id, user_id) DO UPDATE
		SET role = EXCLUDED.role, updated_at = now()
		WHERE event_permissions.role IS DISTINCT FROM EXCLUDED.role`,
		eventID, userID, string(role))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: usuário já possui este cargo", httpx.ErrValidation)
	}
	return nil
}

// ListTeam returns every user holding a grant on the event.
func (r *PGRepository) ListTeam(ctx context.Context, eventID int64) ([]TeamMember, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, p.role
		FROM event_permissions p
		JOIN users u ON u.id = p.user_id
		WHERE p.event_id = $1
		ORDER BY u.name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var team []TeamMember
	for rows.Next() {
		var (
			m    TeamMember
			role string
		)
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &role); err != nil {
			return nil, err
		}
		m.Role = rbac.Role(role)
		team = append(team, m)
	}
	return team, rows.Err()
}

// FindUserIDByEmail resolves a user id for grant management.
func (r *PGRepository) FindUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
	}
	return id, err
}
