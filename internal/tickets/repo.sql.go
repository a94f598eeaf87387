package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// Repository defines data access for ticket types.
type Repository interface {
	CreateTicketType(ctx context.Context, tt TicketType) (TicketType, error)
	FindTicketType(ctx context.Context, id int64) (TicketType, error)
	ListByEvent(ctx context.Context, eventID int64) ([]TicketType, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const ticketColumns = `id, event_id, name, price, total_quantity,
	COALESCE(batch_label, ''), COALESCE(admission_type, ''), COALESCE(per_person_limit, 0),
	sale_starts_at, sale_ends_at, COALESCE(description, ''), created_by, created_at, updated_at`

// CreateTicketType persists a new ticket type and returns it with ids set.
func (r *PGRepository) CreateTicketType(ctx context.Context, tt TicketType) (TicketType, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO ticket_types
			(event_id, name, price, total_quantity, batch_label, admission_type,
			 per_person_limit, sale_starts_at, sale_ends_at, description, created_by,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		RETURNING `+ticketColumns,
		tt.EventID, tt.Name, tt.Price, tt.TotalQuantity, tt.BatchLabel, tt.AdmissionType,
		tt.PerPersonLimit, tt.SaleStartsAt, tt.SaleEndsAt, tt.Description, tt.CreatedBy)
	return scanTicketType(row)
}

// FindTicketType loads a ticket type by id.
func (r *PGRepository) FindTicketType(ctx context.Context, id int64) (TicketType, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM ticket_types WHERE id = $1`, id)
	tt, err := scanTicketType(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TicketType{}, fmt.Errorf("%w: ingresso não encontrado", httpx.ErrNotFound)
		}
		return TicketType{}, err
	}
	return tt, nil
}

// ListByEvent returns the ticket types of an event.
func (r *PGRepository) ListByEvent(ctx context.Context, eventID int64) ([]TicketType, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM ticket_types WHERE event_id = $1 ORDER BY id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []TicketType
	for rows.Next() {
		tt, err := scanTicketType(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, tt)
	}
	return list, rows.Err()
}

func scanTicketType(row pgx.Row) (TicketType, error) {
	var tt TicketType
	err := row.Scan(&tt.ID, &tt.EventID, &tt.Name, &tt.Price, &tt.TotalQuantity,
		&tt.BatchLabel, &tt.AdmissionType, &tt.PerPersonLimit,
		&tt.SaleStartsAt, &tt.SaleEndsAt, &tt.Description, &tt.CreatedBy,
		&tt.CreatedAt, &tt.UpdatedAt)
	return tt, err
}
