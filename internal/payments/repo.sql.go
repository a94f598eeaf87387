package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// Repository defines data access for payment charges.
type Repository interface {
	CreateCharge(ctx context.Context, charge Charge) error
	FindCharge(ctx context.Context, txid string) (Charge, error)
	FindPayer(ctx context.Context, userID int64) (Payer, error)
	// DeleteStale discards consumed charges older than consumedBefore and
	// never-consumed charges older than pendingBefore (abandoned carts).
	DeleteStale(ctx context.Context, consumedBefore, pendingBefore time.Time) (int64, error)
}

// PGRepository provides PostgreSQL backed persistence.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// CreateCharge persists the correlation record for a freshly opened charge.
func (r *PGRepository) CreateCharge(ctx context.Context, charge Charge) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_charges (txid, event_id, user_id, ticket_type_id, quantity, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		charge.TxID, charge.EventID, charge.UserID, charge.TicketTypeID, charge.Quantity, charge.Amount)
	return err
}

// FindCharge loads a charge by transaction id.
func (r *PGRepository) FindCharge(ctx context.Context, txid string) (Charge, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT txid, event_id, user_id, ticket_type_id, quantity, amount, created_at, consumed_at
		FROM payment_charges WHERE txid = $1`, txid)
	var c Charge
	err := row.Scan(&c.TxID, &c.EventID, &c.UserID, &c.TicketTypeID, &c.Quantity, &c.Amount, &c.CreatedAt, &c.ConsumedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Charge{}, fmt.Errorf("%w: cobrança não encontrada", httpx.ErrNotFound)
	}
	if err != nil {
		return Charge{}, err
	}
	return c, nil
}

// FindPayer returns the buyer identification used by the gateway.
func (r *PGRepository) FindPayer(ctx context.Context, userID int64) (Payer, error) {
	row := r.pool.QueryRow(ctx, `SELECT name, COALESCE(cpf, '') FROM users WHERE id = $1`, userID)
	var p Payer
	err := row.Scan(&p.Name, &p.TaxID)
	if errors.Is(err, pgx.ErrNoRows) {
		return Payer{}, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
	}
	return p, err
}

// DeleteStale removes settled and abandoned charges past their windows.
func (r *PGRepository) DeleteStale(ctx context.Context, consumedBefore, pendingBefore time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM payment_charges
		WHERE (consumed_at IS NOT NULL AND consumed_at < $1)
		   OR (consumed_at IS NULL AND created_at < $2)`,
		consumedBefore, pendingBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
