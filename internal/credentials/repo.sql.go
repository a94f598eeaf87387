package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fauves/fauves-server/internal/platform/db"
	"github.com/fauves/fauves-server/internal/platform/httpx"
)

// Repository defines data access for admission credentials.
type Repository interface {
	// ConfirmPayment consumes the charge identified by txid exactly once and,
	// in the same transaction, persists the credentials minted by mint. When
	// the charge is unknown or already consumed it returns ErrNotFound and
	// nothing is written.
	ConfirmPayment(ctx context.Context, txid string, mint func(ChargeInfo) ([]Credential, error)) ([]Credential, error)
	InsertCredential(ctx context.Context, c Credential) error
	FindCredential(ctx context.Context, id string) (Credential, error)
	ListByUser(ctx context.Context, userID int64) ([]Credential, error)
	// TransferOwnership moves the credential from one owner to another with a
	// single conditional update and reports whether a row changed hands.
	TransferOwnership(ctx context.Context, credentialID string, fromUserID, toUserID int64) (bool, error)
	GateLookup(ctx context.Context, credentialID string, eventID, ticketTypeID int64) (GateCheck, error)
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

// execer is satisfied by both pgx.Tx and *pgxpool.Pool.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const credentialColumns = `id, user_id, ticket_type_id, event_id, COALESCE(txid, ''), barcode, created_at, updated_at`

// ConfirmPayment implements the exactly-once settlement path. The conditional
// update is the linearization point: under concurrent webhook delivery only
// one transaction sees a row, every other caller gets ErrNotFound.
func (r *PGRepository) ConfirmPayment(ctx context.Context, txid string, mint func(ChargeInfo) ([]Credential, error)) ([]Credential, error) {
	var issued []Credential
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var charge ChargeInfo
		err := tx.QueryRow(ctx, `
			UPDATE payment_charges SET consumed_at = now()
			WHERE txid = $1 AND consumed_at IS NULL
			RETURNING txid, event_id, user_id, ticket_type_id, quantity`, txid).
			Scan(&charge.TxID, &charge.EventID, &charge.UserID, &charge.TicketTypeID, &charge.Quantity)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: cobrança não encontrada", httpx.ErrNotFound)
		}
		if err != nil {
			return err
		}

		minted, err := mint(charge)
		if err != nil {
			return err
		}
		for _, c := range minted {
			if err := insertCredential(ctx, tx, c); err != nil {
				return err
			}
		}
		issued = minted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issued, nil
}

// InsertCredential persists a single credential outside the settlement path
// (courtesy issuance).
func (r *PGRepository) InsertCredential(ctx context.Context, c Credential) error {
	return insertCredential(ctx, r.pool, c)
}

func insertCredential(ctx context.Context, ex execer, c Credential) error {
	_, err := ex.Exec(ctx, `
		INSERT INTO credentials (id, user_id, ticket_type_id, event_id, txid, barcode, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, now(), now())`,
		c.ID, c.UserID, c.TicketTypeID, c.EventID, c.TxID, c.Barcode)
	return err
}

// FindCredential loads a credential by id.
func (r *PGRepository) FindCredential(ctx context.Context, id string) (Credential, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
	c, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, fmt.Errorf("%w: credencial não encontrada", httpx.ErrNotFound)
		}
		return Credential{}, err
	}
	return c, nil
}

// ListByUser returns every credential currently owned by the user.
func (r *PGRepository) ListByUser(ctx context.Context, userID int64) ([]Credential, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Credential
	for rows.Next() {
		c, err := scanCredential(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// TransferOwnership performs the single conditional update that moves the
// credential. Either the row still belongs to fromUserID and moves whole, or
// nothing changes.
func (r *PGRepository) TransferOwnership(ctx context.Context, credentialID string, fromUserID, toUserID int64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE credentials SET user_id = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2`,
		credentialID, fromUserID, toUserID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GateLookup resolves the holder and ticket type names for door staff. The
// credential must match the gate's event and ticket type, not just exist.
func (r *PGRepository) GateLookup(ctx context.Context, credentialID string, eventID, ticketTypeID int64) (GateCheck, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT c.id, u.name, t.name, c.event_id
		FROM credentials c
		JOIN users u ON u.id = c.user_id
		JOIN ticket_types t ON t.id = c.ticket_type_id
		WHERE c.id = $1 AND c.event_id = $2 AND c.ticket_type_id = $3`, credentialID, eventID, ticketTypeID)
	var check GateCheck
	err := row.Scan(&check.CredentialID, &check.HolderName, &check.TicketTypeName, &check.EventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return GateCheck{}, fmt.Errorf("%w: credencial não encontrada", httpx.ErrNotFound)
	}
	if err != nil {
		return GateCheck{}, err
	}
	return check, nil
}

// FindUserIDByEmail resolves courtesy and transfer recipients.
func (r *PGRepository) FindUserIDByEmail(ctx context.Context, email string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, email).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: usuário não encontrado", httpx.ErrNotFound)
	}
	return id, err
}

func scanCredential(row pgx.Row) (Credential, error) {
	var c Credential
	err := row.Scan(&c.ID, &c.UserID, &c.TicketTypeID, &c.EventID, &c.TxID, &c.Barcode, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
