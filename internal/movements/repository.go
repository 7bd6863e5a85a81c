package movements

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktrail/stocktrail/internal/platform/db"
	"github.com/stocktrail/stocktrail/internal/shared"
)

// ItemState is the slice of an item the movement path needs.
type ItemState struct {
	ID     int64
	Name   string
	Active bool
}

// TxRepository exposes the transactional operations used while recording a
// movement. GetItemForUpdate takes a row lock on the item so the stock check
// and the insert serialize against concurrent movements on the same item.
type TxRepository interface {
	GetItemForUpdate(ctx context.Context, itemID int64) (ItemState, error)
	CurrentQuantity(ctx context.Context, itemID int64) (int64, error)
	InsertMovement(ctx context.Context, m Movement) (int64, error)
}

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetItem(ctx context.Context, itemID int64) (ItemState, error)
	ListForItem(ctx context.Context, itemID int64, limit, offset int) ([]Movement, int, error)
}

// Repository persists movements in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

// GetItem reads an item without locking it, for listing paths that only
// need to know the item exists.
func (r *Repository) GetItem(ctx context.Context, itemID int64) (ItemState, error) {
	var state ItemState
	err := r.pool.QueryRow(ctx, `SELECT inventory_item_id, item_name, is_active FROM inventory_item WHERE inventory_item_id=$1`, itemID).
		Scan(&state.ID, &state.Name, &state.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemState{}, shared.ErrNotFound
		}
		return ItemState{}, err
	}
	return state, nil
}

// ListForItem returns movements for one item ordered by movement date
// descending, newest insert first on ties, plus the total count.
func (r *Repository) ListForItem(ctx context.Context, itemID int64, limit, offset int) ([]Movement, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_movement WHERE inventory_item_id=$1`, itemID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT inventory_movement_id, inventory_item_id, quantity, movement_type, movement_date, reference, note, created_by, created_at
FROM inventory_movement
WHERE inventory_item_id=$1
ORDER BY movement_date DESC, inventory_movement_id DESC
LIMIT $2 OFFSET $3`, itemID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Movement{}
	for rows.Next() {
		var m Movement
		var reference, note *string
		if err := rows.Scan(&m.ID, &m.ItemID, &m.Quantity, &m.Type, &m.Date, &reference, &note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, 0, err
		}
		if reference != nil {
			m.Reference = *reference
		}
		if note != nil {
			m.Note = *note
		}
		result = append(result, m)
	}
	return result, total, rows.Err()
}

func (r *txRepository) GetItemForUpdate(ctx context.Context, itemID int64) (ItemState, error) {
	var state ItemState
	err := r.tx.QueryRow(ctx, `SELECT inventory_item_id, item_name, is_active FROM inventory_item WHERE inventory_item_id=$1 FOR UPDATE`, itemID).
		Scan(&state.ID, &state.Name, &state.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ItemState{}, shared.ErrNotFound
		}
		return ItemState{}, err
	}
	return state, nil
}

func (r *txRepository) CurrentQuantity(ctx context.Context, itemID int64) (int64, error) {
	var qty int64
	err := r.tx.QueryRow(ctx, `SELECT COALESCE(SUM(
	CASE WHEN movement_type IN ('SALE', 'ADJUST_OUT') THEN -quantity ELSE quantity END
), 0) FROM inventory_movement WHERE inventory_item_id=$1`, itemID).Scan(&qty)
	return qty, err
}

func (r *txRepository) InsertMovement(ctx context.Context, m Movement) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO inventory_movement (inventory_item_id, quantity, movement_type, movement_date, reference, note, created_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING inventory_movement_id`,
		m.ItemID, m.Quantity, string(m.Type), m.Date, nullString(m.Reference), nullString(m.Note), m.CreatedBy).Scan(&id)
	return id, err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
