package items

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stocktrail/stocktrail/internal/shared"
)

// Repository persists inventory items in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new active item and returns its assigned id. Unique-index
// violations are mapped to the matching duplicate error as the backstop for
// the check-then-insert race.
func (r *Repository) Create(ctx context.Context, input CreateInput) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `INSERT INTO inventory_item (item_name, item_sku, reorder_threshold, item_unit, is_active, created_at)
VALUES ($1, $2, $3, $4, TRUE, NOW()) RETURNING inventory_item_id`,
		input.Name, input.SKU, input.ReorderThreshold, nullString(input.Unit)).Scan(&id)
	if err != nil {
		return 0, mapUniqueViolation(err)
	}
	return id, nil
}

// Get loads one item by id.
func (r *Repository) Get(ctx context.Context, id int64) (Item, error) {
	var item Item
	var unit *string
	err := r.pool.QueryRow(ctx, `SELECT inventory_item_id, item_name, item_sku, reorder_threshold, item_unit, is_active, created_at
FROM inventory_item WHERE inventory_item_id=$1`, id).
		Scan(&item.ID, &item.Name, &item.SKU, &item.ReorderThreshold, &unit, &item.Active, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, shared.ErrNotFound
		}
		return Item{}, err
	}
	if unit != nil {
		item.Unit = *unit
	}
	return item, nil
}

// Update persists the mutable fields of an item.
func (r *Repository) Update(ctx context.Context, item Item) error {
	tag, err := r.pool.Exec(ctx, `UPDATE inventory_item
SET item_name=$2, reorder_threshold=$3, item_unit=$4, is_active=$5
WHERE inventory_item_id=$1`,
		item.ID, item.Name, item.ReorderThreshold, nullString(item.Unit), item.Active)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ExistsByName reports whether any item uses the given name. When excludeID
// is non-zero that item is ignored, so renaming to the current name is not a
// self-collision.
func (r *Repository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_item WHERE item_name=$1 AND inventory_item_id<>$2)`, name, excludeID).Scan(&exists)
	return exists, err
}

// ExistsBySKU reports whether any item uses the given SKU.
func (r *Repository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_item WHERE item_sku=$1)`, sku).Scan(&exists)
	return exists, err
}

// CurrentQuantity computes the signed movement sum for an item. Items with
// no movements yield 0.
func (r *Repository) CurrentQuantity(ctx context.Context, itemID int64) (int64, error) {
	var qty int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(
	CASE WHEN movement_type IN ('SALE', 'ADJUST_OUT') THEN -quantity ELSE quantity END
), 0) FROM inventory_movement WHERE inventory_item_id=$1`, itemID).Scan(&qty)
	return qty, err
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch {
		case strings.Contains(pgErr.ConstraintName, "sku"):
			return ErrDuplicateSKU
		case strings.Contains(pgErr.ConstraintName, "name"):
			return ErrDuplicateName
		default:
			return shared.ErrConflict
		}
	}
	return err
}

func nullString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
