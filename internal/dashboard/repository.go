package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads dashboard aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListWithQuantity returns one page of items matching the active filter,
// ordered by name ascending, each with its signed movement sum, plus the
// total item count for that filter.
func (r *Repository) ListWithQuantity(ctx context.Context, active bool, limit, offset int) ([]Row, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_item WHERE is_active=$1`, active).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `SELECT item.inventory_item_id, item.item_name, item.item_sku,
	COALESCE(SUM(
		CASE WHEN movement.movement_type IN ('SALE', 'ADJUST_OUT') THEN -movement.quantity ELSE movement.quantity END
	), 0) AS current_quantity,
	item.reorder_threshold, item.item_unit
FROM inventory_item item
LEFT JOIN inventory_movement movement ON movement.inventory_item_id = item.inventory_item_id
WHERE item.is_active=$1
GROUP BY item.inventory_item_id, item.item_name, item.item_sku, item.reorder_threshold, item.item_unit
ORDER BY item.item_name ASC
LIMIT $2 OFFSET $3`, active, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	result := []Row{}
	for rows.Next() {
		var row Row
		var unit *string
		if err := rows.Scan(&row.ItemID, &row.Name, &row.SKU, &row.CurrentQuantity, &row.ReorderThreshold, &unit); err != nil {
			return nil, 0, err
		}
		if unit != nil {
			row.Unit = *unit
		}
		result = append(result, row)
	}
	return result, total, rows.Err()
}

// CountLowStock counts items matching the active filter whose signed
// movement sum is strictly below their reorder threshold. Items with no
// movements count when their threshold is above zero.
func (r *Repository) CountLowStock(ctx context.Context, active bool) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)
FROM inventory_item item
WHERE item.is_active=$1
AND (
	SELECT COALESCE(SUM(
		CASE WHEN movement.movement_type IN ('SALE', 'ADJUST_OUT') THEN -movement.quantity ELSE movement.quantity END
	), 0)
	FROM inventory_movement movement
	WHERE movement.inventory_item_id = item.inventory_item_id
) < item.reorder_threshold`, active).Scan(&count)
	return count, err
}
