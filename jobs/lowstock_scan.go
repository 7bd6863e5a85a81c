package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/stocktrail/stocktrail/internal/jobs"
)

// LowStockStore abstracts persistence for the low-stock scan.
type LowStockStore interface {
	CountLowStock(ctx context.Context) (int64, error)
	InsertSnapshot(ctx context.Context, count int64, at time.Time) error
}

// LowStockScanner records periodic snapshots of how many active items sit
// below their reorder threshold.
type LowStockScanner struct {
	store   LowStockStore
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

// NewLowStockScanner constructs a LowStockScanner.
func NewLowStockScanner(store LowStockStore, logger *slog.Logger) *LowStockScanner {
	return &LowStockScanner{store: store, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// Handle processes TaskLowStockScan tasks.
func (s *LowStockScanner) Handle(ctx context.Context, t *asynq.Task) error {
	var payload LowStockScanPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := s.metrics.Track(TaskLowStockScan)

	count, err := s.store.CountLowStock(ctx)
	if err != nil {
		return tracker.End(fmt.Errorf("count low stock items: %w", err))
	}
	if err := s.store.InsertSnapshot(ctx, count, time.Now().UTC()); err != nil {
		return tracker.End(fmt.Errorf("persist low stock snapshot: %w", err))
	}
	s.metrics.SetLowStockItems(count)

	s.logger.Info("low stock scan completed",
		slog.Int64("low_stock_items", count),
		slog.Time("scheduled_for", payload.ScheduledFor))
	return tracker.End(nil)
}

// PgLowStockStore backs the scan with Postgres.
type PgLowStockStore struct {
	pool *pgxpool.Pool
}

// NewPgLowStockStore constructs a PgLowStockStore.
func NewPgLowStockStore(pool *pgxpool.Pool) *PgLowStockStore {
	return &PgLowStockStore{pool: pool}
}

func (s *PgLowStockStore) CountLowStock(ctx context.Context) (int64, error) {
	const query = `
SELECT COUNT(*)
FROM inventory_item item
WHERE item.is_active = TRUE
  AND COALESCE((
      SELECT SUM(CASE WHEN m.movement_type IN ('SALE', 'ADJUST_OUT') THEN -m.quantity ELSE m.quantity END)
      FROM inventory_movement m
      WHERE m.inventory_item_id = item.inventory_item_id
  ), 0) < item.reorder_threshold`

	var count int64
	if err := s.pool.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (s *PgLowStockStore) InsertSnapshot(ctx context.Context, count int64, at time.Time) error {
	const query = `INSERT INTO low_stock_alerts (low_stock_count, scanned_at) VALUES ($1, $2)`
	_, err := s.pool.Exec(ctx, query, count, at)
	return err
}
