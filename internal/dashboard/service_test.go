package dashboard

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrail/stocktrail/internal/shared"
)

type mockRow struct {
	Row
	active bool
}

type mockRepository struct {
	rows []mockRow
}

func (m *mockRepository) matching(active bool) []Row {
	result := []Row{}
	for _, r := range m.rows {
		if r.active == active {
			result = append(result, r.Row)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

func (m *mockRepository) ListWithQuantity(ctx context.Context, active bool, limit, offset int) ([]Row, int, error) {
	all := m.matching(active)
	total := len(all)
	if offset >= total {
		return []Row{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepository) CountLowStock(ctx context.Context, active bool) (int64, error) {
	var count int64
	for _, r := range m.matching(active) {
		if r.LowStock() {
			count++
		}
	}
	return count, nil
}

func TestOverview(t *testing.T) {
	repo := &mockRepository{rows: []mockRow{
		{Row: Row{ItemID: 1, Name: "Bolts", CurrentQuantity: 3, ReorderThreshold: 10}, active: true},
		{Row: Row{ItemID: 2, Name: "Anchors", CurrentQuantity: 10, ReorderThreshold: 10}, active: true},
		{Row: Row{ItemID: 3, Name: "Clamps", CurrentQuantity: 0, ReorderThreshold: 0}, active: true},
		{Row: Row{ItemID: 4, Name: "Dowels", CurrentQuantity: 1, ReorderThreshold: 5}, active: false},
	}}
	svc := NewService(repo)

	view, err := svc.Overview(context.Background(), true, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 3)
	// Name ascending.
	assert.Equal(t, "Anchors", view.Items[0].Name)
	assert.Equal(t, "Bolts", view.Items[1].Name)
	// Strictly below the threshold counts as low; at or above does not, and
	// a zero threshold never flags.
	assert.Equal(t, int64(1), view.LowStockCount)
	assert.Equal(t, 3, view.Pagination.Total)
	assert.Equal(t, 1, view.Pagination.TotalPages)
}

func TestOverviewInactiveFilter(t *testing.T) {
	repo := &mockRepository{rows: []mockRow{
		{Row: Row{ItemID: 1, Name: "Bolts", CurrentQuantity: 3, ReorderThreshold: 10}, active: true},
		{Row: Row{ItemID: 2, Name: "Dowels", CurrentQuantity: 1, ReorderThreshold: 5}, active: false},
	}}
	svc := NewService(repo)

	view, err := svc.Overview(context.Background(), false, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Dowels", view.Items[0].Name)
	assert.Equal(t, int64(1), view.LowStockCount)
}

func TestOverviewPagination(t *testing.T) {
	repo := &mockRepository{}
	for i := 0; i < 25; i++ {
		repo.rows = append(repo.rows, mockRow{
			Row:    Row{ItemID: int64(i + 1), Name: string(rune('A' + i))},
			active: true,
		})
	}
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Overview(ctx, true, 0)
	require.NoError(t, err)
	assert.Len(t, first.Items, shared.DefaultPageSize)
	assert.Equal(t, 3, first.Pagination.TotalPages)

	last, err := svc.Overview(ctx, true, 2)
	require.NoError(t, err)
	assert.Len(t, last.Items, 5)

	past, err := svc.Overview(ctx, true, 9)
	require.NoError(t, err)
	assert.Empty(t, past.Items)
	assert.Equal(t, 25, past.Pagination.Total)

	negative, err := svc.Overview(ctx, true, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, negative.Pagination.Page)
	assert.Equal(t, first.Items, negative.Items)
}

func TestRowLowStock(t *testing.T) {
	assert.True(t, Row{CurrentQuantity: 9, ReorderThreshold: 10}.LowStock())
	assert.False(t, Row{CurrentQuantity: 10, ReorderThreshold: 10}.LowStock())
	assert.False(t, Row{CurrentQuantity: 0, ReorderThreshold: 0}.LowStock())
}
