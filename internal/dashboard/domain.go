package dashboard

import "github.com/stocktrail/stocktrail/internal/shared"

// Row is one item on the dashboard, decorated with its computed quantity.
type Row struct {
	ItemID           int64  `json:"itemId"`
	Name             string `json:"name"`
	SKU              string `json:"sku"`
	CurrentQuantity  int64  `json:"currentQuantity"`
	ReorderThreshold int    `json:"reorderThreshold"`
	Unit             string `json:"unit,omitempty"`
}

// LowStock reports whether the row is below its reorder threshold.
func (r Row) LowStock() bool {
	return r.CurrentQuantity < int64(r.ReorderThreshold)
}

// Overview is one dashboard page.
type Overview struct {
	Items         []Row             `json:"items"`
	LowStockCount int64             `json:"lowStockCount"`
	Pagination    shared.Pagination `json:"pagination"`
}
