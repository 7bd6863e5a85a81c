package items

import (
	"errors"
	"time"
)

// Item represents a tracked inventory item. Current quantity is never stored
// on the item; it is derived from the movement ledger.
type Item struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	SKU              string    `json:"sku"`
	ReorderThreshold int       `json:"reorderThreshold"`
	Unit             string    `json:"unit,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Details decorates an item with its computed current quantity.
type Details struct {
	Item
	CurrentQuantity int64 `json:"currentQuantity"`
}

// CreateInput carries the fields for a new item.
type CreateInput struct {
	Name             string
	SKU              string
	ReorderThreshold int
	Unit             string
}

// UpdateInput carries the editable fields of an existing item. The SKU is
// fixed at creation time.
type UpdateInput struct {
	Name             string
	ReorderThreshold int
	Unit             string
}

var (
	// ErrDuplicateName indicates another item already uses the name.
	ErrDuplicateName = errors.New("items: name already exists")
	// ErrDuplicateSKU indicates another item already uses the SKU.
	ErrDuplicateSKU = errors.New("items: sku already exists")
	// ErrInvalidInput wraps field-level validation failures.
	ErrInvalidInput = errors.New("items: invalid input")
)
