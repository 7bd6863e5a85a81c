package movements

import (
	"errors"
	"fmt"
	"time"
)

// Type enumerates the supported stock movement kinds.
type Type string

const (
	// TypeSale records stock leaving through a sale.
	TypeSale Type = "SALE"
	// TypeReceive records stock arriving from a supplier.
	TypeReceive Type = "RECEIVE"
	// TypeAdjustIn records a manual upward correction.
	TypeAdjustIn Type = "ADJUST_IN"
	// TypeAdjustOut records a manual downward correction.
	TypeAdjustOut Type = "ADJUST_OUT"
)

// Valid reports whether the type is one of the known values.
func (t Type) Valid() bool {
	switch t {
	case TypeSale, TypeReceive, TypeAdjustIn, TypeAdjustOut:
		return true
	}
	return false
}

// Apply returns the signed delta a movement of this type contributes to an
// item's running total.
func (t Type) Apply(quantity int64) int64 {
	switch t {
	case TypeSale, TypeAdjustOut:
		return -quantity
	default:
		return quantity
	}
}

// Movement is an append-only record of one stock change against one item.
// Only Reference and Note may be revised after creation.
type Movement struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	Quantity  int64     `json:"quantity"`
	Type      Type      `json:"type"`
	Date      time.Time `json:"date"`
	Reference string    `json:"reference,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedBy int64     `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// AddInput carries the fields for recording a new movement.
type AddInput struct {
	ItemID    int64
	Quantity  int64
	Type      Type
	Date      time.Time
	Reference string
	Note      string
	ActorID   int64
}

// InsufficientStockError signals that a decreasing movement would drive the
// computed quantity negative.
type InsufficientStockError struct {
	CurrentQuantity int64
	RequestedDelta  int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("movements: insufficient stock: current quantity %d, requested change %d", e.CurrentQuantity, e.RequestedDelta)
}

var (
	// ErrInactiveItem indicates a movement was attempted against a
	// deactivated item.
	ErrInactiveItem = errors.New("movements: item is inactive")
	// ErrInvalidInput wraps field-level validation failures.
	ErrInvalidInput = errors.New("movements: invalid input")
)
