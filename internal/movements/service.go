package movements

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/stocktrail/stocktrail/internal/shared"
)

const (
	referenceMaxLen = 100
	noteMaxLen      = 255
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates movement recording and the stock guard.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
	now   func() time.Time
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// AddMovement records a new movement for an item. The item lookup, stock
// guard and insert run in one transaction with the item row locked, so two
// concurrent decreasing movements cannot jointly overdraw stock.
func (s *Service) AddMovement(ctx context.Context, input AddInput) (int64, error) {
	if !input.Type.Valid() {
		return 0, fmt.Errorf("%w: unknown movement type %q", ErrInvalidInput, input.Type)
	}
	if input.Quantity < 1 {
		return 0, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return 0, fmt.Errorf("%w: movement date is required", ErrInvalidInput)
	}
	if dateOnly(input.Date).After(dateOnly(s.now())) {
		return 0, fmt.Errorf("%w: movement date cannot be in the future", ErrInvalidInput)
	}
	reference := strings.TrimSpace(input.Reference)
	if utf8.RuneCountInString(reference) > referenceMaxLen {
		return 0, fmt.Errorf("%w: reference must be at most %d characters", ErrInvalidInput, referenceMaxLen)
	}
	note := strings.TrimSpace(input.Note)
	if utf8.RuneCountInString(note) > noteMaxLen {
		return 0, fmt.Errorf("%w: note must be at most %d characters", ErrInvalidInput, noteMaxLen)
	}

	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		item, err := tx.GetItemForUpdate(ctx, input.ItemID)
		if err != nil {
			return err
		}
		if !item.Active {
			return fmt.Errorf("%w: %s", ErrInactiveItem, item.Name)
		}
		delta := input.Type.Apply(input.Quantity)
		if err := ensureSufficientStock(ctx, tx, input.ItemID, delta); err != nil {
			return err
		}
		id, err = tx.InsertMovement(ctx, Movement{
			ItemID:    input.ItemID,
			Quantity:  input.Quantity,
			Type:      input.Type,
			Date:      dateOnly(input.Date),
			Reference: reference,
			Note:      note,
			CreatedBy: input.ActorID,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   fmt.Sprintf("movements:%s", input.Type),
			Entity:   "inventory_movement",
			EntityID: strconv.FormatInt(id, 10),
			Meta: map[string]any{
				"item_id":  input.ItemID,
				"quantity": input.Quantity,
				"date":     dateOnly(input.Date).Format("2006-01-02"),
			},
		})
	}
	return id, nil
}

// ListForItem returns one page of an item's movements, newest first. The
// item must exist; a missing item yields shared.ErrNotFound. The existence
// read takes no lock; only AddMovement locks the item row.
func (s *Service) ListForItem(ctx context.Context, itemID int64, page int) ([]Movement, shared.Pagination, error) {
	if _, err := s.repo.GetItem(ctx, itemID); err != nil {
		return nil, shared.Pagination{}, err
	}

	page = shared.ClampPage(page)
	perPage := shared.DefaultPageSize
	result, total, err := s.repo.ListForItem(ctx, itemID, perPage, page*perPage)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return result, shared.NewPagination(page, perPage, total), nil
}

// ensureSufficientStock fails when applying delta to the item's current
// quantity would drive it negative. Side-effect free; callers must hold the
// item row lock for the check to be authoritative.
func ensureSufficientStock(ctx context.Context, tx TxRepository, itemID, delta int64) error {
	current, err := tx.CurrentQuantity(ctx, itemID)
	if err != nil {
		return err
	}
	if current+delta < 0 {
		return &InsufficientStockError{CurrentQuantity: current, RequestedDelta: delta}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
