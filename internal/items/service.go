package items

import (
	"context"
	"fmt"
	"strconv"

	"github.com/stocktrail/stocktrail/internal/shared"
)

// RepositoryPort abstracts item persistence for the service.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateInput) (int64, error)
	Get(ctx context.Context, id int64) (Item, error)
	Update(ctx context.Context, item Item) error
	ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	CurrentQuantity(ctx context.Context, itemID int64) (int64, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates the item lifecycle.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// Create validates the input, enforces name and SKU uniqueness and persists
// a new active item.
func (s *Service) Create(ctx context.Context, input CreateInput, actorID int64) (int64, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return 0, err
	}
	sku, err := normalizeSKU(input.SKU)
	if err != nil {
		return 0, err
	}
	unit, err := normalizeUnit(input.Unit)
	if err != nil {
		return 0, err
	}
	if err := validateThreshold(input.ReorderThreshold); err != nil {
		return 0, err
	}

	if taken, err := s.repo.ExistsByName(ctx, name, 0); err != nil {
		return 0, err
	} else if taken {
		return 0, ErrDuplicateName
	}
	if taken, err := s.repo.ExistsBySKU(ctx, sku); err != nil {
		return 0, err
	} else if taken {
		return 0, ErrDuplicateSKU
	}

	id, err := s.repo.Create(ctx, CreateInput{Name: name, SKU: sku, ReorderThreshold: input.ReorderThreshold, Unit: unit})
	if err != nil {
		return 0, err
	}
	s.recordAudit(ctx, actorID, "items:create", id, map[string]any{"name": name, "sku": sku})
	return id, nil
}

// Get loads one item. It is the single source of not-found semantics for
// all item mutations.
func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// Details returns an item together with its computed current quantity.
func (s *Service) Details(ctx context.Context, id int64) (Details, error) {
	item, err := s.Get(ctx, id)
	if err != nil {
		return Details{}, err
	}
	qty, err := s.repo.CurrentQuantity(ctx, id)
	if err != nil {
		return Details{}, err
	}
	return Details{Item: item, CurrentQuantity: qty}, nil
}

// Rename changes an item's name, re-checking uniqueness with the item's own
// id excluded so renaming to the current name succeeds.
func (s *Service) Rename(ctx context.Context, id int64, newName string, actorID int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	name, err := normalizeName(newName)
	if err != nil {
		return err
	}
	if taken, err := s.repo.ExistsByName(ctx, name, id); err != nil {
		return err
	} else if taken {
		return ErrDuplicateName
	}
	item.Name = name
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "items:rename", id, map[string]any{"name": name})
	return nil
}

// UpdateReorderThreshold sets the low-stock threshold.
func (s *Service) UpdateReorderThreshold(ctx context.Context, id int64, threshold int, actorID int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := validateThreshold(threshold); err != nil {
		return err
	}
	item.ReorderThreshold = threshold
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "items:threshold", id, map[string]any{"reorder_threshold": threshold})
	return nil
}

// SetUnit sets the display unit; an empty value clears it.
func (s *Service) SetUnit(ctx context.Context, id int64, unit string, actorID int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	normalized, err := normalizeUnit(unit)
	if err != nil {
		return err
	}
	item.Unit = normalized
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "items:unit", id, map[string]any{"unit": normalized})
	return nil
}

// Update applies name, threshold and unit changes in one write, with the
// same validation and uniqueness rules as the individual operations.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput, actorID int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	name, err := normalizeName(input.Name)
	if err != nil {
		return err
	}
	unit, err := normalizeUnit(input.Unit)
	if err != nil {
		return err
	}
	if err := validateThreshold(input.ReorderThreshold); err != nil {
		return err
	}
	if taken, err := s.repo.ExistsByName(ctx, name, id); err != nil {
		return err
	} else if taken {
		return ErrDuplicateName
	}

	item.Name = name
	item.ReorderThreshold = input.ReorderThreshold
	item.Unit = unit
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "items:update", id, map[string]any{
		"name":              name,
		"reorder_threshold": input.ReorderThreshold,
		"unit":              unit,
	})
	return nil
}

// Activate enables an item. Activating an already-active item is a no-op.
func (s *Service) Activate(ctx context.Context, id int64, actorID int64) error {
	return s.setActive(ctx, id, true, actorID)
}

// Deactivate disables an item. Deactivating an already-inactive item is a
// no-op.
func (s *Service) Deactivate(ctx context.Context, id int64, actorID int64) error {
	return s.setActive(ctx, id, false, actorID)
}

func (s *Service) setActive(ctx context.Context, id int64, active bool, actorID int64) error {
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if item.Active == active {
		return nil
	}
	item.Active = active
	if err := s.repo.Update(ctx, item); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "items:active", id, map[string]any{"active": active})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, itemID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "inventory_item",
		EntityID: strconv.FormatInt(itemID, 10),
		Meta:     meta,
	})
}
