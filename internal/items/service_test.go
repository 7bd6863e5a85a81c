package items

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocktrail/stocktrail/internal/shared"
)

type mockRepository struct {
	items      map[int64]Item
	quantities map[int64]int64
	nextID     int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		items:      make(map[int64]Item),
		quantities: make(map[int64]int64),
		nextID:     1,
	}
}

func (m *mockRepository) Create(ctx context.Context, input CreateInput) (int64, error) {
	id := m.nextID
	m.nextID++
	m.items[id] = Item{
		ID:               id,
		Name:             input.Name,
		SKU:              input.SKU,
		ReorderThreshold: input.ReorderThreshold,
		Unit:             input.Unit,
		Active:           true,
		CreatedAt:        time.Now(),
	}
	return id, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := m.items[id]
	if !ok {
		return Item{}, shared.ErrNotFound
	}
	return item, nil
}

func (m *mockRepository) Update(ctx context.Context, item Item) error {
	if _, ok := m.items[item.ID]; !ok {
		return shared.ErrNotFound
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockRepository) ExistsByName(ctx context.Context, name string, excludeID int64) (bool, error) {
	for _, item := range m.items {
		if item.Name == name && item.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	for _, item := range m.items {
		if item.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockRepository) CurrentQuantity(ctx context.Context, itemID int64) (int64, error) {
	return m.quantities[itemID], nil
}

func newTestService(repo *mockRepository) *Service {
	return NewService(repo, nil)
}

func TestCreateItem(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "  Widget  ", SKU: " WID-001 ", ReorderThreshold: 5, Unit: "pcs"}, 1)
	require.NoError(t, err)

	item, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Widget", item.Name)
	assert.Equal(t, "WID-001", item.SKU)
	assert.Equal(t, 5, item.ReorderThreshold)
	assert.True(t, item.Active)
}

func TestCreateItemUniqueness(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-001"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-002"}, 1)
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Create(ctx, CreateInput{Name: "Gadget", SKU: "WID-001"}, 1)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestCreateItemValidation(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"blank name", CreateInput{Name: "  ", SKU: "WID-001"}},
		{"short name", CreateInput{Name: "W", SKU: "WID-001"}},
		{"short sku", CreateInput{Name: "Widget", SKU: "X"}},
		{"negative threshold", CreateInput{Name: "Widget", SKU: "WID-001", ReorderThreshold: -1}},
		{"long unit", CreateInput{Name: "Widget", SKU: "WID-001", Unit: "an-extremely-long-unit-name"}},
		{"one accented char name", CreateInput{Name: "é", SKU: "WID-001"}},
		{"151 accented chars name", CreateInput{Name: strings.Repeat("é", 151), SKU: "WID-001"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.input, 1)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Empty(t, repo.items)
}

// Length bounds count characters, so a 150-rune accented name is valid even
// though it is 300 bytes.
func TestCreateItemMultibyteBounds(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{
		Name: strings.Repeat("é", 150),
		SKU:  strings.Repeat("ü", 50),
		Unit: strings.Repeat("ø", 20),
	}, 1)
	require.NoError(t, err)
}

func TestRename(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-001"}, 1)
	require.NoError(t, err)
	otherID, err := svc.Create(ctx, CreateInput{Name: "Gadget", SKU: "GAD-001"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, id, "Sprocket", 1))
	item, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Sprocket", item.Name)

	// Renaming to the current name is not a collision with itself.
	require.NoError(t, svc.Rename(ctx, id, "Sprocket", 1))

	// Renaming onto another item's name is.
	err = svc.Rename(ctx, otherID, "Sprocket", 1)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestUpdateReorderThreshold(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-001"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateReorderThreshold(ctx, id, 25, 1))
	item, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 25, item.ReorderThreshold)

	assert.ErrorIs(t, svc.UpdateReorderThreshold(ctx, id, -1, 1), ErrInvalidInput)
}

func TestSetUnit(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-001", Unit: "pcs"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.SetUnit(ctx, id, "box", 1))
	item, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "box", item.Unit)

	// Empty clears the unit.
	require.NoError(t, svc.SetUnit(ctx, id, "", 1))
	item, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", item.Unit)
}

func TestActivationToggles(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-001"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(ctx, id, 1))
	item, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, item.Active)

	// Repeating the toggle is a no-op.
	require.NoError(t, svc.Deactivate(ctx, id, 1))

	require.NoError(t, svc.Activate(ctx, id, 1))
	item, err = svc.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, item.Active)
}

func TestDetails(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	id, err := svc.Create(ctx, CreateInput{Name: "Widget", SKU: "WID-001"}, 1)
	require.NoError(t, err)
	repo.quantities[id] = 42

	details, err := svc.Details(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), details.CurrentQuantity)
	assert.Equal(t, "Widget", details.Name)

	_, err = svc.Details(ctx, 999)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestMutationsOnMissingItem(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	assert.ErrorIs(t, svc.Rename(ctx, 5, "Widget", 1), shared.ErrNotFound)
	assert.ErrorIs(t, svc.UpdateReorderThreshold(ctx, 5, 10, 1), shared.ErrNotFound)
	assert.ErrorIs(t, svc.Activate(ctx, 5, 1), shared.ErrNotFound)
	assert.ErrorIs(t, svc.Update(ctx, 5, UpdateInput{Name: "Widget"}, 1), shared.ErrNotFound)
}
