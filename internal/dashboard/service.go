package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/stocktrail/stocktrail/internal/shared"
)

// RepositoryPort abstracts dashboard reads for the service.
type RepositoryPort interface {
	ListWithQuantity(ctx context.Context, active bool, limit, offset int) ([]Row, int, error)
	CountLowStock(ctx context.Context, active bool) (int64, error)
}

// Service assembles dashboard pages.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Overview returns one page of items matching the active filter with their
// quantities, plus the low-stock count for that filter. Page numbers are
// clamped to >= 0. The two queries run concurrently.
func (s *Service) Overview(ctx context.Context, active bool, page int) (Overview, error) {
	page = shared.ClampPage(page)
	perPage := shared.DefaultPageSize

	var (
		rows     []Row
		total    int
		lowStock int64
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, total, err = s.repo.ListWithQuantity(ctx, active, perPage, page*perPage)
		return err
	})
	g.Go(func() error {
		var err error
		lowStock, err = s.repo.CountLowStock(ctx, active)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	return Overview{
		Items:         rows,
		LowStockCount: lowStock,
		Pagination:    shared.NewPagination(page, perPage, total),
	}, nil
}
