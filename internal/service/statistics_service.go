package service

import (
	"context"
	"fmt"

	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type StatisticsService interface {
	GetDashboard(ctx context.Context) (*model.Dashboard, error)
}

type statisticsService struct {
	statsRepo    repository.StatisticsRepository
	productRepo  repository.ProductRepository
	variantRepo  repository.VariantRepository
	categoryRepo repository.CategoryRepository
}

func NewStatisticsService(
	statsRepo repository.StatisticsRepository,
	productRepo repository.ProductRepository,
	variantRepo repository.VariantRepository,
	categoryRepo repository.CategoryRepository,
) StatisticsService {
	return &statisticsService{
		statsRepo:    statsRepo,
		productRepo:  productRepo,
		variantRepo:  variantRepo,
		categoryRepo: categoryRepo,
	}
}

// GetDashboard collects catalog counts, stock health and sales totals.
// The queries are independent and run concurrently.
func (s *statisticsService) GetDashboard(ctx context.Context) (*model.Dashboard, error) {
	var (
		dashboard model.Dashboard
		sales     string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if dashboard.TotalProducts, err = s.productRepo.Count(gctx); err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if dashboard.TotalVariants, err = s.variantRepo.Count(gctx); err != nil {
			return fmt.Errorf("failed to count variants: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if dashboard.TotalCategories, err = s.categoryRepo.Count(gctx); err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		stock, err := s.statsRepo.GetStockCounters(gctx)
		if err != nil {
			return err
		}
		dashboard.LowStockCount = stock.LowStock
		dashboard.OutOfStockCount = stock.OutOfStock
		dashboard.TotalUnits = stock.TotalUnits
		return nil
	})
	g.Go(func() (err error) {
		dashboard.TotalOrders, sales, err = s.statsRepo.GetSales(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// sums come back as text to keep full numeric precision
	total, err := decimal.NewFromString(sales)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sales total %q: %w", sales, err)
	}
	dashboard.TotalSales = total

	return &dashboard, nil
}
