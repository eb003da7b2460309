package repository

import (
	"context"
	"fmt"

	"stockwise/internal/model"

	"gorm.io/gorm"
)

// StockCounters are the inventory aggregates behind the dashboard
type StockCounters struct {
	LowStock   int64
	OutOfStock int64
	TotalUnits int64
}

type StatisticsRepository interface {
	GetStockCounters(ctx context.Context) (StockCounters, error)
	// GetSales returns the order count and the summed line value as decimal text,
	// ignoring cancelled orders for the value
	GetSales(ctx context.Context) (count int64, value string, err error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetStockCounters(ctx context.Context) (StockCounters, error) {
	var result StockCounters
	err := GetDB(ctx, r.db).Model(&model.Inventory{}).
		Select(`COUNT(*) FILTER (WHERE quantity > 0 AND quantity <= low_stock_threshold) AS low_stock,
			COUNT(*) FILTER (WHERE quantity = 0) AS out_of_stock,
			COALESCE(SUM(quantity), 0) AS total_units`).
		Scan(&result).Error
	if err != nil {
		return StockCounters{}, fmt.Errorf("failed to query stock counters: %w", err)
	}
	return result, nil
}

func (r *statisticsRepository) GetSales(ctx context.Context) (int64, string, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).Count(&count).Error; err != nil {
		return 0, "", fmt.Errorf("failed to count orders: %w", err)
	}

	var result struct {
		Value string
	}
	err := GetDB(ctx, r.db).Table("order_items").
		Select("COALESCE(CAST(SUM(order_items.quantity * order_items.price) AS TEXT), '0') AS value").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", model.OrderStatusCancelled).
		Scan(&result).Error
	if err != nil {
		return 0, "", fmt.Errorf("failed to sum sales: %w", err)
	}

	return count, result.Value, nil
}
