package model

import "github.com/shopspring/decimal"

// Dashboard aggregates the counters shown on the overview page
type Dashboard struct {
	TotalProducts   int64           `json:"totalProducts"`
	TotalVariants   int64           `json:"totalVariants"`
	TotalCategories int64           `json:"totalCategories"`
	LowStockCount   int64           `json:"lowStockCount"`
	OutOfStockCount int64           `json:"outOfStockCount"`
	TotalUnits      int64           `json:"totalUnits"`
	TotalOrders     int64           `json:"totalOrders"`
	TotalSales      decimal.Decimal `json:"totalSales"`
}
