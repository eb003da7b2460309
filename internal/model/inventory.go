package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultLowStockThreshold applies when an inventory row is created without one
const DefaultLowStockThreshold = 10

// Inventory holds the current stock level of a single variant
type Inventory struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VariantID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"variantId"`
	Quantity          int       `gorm:"type:int;not null;default:0;check:quantity >= 0" json:"quantity"`
	LowStockThreshold int       `gorm:"type:int;not null;default:10;check:low_stock_threshold >= 0" json:"lowStockThreshold"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsLowStock reports whether stock is positive but at or below the threshold
func (i Inventory) IsLowStock() bool {
	return i.Quantity > 0 && i.Quantity <= i.LowStockThreshold
}

// InventoryHistory (stock ledger) records every non-zero quantity change.
// Rows are only ever appended.
type InventoryHistory struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VariantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"variantId"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	User           *User     `gorm:"foreignKey:UserID" json:"-"`
	QuantityChange int       `gorm:"type:int;not null" json:"quantityChange"`
	QuantityAfter  int       `gorm:"type:int;not null" json:"quantityAfter"`
	Reason         string    `gorm:"type:varchar(255)" json:"reason"`
	CreatedAt      time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

// LowStockItem is a variant whose inventory is low, with its product identity
type LowStockItem struct {
	VariantID         uuid.UUID `json:"variantId"`
	VariantSKU        string    `json:"variantSku"`
	ProductID         uuid.UUID `json:"productId"`
	ProductName       string    `json:"productName"`
	ProductSKU        string    `json:"productSku"`
	Quantity          int       `json:"quantity"`
	LowStockThreshold int       `json:"lowStockThreshold"`
}
