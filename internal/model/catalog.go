package model

import (
	"time"

	"github.com/google/uuid"
)

// Category groups products; categories form a tree through ParentID
type Category struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_category_name_parent" json:"name"`
	Slug      string     `gorm:"type:varchar(120);not null;index" json:"slug"`
	ParentID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_category_name_parent" json:"parentId"`
	Parent    *Category  `gorm:"foreignKey:ParentID" json:"parent,omitempty"`
	Children  []Category `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	Products  []Product  `gorm:"foreignKey:CategoryID" json:"products,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

// Product is a sellable item; stock is tracked per variant
type Product struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU         string           `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	Name        string           `gorm:"type:varchar(200);not null" json:"name"`
	Description string           `gorm:"type:text" json:"description"`
	CategoryID  *uuid.UUID       `gorm:"type:uuid;index" json:"categoryId"`
	Category    *Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ProductVariant is a concrete stock-keeping unit of a product (e.g. red / XL)
type ProductVariant struct {
	ID         uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU        string             `gorm:"type:varchar(50);uniqueIndex;not null" json:"sku"`
	ProductID  uuid.UUID          `gorm:"type:uuid;not null;index" json:"productId"`
	Product    *Product           `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Attributes Attributes         `gorm:"type:jsonb;not null;default:'{}'" json:"attributes"`
	Inventory  *Inventory         `gorm:"foreignKey:VariantID" json:"inventory,omitempty"`
	History    []InventoryHistory `gorm:"foreignKey:VariantID" json:"inventoryHistory,omitempty"`
	CreatedAt  time.Time          `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time          `gorm:"autoUpdateTime" json:"updatedAt"`
}
