package repository

import (
	"context"

	"stockwise/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryRepository interface {
	// FindByVariantIDForUpdate reads the row with SELECT ... FOR UPDATE; call it inside RunInTx
	FindByVariantIDForUpdate(ctx context.Context, variantID uuid.UUID) (*model.Inventory, error)
	Create(ctx context.Context, inventory *model.Inventory) error
	Update(ctx context.Context, inventory *model.Inventory) error
	DeleteByVariantID(ctx context.Context, variantID uuid.UUID) error
	ListLowStock(ctx context.Context, page, limit int) ([]model.LowStockItem, int64, error)

	AppendHistory(ctx context.Context, entry *model.InventoryHistory) error
	ListHistory(ctx context.Context, variantID uuid.UUID, page, limit int) ([]model.InventoryHistory, int64, error)
	DeleteHistoryByVariantID(ctx context.Context, variantID uuid.UUID) error
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) FindByVariantIDForUpdate(ctx context.Context, variantID uuid.UUID) (*model.Inventory, error) {
	var inventory model.Inventory
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("variant_id = ?", variantID).First(&inventory).Error; err != nil {
		return nil, err
	}
	return &inventory, nil
}

func (r *inventoryRepository) Create(ctx context.Context, inventory *model.Inventory) error {
	return GetDB(ctx, r.db).Create(inventory).Error
}

func (r *inventoryRepository) Update(ctx context.Context, inventory *model.Inventory) error {
	return GetDB(ctx, r.db).Model(inventory).Updates(map[string]interface{}{
		"quantity":            inventory.Quantity,
		"low_stock_threshold": inventory.LowStockThreshold,
	}).Error
}

func (r *inventoryRepository) DeleteByVariantID(ctx context.Context, variantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("variant_id = ?", variantID).Delete(&model.Inventory{}).Error
}

func (r *inventoryRepository) ListLowStock(ctx context.Context, page, limit int) ([]model.LowStockItem, int64, error) {
	var items []model.LowStockItem
	var total int64

	base := func() *gorm.DB {
		return GetDB(ctx, r.db).Table("inventories AS i").
			Joins("JOIN product_variants v ON v.id = i.variant_id").
			Joins("JOIN products p ON p.id = v.product_id").
			Where("i.quantity > 0 AND i.quantity <= i.low_stock_threshold")
	}

	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := base().
		Select(`v.id AS variant_id, v.sku AS variant_sku, p.id AS product_id,
			p.name AS product_name, p.sku AS product_sku,
			i.quantity AS quantity, i.low_stock_threshold AS low_stock_threshold`).
		Order("i.quantity asc, v.sku asc").
		Offset(offset).Limit(limit).
		Scan(&items).Error
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) AppendHistory(ctx context.Context, entry *model.InventoryHistory) error {
	return GetDB(ctx, r.db).Omit("User").Create(entry).Error
}

func (r *inventoryRepository) ListHistory(ctx context.Context, variantID uuid.UUID, page, limit int) ([]model.InventoryHistory, int64, error) {
	var rows []model.InventoryHistory
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.InventoryHistory{}).Where("variant_id = ?", variantID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Preload("User").
		Where("variant_id = ?", variantID).
		Order("created_at desc").
		Offset(offset).Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *inventoryRepository) DeleteHistoryByVariantID(ctx context.Context, variantID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("variant_id = ?", variantID).Delete(&model.InventoryHistory{}).Error
}
