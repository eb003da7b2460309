package repository

import (
	"context"

	"stockwise/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// recentHistoryLimit caps the ledger rows attached to a variant detail
const recentHistoryLimit = 10

type VariantRepository interface {
	Create(ctx context.Context, variant *model.ProductVariant) error
	Update(ctx context.Context, variant *model.ProductVariant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	// FindByIDWithDetails loads the product, the inventory and the latest ledger rows with actors
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	FindBySKU(ctx context.Context, sku string) (*model.ProductVariant, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)
	CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type variantRepository struct {
	db *gorm.DB
}

func NewVariantRepository(db *gorm.DB) VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Create(ctx context.Context, variant *model.ProductVariant) error {
	return GetDB(ctx, r.db).Omit("Product", "Inventory", "History").Create(variant).Error
}

func (r *variantRepository) Update(ctx context.Context, variant *model.ProductVariant) error {
	return GetDB(ctx, r.db).Model(variant).Updates(map[string]interface{}{
		"sku":        variant.SKU,
		"attributes": variant.Attributes,
	}).Error
}

func (r *variantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ProductVariant{}).Error
}

func (r *variantRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := GetDB(ctx, r.db).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := GetDB(ctx, r.db).
		Preload("Product", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "sku", "category_id")
		}).
		Preload("Inventory").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc").Limit(recentHistoryLimit)
		}).
		Preload("History.User").
		First(&variant, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) FindBySKU(ctx context.Context, sku string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := GetDB(ctx, r.db).Where("sku = ?", sku).First(&variant).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

func (r *variantRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := GetDB(ctx, r.db).
		Preload("Inventory").
		Where("product_id = ?", productID).
		Order("sku asc").
		Find(&variants).Error
	if err != nil {
		return nil, err
	}
	return variants, nil
}

func (r *variantRepository) CountByProduct(ctx context.Context, productID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ProductVariant{}).Where("product_id = ?", productID).Count(&count).Error
	return count, err
}

func (r *variantRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.ProductVariant{}).Count(&count).Error
	return count, err
}
