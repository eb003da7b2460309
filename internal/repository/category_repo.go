package repository

import (
	"context"

	"stockwise/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productPreviewLimit caps the products attached to a category detail
const productPreviewLimit = 10

type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	// FindByIDWithRelations loads the parent, direct children and a product preview
	FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Category, error)
	// ExistsSibling reports whether another category under parentID already uses name
	ExistsSibling(ctx context.Context, name string, parentID *uuid.UUID, excludeID *uuid.UUID) (bool, error)
	// GetParentID returns the parent of id; gorm.ErrRecordNotFound when id does not exist
	GetParentID(ctx context.Context, id uuid.UUID) (*uuid.UUID, error)
	CountChildren(ctx context.Context, id uuid.UUID) (int64, error)
	ListChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error)
	List(ctx context.Context) ([]model.Category, error)
	ListRootsWithChildren(ctx context.Context) ([]model.Category, error)
	Count(ctx context.Context) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.Category) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) Update(ctx context.Context, category *model.Category) error {
	// map form so a nil parent is written as NULL
	return GetDB(ctx, r.db).Model(category).Updates(map[string]interface{}{
		"name":      category.Name,
		"slug":      category.Slug,
		"parent_id": category.ParentID,
	}).Error
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Category{}).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	var category model.Category
	err := GetDB(ctx, r.db).
		Preload("Parent").
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("name asc")
		}).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name", "sku", "category_id").Order("name asc").Limit(productPreviewLimit)
		}).
		First(&category, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) ExistsSibling(ctx context.Context, name string, parentID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.Category{}).Where("name = ?", name)
	if parentID == nil {
		db = db.Where("parent_id IS NULL")
	} else {
		db = db.Where("parent_id = ?", *parentID)
	}
	if excludeID != nil {
		db = db.Where("id <> ?", *excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *categoryRepository) GetParentID(ctx context.Context, id uuid.UUID) (*uuid.UUID, error) {
	var category model.Category
	if err := GetDB(ctx, r.db).Select("id", "parent_id").First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return category.ParentID, nil
}

func (r *categoryRepository) CountChildren(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count, err
}

func (r *categoryRepository) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := GetDB(ctx, r.db).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) ListRootsWithChildren(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := GetDB(ctx, r.db).
		Preload("Children", func(db *gorm.DB) *gorm.DB {
			return db.Order("name asc")
		}).
		Where("parent_id IS NULL").
		Order("name asc").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Category{}).Count(&count).Error
	return count, err
}

func (r *categoryRepository) ListChildIDs(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := GetDB(ctx, r.db).Model(&model.Category{}).Where("parent_id = ?", id).Pluck("id", &ids).Error
	return ids, err
}
