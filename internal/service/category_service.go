package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockwise/internal/cache"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/rs/zerolog"
)

// DTOs
type CreateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=100"`
	ParentID *string `json:"parentId" binding:"omitempty,uuid"`
}

// UpdateCategoryRequest replaces name and parent; a missing parentId moves the category to the root
type UpdateCategoryRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=100"`
	ParentID *string `json:"parentId" binding:"omitempty,uuid"`
}

type CategoryService interface {
	CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*model.Category, error)
	ListCategories(ctx context.Context, flat bool) ([]model.Category, error)
	GetCategory(ctx context.Context, id string) (*model.Category, error)
	UpdateCategory(ctx context.Context, userID string, id string, req UpdateCategoryRequest) (*model.Category, error)
	DeleteCategory(ctx context.Context, userID string, id string) error
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	cache        cache.Cache
	cacheTTL     time.Duration
}

func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	c cache.Cache,
	cacheTTL time.Duration,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		cache:        c,
		cacheTTL:     cacheTTL,
	}
}

func (s *categoryService) CreateCategory(ctx context.Context, userID string, req CreateCategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:     name,
		Slug:     slug.Make(name),
		ParentID: parentID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.categoryRepo.ExistsSibling(txCtx, name, parentID, nil)
		if err != nil {
			return fmt.Errorf("failed to check sibling names: %w", err)
		}
		if exists {
			return ErrDuplicateCategoryName
		}

		if parentID != nil {
			if _, err := s.categoryRepo.FindByID(txCtx, *parentID); err != nil {
				if isNotFound(err) {
					return ErrParentNotFound
				}
				return fmt.Errorf("failed to load parent category: %w", err)
			}
		}

		if err := s.categoryRepo.Create(txCtx, category); err != nil {
			return fmt.Errorf("failed to create category: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateCategory, category.ID.String(), category.Name, req)
	})
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		invalidate(ctx, s.cache, cache.CategoryKey(parentID.String()))
	}
	return category, nil
}

func (s *categoryService) ListCategories(ctx context.Context, flat bool) ([]model.Category, error) {
	var (
		categories []model.Category
		err        error
	)
	if flat {
		categories, err = s.categoryRepo.List(ctx)
	} else {
		categories, err = s.categoryRepo.ListRootsWithChildren(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

func (s *categoryService) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return readThrough(ctx, s.cache, s.cacheTTL, cache.CategoryKey(categoryID.String()), func() (*model.Category, error) {
		category, err := s.categoryRepo.FindByIDWithRelations(ctx, categoryID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrCategoryNotFound
			}
			return nil, fmt.Errorf("failed to load category: %w", err)
		}
		return category, nil
	})
}

func (s *categoryService) UpdateCategory(ctx context.Context, userID string, id string, req UpdateCategoryRequest) (*model.Category, error) {
	categoryID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	parentID, err := parseOptionalID(req.ParentID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)

	var (
		oldParentID *uuid.UUID
		staleKeys   []string
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		category, err := s.categoryRepo.FindByID(txCtx, categoryID)
		if err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to load category: %w", err)
		}
		oldParentID = category.ParentID

		if parentID != nil {
			if _, err := s.categoryRepo.FindByID(txCtx, *parentID); err != nil {
				if isNotFound(err) {
					return ErrParentNotFound
				}
				return fmt.Errorf("failed to load parent category: %w", err)
			}
			if *parentID == categoryID {
				return ErrSelfParent
			}
			if err := s.ensureNotAncestor(txCtx, categoryID, *parentID); err != nil {
				return err
			}
		}

		if name != category.Name || !sameParent(parentID, category.ParentID) {
			exists, err := s.categoryRepo.ExistsSibling(txCtx, name, parentID, &categoryID)
			if err != nil {
				return fmt.Errorf("failed to check sibling names: %w", err)
			}
			if exists {
				return ErrDuplicateCategoryName
			}
		}

		category.Name = name
		category.Slug = slug.Make(name)
		category.ParentID = parentID
		if err := s.categoryRepo.Update(txCtx, category); err != nil {
			return fmt.Errorf("failed to update category: %w", err)
		}

		if staleKeys, err = s.dependentKeys(txCtx, categoryID); err != nil {
			return err
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateCategory, category.ID.String(), category.Name, req)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCategories(ctx, &categoryID, oldParentID, parentID)
	invalidate(ctx, s.cache, staleKeys...)

	updated, err := s.categoryRepo.FindByIDWithRelations(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload category: %w", err)
	}
	// products are not part of the update response
	updated.Products = nil
	return updated, nil
}

// ensureNotAncestor walks up from parentID and fails if categoryID is met.
// The visited set stops the walk on a cycle already present in the data.
func (s *categoryService) ensureNotAncestor(ctx context.Context, categoryID, parentID uuid.UUID) error {
	visited := make(map[uuid.UUID]struct{})
	current := &parentID
	for current != nil {
		if *current == categoryID {
			return ErrCircularReference
		}
		if _, seen := visited[*current]; seen {
			zerolog.Ctx(ctx).Warn().Str("category_id", current.String()).Msg("existing cycle in category tree")
			return nil
		}
		visited[*current] = struct{}{}

		next, err := s.categoryRepo.GetParentID(ctx, *current)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return fmt.Errorf("failed to walk category ancestors: %w", err)
		}
		current = next
	}
	return nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, userID string, id string) error {
	categoryID, err := parseID(id)
	if err != nil {
		return err
	}

	var parentID *uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		category, err := s.categoryRepo.FindByID(txCtx, categoryID)
		if err != nil {
			if isNotFound(err) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("failed to load category: %w", err)
		}
		parentID = category.ParentID

		children, err := s.categoryRepo.CountChildren(txCtx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to count subcategories: %w", err)
		}
		if children > 0 {
			return ErrCategoryHasChildren
		}

		products, err := s.productRepo.CountByCategory(txCtx, categoryID)
		if err != nil {
			return fmt.Errorf("failed to count products: %w", err)
		}
		if products > 0 {
			return ErrCategoryHasProducts
		}

		if err := s.categoryRepo.Delete(txCtx, categoryID); err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteCategory, category.ID.String(), category.Name, map[string]bool{"deleted": true})
	})
	if err != nil {
		return err
	}

	s.invalidateCategories(ctx, &categoryID, parentID)
	return nil
}

func (s *categoryService) invalidateCategories(ctx context.Context, ids ...*uuid.UUID) {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != nil {
			keys = append(keys, cache.CategoryKey(id.String()))
		}
	}
	invalidate(ctx, s.cache, keys...)
}

// dependentKeys lists cached entries that embed the category: its children
// (as their parent) and its products (as their category).
func (s *categoryService) dependentKeys(ctx context.Context, categoryID uuid.UUID) ([]string, error) {
	childIDs, err := s.categoryRepo.ListChildIDs(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child categories: %w", err)
	}
	productIDs, err := s.productRepo.ListIDsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list category products: %w", err)
	}

	keys := make([]string, 0, len(childIDs)+len(productIDs))
	for _, id := range childIDs {
		keys = append(keys, cache.CategoryKey(id.String()))
	}
	for _, id := range productIDs {
		keys = append(keys, cache.ProductKey(id.String()))
	}
	return keys, nil
}

func sameParent(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
