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
)

// DTOs
type CreateProductRequest struct {
	SKU         string  `json:"sku" binding:"required,min=3,max=50"`
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Description string  `json:"description"`
	CategoryID  *string `json:"categoryId" binding:"omitempty,uuid"`
}

type UpdateProductRequest struct {
	SKU         string  `json:"sku" binding:"required,min=3,max=50"`
	Name        string  `json:"name" binding:"required,min=2,max=200"`
	Description string  `json:"description"`
	CategoryID  *string `json:"categoryId" binding:"omitempty,uuid"`
}

type ListProductsParams struct {
	Search     string
	CategoryID string
	Page       int
	Limit      int
}

type ProductService interface {
	CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, int64, error)
	GetProduct(ctx context.Context, id string) (*model.Product, error)
	UpdateProduct(ctx context.Context, userID string, id string, req UpdateProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, userID string, id string) error
}

type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	variantRepo  repository.VariantRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	cache        cache.Cache
	cacheTTL     time.Duration
}

func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	variantRepo repository.VariantRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	c cache.Cache,
	cacheTTL time.Duration,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		variantRepo:  variantRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		cache:        c,
		cacheTTL:     cacheTTL,
	}
}

func (s *productService) CreateProduct(ctx context.Context, userID string, req CreateProductRequest) (*model.Product, error) {
	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		return nil, err
	}

	product := &model.Product{
		SKU:         strings.TrimSpace(req.SKU),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		CategoryID:  categoryID,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureSKUFree(txCtx, product.SKU, nil); err != nil {
			return err
		}
		if err := s.ensureCategory(txCtx, categoryID); err != nil {
			return err
		}

		if err := s.productRepo.Create(txCtx, product); err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return nil, err
	}

	if categoryID != nil {
		invalidate(ctx, s.cache, cache.CategoryKey(categoryID.String()))
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, params ListProductsParams) ([]model.Product, int64, error) {
	filter := repository.ProductFilter{
		Search: strings.TrimSpace(params.Search),
		Page:   params.Page,
		Limit:  params.Limit,
	}
	if params.CategoryID != "" {
		categoryID, err := parseID(params.CategoryID)
		if err != nil {
			return nil, 0, err
		}
		filter.CategoryID = &categoryID
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}
	return products, total, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return readThrough(ctx, s.cache, s.cacheTTL, cache.ProductKey(productID.String()), func() (*model.Product, error) {
		product, err := s.productRepo.FindByIDWithDetails(ctx, productID)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrProductNotFound
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		return product, nil
	})
}

func (s *productService) UpdateProduct(ctx context.Context, userID string, id string, req UpdateProductRequest) (*model.Product, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	categoryID, err := parseOptionalID(req.CategoryID)
	if err != nil {
		return nil, err
	}

	var (
		product       *model.Product
		oldCategoryID *uuid.UUID
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err = s.productRepo.FindByID(txCtx, productID)
		if err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		oldCategoryID = product.CategoryID

		sku := strings.TrimSpace(req.SKU)
		if sku != product.SKU {
			if err := s.ensureSKUFree(txCtx, sku, &productID); err != nil {
				return err
			}
		}
		if err := s.ensureCategory(txCtx, categoryID); err != nil {
			return err
		}

		product.SKU = sku
		product.Name = strings.TrimSpace(req.Name)
		product.Description = req.Description
		product.CategoryID = categoryID
		if err := s.productRepo.Update(txCtx, product); err != nil {
			return fmt.Errorf("failed to update product: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateProduct, product.ID.String(), product.Name, req)
	})
	if err != nil {
		return nil, err
	}

	keys := []string{cache.ProductKey(productID.String())}
	for _, cid := range []*uuid.UUID{oldCategoryID, categoryID} {
		if cid != nil {
			keys = append(keys, cache.CategoryKey(cid.String()))
		}
	}
	invalidate(ctx, s.cache, keys...)

	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, userID string, id string) error {
	productID, err := parseID(id)
	if err != nil {
		return err
	}

	var categoryID *uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, productID)
		if err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		categoryID = product.CategoryID

		variants, err := s.variantRepo.CountByProduct(txCtx, productID)
		if err != nil {
			return fmt.Errorf("failed to count variants: %w", err)
		}
		if variants > 0 {
			return ErrProductHasVariants
		}

		if err := s.productRepo.Delete(txCtx, productID); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteProduct, product.ID.String(), product.Name, map[string]bool{"deleted": true})
	})
	if err != nil {
		return err
	}

	keys := []string{cache.ProductKey(productID.String())}
	if categoryID != nil {
		keys = append(keys, cache.CategoryKey(categoryID.String()))
	}
	invalidate(ctx, s.cache, keys...)
	return nil
}

// ensureSKUFree fails when another product already uses sku
func (s *productService) ensureSKUFree(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	existing, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to check product sku: %w", err)
	}
	if excludeID != nil && existing.ID == *excludeID {
		return nil
	}
	return ErrDuplicateProductSKU.Withf("Product with SKU %s already exists", sku)
}

func (s *productService) ensureCategory(ctx context.Context, categoryID *uuid.UUID) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
		if isNotFound(err) {
			return ErrCategoryNotFound
		}
		return fmt.Errorf("failed to load category: %w", err)
	}
	return nil
}
