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

// initialStockReason labels the ledger row written when a variant is created with stock
const initialStockReason = "Initial stock"

// DTOs
type VariantInventoryInput struct {
	Quantity          int  `json:"quantity" binding:"min=0"`
	LowStockThreshold *int `json:"lowStockThreshold" binding:"omitempty,min=0"`
}

type CreateVariantRequest struct {
	SKU        string                 `json:"sku" binding:"required,min=3,max=50"`
	Attributes model.Attributes       `json:"attributes" binding:"required"`
	Inventory  *VariantInventoryInput `json:"inventory"`
}

// UpdateVariantRequest changes only the fields that are present
type UpdateVariantRequest struct {
	SKU        string           `json:"sku" binding:"omitempty,min=3,max=50"`
	Attributes model.Attributes `json:"attributes"`
}

// ProductSummary identifies the parent product of a variant
type ProductSummary struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	SKU        string     `json:"sku"`
	CategoryID *uuid.UUID `json:"categoryId"`
}

type VariantDetail struct {
	ID               uuid.UUID        `json:"id"`
	SKU              string           `json:"sku"`
	ProductID        uuid.UUID        `json:"productId"`
	Attributes       model.Attributes `json:"attributes"`
	Product          *ProductSummary  `json:"product"`
	Inventory        *model.Inventory `json:"inventory"`
	InventoryHistory []HistoryEntry   `json:"inventoryHistory"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

type VariantService interface {
	CreateVariant(ctx context.Context, userID string, productID string, req CreateVariantRequest) (*model.ProductVariant, error)
	ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error)
	GetVariant(ctx context.Context, id string) (*VariantDetail, error)
	UpdateVariant(ctx context.Context, userID string, id string, req UpdateVariantRequest) (*model.ProductVariant, error)
	DeleteVariant(ctx context.Context, userID string, id string) error
}

type variantService struct {
	variantRepo   repository.VariantRepository
	productRepo   repository.ProductRepository
	inventoryRepo repository.InventoryRepository
	orderRepo     repository.OrderRepository
	auditRepo     repository.AuditRepository
	txManager     repository.TransactionManager
	cache         cache.Cache
}

func NewVariantService(
	variantRepo repository.VariantRepository,
	productRepo repository.ProductRepository,
	inventoryRepo repository.InventoryRepository,
	orderRepo repository.OrderRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	c cache.Cache,
) VariantService {
	return &variantService{
		variantRepo:   variantRepo,
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		orderRepo:     orderRepo,
		auditRepo:     auditRepo,
		txManager:     txManager,
		cache:         c,
	}
}

func (s *variantService) CreateVariant(ctx context.Context, userID string, productID string, req CreateVariantRequest) (*model.ProductVariant, error) {
	pid, err := parseID(productID)
	if err != nil {
		return nil, err
	}

	attributes := req.Attributes
	if attributes == nil {
		attributes = model.Attributes{}
	}
	variant := &model.ProductVariant{
		SKU:        strings.TrimSpace(req.SKU),
		ProductID:  pid,
		Attributes: attributes,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.productRepo.FindByID(txCtx, pid); err != nil {
			if isNotFound(err) {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to load product: %w", err)
		}
		if err := s.ensureSKUFree(txCtx, variant.SKU, nil); err != nil {
			return err
		}

		if err := s.variantRepo.Create(txCtx, variant); err != nil {
			return fmt.Errorf("failed to create variant: %w", err)
		}

		if req.Inventory != nil {
			// the actor is only recorded when stock actually moves
			var actor uuid.UUID
			if req.Inventory.Quantity != 0 {
				parsed, err := uuid.Parse(userID)
				if err != nil {
					return ErrActorNotFound
				}
				actor = parsed
			}
			inventory, _, err := applyAdjustment(txCtx, s.inventoryRepo, variant.ID, actor,
				req.Inventory.Quantity, req.Inventory.LowStockThreshold, initialStockReason)
			if err != nil {
				return err
			}
			variant.Inventory = inventory
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateVariant, variant.ID.String(), variant.SKU, req)
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, cache.ProductKey(pid.String()))
	return variant, nil
}

func (s *variantService) ListVariants(ctx context.Context, productID string) ([]model.ProductVariant, error) {
	pid, err := parseID(productID)
	if err != nil {
		return nil, err
	}

	if _, err := s.productRepo.FindByID(ctx, pid); err != nil {
		if isNotFound(err) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	variants, err := s.variantRepo.ListByProduct(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants: %w", err)
	}
	if variants == nil {
		variants = []model.ProductVariant{}
	}
	return variants, nil
}

func (s *variantService) GetVariant(ctx context.Context, id string) (*VariantDetail, error) {
	vid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	variant, err := s.variantRepo.FindByIDWithDetails(ctx, vid)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrVariantNotFound
		}
		return nil, fmt.Errorf("failed to load variant: %w", err)
	}

	detail := &VariantDetail{
		ID:               variant.ID,
		SKU:              variant.SKU,
		ProductID:        variant.ProductID,
		Attributes:       variant.Attributes,
		Inventory:        variant.Inventory,
		InventoryHistory: toHistoryEntries(variant.History),
		CreatedAt:        variant.CreatedAt,
		UpdatedAt:        variant.UpdatedAt,
	}
	if variant.Product != nil {
		detail.Product = &ProductSummary{
			ID:         variant.Product.ID,
			Name:       variant.Product.Name,
			SKU:        variant.Product.SKU,
			CategoryID: variant.Product.CategoryID,
		}
	}
	return detail, nil
}

func (s *variantService) UpdateVariant(ctx context.Context, userID string, id string, req UpdateVariantRequest) (*model.ProductVariant, error) {
	vid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var variant *model.ProductVariant
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err = s.variantRepo.FindByID(txCtx, vid)
		if err != nil {
			if isNotFound(err) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("failed to load variant: %w", err)
		}

		if sku := strings.TrimSpace(req.SKU); sku != "" && sku != variant.SKU {
			if err := s.ensureSKUFree(txCtx, sku, &vid); err != nil {
				return err
			}
			variant.SKU = sku
		}
		if req.Attributes != nil {
			variant.Attributes = req.Attributes
		}

		if err := s.variantRepo.Update(txCtx, variant); err != nil {
			return fmt.Errorf("failed to update variant: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateVariant, variant.ID.String(), variant.SKU, req)
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, cache.ProductKey(variant.ProductID.String()))
	return variant, nil
}

func (s *variantService) DeleteVariant(ctx context.Context, userID string, id string) error {
	vid, err := parseID(id)
	if err != nil {
		return err
	}

	var productID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err := s.variantRepo.FindByID(txCtx, vid)
		if err != nil {
			if isNotFound(err) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("failed to load variant: %w", err)
		}
		productID = variant.ProductID

		lines, err := s.orderRepo.CountItemsByVariant(txCtx, vid)
		if err != nil {
			return fmt.Errorf("failed to count order lines: %w", err)
		}
		if lines > 0 {
			return ErrVariantHasOrders
		}

		if err := s.inventoryRepo.DeleteHistoryByVariantID(txCtx, vid); err != nil {
			return fmt.Errorf("failed to delete inventory history: %w", err)
		}
		if err := s.inventoryRepo.DeleteByVariantID(txCtx, vid); err != nil {
			return fmt.Errorf("failed to delete inventory: %w", err)
		}
		if err := s.variantRepo.Delete(txCtx, vid); err != nil {
			return fmt.Errorf("failed to delete variant: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionDeleteVariant, variant.ID.String(), variant.SKU, map[string]bool{"deleted": true})
	})
	if err != nil {
		return err
	}

	invalidate(ctx, s.cache, cache.ProductKey(productID.String()))
	return nil
}

func (s *variantService) ensureSKUFree(ctx context.Context, sku string, excludeID *uuid.UUID) error {
	existing, err := s.variantRepo.FindBySKU(ctx, sku)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to check variant sku: %w", err)
	}
	if excludeID != nil && existing.ID == *excludeID {
		return nil
	}
	return ErrDuplicateVariantSKU.Withf("Variant with SKU %s already exists", sku)
}
