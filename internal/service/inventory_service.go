package service

import (
	"context"
	"fmt"
	"time"

	"stockwise/internal/cache"
	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DTOs
type AdjustInventoryRequest struct {
	Quantity          *int   `json:"quantity" binding:"required,min=0"`
	LowStockThreshold *int   `json:"lowStockThreshold" binding:"omitempty,min=0"`
	Reason            string `json:"reason" binding:"max=255"`
	// UserID overrides the session user as the recorded actor
	UserID string `json:"userId" binding:"omitempty,uuid"`
}

type AdjustInventoryResponse struct {
	Inventory      *model.Inventory `json:"inventory"`
	QuantityChange int              `json:"quantityChange"`
}

// HistoryEntry is a ledger row annotated with its actor
type HistoryEntry struct {
	ID             uuid.UUID     `json:"id"`
	VariantID      uuid.UUID     `json:"variantId"`
	QuantityChange int           `json:"quantityChange"`
	QuantityAfter  int           `json:"quantityAfter"`
	Reason         string        `json:"reason"`
	CreatedAt      time.Time     `json:"createdAt"`
	User           model.UserRef `json:"user"`
}

// InventoryEvent is the payload broadcast after an adjustment commits
type InventoryEvent struct {
	VariantID         uuid.UUID `json:"variantId"`
	ProductID         uuid.UUID `json:"productId"`
	SKU               string    `json:"sku"`
	Quantity          int       `json:"quantity"`
	QuantityChange    int       `json:"quantityChange"`
	LowStockThreshold int       `json:"lowStockThreshold"`
}

type InventoryService interface {
	AdjustInventory(ctx context.Context, sessionUserID string, variantID string, req AdjustInventoryRequest) (*AdjustInventoryResponse, error)
	GetInventoryHistory(ctx context.Context, variantID string, page, limit int) ([]HistoryEntry, int64, error)
	ListLowStock(ctx context.Context, page, limit int) ([]model.LowStockItem, int64, error)
}

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
	variantRepo   repository.VariantRepository
	userRepo      repository.UserRepository
	txManager     repository.TransactionManager
	cache         cache.Cache
	events        EventPublisher
}

func NewInventoryService(
	inventoryRepo repository.InventoryRepository,
	variantRepo repository.VariantRepository,
	userRepo repository.UserRepository,
	txManager repository.TransactionManager,
	c cache.Cache,
	events EventPublisher,
) InventoryService {
	return &inventoryService{
		inventoryRepo: inventoryRepo,
		variantRepo:   variantRepo,
		userRepo:      userRepo,
		txManager:     txManager,
		cache:         c,
		events:        events,
	}
}

func (s *inventoryService) AdjustInventory(ctx context.Context, sessionUserID string, variantID string, req AdjustInventoryRequest) (*AdjustInventoryResponse, error) {
	vid, err := parseID(variantID)
	if err != nil {
		return nil, err
	}
	if req.Quantity == nil || *req.Quantity < 0 {
		return nil, newError(KindValidation, "INVALID_QUANTITY", "Quantity must be a non-negative integer")
	}

	actor := sessionUserID
	if req.UserID != "" {
		if req.UserID != sessionUserID {
			zerolog.Ctx(ctx).Warn().
				Str("session_user", sessionUserID).
				Str("body_user", req.UserID).
				Msg("inventory adjustment recorded for a different user than the session")
		}
		actor = req.UserID
	}

	var (
		variant *model.ProductVariant
		result  *AdjustInventoryResponse
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		variant, err = s.variantRepo.FindByID(txCtx, vid)
		if err != nil {
			if isNotFound(err) {
				return ErrVariantNotFound
			}
			return fmt.Errorf("failed to load variant: %w", err)
		}

		actorID, err := s.resolveActor(txCtx, actor)
		if err != nil {
			return err
		}

		inventory, delta, err := applyAdjustment(txCtx, s.inventoryRepo, vid, actorID, *req.Quantity, req.LowStockThreshold, req.Reason)
		if err != nil {
			return err
		}
		result = &AdjustInventoryResponse{Inventory: inventory, QuantityChange: delta}
		return nil
	})
	if err != nil {
		return nil, err
	}

	invalidate(ctx, s.cache, cache.ProductKey(variant.ProductID.String()))
	s.publish(variant, result)

	zerolog.Ctx(ctx).Info().
		Str("variant_id", vid.String()).
		Int("quantity", result.Inventory.Quantity).
		Int("quantity_change", result.QuantityChange).
		Msg("inventory adjusted")

	return result, nil
}

func (s *inventoryService) resolveActor(ctx context.Context, userID string) (uuid.UUID, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, ErrActorNotFound
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		if isNotFound(err) {
			return uuid.Nil, ErrActorNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to load actor: %w", err)
	}
	return id, nil
}

func (s *inventoryService) publish(variant *model.ProductVariant, result *AdjustInventoryResponse) {
	event := InventoryEvent{
		VariantID:         variant.ID,
		ProductID:         variant.ProductID,
		SKU:               variant.SKU,
		Quantity:          result.Inventory.Quantity,
		QuantityChange:    result.QuantityChange,
		LowStockThreshold: result.Inventory.LowStockThreshold,
	}
	s.events.Publish(EventInventoryAdjusted, event)
	if result.Inventory.IsLowStock() {
		s.events.Publish(EventInventoryLowStock, event)
	}
}

// applyAdjustment sets a variant's stock to quantity and appends a ledger row for
// the difference. It must run inside a transaction; the inventory row is locked.
func applyAdjustment(
	ctx context.Context,
	repo repository.InventoryRepository,
	variantID uuid.UUID,
	actorID uuid.UUID,
	quantity int,
	threshold *int,
	reason string,
) (*model.Inventory, int, error) {
	inventory, err := repo.FindByVariantIDForUpdate(ctx, variantID)
	if err != nil && !isNotFound(err) {
		return nil, 0, fmt.Errorf("failed to lock inventory: %w", err)
	}

	current := 0
	if inventory != nil {
		current = inventory.Quantity
	}
	delta := quantity - current

	if inventory == nil {
		inventory = &model.Inventory{
			VariantID:         variantID,
			Quantity:          quantity,
			LowStockThreshold: model.DefaultLowStockThreshold,
		}
		if threshold != nil {
			inventory.LowStockThreshold = *threshold
		}
		if err := repo.Create(ctx, inventory); err != nil {
			return nil, 0, fmt.Errorf("failed to create inventory: %w", err)
		}
	} else {
		inventory.Quantity = quantity
		if threshold != nil {
			inventory.LowStockThreshold = *threshold
		}
		if err := repo.Update(ctx, inventory); err != nil {
			return nil, 0, fmt.Errorf("failed to update inventory: %w", err)
		}
	}

	if delta != 0 {
		if reason == "" {
			direction := "increase"
			if delta < 0 {
				direction = "decrease"
			}
			reason = fmt.Sprintf("Manual adjustment (%s)", direction)
		}
		entry := &model.InventoryHistory{
			VariantID:      variantID,
			UserID:         actorID,
			QuantityChange: delta,
			QuantityAfter:  quantity,
			Reason:         reason,
		}
		if err := repo.AppendHistory(ctx, entry); err != nil {
			return nil, 0, fmt.Errorf("failed to record inventory history: %w", err)
		}
	}

	return inventory, delta, nil
}

func (s *inventoryService) GetInventoryHistory(ctx context.Context, variantID string, page, limit int) ([]HistoryEntry, int64, error) {
	vid, err := parseID(variantID)
	if err != nil {
		return nil, 0, err
	}

	if _, err := s.variantRepo.FindByID(ctx, vid); err != nil {
		if isNotFound(err) {
			return nil, 0, ErrVariantNotFound
		}
		return nil, 0, fmt.Errorf("failed to load variant: %w", err)
	}

	rows, total, err := s.inventoryRepo.ListHistory(ctx, vid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory history: %w", err)
	}

	return toHistoryEntries(rows), total, nil
}

func (s *inventoryService) ListLowStock(ctx context.Context, page, limit int) ([]model.LowStockItem, int64, error) {
	items, total, err := s.inventoryRepo.ListLowStock(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list low stock variants: %w", err)
	}
	if items == nil {
		items = []model.LowStockItem{}
	}
	return items, total, nil
}

func toHistoryEntries(rows []model.InventoryHistory) []HistoryEntry {
	res := make([]HistoryEntry, 0, len(rows))
	for _, h := range rows {
		entry := HistoryEntry{
			ID:             h.ID,
			VariantID:      h.VariantID,
			QuantityChange: h.QuantityChange,
			QuantityAfter:  h.QuantityAfter,
			Reason:         h.Reason,
			CreatedAt:      h.CreatedAt,
			User:           model.UserRef{ID: h.UserID},
		}
		if h.User != nil {
			entry.User.Name = h.User.Name
		}
		res = append(res, entry)
	}
	return res
}
