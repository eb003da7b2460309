package service

import (
	"context"
	"fmt"
	"strings"

	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs
type OrderItemRequest struct {
	VariantID string          `json:"variantId" binding:"required,uuid"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

type CreateOrderRequest struct {
	OrderNumber string             `json:"orderNumber" binding:"required,max=100"`
	Channel     string             `json:"channel" binding:"max=50"`
	Items       []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*model.Order, error)
	ListOrders(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, userID string, id string, status string) (*model.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	variantRepo repository.VariantRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	variantRepo repository.VariantRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		variantRepo: variantRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *orderService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*model.Order, error) {
	channel := strings.TrimSpace(req.Channel)
	if channel == "" {
		channel = model.OrderChannelManual
	}

	order := &model.Order{
		OrderNumber: strings.TrimSpace(req.OrderNumber),
		Channel:     strings.ToUpper(channel),
		Status:      model.OrderStatusPending,
		TotalAmount: decimal.Zero,
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	for _, itemReq := range req.Items {
		vid, err := parseID(itemReq.VariantID)
		if err != nil {
			return nil, err
		}
		if itemReq.Price.IsNegative() {
			return nil, ErrNegativePrice
		}
		items = append(items, model.OrderItem{
			VariantID: vid,
			Quantity:  itemReq.Quantity,
			Price:     itemReq.Price,
		})
		order.TotalAmount = order.TotalAmount.Add(itemReq.Price.Mul(decimal.NewFromInt(int64(itemReq.Quantity))))
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.orderRepo.FindByNumber(txCtx, order.OrderNumber); err == nil {
			return ErrDuplicateOrderNumber.Withf("Order %s already exists", order.OrderNumber)
		} else if !isNotFound(err) {
			return fmt.Errorf("failed to check order number: %w", err)
		}

		for _, item := range items {
			if _, err := s.variantRepo.FindByID(txCtx, item.VariantID); err != nil {
				if isNotFound(err) {
					return ErrVariantNotFound.Withf("Variant not found: %s", item.VariantID)
				}
				return fmt.Errorf("failed to load variant %s: %w", item.VariantID, err)
			}
		}

		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			if err := s.orderRepo.CreateItem(txCtx, &items[i]); err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
		}
		order.Items = items

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionCreateOrder, order.ID.String(), order.OrderNumber, map[string]interface{}{
			"orderNumber": order.OrderNumber,
			"channel":     order.Channel,
			"totalAmount": order.TotalAmount,
			"items":       len(items),
		})
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	if status != "" && !model.IsValidOrderStatus(status) {
		return nil, 0, ErrInvalidOrderStatus
	}

	orders, total, err := s.orderRepo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, total, nil
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.findOrder(ctx, orderID)
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, userID string, id string, status string) (*model.Order, error) {
	orderID, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if !model.IsValidOrderStatus(status) {
		return nil, ErrInvalidOrderStatus
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.findOrder(txCtx, orderID)
		if err != nil {
			return err
		}

		if err := s.orderRepo.UpdateStatus(txCtx, orderID, status); err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, userID, model.ActionUpdateOrder, order.ID.String(), order.OrderNumber, map[string]string{
			"from": order.Status,
			"to":   status,
		})
	})
	if err != nil {
		return nil, err
	}

	return s.findOrder(ctx, orderID)
}

func (s *orderService) findOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByIDWithItems(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return order, nil
}
