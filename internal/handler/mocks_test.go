package handler

import (
	"context"

	"stockwise/internal/model"
	"stockwise/internal/service"

	"github.com/stretchr/testify/mock"
)

func first[T any](args mock.Arguments) T {
	v, _ := args.Get(0).(T)
	return v
}

type mockCategoryService struct{ mock.Mock }

func (m *mockCategoryService) CreateCategory(_ context.Context, userID string, req service.CreateCategoryRequest) (*model.Category, error) {
	args := m.Called(userID, req)
	return first[*model.Category](args), args.Error(1)
}

func (m *mockCategoryService) ListCategories(_ context.Context, flat bool) ([]model.Category, error) {
	args := m.Called(flat)
	return first[[]model.Category](args), args.Error(1)
}

func (m *mockCategoryService) GetCategory(_ context.Context, id string) (*model.Category, error) {
	args := m.Called(id)
	return first[*model.Category](args), args.Error(1)
}

func (m *mockCategoryService) UpdateCategory(_ context.Context, userID, id string, req service.UpdateCategoryRequest) (*model.Category, error) {
	args := m.Called(userID, id, req)
	return first[*model.Category](args), args.Error(1)
}

func (m *mockCategoryService) DeleteCategory(_ context.Context, userID, id string) error {
	return m.Called(userID, id).Error(0)
}

type mockVariantService struct{ mock.Mock }

func (m *mockVariantService) CreateVariant(_ context.Context, userID, productID string, req service.CreateVariantRequest) (*model.ProductVariant, error) {
	args := m.Called(userID, productID, req)
	return first[*model.ProductVariant](args), args.Error(1)
}

func (m *mockVariantService) ListVariants(_ context.Context, productID string) ([]model.ProductVariant, error) {
	args := m.Called(productID)
	return first[[]model.ProductVariant](args), args.Error(1)
}

func (m *mockVariantService) GetVariant(_ context.Context, id string) (*service.VariantDetail, error) {
	args := m.Called(id)
	return first[*service.VariantDetail](args), args.Error(1)
}

func (m *mockVariantService) UpdateVariant(_ context.Context, userID, id string, req service.UpdateVariantRequest) (*model.ProductVariant, error) {
	args := m.Called(userID, id, req)
	return first[*model.ProductVariant](args), args.Error(1)
}

func (m *mockVariantService) DeleteVariant(_ context.Context, userID, id string) error {
	return m.Called(userID, id).Error(0)
}

type mockInventoryService struct{ mock.Mock }

func (m *mockInventoryService) AdjustInventory(_ context.Context, sessionUserID, variantID string, req service.AdjustInventoryRequest) (*service.AdjustInventoryResponse, error) {
	args := m.Called(sessionUserID, variantID, req)
	return first[*service.AdjustInventoryResponse](args), args.Error(1)
}

func (m *mockInventoryService) GetInventoryHistory(_ context.Context, variantID string, page, limit int) ([]service.HistoryEntry, int64, error) {
	args := m.Called(variantID, page, limit)
	return first[[]service.HistoryEntry](args), args.Get(1).(int64), args.Error(2)
}

func (m *mockInventoryService) ListLowStock(_ context.Context, page, limit int) ([]model.LowStockItem, int64, error) {
	args := m.Called(page, limit)
	return first[[]model.LowStockItem](args), args.Get(1).(int64), args.Error(2)
}

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) CreateOrder(_ context.Context, userID string, req service.CreateOrderRequest) (*model.Order, error) {
	args := m.Called(userID, req)
	return first[*model.Order](args), args.Error(1)
}

func (m *mockOrderService) ListOrders(_ context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	args := m.Called(status, page, limit)
	return first[[]model.Order](args), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderService) GetOrder(_ context.Context, id string) (*model.Order, error) {
	args := m.Called(id)
	return first[*model.Order](args), args.Error(1)
}

func (m *mockOrderService) UpdateOrderStatus(_ context.Context, userID, id, status string) (*model.Order, error) {
	args := m.Called(userID, id, status)
	return first[*model.Order](args), args.Error(1)
}

type mockAuditService struct{ mock.Mock }

func (m *mockAuditService) GetAuditLogs(_ context.Context, page, limit int) ([]service.AuditLogResponse, int64, error) {
	args := m.Called(page, limit)
	return first[[]service.AuditLogResponse](args), args.Get(1).(int64), args.Error(2)
}

type mockUserService struct{ mock.Mock }

func (m *mockUserService) Register(_ context.Context, req service.RegisterRequest) (*service.AuthResponse, error) {
	args := m.Called(req)
	return first[*service.AuthResponse](args), args.Error(1)
}

func (m *mockUserService) Login(_ context.Context, req service.LoginRequest) (*service.AuthResponse, error) {
	args := m.Called(req)
	return first[*service.AuthResponse](args), args.Error(1)
}

func (m *mockUserService) Refresh(_ context.Context, refreshToken string) (*service.AuthResponse, error) {
	args := m.Called(refreshToken)
	return first[*service.AuthResponse](args), args.Error(1)
}

func (m *mockUserService) Logout(_ context.Context, refreshToken string) error {
	return m.Called(refreshToken).Error(0)
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*service.UserResponse, error) {
	args := m.Called(id)
	return first[*service.UserResponse](args), args.Error(1)
}

func (m *mockUserService) ListUsers(_ context.Context, page, limit int) ([]service.UserResponse, int64, error) {
	args := m.Called(page, limit)
	return first[[]service.UserResponse](args), args.Get(1).(int64), args.Error(2)
}

func (m *mockUserService) UpdateRole(_ context.Context, actorID, id, role string) (*service.UserResponse, error) {
	args := m.Called(actorID, id, role)
	return first[*service.UserResponse](args), args.Error(1)
}

func (m *mockUserService) EnsureAdmin(_ context.Context, email, password string) error {
	return m.Called(email, password).Error(0)
}

type mockProductService struct{ mock.Mock }

func (m *mockProductService) CreateProduct(_ context.Context, userID string, req service.CreateProductRequest) (*model.Product, error) {
	args := m.Called(userID, req)
	return first[*model.Product](args), args.Error(1)
}

func (m *mockProductService) ListProducts(_ context.Context, params service.ListProductsParams) ([]model.Product, int64, error) {
	args := m.Called(params)
	return first[[]model.Product](args), args.Get(1).(int64), args.Error(2)
}

func (m *mockProductService) GetProduct(_ context.Context, id string) (*model.Product, error) {
	args := m.Called(id)
	return first[*model.Product](args), args.Error(1)
}

func (m *mockProductService) UpdateProduct(_ context.Context, userID, id string, req service.UpdateProductRequest) (*model.Product, error) {
	args := m.Called(userID, id, req)
	return first[*model.Product](args), args.Error(1)
}

func (m *mockProductService) DeleteProduct(_ context.Context, userID, id string) error {
	return m.Called(userID, id).Error(0)
}

type mockStatisticsService struct{ mock.Mock }

func (m *mockStatisticsService) GetDashboard(_ context.Context) (*model.Dashboard, error) {
	args := m.Called()
	return first[*model.Dashboard](args), args.Error(1)
}
