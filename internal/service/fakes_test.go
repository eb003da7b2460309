package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"stockwise/internal/model"
	"stockwise/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for the database. Repositories below share
// one store; memTx snapshots it so a failed RunInTx leaves no partial rows.
type memStore struct {
	mu          sync.Mutex
	users       map[uuid.UUID]model.User
	tokens      map[string]model.RefreshToken
	categories  map[uuid.UUID]model.Category
	products    map[uuid.UUID]model.Product
	variants    map[uuid.UUID]model.ProductVariant
	inventories map[uuid.UUID]model.Inventory // keyed by variant id
	history     []model.InventoryHistory
	orders      map[uuid.UUID]model.Order
	orderItems  []model.OrderItem
	audits      []model.AuditLog
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		users:       map[uuid.UUID]model.User{},
		tokens:      map[string]model.RefreshToken{},
		categories:  map[uuid.UUID]model.Category{},
		products:    map[uuid.UUID]model.Product{},
		variants:    map[uuid.UUID]model.ProductVariant{},
		inventories: map[uuid.UUID]model.Inventory{},
		orders:      map[uuid.UUID]model.Order{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns a strictly increasing timestamp so ordering by created_at is stable
func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *memStore) snapshot() *memStore {
	cp := newMemStore()
	for k, v := range s.users {
		cp.users[k] = v
	}
	for k, v := range s.tokens {
		cp.tokens[k] = v
	}
	for k, v := range s.categories {
		cp.categories[k] = v
	}
	for k, v := range s.products {
		cp.products[k] = v
	}
	for k, v := range s.variants {
		cp.variants[k] = v
	}
	for k, v := range s.inventories {
		cp.inventories[k] = v
	}
	for k, v := range s.orders {
		cp.orders[k] = v
	}
	cp.history = append(cp.history, s.history...)
	cp.orderItems = append(cp.orderItems, s.orderItems...)
	cp.audits = append(cp.audits, s.audits...)
	cp.clock = s.clock
	return cp
}

func (s *memStore) restore(from *memStore) {
	s.users, s.tokens = from.users, from.tokens
	s.categories, s.products, s.variants = from.categories, from.products, from.variants
	s.inventories, s.history = from.inventories, from.history
	s.orders, s.orderItems, s.audits = from.orders, from.orderItems, from.audits
}

func newID(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}
	return id
}

// --- transactions ---

type memTx struct {
	store *memStore
}

func (t *memTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	t.store.mu.Lock()
	before := t.store.snapshot()
	t.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.store.mu.Lock()
		t.store.restore(before)
		t.store.mu.Unlock()
		return err
	}
	return nil
}

// --- users ---

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	user.ID = newID(user.ID)
	user.CreatedAt = r.s.tick()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	return paginate(all, page, limit), int64(len(all)), nil
}

func (r *memUserRepo) Update(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.users[user.ID] = *user
	return nil
}

func (r *memUserRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u := r.s.users[id]
	u.LastLogin = &at
	r.s.users[id] = u
	return nil
}

func (r *memUserRepo) SaveRefreshToken(_ context.Context, token *model.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.ID = newID(token.ID)
	r.s.tokens[token.Token] = *token
	return nil
}

func (r *memUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r *memUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, token)
	return nil
}

func (r *memUserRepo) DeleteExpiredRefreshTokens(_ context.Context, userID uuid.UUID, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.s.tokens {
		if t.UserID == userID && t.ExpiresAt.Before(now) {
			delete(r.s.tokens, k)
		}
	}
	return nil
}

// --- categories ---

type memCategoryRepo struct{ s *memStore }

func (r *memCategoryRepo) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = newID(c.ID)
	c.CreatedAt = r.s.tick()
	c.UpdatedAt = c.CreatedAt
	r.s.categories[c.ID] = stripCategory(*c)
	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.categories[c.ID]
	stored.Name, stored.Slug, stored.ParentID = c.Name, c.Slug, c.ParentID
	stored.UpdatedAt = r.s.tick()
	r.s.categories[c.ID] = stored
	return nil
}

func (r *memCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.categories, id)
	return nil
}

func (r *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *memCategoryRepo) FindByIDWithRelations(_ context.Context, id uuid.UUID) (*model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if c.ParentID != nil {
		if p, ok := r.s.categories[*c.ParentID]; ok {
			c.Parent = &p
		}
	}
	c.Children = r.childrenLocked(id)
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == id {
			c.Products = append(c.Products, model.Product{ID: p.ID, Name: p.Name, SKU: p.SKU, CategoryID: p.CategoryID})
		}
	}
	sort.Slice(c.Products, func(i, j int) bool { return c.Products[i].Name < c.Products[j].Name })
	if len(c.Products) > 10 {
		c.Products = c.Products[:10]
	}
	return &c, nil
}

func (r *memCategoryRepo) childrenLocked(id uuid.UUID) []model.Category {
	var children []model.Category
	for _, c := range r.s.categories {
		if c.ParentID != nil && *c.ParentID == id {
			children = append(children, c)
		}
	}
	sortCategories(children)
	return children
}

func (r *memCategoryRepo) ExistsSibling(_ context.Context, name string, parentID *uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, c := range r.s.categories {
		if c.Name != name || !sameParent(c.ParentID, parentID) {
			continue
		}
		if excludeID != nil && c.ID == *excludeID {
			continue
		}
		return true, nil
	}
	return false, nil
}

func (r *memCategoryRepo) GetParentID(_ context.Context, id uuid.UUID) (*uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c.ParentID, nil
}

func (r *memCategoryRepo) CountChildren(_ context.Context, id uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.childrenLocked(id))), nil
}

func (r *memCategoryRepo) ListChildIDs(_ context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, c := range r.childrenLocked(id) {
		ids = append(ids, c.ID)
	}
	return ids, nil
}

func (r *memCategoryRepo) List(_ context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	all := make([]model.Category, 0, len(r.s.categories))
	for _, c := range r.s.categories {
		all = append(all, c)
	}
	sortCategories(all)
	return all, nil
}

func (r *memCategoryRepo) ListRootsWithChildren(_ context.Context) ([]model.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var roots []model.Category
	for _, c := range r.s.categories {
		if c.ParentID == nil {
			c.Children = r.childrenLocked(c.ID)
			roots = append(roots, c)
		}
	}
	sortCategories(roots)
	return roots, nil
}

func (r *memCategoryRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.categories)), nil
}

func stripCategory(c model.Category) model.Category {
	c.Parent, c.Children, c.Products = nil, nil, nil
	return c
}

func sortCategories(cs []model.Category) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Name < cs[j].Name })
}

// --- products ---

type memProductRepo struct{ s *memStore }

func (r *memProductRepo) Create(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = newID(p.ID)
	p.CreatedAt = r.s.tick()
	p.UpdatedAt = p.CreatedAt
	stored := *p
	stored.Category, stored.Variants = nil, nil
	r.s.products[p.ID] = stored
	return nil
}

func (r *memProductRepo) Update(_ context.Context, p *model.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.products[p.ID]
	stored.SKU, stored.Name, stored.Description, stored.CategoryID = p.SKU, p.Name, p.Description, p.CategoryID
	stored.UpdatedAt = r.s.tick()
	r.s.products[p.ID] = stored
	return nil
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.products, id)
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r *memProductRepo) FindByIDWithDetails(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if p.CategoryID != nil {
		if c, ok := r.s.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	for _, v := range r.s.variants {
		if v.ProductID == id {
			if inv, ok := r.s.inventories[v.ID]; ok {
				v.Inventory = &inv
			}
			p.Variants = append(p.Variants, v)
		}
	}
	sort.Slice(p.Variants, func(i, j int) bool { return p.Variants[i].SKU < p.Variants[j].SKU })
	return &p, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, sku string) (*model.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memProductRepo) List(_ context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	needle := strings.ToLower(f.Search)
	var out []model.Product
	for _, p := range r.s.products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) && !strings.Contains(strings.ToLower(p.SKU), needle) {
			continue
		}
		if f.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *f.CategoryID) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Page, f.Limit), int64(len(out)), nil
}

func (r *memProductRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func (r *memProductRepo) ListIDsByCategory(_ context.Context, categoryID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []uuid.UUID
	for _, p := range r.s.products {
		if p.CategoryID != nil && *p.CategoryID == categoryID {
			ids = append(ids, p.ID)
		}
	}
	return ids, nil
}

func (r *memProductRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.products)), nil
}

// --- variants ---

type memVariantRepo struct{ s *memStore }

func (r *memVariantRepo) Create(_ context.Context, v *model.ProductVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v.ID = newID(v.ID)
	v.CreatedAt = r.s.tick()
	v.UpdatedAt = v.CreatedAt
	stored := *v
	stored.Product, stored.Inventory, stored.History = nil, nil, nil
	r.s.variants[v.ID] = stored
	return nil
}

func (r *memVariantRepo) Update(_ context.Context, v *model.ProductVariant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := r.s.variants[v.ID]
	stored.SKU, stored.Attributes = v.SKU, v.Attributes
	stored.UpdatedAt = r.s.tick()
	r.s.variants[v.ID] = stored
	return nil
}

func (r *memVariantRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.variants, id)
	return nil
}

func (r *memVariantRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &v, nil
}

func (r *memVariantRepo) FindByIDWithDetails(_ context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if p, ok := r.s.products[v.ProductID]; ok {
		v.Product = &model.Product{ID: p.ID, Name: p.Name, SKU: p.SKU, CategoryID: p.CategoryID}
	}
	if inv, ok := r.s.inventories[id]; ok {
		v.Inventory = &inv
	}
	rows := historyFor(r.s, id)
	if len(rows) > 10 {
		rows = rows[:10]
	}
	v.History = rows
	return &v, nil
}

func (r *memVariantRepo) FindBySKU(_ context.Context, sku string) (*model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range r.s.variants {
		if v.SKU == sku {
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memVariantRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.ProductVariant
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			if inv, ok := r.s.inventories[v.ID]; ok {
				v.Inventory = &inv
			}
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}

func (r *memVariantRepo) CountByProduct(_ context.Context, productID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, v := range r.s.variants {
		if v.ProductID == productID {
			n++
		}
	}
	return n, nil
}

func (r *memVariantRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.variants)), nil
}

// --- inventory ---

type memInventoryRepo struct{ s *memStore }

func (r *memInventoryRepo) FindByVariantIDForUpdate(_ context.Context, variantID uuid.UUID) (*model.Inventory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.inventories[variantID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &inv, nil
}

func (r *memInventoryRepo) Create(_ context.Context, inv *model.Inventory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.ID = newID(inv.ID)
	inv.UpdatedAt = r.s.tick()
	r.s.inventories[inv.VariantID] = *inv
	return nil
}

func (r *memInventoryRepo) Update(_ context.Context, inv *model.Inventory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.UpdatedAt = r.s.tick()
	r.s.inventories[inv.VariantID] = *inv
	return nil
}

func (r *memInventoryRepo) DeleteByVariantID(_ context.Context, variantID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.inventories, variantID)
	return nil
}

func (r *memInventoryRepo) ListLowStock(_ context.Context, page, limit int) ([]model.LowStockItem, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.LowStockItem
	for vid, inv := range r.s.inventories {
		if !inv.IsLowStock() {
			continue
		}
		v := r.s.variants[vid]
		p := r.s.products[v.ProductID]
		out = append(out, model.LowStockItem{
			VariantID: vid, VariantSKU: v.SKU, ProductID: p.ID, ProductName: p.Name, ProductSKU: p.SKU,
			Quantity: inv.Quantity, LowStockThreshold: inv.LowStockThreshold,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity < out[j].Quantity
		}
		return out[i].VariantSKU < out[j].VariantSKU
	})
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *memInventoryRepo) AppendHistory(_ context.Context, entry *model.InventoryHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = newID(entry.ID)
	entry.CreatedAt = r.s.tick()
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r *memInventoryRepo) ListHistory(_ context.Context, variantID uuid.UUID, page, limit int) ([]model.InventoryHistory, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rows := historyFor(r.s, variantID)
	return paginate(rows, page, limit), int64(len(rows)), nil
}

func (r *memInventoryRepo) DeleteHistoryByVariantID(_ context.Context, variantID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	kept := r.s.history[:0:0]
	for _, h := range r.s.history {
		if h.VariantID != variantID {
			kept = append(kept, h)
		}
	}
	r.s.history = kept
	return nil
}

// historyFor returns a variant's ledger newest first with users attached; caller holds the lock
func historyFor(s *memStore, variantID uuid.UUID) []model.InventoryHistory {
	var rows []model.InventoryHistory
	for _, h := range s.history {
		if h.VariantID == variantID {
			if u, ok := s.users[h.UserID]; ok {
				h.User = &u
			}
			rows = append(rows, h)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	return rows
}

// --- orders ---

type memOrderRepo struct{ s *memStore }

func (r *memOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o.ID = newID(o.ID)
	o.CreatedAt = r.s.tick()
	o.UpdatedAt = o.CreatedAt
	stored := *o
	stored.Items = nil
	r.s.orders[o.ID] = stored
	return nil
}

func (r *memOrderRepo) CreateItem(_ context.Context, item *model.OrderItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	item.ID = newID(item.ID)
	r.s.orderItems = append(r.s.orderItems, *item)
	return nil
}

func (r *memOrderRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	o.Items = r.itemsLocked(id)
	return &o, nil
}

func (r *memOrderRepo) itemsLocked(orderID uuid.UUID) []model.OrderItem {
	var items []model.OrderItem
	for _, it := range r.s.orderItems {
		if it.OrderID == orderID {
			items = append(items, it)
		}
	}
	return items
}

func (r *memOrderRepo) FindByNumber(_ context.Context, orderNumber string) (*model.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.orders {
		if o.OrderNumber == orderNumber {
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o := r.s.orders[id]
	o.Status = status
	r.s.orders[id] = o
	return nil
}

func (r *memOrderRepo) List(_ context.Context, status string, page, limit int) ([]model.Order, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Order
	for _, o := range r.s.orders {
		if status != "" && o.Status != status {
			continue
		}
		o.Items = r.itemsLocked(o.ID)
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page, limit), int64(len(out)), nil
}

func (r *memOrderRepo) CountItemsByVariant(_ context.Context, variantID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, it := range r.s.orderItems {
		if it.VariantID == variantID {
			n++
		}
	}
	return n, nil
}

// --- audit ---

type memAuditRepo struct{ s *memStore }

func (r *memAuditRepo) Record(_ context.Context, entry *model.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	entry.ID = newID(entry.ID)
	entry.CreatedAt = r.s.tick()
	r.s.audits = append(r.s.audits, *entry)
	return nil
}

func (r *memAuditRepo) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.AuditLog, 0, len(r.s.audits))
	for i := len(r.s.audits) - 1; i >= 0; i-- {
		l := r.s.audits[i]
		if l.UserID != nil {
			if u, ok := r.s.users[*l.UserID]; ok {
				l.User = &u
			}
		}
		out = append(out, l)
	}
	return paginate(out, page, limit), int64(len(out)), nil
}

// --- statistics ---

type memStatsRepo struct{ s *memStore }

func (r *memStatsRepo) GetStockCounters(_ context.Context) (repository.StockCounters, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var c repository.StockCounters
	for _, inv := range r.s.inventories {
		if inv.IsLowStock() {
			c.LowStock++
		}
		if inv.Quantity == 0 {
			c.OutOfStock++
		}
		c.TotalUnits += int64(inv.Quantity)
	}
	return c, nil
}

func (r *memStatsRepo) GetSales(_ context.Context) (int64, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	total := decimal.Zero
	for _, it := range r.s.orderItems {
		if r.s.orders[it.OrderID].Status == model.OrderStatusCancelled {
			continue
		}
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return int64(len(r.s.orders)), total.String(), nil
}

// --- cache and events ---

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string][]byte{}}
}

func (c *memCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dest)
}

func (c *memCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[key] = raw
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

type publishedEvent struct {
	name string
	data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{name: event, data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.name)
	}
	return out
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = len(items)
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- wiring ---

// testEnv bundles every service over a single in-memory store
type testEnv struct {
	store  *memStore
	cache  *memCache
	events *recordingPublisher

	users      *memUserRepo
	categories CategoryService
	products   ProductService
	variants   VariantService
	inventory  InventoryService
	orders     OrderService
	stats      StatisticsService
	audit      AuditService
}

func newTestEnv() *testEnv {
	s := newMemStore()
	tx := &memTx{store: s}
	c := newMemCache()
	events := &recordingPublisher{}

	userRepo := &memUserRepo{s}
	categoryRepo := &memCategoryRepo{s}
	productRepo := &memProductRepo{s}
	variantRepo := &memVariantRepo{s}
	inventoryRepo := &memInventoryRepo{s}
	orderRepo := &memOrderRepo{s}
	auditRepo := &memAuditRepo{s}

	return &testEnv{
		store:      s,
		cache:      c,
		events:     events,
		users:      userRepo,
		categories: NewCategoryService(categoryRepo, productRepo, auditRepo, tx, c, time.Minute),
		products:   NewProductService(productRepo, categoryRepo, variantRepo, auditRepo, tx, c, time.Minute),
		variants:   NewVariantService(variantRepo, productRepo, inventoryRepo, orderRepo, auditRepo, tx, c),
		inventory:  NewInventoryService(inventoryRepo, variantRepo, userRepo, tx, c, events),
		orders:     NewOrderService(orderRepo, variantRepo, auditRepo, tx),
		stats:      NewStatisticsService(&memStatsRepo{s}, productRepo, variantRepo, categoryRepo),
		audit:      NewAuditService(auditRepo),
	}
}

func (e *testEnv) mustUser(name, role string) model.User {
	u := model.User{Email: strings.ToLower(name) + "@stockwise.com", Name: name, Role: role, PasswordHash: "x"}
	if err := e.users.Create(context.Background(), &u); err != nil {
		panic(err)
	}
	return u
}

func (e *testEnv) historyCount(variantID uuid.UUID) int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	n := 0
	for _, h := range e.store.history {
		if h.VariantID == variantID {
			n++
		}
	}
	return n
}

func (e *testEnv) ledgerSum(variantID uuid.UUID) int {
	e.store.mu.Lock()
	defer e.store.mu.Unlock()
	sum := 0
	for _, h := range e.store.history {
		if h.VariantID == variantID {
			sum += h.QuantityChange
		}
	}
	return sum
}

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
