// Package memory implements the domain repositories in process memory. It
// mirrors the MongoDB layer's per-document atomicity: every mutation of a
// single stored document happens under one lock acquisition. Used by tests
// and local development without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/modahub/storefront-api/internal/domain/cart"
	"github.com/modahub/storefront-api/internal/domain/order"
	"github.com/modahub/storefront-api/internal/domain/product"
	"github.com/modahub/storefront-api/internal/domain/user"
)

// UserRepository is an in-memory user.Repository.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*user.User
	byEmail map[string]string
}

// NewUserRepository creates an empty UserRepository.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.ErrEmailTaken
	}
	clone := *u
	r.byID[u.ID] = &clone
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[email]
	r.mu.RUnlock()
	if !ok {
		return nil, user.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) SetResetOTP(_ context.Context, id, otp string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.ResetOTP = otp
	u.OTPExpiresAt = expiresAt
	return nil
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return user.ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.ResetOTP = ""
	u.OTPExpiresAt = time.Time{}
	return nil
}

// ProductRepository is an in-memory product.Repository.
type ProductRepository struct {
	mu   sync.RWMutex
	byID map[string]*product.Product
}

// NewProductRepository creates an empty ProductRepository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{byID: make(map[string]*product.Product)}
}

func (r *ProductRepository) List(_ context.Context, category string) ([]product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var products []product.Product
	for _, p := range r.byID {
		if category != "" && p.Category != category {
			continue
		}
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool {
		return products[i].CreatedAt.After(products[j].CreatedAt)
	})
	return products, nil
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (r *ProductRepository) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *p
	r.byID[p.ID] = &clone
	return nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return product.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

// CartRepository is an in-memory cart.Repository.
type CartRepository struct {
	mu     sync.RWMutex
	byUser map[string]*cart.Cart
}

// NewCartRepository creates an empty CartRepository.
func NewCartRepository() *CartRepository {
	return &CartRepository{byUser: make(map[string]*cart.Cart)}
}

func (r *CartRepository) Get(_ context.Context, userID string) (*cart.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byUser[userID]
	if !ok {
		return nil, cart.ErrNotFound
	}
	clone := cart.Cart{UserID: c.UserID, Items: append([]cart.Item(nil), c.Items...)}
	return &clone, nil
}

func (r *CartRepository) Upsert(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := cart.Cart{UserID: c.UserID, Items: append([]cart.Item(nil), c.Items...)}
	r.byUser[c.UserID] = &clone
	return nil
}

func (r *CartRepository) DeleteForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byUser, userID)
	return nil
}

// OrderRepository is an in-memory order.Repository.
type OrderRepository struct {
	mu   sync.RWMutex
	byID map[string]*order.Order
}

// NewOrderRepository creates an empty OrderRepository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byID: make(map[string]*order.Order)}
}

func (r *OrderRepository) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := cloneOrder(o)
	r.byID[o.ID] = &clone
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	clone := cloneOrder(o)
	return &clone, nil
}

func (r *OrderRepository) ListByUser(_ context.Context, userID string) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []order.Order
	for _, o := range r.byID {
		if o.UserID == userID {
			orders = append(orders, cloneOrder(o))
		}
	}
	sortNewestFirst(orders)
	return orders, nil
}

func (r *OrderRepository) ListAll(_ context.Context) ([]order.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]order.Order, 0, len(r.byID))
	for _, o := range r.byID {
		orders = append(orders, cloneOrder(o))
	}
	sortNewestFirst(orders)
	return orders, nil
}

// AppendStatus updates status and history under one lock acquisition,
// matching the single-document atomicity of the MongoDB implementation.
func (r *OrderRepository) AppendStatus(_ context.Context, id string, entry order.StatusEntry) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	o.Status = entry.Status
	o.StatusHistory = append(o.StatusHistory, entry)

	clone := cloneOrder(o)
	return &clone, nil
}

func cloneOrder(o *order.Order) order.Order {
	clone := *o
	clone.Items = append([]order.Item(nil), o.Items...)
	clone.StatusHistory = append([]order.StatusEntry(nil), o.StatusHistory...)
	return clone
}

func sortNewestFirst(orders []order.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
