package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/user"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	mu        sync.Mutex
	byID      map[string]*Order
	createErr error
	appendErr error
}

func newOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{byID: make(map[string]*Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, o *Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *o
	m.byID[o.ID] = &clone
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *o
	return &clone, nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID string) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var orders []Order
	for _, o := range m.byID {
		if o.UserID == userID {
			orders = append(orders, *o)
		}
	}
	return orders, nil
}

func (m *mockOrderRepo) ListAll(_ context.Context) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]Order, 0, len(m.byID))
	for _, o := range m.byID {
		orders = append(orders, *o)
	}
	return orders, nil
}

func (m *mockOrderRepo) AppendStatus(_ context.Context, id string, entry StatusEntry) (*Order, error) {
	if m.appendErr != nil {
		return nil, m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.Status = entry.Status
	o.StatusHistory = append(o.StatusHistory, entry)
	clone := *o
	clone.StatusHistory = append([]StatusEntry(nil), o.StatusHistory...)
	return &clone, nil
}

type mockCartRemover struct {
	mu      sync.Mutex
	deleted []string
	err     error
}

func (m *mockCartRemover) DeleteForUser(_ context.Context, userID string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, userID)
	return nil
}

type mockUserDirectory struct {
	byID map[string]*user.User
}

func (m *mockUserDirectory) GetByID(_ context.Context, id string) (*user.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

type mockPublisher struct{}

func (mockPublisher) PublishOrderCreated(_ context.Context, _ *Order) error { return nil }

// --- Helpers ---

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockOrderRepo, carts *mockCartRemover, users *mockUserDirectory) *Service {
	if users == nil {
		users = &mockUserDirectory{byID: map[string]*user.User{}}
	}
	svc := NewService(repo, carts, users, mockPublisher{})
	svc.now = func() time.Time { return testTime }
	return svc
}

func validRequest() CreateRequest {
	return CreateRequest{
		Items: []Item{
			{ProductID: "p1", ProductName: "Widget", UnitPrice: decimal.RequireFromString("10.00"), Quantity: 2},
		},
		ShippingAddress: Address{Name: "Alice", Phone: "01700000000", Address: "1 Main St", City: "Dhaka"},
		PaymentMethod:   "cod",
		TotalAmount:     decimal.RequireFromString("20.00"),
	}
}

func buyer() auth.Actor { return auth.Actor{UserID: "u1", Role: user.RoleUser} }
func admin() auth.Actor { return auth.Actor{UserID: "a1", Role: user.RoleAdmin} }

// --- Create ---

func TestCreate_EmptyItems(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockCartRemover{}, nil)

	_, err := svc.Create(context.Background(), buyer(), CreateRequest{})
	require.ErrorIs(t, err, ErrEmptyItems)
	assert.Empty(t, repo.byID)
}

func TestCreate_InvalidQuantity(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)

	req := validRequest()
	req.Items[0].Quantity = 0
	_, err := svc.Create(context.Background(), buyer(), req)

	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, "p1", iqErr.ProductID)
}

func TestCreate_InvalidPaymentMethod(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)

	req := validRequest()
	req.PaymentMethod = "paypal"
	_, err := svc.Create(context.Background(), buyer(), req)

	var pmErr *InvalidPaymentMethodError
	require.ErrorAs(t, err, &pmErr)
	assert.Equal(t, "paypal", pmErr.Method)
}

func TestCreate_IncompleteAddress(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)

	req := validRequest()
	req.ShippingAddress.City = ""
	_, err := svc.Create(context.Background(), buyer(), req)

	var addrErr *IncompleteAddressError
	require.ErrorAs(t, err, &addrErr)
	assert.Equal(t, "city", addrErr.Field)
}

func TestCreate_PendingWithCreationHistoryEntry(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockCartRemover{}, nil)

	o, err := svc.Create(context.Background(), buyer(), validRequest())
	require.NoError(t, err)

	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, StatusPending, o.Status)
	require.Len(t, o.StatusHistory, 1)
	assert.Equal(t, StatusPending, o.StatusHistory[0].Status)
	assert.Equal(t, testTime, o.StatusHistory[0].Timestamp)
	assert.Equal(t, PaymentCOD, o.PaymentMethod)
	// Total is stored as submitted, not recomputed.
	assert.True(t, decimal.RequireFromString("20.00").Equal(o.TotalAmount))
}

func TestCreate_TotalNotRecomputed(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockCartRemover{}, nil)

	req := validRequest()
	req.TotalAmount = decimal.RequireFromString("1.00")
	o, err := svc.Create(context.Background(), buyer(), req)

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("1.00").Equal(o.TotalAmount))
}

func TestCreate_ClearsCart(t *testing.T) {
	carts := &mockCartRemover{}
	svc := newTestService(newOrderRepo(), carts, nil)

	_, err := svc.Create(context.Background(), buyer(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, carts.deleted)
}

func TestCreate_CartDeleteErrorPropagates(t *testing.T) {
	carts := &mockCartRemover{err: errors.New("db unavailable")}
	repo := newOrderRepo()
	svc := newTestService(repo, carts, nil)

	_, err := svc.Create(context.Background(), buyer(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clear cart")
	// The order itself was still persisted before the cart delete failed.
	assert.Len(t, repo.byID, 1)
}

func TestCreate_RepoError(t *testing.T) {
	repo := newOrderRepo()
	repo.createErr = errors.New("db write failed")
	carts := &mockCartRemover{}
	svc := newTestService(repo, carts, nil)

	_, err := svc.Create(context.Background(), buyer(), validRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.Empty(t, carts.deleted)
}

// --- Transition ---

func placeOrder(t *testing.T, svc *Service) *Order {
	t.Helper()
	o, err := svc.Create(context.Background(), buyer(), validRequest())
	require.NoError(t, err)
	return o
}

func TestTransition_NonAdminForbidden(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockCartRemover{}, nil)
	o := placeOrder(t, svc)

	_, err := svc.Transition(context.Background(), buyer(), o.ID, "Shipped")
	require.ErrorIs(t, err, auth.ErrForbidden)

	stored, err := repo.GetByID(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
}

func TestTransition_InvalidStatus(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)
	o := placeOrder(t, svc)

	_, err := svc.Transition(context.Background(), admin(), o.ID, "Refunded")

	var isErr *InvalidStatusError
	require.ErrorAs(t, err, &isErr)
	assert.Equal(t, "Refunded", isErr.Status)
}

func TestTransition_NotFound(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)

	_, err := svc.Transition(context.Background(), admin(), "missing", "Shipped")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTransition_AppendsHistory(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)
	o := placeOrder(t, svc)

	for _, next := range []string{"Processing", "Shipped", "Delivered"} {
		updated, err := svc.Transition(context.Background(), admin(), o.ID, next)
		require.NoError(t, err)
		assert.Equal(t, Status(next), updated.Status)
		assert.Equal(t, updated.Status, updated.StatusHistory[len(updated.StatusHistory)-1].Status)
	}

	final, err := svc.Transition(context.Background(), admin(), o.ID, "Cancelled")
	require.NoError(t, err)
	// Creation entry plus one per transition.
	assert.Len(t, final.StatusHistory, 5)
}

func TestTransition_DuplicateStatusAppends(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)
	o := placeOrder(t, svc)

	_, err := svc.Transition(context.Background(), admin(), o.ID, "Shipped")
	require.NoError(t, err)
	updated, err := svc.Transition(context.Background(), admin(), o.ID, "Shipped")
	require.NoError(t, err)

	require.Len(t, updated.StatusHistory, 3)
	assert.Equal(t, StatusShipped, updated.StatusHistory[1].Status)
	assert.Equal(t, StatusShipped, updated.StatusHistory[2].Status)
}

func TestTransition_SkipsIntermediateStates(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)
	o := placeOrder(t, svc)

	// Pending straight to Delivered is accepted; no adjacency is enforced.
	updated, err := svc.Transition(context.Background(), admin(), o.ID, "Delivered")
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, updated.Status)
	assert.Len(t, updated.StatusHistory, 2)
}

// --- Listings ---

func TestListByUser_EmptyIsNotError(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)

	orders, err := svc.ListByUser(context.Background(), buyer())
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestListAll_NonAdminForbidden(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)

	_, err := svc.ListAll(context.Background(), buyer())
	require.ErrorIs(t, err, auth.ErrForbidden)
}

func TestListAll_ResolvesOwners(t *testing.T) {
	repo := newOrderRepo()
	users := &mockUserDirectory{byID: map[string]*user.User{
		"u1": {ID: "u1", Name: "Alice", Email: "alice@example.com"},
	}}
	svc := newTestService(repo, &mockCartRemover{}, users)
	placeOrder(t, svc)

	orders, err := svc.ListAll(context.Background(), admin())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "u1", orders[0].User.ID)
	assert.Equal(t, "Alice", orders[0].User.Name)
	assert.Equal(t, "alice@example.com", orders[0].User.Email)
}

func TestListAll_MissingOwnerKeepsID(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(repo, &mockCartRemover{}, nil)
	placeOrder(t, svc)

	orders, err := svc.ListAll(context.Background(), admin())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "u1", orders[0].User.ID)
	assert.Empty(t, orders[0].User.Name)
	assert.Empty(t, orders[0].User.Email)
}

func TestTransition_ConcurrentAppendsAllRecorded(t *testing.T) {
	svc := newTestService(newOrderRepo(), &mockCartRemover{}, nil)
	o := placeOrder(t, svc)

	const workers = 8
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Transition(context.Background(), admin(), o.ID, "Processing")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := svc.Transition(context.Background(), admin(), o.ID, "Shipped")
	require.NoError(t, err)
	// Creation entry, one per concurrent transition, plus the final one.
	assert.Len(t, final.StatusHistory, workers+2)
	assert.Equal(t, StatusShipped, final.Status)
}
