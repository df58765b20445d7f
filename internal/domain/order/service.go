package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/user"
)

// CartRemover deletes a user's cart after a successful checkout.
type CartRemover interface {
	DeleteForUser(ctx context.Context, userID string) error
}

// UserDirectory resolves order owners for administrative listings.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Publisher emits order lifecycle events to interested consumers. A noop
// implementation is used when no broker is configured.
type Publisher interface {
	PublishOrderCreated(ctx context.Context, o *Order) error
}

// CreateRequest holds the input for placing an order. Items may come from the
// user's cart or from a direct "buy now" payload that never touched the cart;
// either way the snapshot is supplied by the caller, and the pricing layer is
// responsible for resolving effective unit prices before submission.
type CreateRequest struct {
	Items           []Item
	ShippingAddress Address
	PaymentMethod   string
	TotalAmount     decimal.Decimal
}

// Service encapsulates order placement and lifecycle logic.
type Service struct {
	orders Repository
	carts  CartRemover
	users  UserDirectory
	events Publisher

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates an order Service with the required dependencies.
func NewService(orders Repository, carts CartRemover, users UserDirectory, events Publisher) *Service {
	return &Service{
		orders: orders,
		carts:  carts,
		users:  users,
		events: events,
		now:    time.Now,
	}
}

// Create validates the request, persists a new Pending order whose history
// holds exactly the creation entry, and then deletes the actor's cart
// unconditionally. Cart deletion is keyed on the user, not on the cart
// matching the submitted items, so "buy now" checkouts clear any leftover
// cart as well.
func (s *Service) Create(ctx context.Context, actor auth.Actor, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: item.ProductID}
		}
	}

	method, err := ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if err := validateAddress(req.ShippingAddress); err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		ID:              uuid.New().String(),
		UserID:          actor.UserID,
		Items:           req.Items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   method,
		TotalAmount:     req.TotalAmount,
		Status:          StatusPending,
		StatusHistory:   []StatusEntry{{Status: StatusPending, Timestamp: now}},
		CreatedAt:       now,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.carts.DeleteForUser(ctx, actor.UserID); err != nil {
		return nil, fmt.Errorf("clear cart after order %s: %w", o.ID, err)
	}

	if s.events != nil {
		// Fire and forget with a bounded timeout; a broker outage must not
		// fail the checkout.
		go func() {
			pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = s.events.PublishOrderCreated(pubCtx, o)
		}()
	}

	return o, nil
}

// ListByUser returns the actor's own orders, newest first. It never fails on
// an empty result.
func (s *Service) ListByUser(ctx context.Context, actor auth.Actor) ([]Order, error) {
	orders, err := s.orders.ListByUser(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// ListAll returns every order in the system with each owner's identity
// resolved, newest first. It requires the administrative capability.
func (s *Service) ListAll(ctx context.Context, actor auth.Actor) ([]AdminOrder, error) {
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	// Resolve each distinct owner once. Owners that no longer resolve keep
	// their ID with blank name and email.
	owners := make(map[string]Owner)
	result := make([]AdminOrder, len(orders))
	for i, o := range orders {
		owner, ok := owners[o.UserID]
		if !ok {
			owner = Owner{ID: o.UserID}
			if u, err := s.users.GetByID(ctx, o.UserID); err == nil {
				owner.Name = u.Name
				owner.Email = u.Email
			}
			owners[o.UserID] = owner
		}
		result[i] = AdminOrder{Order: o, User: owner}
	}
	return result, nil
}

// Transition moves an order to newStatus: it sets the status field and
// appends a history entry in one atomic document update, returning the
// updated order with its full history.
//
// The append is unconditional: transitioning to the current status appends a
// duplicate entry, and no source-to-target adjacency is enforced. Only the
// administrative capability gates the operation.
func (s *Service) Transition(ctx context.Context, actor auth.Actor, orderID, newStatus string) (*Order, error) {
	if !actor.IsAdmin() {
		return nil, auth.ErrForbidden
	}

	status, err := ParseStatus(newStatus)
	if err != nil {
		return nil, err
	}

	updated, err := s.orders.AppendStatus(ctx, orderID, StatusEntry{
		Status:    status,
		Timestamp: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("transition order %s to %s: %w", orderID, status, err)
	}
	return updated, nil
}

func validateAddress(a Address) error {
	switch {
	case a.Name == "":
		return &IncompleteAddressError{Field: "name"}
	case a.Phone == "":
		return &IncompleteAddressError{Field: "phone"}
	case a.Address == "":
		return &IncompleteAddressError{Field: "address"}
	case a.City == "":
		return &IncompleteAddressError{Field: "city"}
	}
	return nil
}
