package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is one of the closed set of order lifecycle states. Pending is the
// sole initial state; Delivered and Cancelled are terminal by convention only,
// the transition function itself accepts any target state.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// ParseStatus validates a raw status value against the closed enumeration.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled:
		return s, nil
	default:
		return "", &InvalidStatusError{Status: raw}
	}
}

// PaymentMethod is one of the closed set of accepted payment labels. These
// are labels only; no gateway settlement is modeled.
type PaymentMethod string

const (
	PaymentCOD    PaymentMethod = "cod"
	PaymentBkash  PaymentMethod = "bkash"
	PaymentRocket PaymentMethod = "rocket"
)

// ParsePaymentMethod validates a raw payment method against the closed
// enumeration.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(raw); m {
	case PaymentCOD, PaymentBkash, PaymentRocket:
		return m, nil
	default:
		return "", &InvalidPaymentMethodError{Method: raw}
	}
}

// Sentinel errors for order operations.
var (
	ErrNotFound   = errors.New("order not found")
	ErrEmptyItems = errors.New("order items required")
)

// InvalidStatusError indicates a status value outside the closed enumeration.
type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid order status %q", e.Status)
}

// InvalidPaymentMethodError indicates a payment method outside the closed
// enumeration.
type InvalidPaymentMethodError struct {
	Method string
}

func (e *InvalidPaymentMethodError) Error() string {
	return fmt.Sprintf("invalid payment method %q", e.Method)
}

// InvalidQuantityError indicates a line item with a non-positive quantity.
type InvalidQuantityError struct {
	ProductID string
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %s", e.ProductID)
}

// IncompleteAddressError indicates a shipping address with a missing field.
type IncompleteAddressError struct {
	Field string
}

func (e *IncompleteAddressError) Error() string {
	return fmt.Sprintf("shipping address %s is required", e.Field)
}

// Item is a purchase-time snapshot of a catalog product. Name, price and
// image are captured at order creation so the order remains a faithful
// historical record independent of later catalog edits.
type Item struct {
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	Image       string
}

// Address is the shipping destination captured with the order.
type Address struct {
	Name    string
	Phone   string
	Address string
	City    string
}

// StatusEntry is one record in an order's append-only status history.
type StatusEntry struct {
	Status    Status
	Timestamp time.Time
}

// Order is an immutable-after-creation snapshot of purchased line items plus
// a mutable status and its append-only history.
//
// Invariants: StatusHistory never shrinks, is never reordered, and its last
// entry's status always equals Status. Creation writes the first entry
// (Pending) atomically with the order itself.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	ShippingAddress Address
	PaymentMethod   PaymentMethod
	// TotalAmount is accepted as supplied by the caller and is not recomputed
	// from line items.
	TotalAmount   decimal.Decimal
	Status        Status
	StatusHistory []StatusEntry
	CreatedAt     time.Time
}

// Owner is the resolved identity of an order's owning user, attached to
// administrative listings.
type Owner struct {
	ID    string
	Name  string
	Email string
}

// AdminOrder is an order with its owner resolved for the admin panel.
type AdminOrder struct {
	Order
	User Owner
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	// ListByUser returns the user's orders newest first.
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	// ListAll returns every order newest first.
	ListAll(ctx context.Context) ([]Order, error)
	// AppendStatus atomically sets the order's status and appends the entry to
	// its history in a single document update, then returns the updated order.
	// It returns ErrNotFound when no such order exists. No reader ever
	// observes a status without its matching history entry.
	AppendStatus(ctx context.Context, id string, entry StatusEntry) (*Order, error)
}
