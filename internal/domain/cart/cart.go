package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/modahub/storefront-api/internal/domain/product"
)

// ErrNotFound is returned when a user has no cart document.
var ErrNotFound = errors.New("cart not found")

// Item is a single cart line: a product reference and a positive quantity.
// A cart holds at most one item per product; adding the same product again
// increments the quantity instead of appending a duplicate line.
type Item struct {
	ProductID string
	Quantity  int
}

// Cart is the mutable per-user collection of line items. It is created lazily
// on first add and deleted outright when an order is placed.
type Cart struct {
	UserID string
	Items  []Item
}

// ResolvedItem pairs a cart line with its current catalog snapshot for
// display. Prices shown here are the catalog's current prices, not a
// purchase-time snapshot.
type ResolvedItem struct {
	Product  product.Product
	Quantity int
}

// Repository defines persistence operations for carts.
type Repository interface {
	// Get returns the user's cart, or ErrNotFound when none exists.
	Get(ctx context.Context, userID string) (*Cart, error)
	// Upsert stores the cart, creating the document when absent.
	Upsert(ctx context.Context, c *Cart) error
	// DeleteForUser removes the user's cart document entirely. Deleting a
	// nonexistent cart is not an error.
	DeleteForUser(ctx context.Context, userID string) error
}
