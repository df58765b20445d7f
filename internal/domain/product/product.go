package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase.
type Product struct {
	ID           string
	Name         string
	Category     string
	Description  string
	Image        string
	RegularPrice decimal.Decimal
	OfferPrice   *decimal.Decimal
	Stock        int
	// Timer is an optional deal deadline shown as a countdown in the storefront.
	Timer     *time.Time
	CreatedAt time.Time
}

// EffectivePrice returns the price a buyer actually pays: the offer price when
// one is set, the regular price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.OfferPrice != nil {
		return *p.OfferPrice
	}
	return p.RegularPrice
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	// List returns all products, optionally filtered by category when the
	// argument is non-empty.
	List(ctx context.Context, category string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}
