package cart

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/product"
)

// InvalidQuantityError indicates an add request with a non-positive quantity.
type InvalidQuantityError struct {
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0, got %d", e.Quantity)
}

// Service encapsulates cart business logic.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service with the required dependencies.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{
		carts:    carts,
		products: products,
	}
}

// Get returns the actor's cart with each line's product resolved from the
// catalog. A missing cart yields an empty slice, never an error. Lines whose
// product has since been deleted from the catalog are skipped.
func (s *Service) Get(ctx context.Context, actor auth.Actor) ([]ResolvedItem, error) {
	c, err := s.carts.Get(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []ResolvedItem{}, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	resolved := make([]ResolvedItem, 0, len(c.Items))
	for _, item := range c.Items {
		p, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, product.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve product %q: %w", item.ProductID, err)
		}
		resolved = append(resolved, ResolvedItem{Product: *p, Quantity: item.Quantity})
	}
	return resolved, nil
}

// Add puts quantity units of a product into the actor's cart, creating the
// cart when none exists. When the product is already present the existing
// line's quantity is incremented; the cart never holds two lines for the same
// product.
func (s *Service) Add(ctx context.Context, actor auth.Actor, productID string, quantity int) (*Cart, error) {
	if quantity <= 0 {
		return nil, &InvalidQuantityError{Quantity: quantity}
	}

	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("check product %q: %w", productID, err)
	}

	c, err := s.carts.Get(ctx, actor.UserID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("get cart: %w", err)
		}
		c = &Cart{UserID: actor.UserID}
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: quantity})
	}

	if err := s.carts.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}

// Remove deletes the line for the given product from the actor's cart. It
// returns ErrNotFound when the actor has no cart. Removing a product that is
// not in the cart leaves the cart unchanged.
func (s *Service) Remove(ctx context.Context, actor auth.Actor, productID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	c.Items = kept

	if err := s.carts.Upsert(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return c, nil
}
