// Package handler exposes the storefront REST API. Handlers decode JSON,
// resolve the acting user from the bearer token, delegate to the domain
// services, and map domain errors to HTTP status codes.
package handler

import (
	"net/http"

	"github.com/modahub/storefront-api/internal/domain/cart"
	"github.com/modahub/storefront-api/internal/domain/order"
	"github.com/modahub/storefront-api/internal/domain/product"
	"github.com/modahub/storefront-api/internal/domain/user"
	"github.com/modahub/storefront-api/internal/token"
)

// Config holds non-dependency configuration for the Handler.
type Config struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as stored.
	ImageBaseURL string
	// UploadDir is the directory where product images are written.
	UploadDir string
}

// Handler implements the HTTP API, delegating business logic to the domain
// services.
type Handler struct {
	users    *user.Service
	products product.Repository
	carts    *cart.Service
	orders   *order.Service
	tokens   *token.Manager

	imageBaseURL string
	uploadDir    string
}

// New constructs a Handler with the required domain dependencies.
func New(
	cfg Config,
	users *user.Service,
	products product.Repository,
	carts *cart.Service,
	orders *order.Service,
	tokens *token.Manager,
) *Handler {
	return &Handler{
		users:        users,
		products:     products,
		carts:        carts,
		orders:       orders,
		tokens:       tokens,
		imageBaseURL: cfg.ImageBaseURL,
		uploadDir:    cfg.UploadDir,
	}
}

// Routes returns the API route table.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/signup", h.signup)
	mux.HandleFunc("POST /api/auth/login", h.login)
	mux.HandleFunc("POST /api/auth/forgot-password", h.forgotPassword)
	mux.HandleFunc("POST /api/auth/reset-password", h.resetPassword)
	mux.HandleFunc("GET /api/auth/{id}", h.withAuth(h.getUser))

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	mux.HandleFunc("POST /api/products", h.withAdmin(h.createProduct))
	mux.HandleFunc("DELETE /api/products/{id}", h.withAdmin(h.deleteProduct))

	mux.HandleFunc("GET /api/cart", h.withAuth(h.getCart))
	mux.HandleFunc("POST /api/cart/add", h.withAuth(h.addToCart))
	mux.HandleFunc("DELETE /api/cart/remove/{id}", h.withAuth(h.removeFromCart))

	mux.HandleFunc("POST /api/orders", h.withAuth(h.createOrder))
	mux.HandleFunc("GET /api/orders/myorders", h.withAuth(h.myOrders))
	mux.HandleFunc("GET /api/orders", h.withAuth(h.listAllOrders))
	mux.HandleFunc("PATCH /api/orders/{id}/status", h.withAuth(h.updateOrderStatus))

	return mux
}
