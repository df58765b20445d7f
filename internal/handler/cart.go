package handler

import (
	"net/http"

	"github.com/go-faster/errors"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/cart"
	"github.com/modahub/storefront-api/internal/domain/product"
)

type cartItemResponse struct {
	Product  productResponse `json:"product"`
	Quantity int             `json:"quantity"`
}

type cartResponse struct {
	Items []cartItemResponse `json:"items"`
}

type cartLineResponse struct {
	ProductID string `json:"product"`
	Quantity  int    `json:"quantity"`
}

func toCartLines(c *cart.Cart) []cartLineResponse {
	lines := make([]cartLineResponse, len(c.Items))
	for i, item := range c.Items {
		lines[i] = cartLineResponse{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	resolved, err := h.carts.Get(r.Context(), actor)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	items := make([]cartItemResponse, len(resolved))
	for i, item := range resolved {
		items[i] = cartItemResponse{
			Product:  h.toProductResponse(&item.Product),
			Quantity: item.Quantity,
		}
	}
	writeJSON(w, r, http.StatusOK, cartResponse{Items: items})
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	var req struct {
		ProductID string `json:"productId"`
		Quantity  int    `json:"quantity"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.carts.Add(r.Context(), actor, req.ProductID, req.Quantity)
	if err != nil {
		var iqErr *cart.InvalidQuantityError
		switch {
		case errors.Is(err, product.ErrNotFound):
			writeError(w, r, http.StatusNotFound, "product not found")
		case errors.As(err, &iqErr):
			writeError(w, r, http.StatusBadRequest, iqErr.Error())
		default:
			writeServerError(w, r, err)
		}
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Message string             `json:"message"`
		Items   []cartLineResponse `json:"items"`
	}{Message: "product added to cart", Items: toCartLines(c)})
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	c, err := h.carts.Remove(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			writeError(w, r, http.StatusNotFound, "cart not found")
			return
		}
		writeServerError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Message string             `json:"message"`
		Items   []cartLineResponse `json:"items"`
	}{Message: "item removed from cart", Items: toCartLines(c)})
}
