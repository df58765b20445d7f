package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/modahub/storefront-api/internal/domain/auth"
	"github.com/modahub/storefront-api/internal/domain/order"
)

type addressPayload struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

type orderItemPayload struct {
	Product string  `json:"product"`
	Name    string  `json:"name"`
	Qty     int     `json:"qty"`
	Price   float64 `json:"price"`
	Image   string  `json:"image"`
}

type createOrderRequest struct {
	OrderItems      []orderItemPayload `json:"orderItems"`
	ShippingAddress addressPayload     `json:"shippingAddress"`
	PaymentMethod   string             `json:"paymentMethod"`
	TotalAmount     float64            `json:"totalAmount"`
}

type statusEntryResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type orderItemResponse struct {
	Product     string  `json:"product"`
	ProductName string  `json:"productName"`
	Qty         int     `json:"qty"`
	Price       float64 `json:"price"`
	Image       string  `json:"image"`
}

type orderResponse struct {
	ID              string                `json:"id"`
	UserID          string                `json:"userId"`
	OrderItems      []orderItemResponse   `json:"orderItems"`
	ShippingAddress addressPayload        `json:"shippingAddress"`
	PaymentMethod   string                `json:"paymentMethod"`
	TotalAmount     float64               `json:"totalAmount"`
	Status          string                `json:"status"`
	StatusHistory   []statusEntryResponse `json:"statusHistory"`
	CreatedAt       time.Time             `json:"createdAt"`
}

type ownerResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type adminOrderResponse struct {
	orderResponse
	User ownerResponse `json:"user"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			Product:     item.ProductID,
			ProductName: item.ProductName,
			Qty:         item.Quantity,
			Price:       item.UnitPrice.InexactFloat64(),
			Image:       item.Image,
		}
	}

	history := make([]statusEntryResponse, len(o.StatusHistory))
	for i, entry := range o.StatusHistory {
		history[i] = statusEntryResponse{
			Status:    string(entry.Status),
			Timestamp: entry.Timestamp,
		}
	}

	return orderResponse{
		ID:         o.ID,
		UserID:     o.UserID,
		OrderItems: items,
		ShippingAddress: addressPayload{
			Name:    o.ShippingAddress.Name,
			Phone:   o.ShippingAddress.Phone,
			Address: o.ShippingAddress.Address,
			City:    o.ShippingAddress.City,
		},
		PaymentMethod: string(o.PaymentMethod),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		Status:        string(o.Status),
		StatusHistory: history,
		CreatedAt:     o.CreatedAt,
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	var req createOrderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	items := make([]order.Item, len(req.OrderItems))
	for i, item := range req.OrderItems {
		items[i] = order.Item{
			ProductID:   item.Product,
			ProductName: item.Name,
			UnitPrice:   decimal.NewFromFloat(item.Price),
			Quantity:    item.Qty,
			Image:       item.Image,
		}
	}

	o, err := h.orders.Create(r.Context(), actor, order.CreateRequest{
		Items: items,
		ShippingAddress: order.Address{
			Name:    req.ShippingAddress.Name,
			Phone:   req.ShippingAddress.Phone,
			Address: req.ShippingAddress.Address,
			City:    req.ShippingAddress.City,
		},
		PaymentMethod: req.PaymentMethod,
		TotalAmount:   decimal.NewFromFloat(req.TotalAmount),
	})
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	orders, err := h.orders.ListByUser(r.Context(), actor)
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) listAllOrders(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	orders, err := h.orders.ListAll(r.Context(), actor)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}

	resp := make([]adminOrderResponse, len(orders))
	for i := range orders {
		resp[i] = adminOrderResponse{
			orderResponse: toOrderResponse(&orders[i].Order),
			User: ownerResponse{
				ID:    orders[i].User.ID,
				Name:  orders[i].User.Name,
				Email: orders[i].User.Email,
			},
		}
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request, actor auth.Actor) {
	var req struct {
		Status string `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	o, err := h.orders.Transition(r.Context(), actor, r.PathValue("id"), req.Status)
	if err != nil {
		h.mapOrderError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toOrderResponse(o))
}

// mapOrderError converts order domain errors to HTTP responses.
func (h *Handler) mapOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		statusErr  *order.InvalidStatusError
		paymentErr *order.InvalidPaymentMethodError
		qtyErr     *order.InvalidQuantityError
		addrErr    *order.IncompleteAddressError
	)

	switch {
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "not authorized as admin")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrEmptyItems):
		writeError(w, r, http.StatusBadRequest, "no order items")
	case errors.As(err, &statusErr):
		writeError(w, r, http.StatusBadRequest, statusErr.Error())
	case errors.As(err, &paymentErr):
		writeError(w, r, http.StatusBadRequest, paymentErr.Error())
	case errors.As(err, &qtyErr):
		writeError(w, r, http.StatusUnprocessableEntity, qtyErr.Error())
	case errors.As(err, &addrErr):
		writeError(w, r, http.StatusBadRequest, addrErr.Error())
	default:
		writeServerError(w, r, err)
	}
}
