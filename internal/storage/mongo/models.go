package mongo

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/modahub/storefront-api/internal/domain/cart"
	"github.com/modahub/storefront-api/internal/domain/order"
	"github.com/modahub/storefront-api/internal/domain/product"
	"github.com/modahub/storefront-api/internal/domain/user"
)

// Monetary values are stored as Decimal128 so they survive the round trip
// without float drift.

type userDocument struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	ResetOTP     string    `bson:"reset_otp,omitempty"`
	OTPExpiresAt time.Time `bson:"otp_expires_at,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

type productDocument struct {
	ID           string                `bson:"_id"`
	Name         string                `bson:"name"`
	Category     string                `bson:"category"`
	Description  string                `bson:"description"`
	Image        string                `bson:"image"`
	RegularPrice primitive.Decimal128  `bson:"regular_price"`
	OfferPrice   *primitive.Decimal128 `bson:"offer_price,omitempty"`
	Stock        int                   `bson:"stock"`
	Timer        *time.Time            `bson:"timer,omitempty"`
	CreatedAt    time.Time             `bson:"created_at"`
}

type cartDocument struct {
	UserID string             `bson:"_id"`
	Items  []cartItemDocument `bson:"items"`
}

type cartItemDocument struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type orderDocument struct {
	ID              string                `bson:"_id"`
	UserID          string                `bson:"user_id"`
	Items           []orderItemDocument   `bson:"items"`
	ShippingAddress addressDocument       `bson:"shipping_address"`
	PaymentMethod   string                `bson:"payment_method"`
	TotalAmount     primitive.Decimal128  `bson:"total_amount"`
	Status          string                `bson:"status"`
	StatusHistory   []statusEntryDocument `bson:"status_history"`
	CreatedAt       time.Time             `bson:"created_at"`
}

type orderItemDocument struct {
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	UnitPrice   primitive.Decimal128 `bson:"unit_price"`
	Quantity    int                  `bson:"quantity"`
	Image       string               `bson:"image"`
}

type addressDocument struct {
	Name    string `bson:"name"`
	Phone   string `bson:"phone"`
	Address string `bson:"address"`
	City    string `bson:"city"`
}

type statusEntryDocument struct {
	Status    string    `bson:"status"`
	Timestamp time.Time `bson:"timestamp"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, errors.Wrapf(err, "encode decimal %s", d)
	}
	return out, nil
}

func fromDecimal128(d primitive.Decimal128) (decimal.Decimal, error) {
	out, err := decimal.NewFromString(d.String())
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "decode decimal %s", d)
	}
	return out, nil
}

func toUserDocument(u *user.User) *userDocument {
	return &userDocument{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		ResetOTP:     u.ResetOTP,
		OTPExpiresAt: u.OTPExpiresAt,
		CreatedAt:    u.CreatedAt,
	}
}

func toUserEntity(doc *userDocument) *user.User {
	return &user.User{
		ID:           doc.ID,
		Name:         doc.Name,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		Role:         user.Role(doc.Role),
		ResetOTP:     doc.ResetOTP,
		OTPExpiresAt: doc.OTPExpiresAt,
		CreatedAt:    doc.CreatedAt,
	}
}

func toProductDocument(p *product.Product) (*productDocument, error) {
	regular, err := toDecimal128(p.RegularPrice)
	if err != nil {
		return nil, err
	}

	doc := &productDocument{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Description:  p.Description,
		Image:        p.Image,
		RegularPrice: regular,
		Stock:        p.Stock,
		Timer:        p.Timer,
		CreatedAt:    p.CreatedAt,
	}
	if p.OfferPrice != nil {
		offer, err := toDecimal128(*p.OfferPrice)
		if err != nil {
			return nil, err
		}
		doc.OfferPrice = &offer
	}
	return doc, nil
}

func toProductEntity(doc *productDocument) (*product.Product, error) {
	regular, err := fromDecimal128(doc.RegularPrice)
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:           doc.ID,
		Name:         doc.Name,
		Category:     doc.Category,
		Description:  doc.Description,
		Image:        doc.Image,
		RegularPrice: regular,
		Stock:        doc.Stock,
		Timer:        doc.Timer,
		CreatedAt:    doc.CreatedAt,
	}
	if doc.OfferPrice != nil {
		offer, err := fromDecimal128(*doc.OfferPrice)
		if err != nil {
			return nil, err
		}
		p.OfferPrice = &offer
	}
	return p, nil
}

func toCartDocument(c *cart.Cart) *cartDocument {
	items := make([]cartItemDocument, len(c.Items))
	for i, item := range c.Items {
		items[i] = cartItemDocument{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return &cartDocument{UserID: c.UserID, Items: items}
}

func toCartEntity(doc *cartDocument) *cart.Cart {
	items := make([]cart.Item, len(doc.Items))
	for i, item := range doc.Items {
		items[i] = cart.Item{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return &cart.Cart{UserID: doc.UserID, Items: items}
}

func toOrderDocument(o *order.Order) (*orderDocument, error) {
	total, err := toDecimal128(o.TotalAmount)
	if err != nil {
		return nil, err
	}

	items := make([]orderItemDocument, len(o.Items))
	for i, item := range o.Items {
		price, err := toDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = orderItemDocument{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   price,
			Quantity:    item.Quantity,
			Image:       item.Image,
		}
	}

	history := make([]statusEntryDocument, len(o.StatusHistory))
	for i, entry := range o.StatusHistory {
		history[i] = statusEntryDocument{Status: string(entry.Status), Timestamp: entry.Timestamp}
	}

	return &orderDocument{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  items,
		ShippingAddress: addressDocument{
			Name:    o.ShippingAddress.Name,
			Phone:   o.ShippingAddress.Phone,
			Address: o.ShippingAddress.Address,
			City:    o.ShippingAddress.City,
		},
		PaymentMethod: string(o.PaymentMethod),
		TotalAmount:   total,
		Status:        string(o.Status),
		StatusHistory: history,
		CreatedAt:     o.CreatedAt,
	}, nil
}

func toOrderEntity(doc *orderDocument) (*order.Order, error) {
	total, err := fromDecimal128(doc.TotalAmount)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, len(doc.Items))
	for i, item := range doc.Items {
		price, err := fromDecimal128(item.UnitPrice)
		if err != nil {
			return nil, err
		}
		items[i] = order.Item{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   price,
			Quantity:    item.Quantity,
			Image:       item.Image,
		}
	}

	history := make([]order.StatusEntry, len(doc.StatusHistory))
	for i, entry := range doc.StatusHistory {
		history[i] = order.StatusEntry{Status: order.Status(entry.Status), Timestamp: entry.Timestamp}
	}

	return &order.Order{
		ID:     doc.ID,
		UserID: doc.UserID,
		Items:  items,
		ShippingAddress: order.Address{
			Name:    doc.ShippingAddress.Name,
			Phone:   doc.ShippingAddress.Phone,
			Address: doc.ShippingAddress.Address,
			City:    doc.ShippingAddress.City,
		},
		PaymentMethod: order.PaymentMethod(doc.PaymentMethod),
		TotalAmount:   total,
		Status:        order.Status(doc.Status),
		StatusHistory: history,
		CreatedAt:     doc.CreatedAt,
	}, nil
}
