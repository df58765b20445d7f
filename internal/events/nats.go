// Package events publishes order lifecycle events to NATS for downstream
// consumers (fulfilment dashboards, analytics). Publishing is best-effort:
// the storefront never fails a request because the broker is down.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/nats-io/nats.go"

	"github.com/modahub/storefront-api/internal/domain/order"
)

const subjectOrderCreated = "orders.created"

// orderCreatedEvent is the wire shape published on orders.created.
type orderCreatedEvent struct {
	OrderID     string    `json:"order_id"`
	UserID      string    `json:"user_id"`
	TotalAmount string    `json:"total_amount"`
	ItemCount   int       `json:"item_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// NATSPublisher publishes events to a NATS server.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the NATS server at url.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Timeout(5*time.Second),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, errors.Wrap(err, "connect to NATS")
	}
	return &NATSPublisher{conn: conn}, nil
}

// PublishOrderCreated emits an orders.created event.
func (p *NATSPublisher) PublishOrderCreated(_ context.Context, o *order.Order) error {
	data, err := json.Marshal(orderCreatedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount.String(),
		ItemCount:   len(o.Items),
		CreatedAt:   o.CreatedAt,
	})
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}

	if err := p.conn.Publish(subjectOrderCreated, data); err != nil {
		return errors.Wrap(err, "publish event")
	}
	return nil
}

// Close flushes and drops the connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}

// Noop discards events; used when no NATS URL is configured.
type Noop struct{}

// PublishOrderCreated discards the event.
func (Noop) PublishOrderCreated(context.Context, *order.Order) error { return nil }

// Close is a no-op.
func (Noop) Close() {}
