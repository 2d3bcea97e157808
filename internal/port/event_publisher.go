package port

import (
	"context"
	"time"

	"github.com/rl1809/bookstore/internal/core/domain"
)

const EventOrderCreated = "order.created"

type OrderCreatedEvent struct {
	OrderID   int64             `json:"orderId"`
	UserID    int64             `json:"userId"`
	Items     []domain.CartItem `json:"items"`
	CreatedAt time.Time         `json:"createdAt"`
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close() error
}
