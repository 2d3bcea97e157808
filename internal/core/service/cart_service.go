package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/metrics"
	"github.com/rl1809/bookstore/internal/port"
)

type CartService struct {
	books  port.BookRepository
	orders port.OrderRepository
	carts  port.CartStore
	events port.EventPublisher
	log    zerolog.Logger
}

func NewCartService(books port.BookRepository, orders port.OrderRepository, carts port.CartStore, events port.EventPublisher, log zerolog.Logger) *CartService {
	return &CartService{
		books:  books,
		orders: orders,
		carts:  carts,
		events: events,
		log:    log,
	}
}

// Add appends quantity copies of a book to the user's cart as a single line.
// The book row is looked up and copied into the line.
func (s *CartService) Add(ctx context.Context, userID, bookID int64, quantity int) ([]domain.CartItem, error) {
	if userID == 0 || bookID == 0 || quantity < 1 {
		return nil, fmt.Errorf("%w: userId, bookId and quantity >= 1 are required", ErrInvalidInput)
	}

	book, err := s.books.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	items, err := s.carts.Append(ctx, userID, domain.CartItem{
		BookID:   bookID,
		Quantity: quantity,
		Book:     *book,
	})
	if err != nil {
		return nil, fmt.Errorf("append to cart: %w", err)
	}

	metrics.CartItemsAdded.Inc()
	return items, nil
}

func (s *CartService) Cart(ctx context.Context, userID int64) (*domain.Cart, error) {
	if userID == 0 {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	items, err := s.carts.Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}
	if items == nil {
		items = []domain.CartItem{}
	}

	return &domain.Cart{UserID: userID, Items: items}, nil
}

// Checkout turns the user's cart into an order. The cart is emptied only
// when the order row was written.
func (s *CartService) Checkout(ctx context.Context, userID int64) (int64, error) {
	if userID == 0 {
		return 0, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}

	var (
		orderID int64
		placed  []domain.CartItem
	)
	err := s.carts.Checkout(ctx, userID, func(ctx context.Context, items []domain.CartItem) error {
		id, err := s.orders.CreateOrder(ctx, userID, items)
		if err != nil {
			return err
		}
		orderID, placed = id, items
		return nil
	})
	if err != nil {
		metrics.Checkouts.WithLabelValues("failed").Inc()
		return 0, err
	}
	metrics.Checkouts.WithLabelValues("placed").Inc()

	event := port.OrderCreatedEvent{
		OrderID:   orderID,
		UserID:    userID,
		Items:     placed,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.events.Publish(ctx, port.EventOrderCreated, event); err != nil {
		s.log.Warn().Err(err).Int64("order_id", orderID).Msg("publish order.created failed")
	}

	return orderID, nil
}
