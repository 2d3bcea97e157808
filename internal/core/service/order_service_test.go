package service

import (
	"context"
	"testing"

	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestListOrders_EmptyIsNotNil(t *testing.T) {
	svc := NewOrderService(&mockOrderRepo{})

	orders, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if orders == nil {
		t.Error("expected empty non-nil slice")
	}
}

func TestListOrders_NewestFirst(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	userID, _ := store.CreateUser(ctx, "ana", "a@b.com", "x")
	first, _ := store.CreateOrder(ctx, userID, []domain.CartItem{{BookID: 1, Quantity: 1}})
	second, _ := store.CreateOrder(ctx, userID, []domain.CartItem{{BookID: 2, Quantity: 2}})

	orders, err := NewOrderService(store).ListOrders(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 || orders[0].OrderID != second || orders[1].OrderID != first {
		t.Errorf("unexpected order listing: %+v", orders)
	}
	if orders[0].User.Username != "ana" {
		t.Errorf("expected user join, got %+v", orders[0].User)
	}
}
