package storage

import (
	"context"
	"sync"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

type userCart struct {
	mu    sync.Mutex
	items []domain.CartItem
}

// MemoryCartStore keeps carts in process memory. Each user's cart has its
// own lock, so different users never contend.
type MemoryCartStore struct {
	mu    sync.Mutex
	carts map[int64]*userCart
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[int64]*userCart)}
}

// cart returns the user's cart, creating it when create is set. Only Append
// creates entries, so reads for unknown users leave the map untouched.
func (s *MemoryCartStore) cart(userID int64, create bool) *userCart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok && create {
		c = &userCart{}
		s.carts[userID] = c
	}
	return c
}

func (s *MemoryCartStore) Append(ctx context.Context, userID int64, item domain.CartItem) ([]domain.CartItem, error) {
	c := s.cart(userID, true)
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = append(c.items, item)
	return cloneItems(c.items), nil
}

func (s *MemoryCartStore) Items(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	c := s.cart(userID, false)
	if c == nil {
		return []domain.CartItem{}, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return cloneItems(c.items), nil
}

func (s *MemoryCartStore) Checkout(ctx context.Context, userID int64, commit port.CommitFunc) error {
	c := s.cart(userID, false)
	if c == nil {
		return domain.ErrEmptyCart
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.items) == 0 {
		return domain.ErrEmptyCart
	}

	if err := commit(ctx, cloneItems(c.items)); err != nil {
		return err
	}

	c.items = nil
	return nil
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
