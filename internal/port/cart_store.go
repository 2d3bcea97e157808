package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// CommitFunc persists a cart snapshot. It runs while the store holds the
// user's cart, so no concurrent Append for that user can interleave.
type CommitFunc func(ctx context.Context, items []domain.CartItem) error

type CartStore interface {
	// Append adds a line to the user's cart and returns the whole cart
	Append(ctx context.Context, userID int64, item domain.CartItem) ([]domain.CartItem, error)

	// Items returns the user's cart, empty when the user has none
	Items(ctx context.Context, userID int64) ([]domain.CartItem, error)

	// Checkout hands the current lines to commit and removes exactly those
	// lines if commit succeeds. Returns domain.ErrEmptyCart for an empty cart.
	Checkout(ctx context.Context, userID int64, commit CommitFunc) error
}
