package port

import (
	"context"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type UserRepository interface {
	ListUsers(ctx context.Context) ([]domain.User, error)

	// CreateUser inserts a user and returns its generated id
	CreateUser(ctx context.Context, username, email, password string) (int64, error)

	ListProfiles(ctx context.Context) ([]domain.UserProfile, error)

	// GetProfile returns domain.ErrNotFound when no user has the id
	GetProfile(ctx context.Context, id int64) (*domain.UserProfile, error)

	// GetByEmail returns domain.ErrNotFound when no user has the email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type BookRepository interface {
	ListBooks(ctx context.Context) ([]domain.Book, error)
	CreateBook(ctx context.Context, book domain.Book) (int64, error)

	// GetBook returns domain.ErrNotFound when no book has the id
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
}

type CategoryRepository interface {
	// CreateCategory returns domain.ErrDuplicate when the name is taken
	CreateCategory(ctx context.Context, name string) (int64, error)
}

type OrderRepository interface {
	// CreateOrder stores the serialized cart snapshot and returns the order id
	CreateOrder(ctx context.Context, userID int64, items []domain.CartItem) (int64, error)

	// ListOrders returns orders joined with their user, newest first
	ListOrders(ctx context.Context) ([]domain.OrderSummary, error)
}
