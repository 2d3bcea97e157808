package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rl1809/bookstore/internal/core/domain"
)

type orderRow struct {
	id        int64
	userID    int64
	books     []byte
	createdAt time.Time
}

// MemoryStore is an in-process stand-in for the MySQL tables. It backs
// DB_DRIVER=memory and the tests; data is lost on restart.
type MemoryStore struct {
	mu         sync.RWMutex
	nextID     int64
	users      map[int64]domain.User
	books      map[int64]domain.Book
	categories map[string]int64
	orders     []orderRow
	now        func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:     1,
		users:      make(map[int64]domain.User),
		books:      make(map[int64]domain.Book),
		categories: make(map[string]int64),
		now:        time.Now,
	}
}

func (m *MemoryStore) nextIDLocked() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *MemoryStore) ListUsers(_ context.Context) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (m *MemoryStore) CreateUser(_ context.Context, username, email, password string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextIDLocked()
	m.users[id] = domain.User{
		ID:        id,
		Username:  username,
		Email:     email,
		Password:  password,
		Role:      domain.RoleUser,
		CreatedAt: m.now().UTC(),
	}
	return id, nil
}

// SetRole changes a user's role, the equivalent of an UPDATE by an operator.
func (m *MemoryStore) SetRole(id int64, role domain.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.Role = role
	m.users[id] = u
	return nil
}

func (m *MemoryStore) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	users, _ := m.ListUsers(ctx)
	profiles := make([]domain.UserProfile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, toProfile(u))
	}
	return profiles, nil
}

func (m *MemoryStore) GetProfile(_ context.Context, id int64) (*domain.UserProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := toProfile(u)
	return &p, nil
}

func (m *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var found *domain.User
	for _, u := range m.users {
		if u.Email == email && (found == nil || u.ID < found.ID) {
			u := u
			found = &u
		}
	}
	if found == nil {
		return nil, domain.ErrNotFound
	}
	return found, nil
}

func (m *MemoryStore) ListBooks(_ context.Context) ([]domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]domain.Book, 0, len(m.books))
	for _, b := range m.books {
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}

func (m *MemoryStore) CreateBook(_ context.Context, book domain.Book) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	book.ID = m.nextIDLocked()
	m.books[book.ID] = book
	return book.ID, nil
}

func (m *MemoryStore) GetBook(_ context.Context, id int64) (*domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.books[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) CreateCategory(_ context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.categories[name]; exists {
		return 0, fmt.Errorf("%w: category %q", domain.ErrDuplicate, name)
	}
	id := m.nextIDLocked()
	m.categories[name] = id
	return id, nil
}

func (m *MemoryStore) CreateOrder(_ context.Context, userID int64, items []domain.CartItem) (int64, error) {
	books, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("encode cart snapshot: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[userID]; !ok {
		return 0, fmt.Errorf("insert order: user %d does not exist", userID)
	}

	id := m.nextIDLocked()
	m.orders = append(m.orders, orderRow{id: id, userID: userID, books: books, createdAt: m.now().UTC()})
	return id, nil
}

func (m *MemoryStore) ListOrders(_ context.Context) ([]domain.OrderSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	orders := make([]domain.OrderSummary, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		row := m.orders[i]
		u, ok := m.users[row.userID]
		if !ok {
			continue
		}
		o := domain.OrderSummary{
			OrderID:   row.id,
			OrderDate: row.createdAt,
			User:      domain.OrderUser{UserID: u.ID, Username: u.Username, Email: u.Email},
		}
		if err := json.Unmarshal(row.books, &o.Books); err != nil {
			return nil, fmt.Errorf("decode order %d snapshot: %w", row.id, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func toProfile(u domain.User) domain.UserProfile {
	return domain.UserProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}
