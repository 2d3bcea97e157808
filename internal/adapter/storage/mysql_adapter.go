package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/bookstore/internal/core/domain"
)

// mysqlErrDupEntry is ER_DUP_ENTRY.
const mysqlErrDupEntry = 1062

type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, username, email, password, role, created_at
		FROM usuarios`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

func (m *MySQLAdapter) CreateUser(ctx context.Context, username, email, password string) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO usuarios (username, email, password)
		VALUES (?, ?, ?)`,
		username, email, password,
	)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", translate(err))
	}

	return result.LastInsertId()
}

func (m *MySQLAdapter) ListProfiles(ctx context.Context) ([]domain.UserProfile, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, username, email, role, created_at
		FROM usuarios`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.UserProfile
	for rows.Next() {
		var p domain.UserProfile
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.Role, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

func (m *MySQLAdapter) GetProfile(ctx context.Context, id int64) (*domain.UserProfile, error) {
	var p domain.UserProfile
	err := m.db.QueryRowContext(ctx, `
		SELECT id, username, email, role, created_at
		FROM usuarios WHERE id = ?`, id,
	).Scan(&p.ID, &p.Username, &p.Email, &p.Role, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}

	return &p, nil
}

func (m *MySQLAdapter) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx, `
		SELECT id, username, email, password, role, created_at
		FROM usuarios WHERE email = ?
		ORDER BY id LIMIT 1`, email,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Role, &u.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}

	return &u, nil
}

func (m *MySQLAdapter) ListBooks(ctx context.Context) ([]domain.Book, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, titulo, autor, anio, categoria, sinopsis, precio, cantidad
		FROM libros`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := scanBook(rows, &b); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}

func (m *MySQLAdapter) CreateBook(ctx context.Context, book domain.Book) (int64, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO libros (titulo, autor, anio, categoria, sinopsis, precio, cantidad)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		book.Titulo, book.Autor, book.Anio, book.Categoria, book.Sinopsis, book.Precio, book.Cantidad,
	)
	if err != nil {
		return 0, fmt.Errorf("insert book: %w", translate(err))
	}

	return result.LastInsertId()
}

func (m *MySQLAdapter) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	var b domain.Book
	row := m.db.QueryRowContext(ctx, `
		SELECT id, titulo, autor, anio, categoria, sinopsis, precio, cantidad
		FROM libros WHERE id = ?`, id)

	err := scanBook(row, &b)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}

	return &b, nil
}

func (m *MySQLAdapter) CreateCategory(ctx context.Context, name string) (int64, error) {
	result, err := m.db.ExecContext(ctx, `INSERT INTO categorias (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("insert category: %w", translate(err))
	}

	return result.LastInsertId()
}

func (m *MySQLAdapter) CreateOrder(ctx context.Context, userID int64, items []domain.CartItem) (int64, error) {
	books, err := json.Marshal(items)
	if err != nil {
		return 0, fmt.Errorf("encode cart snapshot: %w", err)
	}

	result, err := m.db.ExecContext(ctx, `
		INSERT INTO carrito (user_id, books)
		VALUES (?, ?)`,
		userID, string(books),
	)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", translate(err))
	}

	return result.LastInsertId()
}

func (m *MySQLAdapter) ListOrders(ctx context.Context) ([]domain.OrderSummary, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT c.id, c.created_at, u.id, u.username, u.email, c.books
		FROM carrito c
		JOIN usuarios u ON c.user_id = u.id
		ORDER BY c.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.OrderSummary
	for rows.Next() {
		var (
			o     domain.OrderSummary
			books []byte
		)
		if err := rows.Scan(&o.OrderID, &o.OrderDate, &o.User.UserID, &o.User.Username, &o.User.Email, &books); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		if err := json.Unmarshal(books, &o.Books); err != nil {
			return nil, fmt.Errorf("decode order %d snapshot: %w", o.OrderID, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner, b *domain.Book) error {
	return row.Scan(&b.ID, &b.Titulo, &b.Autor, &b.Anio, &b.Categoria, &b.Sinopsis, &b.Precio, &b.Cantidad)
}

// translate maps driver errors the callers need to tell apart onto domain errors.
func translate(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrDupEntry {
		return fmt.Errorf("%w: %s", domain.ErrDuplicate, mysqlErr.Message)
	}
	return err
}
