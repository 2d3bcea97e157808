package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/bookstore/internal/core/domain"
)

func newMockAdapter(t *testing.T) (*MySQLAdapter, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewMySQLAdapter(db), mock
}

func TestCreateUser_ReturnsInsertID(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO usuarios (username, email, password)")).
		WithArgs("ana", "a@b.com", "x").
		WillReturnResult(sqlmock.NewResult(7, 1))

	id, err := adapter.CreateUser(context.Background(), "ana", "a@b.com", "x")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if id != 7 {
		t.Errorf("expected id 7, got %d", id)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestListUsers(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usuarios")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}).
			AddRow(1, "ana", "a@b.com", "x", "user", created).
			AddRow(2, "root", "r@b.com", "y", "admin", created))

	users, err := adapter.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	if users[0].Username != "ana" || users[1].Role != domain.RoleAdmin {
		t.Errorf("unexpected rows: %+v", users)
	}
	if !users[0].CreatedAt.Equal(created) {
		t.Errorf("expected created_at %v, got %v", created, users[0].CreatedAt)
	}
}

func TestListUsers_QueryError(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usuarios")).WillReturnError(errors.New("connection refused"))

	if _, err := adapter.ListUsers(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usuarios WHERE id = ?")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "role", "created_at"}))

	_, err := adapter.GetProfile(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM usuarios WHERE email = ?")).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "email", "password", "role", "created_at"}).
			AddRow(3, "ana", "a@b.com", "secret", "user", time.Now()))

	u, err := adapter.GetByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if u.ID != 3 || u.Password != "secret" {
		t.Errorf("unexpected user: %+v", u)
	}
}

func TestCreateBook_PassesNullableFields(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	categoria := "Novela"

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO libros")).
		WithArgs("Rayuela", "Cortázar", 1963, &categoria, nil, 25.5, 3).
		WillReturnResult(sqlmock.NewResult(5, 1))

	id, err := adapter.CreateBook(context.Background(), domain.Book{
		Titulo:    "Rayuela",
		Autor:     "Cortázar",
		Anio:      1963,
		Categoria: &categoria,
		Precio:    25.5,
		Cantidad:  3,
	})
	if err != nil {
		t.Fatalf("CreateBook failed: %v", err)
	}
	if id != 5 {
		t.Errorf("expected id 5, got %d", id)
	}
}

func TestGetBook(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM libros WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "titulo", "autor", "anio", "categoria", "sinopsis", "precio", "cantidad"}).
			AddRow(5, "Rayuela", "Cortázar", 1963, "Novela", nil, 25.5, 3))

	book, err := adapter.GetBook(context.Background(), 5)
	if err != nil {
		t.Fatalf("GetBook failed: %v", err)
	}
	if book.Titulo != "Rayuela" || book.Anio != 1963 || book.Precio != 25.5 {
		t.Errorf("unexpected book: %+v", book)
	}
	if book.Categoria == nil || *book.Categoria != "Novela" {
		t.Errorf("expected categoria Novela, got %v", book.Categoria)
	}
	if book.Sinopsis != nil {
		t.Errorf("expected nil sinopsis, got %v", *book.Sinopsis)
	}
}

func TestGetBook_NotFound(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM libros WHERE id = ?")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "titulo", "autor", "anio", "categoria", "sinopsis", "precio", "cantidad"}))

	_, err := adapter.GetBook(context.Background(), 5)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestCreateCategory_Duplicate(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categorias (name) VALUES (?)")).
		WithArgs("Fiction").
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'Fiction' for key 'name'"})

	_, err := adapter.CreateCategory(context.Background(), "Fiction")
	if !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got: %v", err)
	}
}

func TestCreateCategory_OtherErrorIsNotDuplicate(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO categorias (name) VALUES (?)")).
		WithArgs("Fiction").
		WillReturnError(&mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"})

	_, err := adapter.CreateCategory(context.Background(), "Fiction")
	if err == nil || errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected non-duplicate error, got: %v", err)
	}
}

func TestOrderSnapshot_RoundTrip(t *testing.T) {
	adapter, mock := newMockAdapter(t)
	sinopsis := "Una novela"

	items := []domain.CartItem{
		{BookID: 5, Quantity: 2, Book: domain.Book{ID: 5, Titulo: "Rayuela", Autor: "Cortázar", Anio: 1963, Sinopsis: &sinopsis, Precio: 25.5, Cantidad: 3}},
		{BookID: 5, Quantity: 1, Book: domain.Book{ID: 5, Titulo: "Rayuela", Autor: "Cortázar", Anio: 1963, Sinopsis: &sinopsis, Precio: 25.5, Cantidad: 3}},
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO carrito (user_id, books)")).
		WithArgs(int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	id, err := adapter.CreateOrder(context.Background(), 1, items)
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	if id != 11 {
		t.Errorf("expected order id 11, got %d", id)
	}

	stored := mustJSON(t, items)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM carrito c")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "user_id", "username", "email", "books"}).
			AddRow(11, created, 1, "ana", "a@b.com", []byte(stored)))

	orders, err := adapter.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("ListOrders failed: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	got := orders[0]
	if got.OrderID != 11 || got.User.Username != "ana" || got.User.UserID != 1 {
		t.Errorf("unexpected order header: %+v", got)
	}
	if len(got.Books) != len(items) {
		t.Fatalf("expected %d lines, got %d", len(items), len(got.Books))
	}
	for i := range items {
		if got.Books[i].BookID != items[i].BookID || got.Books[i].Quantity != items[i].Quantity {
			t.Errorf("line %d: expected %+v, got %+v", i, items[i], got.Books[i])
		}
		if got.Books[i].Book.Titulo != "Rayuela" || *got.Books[i].Book.Sinopsis != sinopsis {
			t.Errorf("line %d: book snapshot not preserved: %+v", i, got.Books[i].Book)
		}
	}
}

func TestListOrders_CorruptSnapshot(t *testing.T) {
	adapter, mock := newMockAdapter(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM carrito c")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "user_id", "username", "email", "books"}).
			AddRow(1, time.Now(), 1, "ana", "a@b.com", []byte("{not json")))

	if _, err := adapter.ListOrders(context.Background()); err == nil {
		t.Error("expected decode error")
	}
}
