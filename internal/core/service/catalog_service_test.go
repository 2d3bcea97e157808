package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/core/domain"
)

func intPtr(v int) *int { return &v }
func floatPtr(v float64) *float64 { return &v }
func stringPtr(v string) *string { return &v }

func validBook() NewBook {
	return NewBook{
		Titulo:    "Pedro Páramo",
		Autor:     "Rulfo",
		Anio:      intPtr(1955),
		Categoria: stringPtr("Novela"),
		Precio:    floatPtr(12.5),
		Cantidad:  intPtr(4),
	}
}

func TestCreateBook_ThenGet(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewCatalogService(store, store)
	ctx := context.Background()

	id, err := svc.CreateBook(ctx, validBook())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	book, err := svc.GetBook(ctx, id)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if book.Titulo != "Pedro Páramo" || book.Anio != 1955 || book.Precio != 12.5 || book.Cantidad != 4 {
		t.Errorf("unexpected book: %+v", book)
	}
	if book.Categoria == nil || *book.Categoria != "Novela" || book.Sinopsis != nil {
		t.Errorf("unexpected optional fields: %+v", book)
	}
}

func TestCreateBook_MissingFields(t *testing.T) {
	svc := NewCatalogService(storage.NewMemoryStore(), storage.NewMemoryStore())

	mutations := map[string]func(*NewBook){
		"titulo":   func(b *NewBook) { b.Titulo = "" },
		"autor":    func(b *NewBook) { b.Autor = "" },
		"anio":     func(b *NewBook) { b.Anio = nil },
		"precio":   func(b *NewBook) { b.Precio = nil },
		"cantidad": func(b *NewBook) { b.Cantidad = nil },
		"zero":     func(b *NewBook) { b.Cantidad = intPtr(0) },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			in := validBook()
			mutate(&in)
			if _, err := svc.CreateBook(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got: %v", err)
			}
		})
	}
}

func TestCreateBook_OptionalFieldsMayBeAbsent(t *testing.T) {
	svc := NewCatalogService(storage.NewMemoryStore(), storage.NewMemoryStore())

	in := validBook()
	in.Categoria = nil
	in.Sinopsis = nil
	if _, err := svc.CreateBook(context.Background(), in); err != nil {
		t.Errorf("expected success, got: %v", err)
	}
}

func TestGetBook_InvalidID(t *testing.T) {
	svc := NewCatalogService(storage.NewMemoryStore(), storage.NewMemoryStore())

	if _, err := svc.GetBook(context.Background(), -1); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestCreateCategory(t *testing.T) {
	store := storage.NewMemoryStore()
	svc := NewCatalogService(store, store)
	ctx := context.Background()

	if _, err := svc.CreateCategory(ctx, ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got: %v", err)
	}

	if _, err := svc.CreateCategory(ctx, "Fiction"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.CreateCategory(ctx, "Fiction"); !errors.Is(err, domain.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got: %v", err)
	}
}

func TestCreateBook_WhitespaceTextIsPresent(t *testing.T) {
	svc := NewCatalogService(storage.NewMemoryStore(), storage.NewMemoryStore())

	in := validBook()
	in.Titulo = " "
	in.Autor = "  "
	if _, err := svc.CreateBook(context.Background(), in); err != nil {
		t.Errorf("expected whitespace titulo/autor to be accepted, got: %v", err)
	}
}
