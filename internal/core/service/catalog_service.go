package service

import (
	"context"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// NewBook carries a book creation request. Nil means the field was absent.
type NewBook struct {
	Titulo    string
	Autor     string
	Anio      *int
	Categoria *string
	Sinopsis  *string
	Precio    *float64
	Cantidad  *int
}

type CatalogService struct {
	books      port.BookRepository
	categories port.CategoryRepository
}

func NewCatalogService(books port.BookRepository, categories port.CategoryRepository) *CatalogService {
	return &CatalogService{books: books, categories: categories}
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]domain.Book, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

func (s *CatalogService) CreateBook(ctx context.Context, in NewBook) (int64, error) {
	if in.Titulo == "" || in.Autor == "" ||
		in.Anio == nil || *in.Anio == 0 ||
		in.Precio == nil || *in.Precio == 0 ||
		in.Cantidad == nil || *in.Cantidad == 0 {
		return 0, fmt.Errorf("%w: titulo, autor, anio, precio, cantidad are required", ErrInvalidInput)
	}

	return s.books.CreateBook(ctx, domain.Book{
		Titulo:    in.Titulo,
		Autor:     in.Autor,
		Anio:      *in.Anio,
		Categoria: in.Categoria,
		Sinopsis:  in.Sinopsis,
		Precio:    *in.Precio,
		Cantidad:  *in.Cantidad,
	})
}

func (s *CatalogService) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	if id <= 0 {
		return nil, domain.ErrNotFound
	}
	return s.books.GetBook(ctx, id)
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (int64, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	return s.categories.CreateCategory(ctx, name)
}
