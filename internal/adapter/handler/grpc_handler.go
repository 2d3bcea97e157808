package handler

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
)

type GRPCHandler struct {
	catalog *service.CatalogService
	carts   *service.CartService
	log     zerolog.Logger
}

func NewGRPCHandler(catalog *service.CatalogService, carts *service.CartService, log zerolog.Logger) *GRPCHandler {
	return &GRPCHandler{catalog: catalog, carts: carts, log: log}
}

func (h *GRPCHandler) AddToCart(ctx context.Context, req *AddToCartRPCRequest) (*AddToCartRPCResponse, error) {
	items, err := h.carts.Add(ctx, req.UserID, req.BookID, int(req.Quantity))
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return &AddToCartRPCResponse{
				Success: false,
				Message: "invalid input",
			}, nil
		}
		if errors.Is(err, domain.ErrNotFound) {
			return &AddToCartRPCResponse{
				Success: false,
				Message: "book not found",
			}, nil
		}
		h.log.Error().Err(err).Msg("grpc add to cart")
		return &AddToCartRPCResponse{
			Success: false,
			Message: "internal error",
		}, nil
	}

	return &AddToCartRPCResponse{
		Success: true,
		Message: "book added to cart",
		Items:   items,
	}, nil
}

func (h *GRPCHandler) Checkout(ctx context.Context, req *CheckoutRPCRequest) (*CheckoutRPCResponse, error) {
	orderID, err := h.carts.Checkout(ctx, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInput):
			return &CheckoutRPCResponse{Message: "user id required"}, nil
		case errors.Is(err, domain.ErrEmptyCart):
			return &CheckoutRPCResponse{Message: "cart is empty"}, nil
		case errors.Is(err, domain.ErrCheckoutInProgress):
			return &CheckoutRPCResponse{Message: "checkout already in progress"}, nil
		}
		h.log.Error().Err(err).Msg("grpc checkout")
		return &CheckoutRPCResponse{Message: "internal error"}, nil
	}

	return &CheckoutRPCResponse{
		Success: true,
		Message: "order placed successfully",
		OrderID: orderID,
	}, nil
}

func (h *GRPCHandler) GetBook(ctx context.Context, req *GetBookRPCRequest) (*GetBookRPCResponse, error) {
	book, err := h.catalog.GetBook(ctx, req.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &GetBookRPCResponse{Message: "book not found"}, nil
		}
		h.log.Error().Err(err).Msg("grpc get book")
		return &GetBookRPCResponse{Message: "internal error"}, nil
	}

	return &GetBookRPCResponse{Found: true, Book: book}, nil
}
