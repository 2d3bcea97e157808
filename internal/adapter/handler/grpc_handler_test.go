package handler

import (
	"context"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/core/service"
)

func newGRPCClient(t *testing.T) (*CartServiceClient, *storage.MemoryStore) {
	t.Helper()

	log := zerolog.Nop()
	store := storage.NewMemoryStore()
	carts := storage.NewMemoryCartStore()

	srv := grpc.NewServer()
	RegisterCartServiceServer(srv, NewGRPCHandler(
		service.NewCatalogService(store, store),
		service.NewCartService(store, store, carts, messaging.NoopPublisher{}, log),
		log,
	))

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewCartServiceClient(conn), store
}

func TestGRPC_GetBook(t *testing.T) {
	client, store := newGRPCClient(t)
	ctx := context.Background()

	id, err := store.CreateBook(ctx, domain.Book{Titulo: "Aura", Autor: "Fuentes", Anio: 1962, Precio: 9, Cantidad: 1})
	require.NoError(t, err)

	resp, err := client.GetBook(ctx, &GetBookRPCRequest{ID: id})
	require.NoError(t, err)
	assert.True(t, resp.Found)
	require.NotNil(t, resp.Book)
	assert.Equal(t, "Aura", resp.Book.Titulo)

	resp, err = client.GetBook(ctx, &GetBookRPCRequest{ID: id + 100})
	require.NoError(t, err)
	assert.False(t, resp.Found)
	assert.Equal(t, "book not found", resp.Message)
}

func TestGRPC_AddToCartAndCheckout(t *testing.T) {
	client, store := newGRPCClient(t)
	ctx := context.Background()

	userID, err := store.CreateUser(ctx, "ana", "a@x.com", "x")
	require.NoError(t, err)
	bookID, err := store.CreateBook(ctx, domain.Book{Titulo: "Aura", Autor: "Fuentes", Anio: 1962, Precio: 9, Cantidad: 1})
	require.NoError(t, err)

	added, err := client.AddToCart(ctx, &AddToCartRPCRequest{UserID: userID, BookID: bookID, Quantity: 3})
	require.NoError(t, err)
	assert.True(t, added.Success)
	require.Len(t, added.Items, 1)
	assert.Equal(t, 3, added.Items[0].Quantity)

	placed, err := client.Checkout(ctx, &CheckoutRPCRequest{UserID: userID})
	require.NoError(t, err)
	assert.True(t, placed.Success)
	assert.NotZero(t, placed.OrderID)

	orders, err := store.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, placed.OrderID, orders[0].OrderID)
}

func TestGRPC_ErrorsAreReportedInResponse(t *testing.T) {
	client, _ := newGRPCClient(t)
	ctx := context.Background()

	added, err := client.AddToCart(ctx, &AddToCartRPCRequest{UserID: 1, BookID: 1, Quantity: 0})
	require.NoError(t, err)
	assert.False(t, added.Success)
	assert.Equal(t, "invalid input", added.Message)

	added, err = client.AddToCart(ctx, &AddToCartRPCRequest{UserID: 1, BookID: 7, Quantity: 1})
	require.NoError(t, err)
	assert.False(t, added.Success)
	assert.Equal(t, "book not found", added.Message)

	placed, err := client.Checkout(ctx, &CheckoutRPCRequest{UserID: 1})
	require.NoError(t, err)
	assert.False(t, placed.Success)
	assert.Equal(t, "cart is empty", placed.Message)
}
