package handler

import (
	"context"

	"google.golang.org/grpc"

	"github.com/rl1809/bookstore/internal/core/domain"
)

const cartServiceName = "bookstore.CartService"

type AddToCartRPCRequest struct {
	UserID   int64 `json:"userId"`
	BookID   int64 `json:"bookId"`
	Quantity int32 `json:"quantity"`
}

type AddToCartRPCResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Items   []domain.CartItem `json:"items,omitempty"`
}

type CheckoutRPCRequest struct {
	UserID int64 `json:"userId"`
}

type CheckoutRPCResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OrderID int64  `json:"orderId,omitempty"`
}

type GetBookRPCRequest struct {
	ID int64 `json:"id"`
}

type GetBookRPCResponse struct {
	Found   bool         `json:"found"`
	Message string       `json:"message,omitempty"`
	Book    *domain.Book `json:"book,omitempty"`
}

// CartServiceServer is the server API of bookstore.CartService.
type CartServiceServer interface {
	AddToCart(context.Context, *AddToCartRPCRequest) (*AddToCartRPCResponse, error)
	Checkout(context.Context, *CheckoutRPCRequest) (*CheckoutRPCResponse, error)
	GetBook(context.Context, *GetBookRPCRequest) (*GetBookRPCResponse, error)
}

func RegisterCartServiceServer(s grpc.ServiceRegistrar, srv CartServiceServer) {
	s.RegisterService(&cartServiceDesc, srv)
}

var cartServiceDesc = grpc.ServiceDesc{
	ServiceName: cartServiceName,
	HandlerType: (*CartServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddToCart",
			Handler:    unaryHandler("AddToCart", CartServiceServer.AddToCart),
		},
		{
			MethodName: "Checkout",
			Handler:    unaryHandler("Checkout", CartServiceServer.Checkout),
		},
		{
			MethodName: "GetBook",
			Handler:    unaryHandler("GetBook", CartServiceServer.GetBook),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookstore/cart",
}

func fullMethod(method string) string {
	return "/" + cartServiceName + "/" + method
}

func unaryHandler[Req, Resp any](method string, call func(CartServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CartServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(method)}
		return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
			return call(srv.(CartServiceServer), ctx, req.(*Req))
		})
	}
}

// CartServiceClient calls bookstore.CartService with the JSON codec.
type CartServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewCartServiceClient(cc grpc.ClientConnInterface) *CartServiceClient {
	return &CartServiceClient{cc: cc}
}

func (c *CartServiceClient) AddToCart(ctx context.Context, in *AddToCartRPCRequest, opts ...grpc.CallOption) (*AddToCartRPCResponse, error) {
	out := new(AddToCartRPCResponse)
	if err := c.invoke(ctx, "AddToCart", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) Checkout(ctx context.Context, in *CheckoutRPCRequest, opts ...grpc.CallOption) (*CheckoutRPCResponse, error) {
	out := new(CheckoutRPCResponse)
	if err := c.invoke(ctx, "Checkout", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) GetBook(ctx context.Context, in *GetBookRPCRequest, opts ...grpc.CallOption) (*GetBookRPCResponse, error) {
	out := new(GetBookRPCResponse)
	if err := c.invoke(ctx, "GetBook", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *CartServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	return c.cc.Invoke(ctx, fullMethod(method), in, out, opts...)
}
