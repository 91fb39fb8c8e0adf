// Package discountrpc is the wire contract of the discount service.
//
// The service is described by hand with a grpc.ServiceDesc and carries protobuf
// well-known types (wrapperspb, structpb), so no generated stubs are needed.
// Coupons travel as a structpb.Struct; the amount is encoded as a decimal string
// to keep it exact.
package discountrpc

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "discount.v1.DiscountProtoService"

	GetDiscountMethod    = "/" + ServiceName + "/GetDiscount"
	CreateDiscountMethod = "/" + ServiceName + "/CreateDiscount"
	UpdateDiscountMethod = "/" + ServiceName + "/UpdateDiscount"
	DeleteDiscountMethod = "/" + ServiceName + "/DeleteDiscount"
)

// Coupon is the discount granted to one product.
type Coupon struct {
	ID          int64
	ProductName string
	Description string
	Amount      decimal.Decimal
}

func (c Coupon) ToStruct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"id":          c.ID,
		"productName": c.ProductName,
		"description": c.Description,
		"amount":      c.Amount.String(),
	})
}

func CouponFromStruct(s *structpb.Struct) (Coupon, error) {
	fields := s.GetFields()
	c := Coupon{
		ID:          int64(fields["id"].GetNumberValue()),
		ProductName: fields["productName"].GetStringValue(),
		Description: fields["description"].GetStringValue(),
		Amount:      decimal.Zero,
	}
	if raw := fields["amount"].GetStringValue(); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return Coupon{}, fmt.Errorf("discountrpc: invalid amount %q: %w", raw, err)
		}
		c.Amount = amount
	}
	return c, nil
}

// DiscountServer is implemented by the discount service.
type DiscountServer interface {
	GetDiscount(ctx context.Context, productName string) (Coupon, error)
	CreateDiscount(ctx context.Context, coupon Coupon) (Coupon, error)
	UpdateDiscount(ctx context.Context, coupon Coupon) (Coupon, error)
	DeleteDiscount(ctx context.Context, productName string) (bool, error)
}

func RegisterDiscountServer(s grpc.ServiceRegistrar, srv DiscountServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*DiscountServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetDiscount", Handler: getDiscountHandler},
		{MethodName: "CreateDiscount", Handler: createDiscountHandler},
		{MethodName: "UpdateDiscount", Handler: updateDiscountHandler},
		{MethodName: "DeleteDiscount", Handler: deleteDiscountHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "discount/v1/discount.proto",
}

func getDiscountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		c, err := srv.(DiscountServer).GetDiscount(ctx, req.(*wrapperspb.StringValue).GetValue())
		if err != nil {
			return nil, err
		}
		return c.ToStruct()
	}
	return intercept(ctx, in, srv, GetDiscountMethod, handler, interceptor)
}

func createDiscountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return couponCall(srv, ctx, dec, interceptor, CreateDiscountMethod, DiscountServer.CreateDiscount)
}

func updateDiscountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return couponCall(srv, ctx, dec, interceptor, UpdateDiscountMethod, DiscountServer.UpdateDiscount)
}

func deleteDiscountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		ok, err := srv.(DiscountServer).DeleteDiscount(ctx, req.(*wrapperspb.StringValue).GetValue())
		if err != nil {
			return nil, err
		}
		return wrapperspb.Bool(ok), nil
	}
	return intercept(ctx, in, srv, DeleteDiscountMethod, handler, interceptor)
}

func couponCall(
	srv any,
	ctx context.Context,
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
	method string,
	call func(DiscountServer, context.Context, Coupon) (Coupon, error),
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		c, err := CouponFromStruct(req.(*structpb.Struct))
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, err.Error())
		}
		out, err := call(srv.(DiscountServer), ctx, c)
		if err != nil {
			return nil, err
		}
		return out.ToStruct()
	}
	return intercept(ctx, in, srv, method, handler, interceptor)
}

func intercept(ctx context.Context, in any, srv any, method string, handler grpc.UnaryHandler, interceptor grpc.UnaryServerInterceptor) (any, error) {
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
	return interceptor(ctx, in, info, handler)
}

// Client calls the discount service over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func (c *Client) GetDiscount(ctx context.Context, productName string, opts ...grpc.CallOption) (Coupon, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetDiscountMethod, wrapperspb.String(productName), out, opts...); err != nil {
		return Coupon{}, err
	}
	return CouponFromStruct(out)
}

func (c *Client) CreateDiscount(ctx context.Context, coupon Coupon, opts ...grpc.CallOption) (Coupon, error) {
	return c.couponCall(ctx, CreateDiscountMethod, coupon, opts...)
}

func (c *Client) UpdateDiscount(ctx context.Context, coupon Coupon, opts ...grpc.CallOption) (Coupon, error) {
	return c.couponCall(ctx, UpdateDiscountMethod, coupon, opts...)
}

func (c *Client) DeleteDiscount(ctx context.Context, productName string, opts ...grpc.CallOption) (bool, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, DeleteDiscountMethod, wrapperspb.String(productName), out, opts...); err != nil {
		return false, err
	}
	return out.GetValue(), nil
}

func (c *Client) couponCall(ctx context.Context, method string, coupon Coupon, opts ...grpc.CallOption) (Coupon, error) {
	in, err := coupon.ToStruct()
	if err != nil {
		return Coupon{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return Coupon{}, err
	}
	return CouponFromStruct(out)
}
