package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"osprey/api/bookpb"
)

const ServiceName = "osprey.OrderService"

// OrderServiceServer is the API surface registered with grpc.
type OrderServiceServer interface {
	PlaceOrder(ctx context.Context, req *bookpb.Order) (*bookpb.OrderAck, error)
	CancelOrder(ctx context.Context, req *bookpb.Cancel) (*bookpb.Ack, error)
	ModifyOrder(ctx context.Context, req *bookpb.Modify) (*bookpb.OrderAck, error)
	GetDepth(ctx context.Context, req *bookpb.DepthQuery) (*bookpb.DepthSnap, error)
}

// RegisterOrderServiceServer attaches srv to a grpc server.
func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&orderServiceDesc, srv)
}

var orderServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: placeOrderHandler},
		{MethodName: "CancelOrder", Handler: cancelOrderHandler},
		{MethodName: "ModifyOrder", Handler: modifyOrderHandler},
		{MethodName: "GetDepth", Handler: getDepthHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "osprey/api/bookpb",
}

func placeOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(bookpb.Order)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).PlaceOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/PlaceOrder"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).PlaceOrder(ctx, req.(*bookpb.Order))
	})
}

func cancelOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(bookpb.Cancel)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).CancelOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/CancelOrder"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).CancelOrder(ctx, req.(*bookpb.Cancel))
	})
}

func modifyOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(bookpb.Modify)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).ModifyOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/ModifyOrder"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).ModifyOrder(ctx, req.(*bookpb.Modify))
	})
}

func getDepthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(bookpb.DepthQuery)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderServiceServer).GetDepth(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/GetDepth"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderServiceServer).GetDepth(ctx, req.(*bookpb.DepthQuery))
	})
}

// OrderServiceClient mirrors the server interface for callers.
type OrderServiceClient interface {
	PlaceOrder(ctx context.Context, req *bookpb.Order, opts ...grpc.CallOption) (*bookpb.OrderAck, error)
	CancelOrder(ctx context.Context, req *bookpb.Cancel, opts ...grpc.CallOption) (*bookpb.Ack, error)
	ModifyOrder(ctx context.Context, req *bookpb.Modify, opts ...grpc.CallOption) (*bookpb.OrderAck, error)
	GetDepth(ctx context.Context, req *bookpb.DepthQuery, opts ...grpc.CallOption) (*bookpb.DepthSnap, error)
}

type orderServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderServiceClient builds a client on an established connection.
func NewOrderServiceClient(cc grpc.ClientConnInterface) OrderServiceClient {
	return &orderServiceClient{cc: cc}
}

func (c *orderServiceClient) invoke(ctx context.Context, method string, in, out Message, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.ForceCodec(Codec{})}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *orderServiceClient) PlaceOrder(ctx context.Context, req *bookpb.Order, opts ...grpc.CallOption) (*bookpb.OrderAck, error) {
	out := new(bookpb.OrderAck)
	if err := c.invoke(ctx, "PlaceOrder", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) CancelOrder(ctx context.Context, req *bookpb.Cancel, opts ...grpc.CallOption) (*bookpb.Ack, error) {
	out := new(bookpb.Ack)
	if err := c.invoke(ctx, "CancelOrder", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) ModifyOrder(ctx context.Context, req *bookpb.Modify, opts ...grpc.CallOption) (*bookpb.OrderAck, error) {
	out := new(bookpb.OrderAck)
	if err := c.invoke(ctx, "ModifyOrder", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderServiceClient) GetDepth(ctx context.Context, req *bookpb.DepthQuery, opts ...grpc.CallOption) (*bookpb.DepthSnap, error) {
	out := new(bookpb.DepthSnap)
	if err := c.invoke(ctx, "GetDepth", req, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
