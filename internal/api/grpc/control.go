// internal/api/grpc/control.go
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified name of the control service.
const ServiceName = "dispatch.v1.Control"

const (
	submitOrderMethod = "/" + ServiceName + "/SubmitOrder"
	addBotMethod      = "/" + ServiceName + "/AddBot"
	removeBotMethod   = "/" + ServiceName + "/RemoveBot"
	snapshotMethod    = "/" + ServiceName + "/Snapshot"
)

// ControlServer is the server API for the control service.
// Messages are protobuf well-known types so no generated code is needed.
type ControlServer interface {
	// SubmitOrder takes a priority ("normal" or "high") and returns the new order id.
	SubmitOrder(context.Context, *wrapperspb.StringValue) (*wrapperspb.StringValue, error)
	// AddBot returns the id of the new bot.
	AddBot(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	// RemoveBot returns the id of the removed bot, or 0 when the pool was empty.
	RemoveBot(context.Context, *emptypb.Empty) (*wrapperspb.Int64Value, error)
	// Snapshot returns the queues and the pool as a JSON-like struct.
	Snapshot(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// RegisterControlServer registers srv on s.
func RegisterControlServer(s grpc.ServiceRegistrar, srv ControlServer) {
	s.RegisterService(&controlServiceDesc, srv)
}

var controlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitOrder", Handler: submitOrderHandler},
		{MethodName: "AddBot", Handler: addBotHandler},
		{MethodName: "RemoveBot", Handler: removeBotHandler},
		{MethodName: "Snapshot", Handler: snapshotHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "dispatch/v1/control.proto",
}

func submitOrderHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).SubmitOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: submitOrderMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).SubmitOrder(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func addBotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).AddBot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: addBotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).AddBot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func removeBotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).RemoveBot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: removeBotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).RemoveBot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func snapshotHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlServer).Snapshot(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: snapshotMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlServer).Snapshot(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// ControlClient is the client API for the control service.
type ControlClient struct {
	cc grpc.ClientConnInterface
}

// NewControlClient creates a client on top of cc.
func NewControlClient(cc grpc.ClientConnInterface) *ControlClient {
	return &ControlClient{cc: cc}
}

// SubmitOrder submits an order of the given priority and returns its id.
func (c *ControlClient) SubmitOrder(ctx context.Context, priority string, opts ...grpc.CallOption) (string, error) {
	out := new(wrapperspb.StringValue)
	if err := c.cc.Invoke(ctx, submitOrderMethod, wrapperspb.String(priority), out, opts...); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}

// AddBot adds a bot and returns its id.
func (c *ControlClient) AddBot(ctx context.Context, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, addBotMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// RemoveBot removes the newest bot and returns its id, 0 if the pool was empty.
func (c *ControlClient) RemoveBot(ctx context.Context, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.cc.Invoke(ctx, removeBotMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

// Snapshot fetches the current queues and pool.
func (c *ControlClient) Snapshot(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, snapshotMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
