// internal/api/grpc/server.go
package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"bot-dispatch/internal/domain"
	"bot-dispatch/internal/usecase"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	grpc_codes "google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

var _ ControlServer = (*Server)(nil)

// Server implements ControlServer on top of the dispatch service.
type Server struct {
	service *usecase.DispatchService
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewServer creates a new gRPC control server.
func NewServer(service *usecase.DispatchService, logger *slog.Logger) *Server {
	return &Server{
		service: service,
		logger:  logger.With("component", "grpc-server"),
		tracer:  otel.Tracer("bot-dispatch-grpc"),
	}
}

func (s *Server) SubmitOrder(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	ctx, span := s.tracer.Start(ctx, "grpc.SubmitOrder")
	defer span.End()
	span.SetAttributes(attribute.String("order.priority", req.GetValue()))

	order, err := s.service.SubmitOrder(ctx, domain.Priority(req.GetValue()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to submit order")
		return nil, toStatus(err)
	}

	s.logger.Debug("order submitted over grpc", "order_id", order.ID)
	return wrapperspb.String(string(order.ID)), nil
}

func (s *Server) AddBot(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	bot := s.service.AddBot(ctx)
	return wrapperspb.Int64(int64(bot.ID)), nil
}

func (s *Server) RemoveBot(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.Int64Value, error) {
	id, _ := s.service.RemoveBot(ctx)
	return wrapperspb.Int64(int64(id)), nil
}

func (s *Server) Snapshot(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	ctx, span := s.tracer.Start(ctx, "grpc.Snapshot")
	defer span.End()

	out, err := snapshotToStruct(s.service.Snapshot(ctx))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to encode snapshot")
		s.logger.Error("failed to encode snapshot", "error", err)
		return nil, status.Error(grpc_codes.Internal, "failed to encode snapshot")
	}
	return out, nil
}

// snapshotToStruct goes through JSON so the struct carries the same field
// names as the HTTP API.
func snapshotToStruct(snap domain.Snapshot) (*structpb.Struct, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidPriority):
		return status.Error(grpc_codes.InvalidArgument, err.Error())
	case errors.Is(err, domain.ErrJobNotFound):
		return status.Error(grpc_codes.NotFound, err.Error())
	default:
		return status.Error(grpc_codes.Internal, err.Error())
	}
}
