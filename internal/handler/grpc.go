package handler

import (
	"context"
	"errors"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/proto"
	"github.com/MikhailRaia/shortlink/internal/service"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type ShortenerGRPCServer struct {
	shortener URLShortener
	resolver  URLResolver
}

func NewShortenerGRPCServer(shortener URLShortener, resolver URLResolver) *ShortenerGRPCServer {
	return &ShortenerGRPCServer{
		shortener: shortener,
		resolver:  resolver,
	}
}

// NewGRPCServer returns a grpc.Server with the Shortener service registered.
func NewGRPCServer(shortener URLShortener, resolver URLResolver, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.ChainUnaryInterceptor(loggingInterceptor)}, opts...)
	srv := grpc.NewServer(opts...)
	proto.RegisterShortenerServer(srv, NewShortenerGRPCServer(shortener, resolver))
	return srv
}

func (s *ShortenerGRPCServer) Shorten(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "originalUrl is required")
	}

	mapping, err := s.shortener.Shorten(ctx, req.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}

	return mappingToStruct(mapping)
}

func (s *ShortenerGRPCServer) Resolve(ctx context.Context, req *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if req.GetValue() == "" {
		return nil, status.Error(codes.InvalidArgument, "shortUrl is required")
	}

	originalURL, err := s.resolver.Resolve(ctx, req.GetValue())
	if err != nil {
		return nil, grpcError(err)
	}

	return wrapperspb.String(originalURL), nil
}

func grpcError(err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return status.Error(codes.NotFound, "short url not found")
	default:
		log.Error().Err(err).Msg("gRPC storage failure")
		return status.Error(codes.Internal, "server error")
	}
}

func mappingToStruct(mapping model.URLMapping) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(map[string]interface{}{
		"originalUrl": mapping.OriginalURL,
		"shortUrl":    mapping.ShortURL,
		"clicks":      float64(mapping.Clicks),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode mapping: %v", err)
	}
	return out, nil
}

func loggingInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	resp, err := handler(ctx, req)

	event := log.Info()
	if status.Code(err) == codes.Internal {
		event = log.Warn()
	}
	event.
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Msg("gRPC request processed")

	return resp, err
}
