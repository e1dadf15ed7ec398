package handler

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/proto"
	"github.com/MikhailRaia/shortlink/internal/service"
	"github.com/MikhailRaia/shortlink/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newBufconnClient(t *testing.T, shortener URLShortener, resolver URLResolver) *proto.ShortenerClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer(shortener, resolver)
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

	return proto.NewShortenerClient(conn)
}

func TestGRPC_ShortenAndResolve(t *testing.T) {
	store := memory.NewStorage()
	client := newBufconnClient(t, service.NewShortener(store), service.NewResolver(store))
	ctx := context.Background()

	created, err := client.Shorten(ctx, wrapperspb.String("https://example.com"))
	require.NoError(t, err)

	fields := created.AsMap()
	assert.Equal(t, "https://example.com", fields["originalUrl"])
	assert.Equal(t, float64(0), fields["clicks"])
	shortURL, ok := fields["shortUrl"].(string)
	require.True(t, ok)
	assert.Len(t, shortURL, 8)

	resolved, err := client.Resolve(ctx, wrapperspb.String(shortURL))
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", resolved.GetValue())

	stored, err := store.Get(ctx, shortURL)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Clicks)
}

func TestGRPC_Errors(t *testing.T) {
	shortener := &mockShortener{
		shortenFunc: func(string) (model.URLMapping, error) {
			return model.URLMapping{}, errors.Join(service.ErrStorage, errors.New("disk full"))
		},
	}
	resolver := &mockResolver{
		resolveFunc: func(string) (string, error) {
			return "", service.ErrNotFound
		},
	}
	client := newBufconnClient(t, shortener, resolver)
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func() error
		wantCode codes.Code
	}{
		{
			name: "Shorten empty URL",
			call: func() error {
				_, err := client.Shorten(ctx, wrapperspb.String(""))
				return err
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "Shorten storage failure",
			call: func() error {
				_, err := client.Shorten(ctx, wrapperspb.String("https://example.com"))
				return err
			},
			wantCode: codes.Internal,
		},
		{
			name: "Resolve empty token",
			call: func() error {
				_, err := client.Resolve(ctx, wrapperspb.String(""))
				return err
			},
			wantCode: codes.InvalidArgument,
		},
		{
			name: "Resolve unknown token",
			call: func() error {
				_, err := client.Resolve(ctx, wrapperspb.String("doesnotexist"))
				return err
			},
			wantCode: codes.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, status.Code(err))
		})
	}

	assert.Equal(t, 1, shortener.calls)
}
