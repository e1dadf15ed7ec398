package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/MikhailRaia/shortlink/internal/config"
	"github.com/MikhailRaia/shortlink/internal/handler"
	"github.com/MikhailRaia/shortlink/internal/middleware"
	"github.com/MikhailRaia/shortlink/internal/service"
	"github.com/MikhailRaia/shortlink/internal/storage"
	"github.com/MikhailRaia/shortlink/internal/storage/file"
	"github.com/MikhailRaia/shortlink/internal/storage/memory"
	"github.com/MikhailRaia/shortlink/internal/storage/postgres"
	"github.com/MikhailRaia/shortlink/internal/storage/redis"
	"github.com/MikhailRaia/shortlink/internal/storage/sqlite"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const readHeaderTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	store      storage.MappingStore
	handler    http.Handler
	grpcServer *grpc.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	store, err := openStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	shortener := service.NewShortener(store)
	resolver := service.NewResolver(store)

	httpHandler := handler.NewHandler(shortener, resolver, store)

	a := &App{
		config:  cfg,
		store:   store,
		handler: middleware.CORS(cfg.CORSOrigins)(httpHandler.RegisterRoutes()),
	}

	if cfg.GRPCAddress != "" {
		a.grpcServer = handler.NewGRPCServer(shortener, resolver)
	}

	return a, nil
}

// openStore picks the mapping store from the scheme of dsn.
func openStore(ctx context.Context, dsn string) (storage.MappingStore, error) {
	switch {
	case dsn == "" || dsn == "memory://":
		log.Info().Msg("Using in-memory storage")
		return memory.NewStorage(), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		log.Info().Msg("Using PostgreSQL storage")
		return postgres.NewStorage(ctx, dsn)
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		log.Info().Msg("Using Redis storage")
		return redis.NewStorage(ctx, dsn)
	case strings.HasPrefix(dsn, "sqlite://"):
		path := strings.TrimPrefix(dsn, "sqlite://")
		log.Info().Str("path", path).Msg("Using SQLite storage")
		return sqlite.NewStorage(path)
	case strings.HasPrefix(dsn, "file://"):
		path := strings.TrimPrefix(dsn, "file://")
		log.Info().Str("path", path).Msg("Using file storage")
		return file.NewStorage(path)
	}

	scheme, _, _ := strings.Cut(dsn, "://")
	return nil, fmt.Errorf("unsupported database url scheme %q", scheme)
}

// Handler returns the HTTP handler served by the app.
func (a *App) Handler() http.Handler {
	return a.handler
}

// Run serves HTTP, and gRPC when configured, until ctx is cancelled. The
// store is closed once both servers have stopped.
func (a *App) Run(ctx context.Context) error {
	httpListener, err := net.Listen("tcp", a.config.ServerAddress)
	if err != nil {
		a.closeStore()
		return fmt.Errorf("listen http: %w", err)
	}

	var grpcListener net.Listener
	if a.grpcServer != nil {
		grpcListener, err = net.Listen("tcp", a.config.GRPCAddress)
		if err != nil {
			httpListener.Close()
			a.closeStore()
			return fmt.Errorf("listen grpc: %w", err)
		}
	}

	return a.serve(ctx, httpListener, grpcListener)
}

func (a *App) serve(ctx context.Context, httpListener, grpcListener net.Listener) error {
	defer a.closeStore()

	server := &http.Server{
		Handler:           a.handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("address", httpListener.Addr().String()).Msg("Starting HTTP server")
		if err := server.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if a.grpcServer != nil && grpcListener != nil {
		g.Go(func() error {
			log.Info().Str("address", grpcListener.Addr().String()).Msg("Starting gRPC server")
			if err := a.grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("grpc server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()

		if a.grpcServer != nil {
			a.stopGRPC(shutdownCtx)
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// stopGRPC waits for in-flight calls until ctx expires, then forces the stop.
func (a *App) stopGRPC(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		a.grpcServer.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("gRPC graceful stop timed out")
		a.grpcServer.Stop()
	}
}

func (a *App) closeStore() {
	if err := a.store.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close storage")
	}
}
