package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/MikhailRaia/shortlink/internal/logger"
	"github.com/MikhailRaia/shortlink/internal/middleware"
	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

const shortURLParam = "shortUrl"

// URLShortener creates short URL mappings.
type URLShortener interface {
	Shorten(ctx context.Context, originalURL string) (model.URLMapping, error)
}

// URLResolver looks up short URL mappings.
type URLResolver interface {
	Resolve(ctx context.Context, shortURL string) (string, error)
	Lookup(ctx context.Context, shortURL string) (model.URLMapping, error)
}

// DBPinger reports whether the mapping store is reachable.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the HTTP API of the shortener.
type Handler struct {
	shortener URLShortener
	resolver  URLResolver
	dbPinger  DBPinger
}

// NewHandler creates a Handler. dbPinger may be nil, in which case /ping fails.
func NewHandler(shortener URLShortener, resolver URLResolver, dbPinger DBPinger) *Handler {
	return &Handler{
		shortener: shortener,
		resolver:  resolver,
		dbPinger:  dbPinger,
	}
}

// RegisterRoutes builds the chi router with all endpoints and middleware.
func (h *Handler) RegisterRoutes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Use(logger.RequestLogger)

	r.Use(middleware.GzipReader)
	r.Use(middleware.GzipMiddleware)

	r.Post("/api/short", h.HandleShorten)
	r.Get("/api/short/{"+shortURLParam+"}", h.HandleLookup)
	r.Get("/ping", h.handlePing)
	r.Get("/{"+shortURLParam+"}", h.HandleRedirect)

	return r
}

// HandleRedirect counts a visit and redirects to the original URL.
func (h *Handler) HandleRedirect(w http.ResponseWriter, r *http.Request) {
	shortURL := chi.URLParam(r, shortURLParam)

	originalURL, err := h.resolver.Resolve(r.Context(), shortURL)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, model.MessageResponse{Message: "Short URL not found"})
			return
		}

		log.Error().Err(err).Str("shortUrl", shortURL).Msg("Failed to resolve short URL")
		writeJSON(w, http.StatusInternalServerError, model.MessageResponse{
			Message: "Error redirecting",
			Error:   service.ErrStorage.Error(),
		})
		return
	}

	w.Header().Set("Location", originalURL)
	w.WriteHeader(http.StatusFound)
}

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	if h.dbPinger == nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	err := h.dbPinger.Ping(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Storage ping failed")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}
