package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/MikhailRaia/shortlink/internal/model"
	"github.com/MikhailRaia/shortlink/internal/pool"
	"github.com/MikhailRaia/shortlink/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

const maxRequestBody = 1 << 20

var bufferPool = pool.New(64, func() *bytes.Buffer { return new(bytes.Buffer) })

// HandleShorten creates a mapping from a {"originalUrl": "..."} body.
func (h *Handler) HandleShorten(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()

	var request model.ShortenRequest
	if err := decoder.Decode(&request); err != nil || decoder.Decode(&struct{}{}) != io.EOF {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
		return
	}

	if request.OriginalURL == "" {
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "originalUrl is required"})
		return
	}

	mapping, err := h.shortener.Shorten(r.Context(), request.OriginalURL)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: err.Error()})
			return
		}

		log.Error().Err(err).Msg("Failed to shorten URL")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, model.ShortenResponse{
		Message: "URL Generated",
		URL:     mapping,
	})
}

// HandleLookup returns the stored mapping without counting a visit.
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	shortURL := chi.URLParam(r, shortURLParam)

	mapping, err := h.resolver.Lookup(r.Context(), shortURL)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, model.MessageResponse{Message: "Short URL not found"})
			return
		}

		log.Error().Err(err).Str("shortUrl", shortURL).Msg("Failed to look up short URL")
		writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "Server error"})
		return
	}

	writeJSON(w, http.StatusOK, mapping)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	buf := bufferPool.Get()
	defer bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
