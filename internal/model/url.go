package model

// URLMapping is a stored short URL together with its visit counter.
type URLMapping struct {
	OriginalURL string `json:"originalUrl"`
	ShortURL    string `json:"shortUrl"`
	Clicks      int64  `json:"clicks"`
}

// ShortenRequest is the body accepted by POST /api/short.
type ShortenRequest struct {
	OriginalURL string `json:"originalUrl"`
}

// ShortenResponse is returned after a mapping has been created.
type ShortenResponse struct {
	Message string     `json:"message"`
	URL     URLMapping `json:"url"`
}

// ErrorResponse carries a failure reported to API clients.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is used by the redirect endpoints, which report failures
// under "message" and optionally the underlying error text.
type MessageResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
