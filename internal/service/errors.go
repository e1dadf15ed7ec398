package service

import "errors"

// Error classes reported by the shortener and resolver. Transports map them to
// status codes with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrStorage    = errors.New("storage error")
)
