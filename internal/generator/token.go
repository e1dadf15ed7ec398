package generator

import (
	"crypto/rand"
	"errors"
)

// TokenLength is the size of every generated short URL token.
const TokenLength = 8

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxByte is the largest multiple of len(alphabet) that fits in a byte.
// Bytes at or above it are rejected so every symbol is equally likely.
const maxByte = 256 - 256%len(alphabet)

// ErrInvalidLength is returned for negative token lengths.
var ErrInvalidLength = errors.New("token length must not be negative")

// Token returns a random alphanumeric string of exactly length characters
// drawn from crypto/rand.
func Token(length int) (string, error) {
	if length < 0 {
		return "", ErrInvalidLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)

	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}

		for _, b := range buf {
			if int(b) >= maxByte {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}

// ShortURL returns a token of TokenLength characters.
func ShortURL() (string, error) {
	return Token(TokenLength)
}
