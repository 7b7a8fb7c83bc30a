package token

import (
	"crypto/subtle"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultLength is the size of issued capability tokens.
const DefaultLength = 32

// Issuer allocates order identifiers and capability tokens.
type Issuer interface {
	NewID() string
	NewToken() (string, error)
}

// NanoIssuer issues UUID identifiers and URL-safe nanoid tokens.
type NanoIssuer struct {
	length int
}

// NewNanoIssuer builds NanoIssuer producing tokens of given length.
func NewNanoIssuer(length int) *NanoIssuer {
	if length <= 0 {
		length = DefaultLength
	}
	return &NanoIssuer{length: length}
}

// NewID returns a random order identifier.
func (i *NanoIssuer) NewID() string {
	return uuid.NewString()
}

// NewToken returns a random capability token.
func (i *NanoIssuer) NewToken() (string, error) {
	return gonanoid.New(i.length)
}

// Equal compares tokens in constant time. Empty values never match.
func Equal(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
