package test

import (
	"fmt"
	"sync"
)

// IssuerStub hands out configured identifiers and tokens in order, then generated ones.
type IssuerStub struct {
	IDs    []string
	Tokens []string
	Err    error

	mu     sync.Mutex
	ids    int
	tokens int
}

// NewID returns the next configured identifier.
func (s *IssuerStub) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids++
	if s.ids <= len(s.IDs) {
		return s.IDs[s.ids-1]
	}
	return fmt.Sprintf("id-%d", s.ids)
}

// NewToken returns the next configured token or Err.
func (s *IssuerStub) NewToken() (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens++
	if s.tokens <= len(s.Tokens) {
		return s.Tokens[s.tokens-1], nil
	}
	return fmt.Sprintf("tok-%d", s.tokens), nil
}
