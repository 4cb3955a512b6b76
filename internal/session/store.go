package session

import (
	"context"
	"sync"
)

// Store holds the bearer credential for the caller's session. An empty token
// means anonymous. Clearing is idempotent.
type Store interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemStore is an in-memory Store for request scopes and tests.
type MemStore struct {
	mu  sync.Mutex
	tok string
}

func NewMemStore(token string) *MemStore { return &MemStore{tok: token} }

func (s *MemStore) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok, nil
}

func (s *MemStore) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = token
	return nil
}

func (s *MemStore) ClearToken(ctx context.Context) error { return s.SetToken(ctx, "") }
