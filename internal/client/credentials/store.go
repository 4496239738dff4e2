// Package credentials persists the session token in the local metadata store.
package credentials

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/farmkeeper/internal/client/repositories/metadata"
)

// TokenKey is the metadata key holding the session token.
const TokenKey = "accessToken"

// Store reads and writes the persisted token. Every operation is a single
// key write or read, so concurrent callers end with the last write.
type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

// SaveToken overwrites the persisted token.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	if err := s.repo.Set(ctx, TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

// LoadToken returns the persisted token; ok is false when none is stored.
func (s *Store) LoadToken(ctx context.Context) (token string, ok bool, err error) {
	v, err := s.repo.Get(ctx, TokenKey)
	if err != nil {
		return "", false, fmt.Errorf("load token: %w", err)
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

// ClearToken removes the persisted token. It succeeds when none is stored.
func (s *Store) ClearToken(ctx context.Context) error {
	if err := s.repo.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}
