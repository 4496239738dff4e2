package endpoint

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/farmkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
)

// StorageKey is the metadata key holding the raw user-entered endpoint.
const StorageKey = "user_ip"

// Registry holds the resolved endpoint. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	raw      string
	resolved string

	repo metadata.Repository
	log  logging.Logger
}

func NewRegistry(repo metadata.Repository, log logging.Logger) *Registry {
	return &Registry{repo: repo, log: log}
}

// SetEndpoint normalizes raw and makes it the current endpoint. On error the
// previous value is kept.
func (r *Registry) SetEndpoint(raw string) error {
	resolved, err := Normalize(raw)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.raw = strings.TrimSpace(raw)
	r.resolved = resolved
	r.mu.Unlock()
	return nil
}

// Endpoint returns the current endpoint without I/O.
func (r *Registry) Endpoint() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.resolved, r.resolved != ""
}

// Raw returns the value the current endpoint was derived from.
func (r *Registry) Raw() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.raw
}

// Init loads the persisted raw value, if any, and applies it. Calling it
// again without an intervening change yields the same endpoint.
func (r *Registry) Init(ctx context.Context) error {
	raw, err := r.repo.Get(ctx, StorageKey)
	if err != nil {
		return fmt.Errorf("load endpoint: %w", err)
	}
	if len(raw) == 0 {
		r.log.Debug(ctx, "no persisted endpoint")
		return nil
	}

	if err := r.SetEndpoint(string(raw)); err != nil {
		return fmt.Errorf("persisted endpoint: %w", err)
	}

	ep, _ := r.Endpoint()
	r.log.Info(ctx, "endpoint loaded", "endpoint", ep)
	return nil
}

// Update validates raw, persists it and then makes it current. Nothing
// changes when validation or persistence fails.
func (r *Registry) Update(ctx context.Context, raw string) error {
	raw = strings.TrimSpace(raw)
	if _, err := Normalize(raw); err != nil {
		return err
	}

	if err := r.repo.Set(ctx, StorageKey, []byte(raw)); err != nil {
		return fmt.Errorf("save endpoint: %w", err)
	}
	if err := r.SetEndpoint(raw); err != nil {
		return err
	}

	ep, _ := r.Endpoint()
	r.log.Info(ctx, "endpoint updated", "endpoint", ep)
	return nil
}

// Forget removes the persisted value and clears the in-memory endpoint.
func (r *Registry) Forget(ctx context.Context) error {
	if err := r.repo.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("forget endpoint: %w", err)
	}

	r.mu.Lock()
	r.raw, r.resolved = "", ""
	r.mu.Unlock()
	return nil
}
