// Package bootstrap runs the one-shot startup sequence of the client: load
// the endpoint, then restore the session, then report readiness.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/farmkeeper/internal/logging"
)

// ErrAlreadyStarted is returned by a second call to Run.
var ErrAlreadyStarted = errors.New("bootstrap already started")

// EndpointLoader loads the persisted endpoint into memory.
type EndpointLoader interface {
	Init(ctx context.Context) error
}

// SessionRestorer restores the persisted session.
type SessionRestorer interface {
	RestoreSession(ctx context.Context) error
}

// Sequencer runs its steps in order, exactly once.
type Sequencer struct {
	endpoints EndpointLoader
	session   SessionRestorer
	log       logging.Logger

	once  sync.Once
	ready chan struct{}

	mu         sync.Mutex
	started    bool
	restoreErr error
}

func New(endpoints EndpointLoader, session SessionRestorer, log logging.Logger) *Sequencer {
	if log == nil {
		log = logging.NewNop()
	}
	return &Sequencer{
		endpoints: endpoints,
		session:   session,
		log:       log,
		ready:     make(chan struct{}),
	}
}

// Run loads the endpoint and restores the session. A failed endpoint load
// is returned and the session is not restored. A failed restore leaves the
// session unauthenticated and is not an error of Run; see RestoreErr.
// Ready is closed when Run returns, whatever the outcome.
func (s *Sequencer) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	defer s.once.Do(func() { close(s.ready) })

	if err := s.endpoints.Init(ctx); err != nil {
		s.log.Error(ctx, "endpoint load failed", "error", err)
		return fmt.Errorf("load endpoint: %w", err)
	}

	if err := s.session.RestoreSession(ctx); err != nil {
		s.log.Warn(ctx, "session not restored", "error", err)
		s.mu.Lock()
		s.restoreErr = err
		s.mu.Unlock()
	}

	s.log.Debug(ctx, "bootstrap complete")
	return nil
}

// Ready is closed once Run has finished.
func (s *Sequencer) Ready() <-chan struct{} {
	return s.ready
}

// RestoreErr is the session restore failure of the completed run, if any.
func (s *Sequencer) RestoreErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoreErr
}
