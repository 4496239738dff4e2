package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/dmitrijs2005/farmkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/farmkeeper/internal/client/models"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/tidwall/gjson"
)

const (
	LoginPath  = "auth/login/"
	LogoutPath = "auth/logout/"
	UserPath   = "auth/user/"
)

// SessionReader is the read-only view of the session handed to screens.
type SessionReader interface {
	Snapshot() models.Session
	State() models.State
	User() *models.Profile
}

// SessionController is the set of session operations a screen may invoke.
type SessionController interface {
	Login(ctx context.Context, identifier, password string) error
	Logout(ctx context.Context) error
	RefreshProfile(ctx context.Context) (*models.Profile, error)
}

// Reauthenticator supplies credentials when a rejected token cannot be
// replaced from storage, e.g. by prompting the user.
type Reauthenticator func(ctx context.Context) (identifier, password string, err error)

// SessionManager owns the session state and is the only writer of the
// persisted token. It implements client.Authenticator.
//
// The mutex guards the in-memory fields only and is never held across a
// storage or network call.
type SessionManager struct {
	client *client.Client
	store  *credentials.Store
	log    logging.Logger
	reauth Reauthenticator
	now    func() time.Time

	mu    sync.RWMutex
	token string
	user  *models.Profile
	state models.State
}

type SessionOption func(*SessionManager)

func WithSessionLogger(l logging.Logger) SessionOption {
	return func(m *SessionManager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithReauthenticator enables interactive re-login when a refresh cannot be
// served from storage.
func WithReauthenticator(r Reauthenticator) SessionOption {
	return func(m *SessionManager) { m.reauth = r }
}

func WithClock(now func() time.Time) SessionOption {
	return func(m *SessionManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewSessionManager creates a manager in the Idle state and installs it as
// c's authenticator.
func NewSessionManager(c *client.Client, store *credentials.Store, opts ...SessionOption) *SessionManager {
	m := &SessionManager{
		client: c,
		store:  store,
		log:    logging.NewNop(),
		now:    time.Now,
		state:  models.StateIdle,
	}
	for _, opt := range opts {
		opt(m)
	}
	c.SetAuthenticator(m)
	return m
}

// Snapshot returns a copy of the current session.
func (m *SessionManager) Snapshot() models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return models.Session{Token: m.token, User: m.user, State: m.state}
}

func (m *SessionManager) State() models.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *SessionManager) User() *models.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

// Token returns the in-memory token mirror.
func (m *SessionManager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

func (m *SessionManager) set(token string, user *models.Profile, state models.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := m.state
	m.token, m.user, m.state = token, user, state
	if prev != state {
		m.log.Debug(context.Background(), "session state changed", "from", prev, "to", state)
	}
}

// Login exchanges credentials for a token, persists it and fetches the
// profile. A failed profile fetch leaves the session authenticated with no
// user; the error is logged, not returned.
func (m *SessionManager) Login(ctx context.Context, identifier, password string) error {
	token, err := m.authenticate(ctx, identifier, password)
	if err != nil {
		return err
	}

	if _, err := m.RefreshProfile(ctx); err != nil {
		m.mu.Lock()
		if m.token == token {
			m.user = nil
		}
		m.mu.Unlock()
		m.log.Warn(ctx, "profile fetch after login failed", "error", err)
	}

	m.log.Info(ctx, "logged in", "token", logging.Redact(token))
	return nil
}

// authenticate performs the login request, persists the token and mirrors
// it in memory. The cached profile is dropped since the token may belong to
// another account.
func (m *SessionManager) authenticate(ctx context.Context, identifier, password string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", fmt.Errorf("%w: identifier and password are required", client.ErrInvalidInput)
	}

	resp, err := m.client.Send(ctx, client.Request{
		Method:    http.MethodPost,
		Path:      LoginPath,
		Body:      loginBody(identifier, password),
		Anonymous: true,
	})
	if err != nil {
		var statusErr *client.StatusError
		if errors.As(err, &statusErr) &&
			(statusErr.StatusCode == http.StatusBadRequest || statusErr.StatusCode == http.StatusUnauthorized) {
			return "", fmt.Errorf("%w: %w", client.ErrInvalidCredentials, statusErr)
		}
		return "", fmt.Errorf("login: %w", err)
	}

	token, err := loginToken(resp.Body)
	if err != nil {
		return "", err
	}

	if err := m.store.SaveToken(ctx, token); err != nil {
		return "", fmt.Errorf("login: %w", err)
	}

	m.adopt(token)
	return token, nil
}

func loginBody(identifier, password string) map[string]string {
	if addr, err := mail.ParseAddress(identifier); err == nil && addr.Address == identifier {
		return map[string]string{"email": identifier, "password": password}
	}
	return map[string]string{"username": identifier, "password": password}
}

func loginToken(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("%w: body is not JSON", client.ErrInvalidResponseShape)
	}
	key := gjson.GetBytes(body, "key")
	if !key.Exists() {
		return "", fmt.Errorf("%w: no key field", client.ErrInvalidResponseShape)
	}
	if key.Type != gjson.String || key.String() == "" {
		return "", fmt.Errorf("%w: key is not a non-empty string", client.ErrInvalidResponseShape)
	}
	return key.String(), nil
}

// RefreshProfile fetches the profile and replaces the cached one wholesale.
// The result is discarded if the session was torn down meanwhile.
func (m *SessionManager) RefreshProfile(ctx context.Context) (*models.Profile, error) {
	token := m.Token()
	if token == "" {
		return nil, fmt.Errorf("fetch profile: %w", client.ErrUnauthorized)
	}

	var p models.Profile
	if err := m.client.Get(ctx, UserPath, &p); err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}
	if p.ID() == "" {
		return nil, fmt.Errorf("fetch profile: %w: no user identifier", client.ErrInvalidResponseShape)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return nil, fmt.Errorf("fetch profile: %w", client.ErrSessionExpired)
	}
	m.user = &p
	return &p, nil
}

// RestoreSession loads the persisted token and validates it with a profile
// fetch. Any failure clears the token and leaves the session
// unauthenticated.
func (m *SessionManager) RestoreSession(ctx context.Context) error {
	m.set("", nil, models.StateRestoring)

	token, ok, err := m.store.LoadToken(ctx)
	if err != nil {
		m.set("", nil, models.StateUnauthenticated)
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok {
		m.set("", nil, models.StateUnauthenticated)
		m.log.Info(ctx, "no stored session")
		return nil
	}

	if exp, ok := TokenExpiry(token); ok && !exp.After(m.now()) {
		m.teardown(ctx, token)
		return fmt.Errorf("restore session: %w: token expired at %s", client.ErrSessionExpired, exp.Format(time.RFC3339))
	}

	m.set(token, nil, models.StateRestoring)

	if _, err := m.RefreshProfile(ctx); err != nil {
		m.teardown(ctx, token)
		return fmt.Errorf("restore session: %w", err)
	}

	m.mu.Lock()
	if m.token == token {
		m.state = models.StateAuthenticated
	}
	m.mu.Unlock()

	m.log.Info(ctx, "session restored", "user", m.User().ID())
	return nil
}

// Logout tries the remote logout, then clears the persisted token and the
// in-memory session. The local part always happens; only a storage failure
// is returned.
func (m *SessionManager) Logout(ctx context.Context) error {
	token := m.Token()
	if token != "" {
		_, err := m.client.Send(ctx, client.Request{
			Method:    http.MethodPost,
			Path:      LogoutPath,
			Anonymous: true,
			Header:    http.Header{"Authorization": {client.AuthScheme + " " + token}},
		})
		if err != nil {
			m.log.Warn(ctx, "remote logout failed", "error", err)
		}
	}

	m.set("", nil, models.StateUnauthenticated)

	if err := m.store.ClearToken(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.log.Info(ctx, "logged out")
	return nil
}

// Refresh implements client.Authenticator. It prefers a token already
// persisted by another login, then falls back to the re-authenticator.
// A request that carried no token gets client.ErrNoCredential unless a
// stored token turns up.
func (m *SessionManager) Refresh(ctx context.Context, rejected string) (string, error) {
	if current := m.Token(); current != "" && current != rejected {
		return current, nil
	}

	stored, ok, err := m.store.LoadToken(ctx)
	if err != nil {
		return "", fmt.Errorf("refresh: %w", err)
	}
	if ok && stored != rejected {
		m.adopt(stored)
		m.log.Info(ctx, "adopted stored token", "token", logging.Redact(stored))
		return stored, nil
	}

	// nothing was ever sent with a credential: not a session to renew
	if rejected == "" {
		return "", client.ErrNoCredential
	}

	if m.reauth == nil {
		return "", client.ErrSessionExpired
	}

	identifier, password, err := m.reauth(ctx)
	if err != nil {
		return "", fmt.Errorf("re-authenticate: %w", err)
	}
	token, err := m.authenticate(ctx, identifier, password)
	if err != nil {
		return "", fmt.Errorf("re-authenticate: %w", err)
	}
	return token, nil
}

// adopt installs token as the current credential. A different token
// invalidates the cached profile until it is fetched again.
func (m *SessionManager) adopt(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token != token {
		m.user = nil
	}
	m.token = token
	m.state = models.StateAuthenticated
}

// Invalidate implements client.Authenticator. The session is torn down only
// when rejected is still the current token.
func (m *SessionManager) Invalidate(ctx context.Context, rejected string) {
	if rejected == "" || m.Token() != rejected {
		return
	}
	m.log.Warn(ctx, "session rejected by server", "token", logging.Redact(rejected))
	m.teardown(ctx, rejected)
}

// teardown drops the in-memory session and clears the persisted token
// unless a different one has been stored since.
func (m *SessionManager) teardown(ctx context.Context, token string) {
	m.mu.Lock()
	if m.token == token || m.token == "" {
		m.token, m.user = "", nil
		m.state = models.StateUnauthenticated
	}
	m.mu.Unlock()

	stored, ok, err := m.store.LoadToken(ctx)
	if err != nil {
		m.log.Error(ctx, "load token during teardown", "error", err)
		return
	}
	if ok && stored != token {
		return
	}
	if err := m.store.ClearToken(ctx); err != nil {
		m.log.Error(ctx, "clear token during teardown", "error", err)
	}
}
