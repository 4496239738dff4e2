package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/dmitrijs2005/farmkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/farmkeeper/internal/client/endpoint"
	"github.com/dmitrijs2005/farmkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmkeeper/internal/client/storage"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

// recorded is one request seen by the fake backend.
type recorded struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// backend is a fake farm API. Handlers are registered per test under /api/.
type backend struct {
	srv *httptest.Server
	mux *http.ServeMux

	mu   sync.Mutex
	seen []recorded
}

func newBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{mux: http.NewServeMux()}
	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		_ = json.NewDecoder(r.Body).Decode(&rec.Body)
		b.mu.Lock()
		b.seen = append(b.seen, rec)
		b.mu.Unlock()
		b.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *backend) handle(path string, h http.HandlerFunc) {
	b.mux.HandleFunc("/api/"+path, h)
}

func (b *backend) requests(path string) []recorded {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []recorded
	for _, r := range b.seen {
		if r.Path == "/api/"+path {
			out = append(out, r)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// requireToken answers 401 unless the request carries one of tokens.
func requireToken(body string, tokens ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, t := range tokens {
			if r.Header.Get("Authorization") == "Token "+t {
				writeJSON(w, http.StatusOK, body)
				return
			}
		}
		writeJSON(w, http.StatusUnauthorized, `{"detail":"Invalid token."}`)
	}
}

type env struct {
	backend  *backend
	db       *sql.DB
	store    *credentials.Store
	registry *endpoint.Registry
	client   *client.Client
	session  *SessionManager
}

func newEnv(t *testing.T, opts ...SessionOption) *env {
	t.Helper()

	db, err := storage.Open(context.Background(), filepath.Join(t.TempDir(), "farmkeeper.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := metadata.NewSQLiteRepository(db)
	b := newBackend(t)

	reg := endpoint.NewRegistry(repo, logging.NewNop())
	require.NoError(t, reg.SetEndpoint(b.srv.URL))

	c := client.New(reg)
	store := credentials.NewStore(repo)

	return &env{
		backend:  b,
		db:       db,
		store:    store,
		registry: reg,
		client:   c,
		session:  NewSessionManager(c, store, opts...),
	}
}

func (e *env) storedToken(t *testing.T) (string, bool) {
	t.Helper()
	tok, ok, err := e.store.LoadToken(context.Background())
	require.NoError(t, err)
	return tok, ok
}
