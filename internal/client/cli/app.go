package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/farmkeeper/internal/client/bootstrap"
	"github.com/dmitrijs2005/farmkeeper/internal/client/client"
	"github.com/dmitrijs2005/farmkeeper/internal/client/config"
	"github.com/dmitrijs2005/farmkeeper/internal/client/credentials"
	"github.com/dmitrijs2005/farmkeeper/internal/client/endpoint"
	"github.com/dmitrijs2005/farmkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/farmkeeper/internal/client/services"
	"github.com/dmitrijs2005/farmkeeper/internal/client/storage"
	"github.com/dmitrijs2005/farmkeeper/internal/filex"
	"github.com/dmitrijs2005/farmkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

// ErrNotInteractive is returned when credentials are needed outside the shell.
var ErrNotInteractive = errors.New("credentials required; run login")

type App struct {
	config *config.Config
	db     *sql.DB
	log    logging.Logger

	repo     metadata.Repository
	registry *endpoint.Registry
	client   *client.Client
	session  *services.SessionManager
	accounts *services.AccountService
	boot     *bootstrap.Sequencer

	metrics  *prometheus.Registry
	reader   *bufio.Reader
	out      io.Writer
	started  bool
	bootErr  error
	interact bool
}

// NewApp opens the local database and wires the services. Nothing touches
// the network until Start.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.New(c.LogLevel, os.Stderr)

	path, err := filex.EnsureParentDir(c.DatabasePath)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(ctx, path)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	return newApp(c, db, log), nil
}

func newApp(c *config.Config, db *sql.DB, log logging.Logger) *App {
	a := &App{
		config:  c,
		db:      db,
		log:     log,
		metrics: prometheus.NewRegistry(),
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	a.repo = metadata.NewSQLiteRepository(db)
	a.registry = endpoint.NewRegistry(a.repo, log.With("component", "endpoint"))
	a.client = client.New(a.registry,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "client")),
		client.WithMetrics(client.NewMetrics(a.metrics)),
	)
	a.session = services.NewSessionManager(a.client, credentials.NewStore(a.repo),
		services.WithSessionLogger(log.With("component", "session")),
		services.WithReauthenticator(a.promptCredentials),
	)
	a.accounts = services.NewAccountService(a.client, db, a.session, log.With("component", "account"))
	a.boot = bootstrap.New(a.registry, a.session, log)
	return a
}

// Start runs the bootstrap sequence on first use; later calls return the
// first result.
func (a *App) Start(ctx context.Context) error {
	if a.started {
		return a.bootErr
	}
	a.started = true
	a.bootErr = a.boot.Run(ctx)
	if err := a.boot.RestoreErr(); err != nil {
		fmt.Fprintln(a.out, "Session not restored:", Describe(err))
	}
	return a.bootErr
}

func (a *App) Close() error {
	return a.db.Close()
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().IsAuthenticated()
}

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	s := string(snap.State)
	if snap.User != nil {
		s = snap.User.Username + " " + s
	}
	if ep, ok := a.registry.Endpoint(); ok {
		s = s + " @ " + ep
	}
	return fmt.Sprintf("(%s)", s)
}

// promptCredentials re-asks for credentials inside the shell.
func (a *App) promptCredentials(ctx context.Context) (string, string, error) {
	if !a.interact {
		return "", "", ErrNotInteractive
	}
	fmt.Fprintln(a.out, "Session expired, please log in again.")

	identifier, err := getSimpleText(a.reader, "Enter username or email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer wipe(password)
	return identifier, string(password), nil
}
