// Package cli implements the interactive StuVerFlow client shell. It wires
// the transport, session manager, and search service together and exposes
// them through a small REPL.
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/stuverflow/stuverflow-go/internal/api"
	"github.com/stuverflow/stuverflow-go/internal/config"
	"github.com/stuverflow/stuverflow-go/internal/logging"
	"github.com/stuverflow/stuverflow-go/internal/models"
	"github.com/stuverflow/stuverflow-go/internal/search"
	"github.com/stuverflow/stuverflow-go/internal/session"
	"github.com/stuverflow/stuverflow-go/internal/storage"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	client  api.Client
	session *session.Manager
	search  *search.Service
	suggest *search.Debounced[string, models.SuggestionBundle]
	db      *sql.DB
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	out := os.Stdout

	db, err := storage.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	sess := session.NewManager(db, session.Options{
		TTL:           c.SessionTTL,
		CheckInterval: c.ExpiryCheckInterval,
		Logger:        logger,
		OnExpire: func() {
			fmt.Fprintln(out, "Session expired. You've been logged out.")
		},
	})

	client := api.NewHTTPClient(c.BaseURL, c.RequestTimeout, sess, logger)
	searchSvc := search.NewService(client, storage.NewSQLiteRepository(db), search.Options{
		TrendingTTL: c.TrendingTTL,
		Logger:      logger,
	})

	// Repeated suggest calls inside the quiet window collapse into one
	// request, mirroring type-ahead behavior.
	suggest := search.NewDebounced(func(ctx context.Context, q string) (models.SuggestionBundle, error) {
		return searchSvc.Suggestions(ctx, q, 10)
	}, c.DebounceDelay)

	return &App{
		config:  c,
		client:  client,
		session: sess,
		search:  searchSvc,
		suggest: suggest,
		db:      db,
		reader:  bufio.NewReader(os.Stdin),
		out:     out,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer func() {
		_ = a.client.Close()
		_ = a.db.Close()
	}()

	a.session.Initialize(ctx)
	go a.session.StartExpiryWatcher(ctx)

	a.repl(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.session.State() == session.StateAuthenticated
}

func (a *App) status() string {
	if user := a.session.CurrentUser(); user != nil {
		return fmt.Sprintf("(@%s)", user.Handle)
	}
	return ""
}
