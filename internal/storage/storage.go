// Package storage opens the SQLite database that backs the page catalog and
// creates its tables.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/goliatone/go-bookcheck/internal/logging"
	"github.com/goliatone/go-bookcheck/pkg/interfaces"
)

// DriverSQLite is the database/sql driver name registered by go-sqlite3.
const DriverSQLite = "sqlite3"

var (
	ErrDSNRequired      = errors.New("storage: dsn required")
	ErrDatabaseRequired = errors.New("storage: database required")
)

// Config captures how the catalog database is opened.
type Config struct {
	DSN string
	// Debug logs every query at debug level.
	Debug bool
	// MaxOpenConns defaults to 1; SQLite serialises writers anyway.
	MaxOpenConns int
}

// Option customises Open.
type Option func(*options)

type options struct {
	logger interfaces.Logger
	models []any
}

// WithLogger sets the logger used for query debugging and lifecycle events.
func WithLogger(logger interfaces.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithModels sets the bun models whose tables Open creates.
func WithModels(models ...any) Option {
	return func(o *options) {
		o.models = models
	}
}

// Open connects to the database described by cfg and creates the tables of
// the models passed through WithModels when they are missing.
func Open(ctx context.Context, cfg Config, opts ...Option) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}
	o := options{logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	sqlDB, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dsn, err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 1
	}

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(maxOpen)
	if cfg.Debug {
		db.AddQueryHook(&queryLogger{logger: o.logger})
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", dsn, err)
	}
	if err := Migrate(ctx, db, o.models...); err != nil {
		_ = db.Close()
		return nil, err
	}

	o.logger.Debug("storage.opened", "dsn", dsn, "max_open_conns", maxOpen)
	return db, nil
}

// Migrate creates the tables of models. Existing tables are left untouched.
func Migrate(ctx context.Context, db *bun.DB, models ...any) error {
	if db == nil {
		return ErrDatabaseRequired
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}

type queryLogger struct {
	logger interfaces.Logger
}

var _ bun.QueryHook = (*queryLogger)(nil)

func (h *queryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *queryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	args := []any{
		"query", event.Query,
		"duration", time.Since(event.StartTime),
	}
	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.logger.Warn("storage.query.failed", append(args, "error", event.Err)...)
		return
	}
	h.logger.Debug("storage.query", args...)
}
