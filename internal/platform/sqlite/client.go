package sqlite

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"gemini-relay-bot/internal/common/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

const driverName = "sqlite3"

type Client struct {
	db   *sqlx.DB
	path string
}

// NewClient opens the database file, waits for it to answer and applies the
// embedded migrations. Migrations are idempotent, so this runs on every start.
func NewClient(ctx context.Context, path string) (*Client, error) {
	db, err := sqlx.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	backoff := retry.WithMaxRetries(5, retry.NewExponential(100*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Database not ready, retrying")
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	c := &Client{db: db, path: path}
	if err := c.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info().Str("path", path).Msg("SQLite client initialized")

	return c, nil
}

// Migrate brings the schema up to date.
func (c *Client) Migrate() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(driverName); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.Up(c.db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (c *Client) GetDB() *sqlx.DB {
	return c.db
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", path)
}

type gooseLogger struct{}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	logger.Fatal().Msgf(format, v...)
}

func (gooseLogger) Printf(format string, v ...interface{}) {
	logger.Debug().Msgf(format, v...)
}
