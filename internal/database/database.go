package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const openMaxElapsed = 30 * time.Second

// Open connects to the profile database. SQLite paths get their directory
// created; MySQL connections are retried while the server comes up.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, "":
		return openSQLite(dsn)
	case DriverMySQL:
		return openMySQL(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func openSQLite(databasePath string) (*sql.DB, error) {
	if databasePath != ":memory:" {
		directory := filepath.Dir(databasePath)
		if err := os.MkdirAll(directory, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	database, err := sql.Open("sqlite", databasePath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if databasePath == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		database.SetMaxOpenConns(1)
	}

	if _, err := database.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := database.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := database.Ping(); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return database, nil
}

func openMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	mysqlConfig, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing mysql dsn: %w", err)
	}
	mysqlConfig.ParseTime = true
	mysqlConfig.Loc = time.UTC
	// report matched rows, as SQLite does, so unchanged updates are not misses
	mysqlConfig.ClientFoundRows = true

	database, err := sql.Open("mysql", mysqlConfig.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	database.SetMaxOpenConns(10)
	database.SetMaxIdleConns(5)
	database.SetConnMaxLifetime(5 * time.Minute)

	retry := backoff.NewExponentialBackOff()
	retry.MaxElapsedTime = openMaxElapsed
	err = backoff.Retry(func() error {
		pingErr := database.PingContext(ctx)
		if pingErr != nil && !isRetryableError(pingErr) {
			return backoff.Permanent(pingErr)
		}
		if pingErr != nil {
			slog.Warn("database not ready, retrying", "error", pingErr)
		}
		return pingErr
	}, backoff.WithContext(retry, ctx))
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return database, nil
}

// isRetryableError matches the transient connection failures seen while a
// MySQL server is starting or restarting.
func isRetryableError(err error) bool {
	message := strings.ToLower(err.Error())
	for _, transient := range []string{
		"driver: bad connection",
		"invalid connection",
		"broken pipe",
		"connection reset",
		"connection refused",
		"gone away",
		"i/o timeout",
	} {
		if strings.Contains(message, transient) {
			return true
		}
	}
	return false
}
