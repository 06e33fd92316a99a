package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"dataprotectionapi/pkg/logger"
)

// Open connects to the described database and verifies reachability with a
// ping. The returned handle must be closed by the caller on every exit path.
func Open(ctx context.Context, d Descriptor) (*sql.DB, error) {
	driver, err := d.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := d.DSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection to %s:%d: %w", d.Type, d.Host, d.Port, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s at %s:%d: %w", d.Type, d.Host, d.Port, err)
	}
	return db, nil
}

// OpenServer connects to the server holding the described database without
// selecting it, for existence checks and database creation.
func OpenServer(ctx context.Context, d Descriptor) (*sql.DB, error) {
	driver, err := d.DriverName()
	if err != nil {
		return nil, err
	}
	dsn, err := d.ServerDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s server connection to %s:%d: %w", d.Type, d.Host, d.Port, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s server at %s:%d: %w", d.Type, d.Host, d.Port, err)
	}
	return db, nil
}

// DatabaseExists reports whether the described database exists on its server.
// The server handle must come from OpenServer on the same descriptor.
func DatabaseExists(ctx context.Context, server *sql.DB, d Descriptor) (bool, error) {
	var query string
	switch d.Type {
	case TypeMySQL:
		query = "SELECT COUNT(*) FROM information_schema.SCHEMATA WHERE SCHEMA_NAME = ?"
	case TypePostgreSQL:
		query = "SELECT COUNT(*) FROM pg_database WHERE datname = $1"
	default:
		return false, fmt.Errorf("unsupported database type %q", d.Type)
	}

	var count int
	if err := server.QueryRowContext(ctx, query, d.Name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check existence of database %s: %w", d.Name, err)
	}
	return count > 0, nil
}

// EnsureDatabase creates the described database on its server if it is absent.
func EnsureDatabase(ctx context.Context, server *sql.DB, d Descriptor) error {
	exists, err := DatabaseExists(ctx, server, d)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	logger.Infof("Creating database %s on %s:%d", d.Name, d.Host, d.Port)
	if _, err := server.ExecContext(ctx, "CREATE DATABASE "+QuoteIdentifier(d.Type, d.Name)); err != nil {
		return fmt.Errorf("failed to create database %s: %w", d.Name, err)
	}
	return nil
}

// QuoteIdentifier quotes a table or column identifier for the engine type.
func QuoteIdentifier(engineType, ident string) string {
	switch engineType {
	case TypeMySQL:
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
	}
}

// Placeholder returns the n-th (1-based) statement parameter placeholder for
// the engine type.
func Placeholder(engineType string, n int) string {
	if engineType == TypePostgreSQL {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}
