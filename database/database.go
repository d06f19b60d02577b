// Package database provides database connectivity and schema management.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// driverName is sqlite3 plus a Unicode casefold() SQL function. The built-in
// lower() folds ASCII only.
const driverName = "sqlite3_casefold"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("casefold", strings.ToLower, true)
		},
	})
}

// DB wraps the SQL database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new SQLite database connection
func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to an in-memory database is a separate database
	if strings.Contains(dataSourceName, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db}, nil
}

// Migrate brings the schema up to date using the embedded goose migrations
func (db *DB) Migrate(log *logrus.Entry) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(log)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db.DB, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("Database schema initialized")
	return nil
}
