// Package storage provides primitives for connecting to and interacting with the
// device-local data store. It defines the Storage interface along with a SQLite
// implementation that manages the single key-value record set used by the
// companion app (most notably the persisted authentication session).
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"arena_companion/internal/pkg/logger"

	_ "modernc.org/sqlite"
)

//go:generate mockgen -source=sqlite.go -destination=mocks/mock_storage.go -package=mocks

// ErrNotFound is returned when the requested key has no persisted value.
var ErrNotFound = errors.New("storage: key not found")

const (
	createTableQuery = `CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value BLOB NOT NULL, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP);`
	getQuery         = `SELECT value FROM kv WHERE key = ?;`
	setQuery         = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP) ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP;`
	deleteQuery      = `DELETE FROM kv WHERE key = ?;`
)

// Storage defines the methods required for device-local key-value persistence.
type Storage interface {
	// Close closes the underlying database connection.
	Close()

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value wholesale.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes the value stored under key. Deleting an absent key is not
	// an error.
	Delete(ctx context.Context, key string) error
}

// SQLite implements the Storage interface using a local SQLite database file.
type SQLite struct {
	db  *sql.DB        // Connection to the database file.
	log *logger.Logger // Logger for recording events and errors.
}

// NewSQLite creates a new SQLite instance backed by the database file at path.
// It opens the connection and creates the key-value table if missing.
func NewSQLite(path string, l *logger.Logger) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		l.Sugar().Errorf("Failed to open a database: %s", err)
		return &SQLite{db: db, log: l}, err
	}

	const defaultTimeout = 10 * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, createTableQuery); err != nil {
		l.Sugar().Errorf("Failed to create the kv table: %s", err)
		return &SQLite{db: db, log: l}, err
	}

	return &SQLite{db: db, log: l}, nil
}

// Close closes the database connection if it is open.
func (sqlite *SQLite) Close() {
	if sqlite.db != nil {
		sqlite.db.Close()
	}
}

// Get retrieves the value stored under key.
func (sqlite *SQLite) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte

	err := sqlite.db.QueryRowContext(ctx, getQuery, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		sqlite.log.Sugar().Errorf("Failed to execute a query getQuery: %s", err)
		return nil, err
	}

	return value, nil
}

// Set stores value under key, overwriting any existing record.
func (sqlite *SQLite) Set(ctx context.Context, key string, value []byte) error {
	if _, err := sqlite.db.ExecContext(ctx, setQuery, key, value); err != nil {
		sqlite.log.Sugar().Errorf("Failed to execute a query setQuery: %s", err)
		return err
	}
	return nil
}

// Delete removes the record stored under key.
func (sqlite *SQLite) Delete(ctx context.Context, key string) error {
	if _, err := sqlite.db.ExecContext(ctx, deleteQuery, key); err != nil {
		sqlite.log.Sugar().Errorf("Failed to execute a query deleteQuery: %s", err)
		return err
	}
	return nil
}
