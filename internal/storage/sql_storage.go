package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Turso driver
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Local SQLite driver
)

// SQLStorage keeps one row per key in a SQLite (or libsql) table
type SQLStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLStorage connects to dsn and creates the kv table if needed.
// libsql:// and wss:// URLs use the Turso driver, anything else local SQLite.
func NewSQLStorage(dsn string, logger *zap.Logger) (*SQLStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	driverName := "sqlite"
	if strings.HasPrefix(dsn, "libsql://") || strings.HasPrefix(dsn, "wss://") {
		driverName = "libsql"
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if driverName == "sqlite" {
		// One writer keeps SQLite from returning SQLITE_BUSY under the HTTP server.
		db.SetMaxOpenConns(1)
		_, _ = db.Exec("PRAGMA busy_timeout = 5000;")
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStorage{
		db:     db,
		logger: logger.With(zap.String("store", driverName)),
	}, nil
}

func migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := db.Exec(query)
	return err
}

// Load decodes the value stored under key into dst
func (s *SQLStorage) Load(key string, dst any) (bool, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Warn("discarding undecodable value", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

// Save upserts the serialized value under key
func (s *SQLStorage) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			  ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err = s.db.Exec(query, key, string(data), time.Now().UTC())
	return err
}

// Close releases the database handle
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLStorage)(nil)
