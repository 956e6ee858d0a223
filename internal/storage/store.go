package storage

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// Top-level keys of the persistence layout
const (
	KeyAuthDetails   = "authDetails"
	KeyShortenedURLs = "shortenedUrls"
)

// Supported backends
const (
	DriverJSON = "json"
	DriverSQL  = "sql"
)

// Store is a durable mapping from string keys to JSON-serialized values.
//
// Load reports false when the key is absent or its value cannot be decoded
// into dst; only real I/O failures are returned as errors. Save replaces any
// prior value and is durable once it returns.
type Store interface {
	Load(key string, dst any) (bool, error)
	Save(key string, value any) error
	Close() error
}

// Get loads key as a T, substituting def when the value is absent or corrupt
func Get[T any](s Store, key string, def T) (T, error) {
	var v T
	ok, err := s.Load(key, &v)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Open builds the backend selected by driver.
// The JSON backend keeps its file in dir; the SQL backend connects to dsn,
// defaulting to a SQLite file in dir.
func Open(driver, dir, dsn string, logger *zap.Logger) (Store, error) {
	switch driver {
	case "", DriverJSON:
		return NewJSONStorage(filepath.Join(dir, "shorty.json"), logger)
	case DriverSQL:
		if dsn == "" {
			dsn = "file:" + filepath.Join(dir, "shorty.db")
		}
		return NewSQLStorage(dsn, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
