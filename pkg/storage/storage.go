package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/licensetower/pkg/errors"
)

// Store is a durable key-value handle addressed by blob name.
type Store interface {
	// Get returns the blob stored under key. ok is false when no blob exists.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	// Update replaces the blob stored under key.
	Update(ctx context.Context, key string, data []byte) error
	// Close releases the backend's resources.
	Close() error
}

// Driver names accepted by [Open].
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
	DriverNull     = "null"
)

// Drivers lists the accepted driver names.
var Drivers = []string{DriverFile, DriverSQLite, DriverPostgres, DriverRedis, DriverMongo, DriverMemory, DriverNull}

// Options selects and configures a backend.
type Options struct {
	Driver string // One of [Drivers]; empty selects "file"
	DSN    string // Directory, database file, connection URL, depending on Driver
}

// Open creates the backend selected by opts.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverFile:
		return NewFile(opts.DSN)
	case DriverSQLite, DriverPostgres:
		return OpenSQL(ctx, strings.ToLower(opts.Driver), opts.DSN)
	case DriverRedis:
		return OpenRedis(ctx, opts.DSN)
	case DriverMongo:
		return OpenMongo(ctx, opts.DSN)
	case DriverMemory:
		return NewMemory(), nil
	case DriverNull:
		return NewNull(), nil
	}
	return nil, errors.New(errors.ErrCodeStorageDriver, "unknown storage driver %q (available: %s)",
		opts.Driver, strings.Join(Drivers, ", "))
}

// DefaultDir returns the default snapshot directory using the XDG cache
// convention (~/.cache/licensetower/).
func DefaultDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, "licensetower"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "licensetower"), nil
}

// Redact masks the password of a URL-style DSN for display.
func Redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	return u.Redacted()
}
