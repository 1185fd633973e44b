package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/matzehuels/licensetower/pkg/errors"
)

const sqlTable = "licensetower_kv"

// SQL stores blobs as rows of a key/value table in SQLite or PostgreSQL.
type SQL struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens a SQL store. driver is "sqlite" (dsn is a file path or
// ":memory:") or "postgres" (dsn is a lib/pq connection string). The table
// is created if it does not exist.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	if dsn == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "%s storage requires a DSN", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s", driver)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection also keeps ":memory:" databases alive.
		db.SetMaxOpenConns(1)
	}

	s := &SQL{db: db, driver: driver}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) migrate(ctx context.Context) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`, sqlTable)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "create %s table", sqlTable)
	}
	return nil
}

// placeholder returns the n-th (1-based) bind parameter for the dialect.
func (s *SQL) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Get reads the blob stored under key.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query := fmt.Sprintf("SELECT value FROM %s WHERE key = %s", sqlTable, s.placeholder(1))

	var value string
	err := s.db.QueryRowContext(ctx, query, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}
	return []byte(value), true, nil
}

// Update upserts the blob stored under key.
func (s *SQL) Update(ctx context.Context, key string, data []byte) error {
	stmt := fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES (%s, %s, %s)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		sqlTable, s.placeholder(1), s.placeholder(2), s.placeholder(3))

	if _, err := s.db.ExecContext(ctx, stmt, key, string(data), time.Now().UTC()); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	return nil
}

// Close closes the database handle.
func (s *SQL) Close() error { return s.db.Close() }

var _ Store = (*SQL)(nil)
